package inspector

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/racers/neural"
)

// OutputLabels name the controller outputs in order.
var OutputLabels = []string{"Throttle", "Steer", "Brake"}

// InputLabels returns the controller input names for numRays sensors,
// matching the order the input vector is filled in.
func InputLabels(numRays int) []string {
	labels := make([]string, 0, numRays+6)
	for i := 0; i < numRays; i++ {
		labels = append(labels, fmt.Sprintf("Ray %d", i+1))
	}
	return append(labels, "Vel X", "Vel Y", "Acc X", "Acc Y", "Steer", "sin H")
}

// Network diagram colors.
var (
	ColorNodePositive = rl.Color{R: 255, G: 100, B: 100, A: 255}
	ColorNodeNegative = rl.Color{R: 100, G: 100, B: 255, A: 255}
	ColorEdgePositive = rl.Color{R: 200, G: 80, B: 80, A: 100}
	ColorEdgeNegative = rl.Color{R: 80, G: 80, B: 200, A: 100}
	ColorLabelDim     = rl.Color{R: 120, G: 120, B: 120, A: 255}
)

// minEdgeWeight hides near-zero connections.
const minEdgeWeight = 0.1

// DrawNetworkDiagram renders every layer of nn as a column of nodes colored by
// the activations in trace (as returned by Network.ForwardTrace).
func DrawNetworkDiagram(x, y, width, height int32, nn *neural.Network, trace [][]float64, inputLabels []string) {
	if nn == nil || len(trace) != len(nn.Layers)+1 {
		rl.DrawText("No network data", x+10, y+10, 14, ColorLabelDim)
		return
	}

	// Leave room for input labels on the left and output labels on the right.
	left := float32(x) + 48
	right := float32(x+width) - 56
	colStep := (right - left) / float32(len(trace)-1)
	usable := float32(height - 20)

	nodes := make([][]rl.Vector2, len(trace))
	for k, layer := range trace {
		n := len(layer)
		spacing := usable / float32(n)
		offset := (usable - spacing*float32(n-1)) / 2
		nodes[k] = make([]rl.Vector2, n)
		for i := range layer {
			nodes[k][i] = rl.Vector2{
				X: left + float32(k)*colStep,
				Y: float32(y) + 10 + offset + float32(i)*spacing,
			}
		}
	}

	for k := range nn.Layers {
		l := &nn.Layers[k]
		for o := 0; o < l.Outputs; o++ {
			for i := 0; i < l.Inputs; i++ {
				w := float32(l.Weight(o, i))
				if absFloat(w) < minEdgeWeight {
					continue
				}
				drawEdge(nodes[k][i], nodes[k+1][o], w)
			}
		}
	}

	radius := nodeRadius(usable, trace)
	last := len(trace) - 1
	for k, layer := range trace {
		for i, v := range layer {
			r := radius
			if k == last {
				r += 2
			}
			drawNode(nodes[k][i], r, float32(v))
		}
	}

	for i, p := range nodes[0] {
		if i < len(inputLabels) {
			labelWidth := rl.MeasureText(inputLabels[i], 8)
			rl.DrawText(inputLabels[i], int32(p.X-radius)-labelWidth-4, int32(p.Y)-4, 8, ColorLabelDim)
		}
	}
	for i, p := range nodes[last] {
		if i < len(OutputLabels) {
			text := fmt.Sprintf("%s %.2f", OutputLabels[i], trace[last][i])
			rl.DrawText(text, int32(p.X+radius+6), int32(p.Y)-5, 10, ColorLabelDim)
		}
	}
}

// nodeRadius shrinks nodes so the widest layer still fits.
func nodeRadius(usable float32, trace [][]float64) float32 {
	widest := 1
	for _, layer := range trace {
		widest = max(widest, len(layer))
	}
	r := usable / float32(widest) / 2.5
	return min(max(r, 2), 6)
}

// drawNode renders a single neuron node.
func drawNode(pos rl.Vector2, radius, activation float32) {
	rl.DrawCircleV(pos, radius, activationColor(activation))
	rl.DrawCircleLinesV(pos, radius, rl.Color{R: 100, G: 100, B: 100, A: 255})
}

// drawEdge renders a connection between nodes.
func drawEdge(from, to rl.Vector2, weight float32) {
	thickness := min(max(absFloat(weight)*1.5, 0.5), 3)

	color := ColorEdgePositive
	if weight < 0 {
		color = ColorEdgeNegative
	}
	color.A = uint8(min(40+int(absFloat(weight)*40), 150))

	rl.DrawLineEx(from, to, thickness, color)
}

// activationColor returns a color based on activation value.
// Negative = blue, Zero = gray, Positive = red.
func activationColor(activation float32) rl.Color {
	if activation > 0 {
		t := min(activation, 1)
		return rl.Color{
			R: uint8(60 + t*195),
			G: uint8(60 - t*30),
			B: uint8(60 - t*30),
			A: 255,
		}
	}
	t := min(-activation, 1)
	return rl.Color{
		R: uint8(60 - t*30),
		G: uint8(60 - t*30),
		B: uint8(60 + t*195),
		A: 255,
	}
}

func absFloat(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
