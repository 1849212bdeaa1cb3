package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Widget colors
var (
	ColorBarBg       = rl.Color{R: 40, G: 40, B: 40, A: 255}
	ColorBarFill     = rl.Color{R: 100, G: 180, B: 100, A: 255}
	ColorBarLow      = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorText        = rl.Color{R: 220, G: 220, B: 220, A: 255}
	ColorTextDim     = rl.Color{R: 150, G: 150, B: 150, A: 255}
	ColorAngleBg     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorAngleNeedle = rl.Color{R: 255, G: 200, B: 100, A: 255}
	ColorBoolOn      = rl.Color{R: 100, G: 200, B: 100, A: 255}
	ColorBoolOff     = rl.Color{R: 80, G: 80, B: 80, A: 255}
)

// DrawLabel renders a text value.
func DrawLabel(x, y int32, name string, value any, h Hint) int32 {
	text := h.Text(value)
	rl.DrawText(fmt.Sprintf("%s: %s", name, text), x, y, 14, ColorText)
	return 18
}

// DrawBar renders a horizontal bar for a value in [min, max]. When the range
// straddles zero the bar fills outward from the zero line.
func DrawBar(x, y int32, name string, value float32, h Hint) int32 {
	lo, hi := h.Min, h.Max
	if hi <= lo {
		hi = lo + 1
	}

	barWidth := int32(120)
	barHeight := int32(14)

	rl.DrawText(name, x, y, 14, ColorTextDim)

	barX := x + 90
	rl.DrawRectangle(barX, y, barWidth, barHeight, ColorBarBg)

	ratio := clamp01((value - lo) / (hi - lo))
	if lo < 0 && hi > 0 {
		zero := barX + int32(float32(barWidth)*(-lo/(hi-lo)))
		pos := barX + int32(float32(barWidth)*ratio)
		fillColor := ColorBarFill
		if pos < zero {
			zero, pos = pos, zero
			fillColor = ColorBarLow
		}
		rl.DrawRectangle(zero, y, pos-zero, barHeight, fillColor)
	} else {
		fillColor := ColorBarFill
		if ratio < 0.3 {
			fillColor = ColorBarLow
		}
		rl.DrawRectangle(barX, y, int32(float32(barWidth)*ratio), barHeight, fillColor)
	}

	rl.DrawText(h.Text(value), barX+barWidth+5, y, 14, ColorTextDim)

	return 18
}

// DrawBarGroup renders one mini-bar per value, used for the ray distances.
// Bars fill from 0 to the hint's max.
func DrawBarGroup(x, y int32, name string, values []float32, h Hint) int32 {
	maxVal := h.Max
	if maxVal <= 0 {
		maxVal = 1
	}
	barHeight := int32(30)
	gap := int32(2)
	labelHeight := int32(0)
	labels := h.labelsFor(len(values))
	if labels != nil {
		labelHeight = 10
	}

	rl.DrawText(name, x, y, 14, ColorTextDim)

	barX := x + 60
	barWidth := int32(14)
	if n := int32(len(values)); n > 0 {
		if avail := (PanelWidth - 2*PanelPadding - 60) / n; avail-gap < barWidth {
			barWidth = max(avail-gap, 2)
		}
	}

	for i, v := range values {
		ratio := clamp01(v / maxVal)
		bx := barX + int32(i)*(barWidth+gap)

		rl.DrawRectangle(bx, y, barWidth, barHeight, ColorBarBg)

		// Fill from bottom
		fillHeight := int32(float32(barHeight) * ratio)
		rl.DrawRectangle(bx, y+barHeight-fillHeight, barWidth, fillHeight, lerpColor(ColorBarLow, ColorBarFill, ratio))
	}

	if labels != nil {
		labelY := y + barHeight + 2
		for i, label := range labels {
			if label == "" {
				continue
			}
			lx := barX + int32(i)*(barWidth+gap) + barWidth/2
			textW := rl.MeasureText(label, 8)
			rl.DrawText(label, lx-textW/2, labelY, 8, ColorTextDim)
		}
	}

	return barHeight + labelHeight + 4
}

// DrawAngle renders a compass-style angle indicator.
func DrawAngle(x, y int32, name string, radians float32) int32 {
	size := int32(40)
	centerX := x + 90 + size/2
	centerY := y + size/2

	rl.DrawText(name, x, y+size/2-7, 14, ColorTextDim)

	rl.DrawCircle(centerX, centerY, float32(size/2), ColorAngleBg)
	rl.DrawCircleLines(centerX, centerY, float32(size/2), ColorTextDim)

	needleLen := float32(size/2 - 4)
	endX := float32(centerX) + needleLen*float32(math.Cos(float64(radians)))
	endY := float32(centerY) + needleLen*float32(math.Sin(float64(radians)))
	rl.DrawLineEx(
		rl.Vector2{X: float32(centerX), Y: float32(centerY)},
		rl.Vector2{X: endX, Y: endY},
		2,
		ColorAngleNeedle,
	)

	degrees := math.Mod(float64(radians)*180/math.Pi, 360)
	rl.DrawText(fmt.Sprintf("%.0f deg", degrees), x+90+size+5, y+size/2-7, 14, ColorTextDim)

	return size + 4
}

// DrawBool renders an on/off indicator.
func DrawBool(x, y int32, name string, value bool) int32 {
	rl.DrawText(name, x, y, 14, ColorTextDim)

	indicatorX := x + 90
	indicatorSize := int32(14)

	color := ColorBoolOff
	text := "no"
	if value {
		color = ColorBoolOn
		text = "yes"
	}

	rl.DrawRectangle(indicatorX, y, indicatorSize, indicatorSize, color)
	rl.DrawText(text, indicatorX+indicatorSize+5, y, 14, color)

	return 18
}

// DrawField renders a field using its widget type.
func DrawField(x, y int32, field Field) int32 {
	name := field.Label()
	switch field.Hint.Widget {
	case WidgetBar:
		if values, ok := field.Floats(); ok {
			return DrawBarGroup(x, y, name, values, field.Hint)
		}
		if v, ok := field.Float(); ok {
			return DrawBar(x, y, name, v, field.Hint)
		}

	case WidgetAngle:
		if v, ok := field.Float(); ok {
			return DrawAngle(x, y, name, v)
		}

	case WidgetBool:
		if v, ok := field.Value.(bool); ok {
			return DrawBool(x, y, name, v)
		}
	}
	return DrawLabel(x, y, name, field.Value, field.Hint)
}

// DrawFields renders every field of a component and returns the height used.
func DrawFields(x, y int32, component any) int32 {
	start := y
	for _, f := range ExtractFields(component) {
		y += DrawField(x, y, f)
	}
	return y - start
}

// lerpColor interpolates between two colors.
func lerpColor(a, b rl.Color, t float32) rl.Color {
	return rl.Color{
		R: uint8(float32(a.R) + (float32(b.R)-float32(a.R))*t),
		G: uint8(float32(a.G) + (float32(b.G)-float32(a.G))*t),
		B: uint8(float32(a.B) + (float32(b.B)-float32(a.B))*t),
		A: 255,
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
