// Package neural provides the fixed-topology feedforward controller that drives each car.
package neural

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// SizeMismatchError reports an input vector whose length does not match
// the width a layer was built for.
type SizeMismatchError struct {
	Layer    int
	Expected int
	Got      int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("neural: layer %d expects %d inputs, got %d", e.Layer, e.Expected, e.Got)
}

// Layer is one dense layer. Weights are stored row-major with one row per output.
type Layer struct {
	Inputs     int        `json:"inputs"`
	Outputs    int        `json:"outputs"`
	Weights    []float64  `json:"weights"` // [Outputs * Inputs]
	Bias       []float64  `json:"bias"`    // [Outputs]
	Activation Activation `json:"activation"`
}

// Weight returns the weight from input i to output o.
func (l *Layer) Weight(o, i int) float64 {
	return l.Weights[o*l.Inputs+i]
}

// forward computes bias + W·in and applies the activation.
func (l *Layer) forward(in []float64) []float64 {
	w := mat.NewDense(l.Outputs, l.Inputs, l.Weights)
	x := mat.NewVecDense(l.Inputs, in)

	var y mat.VecDense
	y.MulVec(w, x)
	y.AddVec(&y, mat.NewVecDense(l.Outputs, l.Bias))

	out := make([]float64, l.Outputs)
	for o := range out {
		out[o] = l.Activation.Apply(y.AtVec(o))
	}
	return out
}

// clone returns a layer that shares no storage with l.
func (l *Layer) clone() Layer {
	c := *l
	c.Weights = append([]float64(nil), l.Weights...)
	c.Bias = append([]float64(nil), l.Bias...)
	return c
}

// Topology describes layer sizes and activations.
type Topology struct {
	Inputs           int
	Hidden           []int
	Outputs          int
	HiddenActivation Activation
	OutputActivation Activation
}

// Sizes returns the node count of every layer, inputs first.
func (t Topology) Sizes() []int {
	sizes := make([]int, 0, len(t.Hidden)+2)
	sizes = append(sizes, t.Inputs)
	sizes = append(sizes, t.Hidden...)
	return append(sizes, t.Outputs)
}

// InitRanges bounds the uniform draws used for fresh networks.
// Weights are drawn from [-Weight, Weight], biases from [-Bias, Bias].
type InitRanges struct {
	Weight float64
	Bias   float64
}

// Network is an ordered stack of layers.
type Network struct {
	Layers []Layer `json:"layers"`
}

// NewNetwork creates a randomly initialized network with the given topology.
func NewNetwork(rng *rand.Rand, topo Topology, init InitRanges) *Network {
	sizes := topo.Sizes()
	nn := &Network{Layers: make([]Layer, 0, len(sizes)-1)}

	for k := 0; k+1 < len(sizes); k++ {
		act := topo.HiddenActivation
		if k+2 == len(sizes) {
			act = topo.OutputActivation
		}
		l := Layer{
			Inputs:     sizes[k],
			Outputs:    sizes[k+1],
			Weights:    make([]float64, sizes[k]*sizes[k+1]),
			Bias:       make([]float64, sizes[k+1]),
			Activation: act,
		}
		for i := range l.Weights {
			l.Weights[i] = uniform(rng, -init.Weight, init.Weight)
		}
		for i := range l.Bias {
			l.Bias[i] = uniform(rng, -init.Bias, init.Bias)
		}
		nn.Layers = append(nn.Layers, l)
	}
	return nn
}

// InputSize returns the width of the first layer.
func (nn *Network) InputSize() int {
	if len(nn.Layers) == 0 {
		return 0
	}
	return nn.Layers[0].Inputs
}

// OutputSize returns the width of the last layer.
func (nn *Network) OutputSize() int {
	if len(nn.Layers) == 0 {
		return 0
	}
	return nn.Layers[len(nn.Layers)-1].Outputs
}

// Forward evaluates the network. A wrong input width is reported as a
// *SizeMismatchError and nothing is padded or truncated.
func (nn *Network) Forward(inputs []float64) ([]float64, error) {
	out := inputs
	for k := range nn.Layers {
		l := &nn.Layers[k]
		if len(out) != l.Inputs {
			return nil, &SizeMismatchError{Layer: k, Expected: l.Inputs, Got: len(out)}
		}
		out = l.forward(out)
	}
	return out, nil
}

// ForwardTrace is Forward that also returns every layer's activations,
// starting with the inputs and ending with the outputs.
func (nn *Network) ForwardTrace(inputs []float64) ([][]float64, error) {
	trace := make([][]float64, 0, len(nn.Layers)+1)
	trace = append(trace, append([]float64(nil), inputs...))
	out := inputs
	for k := range nn.Layers {
		l := &nn.Layers[k]
		if len(out) != l.Inputs {
			return nil, &SizeMismatchError{Layer: k, Expected: l.Inputs, Got: len(out)}
		}
		out = l.forward(out)
		trace = append(trace, out)
	}
	return trace, nil
}

// Clone creates a deep copy of the network.
func (nn *Network) Clone() *Network {
	clone := &Network{Layers: make([]Layer, len(nn.Layers))}
	for k := range nn.Layers {
		clone.Layers[k] = nn.Layers[k].clone()
	}
	return clone
}

// SameTopology reports whether two networks have identical layer shapes.
func (nn *Network) SameTopology(other *Network) bool {
	if len(nn.Layers) != len(other.Layers) {
		return false
	}
	for k := range nn.Layers {
		a, b := &nn.Layers[k], &other.Layers[k]
		if a.Inputs != b.Inputs || a.Outputs != b.Outputs ||
			len(a.Weights) != len(b.Weights) || len(a.Bias) != len(b.Bias) {
			return false
		}
	}
	return true
}

// Validate checks that every layer's storage matches its declared shape
// and that consecutive layers chain.
func (nn *Network) Validate() error {
	if len(nn.Layers) == 0 {
		return fmt.Errorf("neural: network has no layers")
	}
	for k := range nn.Layers {
		l := &nn.Layers[k]
		if l.Inputs < 1 || l.Outputs < 1 {
			return fmt.Errorf("neural: layer %d has shape %dx%d", k, l.Outputs, l.Inputs)
		}
		if len(l.Weights) != l.Inputs*l.Outputs {
			return fmt.Errorf("neural: layer %d has %d weights, want %d", k, len(l.Weights), l.Inputs*l.Outputs)
		}
		if len(l.Bias) != l.Outputs {
			return fmt.Errorf("neural: layer %d has %d biases, want %d", k, len(l.Bias), l.Outputs)
		}
		if k > 0 && nn.Layers[k-1].Outputs != l.Inputs {
			return &SizeMismatchError{Layer: k, Expected: l.Inputs, Got: nn.Layers[k-1].Outputs}
		}
	}
	return nil
}

// MarshalWeights serializes the network to JSON.
func (nn *Network) MarshalWeights() ([]byte, error) {
	data, err := json.Marshal(nn)
	if err != nil {
		return nil, fmt.Errorf("marshaling network: %w", err)
	}
	return data, nil
}

// UnmarshalWeights restores a network from JSON produced by MarshalWeights.
func UnmarshalWeights(data []byte) (*Network, error) {
	nn := &Network{}
	if err := json.Unmarshal(data, nn); err != nil {
		return nil, fmt.Errorf("unmarshaling network: %w", err)
	}
	if err := nn.Validate(); err != nil {
		return nil, err
	}
	return nn, nil
}

// uniform draws from [lo, hi). Reversed bounds are swapped.
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo + rng.Float64()*(hi-lo)
}
