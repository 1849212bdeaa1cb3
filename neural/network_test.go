package neural

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func racerTopology() Topology {
	return Topology{
		Inputs:           21,
		Hidden:           []int{12, 8, 5},
		Outputs:          3,
		HiddenActivation: Identity,
		OutputActivation: Sigmoid,
	}
}

func TestNewNetwork(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewNetwork(rng, racerTopology(), InitRanges{Weight: 0.75, Bias: 0.25})

	wantShapes := [][2]int{{21, 12}, {12, 8}, {8, 5}, {5, 3}}
	if len(nn.Layers) != len(wantShapes) {
		t.Fatalf("layers: got %d, want %d", len(nn.Layers), len(wantShapes))
	}
	for k, shape := range wantShapes {
		l := nn.Layers[k]
		if l.Inputs != shape[0] || l.Outputs != shape[1] {
			t.Errorf("layer %d shape: got %dx%d, want %dx%d", k, l.Inputs, l.Outputs, shape[0], shape[1])
		}
		for _, w := range l.Weights {
			if w < -0.75 || w > 0.75 {
				t.Errorf("layer %d weight out of range: %f", k, w)
			}
		}
		for _, b := range l.Bias {
			if b < -0.25 || b > 0.25 {
				t.Errorf("layer %d bias out of range: %f", k, b)
			}
		}
	}

	if nn.Layers[3].Activation != Sigmoid {
		t.Errorf("output activation: got %s, want sigmoid", nn.Layers[3].Activation)
	}
	for k := 0; k < 3; k++ {
		if nn.Layers[k].Activation != Identity {
			t.Errorf("layer %d activation: got %s, want identity", k, nn.Layers[k].Activation)
		}
	}
	if err := nn.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestForwardKnownValues(t *testing.T) {
	nn := &Network{Layers: []Layer{
		{
			Inputs: 2, Outputs: 2,
			Weights: []float64{1, 2, -1, 0.5},
			Bias:    []float64{0.5, 0},
		},
		{
			Inputs: 2, Outputs: 1,
			Weights:    []float64{1, 1},
			Bias:       []float64{-1},
			Activation: Sigmoid,
		},
	}}

	out, err := nn.Forward([]float64{1, 2})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	// hidden = [0.5+1+4, 0-1+1] = [5.5, 0]; output = sigmoid(5.5 + 0 - 1)
	want := 1 / (1 + math.Exp(-4.5))
	if len(out) != 1 || math.Abs(out[0]-want) > 1e-12 {
		t.Errorf("output: got %v, want [%f]", out, want)
	}
}

func TestForwardTrace(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewNetwork(rng, racerTopology(), InitRanges{Weight: 0.75, Bias: 0.25})

	inputs := make([]float64, 21)
	for i := range inputs {
		inputs[i] = rng.Float64()
	}
	trace, err := nn.ForwardTrace(inputs)
	if err != nil {
		t.Fatalf("ForwardTrace: %v", err)
	}

	sizes := racerTopology().Sizes()
	if len(trace) != len(sizes) {
		t.Fatalf("layers: got %d, want %d", len(trace), len(sizes))
	}
	for k, layer := range trace {
		if len(layer) != sizes[k] {
			t.Errorf("layer %d: got %d values, want %d", k, len(layer), sizes[k])
		}
	}

	out, _ := nn.Forward(inputs)
	last := trace[len(trace)-1]
	for i := range out {
		if out[i] != last[i] {
			t.Errorf("output %d: got %v, want %v", i, last[i], out[i])
		}
	}

	inputs[0] = 99
	if trace[0][0] == 99 {
		t.Error("trace should copy the inputs")
	}

	if _, err := nn.ForwardTrace(make([]float64, 3)); err == nil {
		t.Error("expected size mismatch error")
	}
}

func TestForwardOutputRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewNetwork(rng, racerTopology(), InitRanges{Weight: 0.75, Bias: 0.25})

	inputs := make([]float64, 21)
	for i := range inputs {
		inputs[i] = rng.Float64()*2 - 1
	}
	out, err := nn.Forward(inputs)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("outputs: got %d, want 3", len(out))
	}
	for i, v := range out {
		if v <= 0 || v >= 1 {
			t.Errorf("output %d out of sigmoid range: %f", i, v)
		}
	}
}

func TestForwardDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewNetwork(rng, racerTopology(), InitRanges{Weight: 0.75, Bias: 0.25})

	inputs := make([]float64, 21)
	for i := range inputs {
		inputs[i] = float64(i) / 21
	}
	a, _ := nn.Forward(inputs)
	b, _ := nn.Forward(inputs)
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("Forward is not deterministic")
		}
	}
}

func TestForwardSizeMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewNetwork(rng, racerTopology(), InitRanges{Weight: 0.75, Bias: 0.25})

	for _, n := range []int{0, 20, 22} {
		_, err := nn.Forward(make([]float64, n))
		var sizeErr *SizeMismatchError
		if !errors.As(err, &sizeErr) {
			t.Fatalf("len %d: expected SizeMismatchError, got %v", n, err)
		}
		if sizeErr.Expected != 21 || sizeErr.Got != n {
			t.Errorf("len %d: got expected=%d got=%d", n, sizeErr.Expected, sizeErr.Got)
		}
	}
}

func TestClone(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewNetwork(rng, racerTopology(), InitRanges{Weight: 0.75, Bias: 0.25})
	clone := nn.Clone()

	original := nn.Layers[0].Weights[0]
	clone.Layers[0].Weights[0] += 10
	clone.Layers[1].Bias[0] += 10

	if nn.Layers[0].Weights[0] != original {
		t.Error("modifying clone weights affected original")
	}
	if nn.Layers[1].Bias[0] == clone.Layers[1].Bias[0] {
		t.Error("modifying clone bias affected original")
	}
	if !nn.SameTopology(clone) {
		t.Error("clone topology differs")
	}
}

func TestWeightsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewNetwork(rng, racerTopology(), InitRanges{Weight: 0.75, Bias: 0.25})

	data, err := nn.MarshalWeights()
	if err != nil {
		t.Fatalf("MarshalWeights: %v", err)
	}
	restored, err := UnmarshalWeights(data)
	if err != nil {
		t.Fatalf("UnmarshalWeights: %v", err)
	}

	inputs := make([]float64, 21)
	for i := range inputs {
		inputs[i] = 0.5
	}
	a, _ := nn.Forward(inputs)
	b, _ := restored.Forward(inputs)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("output %d: got %f, want %f", i, b[i], a[i])
		}
	}
	if restored.Layers[3].Activation != Sigmoid {
		t.Errorf("activation lost in round trip: %s", restored.Layers[3].Activation)
	}
}

func TestUnmarshalWeightsRejectsBrokenShapes(t *testing.T) {
	cases := map[string]string{
		"empty":        `{"layers":[]}`,
		"short bias":   `{"layers":[{"inputs":1,"outputs":2,"weights":[1,2],"bias":[0],"activation":"identity"}]}`,
		"bad chain":    `{"layers":[{"inputs":1,"outputs":2,"weights":[1,2],"bias":[0,0],"activation":"identity"},{"inputs":3,"outputs":1,"weights":[1,2,3],"bias":[0],"activation":"sigmoid"}]}`,
		"unknown func": `{"layers":[{"inputs":1,"outputs":1,"weights":[1],"bias":[0],"activation":"relu"}]}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := UnmarshalWeights([]byte(data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseActivation(t *testing.T) {
	tests := []struct {
		in      string
		want    Activation
		wantErr bool
	}{
		{"", Identity, false},
		{"identity", Identity, false},
		{"sigmoid", Sigmoid, false},
		{"tanh", Identity, true},
	}
	for _, tt := range tests {
		got, err := ParseActivation(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseActivation(%q) error: got %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseActivation(%q): got %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestUniformNormalizesReversedBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		v := uniform(rng, 0.25, -0.25)
		if v < -0.25 || v > 0.25 {
			t.Fatalf("uniform(0.25, -0.25) out of range: %f", v)
		}
	}
}

func BenchmarkForward(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	nn := NewNetwork(rng, racerTopology(), InitRanges{Weight: 0.75, Bias: 0.25})

	inputs := make([]float64, 21)
	for i := range inputs {
		inputs[i] = rng.Float64()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		nn.Forward(inputs)
	}
}
