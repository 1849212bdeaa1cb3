package neural

import (
	"fmt"
	"math"
)

// Activation selects the function applied to a layer's outputs.
type Activation uint8

const (
	// Identity passes the weighted sum through unchanged.
	Identity Activation = iota
	// Sigmoid squashes into (0, 1).
	Sigmoid
)

// Apply evaluates the activation at x.
func (a Activation) Apply(x float64) float64 {
	switch a {
	case Sigmoid:
		return 1 / (1 + math.Exp(-x))
	default:
		return x
	}
}

// String returns the config/JSON name of the activation.
func (a Activation) String() string {
	switch a {
	case Identity:
		return "identity"
	case Sigmoid:
		return "sigmoid"
	default:
		return fmt.Sprintf("activation(%d)", uint8(a))
	}
}

// ParseActivation converts a config name into an Activation.
// The empty string means identity.
func ParseActivation(s string) (Activation, error) {
	switch s {
	case "", "identity", "none", "linear":
		return Identity, nil
	case "sigmoid":
		return Sigmoid, nil
	default:
		return Identity, fmt.Errorf("unknown activation %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Activation) MarshalText() ([]byte, error) {
	switch a {
	case Identity, Sigmoid:
		return []byte(a.String()), nil
	default:
		return nil, fmt.Errorf("cannot marshal %s", a)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Activation) UnmarshalText(text []byte) error {
	parsed, err := ParseActivation(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
