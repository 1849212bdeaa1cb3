package main

import (
	"github.com/pthm-cable/racers/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the mutation-rate search space. Defaults are the
// shipped rates.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "weight_replace", Path: "mutation.weight_replace_rate", Min: 0.0, Max: 0.2, Default: 0.04},
			{Name: "weight_perturb", Path: "mutation.weight_perturb_rate", Min: 0.0, Max: 0.3, Default: 0.07},
			{Name: "bias_replace", Path: "mutation.bias_replace_rate", Min: 0.0, Max: 0.2, Default: 0.03},
			{Name: "bias_perturb", Path: "mutation.bias_perturb_rate", Min: 0.0, Max: 0.3, Default: 0.05},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Mutation.WeightReplaceRate = clamped[0]
	cfg.Mutation.WeightPerturbRate = clamped[1]
	cfg.Mutation.BiasReplaceRate = clamped[2]
	cfg.Mutation.BiasPerturbRate = clamped[3]
}

// FromConfig reads the current parameter values from cfg.
func (pv *ParamVector) FromConfig(cfg *config.Config) []float64 {
	return pv.Clamp([]float64{
		cfg.Mutation.WeightReplaceRate,
		cfg.Mutation.WeightPerturbRate,
		cfg.Mutation.BiasReplaceRate,
		cfg.Mutation.BiasPerturbRate,
	})
}
