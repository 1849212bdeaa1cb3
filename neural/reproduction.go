package neural

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrTopologyMismatch is returned when recombining networks of different shapes.
var ErrTopologyMismatch = errors.New("neural: parents have different topologies")

// MutationRates configures the two-stage mutation operator.
// Each gene is independently replaced with probability *Replace and then
// independently perturbed with probability *Perturb; both may fire.
type MutationRates struct {
	WeightReplace float64
	WeightPerturb float64
	BiasReplace   float64
	BiasPerturb   float64

	WeightRange  float64 // replacement weights ~ U[-WeightRange, WeightRange]
	BiasRange    float64 // replacement biases ~ U[-BiasRange, BiasRange]
	PerturbRange float64 // perturbations ~ U[-PerturbRange, PerturbRange]
}

// MutationStats counts the genes a mutation pass touched.
type MutationStats struct {
	Replaced  int
	Perturbed int
}

// Add accumulates other into s.
func (s *MutationStats) Add(other MutationStats) {
	s.Replaced += other.Replaced
	s.Perturbed += other.Perturbed
}

// Cut holds the inclusive crossover indices for one layer.
type Cut struct {
	Weight int
	Bias   int
}

// Reproduce builds a child from two parents: a structural copy of a, single-point
// crossover from b on every layer, then mutation. Random draws are made layer by
// layer (weight cut, bias cut, weight mutations, bias mutations).
func Reproduce(a, b *Network, rng *rand.Rand, rates MutationRates) (*Network, MutationStats, error) {
	var stats MutationStats
	if !a.SameTopology(b) {
		return nil, stats, ErrTopologyMismatch
	}

	child := a.Clone()
	for k := range child.Layers {
		l := &child.Layers[k]
		crossLayer(l, &b.Layers[k], randomCut(rng, l))
		stats.Add(mutateLayer(l, rng, rates))
	}
	return child, stats, nil
}

// Crossover returns a copy of a whose genes at flattened positions [0, cut]
// come from b, with an independent random cut per layer and gene kind.
func Crossover(a, b *Network, rng *rand.Rand) (*Network, error) {
	if !a.SameTopology(b) {
		return nil, ErrTopologyMismatch
	}
	cuts := make([]Cut, len(a.Layers))
	for k := range a.Layers {
		cuts[k] = randomCut(rng, &a.Layers[k])
	}
	return CrossoverAt(a, b, cuts)
}

// CrossoverAt is Crossover with fixed cut points, one per layer.
func CrossoverAt(a, b *Network, cuts []Cut) (*Network, error) {
	if !a.SameTopology(b) {
		return nil, ErrTopologyMismatch
	}
	if len(cuts) != len(a.Layers) {
		return nil, fmt.Errorf("neural: got %d cuts for %d layers", len(cuts), len(a.Layers))
	}
	child := a.Clone()
	for k := range child.Layers {
		l := &child.Layers[k]
		c := cuts[k]
		if c.Weight < 0 || c.Weight >= len(l.Weights) || c.Bias < 0 || c.Bias >= len(l.Bias) {
			return nil, fmt.Errorf("neural: cut %+v out of range for layer %d", c, k)
		}
		crossLayer(l, &b.Layers[k], c)
	}
	return child, nil
}

// Mutate applies the two-stage mutation to every gene in place.
func (nn *Network) Mutate(rng *rand.Rand, rates MutationRates) MutationStats {
	var stats MutationStats
	for k := range nn.Layers {
		stats.Add(mutateLayer(&nn.Layers[k], rng, rates))
	}
	return stats
}

// randomCut draws a uniform cut in [0, n-1] for weights and biases.
func randomCut(rng *rand.Rand, l *Layer) Cut {
	return Cut{
		Weight: rng.Intn(len(l.Weights)),
		Bias:   rng.Intn(len(l.Bias)),
	}
}

// crossLayer overwrites dst genes [0, cut] with src's.
func crossLayer(dst, src *Layer, c Cut) {
	copy(dst.Weights[:c.Weight+1], src.Weights[:c.Weight+1])
	copy(dst.Bias[:c.Bias+1], src.Bias[:c.Bias+1])
}

func mutateLayer(l *Layer, rng *rand.Rand, r MutationRates) MutationStats {
	var stats MutationStats
	for i := range l.Weights {
		if rng.Float64() < r.WeightReplace {
			l.Weights[i] = uniform(rng, -r.WeightRange, r.WeightRange)
			stats.Replaced++
		}
		if rng.Float64() < r.WeightPerturb {
			l.Weights[i] += uniform(rng, -r.PerturbRange, r.PerturbRange)
			stats.Perturbed++
		}
	}
	for i := range l.Bias {
		if rng.Float64() < r.BiasReplace {
			l.Bias[i] = uniform(rng, -r.BiasRange, r.BiasRange)
			stats.Replaced++
		}
		if rng.Float64() < r.BiasPerturb {
			l.Bias[i] += uniform(rng, -r.PerturbRange, r.PerturbRange)
			stats.Perturbed++
		}
	}
	return stats
}
