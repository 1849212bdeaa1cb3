package main

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/pthm-cable/racers/config"
	"github.com/pthm-cable/racers/evolution"
	"github.com/pthm-cable/racers/track"
)

// FitnessEvaluator runs headless evolutions and scores parameter vectors.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	seeds       []int64
	baseConfig  *config.Config

	mu        sync.Mutex
	lastTicks int
	lastBest  float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, generations int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		seeds:       seeds,
		baseConfig:  baseCfg,
	}
}

// LastRun returns the ticks simulated and the mean best fitness of the most
// recent Evaluate call.
func (fe *FitnessEvaluator) LastRun() (ticks int, meanBest float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastTicks, fe.lastBest
}

// runResult holds the outcome of one seed.
type runResult struct {
	bestFitness int // highest generation-best fitness seen
	ticks       int
	err         error
}

// Evaluate computes the objective for a raw parameter vector (lower = better):
// the negated best fitness reached, averaged over seeds. Seeds run in
// parallel.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runEvolution(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	ticks := 0
	for _, r := range results {
		if r.err != nil {
			// An unusable configuration scores as badly as possible.
			return math.Inf(1)
		}
		total += float64(r.bestFitness)
		ticks += r.ticks
	}
	mean := total / float64(len(results))

	fe.mu.Lock()
	fe.lastTicks = ticks
	fe.lastBest = mean
	fe.mu.Unlock()

	return -mean
}

// runEvolution runs fe.generations generations with one seed.
func (fe *FitnessEvaluator) runEvolution(cfg *config.Config, seed int64) runResult {
	tr, err := track.FromConfig(cfg.Track)
	if err != nil {
		return runResult{err: err}
	}
	opts, err := evolution.OptionsFromConfig(cfg)
	if err != nil {
		return runResult{err: err}
	}
	// Seeds already run in parallel.
	opts.Workers = 1

	res := runResult{bestFitness: math.MinInt}
	opts.OnGeneration = func(r *evolution.GenerationResult) {
		res.bestFitness = max(res.bestFitness, r.Best().Fitness)
	}

	pop, err := evolution.NewPopulation(tr, opts, rand.New(rand.NewSource(seed)))
	if err != nil {
		return runResult{err: err}
	}
	defer pop.Close()

	for pop.Generation() < fe.generations {
		if err := pop.Tick(cfg.Derived.DT32); err != nil {
			return runResult{err: fmt.Errorf("seed %d: %w", seed, err)}
		}
		res.ticks++
	}
	return res
}
