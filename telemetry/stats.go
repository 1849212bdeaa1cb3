package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// GenerationStats summarises one finished generation.
type GenerationStats struct {
	Generation  int     `csv:"generation"`
	Ticks       int     `csv:"ticks"`
	Population  int     `csv:"population"`
	BestCar     int     `csv:"best_car"`
	BestFitness int     `csv:"best_fitness"`
	MeanFitness float64 `csv:"mean_fitness"`
	StdFitness  float64 `csv:"std_fitness"`
	P10Fitness  float64 `csv:"p10_fitness"`
	P50Fitness  float64 `csv:"p50_fitness"`
	P90Fitness  float64 `csv:"p90_fitness"`
	Crashed     int     `csv:"crashed"`
	Laps        int     `csv:"laps"`
	MaxLaps     int     `csv:"max_laps"`
}

// CarResult is one car's end-of-generation outcome.
type CarResult struct {
	ID      int
	Fitness int // final fitness
	Laps    int
	Crashed bool
}

// ComputeGenerationStats aggregates car results. The best car is the first
// one with the highest fitness.
func ComputeGenerationStats(generation, ticks int, cars []CarResult) GenerationStats {
	s := GenerationStats{
		Generation: generation,
		Ticks:      ticks,
		Population: len(cars),
	}
	if len(cars) == 0 {
		return s
	}

	values := make([]float64, len(cars))
	for i, c := range cars {
		values[i] = float64(c.Fitness)
		if i == 0 || c.Fitness > s.BestFitness {
			s.BestFitness = c.Fitness
			s.BestCar = c.ID
		}
		if c.Crashed {
			s.Crashed++
		}
		s.Laps += c.Laps
		if c.Laps > s.MaxLaps {
			s.MaxLaps = c.Laps
		}
	}

	s.MeanFitness, s.StdFitness = stat.PopMeanStdDev(values, nil)

	sort.Float64s(values)
	s.P10Fitness = Percentile(values, 0.10)
	s.P50Fitness = Percentile(values, 0.50)
	s.P90Fitness = Percentile(values, 0.90)

	return s
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("ticks", s.Ticks),
		slog.Int("population", s.Population),
		slog.Int("best_car", s.BestCar),
		slog.Int("best_fitness", s.BestFitness),
		slog.Float64("mean_fitness", s.MeanFitness),
		slog.Float64("std_fitness", s.StdFitness),
		slog.Float64("p50_fitness", s.P50Fitness),
		slog.Int("crashed", s.Crashed),
		slog.Int("laps", s.Laps),
		slog.Int("max_laps", s.MaxLaps),
	)
}
