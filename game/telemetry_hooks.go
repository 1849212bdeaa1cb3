package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/racers/evolution"
	"github.com/pthm-cable/racers/storage"
)

// onGeneration is called by the population after every finished generation,
// before the next one starts driving.
func (g *Game) onGeneration(res *evolution.GenerationResult) {
	stats := res.Stats
	g.lastStats = &stats

	slog.Info("breeding",
		"generation", res.Generation,
		"replaced", res.Mutations.Replaced,
		"perturbed", res.Mutations.Perturbed,
	)

	if err := g.out.WriteGeneration(stats); err != nil {
		g.fail(err)
	}

	best := res.Best()
	champ := storage.Champion{
		RunID:      g.runID,
		Generation: res.Generation,
		CarID:      best.ID,
		Fitness:    best.Fitness,
		Network:    best.Brain,
		CreatedAt:  time.Now(),
	}
	if err := g.store.SaveChampion(context.Background(), champ); err != nil {
		g.fail(fmt.Errorf("saving champion: %w", err))
	}

	if g.fitnessPanel != nil {
		g.fitnessPanel.Record(stats)
	}
}

// logPerfStats logs the rolling tick timings and appends them to perf.csv.
func (g *Game) logPerfStats() {
	stats := g.perf.Stats()
	stats.LogStats()
	if err := g.out.WritePerf(stats, g.Generation()); err != nil {
		g.fail(err)
	}
}
