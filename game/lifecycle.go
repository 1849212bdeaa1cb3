package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/racers/evolution"
	"github.com/pthm-cable/racers/storage"
	"github.com/pthm-cable/racers/telemetry"
)

// openCollaborators opens the CSV output, the champion archive and, when
// resuming, loads the champion the first generation is seeded from.
func (g *Game) openCollaborators() error {
	out, err := telemetry.NewOutputManager(g.opts.OutputDir)
	if err != nil {
		return err
	}
	g.out = out
	if err := g.out.WriteConfig(g.cfg); err != nil {
		return fmt.Errorf("writing config snapshot: %w", err)
	}

	g.laps = &telemetry.LapLog{Board: g.board, Out: g.out, Table: g.opts.LapTable}

	kind := "memory"
	if g.opts.ArchivePath != "" {
		kind = "sqlite"
	}
	store, err := storage.NewStore(kind, g.opts.ArchivePath)
	if err != nil {
		return err
	}
	if err := store.Init(context.Background()); err != nil {
		return fmt.Errorf("opening champion archive: %w", err)
	}
	g.store = store

	if g.opts.ResumePath != "" {
		if err := g.loadResumeSeed(g.opts.ResumePath); err != nil {
			return err
		}
	}
	return nil
}

// loadResumeSeed reads the best champion of any run from a SQLite archive.
func (g *Game) loadResumeSeed(path string) error {
	ctx := context.Background()
	archive := storage.NewSQLiteStore(path)
	if err := archive.Init(ctx); err != nil {
		return fmt.Errorf("opening resume archive: %w", err)
	}
	defer archive.Close()

	champ, ok, err := archive.BestChampion(ctx, "")
	if err != nil {
		return fmt.Errorf("reading resume archive: %w", err)
	}
	if !ok {
		return fmt.Errorf("resume archive %s has no champions", path)
	}
	g.seed = champ.Network

	slog.Info("resuming from champion",
		"run_id", champ.RunID,
		"generation", champ.Generation,
		"car", champ.CarID,
		"fitness", champ.Fitness,
	)
	return nil
}

// startRun creates a fresh population and resets everything tied to the
// previous run.
func (g *Game) startRun(size, timeLimit int) error {
	g.endRun()

	opts, err := evolution.OptionsFromConfig(g.cfg)
	if err != nil {
		return err
	}
	opts.Size = size
	opts.TimeLimit = timeLimit
	opts.Seed = g.seed
	opts.Laps = g.laps
	opts.Logger = g.out
	opts.OnGeneration = g.onGeneration
	opts.Perf = g.perf

	pop, err := evolution.NewPopulation(g.track, opts, g.rng)
	if err != nil {
		return fmt.Errorf("creating population: %w", err)
	}

	g.pop = pop
	g.runID = storage.NewRunID()
	g.board.Reset()
	g.lastStats = nil
	g.paused = false
	g.state = StateRunning

	if g.fitnessPanel != nil {
		g.fitnessPanel.Reset()
	}
	if g.inspector != nil {
		g.inspector.Deselect()
	}
	if g.camera != nil {
		g.camera.Reset()
	}

	slog.Info("run_started",
		"run_id", g.runID,
		"population", size,
		"time_limit", timeLimit,
		"seeded", g.seed != nil,
	)
	return nil
}

// endRun discards the current population and returns to the menu.
func (g *Game) endRun() {
	if g.pop == nil {
		return
	}
	slog.Info("run_ended", "run_id", g.runID, "generation", g.pop.Generation())
	g.pop.Close()
	g.pop = nil
	g.state = StateMenu
}
