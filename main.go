package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/racers/config"
	"github.com/pthm-cable/racers/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	population := flag.Int("population", 0, "Cars per generation (0 = use config)")
	timeLimit := flag.Int("time-limit", 0, "Ticks per generation (0 = use config)")
	maxGenerations := flag.Int("max-generations", 0, "Stop after N generations (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	archive := flag.String("archive", "", "SQLite file to archive each generation's champion in")
	resume := flag.String("resume", "", "SQLite archive to seed the first generation from")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (1-10)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *population > 0 {
		cfg.Population.Size = *population
	}
	if *timeLimit > 0 {
		cfg.Population.TimeLimit = *timeLimit
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid settings", "error", err)
		os.Exit(1)
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Config:         cfg,
		Seed:           rngSeed,
		OutputDir:      *outputDir,
		ArchivePath:    *archive,
		ResumePath:     *resume,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
		LapTable:       os.Stderr,
	}

	if *headless {
		os.Exit(runHeadless(opts, *maxGenerations))
	}
	os.Exit(runGraphical(opts, *maxGenerations))
}

// runHeadless runs generations without a window and returns the exit code.
func runHeadless(opts game.Options, maxGenerations int) int {
	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return 1
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"population", opts.Config.Population.Size,
		"time_limit", opts.Config.Population.TimeLimit,
		"max_generations", maxGenerations,
		"steps_per_update", opts.StepsPerUpdate,
	)

	start := time.Now()
	for maxGenerations == 0 || g.Generation() < maxGenerations {
		if err := g.UpdateHeadless(); err != nil {
			return 1
		}
	}

	elapsed := time.Since(start)
	slog.Info("max generations reached",
		"generations", g.Generation(),
		"ticks", humanize.Comma(int64(g.TotalTicks())),
		"elapsed", elapsed.Round(time.Millisecond).String(),
		"ticks_per_sec", humanize.Comma(int64(float64(g.TotalTicks())/max(elapsed.Seconds(), 1e-9))),
	)
	return 0
}

// runGraphical opens the window and runs the menu and simulation loop.
func runGraphical(opts game.Options, maxGenerations int) int {
	cfg := opts.Config
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Racers")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	// Escape clears the inspector selection instead of closing the window.
	rl.SetExitKey(0)

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return 1
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		if g.Err() != nil {
			return 1
		}
		g.Draw()

		if maxGenerations > 0 && g.Generation() >= maxGenerations {
			slog.Info("max generations reached", "generations", g.Generation())
			break
		}
	}
	return 0
}
