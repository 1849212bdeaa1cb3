// Package game is the racers application shell: a main menu, the running
// simulation with its camera, HUD and inspector, and a headless mode that
// runs generations without a window.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/racers/camera"
	"github.com/pthm-cable/racers/config"
	"github.com/pthm-cable/racers/evolution"
	"github.com/pthm-cable/racers/inspector"
	"github.com/pthm-cable/racers/neural"
	"github.com/pthm-cable/racers/storage"
	"github.com/pthm-cable/racers/telemetry"
	"github.com/pthm-cable/racers/track"
	"github.com/pthm-cable/racers/ui"
)

// State is the screen the application is on.
type State int

const (
	StateMenu State = iota
	StateRunning
)

// Game holds the complete application state.
type Game struct {
	cfg   *config.Config
	opts  Options
	rng   *rand.Rand
	track *track.Track
	state State

	// Current run, nil on the menu
	pop   *evolution.Population
	runID string

	// Collaborators shared by every run
	out   *telemetry.OutputManager
	board *telemetry.Leaderboard
	laps  *telemetry.LapLog
	store storage.Store
	perf  *telemetry.PerfCollector
	seed  *neural.Network // resumed champion, nil = random start

	// UI (nil in headless mode)
	camera       *camera.Camera
	menu         *ui.Menu
	hud          *ui.HUD
	leaderboard  *ui.LeaderboardPanel
	uiOverlays   *ui.OverlayRegistry
	controls     *ui.ControlsPanel
	inspector    *inspector.Inspector
	fitnessPanel *inspector.FitnessPanel
	uiRenderer   *ui.Renderer

	generationPanel ui.PanelDescriptor
	lastStats       *telemetry.GenerationStats

	// Requests raised while drawing raygui widgets, handled next Update
	pendingRun *ui.MenuSettings
	pendingEnd bool

	paused         bool
	stepsPerUpdate int
	totalTicks     uint64

	screenWidth, screenHeight float32

	err error // first fatal error
}

// NewGameWithOptions creates a game. Headless games start a run immediately
// with the configured population size and time limit; graphical games start
// on the menu and need an open window.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	opts.StepsPerUpdate = clampSteps(opts.StepsPerUpdate)

	tr, err := track.FromConfig(cfg.Track)
	if err != nil {
		return nil, fmt.Errorf("building track: %w", err)
	}

	g := &Game{
		cfg:            cfg,
		opts:           opts,
		rng:            rand.New(rand.NewSource(opts.Seed)),
		track:          tr,
		state:          StateMenu,
		board:          telemetry.NewLeaderboard(cfg.Leaderboard.Capacity),
		perf:           telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		stepsPerUpdate: opts.StepsPerUpdate,
		screenWidth:    float32(cfg.Screen.Width),
		screenHeight:   float32(cfg.Screen.Height),
	}

	if err := g.openCollaborators(); err != nil {
		g.Unload()
		return nil, err
	}

	if opts.Headless {
		if err := g.startRun(cfg.Population.Size, cfg.Population.TimeLimit); err != nil {
			g.Unload()
			return nil, err
		}
		return g, nil
	}

	g.screenWidth = float32(rl.GetScreenWidth())
	g.screenHeight = float32(rl.GetScreenHeight())
	g.initUI()
	return g, nil
}

// initUI creates the raylib-side components.
func (g *Game) initUI() {
	w, h := int32(g.screenWidth), int32(g.screenHeight)
	g.camera = camera.New(g.screenWidth, g.screenHeight, g.cfg.Derived.ArenaW32, g.cfg.Derived.ArenaH32)
	g.menu = ui.NewMenu(ui.MenuSettings{
		Population: g.cfg.Population.Size,
		TimeLimit:  g.cfg.Population.TimeLimit,
	})
	g.hud = ui.NewHUD()
	g.leaderboard = ui.NewLeaderboardPanel(260)
	g.uiOverlays = ui.NewOverlayRegistry()
	g.controls = ui.NewControlsPanel(10, 120, 260)
	g.inspector = inspector.NewInspector(w, h)
	g.fitnessPanel = inspector.NewFitnessPanel(w, h)
	g.uiRenderer = ui.NewRenderer()
	g.generationPanel = ui.GenerationPanelDescriptor()
}

// Update handles input and advances the simulation by the current number
// of steps per frame.
func (g *Game) Update() {
	g.handleResize()
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if g.pendingRun != nil {
		s := *g.pendingRun
		g.pendingRun = nil
		if err := g.startRun(s.Population, s.TimeLimit); err != nil {
			g.fail(err)
			return
		}
	}
	if g.pendingEnd {
		g.pendingEnd = false
		g.endRun()
	}

	if g.state != StateRunning {
		return
	}

	g.handleInput()

	if !g.paused {
		for i := 0; i < g.stepsPerUpdate; i++ {
			if err := g.step(); err != nil {
				g.fail(err)
				return
			}
		}
	}

	if g.camera.Following {
		if s, ok := g.pop.State(g.pop.BestCar()); ok {
			g.camera.Follow(s.Pos.X, s.Pos.Y, 0.1)
		}
	}
	g.inspector.Update(g.pop)
}

// UpdateHeadless runs StepsPerUpdate ticks without input or rendering.
func (g *Game) UpdateHeadless() error {
	if g.err != nil {
		return g.err
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		if err := g.step(); err != nil {
			g.fail(err)
			return g.err
		}
	}
	return nil
}

// step advances the running population by one tick.
func (g *Game) step() error {
	if err := g.pop.Tick(g.cfg.Derived.DT32); err != nil {
		return err
	}
	g.totalTicks++

	if g.laps.Err != nil {
		return fmt.Errorf("recording lap: %w", g.laps.Err)
	}
	if g.err != nil {
		return g.err
	}

	if n := g.cfg.Telemetry.PerfLogInterval; n > 0 && g.totalTicks%uint64(n) == 0 {
		g.logPerfStats()
	}
	return nil
}

// fail records the first fatal error.
func (g *Game) fail(err error) {
	if g.err == nil {
		g.err = err
		slog.Error("simulation stopped", "error", err)
	}
}

// Err returns the error that stopped the simulation, if any.
func (g *Game) Err() error { return g.err }

// State returns the current screen.
func (g *Game) State() State { return g.state }

// Generation returns the running generation, or 0 on the menu.
func (g *Game) Generation() int {
	if g.pop == nil {
		return 0
	}
	return g.pop.Generation()
}

// TotalTicks returns the ticks simulated across all runs.
func (g *Game) TotalTicks() uint64 { return g.totalTicks }

// RunID identifies the current run in the champion archive.
func (g *Game) RunID() string { return g.runID }

// Store returns the champion archive.
func (g *Game) Store() storage.Store { return g.store }

// Unload stops the current run and closes every output.
func (g *Game) Unload() {
	g.endRun()
	if g.store != nil {
		if err := g.store.Close(); err != nil {
			slog.Error("closing champion archive", "error", err)
		}
	}
	if err := g.out.Close(); err != nil {
		slog.Error("closing output", "error", err)
	}
}
