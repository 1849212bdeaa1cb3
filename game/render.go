package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/racers/evolution"
	"github.com/pthm-cable/racers/ui"
)

// Draw renders the current screen.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(colorGrass)

	switch g.state {
	case StateMenu:
		g.drawMenu()
	case StateRunning:
		g.drawRun()
	}

	rl.EndDrawing()
}

// drawMenu draws the main menu. A Run press starts the run next Update.
func (g *Game) drawMenu() {
	if s, ok := g.menu.Draw(int32(g.screenWidth), int32(g.screenHeight)); ok {
		g.pendingRun = &s
	}
}

// drawRun draws the track, the generation watermark, the cars and the UI.
func (g *Game) drawRun() {
	cam := camera2D(g.camera)
	cars := g.pop.Cars()

	rl.BeginMode2D(cam)
	g.drawTrack()
	g.drawTrackOverlays()
	rl.EndMode2D()

	g.hud.DrawWatermark(g.pop.Generation(), int32(g.screenWidth), int32(g.screenHeight))

	rl.BeginMode2D(cam)
	g.drawCars(filterCars(cars, g.uiOverlays.IsEnabled(ui.OverlayHideCrashed)))
	if g.uiOverlays.IsEnabled(ui.OverlaySensorRays) {
		g.drawBestCarRays()
	}
	g.inspector.DrawSelectionHighlight(g.pop)
	rl.EndMode2D()

	g.drawUI(cars)
}

// drawTrack draws the tarmac as one thick line per sector with rounded
// joints, and the start marker.
func (g *Game) drawTrack() {
	width := g.track.Width()
	for i := 0; i < g.track.NumSectors(); i++ {
		seg := g.track.Segment(i)
		rl.DrawLineEx(vec(seg.A), vec(seg.B), width, colorTarmac)
		rl.DrawCircleV(vec(seg.A), width/2, colorTarmac)
	}
	rl.DrawCircleV(vec(g.track.Segment(0).Midpoint()), 8, colorStart)
}

// drawCars draws every car as a rotated hitbox. The best car is drawn last
// so it stays on top.
func (g *Game) drawCars(cars []evolution.CarView) {
	p := g.pop.Params().Car
	bestIdx := -1
	for i, c := range cars {
		if c.Best {
			bestIdx = i
			continue
		}
		rect, origin, deg := carRect(c, p)
		rl.DrawRectanglePro(rect, origin, deg, carColor(c))
	}
	if bestIdx >= 0 {
		c := cars[bestIdx]
		rect, origin, deg := carRect(c, p)
		rl.DrawRectanglePro(rect, origin, deg, carColor(c))
	}
}

// visibleCars returns the cars currently drawn, for click selection.
func (g *Game) visibleCars() []evolution.CarView {
	return filterCars(g.pop.Cars(), g.uiOverlays.IsEnabled(ui.OverlayHideCrashed))
}

// drawUI draws the screen-space HUD and panels.
func (g *Game) drawUI(cars []evolution.CarView) {
	sw, sh := int32(g.screenWidth), int32(g.screenHeight)

	best := g.pop.BestCar()
	bestFitness := 0
	if prog, ok := g.pop.Car(best); ok {
		bestFitness = prog.Fitness
	}

	g.hud.Draw(ui.HUDData{
		Title:       "Racers",
		Generation:  g.pop.Generation(),
		Tick:        g.pop.Ticks(),
		TimeLimit:   g.pop.TimeLimit(),
		TotalTicks:  g.totalTicks,
		Speed:       g.stepsPerUpdate,
		FPS:         rl.GetFPS(),
		Paused:      g.paused,
		Following:   g.camera.Following,
		Alive:       countAlive(cars),
		Population:  g.pop.Size(),
		BestCar:     best,
		BestFitness: bestFitness,
	})
	g.hud.DrawControls(ui.KeyLegend)
	g.hud.DrawTimerBar(g.pop.Progress(), sw, sh)

	if _, selected := g.inspector.Selected(); selected {
		g.inspector.Draw(g.pop)
	} else {
		leaderboard := g.uiOverlays.IsEnabled(ui.OverlayLeaderboard)
		y := int32(10)
		if leaderboard {
			y = g.leaderboard.Draw(g.board.Entries(), sw, y) + 10
		}
		if g.uiOverlays.IsEnabled(ui.OverlayGeneration) && g.lastStats != nil {
			pd := g.generationPanel
			if leaderboard {
				g.uiRenderer.DrawPanelAt(pd, g.lastStats, sw-pd.Width-10, y)
			} else {
				g.uiRenderer.DrawPanelDescriptor(pd, g.lastStats, sw, sh)
			}
		}
	}

	if g.uiOverlays.IsEnabled(ui.OverlayFitnessPlot) {
		g.fitnessPanel.Draw()
	}
	g.controls.Draw(g.uiOverlays)

	if ui.DrawEndButton(sw, sh) {
		g.pendingEnd = true
	}
}
