package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/racers/inspector"
	"github.com/pthm-cable/racers/systems"
	"github.com/pthm-cable/racers/ui"
)

// Overlay colors
var (
	colorCheckpoint = rl.Color{R: 255, G: 255, B: 255, A: 160}
	colorRailLeft   = rl.Color{R: 230, G: 60, B: 60, A: 220}
	colorRailRight  = rl.Color{R: 60, G: 90, B: 230, A: 220}
	colorSectorID   = rl.Color{R: 250, G: 250, B: 250, A: 230}
)

// handleOverlayKeys checks for overlay toggle key presses.
func (g *Game) handleOverlayKeys() {
	for _, desc := range g.uiOverlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			g.uiOverlays.Toggle(desc.ID)
		}
	}
}

// drawTrackOverlays renders the enabled track overlays in world space.
func (g *Game) drawTrackOverlays() {
	for _, id := range g.uiOverlays.EnabledOverlays() {
		switch id {
		case ui.OverlayCheckpoints:
			g.drawCheckpoints()
		case ui.OverlayRails:
			g.drawRails()
		case ui.OverlaySectorIDs:
			g.drawSectorIDs()
		}
	}
}

// drawCheckpoints draws the cross line at every waypoint after the first.
func (g *Game) drawCheckpoints() {
	for _, cp := range g.track.Checkpoints() {
		rl.DrawLineEx(vec(cp.A), vec(cp.B), 2, colorCheckpoint)
	}
}

// drawRails draws the boundary rails the ray sensors and the on-track test
// use.
func (g *Game) drawRails() {
	for i := 0; i < g.track.NumSectors(); i++ {
		r := g.track.Rails(i)
		rl.DrawLineEx(vec(r.Left.A), vec(r.Left.B), 2, colorRailLeft)
		rl.DrawLineEx(vec(r.Right.A), vec(r.Right.B), 2, colorRailRight)
	}
}

// drawSectorIDs labels every sector at its midpoint.
func (g *Game) drawSectorIDs() {
	for i := 0; i < g.track.NumSectors(); i++ {
		m := g.track.Segment(i).Midpoint()
		rl.DrawText(fmt.Sprint(i), int32(m.X)-6, int32(m.Y)-10, 20, colorSectorID)
	}
}

// drawBestCarRays draws what the current best car's sensors see.
func (g *Game) drawBestCarRays() {
	s, ok := g.pop.State(g.pop.BestCar())
	if !ok {
		return
	}
	p := g.pop.Params().Sensors
	rays := make([]float64, p.NumRays)
	systems.CastRays(rays, g.track, s.Pos.Vec(), s.Rot.Heading, s.Prog.Sector, p)
	inspector.DrawRays(s.Pos.Vec(), s.Rot.Heading, rays, p)
}
