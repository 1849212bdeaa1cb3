package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/racers/camera"
	"github.com/pthm-cable/racers/evolution"
	"github.com/pthm-cable/racers/systems"
	"github.com/pthm-cable/racers/track"
	"github.com/pthm-cable/racers/ui"
)

// Scene colors
var (
	colorGrass   = rl.Green
	colorTarmac  = rl.Color{R: 70, G: 70, B: 75, A: 255}
	colorStart   = rl.White
	colorCar     = rl.Color{R: 200, G: 40, B: 40, A: 255}
	colorBestCar = rl.Color{R: 255, G: 215, B: 0, A: 255}
)

// crashedAlpha is the opacity of cars that left the track.
const crashedAlpha = 80

// vec converts a track vector to a raylib vector.
func vec(v track.Vec2) rl.Vector2 {
	return rl.Vector2{X: v.X, Y: v.Y}
}

// clampSteps keeps steps per update in [MinStepsPerUpdate, MaxStepsPerUpdate].
func clampSteps(n int) int {
	return min(max(n, MinStepsPerUpdate), MaxStepsPerUpdate)
}

// hitRadius is how close a click must be to a car centre to select it.
func hitRadius(c systems.CarParams) float32 {
	return max(c.HitboxW, c.HitboxH) / 2
}

// carColor returns the fill for a car: gold for the best car, translucent
// once crashed.
func carColor(c evolution.CarView) rl.Color {
	col := colorCar
	if c.Best {
		col = colorBestCar
	}
	if c.Crashed {
		col.A = crashedAlpha
	}
	return col
}

// carRect returns the arguments for rl.DrawRectanglePro: a hitbox centred on
// the car with its long side along the heading, the rotation origin, and the
// rotation in degrees.
func carRect(c evolution.CarView, p systems.CarParams) (rl.Rectangle, rl.Vector2, float32) {
	rect := rl.Rectangle{X: c.X, Y: c.Y, Width: p.HitboxH, Height: p.HitboxW}
	origin := rl.Vector2{X: p.HitboxH / 2, Y: p.HitboxW / 2}
	return rect, origin, c.Heading * 180 / math.Pi
}

// camera2D builds the raylib camera for the current view.
func camera2D(c *camera.Camera) rl.Camera2D {
	return rl.Camera2D{
		Offset: rl.Vector2{X: c.ViewportW / 2, Y: c.ViewportH / 2},
		Target: rl.Vector2{X: c.X, Y: c.Y},
		Zoom:   c.Zoom,
	}
}

// endButtonBounds returns the End button rectangle for the current window.
func endButtonBounds(g *Game) rl.Rectangle {
	return ui.EndButtonBounds(int32(g.screenWidth), int32(g.screenHeight))
}

// filterCars drops crashed cars when hideCrashed is set.
func filterCars(cars []evolution.CarView, hideCrashed bool) []evolution.CarView {
	if !hideCrashed {
		return cars
	}
	out := cars[:0:0]
	for _, c := range cars {
		if !c.Crashed {
			out = append(out, c)
		}
	}
	return out
}

// countAlive returns the number of cars still driving.
func countAlive(cars []evolution.CarView) int {
	n := 0
	for _, c := range cars {
		if !c.Crashed {
			n++
		}
	}
	return n
}
