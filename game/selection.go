package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// handleSelection forwards clicks to the inspector, converting the cursor to
// arena coordinates. Clicks on the End button never select a car.
func (g *Game) handleSelection() {
	mouse := rl.GetMousePosition()
	if rl.CheckCollisionPointRec(mouse, endButtonBounds(g)) {
		return
	}
	wx, wy := g.camera.ScreenToWorld(mouse.X, mouse.Y)
	g.inspector.HandleInput(mouse.X, mouse.Y, wx, wy, g.visibleCars(), hitRadius(g.pop.Params().Car))
}
