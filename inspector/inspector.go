// Package inspector draws the car inspector: click a car to see its motion,
// lap progress, ray sensor readings and a live view of its controller.
package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/racers/evolution"
	"github.com/pthm-cable/racers/neural"
	"github.com/pthm-cable/racers/systems"
	"github.com/pthm-cable/racers/track"
)

// Panel dimensions
const (
	PanelWidth    = 340
	PanelPadding  = 10
	HeaderHeight  = 30
	NetworkHeight = 220
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorSection     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
	ColorRay         = rl.Color{R: 120, G: 220, B: 255, A: 140}
	ColorRayHit      = rl.Color{R: 255, G: 120, B: 80, A: 220}
)

// Source is what the inspector reads a car from. *evolution.Population
// satisfies it.
type Source interface {
	State(id int) (systems.CarState, bool)
	Brain(id int) *neural.Network
	Params() systems.Params
	Track() *track.Track
}

// Inspector manages car selection and panel rendering.
type Inspector struct {
	selected     int // car id, 0 when nothing is selected
	panelX       int32
	panelY       int32
	screenWidth  int32
	screenHeight int32

	// Recomputed by Update for the selected car
	state  systems.CarState
	rays   []float64
	inputs []float64
	trace  [][]float64
	labels []string
}

// NewInspector creates a new inspector instance.
func NewInspector(screenWidth, screenHeight int32) *Inspector {
	ins := &Inspector{}
	ins.Resize(screenWidth, screenHeight)
	return ins
}

// Resize keeps the panel anchored to the right edge.
func (ins *Inspector) Resize(screenWidth, screenHeight int32) {
	ins.screenWidth = screenWidth
	ins.screenHeight = screenHeight
	ins.panelX = screenWidth - PanelWidth - 10
	ins.panelY = 10
}

// PickCar returns the car whose centre is closest to (wx, wy) within radius.
func PickCar(wx, wy float32, cars []evolution.CarView, radius float32) (int, bool) {
	best := 0
	bestDist := radius * radius
	for _, c := range cars {
		dx, dy := wx-c.X, wy-c.Y
		if d := dx*dx + dy*dy; d <= bestDist {
			best, bestDist = c.ID, d
		}
	}
	return best, best != 0
}

// HandleInput processes clicks. mouseX/mouseY are screen coordinates, used
// for the panel; worldX/worldY are the same point in the arena.
func (ins *Inspector) HandleInput(mouseX, mouseY, worldX, worldY float32, cars []evolution.CarView, hitRadius float32) {
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) || rl.IsKeyPressed(rl.KeyEscape) {
		ins.Deselect()
		return
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}

	if ins.selected != 0 {
		closeX := ins.panelX + PanelWidth - 25
		closeY := ins.panelY + 5
		if inRect(mouseX, mouseY, closeX, closeY, 20, 20) {
			ins.Deselect()
			return
		}
		if inRect(mouseX, mouseY, ins.panelX, ins.panelY, PanelWidth, ins.calculatePanelHeight()) {
			return
		}
	}

	if id, ok := PickCar(worldX, worldY, cars, hitRadius); ok {
		ins.Select(id)
	}
}

// Select inspects car id.
func (ins *Inspector) Select(id int) {
	ins.selected = id
	ins.trace = nil
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.selected = 0
	ins.trace = nil
}

// Selected returns the selected car id.
func (ins *Inspector) Selected() (int, bool) {
	return ins.selected, ins.selected != 0
}

// Update re-reads the selected car and recomputes what its sensors see and
// how its controller responds. Cars are renumbered every generation, so the
// selection follows the number, not the individual.
func (ins *Inspector) Update(src Source) {
	if ins.selected == 0 {
		return
	}
	state, ok := src.State(ins.selected)
	if !ok {
		ins.Deselect()
		return
	}
	ins.state = state

	p := src.Params()
	if len(ins.rays) != p.Sensors.NumRays {
		ins.rays = make([]float64, p.Sensors.NumRays)
		ins.inputs = make([]float64, p.NumInputs())
		ins.labels = InputLabels(p.Sensors.NumRays)
	}
	systems.CastRays(ins.rays, src.Track(), state.Pos.Vec(), state.Rot.Heading, state.Prog.Sector, p.Sensors)
	inputs := systems.FillInputs(ins.inputs, ins.rays, state.Vel, state.Acc, state.Rot, p.Car)

	ins.trace = nil
	if brain := src.Brain(ins.selected); brain != nil {
		if trace, err := brain.ForwardTrace(inputs); err == nil {
			ins.trace = trace
		}
	}
}

// Draw renders the inspector panel if a car is selected.
func (ins *Inspector) Draw(src Source) {
	if ins.selected == 0 {
		return
	}

	panelHeight := ins.calculatePanelHeight()

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, panelHeight, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(panelHeight)},
		1,
		ColorPanelBorder,
	)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText(fmt.Sprintf("CAR #%d", ins.selected), ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	x := ins.panelX + PanelPadding
	y := ins.panelY + HeaderHeight + PanelPadding
	s := &ins.state

	ins.drawSectionHeader(x, y, "MOTION")
	y += 20
	y += DrawLabel(x, y, "Position", fmt.Sprintf("(%.0f, %.0f)", s.Pos.X, s.Pos.Y), Hint{})
	y += DrawBar(x, y, "Speed", systems.Speed(s.Vel), Hint{Max: src.Params().Car.MaxSpeed, Format: "%.0f"})
	y += DrawFields(x, y, &s.Rot)
	y += 4

	ins.drawSectionHeader(x, y, "PROGRESS")
	y += 20
	y += DrawFields(x, y, &s.Prog)
	y += 4

	ins.drawSectionHeader(x, y, "SENSORS")
	y += 20
	y += DrawBarGroup(x, y, "Rays", Float32s(ins.rays), Hint{Max: 1})
	y += 4

	ins.drawSectionHeader(x, y, "CONTROLLER")
	y += 20
	DrawNetworkDiagram(x, y, PanelWidth-2*PanelPadding, NetworkHeight, src.Brain(ins.selected), ins.trace, ins.labels)
}

// drawSectionHeader renders a section title.
func (ins *Inspector) drawSectionHeader(x, y int32, title string) {
	rl.DrawRectangle(x-2, y-2, PanelWidth-2*PanelPadding+4, 18, ColorSection)
	rl.DrawText(title, x+2, y, 14, ColorSectionText)
}

// calculatePanelHeight computes the panel height from the rows Draw emits.
func (ins *Inspector) calculatePanelHeight() int32 {
	height := int32(HeaderHeight + PanelPadding)
	height += 20 + 18 + 18 + 44 + 18 + 4 // motion: header, position, speed, heading, steer
	height += 20 + 7*18 + 4               // progress fields
	height += 20 + 34 + 4                 // rays
	height += 20 + NetworkHeight          // controller
	return height + PanelPadding
}

// DrawSelectionHighlight draws, in world space, a ring around the selected
// car and the rays it is casting.
func (ins *Inspector) DrawSelectionHighlight(src Source) {
	if ins.selected == 0 {
		return
	}
	p := src.Params()
	pos := ins.state.Pos.Vec()

	DrawRays(pos, ins.state.Rot.Heading, ins.rays, p.Sensors)

	radius := max(p.Car.HitboxW, p.Car.HitboxH) * 0.7
	rl.DrawCircleLines(int32(pos.X), int32(pos.Y), radius, rl.Yellow)
}

// DrawRays draws normalised ray readings cast from origin, in world space.
// Rays that hit a rail end in a dot.
func DrawRays(origin track.Vec2, heading float32, rays []float64, s systems.SensorParams) {
	startDeg := heading*180/math.Pi - s.FOV/2
	step := s.FOV / float32(s.NumRays)
	for i, d := range rays {
		dir := track.FromAngle((startDeg + step*float32(i)) * math.Pi / 180)
		end := origin.Add(dir.Scale(float32(d) * s.Reference))
		rl.DrawLineEx(rl.Vector2{X: origin.X, Y: origin.Y}, rl.Vector2{X: end.X, Y: end.Y}, 1, ColorRay)
		if d < 1 {
			rl.DrawCircleV(rl.Vector2{X: end.X, Y: end.Y}, 3, ColorRayHit)
		}
	}
}

func inRect(px, py float32, x, y, w, h int32) bool {
	return int32(px) >= x && int32(px) <= x+w && int32(py) >= y && int32(py) <= y+h
}
