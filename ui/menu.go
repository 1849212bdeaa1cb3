package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Slider bounds for the main menu.
const (
	PopulationMin     = 10
	PopulationMax     = 300
	PopulationDefault = 220
	TimeLimitMin      = 500
	TimeLimitMax      = 3000
	TimeLimitDefault  = 1250
)

// MenuSettings are the values a run is started with.
type MenuSettings struct {
	Population int
	TimeLimit  int
}

// DefaultMenuSettings returns the slider defaults.
func DefaultMenuSettings() MenuSettings {
	return MenuSettings{Population: PopulationDefault, TimeLimit: TimeLimitDefault}
}

// Clamp snaps both values into their slider ranges.
func (s MenuSettings) Clamp() MenuSettings {
	return MenuSettings{
		Population: clampInt(s.Population, PopulationMin, PopulationMax),
		TimeLimit:  clampInt(s.TimeLimit, TimeLimitMin, TimeLimitMax),
	}
}

// Menu is the main menu: two sliders and a Run button. Sliders go back to
// their defaults every time a run starts.
type Menu struct {
	defaults MenuSettings
	settings MenuSettings
}

// NewMenu creates a menu starting at defaults, clamped to the slider ranges.
func NewMenu(defaults MenuSettings) *Menu {
	defaults = defaults.Clamp()
	return &Menu{defaults: defaults, settings: defaults}
}

// Settings returns the current slider values.
func (m *Menu) Settings() MenuSettings { return m.settings }

// Reset puts the sliders back to their defaults.
func (m *Menu) Reset() { m.settings = m.defaults }

// Draw draws the menu and reports whether Run was pressed this frame. When
// it was, the chosen settings are returned and the sliders are reset.
func (m *Menu) Draw(screenWidth, screenHeight int32) (MenuSettings, bool) {
	sw, sh := float32(screenWidth), float32(screenHeight)

	title := "Create Simulation"
	titleW := rl.MeasureText(title, 60)
	rl.DrawText(title, (screenWidth-titleW)/2, int32(sh*0.15), 60, rl.Black)

	labelX := int32(sw * 0.1)
	sliderX := sw * 0.45
	sliderW := sw * 0.35
	rowY := sh * 0.42

	rl.DrawText("Population Size:", labelX, int32(rowY), 28, rl.Black)
	pop := gui.SliderBar(
		rl.Rectangle{X: sliderX, Y: rowY, Width: sliderW, Height: 24},
		fmt.Sprint(PopulationMin), fmt.Sprint(PopulationMax),
		float32(m.settings.Population), PopulationMin, PopulationMax,
	)
	m.settings.Population = snap(pop, PopulationMin, PopulationMax)
	rl.DrawText(fmt.Sprint(m.settings.Population), int32(sliderX+sliderW+40), int32(rowY), 24, rl.DarkGray)

	rowY += sh * 0.125
	rl.DrawText("Generation Time Limit:", labelX, int32(rowY), 28, rl.Black)
	rl.DrawText("(Ticks)", labelX+40, int32(rowY)+30, 18, rl.Black)
	limit := gui.SliderBar(
		rl.Rectangle{X: sliderX, Y: rowY, Width: sliderW, Height: 24},
		fmt.Sprint(TimeLimitMin), fmt.Sprint(TimeLimitMax),
		float32(m.settings.TimeLimit), TimeLimitMin, TimeLimitMax,
	)
	m.settings.TimeLimit = snap(limit, TimeLimitMin, TimeLimitMax)
	rl.DrawText(fmt.Sprint(m.settings.TimeLimit), int32(sliderX+sliderW+40), int32(rowY), 24, rl.DarkGray)

	run := gui.Button(rl.Rectangle{X: sw/2 - 200, Y: sh * 0.69, Width: 400, Height: 150}, "Run")
	if !run {
		return MenuSettings{}, false
	}
	chosen := m.settings
	m.Reset()
	return chosen, true
}

// EndButtonBounds returns where the End button sits during a run.
func EndButtonBounds(screenWidth, screenHeight int32) rl.Rectangle {
	return rl.Rectangle{
		X:      float32(screenWidth) - 150,
		Y:      float32(screenHeight) - 150,
		Width:  150,
		Height: 75,
	}
}

// DrawEndButton draws the red End button and reports whether it was
// clicked this frame.
func DrawEndButton(screenWidth, screenHeight int32) bool {
	b := EndButtonBounds(screenWidth, screenHeight)
	hover := rl.CheckCollisionPointRec(rl.GetMousePosition(), b)

	col := rl.Red
	if hover {
		col = rl.Maroon
	}
	rl.DrawRectangleRec(b, col)
	rl.DrawRectangleLinesEx(b, 2, rl.Black)

	tw := rl.MeasureText("End", 30)
	rl.DrawText("End", int32(b.X+b.Width/2)-tw/2, int32(b.Y+b.Height/2)-15, 30, rl.White)

	return hover && rl.IsMouseButtonPressed(rl.MouseButtonLeft)
}

// snap rounds a slider value to the nearest integer inside [lo, hi].
func snap(v float32, lo, hi int) int {
	return clampInt(int(math.Round(float64(v))), lo, hi)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
