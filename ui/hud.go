package ui

import (
	"fmt"

	"github.com/dustin/go-humanize"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/racers/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title       string
	Generation  int
	Tick        int
	TimeLimit   int
	TotalTicks  uint64
	Speed       int
	FPS         int32
	Paused      bool
	Following   bool
	Alive       int
	Population  int
	BestCar     int
	BestFitness int
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD text block in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Generation: %d | Alive: %d/%d | Best: #%d (%s)",
			data.Generation, data.Alive, data.Population, data.BestCar, humanize.Comma(int64(data.BestFitness))),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Tick: %d/%d | Speed: %dx | FPS: %d | Simulated: %s ticks",
			data.Tick, data.TimeLimit, data.Speed, data.FPS, humanize.Comma(int64(data.TotalTicks))),
		10, 55, 16, rl.LightGray,
	)

	status := "Running"
	if data.Paused {
		status = "PAUSED"
	}
	if data.Following {
		status += " | following best car"
	}
	rl.DrawText(status, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend under the status line.
func (h *HUD) DrawControls(controls string) {
	rl.DrawText(controls, 10, 97, 14, rl.DarkGray)
}

// DrawWatermark draws the large translucent generation number behind the cars.
func (h *HUD) DrawWatermark(generation int, screenWidth, screenHeight int32) {
	text := fmt.Sprintf("Generation: %d", generation)
	size := int32(75)
	w := rl.MeasureText(text, size)
	rl.DrawText(text, (screenWidth-w)/2, screenHeight/2-size/2, size, rl.Color{R: 20, G: 20, B: 20, A: 100})
}

// TimerBarHeight is the height of the generation timer bar.
const TimerBarHeight = 30

// TimerBarWidth returns the bar width for the elapsed fraction of a
// generation: full at the start, empty at the time limit.
func TimerBarWidth(progress float32, screenWidth int32) int32 {
	progress = min(max(progress, 0), 1)
	return int32(float32(screenWidth) * (1 - progress))
}

// DrawTimerBar draws the remaining generation time along the bottom edge.
func (h *HUD) DrawTimerBar(progress float32, screenWidth, screenHeight int32) {
	y := screenHeight - TimerBarHeight
	rl.DrawRectangle(0, y, TimerBarWidth(progress, screenWidth), TimerBarHeight, rl.Yellow)
	rl.DrawText("Generation Time Left:", 10, y-24, 20, rl.Black)
}

// LeaderboardPanel renders the fastest laps of the run.
type LeaderboardPanel struct {
	renderer *Renderer
	width    int32
}

// NewLeaderboardPanel creates a leaderboard panel.
func NewLeaderboardPanel(width int32) *LeaderboardPanel {
	return &LeaderboardPanel{renderer: NewRenderer(), width: width}
}

// Height returns the panel height for n slots.
func (l *LeaderboardPanel) Height(n int) int32 {
	return l.renderer.Theme.Padding*2 + l.renderer.Theme.LineHeight*int32(n+2) + 2
}

// Draw renders every slot, used or not, in the top-right corner below
// offsetY, and returns the y just below the panel.
func (l *LeaderboardPanel) Draw(entries []telemetry.LapEntry, screenWidth, offsetY int32) int32 {
	r := l.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	height := l.Height(len(entries))
	x := screenWidth - l.width - padding
	y := offsetY

	r.DrawPanel(x, y, l.width, height)
	y += padding

	rl.DrawText("Fastest Laps", x+padding, y, r.Theme.HeaderFontSize+2, rl.White)
	y += lineHeight + 2

	cols := [3]int32{x + padding + 24, x + padding + 90, x + padding + 170}
	rl.DrawText("Car", cols[0], y, r.Theme.FontSize, r.Theme.SectionHeader)
	rl.DrawText("Gen", cols[1], y, r.Theme.FontSize, r.Theme.SectionHeader)
	rl.DrawText("Lap", cols[2], y, r.Theme.FontSize, r.Theme.SectionHeader)
	y += lineHeight

	for i, e := range entries {
		color := r.Theme.LabelColor
		if i == 0 && e.Used() {
			color = r.Theme.Highlight
		}
		rl.DrawText(fmt.Sprintf("%d.", i+1), x+padding, y, r.Theme.FontSize, color)
		if e.Used() {
			rl.DrawText(fmt.Sprint(e.Car), cols[0], y, r.Theme.FontSize, color)
			rl.DrawText(fmt.Sprint(e.Generation), cols[1], y, r.Theme.FontSize, color)
			rl.DrawText(fmt.Sprintf("%d ticks", e.LapTime), cols[2], y, r.Theme.FontSize, color)
		} else {
			rl.DrawText("-", cols[0], y, r.Theme.FontSize, rl.Gray)
		}
		y += lineHeight
	}
	return offsetY + height
}

// GenerationPanelDescriptor describes the summary of the last finished
// generation. Data is a *telemetry.GenerationStats.
func GenerationPanelDescriptor() PanelDescriptor {
	stats := func(d any) *telemetry.GenerationStats { return d.(*telemetry.GenerationStats) }
	ratio := func(n, of int) float32 {
		if of == 0 {
			return 0
		}
		return float32(n) / float32(of)
	}

	return PanelDescriptor{
		ID:     "generation",
		Title:  "Last Generation",
		Width:  260,
		Anchor: AnchorTopRight,
		Sections: []SectionDescriptor{
			{
				ID: "fitness",
				Fields: []FieldDescriptor{
					{ID: "generation", Label: "Generation", Widget: WidgetText,
						TextGetter: func(d any) string { return fmt.Sprint(stats(d).Generation) }},
					{ID: "best", Label: "Best", Widget: WidgetText,
						TextGetter: func(d any) string {
							s := stats(d)
							return fmt.Sprintf("%s (#%d)", humanize.Comma(int64(s.BestFitness)), s.BestCar)
						}},
					{ID: "mean", Label: "Mean", Widget: WidgetText, Format: "%.0f",
						Getter: func(d any) float32 { return float32(stats(d).MeanFitness) }},
					{ID: "median", Label: "Median", Widget: WidgetText, Format: "%.0f",
						Getter: func(d any) float32 { return float32(stats(d).P50Fitness) }},
					{ID: "std", Label: "Std dev", Widget: WidgetText, Format: "%.0f",
						Getter: func(d any) float32 { return float32(stats(d).StdFitness) }},
				},
			},
			{
				ID:    "outcome",
				Title: "Outcome",
				Fields: []FieldDescriptor{
					{ID: "crashed", Label: "Crashed", Widget: WidgetBar, Range: DefaultRange(),
						Getter:     func(d any) float32 { s := stats(d); return ratio(s.Crashed, s.Population) },
						TextGetter: func(d any) string { s := stats(d); return fmt.Sprintf("%d/%d", s.Crashed, s.Population) }},
					{ID: "ticks", Label: "Ticks", Widget: WidgetText,
						TextGetter: func(d any) string { return fmt.Sprint(stats(d).Ticks) }},
					{ID: "laps", Label: "Laps", Widget: WidgetText,
						TextGetter: func(d any) string { s := stats(d); return fmt.Sprintf("%d (max %d)", s.Laps, s.MaxLaps) }},
				},
				Visible: func(d any) bool { return stats(d).Population > 0 },
			},
		},
	}
}
