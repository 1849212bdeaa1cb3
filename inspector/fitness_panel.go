package inspector

import (
	"fmt"

	"github.com/dustin/go-humanize"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/racers/telemetry"
)

const (
	// History buffer size (generations kept)
	fitnessHistorySize = 200

	// Line series indices
	seriesBest    = 0
	seriesP90     = 1
	seriesMean    = 2
	seriesP10     = 3
	seriesCrashed = 4
	seriesLaps    = 5
	numSeries     = 6
)

// fitnessSeries are drawn against the left axis, countSeries against the right.
var (
	fitnessSeries = []int{seriesBest, seriesP90, seriesMean, seriesP10}
	countSeries   = []int{seriesCrashed, seriesLaps}
)

// FitnessPanel graphs per-generation fitness and outcome counts.
type FitnessPanel struct {
	screenWidth  int32
	screenHeight int32

	panelWidth  int32
	panelHeight int32
	panelX      int32
	panelY      int32

	last    telemetry.GenerationStats
	history *History

	// Series visibility (toggled by clicking legend)
	seriesVisible [numSeries]bool
	seriesNames   [numSeries]string
	seriesColors  [numSeries]rl.Color
}

// Fitness panel colors
var (
	colorPanelTitle  = rl.Color{R: 200, G: 200, B: 220, A: 255}
	colorGraphPanel  = rl.Color{R: 20, G: 20, B: 30, A: 230}
	colorGraphBg     = rl.Color{R: 15, G: 15, B: 25, A: 255}
	colorGraphGrid   = rl.Color{R: 40, G: 40, B: 50, A: 255}
	colorGraphBorder = rl.Color{R: 60, G: 60, B: 70, A: 255}
)

// NewFitnessPanel creates a panel along the bottom of the screen.
func NewFitnessPanel(screenWidth, screenHeight int32) *FitnessPanel {
	p := &FitnessPanel{
		panelHeight: 180,
		panelX:      10,
		history:     NewHistory(numSeries, fitnessHistorySize),
		seriesVisible: [numSeries]bool{
			true,  // Best
			false, // P90
			true,  // Mean
			false, // P10
			true,  // Crashed
			false, // Laps
		},
		seriesNames: [numSeries]string{"Best", "P90", "Mean", "P10", "Crashed", "Laps"},
		seriesColors: [numSeries]rl.Color{
			{R: 255, G: 215, B: 0, A: 255},   // Gold
			{R: 150, G: 255, B: 150, A: 255}, // Light green
			{R: 100, G: 149, B: 237, A: 255}, // Cornflower blue
			{R: 160, G: 120, B: 60, A: 255},  // Tan
			{R: 255, G: 100, B: 80, A: 255},  // Red-orange
			{R: 200, G: 150, B: 255, A: 255}, // Lavender
		},
	}
	p.Resize(screenWidth, screenHeight)
	return p
}

// Resize updates panel dimensions when the window is resized.
func (p *FitnessPanel) Resize(screenWidth, screenHeight int32) {
	p.screenWidth = screenWidth
	p.screenHeight = screenHeight

	// Leave room on the right for the inspector
	p.panelWidth = max(screenWidth-PanelWidth-40, 400)
	// Clear of the timer bar and its label
	p.panelY = screenHeight - p.panelHeight - 60
}

// Record adds a finished generation.
func (p *FitnessPanel) Record(s telemetry.GenerationStats) {
	p.last = s
	p.history.Push(
		float64(s.BestFitness),
		s.P90Fitness,
		s.MeanFitness,
		s.P10Fitness,
		float64(s.Crashed),
		float64(s.Laps),
	)
}

// Reset clears the graph, used when a new run starts.
func (p *FitnessPanel) Reset() {
	p.history.Reset()
	p.last = telemetry.GenerationStats{}
}

// HandleInput processes mouse clicks for legend toggling.
func (p *FitnessPanel) HandleInput() {
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}

	mx := rl.GetMouseX()
	my := rl.GetMouseY()

	legendX := p.panelX + 10
	legendY := p.panelY + p.panelHeight - 24
	for i := 0; i < numSeries; i++ {
		itemX := legendX + int32(i)*90
		if mx >= itemX && mx < itemX+85 && my >= legendY && my < legendY+18 {
			p.seriesVisible[i] = !p.seriesVisible[i]
			return
		}
	}
}

// Draw renders the panel.
func (p *FitnessPanel) Draw() {
	rl.DrawRectangle(p.panelX, p.panelY, p.panelWidth, p.panelHeight, colorGraphPanel)
	rl.DrawRectangleLines(p.panelX, p.panelY, p.panelWidth, p.panelHeight, colorGraphBorder)

	rl.DrawText("FITNESS", p.panelX+10, p.panelY+6, 14, colorPanelTitle)

	if p.history.Len() == 0 {
		rl.DrawText("Waiting for the first generation...", p.panelX+100, p.panelY+70, 14, ColorTextDim)
		return
	}

	summaryWidth := int32(170)
	graphX := p.panelX + summaryWidth + 20
	graphY := p.panelY + 24
	graphW := p.panelWidth - summaryWidth - 40
	graphH := p.panelHeight - 54

	p.drawSummary(p.panelX+10, p.panelY+28)
	p.drawGraph(graphX, graphY, graphW, graphH)
	p.drawLegend(p.panelX+10, p.panelY+p.panelHeight-24)
}

// drawSummary lists the last generation's numbers.
func (p *FitnessPanel) drawSummary(x, y int32) {
	s := &p.last
	lines := []string{
		fmt.Sprintf("Generation %d", s.Generation),
		"Best: " + humanize.Comma(int64(s.BestFitness)) + fmt.Sprintf(" (#%d)", s.BestCar),
		"Mean: " + formatFitness(s.MeanFitness),
		"Std:  " + formatFitness(s.StdFitness),
		fmt.Sprintf("Crashed: %d/%d", s.Crashed, s.Population),
		fmt.Sprintf("Laps: %d (max %d)", s.Laps, s.MaxLaps),
	}
	for _, line := range lines {
		rl.DrawText(line, x, y, 11, ColorText)
		y += 15
	}
}

// drawGraph renders the line graph.
func (p *FitnessPanel) drawGraph(x, y, w, h int32) {
	rl.DrawRectangle(x, y, w, h, colorGraphBg)
	rl.DrawRectangleLines(x, y, w, h, colorGraphBorder)

	for i := int32(1); i < 4; i++ {
		gridY := y + (h * i / 4)
		rl.DrawLine(x, gridY, x+w, gridY, colorGraphGrid)
	}
	for i := int32(1); i < 6; i++ {
		gridX := x + (w * i / 6)
		rl.DrawLine(gridX, y, gridX, y+h, colorGraphGrid)
	}

	if p.history.Len() < 2 {
		return
	}

	fitMin, fitMax := p.seriesRange(fitnessSeries)
	countMin, countMax := p.seriesRange(countSeries)

	for _, s := range fitnessSeries {
		if p.seriesVisible[s] {
			p.drawSeriesLine(x, y, w, h, s, fitMin, fitMax)
		}
	}
	for _, s := range countSeries {
		if p.seriesVisible[s] {
			p.drawSeriesLine(x, y, w, h, s, countMin, countMax)
		}
	}

	rl.DrawText(formatFitness(fitMax), x+2, y+2, 9, ColorTextDim)
	rl.DrawText(formatFitness(fitMin), x+2, y+h-10, 9, ColorTextDim)

	if p.anyVisible(countSeries) {
		maxLabel := fmt.Sprintf("%.0f", countMax)
		minLabel := fmt.Sprintf("%.0f", countMin)
		rl.DrawText(maxLabel, x+w-rl.MeasureText(maxLabel, 9)-2, y+2, 9, ColorTextDim)
		rl.DrawText(minLabel, x+w-rl.MeasureText(minLabel, 9)-2, y+h-10, 9, ColorTextDim)
	}
}

// seriesRange finds min/max across the visible series, padded by 10%.
func (p *FitnessPanel) seriesRange(series []int) (lo, hi float64) {
	var visible []int
	for _, s := range series {
		if p.seriesVisible[s] {
			visible = append(visible, s)
		}
	}
	lo, hi, ok := p.history.Range(visible...)
	if !ok || lo >= hi {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.1
	return lo - pad, hi + pad
}

func (p *FitnessPanel) anyVisible(series []int) bool {
	for _, s := range series {
		if p.seriesVisible[s] {
			return true
		}
	}
	return false
}

// drawSeriesLine draws one data series as a line.
func (p *FitnessPanel) drawSeriesLine(x, y, w, h int32, series int, minVal, maxVal float64) {
	n := p.history.Len()
	valueRange := maxVal - minVal
	if valueRange <= 0 {
		valueRange = 1
	}

	var prevX, prevY int32
	for i := 0; i < n; i++ {
		v := p.history.At(series, i)

		px := x + int32(float64(i)*float64(w)/float64(n-1))
		py := y + h - int32((v-minVal)/valueRange*float64(h))
		py = min(max(py, y), y+h)

		if i > 0 {
			rl.DrawLine(prevX, prevY, px, py, p.seriesColors[series])
		}
		prevX, prevY = px, py
	}
}

// drawLegend draws the interactive legend.
func (p *FitnessPanel) drawLegend(x, y int32) {
	itemWidth := int32(90)

	for i := 0; i < numSeries; i++ {
		itemX := x + int32(i)*itemWidth
		color := p.seriesColors[i]
		textColor := ColorText
		if !p.seriesVisible[i] {
			color.A = 80
			textColor = ColorTextDim
		}
		rl.DrawRectangle(itemX, y+2, 10, 10, color)
		rl.DrawText(p.seriesNames[i], itemX+14, y, 11, textColor)
	}

	rl.DrawText("(click to toggle)", x+int32(numSeries)*itemWidth+10, y, 10, ColorTextDim)
}

// formatFitness abbreviates large values.
func formatFitness(v float64) string {
	switch {
	case v >= 1e6 || v <= -1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e4 || v <= -1e4:
		return fmt.Sprintf("%.0fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
