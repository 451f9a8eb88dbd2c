package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sandfall/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title       string
	Particles   int
	Tick        int64
	FPS         int32
	Running     bool
	BrushLabel  string
	BrushRadius float64
	BrushColor  rl.Color
	CursorX     int
	CursorY     int
	CursorValid bool
}

// HUD renders the main heads-up display.
type HUD struct{}

// NewHUD creates a new HUD.
func NewHUD() *HUD { return &HUD{} }

// Draw renders the HUD in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d | Tick: %d | FPS: %d", data.Particles, data.Tick, data.FPS),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawRectangle(10, 57, 12, 12, data.BrushColor)
	rl.DrawRectangleLines(10, 57, 12, 12, theme.PanelBorder)
	brushText := fmt.Sprintf("%s  r=%.1f", data.BrushLabel, data.BrushRadius)
	if data.CursorValid {
		brushText += fmt.Sprintf("  @ (%d, %d)", data.CursorX, data.CursorY)
	}
	rl.DrawText(brushText, 28, 55, 16, rl.LightGray)

	if !data.Running {
		rl.DrawText("PAUSED", 10, 75, 16, rl.Yellow)
	}
}

// DrawLegend renders the key legend at the bottom of the screen.
func (h *HUD) DrawLegend(screenHeight int32, text string) {
	rl.DrawText(text, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders frame phase timings.
type PerfPanel struct {
	x, y int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel and returns its bottom edge.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) int32 {
	phases := telemetry.Phases()
	width := int32(230)
	height := int32(58 + 14*len(phases))
	drawBox(p.x, p.y, width, height)

	x := p.x + theme.Padding
	y := p.y + 8

	rl.DrawText("Frame Timing", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Frame: %s ± %s",
		stats.AvgFrame.Round(time.Microsecond),
		stats.StdDevFrame.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, ph := range phases {
		t := stats.Phase(ph)

		color := rl.LightGray
		if t.Pct > 50 {
			color = rl.Red
		} else if t.Pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(fmt.Sprintf("%-10s %8s %5.1f%%", ph, t.Avg.Round(time.Microsecond), t.Pct), x, y, 12, color)
		y += 14
	}
	return p.y + height
}

func count(f func(telemetry.WindowStats) int) func(telemetry.WindowStats) string {
	return func(s telemetry.WindowStats) string { return fmt.Sprintf("%d", f(s)) }
}

// statsPanel lays out a telemetry window.
var statsPanel = Panel[telemetry.WindowStats]{
	Title: "World",
	Width: 230,
	Groups: []Group[telemetry.WindowStats]{
		{
			Rows: []Row[telemetry.WindowStats]{
				TextRow("Particles", count(func(s telemetry.WindowStats) int { return s.Particles })),
				BarRow("Fill", func(s telemetry.WindowStats) float32 { return float32(s.FillRatio) }),
				TextRow("Sand", count(func(s telemetry.WindowStats) int { return s.Sand })),
				TextRow("Water", count(func(s telemetry.WindowStats) int { return s.Water })),
				TextRow("Stone", count(func(s telemetry.WindowStats) int { return s.Stone })),
				TextRow("Custom", count(func(s telemetry.WindowStats) int { return s.Custom })).
					OnlyIf(func(s telemetry.WindowStats) bool { return s.Custom > 0 }),
			},
		},
		{
			Title: "Last Window",
			Rows: []Row[telemetry.WindowStats]{
				TextRow("Strokes", count(func(s telemetry.WindowStats) int { return s.Strokes })),
				TextRow("Moves", count(func(s telemetry.WindowStats) int { return s.Moves })),
				TextRow("Dropped", count(func(s telemetry.WindowStats) int { return s.TicksDropped })),
				TextRow("Heights", func(s telemetry.WindowStats) string {
					return fmt.Sprintf("%.0f / %.0f / %.0f", s.HeightP10, s.HeightP50, s.HeightP90)
				}),
			},
		},
	},
}

// StatsPanel renders the latest telemetry window.
type StatsPanel struct {
	x, y int32
}

// NewStatsPanel creates a new stats panel.
func NewStatsPanel(x, y int32) *StatsPanel {
	return &StatsPanel{x: x, y: y}
}

// SetPosition updates the panel position.
func (p *StatsPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel and returns its bottom edge.
func (p *StatsPanel) Draw(stats telemetry.WindowStats) int32 {
	return statsPanel.Draw(p.x, p.y, stats)
}
