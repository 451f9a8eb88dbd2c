// Package telemetry aggregates per-window world statistics and frame timing,
// and writes them as CSV.
package telemetry

import (
	"github.com/pthm-cable/sandfall/brush"
	"github.com/pthm-cable/sandfall/elements"
	"github.com/pthm-cable/sandfall/particles"
)

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int64
	tickSec             float64

	windowStartTick int64

	// Event counters for current window
	strokes      int
	created      int
	deleted      int
	ticksRun     int
	ticksDropped int
	moves        int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// tickSec: seconds per tick
func NewCollector(windowDurationSec, tickSec float64) *Collector {
	ticksPerWindow := int64(1)
	if tickSec > 0 {
		ticksPerWindow = max(int64(windowDurationSec/tickSec), 1)
	}
	return &Collector{
		windowDurationTicks: ticksPerWindow,
		tickSec:             tickSec,
	}
}

// RecordStroke records one brush application.
func (c *Collector) RecordStroke(st brush.Stats) {
	c.strokes++
	c.created += st.Created
	c.deleted += st.Deleted
}

// RecordTicks records one frame's tick accounting.
func (c *Collector) RecordTicks(run, dropped int) {
	c.ticksRun += run
	c.ticksDropped += dropped
}

// RecordMoves records particle moves made by the simulation step.
func (c *Collector) RecordMoves(n int) {
	c.moves += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats from the world and the window counters, then
// resets counters for the next window.
func (c *Collector) Flush(currentTick int64, world *particles.System) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.tickSec,

		Strokes:      c.strokes,
		Created:      c.created,
		Deleted:      c.deleted,
		TicksRun:     c.ticksRun,
		TicksDropped: c.ticksDropped,
		Moves:        c.moves,
	}

	if world != nil {
		stats.Particles = world.Len()
		if cells := world.Width() * world.Height(); cells > 0 {
			stats.FillRatio = float64(world.Len()) / float64(cells)
		}
		for kind, n := range world.CountByKind() {
			switch {
			case kind == elements.Sand:
				stats.Sand = n
			case kind == elements.Water:
				stats.Water = n
			case kind == elements.Stone:
				stats.Stone = n
			default:
				stats.Custom += n
			}
		}
		stats.HeightMean, stats.HeightStd, stats.HeightP10, stats.HeightP50, stats.HeightP90 =
			ComputeDistribution(ColumnHeights(world))
	}

	c.windowStartTick = currentTick
	c.strokes = 0
	c.created = 0
	c.deleted = 0
	c.ticksRun = 0
	c.ticksDropped = 0
	c.moves = 0

	return stats
}

// ColumnHeights returns, per column, one more than the y of its topmost
// particle, or 0 for an empty column.
func ColumnHeights(world *particles.System) []float64 {
	heights := make([]float64, world.Width())
	for i, h := range world.Cells() {
		if h.IsZero() {
			continue
		}
		x, y := i%world.Width(), i/world.Width()
		heights[x] = max(heights[x], float64(y+1))
	}
	return heights
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
