package game

import (
	"errors"
	"log/slog"
)

// flushTelemetry closes the stats window once it has covered enough ticks
// and publishes it along with the frame timing of the same period.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	window := g.collector.Flush(g.tick, g.world)
	perf := g.perfCollector.Stats()
	g.lastWindow = window

	if g.statsCallback != nil {
		g.statsCallback(window)
	}
	if g.logStats {
		window.LogStats()
		perf.LogStats()
	}

	err := errors.Join(
		g.outputManager.WriteTelemetry(window),
		g.outputManager.WritePerf(perf, window.WindowEndTick),
	)
	if err != nil {
		slog.Error("telemetry output failed", "tick", g.tick, "error", err)
	}
}
