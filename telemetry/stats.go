package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// World at window end
	Particles int     `csv:"particles"`
	FillRatio float64 `csv:"fill_ratio"`
	Sand      int     `csv:"sand"`
	Water     int     `csv:"water"`
	Stone     int     `csv:"stone"`
	Custom    int     `csv:"custom"`

	// Brush activity during window
	Strokes int `csv:"strokes"`
	Created int `csv:"created"`
	Deleted int `csv:"deleted"`

	// Tick loop during window
	TicksRun     int `csv:"ticks_run"`
	TicksDropped int `csv:"ticks_dropped"`
	Moves        int `csv:"moves"`

	// Column pile heights in cells (topmost occupied cell + 1)
	HeightMean float64 `csv:"height_mean"`
	HeightStd  float64 `csv:"height_std"`
	HeightP10  float64 `csv:"height_p10"`
	HeightP50  float64 `csv:"height_p50"`
	HeightP90  float64 `csv:"height_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution returns the mean, population standard deviation and
// 10th/50th/90th percentiles of values.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Float64("fill_ratio", s.FillRatio),
		slog.Int("sand", s.Sand),
		slog.Int("water", s.Water),
		slog.Int("stone", s.Stone),
		slog.Int("custom", s.Custom),
		slog.Int("strokes", s.Strokes),
		slog.Int("created", s.Created),
		slog.Int("deleted", s.Deleted),
		slog.Int("ticks_run", s.TicksRun),
		slog.Int("ticks_dropped", s.TicksDropped),
		slog.Int("moves", s.Moves),
		slog.Float64("height_mean", s.HeightMean),
		slog.Float64("height_std", s.HeightStd),
		slog.Float64("height_p10", s.HeightP10),
		slog.Float64("height_p50", s.HeightP50),
		slog.Float64("height_p90", s.HeightP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"fill_ratio", s.FillRatio,
		"sand", s.Sand,
		"water", s.Water,
		"stone", s.Stone,
		"custom", s.Custom,
		"strokes", s.Strokes,
		"created", s.Created,
		"deleted", s.Deleted,
		"ticks_run", s.TicksRun,
		"ticks_dropped", s.TicksDropped,
		"moves", s.Moves,
		"height_p50", s.HeightP50,
		"height_p90", s.HeightP90,
	)
}
