package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/sandfall/brush"
	"github.com/pthm-cable/sandfall/elements"
	"github.com/pthm-cable/sandfall/particles"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistribution(t *testing.T) {
	values := []float64{9, 1, 5, 3, 7}
	mean, std, p10, p50, p90 := ComputeDistribution(values)

	if math.Abs(mean-5) > 1e-9 {
		t.Errorf("mean = %v, want 5", mean)
	}
	// Population std of {1,3,5,7,9} is sqrt(8).
	if math.Abs(std-math.Sqrt(8)) > 1e-9 {
		t.Errorf("std = %v, want %v", std, math.Sqrt(8))
	}
	if math.Abs(p10-1.8) > 1e-9 || math.Abs(p50-5) > 1e-9 || math.Abs(p90-8.2) > 1e-9 {
		t.Errorf("percentiles = %v, %v, %v; want 1.8, 5, 8.2", p10, p50, p90)
	}
	if values[0] != 9 {
		t.Error("input slice was reordered")
	}

	mean, std, p10, p50, p90 = ComputeDistribution(nil)
	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty input should return all zeros")
	}
}

func TestColumnHeights(t *testing.T) {
	w := particles.New(4, 6, nil, 0)
	w.CreateParticle(0, 0, elements.Sand)
	w.CreateParticle(0, 2, elements.Sand)
	w.CreateParticle(2, 5, elements.Stone)

	got := ColumnHeights(w)
	want := []float64{3, 0, 6, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d height = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(2, 0.5)
	if c.WindowDurationTicks() != 4 {
		t.Fatalf("WindowDurationTicks() = %d, want 4", c.WindowDurationTicks())
	}

	reg := elements.DefaultRegistry()
	oil, _ := reg.Register(elements.Element{Name: "oil", Color: elements.MustRGBA(0, 0, 0, 1)})
	w := particles.New(10, 10, reg, 0)
	w.CreateParticle(0, 0, elements.Sand)
	w.CreateParticle(1, 0, elements.Water)
	w.CreateParticle(2, 0, elements.Water)
	w.CreateParticle(3, 0, oil)

	c.RecordStroke(brush.Stats{Created: 4, Visited: 9})
	c.RecordStroke(brush.Stats{Deleted: 1})
	c.RecordTicks(1, 3)
	c.RecordTicks(1, 0)
	c.RecordMoves(7)

	if c.ShouldFlush(3) || !c.ShouldFlush(4) {
		t.Error("ShouldFlush boundary wrong")
	}

	s := c.Flush(4, w)
	if s.Particles != 4 || s.Sand != 1 || s.Water != 2 || s.Stone != 0 || s.Custom != 1 {
		t.Errorf("counts = %+v", s)
	}
	if math.Abs(s.FillRatio-0.04) > 1e-9 {
		t.Errorf("FillRatio = %v, want 0.04", s.FillRatio)
	}
	if s.Strokes != 2 || s.Created != 4 || s.Deleted != 1 {
		t.Errorf("brush counters = %d/%d/%d", s.Strokes, s.Created, s.Deleted)
	}
	if s.TicksRun != 2 || s.TicksDropped != 3 || s.Moves != 7 {
		t.Errorf("tick counters = %d/%d/%d", s.TicksRun, s.TicksDropped, s.Moves)
	}
	if math.Abs(s.SimTimeSec-2) > 1e-9 {
		t.Errorf("SimTimeSec = %v, want 2", s.SimTimeSec)
	}

	next := c.Flush(6, nil)
	if next.WindowStartTick != 4 || next.Strokes != 0 || next.TicksRun != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if c.ShouldFlush(9) {
		t.Error("window did not restart at last flush")
	}
}

func TestOutputManager(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := int64(1); i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: i * 100, Particles: int(i)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WritePerf(PerfStats{}, 100); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "window_end"); n != 1 {
		t.Errorf("header written %d times", n)
	}

	var rows []WindowStats
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(rows) != 3 || rows[2].WindowEndTick != 300 || rows[2].Particles != 3 {
		t.Errorf("rows = %+v", rows)
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v", om, err)
	}
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("disabled manager has a directory")
	}
}
