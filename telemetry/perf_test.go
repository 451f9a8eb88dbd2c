package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_FramePhases(t *testing.T) {
	pc := NewPerfCollector(10)

	for range 5 {
		pc.BeginFrame()
		pc.Enter(PhaseInput)
		time.Sleep(50 * time.Microsecond)
		pc.Enter(PhaseStep)
		time.Sleep(200 * time.Microsecond)
		pc.Enter(PhaseValidate)
		pc.EndFrame()
	}

	stats := pc.Stats()
	if stats.Frames != 5 {
		t.Errorf("Frames = %d, want 5", stats.Frames)
	}
	if stats.AvgFrame <= 0 {
		t.Error("expected positive average frame")
	}
	if stats.Phase(PhaseRender).Avg != 0 {
		t.Error("render phase timed without being entered")
	}
	if stats.Phase(PhaseStep).Pct <= stats.Phase(PhaseInput).Pct {
		t.Errorf("step %v%% should exceed input %v%%", stats.Phase(PhaseStep).Pct, stats.Phase(PhaseInput).Pct)
	}
}

func TestPerfCollector_RepeatedPhaseAccumulates(t *testing.T) {
	pc := NewPerfCollector(1)

	pc.BeginFrame()
	for range 3 {
		pc.Enter(PhaseStep)
		time.Sleep(time.Millisecond)
		pc.Enter(PhaseValidate)
	}
	pc.EndFrame()

	if got := pc.Stats().Phase(PhaseStep).Avg; got < 3*time.Millisecond {
		t.Errorf("step = %v, want at least 3ms over three entries", got)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for range 12 {
		pc.BeginFrame()
		pc.Enter(PhaseStep)
		pc.EndFrame()
	}

	stats := pc.Stats()
	if stats.Frames != 5 {
		t.Errorf("Frames = %d, want 5", stats.Frames)
	}
	if stats.MinFrame > stats.AvgFrame || stats.AvgFrame > stats.MaxFrame {
		t.Errorf("min %v, avg %v, max %v out of order", stats.MinFrame, stats.AvgFrame, stats.MaxFrame)
	}
}

func TestPerfCollector_StdDev(t *testing.T) {
	pc := NewPerfCollector(4)
	for i, ms := range []time.Duration{2, 4, 4, 6} {
		pc.ring[i] = frameSample{total: ms * time.Millisecond}
	}
	pc.count = 4

	stats := pc.Stats()
	if stats.AvgFrame != 4*time.Millisecond {
		t.Errorf("avg = %v, want 4ms", stats.AvgFrame)
	}
	if stats.FrameRate != 250 {
		t.Errorf("FrameRate = %v, want 250", stats.FrameRate)
	}
	// Sample standard deviation of {2, 4, 4, 6} is sqrt(8/3).
	want := 1633 * time.Microsecond
	if d := stats.StdDevFrame - want; d < -time.Microsecond || d > time.Microsecond {
		t.Errorf("stddev = %v, want ~%v", stats.StdDevFrame, want)
	}

	row := stats.Row(99)
	if row.WindowEnd != 99 || row.Frames != 4 || row.AvgFrameUS != 4000 || row.MaxFrameUS != 6000 {
		t.Errorf("Row = %+v", row)
	}
}

func TestPerfCollector_Empty(t *testing.T) {
	stats := NewPerfCollector(0).Stats()
	if stats.Frames != 0 || stats.AvgFrame != 0 || stats.FrameRate != 0 {
		t.Errorf("empty collector stats = %+v", stats)
	}
}

func TestPerfCollector_Present(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.MarkPresent()
	time.Sleep(16 * time.Millisecond)
	pc.MarkPresent()

	stats := pc.Stats()
	if stats.PresentInterval < 15*time.Millisecond {
		t.Errorf("present interval = %v, want >= 15ms", stats.PresentInterval)
	}
	if stats.FPS <= 0 || stats.FPS > 70 {
		t.Errorf("FPS = %v, want (0, 70]", stats.FPS)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		ph   Phase
		want string
	}{
		{PhaseInput, "input"},
		{PhaseRender, "render"},
		{numPhases, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.ph.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.ph, got, tt.want)
		}
	}
}
