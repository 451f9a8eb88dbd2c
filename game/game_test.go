package game

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm-cable/sandfall/brush"
	"github.com/pthm-cable/sandfall/config"
	"github.com/pthm-cable/sandfall/elements"
	"github.com/pthm-cable/sandfall/particles"
	"github.com/pthm-cable/sandfall/renderer"
	"github.com/pthm-cable/sandfall/systems"
	"github.com/pthm-cable/sandfall/telemetry"
)

const testConfig = `
screen: {width: 80, height: 80, cell_size: 4}
simulation: {stepper: none, tick_rate: 100}
terrain: {enabled: false}
brush: {radius: 1, min_radius: 0.5, max_radius: 5}
`

var t0 = time.Unix(1000, 0)

func testCfg(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(testConfig))
	if err != nil {
		t.Fatalf("config.Parse: %v", err)
	}
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

func newTestGame(t *testing.T, mutate func(*config.Config), opts Options) *Game {
	t.Helper()
	opts.Config = testCfg(t, mutate)
	g, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func TestClockAdvance(t *testing.T) {
	tick := 10 * time.Millisecond

	tests := []struct {
		name        string
		maxPerFrame int
		at          []time.Duration
		wantRun     []int
		wantDropped []int
	}{
		{
			name:        "single tick per frame drops the rest",
			maxPerFrame: 1,
			at:          []time.Duration{5, 10, 35, 39, 40},
			wantRun:     []int{0, 1, 1, 0, 1},
			wantDropped: []int{0, 0, 1, 0, 0},
		},
		{
			name:        "higher limit",
			maxPerFrame: 3,
			at:          []time.Duration{50, 60},
			wantRun:     []int{3, 1},
			wantDropped: []int{2, 0},
		},
		{
			name:        "zero limit runs one",
			maxPerFrame: 0,
			at:          []time.Duration{20},
			wantRun:     []int{1},
			wantDropped: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClock(tick, tt.maxPerFrame)
			c.Start(t0)
			for i, ms := range tt.at {
				run, dropped := c.Advance(t0.Add(ms * time.Millisecond))
				if run != tt.wantRun[i] || dropped != tt.wantDropped[i] {
					t.Errorf("Advance(+%dms) = (%d, %d), want (%d, %d)",
						ms, run, dropped, tt.wantRun[i], tt.wantDropped[i])
				}
			}
		})
	}
}

func TestClockFirstAdvanceStarts(t *testing.T) {
	c := NewClock(time.Millisecond, 1)
	if run, _ := c.Advance(t0); run != 0 {
		t.Errorf("first Advance ran %d ticks, want 0", run)
	}
	if !c.started {
		t.Error("clock not started by first Advance")
	}
	if run, _ := c.Advance(t0.Add(time.Millisecond)); run != 1 {
		t.Errorf("second Advance ran %d ticks, want 1", run)
	}
}

func TestNew(t *testing.T) {
	g := newTestGame(t, nil, Options{})

	if g.World().Width() != 20 || g.World().Height() != 20 {
		t.Errorf("world %dx%d, want 20x20", g.World().Width(), g.World().Height())
	}
	if g.World().Len() != 0 {
		t.Errorf("world has %d particles, want 0", g.World().Len())
	}
	b := g.Brush()
	if b.Radius != 1 || b.Mode.IsErase() || b.Mode.Kind() != elements.Sand {
		t.Errorf("brush = %+v, want radius 1 drawing sand", b)
	}
	if !g.Running() {
		t.Error("game should start running")
	}
}

func TestNewRejectsUnknownBrushElement(t *testing.T) {
	cfg := testCfg(t, func(c *config.Config) { c.Brush.Element = "lava" })
	if _, err := New(Options{Config: cfg}); err == nil {
		t.Error("expected error for unknown brush element")
	}
}

func TestNewSeedsTerrain(t *testing.T) {
	g := newTestGame(t, func(c *config.Config) {
		c.Terrain.Enabled = true
		c.Terrain.BaseHeight = 0.25
		c.Terrain.Amplitude = 0
	}, Options{})

	// 20 columns of 5 cells
	if got := g.World().Len(); got != 100 {
		t.Errorf("terrain particles = %d, want 100", got)
	}

	g.Clear()
	if g.World().Len() != 0 {
		t.Fatal("Clear left particles")
	}
	if err := g.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if got := g.World().Len(); got != 100 {
		t.Errorf("after Reset particles = %d, want 100", got)
	}
}

func TestFramePointerStrokes(t *testing.T) {
	g := newTestGame(t, nil, Options{})

	g.PointerDown(brush.Point{X: 5, Y: 5})
	g.Frame(t0, nil)
	if got := g.World().Len(); got != 5 {
		t.Fatalf("click created %d particles, want 5", got)
	}
	if !g.PointerIsDown() {
		t.Error("pointer should be down after press")
	}

	g.PointerMove(brush.Point{X: 10, Y: 5})
	g.PointerUp(brush.Point{X: 10, Y: 5})
	g.Frame(t0, nil)
	// Capsule (5,5)-(10,5) r=1 covers rows 4..6 for x 5..10 plus (4,5) and (11,5).
	if got := g.World().Len(); got != 20 {
		t.Errorf("after drag %d particles, want 20", got)
	}
	if g.PointerIsDown() {
		t.Error("pointer should be up after release")
	}

	g.SetEraser(true)
	g.PointerDown(brush.Point{X: 5, Y: 5})
	g.PointerUp(brush.Point{X: 5, Y: 5})
	g.Frame(t0, nil)
	if got := g.World().Len(); got != 15 {
		t.Errorf("after erase %d particles, want 15", got)
	}
}

func TestFrameRunsOwedTicks(t *testing.T) {
	steps := 0
	counter := systems.StepperFunc(func(*particles.System) int {
		steps++
		return 0
	})
	g := newTestGame(t, nil, Options{Stepper: counter})

	g.Frame(t0, nil) // starts the clock
	if steps != 0 {
		t.Fatalf("first frame ran %d ticks", steps)
	}

	// A full second owes 100 ticks; only one runs.
	g.Frame(t0.Add(time.Second), nil)
	if steps != 1 || g.Tick() != 1 {
		t.Errorf("after lagged frame steps=%d tick=%d, want 1", steps, g.Tick())
	}

	g.Frame(t0.Add(time.Second+10*time.Millisecond), nil)
	if steps != 2 {
		t.Errorf("steps = %d, want 2", steps)
	}
}

func TestPauseAndResume(t *testing.T) {
	steps := 0
	counter := systems.StepperFunc(func(*particles.System) int {
		steps++
		return 0
	})
	g := newTestGame(t, nil, Options{Stepper: counter})
	g.Frame(t0, nil)

	g.SetRunning(false, t0)
	g.Frame(t0.Add(10*time.Second), nil)
	if steps != 0 {
		t.Errorf("paused game ran %d ticks", steps)
	}

	g.StepOnce()
	if steps != 1 || g.Tick() != 1 {
		t.Errorf("StepOnce: steps=%d tick=%d, want 1", steps, g.Tick())
	}

	resume := t0.Add(20 * time.Second)
	g.SetRunning(true, resume)
	g.Frame(resume.Add(5*time.Millisecond), nil)
	if steps != 1 {
		t.Errorf("time spent paused was owed: steps=%d", steps)
	}
	g.Frame(resume.Add(10*time.Millisecond), nil)
	if steps != 2 {
		t.Errorf("steps = %d after resume, want 2", steps)
	}
}

func TestBrushControls(t *testing.T) {
	g := newTestGame(t, nil, Options{})

	g.AdjustRadius(100)
	if g.Brush().Radius != 5 {
		t.Errorf("radius = %v, want clamped to 5", g.Brush().Radius)
	}
	g.AdjustRadius(-100)
	if g.Brush().Radius != 0.5 {
		t.Errorf("radius = %v, want clamped to 0.5", g.Brush().Radius)
	}

	if err := g.SelectKind(elements.Water); err != nil {
		t.Fatalf("SelectKind(water): %v", err)
	}
	if err := g.SelectKind(elements.Custom(9)); err == nil {
		t.Error("SelectKind accepted an unregistered kind")
	}
	if g.DrawKind() != elements.Water {
		t.Errorf("DrawKind = %v after failed select, want water", g.DrawKind())
	}

	g.SetEraser(true)
	if !g.Erasing() {
		t.Error("SetEraser(true) did not erase")
	}
	g.SetEraser(false)
	if g.Erasing() || g.Brush().Mode.Kind() != elements.Water {
		t.Errorf("SetEraser(false) brush = %v, want water", g.Brush().Mode)
	}

	if err := g.SetBrush(brush.Brush{Radius: 3, Mode: particles.DrawMode(elements.Stone)}); err != nil {
		t.Fatal(err)
	}
	if b := g.Brush(); b.Radius != 3 || b.Mode.Kind() != elements.Stone {
		t.Errorf("SetBrush = %+v", b)
	}
}

func TestValidatePanicsOnCorruption(t *testing.T) {
	corrupt := systems.StepperFunc(func(w *particles.System) int {
		for _, p := range w.Particles() {
			p.X++
		}
		return 0
	})
	g := newTestGame(t, func(c *config.Config) { c.Simulation.Validate = true }, Options{Stepper: corrupt})
	g.PointerDown(brush.Point{X: 5, Y: 5})
	g.Frame(t0, nil)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on corrupted world")
		}
	}()
	g.StepOnce()
}

func TestTelemetryWindows(t *testing.T) {
	dir := t.TempDir()
	var windows []telemetry.WindowStats
	g := newTestGame(t, func(c *config.Config) { c.Telemetry.StatsWindow = 0.02 }, Options{
		OutputDir:     dir,
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})

	g.PointerDown(brush.Point{X: 5, Y: 5})
	g.PointerUp(brush.Point{X: 5, Y: 5})
	g.StepOnce() // input waits for the next frame
	g.Frame(t0, nil)
	g.StepOnce()

	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}
	w := windows[0]
	if w.WindowEndTick != 2 || w.TicksRun != 2 {
		t.Errorf("window end=%d run=%d, want 2/2", w.WindowEndTick, w.TicksRun)
	}
	if w.Strokes != 2 || w.Created != 5 || w.Particles != 5 || w.Sand != 5 {
		t.Errorf("window = %+v", w)
	}
	if g.LastWindow().WindowEndTick != 2 {
		t.Errorf("LastWindow end = %d", g.LastWindow().WindowEndTick)
	}

	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestFrameRenders(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	px := renderer.NewPixels(20, 20)

	g.PointerDown(brush.Point{X: 3, Y: 0})
	g.Frame(t0, px)

	sand := elements.DefaultRegistry().Get(elements.Sand).Color.RGBA8()
	// Flipped: world row 0 is the last pixel row.
	if got := px.At(3, 19); got != sand {
		t.Errorf("pixel (3,19) = %v, want sand %v", got, sand)
	}
	if got := px.At(3, 0); got == sand {
		t.Error("world row 0 rendered at the top")
	}
}
