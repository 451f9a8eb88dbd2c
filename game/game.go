// Package game drives the sandbox: it owns the world and runs the per-frame
// input, tick and telemetry loop shared by every frontend.
package game

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/sandfall/brush"
	"github.com/pthm-cable/sandfall/config"
	"github.com/pthm-cable/sandfall/elements"
	"github.com/pthm-cable/sandfall/input"
	"github.com/pthm-cable/sandfall/particles"
	"github.com/pthm-cable/sandfall/renderer"
	"github.com/pthm-cable/sandfall/systems"
	"github.com/pthm-cable/sandfall/telemetry"
)

// Options configures a Game.
type Options struct {
	Config    *config.Config
	OutputDir string // CSV output directory; empty disables output
	LogStats  bool   // log each telemetry window via slog

	// Stepper overrides simulation.stepper when non-nil.
	Stepper systems.Stepper

	// StatsCallback, if set, receives every flushed telemetry window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete sandbox state.
type Game struct {
	cfg   *config.Config
	world *particles.System

	// Brush state
	brush    brush.Brush
	drawKind elements.Kind

	// Input
	pointer input.Pointer
	events  input.Queue

	// Simulation
	clock   *Clock
	stepper systems.Stepper
	running bool
	tick    int64

	renderer renderer.Renderer

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
	lastWindow    telemetry.WindowStats
}

// New builds a game from opts: the element registry, an empty world of the
// configured size, the stepper and the initial terrain.
func New(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	kind, ok := reg.KindByName(cfg.Brush.Element)
	if !ok {
		return nil, fmt.Errorf("brush element %q not registered", cfg.Brush.Element)
	}

	stepper := opts.Stepper
	if stepper == nil {
		stepper, err = systems.NewStepper(cfg.Simulation.Stepper, cfg.Simulation.Seed)
		if err != nil {
			return nil, err
		}
	}

	g := &Game{
		cfg:      cfg,
		world:    particles.New(cfg.Derived.WorldW, cfg.Derived.WorldH, reg, cfg.World.Capacity),
		brush:    brush.Brush{Radius: cfg.Brush.Radius, Mode: particles.DrawMode(kind)},
		drawKind: kind,
		clock:    NewClock(cfg.Derived.TickDuration, cfg.Simulation.MaxTicksPerFrame),
		stepper:  stepper,
		running:  !cfg.Simulation.StartPaused,
		renderer: renderer.Renderer{
			Empty: cfg.Derived.EmptyColor,
			FlipY: cfg.Render.FlipY,
		},
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.TickDuration.Seconds()),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}

	if cfg.Terrain.Enabled {
		n, err := systems.SeedTerrain(g.world, cfg.Terrain)
		if err != nil {
			return nil, fmt.Errorf("seeding terrain: %w", err)
		}
		slog.Debug("terrain seeded", "particles", n)
	}

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		g.outputManager.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return g, nil
}

// Frame runs one frame: queued pointer events are applied through the brush,
// then the ticks owed since the last frame are run. When px is non-nil the
// world is also rendered into it. Frontends call Frame once per displayed
// frame; headless runs may pass nil.
func (g *Game) Frame(now time.Time, px *renderer.Pixels) {
	g.perfCollector.BeginFrame()

	g.perfCollector.Enter(telemetry.PhaseInput)
	g.applyInput()

	if g.running {
		run, dropped := g.clock.Advance(now)
		g.collector.RecordTicks(run, dropped)
		for range run {
			g.step()
		}
	}

	if px != nil {
		g.perfCollector.Enter(telemetry.PhaseRender)
		g.renderer.Render(g.world, px)
	}

	g.perfCollector.EndFrame()
	g.flushTelemetry()
}

// StepOnce runs a single tick regardless of the clock, for stepping while
// paused.
func (g *Game) StepOnce() {
	g.collector.RecordTicks(1, 0)
	g.step()
	g.flushTelemetry()
}

// applyInput drains the event queue through the pointer and brush.
func (g *Game) applyInput() {
	g.events.Drain(func(e input.Event) {
		stroke := g.pointer.Feed(e)
		st := input.Apply(g.world, stroke, g.brush)
		g.collector.RecordStroke(st)
	})
}

// step advances the world by one tick.
func (g *Game) step() {
	g.perfCollector.Enter(telemetry.PhaseStep)
	moves := g.stepper.Step(g.world)
	g.collector.RecordMoves(moves)
	g.tick++

	if g.cfg.Simulation.Validate {
		g.perfCollector.Enter(telemetry.PhaseValidate)
		if err := g.world.Validate(); err != nil {
			panic(fmt.Sprintf("game: world corrupted after tick %d: %v", g.tick, err))
		}
	}
}

// PointerDown queues a press at world point p.
func (g *Game) PointerDown(p brush.Point) {
	g.events.Push(input.Event{Type: input.EventPress, Point: p})
}

// PointerMove queues a move to world point p.
func (g *Game) PointerMove(p brush.Point) {
	g.events.Push(input.Event{Type: input.EventMove, Point: p})
}

// PointerUp queues a release at world point p.
func (g *Game) PointerUp(p brush.Point) {
	g.events.Push(input.Event{Type: input.EventRelease, Point: p})
}

// PointerIsDown reports whether the events applied so far left the pointer
// pressed. Queued events count once the next Frame drains them.
func (g *Game) PointerIsDown() bool { return g.pointer.Down() }

// Brush returns the current brush.
func (g *Game) Brush() brush.Brush { return g.brush }

// SetBrush replaces the brush, clamping its radius to the configured bounds.
// A draw-mode brush must name a registered kind.
func (g *Game) SetBrush(b brush.Brush) error {
	if !b.Mode.IsErase() {
		if _, ok := g.world.Elements().Lookup(b.Mode.Kind()); !ok {
			return fmt.Errorf("brush kind %v not registered", b.Mode.Kind())
		}
		g.drawKind = b.Mode.Kind()
	}
	b.Radius = g.clampRadius(b.Radius)
	g.brush = b
	return nil
}

// SelectKind switches the brush to drawing kind.
func (g *Game) SelectKind(kind elements.Kind) error {
	return g.SetBrush(brush.Brush{Radius: g.brush.Radius, Mode: particles.DrawMode(kind)})
}

// SetEraser switches between erasing and drawing the last selected kind.
func (g *Game) SetEraser(on bool) {
	if on {
		g.brush.Mode = particles.EraseMode()
	} else {
		g.brush.Mode = particles.DrawMode(g.drawKind)
	}
}

// Erasing reports whether the brush erases.
func (g *Game) Erasing() bool { return g.brush.Mode.IsErase() }

// DrawKind returns the kind the brush draws when not erasing.
func (g *Game) DrawKind() elements.Kind { return g.drawKind }

// AdjustRadius changes the brush radius by delta within the configured bounds.
func (g *Game) AdjustRadius(delta float64) {
	g.brush.Radius = g.clampRadius(g.brush.Radius + delta)
}

func (g *Game) clampRadius(r float64) float64 {
	return min(max(r, g.cfg.Brush.MinRadius), g.cfg.Brush.MaxRadius)
}

// SetRunning starts or pauses the simulation. Resuming restarts the clock at
// now so time spent paused is never owed.
func (g *Game) SetRunning(on bool, now time.Time) {
	if on && !g.running {
		g.clock.Start(now)
	}
	g.running = on
}

// Running reports whether ticks are being run.
func (g *Game) Running() bool { return g.running }

// Tick returns the number of ticks run so far.
func (g *Game) Tick() int64 { return g.tick }

// World returns the particle world for read access.
func (g *Game) World() *particles.System { return g.world }

// Config returns the configuration the game was built with.
func (g *Game) Config() *config.Config { return g.cfg }

// RecordFrame marks a displayed frame for FPS measurement.
func (g *Game) RecordFrame() { g.perfCollector.MarkPresent() }

// Perf returns the rolling frame timing statistics.
func (g *Game) Perf() telemetry.PerfStats { return g.perfCollector.Stats() }

// LastWindow returns the most recently flushed telemetry window.
func (g *Game) LastWindow() telemetry.WindowStats { return g.lastWindow }

// Clear removes every particle.
func (g *Game) Clear() {
	g.world.Clear()
}

// Reset clears the world and reseeds the terrain.
func (g *Game) Reset() error {
	g.world.Clear()
	if !g.cfg.Terrain.Enabled {
		return nil
	}
	_, err := systems.SeedTerrain(g.world, g.cfg.Terrain)
	return err
}

// Unload flushes and closes telemetry output.
func (g *Game) Unload() {
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
