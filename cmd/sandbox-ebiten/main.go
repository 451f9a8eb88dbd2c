// Ebiten frontend: one logical pixel per cell, scaled up by the window.
//
// Usage: go run ./cmd/sandbox-ebiten [-config path]
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/pthm-cable/sandfall/brush"
	"github.com/pthm-cable/sandfall/config"
	"github.com/pthm-cable/sandfall/game"
	"github.com/pthm-cable/sandfall/renderer"
)

var errQuit = errors.New("quit")

var numberKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

// sandbox adapts game.Game to ebiten.Game.
type sandbox struct {
	game *game.Game
	px   *renderer.Pixels
	buf  []byte

	w, h  int
	flipY bool
	debug bool

	painting  bool
	lastPaint brush.Point
}

func (s *sandbox) Update() error {
	now := time.Now()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return errQuit
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		s.game.SetRunning(!s.game.Running(), now)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) && !s.game.Running() {
		s.game.StepOnce()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		s.game.SetEraser(!s.game.Erasing())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		s.game.Clear()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := s.game.Reset(); err != nil {
			slog.Error("reset failed", "error", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		s.debug = !s.debug
	}

	i := 0
	for k := range s.game.World().Elements().All() {
		if i >= len(numberKeys) {
			break
		}
		if inpututil.IsKeyJustPressed(numberKeys[i]) {
			if err := s.game.SelectKind(k); err != nil {
				slog.Warn("element not selectable", "kind", k, "error", err)
			}
		}
		i++
	}

	step := s.game.Config().Brush.Step
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
		s.game.AdjustRadius(-step)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
		s.game.AdjustRadius(step)
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		s.game.AdjustRadius(wy * step)
	}

	s.handlePointer()

	s.game.Frame(now, s.px)
	return nil
}

// handlePointer turns left-button gestures into pointer events.
func (s *sandbox) handlePointer() {
	p := s.cursorCell()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		s.painting = true
		s.lastPaint = p
		s.game.PointerDown(p)
	case s.painting && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		s.painting = false
		s.game.PointerUp(p)
	case s.painting && p != s.lastPaint:
		s.lastPaint = p
		s.game.PointerMove(p)
	}
}

// cursorCell maps the cursor in logical pixels to a world cell.
func (s *sandbox) cursorCell() brush.Point {
	cx, cy := ebiten.CursorPosition()
	if s.flipY {
		cy = s.h - 1 - cy
	}
	return brush.Point{X: float64(cx), Y: float64(cy)}
}

func (s *sandbox) Draw(screen *ebiten.Image) {
	s.game.RecordFrame()
	s.buf = s.px.Bytes(s.buf)
	screen.WritePixels(s.buf)

	if s.debug {
		b := s.game.Brush()
		label := "eraser"
		if !b.Mode.IsErase() {
			label = s.game.World().Elements().Get(b.Mode.Kind()).Name
		}
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"FPS %.0f  TPS %.0f\nparticles %d tick %d\n%s r=%.1f",
			ebiten.ActualFPS(), ebiten.ActualTPS(),
			s.game.World().Len(), s.game.Tick(), label, b.Radius,
		))
	}
}

// Layout reports the grid size as the logical screen.
func (s *sandbox) Layout(_, _ int) (int, int) { return s.w, s.h }

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	g, err := game.New(game.Options{Config: cfg, OutputDir: *outputDir})
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	w, h := cfg.Derived.WorldW, cfg.Derived.WorldH
	s := &sandbox{
		game:  g,
		px:    renderer.NewPixels(w, h),
		w:     w,
		h:     h,
		flipY: cfg.Render.FlipY,
		debug: true,
	}

	ebiten.SetWindowSize(w*cfg.Screen.CellSize, h*cfg.Screen.CellSize)
	ebiten.SetWindowTitle("Sandfall (ebiten)")
	ebiten.SetTPS(cfg.Screen.TargetFPS)
	if err := ebiten.RunGame(s); err != nil && !errors.Is(err, errQuit) {
		slog.Error("ebiten exited", "error", err)
	}
}
