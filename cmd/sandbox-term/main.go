// Terminal frontend: two cells per character using half blocks.
//
// Usage: go run ./cmd/sandbox-term [-config path] [-sound]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/sandfall/brush"
	"github.com/pthm-cable/sandfall/config"
	"github.com/pthm-cable/sandfall/game"
	"github.com/pthm-cable/sandfall/renderer"
)

const statusRows = 1

var background = color.RGBA{R: 12, G: 14, B: 18, A: 255}

type term struct {
	screen tcell.Screen
	game   *game.Game
	px     *renderer.Pixels
	clicks *clicker

	flipY     bool
	painting  bool
	lastPaint brush.Point
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	sound := flag.Bool("sound", false, "Play a click when a stroke starts")
	logPath := flag.String("log", "", "Log file (the terminal is taken by the UI)")
	flag.Parse()

	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		slog.SetDefault(slog.New(slog.NewJSONHandler(f, nil)))
	} else {
		slog.SetDefault(slog.New(slog.DiscardHandler))
	}

	if err := run(*configPath, *outputDir, *sound); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, outputDir string, sound bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseDragEvents)

	cols, rows := screen.Size()
	if err := cfg.SetWorldSize(cols, (rows-statusRows)*2); err != nil {
		return fmt.Errorf("terminal too small: %w", err)
	}

	g, err := game.New(game.Options{Config: cfg, OutputDir: outputDir})
	if err != nil {
		return err
	}
	defer g.Unload()

	t := &term{
		screen: screen,
		game:   g,
		px:     renderer.NewPixels(cfg.Derived.WorldW, cfg.Derived.WorldH),
		flipY:  cfg.Render.FlipY,
	}
	if sound {
		t.clicks, err = newClicker()
		if err != nil {
			slog.Warn("audio unavailable", "error", err)
		} else {
			defer t.clicks.Close()
		}
	}

	t.loop(time.Second / time.Duration(max(cfg.Screen.TargetFPS, 1)))
	return nil
}

// loop owns the game; input arrives from the polling goroutine.
func (t *term) loop(frame time.Duration) {
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	events := make(chan tcell.Event, 100)
	go pumpEvents(t.screen.PollEvent, events, done)

	for {
		select {
		case ev, ok := <-events:
			if !ok || !t.handleEvent(ev) {
				return
			}
		case now := <-ticker.C:
			t.game.Frame(now, t.px)
			t.game.RecordFrame()
			t.draw()
		}
	}
}

// pumpEvents forwards polled events until poll returns nil, which closes
// events, or until done is closed.
func pumpEvents(poll func() tcell.Event, events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := poll()
		if ev == nil {
			close(events)
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

// handleEvent applies one terminal event and reports whether to keep running.
func (t *term) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return t.handleKey(ev)
	case *tcell.EventMouse:
		t.handleMouse(ev)
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return true
}

func (t *term) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
	default:
		return true
	}

	step := t.game.Config().Brush.Step
	switch r := ev.Rune(); {
	case r == 'q':
		return false
	case r == ' ':
		t.game.SetRunning(!t.game.Running(), time.Now())
	case r == 'n' && !t.game.Running():
		t.game.StepOnce()
	case r == 'e':
		t.game.SetEraser(!t.game.Erasing())
	case r == 'c':
		t.game.Clear()
	case r == 'r':
		if err := t.game.Reset(); err != nil {
			slog.Error("reset failed", "error", err)
		}
	case r == '[':
		t.game.AdjustRadius(-step)
	case r == ']':
		t.game.AdjustRadius(step)
	case r >= '1' && r <= '9':
		t.selectNth(int(r - '1'))
	}
	return true
}

// selectNth picks the nth registered element.
func (t *term) selectNth(n int) {
	i := 0
	for k := range t.game.World().Elements().All() {
		if i == n {
			if err := t.game.SelectKind(k); err != nil {
				slog.Warn("element not selectable", "kind", k, "error", err)
			}
			return
		}
		i++
	}
}

// handleMouse turns button state changes into pointer events. tcell reports
// the held buttons on every event, so press and release are edges.
func (t *term) handleMouse(ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	step := t.game.Config().Brush.Step
	if buttons&tcell.WheelUp != 0 {
		t.game.AdjustRadius(step)
	}
	if buttons&tcell.WheelDown != 0 {
		t.game.AdjustRadius(-step)
	}

	mx, my := ev.Position()
	p := t.cellAt(mx, my)
	down := buttons&tcell.Button1 != 0

	switch {
	case down && !t.painting:
		t.painting = true
		t.lastPaint = p
		t.game.PointerDown(p)
		if t.clicks != nil {
			t.clicks.Click()
		}
	case down && p != t.lastPaint:
		t.lastPaint = p
		t.game.PointerMove(p)
	case !down && t.painting:
		t.painting = false
		t.game.PointerUp(p)
	}
}

// cellAt maps a terminal position to the world cell drawn in its upper half.
func (t *term) cellAt(col, row int) brush.Point {
	y := row * 2
	if t.flipY {
		y = t.px.Height - 1 - y
	}
	return brush.Point{X: float64(col), Y: float64(y)}
}

// draw paints two pixel rows per terminal row: upper as foreground, lower as
// background of a half block.
func (t *term) draw() {
	px := t.px
	for row := 0; row*2 < px.Height; row++ {
		for col := 0; col < px.Width; col++ {
			top := blend(px.At(col, row*2))
			bottom := background
			if row*2+1 < px.Height {
				bottom = blend(px.At(col, row*2+1))
			}
			style := tcell.StyleDefault.Foreground(rgb(top)).Background(rgb(bottom))
			t.screen.SetContent(col, row, '▀', nil, style)
		}
	}
	t.drawStatus(px.Height / 2)
	t.screen.Show()
}

func (t *term) drawStatus(row int) {
	b := t.game.Brush()
	label := "eraser"
	if !b.Mode.IsErase() {
		label = t.game.World().Elements().Get(b.Mode.Kind()).Name
	}
	state := "running"
	if !t.game.Running() {
		state = "paused"
	}
	status := fmt.Sprintf(" %s r=%.1f | %d particles | tick %d | %s | 1-9 element e eraser [ ] radius space pause c clear q quit",
		label, b.Radius, t.game.World().Len(), t.game.Tick(), state)

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	w, _ := t.screen.Size()
	col := 0
	for _, r := range status {
		if col >= w {
			break
		}
		t.screen.SetContent(col, row, r, nil, style)
		col++
	}
	for ; col < w; col++ {
		t.screen.SetContent(col, row, ' ', nil, style)
	}
}

// blend composites c over the background.
func blend(c color.RGBA) color.RGBA {
	a := uint32(c.A)
	mix := func(fg, bg uint8) uint8 {
		return uint8((uint32(fg)*a + uint32(bg)*(255-a)) / 255)
	}
	return color.RGBA{R: mix(c.R, background.R), G: mix(c.G, background.G), B: mix(c.B, background.B), A: 255}
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
