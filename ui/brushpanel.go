package ui

import (
	"fmt"
	"log/slog"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sandfall/brush"
	"github.com/pthm-cable/sandfall/elements"
)

// BrushTarget is the game state the brush panel edits.
type BrushTarget interface {
	Brush() brush.Brush
	DrawKind() elements.Kind
	SelectKind(elements.Kind) error
	SetEraser(on bool)
	Erasing() bool
	AdjustRadius(delta float64)
	Running() bool
	SetRunning(on bool, now time.Time)
	StepOnce()
	Clear()
}

const (
	buttonHeight = 24
	rowGap       = 4
)

// BrushPanel is the toolbar for picking elements, the eraser and the radius.
type BrushPanel struct {
	x, y  int32
	width int32

	kinds  []elements.Kind
	names  []string
	colors []rl.Color

	minRadius, maxRadius float32
}

// NewBrushPanel creates a panel listing every element in reg.
func NewBrushPanel(reg *elements.Registry, minRadius, maxRadius float64, x, y, width int32) *BrushPanel {
	p := &BrushPanel{
		x:         x,
		y:         y,
		width:     width,
		minRadius: float32(minRadius),
		maxRadius: float32(maxRadius),
	}
	for k, e := range reg.All() {
		p.kinds = append(p.kinds, k)
		p.names = append(p.names, e.Name)
		p.colors = append(p.colors, e.Color.RGBA8())
	}
	return p
}

// SetPosition updates the panel position.
func (p *BrushPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Kinds returns the element kinds in button order.
func (p *BrushPanel) Kinds() []elements.Kind { return p.kinds }

func (p *BrushPanel) elementRows() int32 {
	return int32(len(p.kinds)+1) / 2
}

// Bounds returns the screen rectangle the panel covers.
func (p *BrushPanel) Bounds() rl.Rectangle {
	pad := theme.Padding
	rows := p.elementRows() + 3 // eraser, radius, run controls
	height := pad*2 + 22 + rows*(buttonHeight+rowGap) + 18
	return rl.Rectangle{X: float32(p.x), Y: float32(p.y), Width: float32(p.width), Height: float32(height)}
}

// Contains reports whether the screen point is over the panel, so pointer
// input there is not painted into the world.
func (p *BrushPanel) Contains(pt rl.Vector2) bool {
	return rl.CheckCollisionPointRec(pt, p.Bounds())
}

// Draw renders the panel and applies any button or slider changes to t.
func (p *BrushPanel) Draw(t BrushTarget, now time.Time) {
	b := p.Bounds()
	drawBox(p.x, p.y, p.width, int32(b.Height))

	pad := float32(theme.Padding)
	x := float32(p.x) + pad
	y := float32(p.y) + pad
	inner := float32(p.width) - 2*pad
	half := (inner - rowGap) / 2

	rl.DrawText("Brush", int32(x), int32(y), theme.TitleSize, rl.White)
	y += 22

	selected := t.DrawKind()
	for i, k := range p.kinds {
		bx := x
		if i%2 == 1 {
			bx += half + rowGap
		}
		rect := rl.Rectangle{X: bx, Y: y, Width: half, Height: buttonHeight}
		if gui.Button(rect, p.names[i]) {
			if err := t.SelectKind(k); err != nil {
				slog.Warn("element not selectable", "kind", k, "error", err)
			}
		}
		rl.DrawRectangle(int32(bx)+4, int32(y)+8, 8, 8, p.colors[i])
		if k == selected && !t.Erasing() {
			rl.DrawRectangleLinesEx(rect, 2, theme.Header)
		}
		if i%2 == 1 || i == len(p.kinds)-1 {
			y += buttonHeight + rowGap
		}
	}

	eraser := rl.Rectangle{X: x, Y: y, Width: inner, Height: buttonHeight}
	if gui.Button(eraser, toggleText(t.Erasing(), "Eraser: on", "Eraser: off")) {
		t.SetEraser(!t.Erasing())
	}
	if t.Erasing() {
		rl.DrawRectangleLinesEx(eraser, 2, theme.Header)
	}
	y += buttonHeight + rowGap

	radius := float32(t.Brush().Radius)
	rl.DrawText(fmt.Sprintf("Radius %.1f", radius), int32(x), int32(y), theme.FontSize, theme.Label)
	y += 14
	newRadius := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: inner, Height: 16},
		"", "",
		radius, p.minRadius, p.maxRadius,
	)
	if newRadius != radius {
		t.AdjustRadius(float64(newRadius - radius))
	}
	y += buttonHeight + rowGap

	third := (inner - 2*rowGap) / 3
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: third, Height: buttonHeight}, toggleText(t.Running(), "Pause", "Run")) {
		t.SetRunning(!t.Running(), now)
	}
	if gui.Button(rl.Rectangle{X: x + third + rowGap, Y: y, Width: third, Height: buttonHeight}, "Step") && !t.Running() {
		t.StepOnce()
	}
	if gui.Button(rl.Rectangle{X: x + 2*(third+rowGap), Y: y, Width: third, Height: buttonHeight}, "Clear") {
		t.Clear()
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
