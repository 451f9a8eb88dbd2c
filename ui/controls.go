package ui

import (
	"fmt"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Binding is one entry of the key help.
type Binding struct {
	Keys   string
	Action string
}

// bindings lists the sandbox controls shown in the legend and the help panel.
var bindings = []Binding{
	{"LMB", "draw"},
	{"RMB drag", "pan"},
	{"wheel", "zoom"},
	{"shift+wheel [ ]", "radius"},
	{"1-9", "element"},
	{"E", "eraser"},
	{"space", "pause"},
	{"N", "step"},
	{"C", "clear"},
	{"R", "reset"},
	{"F1", "help"},
}

// legend joins the bindings into the one-line footer.
func legend(bs []Binding) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = b.Keys + " " + b.Action
	}
	return strings.Join(parts, " | ")
}

// HelpPanel lists the key bindings and the overlays with their state.
type HelpPanel struct {
	x, y  int32
	width int32
}

// NewHelpPanel creates a help panel.
func NewHelpPanel(x, y, width int32) *HelpPanel {
	return &HelpPanel{x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (h *HelpPanel) SetPosition(x, y int32) {
	h.x = x
	h.y = y
}

// Draw renders the panel and returns its bottom edge.
func (h *HelpPanel) Draw(overlays *Overlays) int32 {
	groups := []OverlayGroup{GroupPanels, GroupWorld}
	lines := len(bindings) + 1
	for _, g := range groups {
		lines += len(overlays.InGroup(g)) + 1
	}
	height := int32(lines)*theme.LineHeight + theme.Padding*2 + theme.LineHeight + 4

	drawBox(h.x, h.y, h.width, height)
	x := h.x + theme.Padding
	y := h.y + theme.Padding
	inner := h.width - theme.Padding*2

	rl.DrawText("Help", x, y, theme.TitleSize, rl.White)
	y += theme.LineHeight + 4

	y = drawHeader(x, y, "Keys")
	for _, b := range bindings {
		rl.DrawText(b.Action, x, y, theme.FontSize, theme.Label)
		drawRight(x+inner, y, b.Keys)
		y += theme.LineHeight
	}

	for _, g := range groups {
		y = drawHeader(x, y, g.String())
		for _, ov := range overlays.InGroup(g) {
			drawOverlayToggle(x, y, inner, ov)
			y += theme.LineHeight
		}
	}
	return h.y + height
}

func drawOverlayToggle(x, y, width int32, ov Overlay) {
	dot := rl.Color{R: 80, G: 80, B: 80, A: 255}
	name := theme.Label
	if ov.On {
		dot = rl.Color{R: 100, G: 200, B: 100, A: 255}
		name = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, dot)
	rl.DrawText(ov.Name, x+14, y, theme.FontSize, name)
	if ov.Label != "" {
		drawRight(x+width, y, fmt.Sprintf("[%s]", ov.Label))
	}
}

// drawRight draws muted text ending at x.
func drawRight(x, y int32, text string) {
	w := rl.MeasureText(text, theme.FontSize)
	rl.DrawText(text, x-w, y, theme.FontSize, theme.Muted)
}
