package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// drawBox draws a panel background with border.
func drawBox(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, theme.PanelBorder)
}

func drawHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, theme.HeaderSize, theme.Header)
	return y + theme.LineHeight
}

func drawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, theme.FontSize, theme.Label)
	rl.DrawText(value, x+theme.LabelWidth, y, theme.FontSize, theme.Value)
	return y + theme.LineHeight
}

func drawBar(x, y, width int32, label string, value float32) int32 {
	value = min(max(value, 0), 1)
	barX := x + theme.LabelWidth
	barWidth := width - theme.LabelWidth - 40

	rl.DrawText(label+":", x, y, theme.FontSize, theme.Label)
	rl.DrawRectangle(barX, y+2, barWidth, theme.BarHeight, theme.BarBg)
	rl.DrawRectangle(barX, y+2, int32(float32(barWidth)*value), theme.BarHeight, theme.BarFill)
	rl.DrawText(fmt.Sprintf("%.0f%%", value*100), barX+barWidth+5, y, theme.FontSize, theme.Value)
	return y + theme.LineHeight + 2
}

func drawSwatch(x, y int32, label string, color rl.Color) int32 {
	const size = 12
	rl.DrawText(label+":", x, y, theme.FontSize, theme.Label)
	rl.DrawRectangle(x+theme.LabelWidth, y+1, size, size, color)
	rl.DrawRectangleLines(x+theme.LabelWidth, y+1, size, size, theme.PanelBorder)
	return y + theme.LineHeight
}

func (r Row[T]) visible(d T) bool { return r.When == nil || r.When(d) }

func (g Group[T]) visible(d T) bool { return g.When == nil || g.When(d) }

func (r Row[T]) height() int32 {
	if r.kind == rowBar {
		return theme.LineHeight + 2
	}
	return theme.LineHeight
}

func (r Row[T]) draw(x, y, width int32, d T) int32 {
	switch r.kind {
	case rowText:
		return drawLabelValue(x, y, r.Label, r.text(d))
	case rowBar:
		return drawBar(x, y, width, r.Label, r.value(d))
	case rowSwatch:
		return drawSwatch(x, y, r.Label, r.color(d))
	}
	return y + r.height()
}

// Height measures the panel as Draw would lay it out for d.
func (p Panel[T]) Height(d T) int32 {
	h := theme.Padding * 2
	if p.Title != "" {
		h += theme.LineHeight + 4
	}
	for _, g := range p.Groups {
		if !g.visible(d) {
			continue
		}
		if g.Title != "" {
			h += theme.LineHeight
		}
		for _, r := range g.Rows {
			if r.visible(d) {
				h += r.height()
			}
		}
		h += 4
	}
	return h
}

// Draw renders the panel for d at (x, y) and returns its bottom edge.
func (p Panel[T]) Draw(x, y int32, d T) int32 {
	height := p.Height(d)
	drawBox(x, y, p.Width, height)

	cx := x + theme.Padding
	cy := y + theme.Padding
	inner := p.Width - theme.Padding*2
	if p.Title != "" {
		rl.DrawText(p.Title, cx, cy, theme.TitleSize, rl.White)
		cy += theme.LineHeight + 4
	}
	for _, g := range p.Groups {
		if !g.visible(d) {
			continue
		}
		if g.Title != "" {
			cy = drawHeader(cx, cy, g.Title)
		}
		for _, r := range g.Rows {
			if r.visible(d) {
				cy = r.draw(cx, cy, inner, d)
			}
		}
		cy += 4
	}
	return y + height
}
