// Package ui draws the raylib frontend: the grid texture, HUD panels and the
// brush toolbar. Info panels are declared as typed layouts so their rows
// follow the data they show.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

type rowKind uint8

const (
	rowText rowKind = iota
	rowBar
	rowSwatch
)

// Row is one line of a Panel over data of type T.
type Row[T any] struct {
	Label string
	kind  rowKind
	text  func(T) string
	value func(T) float32
	color func(T) rl.Color
	// When set, the row is drawn only if it returns true.
	When func(T) bool
}

// TextRow shows label: text(d).
func TextRow[T any](label string, text func(T) string) Row[T] {
	return Row[T]{Label: label, kind: rowText, text: text}
}

// BarRow shows value(d), clamped to [0, 1], as a filled bar.
func BarRow[T any](label string, value func(T) float32) Row[T] {
	return Row[T]{Label: label, kind: rowBar, value: value}
}

// SwatchRow shows a small square of color(d).
func SwatchRow[T any](label string, color func(T) rl.Color) Row[T] {
	return Row[T]{Label: label, kind: rowSwatch, color: color}
}

// OnlyIf returns r drawn only when cond holds.
func (r Row[T]) OnlyIf(cond func(T) bool) Row[T] {
	r.When = cond
	return r
}

// Group is a titled run of rows. An empty title draws no header.
type Group[T any] struct {
	Title string
	Rows  []Row[T]
	When  func(T) bool
}

// Panel is a boxed, titled layout of groups.
type Panel[T any] struct {
	Title  string
	Width  int32
	Groups []Group[T]
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg     rl.Color
	PanelBorder rl.Color
	Header      rl.Color
	Label       rl.Color
	Value       rl.Color
	BarBg       rl.Color
	BarFill     rl.Color
	Muted       rl.Color
	Padding     int32
	LineHeight  int32
	LabelWidth  int32
	BarHeight   int32
	FontSize    int32
	HeaderSize  int32
	TitleSize   int32
}

var theme = Theme{
	PanelBg:     rl.Color{R: 20, G: 25, B: 30, A: 230},
	PanelBorder: rl.Color{R: 60, G: 70, B: 80, A: 255},
	Header:      rl.Yellow,
	Label:       rl.LightGray,
	Value:       rl.RayWhite,
	BarBg:       rl.Color{R: 40, G: 40, B: 40, A: 255},
	BarFill:     rl.Color{R: 194, G: 170, B: 110, A: 255},
	Muted:       rl.Color{R: 150, G: 150, B: 150, A: 255},
	Padding:     10,
	LineHeight:  16,
	LabelWidth:  70,
	BarHeight:   12,
	FontSize:    12,
	HeaderSize:  14,
	TitleSize:   16,
}
