package ui

import (
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID names a toggleable overlay.
type OverlayID string

const (
	OverlayHelp         OverlayID = "help"
	OverlayStats        OverlayID = "stats"
	OverlayPerf         OverlayID = "perf"
	OverlayInspector    OverlayID = "inspector"
	OverlayBrushOutline OverlayID = "brush_outline"
	OverlayGridLines    OverlayID = "grid_lines"
)

// OverlayGroup orders overlays in the help panel.
type OverlayGroup uint8

const (
	GroupPanels OverlayGroup = iota
	GroupWorld
)

func (g OverlayGroup) String() string {
	if g == GroupWorld {
		return "World"
	}
	return "Panels"
}

// Overlay describes one toggle.
type Overlay struct {
	ID    OverlayID
	Name  string
	Key   int32 // raylib key code, 0 for none
	Label string
	Group OverlayGroup
	On    bool
}

// Overlays holds the toggle state of every overlay in registration order.
type Overlays struct {
	list []Overlay
}

// NewOverlays returns the standard set with its startup state.
func NewOverlays() *Overlays {
	return &Overlays{list: []Overlay{
		{ID: OverlayHelp, Name: "Help", Key: rl.KeyF1, Label: "F1", Group: GroupPanels},
		{ID: OverlayStats, Name: "World Stats", Key: rl.KeyT, Label: "T", Group: GroupPanels, On: true},
		{ID: OverlayPerf, Name: "Frame Timing", Key: rl.KeyP, Label: "P", Group: GroupPanels},
		{ID: OverlayInspector, Name: "Cell Inspector", Key: rl.KeyI, Label: "I", Group: GroupPanels},
		{ID: OverlayBrushOutline, Name: "Brush Outline", Key: rl.KeyB, Label: "B", Group: GroupWorld, On: true},
		{ID: OverlayGridLines, Name: "Grid Lines", Key: rl.KeyG, Label: "G", Group: GroupWorld},
	}}
}

func (o *Overlays) find(id OverlayID) int {
	return slices.IndexFunc(o.list, func(ov Overlay) bool { return ov.ID == id })
}

// Enabled reports whether id is on. Unknown ids are off.
func (o *Overlays) Enabled(id OverlayID) bool {
	i := o.find(id)
	return i >= 0 && o.list[i].On
}

// Toggle flips id and returns its new state.
func (o *Overlays) Toggle(id OverlayID) bool {
	i := o.find(id)
	if i < 0 {
		return false
	}
	o.list[i].On = !o.list[i].On
	return o.list[i].On
}

// InGroup returns the overlays of g in registration order.
func (o *Overlays) InGroup(g OverlayGroup) []Overlay {
	var out []Overlay
	for _, ov := range o.list {
		if ov.Group == g {
			out = append(out, ov)
		}
	}
	return out
}

// HandleKeys toggles every overlay whose key was pressed this frame.
func (o *Overlays) HandleKeys() {
	for _, ov := range o.list {
		if ov.Key != 0 && rl.IsKeyPressed(ov.Key) {
			o.Toggle(ov.ID)
		}
	}
}
