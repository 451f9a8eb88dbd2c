package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sandfall/arena"
	"github.com/pthm-cable/sandfall/elements"
	"github.com/pthm-cable/sandfall/particles"
)

// CellInfo describes one grid cell for the inspector.
type CellInfo struct {
	X, Y     int
	Occupied bool
	Handle   arena.Handle
	Particle particles.Particle
	Element  elements.Element
}

// InspectCell reads cell (x, y) of w. ok is false outside the grid.
func InspectCell(w *particles.System, x, y int) (info CellInfo, ok bool) {
	if !w.InBounds(x, y) {
		return CellInfo{}, false
	}
	info = CellInfo{X: x, Y: y}
	h, found := w.HandleAt(x, y)
	if !found {
		return info, true
	}
	p, _ := w.Particle(h)
	info.Occupied = true
	info.Handle = h
	info.Particle = *p
	info.Element = *w.Elements().Get(p.Kind)
	return info, true
}

func occupied(c CellInfo) bool { return c.Occupied }

func decimal(f func(CellInfo) float64) func(CellInfo) string {
	return func(c CellInfo) string { return fmt.Sprintf("%.2f", f(c)) }
}

// inspectorPanel lays out a CellInfo.
var inspectorPanel = Panel[CellInfo]{
	Title: "Cell",
	Width: 230,
	Groups: []Group[CellInfo]{
		{
			Rows: []Row[CellInfo]{
				TextRow("Position", func(c CellInfo) string { return fmt.Sprintf("(%d, %d)", c.X, c.Y) }),
				TextRow("State", func(CellInfo) string { return "empty" }).
					OnlyIf(func(c CellInfo) bool { return !c.Occupied }),
			},
		},
		{
			Title: "Particle",
			When:  occupied,
			Rows: []Row[CellInfo]{
				TextRow("Handle", func(c CellInfo) string { return c.Handle.String() }),
				TextRow("Kind", func(c CellInfo) string { return c.Particle.Kind.String() }),
				TextRow("Velocity", func(c CellInfo) string {
					return fmt.Sprintf("%.2f, %.2f", c.Particle.VX, c.Particle.VY)
				}),
			},
		},
		{
			Title: "Element",
			When:  occupied,
			Rows: []Row[CellInfo]{
				TextRow("Name", func(c CellInfo) string { return c.Element.Name }),
				SwatchRow("Color", func(c CellInfo) rl.Color { return c.Element.Color.RGBA8() }),
				TextRow("Gravity", decimal(func(c CellInfo) float64 { return c.Element.Gravity })),
				TextRow("Density", decimal(func(c CellInfo) float64 { return c.Element.Density })),
				TextRow("Flow", func(c CellInfo) string { return fmt.Sprintf("%d", c.Element.Flow) }),
			},
		},
	},
}

// Inspector renders the cell inspection panel.
type Inspector struct {
	x, y int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y int32) *Inspector {
	return &Inspector{x: x, y: y}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel for info and returns its bottom edge.
func (ins *Inspector) Draw(info CellInfo) int32 {
	return inspectorPanel.Draw(ins.x, ins.y, info)
}
