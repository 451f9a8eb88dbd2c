// Package grid provides the dense cell grid mapping integer coordinates to
// particle handles.
package grid

import (
	"errors"
	"fmt"
	"iter"

	"github.com/pthm-cable/sandfall/arena"
)

// ErrOutOfBounds is returned when a write targets a cell outside the grid.
var ErrOutOfBounds = errors.New("grid: out of bounds")

// Grid is a dense width x height array of optional handles.
// Cells are stored row-fastest (index = y*width + x) so that iteration lines
// up with a same-sized pixel buffer. An empty cell holds the zero Handle.
type Grid struct {
	width  int
	height int
	cells  []arena.Handle
}

// New creates a grid with every cell empty.
func New(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]arena.Handle, width*height),
	}
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x, y) lies inside [0,width) x [0,height).
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Index returns the linear cell index for (x, y). The caller must check bounds.
func (g *Grid) Index(x, y int) int { return y*g.width + x }

// Coords returns the coordinates of linear cell index i.
func (g *Grid) Coords(i int) (x, y int) {
	return i % g.width, i / g.width
}

// Get returns the handle stored at (x, y). It reports false both for empty
// cells and for coordinates outside the grid.
func (g *Grid) Get(x, y int) (arena.Handle, bool) {
	if !g.InBounds(x, y) {
		return arena.Handle{}, false
	}
	h := g.cells[g.Index(x, y)]
	return h, !h.IsZero()
}

// Set writes h into (x, y). Writing the zero Handle empties the cell.
func (g *Grid) Set(x, y int, h arena.Handle) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d) outside %dx%d", ErrOutOfBounds, x, y, g.width, g.height)
	}
	g.cells[g.Index(x, y)] = h
	return nil
}

// Clear empties (x, y).
func (g *Grid) Clear(x, y int) error {
	return g.Set(x, y, arena.Handle{})
}

// Cells yields every cell's linear index and handle in row-major order.
// Empty cells yield the zero Handle.
func (g *Grid) Cells() iter.Seq2[int, arena.Handle] {
	return func(yield func(int, arena.Handle) bool) {
		for i, h := range g.cells {
			if !yield(i, h) {
				return
			}
		}
	}
}

// CellsMut yields a pointer to every cell in row-major order.
func (g *Grid) CellsMut() iter.Seq2[int, *arena.Handle] {
	return func(yield func(int, *arena.Handle) bool) {
		for i := range g.cells {
			if !yield(i, &g.cells[i]) {
				return
			}
		}
	}
}
