// Package particles composes the slot store, the cell grid and the element
// registry into the particle world, and is the only code allowed to mutate the
// grid and store together.
//
// Invariant: a grid cell holds handle h if and only if the particle stored
// under h has that cell as its position.
package particles

import (
	"errors"
	"fmt"
	"iter"

	"github.com/pthm-cable/sandfall/arena"
	"github.com/pthm-cable/sandfall/elements"
	"github.com/pthm-cable/sandfall/grid"
)

// ErrOccupied is returned by Move when the destination cell is taken.
var ErrOccupied = errors.New("particles: cell occupied")

// Particle is one grain of matter.
type Particle struct {
	Kind   elements.Kind
	X, Y   int     // Grid cell; kept equal to the cell holding this particle's handle
	VX, VY float64 // Velocity in cells per tick, owned by the simulation step
}

// Mode is the per-cell action of a brush: erase, or draw a given kind.
type Mode struct {
	erase bool
	kind  elements.Kind
}

// EraseMode returns the mode that removes particles.
func EraseMode() Mode { return Mode{erase: true} }

// DrawMode returns the mode that creates particles of kind k.
func DrawMode(k elements.Kind) Mode { return Mode{kind: k} }

// IsErase reports whether m removes particles.
func (m Mode) IsErase() bool { return m.erase }

// Kind returns the drawn kind. It is meaningless for erase mode.
func (m Mode) Kind() elements.Kind { return m.kind }

// String renders the mode.
func (m Mode) String() string {
	if m.erase {
		return "erase"
	}
	return "draw(" + m.kind.String() + ")"
}

// Outcome reports what DrawPoint did to a cell.
type Outcome uint8

const (
	NoOp Outcome = iota
	Created
	Deleted
)

// System is the particle world.
type System struct {
	store    *arena.Store[Particle]
	grid     *grid.Grid
	elements *elements.Registry
}

// New creates an empty world of width x height cells. capacity pre-sizes the
// particle store.
func New(width, height int, reg *elements.Registry, capacity int) *System {
	if reg == nil {
		reg = elements.DefaultRegistry()
	}
	return &System{
		store:    arena.New[Particle](capacity),
		grid:     grid.New(width, height),
		elements: reg,
	}
}

// Width returns the grid width in cells.
func (s *System) Width() int { return s.grid.Width() }

// Height returns the grid height in cells.
func (s *System) Height() int { return s.grid.Height() }

// InBounds reports whether (x, y) is a grid cell.
func (s *System) InBounds(x, y int) bool { return s.grid.InBounds(x, y) }

// Len returns the number of live particles.
func (s *System) Len() int { return s.store.Len() }

// Elements returns the element registry.
func (s *System) Elements() *elements.Registry { return s.elements }

// CreateParticle places a new particle of kind at (x, y) and returns its handle.
// The cell must be inside the grid and empty and kind must be registered;
// anything else is a caller bug and panics before the world is touched.
func (s *System) CreateParticle(x, y int, kind elements.Kind) arena.Handle {
	if !s.grid.InBounds(x, y) {
		panic(fmt.Sprintf("particles: create at (%d, %d) outside %dx%d grid", x, y, s.Width(), s.Height()))
	}
	if h, ok := s.grid.Get(x, y); ok {
		panic(fmt.Sprintf("particles: create at (%d, %d) over %v", x, y, h))
	}
	s.elements.Get(kind)

	h := s.store.Insert(Particle{Kind: kind, X: x, Y: y})
	mustGrid(s.grid.Set(x, y, h))
	return h
}

// DeleteParticle removes the particle for h and empties its cell.
// h must refer to a live particle whose cell holds h; otherwise the world has
// desynchronized and DeleteParticle panics.
func (s *System) DeleteParticle(h arena.Handle) {
	p := s.store.Get(h)
	if p == nil {
		panic(fmt.Sprintf("particles: delete of missing particle %v", h))
	}
	if cur, _ := s.grid.Get(p.X, p.Y); cur != h {
		panic(fmt.Sprintf("particles: %v at (%d, %d) but cell holds %v", h, p.X, p.Y, cur))
	}

	mustGrid(s.grid.Clear(p.X, p.Y))
	s.store.Remove(h)
}

// DrawPoint applies mode to a single cell. Erasing an empty cell and drawing
// onto an occupied cell are no-ops; drawing never replaces an existing
// particle. Coordinates outside the grid return grid.ErrOutOfBounds.
func (s *System) DrawPoint(x, y int, mode Mode) (Outcome, error) {
	if !s.grid.InBounds(x, y) {
		return NoOp, fmt.Errorf("%w: (%d, %d) outside %dx%d", grid.ErrOutOfBounds, x, y, s.Width(), s.Height())
	}

	h, occupied := s.grid.Get(x, y)
	if mode.IsErase() {
		if !occupied {
			return NoOp, nil
		}
		s.DeleteParticle(h)
		return Deleted, nil
	}

	if occupied {
		return NoOp, nil
	}
	s.CreateParticle(x, y, mode.Kind())
	return Created, nil
}

// HandleAt returns the handle stored at (x, y).
func (s *System) HandleAt(x, y int) (arena.Handle, bool) {
	return s.grid.Get(x, y)
}

// ParticleAt returns the particle occupying (x, y). The pointer is valid
// until the next particle is created.
func (s *System) ParticleAt(x, y int) (*Particle, bool) {
	h, ok := s.grid.Get(x, y)
	if !ok {
		return nil, false
	}
	return s.Particle(h)
}

// Particle returns the particle for h, or false if h is stale.
func (s *System) Particle(h arena.Handle) (*Particle, bool) {
	p := s.store.Get(h)
	return p, p != nil
}

// Cells yields every grid cell in row-major order. Empty cells yield the zero
// Handle.
func (s *System) Cells() iter.Seq2[int, arena.Handle] {
	return s.grid.Cells()
}

// Particles yields every live particle in store order. Callers may adjust
// velocities but must use Move or Swap to change positions.
func (s *System) Particles() iter.Seq2[arena.Handle, *Particle] {
	return s.store.All()
}

// CountByKind returns the number of live particles per kind.
func (s *System) CountByKind() map[elements.Kind]int {
	counts := make(map[elements.Kind]int)
	for _, p := range s.store.All() {
		counts[p.Kind]++
	}
	return counts
}

// Move relocates the particle for h to (x, y). It returns
// grid.ErrOutOfBounds or ErrOccupied without changing anything when the
// destination is unusable. h must be live.
func (s *System) Move(h arena.Handle, x, y int) error {
	p := s.store.Get(h)
	if p == nil {
		panic(fmt.Sprintf("particles: move of missing particle %v", h))
	}
	if !s.grid.InBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d) outside %dx%d", grid.ErrOutOfBounds, x, y, s.Width(), s.Height())
	}
	if p.X == x && p.Y == y {
		return nil
	}
	if _, ok := s.grid.Get(x, y); ok {
		return fmt.Errorf("%w: (%d, %d)", ErrOccupied, x, y)
	}

	mustGrid(s.grid.Clear(p.X, p.Y))
	mustGrid(s.grid.Set(x, y, h))
	p.X, p.Y = x, y
	return nil
}

// Swap exchanges the cells of two live particles.
func (s *System) Swap(a, b arena.Handle) {
	pa, pb := s.store.Get(a), s.store.Get(b)
	if pa == nil || pb == nil {
		panic(fmt.Sprintf("particles: swap of missing particle %v/%v", a, b))
	}
	if a == b {
		return
	}

	pa.X, pb.X = pb.X, pa.X
	pa.Y, pb.Y = pb.Y, pa.Y
	mustGrid(s.grid.Set(pa.X, pa.Y, a))
	mustGrid(s.grid.Set(pb.X, pb.Y, b))
}

// mustGrid panics on a grid error the caller has already ruled out; one
// means a particle's recorded cell no longer matches the grid.
func mustGrid(err error) {
	if err != nil {
		panic(fmt.Sprintf("particles: %v", err))
	}
}

// Clear deletes every particle.
func (s *System) Clear() {
	var handles []arena.Handle
	for h := range s.store.All() {
		handles = append(handles, h)
	}
	for _, h := range handles {
		s.DeleteParticle(h)
	}
}

// Validate checks the grid/store invariant in both directions and returns the
// first violation found.
func (s *System) Validate() error {
	occupied := 0
	for i, h := range s.grid.Cells() {
		if h.IsZero() {
			continue
		}
		occupied++
		x, y := s.grid.Coords(i)
		p := s.store.Get(h)
		if p == nil {
			return fmt.Errorf("cell (%d, %d) holds dead handle %v", x, y, h)
		}
		if p.X != x || p.Y != y {
			return fmt.Errorf("cell (%d, %d) holds %v positioned at (%d, %d)", x, y, h, p.X, p.Y)
		}
	}

	for h, p := range s.store.All() {
		cur, ok := s.grid.Get(p.X, p.Y)
		if !ok || cur != h {
			return fmt.Errorf("particle %v at (%d, %d) missing from grid (cell holds %v)", h, p.X, p.Y, cur)
		}
		if _, ok := s.elements.Lookup(p.Kind); !ok {
			return fmt.Errorf("particle %v has unregistered kind %v", h, p.Kind)
		}
	}

	if occupied != s.store.Len() {
		return fmt.Errorf("%d occupied cells but %d live particles", occupied, s.store.Len())
	}
	return nil
}
