package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/sandfall/arena"
	"github.com/pthm-cable/sandfall/elements"
	"github.com/pthm-cable/sandfall/particles"
)

const (
	// Downward acceleration in cells per tick squared, scaled by Element.Gravity.
	defaultGravity = 0.25
	// Terminal fall speed in cells per tick.
	defaultMaxFallSpeed = 6
)

// Falling is the default sand step. World y points up, so particles fall
// toward y = 0. Each tick, rows are processed bottom to top and every
// non-static particle:
//
//  1. accelerates downward and falls up to |VY| cells, stopping at the
//     first obstacle;
//  2. if it could not fall, slides one cell diagonally down;
//  3. if it is a fluid and still stuck, flows up to Flow cells sideways.
//
// A falling particle swaps places with a less dense fluid directly below it,
// so sand sinks through water.
type Falling struct {
	Gravity      float64
	MaxFallSpeed float64

	rng   *rand.Rand
	stamp []uint32 // Per cell: tick in which a particle moved there
	tick  uint32
}

// NewFalling creates a falling step with a deterministic random source.
func NewFalling(seed int64) *Falling {
	return &Falling{
		Gravity:      defaultGravity,
		MaxFallSpeed: defaultMaxFallSpeed,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// Step runs one tick.
func (f *Falling) Step(w *particles.System) int {
	width, height := w.Width(), w.Height()
	if len(f.stamp) != width*height {
		f.stamp = make([]uint32, width*height)
		f.tick = 0
	}
	f.tick++
	if f.tick == 0 {
		clear(f.stamp)
		f.tick = 1
	}

	reg := w.Elements()
	moves := 0
	for y := 0; y < height; y++ {
		// Alternate scan direction so flow has no sideways bias.
		leftToRight := (f.tick+uint32(y))%2 == 0
		for i := 0; i < width; i++ {
			x := i
			if !leftToRight {
				x = width - 1 - i
			}
			if f.stamp[y*width+x] == f.tick {
				continue
			}
			h, ok := w.HandleAt(x, y)
			if !ok {
				continue
			}
			p, _ := w.Particle(h)
			e := reg.Get(p.Kind)
			if e.IsStatic() {
				continue
			}
			moves += f.update(w, reg, h, p, e)
		}
	}
	return moves
}

// update moves one particle and returns the number of cells it travelled.
func (f *Falling) update(w *particles.System, reg *elements.Registry, h arena.Handle, p *particles.Particle, e *elements.Element) int {
	p.VY = math.Max(p.VY-f.Gravity*e.Gravity, -f.MaxFallSpeed)
	steps := max(int(-p.VY), 1)

	fell := 0
	for range steps {
		if !w.InBounds(p.X, p.Y-1) {
			break
		}
		below, occupied := w.HandleAt(p.X, p.Y-1)
		if !occupied {
			w.Move(h, p.X, p.Y-1)
			fell++
			continue
		}
		if f.sinksInto(reg, e, w, below) {
			w.Swap(h, below)
			f.mark(w, p.X, p.Y+1)
			fell++
		}
		break
	}
	if fell > 0 {
		f.mark(w, p.X, p.Y)
		return fell
	}

	// Landed: lose vertical speed and try to slide.
	p.VY = 0
	dir := f.direction(p)
	for _, dx := range [2]int{dir, -dir} {
		if f.tryMove(w, h, p, p.X+dx, p.Y-1) {
			p.VX = float64(dx)
			return 1
		}
	}

	if !e.IsFluid() {
		return 0
	}
	for _, dx := range [2]int{dir, -dir} {
		if n := f.flow(w, h, p, dx, e.Flow); n > 0 {
			p.VX = float64(dx)
			return n
		}
	}
	p.VX = 0
	return 0
}

// flow moves p up to limit cells in direction dx along its row.
func (f *Falling) flow(w *particles.System, h arena.Handle, p *particles.Particle, dx, limit int) int {
	reach := 0
	for reach < limit {
		nx := p.X + dx*(reach+1)
		if !w.InBounds(nx, p.Y) {
			break
		}
		if _, occupied := w.HandleAt(nx, p.Y); occupied {
			break
		}
		reach++
	}
	if reach == 0 {
		return 0
	}
	if err := w.Move(h, p.X+dx*reach, p.Y); err != nil {
		return 0
	}
	f.mark(w, p.X, p.Y)
	return reach
}

func (f *Falling) tryMove(w *particles.System, h arena.Handle, p *particles.Particle, x, y int) bool {
	if err := w.Move(h, x, y); err != nil {
		return false
	}
	f.mark(w, x, y)
	return true
}

// sinksInto reports whether a particle of element e displaces the particle
// under other: other must be a fluid of strictly lower density.
func (f *Falling) sinksInto(reg *elements.Registry, e *elements.Element, w *particles.System, other arena.Handle) bool {
	q, ok := w.Particle(other)
	if !ok {
		return false
	}
	oe := reg.Get(q.Kind)
	return oe.IsFluid() && oe.Density < e.Density
}

// direction keeps a particle's last sideways direction, or picks one.
func (f *Falling) direction(p *particles.Particle) int {
	switch {
	case p.VX > 0:
		return 1
	case p.VX < 0:
		return -1
	case f.rng.Intn(2) == 0:
		return 1
	default:
		return -1
	}
}

func (f *Falling) mark(w *particles.System, x, y int) {
	if w.InBounds(x, y) {
		f.stamp[y*w.Width()+x] = f.tick
	}
}
