// Package brush rasterizes circle and capsule strokes onto a particle world.
// Every qualifying cell is routed through DrawPoint, so erase and draw
// semantics are the same for every shape.
package brush

import (
	"iter"
	"math"

	"github.com/pthm-cable/sandfall/particles"
)

// Point is a position in continuous world coordinates, in cells.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Brush is the current stroke descriptor.
type Brush struct {
	Radius float64
	Mode   particles.Mode
}

// Painter is the world a brush draws onto. *particles.System implements it.
type Painter interface {
	Width() int
	Height() int
	DrawPoint(x, y int, mode particles.Mode) (particles.Outcome, error)
}

// Stats counts what a fill did.
type Stats struct {
	Created int
	Deleted int
	Visited int // Candidate cells passed to DrawPoint
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Created += o.Created
	s.Deleted += o.Deleted
	s.Visited += o.Visited
}

// Circle yields the cells (x, y) of a width x height grid whose integer
// coordinate lies within radius of center. The scan covers
// floor(c-r)..ceil(c+r) on each axis, clamped to the grid.
func Circle(center Point, radius float64, width, height int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		if radius < 0 || math.IsNaN(radius) {
			return
		}
		x0, x1 := clampSpan(math.Floor(center.X-radius), math.Ceil(center.X+radius), width)
		y0, y1 := clampSpan(math.Floor(center.Y-radius), math.Ceil(center.Y+radius), height)
		r2 := radius * radius

		for y := y0; y <= y1; y++ {
			dy := float64(y) - center.Y
			for x := x0; x <= x1; x++ {
				dx := float64(x) - center.X
				if dx*dx+dy*dy > r2 {
					continue
				}
				if !yield(x, y) {
					return
				}
			}
		}
	}
}

// Capsule yields the body cells of the segment start->end thickened by
// radius: cells whose projection lands on the segment and whose distance from
// it is at most radius. The round caps are not included; see FillCapsule.
// Only the segment's bounding box grown by radius is scanned. A degenerate
// segment or a non-positive radius has no body.
func Capsule(start, end Point, radius float64, width, height int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		l := end.Sub(start)
		norm := math.Hypot(l.X, l.Y)
		if norm == 0 || !(radius > 0) {
			return
		}

		x0, x1 := clampSpan(math.Floor(min(start.X, end.X)-radius), math.Ceil(max(start.X, end.X)+radius), width)
		y0, y1 := clampSpan(math.Floor(min(start.Y, end.Y)-radius), math.Ceil(max(start.Y, end.Y)+radius), height)
		norm2 := norm * norm

		for y := y0; y <= y1; y++ {
			vy := float64(y) - start.Y
			for x := x0; x <= x1; x++ {
				vx := float64(x) - start.X

				// Segment frame: t along the segment in [0, 1], p across it in
				// units of radius.
				t := (l.X*vx + l.Y*vy) / norm2
				p := (-l.Y*vx + l.X*vy) / (norm * radius)
				if t < 0 || t > 1 || p < -1 || p > 1 {
					continue
				}
				if !yield(x, y) {
					return
				}
			}
		}
	}
}

// FillCircle applies b to every cell of the circle around center.
func FillCircle(p Painter, center Point, b Brush) Stats {
	return fill(p, Circle(center, b.Radius, p.Width(), p.Height()), b.Mode)
}

// FillCapsule applies b along the segment start->end: both endpoint circles
// first, then the body. A degenerate segment reduces to a single circle.
func FillCapsule(p Painter, start, end Point, b Brush) Stats {
	st := FillCircle(p, start, b)
	if end != start {
		st.Add(FillCircle(p, end, b))
	}
	st.Add(fill(p, Capsule(start, end, b.Radius, p.Width(), p.Height()), b.Mode))
	return st
}

func fill(p Painter, cells iter.Seq2[int, int], mode particles.Mode) Stats {
	var st Stats
	for x, y := range cells {
		st.Visited++
		out, err := p.DrawPoint(x, y, mode)
		if err != nil {
			// Off-canvas cells are skipped.
			continue
		}
		switch out {
		case particles.Created:
			st.Created++
		case particles.Deleted:
			st.Deleted++
		}
	}
	return st
}

// clampSpan converts the float range [lo, hi] to inclusive cell indices within
// [0, n). The result is empty (first > last) when the range misses the grid.
func clampSpan(lo, hi float64, n int) (int, int) {
	if n <= 0 || math.IsNaN(lo) || math.IsNaN(hi) {
		return 0, -1
	}
	lo = math.Max(lo, 0)
	hi = math.Min(hi, float64(n-1))
	if lo > hi {
		return 0, -1
	}
	return int(lo), int(hi)
}
