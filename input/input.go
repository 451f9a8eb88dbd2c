// Package input turns raw pointer events into brush strokes.
package input

import (
	"fmt"

	"github.com/pthm-cable/sandfall/brush"
)

// Stroke is one brush application derived from pointer input. A click fills a
// circle at End; a drag fills the capsule Start->End.
type Stroke struct {
	Start, End brush.Point
	Click      bool
}

// Pointer tracks whether the primary button is held and where it last was.
type Pointer struct {
	down bool
	last brush.Point
}

// Down reports whether the button is held.
func (p *Pointer) Down() bool { return p.down }

// Press starts a stroke with a click at at.
func (p *Pointer) Press(at brush.Point) Stroke {
	p.down, p.last = true, at
	return Stroke{Start: at, End: at, Click: true}
}

// Move continues the stroke from the last point. A move while the button is
// up is treated as a click and leaves the pointer down; frontends that report
// hover motion should only forward moves while the button is held.
func (p *Pointer) Move(at brush.Point) Stroke {
	s := p.stroke(at)
	p.down, p.last = true, at
	return s
}

// Release ends the stroke, dragging from the last point to at.
func (p *Pointer) Release(at brush.Point) Stroke {
	s := p.stroke(at)
	p.down = false
	return s
}

func (p *Pointer) stroke(at brush.Point) Stroke {
	if !p.down {
		return Stroke{Start: at, End: at, Click: true}
	}
	return Stroke{Start: p.last, End: at}
}

// Apply rasterizes s with b onto w.
func Apply(w brush.Painter, s Stroke, b brush.Brush) brush.Stats {
	if s.Click {
		return brush.FillCircle(w, s.End, b)
	}
	return brush.FillCapsule(w, s.Start, s.End, b)
}

// EventType is the kind of pointer event.
type EventType uint8

const (
	EventPress EventType = iota
	EventMove
	EventRelease
)

func (t EventType) String() string {
	switch t {
	case EventPress:
		return "press"
	case EventMove:
		return "move"
	case EventRelease:
		return "release"
	default:
		return fmt.Sprintf("event(%d)", uint8(t))
	}
}

// Event is a pointer event in world coordinates.
type Event struct {
	Type  EventType
	Point brush.Point
}

// Feed advances the pointer by e and returns the resulting stroke.
func (p *Pointer) Feed(e Event) Stroke {
	switch e.Type {
	case EventPress:
		return p.Press(e.Point)
	case EventRelease:
		return p.Release(e.Point)
	default:
		return p.Move(e.Point)
	}
}

// Queue buffers events between frames. It is not safe for concurrent use;
// frontends that read input on another goroutine hand events to the owning
// loop over a channel.
type Queue struct {
	events []Event
}

// Push appends e.
func (q *Queue) Push(e Event) {
	q.events = append(q.events, e)
}

// Len returns the number of pending events.
func (q *Queue) Len() int { return len(q.events) }

// Drain calls fn for each pending event in arrival order and empties the queue.
func (q *Queue) Drain(fn func(Event)) {
	for _, e := range q.events {
		fn(e)
	}
	clear(q.events)
	q.events = q.events[:0]
}
