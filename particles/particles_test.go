package particles

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/pthm-cable/sandfall/arena"
	"github.com/pthm-cable/sandfall/elements"
	"github.com/pthm-cable/sandfall/grid"
)

func newTestSystem(w, h int) *System {
	return New(w, h, elements.DefaultRegistry(), 0)
}

func mustValidate(t *testing.T, s *System) {
	t.Helper()
	if err := s.Validate(); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

func TestCreateParticle(t *testing.T) {
	s := newTestSystem(8, 8)

	for _, kind := range []elements.Kind{elements.Sand, elements.Water, elements.Stone} {
		x, y := int(kind.Index)+2, 3
		h := s.CreateParticle(x, y, kind)

		got, ok := s.HandleAt(x, y)
		if !ok || got != h {
			t.Fatalf("HandleAt(%d, %d) = %v, %v; want %v", x, y, got, ok, h)
		}
		p, ok := s.Particle(h)
		if !ok {
			t.Fatalf("Particle(%v) missing", h)
		}
		if p.X != x || p.Y != y || p.Kind != kind {
			t.Errorf("particle = %+v, want kind %v at (%d, %d)", *p, kind, x, y)
		}
		if p.VX != 0 || p.VY != 0 {
			t.Errorf("new particle has velocity (%v, %v)", p.VX, p.VY)
		}
		mustValidate(t, s)
	}
}

func TestCreateParticleContractViolations(t *testing.T) {
	tests := []struct {
		name string
		run  func(s *System)
	}{
		{"out of bounds", func(s *System) { s.CreateParticle(8, 0, elements.Sand) }},
		{"negative", func(s *System) { s.CreateParticle(-1, 0, elements.Sand) }},
		{"occupied", func(s *System) {
			s.CreateParticle(1, 1, elements.Sand)
			s.CreateParticle(1, 1, elements.Water)
		}},
		{"unregistered kind", func(s *System) { s.CreateParticle(0, 0, elements.Custom(3)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSystem(8, 8)
			before := s.Len()
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
				if tt.name != "occupied" && s.Len() != before {
					t.Errorf("Len() = %d after aborted create, want %d", s.Len(), before)
				}
				mustValidate(t, s)
			}()
			tt.run(s)
		})
	}
}

func TestDeleteParticle(t *testing.T) {
	s := newTestSystem(8, 8)
	h := s.CreateParticle(4, 5, elements.Sand)

	s.DeleteParticle(h)

	if _, ok := s.HandleAt(4, 5); ok {
		t.Error("cell still occupied after delete")
	}
	if _, ok := s.Particle(h); ok {
		t.Error("deleted handle still resolves")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	mustValidate(t, s)
}

func TestDeleteMissingPanics(t *testing.T) {
	s := newTestSystem(8, 8)
	h := s.CreateParticle(0, 0, elements.Sand)
	s.DeleteParticle(h)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on double delete")
		}
	}()
	s.DeleteParticle(h)
}

func TestDrawPointIdempotence(t *testing.T) {
	s := newTestSystem(8, 8)

	// Erase on empty cell is a no-op.
	out, err := s.DrawPoint(2, 2, EraseMode())
	if err != nil || out != NoOp {
		t.Fatalf("erase empty = %v, %v; want NoOp, nil", out, err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d after erasing empty cell", s.Len())
	}

	out, err = s.DrawPoint(2, 2, DrawMode(elements.Sand))
	if err != nil || out != Created {
		t.Fatalf("draw empty = %v, %v; want Created, nil", out, err)
	}
	h, _ := s.HandleAt(2, 2)

	// Drawing over an occupied cell never replaces, whatever the kind.
	for _, k := range []elements.Kind{elements.Sand, elements.Water, elements.Stone} {
		out, err = s.DrawPoint(2, 2, DrawMode(k))
		if err != nil || out != NoOp {
			t.Fatalf("draw %v over occupied = %v, %v; want NoOp", k, out, err)
		}
	}
	if got, _ := s.HandleAt(2, 2); got != h {
		t.Errorf("cell handle changed from %v to %v", h, got)
	}
	if p, _ := s.ParticleAt(2, 2); p.Kind != elements.Sand {
		t.Errorf("kind changed to %v", p.Kind)
	}

	out, err = s.DrawPoint(2, 2, EraseMode())
	if err != nil || out != Deleted {
		t.Fatalf("erase occupied = %v, %v; want Deleted", out, err)
	}
	mustValidate(t, s)
}

func TestDrawPointOutOfBounds(t *testing.T) {
	s := newTestSystem(4, 4)

	for _, mode := range []Mode{EraseMode(), DrawMode(elements.Sand)} {
		out, err := s.DrawPoint(4, 0, mode)
		if !errors.Is(err, grid.ErrOutOfBounds) {
			t.Errorf("%v: error = %v, want ErrOutOfBounds", mode, err)
		}
		if out != NoOp {
			t.Errorf("%v: outcome = %v, want NoOp", mode, out)
		}
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestStaleHandleNeverResolvesToNewParticle(t *testing.T) {
	s := newTestSystem(4, 4)

	old := s.CreateParticle(0, 0, elements.Sand)
	s.DeleteParticle(old)
	fresh := s.CreateParticle(3, 3, elements.Water)

	if fresh.Index() != old.Index() {
		t.Logf("slot not reused (old %v, new %v)", old, fresh)
	}
	if p, ok := s.Particle(old); ok {
		t.Errorf("stale handle %v resolved to %+v", old, *p)
	}
	if p, ok := s.Particle(fresh); !ok || p.Kind != elements.Water {
		t.Errorf("fresh handle did not resolve to water")
	}
}

func TestParticleAtEmpty(t *testing.T) {
	s := newTestSystem(4, 4)
	if _, ok := s.ParticleAt(1, 1); ok {
		t.Error("empty cell returned a particle")
	}
	if _, ok := s.ParticleAt(-1, 9); ok {
		t.Error("out-of-range cell returned a particle")
	}
}

func TestMove(t *testing.T) {
	s := newTestSystem(4, 4)
	a := s.CreateParticle(1, 1, elements.Sand)
	s.CreateParticle(2, 1, elements.Sand)

	if err := s.Move(a, 1, 0); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if p, _ := s.Particle(a); p.X != 1 || p.Y != 0 {
		t.Errorf("particle at (%d, %d), want (1, 0)", p.X, p.Y)
	}
	if _, ok := s.HandleAt(1, 1); ok {
		t.Error("source cell still occupied")
	}
	mustValidate(t, s)

	if err := s.Move(a, 2, 1); !errors.Is(err, ErrOccupied) {
		t.Errorf("Move onto occupied = %v, want ErrOccupied", err)
	}
	if err := s.Move(a, 1, -1); !errors.Is(err, grid.ErrOutOfBounds) {
		t.Errorf("Move out of bounds = %v, want ErrOutOfBounds", err)
	}
	if err := s.Move(a, 1, 0); err != nil {
		t.Errorf("Move onto own cell = %v, want nil", err)
	}
	mustValidate(t, s)
}

func TestSwap(t *testing.T) {
	s := newTestSystem(4, 4)
	a := s.CreateParticle(0, 1, elements.Sand)
	b := s.CreateParticle(0, 0, elements.Water)

	s.Swap(a, b)

	if h, _ := s.HandleAt(0, 0); h != a {
		t.Errorf("(0, 0) holds %v, want %v", h, a)
	}
	if h, _ := s.HandleAt(0, 1); h != b {
		t.Errorf("(0, 1) holds %v, want %v", h, b)
	}
	mustValidate(t, s)
}

func TestMoveSwapPanicOnDesyncedCell(t *testing.T) {
	tests := []struct {
		name string
		op   func(s *System, a, b arena.Handle)
	}{
		{"move", func(s *System, a, _ arena.Handle) { _ = s.Move(a, 2, 2) }},
		{"swap", func(s *System, a, b arena.Handle) { s.Swap(a, b) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSystem(4, 4)
			a := s.CreateParticle(0, 0, elements.Sand)
			b := s.CreateParticle(1, 0, elements.Water)

			// Corrupt the particle's recorded cell behind the system's back.
			p, _ := s.Particle(a)
			p.X = -1

			defer func() {
				if recover() == nil {
					t.Error("expected panic on out-of-grid recorded cell")
				}
			}()
			tt.op(s, a, b)
		})
	}
}

func TestClear(t *testing.T) {
	s := newTestSystem(4, 4)
	for x := 0; x < 4; x++ {
		s.CreateParticle(x, x, elements.Sand)
	}
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() = %d after Clear", s.Len())
	}
	mustValidate(t, s)
}

func TestCountByKind(t *testing.T) {
	s := newTestSystem(4, 4)
	s.CreateParticle(0, 0, elements.Sand)
	s.CreateParticle(1, 0, elements.Sand)
	s.CreateParticle(2, 0, elements.Water)

	counts := s.CountByKind()
	if counts[elements.Sand] != 2 || counts[elements.Water] != 1 || counts[elements.Stone] != 0 {
		t.Errorf("CountByKind() = %v", counts)
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	s := newTestSystem(4, 4)
	h := s.CreateParticle(1, 1, elements.Sand)

	// Bypass the system to desynchronize the two structures.
	s.store.Get(h).X = 2
	if err := s.Validate(); err == nil {
		t.Error("Validate missed a moved particle")
	}
	s.store.Get(h).X = 1

	s.grid.Set(3, 3, arena.HandleFromParts(40, 1))
	if err := s.Validate(); err == nil {
		t.Error("Validate missed a dead handle in the grid")
	}
}

// TestInvariantUnderRandomOperations drives random creates, deletes, draws and
// moves and checks the invariant after every single operation.
func TestInvariantUnderRandomOperations(t *testing.T) {
	const w, h = 16, 12
	s := newTestSystem(w, h)
	rng := rand.New(rand.NewSource(7))
	kinds := []elements.Kind{elements.Sand, elements.Water, elements.Stone}

	var live []arena.Handle
	var dead []arena.Handle

	for i := 0; i < 5000; i++ {
		x, y := rng.Intn(w), rng.Intn(h)
		switch op := rng.Intn(5); op {
		case 0:
			if _, ok := s.HandleAt(x, y); !ok {
				live = append(live, s.CreateParticle(x, y, kinds[rng.Intn(len(kinds))]))
			}
		case 1:
			if len(live) > 0 {
				j := rng.Intn(len(live))
				s.DeleteParticle(live[j])
				dead = append(dead, live[j])
				live = append(live[:j], live[j+1:]...)
			}
		case 2:
			out, err := s.DrawPoint(x, y, DrawMode(kinds[rng.Intn(len(kinds))]))
			if err != nil {
				t.Fatalf("DrawPoint: %v", err)
			}
			if out == Created {
				hnd, _ := s.HandleAt(x, y)
				live = append(live, hnd)
			}
		case 3:
			hnd, occupied := s.HandleAt(x, y)
			if _, err := s.DrawPoint(x, y, EraseMode()); err != nil {
				t.Fatalf("DrawPoint: %v", err)
			}
			if occupied {
				for j := range live {
					if live[j] == hnd {
						dead = append(dead, hnd)
						live = append(live[:j], live[j+1:]...)
						break
					}
				}
			}
		case 4:
			if len(live) > 0 {
				err := s.Move(live[rng.Intn(len(live))], x, y)
				if err != nil && !errors.Is(err, ErrOccupied) {
					t.Fatalf("Move: %v", err)
				}
			}
		}

		mustValidate(t, s)
		if s.Len() != len(live) {
			t.Fatalf("step %d: Len() = %d, tracked %d", i, s.Len(), len(live))
		}
	}

	for _, hnd := range dead {
		if _, ok := s.Particle(hnd); ok {
			t.Fatalf("dead handle %v resolves", hnd)
		}
	}
}
