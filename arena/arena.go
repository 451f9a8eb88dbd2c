// Package arena provides a generational slot store with stable, reuse-safe handles.
package arena

import (
	"fmt"
	"iter"
	"math"
)

// minGrowth is the smallest capacity the store grows to.
const minGrowth = 64

// maxSlots bounds the store by the 32-bit index space of Handle.
var maxSlots uint64 = math.MaxUint32

// Handle identifies a slot and encodes a generation for stale-handle detection.
// The zero Handle never refers to a live slot.
type Handle struct {
	index      uint32
	generation uint32
}

// HandleFromParts constructs a handle from raw components.
func HandleFromParts(index, generation uint32) Handle {
	return Handle{index: index, generation: generation}
}

// Index returns the backing slot index.
func (h Handle) Index() uint32 {
	return h.index
}

// Generation returns the generation the handle was issued with.
func (h Handle) Generation() uint32 {
	return h.generation
}

// IsZero reports whether the handle is the zero value.
func (h Handle) IsZero() bool {
	return h.index == 0 && h.generation == 0
}

// String renders the handle for debugging purposes.
func (h Handle) String() string {
	return fmt.Sprintf("Handle(%d:%d)", h.index, h.generation)
}

// Store holds values of type T in slots addressed by Handle.
//
// Occupied slots carry an odd generation. Removing a value bumps the
// generation to an even number so every handle issued for it resolves to
// nothing; reusing the slot bumps it again to the next odd number. A slot
// whose generation would wrap is retired instead of reused, so no handle
// ever becomes valid again.
//
// A Store is not safe for concurrent use.
type Store[T any] struct {
	values      []T
	generations []uint32
	free        []uint32 // stack of free slot indices
	count       int
	retired     int // slots whose generations ran out
}

// New creates a store with room for capacity values before the first growth.
func New[T any](capacity int) *Store[T] {
	s := &Store[T]{}
	if capacity > 0 {
		s.grow(capacity)
	}
	return s
}

// Len returns the number of occupied slots.
func (s *Store[T]) Len() int {
	return s.count
}

// Cap returns the number of slots, occupied or free.
func (s *Store[T]) Cap() int {
	return len(s.values)
}

// Insert stores v in a free slot, growing the store when none is left, and
// returns the handle for it.
func (s *Store[T]) Insert(v T) Handle {
	if len(s.free) == 0 {
		s.grow(max(minGrowth, 2*len(s.values)))
	}

	n := len(s.free)
	idx := s.free[n-1]
	s.free = s.free[:n-1]

	s.values[idx] = v
	s.generations[idx]++
	s.count++

	return Handle{index: idx, generation: s.generations[idx]}
}

// Get returns a pointer to the value for h, or nil when h is out of range,
// refers to a free slot, or is stale. The pointer is valid until the next Insert.
func (s *Store[T]) Get(h Handle) *T {
	if !s.Contains(h) {
		return nil
	}
	return &s.values[h.index]
}

// Contains reports whether h refers to an occupied slot.
func (s *Store[T]) Contains(h Handle) bool {
	if int(h.index) >= len(s.values) {
		return false
	}
	gen := s.generations[h.index]
	return gen == h.generation && gen%2 == 1
}

// Remove frees the slot for h. Removing an invalid or already removed handle
// is a caller bug and panics.
func (s *Store[T]) Remove(h Handle) {
	if !s.Contains(h) {
		panic(fmt.Sprintf("arena: remove of invalid handle %v", h))
	}

	var zero T
	s.values[h.index] = zero
	s.count--
	if h.generation == math.MaxUint32 {
		// Generations are exhausted: leave the slot free but off the stack.
		s.generations[h.index] = math.MaxUint32 - 1
		s.retired++
		return
	}
	s.generations[h.index]++
	s.free = append(s.free, h.index)
}

// All yields the handle and value of every occupied slot in index order.
func (s *Store[T]) All() iter.Seq2[Handle, *T] {
	return func(yield func(Handle, *T) bool) {
		for i := range s.values {
			gen := s.generations[i]
			if gen%2 == 0 {
				continue
			}
			if !yield(Handle{index: uint32(i), generation: gen}, &s.values[i]) {
				return
			}
		}
	}
}

// grow extends the store to size slots. New slots hold the zero value and
// are pushed onto the free stack so the lowest index is reused first.
func (s *Store[T]) grow(size int) {
	old := len(s.values)
	if size <= old {
		return
	}
	if uint64(size) > maxSlots {
		if uint64(old) == maxSlots {
			panic("arena: capacity exhausted")
		}
		size = int(maxSlots)
	}

	s.values = append(s.values, make([]T, size-old)...)
	s.generations = append(s.generations, make([]uint32, size-old)...)

	// Stack order: push high indices first so low indices pop first.
	for i := size - 1; i >= old; i-- {
		s.free = append(s.free, uint32(i))
	}
}
