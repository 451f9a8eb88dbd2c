// Package systems contains the per-tick simulation steps and world seeding.
//
// A step receives a world whose grid and store agree and must leave them
// agreeing when it returns. Steps only change positions through
// particles.System.Move and Swap.
package systems

import (
	"fmt"

	"github.com/pthm-cable/sandfall/particles"
)

// Stepper advances the world by one tick and returns the number of particle
// moves it made.
type Stepper interface {
	Step(w *particles.System) int
}

// StepperFunc adapts a function to Stepper.
type StepperFunc func(w *particles.System) int

// Step calls f(w).
func (f StepperFunc) Step(w *particles.System) int { return f(w) }

// Noop is a Stepper that leaves the world unchanged.
type Noop struct{}

// Step does nothing.
func (Noop) Step(*particles.System) int { return 0 }

// NewStepper returns the stepper registered under name.
func NewStepper(name string, seed int64) (Stepper, error) {
	switch name {
	case "", "falling":
		return NewFalling(seed), nil
	case "none":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown stepper %q", name)
	}
}
