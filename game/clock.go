package game

import (
	"log/slog"
	"time"
)

// Clock paces fixed-duration ticks against wall time. Ticks owed beyond
// MaxTicksPerFrame are dropped rather than caught up, so a slow frame never
// triggers a burst of simulation work.
type Clock struct {
	TickDuration     time.Duration
	MaxTicksPerFrame int

	last    time.Time
	started bool
}

// NewClock creates a stopped clock.
func NewClock(tick time.Duration, maxTicksPerFrame int) *Clock {
	return &Clock{TickDuration: tick, MaxTicksPerFrame: maxTicksPerFrame}
}

// Start resets the reference time to now. Time spent before Start is never owed.
func (c *Clock) Start(now time.Time) {
	c.last = now
	c.started = true
}

// Advance returns how many ticks to run now and how many owed ticks were
// dropped. The reference time moves forward by every owed tick, run or not;
// the remainder below one tick carries over.
func (c *Clock) Advance(now time.Time) (run, dropped int) {
	if !c.started {
		c.Start(now)
		return 0, 0
	}
	if c.TickDuration <= 0 {
		return 0, 0
	}

	elapsed := now.Sub(c.last)
	if elapsed < c.TickDuration {
		return 0, 0
	}

	owed := int(elapsed / c.TickDuration)
	c.last = c.last.Add(time.Duration(owed) * c.TickDuration)

	run = min(owed, max(c.MaxTicksPerFrame, 1))
	dropped = owed - run
	if dropped > 0 {
		slog.Debug("dropping ticks", "owed", owed, "run", run, "dropped", dropped)
	}
	return run, dropped
}
