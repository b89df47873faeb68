package engine

import "sync/atomic"

// Clock is a monotonic logical clock. Every journal event is stamped with a
// strictly increasing seq number from this clock, so a cart's event log has a
// total order that does not depend on wall-clock resolution.
//
// Thread-safety: safe for concurrent use (atomic operations); instances of
// many carts share one clock.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming from a specific sequence number.
// Used when an engine restarts over an existing journal.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
