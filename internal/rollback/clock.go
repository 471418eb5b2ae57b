package rollback

import "sync/atomic"

// SeqClock stamps registration events with a logical sequence number.
type SeqClock interface {
	Next() int64
	Current() int64
}

// Clock is a monotonic logical clock for registration events.
//
// Journal entries are ordered by seq, never by wall-clock time, so a journal
// replays in the order registrations were applied.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// Only Session.Flush calls Next in practice.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
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
