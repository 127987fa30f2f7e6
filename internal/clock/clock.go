// Package clock supplies timestamps for created_at/updated_at.
//
// Stored timestamps have microsecond precision, so every Clock returns UTC
// times truncated to the microsecond. A value read back from storage is then
// identical to the value that was written, which keeps cursor round-trips
// and equality checks exact.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

// Now returns the current UTC time truncated to microseconds.
func (System) Now() time.Time {
	return Truncate(time.Now())
}

// Truncate converts t to UTC at microsecond precision and strips the
// monotonic reading.
func Truncate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// Fixed is a deterministic clock for tests. Each call to Now advances the
// clock by Step, so successive writes get strictly increasing timestamps.
//
// Thread-safety: Fixed is safe for concurrent use via internal mutex.
type Fixed struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

// NewFixed creates a clock starting at start, advancing by step per call.
func NewFixed(start time.Time, step time.Duration) *Fixed {
	return &Fixed{now: Truncate(start), Step: step}
}

// Now returns the current time and advances the clock.
func (c *Fixed) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = Truncate(c.now.Add(c.Step))
	return t
}

// Current returns the time the next Now call will return, without advancing.
func (c *Fixed) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}
