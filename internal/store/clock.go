package store

import (
	"sync/atomic"
	"time"
)

// MonotonicClock hands out strictly increasing UTC timestamps truncated to a
// fixed resolution. Backends use it to assign CreatedAt so that two inserts
// never tie and the value returned from Insert round-trips exactly through the
// backend's timestamp precision.
type MonotonicClock struct {
	resolution time.Duration
	now        func() time.Time
	last       atomic.Int64
}

// NewMonotonicClock creates a clock with the given resolution.
// A non-positive resolution means nanoseconds.
func NewMonotonicClock(resolution time.Duration) *MonotonicClock {
	if resolution <= 0 {
		resolution = time.Nanosecond
	}
	return &MonotonicClock{
		resolution: resolution,
		now:        time.Now,
	}
}

// WithNow replaces the wall-clock source. Intended for tests.
func (c *MonotonicClock) WithNow(now func() time.Time) *MonotonicClock {
	c.now = now
	return c
}

// Resolution returns the clock's tick size.
func (c *MonotonicClock) Resolution() time.Duration {
	return c.resolution
}

// Now returns the next timestamp.
func (c *MonotonicClock) Now() time.Time {
	step := int64(c.resolution)
	for {
		now := c.now().UTC().Truncate(c.resolution).UnixNano()
		last := c.last.Load()
		if now <= last {
			now = last + step
		}
		if c.last.CompareAndSwap(last, now) {
			return time.Unix(0, now).UTC()
		}
	}
}
