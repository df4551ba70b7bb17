package monitor

import (
	"sync"
	"time"
)

// Clock is the time source for calibration and timers.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock. time.Now carries a monotonic reading,
// so elapsed-time comparisons are unaffected by clock steps.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a ManualClock set to start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Timer fires when strictly more than a period has passed since it last fired.
type Timer struct {
	last time.Time
}

// NewTimer creates a Timer whose first period starts at start.
func NewTimer(start time.Time) Timer {
	return Timer{last: start}
}

// Fire reports whether the timer is due at now and, if so, restarts it.
func (t *Timer) Fire(now time.Time, period time.Duration) bool {
	if now.Sub(t.last) > period {
		t.last = now
		return true
	}
	return false
}
