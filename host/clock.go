package host

import (
	"sync"
	"time"
)

// SystemClock returns the system time in seconds. It never goes backwards:
// if the system time is adjusted back, the last returned value is repeated.
type SystemClock struct {
	mtx  sync.Mutex
	last int64
}

// Now implements treasury.Clock.
func (c *SystemClock) Now() int64 {
	now := time.Now().Unix()

	c.mtx.Lock()
	defer c.mtx.Unlock()

	if now < c.last {
		return c.last
	}
	c.last = now
	return now
}

// ManualClock is a clock set explicitly.
type ManualClock struct {
	mtx sync.RWMutex
	now int64
}

// NewManualClock returns a clock showing now.
func NewManualClock(now int64) *ManualClock {
	return &ManualClock{now: now}
}

// Now implements treasury.Clock.
func (c *ManualClock) Now() int64 {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.now
}

// Advance moves the clock forward by d seconds.
func (c *ManualClock) Advance(d int64) {
	if d < 0 {
		return
	}
	c.mtx.Lock()
	c.now += d
	c.mtx.Unlock()
}
