package testutil

import "sync"

// DefaultNow is the instant fixture clocks start at: 2023-11-14T22:13:20Z.
const DefaultNow int64 = 1700000000000

// DeterministicClock is a settable millisecond clock for tests.
//
// Unlike engine.FixedClock, it can be advanced and reset between steps of
// one scenario, so a test can observe "now" moving without touching the
// wall clock.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start int64
	now   int64
}

// NewDeterministicClock creates a clock reading start.
func NewDeterministicClock(start int64) *DeterministicClock {
	return &DeterministicClock{start: start, now: start}
}

// NowMillis returns the current instant. Implements engine.Clock.
func (c *DeterministicClock) NowMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by ms milliseconds and returns the new instant.
func (c *DeterministicClock) Advance(ms int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += ms
	return c.now
}

// Reset returns the clock to its start instant.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
