package engine

import "time"

// Clock supplies the current time in Unix milliseconds. It is the only
// source of "now" the engine sees, which keeps Enforce a deterministic
// function of its inputs under test.
type Clock interface {
	NowMillis() int64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// NowMillis returns the current wall-clock time.
func (SystemClock) NowMillis() int64 {
	return time.Now().UnixMilli()
}

// FixedClock always returns the same instant.
type FixedClock int64

// NowMillis returns the fixed instant.
func (c FixedClock) NowMillis() int64 {
	return int64(c)
}
