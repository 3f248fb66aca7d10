package transport

import "time"

// Clock is an interface for getting the current time.
// This allows injecting a mock clock for deterministic testing of the
// deduplication window.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// SystemClock implements Clock using the actual system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// defaultClock is the package-level default clock.
// Used by types that don't have an explicitly set clock.
var defaultClock Clock = SystemClock{}

// getClock returns the provided Clock if non-nil, otherwise the
// package-level default.
func getClock(c Clock) Clock {
	if c != nil {
		return c
	}
	return defaultClock
}
