// Package clock provides the wall-clock source used by the timer controller.
//
// Timestamps are persisted with millisecond precision, so every value handed
// out by a Clock is truncated to the millisecond. This keeps in-memory
// snapshots identical to what a later read from the store returns.
//
// The watchdog never polls: it asks the Clock for a channel that fires after
// the remaining duration and re-reads Now() when woken. Tests substitute
// testutil.FakeClock to drive that wait deterministically.
package clock

import "time"

// Clock is the time source consumed by the controller and the watchdog.
type Clock interface {
	// Now returns the current wall-clock time truncated to milliseconds.
	Now() time.Time

	// After returns a channel that receives once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

// System is the production Clock backed by the time package.
//
// Thread-safety: System is stateless and safe for concurrent use.
type System struct{}

// New returns the system clock.
func New() System {
	return System{}
}

// Now returns time.Now() truncated to the millisecond.
func (System) Now() time.Time {
	return Truncate(time.Now())
}

// After delegates to time.After.
func (System) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Truncate drops sub-millisecond precision and the monotonic reading.
func Truncate(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli())
}

// FromMillis converts a stored epoch-milliseconds value back to a time.
// Zero maps to the zero time so open intervals round-trip.
func FromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
