package timer

import (
	"time"
)

// Snapshot is an immutable view of a timer at one instant.
//
// The controller only stores timestamps. Elapsed is computed when the
// snapshot is taken: End - Start for a stopped timer, now - Start for a
// running one.
type Snapshot struct {
	Token       string
	SliceID     int64 // set once the timer is persisted
	Start       time.Time
	End         time.Time // zero while running
	Deadline    time.Time // zero when no duration was given
	Elapsed     time.Duration
	Tags        []string
	Description string
	AutoStopped bool // stopped by the watchdog
}

// Running reports whether the snapshot was taken before the timer stopped.
func (s Snapshot) Running() bool {
	return s.End.IsZero()
}

// Bounded reports whether the timer was started with a duration.
func (s Snapshot) Bounded() bool {
	return !s.Deadline.IsZero()
}

// Remaining returns the time left until the watchdog fires, as of the
// snapshot. Zero for unbounded or stopped timers.
func (s Snapshot) Remaining() time.Duration {
	if !s.Bounded() || !s.Running() {
		return 0
	}
	r := s.Deadline.Sub(s.Start.Add(s.Elapsed))
	if r < 0 {
		return 0
	}
	return r
}
