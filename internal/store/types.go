package store

import (
	"time"
)

// Slice is a persisted time interval.
// A zero End means the slice is still open.
type Slice struct {
	ID    int64
	Start time.Time
	End   time.Time
}

// Open reports whether the slice has no end time yet.
func (s Slice) Open() bool {
	return s.End.IsZero()
}

// Duration returns End - Start, or zero for an open slice.
func (s Slice) Duration() time.Duration {
	if s.Open() {
		return 0
	}
	return s.End.Sub(s.Start)
}

// Tag is an entry in the tag registry.
type Tag struct {
	ID    int64
	Name  string
	Color string // optional display hint
}

// SliceContext is everything persisted for one stopped timer.
type SliceContext struct {
	Start       time.Time
	End         time.Time
	TagIDs      []int64
	Description string
}
