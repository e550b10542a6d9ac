package timeline

import (
	"time"

	"github.com/roach88/akashic/internal/store"
)

// Filter selects a subset of a timeline. Zero fields match everything.
type Filter struct {
	// Tags must all be present on a slice. Names are normalized the same
	// way the registry stores them.
	Tags []string

	// From is the inclusive lower bound on the slice start.
	From time.Time

	// To is the exclusive upper bound on the slice start.
	To time.Time
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return len(f.Tags) == 0 && f.From.IsZero() && f.To.IsZero()
}

// Filter returns a new timeline holding the entries that match f.
// A tag name that cannot be normalized matches nothing.
func (tl *Timeline) Filter(f Filter) *Timeline {
	if f.IsZero() {
		return tl
	}

	want := make([]string, 0, len(f.Tags))
	for _, raw := range f.Tags {
		name, err := store.NormalizeTagName(raw)
		if err != nil {
			return newTimeline(nil)
		}
		want = append(want, name)
	}

	var kept []TimeInfo
	for _, e := range tl.entries {
		if f.matches(e, want) {
			kept = append(kept, e)
		}
	}
	return newTimeline(kept)
}

func (f Filter) matches(e TimeInfo, tags []string) bool {
	start := e.Slice.Start
	if !f.From.IsZero() && start.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !start.Before(f.To) {
		return false
	}
	for _, name := range tags {
		if !e.HasTag(name) {
			return false
		}
	}
	return true
}
