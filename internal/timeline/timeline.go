// Package timeline assembles the read view of the tracking history.
//
// A Timeline is built in one pass from the store's three bulk accessors and
// is immutable afterwards. Entries are ordered by start time, with the slice
// ID breaking ties, so two builds over the same data are identical.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/roach88/akashic/internal/store"
)

// ErrNotFound is returned by GetTimeInfo for an ID not in the timeline.
var ErrNotFound = errors.New("time slice not in timeline")

// Source is the bulk read surface a Timeline is built from.
// Implemented by *store.Store.
type Source interface {
	AllSlices(ctx context.Context) ([]store.Slice, error)
	TagsBySlice(ctx context.Context) (map[int64][]store.Tag, error)
	DescriptionsBySlice(ctx context.Context) (map[int64]string, error)
}

// TimeInfo is one slice joined with its tags and description.
type TimeInfo struct {
	Slice       store.Slice
	Tags        []store.Tag // ordered by name
	Description string      // empty when absent
}

// TagNames returns the tag names in display order.
func (ti TimeInfo) TagNames() []string {
	names := make([]string, len(ti.Tags))
	for i, t := range ti.Tags {
		names[i] = t.Name
	}
	return names
}

// HasTag reports whether the entry carries the named tag.
func (ti TimeInfo) HasTag(name string) bool {
	for _, t := range ti.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Timeline is a chronologically ordered, read-only view of slices.
type Timeline struct {
	entries []TimeInfo
	index   map[int64]int
}

// Build reads every slice with its tags and description.
func Build(ctx context.Context, src Source) (*Timeline, error) {
	slices, err := src.AllSlices(ctx)
	if err != nil {
		return nil, fmt.Errorf("build timeline: %w", err)
	}
	tags, err := src.TagsBySlice(ctx)
	if err != nil {
		return nil, fmt.Errorf("build timeline: %w", err)
	}
	descriptions, err := src.DescriptionsBySlice(ctx)
	if err != nil {
		return nil, fmt.Errorf("build timeline: %w", err)
	}

	entries := make([]TimeInfo, len(slices))
	for i, s := range slices {
		entries[i] = TimeInfo{
			Slice:       s,
			Tags:        tags[s.ID],
			Description: descriptions[s.ID],
		}
	}
	return newTimeline(entries), nil
}

func newTimeline(entries []TimeInfo) *Timeline {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Slice, entries[j].Slice
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.ID < b.ID
	})

	index := make(map[int64]int, len(entries))
	for i, e := range entries {
		index[e.Slice.ID] = i
	}
	return &Timeline{entries: entries, index: index}
}

// GetTimeInfo returns the entry for a slice ID.
func (tl *Timeline) GetTimeInfo(id int64) (TimeInfo, error) {
	i, ok := tl.index[id]
	if !ok {
		return TimeInfo{}, fmt.Errorf("slice %d: %w", id, ErrNotFound)
	}
	return tl.entries[i], nil
}

// Entries returns a copy of the entries in chronological order.
func (tl *Timeline) Entries() []TimeInfo {
	out := make([]TimeInfo, len(tl.entries))
	copy(out, tl.entries)
	return out
}

// Len returns the number of entries.
func (tl *Timeline) Len() int {
	return len(tl.entries)
}

// Total returns the summed duration of all closed slices.
func (tl *Timeline) Total() time.Duration {
	var total time.Duration
	for _, e := range tl.entries {
		total += e.Slice.Duration()
	}
	return total
}

// Days returns the number of distinct calendar days, in loc, on which a
// slice starts.
func (tl *Timeline) Days(loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	seen := make(map[string]bool)
	for _, e := range tl.entries {
		seen[e.Slice.Start.In(loc).Format(time.DateOnly)] = true
	}
	return len(seen)
}
