// Package report aggregates a timeline into grouped totals.
//
// Grouping follows calendar boundaries in the caller's location: "day" keys
// are YYYY-MM-DD and "week" keys are ISO weeks (YYYY-Www, Monday first).
// Groups are ordered chronologically. Tag totals count a slice once for
// every tag it carries, so they can sum to more than the grand total.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/roach88/akashic/internal/timeline"
)

// GroupBy selects how entries are bucketed.
type GroupBy string

const (
	GroupByNone GroupBy = "none"
	GroupByDay  GroupBy = "day"
	GroupByWeek GroupBy = "week"
)

// ParseGroupBy validates a group-by name. Empty means GroupByNone.
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(strings.ToLower(strings.TrimSpace(s))); g {
	case "", GroupByNone:
		return GroupByNone, nil
	case GroupByDay, GroupByWeek:
		return g, nil
	default:
		return "", fmt.Errorf("invalid group-by %q: must be none, day or week", s)
	}
}

// Row is one slice in a report.
type Row struct {
	ID          int64
	Start       time.Time
	End         time.Time
	Duration    time.Duration
	Tags        []string
	Description string
}

// Group is a bucket of rows with its subtotal.
type Group struct {
	Key      string // sortable key; empty for GroupByNone
	Title    string // human-readable heading; empty for GroupByNone
	Rows     []Row
	Subtotal time.Duration
}

// TagTotal is the time booked against one tag.
type TagTotal struct {
	Name   string
	Total  time.Duration
	Slices int
}

// Report is the aggregated view of a timeline.
type Report struct {
	GroupBy GroupBy
	From    time.Time // start of the earliest slice
	To      time.Time // end of the latest slice
	Groups  []Group
	Tags    []TagTotal // ordered by total descending, then name
	Total   time.Duration
	Days    int
	Slices  int
}

// Empty reports whether the report contains no slices.
func (r Report) Empty() bool {
	return r.Slices == 0
}

// Build aggregates tl. Times are converted to loc before grouping; a nil loc
// means time.Local.
func Build(tl *timeline.Timeline, by GroupBy, loc *time.Location) Report {
	if loc == nil {
		loc = time.Local
	}
	if by == "" {
		by = GroupByNone
	}

	r := Report{GroupBy: by, Days: tl.Days(loc), Slices: tl.Len()}

	index := make(map[string]int)
	tagTotals := make(map[string]*TagTotal)

	for _, e := range tl.Entries() {
		row := Row{
			ID:          e.Slice.ID,
			Start:       e.Slice.Start.In(loc),
			Duration:    e.Slice.Duration(),
			Tags:        e.TagNames(),
			Description: e.Description,
		}
		if !e.Slice.End.IsZero() {
			row.End = e.Slice.End.In(loc)
		}

		key := GroupKey(row.Start, by)
		i, ok := index[key]
		if !ok {
			i = len(r.Groups)
			index[key] = i
			r.Groups = append(r.Groups, Group{Key: key, Title: GroupTitle(row.Start, by)})
		}
		r.Groups[i].Rows = append(r.Groups[i].Rows, row)
		r.Groups[i].Subtotal += row.Duration
		r.Total += row.Duration

		for _, name := range row.Tags {
			tt, ok := tagTotals[name]
			if !ok {
				tt = &TagTotal{Name: name}
				tagTotals[name] = tt
			}
			tt.Total += row.Duration
			tt.Slices++
		}

		if r.From.IsZero() || row.Start.Before(r.From) {
			r.From = row.Start
		}
		if row.End.After(r.To) {
			r.To = row.End
		}
	}

	// Entries are chronological, so keys arrive mostly sorted; ISO weeks
	// spanning a year boundary still need the explicit sort.
	sort.SliceStable(r.Groups, func(i, j int) bool {
		return r.Groups[i].Key < r.Groups[j].Key
	})

	for _, tt := range tagTotals {
		r.Tags = append(r.Tags, *tt)
	}
	sort.Slice(r.Tags, func(i, j int) bool {
		if r.Tags[i].Total != r.Tags[j].Total {
			return r.Tags[i].Total > r.Tags[j].Total
		}
		return r.Tags[i].Name < r.Tags[j].Name
	})

	return r
}

// GroupKey returns the bucket key of t.
func GroupKey(t time.Time, by GroupBy) string {
	switch by {
	case GroupByDay:
		return t.Format(time.DateOnly)
	case GroupByWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	}
	return ""
}

// GroupTitle returns the heading shown for the bucket containing t.
func GroupTitle(t time.Time, by GroupBy) string {
	switch by {
	case GroupByDay:
		return t.Format("Monday, 02 Jan 2006")
	case GroupByWeek:
		start, end := WeekRange(t)
		return fmt.Sprintf("%s - %s", start.Format("Jan 02"), end.Format("Jan 02, 2006"))
	}
	return ""
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	}
	year, month, day := t.Date()
	start := time.Date(year, month, day-offset+1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 6)
}

// FormatDuration renders d as HH:MM:SS. Hours are not wrapped at 24.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
