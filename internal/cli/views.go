package cli

import (
	"time"

	"github.com/roach88/akashic/internal/report"
	"github.com/roach88/akashic/internal/store"
	"github.com/roach88/akashic/internal/timeline"
	"github.com/roach88/akashic/internal/timer"
)

// JSON payloads. Times are RFC 3339 in the configured zone and durations
// are given both in milliseconds and as HH:MM:SS.

type timerView struct {
	Token       string   `json:"token"`
	SliceID     int64    `json:"slice_id,omitempty"`
	Start       string   `json:"start"`
	End         string   `json:"end,omitempty"`
	Deadline    string   `json:"deadline,omitempty"`
	ElapsedMs   int64    `json:"elapsed_ms"`
	Elapsed     string   `json:"elapsed"`
	Tags        []string `json:"tags"`
	Description string   `json:"description,omitempty"`
	Running     bool     `json:"running"`
	AutoStopped bool     `json:"auto_stopped,omitempty"`
}

type sliceView struct {
	ID          int64    `json:"id"`
	Start       string   `json:"start"`
	End         string   `json:"end,omitempty"`
	DurationMs  int64    `json:"duration_ms"`
	Duration    string   `json:"duration"`
	Tags        []string `json:"tags"`
	Description string   `json:"description,omitempty"`
}

type listView struct {
	Slices  []sliceView `json:"slices"`
	Count   int         `json:"count"`
	Days    int         `json:"days"`
	TotalMs int64       `json:"total_ms"`
	Total   string      `json:"total"`
}

type tagView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type groupView struct {
	Key        string      `json:"key,omitempty"`
	Title      string      `json:"title,omitempty"`
	Slices     []sliceView `json:"slices"`
	SubtotalMs int64       `json:"subtotal_ms"`
	Subtotal   string      `json:"subtotal"`
}

type tagTotalView struct {
	Name    string `json:"name"`
	Slices  int    `json:"slices"`
	TotalMs int64  `json:"total_ms"`
	Total   string `json:"total"`
}

type reportView struct {
	GroupBy string         `json:"group_by"`
	From    string         `json:"from,omitempty"`
	To      string         `json:"to,omitempty"`
	Groups  []groupView    `json:"groups"`
	Tags    []tagTotalView `json:"tags"`
	Days    int            `json:"days"`
	TotalMs int64          `json:"total_ms"`
	Total   string         `json:"total"`
}

func newTimerView(s timer.Snapshot, loc *time.Location) timerView {
	return timerView{
		Token:       s.Token,
		SliceID:     s.SliceID,
		Start:       formatTime(s.Start, loc),
		End:         formatTime(s.End, loc),
		Deadline:    formatTime(s.Deadline, loc),
		ElapsedMs:   s.Elapsed.Milliseconds(),
		Elapsed:     report.FormatDuration(s.Elapsed),
		Tags:        orEmpty(s.Tags),
		Description: s.Description,
		Running:     s.Running(),
		AutoStopped: s.AutoStopped,
	}
}

func newSliceView(ti timeline.TimeInfo, loc *time.Location) sliceView {
	d := ti.Slice.Duration()
	return sliceView{
		ID:          ti.Slice.ID,
		Start:       formatTime(ti.Slice.Start, loc),
		End:         formatTime(ti.Slice.End, loc),
		DurationMs:  d.Milliseconds(),
		Duration:    report.FormatDuration(d),
		Tags:        orEmpty(ti.TagNames()),
		Description: ti.Description,
	}
}

func newListView(tl *timeline.Timeline, loc *time.Location) listView {
	entries := tl.Entries()
	v := listView{
		Slices:  make([]sliceView, len(entries)),
		Count:   len(entries),
		Days:    tl.Days(loc),
		TotalMs: tl.Total().Milliseconds(),
		Total:   report.FormatDuration(tl.Total()),
	}
	for i, e := range entries {
		v.Slices[i] = newSliceView(e, loc)
	}
	return v
}

func newTagViews(tags []store.Tag) []tagView {
	out := make([]tagView, len(tags))
	for i, t := range tags {
		out[i] = tagView{ID: t.ID, Name: t.Name, Color: t.Color}
	}
	return out
}

func newReportView(r report.Report, loc *time.Location) reportView {
	v := reportView{
		GroupBy: string(r.GroupBy),
		From:    formatTime(r.From, loc),
		To:      formatTime(r.To, loc),
		Groups:  make([]groupView, len(r.Groups)),
		Tags:    make([]tagTotalView, len(r.Tags)),
		Days:    r.Days,
		TotalMs: r.Total.Milliseconds(),
		Total:   report.FormatDuration(r.Total),
	}
	for i, g := range r.Groups {
		gv := groupView{
			Key:        g.Key,
			Title:      g.Title,
			Slices:     make([]sliceView, len(g.Rows)),
			SubtotalMs: g.Subtotal.Milliseconds(),
			Subtotal:   report.FormatDuration(g.Subtotal),
		}
		for j, row := range g.Rows {
			gv.Slices[j] = sliceView{
				ID:          row.ID,
				Start:       formatTime(row.Start, loc),
				End:         formatTime(row.End, loc),
				DurationMs:  row.Duration.Milliseconds(),
				Duration:    report.FormatDuration(row.Duration),
				Tags:        orEmpty(row.Tags),
				Description: row.Description,
			}
		}
		v.Groups[i] = gv
	}
	for i, tt := range r.Tags {
		v.Tags[i] = tagTotalView{
			Name:    tt.Name,
			Slices:  tt.Slices,
			TotalMs: tt.Total.Milliseconds(),
			Total:   report.FormatDuration(tt.Total),
		}
	}
	return v
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(time.RFC3339)
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
