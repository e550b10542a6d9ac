// Package render formats timers, timelines and reports as plain text.
//
// Output is deterministic for a given input and location, which is what the
// golden-file tests rely on. Nothing here reads the clock.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/akashic/internal/report"
	"github.com/roach88/akashic/internal/store"
	"github.com/roach88/akashic/internal/timeline"
	"github.com/roach88/akashic/internal/timer"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04:05"
	openEnd     = "--:--:--"
)

// Status writes the "Current Timer" block for a snapshot.
func Status(w io.Writer, s timer.Snapshot, loc *time.Location) error {
	loc = location(loc)
	start := s.Start.In(loc)
	end := openEnd
	if !s.Running() {
		end = s.End.In(loc).Format(clockLayout)
	}

	var b strings.Builder
	b.WriteString("----Current Timer--------------------------------\n")
	b.WriteString("Date          Start        End        Duration\n")
	fmt.Fprintf(&b, "%s    %s  -  %s   %s\n",
		start.Format(dateLayout), start.Format(clockLayout), end, report.FormatDuration(s.Elapsed))
	b.WriteString("-------------------------------------------------\n")
	if len(s.Tags) > 0 {
		fmt.Fprintf(&b, "Tags:      %s\n", strings.Join(s.Tags, " "))
	}
	if s.Bounded() && s.Running() {
		fmt.Fprintf(&b, "Remaining: %s\n", report.FormatDuration(s.Remaining()))
	}
	if s.AutoStopped {
		b.WriteString("Stopped at deadline.\n")
	}
	if s.Description != "" {
		fmt.Fprintf(&b, "> %s\n", s.Description)
	}
	return flush(w, &b)
}

// Timeline writes the ledger table. The date is printed on the first slice of
// each day only, and a footer carries the day count and total duration.
func Timeline(w io.Writer, tl *timeline.Timeline, loc *time.Location) error {
	loc = location(loc)

	var b strings.Builder
	if tl.Len() == 0 {
		b.WriteString("No time slices recorded.\n")
		return flush(w, &b)
	}

	t := &table{headers: []string{"ID", "Date", "Start", "End", "Duration", "Tags", "Description"}}
	prevDate := ""
	for _, e := range tl.Entries() {
		start := e.Slice.Start.In(loc)
		date := start.Format(dateLayout)
		shown := date
		if date == prevDate {
			shown = ""
		}
		prevDate = date

		end := openEnd
		if !e.Slice.Open() {
			end = e.Slice.End.In(loc).Format(clockLayout)
		}
		t.add(
			strconv.FormatInt(e.Slice.ID, 10),
			shown,
			start.Format(clockLayout),
			end,
			report.FormatDuration(e.Slice.Duration()),
			strings.Join(e.TagNames(), " "),
			e.Description,
		)
	}
	t.write(&b)
	b.WriteString(rule(t.width()))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Total: %d days, %s\n", tl.Days(loc), report.FormatDuration(tl.Total()))
	return flush(w, &b)
}

// TimeInfo writes the detail view of one slice.
func TimeInfo(w io.Writer, ti timeline.TimeInfo, loc *time.Location) error {
	loc = location(loc)

	var b strings.Builder
	fmt.Fprintf(&b, "Slice:       %d\n", ti.Slice.ID)
	fmt.Fprintf(&b, "Start:       %s\n", ti.Slice.Start.In(loc).Format(time.DateTime))
	if ti.Slice.Open() {
		fmt.Fprintf(&b, "End:         %s\n", openEnd)
	} else {
		fmt.Fprintf(&b, "End:         %s\n", ti.Slice.End.In(loc).Format(time.DateTime))
	}
	fmt.Fprintf(&b, "Duration:    %s\n", report.FormatDuration(ti.Slice.Duration()))
	if len(ti.Tags) > 0 {
		fmt.Fprintf(&b, "Tags:        %s\n", strings.Join(ti.TagNames(), " "))
	}
	if ti.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", ti.Description)
	}
	return flush(w, &b)
}

// Report writes a grouped report with per-group subtotals, per-tag totals
// and a grand total.
func Report(w io.Writer, r report.Report) error {
	var b strings.Builder
	if r.Empty() {
		b.WriteString("No time slices recorded.\n")
		return flush(w, &b)
	}

	fmt.Fprintf(&b, "Report (group by %s): %s - %s\n",
		r.GroupBy, r.From.Format(dateLayout), r.To.Format(dateLayout))

	for _, g := range r.Groups {
		b.WriteByte('\n')
		if g.Title != "" {
			fmt.Fprintf(&b, "%s\n", g.Title)
		}
		t := &table{headers: []string{"ID", "Date", "Start", "End", "Duration", "Tags", "Description"}}
		for _, row := range g.Rows {
			end := openEnd
			if !row.End.IsZero() {
				end = row.End.Format(clockLayout)
			}
			t.add(
				strconv.FormatInt(row.ID, 10),
				row.Start.Format(dateLayout),
				row.Start.Format(clockLayout),
				end,
				report.FormatDuration(row.Duration),
				strings.Join(row.Tags, " "),
				row.Description,
			)
		}
		t.write(&b)
		if r.GroupBy != report.GroupByNone {
			fmt.Fprintf(&b, "Subtotal: %s\n", report.FormatDuration(g.Subtotal))
		}
	}

	if len(r.Tags) > 0 {
		b.WriteString("\nBy tag\n")
		t := &table{headers: []string{"Tag", "Slices", "Total"}}
		for _, tt := range r.Tags {
			t.add(tt.Name, strconv.Itoa(tt.Slices), report.FormatDuration(tt.Total))
		}
		t.write(&b)
	}

	fmt.Fprintf(&b, "\nTotal: %d days, %s\n", r.Days, report.FormatDuration(r.Total))
	return flush(w, &b)
}

// Tags writes the tag registry.
func Tags(w io.Writer, tags []store.Tag) error {
	var b strings.Builder
	if len(tags) == 0 {
		b.WriteString("No tags registered.\n")
		return flush(w, &b)
	}
	t := &table{headers: []string{"ID", "Tag", "Color"}}
	for _, tag := range tags {
		t.add(strconv.FormatInt(tag.ID, 10), tag.Name, tag.Color)
	}
	t.write(&b)
	return flush(w, &b)
}

func flush(w io.Writer, b *strings.Builder) error {
	_, err := io.WriteString(w, b.String())
	return err
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
