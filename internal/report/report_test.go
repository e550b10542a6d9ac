package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/akashic/internal/store"
	"github.com/roach88/akashic/internal/timeline"
)

type memSource struct {
	slices       []store.Slice
	tags         map[int64][]store.Tag
	descriptions map[int64]string
}

func (m memSource) AllSlices(context.Context) ([]store.Slice, error) { return m.slices, nil }
func (m memSource) TagsBySlice(context.Context) (map[int64][]store.Tag, error) {
	return m.tags, nil
}
func (m memSource) DescriptionsBySlice(context.Context) (map[int64]string, error) {
	return m.descriptions, nil
}

func utc(day, hour, min int) time.Time {
	return time.Date(2024, 12, day, hour, min, 0, 0, time.UTC)
}

// sampleTimeline spans the 2024/2025 ISO week boundary:
// Sun 29 Dec is week 52, Mon 30 Dec and Wed 1 Jan are 2025-W01.
func sampleTimeline(t *testing.T) *timeline.Timeline {
	t.Helper()
	code := store.Tag{ID: 1, Name: "code"}
	docs := store.Tag{ID: 2, Name: "docs"}
	src := memSource{
		slices: []store.Slice{
			{ID: 1, Start: utc(29, 9, 0), End: utc(29, 10, 0)},
			{ID: 2, Start: utc(29, 14, 0), End: utc(29, 14, 30)},
			{ID: 3, Start: utc(30, 9, 0), End: utc(30, 11, 0)},
			{ID: 4, Start: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), End: time.Date(2025, 1, 1, 8, 15, 0, 0, time.UTC)},
		},
		tags: map[int64][]store.Tag{
			1: {code},
			2: {code, docs},
			3: {docs},
		},
		descriptions: map[int64]string{1: "parser", 3: "handbook"},
	}
	tl, err := timeline.Build(context.Background(), src)
	require.NoError(t, err)
	return tl
}

func TestParseGroupBy(t *testing.T) {
	tests := []struct {
		in      string
		want    GroupBy
		wantErr bool
	}{
		{"", GroupByNone, false},
		{"none", GroupByNone, false},
		{"Day", GroupByDay, false},
		{" week ", GroupByWeek, false},
		{"month", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGroupBy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild_NoGrouping(t *testing.T) {
	r := Build(sampleTimeline(t), GroupByNone, time.UTC)

	require.Len(t, r.Groups, 1)
	assert.Equal(t, "", r.Groups[0].Key)
	assert.Len(t, r.Groups[0].Rows, 4)
	assert.Equal(t, 3*time.Hour+45*time.Minute, r.Total)
	assert.Equal(t, r.Total, r.Groups[0].Subtotal)
	assert.Equal(t, 3, r.Days)
	assert.Equal(t, 4, r.Slices)
	assert.True(t, utc(29, 9, 0).Equal(r.From))
	assert.True(t, time.Date(2025, 1, 1, 8, 15, 0, 0, time.UTC).Equal(r.To))
}

func TestBuild_ByDay(t *testing.T) {
	r := Build(sampleTimeline(t), GroupByDay, time.UTC)

	require.Len(t, r.Groups, 3)
	assert.Equal(t, "2024-12-29", r.Groups[0].Key)
	assert.Equal(t, "Sunday, 29 Dec 2024", r.Groups[0].Title)
	assert.Equal(t, 90*time.Minute, r.Groups[0].Subtotal)
	assert.Equal(t, "2024-12-30", r.Groups[1].Key)
	assert.Equal(t, "2025-01-01", r.Groups[2].Key)
}

func TestBuild_ByWeek(t *testing.T) {
	r := Build(sampleTimeline(t), GroupByWeek, time.UTC)

	require.Len(t, r.Groups, 2)
	assert.Equal(t, "2024-W52", r.Groups[0].Key)
	assert.Equal(t, "Dec 23 - Dec 29, 2024", r.Groups[0].Title)
	assert.Equal(t, 90*time.Minute, r.Groups[0].Subtotal)

	assert.Equal(t, "2025-W01", r.Groups[1].Key)
	assert.Equal(t, "Dec 30 - Jan 05, 2025", r.Groups[1].Title)
	assert.Equal(t, 2*time.Hour+15*time.Minute, r.Groups[1].Subtotal)
}

func TestBuild_DayBoundaryFollowsLocation(t *testing.T) {
	// 29 Dec 14:00 UTC is already 30 Dec in UTC+11.
	r := Build(sampleTimeline(t), GroupByDay, time.FixedZone("AEDT", 11*60*60))

	require.Len(t, r.Groups, 3)
	assert.Equal(t, "2024-12-29", r.Groups[0].Key)
	assert.Len(t, r.Groups[0].Rows, 1)
	assert.Equal(t, "2024-12-30", r.Groups[1].Key)
	assert.Len(t, r.Groups[1].Rows, 2)
}

func TestBuild_TagTotals(t *testing.T) {
	r := Build(sampleTimeline(t), GroupByNone, time.UTC)

	assert.Equal(t, []TagTotal{
		{Name: "docs", Total: 150 * time.Minute, Slices: 2},
		{Name: "code", Total: 90 * time.Minute, Slices: 2},
	}, r.Tags)
}

func TestBuild_Empty(t *testing.T) {
	tl, err := timeline.Build(context.Background(), memSource{})
	require.NoError(t, err)

	r := Build(tl, GroupByDay, time.UTC)
	assert.True(t, r.Empty())
	assert.Empty(t, r.Groups)
	assert.Empty(t, r.Tags)
	assert.Zero(t, r.Total)
}

func TestWeekRange(t *testing.T) {
	start, end := WeekRange(time.Date(2025, 2, 16, 23, 0, 0, 0, time.UTC)) // Sunday
	assert.Equal(t, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 2, 16, 0, 0, 0, 0, time.UTC), end)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatDuration(0))
	assert.Equal(t, "01:16:59", FormatDuration(time.Hour+16*time.Minute+59*time.Second))
	assert.Equal(t, "00:00:01", FormatDuration(1400*time.Millisecond))
	assert.Equal(t, "100:00:00", FormatDuration(100*time.Hour))
}

func TestWritePDF(t *testing.T) {
	for _, by := range []GroupBy{GroupByNone, GroupByWeek} {
		t.Run(string(by), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "report.pdf")
			require.NoError(t, WritePDF(path, Build(sampleTimeline(t), by, time.UTC)))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, len(data) > 4 && string(data[:4]) == "%PDF", "output is not a PDF")
		})
	}
}
