package timer

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/akashic/internal/store"
	"github.com/roach88/akashic/internal/testutil"
	"github.com/roach88/akashic/internal/timeline"
)

func TestController_StartsIdle(t *testing.T) {
	c, _, _ := newTestController(t)

	assert.False(t, c.Running())
	_, err := c.Status()
	assert.True(t, IsNotRunning(err))
}

func TestController_StartStopRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, s, clk := newTestController(t, WithTokenGenerator(NewFixedGenerator("tok-1")))

	started, err := c.Start(ctx, StartOptions{
		Tags:        []string{"a", "b"},
		Description: "  write the report  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", started.Token)
	assert.True(t, started.Running())
	assert.False(t, started.Bounded())
	assert.Equal(t, []string{"a", "b"}, started.Tags)
	assert.Equal(t, "write the report", started.Description)
	assert.True(t, testutil.Epoch.Equal(started.Start))

	clk.Advance(90 * time.Second)

	stopped, err := c.Stop(ctx)
	require.NoError(t, err)
	assert.False(t, stopped.Running())
	assert.False(t, stopped.AutoStopped)
	assert.NotZero(t, stopped.SliceID)
	assert.Equal(t, 90*time.Second, stopped.Elapsed)
	assert.True(t, testutil.Epoch.Add(90*time.Second).Equal(stopped.End))
	assert.False(t, c.Running())

	tl, err := c.List(ctx, timeline.Filter{})
	require.NoError(t, err)
	info, err := tl.GetTimeInfo(stopped.SliceID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, info.TagNames())
	assert.Equal(t, "write the report", info.Description)
	assert.Equal(t, 90*time.Second, info.Slice.Duration())
	assert.Equal(t, 1, sliceCount(t, s))
}

func TestController_StartWhileRunning(t *testing.T) {
	ctx := context.Background()
	c, s, clk := newTestController(t, WithTokenGenerator(NewFixedGenerator("first", "second")))

	first, err := c.Start(ctx, StartOptions{Description: "first"})
	require.NoError(t, err)

	clk.Advance(time.Minute)
	_, err = c.Start(ctx, StartOptions{Description: "second"})
	require.Error(t, err)
	assert.True(t, IsAlreadyRunning(err))
	assert.Contains(t, err.Error(), "first")

	status, err := c.Status()
	require.NoError(t, err)
	assert.Equal(t, first.Token, status.Token)
	assert.Equal(t, "first", status.Description)
	assert.Equal(t, time.Minute, status.Elapsed)
	assert.Equal(t, 0, sliceCount(t, s))
}

func TestController_StopWhenIdle(t *testing.T) {
	c, s, _ := newTestController(t)

	_, err := c.Stop(context.Background())
	assert.True(t, IsNotRunning(err))
	assert.Equal(t, 0, sliceCount(t, s))
}

func TestController_NegativeDuration(t *testing.T) {
	c, _, _ := newTestController(t)

	_, err := c.Start(context.Background(), StartOptions{Duration: -time.Second})
	assert.True(t, IsInvalidDuration(err))
	assert.False(t, c.Running())
}

func TestController_StopWithoutElapsedTime(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newTestController(t)

	started, err := c.Start(ctx, StartOptions{})
	require.NoError(t, err)

	stopped, err := c.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Millisecond, stopped.Elapsed)
	assert.True(t, started.Start.Add(time.Millisecond).Equal(stopped.End))

	got, err := s.Slice(ctx, stopped.SliceID)
	require.NoError(t, err)
	assert.True(t, got.End.After(got.Start))
}

func TestController_TagsPersistedWithoutDescription(t *testing.T) {
	ctx := context.Background()
	c, s, clk := newTestController(t)

	_, err := c.Start(ctx, StartOptions{Tags: []string{"solo"}})
	require.NoError(t, err)
	clk.Advance(time.Minute)
	stopped, err := c.Stop(ctx)
	require.NoError(t, err)

	tags, err := s.TagsBySlice(ctx)
	require.NoError(t, err)
	require.Len(t, tags[stopped.SliceID], 1)
	assert.Equal(t, "solo", tags[stopped.SliceID][0].Name)

	descriptions, err := s.DescriptionsBySlice(ctx)
	require.NoError(t, err)
	assert.NotContains(t, descriptions, stopped.SliceID)
}

func TestController_InvalidTagsDropped(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newTestController(t)

	started, err := c.Start(ctx, StartOptions{Tags: []string{"  ", "#", "ok", "#ok", "OK"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok", "OK"}, started.Tags)

	tags, err := s.AllTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestController_StorageFailureKeepsTimerRunning(t *testing.T) {
	ctx := context.Background()
	real := testutil.OpenStore(t)
	fs := &flakyStore{Store: real}
	clk := testutil.NewFakeClock(time.Time{})
	c := New(fs, WithClock(clk), WithLogger(discardLogger()))
	t.Cleanup(func() { _ = c.Close() })

	started, err := c.Start(ctx, StartOptions{Description: "keep me"})
	require.NoError(t, err)
	clk.Advance(time.Minute)

	fs.setFailing(true)
	_, err = c.Stop(ctx)
	require.Error(t, err)
	assert.True(t, store.IsStorageError(err))
	assert.ErrorIs(t, err, errInjected)

	status, err := c.Status()
	require.NoError(t, err, "timer should still be running")
	assert.Equal(t, started.Token, status.Token)
	assert.Equal(t, 0, sliceCount(t, real))

	fs.setFailing(false)
	clk.Advance(time.Minute)
	stopped, err := c.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, stopped.Elapsed)
	assert.Equal(t, 1, sliceCount(t, real))
}

func TestController_ConcurrentStartsOneWins(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController(t)

	const n = 20
	var wins, refusals atomic.Int32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := c.Start(ctx, StartOptions{Tags: []string{"race"}})
			switch {
			case err == nil:
				wins.Add(1)
			case IsAlreadyRunning(err):
				refusals.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(n-1), refusals.Load())
}

func TestController_Remove(t *testing.T) {
	ctx := context.Background()
	c, s, clk := newTestController(t)

	_, err := c.Start(ctx, StartOptions{Tags: []string{"x"}, Description: "gone soon"})
	require.NoError(t, err)
	clk.Advance(time.Minute)
	stopped, err := c.Stop(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Remove(ctx, stopped.SliceID))

	tl, err := c.List(ctx, timeline.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 0, tl.Len())
	_, err = tl.GetTimeInfo(stopped.SliceID)
	assert.ErrorIs(t, err, timeline.ErrNotFound)

	tags, err := s.TagsBySlice(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestController_RemoveUnknown(t *testing.T) {
	ctx := context.Background()
	c, s, clk := newTestController(t)

	_, err := c.Start(ctx, StartOptions{})
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = c.Stop(ctx)
	require.NoError(t, err)

	err = c.Remove(ctx, 9999)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 1, sliceCount(t, s))
}

func TestController_UpdateTagsAndDescription(t *testing.T) {
	ctx := context.Background()
	c, _, clk := newTestController(t)

	_, err := c.Start(ctx, StartOptions{Tags: []string{"old"}, Description: "before"})
	require.NoError(t, err)
	clk.Advance(time.Minute)
	stopped, err := c.Stop(ctx)
	require.NoError(t, err)

	require.NoError(t, c.UpdateTags(ctx, stopped.SliceID, []string{"new", " ", "other"}))
	require.NoError(t, c.UpdateDescription(ctx, stopped.SliceID, "after"))

	tl, err := c.List(ctx, timeline.Filter{})
	require.NoError(t, err)
	info, err := tl.GetTimeInfo(stopped.SliceID)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "other"}, info.TagNames())
	assert.Equal(t, "after", info.Description)

	require.NoError(t, c.UpdateDescription(ctx, stopped.SliceID, ""))
	tl, err = c.List(ctx, timeline.Filter{})
	require.NoError(t, err)
	info, err = tl.GetTimeInfo(stopped.SliceID)
	require.NoError(t, err)
	assert.Empty(t, info.Description)

	assert.ErrorIs(t, c.UpdateTags(ctx, 9999, []string{"x"}), store.ErrNotFound)
	assert.ErrorIs(t, c.UpdateDescription(ctx, 9999, "x"), store.ErrNotFound)
}

func TestController_Retime(t *testing.T) {
	ctx := context.Background()
	c, _, clk := newTestController(t)

	_, err := c.Start(ctx, StartOptions{})
	require.NoError(t, err)
	clk.Advance(10 * time.Minute)
	stopped, err := c.Stop(ctx)
	require.NoError(t, err)

	newStart := stopped.Start.Add(-5 * time.Minute)
	got, err := c.Retime(ctx, stopped.SliceID, newStart, time.Time{})
	require.NoError(t, err)
	assert.True(t, newStart.Equal(got.Start))
	assert.True(t, stopped.End.Equal(got.End))
	assert.Equal(t, 15*time.Minute, got.Duration())

	_, err = c.Retime(ctx, stopped.SliceID, time.Time{}, got.Start)
	assert.ErrorIs(t, err, store.ErrInvalidSlice)

	_, err = c.Retime(ctx, 9999, newStart, time.Time{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestController_ListFilter(t *testing.T) {
	ctx := context.Background()
	c, _, clk := newTestController(t)

	for _, tag := range []string{"a", "b", "a"} {
		_, err := c.Start(ctx, StartOptions{Tags: []string{tag}})
		require.NoError(t, err)
		clk.Advance(time.Minute)
		_, err = c.Stop(ctx)
		require.NoError(t, err)
	}

	tl, err := c.List(ctx, timeline.Filter{Tags: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, 2, tl.Len())
}

func TestController_CloseDiscardsRunningTimer(t *testing.T) {
	ctx := context.Background()
	c, s, clk := newTestController(t)

	_, err := c.Start(ctx, StartOptions{Duration: time.Hour})
	require.NoError(t, err)
	waitForWaiter(t, clk)

	require.NoError(t, c.Close())
	assert.False(t, c.Running())
	assert.Equal(t, 0, sliceCount(t, s))

	_, err = c.Start(ctx, StartOptions{})
	assert.Error(t, err)
}
