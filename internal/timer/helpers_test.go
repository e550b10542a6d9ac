package timer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/akashic/internal/store"
	"github.com/roach88/akashic/internal/testutil"
)

// flakyStore wraps a real store and can be told to fail slice inserts.
type flakyStore struct {
	*store.Store

	mu      sync.Mutex
	failing bool
	inserts int
}

var errInjected = errors.New("injected failure")

func (f *flakyStore) InsertSliceWithContext(ctx context.Context, sc store.SliceContext) (int64, error) {
	f.mu.Lock()
	f.inserts++
	failing := f.failing
	f.mu.Unlock()
	if failing {
		return 0, &store.StorageError{Op: "insert slice", Err: errInjected}
	}
	return f.Store.InsertSliceWithContext(ctx, sc)
}

func (f *flakyStore) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestController builds a controller on a temp store and a fake clock.
func newTestController(t *testing.T, opts ...Option) (*Controller, *store.Store, *testutil.FakeClock) {
	t.Helper()
	s := testutil.OpenStore(t)
	clk := testutil.NewFakeClock(time.Time{})
	all := append([]Option{WithClock(clk), WithLogger(discardLogger())}, opts...)
	c := New(s, all...)
	t.Cleanup(func() { _ = c.Close() })
	return c, s, clk
}

func sliceCount(t *testing.T, s *store.Store) int {
	t.Helper()
	slices, err := s.AllSlices(context.Background())
	require.NoError(t, err)
	return len(slices)
}

// waitForWaiter blocks until the watchdog is parked on the fake clock.
func waitForWaiter(t *testing.T, clk *testutil.FakeClock) {
	t.Helper()
	require.Eventually(t, func() bool { return clk.Waiters() > 0 },
		time.Second, time.Millisecond, "watchdog never waited on the clock")
}
