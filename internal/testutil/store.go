package testutil

import (
	"path/filepath"
	"testing"

	"github.com/roach88/akashic/internal/store"
)

// OpenStore opens a fresh SQLite store in a per-test temp directory.
// The store is closed when the test finishes.
func OpenStore(t testing.TB) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "akashic_test.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
