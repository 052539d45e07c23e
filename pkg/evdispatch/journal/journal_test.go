package journal_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/evdispatch/pkg/evdispatch/journal"
)

// stores runs each test against every Store implementation.
func stores(t *testing.T) map[string]func() journal.Store {
	return map[string]func() journal.Store{
		"memory": func() journal.Store { return journal.NewMemoryStore() },
		"sqlite": func() journal.Store {
			s, err := journal.NewSQLiteStore(":memory:")
			require.NoError(t, err)
			return s
		},
	}
}

func entry(id, identity, state string) journal.Entry {
	return journal.Entry{
		DispatchID: id,
		Identity:   identity,
		State:      state,
		Invoked:    2,
		StartedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:   1500 * time.Microsecond,
	}
}

func TestStore_RecordAndList(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			defer s.Close()

			require.NoError(t, s.Record(ctx, entry("d-1", "order.placed", "done")))
			require.NoError(t, s.Record(ctx, entry("d-2", "order.shipped", "stopped")))
			failed := entry("d-3", "order.placed", "failed")
			failed.Error = "boom"
			require.NoError(t, s.Record(ctx, failed))

			all, err := s.List(ctx, "", 0)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, []string{"d-3", "d-2", "d-1"}, ids(all))
			assert.Equal(t, failed, all[0])

			placed, err := s.List(ctx, "order.placed", 0)
			require.NoError(t, err)
			assert.Equal(t, []string{"d-3", "d-1"}, ids(placed))

			latest, err := s.List(ctx, "", 1)
			require.NoError(t, err)
			assert.Equal(t, []string{"d-3"}, ids(latest))

			none, err := s.List(ctx, "unknown", 0)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestStore_Count(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			defer s.Close()

			n, err := s.Count(ctx, "")
			require.NoError(t, err)
			assert.Zero(t, n)

			require.NoError(t, s.Record(ctx, entry("d-1", "a", "done")))
			require.NoError(t, s.Record(ctx, entry("d-2", "b", "done")))
			require.NoError(t, s.Record(ctx, entry("d-3", "a", "done")))

			n, err = s.Count(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, 2, n)
			n, err = s.Count(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, 3, n)
		})
	}
}

func TestStore_InvalidAndDuplicate(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			defer s.Close()

			assert.ErrorIs(t, s.Record(ctx, journal.Entry{Identity: "a"}), journal.ErrInvalidEntry)
			require.NoError(t, s.Record(ctx, entry("d-1", "a", "done")))
			assert.ErrorIs(t, s.Record(ctx, entry("d-1", "a", "failed")), journal.ErrDuplicateEntry)

			n, err := s.Count(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			require.NoError(t, s.Close())
			require.NoError(t, s.Close(), "close is idempotent")

			assert.ErrorIs(t, s.Record(ctx, entry("d-1", "a", "done")), journal.ErrStoreClosed)
			_, err := s.List(ctx, "", 0)
			assert.ErrorIs(t, err, journal.ErrStoreClosed)
			_, err = s.Count(ctx, "")
			assert.ErrorIs(t, err, journal.ErrStoreClosed)
		})
	}
}

func TestStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			defer s.Close()

			const workers, perWorker = 10, 20
			var wg sync.WaitGroup
			for w := range workers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := range perWorker {
						assert.NoError(t, s.Record(ctx, entry(fmt.Sprintf("d-%d-%d", w, i), "a", "done")))
						_, err := s.List(ctx, "a", 5)
						assert.NoError(t, err)
					}
				}()
			}
			wg.Wait()

			n, err := s.Count(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, workers*perWorker, n)
		})
	}
}

func TestSQLiteStore_Persistence(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	store1, err := journal.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store1.Record(ctx, entry("d-1", "order.placed", "done")))
	require.NoError(t, store1.Close())

	store2, err := journal.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store2.Close()

	got, err := store2.List(ctx, "order.placed", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entry("d-1", "order.placed", "done"), got[0])
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := journal.NewSQLiteStore("/nonexistent/path/db.sqlite")
	assert.Error(t, err)
}

func ids(entries []journal.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.DispatchID
	}
	return out
}
