package benchmarks

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/randalmurphal/evdispatch/pkg/evdispatch"
	"github.com/randalmurphal/evdispatch/pkg/evdispatch/event"
	"github.com/randalmurphal/evdispatch/pkg/evdispatch/journal"
	"github.com/randalmurphal/evdispatch/pkg/evdispatch/listener"
)

func benchEntry(i int) journal.Entry {
	return journal.Entry{
		DispatchID: "d-" + strconv.Itoa(i),
		Identity:   "bench.journal",
		State:      "done",
		Invoked:    3,
		StartedAt:  time.Now(),
		Duration:   time.Millisecond,
	}
}

// BenchmarkMemoryStore_Record measures in-memory journal writes.
func BenchmarkMemoryStore_Record(b *testing.B) {
	store := journal.NewMemoryStore()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Record(ctx, benchEntry(i))
	}
}

// BenchmarkSQLiteStore_Record measures SQLite journal writes.
func BenchmarkSQLiteStore_Record(b *testing.B) {
	store, cleanup := createSQLiteStore(b)
	defer cleanup()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Record(ctx, benchEntry(i))
	}
}

// BenchmarkSQLiteStore_List measures reading the latest entries.
func BenchmarkSQLiteStore_List(b *testing.B) {
	store, cleanup := createSQLiteStore(b)
	defer cleanup()
	ctx := context.Background()
	for i := 0; i < 1000; i++ {
		_ = store.Record(ctx, benchEntry(i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.List(ctx, "bench.journal", 20)
	}
}

// BenchmarkDispatch_WithJournal measures dispatch overhead of journaling.
func BenchmarkDispatch_WithJournal(b *testing.B) {
	reg := listener.NewRegistry()
	_ = reg.Register("bench.journal", listener.Direct(noop), 0)
	d := evdispatch.New(reg, evdispatch.WithJournal(journal.NewMemoryStore()))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = d.Dispatch(ctx, event.NewMessage("bench.journal", i))
	}
}

func createSQLiteStore(b *testing.B) (*journal.SQLiteStore, func()) {
	b.Helper()
	tmpFile, err := os.CreateTemp("", "bench-*.db")
	if err != nil {
		b.Fatal(err)
	}
	tmpFile.Close()

	store, err := journal.NewSQLiteStore(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		b.Fatal(err)
	}

	return store, func() {
		store.Close()
		os.Remove(tmpFile.Name())
	}
}
