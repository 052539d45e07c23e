// Package journal records the outcome of each dispatch.
//
// The journal is an audit trail. Entries are never replayed; a failure to
// record is logged by the dispatcher and never changes a dispatch result.
package journal

import (
	"context"
	"errors"
	"time"
)

// Store persists dispatch outcomes.
// Implementations must be safe for concurrent use.
type Store interface {
	// Record appends an entry. DispatchID must be set and unique.
	Record(ctx context.Context, e Entry) error

	// List returns entries newest first. An empty identity matches every
	// entry; limit <= 0 means no limit.
	List(ctx context.Context, identity string, limit int) ([]Entry, error)

	// Count returns the number of entries for identity, or all entries
	// when identity is empty.
	Count(ctx context.Context, identity string) (int, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Entry describes one finished dispatch.
type Entry struct {
	DispatchID string
	// Identity is the first identity the event resolved under.
	Identity string
	// State is the terminal dispatch state: "done", "stopped" or "failed".
	State     string
	Invoked   int
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// Sentinel errors for journal operations.
var (
	// ErrInvalidEntry indicates an entry without a dispatch ID.
	ErrInvalidEntry = errors.New("journal entry missing dispatch id")

	// ErrDuplicateEntry indicates a dispatch ID that was already recorded.
	ErrDuplicateEntry = errors.New("journal entry already recorded")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("journal store closed")
)
