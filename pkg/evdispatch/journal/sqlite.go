package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists entries to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens or creates a journal database.
// The path should be a file path (e.g., "./dispatches.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS dispatches (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			dispatch_id TEXT NOT NULL UNIQUE,
			identity TEXT NOT NULL,
			state TEXT NOT NULL,
			invoked INTEGER NOT NULL,
			error TEXT NOT NULL,
			started_at TEXT NOT NULL,
			duration_ns INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_dispatches_identity
		ON dispatches(identity)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Record implements Store.
func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	if e.DispatchID == "" {
		return ErrInvalidEntry
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO dispatches (dispatch_id, identity, state, invoked, error, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(dispatch_id) DO NOTHING
	`, e.DispatchID, e.Identity, e.State, e.Invoked, e.Error,
		e.StartedAt.UTC().Format(time.RFC3339Nano), int64(e.Duration))
	if err != nil {
		return fmt.Errorf("record dispatch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record dispatch: %w", err)
	}
	if n == 0 {
		return ErrDuplicateEntry
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, identity string, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT dispatch_id, identity, state, invoked, error, started_at, duration_ns
		FROM dispatches
		WHERE ? = '' OR identity = ?
		ORDER BY seq DESC
		LIMIT ?
	`, identity, identity, limit)
	if err != nil {
		return nil, fmt.Errorf("list dispatches: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e         Entry
			startedAt string
			duration  int64
		)
		if err := rows.Scan(&e.DispatchID, &e.Identity, &e.State, &e.Invoked, &e.Error, &startedAt, &duration); err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		e.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		e.Duration = time.Duration(duration)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispatches: %w", err)
	}
	return entries, nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context, identity string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM dispatches
		WHERE ? = '' OR identity = ?
	`, identity, identity).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count dispatches: %w", err)
	}
	return n, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
