package journal

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in memory. Data is lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	ids     map[string]struct{}
	closed  bool
}

// NewMemoryStore creates an empty in-memory journal.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ids: make(map[string]struct{}),
	}
}

// Record implements Store.
func (m *MemoryStore) Record(_ context.Context, e Entry) error {
	if e.DispatchID == "" {
		return ErrInvalidEntry
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	if _, dup := m.ids[e.DispatchID]; dup {
		return ErrDuplicateEntry
	}
	m.ids[e.DispatchID] = struct{}{}
	m.entries = append(m.entries, e)
	return nil
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context, identity string, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	out := []Entry{}
	for i := len(m.entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if identity == "" || m.entries[i].Identity == identity {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

// Count implements Store.
func (m *MemoryStore) Count(_ context.Context, identity string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStoreClosed
	}
	if identity == "" {
		return len(m.entries), nil
	}
	n := 0
	for _, e := range m.entries {
		if e.Identity == identity {
			n++
		}
	}
	return n, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.entries = nil
	m.ids = nil
	return nil
}
