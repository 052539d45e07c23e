package listener

import (
	"cmp"
	"context"
	"iter"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/randalmurphal/evdispatch/pkg/evdispatch/event"
	"github.com/randalmurphal/evdispatch/pkg/evdispatch/observability"
)

// table holds the listeners registered under one identity.
type table struct {
	// priorities is kept strictly descending.
	priorities []int
	// buckets maps priority -> listeners in registration order.
	buckets map[int][]Listener
}

// Registry maps event identities to prioritized listeners and resolves the
// ordered listeners for a concrete event.
type Registry struct {
	mu       sync.RWMutex
	tables   map[string]*table
	resolver Resolver
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithResolver sets the collaborator used for indirect references.
func WithResolver(r Resolver) Option {
	return func(reg *Registry) {
		reg.resolver = r
	}
}

// WithLogger enables debug logging of registrations.
func WithLogger(logger *slog.Logger) Option {
	return func(reg *Registry) {
		reg.logger = logger
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		tables: make(map[string]*table),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetResolver replaces the resolver used for indirect references.
// It only affects sequences that have not started iterating yet.
func (r *Registry) SetResolver(res Resolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolver = res
}

// Register appends l to the bucket for (identity, priority).
//
// Higher priorities run first. Listeners sharing a priority run in
// registration order.
func (r *Registry) Register(identity string, l Listener, priority int) error {
	if identity == "" {
		return &RegistrationError{Op: "register", Err: ErrInvalidIdentity}
	}
	if err := l.validate(); err != nil {
		return &RegistrationError{Identity: identity, Op: "register", Err: err}
	}

	r.mu.Lock()
	tb, ok := r.tables[identity]
	if !ok {
		tb = &table{buckets: make(map[int][]Listener)}
		r.tables[identity] = tb
	}
	if _, exists := tb.buckets[priority]; !exists {
		i, _ := slices.BinarySearchFunc(tb.priorities, priority, descending)
		tb.priorities = slices.Insert(tb.priorities, i, priority)
	}
	tb.buckets[priority] = append(tb.buckets[priority], l)
	r.mu.Unlock()

	observability.LogListenerRegistered(r.logger, identity, l.String(), priority)
	return nil
}

// On adapts fn with Adapt and registers it.
func (r *Registry) On(identity string, fn any, priority int) error {
	if identity == "" {
		return &RegistrationError{Op: "register", Err: ErrInvalidIdentity}
	}
	l, err := Adapt(fn)
	if err != nil {
		return &RegistrationError{Identity: identity, Op: "register", Err: err}
	}
	return r.Register(identity, l, priority)
}

// Subscribe registers a typed listener under the identity of E.
//
//	listener.Subscribe(reg, func(ctx context.Context, evt *OrderPlaced) error {
//	    return ship(ctx, evt.OrderID)
//	}, 10)
func Subscribe[E any](r *Registry, fn func(ctx context.Context, evt E) error, priority int) error {
	identity := event.TypeName[E]()
	if fn == nil {
		return &RegistrationError{Identity: identity, Op: "register", Err: ErrInvalidListener}
	}
	return r.Register(identity, Direct(Typed(fn)), priority)
}

// ResolveListeners returns the listeners applicable to evt in invocation
// order.
//
// The sequence is lazy. The table is read when iteration starts, under the
// read lock, and the lock is released before the first listener is yielded.
// Buckets with equal priority under different identities are merged in the
// order the identities are visited, most-derived first. Indirect listeners
// are resolved as they are yielded; a failure yields a nil Func and a
// *ReferenceError. Stopping the range early leaves the rest unresolved.
func (r *Registry) ResolveListeners(evt any) iter.Seq2[Func, error] {
	return func(yield func(Func, error) bool) {
		entries, resolver := r.snapshot(event.Identities(evt))
		for _, l := range entries {
			if !yield(l.resolve(resolver)) {
				return
			}
		}
	}
}

// Listeners resolves every listener for evt eagerly, stopping at the first
// resolution error.
func (r *Registry) Listeners(evt any) ([]Func, error) {
	var fns []Func
	for fn, err := range r.ResolveListeners(evt) {
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return fns, nil
}

func (r *Registry) snapshot(ids []string) ([]Listener, Resolver) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		priorities []int
		total      int
	)
	merged := make(map[int][]Listener)
	for _, id := range ids {
		tb, ok := r.tables[id]
		if !ok {
			continue
		}
		for _, p := range tb.priorities {
			if _, seen := merged[p]; !seen {
				priorities = append(priorities, p)
			}
			merged[p] = append(merged[p], tb.buckets[p]...)
			total += len(tb.buckets[p])
		}
	}
	slices.SortFunc(priorities, descending)

	out := make([]Listener, 0, total)
	for _, p := range priorities {
		out = append(out, merged[p]...)
	}
	return out, r.resolver
}

// Has reports whether any listener is registered under identity.
func (r *Registry) Has(identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tables[identity]
	return ok
}

// Identities returns every identity with registrations, sorted.
func (r *Registry) Identities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.tables))
	for id := range r.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Priorities returns the priorities registered under identity, highest first.
func (r *Registry) Priorities(identity string) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tb, ok := r.tables[identity]
	if !ok {
		return nil
	}
	return slices.Clone(tb.priorities)
}

// Len returns the total number of registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, tb := range r.tables {
		for _, bucket := range tb.buckets {
			n += len(bucket)
		}
	}
	return n
}

func descending(a, b int) int {
	return cmp.Compare(b, a)
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry, creating it on first use.
// Nothing in this module consults it implicitly.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}
