package event

import (
	"time"

	"github.com/google/uuid"
)

// Named is implemented by events that carry an explicit name.
// The name replaces type-based identity entirely.
type Named interface {
	EventName() string
}

// Stoppable is implemented by events whose propagation can be halted.
// The flag starts false and, once set, stays set.
type Stoppable interface {
	IsPropagationStopped() bool
	StopPropagation()
}

// Lineage is implemented by events that declare their ancestor identities
// explicitly, most-derived first. The concrete identity must not be included.
type Lineage interface {
	Ancestors() []string
}

// Base carries the metadata most events want and implements Stoppable.
// Embed it by value and dispatch the enclosing struct by pointer so listeners
// can set the flag.
type Base struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	stopped bool
}

// IsPropagationStopped reports whether a listener has stopped propagation.
func (b *Base) IsPropagationStopped() bool {
	return b.stopped
}

// StopPropagation prevents any further listener from receiving the event.
func (b *Base) StopPropagation() {
	b.stopped = true
}

// Option configures Base creation.
type Option func(*Base)

// WithID sets a specific event ID (default: auto-generated UUID).
func WithID(id string) Option {
	return func(b *Base) {
		b.ID = id
	}
}

// WithTimestamp sets a specific timestamp (default: time.Now()).
func WithTimestamp(t time.Time) Option {
	return func(b *Base) {
		b.Timestamp = t
	}
}

// NewBase returns a Base with a fresh ID and the current time.
func NewBase(opts ...Option) Base {
	b := Base{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Message is a named, stoppable event with a typed payload.
// Use it when an event does not deserve its own Go type.
type Message[T any] struct {
	Base
	Name    string `json:"name"`
	Payload T      `json:"payload"`
}

// EventName implements Named.
func (m *Message[T]) EventName() string {
	return m.Name
}

// NewMessage creates a Message with the given name and payload.
func NewMessage[T any](name string, payload T, opts ...Option) *Message[T] {
	return &Message[T]{
		Base:    NewBase(opts...),
		Name:    name,
		Payload: payload,
	}
}

// IsStopped reports whether v is Stoppable and its flag is set.
func IsStopped(v any) bool {
	s, ok := v.(Stoppable)
	return ok && s.IsPropagationStopped()
}

// Compile-time interface checks.
var (
	_ Stoppable = (*Base)(nil)
	_ Named     = (*Message[any])(nil)
	_ Stoppable = (*Message[any])(nil)
)
