package evdispatch

import "errors"

// Sentinel errors for dispatch.
var (
	// ErrNilEvent indicates Dispatch was called with a nil event or a nil pointer.
	ErrNilEvent = errors.New("event cannot be nil")

	// ErrNoProvider indicates a Dispatcher without a ListenerProvider.
	ErrNoProvider = errors.New("dispatcher has no listener provider")
)
