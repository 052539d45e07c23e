package listener

import (
	"errors"
	"fmt"
)

// Sentinel errors for registration and resolution.
var (
	// ErrInvalidIdentity indicates an empty event identity.
	ErrInvalidIdentity = errors.New("invalid event identity")

	// ErrInvalidListener indicates a value that is neither invocable nor a
	// well-formed listener reference.
	ErrInvalidListener = errors.New("invalid listener")

	// ErrUnresolvableListener indicates an indirect reference whose target
	// could not be located at dispatch time.
	ErrUnresolvableListener = errors.New("unresolvable listener")

	// ErrEventMismatch indicates a typed listener received an event it cannot
	// accept, even through an embedded field.
	ErrEventMismatch = errors.New("event does not match listener parameter")
)

// RegistrationError wraps a failed Register or Map call.
type RegistrationError struct {
	// Identity is the event identity being registered ("" for Map).
	Identity string
	// Op is the operation that failed ("register", "map").
	Op string
	// Err is the underlying error, usually a sentinel.
	Err error
}

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	if e.Identity == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Identity, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// ReferenceError reports an indirect reference that failed to resolve.
// It matches ErrUnresolvableListener as well as the resolver's own error.
type ReferenceError struct {
	// Ref is the indirect reference as registered.
	Ref string
	// Err is the resolver's error, nil when no resolver was configured.
	Err error
}

// Error implements the error interface.
func (e *ReferenceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %q (no resolver configured)", ErrUnresolvableListener, e.Ref)
	}
	return fmt.Sprintf("%v: %q: %v", ErrUnresolvableListener, e.Ref, e.Err)
}

// Unwrap exposes both the sentinel and the resolver's error.
func (e *ReferenceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnresolvableListener}
	}
	return []error{ErrUnresolvableListener, e.Err}
}

// MismatchError reports an event a typed listener could not accept.
type MismatchError struct {
	// Want is the identity of the listener's parameter type.
	Want string
	// Got is the identity of the dispatched event.
	Got string
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("%v: want %s, got %s", ErrEventMismatch, e.Want, e.Got)
}

// Unwrap returns ErrEventMismatch.
func (e *MismatchError) Unwrap() error {
	return ErrEventMismatch
}
