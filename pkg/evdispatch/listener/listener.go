package listener

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
)

// Func is the invocable form of every listener. A non-nil error aborts the
// dispatch that invoked it and is handed back to the dispatch caller as is.
type Func func(ctx context.Context, evt any) error

// Resolver turns an indirect reference into a Func at dispatch time.
type Resolver interface {
	Resolve(ref string) (Func, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ref string) (Func, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ref string) (Func, error) {
	return f(ref)
}

// Listener is either a direct Func or an indirect reference resolved lazily.
// The zero value is invalid.
type Listener struct {
	fn  Func
	ref string
}

// Direct wraps a Func.
func Direct(fn Func) Listener {
	return Listener{fn: fn}
}

// Indirect wraps a reference such as "Mailer->OnSignup" or "audit::record".
// The reference is validated when registered, not here.
func Indirect(ref string) Listener {
	return Listener{ref: ref}
}

// IsZero reports whether l holds neither a Func nor a reference.
func (l Listener) IsZero() bool {
	return l.fn == nil && l.ref == ""
}

// IsIndirect reports whether l must be resolved before it can be invoked.
func (l Listener) IsIndirect() bool {
	return l.fn == nil && l.ref != ""
}

// Func returns the wrapped Func, or nil for indirect listeners.
func (l Listener) Func() Func {
	return l.fn
}

// Ref returns the indirect reference, or "" for direct listeners.
func (l Listener) Ref() string {
	if l.fn != nil {
		return ""
	}
	return l.ref
}

// String returns the reference for indirect listeners and "func" otherwise.
func (l Listener) String() string {
	if l.IsIndirect() {
		return l.ref
	}
	return "func"
}

func (l Listener) validate() error {
	if l.fn != nil {
		return nil
	}
	if l.ref == "" {
		return ErrInvalidListener
	}
	_, err := ParseReference(l.ref)
	return err
}

func (l Listener) resolve(r Resolver) (Func, error) {
	if l.fn != nil {
		return l.fn, nil
	}
	if r == nil {
		return nil, &ReferenceError{Ref: l.ref}
	}
	fn, err := r.Resolve(l.ref)
	if err != nil {
		return nil, &ReferenceError{Ref: l.ref, Err: err}
	}
	if fn == nil {
		return nil, &ReferenceError{Ref: l.ref, Err: fmt.Errorf("resolver returned nil")}
	}
	return fn, nil
}

// ReferenceKind distinguishes the three indirect reference forms.
type ReferenceKind int

const (
	// RefFunc is a bare name: "audit".
	RefFunc ReferenceKind = iota
	// RefStatic is a function scoped to a type: "Audit::record".
	RefStatic
	// RefMethod is a method on a named instance: "Mailer->OnSignup".
	RefMethod
)

// String returns the separator used by the kind.
func (k ReferenceKind) String() string {
	switch k {
	case RefStatic:
		return "::"
	case RefMethod:
		return "->"
	default:
		return ""
	}
}

// Reference is a parsed indirect listener reference.
type Reference struct {
	Raw    string
	Kind   ReferenceKind
	Target string
	Method string
}

// referencePattern accepts every name event.TypeNameOf produces, including
// instantiated generics such as "pkg.Cache[int,map[string]pkg.Item]".
var referencePattern = regexp.MustCompile(`^([A-Za-z_][\w./-]*(?:\[.+\])?)(?:(::|->)([A-Za-z_]\w*))?$`)

// ParseReference validates and splits an indirect reference.
// Malformed references return an error wrapping ErrInvalidListener.
func ParseReference(ref string) (Reference, error) {
	m := referencePattern.FindStringSubmatch(ref)
	if m == nil {
		return Reference{}, fmt.Errorf("%w: malformed reference %q", ErrInvalidListener, ref)
	}
	r := Reference{Raw: ref, Target: m[1], Method: m[3]}
	switch m[2] {
	case "::":
		r.Kind = RefStatic
	case "->":
		r.Kind = RefMethod
	default:
		r.Kind = RefFunc
	}
	return r, nil
}

// Adapt converts v into a Listener. It accepts a Listener, a Func, the
// common untyped function shapes, a typed function func([ctx,] E) [error],
// or a string reference. Anything else returns ErrInvalidListener.
func Adapt(v any) (Listener, error) {
	switch fn := v.(type) {
	case nil:
		return Listener{}, ErrInvalidListener
	case Listener:
		if err := fn.validate(); err != nil {
			return Listener{}, err
		}
		return fn, nil
	case string:
		l := Indirect(fn)
		if err := l.validate(); err != nil {
			return Listener{}, err
		}
		return l, nil
	case Func:
		if fn == nil {
			return Listener{}, ErrInvalidListener
		}
		return Direct(fn), nil
	case func(context.Context, any) error:
		if fn == nil {
			return Listener{}, ErrInvalidListener
		}
		return Direct(fn), nil
	case func(any) error:
		if fn == nil {
			return Listener{}, ErrInvalidListener
		}
		return Direct(func(_ context.Context, evt any) error { return fn(evt) }), nil
	case func(any):
		if fn == nil {
			return Listener{}, ErrInvalidListener
		}
		return Direct(func(_ context.Context, evt any) error { fn(evt); return nil }), nil
	case func(context.Context, any):
		if fn == nil {
			return Listener{}, ErrInvalidListener
		}
		return Direct(func(ctx context.Context, evt any) error { fn(ctx, evt); return nil }), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return Listener{}, ErrInvalidListener
	}
	sig, ok := inspect(rv.Type(), 0)
	if !ok {
		return Listener{}, fmt.Errorf("%w: unsupported signature %s", ErrInvalidListener, rv.Type())
	}
	return Direct(sig.bind(rv)), nil
}

// Typed adapts a function over a concrete event type. Events that are not
// an E are projected onto an embedded E or *E when possible; otherwise the
// listener returns a *MismatchError.
func Typed[E any](fn func(ctx context.Context, evt E) error) Func {
	target := reflect.TypeFor[E]()
	return func(ctx context.Context, evt any) error {
		if e, ok := evt.(E); ok {
			return fn(ctx, e)
		}
		v, ok := project(evt, target)
		if !ok {
			return mismatch(target, evt)
		}
		e, _ := v.Interface().(E)
		return fn(ctx, e)
	}
}
