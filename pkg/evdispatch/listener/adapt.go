package listener

import (
	"context"
	"reflect"

	"github.com/randalmurphal/evdispatch/pkg/evdispatch/event"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// signature describes a function or method usable as a listener:
// an optional leading context.Context, exactly one event parameter, and
// either no result or a single error.
type signature struct {
	withContext bool
	param       reflect.Type
}

// inspect checks ft starting at parameter offset (1 skips a method receiver).
func inspect(ft reflect.Type, offset int) (signature, bool) {
	if ft.Kind() != reflect.Func || ft.IsVariadic() {
		return signature{}, false
	}

	var sig signature
	switch ft.NumIn() - offset {
	case 1:
		sig.param = ft.In(offset)
		if sig.param == contextType {
			return signature{}, false
		}
	case 2:
		if ft.In(offset) != contextType {
			return signature{}, false
		}
		sig.withContext = true
		sig.param = ft.In(offset + 1)
	default:
		return signature{}, false
	}

	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) != errorType {
			return signature{}, false
		}
	default:
		return signature{}, false
	}
	return sig, true
}

// untyped reports whether the event parameter is the empty interface.
func (s signature) untyped() bool {
	return s.param.Kind() == reflect.Interface && s.param.NumMethod() == 0
}

// bind wraps fn, which must already match s with no receiver parameter.
func (s signature) bind(fn reflect.Value) Func {
	return func(ctx context.Context, evt any) error {
		arg, ok := project(evt, s.param)
		if !ok {
			return mismatch(s.param, evt)
		}

		args := make([]reflect.Value, 0, 2)
		if s.withContext {
			args = append(args, reflect.ValueOf(&ctx).Elem())
		}
		args = append(args, arg)

		out := fn.Call(args)
		if len(out) == 1 && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	}
}

// project finds a value of type target inside evt: evt itself, or an
// exported embedded field (or its address), searched breadth-first.
func project(evt any, target reflect.Type) (reflect.Value, bool) {
	if evt == nil {
		switch target.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(target), true
		}
		return reflect.Value{}, false
	}

	v := reflect.ValueOf(evt)
	if v.Type().AssignableTo(target) {
		return v, true
	}

	queue := []reflect.Value{v}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for cur.Kind() == reflect.Pointer {
			if cur.IsNil() {
				break
			}
			cur = cur.Elem()
		}
		if cur.Kind() != reflect.Struct {
			continue
		}
		for i := 0; i < cur.NumField(); i++ {
			if !cur.Type().Field(i).Anonymous {
				continue
			}
			f := cur.Field(i)
			if !f.CanInterface() {
				continue
			}
			if f.Type().AssignableTo(target) {
				return f, true
			}
			if f.CanAddr() && reflect.PointerTo(f.Type()).AssignableTo(target) {
				return f.Addr(), true
			}
			queue = append(queue, f)
		}
	}
	return reflect.Value{}, false
}

func mismatch(target reflect.Type, evt any) error {
	return &MismatchError{
		Want: event.TypeNameOf(target),
		Got:  event.Identity(evt),
	}
}
