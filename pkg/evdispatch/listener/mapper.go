package listener

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/randalmurphal/evdispatch/pkg/evdispatch/event"
	"github.com/randalmurphal/evdispatch/pkg/evdispatch/observability"
)

// Map registers every qualifying method of holder as a listener and returns
// the number of registrations.
//
// A method qualifies when its name is "On" followed by an upper-case letter
// and it takes exactly one event parameter (optionally preceded by a
// context.Context) of a declared type other than the empty interface,
// returning nothing or an error. Other methods are skipped without error.
//
// For OnOrderPlaced(*OrderPlaced) the identity is the qualified type name of
// OrderPlaced. When the method name and the parameter type differ, as in
// OnUserSignedUp(*event.Message[Signup]), the identity is the snake_case
// method suffix: "user_signed_up".
//
// A live holder yields bound-method listeners. A reflect.Type holder yields
// indirect references "<type>-><Method>" for the configured Resolver.
// Methods are visited in lexical order.
func (r *Registry) Map(holder any, priority int) (int, error) {
	if holder == nil {
		return 0, &RegistrationError{Op: "map", Err: ErrInvalidListener}
	}

	var (
		t      reflect.Type
		recv   reflect.Value
		live   bool
		offset int
	)
	if rt, ok := holder.(reflect.Type); ok {
		if rt == nil {
			return 0, &RegistrationError{Op: "map", Err: ErrInvalidListener}
		}
		t = rt
		if t.Kind() != reflect.Interface {
			offset = 1
		}
	} else {
		recv = reflect.ValueOf(holder)
		t = recv.Type()
		live = true
	}

	typeName := event.TypeNameOf(t)
	count := 0
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !isHandlerName(m.Name) {
			continue
		}

		ft := m.Type
		if live {
			ft = recv.Method(i).Type()
		}
		sig, ok := inspect(ft, offset)
		if !ok {
			observability.LogMapSkipped(r.logger, typeName, m.Name, "signature")
			continue
		}
		if sig.untyped() {
			observability.LogMapSkipped(r.logger, typeName, m.Name, "untyped parameter")
			continue
		}

		identity := mappedIdentity(m.Name, sig.param)

		var l Listener
		if live {
			l = Direct(sig.bind(recv.Method(i)))
		} else {
			l = Indirect(typeName + "->" + m.Name)
		}
		if err := r.Register(identity, l, priority); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// isHandlerName matches "On" followed immediately by an upper-case letter.
func isHandlerName(name string) bool {
	rest, ok := strings.CutPrefix(name, "On")
	if !ok || rest == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsUpper(first)
}

// mappedIdentity picks the identity for a handler method.
func mappedIdentity(method string, param reflect.Type) string {
	base := strings.TrimPrefix(method, "On")
	if base == event.ShortName(param) {
		return event.TypeNameOf(param)
	}
	return SnakeCase(base)
}

// SnakeCase inserts "_" before every upper-case letter except the first and
// lower-cases the result: "UserSignedUp" -> "user_signed_up".
func SnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
