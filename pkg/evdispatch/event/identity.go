package event

import (
	"reflect"
	"sync"
)

// TypeName returns the canonical identity of type T.
func TypeName[T any]() string {
	return TypeNameOf(reflect.TypeFor[T]())
}

// TypeNameOf returns the canonical identity of t: pointers are dereferenced
// and named types are qualified with their import path. Unnamed and
// predeclared types fall back to t.String().
func TypeNameOf(t reflect.Type) string {
	if t == nil {
		return ""
	}
	t = indirect(t)
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// ShortName returns the unqualified name of t with pointers dereferenced.
func ShortName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	return indirect(t).Name()
}

// Identity returns the type-based identity of v. Named is not consulted.
func Identity(v any) string {
	if v == nil {
		return ""
	}
	return TypeNameOf(reflect.TypeOf(v))
}

// Identities returns the identities searched when resolving listeners for v.
//
// A Named event resolves to its name alone. Any other value resolves to its
// concrete identity followed by its ancestors, most-derived first, with
// duplicates removed.
func Identities(v any) []string {
	if v == nil {
		return nil
	}
	if n, ok := v.(Named); ok {
		return []string{n.EventName()}
	}

	var ancestors []string
	if l, ok := v.(Lineage); ok {
		ancestors = l.Ancestors()
	} else {
		ancestors = AncestorsOf(reflect.TypeOf(v))
	}

	ids := make([]string, 0, len(ancestors)+1)
	seen := make(map[string]struct{}, len(ancestors)+1)
	for _, id := range append([]string{Identity(v)}, ancestors...) {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// ancestorCache maps reflect.Type -> []string.
var ancestorCache sync.Map

// AncestorsOf returns the identities of the structs embedded in t, walked
// breadth-first so nearer embeddings come first. Pointer embeds are
// dereferenced; embedded interfaces and other non-struct types are not
// ancestors. The result is cached per type and must not be modified.
func AncestorsOf(t reflect.Type) []string {
	if t == nil {
		return nil
	}
	t = indirect(t)
	if cached, ok := ancestorCache.Load(t); ok {
		return cached.([]string)
	}

	var out []string
	seen := map[reflect.Type]bool{t: true}
	queue := []reflect.Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.Kind() != reflect.Struct {
			continue
		}
		for i := 0; i < cur.NumField(); i++ {
			f := cur.Field(i)
			if !f.Anonymous {
				continue
			}
			ft := indirect(f.Type)
			if ft.Kind() != reflect.Struct || seen[ft] {
				continue
			}
			seen[ft] = true
			out = append(out, TypeNameOf(ft))
			queue = append(queue, ft)
		}
	}

	actual, _ := ancestorCache.LoadOrStore(t, out)
	return actual.([]string)
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
