package config

import (
	"errors"
	"fmt"
)

// BindingsKey is the top-level key holding the listener bindings list.
const BindingsKey = "listeners"

// ErrInvalidBinding is returned when a bindings entry is malformed.
var ErrInvalidBinding = errors.New("invalid listener binding")

// Binding declares one listener by reference for one event.
type Binding struct {
	Event    string
	Listener string
	Priority int
}

// Bindings extracts the listener bindings from cfg.
//
// Each entry names a listener reference and either one event or a list of
// events; a list expands to one Binding per event, in order:
//
//	listeners:
//	  - event: order.placed
//	    listener: Mailer->OnOrderPlaced
//	    priority: 10
//	  - events: [order.placed, order.cancelled]
//	    listener: audit
//
// A config without a listeners key has no bindings. Priority defaults to 0.
func Bindings(cfg Config) ([]Binding, error) {
	if !cfg.Has(BindingsKey) {
		return nil, nil
	}
	entries, ok := cfg.Maps(BindingsKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a list of mappings", ErrInvalidBinding, BindingsKey)
	}

	out := make([]Binding, 0, len(entries))
	for i, e := range entries {
		events, err := entryEvents(e)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidBinding, i, err)
		}
		ref := e.String("listener", "")
		if ref == "" {
			return nil, fmt.Errorf("%w: entry %d: missing listener", ErrInvalidBinding, i)
		}
		priority := 0
		if e.Has("priority") {
			p, ok := e.intValue("priority")
			if !ok {
				return nil, fmt.Errorf("%w: entry %d: priority must be an integer", ErrInvalidBinding, i)
			}
			priority = p
		}
		for _, ev := range events {
			out = append(out, Binding{Event: ev, Listener: ref, Priority: priority})
		}
	}
	return out, nil
}

func entryEvents(e Config) ([]string, error) {
	hasOne, hasMany := e.Has("event"), e.Has("events")
	switch {
	case hasOne && hasMany:
		return nil, errors.New("event and events are exclusive")
	case hasMany:
		events := e.StringSlice("events", nil)
		if len(events) == 0 {
			return nil, errors.New("events must be a non-empty list of strings")
		}
		for _, ev := range events {
			if ev == "" {
				return nil, errors.New("events must not contain empty names")
			}
		}
		return events, nil
	default:
		ev := e.String("event", "")
		if ev == "" {
			return nil, errors.New("missing event")
		}
		return []string{ev}, nil
	}
}

// LoadBindings reads a YAML or JSON file and extracts its bindings.
func LoadBindings(path string) ([]Binding, error) {
	cfg, err := FromFile(path)
	if err != nil {
		return nil, err
	}
	bindings, err := Bindings(cfg)
	if err != nil {
		return nil, fmt.Errorf("bindings %s: %w", path, err)
	}
	return bindings, nil
}
