// Package resolve provides a Container that turns indirect listener
// references into invocable listeners.
//
// A Container holds named instances, lazily built instances, and named
// functions. It implements listener.Resolver:
//
//	c := resolve.New()
//	c.Provide("Mailer", &Mailer{})
//	_ = c.ProvideFunc("audit", func(evt any) error { return nil })
//
//	reg := listener.NewRegistry(listener.WithResolver(c))
//	reg.Register("order.placed", listener.Indirect("Mailer->OnOrderPlaced"), 0)
package resolve

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/randalmurphal/evdispatch/pkg/evdispatch/event"
	"github.com/randalmurphal/evdispatch/pkg/evdispatch/listener"
)

var (
	// ErrNotFound indicates no instance or function under the referenced name.
	ErrNotFound = errors.New("not found")

	// ErrMethodNotFound indicates the instance has no such exported method.
	ErrMethodNotFound = errors.New("method not found")

	// ErrMalformedReference indicates a reference that does not parse.
	ErrMalformedReference = errors.New("malformed reference")
)

// Container is a thread-safe name resolver for indirect listeners.
type Container struct {
	mu        sync.RWMutex
	instances map[string]any
	factories map[string]func() any
	funcs     map[string]listener.Func
}

// Compile-time interface check.
var _ listener.Resolver = (*Container)(nil)

// New creates an empty Container.
func New() *Container {
	return &Container{
		instances: make(map[string]any),
		factories: make(map[string]func() any),
		funcs:     make(map[string]listener.Func),
	}
}

// Provide registers instance under name, replacing any earlier entry.
func (c *Container) Provide(name string, instance any) error {
	if name == "" || instance == nil {
		return fmt.Errorf("provide %q: %w", name, listener.ErrInvalidListener)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances[name] = instance
	delete(c.factories, name)
	return nil
}

// ProvideInstance registers instance under its type identity, the same
// name Registry.Map uses for reflect.Type holders.
func (c *Container) ProvideInstance(instance any) error {
	return c.Provide(event.Identity(instance), instance)
}

// ProvideFactory registers a constructor for name. The factory runs at most
// once, on the first reference that needs the instance.
func (c *Container) ProvideFactory(name string, factory func() any) error {
	if name == "" || factory == nil {
		return fmt.Errorf("provide %q: %w", name, listener.ErrInvalidListener)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.instances, name)
	c.factories[name] = factory
	return nil
}

// ProvideFunc registers fn under a "name" or "Type::name" reference.
// fn may be any shape accepted by listener.Adapt.
func (c *Container) ProvideFunc(ref string, fn any) error {
	r, err := listener.ParseReference(ref)
	if err != nil {
		return fmt.Errorf("provide %q: %w", ref, ErrMalformedReference)
	}
	if r.Kind == listener.RefMethod {
		return fmt.Errorf("provide %q: method references resolve through instances: %w", ref, ErrMalformedReference)
	}
	l, err := listener.Adapt(fn)
	if err != nil {
		return fmt.Errorf("provide %q: %w", ref, err)
	}
	if l.IsIndirect() {
		return fmt.Errorf("provide %q: references cannot alias references: %w", ref, listener.ErrInvalidListener)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.funcs[ref] = l.Func()
	return nil
}

// Resolve implements listener.Resolver.
func (c *Container) Resolve(ref string) (listener.Func, error) {
	r, err := listener.ParseReference(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedReference, ref)
	}

	if r.Kind != listener.RefMethod {
		c.mu.RLock()
		fn, ok := c.funcs[ref]
		c.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("function %q: %w", ref, ErrNotFound)
		}
		return fn, nil
	}

	inst, ok := c.instance(r.Target)
	if !ok {
		return nil, fmt.Errorf("instance %q: %w", r.Target, ErrNotFound)
	}
	m := reflect.ValueOf(inst).MethodByName(r.Method)
	if !m.IsValid() {
		return nil, fmt.Errorf("%s.%s: %w", r.Target, r.Method, ErrMethodNotFound)
	}
	l, err := listener.Adapt(m.Interface())
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", r.Target, r.Method, err)
	}
	return l.Func(), nil
}

// instance returns the instance for name, building it from its factory on
// first use. The factory is called at most once, even under concurrent access.
func (c *Container) instance(name string) (any, bool) {
	// Fast path: already built
	c.mu.RLock()
	inst, ok := c.instances[name]
	c.mu.RUnlock()
	if ok {
		return inst, true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if inst, ok := c.instances[name]; ok {
		return inst, true
	}
	factory, ok := c.factories[name]
	if !ok {
		return nil, false
	}
	inst = factory()
	if inst == nil {
		return nil, false
	}
	c.instances[name] = inst
	delete(c.factories, name)
	return inst, true
}

// Has reports whether name is provided as an instance, factory, or function.
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.instances[name]; ok {
		return true
	}
	if _, ok := c.factories[name]; ok {
		return true
	}
	_, ok := c.funcs[name]
	return ok
}

// Names returns every provided name, sorted.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.instances)+len(c.factories)+len(c.funcs))
	for n := range c.instances {
		names = append(names, n)
	}
	for n := range c.factories {
		names = append(names, n)
	}
	for n := range c.funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
