package listener

import (
	"fmt"

	"github.com/randalmurphal/evdispatch/pkg/evdispatch/config"
)

// Load registers declarative bindings as indirect listeners, in order.
// It stops at the first invalid binding; earlier bindings stay registered.
func (r *Registry) Load(bindings []config.Binding) error {
	for i, b := range bindings {
		if err := r.Register(b.Event, Indirect(b.Listener), b.Priority); err != nil {
			return fmt.Errorf("binding %d: %w", i, err)
		}
	}
	return nil
}
