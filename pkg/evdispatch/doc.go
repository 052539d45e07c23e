/*
Package evdispatch provides an in-process, synchronous event dispatcher.

# Overview

Listeners are registered against event identities with an integer priority.
Dispatching an event invokes every applicable listener, highest priority
first, until one fails, the event asks to stop, or the listeners run out.

	reg := listener.NewRegistry()
	listener.Subscribe(reg, func(ctx context.Context, evt *OrderPlaced) error {
	    return mailer.Confirm(ctx, evt.OrderID)
	}, 10)

	d := evdispatch.New(reg)
	if _, err := d.Dispatch(ctx, &OrderPlaced{OrderID: "o-1"}); err != nil {
	    // err is exactly what the failing listener returned
	}

# Identities

An event's identity is its type name, qualified by import path. Events that
embed other event types also reach listeners registered for the embedded
types, nearest embedding first. An event implementing event.Named resolves
only under its name. See package event.

# Stopping

Events implementing event.Stoppable (for example by embedding event.Base)
can be stopped by any listener. Listeners after it are not invoked, and an
event dispatched while already stopped reaches no listener at all.

# Errors

A listener error ends the dispatch and is returned unchanged, so errors.Is
and errors.As work on the dispatch result. Unresolvable indirect listeners
fail the dispatch with listener.ErrUnresolvableListener when reached.

# Observability

WithLogger, WithMetrics and WithTracing enable slog logging, OpenTelemetry
metrics and OpenTelemetry spans. WithJournal records each outcome in a
journal.Store.

# Bootstrap

Bootstrap wires a registry, declarative bindings, a journal and a dispatcher
from config.Settings, usually loaded from EVDISPATCH_* environment variables.
*/
package evdispatch
