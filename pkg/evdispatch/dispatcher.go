package evdispatch

import (
	"context"
	"iter"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/evdispatch/pkg/evdispatch/event"
	"github.com/randalmurphal/evdispatch/pkg/evdispatch/journal"
	"github.com/randalmurphal/evdispatch/pkg/evdispatch/listener"
	"github.com/randalmurphal/evdispatch/pkg/evdispatch/observability"
)

// ListenerProvider supplies the listeners for an event, in invocation order.
// *listener.Registry is the standard implementation.
type ListenerProvider interface {
	ResolveListeners(evt any) iter.Seq2[listener.Func, error]
}

// ProviderFunc adapts a function to the ListenerProvider interface.
type ProviderFunc func(evt any) iter.Seq2[listener.Func, error]

// ResolveListeners implements ListenerProvider.
func (f ProviderFunc) ResolveListeners(evt any) iter.Seq2[listener.Func, error] {
	return f(evt)
}

// State is the terminal state of a dispatch.
type State int

const (
	// StateRunning is the state while listeners are being invoked.
	StateRunning State = iota
	// StateStopped means the event's stop flag ended the dispatch.
	StateStopped
	// StateFailed means a listener or a resolution returned an error.
	StateFailed
	// StateDone means every listener ran.
	StateDone
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Report describes a finished dispatch.
type Report struct {
	DispatchID string
	// Identity is the first identity the event resolves under.
	Identity string
	State    State
	// Invoked counts listeners called, including one that failed.
	Invoked  int
	Duration time.Duration
}

// Dispatcher delivers events to the listeners supplied by a ListenerProvider.
//
// Listeners run synchronously, one at a time, in the order the provider
// yields them. A Dispatcher holds no per-dispatch state and is safe for
// concurrent use if its provider is.
type Dispatcher struct {
	provider ListenerProvider
	cfg      dispatchConfig
}

// New creates a Dispatcher over provider.
func New(provider ListenerProvider, opts ...Option) *Dispatcher {
	cfg := defaultDispatchConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Dispatcher{provider: provider, cfg: cfg}
}

// Dispatch delivers evt to its listeners and returns evt.
//
// A Stoppable event that is already stopped is returned without consulting
// the provider. Otherwise listeners are invoked in order until one returns
// an error, the event's stop flag is set, or the listeners are exhausted.
// A listener's error is returned unchanged. Panics are not recovered and
// ctx is passed to listeners but not checked for cancellation.
func (d *Dispatcher) Dispatch(ctx context.Context, evt any) (any, error) {
	_, err := d.DispatchWithReport(ctx, evt)
	return evt, err
}

// DispatchWithReport is Dispatch with a description of the outcome.
func (d *Dispatcher) DispatchWithReport(ctx context.Context, evt any) (rep Report, err error) {
	if isNil(evt) {
		return Report{State: StateFailed}, ErrNilEvent
	}
	if d == nil || d.provider == nil {
		return Report{State: StateFailed}, ErrNoProvider
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rep = Report{
		DispatchID: uuid.NewString(),
		Identity:   primaryIdentity(evt),
		State:      StateRunning,
	}
	startedAt := time.Now()
	elapsed := observability.TimedOperation()
	logger := observability.EnrichLogger(d.cfg.logger, rep.DispatchID, rep.Identity)
	observability.LogDispatchStart(logger)

	var span trace.Span
	ctx, span = d.cfg.spans.StartDispatchSpan(ctx, rep.Identity, rep.DispatchID)
	defer func() {
		d.cfg.spans.EndSpanWithError(span, err)
	}()

	rep.State, rep.Invoked, err = d.run(ctx, evt, rep.Identity)
	rep.Duration = elapsed()

	d.cfg.metrics.RecordDispatch(ctx, rep.Identity, rep.State.String(), rep.Duration)
	switch rep.State {
	case StateFailed:
		observability.LogDispatchFailed(logger, err, rep.Invoked)
	case StateStopped:
		d.cfg.spans.AddSpanEvent(ctx, "propagation.stopped", attribute.Int("listeners_invoked", rep.Invoked))
		observability.LogDispatchStopped(logger, rep.Invoked)
	default:
		observability.LogDispatchComplete(logger, rep.Duration, rep.Invoked)
	}
	d.record(ctx, logger, rep, startedAt, err)

	return rep, err
}

// run drives the Running -> {Stopped, Failed, Done} state machine.
func (d *Dispatcher) run(ctx context.Context, evt any, identity string) (State, int, error) {
	stoppable, _ := evt.(event.Stoppable)
	if stoppable != nil && stoppable.IsPropagationStopped() {
		return StateStopped, 0, nil
	}

	invoked := 0
	for fn, err := range d.provider.ResolveListeners(evt) {
		if err != nil {
			return StateFailed, invoked, err
		}
		if fn == nil {
			return StateFailed, invoked, listener.ErrInvalidListener
		}

		lctx, span := d.cfg.spans.StartListenerSpan(ctx, identity, invoked)
		elapsed := observability.TimedOperation()
		err = fn(lctx, evt)
		d.cfg.metrics.RecordListener(ctx, identity, elapsed(), err)
		d.cfg.spans.EndSpanWithError(span, err)
		invoked++

		if err != nil {
			return StateFailed, invoked, err
		}
		if stoppable != nil && stoppable.IsPropagationStopped() {
			return StateStopped, invoked, nil
		}
	}
	return StateDone, invoked, nil
}

// record writes the journal entry, if a journal is configured.
func (d *Dispatcher) record(ctx context.Context, logger *slog.Logger, rep Report, startedAt time.Time, err error) {
	if d.cfg.journal == nil {
		return
	}
	e := journal.Entry{
		DispatchID: rep.DispatchID,
		Identity:   rep.Identity,
		State:      rep.State.String(),
		Invoked:    rep.Invoked,
		StartedAt:  startedAt,
		Duration:   rep.Duration,
	}
	if err != nil {
		e.Error = err.Error()
	}
	if jerr := d.cfg.journal.Record(context.WithoutCancel(ctx), e); jerr != nil {
		observability.LogJournalError(logger, jerr)
	}
}

// Publish dispatches evt and returns it with its static type preserved.
//
//	evt, err := evdispatch.Publish(ctx, d, &OrderPlaced{ID: "o-1"})
func Publish[E any](ctx context.Context, d *Dispatcher, evt E) (E, error) {
	_, err := d.Dispatch(ctx, evt)
	return evt, err
}

var (
	defaultDispatcher     *Dispatcher
	defaultDispatcherOnce sync.Once
)

// Default returns the process-wide dispatcher over listener.Default().
// It is a convenience; nothing in this module uses it implicitly.
func Default() *Dispatcher {
	defaultDispatcherOnce.Do(func() {
		defaultDispatcher = New(listener.Default())
	})
	return defaultDispatcher
}

func primaryIdentity(evt any) string {
	if ids := event.Identities(evt); len(ids) > 0 {
		return ids[0]
	}
	return event.Identity(evt)
}

func isNil(evt any) bool {
	if evt == nil {
		return true
	}
	v := reflect.ValueOf(evt)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return v.IsNil()
	}
	return false
}
