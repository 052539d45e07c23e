package evdispatch

import (
	"log/slog"

	"github.com/randalmurphal/evdispatch/pkg/evdispatch/journal"
	"github.com/randalmurphal/evdispatch/pkg/evdispatch/observability"
)

// dispatchConfig holds the ambient collaborators of a Dispatcher.
type dispatchConfig struct {
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	journal journal.Store
}

// defaultDispatchConfig returns a configuration with everything disabled.
func defaultDispatchConfig() dispatchConfig {
	return dispatchConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures a Dispatcher.
type Option func(*dispatchConfig)

// WithLogger enables structured logging of each dispatch.
// A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *dispatchConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics through the global meter provider.
//
// Example:
//
//	otel.SetMeterProvider(provider)
//	d := evdispatch.New(reg, evdispatch.WithMetrics(true))
func WithMetrics(enabled bool) Option {
	return func(c *dispatchConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry spans for each dispatch and listener.
func WithTracing(enabled bool) Option {
	return func(c *dispatchConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithJournal records the outcome of every dispatch in store.
// Journal failures are logged and never change the dispatch result.
func WithJournal(store journal.Store) Option {
	return func(c *dispatchConfig) {
		c.journal = store
	}
}
