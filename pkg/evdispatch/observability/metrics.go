package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records dispatch metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDispatch records a finished dispatch with its final state.
	RecordDispatch(ctx context.Context, identity, state string, duration time.Duration)

	// RecordListener records one listener invocation and its error status.
	RecordListener(ctx context.Context, identity string, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	dispatches      metric.Int64Counter
	dispatchLatency metric.Float64Histogram
	listenerCalls   metric.Int64Counter
	listenerErrors  metric.Int64Counter
	listenerLatency metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("evdispatch")

	dispatches, err := meter.Int64Counter("evdispatch.dispatch.count",
		metric.WithDescription("Number of dispatches by final state"),
	)
	if err != nil {
		return nil, err
	}

	dispatchLatency, err := meter.Float64Histogram("evdispatch.dispatch.latency_ms",
		metric.WithDescription("Dispatch latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	listenerCalls, err := meter.Int64Counter("evdispatch.listener.invocations",
		metric.WithDescription("Number of listener invocations"),
	)
	if err != nil {
		return nil, err
	}

	listenerErrors, err := meter.Int64Counter("evdispatch.listener.errors",
		metric.WithDescription("Number of listener invocations that returned an error"),
	)
	if err != nil {
		return nil, err
	}

	listenerLatency, err := meter.Float64Histogram("evdispatch.listener.latency_ms",
		metric.WithDescription("Listener latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		dispatches:      dispatches,
		dispatchLatency: dispatchLatency,
		listenerCalls:   listenerCalls,
		listenerErrors:  listenerErrors,
		listenerLatency: listenerLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordDispatch records a dispatch.
func (m *otelMetrics) RecordDispatch(ctx context.Context, identity, state string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("event", identity),
		attribute.String("state", state),
	)
	m.dispatches.Add(ctx, 1, attrs)
	m.dispatchLatency.Record(ctx, msFloat(duration), attrs)
}

// RecordListener records a listener invocation.
func (m *otelMetrics) RecordListener(ctx context.Context, identity string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("event", identity),
	)
	m.listenerCalls.Add(ctx, 1, attrs)
	m.listenerLatency.Record(ctx, msFloat(duration), attrs)

	if err != nil {
		m.listenerErrors.Add(ctx, 1, attrs)
	}
}

func msFloat(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
