package evdispatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/randalmurphal/evdispatch/pkg/evdispatch"
	"github.com/randalmurphal/evdispatch/pkg/evdispatch/event"
	"github.com/randalmurphal/evdispatch/pkg/evdispatch/listener"
)

// TestDispatch_Observability is the only test in this package that installs
// global OpenTelemetry providers.
func TestDispatch_Observability(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	origTP, origMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	t.Cleanup(func() {
		otel.SetTracerProvider(origTP)
		otel.SetMeterProvider(origMP)
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	boom := errors.New("boom")
	reg := listener.NewRegistry()
	require.NoError(t, reg.On("ok", func(any) {}, 1))
	require.NoError(t, reg.On("ok", func(any) {}, 0))
	require.NoError(t, reg.On("fails", func(any) error { return boom }, 0))

	d := evdispatch.New(reg, evdispatch.WithMetrics(true), evdispatch.WithTracing(true))
	ctx := context.Background()

	_, err := d.Dispatch(ctx, event.NewMessage("ok", 1))
	require.NoError(t, err)
	_, err = d.Dispatch(ctx, event.NewMessage("fails", 1))
	require.ErrorIs(t, err, boom)

	t.Run("spans", func(t *testing.T) {
		spans := exporter.GetSpans()
		var dispatches, listeners, failed int
		for _, s := range spans {
			switch s.Name {
			case "evdispatch.dispatch":
				dispatches++
				if s.Status.Code == codes.Error {
					failed++
				}
			case "evdispatch.listener":
				listeners++
			}
		}
		assert.Equal(t, 2, dispatches)
		assert.Equal(t, 3, listeners)
		assert.Equal(t, 1, failed)
	})

	t.Run("metrics", func(t *testing.T) {
		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))

		totals := map[string]int64{}
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				sum, ok := m.Data.(metricdata.Sum[int64])
				if !ok {
					continue
				}
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
		assert.Equal(t, int64(2), totals["evdispatch.dispatch.count"])
		assert.Equal(t, int64(3), totals["evdispatch.listener.invocations"])
		assert.Equal(t, int64(1), totals["evdispatch.listener.errors"])
	})
}
