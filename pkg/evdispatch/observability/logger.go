// Package observability provides the logging, metrics, and tracing hooks
// used by the dispatcher and registry.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds dispatch context to a logger.
// Returns a new logger with dispatch_id and event fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "d-123", "order.placed")
//	enriched.Info("doing work") // includes dispatch_id, event
func EnrichLogger(logger *slog.Logger, dispatchID, identity string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("dispatch_id", dispatchID),
		slog.String("event", identity),
	)
}

// LogDispatchStart logs the start of a dispatch.
// The dispatch helpers expect a logger from EnrichLogger.
func LogDispatchStart(logger *slog.Logger) {
	if logger == nil {
		return
	}
	logger.Debug("dispatch starting")
}

// LogDispatchComplete logs a dispatch that ran every listener.
func LogDispatchComplete(logger *slog.Logger, duration time.Duration, invoked int) {
	if logger == nil {
		return
	}
	logger.Debug("dispatch completed",
		slog.Float64("duration_ms", msFloat(duration)),
		slog.Int("listeners_invoked", invoked),
	)
}

// LogDispatchStopped logs a dispatch halted by the event's stop flag.
// invoked is 0 when the event arrived already stopped.
func LogDispatchStopped(logger *slog.Logger, invoked int) {
	if logger == nil {
		return
	}
	logger.Debug("dispatch stopped",
		slog.Int("listeners_invoked", invoked),
	)
}

// LogDispatchFailed logs a dispatch aborted by a listener or resolution error.
func LogDispatchFailed(logger *slog.Logger, err error, invoked int) {
	if logger == nil {
		return
	}
	logger.Error("dispatch failed",
		slog.String("error", err.Error()),
		slog.Int("listeners_invoked", invoked),
	)
}

// LogListenerRegistered logs a registration.
func LogListenerRegistered(logger *slog.Logger, identity, listener string, priority int) {
	if logger == nil {
		return
	}
	logger.Debug("listener registered",
		slog.String("event", identity),
		slog.String("listener", listener),
		slog.Int("priority", priority),
	)
}

// LogMapSkipped logs a handler-named method that Map could not register.
func LogMapSkipped(logger *slog.Logger, holder, method, reason string) {
	if logger == nil {
		return
	}
	logger.Debug("handler method skipped",
		slog.String("holder", holder),
		slog.String("method", method),
		slog.String("reason", reason),
	)
}

// LogJournalError logs a journal write failure (non-fatal).
func LogJournalError(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal record failed",
		slog.String("error", err.Error()),
	)
}

// TimedOperation starts a clock and returns a function reporting the time
// elapsed since. It may be called any number of times.
//
//	elapsed := TimedOperation()
//	err := fn(ctx, evt)
//	metrics.RecordListener(ctx, identity, elapsed(), err)
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
