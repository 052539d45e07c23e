package evdispatch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/randalmurphal/evdispatch/pkg/evdispatch/config"
	"github.com/randalmurphal/evdispatch/pkg/evdispatch/journal"
	"github.com/randalmurphal/evdispatch/pkg/evdispatch/listener"
)

// Runtime bundles a registry and a dispatcher built from Settings.
type Runtime struct {
	Registry   *listener.Registry
	Dispatcher *Dispatcher
	// Journal is nil when Settings.JournalPath is empty.
	Journal journal.Store
	Logger  *slog.Logger
}

// Bootstrap builds a Runtime from settings.
//
// resolver serves the indirect references in the bindings file and may be
// nil when there are none. A nil logger is replaced by a text logger on
// stderr at settings.LogLevel.
func Bootstrap(settings config.Settings, resolver listener.Resolver, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: settings.LogLevel}))
	}

	reg := listener.NewRegistry(listener.WithResolver(resolver), listener.WithLogger(logger))
	if settings.BindingsFile != "" {
		bindings, err := config.LoadBindings(settings.BindingsFile)
		if err != nil {
			return nil, fmt.Errorf("load bindings: %w", err)
		}
		if err := reg.Load(bindings); err != nil {
			return nil, fmt.Errorf("load bindings: %w", err)
		}
	}

	rt := &Runtime{Registry: reg, Logger: logger}
	opts := []Option{
		WithLogger(logger),
		WithMetrics(settings.Metrics),
		WithTracing(settings.Tracing),
	}

	switch settings.JournalPath {
	case "":
	case config.JournalMemory:
		rt.Journal = journal.NewMemoryStore()
	default:
		store, err := journal.NewSQLiteStore(settings.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		rt.Journal = store
	}
	if rt.Journal != nil {
		opts = append(opts, WithJournal(rt.Journal))
	}

	rt.Dispatcher = New(reg, opts...)
	return rt, nil
}

// BootstrapFromEnv loads Settings from the environment and calls Bootstrap.
func BootstrapFromEnv(resolver listener.Resolver, logger *slog.Logger) (*Runtime, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	return Bootstrap(settings, resolver, logger)
}

// Close releases the journal, if any.
func (rt *Runtime) Close() error {
	if rt == nil || rt.Journal == nil {
		return nil
	}
	if err := rt.Journal.Close(); err != nil && !errors.Is(err, journal.ErrStoreClosed) {
		return fmt.Errorf("close journal: %w", err)
	}
	return nil
}
