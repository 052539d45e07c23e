/*
Package config provides type-safe configuration extraction, declarative
listener bindings, and environment settings.

# Config

Config wraps a map[string]any and returns defaults for missing keys or
mismatched types:

	cfg := config.New(map[string]any{"retries": 3})
	retries := cfg.Int("retries", 5) // 3
	name := cfg.String("name", "x")  // "x"

FromFile, FromYAML and FromJSON load a Config from YAML or JSON.

# Bindings

A bindings file registers listeners by reference without code:

	listeners:
	  - event: order.placed
	    listener: Mailer->OnOrderPlaced
	    priority: 10
	  - event: order.placed
	    listener: audit

Bindings validates each entry. The registry's Load method registers them as
indirect listeners.

# Settings

LoadSettings reads EVDISPATCH_* environment variables:

	EVDISPATCH_BINDINGS_FILE  bindings file path
	EVDISPATCH_JOURNAL_PATH   SQLite path, "memory", or empty
	EVDISPATCH_METRICS        enable OpenTelemetry metrics
	EVDISPATCH_TRACING        enable OpenTelemetry tracing
	EVDISPATCH_LOG_LEVEL      debug, info, warn, error
*/
package config
