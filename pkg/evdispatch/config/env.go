package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// JournalMemory selects the in-memory journal when used as JournalPath.
const JournalMemory = "memory"

// Settings is the process-level configuration read from the environment.
type Settings struct {
	// BindingsFile is a YAML or JSON file with a listeners list. Optional.
	BindingsFile string `env:"EVDISPATCH_BINDINGS_FILE"`

	// JournalPath is a SQLite file, JournalMemory, or empty for no journal.
	JournalPath string `env:"EVDISPATCH_JOURNAL_PATH"`

	Metrics  bool       `env:"EVDISPATCH_METRICS" envDefault:"false"`
	Tracing  bool       `env:"EVDISPATCH_TRACING" envDefault:"false"`
	LogLevel slog.Level `env:"EVDISPATCH_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadSettings reads Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
