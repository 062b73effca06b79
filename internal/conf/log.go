package conf

import (
	"fmt"
	"slices"

	"walt/internal/flog"
)

// Log configures the ambient logging pipeline (internal/flog). The core
// engine's own hot-path diagnostics bypass this entirely to avoid
// allocating on the error path; this section governs the surrounding
// orchestrator's logging only.
type Log struct {
	Level string `yaml:"level"`
}

var validLogLevels = []string{"debug", "info", "warn", "error", "none"}

func (l *Log) setDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
}

func (l *Log) validate() []error {
	var errors []error
	if !slices.Contains(validLogLevels, l.Level) {
		errors = append(errors, fmt.Errorf("log.level: must be one of %v, got %q", validLogLevels, l.Level))
		return errors
	}

	switch l.Level {
	case "debug":
		flog.SetLevel(int(flog.Debug))
	case "info":
		flog.SetLevel(int(flog.Info))
	case "warn":
		flog.SetLevel(int(flog.Warn))
	case "error":
		flog.SetLevel(int(flog.Error))
	case "none":
		flog.SetLevel(int(flog.None))
	}
	return errors
}
