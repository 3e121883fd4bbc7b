package config

import (
	"fmt"
	"strings"

	errs "benchtrim/internal/errors"
)

const (
	minIndent = 1
	maxIndent = 8
)

var (
	logFormats     = []string{"text", "json"}
	historyDrivers = []string{"json", "sqlite", "sqlite3", "postgres", "postgresql"}
)

// Validate checks configuration values and returns a usage error listing every
// invalid one.
func Validate(cfg *Config) error {
	var errors []string

	if cfg.Indent < minIndent || cfg.Indent > maxIndent {
		errors = append(errors, fmt.Sprintf("indent must be between %d and %d, got: %d", minIndent, maxIndent, cfg.Indent))
	}

	if !oneOf(cfg.LogFormat, logFormats) {
		errors = append(errors, fmt.Sprintf("log_format must be one of %s, got: %q", strings.Join(logFormats, ", "), cfg.LogFormat))
	}

	if cfg.Threshold < 0 {
		errors = append(errors, fmt.Sprintf("threshold must not be negative, got: %g", cfg.Threshold))
	}

	// The driver only matters once a DSN enables history.
	if cfg.History.DSN != "" && !oneOf(cfg.History.Driver, historyDrivers) {
		errors = append(errors, fmt.Sprintf("history.driver must be one of %s, got: %q", strings.Join(historyDrivers, ", "), cfg.History.Driver))
	}

	if len(errors) > 0 {
		return errs.NewUsageError("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return true
		}
	}
	return false
}
