package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/randomizedcoder/go-urs-log-analyzer/internal/logging"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing the problem.
func Validate(cfg *Config) error {
	var errs []error

	// At least one device
	if cfg.UECount < 1 {
		errs = append(errs, ValidationError{
			Field:   "ue_count",
			Message: fmt.Sprintf("must be at least 1 (got %d)", cfg.UECount),
		})
	}

	// The IMSI range must not wrap
	if cfg.UECount > 1 && cfg.FirstIMSI > math.MaxUint64-uint64(cfg.UECount-1) {
		errs = append(errs, ValidationError{
			Field:   "ue_count",
			Message: fmt.Sprintf("IMSI range starting at %d overflows", cfg.FirstIMSI),
		})
	}

	if cfg.LogPath == "" {
		errs = append(errs, ValidationError{
			Field:   "log_path",
			Message: "log file is required",
		})
	}

	// Report format must be valid
	validFormats := map[string]bool{FormatText: true, FormatJSON: true, FormatYAML: true}
	if !validFormats[cfg.Format] {
		errs = append(errs, ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("must be one of: text, json, yaml (got %q)", cfg.Format),
		})
	}

	// -detail only changes the text report
	if cfg.Detail && cfg.Format != FormatText {
		errs = append(errs, ValidationError{
			Field:   "detail",
			Message: fmt.Sprintf("only applies to -format text (got %q)", cfg.Format),
		})
	}

	// Both would write to stdout
	if cfg.MetricsFile == "-" && cfg.Format != FormatText {
		errs = append(errs, ValidationError{
			Field:   "metrics_file",
			Message: "stdout exposition cannot be combined with a structured report",
		})
	}

	// Log format must be valid
	if !logging.ValidFormat(cfg.LogFormat) {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	// Return combined errors
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
