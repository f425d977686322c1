package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"ps2kbd/internal/logging"
)

// ErrInvalidConfig is matched by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, ErrInvalidConfig) hold for any validation result.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Fields lists the offending field names in order.
func (e ValidationErrors) Fields() []string {
	fields := make([]string, len(e))
	for i, err := range e {
		fields[i] = err.Field
	}
	return fields
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs ValidationErrors
	errs = append(errs, validateKeyboard(&c.Keyboard)...)
	errs = append(errs, validateConsole(&c.Console)...)
	errs = append(errs, validateLogging(&c.Logging)...)
	errs = append(errs, validateMetrics(&c.Metrics)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateKeyboard(k *KeyboardConfig) ValidationErrors {
	var errs ValidationErrors

	if k.ScancodeSet != 1 && k.ScancodeSet != 2 {
		errs = append(errs, ValidationError{
			Field:   "keyboard.scancode_set",
			Message: fmt.Sprintf("must be 1 or 2, got %d", k.ScancodeSet),
		})
	}
	if k.QueueCapacity < 1 || k.QueueCapacity > 4096 {
		errs = append(errs, ValidationError{
			Field:   "keyboard.queue_capacity",
			Message: fmt.Sprintf("must be between 1 and 4096, got %d", k.QueueCapacity),
		})
	}
	if k.Keymap == "" {
		errs = append(errs, ValidationError{
			Field:   "keyboard.keymap",
			Message: "must not be empty",
		})
	}
	if k.PollIntervalMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "keyboard.poll_interval_ms",
			Message: "must not be negative",
		})
	}
	return errs
}

func validateConsole(c *ConsoleConfig) ValidationErrors {
	var errs ValidationErrors

	// Function keys address at most twelve consoles.
	if c.Count < 1 || c.Count > 12 {
		errs = append(errs, ValidationError{
			Field:   "console.count",
			Message: fmt.Sprintf("must be between 1 and 12, got %d", c.Count),
		})
	}
	if c.Width < 1 {
		errs = append(errs, ValidationError{Field: "console.width", Message: "must be positive"})
	}
	if c.Height < 1 {
		errs = append(errs, ValidationError{Field: "console.height", Message: "must be positive"})
	}
	return errs
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	if _, err := logging.ParseLevel(l.Level); err != nil {
		errs = append(errs, ValidationError{Field: "logging.level", Message: err.Error()})
	}
	if _, err := logging.ParseFormat(l.Format); err != nil {
		errs = append(errs, ValidationError{Field: "logging.format", Message: err.Error()})
	}

	switch strings.ToLower(l.Output) {
	case "stderr", "stdout", "discard":
	case "file", "both":
		if l.FilePath == "" {
			errs = append(errs, ValidationError{
				Field:   "logging.file_path",
				Message: "required when output is " + l.Output,
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("unknown output %q", l.Output),
		})
	}
	return errs
}

func validateMetrics(m *MetricsConfig) ValidationErrors {
	if !m.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(m.Addr); err != nil {
		return ValidationErrors{{Field: "metrics.addr", Message: err.Error()}}
	}
	return nil
}

// LoggingConfig converts the logging section into a logger configuration.
func (c *Config) LoggingConfig() *logging.Config {
	cfg := logging.DefaultConfig()
	if level, err := logging.ParseLevel(c.Logging.Level); err == nil {
		cfg.Level = level
	}
	if format, err := logging.ParseFormat(c.Logging.Format); err == nil {
		cfg.Format = format
	}
	cfg.Output = c.Logging.Output
	cfg.FilePath = c.Logging.FilePath
	return cfg
}
