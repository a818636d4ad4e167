package goja

import (
	"fmt"
	"log/slog"
	"os"
)

// Options holds the configuration for the goja engine
type Options struct {
	LogHandler slog.Handler
	Logger     *slog.Logger
}

// FunctionalOption is a function that configures an Options instance
type FunctionalOption func(*Options) error

// WithLogHandler creates an option to set the log handler for the goja
// engine. This is the preferred option for logging configuration as it
// provides more flexibility through the slog.Handler interface.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(cfg *Options) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		cfg.LogHandler = handler
		// Clear logger if handler is explicitly set
		cfg.Logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for the goja engine.
// This is less flexible than WithLogHandler but allows users to customize
// their logging group configuration.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(cfg *Options) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		cfg.Logger = logger
		// Clear handler if logger is explicitly set
		cfg.LogHandler = nil
		return nil
	}
}

// ApplyDefaults sets the default values for an Options instance
func ApplyDefaults(cfg *Options) {
	// Default to stderr for logging if neither handler nor logger specified
	if cfg.LogHandler == nil && cfg.Logger == nil {
		cfg.LogHandler = slog.NewTextHandler(os.Stderr, nil)
	}
}

// Validate checks if the configuration is valid
func Validate(cfg *Options) error {
	// Ensure we have either a logger or a handler
	if cfg.LogHandler == nil && cfg.Logger == nil {
		return fmt.Errorf("either log handler or logger must be specified")
	}

	return nil
}
