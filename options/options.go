package options

import (
	"fmt"
	"log/slog"

	"github.com/polyjs/go-polyjs/machines/types"
)

// Config holds all configuration for creating a script engine
type Config struct {
	// Logger for the engine
	handler slog.Handler
	// Type of machine to use (goja, quickjs)
	machineType types.Type
}

// Option is a function that modifies Config
type Option func(*Config) error

// WithLogger sets the logger for the script engine
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) error {
		if logger != nil {
			c.handler = logger.Handler()
		}
		return nil
	}
}

// WithLogHandler sets the log handler for the script engine
func WithLogHandler(handler slog.Handler) Option {
	return func(c *Config) error {
		if handler != nil {
			c.handler = handler
		}
		return nil
	}
}

// Validate performs basic validation on the configuration
func (c *Config) Validate() error {
	if c.machineType == "" {
		return fmt.Errorf("no machine type specified")
	}
	if !c.machineType.Valid() {
		return fmt.Errorf("unknown machine type: %s", c.machineType)
	}
	return nil
}

// GetHandler returns the configured logger
func (c *Config) GetHandler() slog.Handler {
	return c.handler
}

// SetHandler sets the logger
func (c *Config) SetHandler(handler slog.Handler) {
	c.handler = handler
}

// GetMachineType returns the configured machine type
func (c *Config) GetMachineType() types.Type {
	return c.machineType
}

// SetMachineType sets the machine type
func (c *Config) SetMachineType(machineType types.Type) {
	c.machineType = machineType
}
