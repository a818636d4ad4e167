// Package machines maps a validated configuration to a concrete engine
// implementation.
package machines

import (
	"fmt"

	"github.com/polyjs/go-polyjs/engine"
	gojaMachine "github.com/polyjs/go-polyjs/machines/goja"
	quickjsMachine "github.com/polyjs/go-polyjs/machines/quickjs"
	"github.com/polyjs/go-polyjs/machines/types"
	"github.com/polyjs/go-polyjs/options"
)

// NewEngine creates a machine-specific Engine from the provided config.
func NewEngine(cfg *options.Config) (engine.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.GetMachineType() {
	case types.Goja:
		return gojaMachine.New(gojaMachine.WithLogHandler(cfg.GetHandler()))
	case types.QuickJS:
		return quickjsMachine.New(quickjsMachine.WithLogHandler(cfg.GetHandler()))
	default:
		return nil, fmt.Errorf("unsupported machine type: %s", cfg.GetMachineType())
	}
}
