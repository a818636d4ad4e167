// Package polyjs embeds a sandboxed JavaScript engine behind a single
// engine/value boundary: evaluate script text, call named global functions,
// and marshal values between Go primitives and script-native values.
//
// Each Engine owns exactly one execution context for its whole lifetime.
// Values returned by an Engine are handles that outlive the call that
// produced them, can be passed back into later calls on the same Engine, and
// convert back to Go strings on demand.
package polyjs

import (
	"fmt"
	"io"

	"github.com/polyjs/go-polyjs/engine"
	"github.com/polyjs/go-polyjs/loader"
	"github.com/polyjs/go-polyjs/machines"
	"github.com/polyjs/go-polyjs/machines/types"
	"github.com/polyjs/go-polyjs/options"
)

// NewGojaEngine creates a new Engine backed by the pure-Go goja runtime
func NewGojaEngine(opts ...options.Option) (engine.Engine, error) {
	return newEngine(types.Goja, opts...)
}

// NewQuickJSEngine creates a new Engine backed by the QuickJS runtime
func NewQuickJSEngine(opts ...options.Option) (engine.Engine, error) {
	return newEngine(types.QuickJS, opts...)
}

func newEngine(machineType types.Type, opts ...options.Option) (engine.Engine, error) {
	cfg := options.DefaultConfig(machineType)

	// Apply all options
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}

	// Apply defaults option as final step to fill in any missing values
	if err := options.WithDefaults()(cfg); err != nil {
		return nil, fmt.Errorf("error applying defaults: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return machines.NewEngine(cfg)
}

// EvalFrom reads script source from l and evaluates it on eng, returning the
// value of the last expression evaluated.
func EvalFrom(eng engine.Engine, l loader.Loader) (engine.Value, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine is nil")
	}
	if l == nil {
		return nil, fmt.Errorf("loader is nil")
	}

	reader, err := l.GetReader()
	if err != nil {
		return nil, fmt.Errorf("failed to get reader from %s: %w", l, err)
	}

	code, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	if err := reader.Close(); err != nil {
		return nil, fmt.Errorf("failed to close reader: %w", err)
	}

	return eng.Eval(string(code))
}
