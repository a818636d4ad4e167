// Package goja implements the engine contract on top of the pure-Go goja
// JavaScript runtime.
package goja

import (
	"fmt"
	"log/slog"
	"sync"

	gojaLib "github.com/dop251/goja"

	"github.com/polyjs/go-polyjs/engine"
	"github.com/polyjs/go-polyjs/internal/helpers"
)

// Engine owns one goja runtime with the full set of standard built-ins. The
// runtime lives for the Engine's entire lifetime and is released at Close.
//
// Every native operation runs inside a single mutex-guarded region, the
// per-operation context scope. Nothing is held locked across operations;
// Values are safe to retain between them.
type Engine struct {
	mu     sync.Mutex
	vm     *gojaLib.Runtime
	closed bool

	logger *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New creates an Engine with a fresh goja runtime and the provided options.
func New(opts ...FunctionalOption) (*Engine, error) {
	cfg := &Options{}
	ApplyDefaults(cfg)

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("error applying engine option: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}

	var logger *slog.Logger
	if cfg.Logger != nil {
		logger = cfg.Logger
	} else {
		_, logger = helpers.SetupLogger(cfg.LogHandler, "goja", "Engine")
	}

	vm, err := newRuntime()
	if err != nil {
		return nil, &engine.InitError{Err: err}
	}

	return &Engine{
		vm:     vm,
		logger: logger,
	}, nil
}

// newRuntime allocates the goja runtime, converting allocation panics into
// errors so construction has no partial-success state.
func newRuntime() (vm *gojaLib.Runtime, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("goja runtime allocation: %v", r)
		}
	}()
	vm = gojaLib.New()
	if vm == nil {
		return nil, ErrRuntimeNil
	}
	return vm, nil
}

func (e *Engine) String() string {
	return "goja.Engine"
}

// Eval parses and executes code as a top-level script, synchronously, to
// completion, and returns the value of the last expression evaluated.
// A failed Eval does not poison the runtime.
func (e *Engine) Eval(code string) (engine.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, &engine.ExecError{Msg: "eval failed", Err: engine.ErrEngineClosed}
	}
	logger := e.logger.WithGroup("Eval")

	res, err := e.vm.RunString(code)
	if err != nil {
		logger.Warn("script evaluation failed", "error", err)
		return nil, newExecError("eval failed", err)
	}

	logger.Debug("script evaluation complete")
	return newValue(e, res), nil
}

// CallFunction looks up a global binding by name and invokes it with args in
// order. All args must have been produced by this Engine.
func (e *Engine) CallFunction(name string, args ...engine.Value) (engine.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, &engine.ExecError{Msg: "call failed", Err: engine.ErrEngineClosed}
	}
	logger := e.logger.WithGroup("CallFunction").With("function", name)

	global := e.vm.GlobalObject().Get(name)
	if global == nil || gojaLib.IsUndefined(global) {
		return nil, &engine.ExecError{
			Msg: fmt.Sprintf("global %q is not defined", name),
			Err: engine.ErrFunctionNotFound,
		}
	}
	fn, ok := gojaLib.AssertFunction(global)
	if !ok {
		return nil, &engine.ExecError{
			Msg: fmt.Sprintf("global %q is not callable", name),
			Err: engine.ErrNotCallable,
		}
	}

	callArgs := make([]gojaLib.Value, len(args))
	for i, arg := range args {
		gv, err := e.resolve(arg)
		if err != nil {
			return nil, err
		}
		callArgs[i] = gv
	}

	res, err := fn(gojaLib.Undefined(), callArgs...)
	if err != nil {
		logger.Warn("function call failed", "error", err)
		return nil, newExecError(fmt.Sprintf("calling %q failed", name), err)
	}

	logger.Debug("function call complete")
	return newValue(e, res), nil
}

// CreateBoolValue converts a Go bool into a script boolean.
func (e *Engine) CreateBoolValue(input bool) (engine.Value, error) {
	return e.createValue(input)
}

// CreateIntValue converts a Go int32 into a script number.
func (e *Engine) CreateIntValue(input int32) (engine.Value, error) {
	return e.createValue(input)
}

// CreateFloatValue converts a Go float64 into a script number.
func (e *Engine) CreateFloatValue(input float64) (engine.Value, error) {
	return e.createValue(input)
}

// CreateStringValue converts a Go string into a script string.
func (e *Engine) CreateStringValue(input string) (engine.Value, error) {
	return e.createValue(input)
}

func (e *Engine) createValue(input any) (engine.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, &engine.ExecError{Msg: "value creation failed", Err: engine.ErrEngineClosed}
	}

	gv, err := e.toValue(input)
	if err != nil {
		return nil, newExecError("value creation failed", err)
	}
	return newValue(e, gv), nil
}

// CreateObjectValue builds a script object with one property per field. The
// field Values are consumed on success; a failed construction leaves every
// input handle usable. A Value may appear in at most one field.
func (e *Engine) CreateObjectValue(fields ...engine.Field) (engine.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, &engine.ExecError{Msg: "object creation failed", Err: engine.ErrEngineClosed}
	}

	// Resolve every field before mutating anything, so rejecting one
	// input does not spend the others.
	resolved := make([]gojaLib.Value, len(fields))
	seen := make(map[*Value]bool, len(fields))
	for i, f := range fields {
		gv, err := e.resolve(f.Value)
		if err != nil {
			return nil, err
		}
		fv := f.Value.(*Value)
		if seen[fv] {
			return nil, &engine.ExecError{
				Msg: fmt.Sprintf("field %q reuses a consumed value", f.Key),
				Err: engine.ErrValueConsumed,
			}
		}
		seen[fv] = true
		resolved[i] = gv
	}

	obj := e.vm.NewObject()
	for i, f := range fields {
		if err := obj.Set(f.Key, resolved[i]); err != nil {
			return nil, newExecError(fmt.Sprintf("setting field %q failed", f.Key), err)
		}
	}
	for _, f := range fields {
		f.Value.(*Value).consumed = true
	}
	return newValue(e, obj), nil
}

// Close releases the runtime. All Values produced by this Engine become
// unresolvable; operations on them return checked errors.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("close failed: %w", engine.ErrEngineClosed)
	}
	e.closed = true
	e.vm = nil
	e.logger.Debug("engine closed")
	return nil
}

// resolve checks that v is a live handle owned by this Engine and returns the
// underlying goja value. Callers must hold e.mu.
func (e *Engine) resolve(v engine.Value) (gojaLib.Value, error) {
	if v == nil {
		return nil, &engine.ExecError{Msg: "argument is nil", Err: ErrValueNil}
	}
	gv, ok := v.(*Value)
	if !ok || gv.owner != e {
		return nil, &engine.ExecError{Msg: "argument rejected", Err: engine.ErrForeignValue}
	}
	if gv.consumed {
		return nil, &engine.ExecError{Msg: "argument rejected", Err: engine.ErrValueConsumed}
	}
	if gv.v == nil {
		return nil, &engine.ExecError{Msg: "argument rejected", Err: ErrValueNil}
	}
	return gv.v, nil
}

// toValue converts a Go primitive inside the context scope, converting goja
// conversion panics into errors. Callers must hold e.mu.
func (e *Engine) toValue(input any) (gv gojaLib.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ex, ok := r.(*gojaLib.Exception); ok {
				err = ex
				return
			}
			panic(r)
		}
	}()
	return e.vm.ToValue(input), nil
}
