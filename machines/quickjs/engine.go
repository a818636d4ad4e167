// Package quickjs implements the engine contract on top of the QuickJS
// runtime via the quickjs-go cgo bindings.
package quickjs

import (
	"fmt"
	"log/slog"
	"sync"

	quickjsLib "github.com/buke/quickjs-go"

	"github.com/polyjs/go-polyjs/engine"
	"github.com/polyjs/go-polyjs/internal/helpers"
)

// Engine owns one QuickJS runtime and one execution context with the full
// set of standard built-ins. Both live for the Engine's entire lifetime and
// are torn down together at Close, which also releases the script heap.
//
// Every native operation runs inside a single mutex-guarded region, the
// per-operation context scope. QuickJS is not thread-safe, so the mutex is
// load-bearing here, not just a contract formality.
type Engine struct {
	mu      sync.Mutex
	runtime *quickjsLib.Runtime
	ctx     *quickjsLib.Context
	closed  bool

	logger *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New creates an Engine with a fresh QuickJS runtime and context.
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
		_, logger = helpers.SetupLogger(cfg.LogHandler, "quickjs", "Engine")
	}

	rt := quickjsLib.NewRuntime()
	if rt == nil {
		return nil, &engine.InitError{Err: ErrRuntimeNil}
	}
	ctx := rt.NewContext()
	if ctx == nil {
		rt.Close()
		return nil, &engine.InitError{Err: ErrContextNil}
	}

	return &Engine{
		runtime: rt,
		ctx:     ctx,
		logger:  logger,
	}, nil
}

func (e *Engine) String() string {
	return "quickjs.Engine"
}

// Eval parses and executes code as a top-level script, synchronously, to
// completion, and returns the value of the last expression evaluated.
// A failed Eval does not poison the context.
func (e *Engine) Eval(code string) (engine.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, &engine.ExecError{Msg: "eval failed", Err: engine.ErrEngineClosed}
	}
	logger := e.logger.WithGroup("Eval")

	res := e.ctx.Eval(code)
	if res.IsException() {
		res.Free()
		err := e.ctx.Exception()
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

	// Globals() is cached by the context and must not be freed here.
	fn := e.ctx.Globals().Get(name)
	if fn.IsUndefined() {
		fn.Free()
		return nil, &engine.ExecError{
			Msg: fmt.Sprintf("global %q is not defined", name),
			Err: engine.ErrFunctionNotFound,
		}
	}
	if !fn.IsFunction() {
		fn.Free()
		return nil, &engine.ExecError{
			Msg: fmt.Sprintf("global %q is not callable", name),
			Err: engine.ErrNotCallable,
		}
	}
	defer fn.Free()

	callArgs := make([]*quickjsLib.Value, len(args))
	for i, arg := range args {
		qv, err := e.resolve(arg)
		if err != nil {
			return nil, err
		}
		callArgs[i] = qv
	}

	this := e.ctx.Null()
	defer this.Free()
	res := e.ctx.Invoke(fn, this, callArgs...)
	if res.IsException() {
		res.Free()
		err := e.ctx.Exception()
		logger.Warn("function call failed", "error", err)
		return nil, newExecError(fmt.Sprintf("calling %q failed", name), err)
	}

	logger.Debug("function call complete")
	return newValue(e, res), nil
}

// CreateBoolValue converts a Go bool into a script boolean.
func (e *Engine) CreateBoolValue(input bool) (engine.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, &engine.ExecError{Msg: "value creation failed", Err: engine.ErrEngineClosed}
	}
	return e.wrap(e.ctx.NewBool(input))
}

// CreateIntValue converts a Go int32 into a script number.
func (e *Engine) CreateIntValue(input int32) (engine.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, &engine.ExecError{Msg: "value creation failed", Err: engine.ErrEngineClosed}
	}
	return e.wrap(e.ctx.NewInt32(input))
}

// CreateFloatValue converts a Go float64 into a script number.
func (e *Engine) CreateFloatValue(input float64) (engine.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, &engine.ExecError{Msg: "value creation failed", Err: engine.ErrEngineClosed}
	}
	return e.wrap(e.ctx.NewFloat64(input))
}

// CreateStringValue converts a Go string into a script string.
func (e *Engine) CreateStringValue(input string) (engine.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, &engine.ExecError{Msg: "value creation failed", Err: engine.ErrEngineClosed}
	}
	return e.wrap(e.ctx.NewString(input))
}

// CreateObjectValue builds a script object with one property per field. The
// field Values are consumed on success; a failed construction leaves every
// input handle usable. A Value may appear in at most one field: the
// underlying Set transfers ownership of the handle to the object.
func (e *Engine) CreateObjectValue(fields ...engine.Field) (engine.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, &engine.ExecError{Msg: "object creation failed", Err: engine.ErrEngineClosed}
	}

	// Resolve every field before mutating anything: Set steals handles,
	// so nothing may be half-stolen when an input is rejected.
	resolved := make([]*quickjsLib.Value, len(fields))
	seen := make(map[*Value]bool, len(fields))
	for i, f := range fields {
		qv, err := e.resolve(f.Value)
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
		resolved[i] = qv
	}

	obj := e.ctx.NewObject()
	for i, f := range fields {
		fv := f.Value.(*Value)
		obj.Set(f.Key, resolved[i])
		fv.consumed = true
		fv.ref = nil
	}
	return e.wrap(obj)
}

// Close tears down the context and the runtime, releasing the script heap.
// All Values produced by this Engine become unresolvable.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("close failed: %w", engine.ErrEngineClosed)
	}
	e.closed = true
	e.ctx.Close()
	e.runtime.Close()
	e.ctx = nil
	e.runtime = nil
	e.logger.Debug("engine closed")
	return nil
}

// resolve checks that v is a live handle owned by this Engine and returns the
// underlying QuickJS value. Callers must hold e.mu.
func (e *Engine) resolve(v engine.Value) (*quickjsLib.Value, error) {
	if v == nil {
		return nil, &engine.ExecError{Msg: "argument is nil", Err: ErrValueNil}
	}
	qv, ok := v.(*Value)
	if !ok || qv.owner != e {
		return nil, &engine.ExecError{Msg: "argument rejected", Err: engine.ErrForeignValue}
	}
	if qv.consumed {
		return nil, &engine.ExecError{Msg: "argument rejected", Err: engine.ErrValueConsumed}
	}
	if qv.ref == nil {
		return nil, &engine.ExecError{Msg: "argument rejected", Err: ErrValueNil}
	}
	return qv.ref, nil
}

// wrap converts a freshly created native handle into a Value, surfacing the
// error path the contract requires even though primitive conversions do not
// fail in practice.
func (e *Engine) wrap(v *quickjsLib.Value) (engine.Value, error) {
	if v == nil {
		return nil, &engine.ExecError{Msg: "value creation failed", Err: ErrValueNil}
	}
	if v.IsException() {
		v.Free()
		return nil, newExecError("value creation failed", e.ctx.Exception())
	}
	return newValue(e, v), nil
}
