package goja

import (
	"fmt"

	gojaLib "github.com/dop251/goja"

	"github.com/polyjs/go-polyjs/engine"
)

// Value is a handle to one script value produced by an Engine. It stays valid
// across operations until it is consumed into an object or its owning Engine
// closes. It borrows the owner's context scope for each operation.
type Value struct {
	owner    *Engine
	v        gojaLib.Value
	consumed bool

	// kind is captured at construction so String never needs the live
	// runtime.
	kind string
}

var _ engine.Value = (*Value)(nil)

func newValue(owner *Engine, v gojaLib.Value) *Value {
	if v == nil {
		// goja returns a nil Value for scripts with no completion value.
		v = gojaLib.Undefined()
	}
	kind := "<nil>"
	if t := v.ExportType(); t != nil {
		kind = t.String()
	}
	return &Value{owner: owner, v: v, kind: kind}
}

// AsString resolves the handle inside the owning context and applies
// JavaScript ToString semantics. It may be called repeatedly.
func (v *Value) AsString() (string, error) {
	e := v.owner
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return "", &engine.ConversionError{Msg: "cannot resolve value", Err: engine.ErrEngineClosed}
	}
	if v.consumed {
		return "", &engine.ConversionError{Msg: "cannot resolve value", Err: engine.ErrValueConsumed}
	}
	if v.v == nil {
		return "", &engine.ConversionError{Msg: "cannot resolve value", Err: ErrValueNil}
	}

	s, err := coerceString(v.v)
	if err != nil {
		return "", &engine.ConversionError{Msg: "cannot convert value to string", Err: err}
	}
	return s, nil
}

// String reports the handle state without resolving it against the live
// runtime, so printing a Value is never fallible.
func (v *Value) String() string {
	if v.consumed {
		return "goja.Value{consumed}"
	}
	return fmt.Sprintf("goja.Value{type: %s}", v.kind)
}

// coerceString applies ToString, converting the exception goja throws for
// non-coercible values (symbols, throwing toString) into an error.
func coerceString(gv gojaLib.Value) (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ex, ok := r.(*gojaLib.Exception); ok {
				err = ex
				return
			}
			panic(r)
		}
	}()
	return gv.String(), nil
}
