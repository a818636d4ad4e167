package quickjs

import (
	"fmt"

	quickjsLib "github.com/buke/quickjs-go"

	"github.com/polyjs/go-polyjs/engine"
)

// Value is a handle to one script value produced by an Engine. It stays valid
// across operations until it is consumed into an object or its owning Engine
// closes. It borrows the owner's context scope for each operation.
type Value struct {
	owner    *Engine
	ref      *quickjsLib.Value
	consumed bool

	// kind is captured at construction so String never needs the live
	// context.
	kind string
}

var _ engine.Value = (*Value)(nil)

func newValue(owner *Engine, ref *quickjsLib.Value) *Value {
	return &Value{owner: owner, ref: ref, kind: typeName(ref)}
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
	if v.ref == nil {
		return "", &engine.ConversionError{Msg: "cannot resolve value", Err: ErrValueNil}
	}

	s := v.ref.String()
	if e.ctx.HasException() {
		// ToString threw (symbols, throwing toString), leaving the
		// result string meaningless.
		return "", &engine.ConversionError{
			Msg: "cannot convert value to string",
			Err: e.ctx.Exception(),
		}
	}
	return s, nil
}

// String reports the handle state without resolving it against the live
// context, so printing a Value is never fallible.
func (v *Value) String() string {
	if v.consumed {
		return "quickjs.Value{consumed}"
	}
	return fmt.Sprintf("quickjs.Value{type: %s}", v.kind)
}

// typeName inspects only the value tag, which is stored on the Go side and
// needs no context round-trip.
func typeName(ref *quickjsLib.Value) string {
	switch {
	case ref == nil:
		return "<nil>"
	case ref.IsUndefined():
		return "undefined"
	case ref.IsNull():
		return "null"
	case ref.IsBool():
		return "boolean"
	case ref.IsNumber():
		return "number"
	case ref.IsString():
		return "string"
	case ref.IsFunction():
		return "function"
	case ref.IsObject():
		return "object"
	default:
		return "unknown"
	}
}
