package engine

import "fmt"

// Field is one property of an object value under construction: a string key
// paired with a previously created Value. Property order inside the resulting
// object is not guaranteed to be preserved.
type Field struct {
	Key   string
	Value Value
}

// Engine owns exactly one JavaScript execution context for its entire
// lifetime. It is the only way to run script code or to manufacture
// script-native values from Go primitives.
//
// An Engine is single-owner: it must not be used from multiple goroutines
// concurrently beyond what the backend's internal locking provides, and no
// Value it produced may be used after Close. Every operation runs
// synchronously to completion; there is no cancellation or timeout at this
// layer.
type Engine interface {
	// Eval parses and executes code as a top-level script and returns the
	// value of the last expression evaluated. Parse failures, uncaught
	// exceptions and other engine faults are returned as *ExecError, with
	// the pending-exception detail preserved for exception-kind faults.
	// A failed Eval leaves the Engine usable for subsequent calls.
	Eval(code string) (Value, error)

	// CallFunction looks up a global binding by name and invokes it with
	// args in order. A missing or non-callable global is an *ExecError
	// wrapping ErrFunctionNotFound or ErrNotCallable. Args must have been
	// produced by this Engine; a Value from another Engine is rejected
	// with an *ExecError wrapping ErrForeignValue.
	CallFunction(name string, args ...Value) (Value, error)

	// CreateBoolValue converts a Go bool into a script boolean.
	CreateBoolValue(input bool) (Value, error)

	// CreateIntValue converts a Go int32 into a script number.
	CreateIntValue(input int32) (Value, error)

	// CreateFloatValue converts a Go float64 into a script number.
	CreateFloatValue(input float64) (Value, error)

	// CreateStringValue converts a Go string into a script string.
	CreateStringValue(input string) (Value, error)

	// CreateObjectValue builds a script object with one property per
	// field. The input Values are consumed: after the call they are part
	// of the new object and any further use of them fails with an error
	// wrapping ErrValueConsumed.
	CreateObjectValue(fields ...Field) (Value, error)

	// Close tears down the execution context and releases the script
	// heap. Operations on the Engine or on any of its Values after Close
	// fail with an error wrapping ErrEngineClosed.
	Close() error

	fmt.Stringer
}

// Value is a handle to a single script-native value that outlives the call
// that produced it. It borrows its owning Engine's context for the duration
// of each operation; it does not keep the context alive.
type Value interface {
	// AsString resolves the handle inside the owning context and applies
	// the engine's string coercion. It fails with a *ConversionError when
	// the underlying value is not string-convertible or when the handle
	// can no longer be resolved (consumed value, closed engine).
	// AsString may be called repeatedly; absent mutation of shared
	// context state it returns the same string each time.
	AsString() (string, error)

	// String returns a diagnostic representation. It never resolves the
	// handle against the live context and therefore cannot fail.
	fmt.Stringer
}
