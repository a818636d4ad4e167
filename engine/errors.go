package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all machine implementations. Machines wrap these
// in the typed errors below so callers can match with errors.Is regardless of
// which backend produced the failure.
var ErrFunctionNotFound = errors.New("global function not found")
var ErrNotCallable = errors.New("global is not a callable function")
var ErrForeignValue = errors.New("value belongs to a different engine")
var ErrValueConsumed = errors.New("value was consumed by object construction")
var ErrEngineClosed = errors.New("engine is closed")

// InitError reports that the script runtime or its execution context could
// not be allocated. It is only returned from engine construction; there is no
// partially usable Engine behind an InitError.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("engine init failed: %s", e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// ExecError reports a failure while executing script code or constructing a
// script-native value: a parse error, an uncaught exception, a missing or
// non-callable global, or any other engine-level fault.
//
// Exception-kind faults carry the engine's caught-exception payload in
// Exception, formatted separately from Msg because exception values hold
// detail (message, stack) the generic description would not include.
type ExecError struct {
	// Msg describes the failing operation.
	Msg string

	// Exception holds the formatted pending-exception state when the
	// fault was an uncaught script exception, and is empty otherwise.
	Exception string

	// Err is the underlying engine error, if any.
	Err error
}

func (e *ExecError) Error() string {
	if e.Exception != "" {
		return fmt.Sprintf("%s: %s", e.Msg, e.Exception)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err)
	}
	return e.Msg
}

// IsException reports whether the fault was an uncaught script exception, as
// opposed to a structural fault such as a missing global.
func (e *ExecError) IsException() bool {
	return e.Exception != ""
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// ConversionError reports that a Value could not be converted back into a Go
// primitive: either the underlying script value is not coercible to the
// requested type, or the handle could not be resolved at all.
type ConversionError struct {
	Msg string
	Err error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
