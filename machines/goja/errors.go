package goja

import (
	"errors"

	gojaLib "github.com/dop251/goja"

	"github.com/polyjs/go-polyjs/engine"
)

var ErrValueNil = errors.New("goja value is nil")
var ErrRuntimeNil = errors.New("goja runtime is nil")

// newExecError maps a goja failure into the engine error taxonomy. Uncaught
// script exceptions carry the thrown value and stack in the Exception field;
// compile errors and other faults stay structural.
func newExecError(msg string, err error) *engine.ExecError {
	var ex *gojaLib.Exception
	if errors.As(err, &ex) {
		return &engine.ExecError{Msg: msg, Exception: ex.String(), Err: err}
	}
	return &engine.ExecError{Msg: msg, Err: err}
}
