package quickjs

import (
	"errors"

	quickjsLib "github.com/buke/quickjs-go"

	"github.com/polyjs/go-polyjs/engine"
)

var ErrValueNil = errors.New("quickjs value is nil")
var ErrRuntimeNil = errors.New("quickjs runtime allocation failed")
var ErrContextNil = errors.New("quickjs context allocation failed")

// newExecError maps a QuickJS failure into the engine error taxonomy. QuickJS
// surfaces every execution fault, including parse errors, through the
// context's pending-exception state, so the caught payload is always carried
// in the Exception field. The stack is appended when the engine captured one.
func newExecError(msg string, err error) *engine.ExecError {
	if err == nil {
		return &engine.ExecError{Msg: msg}
	}

	exception := err.Error()
	var qerr *quickjsLib.Error
	if errors.As(err, &qerr) && qerr.Stack != "" {
		exception = qerr.Cause + "\n" + qerr.Stack
	}
	return &engine.ExecError{Msg: msg, Exception: exception, Err: err}
}
