package quickjs

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyjs/go-polyjs/engine"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(WithLogHandler(slog.NewTextHandler(os.Stdout, nil)))
	require.NoError(t, err, "Failed to create engine")
	require.NotNil(t, e)
	t.Cleanup(func() {
		if !e.closed {
			require.NoError(t, e.Close())
		}
	})
	return e
}

func TestEvalReturnsLastExpression(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{name: "addition", code: "1+2", expected: "3"},
		{name: "string concat", code: `"a"+"b"`, expected: "ab"},
		{name: "boolean", code: "true && false", expected: "false"},
		{name: "float", code: "1/4", expected: "0.25"},
		{name: "array", code: "[1,2,3]", expected: "1,2,3"},
		{name: "object", code: "({})", expected: "[object Object]"},
		{name: "multiple statements", code: "var x = 40; x + 2", expected: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			val, err := e.Eval(tt.code)
			require.NoError(t, err)
			require.NotNil(t, val)

			s, err := val.AsString()
			require.NoError(t, err)
			require.Equal(t, tt.expected, s)
		})
	}
}

func TestEvalSyntaxError(t *testing.T) {
	e := newTestEngine(t)

	val, err := e.Eval("not valid js (")
	require.Error(t, err)
	require.Nil(t, val)

	var execErr *engine.ExecError
	require.True(t, errors.As(err, &execErr), "expected *engine.ExecError, got %T", err)
	// QuickJS reports parse failures through the pending-exception state
	// as SyntaxError exceptions.
	require.True(t, execErr.IsException())
	require.Contains(t, execErr.Exception, "SyntaxError")

	// The engine must remain usable after a failed eval.
	val, err = e.Eval("1")
	require.NoError(t, err)
	s, err := val.AsString()
	require.NoError(t, err)
	require.Equal(t, "1", s)
}

func TestEvalUncaughtException(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Eval(`throw new Error("boom")`)
	require.Error(t, err)

	var execErr *engine.ExecError
	require.True(t, errors.As(err, &execErr))
	require.True(t, execErr.IsException())
	require.Contains(t, execErr.Exception, "boom")

	// An uncaught exception does not poison the context.
	val, err := e.Eval("2+2")
	require.NoError(t, err)
	s, err := val.AsString()
	require.NoError(t, err)
	require.Equal(t, "4", s)
}

func TestCallFunction(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Eval("function id(x){return x;}")
	require.NoError(t, err)

	arg, err := e.CreateIntValue(42)
	require.NoError(t, err)

	res, err := e.CallFunction("id", arg)
	require.NoError(t, err)

	s, err := res.AsString()
	require.NoError(t, err)
	require.Equal(t, "42", s)
}

func TestCallFunctionMissing(t *testing.T) {
	e := newTestEngine(t)

	val, err := e.CallFunction("missing_fn")
	require.Error(t, err)
	require.Nil(t, val)
	require.ErrorIs(t, err, engine.ErrFunctionNotFound)
	require.Contains(t, err.Error(), "missing_fn")
}

func TestCallFunctionNotCallable(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Eval("var notFn = 42")
	require.NoError(t, err)

	_, err = e.CallFunction("notFn")
	require.ErrorIs(t, err, engine.ErrNotCallable)
}

func TestCallFunctionThrows(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Eval(`function angry(){throw new Error("nope");}`)
	require.NoError(t, err)

	_, err = e.CallFunction("angry")
	require.Error(t, err)

	var execErr *engine.ExecError
	require.True(t, errors.As(err, &execErr))
	require.True(t, execErr.IsException())
	require.Contains(t, execErr.Exception, "nope")
}

func TestCreatePrimitiveValues(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Eval("function join(a, b, c, d){return [a, b, c, d].join('|');}")
	require.NoError(t, err)

	b, err := e.CreateBoolValue(true)
	require.NoError(t, err)
	i, err := e.CreateIntValue(-7)
	require.NoError(t, err)
	f, err := e.CreateFloatValue(0.5)
	require.NoError(t, err)
	s, err := e.CreateStringValue("str")
	require.NoError(t, err)

	res, err := e.CallFunction("join", b, i, f, s)
	require.NoError(t, err)

	out, err := res.AsString()
	require.NoError(t, err)
	require.Equal(t, "true|-7|0.5|str", out)
}

func TestCreateObjectValue(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Eval(`function fmtObj(o){
		return Object.keys(o).sort().map(function(k){return k+"="+o[k];}).join(",");
	}`)
	require.NoError(t, err)

	a, err := e.CreateIntValue(1)
	require.NoError(t, err)
	b, err := e.CreateStringValue("x")
	require.NoError(t, err)

	obj, err := e.CreateObjectValue(
		engine.Field{Key: "a", Value: a},
		engine.Field{Key: "b", Value: b},
	)
	require.NoError(t, err)

	res, err := e.CallFunction("fmtObj", obj)
	require.NoError(t, err)

	s, err := res.AsString()
	require.NoError(t, err)
	require.Equal(t, "a=1,b=x", s)
}

func TestObjectConstructionConsumesInputs(t *testing.T) {
	e := newTestEngine(t)

	a, err := e.CreateIntValue(1)
	require.NoError(t, err)

	_, err = e.CreateObjectValue(engine.Field{Key: "a", Value: a})
	require.NoError(t, err)

	_, err = a.AsString()
	require.ErrorIs(t, err, engine.ErrValueConsumed)

	_, err = e.Eval("function id(x){return x;}")
	require.NoError(t, err)
	_, err = e.CallFunction("id", a)
	require.ErrorIs(t, err, engine.ErrValueConsumed)
}

func TestObjectConstructionFailureLeavesInputsUsable(t *testing.T) {
	e := newTestEngine(t)
	other := newTestEngine(t)

	good, err := e.CreateIntValue(1)
	require.NoError(t, err)
	foreign, err := other.CreateIntValue(2)
	require.NoError(t, err)

	// A rejected field must not spend the valid inputs.
	_, err = e.CreateObjectValue(
		engine.Field{Key: "a", Value: good},
		engine.Field{Key: "b", Value: foreign},
	)
	require.ErrorIs(t, err, engine.ErrForeignValue)

	s, err := good.AsString()
	require.NoError(t, err)
	require.Equal(t, "1", s)

	// Same for a duplicated field value.
	_, err = e.CreateObjectValue(
		engine.Field{Key: "a", Value: good},
		engine.Field{Key: "b", Value: good},
	)
	require.ErrorIs(t, err, engine.ErrValueConsumed)

	obj, err := e.CreateObjectValue(engine.Field{Key: "a", Value: good})
	require.NoError(t, err)
	require.NotNil(t, obj)
}

func TestForeignValueRejected(t *testing.T) {
	e1 := newTestEngine(t)
	e2 := newTestEngine(t)

	_, err := e1.Eval("function id(x){return x;}")
	require.NoError(t, err)

	foreign, err := e2.CreateIntValue(1)
	require.NoError(t, err)

	_, err = e1.CallFunction("id", foreign)
	require.ErrorIs(t, err, engine.ErrForeignValue)
}

func TestEngineIsolation(t *testing.T) {
	e1 := newTestEngine(t)
	_, err := e1.Eval("globalThis.leak = 'present'")
	require.NoError(t, err)

	e2 := newTestEngine(t)
	val, err := e2.Eval("typeof leak")
	require.NoError(t, err)

	s, err := val.AsString()
	require.NoError(t, err)
	require.Equal(t, "undefined", s, "globals must not bleed between engines")
}

func TestClose(t *testing.T) {
	e := newTestEngine(t)

	val, err := e.CreateIntValue(42)
	require.NoError(t, err)

	require.NoError(t, e.Close())

	_, err = e.Eval("1")
	require.ErrorIs(t, err, engine.ErrEngineClosed)

	_, err = val.AsString()
	require.ErrorIs(t, err, engine.ErrEngineClosed)

	err = e.Close()
	require.ErrorIs(t, err, engine.ErrEngineClosed)
}

func TestAsStringIdempotent(t *testing.T) {
	e := newTestEngine(t)

	val, err := e.Eval("40+2")
	require.NoError(t, err)

	first, err := val.AsString()
	require.NoError(t, err)
	second, err := val.AsString()
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, "42", first)
}

func TestValueString(t *testing.T) {
	e := newTestEngine(t)

	val, err := e.CreateStringValue("x")
	require.NoError(t, err)
	require.Equal(t, "quickjs.Value{type: string}", val.String())

	_, err = e.CreateObjectValue(engine.Field{Key: "v", Value: val})
	require.NoError(t, err)
	require.Equal(t, "quickjs.Value{consumed}", val.String())
}
