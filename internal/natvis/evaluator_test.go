package natvis

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFrame is a RemoteFrame that records every expression it is asked
// to evaluate and returns a scripted outcome.
type fakeFrame struct {
	exprs  []string
	result VariableInformation
	err    error
}

func (f *fakeFrame) EvaluateExpression(ctx context.Context, scope VariableInformation, expr string) (VariableInformation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.exprs = append(f.exprs, expr)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return intVar(expr, 0), nil
}

// failingEngine is a fast engine stand-in that always fails with a
// fixed code, used to drive the strategy transitions precisely.
type failingEngine struct {
	code  ErrorCode
	exprs []string
}

func (e *failingEngine) Evaluate(ctx context.Context, scope VariableInformation, expr string) (VariableInformation, error) {
	e.exprs = append(e.exprs, expr)
	return nil, newEvalError(e.code, expr, "scripted failure")
}

// TestEvaluator_StrategyLLDB tests that the interpreter strategy never
// touches the fast engine.
func TestEvaluator_StrategyLLDB(t *testing.T) {
	frame := &fakeFrame{result: intVar("r", 5)}
	fast := &failingEngine{code: CodeUnknown}
	ev := NewEvaluator(frame, WithFastEngine(fast))

	v, err := ev.EvaluateExpression(context.Background(), gameObject(), NewScope(), "count + 1", StrategyLLDB)
	require.NoError(t, err)
	assert.Equal(t, "5", v.Value())
	assert.Equal(t, []string{"count + 1"}, frame.exprs)
	assert.Empty(t, fast.exprs)
}

// TestEvaluator_StrategyLLDBEval tests that the pure fast-engine
// strategy never retries on the interpreter, even for failure codes
// that would otherwise trigger a fallback.
func TestEvaluator_StrategyLLDBEval(t *testing.T) {
	frame := &fakeFrame{}
	fast := &failingEngine{code: CodeNotImplemented}
	ev := NewEvaluator(frame, WithFastEngine(fast))

	_, err := ev.EvaluateExpression(context.Background(), gameObject(), NewScope(), "&count", StrategyLLDBEval)
	requireCode(t, err, CodeNotImplemented)
	assert.Empty(t, frame.exprs, "interpreter must not be consulted")
}

// TestEvaluator_FallbackClassification tests which fast-engine failure
// codes retry on the interpreter and which surface to the caller.
func TestEvaluator_FallbackClassification(t *testing.T) {
	cases := []struct {
		code     ErrorCode
		fallback bool
	}{
		{CodeInvalidExpressionSyntax, true},
		{CodeNotImplemented, true},
		{CodeUnknown, true},
		{CodeInvalidNumericLiteral, false},
		{CodeInvalidOperandType, false},
		{CodeUndeclaredIdentifier, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			frame := &fakeFrame{result: intVar("r", 99)}
			fast := &failingEngine{code: tc.code}
			ev := NewEvaluator(frame, WithFastEngine(fast))

			v, err := ev.EvaluateExpression(context.Background(), gameObject(), NewScope(), "expr", StrategyLLDBEvalWithFallback)
			if tc.fallback {
				require.NoError(t, err)
				assert.Equal(t, "99", v.Value())
				assert.Equal(t, []string{"expr"}, frame.exprs)
			} else {
				requireCode(t, err, tc.code)
				assert.Empty(t, frame.exprs)
			}
			assert.Equal(t, []string{"expr"}, fast.exprs)
		})
	}
}

// TestEvaluator_FallbackSurfacesInterpreterError tests that when both
// engines fail, the interpreter's failure is the one reported.
func TestEvaluator_FallbackSurfacesInterpreterError(t *testing.T) {
	frame := &fakeFrame{err: fmt.Errorf("no symbol in current scope")}
	fast := &failingEngine{code: CodeNotImplemented}
	ev := NewEvaluator(frame, WithFastEngine(fast))

	_, err := ev.EvaluateExpression(context.Background(), gameObject(), NewScope(), "expr", StrategyLLDBEvalWithFallback)
	require.Error(t, err)
	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, CodeUnknown, ee.Code)
	assert.Equal(t, "expr", ee.Expression)
}

// TestEvaluator_Substitution tests that scope bindings are applied
// before the expression reaches either engine.
func TestEvaluator_Substitution(t *testing.T) {
	frame := &fakeFrame{}
	ev := NewEvaluator(frame)
	scope := NewScope()
	scope.Bind("$T1", "2")

	v, err := ev.EvaluateExpression(context.Background(), gameObject(), scope, "items[$T1]", StrategyLLDBEval)
	require.NoError(t, err)
	assert.Equal(t, "30", v.Value())
	assert.Empty(t, frame.exprs)

	_, err = ev.EvaluateExpression(context.Background(), gameObject(), scope, "items[$T1]", StrategyLLDB)
	require.NoError(t, err)
	assert.Equal(t, []string{"items[2]"}, frame.exprs)
}

// TestEvaluator_NilScope tests that evaluation works without a scope.
func TestEvaluator_NilScope(t *testing.T) {
	ev := NewEvaluator(&fakeFrame{})

	v, err := ev.EvaluateExpression(context.Background(), gameObject(), nil, "count + 1", StrategyLLDBEval)
	require.NoError(t, err)
	assert.Equal(t, "42", v.Value())
}

// TestEvaluator_DeclareVariable tests the declaration wrapper and the
// routing of expressions that mention scratch variables.
func TestEvaluator_DeclareVariable(t *testing.T) {
	frame := &fakeFrame{}
	fast := &failingEngine{code: CodeUnknown}
	ev := NewEvaluator(frame, WithFastEngine(fast))
	scope := NewScope()

	err := ev.DeclareVariable(context.Background(), gameObject(), scope, "v", "items[0]")
	require.NoError(t, err)
	require.Equal(t, []string{"auto $v_0 = items[0]; $v_0"}, frame.exprs)

	// Scratch variables live in the interpreter only, so even the
	// fallback strategy goes straight there.
	frame.exprs = nil
	_, err = ev.EvaluateExpression(context.Background(), gameObject(), scope, "v + 1", StrategyLLDBEvalWithFallback)
	require.NoError(t, err)
	assert.Equal(t, []string{"$v_0 + 1"}, frame.exprs)
	assert.Empty(t, fast.exprs)

	// Under the pure fast-engine strategy there is nowhere to run.
	frame.exprs = nil
	_, err = ev.EvaluateExpression(context.Background(), gameObject(), scope, "v + 1", StrategyLLDBEval)
	requireCode(t, err, CodeNotImplemented)
	assert.Empty(t, frame.exprs)
}

// TestEvaluator_DeclareVariable_Failure tests that a failed declaration
// leaves no binding behind.
func TestEvaluator_DeclareVariable_Failure(t *testing.T) {
	frame := &fakeFrame{err: fmt.Errorf("use of undeclared identifier")}
	ev := NewEvaluator(frame)
	scope := NewScope()

	err := ev.DeclareVariable(context.Background(), gameObject(), scope, "v", "bogus")
	require.Error(t, err)

	assert.Equal(t, "v + 1", scope.Substitute("v + 1"))
	assert.False(t, scope.UsesDeclared("v + 1"))
}

// TestEvaluator_DeclareVariable_SubstitutesFirst tests that existing
// bindings apply to the declaration expression itself.
func TestEvaluator_DeclareVariable_SubstitutesFirst(t *testing.T) {
	frame := &fakeFrame{}
	ev := NewEvaluator(frame)
	scope := NewScope()
	scope.Bind("$T1", "3")

	err := ev.DeclareVariable(context.Background(), gameObject(), scope, "w", "$T1 * 2")
	require.NoError(t, err)
	assert.Equal(t, []string{"auto $w_0 = 3 * 2; $w_0"}, frame.exprs)
}

// TestEvaluator_Canceled tests that cancellation is reported as such
// rather than as an evaluation failure.
func TestEvaluator_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ev := NewEvaluator(&fakeFrame{})
	_, err := ev.EvaluateExpression(ctx, gameObject(), NewScope(), "count", StrategyLLDB)
	require.ErrorIs(t, err, context.Canceled)
}
