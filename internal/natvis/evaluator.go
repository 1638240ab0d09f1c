package natvis

import (
	"context"
	"fmt"
	"log/slog"
)

// Strategy selects which engine(s) an evaluation may use. It is a
// per-call choice; callers change it freely between calls.
type Strategy int

const (
	// StrategyLLDB uses only the remote interpreter.
	StrategyLLDB Strategy = iota

	// StrategyLLDBEval uses only the fast engine; failures surface
	// directly with no retry.
	StrategyLLDBEval

	// StrategyLLDBEvalWithFallback tries the fast engine first and
	// retries on the interpreter when the failure marks an engine
	// limitation rather than an expression error.
	StrategyLLDBEvalWithFallback
)

// String returns the strategy's configuration name.
func (s Strategy) String() string {
	switch s {
	case StrategyLLDB:
		return "lldb"
	case StrategyLLDBEval:
		return "lldb-eval"
	case StrategyLLDBEvalWithFallback:
		return "lldb-eval-with-fallback"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// interpreterEngine adapts a RemoteFrame to the Engine interface.
type interpreterEngine struct {
	frame RemoteFrame
}

// Evaluate implements Engine with one interpreter round trip.
func (e interpreterEngine) Evaluate(ctx context.Context, scope VariableInformation, expr string) (VariableInformation, error) {
	result, err := e.frame.EvaluateExpression(ctx, scope, expr)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, AsEvalError(err, expr)
	}
	return result, nil
}

// Evaluator runs the substitute/select/evaluate/classify pipeline for
// expression evaluation and scratch-variable declaration.
type Evaluator struct {
	fast   Engine
	interp Engine
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithFastEngine replaces the structural engine. Tests use this to
// script fast-engine failures.
func WithFastEngine(e Engine) EvaluatorOption {
	return func(ev *Evaluator) { ev.fast = e }
}

// NewEvaluator creates an evaluator whose fallback engine is the
// given remote frame.
func NewEvaluator(frame RemoteFrame, opts ...EvaluatorOption) *Evaluator {
	ev := &Evaluator{
		fast:   fastEngine{},
		interp: interpreterEngine{frame: frame},
	}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

// EvaluateExpression evaluates expr against varInfo under the given
// scope and strategy. Failures return an *EvalError carrying the
// original expression and the engine's message, and are also recorded
// in the diagnostic log; they never affect other evaluations.
func (ev *Evaluator) EvaluateExpression(
	ctx context.Context,
	varInfo VariableInformation,
	scope *Scope,
	expr string,
	strategy Strategy,
) (VariableInformation, error) {
	substituted := expr
	if scope != nil {
		substituted = scope.Substitute(expr)
	}

	// Scratch variables exist only inside the interpreter, so the
	// fast engine is out regardless of strategy. Under the pure
	// fast-engine strategy that leaves nothing to run.
	if scope != nil && scope.UsesDeclared(substituted) {
		if strategy == StrategyLLDBEval {
			err := newEvalError(CodeNotImplemented, expr,
				"expression references a scratch variable, which requires the interpreter, and fallback is disabled")
			ev.logFailure(err, strategy)
			return nil, err
		}
		return ev.run(ctx, ev.interp, varInfo, substituted, expr, strategy)
	}

	switch strategy {
	case StrategyLLDB:
		return ev.run(ctx, ev.interp, varInfo, substituted, expr, strategy)

	case StrategyLLDBEval:
		return ev.run(ctx, ev.fast, varInfo, substituted, expr, strategy)

	case StrategyLLDBEvalWithFallback:
		result, err := ev.fast.Evaluate(ctx, varInfo, substituted)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		code := ErrorCodeOf(err)
		if !triggersFallback(code) {
			ee := AsEvalError(err, expr)
			ev.logFailure(ee, strategy)
			return nil, ee
		}
		slog.Debug("fast engine hit a limitation, retrying on interpreter",
			"expression", expr, "code", string(code))
		return ev.run(ctx, ev.interp, varInfo, substituted, expr, strategy)

	default:
		err := newEvalError(CodeUnknown, expr, "unknown evaluation strategy %v", strategy)
		ev.logFailure(err, strategy)
		return nil, err
	}
}

// DeclareVariable declares a scratch variable in the interpreter by
// evaluating an "auto $tok = <expr>; $tok" wrapper, then records the
// binding so later expressions can refer to name. Scratch variables
/// always go through the interpreter: the fast engine has no notion of
// them.
func (ev *Evaluator) DeclareVariable(
	ctx context.Context,
	varInfo VariableInformation,
	scope *Scope,
	name, expr string,
) error {
	substituted := scope.Substitute(expr)
	token := scope.nextToken(name)
	wrapper := fmt.Sprintf("auto %s = %s; %s", token, substituted, token)

	if _, err := ev.interp.Evaluate(ctx, varInfo, wrapper); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ee := AsEvalError(err, expr)
		ev.logFailure(ee, StrategyLLDB)
		return ee
	}

	scope.bindDeclared(name, token)
	slog.Debug("scratch variable declared", "name", name, "token", token)
	return nil
}

// run evaluates on one engine and classifies the outcome.
func (ev *Evaluator) run(ctx context.Context, engine Engine, varInfo VariableInformation, substituted, expr string, strategy Strategy) (VariableInformation, error) {
	result, err := engine.Evaluate(ctx, varInfo, substituted)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		ee := AsEvalError(err, expr)
		ev.logFailure(ee, strategy)
		return nil, ee
	}
	return result, nil
}

func (ev *Evaluator) logFailure(err *EvalError, strategy Strategy) {
	slog.Debug("expression evaluation failed",
		"expression", err.Expression,
		"code", string(err.Code),
		"message", err.Message,
		"strategy", strategy.String(),
	)
}
