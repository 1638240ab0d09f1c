package natvis

import (
	"context"
	"strconv"
)

// Engine evaluates one expression against a variable context. The
// fast structural engine and the remote interpreter both satisfy it,
// which is what lets the evaluator swap them mid-pipeline.
type Engine interface {
	Evaluate(ctx context.Context, scope VariableInformation, expr string) (VariableInformation, error)
}

// fastEngine evaluates expressions structurally: parse once, then
// walk the tree against VariableInformation handles without leaving
// the process. Anything it cannot express fails with a code that the
// classification table routes to the interpreter.
type fastEngine struct{}

// Evaluate implements Engine.
func (fastEngine) Evaluate(ctx context.Context, scope VariableInformation, expr string) (VariableInformation, error) {
	root, perr := parse(expr)
	if perr != nil {
		return nil, perr
	}

	result, err := evalNode(ctx, scope, root, expr)
	if err != nil {
		return nil, err
	}

	// Synthesized scalars carry the expression as their display name
	// so watch windows label the result by what was asked.
	if s, ok := result.(*ScalarVariable); ok && s.name == "" {
		return NewScalarVariable(expr, s.value), nil
	}
	return result, nil
}

func evalNode(ctx context.Context, scope VariableInformation, n node, expr string) (VariableInformation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch n := n.(type) {
	case *numberNode:
		v, err := strconv.ParseInt(n.text, 0, 64)
		if err != nil {
			return nil, newEvalError(CodeInvalidNumericLiteral, expr, "invalid numeric literal %q", n.text)
		}
		return &ScalarVariable{value: v}, nil

	case *identNode:
		child, err := scope.Child(n.name)
		if err != nil {
			return nil, AsEvalError(err, expr)
		}
		if child == nil {
			return nil, newEvalError(CodeUndeclaredIdentifier, expr, "undeclared identifier %q", n.name)
		}
		return child, nil

	case *memberNode:
		base, err := evalNode(ctx, scope, n.base, expr)
		if err != nil {
			return nil, err
		}
		if n.arrow {
			if !base.IsPointer() {
				return nil, newEvalError(CodeInvalidOperandType, expr, "'->' applied to non-pointer %q", base.DisplayName())
			}
			if base, err = base.Dereference(); err != nil {
				return nil, AsEvalError(err, expr)
			}
		} else if base.IsPointer() {
			return nil, newEvalError(CodeInvalidOperandType, expr, "'.' applied to pointer %q, use '->'", base.DisplayName())
		}
		child, err := base.Child(n.name)
		if err != nil {
			return nil, AsEvalError(err, expr)
		}
		if child == nil {
			return nil, newEvalError(CodeUndeclaredIdentifier, expr, "no member %q in %q", n.name, base.TypeName())
		}
		return child, nil

	case *indexNode:
		base, err := evalNode(ctx, scope, n.base, expr)
		if err != nil {
			return nil, err
		}
		idxVar, err := evalNode(ctx, scope, n.index, expr)
		if err != nil {
			return nil, err
		}
		idx, err := valueAsInt(idxVar)
		if err != nil {
			return nil, AsEvalError(err, expr)
		}
		elem, err := base.Element(idx)
		if err != nil {
			return nil, AsEvalError(err, expr)
		}
		return elem, nil

	case *unaryNode:
		return evalUnary(ctx, scope, n, expr)

	case *binaryNode:
		return evalBinary(ctx, scope, n, expr)

	default:
		return nil, newEvalError(CodeUnknown, expr, "unhandled expression node")
	}
}

func evalUnary(ctx context.Context, scope VariableInformation, n *unaryNode, expr string) (VariableInformation, error) {
	switch n.op {
	case "&":
		// Taking an address needs the target process; only the
		// interpreter can do it.
		return nil, newEvalError(CodeNotImplemented, expr, "address-of requires the interpreter")

	case "*":
		operand, err := evalNode(ctx, scope, n.operand, expr)
		if err != nil {
			return nil, err
		}
		if !operand.IsPointer() {
			return nil, newEvalError(CodeInvalidOperandType, expr, "'*' applied to non-pointer %q", operand.DisplayName())
		}
		target, err := operand.Dereference()
		if err != nil {
			return nil, AsEvalError(err, expr)
		}
		return target, nil

	default:
		operand, err := evalNode(ctx, scope, n.operand, expr)
		if err != nil {
			return nil, err
		}
		v, err := valueAsInt(operand)
		if err != nil {
			return nil, AsEvalError(err, expr)
		}
		switch n.op {
		case "-":
			return &ScalarVariable{value: -v}, nil
		case "!":
			return &ScalarVariable{value: boolToInt(v == 0)}, nil
		}
		return nil, newEvalError(CodeNotImplemented, expr, "unary %q is not supported", n.op)
	}
}

func evalBinary(ctx context.Context, scope VariableInformation, n *binaryNode, expr string) (VariableInformation, error) {
	lhsVar, err := evalNode(ctx, scope, n.lhs, expr)
	if err != nil {
		return nil, err
	}
	lhs, err := valueAsInt(lhsVar)
	if err != nil {
		return nil, AsEvalError(err, expr)
	}

	// Logical operators short-circuit before the right side is
	// touched, matching C semantics for expressions with side-effect
	// free operands.
	switch n.op {
	case "&&":
		if lhs == 0 {
			return &ScalarVariable{value: 0}, nil
		}
	case "||":
		if lhs != 0 {
			return &ScalarVariable{value: 1}, nil
		}
	}

	rhsVar, err := evalNode(ctx, scope, n.rhs, expr)
	if err != nil {
		return nil, err
	}
	rhs, err := valueAsInt(rhsVar)
	if err != nil {
		return nil, AsEvalError(err, expr)
	}

	switch n.op {
	case "+":
		return &ScalarVariable{value: lhs + rhs}, nil
	case "-":
		return &ScalarVariable{value: lhs - rhs}, nil
	case "*":
		return &ScalarVariable{value: lhs * rhs}, nil
	case "/":
		if rhs == 0 {
			return nil, newEvalError(CodeInvalidOperandType, expr, "division by zero")
		}
		return &ScalarVariable{value: lhs / rhs}, nil
	case "%":
		if rhs == 0 {
			return nil, newEvalError(CodeInvalidOperandType, expr, "division by zero")
		}
		return &ScalarVariable{value: lhs % rhs}, nil
	case "<<":
		return &ScalarVariable{value: lhs << uint64(rhs)}, nil
	case ">>":
		return &ScalarVariable{value: lhs >> uint64(rhs)}, nil
	case "<":
		return &ScalarVariable{value: boolToInt(lhs < rhs)}, nil
	case "<=":
		return &ScalarVariable{value: boolToInt(lhs <= rhs)}, nil
	case ">":
		return &ScalarVariable{value: boolToInt(lhs > rhs)}, nil
	case ">=":
		return &ScalarVariable{value: boolToInt(lhs >= rhs)}, nil
	case "==":
		return &ScalarVariable{value: boolToInt(lhs == rhs)}, nil
	case "!=":
		return &ScalarVariable{value: boolToInt(lhs != rhs)}, nil
	case "&&":
		return &ScalarVariable{value: boolToInt(rhs != 0)}, nil
	case "||":
		return &ScalarVariable{value: boolToInt(rhs != 0)}, nil
	}
	return nil, newEvalError(CodeNotImplemented, expr, "binary %q is not supported", n.op)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
