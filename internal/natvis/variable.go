package natvis

import (
	"context"
	"fmt"
	"strconv"
)

// VariableInformation is the handle contract the debugger backend
// provides for one variable. The evaluator queries it and derives new
// views from it; it never mutates a handle's identity.
type VariableInformation interface {
	// DisplayName is the name the variable is shown under.
	DisplayName() string

	// TypeName is the variable's declared type.
	TypeName() string

	// Value is the variable's formatted value.
	Value() string

	// IsPointer reports whether the variable holds a pointer.
	IsPointer() bool

	// Child returns the named member, or (nil, nil) when the
	// variable has no such member.
	Child(name string) (VariableInformation, error)

	// Element returns the i-th element of an array or the i-th
	// object behind a pointer.
	Element(i int64) (VariableInformation, error)

	// Dereference returns the pointee of a pointer variable.
	Dereference() (VariableInformation, error)

	// Assign stores a new value into the variable.
	Assign(value string) error
}

// RemoteFrame is the backend contract for full-interpreter
// evaluation: one round trip per expression against a variable or
// frame context. Failures come back as *EvalError so both engines
// share the error taxonomy.
type RemoteFrame interface {
	EvaluateExpression(ctx context.Context, scope VariableInformation, expr string) (VariableInformation, error)
}

// ScalarVariable is a synthesized integer result, the derived view
// the fast engine produces for literals and arithmetic.
type ScalarVariable struct {
	name  string
	value int64
}

// NewScalarVariable creates a synthesized integer variable.
func NewScalarVariable(name string, value int64) *ScalarVariable {
	return &ScalarVariable{name: name, value: value}
}

// DisplayName implements VariableInformation.
func (v *ScalarVariable) DisplayName() string { return v.name }

// TypeName implements VariableInformation.
func (v *ScalarVariable) TypeName() string { return "long" }

// Value implements VariableInformation.
func (v *ScalarVariable) Value() string { return strconv.FormatInt(v.value, 10) }

// IsPointer implements VariableInformation.
func (v *ScalarVariable) IsPointer() bool { return false }

// Child implements VariableInformation; scalars have no members.
func (v *ScalarVariable) Child(name string) (VariableInformation, error) { return nil, nil }

// Element implements VariableInformation.
func (v *ScalarVariable) Element(i int64) (VariableInformation, error) {
	return nil, newEvalError(CodeInvalidOperandType, "", "cannot index a scalar")
}

// Dereference implements VariableInformation.
func (v *ScalarVariable) Dereference() (VariableInformation, error) {
	return nil, newEvalError(CodeInvalidOperandType, "", "cannot dereference a scalar")
}

// Assign implements VariableInformation; synthesized results have no
// storage to assign into.
func (v *ScalarVariable) Assign(value string) error {
	return fmt.Errorf("cannot assign to synthesized value %q", v.name)
}

// valueAsInt interprets a variable's formatted value as an integer,
// accepting the usual C bases (decimal, 0x hex, 0 octal).
func valueAsInt(v VariableInformation) (int64, error) {
	n, err := strconv.ParseInt(v.Value(), 0, 64)
	if err != nil {
		return 0, newEvalError(CodeInvalidOperandType, "", "value %q of %q is not numeric", v.Value(), v.DisplayName())
	}
	return n, nil
}
