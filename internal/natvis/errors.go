package natvis

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes expression-evaluation failures. The codes
// mirror what the remote debugger backend reports, so both engines
// fail through the same taxonomy.
type ErrorCode string

const (
	// CodeInvalidExpressionSyntax marks syntax the engine could not
	// parse. The full interpreter may still accept it.
	CodeInvalidExpressionSyntax ErrorCode = "INVALID_EXPRESSION_SYNTAX"

	// CodeInvalidNumericLiteral marks a malformed number.
	CodeInvalidNumericLiteral ErrorCode = "INVALID_NUMERIC_LITERAL"

	// CodeInvalidOperandType marks an operation applied to a value
	// that cannot support it.
	CodeInvalidOperandType ErrorCode = "INVALID_OPERAND_TYPE"

	// CodeUndeclaredIdentifier marks a name that resolved to nothing.
	CodeUndeclaredIdentifier ErrorCode = "UNDECLARED_IDENTIFIER"

	// CodeNotImplemented marks an operation the engine knows it does
	// not support.
	CodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// CodeUnknown marks an internal failure with no better category.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// fallbackTriggers is the explicit classification table: codes that
// mark an engine limitation retry on the fallback interpreter; codes
// that mark a genuine expression error surface directly because the
// interpreter would reject them too.
var fallbackTriggers = map[ErrorCode]bool{
	CodeInvalidExpressionSyntax: true,
	CodeNotImplemented:          true,
	CodeUnknown:                 true,

	CodeInvalidNumericLiteral: false,
	CodeInvalidOperandType:    false,
	CodeUndeclaredIdentifier:  false,
}

// triggersFallback reports whether a fast-engine failure with this
// code should retry on the interpreter. Unlisted codes retry: an
// unclassified failure is by definition not a known expression error.
func triggersFallback(code ErrorCode) bool {
	trigger, known := fallbackTriggers[code]
	return trigger || !known
}

// EvalError is the failure of a single expression evaluation. It
// carries the original expression text and the engine's message, and
// never aborts anything beyond its own call.
type EvalError struct {
	Code       ErrorCode
	Expression string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e.Expression != "" {
		return fmt.Sprintf("%s: evaluating %q: %s", e.Code, e.Expression, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *EvalError) Unwrap() error {
	return e.Err
}

// newEvalError creates an EvalError with a formatted message.
func newEvalError(code ErrorCode, expr, format string, args ...any) *EvalError {
	return &EvalError{Code: code, Expression: expr, Message: fmt.Sprintf(format, args...)}
}

// AsEvalError extracts an EvalError from err, classifying foreign
// errors as CodeUnknown so every failure flows through the taxonomy.
func AsEvalError(err error, expr string) *EvalError {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee
	}
	return &EvalError{Code: CodeUnknown, Expression: expr, Message: err.Error(), Err: err}
}

// ErrorCodeOf returns err's code, or CodeUnknown for foreign errors.
func ErrorCodeOf(err error) ErrorCode {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return CodeUnknown
}
