package natvis

import (
	"strings"
)

// tokenKind discriminates lexer tokens.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokDot      // .
	tokArrow    // ->
	tokLBracket // [
	tokRBracket // ]
	tokLParen   // (
	tokRParen   // )
	tokOp       // any unary/binary operator, text carries which
)

// token is one lexeme of an expression.
type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexer splits an expression into tokens. Identifiers may contain
// '$' so substituted internal tokens lex as single identifiers.
type lexer struct {
	input string
	pos   int
}

// multi-character operators, longest first so ">>" wins over ">".
var multiOps = []string{"->", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||"}

const singleOps = "+-*/%<>!&"

func (l *lexer) next() (token, *EvalError) {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.input[l.pos]

	switch {
	case isIdentStart(c):
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: l.input[start:l.pos], pos: start}, nil

	case isDigit(c):
		// Grab the whole alphanumeric run; the evaluator decides
		// whether it is a valid literal, so "12abc" lexes as one bad
		// number rather than a number and an identifier.
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
		return token{kind: tokNumber, text: l.input[start:l.pos], pos: start}, nil
	}

	for _, op := range multiOps {
		if strings.HasPrefix(l.input[l.pos:], op) {
			l.pos += len(op)
			if op == "->" {
				return token{kind: tokArrow, text: op, pos: start}, nil
			}
			return token{kind: tokOp, text: op, pos: start}, nil
		}
	}

	l.pos++
	switch c {
	case '.':
		return token{kind: tokDot, text: ".", pos: start}, nil
	case '[':
		return token{kind: tokLBracket, text: "[", pos: start}, nil
	case ']':
		return token{kind: tokRBracket, text: "]", pos: start}, nil
	case '(':
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case ')':
		return token{kind: tokRParen, text: ")", pos: start}, nil
	}
	if strings.IndexByte(singleOps, c) >= 0 {
		return token{kind: tokOp, text: string(c), pos: start}, nil
	}

	return token{}, newEvalError(CodeInvalidExpressionSyntax, l.input, "unexpected character %q at offset %d", string(c), start)
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
