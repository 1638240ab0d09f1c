package natvis

// The expression AST. Nodes are transient: built per evaluation call,
// walked once by the fast engine, then discarded.

type node interface{}

type numberNode struct {
	text string
}

type identNode struct {
	name string
}

type memberNode struct {
	base  node
	name  string
	arrow bool // true for ->, false for .
}

type indexNode struct {
	base  node
	index node
}

type unaryNode struct {
	op      string
	operand node
}

type binaryNode struct {
	op  string
	lhs node
	rhs node
}

// binaryPrecedence orders binary operators loosest-binding first,
// following C.
var binaryPrecedence = [][]string{
	{"||"},
	{"&&"},
	{"==", "!="},
	{"<", "<=", ">", ">="},
	{"<<", ">>"},
	{"+", "-"},
	{"*", "/", "%"},
}

// parser is a recursive-descent parser over the lexer's tokens with
// one token of lookahead.
type parser struct {
	lex  lexer
	tok  token
	expr string
}

// parse builds the AST for a full expression. Trailing input after a
// complete expression is a syntax error.
func parse(expr string) (node, *EvalError) {
	p := &parser{lex: lexer{input: expr}, expr: expr}
	if err := p.advance(); err != nil {
		return nil, err
	}
	root, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, newEvalError(CodeInvalidExpressionSyntax, expr, "unexpected %q at offset %d", p.tok.text, p.tok.pos)
	}
	return root, nil
}

func (p *parser) advance() *EvalError {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// parseBinary implements precedence climbing over binaryPrecedence.
func (p *parser) parseBinary(level int) (node, *EvalError) {
	if level >= len(binaryPrecedence) {
		return p.parseUnary()
	}

	lhs, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && containsOp(binaryPrecedence[level], p.tok.text) {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		lhs = &binaryNode{op: op, lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

func (p *parser) parseUnary() (node, *EvalError) {
	if p.tok.kind == tokOp {
		switch p.tok.text {
		case "-", "!", "*", "&":
			op := p.tok.text
			if err := p.advance(); err != nil {
				return nil, err
			}
			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return &unaryNode{op: op, operand: operand}, nil
		}
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary followed by any chain of member
// accesses and index operations.
func (p *parser) parsePostfix() (node, *EvalError) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.tok.kind {
		case tokDot, tokArrow:
			arrow := p.tok.kind == tokArrow
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.kind != tokIdent {
				return nil, newEvalError(CodeInvalidExpressionSyntax, p.expr, "expected member name at offset %d", p.tok.pos)
			}
			base = &memberNode{base: base, name: p.tok.text, arrow: arrow}
			if err := p.advance(); err != nil {
				return nil, err
			}

		case tokLBracket:
			if err := p.advance(); err != nil {
				return nil, err
			}
			index, err := p.parseBinary(0)
			if err != nil {
				return nil, err
			}
			if p.tok.kind != tokRBracket {
				return nil, newEvalError(CodeInvalidExpressionSyntax, p.expr, "expected ']' at offset %d", p.tok.pos)
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			base = &indexNode{base: base, index: index}

		default:
			return base, nil
		}
	}
}

func (p *parser) parsePrimary() (node, *EvalError) {
	switch p.tok.kind {
	case tokNumber:
		n := &numberNode{text: p.tok.text}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return n, nil

	case tokIdent:
		n := &identNode{name: p.tok.text}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return n, nil

	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, newEvalError(CodeInvalidExpressionSyntax, p.expr, "expected ')' at offset %d", p.tok.pos)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, newEvalError(CodeInvalidExpressionSyntax, p.expr, "unexpected %q at offset %d", p.tok.text, p.tok.pos)
	}
}

func containsOp(ops []string, op string) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}
