// comply/pkg/expr/parser.go

package expr

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnsupported marks expressions that use constructs outside the supported
// grammar (function calls, attribute access, negation, and so on). The
// grammar is deliberately restricted to literals, identifiers, comparisons
// and boolean combination; anything else must fail closed at parse time.
var ErrUnsupported = errors.New("unsupported expression")

// Expr is a parsed expression, ready for evaluation against a context.
type Expr interface {
	eval(ctx map[string]interface{}) (interface{}, error)
}

type literalNode struct {
	value interface{}
}

type identNode struct {
	name string
}

// boolNode folds two or more operands with a single boolean operator,
// mirroring how "a and b and c" groups under one operator.
type boolNode struct {
	op       string // "and" or "or"
	operands []Expr
}

// compareNode holds a chained comparison: one left operand plus one
// (operator, comparator) pair per link, e.g. "1 < x < 10".
type compareNode struct {
	left        Expr
	ops         []string
	comparators []Expr
}

type parser struct {
	lex *lexer
	tok token
}

// Parse parses an expression under the restricted grammar and returns it for
// later evaluation. Unsupported constructs are rejected here, never at
// evaluation time.
func Parse(expression string) (Expr, error) {
	p := &parser{lex: &lexer{input: expression}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, &SyntaxError{Pos: p.tok.pos, Msg: fmt.Sprintf("unexpected token %q", p.tok.text)}
	}
	return node, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	if !(p.tok.kind == tokIdent && p.tok.text == "or") {
		return left, nil
	}
	operands := []Expr{left}
	for p.tok.kind == tokIdent && p.tok.text == "or" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, right)
	}
	return &boolNode{op: "or", operands: operands}, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if !(p.tok.kind == tokIdent && p.tok.text == "and") {
		return left, nil
	}
	operands := []Expr{left}
	for p.tok.kind == tokIdent && p.tok.text == "and" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		operands = append(operands, right)
	}
	return &boolNode{op: "and", operands: operands}, nil
}

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokOperator {
		return left, nil
	}
	node := &compareNode{left: left}
	for p.tok.kind == tokOperator {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		node.ops = append(node.ops, op)
		node.comparators = append(node.comparators, right)
	}
	return node, nil
}

func (p *parser) parseOperand() (Expr, error) {
	switch p.tok.kind {
	case tokNumber:
		f, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: p.tok.pos, Msg: fmt.Sprintf("invalid number %q", p.tok.text)}
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &literalNode{value: f}, nil
	case tokString:
		s := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &literalNode{value: s}, nil
	case tokIdent:
		name := p.tok.text
		pos := p.tok.pos
		switch name {
		case "and", "or":
			return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected %q", name)}
		case "not":
			return nil, fmt.Errorf("%w: negation is not supported", ErrUnsupported)
		case "true", "True":
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &literalNode{value: true}, nil
		case "false", "False":
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &literalNode{value: false}, nil
		case "none", "None", "null":
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &literalNode{value: nil}, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		// Calls and attribute access would allow arbitrary computation.
		if p.tok.kind == tokLParen {
			return nil, fmt.Errorf("%w: function calls are not supported", ErrUnsupported)
		}
		return &identNode{name: name}, nil
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, &SyntaxError{Pos: p.tok.pos, Msg: "missing closing parenthesis"}
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	case tokEOF:
		return nil, &SyntaxError{Pos: p.tok.pos, Msg: "unexpected end of expression"}
	default:
		return nil, &SyntaxError{Pos: p.tok.pos, Msg: fmt.Sprintf("unexpected token %q", p.tok.text)}
	}
}
