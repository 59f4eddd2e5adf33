// comply/pkg/expr/lexer.go

package expr

import (
	"fmt"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokOperator // == != < <= > >=
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// SyntaxError reports a malformed expression together with the byte offset
// where lexing or parsing stopped.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Msg)
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.input[l.pos]

	switch {
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case c == '=' || c == '!' || c == '<' || c == '>':
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '=' {
			l.pos++
			return token{kind: tokOperator, text: l.input[start:l.pos], pos: start}, nil
		}
		if c == '<' || c == '>' {
			return token{kind: tokOperator, text: string(c), pos: start}, nil
		}
		if c == '=' {
			return token{}, &SyntaxError{Pos: start, Msg: "assignment is not allowed"}
		}
		return token{}, &SyntaxError{Pos: start, Msg: "unexpected character '!'"}
	case isDigit(c):
		sawDot := false
		for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || (l.input[l.pos] == '.' && !sawDot)) {
			if l.input[l.pos] == '.' {
				sawDot = true
			}
			l.pos++
		}
		return token{kind: tokNumber, text: l.input[start:l.pos], pos: start}, nil
	case c == '\'' || c == '"':
		quote := c
		l.pos++
		for l.pos < len(l.input) && l.input[l.pos] != quote {
			l.pos++
		}
		if l.pos >= len(l.input) {
			return token{}, &SyntaxError{Pos: start, Msg: "unterminated string literal"}
		}
		text := l.input[start+1 : l.pos]
		l.pos++
		return token{kind: tokString, text: text, pos: start}, nil
	case isIdentStart(c):
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: l.input[start:l.pos], pos: start}, nil
	default:
		return token{}, &SyntaxError{Pos: start, Msg: fmt.Sprintf("unexpected character %q", c)}
	}
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
