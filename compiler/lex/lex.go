package lex

import (
	"fmt"

	"tlog.app/go/errors"
)

type (
	Lexer struct {
		text []byte

		i   int
		pos Pos
	}

	UnexpectedCharError struct {
		Pos  Pos
		Char byte
	}
)

var ErrEndOfInput = errors.New("end of input")

func New(text []byte) *Lexer {
	return &Lexer{
		text: text,
		pos:  Pos{Row: 1, Col: 1},
	}
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	i, pos := l.i, l.pos

	t, err := l.Next()

	l.i, l.pos = i, pos

	return t, err
}

// Next consumes and returns the next token.
func (l *Lexer) Next() (t Token, err error) {
	l.skipSpaces()

	if l.i == len(l.text) {
		return Token{Pos: l.pos}, errors.Wrap(ErrEndOfInput, "%v", l.pos)
	}

	st := l.i
	pos := l.pos
	c := l.text[l.i]

	tok := func(k Kind) (Token, error) {
		return Token{Kind: k, Text: string(l.text[st:l.i]), Pos: pos}, nil
	}

	two := func(next byte, k2, k1 Kind) (Token, error) {
		l.advance()

		if l.at(next) {
			l.advance()
			return tok(k2)
		}

		return tok(k1)
	}

	switch c {
	case '+':
		l.advance()
		return tok(Plus)
	case '*':
		l.advance()
		return tok(Star)
	case '/':
		l.advance()
		return tok(Slash)
	case '.':
		l.advance()
		return tok(Dot)
	case ',':
		l.advance()
		return tok(Comma)
	case '{':
		l.advance()
		return tok(LCurly)
	case '}':
		l.advance()
		return tok(RCurly)
	case '(':
		l.advance()
		return tok(LParen)
	case ')':
		l.advance()
		return tok(RParen)
	case ';':
		l.advance()
		return tok(Semicolon)
	case '-':
		return two('>', Arrow, Minus)
	case '=':
		return two('=', DoubleEq, Eq)
	case '<':
		return two('=', LessEq, Less)
	case '>':
		return two('=', GreaterEq, Greater)
	case '!':
		return two('=', NotEq, Bang)
	case '&', '|':
		if l.i+1 < len(l.text) && l.text[l.i+1] == c {
			l.advance()
			l.advance()

			if c == '&' {
				return tok(And)
			}

			return tok(Or)
		}
	case '\'':
		if l.i+2 < len(l.text) && l.text[l.i+2] == '\'' && l.text[l.i+1] != '\n' {
			l.advance()
			l.advance()
			l.advance()

			return tok(Char)
		}
	}

	switch {
	case isDigit(c):
		k := Integer

		for l.i < len(l.text) && (isDigit(l.text[l.i]) || l.text[l.i] == '.') {
			if l.text[l.i] == '.' {
				if k == Float {
					break
				}

				k = Float
			}

			l.advance()
		}

		return tok(k)
	case isLetter(c):
		for l.i < len(l.text) && (isLetter(l.text[l.i]) || isDigit(l.text[l.i])) {
			l.advance()
		}

		if k, ok := reserved[string(l.text[st:l.i])]; ok {
			return tok(k)
		}

		return tok(Ident)
	}

	return Token{Pos: pos}, UnexpectedCharError{Pos: pos, Char: c}
}

// All consumes the rest of the input.
func (l *Lexer) All() (ts []Token, err error) {
	for {
		t, err := l.Next()
		if errors.Is(err, ErrEndOfInput) {
			return ts, nil
		}
		if err != nil {
			return ts, err
		}

		ts = append(ts, t)
	}
}

func (l *Lexer) skipSpaces() {
	for l.i < len(l.text) {
		switch l.text[l.i] {
		case ' ', '\t', '\n', '\r':
			l.advance()
			continue
		}

		break
	}
}

func (l *Lexer) advance() {
	if l.text[l.i] == '\n' {
		l.pos.Row++
		l.pos.Col = 1
	} else {
		l.pos.Col++
	}

	l.i++
}

func (l *Lexer) at(c byte) bool {
	return l.i < len(l.text) && l.text[l.i] == c
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func (e UnexpectedCharError) Error() string {
	return fmt.Sprintf("%v: unexpected character: %q", e.Pos, e.Char)
}
