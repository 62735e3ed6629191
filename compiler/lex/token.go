package lex

import (
	"fmt"

	"tlog.app/go/tlog/tlwire"
)

type (
	Kind int

	// Pos is a 1-based source position.
	Pos struct {
		Row int
		Col int
	}

	Token struct {
		Kind Kind
		Text string
		Pos  Pos
	}
)

const (
	Plus Kind = iota
	Minus
	Slash
	Star
	DoubleEq
	Eq
	Less
	Greater
	LessEq
	GreaterEq
	NotEq
	Dot
	Bang
	Comma
	Ident

	Integer
	Float
	Char
	Bool

	Fn
	IntType
	FloatType
	CharType
	BoolType

	LCurly
	RCurly

	LParen
	RParen

	Semicolon

	Ret

	If
	Else

	And
	Or

	Arrow

	Pub
)

var kindNames = [...]string{
	Plus:      "+",
	Minus:     "-",
	Slash:     "/",
	Star:      "*",
	DoubleEq:  "==",
	Eq:        "=",
	Less:      "<",
	Greater:   ">",
	LessEq:    "<=",
	GreaterEq: ">=",
	NotEq:     "!=",
	Dot:       ".",
	Bang:      "!",
	Comma:     ",",
	Ident:     "identifier",
	Integer:   "integer",
	Float:     "float",
	Char:      "char",
	Bool:      "bool",
	Fn:        "fn",
	IntType:   "Int",
	FloatType: "Float",
	CharType:  "Char",
	BoolType:  "Bool",
	LCurly:    "{",
	RCurly:    "}",
	LParen:    "(",
	RParen:    ")",
	Semicolon: ";",
	Ret:       "ret",
	If:        "if",
	Else:      "else",
	And:       "&&",
	Or:        "||",
	Arrow:     "->",
	Pub:       "pub",
}

var reserved = map[string]Kind{
	"fn":    Fn,
	"pub":   Pub,
	"ret":   Ret,
	"if":    If,
	"else":  Else,
	"Int":   IntType,
	"Float": FloatType,
	"Char":  CharType,
	"Bool":  BoolType,
	"true":  Bool,
	"false": Bool,
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Col)
}

func (t Token) String() string {
	return fmt.Sprintf("%v %v %q", t.Pos, t.Kind, t.Text)
}

func (t Token) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 4)

	b = e.AppendString(b, "kind")
	b = e.AppendString(b, t.Kind.String())
	b = e.AppendString(b, "text")
	b = e.AppendString(b, t.Text)
	b = e.AppendKeyInt(b, "row", t.Pos.Row)
	b = e.AppendKeyInt(b, "col", t.Pos.Col)

	return b
}
