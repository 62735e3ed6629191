package itt

import "tlog.app/go/tlog/tlwire"

type (
	Type int8

	Op int8
)

// Unresolved is the zero Type: not typed yet, not an error.
const (
	Unresolved Type = iota
	TypeInt
	TypeChar
	TypeBool
	TypeVoid
	TypeFloat
	TypeIdent
)

const (
	Add Op = iota
	Sub
	Mul
	Div
	And
	Or
	Less
	Greater
	Eq
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "Int"
	case TypeChar:
		return "Char"
	case TypeBool:
		return "Bool"
	case TypeVoid:
		return "Void"
	case TypeFloat:
		return "Float"
	case TypeIdent:
		return "Identifier"
	case Unresolved:
		return "Unresolved"
	default:
		return "Unknown"
	}
}

func (t Type) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, t.String())
}

func (op Op) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case And:
		return "&&"
	case Or:
		return "||"
	case Less:
		return "<"
	case Greater:
		return ">"
	case Eq:
		return "=="
	default:
		return "?"
	}
}

func (op Op) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, op.String())
}
