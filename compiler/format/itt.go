package format

import (
	"github.com/nikandfor/hacked/hfmt"

	"github.com/slowlang/ittc/compiler/itt"
)

// Dump appends an indented view of the typed subtree rooted at id.
func Dump(b []byte, p *itt.Package, id itt.Expr) []byte {
	return dump(b, p, id, 0)
}

func dump(b []byte, p *itt.Package, id itt.Expr, d int) []byte {
	if id == itt.Nil {
		return app(b, d, "nil\n")
	}

	tp := p.Type(id)

	switch x := p.Exprs[id].(type) {
	case itt.Int:
		b = app(b, d, "Int %d : %v\n", x.Value, tp)
	case itt.Float:
		b = app(b, d, "Float %v : %v\n", x.Value, tp)
	case itt.Ident:
		b = app(b, d, "Ident %v : %v\n", x.Name, tp)
	case itt.Bool:
		b = app(b, d, "Bool %v : %v\n", x.Value, tp)
	case itt.Char:
		b = app(b, d, "Char %q : %v\n", x.Value, tp)
	case itt.BinOp:
		b = app(b, d, "BinOp %v : %v\n", x.Op, tp)
		b = dump(b, p, x.L, d+1)
		b = dump(b, p, x.R, d+1)
	case itt.Var:
		b = app(b, d, "Var %v : %v\n", x.Name, tp)
		b = dump(b, p, x.Value, d+1)
	case itt.Return:
		b = app(b, d, "Return\n")

		if x.Value != itt.Nil {
			b = dump(b, p, x.Value, d+1)
		}
	case itt.Block:
		b = app(b, d, "Block %d\n", len(x.Stmts))

		for _, s := range x.Stmts {
			b = dump(b, p, s, d+1)
		}
	case itt.Func:
		b = app(b, d, "Func %v(", x.Name)

		for i, a := range x.Params {
			if i != 0 {
				b = append(b, ", "...)
			}

			b = hfmt.Appendf(b, "%v %v", a.Name, a.Type)
		}

		b = hfmt.Appendf(b, ") %v\n", x.Ret)
		b = dump(b, p, x.Body, d+1)
	default:
		b = app(b, d, "%T\n", x)
	}

	return b
}
