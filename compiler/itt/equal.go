package itt

// Equal reports whether subtree x of a and subtree y of b have the same shape.
// Node kinds, operators, names and literal values must match and children
// are compared in order. Expression ids and arenas may differ.
func Equal(a *Package, x Expr, b *Package, y Expr) bool {
	if x == Nil || y == Nil {
		return x == y
	}

	switch xn := a.Exprs[x].(type) {
	case Int:
		yn, ok := b.Exprs[y].(Int)
		return ok && xn == yn
	case Float:
		yn, ok := b.Exprs[y].(Float)
		return ok && xn == yn
	case Ident:
		yn, ok := b.Exprs[y].(Ident)
		return ok && xn == yn
	case Bool:
		yn, ok := b.Exprs[y].(Bool)
		return ok && xn == yn
	case Char:
		yn, ok := b.Exprs[y].(Char)
		return ok && xn == yn
	case BinOp:
		yn, ok := b.Exprs[y].(BinOp)

		return ok && xn.Op == yn.Op &&
			Equal(a, xn.L, b, yn.L) &&
			Equal(a, xn.R, b, yn.R)
	case Var:
		yn, ok := b.Exprs[y].(Var)

		return ok && xn.Name == yn.Name && Equal(a, xn.Value, b, yn.Value)
	case Return:
		yn, ok := b.Exprs[y].(Return)

		return ok && Equal(a, xn.Value, b, yn.Value)
	case Block:
		yn, ok := b.Exprs[y].(Block)
		if !ok || len(xn.Stmts) != len(yn.Stmts) {
			return false
		}

		for i := range xn.Stmts {
			if !Equal(a, xn.Stmts[i], b, yn.Stmts[i]) {
				return false
			}
		}

		return true
	case Func:
		yn, ok := b.Exprs[y].(Func)
		if !ok || xn.Name != yn.Name || xn.Ret != yn.Ret || len(xn.Params) != len(yn.Params) {
			return false
		}

		for i := range xn.Params {
			if xn.Params[i] != yn.Params[i] {
				return false
			}
		}

		return Equal(a, xn.Body, b, yn.Body)
	default:
		return false
	}
}
