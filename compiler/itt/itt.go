package itt

type (
	Expr int

	Node interface {
		ittNode()
	}

	// Package is an arena of typed expressions.
	// Exprs and EType are indexed by Expr.
	Package struct {
		Path string

		Funcs []Expr

		Exprs []Node
		EType []Type
	}

	Int struct {
		Value int
	}

	Float struct {
		Value float32
	}

	Ident struct {
		Name string
	}

	Bool struct {
		Value bool
	}

	Char struct {
		Value byte
	}

	BinOp struct {
		Op   Op
		L, R Expr
	}

	Var struct {
		Name  string
		Value Expr
	}

	Param struct {
		Name string
		Type Type
	}

	Func struct {
		Name   string
		Params []Param
		Ret    Type

		Body Expr
	}

	Block struct {
		Stmts []Expr
	}

	// Return Value is Nil for a bare return.
	Return struct {
		Value Expr
	}
)

const (
	Nil Expr = -1
)

func (Int) ittNode()    {}
func (Float) ittNode()  {}
func (Ident) ittNode()  {}
func (Bool) ittNode()   {}
func (Char) ittNode()   {}
func (BinOp) ittNode()  {}
func (Var) ittNode()    {}
func (Func) ittNode()   {}
func (Block) ittNode()  {}
func (Return) ittNode() {}

func New(path string) *Package {
	return &Package{Path: path}
}

func (p *Package) Alloc(x Node, tp Type) Expr {
	id := Expr(len(p.Exprs))

	p.Exprs = append(p.Exprs, x)
	p.EType = append(p.EType, tp)

	return id
}

func (p *Package) Int(v int) Expr       { return p.Alloc(Int{Value: v}, TypeInt) }
func (p *Package) Float(v float32) Expr { return p.Alloc(Float{Value: v}, TypeFloat) }
func (p *Package) Ident(n string) Expr  { return p.Alloc(Ident{Name: n}, Unresolved) }
func (p *Package) Bool(v bool) Expr     { return p.Alloc(Bool{Value: v}, TypeBool) }
func (p *Package) Char(v byte) Expr     { return p.Alloc(Char{Value: v}, TypeChar) }

func (p *Package) BinOp(op Op, l, r Expr) Expr {
	return p.Alloc(BinOp{Op: op, L: l, R: r}, Unresolved)
}

func (p *Package) Var(name string, v Expr) Expr {
	return p.Alloc(Var{Name: name, Value: v}, Unresolved)
}

func (p *Package) Block(stmts ...Expr) Expr {
	return p.Alloc(Block{Stmts: stmts}, Unresolved)
}

func (p *Package) Return(v Expr) Expr {
	return p.Alloc(Return{Value: v}, Unresolved)
}

// Func allocates a function and registers it as a package root.
func (p *Package) Func(name string, params []Param, ret Type, body Expr) Expr {
	id := p.Alloc(Func{Name: name, Params: params, Ret: ret, Body: body}, ret)
	p.Funcs = append(p.Funcs, id)

	return id
}

func (p *Package) Type(id Expr) Type {
	if id < 0 || int(id) >= len(p.EType) {
		return Unresolved
	}

	return p.EType[id]
}

func (p *Package) SetType(id Expr, tp Type) {
	p.EType[id] = tp
}
