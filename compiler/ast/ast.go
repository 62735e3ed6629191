package ast

type (
	Node interface {
		astNode()
	}

	BinaryOperator int8

	Int struct {
		Value int
	}

	Float struct {
		Value float32
	}

	Ident struct {
		Name string
	}

	BinOp struct {
		Left  Node
		Right Node
		Op    BinaryOperator
	}

	VarDef struct {
		Name  string
		Value Node
	}

	// Return Value is nil for a bare return.
	Return struct {
		Value Node
	}

	Block struct {
		Stmts []Node
	}

	Param struct {
		Name string
		Type string
	}

	Func struct {
		Name       string
		Ret        string
		Visibility string
		Params     []Param
		Body       Block
	}

	// Call Alias is the optional namespace qualifier, empty if absent.
	Call struct {
		Alias string
		Name  string
		Args  []Node
	}

	File struct {
		Name  string
		Funcs []Func
	}
)

const (
	Sub BinaryOperator = iota
	Div
	Add
	Mul
)

func (Int) astNode()    {}
func (Float) astNode()  {}
func (Ident) astNode()  {}
func (BinOp) astNode()  {}
func (VarDef) astNode() {}
func (Return) astNode() {}
func (Block) astNode()  {}
func (Func) astNode()   {}
func (Call) astNode()   {}

func (op BinaryOperator) String() string {
	switch op {
	case Sub:
		return "-"
	case Div:
		return "/"
	case Add:
		return "+"
	case Mul:
		return "*"
	default:
		return "?"
	}
}
