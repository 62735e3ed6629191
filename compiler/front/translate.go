package front

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/slowlang/ittc/compiler/ast"
	"github.com/slowlang/ittc/compiler/format"
	"github.com/slowlang/ittc/compiler/itt"
)

type (
	// Translator lowers AST into the typed tree of a single package.
	// It is not safe for concurrent use.
	Translator struct {
		*itt.Package
	}

	UnknownOperatorError struct {
		Op ast.BinaryOperator
	}

	NotImplementedError struct {
		Node ast.Node
	}
)

func New(p *itt.Package) *Translator {
	return &Translator{Package: p}
}

func (t *Translator) TranslateFile(ctx context.Context, f *ast.File) (_ *itt.Package, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "front: translate file", "name", f.Name, "funcs", len(f.Funcs))
	defer tr.Finish("err", &err)

	for _, fn := range f.Funcs {
		_, err = t.Translate(ctx, fn)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", fn.Name)
		}
	}

	if tr.If("dump_itt") {
		for _, id := range t.Funcs {
			tr.Printw("itt", "id", id, "tree", string(format.Dump(nil, t.Package, id)))
		}
	}

	return t.Package, nil
}

// Translate allocates the typed equivalent of x in the package and returns its id.
// Children are translated depth first, left to right.
func (t *Translator) Translate(ctx context.Context, x ast.Node) (id itt.Expr, err error) {
	tlog.SpanFromContext(ctx).V("translate").Printw("translate", "node", tlog.NextAsType, x, "from", loc.Caller(1))

	switch x := x.(type) {
	case ast.Int:
		return t.Int(x.Value), nil
	case ast.Float:
		return t.Float(x.Value), nil
	case ast.Ident:
		return t.Ident(x.Name), nil
	case ast.BinOp:
		l, err := t.Translate(ctx, x.Left)
		if err != nil {
			return itt.Nil, errors.Wrap(err, "lhs")
		}

		r, err := t.Translate(ctx, x.Right)
		if err != nil {
			return itt.Nil, errors.Wrap(err, "rhs")
		}

		op, err := MapOperator(x.Op)
		if err != nil {
			return itt.Nil, err
		}

		return t.BinOp(op, l, r), nil
	case ast.VarDef:
		v, err := t.Translate(ctx, x.Value)
		if err != nil {
			return itt.Nil, errors.Wrap(err, "var %v", x.Name)
		}

		return t.Var(x.Name, v), nil
	case ast.Return:
		if x.Value == nil {
			return t.Return(itt.Nil), nil
		}

		v, err := t.Translate(ctx, x.Value)
		if err != nil {
			return itt.Nil, errors.Wrap(err, "return value")
		}

		return t.Return(v), nil
	case ast.Block:
		return t.translateBlock(ctx, x)
	case ast.Func:
		return t.translateFunc(ctx, x)
	case ast.Call:
		return itt.Nil, NotImplementedError{Node: x}
	default:
		return itt.Nil, errors.New("unsupported node: %T", x)
	}
}

func (t *Translator) translateBlock(ctx context.Context, b ast.Block) (itt.Expr, error) {
	stmts := make([]itt.Expr, len(b.Stmts))

	for i, s := range b.Stmts {
		id, err := t.Translate(ctx, s)
		if err != nil {
			return itt.Nil, errors.Wrap(err, "stmt %d", i)
		}

		stmts[i] = id
	}

	return t.Block(stmts...), nil
}

func (t *Translator) translateFunc(ctx context.Context, f ast.Func) (id itt.Expr, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "translate function", "name", f.Name, "ret", f.Ret, "visibility", f.Visibility)
	defer tr.Finish("id", &id, "err", &err)

	params := make([]itt.Param, len(f.Params))

	for i, p := range f.Params {
		params[i] = itt.Param{
			Name: p.Name,
			Type: MapType(p.Type),
		}

		if params[i].Type == itt.Unresolved {
			tr.V("translate_types").Printw("unresolved param type", "param", p.Name, "type", p.Type)
		}
	}

	body, err := t.translateBlock(ctx, f.Body)
	if err != nil {
		return itt.Nil, errors.Wrap(err, "body")
	}

	return t.Func(f.Name, params, MapType(f.Ret), body), nil
}

// MapOperator maps a surface operator to its typed tree counterpart.
func MapOperator(op ast.BinaryOperator) (itt.Op, error) {
	switch op {
	case ast.Add:
		return itt.Add, nil
	case ast.Sub:
		return itt.Sub, nil
	case ast.Div:
		return itt.Div, nil
	case ast.Mul:
		return itt.Mul, nil
	default:
		return 0, UnknownOperatorError{Op: op}
	}
}

// MapType resolves a declared type name. Unknown names are Unresolved, not errors.
func MapType(name string) itt.Type {
	switch name {
	case "int":
		return itt.TypeInt
	case "float":
		return itt.TypeFloat
	case "void":
		return itt.TypeVoid
	case "bool":
		return itt.TypeBool
	case "char":
		return itt.TypeChar
	default:
		return itt.Unresolved
	}
}

func (e UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown operator: %d", int(e.Op))
}

func (e NotImplementedError) Error() string {
	switch x := e.Node.(type) {
	case ast.Call:
		if x.Alias != "" {
			return fmt.Sprintf("not implemented: call %v.%v", x.Alias, x.Name)
		}

		return fmt.Sprintf("not implemented: call %v", x.Name)
	default:
		return fmt.Sprintf("not implemented: %T", x)
	}
}
