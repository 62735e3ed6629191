package back

import (
	"context"
	"fmt"
	"math"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/ittc/compiler/itt"
	"github.com/slowlang/ittc/compiler/set"
)

type (
	// Generator emits one LLVM IR module from one typed package.
	// It is not safe for concurrent use.
	Generator struct {
		*itt.Package

		Module *ir.Module

		fn     *ir.Func
		block  *ir.Block
		params map[string]*ir.Param

		// value is the result of the last visited expression.
		value value.Value

		consumed set.Bitmap
	}

	UnsupportedBinaryOperationError struct {
		Op   itt.Op
		Expr itt.Expr
	}

	UnsupportedTypeError struct {
		Type itt.Type
		Expr itt.Expr
	}

	UnresolvedIdentError struct {
		Name string
		Expr itt.Expr
	}

	IntegerOverflowError struct {
		Value int
		Expr  itt.Expr
	}
)

func New(p *itt.Package) *Generator {
	m := ir.NewModule()
	m.SourceFilename = p.Path

	return &Generator{
		Package:  p,
		Module:   m,
		consumed: set.MakeBitmap(len(p.Exprs)),
	}
}

// GeneratePackage emits every package function. No module is returned on error.
func (g *Generator) GeneratePackage(ctx context.Context) (_ *ir.Module, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: generate package", "name", g.Path, "funcs", len(g.Funcs))
	defer tr.Finish("err", &err)

	for _, id := range g.Funcs {
		err = g.Generate(ctx, id)
		if err != nil {
			if f, ok := g.Exprs[id].(itt.Func); ok {
				return nil, errors.Wrap(err, "func %v", f.Name)
			}

			return nil, err
		}
	}

	if tr.If("dump_ir") {
		tr.Printw("module", "ir", g.Module.String())
	}

	return g.Module, nil
}

// Generate visits expression id at the current insertion point.
// Each expression can be visited only once.
func (g *Generator) Generate(ctx context.Context, id itt.Expr) (err error) {
	if id < 0 || int(id) >= len(g.Exprs) {
		return errors.New("expr %d: out of package", id)
	}

	if g.consumed.IsSet(int(id)) {
		return errors.New("expr %d: visited twice", id)
	}

	g.consumed.Set(int(id))

	switch x := g.Exprs[id].(type) {
	case itt.Int:
		if x.Value < math.MinInt32 || x.Value > math.MaxInt32 {
			return IntegerOverflowError{Value: x.Value, Expr: id}
		}

		g.value = constant.NewInt(types.I32, int64(x.Value))
	case itt.Float:
		g.value = constant.NewFloat(types.Float, float64(x.Value))
	case itt.Bool:
		g.value = constant.NewBool(x.Value)
	case itt.Char:
		g.value = constant.NewInt(types.I8, int64(x.Value))
	case itt.Ident:
		p, ok := g.params[x.Name]
		if !ok {
			return UnresolvedIdentError{Name: x.Name, Expr: id}
		}

		g.value = p
	case itt.BinOp:
		err = g.Generate(ctx, x.L)
		if err != nil {
			return errors.Wrap(err, "lhs")
		}

		l := g.value

		err = g.Generate(ctx, x.R)
		if err != nil {
			return errors.Wrap(err, "rhs")
		}

		r := g.value

		g.value, err = g.binOp(id, x.Op, l, r)
		if err != nil {
			return err
		}
	case itt.Var:
		tlog.SpanFromContext(ctx).V("codegen").Printw("variable binding skipped", "name", x.Name, "id", id)

		g.value = nil
	case itt.Block:
		for i, s := range x.Stmts {
			if g.block != nil && g.block.Term != nil {
				return errors.New("stmt %d: unreachable code", i)
			}

			err = g.Generate(ctx, s)
			if err != nil {
				return errors.Wrap(err, "stmt %d", i)
			}
		}

		g.value = nil
	case itt.Return:
		err = g.ret(ctx, x)
		if err != nil {
			return err
		}

		g.value = nil
	case itt.Func:
		err = g.function(ctx, id, x)
		if err != nil {
			return err
		}

		g.value = nil
	default:
		return errors.New("expr %d: unsupported node: %T", id, x)
	}

	return nil
}

func (g *Generator) function(ctx context.Context, id itt.Expr, x itt.Func) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "generate function", "name", x.Name, "ret", x.Ret, "params", len(x.Params))
	defer tr.Finish("err", &err)

	if g.fn != nil {
		return errors.New("function %v: nested in %v", x.Name, g.fn.Name())
	}

	ret, err := g.retType(id, x.Ret)
	if err != nil {
		return errors.Wrap(err, "return type")
	}

	params := make([]*ir.Param, len(x.Params))
	byName := make(map[string]*ir.Param, len(x.Params))

	for i, p := range x.Params {
		tp, err := g.llvmType(id, p.Type)
		if err != nil {
			return errors.Wrap(err, "param %v", p.Name)
		}

		params[i] = ir.NewParam(p.Name, tp)
		byName[p.Name] = params[i]
	}

	f := g.Module.NewFunc(x.Name, ret, params...)
	f.Linkage = enum.LinkageExternal

	g.fn = f
	g.params = byName
	g.block = f.NewBlock("entry")

	defer func() {
		g.fn, g.block, g.params = nil, nil, nil

		if err != nil {
			g.removeFunc(f)
		}
	}()

	err = g.Generate(ctx, x.Body)
	if err != nil {
		return errors.Wrap(err, "body")
	}

	if g.block.Term != nil {
		return nil
	}

	// ret void would be malformed in a function with a result.
	if !ret.Equal(types.Void) {
		return errors.New("missing return at the end of function returning %v", ret)
	}

	tr.V("codegen").Printw("implicit return added", "block", g.block.Name())

	g.block.NewRet(nil)

	return nil
}

func (g *Generator) ret(ctx context.Context, x itt.Return) (err error) {
	if g.block == nil {
		return errors.New("return outside of function")
	}

	want := g.fn.Sig.RetType

	if x.Value == itt.Nil {
		if !want.Equal(types.Void) {
			return errors.New("return without value in function returning %v", want)
		}

		g.block.NewRet(nil)

		return nil
	}

	err = g.Generate(ctx, x.Value)
	if err != nil {
		return errors.Wrap(err, "return value")
	}

	v := g.value

	if v == nil {
		return errors.New("return value has no value")
	}

	if !v.Type().Equal(want) {
		return errors.New("return %v value in function returning %v", v.Type(), want)
	}

	g.block.NewRet(v)

	return nil
}

func (g *Generator) binOp(id itt.Expr, op itt.Op, l, r value.Value) (value.Value, error) {
	switch op {
	case itt.Add, itt.Sub, itt.Mul, itt.Div, itt.Less, itt.Greater, itt.Eq:
	default:
		return nil, UnsupportedBinaryOperationError{Op: op, Expr: id}
	}

	if g.block == nil {
		return nil, errors.New("binary operation outside of function")
	}

	if l == nil || r == nil {
		return nil, errors.New("operand has no value")
	}

	if !l.Type().Equal(r.Type()) {
		return nil, errors.New("operand types mismatch: %v %v %v", l.Type(), op, r.Type())
	}

	b := g.block

	if types.IsFloat(l.Type()) {
		switch op {
		case itt.Add:
			return b.NewFAdd(l, r), nil
		case itt.Sub:
			return b.NewFSub(l, r), nil
		case itt.Mul:
			return b.NewFMul(l, r), nil
		case itt.Div:
			return b.NewFDiv(l, r), nil
		case itt.Less:
			return b.NewFCmp(enum.FPredOLT, l, r), nil
		case itt.Greater:
			return b.NewFCmp(enum.FPredOGT, l, r), nil
		default:
			return b.NewFCmp(enum.FPredOEQ, l, r), nil
		}
	}

	switch op {
	case itt.Add:
		return b.NewAdd(l, r), nil
	case itt.Sub:
		return b.NewSub(l, r), nil
	case itt.Mul:
		return b.NewMul(l, r), nil
	case itt.Div:
		return b.NewSDiv(l, r), nil
	case itt.Less:
		return b.NewICmp(enum.IPredSLT, l, r), nil
	case itt.Greater:
		return b.NewICmp(enum.IPredSGT, l, r), nil
	default:
		return b.NewICmp(enum.IPredEQ, l, r), nil
	}
}

func (g *Generator) llvmType(id itt.Expr, tp itt.Type) (types.Type, error) {
	switch tp {
	case itt.TypeInt:
		return types.I32, nil
	case itt.TypeFloat:
		return types.Float, nil
	case itt.TypeBool:
		return types.I1, nil
	case itt.TypeChar:
		return types.I8, nil
	default:
		return nil, UnsupportedTypeError{Type: tp, Expr: id}
	}
}

// retType extends llvmType with void, valid only as a function result.
func (g *Generator) retType(id itt.Expr, tp itt.Type) (types.Type, error) {
	if tp == itt.TypeVoid {
		return types.Void, nil
	}

	return g.llvmType(id, tp)
}

func (g *Generator) removeFunc(f *ir.Func) {
	for i, x := range g.Module.Funcs {
		if x == f {
			g.Module.Funcs = append(g.Module.Funcs[:i], g.Module.Funcs[i+1:]...)
			return
		}
	}
}

func (e UnsupportedBinaryOperationError) Error() string {
	return fmt.Sprintf("expr %d: unsupported binary operation: %v", e.Expr, e.Op)
}

func (e UnsupportedTypeError) Error() string {
	return fmt.Sprintf("expr %d: unsupported type: %v", e.Expr, e.Type)
}

func (e UnresolvedIdentError) Error() string {
	return fmt.Sprintf("expr %d: unresolved identifier: %v", e.Expr, e.Name)
}

func (e IntegerOverflowError) Error() string {
	return fmt.Sprintf("expr %d: integer does not fit i32: %d", e.Expr, e.Value)
}
