package back

import (
	"context"
	"math"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/ittc/compiler/itt"
)

func params(tp itt.Type) []itt.Param {
	return []itt.Param{
		{Name: "a", Type: tp},
		{Name: "b", Type: tp},
	}
}

func generate(t *testing.T, p *itt.Package, id itt.Expr) *Generator {
	t.Helper()

	g := New(p)

	err := g.Generate(context.Background(), id)
	require.NoError(t, err)

	return g
}

func TestLiterals(t *testing.T) {
	p := itt.New("lit")

	i := p.Int(5)
	f := p.Float(2.5)
	b := p.Bool(true)
	c := p.Char('x')

	g := New(p)
	ctx := context.Background()

	require.NoError(t, g.Generate(ctx, i))
	ci, ok := g.value.(*constant.Int)
	require.True(t, ok, "got %T", g.value)
	assert.Equal(t, types.I32, ci.Typ)
	assert.Equal(t, int64(5), ci.X.Int64())

	require.NoError(t, g.Generate(ctx, f))
	cf, ok := g.value.(*constant.Float)
	require.True(t, ok, "got %T", g.value)
	assert.Equal(t, types.Float, cf.Typ)

	require.NoError(t, g.Generate(ctx, b))
	cb, ok := g.value.(*constant.Int)
	require.True(t, ok, "got %T", g.value)
	assert.Equal(t, types.I1, cb.Typ)
	assert.Equal(t, int64(1), cb.X.Int64())

	require.NoError(t, g.Generate(ctx, c))
	cc, ok := g.value.(*constant.Int)
	require.True(t, ok, "got %T", g.value)
	assert.Equal(t, types.I8, cc.Typ)
	assert.Equal(t, int64('x'), cc.X.Int64())

	assert.Empty(t, g.Module.Funcs)
}

func TestIntegerInstructions(t *testing.T) {
	for op, check := range map[itt.Op]func(t *testing.T, inst ir.Instruction, a, b *ir.Param){
		itt.Add: func(t *testing.T, inst ir.Instruction, a, b *ir.Param) {
			x, ok := inst.(*ir.InstAdd)
			require.True(t, ok, "got %T", inst)
			assert.Equal(t, a, x.X)
			assert.Equal(t, b, x.Y)
		},
		itt.Sub: func(t *testing.T, inst ir.Instruction, a, b *ir.Param) {
			x, ok := inst.(*ir.InstSub)
			require.True(t, ok, "got %T", inst)
			assert.Equal(t, a, x.X)
			assert.Equal(t, b, x.Y)
		},
		itt.Mul: func(t *testing.T, inst ir.Instruction, a, b *ir.Param) {
			_, ok := inst.(*ir.InstMul)
			require.True(t, ok, "got %T", inst)
		},
		itt.Div: func(t *testing.T, inst ir.Instruction, a, b *ir.Param) {
			x, ok := inst.(*ir.InstSDiv)
			require.True(t, ok, "got %T", inst)
			assert.Equal(t, a, x.X)
			assert.Equal(t, b, x.Y)
		},
	} {
		p := itt.New("ops")
		id := p.Func("f", params(itt.TypeInt), itt.TypeInt, p.Block(
			p.Return(p.BinOp(op, p.Ident("a"), p.Ident("b"))),
		))

		g := generate(t, p, id)

		require.Len(t, g.Module.Funcs, 1, "op %v", op)
		f := g.Module.Funcs[0]
		require.Len(t, f.Blocks, 1)
		require.Len(t, f.Blocks[0].Insts, 1)

		check(t, f.Blocks[0].Insts[0], f.Params[0], f.Params[1])

		ret, ok := f.Blocks[0].Term.(*ir.TermRet)
		require.True(t, ok, "got %T", f.Blocks[0].Term)
		assert.Equal(t, f.Blocks[0].Insts[0], ret.X)
	}
}

func TestComparisons(t *testing.T) {
	for op, pred := range map[itt.Op]enum.IPred{
		itt.Less:    enum.IPredSLT,
		itt.Greater: enum.IPredSGT,
		itt.Eq:      enum.IPredEQ,
	} {
		p := itt.New("cmp")
		id := p.Func("f", params(itt.TypeInt), itt.TypeBool, p.Block(
			p.Return(p.BinOp(op, p.Ident("a"), p.Ident("b"))),
		))

		g := generate(t, p, id)
		f := g.Module.Funcs[0]

		x, ok := f.Blocks[0].Insts[0].(*ir.InstICmp)
		require.True(t, ok, "got %T", f.Blocks[0].Insts[0])
		assert.Equal(t, pred, x.Pred)
		assert.Equal(t, types.I1, x.Type())
		assert.Equal(t, types.I1, f.Sig.RetType)
	}
}

func TestFloatInstructions(t *testing.T) {
	p := itt.New("float")
	id := p.Func("f", params(itt.TypeFloat), itt.TypeBool, p.Block(
		p.Return(p.BinOp(itt.Less,
			p.BinOp(itt.Add, p.Ident("a"), p.Ident("b")),
			p.Float(1.5),
		)),
	))

	g := generate(t, p, id)
	f := g.Module.Funcs[0]

	require.Len(t, f.Blocks[0].Insts, 2)

	_, ok := f.Blocks[0].Insts[0].(*ir.InstFAdd)
	assert.True(t, ok, "got %T", f.Blocks[0].Insts[0])

	cmp, ok := f.Blocks[0].Insts[1].(*ir.InstFCmp)
	require.True(t, ok, "got %T", f.Blocks[0].Insts[1])
	assert.Equal(t, enum.FPredOLT, cmp.Pred)
}

func TestOperandOrder(t *testing.T) {
	p := itt.New("order")
	id := p.Func("f", nil, itt.TypeInt, p.Block(
		p.Return(p.BinOp(itt.Sub, p.BinOp(itt.Add, p.Int(2), p.Int(3)), p.Int(1))),
	))

	g := generate(t, p, id)
	f := g.Module.Funcs[0]

	require.Len(t, f.Blocks[0].Insts, 2)

	add, ok := f.Blocks[0].Insts[0].(*ir.InstAdd)
	require.True(t, ok, "got %T", f.Blocks[0].Insts[0])
	assert.Equal(t, int64(2), add.X.(*constant.Int).X.Int64())
	assert.Equal(t, int64(3), add.Y.(*constant.Int).X.Int64())

	sub, ok := f.Blocks[0].Insts[1].(*ir.InstSub)
	require.True(t, ok, "got %T", f.Blocks[0].Insts[1])
	assert.Equal(t, add, sub.X)
	assert.Equal(t, int64(1), sub.Y.(*constant.Int).X.Int64())
}

func TestImplicitReturn(t *testing.T) {
	p := itt.New("implicit")
	id := p.Func("main", params(itt.TypeInt), itt.TypeVoid, p.Block(
		p.Var("x", p.Int(1)),
		p.BinOp(itt.Mul, p.Ident("a"), p.Ident("b")),
	))

	g := generate(t, p, id)

	require.Len(t, g.Module.Funcs, 1)
	f := g.Module.Funcs[0]

	assert.Equal(t, "main", f.Name())
	assert.Equal(t, enum.LinkageExternal, f.Linkage)
	assert.Equal(t, types.Void, f.Sig.RetType)

	last := f.Blocks[len(f.Blocks)-1]
	ret, ok := last.Term.(*ir.TermRet)
	require.True(t, ok, "got %T", last.Term)
	assert.Nil(t, ret.X)
}

func TestExplicitReturn(t *testing.T) {
	p := itt.New("explicit")
	id := p.Func("f", nil, itt.TypeInt, p.Block(
		p.Return(p.BinOp(itt.Add, p.Int(2), p.Int(3))),
	))

	g := generate(t, p, id)
	f := g.Module.Funcs[0]

	require.Len(t, f.Blocks, 1)
	require.Len(t, f.Blocks[0].Insts, 1)

	ret, ok := f.Blocks[0].Term.(*ir.TermRet)
	require.True(t, ok, "got %T", f.Blocks[0].Term)
	assert.Equal(t, f.Blocks[0].Insts[0], ret.X)
}

func TestBareReturnInVoidFunction(t *testing.T) {
	p := itt.New("bare")
	id := p.Func("f", nil, itt.TypeVoid, p.Block(p.Return(itt.Nil)))

	g := generate(t, p, id)

	ret, ok := g.Module.Funcs[0].Blocks[0].Term.(*ir.TermRet)
	require.True(t, ok)
	assert.Nil(t, ret.X)
}

func TestUnsupportedBinaryOperation(t *testing.T) {
	for _, op := range []itt.Op{itt.And, itt.Or} {
		p := itt.New("logic")
		bin := p.BinOp(op, p.Bool(true), p.Bool(false))
		id := p.Func("f", nil, itt.TypeBool, p.Block(p.Return(bin)))

		g := New(p)

		err := g.Generate(context.Background(), id)

		var uerr UnsupportedBinaryOperationError
		require.ErrorAs(t, err, &uerr, "op %v", op)
		assert.Equal(t, op, uerr.Op)
		assert.Equal(t, bin, uerr.Expr)

		assert.Empty(t, g.Module.Funcs, "op %v", op)
	}
}

func TestUnsupportedType(t *testing.T) {
	for name, build := range map[string]func(p *itt.Package) itt.Expr{
		"param": func(p *itt.Package) itt.Expr {
			return p.Func("f", []itt.Param{{Name: "m", Type: itt.Unresolved}}, itt.TypeVoid, p.Block())
		},
		"void_param": func(p *itt.Package) itt.Expr {
			return p.Func("f", []itt.Param{{Name: "m", Type: itt.TypeVoid}}, itt.TypeVoid, p.Block())
		},
		"ret": func(p *itt.Package) itt.Expr {
			return p.Func("f", nil, itt.TypeIdent, p.Block())
		},
	} {
		p := itt.New("types")
		id := build(p)

		g := New(p)

		err := g.Generate(context.Background(), id)

		var uerr UnsupportedTypeError
		require.ErrorAs(t, err, &uerr, "case %v", name)
		assert.Equal(t, id, uerr.Expr)
		assert.Empty(t, g.Module.Funcs, "case %v", name)
	}
}

func TestFunctionErrors(t *testing.T) {
	for name, build := range map[string]func(p *itt.Package) itt.Expr{
		"missing_return": func(p *itt.Package) itt.Expr {
			return p.Func("f", nil, itt.TypeInt, p.Block(p.Int(1)))
		},
		"return_without_value": func(p *itt.Package) itt.Expr {
			return p.Func("f", nil, itt.TypeInt, p.Block(p.Return(itt.Nil)))
		},
		"value_in_void": func(p *itt.Package) itt.Expr {
			return p.Func("f", nil, itt.TypeVoid, p.Block(p.Return(p.Int(1))))
		},
		"wrong_return_type": func(p *itt.Package) itt.Expr {
			return p.Func("f", nil, itt.TypeInt, p.Block(p.Return(p.Float(1))))
		},
		"unreachable": func(p *itt.Package) itt.Expr {
			return p.Func("f", nil, itt.TypeVoid, p.Block(p.Return(itt.Nil), p.Int(1)))
		},
		"operand_mismatch": func(p *itt.Package) itt.Expr {
			return p.Func("f", nil, itt.TypeInt, p.Block(p.Return(p.BinOp(itt.Add, p.Int(1), p.Float(1)))))
		},
		"operand_without_value": func(p *itt.Package) itt.Expr {
			return p.Func("f", nil, itt.TypeInt, p.Block(p.Return(p.BinOp(itt.Add, p.Int(1), p.Var("x", p.Int(2))))))
		},
	} {
		p := itt.New("errors")
		id := build(p)

		g := New(p)

		err := g.Generate(context.Background(), id)
		assert.Error(t, err, "case %v", name)
		assert.Empty(t, g.Module.Funcs, "case %v", name)
	}
}

func TestUnresolvedIdent(t *testing.T) {
	p := itt.New("ident")
	id := p.Func("f", params(itt.TypeInt), itt.TypeInt, p.Block(
		p.Return(p.Ident("c")),
	))

	err := New(p).Generate(context.Background(), id)

	var uerr UnresolvedIdentError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "c", uerr.Name)
}

func TestVisitedTwice(t *testing.T) {
	p := itt.New("alias")
	two := p.Int(2)
	id := p.Func("f", nil, itt.TypeInt, p.Block(
		p.Return(p.BinOp(itt.Add, two, two)),
	))

	err := New(p).Generate(context.Background(), id)
	assert.ErrorContains(t, err, "visited twice")
}

func TestGeneratePackage(t *testing.T) {
	p := itt.New("pkg.it")

	p.Func("one", nil, itt.TypeInt, p.Block(p.Return(p.Int(1))))
	p.Func("main", nil, itt.TypeVoid, p.Block())

	m, err := New(p).GeneratePackage(context.Background())
	require.NoError(t, err)

	require.Len(t, m.Funcs, 2)
	assert.Equal(t, "one", m.Funcs[0].Name())
	assert.Equal(t, "main", m.Funcs[1].Name())
	assert.Equal(t, "pkg.it", m.SourceFilename)

	text := m.String()
	assert.Contains(t, text, "@one()")
	assert.Contains(t, text, "ret i32 1")
	assert.Contains(t, text, "ret void")
}

func TestGeneratePackageAborts(t *testing.T) {
	p := itt.New("pkg")

	p.Func("one", nil, itt.TypeInt, p.Block(p.Return(p.Int(1))))
	p.Func("bad", nil, itt.TypeBool, p.Block(p.Return(p.BinOp(itt.And, p.Bool(true), p.Bool(true)))))

	g := New(p)

	m, err := g.GeneratePackage(context.Background())
	assert.Nil(t, m)
	assert.ErrorContains(t, err, "bad")

	require.Len(t, g.Module.Funcs, 1)
	assert.Equal(t, "one", g.Module.Funcs[0].Name())
}

func TestIntegerOverflow(t *testing.T) {
	for _, v := range []int{math.MaxInt32 + 1, math.MinInt32 - 1} {
		p := itt.New("overflow")
		lit := p.Int(v)
		id := p.Func("f", nil, itt.TypeInt, p.Block(p.Return(lit)))

		g := New(p)

		err := g.Generate(context.Background(), id)

		var oerr IntegerOverflowError
		require.ErrorAs(t, err, &oerr, "value %d", v)
		assert.Equal(t, v, oerr.Value)
		assert.Equal(t, lit, oerr.Expr)
		assert.Empty(t, g.Module.Funcs)
	}

	p := itt.New("bounds")
	id := p.Func("f", nil, itt.TypeInt, p.Block(p.Return(p.BinOp(itt.Add, p.Int(math.MaxInt32), p.Int(math.MinInt32)))))

	generate(t, p, id)
}
