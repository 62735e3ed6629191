package format

import (
	"bytes"
	"context"
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/ittc/compiler/ast"
)

// Format appends surface syntax of x to b.
func Format(ctx context.Context, b []byte, x ast.Node) ([]byte, error) {
	return format(ctx, b, x, 0)
}

func FormatFile(ctx context.Context, b []byte, f *ast.File) (_ []byte, err error) {
	for i, fn := range f.Funcs {
		if i != 0 {
			b = append(b, '\n')
		}

		b, err = formatFunc(ctx, b, fn, 0)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", fn.Name)
		}
	}

	return b, nil
}

func format(ctx context.Context, b []byte, x ast.Node, d int) ([]byte, error) {
	switch x := x.(type) {
	case ast.Func:
		return formatFunc(ctx, b, x, d)
	case ast.Block:
		return formatBlock(ctx, b, x, d)
	default:
		return formatExpr(ctx, b, x, d)
	}
}

func formatFunc(ctx context.Context, b []byte, x ast.Func, d int) ([]byte, error) {
	b = app(b, d, "")

	if x.Visibility == "pub" {
		b = append(b, "pub "...)
	}

	b = app(b, 0, "fn %v(", x.Name)

	for i, a := range x.Params {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = app(b, 0, "%v %v", a.Name, typeName(a.Type))
	}

	b = append(b, ")"...)

	if x.Ret != "" && x.Ret != "void" {
		b = app(b, 0, " -> %v", typeName(x.Ret))
	}

	b = append(b, ' ')

	b, err := formatBlock(ctx, b, x.Body, d)
	if err != nil {
		return nil, errors.Wrap(err, "body")
	}

	b = append(b, '\n')

	return b, nil
}

func formatBlock(ctx context.Context, b []byte, x ast.Block, d int) (_ []byte, err error) {
	b = append(b, "{\n"...)

	for i, s := range x.Stmts {
		b, err = formatStmt(ctx, b, s, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "stmt %d", i)
		}
	}

	b = app(b, d, "}")

	return b, nil
}

func formatStmt(ctx context.Context, b []byte, x ast.Node, d int) (_ []byte, err error) {
	switch s := x.(type) {
	case ast.Return:
		b = app(b, d, "ret")

		if s.Value != nil {
			b = append(b, ' ')

			b, err = formatExpr(ctx, b, s.Value, d)
			if err != nil {
				return nil, errors.Wrap(err, "return value")
			}
		}
	case ast.VarDef:
		b = app(b, d, "%v = ", s.Name)

		b, err = formatExpr(ctx, b, s.Value, d)
		if err != nil {
			return nil, errors.Wrap(err, "var %v", s.Name)
		}
	case ast.Block:
		b = app(b, d, "")

		b, err = formatBlock(ctx, b, s, d)
		if err != nil {
			return nil, errors.Wrap(err, "block")
		}

		b = append(b, '\n')

		return b, nil
	default:
		b = app(b, d, "")

		b, err = formatExpr(ctx, b, s, d)
		if err != nil {
			return nil, err
		}
	}

	b = append(b, ";\n"...)

	return b, nil
}

func formatExpr(ctx context.Context, b []byte, x ast.Node, d int) (_ []byte, err error) {
	switch x := x.(type) {
	case ast.Ident:
		b = append(b, x.Name...)
	case ast.Int:
		b = hfmt.Appendf(b, "%d", x.Value)
	case ast.Float:
		st := len(b)
		b = strconv.AppendFloat(b, float64(x.Value), 'f', -1, 32)

		if !bytes.ContainsRune(b[st:], '.') {
			b = append(b, ".0"...)
		}
	case ast.BinOp:
		b = append(b, '(')

		b, err = formatExpr(ctx, b, x.Left, d)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b = hfmt.Appendf(b, " %v ", x.Op)

		b, err = formatExpr(ctx, b, x.Right, d)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}

		b = append(b, ')')
	case ast.Call:
		if x.Alias != "" {
			b = hfmt.Appendf(b, "%v.", x.Alias)
		}

		b = hfmt.Appendf(b, "%v(", x.Name)

		for i, a := range x.Args {
			if i != 0 {
				b = append(b, ", "...)
			}

			b, err = formatExpr(ctx, b, a, d)
			if err != nil {
				return nil, errors.Wrap(err, "arg %d", i)
			}
		}

		b = append(b, ')')
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

func typeName(n string) string {
	switch n {
	case "int":
		return "Int"
	case "float":
		return "Float"
	case "char":
		return "Char"
	case "bool":
		return "Bool"
	default:
		return n
	}
}

func app(b []byte, d int, f string, args ...any) []byte {
	for i := 0; i < d; i++ {
		b = append(b, '\t')
	}

	b = hfmt.Appendf(b, f, args...)
	return b
}
