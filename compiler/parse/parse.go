package parse

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/ittc/compiler/ast"
	"github.com/slowlang/ittc/compiler/lex"
)

type (
	Parser struct {
		l *lex.Lexer
	}

	SyntaxError struct {
		Pos lex.Pos
		Msg string
	}
)

func ParseFile(ctx context.Context, name string) (*ast.File, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}

	return Parse(ctx, name, text)
}

func Parse(ctx context.Context, name string, text []byte) (f *ast.File, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "parse", "name", name, "size", len(text))
	defer tr.Finish("err", &err)

	p := &Parser{l: lex.New(text)}

	f = &ast.File{Name: name}

	for {
		_, err = p.l.Peek()
		if errors.Is(err, lex.ErrEndOfInput) {
			break
		}
		if err != nil {
			return nil, err
		}

		fn, err := p.parseFunc(ctx)
		if err != nil {
			return nil, err
		}

		f.Funcs = append(f.Funcs, fn)
	}

	return f, nil
}

func (p *Parser) parseFunc(ctx context.Context) (fn ast.Func, err error) {
	fn.Visibility = "private"
	fn.Ret = "void"

	t, err := p.next()
	if err != nil {
		return fn, err
	}

	if t.Kind == lex.Pub {
		fn.Visibility = "pub"

		t, err = p.next()
		if err != nil {
			return fn, err
		}
	}

	if t.Kind != lex.Fn {
		return fn, unexpected(t, "fn")
	}

	name, err := p.expect(lex.Ident)
	if err != nil {
		return fn, err
	}

	fn.Name = name.Text

	tlog.SpanFromContext(ctx).V("parse").Printw("func", "name", fn.Name, "pos", name.Pos)

	if _, err = p.expect(lex.LParen); err != nil {
		return fn, err
	}

	for i := 0; ; i++ {
		t, err := p.peek()
		if err != nil {
			return fn, err
		}

		if t.Kind == lex.RParen {
			p.mustNext()
			break
		}

		if i != 0 {
			if _, err = p.expect(lex.Comma); err != nil {
				return fn, err
			}
		}

		pname, err := p.expect(lex.Ident)
		if err != nil {
			return fn, err
		}

		ptype, err := p.parseType()
		if err != nil {
			return fn, errors.Wrap(err, "param %v", pname.Text)
		}

		fn.Params = append(fn.Params, ast.Param{Name: pname.Text, Type: ptype})
	}

	if ok, err := p.accept(lex.Arrow); err != nil {
		return fn, err
	} else if ok {
		fn.Ret, err = p.parseType()
		if err != nil {
			return fn, errors.Wrap(err, "return type")
		}
	}

	fn.Body, err = p.parseBlock(ctx)
	if err != nil {
		return fn, errors.Wrap(err, "func %v", fn.Name)
	}

	return fn, nil
}

func (p *Parser) parseType() (string, error) {
	t, err := p.next()
	if err != nil {
		return "", err
	}

	switch t.Kind {
	case lex.IntType, lex.FloatType, lex.CharType, lex.BoolType:
		return strings.ToLower(t.Text), nil
	case lex.Ident:
		return t.Text, nil
	default:
		return "", unexpected(t, "type")
	}
}

func (p *Parser) parseBlock(ctx context.Context) (b ast.Block, err error) {
	if _, err = p.expect(lex.LCurly); err != nil {
		return b, err
	}

	for {
		t, err := p.peek()
		if err != nil {
			return b, err
		}

		if t.Kind == lex.RCurly {
			p.mustNext()
			return b, nil
		}

		s, err := p.parseStmt(ctx)
		if err != nil {
			return b, err
		}

		b.Stmts = append(b.Stmts, s)
	}
}

func (p *Parser) parseStmt(ctx context.Context) (s ast.Node, err error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch t.Kind {
	case lex.Ret:
		p.mustNext()

		if ok, err := p.accept(lex.Semicolon); err != nil || ok {
			return ast.Return{}, err
		}

		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		s = ast.Return{Value: v}
	case lex.LCurly:
		return p.parseBlock(ctx)
	case lex.Ident:
		p.mustNext()

		if ok, err := p.accept(lex.Eq); err != nil {
			return nil, err
		} else if ok {
			v, err := p.parseExpr()
			if err != nil {
				return nil, errors.Wrap(err, "var %v", t.Text)
			}

			s = ast.VarDef{Name: t.Text, Value: v}

			break
		}

		s, err = p.parseExprFrom(t)
		if err != nil {
			return nil, err
		}
	default:
		s, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	if _, err = p.expect(lex.Semicolon); err != nil {
		return nil, err
	}

	return s, nil
}

func (p *Parser) parseExpr() (ast.Node, error) {
	t, err := p.next()
	if err != nil {
		return nil, err
	}

	return p.parseExprFrom(t)
}

// parseExprFrom parses an expression whose first token t is already consumed.
func (p *Parser) parseExprFrom(t lex.Token) (x ast.Node, err error) {
	x, err = p.parseTerm(t)
	if err != nil {
		return nil, err
	}

	for {
		op, ok, err := p.acceptOp(lex.Plus, lex.Minus)
		if err != nil {
			return nil, err
		}
		if !ok {
			return x, nil
		}

		t, err := p.next()
		if err != nil {
			return nil, err
		}

		r, err := p.parseTerm(t)
		if err != nil {
			return nil, err
		}

		x = ast.BinOp{Left: x, Right: r, Op: op}
	}
}

func (p *Parser) parseTerm(t lex.Token) (x ast.Node, err error) {
	x, err = p.parsePrimary(t)
	if err != nil {
		return nil, err
	}

	for {
		op, ok, err := p.acceptOp(lex.Star, lex.Slash)
		if err != nil {
			return nil, err
		}
		if !ok {
			return x, nil
		}

		t, err := p.next()
		if err != nil {
			return nil, err
		}

		r, err := p.parsePrimary(t)
		if err != nil {
			return nil, err
		}

		x = ast.BinOp{Left: x, Right: r, Op: op}
	}
}

func (p *Parser) parsePrimary(t lex.Token) (ast.Node, error) {
	switch t.Kind {
	case lex.Integer:
		v, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil || v > math.MaxInt32 {
			return nil, SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("integer out of range: %v", t.Text)}
		}

		return ast.Int{Value: int(v)}, nil
	case lex.Float:
		v, err := strconv.ParseFloat(t.Text, 32)
		if err != nil {
			return nil, SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("bad float: %v", t.Text)}
		}

		return ast.Float{Value: float32(v)}, nil
	case lex.LParen:
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err = p.expect(lex.RParen); err != nil {
			return nil, err
		}

		return x, nil
	case lex.Ident:
		n, err := p.peek()
		if err != nil && !errors.Is(err, lex.ErrEndOfInput) {
			return nil, err
		}

		switch {
		case err == nil && n.Kind == lex.LParen:
			args, err := p.parseArgs()
			if err != nil {
				return nil, errors.Wrap(err, "call %v", t.Text)
			}

			return ast.Call{Name: t.Text, Args: args}, nil
		case err == nil && n.Kind == lex.Dot:
			p.mustNext()

			name, err := p.expect(lex.Ident)
			if err != nil {
				return nil, err
			}

			args, err := p.parseArgs()
			if err != nil {
				return nil, errors.Wrap(err, "call %v.%v", t.Text, name.Text)
			}

			return ast.Call{Alias: t.Text, Name: name.Text, Args: args}, nil
		}

		return ast.Ident{Name: t.Text}, nil
	default:
		return nil, unexpected(t, "expression")
	}
}

func (p *Parser) parseArgs() (args []ast.Node, err error) {
	if _, err = p.expect(lex.LParen); err != nil {
		return nil, err
	}

	for i := 0; ; i++ {
		if ok, err := p.accept(lex.RParen); err != nil || ok {
			return args, err
		}

		if i != 0 {
			if _, err = p.expect(lex.Comma); err != nil {
				return nil, err
			}
		}

		a, err := p.parseExpr()
		if err != nil {
			return nil, errors.Wrap(err, "arg %d", i)
		}

		args = append(args, a)
	}
}

func (p *Parser) acceptOp(kinds ...lex.Kind) (op ast.BinaryOperator, ok bool, err error) {
	t, err := p.l.Peek()
	if errors.Is(err, lex.ErrEndOfInput) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	for _, k := range kinds {
		if t.Kind != k {
			continue
		}

		p.mustNext()

		switch k {
		case lex.Plus:
			return ast.Add, true, nil
		case lex.Minus:
			return ast.Sub, true, nil
		case lex.Star:
			return ast.Mul, true, nil
		case lex.Slash:
			return ast.Div, true, nil
		}
	}

	return 0, false, nil
}

func (p *Parser) accept(k lex.Kind) (bool, error) {
	t, err := p.peek()
	if err != nil {
		return false, err
	}

	if t.Kind != k {
		return false, nil
	}

	p.mustNext()

	return true, nil
}

func (p *Parser) expect(k lex.Kind) (lex.Token, error) {
	t, err := p.next()
	if err != nil {
		return t, err
	}

	if t.Kind != k {
		return t, unexpected(t, k.String())
	}

	return t, nil
}

func (p *Parser) peek() (lex.Token, error) {
	t, err := p.l.Peek()
	if errors.Is(err, lex.ErrEndOfInput) {
		return t, SyntaxError{Pos: t.Pos, Msg: "unexpected end of input"}
	}

	return t, err
}

func (p *Parser) next() (lex.Token, error) {
	t, err := p.l.Next()
	if errors.Is(err, lex.ErrEndOfInput) {
		return t, SyntaxError{Pos: t.Pos, Msg: "unexpected end of input"}
	}

	return t, err
}

// mustNext consumes a token already returned by peek.
func (p *Parser) mustNext() {
	_, _ = p.l.Next()
}

func unexpected(t lex.Token, exp string) SyntaxError {
	return SyntaxError{
		Pos: t.Pos,
		Msg: fmt.Sprintf("expected %v, got %v %q", exp, t.Kind, t.Text),
	}
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("%v: %v", e.Pos, e.Msg)
}
