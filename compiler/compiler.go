package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/ittc/compiler/back"
	"github.com/slowlang/ittc/compiler/front"
	"github.com/slowlang/ittc/compiler/itt"
	"github.com/slowlang/ittc/compiler/parse"
)

func CompileFile(ctx context.Context, name string) (obj []byte, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text)
}

// Compile returns textual LLVM IR for the source text.
func Compile(ctx context.Context, name string, text []byte) (obj []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "name", name, "size", len(text))
	defer tr.Finish("err", &err)

	f, err := parse.Parse(ctx, name, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	p, err := front.New(itt.New(name)).TranslateFile(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "translate")
	}

	m, err := back.New(p).GeneratePackage(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "generate")
	}

	return []byte(m.String()), nil
}
