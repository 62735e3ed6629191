package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/ittc/compiler"
	"github.com/slowlang/ittc/compiler/diag"
	"github.com/slowlang/ittc/compiler/format"
	"github.com/slowlang/ittc/compiler/front"
	"github.com/slowlang/ittc/compiler/itt"
	"github.com/slowlang/ittc/compiler/lex"
	"github.com/slowlang/ittc/compiler/parse"
)

// reg lives for the whole process, it is set up by the before hook.
var reg *diag.Registry

func main() {
	tokensCmd := &cli.Command{
		Name:        "tokens",
		Description: "print token stream",
		Action:      tokensAct,
		Args:        cli.Args{},
	}

	parseCmd := &cli.Command{
		Name:        "parse",
		Description: "parse and print formatted source",
		Action:      parseAct,
		Args:        cli.Args{},
	}

	ittCmd := &cli.Command{
		Name:        "itt",
		Description: "print intermediate typed tree",
		Action:      ittAct,
		Args:        cli.Args{},
	}

	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "compile to llvm ir",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("output,o", "", "output file, stdout if empty"),
			cli.NewFlag("module", "", "module source filename, input file name if empty"),
		},
	}

	watchCmd := &cli.Command{
		Name:        "watch",
		Description: "recompile files to <name>.ll on change",
		Action:      watchAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "ittc",
		Description: "ittc translates source code into llvm ir through intermediate typed tree",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("log", "stderr", "comma separated log sinks: stderr, stdout, file.log, file.tlog"),
			cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			tokensCmd,
			parseCmd,
			ittCmd,
			compileCmd,
			watchCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	reg = diag.New()

	err := reg.Open(c.String("log"))
	if err != nil {
		return errors.Wrap(err, "open log")
	}

	reg.Logger().SetVerbosity(c.String("verbosity"))

	return nil
}

func rootContext() context.Context {
	return tlog.ContextWithSpan(context.Background(), tlog.Span{Logger: reg.Logger()})
}

func tokensAct(c *cli.Command) (err error) {
	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		ts, err := lex.New(text).All()
		if err != nil {
			return errors.Wrap(err, "lex %v", a)
		}

		for _, t := range ts {
			fmt.Printf("%v\n", t)
		}
	}

	return nil
}

func parseAct(c *cli.Command) (err error) {
	ctx := rootContext()

	for _, a := range c.Args {
		x, err := parse.ParseFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		b, err := format.FormatFile(ctx, nil, x)
		if err != nil {
			return errors.Wrap(err, "format %v", a)
		}

		fmt.Printf("%s", b)
	}

	return nil
}

func ittAct(c *cli.Command) (err error) {
	ctx := rootContext()

	for _, a := range c.Args {
		x, err := parse.ParseFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		p, err := front.New(itt.New(a)).TranslateFile(ctx, x)
		if err != nil {
			return errors.Wrap(err, "translate %v", a)
		}

		var b []byte

		for _, id := range p.Funcs {
			b = format.Dump(b, p, id)
		}

		fmt.Printf("%s", b)
	}

	return nil
}

func compileAct(c *cli.Command) (err error) {
	ctx := rootContext()

	out := os.Stdout

	if name := c.String("output"); name != "" {
		f, err := os.Create(name)
		if err != nil {
			return errors.Wrap(err, "create output")
		}

		defer func() {
			e := f.Close()
			if err == nil && e != nil {
				err = errors.Wrap(e, "close output")
			}
		}()

		out = f
	}

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		name := a
		if m := c.String("module"); m != "" {
			name = m
		}

		obj, err := compiler.Compile(ctx, name, text)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		_, err = out.Write(obj)
		if err != nil {
			return errors.Wrap(err, "write")
		}
	}

	return nil
}

func watchAct(c *cli.Command) (err error) {
	ctx, cancel := signal.NotifyContext(rootContext(), os.Interrupt)
	defer cancel()

	tr := tlog.SpanFromContext(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "new watcher")
	}

	defer func() {
		e := w.Close()
		if err == nil && e != nil {
			err = errors.Wrap(e, "close watcher")
		}
	}()

	files := map[string]struct{}{}
	dirs := map[string]struct{}{}

	for _, a := range c.Args {
		a = filepath.Clean(a)
		files[a] = struct{}{}

		rebuild(ctx, a)

		// editors often replace files, so the directory is watched
		d := filepath.Dir(a)
		if _, ok := dirs[d]; ok {
			continue
		}

		err = w.Add(d)
		if err != nil {
			return errors.Wrap(err, "watch %v", d)
		}

		dirs[d] = struct{}{}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Errors:
			return errors.Wrap(err, "watcher")
		case ev := <-w.Events:
			name := filepath.Clean(ev.Name)

			if _, ok := files[name]; !ok {
				continue
			}

			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}

			tr.Printw("file changed", "name", name, "op", ev.Op.String())

			rebuild(ctx, name)
		}
	}
}

// rebuild compiles name into name.ll. Errors are logged, watching goes on.
func rebuild(ctx context.Context, name string) {
	tr := tlog.SpanFromContext(ctx)

	obj, err := compiler.CompileFile(ctx, name)
	if err != nil {
		tr.Printw("compile failed", "name", name, "err", err)
		return
	}

	out := strings.TrimSuffix(name, filepath.Ext(name)) + ".ll"

	err = os.WriteFile(out, obj, 0o644)
	if err != nil {
		tr.Printw("write failed", "name", out, "err", err)
		return
	}

	tr.Printw("compiled", "name", name, "output", out, "size", len(obj))
}
