package diag

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

type (
	// Registry fans every log event out to all registered sinks.
	// Sinks can be added while the logger is in use.
	Registry struct {
		mu    sync.Mutex
		sinks []io.Writer
		close []io.Closer

		l *tlog.Logger
	}
)

func New() *Registry {
	r := &Registry{}
	r.l = tlog.New(r)

	return r
}

// Add registers w. Events logged before Add are not replayed.
func (r *Registry) Add(w io.Writer) {
	defer r.mu.Unlock()
	r.mu.Lock()

	r.sinks = append(r.sinks, w)
}

// Open parses a comma separated sink list and registers each sink.
func (r *Registry) Open(list string) error {
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		w, c, err := OpenSink(name)
		if err != nil {
			return errors.Wrap(err, "sink %v", name)
		}

		r.Add(w)

		if c != nil {
			r.mu.Lock()
			r.close = append(r.close, c)
			r.mu.Unlock()
		}
	}

	return nil
}

// OpenSink opens a single sink by name.
// stderr, stdout and - are console writers on the standard streams.
// Files with .tlog extension get raw events, other files get console text.
// Returned closer is nil for the standard streams.
func OpenSink(name string) (w io.Writer, c io.Closer, err error) {
	switch name {
	case "stderr", "-":
		return tlog.NewConsoleWriter(os.Stderr, tlog.LstdFlags), nil, nil
	case "stdout":
		return tlog.NewConsoleWriter(os.Stdout, tlog.LstdFlags), nil, nil
	}

	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open")
	}

	if filepath.Ext(name) == ".tlog" {
		return f, f, nil
	}

	return tlog.NewConsoleWriter(f, tlog.LstdFlags|tlog.Lmilliseconds), f, nil
}

func (r *Registry) Logger() *tlog.Logger { return r.l }

// Write implements io.Writer. p is one encoded event.
func (r *Registry) Write(p []byte) (n int, err error) {
	defer r.mu.Unlock()
	r.mu.Lock()

	for _, w := range r.sinks {
		_, e := w.Write(p)
		if err == nil && e != nil {
			err = e
		}
	}

	return len(p), err
}

func (r *Registry) Close() (err error) {
	defer r.mu.Unlock()
	r.mu.Lock()

	for _, c := range r.close {
		e := c.Close()
		if err == nil && e != nil {
			err = e
		}
	}

	r.sinks = nil
	r.close = nil

	return err
}
