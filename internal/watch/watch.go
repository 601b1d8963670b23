// Package watch re-parses documents as they appear or change in a directory
// and writes each result next to the others as JSON.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/lawtree/internal/parser"
	"gopkg.in/fsnotify.v1"
)

// ParseFunc parses the file at path into the value written as its output.
type ParseFunc func(ctx context.Context, path string) (any, error)

// Watcher parses supported files in one directory into an output directory.
type Watcher struct {
	dir   string
	out   string
	parse ParseFunc
	log   *slog.Logger
}

// New creates a watcher. Results for dir/name.ext are written to
// out/name.ext.json.
func New(dir, out string, parse ParseFunc, log *slog.Logger) *Watcher {
	return &Watcher{dir: dir, out: out, parse: parse, log: log.With("dir", dir)}
}

// Run parses every supported file already in the directory, then each file
// that is created or written, until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", w.dir, err)
	}

	w.Scan(ctx)
	w.log.Info("watching", "out", w.out)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if err := w.Handle(ctx, event.Name); err != nil {
				w.log.Warn("parse failed", "file", filepath.Base(event.Name), "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// Scan parses every supported file currently in the directory and returns
// how many were written. Failures are logged and skipped.
func (w *Watcher) Scan(ctx context.Context) int {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.log.Warn("read directory", "error", err)
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
			continue
		}
		if err := w.Handle(ctx, filepath.Join(w.dir, e.Name())); err != nil {
			w.log.Warn("parse failed", "file", e.Name(), "error", err)
			continue
		}
		n++
	}
	return n
}

// Handle parses one file and writes its output. Unsupported files and
// editor temporaries are ignored.
func (w *Watcher) Handle(ctx context.Context, path string) error {
	name := filepath.Base(path)
	if !parser.IsSupportedExtension(name) || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
		return nil
	}
	v, err := w.parse(ctx, path)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := writeFile(filepath.Join(w.out, name+".json"), data); err != nil {
		return err
	}
	w.log.Info("parsed", "file", name)
	return nil
}

// writeFile replaces path so readers never see a partial result.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".lawtree-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
