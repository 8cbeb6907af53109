// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package depswriter turns a module manifest into one loader script per
// bundle. Scripts render in parallel and are written in tree order,
// parents before children; the first failed write stops all later ones.
package depswriter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/petar-djukic/jsdeps/internal/loader"
	"github.com/petar-djukic/jsdeps/internal/sequence"
	"github.com/petar-djukic/jsdeps/pkg/types"
)

var (
	// ErrParse wraps a failure to produce the module tree.
	ErrParse = errors.New("parsing module tree")
	// ErrWrite is matched by every WriteError.
	ErrWrite = errors.New("writing loader")
)

// State is the lifecycle of a Writer.
type State int

const (
	Unbuilt     State = iota // Build not called yet
	Parsing                  // Tree parser running
	ParseFailed              // Terminal
	Parsed                   // Tree available
	Writing                  // Rendering and writing loaders
	WriteFailed              // Terminal
	Done                     // Terminal
)

func (s State) String() string {
	switch s {
	case Unbuilt:
		return "unbuilt"
	case Parsing:
		return "parsing"
	case ParseFailed:
		return "parse-failed"
	case Parsed:
		return "parsed"
	case Writing:
		return "writing"
	case WriteFailed:
		return "write-failed"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// WriteError records the bundle whose loader could not be produced.
type WriteError struct {
	Module string
	Path   string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("module %s (%s): %v", e.Module, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrWrite) hold.
func (e *WriteError) Is(target error) bool { return target == ErrWrite }

// TreeParser produces the resolved module tree.
type TreeParser interface {
	Parse(ctx context.Context) (*types.Tree, error)
}

// Persister saves intermediate results after a successful parse.
type Persister interface {
	Save(ctx context.Context) error
}

// FileWriter stores one rendered loader.
type FileWriter interface {
	WriteFile(ctx context.Context, path string, content []byte) error
}

// Config holds the Writer's collaborators.
type Config struct {
	Parser      TreeParser
	Persister   Persister       // Optional
	Renderer    loader.Renderer // Defaults to loader.NewSynthesizer()
	Files       FileWriter      // Defaults to a DiskWriter
	Concurrency int             // Parallel renders; <= 0 means runtime.NumCPU()
	Logger      *slog.Logger
}

// Writer runs one build. It is not reusable.
type Writer struct {
	cfg Config
	log *slog.Logger

	mu    sync.Mutex
	state State
}

// NewWriter creates a Writer, filling in default collaborators.
func NewWriter(cfg Config) *Writer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Renderer == nil {
		cfg.Renderer = loader.NewSynthesizer()
	}
	if cfg.Files == nil {
		cfg.Files = &DiskWriter{Logger: cfg.Logger}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	return &Writer{cfg: cfg, log: cfg.Logger}
}

// State returns the current lifecycle state.
func (w *Writer) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Writer) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
	w.log.Debug("deps writer state", "state", s)
}

// Build parses the tree, persists best-effort, and writes every bundle's
// loader. A persistence failure is logged and does not fail the build.
func (w *Writer) Build(ctx context.Context) error {
	w.mu.Lock()
	if w.state != Unbuilt {
		s := w.state
		w.mu.Unlock()
		return fmt.Errorf("build already ran (state %s)", s)
	}
	w.mu.Unlock()

	w.setState(Parsing)
	tree, err := w.cfg.Parser.Parse(ctx)
	if err != nil {
		w.setState(ParseFailed)
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	w.setState(Parsed)

	if w.cfg.Persister != nil {
		if err := w.cfg.Persister.Save(ctx); err != nil {
			w.log.Warn("saving parse cache", "error", err)
		}
	}

	w.setState(Writing)
	if err := w.writeAll(ctx, tree); err != nil {
		w.setState(WriteFailed)
		return err
	}
	w.setState(Done)
	return nil
}

// writeAll renders loaders concurrently and hands them to the file writer
// in parent-first order through a sequencer.
func (w *Writer) writeAll(ctx context.Context, tree *types.Tree) error {
	mods := tree.Modules()
	rc := loader.NewContext(tree)

	seq := sequence.New(len(mods), func(i int, content []byte) error {
		m := mods[i]
		path := tree.OutputPath(m)
		if err := w.cfg.Files.WriteFile(ctx, path, content); err != nil {
			return &WriteError{Module: m.Name, Path: path, Err: err}
		}
		w.log.Debug("wrote loader", "module", m.Name, "path", path, "deps", len(m.Deps))
		return nil
	})

	p := pool.New().WithMaxGoroutines(w.cfg.Concurrency).WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, m := range mods {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := w.cfg.Renderer.Render(&buf, rc, m); err != nil {
				return &WriteError{Module: m.Name, Path: tree.OutputPath(m), Err: err}
			}
			return seq.Complete(i, buf.Bytes())
		})
	}
	if err := p.Wait(); err != nil {
		w.logUnwritten(seq, mods, tree)
		// The sink error is the root cause; later completions only echo it.
		if serr := seq.Err(); serr != nil {
			return serr
		}
		return err
	}

	w.log.Info("wrote loaders", "modules", len(mods), "strategy", tree.Strategy)
	return nil
}

// logUnwritten warns about every module whose loader never reached disk.
func (w *Writer) logUnwritten(seq *sequence.Sequencer[[]byte], mods []*types.Module, tree *types.Tree) {
	if seq.Done() {
		return
	}
	for i, m := range mods {
		if seq.State(i) != sequence.Written {
			w.log.Warn("loader not written", "module", m.Name, "path", tree.OutputPath(m))
		}
	}
}
