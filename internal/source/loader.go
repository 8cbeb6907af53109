// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package source discovers JavaScript files and parses them into token,
// comment, and namespace declaration records.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/sourcegraph/conc/pool"

	"github.com/petar-djukic/jsdeps/pkg/types"
)

// ErrDiscovery is matched by every DiscoveryError.
var ErrDiscovery = errors.New("source discovery failed")

// skipDirs contains directory names that discovery never descends into.
var skipDirs = map[string]bool{
	"vendor":       true,
	".git":         true,
	"node_modules": true,
}

const jsExt = ".js"

// DiscoveryError records a path that could not be found or read.
type DiscoveryError struct {
	Path string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDiscovery) hold.
func (e *DiscoveryError) Is(target error) bool { return target == ErrDiscovery }

// Loader discovers and parses source files.
type Loader struct {
	Concurrency int          // Parallel parsers; <= 0 means runtime.NumCPU()
	Cache       *Cache       // Optional parse cache
	Logger      *slog.Logger // Optional; defaults to slog.Default()
}

// Load expands paths (files, or directories searched recursively for .js
// files) and parses every file with a bounded worker pool. Results are in
// sorted path order. Any missing or unreadable path aborts the load with a
// DiscoveryError and no partial result.
func (l *Loader) Load(ctx context.Context, paths []string) ([]*types.SourceFile, error) {
	files, err := Expand(paths)
	if err != nil {
		return nil, err
	}

	concurrency := l.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	out := make([]*types.SourceFile, len(files))
	p := pool.New().WithMaxGoroutines(concurrency).WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			f, err := l.loadFile(ctx, path)
			if err != nil {
				return err
			}
			out[i] = f
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	unparsed := 0
	for _, f := range out {
		if f.Parsed == nil {
			unparsed++
		}
	}
	l.logger().Debug("loaded sources", slog.Int("files", len(out)), slog.Int("unparsed", unparsed))
	return out, nil
}

// loadFile returns the cached parse of path or parses it.
func (l *Loader) loadFile(ctx context.Context, path string) (*types.SourceFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &DiscoveryError{Path: path, Err: err}
	}

	if l.Cache != nil {
		if f, ok := l.Cache.Lookup(path, info); ok {
			return f, nil
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &DiscoveryError{Path: path, Err: err}
	}

	f, err := Parse(ctx, path, content)
	if err != nil {
		return nil, err
	}
	if f.Parsed == nil {
		l.logger().Debug("syntax errors, file left unparsed", slog.String("path", path))
	}

	if l.Cache != nil {
		l.Cache.Store(path, info, f)
	}
	return f, nil
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// Expand resolves paths into a sorted, de-duplicated list of files.
// Directories are walked recursively for .js files, skipping vendor,
// .git, node_modules, and entries matched by the directory's .gitignore.
// Explicit file arguments are kept whatever their extension.
func Expand(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, raw := range paths {
		root := filepath.Clean(raw)
		info, err := os.Stat(root)
		if err != nil {
			return nil, &DiscoveryError{Path: raw, Err: err}
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		ignorer := loadGitignore(root)
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return &DiscoveryError{Path: path, Err: err}
			}
			relPath, relErr := filepath.Rel(root, path)
			if relErr != nil {
				relPath = path
			}
			if d.IsDir() {
				if path != root && (skipDirs[d.Name()] || ignorer.isIgnored(relPath, true)) {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(d.Name(), jsExt) || ignorer.isIgnored(relPath, false) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// gitignorer matches paths relative to a walk root against the root's
// .gitignore.
type gitignorer struct {
	matcher gitignore.Matcher
}

// loadGitignore reads .gitignore from the root directory. If no .gitignore
// exists or it cannot be read, returns an ignorer that matches nothing.
func loadGitignore(root string) gitignorer {
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return gitignorer{}
	}
	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return gitignorer{matcher: gitignore.NewMatcher(patterns)}
}

// isIgnored reports whether relPath is excluded. Later patterns take
// precedence, so a "!" line re-includes what an earlier line excluded.
func (g gitignorer) isIgnored(relPath string, isDir bool) bool {
	if g.matcher == nil {
		return false
	}
	return g.matcher.Match(strings.Split(relPath, string(filepath.Separator)), isDir)
}
