// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package requires compares the namespaces a file uses against the
// namespaces it declares as requires.
package requires

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/petar-djukic/jsdeps/internal/doctype"
	"github.com/petar-djukic/jsdeps/internal/namespace"
	"github.com/petar-djukic/jsdeps/internal/usage"
	"github.com/petar-djukic/jsdeps/pkg/types"
)

// SourceLoader discovers and parses source files.
type SourceLoader interface {
	Load(ctx context.Context, paths []string) ([]*types.SourceFile, error)
}

// Config configures a Checker.
type Config struct {
	Exclude []string               // Provides never offered as candidates
	Select  func(path string) bool // Optional filter on the JS files checked
	Types   usage.TypeExtractor    // Doc-type extractor; defaults to doctype.Extract
	Logger  *slog.Logger           // Optional; defaults to slog.Default()
}

// Checker runs require checks. It owns the usage match caches of its
// current run and is not safe for concurrent use.
type Checker struct {
	loader  SourceLoader
	cfg     Config
	matcher *namespace.Matcher
}

// NewChecker creates a Checker that loads sources through loader.
func NewChecker(loader SourceLoader, cfg Config) *Checker {
	if cfg.Types == nil {
		cfg.Types = doctype.Extract
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Checker{loader: loader, cfg: cfg}
}

// CheckFile returns the missing and unnecessary requires of file, both
// sorted. A file without a parsed form yields empty results.
func (c *Checker) CheckFile(file *types.SourceFile, reg *namespace.Registry) types.FileResult {
	if file.Parsed == nil {
		return types.FileResult{}
	}

	m := c.matcherFor(reg)
	used := make(map[string]bool)
	for id := range usage.IdentifiersUsed(file.Parsed.Tokens) {
		if ns, ok := m.ResolveIdentifier(id); ok {
			used[ns] = true
		}
	}
	for typ := range usage.TypesUsed(file.Parsed.Comments, c.cfg.Types) {
		if ns, ok := m.ResolveDocType(typ); ok {
			used[ns] = true
		}
	}

	var result types.FileResult
	declared := make(map[string]bool, len(file.Provides)+len(file.Requires))
	for _, ns := range file.Requires {
		if declared[ns] {
			continue
		}
		declared[ns] = true
		if !used[ns] {
			result.Unnecessary = append(result.Unnecessary, ns)
		}
	}
	for _, ns := range file.Provides {
		declared[ns] = true
	}
	for ns := range used {
		if !declared[ns] {
			result.Missing = append(result.Missing, ns)
		}
	}

	sort.Strings(result.Missing)
	sort.Strings(result.Unnecessary)
	return result
}

// CheckAll loads jsPaths and externPaths, builds the provide registry from
// both, and checks every JS file. Externs only contribute provides. A load
// failure aborts the run without a partial result.
func (c *Checker) CheckAll(ctx context.Context, jsPaths, externPaths []string) (*types.CheckResult, error) {
	jsFiles, err := c.loader.Load(ctx, jsPaths)
	if err != nil {
		return nil, fmt.Errorf("loading sources: %w", err)
	}

	var externFiles []*types.SourceFile
	if len(externPaths) > 0 {
		externFiles, err = c.loader.Load(ctx, externPaths)
		if err != nil {
			return nil, fmt.Errorf("loading externs: %w", err)
		}
	}

	all := make([]*types.SourceFile, 0, len(jsFiles)+len(externFiles))
	all = append(all, jsFiles...)
	all = append(all, externFiles...)
	reg := namespace.NewRegistry(all, c.cfg.Exclude)

	result := &types.CheckResult{
		Missing:     make(map[string][]string),
		Unnecessary: make(map[string][]string),
	}
	for _, f := range jsFiles {
		if c.cfg.Select != nil && !c.cfg.Select(f.Path) {
			continue
		}
		result.Checked++

		fr := c.CheckFile(f, reg)
		if fr.Empty() {
			continue
		}
		for _, ns := range fr.Missing {
			owner, _ := reg.Owner(ns)
			c.cfg.Logger.Debug("missing require",
				slog.String("file", f.Path),
				slog.String("namespace", ns),
				slog.String("provided_by", owner),
			)
		}
		if len(fr.Missing) > 0 {
			result.Missing[f.Path] = fr.Missing
		}
		if len(fr.Unnecessary) > 0 {
			result.Unnecessary[f.Path] = fr.Unnecessary
		}
	}

	c.cfg.Logger.Info("checked requires",
		slog.Int("files", result.Checked),
		slog.Int("externs", len(externFiles)),
		slog.Int("provides", reg.Len()),
		slog.Int("missing", len(result.Missing)),
		slog.Int("unnecessary", len(result.Unnecessary)),
	)
	return result, nil
}

// matcherFor returns the matcher for reg, starting fresh caches whenever
// the registry changes.
func (c *Checker) matcherFor(reg *namespace.Registry) *namespace.Matcher {
	if c.matcher == nil || c.matcher.Registry() != reg {
		c.matcher = namespace.NewMatcher(reg)
	}
	return c.matcher
}
