// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/petar-djukic/jsdeps/pkg/types"
)

// Resolve builds the bundle tree for f against the discovered files.
// Relative paths in the manifest (file inputs, wrappers, and the output
// prefix) are taken relative to baseDir.
//
// Each bundle's file list is the dependency-first closure of its inputs
// over goog.require edges, minus every file already loaded by an ancestor
// bundle. Dependency URIs are relative to the bundle's own artifact.
func Resolve(f *File, files []*types.SourceFile, baseDir string) (*types.Tree, error) {
	r := newResolver(files)

	tree := &types.Tree{
		ProductionURI:    f.ProductionURI,
		OutputPathPrefix: anchorPrefix(baseDir, f.OutputPathPrefix),
		Strategy:         f.Strategy,
		Defines:          f.Defines,
		CompletionHook:   f.CompletionHook,
	}

	root, err := r.module(f.Root, nil, nil, tree, baseDir)
	if err != nil {
		return nil, err
	}
	tree.Root = root

	info := make(map[string][]string)
	uris := make(map[string][]string)
	root.Walk(func(m *types.Module) {
		var parents []string
		if m.Parent != nil {
			parents = []string{m.Parent.Name}
		} else {
			parents = []string{}
		}
		info[m.Name] = parents
		uris[m.Name] = []string{f.ProductionURI + m.Name + ".js"}
	})

	if tree.ModuleInfo, err = json.Marshal(info); err != nil {
		return nil, fmt.Errorf("encoding module info: %w", err)
	}
	if tree.ModuleURIs, err = json.Marshal(uris); err != nil {
		return nil, fmt.Errorf("encoding module uris: %w", err)
	}
	return tree, nil
}

// resolver indexes files by provided namespace and by absolute path.
type resolver struct {
	provides map[string]*types.SourceFile
	byPath   map[string]*types.SourceFile
}

func newResolver(files []*types.SourceFile) *resolver {
	r := &resolver{
		provides: make(map[string]*types.SourceFile),
		byPath:   make(map[string]*types.SourceFile),
	}
	for _, f := range files {
		r.byPath[absPath(f.Path)] = f
		for _, ns := range f.Provides {
			if _, dup := r.provides[ns]; !dup {
				r.provides[ns] = f
			}
		}
	}
	return r
}

// module resolves ms and its children. loaded holds every file path
// already loaded by an ancestor.
func (r *resolver) module(ms *ModuleSpec, parent *types.Module, loaded map[string]bool, tree *types.Tree, baseDir string) (*types.Module, error) {
	m := &types.Module{
		Name:    ms.Name,
		Parent:  parent,
		Wrapper: joinBase(baseDir, ms.Wrapper),
	}

	order, err := r.closure(ms, baseDir)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", ms.Name, err)
	}

	artifactDir := filepath.Dir(absPath(tree.OutputPath(m)))
	mine := make(map[string]bool, len(loaded)+len(order))
	for p := range loaded {
		mine[p] = true
	}
	for _, f := range order {
		p := absPath(f.Path)
		if loaded[p] {
			continue
		}
		mine[p] = true

		uri, err := filepath.Rel(artifactDir, p)
		if err != nil {
			return nil, fmt.Errorf("module %s: locating %s: %w", ms.Name, f.Path, err)
		}
		m.Deps = append(m.Deps, types.Dependency{
			Path:     f.Path,
			URI:      filepath.ToSlash(uri),
			IsModule: f.IsModule,
		})
	}

	for _, cs := range ms.Children {
		child, err := r.module(cs, m, mine, tree, baseDir)
		if err != nil {
			return nil, err
		}
		m.Children = append(m.Children, child)
	}
	return m, nil
}

// closure returns the files reachable from the module's inputs, each file after
// everything it requires. Inputs are visited in manifest order. Require
// cycles are cut at the first revisit.
func (r *resolver) closure(ms *ModuleSpec, baseDir string) ([]*types.SourceFile, error) {
	var order []*types.SourceFile
	visited := make(map[*types.SourceFile]bool)

	var visit func(f *types.SourceFile) error
	visit = func(f *types.SourceFile) error {
		if visited[f] {
			return nil
		}
		visited[f] = true
		for _, ns := range f.Requires {
			dep, ok := r.provides[ns]
			if !ok {
				return fmt.Errorf("%w: %s requires %s, which no file provides", ErrUnresolved, f.Path, ns)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		order = append(order, f)
		return nil
	}

	for _, in := range ms.Inputs {
		f, err := r.input(in, baseDir)
		if err != nil {
			return nil, err
		}
		if err := visit(f); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// input resolves a manifest input as a namespace first, then as a path.
func (r *resolver) input(in, baseDir string) (*types.SourceFile, error) {
	if f, ok := r.provides[in]; ok {
		return f, nil
	}
	if f, ok := r.byPath[absPath(joinBase(baseDir, in))]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: input %s is neither a provided namespace nor a known file", ErrUnresolved, in)
}

// joinBase anchors a relative manifest path at baseDir. Empty stays empty.
func joinBase(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}

// anchorPrefix anchors a relative output prefix at baseDir. The prefix is
// a string prefix, not a directory, so it is concatenated rather than
// joined.
func anchorPrefix(baseDir, prefix string) string {
	if filepath.IsAbs(prefix) || baseDir == "" {
		return prefix
	}
	return baseDir + string(filepath.Separator) + filepath.FromSlash(prefix)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
