// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "encoding/json"

// Dependency is one entry of a bundle's ordered file list.
type Dependency struct {
	Path     string // Source file path
	URI      string // Location relative to the bundle's own artifact
	IsModule bool   // File is in goog.module format
}

// Module is a load-time bundle. Children are owned by their parent.
type Module struct {
	Name     string
	Parent   *Module
	Children []*Module
	Deps     []Dependency // Manifest order; never re-sorted
	Wrapper  string       // Optional custom template path
}

// IsRoot reports whether m has no parent.
func (m *Module) IsRoot() bool {
	return m.Parent == nil
}

// Walk visits m and its descendants, parents strictly before children.
func (m *Module) Walk(fn func(*Module)) {
	fn(m)
	for _, c := range m.Children {
		c.Walk(fn)
	}
}

// Strategy selects how generated loaders fetch their dependencies.
type Strategy string

const (
	StrategySync  Strategy = "sync"
	StrategyAsync Strategy = "async"
)

// Tree is a parsed module manifest.
type Tree struct {
	Root             *Module
	ProductionURI    string
	OutputPathPrefix string
	Strategy         Strategy
	Defines          map[string]any  // Embedded verbatim in the root loader
	CompletionHook   string          // Global invoked after async loading
	ModuleInfo       json.RawMessage // {name: [parent]}
	ModuleURIs       json.RawMessage // {name: [uri]}
}

// Modules returns every module in parent-before-child order.
func (t *Tree) Modules() []*Module {
	if t.Root == nil {
		return nil
	}
	var mods []*Module
	t.Root.Walk(func(m *Module) { mods = append(mods, m) })
	return mods
}

// OutputPath returns the artifact path for m.
func (t *Tree) OutputPath(m *Module) string {
	return t.OutputPathPrefix + m.Name + ".js"
}
