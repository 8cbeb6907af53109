// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package loader renders the bootstrap script for each bundle of a module
// tree. The root script installs the defines and module graphs; every
// script then fetches its dependencies synchronously or asynchronously and
// injects them in list order.
package loader

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"text/template"

	"github.com/petar-djukic/jsdeps/pkg/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Context is the tree-wide state shared by every bundle's render.
type Context struct {
	Strategy       types.Strategy
	Defines        map[string]any
	ModuleInfo     json.RawMessage
	ModuleURIs     json.RawMessage
	CompletionHook string
}

// NewContext builds a render context from a resolved tree.
func NewContext(tree *types.Tree) *Context {
	return &Context{
		Strategy:       tree.Strategy,
		Defines:        tree.Defines,
		ModuleInfo:     tree.ModuleInfo,
		ModuleURIs:     tree.ModuleURIs,
		CompletionHook: tree.CompletionHook,
	}
}

// Renderer writes the loader script for one module.
type Renderer interface {
	Render(w io.Writer, rc *Context, m *types.Module) error
}

// Data is the value every loader template executes against, built-in or
// custom.
type Data struct {
	Module         string
	Root           bool
	Async          bool
	Deps           []types.Dependency
	Defines        map[string]any
	ModuleInfo     string
	ModuleURIs     string
	CompletionHook string
}

// NewData flattens the render inputs for templates. Graphs are only
// carried for the root module.
func NewData(rc *Context, m *types.Module) Data {
	d := Data{
		Module:         m.Name,
		Root:           m.IsRoot(),
		Async:          rc.Strategy == types.StrategyAsync,
		Deps:           m.Deps,
		Defines:        rc.Defines,
		CompletionHook: rc.CompletionHook,
	}
	if d.Defines == nil {
		d.Defines = map[string]any{}
	}
	if d.Root {
		d.ModuleInfo = rawOrEmpty(rc.ModuleInfo)
		d.ModuleURIs = rawOrEmpty(rc.ModuleURIs)
	}
	return d
}

func rawOrEmpty(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

// funcs are available to built-in and custom templates.
var funcs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	},
}

// TemplateRenderer executes a named template against Data.
type TemplateRenderer struct {
	tmpl *template.Template
	name string
}

// Render implements Renderer.
func (r *TemplateRenderer) Render(w io.Writer, rc *Context, m *types.Module) error {
	if err := r.tmpl.ExecuteTemplate(w, r.name, NewData(rc, m)); err != nil {
		return fmt.Errorf("rendering %s loader: %w", m.Name, err)
	}
	return nil
}

var (
	defaultOnce     sync.Once
	defaultRenderer *TemplateRenderer
	defaultErr      error
)

// Default returns the built-in renderer. The root template is named after
// no block, so "loader" resolves to its definition in loader.tmpl even in
// clones.
func Default() (*TemplateRenderer, error) {
	defaultOnce.Do(func() {
		tmpl, err := template.New("templates").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
		if err != nil {
			defaultErr = fmt.Errorf("parsing loader templates: %w", err)
			return
		}
		defaultRenderer = &TemplateRenderer{tmpl: tmpl, name: "loader"}
	})
	return defaultRenderer, defaultErr
}

// LoadTemplate parses a custom wrapper template from path. The built-in
// "header", "runtime", "sync", and "async" blocks are available to it, so
// a wrapper can reuse parts of the default output.
func LoadTemplate(path string) (*TemplateRenderer, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading wrapper %s: %w", path, err)
	}

	base, err := Default()
	if err != nil {
		return nil, err
	}
	tmpl, err := base.tmpl.Clone()
	if err != nil {
		return nil, fmt.Errorf("cloning loader templates: %w", err)
	}
	const name = "wrapper"
	if _, err := tmpl.New(name).Parse(string(content)); err != nil {
		return nil, fmt.Errorf("parsing wrapper %s: %w", path, err)
	}
	return &TemplateRenderer{tmpl: tmpl, name: name}, nil
}

// Synthesizer picks the renderer for each module: the module's wrapper
// template when it names one, the built-in renderer otherwise. Parsed
// wrappers are cached by path.
type Synthesizer struct {
	mu       sync.Mutex
	wrappers map[string]*TemplateRenderer
}

// NewSynthesizer creates a Synthesizer with an empty wrapper cache.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{wrappers: make(map[string]*TemplateRenderer)}
}

// Render implements Renderer.
func (s *Synthesizer) Render(w io.Writer, rc *Context, m *types.Module) error {
	r, err := s.rendererFor(m)
	if err != nil {
		return err
	}
	return r.Render(w, rc, m)
}

func (s *Synthesizer) rendererFor(m *types.Module) (Renderer, error) {
	if m.Wrapper == "" {
		return Default()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.wrappers[m.Wrapper]; ok {
		return r, nil
	}
	r, err := LoadTemplate(m.Wrapper)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", m.Name, err)
	}
	s.wrappers[m.Wrapper] = r
	return r, nil
}
