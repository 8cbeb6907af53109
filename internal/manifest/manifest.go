// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package manifest reads module manifests and resolves them into a bundle
// tree with per-bundle ordered file lists.
package manifest

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/petar-djukic/jsdeps/pkg/types"
)

const defaultCompletionHook = "onModulesLoaded"

var (
	// ErrInvalid reports a structurally invalid manifest.
	ErrInvalid = errors.New("invalid manifest")
	// ErrUnresolved reports an input or require that no file provides.
	ErrUnresolved = errors.New("unresolved dependency")
)

// File is the on-disk manifest. JSON manifests parse as well, since JSON
// is valid YAML.
type File struct {
	ProductionURI    string         `yaml:"productionUri"`
	OutputPathPrefix string         `yaml:"outputPathPrefix"`
	Strategy         types.Strategy `yaml:"strategy"`
	Defines          map[string]any `yaml:"defines"`
	CompletionHook   string         `yaml:"completionHook"`
	Root             *ModuleSpec    `yaml:"root"`
}

// ModuleSpec declares one bundle. Inputs are namespaces or file paths.
type ModuleSpec struct {
	Name     string        `yaml:"name"`
	Inputs   []string      `yaml:"inputs"`
	Wrapper  string        `yaml:"wrapper"`
	Children []*ModuleSpec `yaml:"children"`
}

// LoadFile reads and parses the manifest at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes manifest data, applies defaults, and validates it.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	applyDefaults(&f)

	if err := validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(f *File) {
	if f.Strategy == "" {
		f.Strategy = types.StrategySync
	}
	if f.CompletionHook == "" {
		f.CompletionHook = defaultCompletionHook
	}
	if f.Defines == nil {
		f.Defines = make(map[string]any)
	}
}

// validate checks the strategy and module names.
func validate(f *File) error {
	if f.Strategy != types.StrategySync && f.Strategy != types.StrategyAsync {
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalid, f.Strategy)
	}
	if f.Root == nil {
		return fmt.Errorf("%w: no root module", ErrInvalid)
	}

	seen := make(map[string]bool)
	var check func(m *ModuleSpec) error
	check = func(m *ModuleSpec) error {
		if m.Name == "" {
			return fmt.Errorf("%w: module without a name", ErrInvalid)
		}
		if seen[m.Name] {
			return fmt.Errorf("%w: duplicate module %q", ErrInvalid, m.Name)
		}
		seen[m.Name] = true
		for _, c := range m.Children {
			if err := check(c); err != nil {
				return err
			}
		}
		return nil
	}
	return check(f.Root)
}
