// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package manifest

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/petar-djukic/jsdeps/pkg/types"
)

// SourceLoader discovers and parses source files.
type SourceLoader interface {
	Load(ctx context.Context, paths []string) ([]*types.SourceFile, error)
}

// Parser turns a manifest plus source roots into a bundle tree.
type Parser struct {
	Path   string // Manifest file; ignored when Inline is set
	Inline []byte // Manifest content given directly
	Roots  []string
	Loader SourceLoader

	// Overrides applied after the manifest is read. Empty means keep. A
	// relative prefix is anchored at the manifest directory.
	Strategy         types.Strategy
	OutputPathPrefix string
	Defines          map[string]any
}

// Parse loads the manifest and the source roots and resolves the tree.
func (p *Parser) Parse(ctx context.Context) (*types.Tree, error) {
	f, baseDir, err := p.manifest()
	if err != nil {
		return nil, err
	}

	files, err := p.Loader.Load(ctx, p.Roots)
	if err != nil {
		return nil, fmt.Errorf("loading sources: %w", err)
	}

	return Resolve(f, files, baseDir)
}

func (p *Parser) manifest() (*File, string, error) {
	var (
		f       *File
		baseDir string
		err     error
	)
	if p.Inline != nil {
		f, err = Parse(p.Inline)
	} else {
		f, err = LoadFile(p.Path)
		baseDir = filepath.Dir(p.Path)
	}
	if err != nil {
		return nil, "", err
	}

	if p.Strategy != "" {
		f.Strategy = p.Strategy
	}
	if p.OutputPathPrefix != "" {
		f.OutputPathPrefix = p.OutputPathPrefix
	}
	for k, v := range p.Defines {
		f.Defines[k] = v
	}
	if err := validate(f); err != nil {
		return nil, "", err
	}
	return f, baseDir, nil
}
