// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package jsdeps is the public interface for checking goog.require
// declarations and generating per-bundle loader scripts for Closure-style
// JavaScript codebases.
package jsdeps

import (
	"errors"
	"io"
	"log/slog"

	"github.com/petar-djukic/jsdeps/pkg/types"
)

var (
	// ErrInvalidConfig reports a missing or malformed config field.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrFindings is returned with a CheckResult that flags at least one
	// missing or unnecessary require.
	ErrFindings = errors.New("require check found problems")
)

// CheckConfig configures a require check.
type CheckConfig struct {
	WorkDir     string       // Base for relative paths (required)
	JSPaths     []string     // Files or directories to check (default WorkDir)
	ExternPaths []string     // Files or directories whose provides are known but not checked
	Exclude     []string     // Provides never offered as candidates
	ChangedOnly bool         // Check only files git reports as changed
	CacheFile   string       // Parse cache location; empty disables caching
	Concurrency int          // Parallel parsers (default runtime.NumCPU())
	Logger      *slog.Logger // Default slog.Default()
}

// BuildConfig configures loader generation.
type BuildConfig struct {
	WorkDir          string         // Base for relative paths (required)
	Manifest         string         // Module manifest path (required)
	Roots            []string       // Source roots (default WorkDir)
	Strategy         types.Strategy // Overrides the manifest when set
	OutputPathPrefix string         // Overrides the manifest when set
	Defines          map[string]any // Merged over the manifest's defines
	DryRun           bool           // Print diffs instead of writing
	DiffOut          io.Writer      // Dry-run output (default os.Stdout)
	CacheFile        string         // Parse cache location; empty disables caching
	Concurrency      int            // Parallel parsers and renderers (default runtime.NumCPU())
	Logger           *slog.Logger   // Default slog.Default()
}
