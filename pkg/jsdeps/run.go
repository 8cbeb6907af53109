// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package jsdeps

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/petar-djukic/jsdeps/internal/depswriter"
	"github.com/petar-djukic/jsdeps/internal/git"
	"github.com/petar-djukic/jsdeps/internal/manifest"
	"github.com/petar-djukic/jsdeps/internal/requires"
	"github.com/petar-djukic/jsdeps/internal/source"
	"github.com/petar-djukic/jsdeps/pkg/types"
)

// Check loads the JS and extern sources and reports missing and
// unnecessary requires per JS file. When anything is flagged the result
// is returned together with ErrFindings.
func Check(ctx context.Context, cfg CheckConfig) (*types.CheckResult, error) {
	if err := validateCheckConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	applyCheckDefaults(&cfg)

	cache := openCache(cfg.CacheFile, cfg.Logger)
	loader := &source.Loader{Concurrency: cfg.Concurrency, Cache: cache, Logger: cfg.Logger}

	checkCfg := requires.Config{Exclude: cfg.Exclude, Logger: cfg.Logger}
	if cfg.ChangedOnly {
		sel, err := changedSelector(cfg.WorkDir, cfg.Logger)
		if err != nil {
			return nil, err
		}
		checkCfg.Select = sel
	}

	result, err := requires.NewChecker(loader, checkCfg).CheckAll(ctx, cfg.JSPaths, cfg.ExternPaths)
	if err != nil {
		return nil, err
	}
	saveCache(ctx, cache, cfg.Logger)

	if result.HasFindings() {
		return result, ErrFindings
	}
	return result, nil
}

// Build resolves the manifest against the source roots and writes one
// loader script per bundle, parents first.
func Build(ctx context.Context, cfg BuildConfig) error {
	if err := validateBuildConfig(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	applyBuildDefaults(&cfg)

	cache := openCache(cfg.CacheFile, cfg.Logger)
	parser := &manifest.Parser{
		Path:             cfg.Manifest,
		Roots:            cfg.Roots,
		Loader:           &source.Loader{Concurrency: cfg.Concurrency, Cache: cache, Logger: cfg.Logger},
		Strategy:         cfg.Strategy,
		OutputPathPrefix: cfg.OutputPathPrefix,
		Defines:          cfg.Defines,
	}

	wcfg := depswriter.Config{
		Parser:      parser,
		Concurrency: cfg.Concurrency,
		Logger:      cfg.Logger,
	}
	if cache != nil {
		wcfg.Persister = cache
	}
	if cfg.DryRun {
		wcfg.Files = &depswriter.DiffWriter{Out: cfg.DiffOut}
	}

	return depswriter.NewWriter(wcfg).Build(ctx)
}

// changedSelector limits checking to files git reports as changed. A clean
// working tree selects nothing.
func changedSelector(workDir string, log *slog.Logger) (func(string) bool, error) {
	repo, err := git.Open(git.Config{WorkDir: workDir})
	if err != nil {
		return nil, err
	}
	dirty, err := repo.IsDirty()
	if err != nil {
		return nil, fmt.Errorf("reading git status: %w", err)
	}
	if !dirty {
		log.Info("working tree clean, no changed files to check")
		return func(string) bool { return false }, nil
	}
	changed, err := repo.ChangedFiles(".js")
	if err != nil {
		return nil, fmt.Errorf("listing changed files: %w", err)
	}

	set := make(map[string]bool, len(changed))
	for _, p := range changed {
		set[canonicalPath(p)] = true
	}
	return func(path string) bool {
		return set[canonicalPath(path)]
	}, nil
}

// canonicalPath makes paths from git and from discovery comparable.
func canonicalPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// openCache opens the parse cache. A corrupt or unreadable cache is
// replaced by an empty one.
func openCache(path string, log *slog.Logger) *source.Cache {
	if path == "" {
		return nil
	}
	cache, err := source.OpenCache(path)
	if err != nil {
		log.Warn("discarding parse cache", "path", path, "error", err)
	}
	return cache
}

func saveCache(ctx context.Context, cache *source.Cache, log *slog.Logger) {
	if cache == nil {
		return
	}
	if err := cache.Save(ctx); err != nil {
		log.Warn("saving parse cache", "error", err)
		return
	}
	stats := cache.Stats()
	log.Debug("parse cache", "hits", stats.Hits, "misses", stats.Misses)
}

// validateCheckConfig checks that required fields are present.
func validateCheckConfig(cfg CheckConfig) error {
	return validateWorkDir(cfg.WorkDir)
}

// validateBuildConfig checks that required fields are present and valid.
func validateBuildConfig(cfg BuildConfig) error {
	if err := validateWorkDir(cfg.WorkDir); err != nil {
		return err
	}
	if cfg.Manifest == "" {
		return fmt.Errorf("Manifest is required")
	}
	switch cfg.Strategy {
	case "", types.StrategySync, types.StrategyAsync:
	default:
		return fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}
	return nil
}

func validateWorkDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("WorkDir is required")
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("WorkDir %q does not exist or is not a directory", dir)
	}
	return nil
}

// applyCheckDefaults fills in zero-value fields and anchors relative paths
// at WorkDir.
func applyCheckDefaults(cfg *CheckConfig) {
	if len(cfg.JSPaths) == 0 {
		cfg.JSPaths = []string{cfg.WorkDir}
	} else {
		cfg.JSPaths = anchorAll(cfg.WorkDir, cfg.JSPaths)
	}
	cfg.ExternPaths = anchorAll(cfg.WorkDir, cfg.ExternPaths)
	cfg.CacheFile = anchor(cfg.WorkDir, cfg.CacheFile)
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}

// applyBuildDefaults fills in zero-value fields and anchors relative paths
// at WorkDir.
func applyBuildDefaults(cfg *BuildConfig) {
	cfg.Manifest = anchor(cfg.WorkDir, cfg.Manifest)
	if len(cfg.Roots) == 0 {
		cfg.Roots = []string{cfg.WorkDir}
	} else {
		cfg.Roots = anchorAll(cfg.WorkDir, cfg.Roots)
	}
	cfg.CacheFile = anchor(cfg.WorkDir, cfg.CacheFile)
	if cfg.DiffOut == nil {
		cfg.DiffOut = os.Stdout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}

func anchor(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func anchorAll(base string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, anchor(base, p))
	}
	return out
}
