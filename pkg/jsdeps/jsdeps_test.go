// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package jsdeps

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/jsdeps/internal/depswriter"
	"github.com/petar-djukic/jsdeps/internal/git"
	"github.com/petar-djukic/jsdeps/internal/manifest"
	"github.com/petar-djukic/jsdeps/pkg/types"
)

func TestCheck_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  CheckConfig
	}{
		{name: "empty workdir", cfg: CheckConfig{}},
		{name: "missing workdir", cfg: CheckConfig{WorkDir: filepath.Join(t.TempDir(), "nope")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Check(context.Background(), tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestCheck_ReportsFindings(t *testing.T) {
	dir := setupTestProject(t)
	writeFile(t, dir, "src/app.js", "goog.provide('app');\ngoog.require('util');\n\napp.start = function() { base.init(); };\n")

	result, err := Check(context.Background(), CheckConfig{WorkDir: dir, Logger: quietLogger()})
	assert.ErrorIs(t, err, ErrFindings)
	require.NotNil(t, result)

	app := filepath.Join(dir, "src", "app.js")
	assert.Equal(t, map[string][]string{app: {"base"}}, result.Missing)
	assert.Equal(t, map[string][]string{app: {"util"}}, result.Unnecessary)
}

func TestCheck_Clean(t *testing.T) {
	dir := setupTestProject(t)

	result, err := Check(context.Background(), CheckConfig{WorkDir: dir, Logger: quietLogger()})
	require.NoError(t, err)
	assert.False(t, result.HasFindings())
	assert.Equal(t, 4, result.Checked)
}

func TestCheck_ExternsAreNotChecked(t *testing.T) {
	dir := setupTestProject(t)
	writeFile(t, dir, "externs/dom.js", "goog.provide('dom');\ngoog.require('never.used');\n")
	writeFile(t, dir, "src/view.js", "goog.provide('view');\ngoog.require('dom');\n\nview.x = dom.query();\n")

	result, err := Check(context.Background(), CheckConfig{
		WorkDir:     dir,
		JSPaths:     []string{"src"},
		ExternPaths: []string{"externs"},
		Logger:      quietLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Checked)
}

func TestCheck_WritesCache(t *testing.T) {
	dir := setupTestProject(t)

	_, err := Check(context.Background(), CheckConfig{WorkDir: dir, CacheFile: ".cache/parse.json", Logger: quietLogger()})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ".cache", "parse.json"))

	// A second run reads the cache and agrees with the first.
	result, err := Check(context.Background(), CheckConfig{WorkDir: dir, CacheFile: ".cache/parse.json", Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Checked)
}

func TestCheck_ChangedOnly(t *testing.T) {
	dir := setupTestProject(t)
	writeFile(t, dir, "src/old.js", "goog.provide('old');\ngoog.require('util');\n")
	commitAll(t, dir)
	writeFile(t, dir, "src/new.js", "goog.provide('fresh');\n\nfresh.x = util.helper();\n")

	result, err := Check(context.Background(), CheckConfig{WorkDir: dir, ChangedOnly: true, Logger: quietLogger()})
	assert.ErrorIs(t, err, ErrFindings)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.Checked, "only the untracked file is checked")
	assert.Equal(t, map[string][]string{filepath.Join(dir, "src", "new.js"): {"util"}}, result.Missing)
	assert.Empty(t, result.Unnecessary, "old.js is committed and skipped")
}

func TestCheck_ChangedOnlyCleanTree(t *testing.T) {
	dir := setupTestProject(t)
	writeFile(t, dir, "src/old.js", "goog.provide('old');\ngoog.require('util');\n")
	commitAll(t, dir)

	var logs bytes.Buffer
	result, err := Check(context.Background(), CheckConfig{
		WorkDir:     dir,
		ChangedOnly: true,
		Logger:      slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, err)
	assert.Zero(t, result.Checked)
	assert.False(t, result.HasFindings(), "committed problems are not reported")
	assert.Contains(t, logs.String(), "working tree clean")
}

func TestCheck_ChangedOnlyOutsideRepo(t *testing.T) {
	dir := setupTestProject(t)

	_, err := Check(context.Background(), CheckConfig{WorkDir: dir, ChangedOnly: true, Logger: quietLogger()})
	assert.ErrorIs(t, err, git.ErrNoGit)
}

func TestBuild_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  BuildConfig
		want string
	}{
		{name: "empty workdir", cfg: BuildConfig{Manifest: "m.yaml"}, want: "WorkDir is required"},
		{name: "no manifest", cfg: BuildConfig{WorkDir: dir}, want: "Manifest is required"},
		{name: "bad strategy", cfg: BuildConfig{WorkDir: dir, Manifest: "m.yaml", Strategy: "lazy"}, want: "unknown strategy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Build(context.Background(), tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestBuild_WritesLoaders(t *testing.T) {
	dir := setupTestProject(t)
	writeFile(t, dir, "manifest.yaml", testManifest)

	err := Build(context.Background(), BuildConfig{
		WorkDir:   dir,
		Manifest:  "manifest.yaml",
		Roots:     []string{"src"},
		Defines:   map[string]any{"EXTRA": true},
		CacheFile: ".jsdeps-cache.json",
		Logger:    quietLogger(),
	})
	require.NoError(t, err)

	root := readFile(t, filepath.Join(dir, "out", "app.js"))
	assert.Contains(t, root, `var CLOSURE_UNCOMPILED_DEFINES = {"DEBUG":false,"EXTRA":true};`)
	assert.Contains(t, root, `{uri: "../src/base.js", module: false}`)
	assert.Contains(t, root, `{uri: "../src/app.js", module: false}`)
	assert.Contains(t, root, `var JSDEPS_MODULE_INFO = {"app":[],"editor":["app"]};`)

	editor := readFile(t, filepath.Join(dir, "out", "editor.js"))
	assert.Contains(t, editor, `{uri: "../src/editor.js", module: false}`)
	assert.NotContains(t, editor, "base.js", "files loaded by the parent are not repeated")

	assert.FileExists(t, filepath.Join(dir, ".jsdeps-cache.json"))
}

func TestBuild_StrategyOverride(t *testing.T) {
	dir := setupTestProject(t)
	writeFile(t, dir, "manifest.yaml", testManifest)

	require.NoError(t, Build(context.Background(), BuildConfig{
		WorkDir:  dir,
		Manifest: "manifest.yaml",
		Strategy: types.StrategyAsync,
		Logger:   quietLogger(),
	}))
	assert.Contains(t, readFile(t, filepath.Join(dir, "out", "editor.js")), "var PENDING = 0, READY = 1, WRITTEN = 2;")
}

func TestBuild_DryRun(t *testing.T) {
	dir := setupTestProject(t)
	writeFile(t, dir, "manifest.yaml", testManifest)

	var out bytes.Buffer
	require.NoError(t, Build(context.Background(), BuildConfig{
		WorkDir:  dir,
		Manifest: "manifest.yaml",
		DryRun:   true,
		DiffOut:  &out,
		Logger:   quietLogger(),
	}))

	assert.Contains(t, out.String(), "+++ "+filepath.Join(dir, "out", "app.js"))
	assert.Contains(t, out.String(), "+var CLOSURE_NO_DEPS = true;")
	assert.NoDirExists(t, filepath.Join(dir, "out"))
}

func TestBuild_UnresolvedInput(t *testing.T) {
	dir := setupTestProject(t)
	writeFile(t, dir, "manifest.yaml", "root: {name: app, inputs: [no.such.ns]}\n")

	err := Build(context.Background(), BuildConfig{WorkDir: dir, Manifest: "manifest.yaml", Logger: quietLogger()})
	assert.ErrorIs(t, err, depswriter.ErrParse)
	assert.ErrorIs(t, err, manifest.ErrUnresolved)
	assert.NoDirExists(t, filepath.Join(dir, "out"))
}

// --- Test helpers ---

const testManifest = `productionUri: /static/js/
outputPathPrefix: out/
defines:
  DEBUG: false
root:
  name: app
  inputs: [app]
  children:
    - name: editor
      inputs: [editor]
`

// setupTestProject creates a small, consistent source tree.
func setupTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "src/base.js", "goog.provide('base');\n\nbase.init = function() {};\n")
	writeFile(t, dir, "src/util.js", "goog.provide('util');\n\nutil.helper = function() {};\n")
	writeFile(t, dir, "src/app.js", "goog.provide('app');\ngoog.require('base');\n\napp.start = function() { base.init(); };\n")
	writeFile(t, dir, "src/editor.js", "goog.provide('editor');\ngoog.require('app');\n\neditor.open = function() { app.start(); };\n")
	return dir
}

func commitAll(t *testing.T, dir string) {
	t.Helper()
	r, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := r.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&gogit.AddOptions{All: true}))
	_, err = wt.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
