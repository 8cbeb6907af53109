// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_ValidRepo(t *testing.T) {
	dir := initTestRepo(t)

	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)
	assert.NotNil(t, repo)
}

func TestOpen_FromSubdirectory(t *testing.T) {
	dir := initTestRepo(t)
	sub := filepath.Join(dir, "src", "lib")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	repo, err := Open(Config{WorkDir: sub})
	require.NoError(t, err)

	root, err := repo.Root()
	require.NoError(t, err)
	assert.Equal(t, canonical(t, dir), canonical(t, root))
}

func TestOpen_NotARepo(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(Config{WorkDir: dir})
	assert.ErrorIs(t, err, ErrNoGit)
}

func TestIsDirty_CleanRepo(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)

	dirty, err := repo.IsDirty()
	require.NoError(t, err)
	assert.False(t, dirty)
}

func TestIsDirty_WithUntrackedFiles(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.js"), []byte("goog.provide('n');\n"), 0o644))

	dirty, err := repo.IsDirty()
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestChangedFiles(t *testing.T) {
	dir := initTestRepo(t)
	addFileAndCommit(t, dir, "lib/util.js", "goog.provide('util');\n", "add util")
	addFileAndCommit(t, dir, "lib/gone.js", "goog.provide('gone');\n", "add gone")

	// Modified tracked file.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("goog.provide('app');\napp.x = 1;\n"), 0o644))
	// Untracked files, one with another extension.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib", "new"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "new", "fresh.js"), []byte("goog.provide('fresh');\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("todo\n"), 0o644))
	// Deleted tracked file.
	require.NoError(t, os.Remove(filepath.Join(dir, "lib", "gone.js")))

	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)
	root, err := repo.Root()
	require.NoError(t, err)

	changed, err := repo.ChangedFiles(".js")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "app.js"),
		filepath.Join(root, "lib", "new", "fresh.js"),
	}, changed)

	all, err := repo.ChangedFiles("")
	require.NoError(t, err)
	assert.Contains(t, all, filepath.Join(root, "notes.txt"))
	assert.NotContains(t, all, filepath.Join(root, "lib", "gone.js"))
	assert.NotContains(t, all, filepath.Join(root, "lib", "util.js"), "unchanged files are not listed")
}

func TestChangedFiles_CleanRepo(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)

	changed, err := repo.ChangedFiles(".js")
	require.NoError(t, err)
	assert.Empty(t, changed)
}

// --- Test helpers ---

// initTestRepo creates a repository with one committed JavaScript file.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	r, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := r.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("goog.provide('app');\n"), 0o644))

	_, err = wt.Add("app.js")
	require.NoError(t, err)

	_, err = wt.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@test.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)

	return dir
}

// addFileAndCommit adds a file and creates a commit with the given message.
func addFileAndCommit(t *testing.T, dir, name, content, msg string) {
	t.Helper()

	r, err := gogit.PlainOpen(dir)
	require.NoError(t, err)

	wt, err := r.Worktree()
	require.NoError(t, err)

	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err = wt.Add(name)
	require.NoError(t, err)

	_, err = wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@test.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
}

func canonical(t *testing.T, p string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(p)
	require.NoError(t, err)
	return resolved
}
