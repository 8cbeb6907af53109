// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package git reports which source files the working tree has changed, so
// require checking can be limited to files under edit.
package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// ErrNoGit is returned when the working directory is not inside a git
// repository.
var ErrNoGit = errors.New("not a git repository")

// Config configures repository access.
type Config struct {
	WorkDir string // Any directory inside the repository
}

// Repo wraps a go-git repository for the operations we need.
type Repo struct {
	repo *gogit.Repository
	cfg  Config
}

// Open opens the repository containing the configured work directory.
// Returns ErrNoGit if there is none.
func Open(cfg Config) (*Repo, error) {
	r, err := gogit.PlainOpenWithOptions(cfg.WorkDir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	return &Repo{repo: r, cfg: cfg}, nil
}

// Root returns the absolute path of the working tree.
func (r *Repo) Root() (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}
	return filepath.Abs(wt.Filesystem.Root())
}

// IsDirty returns true if the working tree has uncommitted changes
// (either staged or unstaged).
func (r *Repo) IsDirty() (bool, error) {
	status, err := r.status()
	if err != nil {
		return false, err
	}
	return !status.IsClean(), nil
}

// ChangedFiles returns the absolute paths of modified, added, renamed, or
// untracked files ending in ext, sorted. Deleted files are left out since
// there is nothing to check. An empty ext matches every file.
func (r *Repo) ChangedFiles(ext string) ([]string, error) {
	status, err := r.status()
	if err != nil {
		return nil, err
	}
	root, err := r.Root()
	if err != nil {
		return nil, err
	}

	var out []string
	for path, s := range status {
		if s.Staging == gogit.Deleted || s.Worktree == gogit.Deleted {
			continue
		}
		if s.Staging == gogit.Unmodified && s.Worktree == gogit.Unmodified {
			continue
		}
		if ext != "" && !strings.HasSuffix(path, ext) {
			continue
		}
		out = append(out, filepath.Join(root, filepath.FromSlash(path)))
	}
	sort.Strings(out)
	return out, nil
}

func (r *Repo) status() (gogit.Status, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("getting status: %w", err)
	}
	return status, nil
}
