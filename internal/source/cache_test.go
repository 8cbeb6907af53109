// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/petar-djukic/jsdeps/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SaveAndReopen(t *testing.T) {
	root := setupTestTree(t, map[string]string{"a.js": "goog.provide('a');\n"})
	jsPath := filepath.Join(root, "a.js")
	cachePath := filepath.Join(t.TempDir(), "cache.json")

	info, err := os.Stat(jsPath)
	require.NoError(t, err)

	cache, err := OpenCache(cachePath)
	require.NoError(t, err)

	file := &types.SourceFile{Path: jsPath, Provides: []string{"a"}, Parsed: &types.Parsed{
		Tokens: []types.Token{{Kind: types.Identifier, Value: "goog"}},
	}}
	cache.Store(jsPath, info, file)
	require.NoError(t, cache.Save(context.Background()))

	reopened, err := OpenCache(cachePath)
	require.NoError(t, err)

	got, ok := reopened.Lookup(jsPath, info)
	require.True(t, ok)
	assert.Equal(t, file, got)
}

func TestCache_InvalidatedOnChange(t *testing.T) {
	root := setupTestTree(t, map[string]string{"a.js": "goog.provide('a');\n"})
	jsPath := filepath.Join(root, "a.js")

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)

	info, err := os.Stat(jsPath)
	require.NoError(t, err)
	cache.Store(jsPath, info, &types.SourceFile{Path: jsPath})

	later := info.ModTime().Add(time.Second)
	require.NoError(t, os.Chtimes(jsPath, later, later))
	changed, err := os.Stat(jsPath)
	require.NoError(t, err)

	_, ok := cache.Lookup(jsPath, changed)
	assert.False(t, ok, "modified file should miss")
}

func TestCache_SaveSkipsWhenClean(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	cache, err := OpenCache(cachePath)
	require.NoError(t, err)

	require.NoError(t, cache.Save(context.Background()))

	_, err = os.Stat(cachePath)
	assert.True(t, os.IsNotExist(err), "clean cache should not be written")
}

func TestOpenCache_Corrupt(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(cachePath, []byte("{not json"), 0o644))

	cache, err := OpenCache(cachePath)
	assert.Error(t, err)
	require.NotNil(t, cache, "a usable empty cache is still returned")
	assert.Equal(t, CacheStats{}, cache.Stats())
}

func TestCache_SaveUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cache, _ := OpenCache(filepath.Join(blocker, "cache.json"))
	require.NotNil(t, cache)
	cache.Store("a.js", fakeInfo{}, &types.SourceFile{Path: "a.js"})

	assert.Error(t, cache.Save(context.Background()))
}

// fakeInfo is a zero-valued fs.FileInfo.
type fakeInfo struct{}

func (fakeInfo) Name() string       { return "a.js" }
func (fakeInfo) Size() int64        { return 0 }
func (fakeInfo) Mode() os.FileMode  { return 0o644 }
func (fakeInfo) ModTime() time.Time { return time.Time{} }
func (fakeInfo) IsDir() bool        { return false }
func (fakeInfo) Sys() any           { return nil }
