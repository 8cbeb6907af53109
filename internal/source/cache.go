// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/petar-djukic/jsdeps/internal/fsutil"
	"github.com/petar-djukic/jsdeps/pkg/types"
)

const cacheVersion = 1

// cacheEntry stores a parsed file keyed by path, valid while the file's
// modification time and size are unchanged.
type cacheEntry struct {
	ModTime time.Time         `json:"modTime"`
	Size    int64             `json:"size"`
	File    *types.SourceFile `json:"file"`
}

type cacheFile struct {
	Version int                   `json:"version"`
	Entries map[string]cacheEntry `json:"entries"`
}

// CacheStats counts cache activity since the cache was opened.
type CacheStats struct {
	Hits   int
	Misses int
}

// Cache is an on-disk cache of parsed source files. It is safe for use by
// the loader's workers but must not be shared by overlapping runs.
type Cache struct {
	path    string
	mu      sync.Mutex
	entries map[string]cacheEntry
	dirty   bool
	stats   CacheStats
}

// OpenCache loads the cache stored at path. A missing file yields an empty
// cache. A corrupt or outdated file also yields an empty cache, along with
// the error so the caller can report it.
func OpenCache(path string) (*Cache, error) {
	c := &Cache{path: path, entries: make(map[string]cacheEntry)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("reading cache %s: %w", path, err)
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return c, fmt.Errorf("decoding cache %s: %w", path, err)
	}
	if cf.Version != cacheVersion {
		return c, fmt.Errorf("cache %s has version %d, want %d", path, cf.Version, cacheVersion)
	}
	if cf.Entries != nil {
		c.entries = cf.Entries
	}
	return c, nil
}

// Lookup returns the cached file for path if info still matches it.
func (c *Cache) Lookup(path string, info fs.FileInfo) (*types.SourceFile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if !ok || !e.ModTime.Equal(info.ModTime()) || e.Size != info.Size() || e.File == nil {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return e.File, true
}

// Store records file as the parse result of path at info.
func (c *Cache) Store(path string, info fs.FileInfo, file *types.SourceFile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = cacheEntry{ModTime: info.ModTime(), Size: info.Size(), File: file}
	c.dirty = true
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Save persists the cache if it changed since it was opened.
func (c *Cache) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return nil
	}
	data, err := json.Marshal(cacheFile{Version: cacheVersion, Entries: c.entries})
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	if err := fsutil.WriteFileAtomic(c.path, data); err != nil {
		return fmt.Errorf("saving cache: %w", err)
	}

	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
	return nil
}
