// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package depswriter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/petar-djukic/jsdeps/internal/fsutil"
)

// DiskWriter writes loaders atomically and leaves files whose content is
// already current untouched.
type DiskWriter struct {
	Logger *slog.Logger
}

// WriteFile implements FileWriter.
func (d *DiskWriter) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		d.logger().Debug("loader unchanged", "path", path)
		return nil
	}
	return fsutil.WriteFileAtomic(path, content)
}

func (d *DiskWriter) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// DiffWriter prints a line diff of each loader against the file on disk
// and writes nothing.
type DiffWriter struct {
	Out io.Writer

	mu sync.Mutex
}

// WriteFile implements FileWriter.
func (d *DiffWriter) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	old, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	text := LineDiff(string(old), string(content))

	d.mu.Lock()
	defer d.mu.Unlock()
	if text == "" {
		_, err = fmt.Fprintf(d.Out, "%s: unchanged\n", path)
		return err
	}
	_, err = fmt.Fprintf(d.Out, "--- %s\n+++ %s\n%s", path, path, text)
	return err
}

// LineDiff returns the changed lines between a and b, each prefixed with
// "-" or "+". Identical inputs give "".
func LineDiff(a, b string) string {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var buf strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			buf.WriteString(prefix)
			buf.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				buf.WriteString("\n")
			}
		}
	}
	return buf.String()
}
