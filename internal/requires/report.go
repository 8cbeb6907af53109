// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package requires

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/petar-djukic/jsdeps/pkg/types"
)

// WriteReport prints the "Missing requires" and "Unnecessary requires"
// sections of result to w: files sorted by path, each followed by its
// sorted namespaces. Empty sections are omitted.
func WriteReport(w io.Writer, result *types.CheckResult) error {
	var buf strings.Builder
	writeSection(&buf, "Missing requires", result.Missing)
	writeSection(&buf, "Unnecessary requires", result.Unnecessary)

	_, err := io.WriteString(w, buf.String())
	return err
}

func writeSection(buf *strings.Builder, title string, byPath map[string][]string) {
	if len(byPath) == 0 {
		return
	}
	if buf.Len() > 0 {
		buf.WriteString("\n")
	}

	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	fmt.Fprintf(buf, "%s:\n", title)
	for _, p := range paths {
		namespaces := append([]string(nil), byPath[p]...)
		sort.Strings(namespaces)

		fmt.Fprintf(buf, "  %s\n", p)
		for _, ns := range namespaces {
			fmt.Fprintf(buf, "    %s\n", ns)
		}
	}
}
