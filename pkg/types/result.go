// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// FileResult holds the require discrepancies of one file. Both lists are
// sorted.
type FileResult struct {
	Missing     []string
	Unnecessary []string
}

// Empty reports whether nothing was flagged.
func (r FileResult) Empty() bool {
	return len(r.Missing) == 0 && len(r.Unnecessary) == 0
}

// CheckResult aggregates a require-checking run. Maps only contain files
// with at least one flagged namespace.
type CheckResult struct {
	Missing     map[string][]string // path -> missing namespaces
	Unnecessary map[string][]string // path -> unnecessary namespaces
	Checked     int                 // Number of files checked
}

// HasFindings reports whether any file was flagged.
func (r *CheckResult) HasFindings() bool {
	return len(r.Missing) > 0 || len(r.Unnecessary) > 0
}
