// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package namespace resolves raw usage strings to declared namespaces.
package namespace

import (
	"sort"

	"github.com/petar-djukic/jsdeps/pkg/types"
)

// Registry is the immutable set of namespaces provided across a corpus,
// minus an exclusion set. The first file to provide a namespace owns it.
type Registry struct {
	owners     map[string]string // namespace -> declaring path
	candidates []string          // descending lexicographic
}

// NewRegistry builds a registry from the provides of files. Excluded
// namespaces are never candidates even though their files remain.
func NewRegistry(files []*types.SourceFile, exclude []string) *Registry {
	excluded := make(map[string]bool, len(exclude))
	for _, ns := range exclude {
		excluded[ns] = true
	}

	r := &Registry{owners: make(map[string]string)}
	for _, f := range files {
		for _, ns := range f.Provides {
			if excluded[ns] {
				continue
			}
			if _, ok := r.owners[ns]; ok {
				continue
			}
			r.owners[ns] = f.Path
			r.candidates = append(r.candidates, ns)
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(r.candidates)))
	return r
}

// Candidates returns the namespaces in descending lexicographic order, so a
// namespace always precedes any namespace that is a prefix of it.
func (r *Registry) Candidates() []string {
	return r.candidates
}

// Owner returns the path of the file that declared ns.
func (r *Registry) Owner(ns string) (string, bool) {
	p, ok := r.owners[ns]
	return p, ok
}

// Contains reports whether ns is a candidate.
func (r *Registry) Contains(ns string) bool {
	_, ok := r.owners[ns]
	return ok
}

// Len returns the number of candidates.
func (r *Registry) Len() int {
	return len(r.candidates)
}
