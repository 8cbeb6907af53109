// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package namespace

import (
	"regexp"
	"strings"
)

// match is a memoized resolution; ok is false for unresolved usages.
type match struct {
	ns string
	ok bool
}

// Matcher resolves usages against one registry. Results are memoized per
// usage string and per usage kind for the lifetime of the matcher, so a
// Matcher must not be shared by overlapping runs.
type Matcher struct {
	reg      *Registry
	code     map[string]match
	doc      map[string]match
	patterns map[string]*regexp.Regexp
}

// NewMatcher creates a matcher with empty caches bound to reg.
func NewMatcher(reg *Registry) *Matcher {
	return &Matcher{
		reg:      reg,
		code:     make(map[string]match),
		doc:      make(map[string]match),
		patterns: make(map[string]*regexp.Regexp),
	}
}

// Registry returns the registry the matcher resolves against.
func (m *Matcher) Registry() *Registry {
	return m.reg
}

// ResolveIdentifier returns the most specific namespace that used starts
// with, where the match ends at the end of used or before a character
// that cannot continue an identifier. "a.bc" never matches "a.b", and
// "a.b.C.d" resolves to "a.b.C" ahead of "a.b".
func (m *Matcher) ResolveIdentifier(used string) (string, bool) {
	if r, ok := m.code[used]; ok {
		return r.ns, r.ok
	}

	// Every matching candidate is a prefix of used, and among prefixes of
	// one string the longest sorts first in descending order, so trying
	// boundary prefixes longest-first picks the same candidate the
	// ordered scan would.
	r := match{}
	for end := len(used); end > 0; end-- {
		if end < len(used) && isIdentChar(used[end]) {
			continue
		}
		if m.reg.Contains(used[:end]) {
			r = match{ns: used[:end], ok: true}
			break
		}
	}

	m.code[used] = r
	return r.ns, r.ok
}

// ResolveDocType returns the first candidate that occurs in the type
// expression used with non-identifier characters (or the string edges) on
// both sides, e.g. "ns.Foo" inside "Array.<ns.Foo>".
func (m *Matcher) ResolveDocType(used string) (string, bool) {
	if r, ok := m.doc[used]; ok {
		return r.ns, r.ok
	}

	r := match{}
	for _, ns := range m.reg.Candidates() {
		if !strings.Contains(used, ns) {
			continue
		}
		if m.pattern(ns).MatchString(used) {
			r = match{ns: ns, ok: true}
			break
		}
	}

	m.doc[used] = r
	return r.ns, r.ok
}

// pattern returns the boundary-anchored expression for ns.
func (m *Matcher) pattern(ns string) *regexp.Regexp {
	if re, ok := m.patterns[ns]; ok {
		return re
	}
	re := regexp.MustCompile(`(?:^|[^\w$])` + regexp.QuoteMeta(ns) + `(?:$|[^\w$])`)
	m.patterns[ns] = re
	return re
}

// isIdentChar reports whether c is a word character or '$'.
func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
