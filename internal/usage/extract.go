// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package usage derives raw identifier chains and documentation type
// expressions from a parsed source file.
package usage

import (
	"strings"

	"github.com/petar-djukic/jsdeps/pkg/types"
)

const prototypeSegment = "prototype"

// TypeExtractor returns the raw type-expression substrings of one doc
// comment body.
type TypeExtractor func(body string) []string

// span is a half-open range of identifier tokens forming one dotted chain.
// Every other token inside the range is a "." punctuator.
type span struct {
	start, end int
}

// IdentifiersUsed returns every dotted identifier chain in tokens. A chain
// is a run of identifiers joined by "." punctuators; any other token ends
// it. Chains are cut at a literal "prototype" segment, so
// "a.B.prototype.m" is recorded as "a.B".
func IdentifiersUsed(tokens []types.Token) map[string]struct{} {
	used := make(map[string]struct{})
	for _, s := range chains(tokens) {
		if chain := materialize(tokens, s); chain != "" {
			used[chain] = struct{}{}
		}
	}
	return used
}

// chains scans tokens left to right and returns the identifier chains as
// index ranges.
func chains(tokens []types.Token) []span {
	var out []span
	open := false
	var cur span
	expectIdent := false // Last chain token was a dot.

	closeChain := func() {
		if open {
			out = append(out, cur)
		}
		open = false
		expectIdent = false
	}

	for i, tok := range tokens {
		switch {
		case tok.Kind == types.Identifier:
			if open && expectIdent {
				cur.end = i + 1
				expectIdent = false
				continue
			}
			closeChain()
			cur = span{start: i, end: i + 1}
			open = true
		case tok.Kind == types.Punctuator && tok.Value == "." && open && !expectIdent:
			expectIdent = true
		default:
			closeChain()
		}
	}
	closeChain()
	return out
}

// materialize joins the identifiers of s with dots, stopping before the
// first "prototype" segment.
func materialize(tokens []types.Token, s span) string {
	var b strings.Builder
	for i := s.start; i < s.end; i++ {
		tok := tokens[i]
		if tok.Kind != types.Identifier {
			continue
		}
		if tok.Value == prototypeSegment {
			break
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(tok.Value)
	}
	return b.String()
}

// TypesUsed returns the raw type expressions found in the doc comments of
// comments. Only block comments whose body starts with a single "*" are
// doc comments; banners such as "/**** x ****/" are ignored.
func TypesUsed(comments []types.Comment, extract TypeExtractor) map[string]struct{} {
	used := make(map[string]struct{})
	for _, c := range comments {
		if !IsDocComment(c) {
			continue
		}
		for _, t := range extract(c.Value) {
			used[t] = struct{}{}
		}
	}
	return used
}

// IsDocComment reports whether c is a "/** ... */" documentation comment.
func IsDocComment(c types.Comment) bool {
	return c.Kind == types.BlockComment &&
		len(c.Value) >= 2 && c.Value[0] == '*' && c.Value[1] != '*'
}
