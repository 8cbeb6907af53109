// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package doctype extracts type expressions from JSDoc comment bodies.
package doctype

import (
	"strings"
)

// bareTypeTags may name a type without braces, e.g. "@extends ns.Base".
var bareTypeTags = map[string]bool{
	"extends":    true,
	"implements": true,
}

// Extract returns the raw type expressions of a doc comment body: the
// brace-balanced contents of every "{...}" that follows an "@tag", and the
// bare name after @extends or @implements when no braces are used.
// Unbalanced braces end the scan of that tag.
func Extract(body string) []string {
	var out []string
	for i := 0; i < len(body); i++ {
		if body[i] != '@' {
			continue
		}

		tagStart := i + 1
		j := tagStart
		for j < len(body) && isTagChar(body[j]) {
			j++
		}
		tag := body[tagStart:j]
		if tag == "" {
			continue
		}

		k := skipSpace(body, j)
		if k < len(body) && body[k] == '{' {
			if expr, end, ok := balanced(body, k); ok {
				if expr = strings.TrimSpace(expr); expr != "" {
					out = append(out, expr)
				}
				i = end
				continue
			}
		} else if bareTypeTags[tag] {
			if name := bareName(body[k:]); name != "" {
				out = append(out, name)
			}
		}
		i = j - 1
	}
	return out
}

// balanced returns the contents between the brace at open and its matching
// closing brace, and the index of that closing brace.
func balanced(s string, open int) (string, int, bool) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[open+1 : i], i, true
			}
		}
	}
	return "", 0, false
}

// bareName returns the leading type name of s, up to whitespace.
func bareName(s string) string {
	end := 0
	for end < len(s) && !isSpace(s[end]) && s[end] != '*' {
		end++
	}
	return s[:end]
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isTagChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
