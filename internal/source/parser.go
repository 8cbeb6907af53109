// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/petar-djukic/jsdeps/pkg/types"
)

// declQ captures namespace declaration calls such as goog.provide('a.b').
const declQ = `
(call_expression
  function: (member_expression
    object: (identifier) @object
    property: (property_identifier) @method)
  arguments: (arguments . (string) @namespace))
`

const declObject = "goog"

// declMethods maps goog.* methods to the declaration they make.
var declMethods = map[string]declKind{
	"provide":     declProvide,
	"module":      declModule,
	"require":     declRequire,
	"requireType": declRequire,
}

type declKind int

const (
	declProvide declKind = iota
	declModule
	declRequire
)

// identifierNodes are the named leaves that lex as identifiers.
var identifierNodes = map[string]bool{
	"identifier":                           true,
	"property_identifier":                  true,
	"shorthand_property_identifier":        true,
	"shorthand_property_identifier_pattern": true,
	"statement_identifier":                 true,
	"private_property_identifier":          true,
}

// keywordNodes are named leaves that lex as reserved words.
var keywordNodes = map[string]bool{
	"this":      true,
	"super":     true,
	"null":      true,
	"undefined": true,
	"true":      true,
	"false":     true,
}

// atomicNodes become a single token; their children are not visited.
var atomicNodes = map[string]types.TokenKind{
	"string": types.String,
	"regex":  types.RegularExpression,
	"number": types.Numeric,
}

var (
	jsLang    = javascript.GetLanguage()
	queryOnce sync.Once
	query     *sitter.Query
	queryErr  error
)

// declQuery compiles the declaration query once. A compiled query is
// read-only and can be shared by concurrent cursors.
func declQuery() (*sitter.Query, error) {
	queryOnce.Do(func() {
		query, queryErr = sitter.NewQuery([]byte(declQ), jsLang)
	})
	return query, queryErr
}

// Parse parses JavaScript content into a SourceFile. Syntax errors are not
// returned: the file keeps the declarations that could be found and has a
// nil Parsed form. An error is returned only when parsing could not run.
func Parse(ctx context.Context, path string, content []byte) (*types.SourceFile, error) {
	root, err := sitter.ParseCtx(ctx, content, jsLang)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	file := &types.SourceFile{Path: path}
	if root == nil {
		return file, nil
	}

	if err := collectDecls(root, content, file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if root.HasError() {
		return file, nil
	}

	parsed := &types.Parsed{}
	collectTokens(root, content, parsed)
	file.Parsed = parsed
	return file, nil
}

// collectDecls runs the declaration query and records provides and
// requires in order of first appearance.
func collectDecls(root *sitter.Node, content []byte, file *types.SourceFile) error {
	q, err := declQuery()
	if err != nil {
		return fmt.Errorf("compiling declaration query: %w", err)
	}

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	seenProvide := make(map[string]bool)
	seenRequire := make(map[string]bool)

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}

		var object, method, ns string
		for _, c := range m.Captures {
			text := c.Node.Content(content)
			switch q.CaptureNameForId(c.Index) {
			case "object":
				object = text
			case "method":
				method = text
			case "namespace":
				ns = unquote(text)
			}
		}

		kind, ok := declMethods[method]
		if object != declObject || !ok || ns == "" {
			continue
		}

		switch kind {
		case declModule:
			file.IsModule = true
			fallthrough
		case declProvide:
			if !seenProvide[ns] {
				seenProvide[ns] = true
				file.Provides = append(file.Provides, ns)
			}
		case declRequire:
			if !seenRequire[ns] {
				seenRequire[ns] = true
				file.Requires = append(file.Requires, ns)
			}
		}
	}
	return nil
}

// collectTokens walks the syntax tree in source order, appending leaves as
// tokens and comments to parsed.
func collectTokens(n *sitter.Node, content []byte, parsed *types.Parsed) {
	typ := n.Type()
	if typ == "comment" {
		parsed.Comments = append(parsed.Comments, commentOf(n.Content(content)))
		return
	}

	if kind, ok := atomicNodes[typ]; ok {
		parsed.Tokens = append(parsed.Tokens, types.Token{Kind: kind, Value: n.Content(content)})
		return
	}

	count := int(n.ChildCount())
	if count == 0 {
		if value := n.Content(content); value != "" {
			parsed.Tokens = append(parsed.Tokens, types.Token{Kind: leafKind(n, value), Value: value})
		}
		return
	}

	for i := 0; i < count; i++ {
		collectTokens(n.Child(i), content, parsed)
	}
}

// leafKind classifies a leaf node.
func leafKind(n *sitter.Node, value string) types.TokenKind {
	typ := n.Type()
	switch {
	case identifierNodes[typ]:
		return types.Identifier
	case keywordNodes[typ]:
		return types.Keyword
	case n.IsNamed():
		return types.Other
	case isWordStart(value[0]):
		return types.Keyword
	default:
		return types.Punctuator
	}
}

// commentOf strips comment delimiters.
func commentOf(text string) types.Comment {
	if strings.HasPrefix(text, "/*") {
		body := strings.TrimPrefix(text, "/*")
		body = strings.TrimSuffix(body, "*/")
		return types.Comment{Kind: types.BlockComment, Value: body}
	}
	return types.Comment{Kind: types.LineComment, Value: strings.TrimPrefix(text, "//")}
}

// unquote strips the quotes of a string literal.
func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return ""
}

func isWordStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
