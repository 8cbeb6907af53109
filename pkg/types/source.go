// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines shared types used across jsdeps packages.
package types

// TokenKind identifies the lexical category of a token.
type TokenKind int

const (
	Identifier        TokenKind = iota // Identifier or property name
	Punctuator                         // Operators and punctuation
	Keyword                            // Reserved words, this, literals like null
	String                             // String literal (atomic)
	RegularExpression                  // Regex literal (atomic)
	Numeric                            // Number literal
	Other                              // Anything else
)

// String returns the human-readable name of the token kind.
func (k TokenKind) String() string {
	switch k {
	case Identifier:
		return "Identifier"
	case Punctuator:
		return "Punctuator"
	case Keyword:
		return "Keyword"
	case String:
		return "String"
	case RegularExpression:
		return "RegularExpression"
	case Numeric:
		return "Numeric"
	default:
		return "Other"
	}
}

// Token is a single lexical token of a parsed source file.
type Token struct {
	Kind  TokenKind `json:"kind"`
	Value string    `json:"value"`
}

// CommentKind distinguishes line comments from block comments.
type CommentKind int

const (
	LineComment  CommentKind = iota // "// ..."
	BlockComment                    // "/* ... */"
)

// Comment is a source comment with its delimiters stripped. For a block
// comment "/** x */" the value is "* x ".
type Comment struct {
	Kind  CommentKind `json:"kind"`
	Value string      `json:"value"`
}

// Parsed is the parsed form of a source file.
type Parsed struct {
	Tokens   []Token   `json:"tokens"`
	Comments []Comment `json:"comments"`
}

// SourceFile is one discovered JavaScript file with its namespace
// declarations. Parsed is nil when the file could not be parsed.
type SourceFile struct {
	Path     string   `json:"path"`
	Provides []string `json:"provides"`
	Requires []string `json:"requires"`
	IsModule bool     `json:"isModule"` // Declared with goog.module
	Parsed   *Parsed  `json:"parsed,omitempty"`
}
