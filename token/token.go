// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package token defines constants representing the lexical tokens of
// Algol 68 source text in upper stropping.
package token

import (
	"strconv"
)

// Token is the set of lexical tokens of Algol 68.
type Token int

// Note that EndOfFile deliberately has the value zero so that an infinite
// stream of EndOfFile tokens is emitted by a closed channel of tokens.

// The list of tokens.
const (
	// Special tokens
	EndOfFile Token = iota
	Error
	Comment

	literal_beg
	// Identifiers, bold words, and denotations
	// (these tokens stand for classes of lexemes)
	Identifier // next item
	BoldWord   // BEGIN, MODE, REF, ...
	Integer    // 12345
	Real       // 3.1415, 1e10, 2.5e-3
	Bits       // 2r1010, 16rff
	String     // "abc", "say ""hi"""
	Character  // "a"
	literal_end

	// A monadic or dyadic operator symbol, such as
	// "+" or "<=". Bold operators (OVER, MOD, ABS)
	// are scanned as BoldWord and reclassified by
	// the parser.
	Operator

	// Delimiters
	ParenOpen    // (
	ParenClose   // )
	BracketOpen  // [
	BracketClose // ]
	Comma        // ,
	Semicolon    // ;
	Colon        // :
	Equals       // =
	Assign       // :=
	Identity     // :=:
	NotIdentity  // :/=:
	Bar          // |
	At           // @
)

var tokens = [...]string{
	EndOfFile: "end of file",
	Error:     "error",
	Comment:   "comment",

	Identifier: "identifier",
	BoldWord:   "bold word",
	Integer:    "integer denotation",
	Real:       "real denotation",
	Bits:       "bits denotation",
	String:     "string denotation",
	Character:  "character denotation",

	Operator: "operator",

	ParenOpen:    "opening parenthesis",
	ParenClose:   "closing parenthesis",
	BracketOpen:  "opening bracket",
	BracketClose: "closing bracket",
	Comma:        "comma",
	Semicolon:    "semicolon",
	Colon:        "colon",
	Equals:       "equals symbol",
	Assign:       "becomes symbol",
	Identity:     "identity relator",
	NotIdentity:  "negated identity relator",
	Bar:          "bar",
	At:           "at symbol",
}

// String returns a readable description of the token tok,
// suitable for use in diagnostics.
func (tok Token) String() string {
	s := ""
	if 0 <= tok && tok < Token(len(tokens)) {
		s = tokens[tok]
	}

	if s == "" {
		s = "token(" + strconv.Itoa(int(tok)) + ")"
	}

	return s
}

// Predicates

// IsLiteral returns true for tokens corresponding to identifiers,
// bold words, and denotations; it returns false otherwise.
func (tok Token) IsLiteral() bool { return literal_beg < tok && tok < literal_end }
