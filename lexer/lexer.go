// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package lexer implements a lexical scanner for Algol 68 source text
// in upper stropping: bold words are written in upper case (BEGIN,
// MODE, REF), identifiers in lower case.
//
// It takes a []byte source, which is then tokenised into a channel of
// lexemes read by the parser.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"algol68.dev/a68/token"
)

// Lexeme describes a token, its position, and its textual value.
type Lexeme struct {
	Token    token.Token
	Position token.Pos
	Value    string
}

func (l Lexeme) String(fset *token.FileSet) string {
	return fmt.Sprintf("%s: %s (%s)", fset.Position(l.Position), l.Token, l.Value)
}

// lexer scans a sequence of bytes, producing a sequence of Algol 68
// lexemes.
type lexer struct {
	// Immutable state.
	src     []byte
	file    *token.File
	lexemes chan<- Lexeme

	// Mutable state as we progress through the source.
	offset     int // Offset into the file where the current lexeme starts.
	nextOffset int // Offset into the file of the current location.
	width      int // Number of bytes in the last code point read.
}

// Scan scans the given source, producing a sequence of lexemes.
//
// Once the end of the file is reached, or an error is encountered,
// the channel will be closed, resulting in an endless sequence of
// EndOfFile lexemes.
func Scan(file *token.File, source []byte) <-chan Lexeme {
	c := make(chan Lexeme)
	l := &lexer{
		src:     source,
		file:    file,
		lexemes: c,
	}

	go l.run()

	return c
}

// run scans through the lexer's source, emitting lexemes until the
// end of the file is reached. The channel of lexemes is then closed.
func (l *lexer) run() {
	defer close(l.lexemes)

	for {
		// Skip over any whitespace.
		for isWhitespace(l.next()) {
		}

		l.backup()
		l.advance()

		r := l.next()
		if r == eof {
			return
		}

		switch {
		case r == '(':
			l.lexeme(token.ParenOpen)
		case r == ')':
			l.lexeme(token.ParenClose)
		case r == '[':
			l.lexeme(token.BracketOpen)
		case r == ']':
			l.lexeme(token.BracketClose)
		case r == ',':
			l.lexeme(token.Comma)
		case r == ';':
			l.lexeme(token.Semicolon)
		case r == '|':
			l.lexeme(token.Bar)
		case r == '@':
			l.lexeme(token.At)
		case r == ':':
			l.scanColon()
		case r == '=':
			// "=" alone is the equals symbol of a declaration
			// or the dyadic operator; the parser decides which.
			// "=>", "=<" etc. do not exist, but "=" may start
			// nothing longer here.
			l.lexeme(token.Equals)
		case r == '#':
			// Comment runs to the closing '#'.
			for r = l.next(); r != eof && r != '#'; r = l.next() {
			}
			if r == eof {
				l.errorf("comment not closed before end of file")
				return
			}
			l.lexeme(token.Comment)
		case r == '"':
			l.scanString()
		case isOperatorRune(r):
			for r = l.next(); isOperatorRune(r); r = l.next() {
			}
			l.backup()
			l.lexeme(token.Operator)
		case isDigit(r):
			l.scanNumber()
		case isLower(r):
			for r = l.next(); isLower(r) || isDigit(r) || r == '_'; r = l.next() {
			}
			l.backup()
			l.identifierLexeme()
		case isUpper(r):
			for r = l.next(); isUpper(r); r = l.next() {
			}
			l.backup()
			l.boldLexeme()
		default:
			l.errorf("invalid character %q", r)
		}
	}
}

// End of file pseudo-rune.
const eof = -1

// eof returns whether the lexer has reached the end of the source.
func (l *lexer) eof() bool {
	return l.nextOffset >= len(l.src)
}

// errorf records the given error message.
func (l *lexer) errorf(format string, v ...any) {
	pos := l.file.Pos(l.offset)
	l.lexemes <- Lexeme{Token: token.Error, Position: pos, Value: fmt.Sprintf(format, v...)}
}

// next consumes the next code point, returning it.
func (l *lexer) next() (r rune) {
	if l.eof() {
		l.width = 0
		return eof
	}

	// Try an ASCII character first.
	r, l.width = rune(l.src[l.nextOffset]), 1
	if r >= utf8.RuneSelf {
		// Not ASCII.
		r, l.width = utf8.DecodeRune(l.src[l.nextOffset:])
		if r == utf8.RuneError && l.width == 1 {
			l.errorf("source is not valid UTF-8")
		}
	}

	l.nextOffset += l.width
	if r == '\n' {
		l.file.AddLine(l.nextOffset)
	}

	if r == 0 {
		l.errorf("illegal character NUL")
		return eof
	}

	return r
}

// backup steps back by one rune.
func (l *lexer) backup() {
	if l.nextOffset == 0 && l.eof() || l.width == 0 {
		return
	}

	l.nextOffset -= l.width
	l.width = 0
}

// advance the source position.
func (l *lexer) advance() {
	l.offset = l.nextOffset
}

// lexeme emits a Lexeme at the current position, with the given token
// type.
func (l *lexer) lexeme(tok token.Token) {
	pos := l.file.Pos(l.offset)
	val := string(l.src[l.offset:l.nextOffset])
	l.lexemes <- Lexeme{Token: tok, Position: pos, Value: val}
	l.advance()
}

// identifierLexeme emits an Identifier lexeme, normalised to NFC so
// that identifiers spelled with combining characters intern to one
// tag.
func (l *lexer) identifierLexeme() {
	pos := l.file.Pos(l.offset)
	val := norm.NFC.String(string(l.src[l.offset:l.nextOffset]))
	l.lexemes <- Lexeme{Token: token.Identifier, Position: pos, Value: val}
	l.advance()
}

// boldLexeme emits a BoldWord lexeme, or handles the comment forms CO
// and COMMENT, which run to the matching closing word.
func (l *lexer) boldLexeme() {
	val := string(l.src[l.offset:l.nextOffset])
	if val == "CO" || val == "COMMENT" {
		l.scanBoldComment(val)
		return
	}

	l.lexeme(token.BoldWord)
}

// scanBoldComment consumes text until the closing comment word is
// found.
func (l *lexer) scanBoldComment(word string) {
	rest := l.src[l.nextOffset:]
	i := indexWord(rest, word)
	if i < 0 {
		l.errorf("comment not closed before end of file")
		l.nextOffset = len(l.src)
		return
	}

	// Register any newlines we skipped over.
	for off, r := range string(rest[:i+len(word)]) {
		if r == '\n' {
			l.file.AddLine(l.nextOffset + off + 1)
		}
	}

	l.nextOffset += i + len(word)
	l.lexeme(token.Comment)
}

// indexWord finds the first occurrence of word in src that is not
// immediately preceded or followed by another upper-case letter.
func indexWord(src []byte, word string) int {
	from := 0
	for {
		i := strings.Index(string(src[from:]), word)
		if i < 0 {
			return -1
		}

		i += from
		before := i == 0 || !isUpper(rune(src[i-1]))
		afterIdx := i + len(word)
		after := afterIdx >= len(src) || !isUpper(rune(src[afterIdx]))
		if before && after {
			return i
		}

		from = i + 1
	}
}

// scanColon is called after a ':' has been scanned and resolves the
// multi-character symbols ":=", ":=:", and ":/=:".
func (l *lexer) scanColon() {
	r := l.next()
	switch r {
	case '=':
		r = l.next()
		if r == ':' {
			l.lexeme(token.Identity)
			return
		}

		l.backup()
		l.lexeme(token.Assign)
	case '/':
		r = l.next()
		if r != '=' {
			l.backup()
			l.errorf("invalid symbol %q", ":/")
			return
		}

		r = l.next()
		if r != ':' {
			l.backup()
			l.errorf("invalid symbol %q", ":/=")
			return
		}

		l.lexeme(token.NotIdentity)
	default:
		l.backup()
		l.lexeme(token.Colon)
	}
}

// scanString is called after the opening quote has been scanned. A
// doubled quote is the quote-image escape; a denotation of length one
// is a character denotation.
func (l *lexer) scanString() {
	var b strings.Builder
	for {
		r := l.next()
		if r == eof || r == '\n' {
			l.errorf("string denotation not closed")
			return
		}

		if r == '"' {
			r = l.next()
			if r != '"' {
				l.backup()
				break
			}
			// Doubled quote: a literal quote character.
		}

		b.WriteRune(r)
	}

	pos := l.file.Pos(l.offset)
	val := norm.NFC.String(b.String())
	tok := token.String
	if utf8.RuneCountInString(val) == 1 {
		tok = token.Character
	}

	l.lexemes <- Lexeme{Token: tok, Position: pos, Value: val}
	l.advance()
}

// scanNumber is called after the opening digit has been scanned. It
// resolves INT denotations, REAL denotations (with a fractional part,
// an exponent, or both), and BITS denotations of the form "2r1010".
func (l *lexer) scanNumber() {
	r := l.next()
	for isDigit(r) {
		r = l.next()
	}

	switch r {
	case 'r':
		// A bits denotation: the digits so far are the radix.
		r = l.next()
		if digitVal(r) >= 16 {
			l.backup()
			l.errorf("bits denotation has no digits")
			return
		}
		for digitVal(r) < 16 {
			r = l.next()
		}
		l.backup()
		l.lexeme(token.Bits)
	case '.':
		r = l.next()
		if !isDigit(r) {
			l.backup()
			l.errorf("real denotation has no digits after the point")
			return
		}
		for isDigit(r) {
			r = l.next()
		}
		if r == 'e' {
			l.scanExponent()
			return
		}
		l.backup()
		l.lexeme(token.Real)
	case 'e':
		l.scanExponent()
	default:
		l.backup()
		l.lexeme(token.Integer)
	}
}

// scanExponent is called after the 'e' of a real denotation has been
// scanned.
func (l *lexer) scanExponent() {
	r := l.next()
	if r == '+' || r == '-' {
		r = l.next()
	}

	if !isDigit(r) {
		l.backup()
		l.errorf("real denotation has no digits in the exponent")
		return
	}

	for isDigit(r) {
		r = l.next()
	}

	l.backup()
	l.lexeme(token.Real)
}

func isWhitespace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }
func isDigit(r rune) bool      { return '0' <= r && r <= '9' }
func isLower(r rune) bool      { return 'a' <= r && r <= 'z' }
func isUpper(r rune) bool      { return 'A' <= r && r <= 'Z' }

func isOperatorRune(r rune) bool {
	switch r {
	case '+', '-', '*', '/', '<', '>', '%', '^', '&', '!', '~':
		return true
	}
	return false
}

func digitVal(r rune) int {
	switch {
	case '0' <= r && r <= '9':
		return int(r - '0')
	case 'a' <= r && r <= 'f':
		return int(r - 'a' + 10)
	}

	return 16 // Larger than any legal digit value.
}
