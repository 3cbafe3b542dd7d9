// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package parser implements a recursive-descent parser for Algol 68
// source text in upper stropping.
//
// Input may be provided in a variety of forms (see the various Parse*
// functions); the output is a syntax tree representing the
// particular-program. Formula parsing is driven by operator
// priorities, so the parser prescans the lexeme stream for PRIO, OP,
// and MODE declarations before descending.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"go/scanner"
	"io"
	"os"
	"strconv"

	"algol68.dev/a68/ast"
	"algol68.dev/a68/lexer"
	"algol68.dev/a68/token"
)

// If src != nil, readSource converts src to a []byte if possible;
// otherwise it returns an error. If src == nil, readSource returns
// the result of reading the file specified by filename.
func readSource(filename string, src interface{}) ([]byte, error) {
	if src != nil {
		switch s := src.(type) {
		case string:
			return []byte(s), nil
		case []byte:
			return s, nil
		case *bytes.Buffer:
			// is io.Reader, but src is already available in []byte form
			if s != nil {
				return s.Bytes(), nil
			}
		case io.Reader:
			return io.ReadAll(s)
		}
		return nil, errors.New("invalid source")
	}
	return os.ReadFile(filename)
}

// ParseFile parses the source code of a single Algol 68 source file
// and returns the corresponding ast.Program node.
//
// If src != nil, ParseFile parses the source from src and the
// filename is only used when recording position information. The type
// of the argument for the src parameter must be string, []byte, or
// io.Reader. If src == nil, ParseFile parses the file specified by
// filename.
//
// Position information is recorded in the file set fset, which must
// not be nil.
func ParseFile(fset *token.FileSet, filename string, src interface{}) (prog *ast.Program, err error) {
	if fset == nil {
		panic("parser.ParseFile: no FileSet provided (fset == nil)")
	}

	text, err := readSource(filename, src)
	if err != nil {
		return nil, err
	}

	var p parser
	defer func() {
		if e := recover(); e != nil {
			// resume same panic if it's not a bailout
			if _, ok := e.(bailout); !ok {
				panic(e)
			}
		}
		p.errors.Sort()
		err = p.errors.Err()
	}()

	p.init(fset, filename, text)
	prog = p.parseProgram()

	return
}

// ParseUnit is a convenience function for obtaining the AST of a
// single unit, as entered at the monitor prompt. The filename used in
// error messages is the empty string.
func ParseUnit(fset *token.FileSet, x string) (u ast.Unit, err error) {
	var p parser
	defer func() {
		if e := recover(); e != nil {
			if _, ok := e.(bailout); !ok {
				panic(e)
			}
		}
		p.errors.Sort()
		err = p.errors.Err()
		if err != nil {
			u = nil
		}
	}()

	p.init(fset, "", []byte(x))
	u = p.parseUnit()
	p.expect(token.EndOfFile)

	return u, err
}

// A bailout panic aborts parsing after too many errors.
type bailout struct{}

// Standard priorities of the dyadic operators of the standard
// environment. PRIO declarations extend (or shadow) this table.
var standardPriorities = map[string]int{
	"OR":   2,
	"AND":  3,
	"XOR":  3,
	"=":    4, "/=": 4,
	"<": 5, "<=": 5, ">": 5, ">=": 5,
	"+": 6, "-": 6,
	"*": 7, "/": 7, "OVER": 7, "MOD": 7, "ELEM": 7,
	"**": 8, "^": 8, "SHL": 8, "SHR": 8, "LWB": 8, "UPB": 8,
	"I": 9,
}

// Bold words with a fixed syntactic role. Any other bold word is an
// indicant or a bold operator.
var keywords = map[string]bool{
	"BEGIN": true, "END": true,
	"IF": true, "THEN": true, "ELIF": true, "ELSE": true, "FI": true,
	"CASE": true, "IN": true, "OUT": true, "ESAC": true,
	"FOR": true, "FROM": true, "BY": true, "TO": true, "WHILE": true,
	"DO": true, "OD": true,
	"MODE": true, "PRIO": true, "OP": true,
	"LOC": true, "HEAP": true,
	"REF": true, "FLEX": true, "STRUCT": true, "UNION": true,
	"PROC": true, "VOID": true, "LONG": true,
	"OF": true, "AT": true, "IS": true, "ISNT": true,
	"SKIP": true, "NIL": true, "TRUE": true, "FALSE": true, "EMPTY": true,
}

// Bold words naming primitive modes of the standard environment.
var primitiveModes = map[string]bool{
	"INT": true, "REAL": true, "BOOL": true, "CHAR": true,
	"BITS": true, "BYTES": true, "COMPL": true, "STRING": true,
}

// Bold operators of the standard environment. OP declarations extend
// this set.
var standardBoldOperators = map[string]bool{
	"OR": true, "AND": true, "XOR": true,
	"OVER": true, "MOD": true, "ELEM": true,
	"SHL": true, "SHR": true, "LWB": true, "UPB": true,
	"ABS": true, "SIGN": true, "ENTIER": true, "ROUND": true,
	"ODD": true, "REPR": true, "NOT": true,
	"LENG": true, "SHORTEN": true,
	"RE": true, "IM": true, "ARG": true, "CONJ": true,
	"I": true,
}

type parser struct {
	file    *token.File
	errors  scanner.ErrorList
	lexemes []lexer.Lexeme
	cursor  int

	// Prescanned declarations affecting the grammar.
	priorities map[string]int  // dyadic operator priorities
	indicants  map[string]bool // declared mode indicants
	operators  map[string]bool // declared bold operators
}

func (p *parser) init(fset *token.FileSet, filename string, src []byte) {
	p.file = fset.AddFile(filename, -1, len(src))

	for lx := range lexer.Scan(p.file, src) {
		if lx.Token == token.Comment {
			continue
		}
		if lx.Token == token.Error {
			p.errorAt(lx.Position, lx.Value)
			continue
		}

		p.lexemes = append(p.lexemes, lx)
	}

	if p.errors.Len() > 0 {
		panic(bailout{})
	}

	p.prescan()
}

// prescan collects the PRIO, OP, and MODE declarations of the lexeme
// stream, which the grammar needs before descending: priorities drive
// formula parsing, and a bold word parses differently as an indicant
// than as an operator.
func (p *parser) prescan() {
	p.priorities = make(map[string]int)
	for op, prio := range standardPriorities {
		p.priorities[op] = prio
	}
	p.indicants = make(map[string]bool)
	p.operators = make(map[string]bool)
	for op := range standardBoldOperators {
		p.operators[op] = true
	}

	for i := 0; i+1 < len(p.lexemes); i++ {
		lx := p.lexemes[i]
		if lx.Token != token.BoldWord {
			continue
		}

		switch lx.Value {
		case "MODE":
			// MODE NAME = ..., NAME = ...
			for j := i + 1; j+1 < len(p.lexemes); j += 1 {
				if p.lexemes[j].Token != token.BoldWord || p.lexemes[j+1].Token != token.Equals {
					break
				}
				p.indicants[p.lexemes[j].Value] = true
				// Skip to the comma ending this definition, if
				// any; nested commas are bracketed.
				j = p.skipDefinition(j + 2)
				if j < 0 || p.lexemes[j].Token != token.Comma {
					break
				}
			}

		case "PRIO":
			// PRIO op = digit
			if i+3 < len(p.lexemes) &&
				(p.lexemes[i+1].Token == token.Operator || p.lexemes[i+1].Token == token.BoldWord) &&
				p.lexemes[i+2].Token == token.Equals &&
				p.lexemes[i+3].Token == token.Integer {
				n, err := strconv.Atoi(p.lexemes[i+3].Value)
				if err == nil {
					p.priorities[p.lexemes[i+1].Value] = n
				}
				if p.lexemes[i+1].Token == token.BoldWord {
					p.operators[p.lexemes[i+1].Value] = true
				}
			}

		case "OP":
			if i+1 < len(p.lexemes) && p.lexemes[i+1].Token == token.BoldWord {
				p.operators[p.lexemes[i+1].Value] = true
			}
		}
	}
}

// skipDefinition advances over one mode definition, starting at the
// token after its equals symbol, and returns the index of the first
// token at bracket depth zero that is a comma or semicolon, or -1.
func (p *parser) skipDefinition(from int) int {
	depth := 0
	for j := from; j < len(p.lexemes); j++ {
		switch p.lexemes[j].Token {
		case token.ParenOpen, token.BracketOpen:
			depth++
		case token.ParenClose, token.BracketClose:
			depth--
		case token.Comma, token.Semicolon:
			if depth == 0 {
				return j
			}
		case token.EndOfFile:
			return -1
		}
	}

	return -1
}

// Lexeme access.

func (p *parser) peek() lexer.Lexeme {
	if p.cursor >= len(p.lexemes) {
		return lexer.Lexeme{Token: token.EndOfFile, Position: token.Pos(p.file.Base() + p.file.Size())}
	}

	return p.lexemes[p.cursor]
}

func (p *parser) peekAt(n int) lexer.Lexeme {
	if p.cursor+n >= len(p.lexemes) {
		return lexer.Lexeme{Token: token.EndOfFile, Position: token.Pos(p.file.Base() + p.file.Size())}
	}

	return p.lexemes[p.cursor+n]
}

func (p *parser) next() lexer.Lexeme {
	lx := p.peek()
	p.cursor++
	return lx
}

func (p *parser) got(tok token.Token) bool {
	if p.peek().Token == tok {
		p.cursor++
		return true
	}

	return false
}

func (p *parser) gotBold(word string) bool {
	if lx := p.peek(); lx.Token == token.BoldWord && lx.Value == word {
		p.cursor++
		return true
	}

	return false
}

func (p *parser) atBold(word string) bool {
	lx := p.peek()
	return lx.Token == token.BoldWord && lx.Value == word
}

func (p *parser) expect(tok token.Token) lexer.Lexeme {
	lx := p.peek()
	if lx.Token != tok {
		p.errorf(lx.Position, "expected %s, found %s", tok, describe(lx))
		panic(bailout{})
	}

	p.cursor++

	return lx
}

func (p *parser) expectBold(word string) lexer.Lexeme {
	lx := p.peek()
	if lx.Token != token.BoldWord || lx.Value != word {
		p.errorf(lx.Position, "expected %s, found %s", word, describe(lx))
		panic(bailout{})
	}

	p.cursor++

	return lx
}

func describe(lx lexer.Lexeme) string {
	switch lx.Token {
	case token.EndOfFile:
		return "end of file"
	case token.Identifier, token.BoldWord, token.Operator:
		return strconv.Quote(lx.Value)
	default:
		return lx.Token.String()
	}
}

func (p *parser) errorAt(pos token.Pos, msg string) {
	p.errors.Add(p.file.Position(pos), msg)
	if p.errors.Len() > 10 {
		panic(bailout{})
	}
}

func (p *parser) errorf(pos token.Pos, format string, v ...any) {
	p.errorAt(pos, fmt.Sprintf(format, v...))
}

// ----------------------------------------------------------------------------
// Programs and serial clauses

func (p *parser) parseProgram() *ast.Program {
	prog := &ast.Program{
		Filename: p.file.Name(),
		Serial:   p.parseSerial(token.EndOfFile),
	}
	p.expect(token.EndOfFile)

	return prog
}

// parseSerial parses phrases separated by semicolons, stopping before
// the given closing token or any closing bold word.
func (p *parser) parseSerial(until token.Token) []ast.Phrase {
	var serial []ast.Phrase
	for {
		if lx := p.peek(); lx.Token == until || lx.Token == token.EndOfFile || p.atClosingWord() {
			return serial
		}

		serial = append(serial, p.parsePhrase()...)

		if !p.got(token.Semicolon) {
			return serial
		}
	}
}

// atClosingWord reports whether the current lexeme closes an
// enclosing construct.
func (p *parser) atClosingWord() bool {
	lx := p.peek()
	if lx.Token == token.Bar {
		return true
	}
	if lx.Token != token.BoldWord {
		return false
	}

	switch lx.Value {
	case "END", "FI", "ESAC", "OD", "THEN", "ELIF", "ELSE", "IN", "OUT", "DO", "WHILE":
		return true
	}

	return false
}

// parsePhrase parses one phrase: a declaration or a unit. A single
// declaration construct may declare several items, hence the slice.
func (p *parser) parsePhrase() []ast.Phrase {
	lx := p.peek()
	if lx.Token == token.BoldWord {
		switch lx.Value {
		case "MODE":
			return p.parseModeDeclarations()
		case "PRIO":
			return p.parsePriorityDeclarations()
		case "OP":
			return []ast.Phrase{p.parseOperatorDeclaration()}
		case "LOC", "HEAP":
			return []ast.Phrase{p.parseVariableDeclaration()}

		case "PROC":
			// "PROC name = routine text" spells no declarer of its
			// own; it is synthesised from the routine text.
			if p.peekAt(1).Token == token.Identifier && p.peekAt(2).Token == token.Equals {
				return []ast.Phrase{p.parseProcDeclaration()}
			}
		}
	}

	// A declarer at phrase level starts an identity, procedure, or
	// variable declaration; anything else is a unit.
	if p.atDeclarer() {
		if decl, ok := p.tryParseDeclaration(); ok {
			return []ast.Phrase{decl}
		}
	}

	return []ast.Phrase{p.parseUnit()}
}

// atDeclarer reports whether the current lexeme can begin a declarer.
func (p *parser) atDeclarer() bool {
	lx := p.peek()
	if lx.Token == token.BracketOpen {
		return true
	}
	if lx.Token != token.BoldWord {
		return false
	}

	switch lx.Value {
	case "REF", "FLEX", "STRUCT", "UNION", "PROC", "VOID", "LONG":
		return true
	}

	return primitiveModes[lx.Value] || p.indicants[lx.Value]
}

// parseProcDeclaration parses "PROC name = routine text", an identity
// declaration whose declarer comes from the routine text itself.
func (p *parser) parseProcDeclaration() ast.Phrase {
	proc := p.expectBold("PROC")
	name := p.expect(token.Identifier)
	eq := p.expect(token.Equals)

	rt, ok := p.tryParseRoutineText()
	if !ok {
		p.errorf(p.peek().Position, "expected a routine text after %q", name.Value)
		panic(bailout{})
	}

	d := &ast.ProcDeclarer{ProcPos: proc.Position, Result: rt.Result}
	for _, param := range rt.Parameters {
		d.Parameters = append(d.Parameters, param.Declarer)
	}

	return &ast.IdentityDeclaration{
		Declarer: d,
		Name:     &ast.Identifier{NamePos: name.Position, Name: name.Value},
		EqPos:    eq.Position,
		Source:   rt,
	}
}

// tryParseDeclaration attempts "declarer name = unit" (identity) and
// "declarer name [:= unit], ..." (variable), backtracking if the
// declarer is not followed by an identifier in a declaration position
// — then it was a cast or a formula operand instead.
func (p *parser) tryParseDeclaration() (ast.Phrase, bool) {
	mark := p.cursor

	var d ast.Declarer
	ok := p.try(func() {
		d = p.parseDeclarer()
		if p.peek().Token != token.Identifier {
			panic(bailout{})
		}
	})
	if !ok {
		return nil, false
	}

	name := &ast.Identifier{NamePos: p.peek().Position, Name: p.peek().Value}
	p.cursor++

	switch lx := p.peek(); {
	case lx.Token == token.Equals:
		eq := p.next()
		return &ast.IdentityDeclaration{
			Declarer: d,
			Name:     name,
			EqPos:    eq.Position,
			Source:   p.parseUnit(),
		}, true

	case lx.Token == token.Assign, lx.Token == token.Comma:
		decl := &ast.VariableDeclaration{
			DeclPos:  d.Pos(),
			Declarer: d,
		}
		p.cursor = mark
		p.parseDeclarer() // reposition after the declarer
		p.parseVariableDefinitions(decl)
		return decl, true

	case lx.Token == token.Semicolon, lx.Token == token.EndOfFile,
		lx.Token == token.ParenClose, p.atClosingWord():
		return &ast.VariableDeclaration{
			DeclPos:  d.Pos(),
			Declarer: d,
			Vars:     []*ast.VariableDefinition{{Name: name}},
		}, true
	}

	p.cursor = mark

	return nil, false
}

func (p *parser) parseVariableDefinitions(decl *ast.VariableDeclaration) {
	for {
		lx := p.expect(token.Identifier)
		def := &ast.VariableDefinition{
			Name: &ast.Identifier{NamePos: lx.Position, Name: lx.Value},
		}
		if p.got(token.Assign) {
			def.Init = p.parseUnit()
		}

		decl.Vars = append(decl.Vars, def)

		if !p.got(token.Comma) {
			return
		}
	}
}

// ----------------------------------------------------------------------------
// Declarations

func (p *parser) parseModeDeclarations() []ast.Phrase {
	mode := p.expectBold("MODE")

	var decls []ast.Phrase
	for {
		name := p.expect(token.BoldWord)
		eq := p.expect(token.Equals)
		decls = append(decls, &ast.ModeDeclaration{
			ModePos:  mode.Position,
			NamePos:  name.Position,
			Name:     name.Value,
			EqPos:    eq.Position,
			Declarer: p.parseDeclarer(),
		})

		if !p.got(token.Comma) {
			return decls
		}
	}
}

func (p *parser) parsePriorityDeclarations() []ast.Phrase {
	prio := p.expectBold("PRIO")

	var decls []ast.Phrase
	for {
		op := p.peek()
		if op.Token != token.Operator && op.Token != token.BoldWord {
			p.errorf(op.Position, "expected an operator symbol, found %s", describe(op))
			panic(bailout{})
		}
		p.cursor++

		eq := p.expect(token.Equals)
		val := p.expect(token.Integer)
		n, err := strconv.Atoi(val.Value)
		if err != nil || n < 1 || n > 9 {
			p.errorf(val.Position, "priority must be between 1 and 9, found %s", val.Value)
		}

		decls = append(decls, &ast.PriorityDeclaration{
			PrioPos:  prio.Position,
			OpPos:    op.Position,
			Op:       op.Value,
			EqPos:    eq.Position,
			Priority: n,
		})

		if !p.got(token.Comma) {
			return decls
		}
	}
}

func (p *parser) parseOperatorDeclaration() ast.Phrase {
	op := p.expectBold("OP")

	sym := p.peek()
	if sym.Token != token.Operator && sym.Token != token.BoldWord && sym.Token != token.Equals {
		p.errorf(sym.Position, "expected an operator symbol, found %s", describe(sym))
		panic(bailout{})
	}
	p.cursor++

	eq := p.expect(token.Equals)

	routine, ok := p.tryParseRoutineText()
	if !ok {
		p.errorf(p.peek().Position, "expected a routine text after %q", sym.Value)
		panic(bailout{})
	}

	return &ast.OperatorDeclaration{
		OpPos:   op.Position,
		SymPos:  sym.Position,
		Op:      sym.Value,
		EqPos:   eq.Position,
		Routine: routine,
	}
}

func (p *parser) parseVariableDeclaration() ast.Phrase {
	lx := p.next() // LOC or HEAP
	decl := &ast.VariableDeclaration{
		DeclPos:  lx.Position,
		Heap:     lx.Value == "HEAP",
		Declarer: p.parseDeclarer(),
	}
	p.parseVariableDefinitions(decl)

	return decl
}

// ----------------------------------------------------------------------------
// Declarers

func (p *parser) parseDeclarer() ast.Declarer {
	lx := p.peek()

	if lx.Token == token.BracketOpen {
		return p.parseRowDeclarer()
	}

	if lx.Token != token.BoldWord {
		p.errorf(lx.Position, "expected a declarer, found %s", describe(lx))
		panic(bailout{})
	}

	switch lx.Value {
	case "REF":
		p.cursor++
		return &ast.RefDeclarer{RefPos: lx.Position, X: p.parseDeclarer()}

	case "FLEX":
		p.cursor++
		return &ast.FlexDeclarer{FlexPos: lx.Position, X: p.parseDeclarer()}

	case "LONG":
		longs := 0
		pos := lx.Position
		for p.gotBold("LONG") {
			longs++
		}
		name := p.expect(token.BoldWord)
		return &ast.SimpleDeclarer{NamePos: pos, Longs: longs, Name: name.Value}

	case "STRUCT":
		return p.parseStructDeclarer()

	case "UNION":
		return p.parseUnionDeclarer()

	case "PROC":
		return p.parseProcDeclarer()

	case "VOID":
		p.cursor++
		return &ast.VoidDeclarer{VoidPos: lx.Position}
	}

	p.cursor++

	return &ast.SimpleDeclarer{NamePos: lx.Position, Name: lx.Value}
}

func (p *parser) parseRowDeclarer() ast.Declarer {
	open := p.expect(token.BracketOpen)

	d := &ast.RowDeclarer{BracketOpen: open.Position, Dim: 1}
	for {
		// Bounds are optional: "[]", "[,]", "[1:n]", "[n]".
		if p.peek().Token != token.Comma && p.peek().Token != token.BracketClose {
			bound := new(ast.BoundPair)
			u := p.parseUnit()
			if p.got(token.Colon) {
				bound.Lower = u
				if p.peek().Token != token.Comma && p.peek().Token != token.BracketClose {
					bound.Upper = p.parseUnit()
				}
			} else {
				bound.Upper = u
			}
			d.Bounds = append(d.Bounds, bound)
		}

		if !p.got(token.Comma) {
			break
		}
		d.Dim++
	}
	p.expect(token.BracketClose)
	d.X = p.parseDeclarer()

	return d
}

func (p *parser) parseStructDeclarer() ast.Declarer {
	strct := p.expectBold("STRUCT")
	p.expect(token.ParenOpen)

	d := &ast.StructDeclarer{StructPos: strct.Position}
	for {
		group := &ast.FieldGroup{Declarer: p.parseDeclarer()}
		for {
			name := p.expect(token.Identifier)
			group.Names = append(group.Names, &ast.Identifier{NamePos: name.Position, Name: name.Value})
			if !p.got(token.Comma) {
				break
			}

			// A comma either continues this field group's names or
			// starts a new group with its own declarer.
			if p.peek().Token != token.Identifier {
				p.cursor-- // restore the comma for the outer loop
				break
			}
		}

		d.Fields = append(d.Fields, group)

		if !p.got(token.Comma) {
			break
		}
	}
	close := p.expect(token.ParenClose)
	d.ParenClose = close.Position

	return d
}

func (p *parser) parseUnionDeclarer() ast.Declarer {
	union := p.expectBold("UNION")
	p.expect(token.ParenOpen)

	d := &ast.UnionDeclarer{UnionPos: union.Position}
	for {
		if p.atBold("VOID") {
			void := p.next()
			d.Members = append(d.Members, &ast.VoidDeclarer{VoidPos: void.Position})
		} else {
			d.Members = append(d.Members, p.parseDeclarer())
		}

		if !p.got(token.Comma) {
			break
		}
	}
	close := p.expect(token.ParenClose)
	d.ParenClose = close.Position

	return d
}

func (p *parser) parseProcDeclarer() ast.Declarer {
	proc := p.expectBold("PROC")

	d := &ast.ProcDeclarer{ProcPos: proc.Position}
	if p.got(token.ParenOpen) {
		for {
			d.Parameters = append(d.Parameters, p.parseDeclarer())
			if !p.got(token.Comma) {
				break
			}
		}
		p.expect(token.ParenClose)
	}

	if p.atBold("VOID") {
		void := p.next()
		d.Result = &ast.VoidDeclarer{VoidPos: void.Position}
	} else {
		d.Result = p.parseDeclarer()
	}

	return d
}
