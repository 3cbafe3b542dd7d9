// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package parser

import (
	"algol68.dev/a68/ast"
	"algol68.dev/a68/token"
)

// try runs f, backtracking the parser and reporting failure if f
// bails out.
func (p *parser) try(f func()) (ok bool) {
	mark := p.cursor
	errs := len(p.errors)
	defer func() {
		if e := recover(); e != nil {
			if _, isBailout := e.(bailout); !isBailout {
				panic(e)
			}
			p.cursor = mark
			p.errors = p.errors[:errs]
			ok = false
		}
	}()

	f()

	return true
}

// parseUnit parses one unit. Assignations and identity relations bind
// loosest; an assignation's source is itself a unit, so ":=" is
// right-associative.
func (p *parser) parseUnit() ast.Unit {
	x := p.parseFormula(1)

	switch lx := p.peek(); {
	case lx.Token == token.Assign:
		p.cursor++
		return &ast.Assignation{
			Dest:      x,
			BecomesAt: lx.Position,
			Source:    p.parseUnit(),
		}

	case lx.Token == token.Identity, p.atBold("IS"):
		p.cursor++
		return &ast.IdentityRelation{
			Left:   x,
			RelPos: lx.Position,
			Right:  p.parseFormula(1),
		}

	case lx.Token == token.NotIdentity, p.atBold("ISNT"):
		p.cursor++
		return &ast.IdentityRelation{
			Left:    x,
			RelPos:  lx.Position,
			Negated: true,
			Right:   p.parseFormula(1),
		}
	}

	return x
}

// dyadic returns the operator symbol and priority of the current
// lexeme if it can act as a dyadic operator.
func (p *parser) dyadic() (sym string, prio int, ok bool) {
	lx := p.peek()
	switch lx.Token {
	case token.Operator:
		// An undeclared symbol still parses; the checker reports it.
		prio, ok := p.priorities[lx.Value]
		if !ok {
			prio = 7
		}
		return lx.Value, prio, true

	case token.Equals:
		return "=", p.priorities["="], true

	case token.BoldWord:
		if prio, ok := p.priorities[lx.Value]; ok && p.operators[lx.Value] {
			return lx.Value, prio, true
		}
	}

	return "", 0, false
}

// parseFormula parses a formula of dyadic operators with priority at
// least min, climbing from the loosest priority (1) to the tightest
// (9). Operators of equal priority associate to the left.
func (p *parser) parseFormula(min int) ast.Unit {
	left := p.parseOperand()

	for {
		sym, prio, ok := p.dyadic()
		if !ok || prio < min {
			return left
		}

		pos := p.next().Position
		left = &ast.Formula{
			Left:  left,
			OpPos: pos,
			Op:    sym,
			Right: p.parseFormula(prio + 1),
		}
	}
}

// parseOperand parses an operand of a formula: a secondary, possibly
// preceded by monadic operators.
func (p *parser) parseOperand() ast.Unit {
	lx := p.peek()

	monadic := lx.Token == token.Operator ||
		lx.Token == token.BoldWord && p.operators[lx.Value] && !p.indicants[lx.Value]
	if monadic {
		p.cursor++
		return &ast.Formula{
			OpPos: lx.Position,
			Op:    lx.Value,
			Right: p.parseOperand(),
		}
	}

	return p.parseSecondary()
}

// parseSecondary parses a secondary: a selection chain or a primary.
func (p *parser) parseSecondary() ast.Unit {
	if lx := p.peek(); lx.Token == token.Identifier && p.peekAt(1).Token == token.BoldWord && p.peekAt(1).Value == "OF" {
		field := &ast.Identifier{NamePos: lx.Position, Name: lx.Value}
		p.cursor++
		of := p.next()
		return &ast.Selection{
			Field: field,
			OfPos: of.Position,
			X:     p.parseSecondary(),
		}
	}

	return p.parsePrimary()
}

// parsePrimary parses a primary and its postfix call and slice parts.
func (p *parser) parsePrimary() ast.Unit {
	x := p.parseBasePrimary()

	for {
		switch p.peek().Token {
		case token.ParenOpen:
			open := p.next()
			call := &ast.Call{Fun: x, ParenOpen: open.Position}
			for {
				call.Arguments = append(call.Arguments, p.parseUnit())
				if !p.got(token.Comma) {
					break
				}
			}
			close := p.expect(token.ParenClose)
			call.ParenClose = close.Position
			x = call

		case token.BracketOpen:
			open := p.next()
			slice := &ast.Slice{Array: x, BracketOpen: open.Position}
			for {
				slice.Subscripts = append(slice.Subscripts, p.parseSubscript())
				if !p.got(token.Comma) {
					break
				}
			}
			close := p.expect(token.BracketClose)
			slice.BracketClose = close.Position
			x = slice

		default:
			return x
		}
	}
}

// parseSubscript parses one subscript of a slice: a single index or a
// trimmer "lower : upper [@ at]", where all three parts are optional.
func (p *parser) parseSubscript() ast.Subscript {
	t := new(ast.Trimmer)
	if lx := p.peek(); lx.Token != token.Colon && lx.Token != token.At &&
		lx.Token != token.Comma && lx.Token != token.BracketClose {
		t.Lower = p.parseUnit()
	}

	if lx := p.peek(); lx.Token == token.Comma || lx.Token == token.BracketClose {
		if t.Lower == nil {
			p.errorf(lx.Position, "expected a subscript, found %s", describe(lx))
			panic(bailout{})
		}
		// A bare unit: a single index, not a trimmer.
		return &ast.UnitSubscript{X: t.Lower}
	}

	if lx := p.peek(); lx.Token == token.Colon {
		t.ColonPos = lx.Position
		p.cursor++
		if next := p.peek(); next.Token != token.Comma && next.Token != token.BracketClose && next.Token != token.At {
			t.Upper = p.parseUnit()
		}
	}

	if lx := p.peek(); lx.Token == token.At {
		t.AtPos = lx.Position
		p.cursor++
		t.At = p.parseUnit()
	}

	return t
}

// parseBasePrimary parses a primary without its postfix parts.
func (p *parser) parseBasePrimary() ast.Unit {
	lx := p.peek()

	switch lx.Token {
	case token.Integer, token.Real, token.Bits, token.String, token.Character:
		p.cursor++
		return &ast.Denotation{ValuePos: lx.Position, Kind: lx.Token, Value: lx.Value}

	case token.Identifier:
		p.cursor++
		return &ast.Identifier{NamePos: lx.Position, Name: lx.Value}

	case token.ParenOpen:
		// "(INT n) INT: ..." is a routine text; anything else in
		// parentheses is an enclosed clause.
		if rt, ok := p.tryParseRoutineText(); ok {
			return rt
		}
		return p.parseEnclosed()

	case token.BoldWord:
		switch lx.Value {
		case "TRUE", "FALSE", "EMPTY":
			p.cursor++
			return &ast.Denotation{ValuePos: lx.Position, Kind: token.BoldWord, Value: lx.Value}

		case "SKIP":
			p.cursor++
			return &ast.Skip{SkipPos: lx.Position}

		case "NIL":
			p.cursor++
			return &ast.Nihil{NilPos: lx.Position}

		case "BEGIN":
			return p.parseEnclosed()

		case "IF":
			p.cursor++
			return p.parseConditional(lx.Position)

		case "CASE":
			return p.parseCase()

		case "FOR", "FROM", "BY", "TO", "WHILE", "DO":
			return p.parseLoop()
		}

		if p.atDeclarer() {
			if rt, ok := p.tryParseRoutineText(); ok {
				return rt
			}
			return p.parseCast()
		}

	case token.BracketOpen:
		// A row declarer starting a cast or routine text.
		if rt, ok := p.tryParseRoutineText(); ok {
			return rt
		}
		return p.parseCast()
	}

	p.errorf(lx.Position, "expected a unit, found %s", describe(lx))
	panic(bailout{})
}

// parseCast parses "DECLARER (unit)".
func (p *parser) parseCast() ast.Unit {
	d := p.parseDeclarer()
	open := p.expect(token.ParenOpen)
	x := p.parseUnit()
	close := p.expect(token.ParenClose)

	return &ast.Cast{
		Declarer:   d,
		ParenOpen:  open.Position,
		X:          x,
		ParenClose: close.Position,
	}
}

// tryParseRoutineText attempts "(d1 n1, ...) RESULT: unit" or
// "RESULT: unit", backtracking on failure.
func (p *parser) tryParseRoutineText() (*ast.RoutineText, bool) {
	rt := &ast.RoutineText{ParenOpen: token.NoPos}

	ok := p.try(func() {
		if lx := p.peek(); lx.Token == token.ParenOpen {
			rt.ParenOpen = lx.Position
			p.cursor++
			for {
				param := &ast.Parameter{Declarer: p.parseDeclarer()}
				name := p.expect(token.Identifier)
				param.Name = &ast.Identifier{NamePos: name.Position, Name: name.Value}
				rt.Parameters = append(rt.Parameters, param)
				if !p.got(token.Comma) {
					break
				}
			}
			p.expect(token.ParenClose)
		}

		if p.atBold("VOID") {
			void := p.next()
			rt.Result = &ast.VoidDeclarer{VoidPos: void.Position}
		} else {
			rt.Result = p.parseDeclarer()
		}

		colon := p.expect(token.Colon)
		rt.Colon = colon.Position
	})
	if !ok {
		return nil, false
	}

	rt.Body = p.parseUnit()

	return rt, true
}

// ----------------------------------------------------------------------------
// Enclosed clauses

// parseEnclosed parses "( ... )" or "BEGIN ... END": a closed clause,
// a collateral clause, or — in the brief form with bars — a
// conditional or case clause.
func (p *parser) parseEnclosed() ast.Unit {
	open := p.next() // "(" or BEGIN
	brief := open.Token == token.ParenOpen

	serial := p.parseSerial(token.ParenClose)

	// "( enquiry | ... )" is a brief conditional or case clause.
	if brief && p.peek().Token == token.Bar {
		return p.parseBrief(open.Position, serial)
	}

	// A comma after the first phrase makes this a collateral clause.
	if len(serial) == 1 && p.peek().Token == token.Comma {
		u, ok := serial[0].(ast.Unit)
		if !ok {
			p.errorf(serial[0].Pos(), "%s is not valid in a collateral clause", serial[0])
			panic(bailout{})
		}

		coll := &ast.CollateralClause{Begin: open.Position, Units: []ast.Unit{u}}
		for p.got(token.Comma) {
			coll.Units = append(coll.Units, p.parseUnit())
		}
		coll.Close = p.expectEnclosedEnd(brief)
		return coll
	}

	return &ast.ClosedClause{
		Begin:  open.Position,
		Serial: serial,
		Close:  p.expectEnclosedEnd(brief),
	}
}

func (p *parser) expectEnclosedEnd(brief bool) token.Pos {
	if brief {
		return p.expect(token.ParenClose).Position
	}
	return p.expectBold("END").Position
}

// parseBrief parses the remainder of a brief conditional or case
// clause, after the enquiry and at the first bar. One alternative
// between the bars is a conditional; several are a case clause.
func (p *parser) parseBrief(open token.Pos, enquiry []ast.Phrase) ast.Unit {
	p.expect(token.Bar)

	first := p.parseUnit()
	if p.peek().Token != token.Comma {
		// Conditional: ( enquiry | then | else ).
		c := &ast.ConditionalClause{
			If:        open,
			Condition: enquiry,
			Then:      []ast.Phrase{first},
		}
		if p.got(token.Bar) {
			c.Else = []ast.Phrase{p.parseUnit()}
		}
		c.Fi = p.expect(token.ParenClose).Position
		return c
	}

	// Case clause: ( enquiry | u1, u2, ... | out ).
	c := &ast.CaseClause{
		Case:         open,
		Enquiry:      enquiry,
		Alternatives: []ast.Unit{first},
	}
	for p.got(token.Comma) {
		c.Alternatives = append(c.Alternatives, p.parseUnit())
	}
	if p.got(token.Bar) {
		c.Out = []ast.Phrase{p.parseUnit()}
	}
	c.Esac = p.expect(token.ParenClose).Position

	return c
}

// parseConditional parses the remainder of a conditional clause after
// its IF (or ELIF) has been consumed. An ELIF part becomes a nested
// conditional in the else branch.
func (p *parser) parseConditional(ifPos token.Pos) *ast.ConditionalClause {
	c := &ast.ConditionalClause{If: ifPos}
	c.Condition = p.parseSerial(token.EndOfFile)
	p.expectBold("THEN")
	c.Then = p.parseSerial(token.EndOfFile)

	switch {
	case p.atBold("ELIF"):
		elif := p.next()
		nested := p.parseConditional(elif.Position)
		c.Else = []ast.Phrase{nested}
		c.Fi = nested.Fi

	case p.gotBold("ELSE"):
		c.Else = p.parseSerial(token.EndOfFile)
		c.Fi = p.expectBold("FI").Position

	default:
		c.Fi = p.expectBold("FI").Position
	}

	return c
}

// parseCase parses a case clause or a conformity clause. The two are
// distinguished by the form of the first alternative: "(DECLARER
// name):" opens a conformity alternative.
func (p *parser) parseCase() ast.Unit {
	casePos := p.expectBold("CASE").Position
	enquiry := p.parseSerial(token.EndOfFile)
	p.expectBold("IN")

	if alt, ok := p.tryParseConformityAlternative(); ok {
		c := &ast.ConformityClause{
			Case:         casePos,
			Enquiry:      enquiry,
			Alternatives: []*ast.ConformityAlternative{alt},
		}
		for p.got(token.Comma) {
			alt, ok := p.tryParseConformityAlternative()
			if !ok {
				p.errorf(p.peek().Position, "expected a conformity alternative, found %s", describe(p.peek()))
				panic(bailout{})
			}
			c.Alternatives = append(c.Alternatives, alt)
		}
		if p.gotBold("OUT") {
			c.Out = p.parseSerial(token.EndOfFile)
		}
		c.Esac = p.expectBold("ESAC").Position
		return c
	}

	c := &ast.CaseClause{Case: casePos, Enquiry: enquiry}
	for {
		c.Alternatives = append(c.Alternatives, p.parseUnit())
		if !p.got(token.Comma) {
			break
		}
	}
	if p.gotBold("OUT") {
		c.Out = p.parseSerial(token.EndOfFile)
	}
	c.Esac = p.expectBold("ESAC").Position

	return c
}

// tryParseConformityAlternative attempts "(DECLARER [name]): unit",
// backtracking on failure.
func (p *parser) tryParseConformityAlternative() (*ast.ConformityAlternative, bool) {
	alt := new(ast.ConformityAlternative)

	ok := p.try(func() {
		open := p.expect(token.ParenOpen)
		alt.ParenOpen = open.Position
		alt.Declarer = p.parseDeclarer()
		if lx := p.peek(); lx.Token == token.Identifier {
			alt.Name = &ast.Identifier{NamePos: lx.Position, Name: lx.Value}
			p.cursor++
		}
		p.expect(token.ParenClose)
		colon := p.expect(token.Colon)
		alt.Colon = colon.Position
	})
	if !ok {
		return nil, false
	}

	alt.X = p.parseUnit()

	return alt, true
}

// parseLoop parses "[FOR id] [FROM u] [BY u] [TO u] [WHILE enquiry]
// DO serial OD". Every part before DO is optional.
func (p *parser) parseLoop() *ast.LoopClause {
	loop := &ast.LoopClause{LoopPos: p.peek().Position}

	if p.gotBold("FOR") {
		name := p.expect(token.Identifier)
		loop.For = &ast.Identifier{NamePos: name.Position, Name: name.Value}
	}
	if p.gotBold("FROM") {
		loop.From = p.parseUnit()
	}
	if p.gotBold("BY") {
		loop.By = p.parseUnit()
	}
	if p.gotBold("TO") {
		loop.To = p.parseUnit()
	}
	if p.gotBold("WHILE") {
		loop.While = p.parseSerial(token.EndOfFile)
	}

	p.expectBold("DO")
	loop.Do = p.parseSerial(token.EndOfFile)
	loop.Od = p.expectBold("OD").Position

	return loop
}
