// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package check

import (
	"algol68.dev/a68/ast"
	"algol68.dev/a68/mode"
	"algol68.dev/a68/scope"
	"algol68.dev/a68/token"
)

// Phase 5: bottom-up inference of every unit's natural mode. The
// soid passed down describes the context; the mode recorded and
// returned is the one the unit produces before any coercion.

func (c *checker) record(u ast.Unit, m *mode.Mode) *mode.Mode {
	c.info.Modes[u] = m
	return m
}

// checkSerial checks the phrases of a serial clause. The yield is the
// final phrase's mode; every earlier unit is a statement, checked in
// a voiding context. A trailing declaration makes the clause yield
// VOID.
func (c *checker) checkSerial(r *scope.Range, serial []ast.Phrase, s soid) *mode.Mode {
	void := soid{sort: Strong, mode: c.graph.Void}

	result := c.graph.Void
	for i, ph := range serial {
		last := i == len(serial)-1

		switch d := ph.(type) {
		case *ast.ModeDeclaration, *ast.PriorityDeclaration:
			// Handled entirely by the declaration phases.

		case *ast.IdentityDeclaration:
			tag := r.FindLocal(scope.Identifier, d.Name.Name)
			var want *mode.Mode
			if tag != nil {
				want = tag.Mode()
			}
			c.checkUnit(r, d.Source, soid{sort: Strong, mode: want})

		case *ast.VariableDeclaration:
			c.checkBounds(r, d.Declarer)
			for _, def := range d.Vars {
				if def.Init == nil {
					continue
				}
				var want *mode.Mode
				if tag := r.FindLocal(scope.Identifier, def.Name.Name); tag != nil {
					want = c.pointee(tag.Mode())
				}
				c.checkUnit(r, def.Init, soid{sort: Strong, mode: want})
			}

		case *ast.OperatorDeclaration:
			var want *mode.Mode
			if tag := c.operatorTag(r, d); tag != nil {
				want = tag.Mode()
			}
			c.checkUnit(r, d.Routine, soid{sort: Strong, mode: want})

		default:
			u := ph.(ast.Unit)
			if last {
				result = c.checkUnit(r, u, s)
			} else {
				c.checkUnit(r, u, void)
			}
		}

		if last {
			if _, ok := ph.(ast.Declaration); ok {
				result = c.graph.Void
			}
		}
	}

	return result
}

// operatorTag finds the tag entered for an operator declaration. An
// overloaded symbol has several tags in the range; they are matched
// by declaring node.
func (c *checker) operatorTag(r *scope.Range, d *ast.OperatorDeclaration) *scope.Tag {
	for _, tag := range r.FindOperators(d.Op) {
		if tag.Node() == d {
			return tag
		}
	}

	return nil
}

// pointee returns the mode a name refers to, or nil.
func (c *checker) pointee(m *mode.Mode) *mode.Mode {
	if m == nil {
		return nil
	}
	r := c.graph.Resolve(m)
	if r.Kind() != mode.Ref {
		return nil
	}

	return r.Sub()
}

// checkBounds checks the actual bounds of a row declarer.
func (c *checker) checkBounds(r *scope.Range, d ast.Declarer) {
	intCtx := soid{sort: Meek, mode: c.graph.Int}
	ast.Inspect(d, func(n ast.Node) bool {
		if row, ok := n.(*ast.RowDeclarer); ok {
			for _, b := range row.Bounds {
				if b.Lower != nil {
					c.checkUnit(r, b.Lower, intCtx)
				}
				if b.Upper != nil {
					c.checkUnit(r, b.Upper, intCtx)
				}
			}
			c.checkBounds(r, row.X)
			return false
		}

		return true
	})
}

func (c *checker) checkUnit(r *scope.Range, u ast.Unit, s soid) *mode.Mode {
	g := c.graph

	switch u := u.(type) {
	case *ast.BadUnit:
		return c.record(u, g.Error)

	case *ast.Denotation:
		return c.record(u, c.denotationMode(u))

	case *ast.Identifier:
		tag := r.Find(scope.Identifier, u.Name)
		if tag == nil {
			c.errorf(u.NamePos, "undeclared identifier %s", u.Name)
			return c.record(u, g.Error)
		}
		c.info.Uses[u] = tag
		m := tag.Mode()
		if m == nil {
			m = g.Error
		}
		return c.record(u, m)

	case *ast.Formula:
		return c.record(u, c.checkFormula(r, u))

	case *ast.Assignation:
		dm := c.checkUnit(r, u.Dest, soid{sort: Soft})
		base := c.softDeproc(dm)
		var want *mode.Mode
		switch {
		case base.IsErroneous():
			base = g.Error
		case base.Kind() != mode.Ref:
			c.errorf(u.Dest.Pos(), "the destination of an assignation must be a name, not %s", dm)
			base = g.Error
		default:
			want = base.Sub()
		}
		c.checkUnit(r, u.Source, soid{sort: Strong, mode: want})
		return c.record(u, base)

	case *ast.IdentityRelation:
		lm := c.checkUnit(r, u.Left, soid{sort: Soft})
		rm := c.checkUnit(r, u.Right, soid{sort: Soft})
		for _, side := range []*mode.Mode{lm, rm} {
			base := c.softDeproc(side)
			if !base.IsErroneous() && base.Kind() != mode.Ref {
				c.errorf(u.RelPos, "an identity relation compares names, not %s", side)
				break
			}
		}
		return c.record(u, g.Bool)

	case *ast.Cast:
		m := c.modeFromDeclarer(r, u.Declarer)
		c.casts[u] = m
		c.checkBounds(r, u.Declarer)
		c.checkUnit(r, u.X, soid{sort: Strong, mode: m, cast: true})
		return c.record(u, m)

	case *ast.ClosedClause:
		inner := c.rangeOf(u)
		return c.record(u, c.checkSerial(inner, u.Serial, s))

	case *ast.CollateralClause:
		return c.record(u, c.checkCollateral(r, u, s))

	case *ast.ConditionalClause:
		inner := c.rangeOf(u)
		c.checkSerial(inner, u.Condition, soid{sort: Meek, mode: g.Bool})

		branch := s
		if s.mode == nil {
			branch = soid{}
		}
		tm := c.checkSerial(inner, u.Then, branch)
		em := g.Void
		if u.Else != nil {
			em = c.checkSerial(inner, u.Else, branch)
		}

		if s.mode != nil {
			return c.record(u, s.mode)
		}
		return c.record(u, c.balance(u.If, []*mode.Mode{tm, em}))

	case *ast.CaseClause:
		inner := c.rangeOf(u)
		c.checkSerial(inner, u.Enquiry, soid{sort: Meek, mode: g.Int})

		branch := s
		if s.mode == nil {
			branch = soid{}
		}
		var branches []*mode.Mode
		for _, alt := range u.Alternatives {
			branches = append(branches, c.checkUnit(inner, alt, branch))
		}
		if u.Out != nil {
			branches = append(branches, c.checkSerial(inner, u.Out, branch))
		} else {
			branches = append(branches, g.Void)
		}

		if s.mode != nil {
			return c.record(u, s.mode)
		}
		return c.record(u, c.balance(u.Case, branches))

	case *ast.ConformityClause:
		return c.record(u, c.checkConformity(r, u, s))

	case *ast.LoopClause:
		inner := c.rangeOf(u)
		intCtx := soid{sort: Strong, mode: g.Int}
		if u.From != nil {
			c.checkUnit(inner, u.From, intCtx)
		}
		if u.By != nil {
			c.checkUnit(inner, u.By, intCtx)
		}
		if u.To != nil {
			c.checkUnit(inner, u.To, intCtx)
		}
		if u.While != nil {
			c.checkSerial(inner, u.While, soid{sort: Meek, mode: g.Bool})
		}
		c.checkSerial(inner, u.Do, soid{sort: Strong, mode: g.Void})
		return c.record(u, g.Void)

	case *ast.Call:
		return c.record(u, c.checkCall(r, u))

	case *ast.Slice:
		return c.record(u, c.checkSlice(r, u))

	case *ast.Selection:
		return c.record(u, c.checkSelection(r, u))

	case *ast.RoutineText:
		pm := c.routineMode(r, u)
		c.routines[u] = pm
		c.checkUnit(c.rangeOf(u), u.Body, soid{sort: Strong, mode: g.Resolve(pm).Sub()})
		return c.record(u, pm)

	case *ast.Skip:
		if s.mode != nil {
			return c.record(u, s.mode)
		}
		return c.record(u, g.Error)

	case *ast.Nihil:
		if s.mode != nil {
			want := g.Resolve(s.mode)
			if want.Kind() == mode.Ref {
				return c.record(u, s.mode)
			}
			if !want.IsErroneous() {
				c.errorf(u.NilPos, "NIL is only valid where a name is required, not %s", s.mode)
			}
		}
		return c.record(u, g.Error)

	case *ast.Coercion:
		panic("check: coercion node in unchecked tree")
	}

	panic("check: unexpected unit")
}

func (c *checker) denotationMode(u *ast.Denotation) *mode.Mode {
	g := c.graph

	switch u.Kind {
	case token.Integer:
		return g.Int
	case token.Real:
		return g.Real
	case token.Bits:
		return g.Bits
	case token.Character:
		return g.Char
	case token.String:
		return g.String
	case token.BoldWord:
		switch u.Value {
		case "TRUE", "FALSE":
			return g.Bool
		case "EMPTY":
			return g.Void
		}
	}

	panic("check: unexpected denotation kind " + u.Kind.String())
}

func (c *checker) checkFormula(r *scope.Range, u *ast.Formula) *mode.Mode {
	g := c.graph

	var operands []*mode.Mode
	if u.Left != nil {
		operands = append(operands, c.checkUnit(r, u.Left, soid{sort: Firm}))
	}
	operands = append(operands, c.checkUnit(r, u.Right, soid{sort: Firm}))

	for _, m := range operands {
		if m.IsErroneous() {
			// The root cause was already diagnosed.
			return g.Error
		}
	}

	op := c.findOperator(r, u.Op, operands)
	if op == nil {
		if len(operands) == 1 {
			c.errorf(u.OpPos, "no matching definition of operator %s for operand %s", u.Op, operands[0])
		} else {
			c.errorf(u.OpPos, "no matching definition of operator %s for operands %s and %s", u.Op, operands[0], operands[1])
		}
		return g.Error
	}

	c.info.Operators[u] = op

	return op.Result
}

func (c *checker) checkCollateral(r *scope.Range, u *ast.CollateralClause, s soid) *mode.Mode {
	g := c.graph

	if s.mode != nil {
		want := g.Resolve(s.mode)
		if want.Kind() == mode.Flex {
			want = g.Resolve(want.Sub())
		}

		switch want.Kind() {
		case mode.Row:
			elem := c.rowedValueFrom(want)
			for _, x := range u.Units {
				c.checkUnit(r, x, soid{sort: Strong, mode: elem})
			}
			return s.mode

		case mode.Struct:
			if len(want.Pack()) == len(u.Units) {
				for i, x := range u.Units {
					c.checkUnit(r, x, soid{sort: Strong, mode: want.Pack()[i].Mode})
				}
				return s.mode
			}
			c.errorf(u.Begin, "this display has %d units but %s has %d fields", len(u.Units), s.mode, len(want.Pack()))
			return g.Error

		case mode.Erroneous:
			// Fall through to the uncontexted form.
		default:
			c.errorf(u.Begin, "a collateral display requires a row or structure context, not %s", s.mode)
			return g.Error
		}
	}

	pack := make([]mode.Field, len(u.Units))
	for i, x := range u.Units {
		pack[i] = mode.Field{Mode: c.checkUnit(r, x, soid{sort: Strong}), Node: x}
	}

	return g.NewMode(mode.Stowed, len(pack), u, nil, pack)
}

func (c *checker) checkConformity(r *scope.Range, u *ast.ConformityClause, s soid) *mode.Mode {
	g := c.graph

	inner := c.rangeOf(u)
	em := c.checkSerial(inner, u.Enquiry, soid{sort: Meek})
	um := c.meekBase(em)
	if !um.IsErroneous() && um.Kind() != mode.Union {
		c.errorf(u.Case, "a conformity clause requires a united enquiry, not %s", em)
		um = g.Error
	}

	branch := s
	if s.mode == nil {
		branch = soid{}
	}

	var branches []*mode.Mode
	for _, alt := range u.Alternatives {
		altRange := c.rangeOf(alt)

		md := c.alternativeMode(inner, alt)
		if !um.IsErroneous() && !md.IsErroneous() {
			member := g.UnionContains(um, md)
			if !member && g.Resolve(md).Kind() == mode.Union {
				member = unionSubset(g, g.Resolve(md), um)
			}
			if !member {
				c.errorf(alt.Declarer.Pos(), "mode %s is not a member of %s", md, um)
			}
		}

		branches = append(branches, c.checkUnit(altRange, alt.X, branch))
	}
	if u.Out != nil {
		branches = append(branches, c.checkSerial(inner, u.Out, branch))
	} else {
		branches = append(branches, g.Void)
	}

	if s.mode != nil {
		return s.mode
	}
	return c.balance(u.Case, branches)
}

// alternativeMode resolves (and caches) the declarer mode of a
// conformity alternative. Named alternatives were already resolved
// onto their tags.
func (c *checker) alternativeMode(r *scope.Range, alt *ast.ConformityAlternative) *mode.Mode {
	if m, ok := c.alts[alt]; ok {
		return m
	}

	var m *mode.Mode
	if alt.Name != nil {
		if tag := c.rangeOf(alt).FindLocal(scope.Identifier, alt.Name.Name); tag != nil {
			m = tag.Mode()
		}
	}
	if m == nil {
		m = c.modeFromDeclarer(r, alt.Declarer)
	}

	c.alts[alt] = m

	return m
}

func (c *checker) checkCall(r *scope.Range, u *ast.Call) *mode.Mode {
	g := c.graph

	fm := c.checkUnit(r, u.Fun, soid{sort: Meek})
	proc := c.procBase(fm)

	if proc == nil || proc.IsErroneous() {
		if !fm.IsErroneous() && proc == nil {
			c.errorf(u.Fun.Pos(), "cannot call a value of mode %s", fm)
		}
		for _, arg := range u.Arguments {
			c.checkUnit(r, arg, soid{sort: Strong})
		}
		return g.Error
	}

	params := proc.Pack()
	if len(params) != len(u.Arguments) {
		c.errorf(u.ParenOpen, "this call has %d arguments but %s has %d parameters", len(u.Arguments), proc, len(params))
		for _, arg := range u.Arguments {
			c.checkUnit(r, arg, soid{sort: Strong})
		}
		return g.Error
	}

	for i, arg := range u.Arguments {
		c.checkUnit(r, arg, soid{sort: Strong, mode: params[i].Mode})
	}

	return proc.Sub()
}

// procBase dereferences fm down to a PROC with parameters, or returns
// nil if there is none. The error sentinel passes through.
func (c *checker) procBase(fm *mode.Mode) *mode.Mode {
	b := c.graph.Resolve(fm)
	for b.Kind() == mode.Ref {
		b = c.graph.Resolve(b.Sub())
	}
	if b.IsErroneous() {
		return b
	}
	if b.Kind() == mode.Proc && len(b.Pack()) > 0 {
		return b
	}

	return nil
}

func (c *checker) checkSlice(r *scope.Range, u *ast.Slice) *mode.Mode {
	g := c.graph
	intCtx := soid{sort: Meek, mode: g.Int}

	checkSubscripts := func() (trims int) {
		for _, sub := range u.Subscripts {
			switch sub := sub.(type) {
			case *ast.UnitSubscript:
				c.checkUnit(r, sub.X, intCtx)
			case *ast.Trimmer:
				trims++
				if sub.Lower != nil {
					c.checkUnit(r, sub.Lower, intCtx)
				}
				if sub.Upper != nil {
					c.checkUnit(r, sub.Upper, intCtx)
				}
				if sub.At != nil {
					c.checkUnit(r, sub.At, intCtx)
				}
			}
		}
		return trims
	}

	am := c.checkUnit(r, u.Array, soid{sort: Weak})
	base := c.weakBase(am)

	isName := base.Kind() == mode.Ref
	row := base
	if isName {
		row = g.Resolve(base.Sub())
	}
	if row.Kind() == mode.Flex {
		row = g.Resolve(row.Sub())
	}

	if row.Kind() != mode.Row {
		if !base.IsErroneous() {
			c.errorf(u.Array.Pos(), "cannot subscript a value of mode %s", am)
		}
		checkSubscripts()
		return g.Error
	}

	trims := checkSubscripts()
	if len(u.Subscripts) != row.Dim() {
		c.errorf(u.BracketOpen, "this slice has %d subscripts but %s has %d dimensions", len(u.Subscripts), row, row.Dim())
		return g.Error
	}

	var result *mode.Mode
	switch {
	case trims == 0 && row.Dim() == 1:
		result = g.Sliced(row)
	case trims == 0:
		result = g.Resolve(row.Sub())
	default:
		result = g.Intern(mode.Row, trims, u, row.Sub(), nil)
	}

	if isName {
		result = g.Intern(mode.Ref, 0, u, result, nil)
	}

	return result
}

func (c *checker) checkSelection(r *scope.Range, u *ast.Selection) *mode.Mode {
	g := c.graph

	xm := c.checkUnit(r, u.X, soid{sort: Weak})
	base := c.weakBase(xm)
	if base.IsErroneous() {
		return g.Error
	}

	isName := base.Kind() == mode.Ref
	b := base
	if isName {
		b = g.Resolve(base.Sub())
	}
	if b.Kind() == mode.Flex {
		b = g.Resolve(b.Sub())
	}

	// Selecting through a row distributes over the elements: the
	// multiple-selection forms.
	rowDim := 0
	if b.Kind() == mode.Row {
		rowDim = b.Dim()
		b = g.Resolve(b.Sub())
	}

	if b.Kind() != mode.Struct {
		c.errorf(u.OfPos, "cannot select from a value of mode %s", xm)
		return g.Error
	}

	var field *mode.Mode
	for _, f := range b.Pack() {
		if f.Name == u.Field.Name {
			field = f.Mode
			break
		}
	}
	if field == nil {
		c.errorf(u.Field.NamePos, "mode %s has no field %s", b, u.Field.Name)
		return g.Error
	}

	result := g.Resolve(field)
	if rowDim > 0 {
		result = g.Intern(mode.Row, rowDim, u, result, nil)
	}
	if isName {
		result = g.Intern(mode.Ref, 0, u, result, nil)
	}

	return result
}
