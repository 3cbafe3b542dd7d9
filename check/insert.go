// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package check

import (
	"algol68.dev/a68/ast"
	"algol68.dev/a68/mode"
	"algol68.dev/a68/scope"
)

// Phase 6: the coercion inserter. A second, top-down pass over the
// checked tree, rebuilding it with every implicit conversion made
// explicit as an ast.Coercion wrapper. Subtrees that need no
// coercions are shared with the original tree; nothing is modified in
// place.
//
// Enclosed clauses route their context into their branches, so the
// coercions land on the final unit of each branch rather than around
// the whole clause.

func (c *checker) insertSerial(r *scope.Range, serial []ast.Phrase, s soid) []ast.Phrase {
	void := soid{sort: Strong, mode: c.graph.Void}

	out := make([]ast.Phrase, len(serial))
	for i, ph := range serial {
		last := i == len(serial)-1

		switch d := ph.(type) {
		case *ast.ModeDeclaration, *ast.PriorityDeclaration:
			out[i] = ph

		case *ast.IdentityDeclaration:
			var want *mode.Mode
			if tag := r.FindLocal(scope.Identifier, d.Name.Name); tag != nil {
				want = tag.Mode()
			}
			decl := *d
			decl.Source = c.insertUnit(r, d.Source, soid{sort: Strong, mode: want})
			out[i] = &decl

		case *ast.VariableDeclaration:
			decl := *d
			decl.Vars = make([]*ast.VariableDefinition, len(d.Vars))
			for j, def := range d.Vars {
				v := *def
				if def.Init != nil {
					var want *mode.Mode
					if tag := r.FindLocal(scope.Identifier, def.Name.Name); tag != nil {
						want = c.pointee(tag.Mode())
					}
					v.Init = c.insertUnit(r, def.Init, soid{sort: Strong, mode: want})
				}
				decl.Vars[j] = &v
			}
			out[i] = &decl

		case *ast.OperatorDeclaration:
			var want *mode.Mode
			if tag := c.operatorTag(r, d); tag != nil {
				want = tag.Mode()
			}
			rebuilt := c.insertUnit(r, d.Routine, soid{sort: Strong, mode: want})
			if rt, ok := rebuilt.(*ast.RoutineText); ok {
				decl := *d
				decl.Routine = rt
				out[i] = &decl
			} else {
				out[i] = d
			}

		default:
			u := ph.(ast.Unit)
			if last {
				out[i] = c.insertUnit(r, u, s)
			} else {
				out[i] = c.insertUnit(r, u, void)
			}
		}
	}

	return out
}

// insertUnit rebuilds a unit's substructure with coercions, then
// wraps the unit itself with the chain its context requires.
func (c *checker) insertUnit(r *scope.Range, u ast.Unit, s soid) ast.Unit {
	rebuilt, delegated := c.rebuild(r, u, s)
	if delegated {
		// An enclosed clause routed s into its branches.
		return rebuilt
	}

	have := c.info.Modes[u]
	steps, ok := c.steps(s.sort, have, s.mode)
	if !ok {
		c.errorf(u.Pos(), "cannot coerce %s to %s in a %s position", have, s.mode, s.sort)
		return rebuilt
	}

	return wrap(rebuilt, steps)
}

// rebuild returns the unit with its children coerced. The second
// result reports that the unit consumed the context itself and must
// not be wrapped by the caller.
func (c *checker) rebuild(r *scope.Range, u ast.Unit, s soid) (ast.Unit, bool) {
	g := c.graph

	switch u := u.(type) {
	case *ast.BadUnit, *ast.Denotation, *ast.Identifier, *ast.Skip, *ast.Nihil:
		return u, false

	case *ast.Formula:
		op := c.info.Operators[u]
		if op == nil {
			return u, false
		}
		f := *u
		if u.Left != nil {
			f.Left = c.insertUnit(r, u.Left, soid{sort: Firm, mode: op.Operands[0]})
			f.Right = c.insertUnit(r, u.Right, soid{sort: Firm, mode: op.Operands[1]})
		} else {
			f.Right = c.insertUnit(r, u.Right, soid{sort: Firm, mode: op.Operands[0]})
		}
		return &f, false

	case *ast.Assignation:
		a := *u
		base := c.softDeproc(c.info.Modes[u.Dest])
		var destWant, srcWant *mode.Mode
		if base.Kind() == mode.Ref && !base.IsErroneous() {
			destWant = base
			srcWant = base.Sub()
		}
		a.Dest = c.insertUnit(r, u.Dest, soid{sort: Soft, mode: destWant})
		a.Source = c.insertUnit(r, u.Source, soid{sort: Strong, mode: srcWant})
		return &a, false

	case *ast.IdentityRelation:
		rel := *u
		rel.Left = c.insertUnit(r, u.Left, soid{sort: Soft, mode: c.nameBase(u.Left)})
		rel.Right = c.insertUnit(r, u.Right, soid{sort: Soft, mode: c.nameBase(u.Right)})
		return &rel, false

	case *ast.Cast:
		cast := *u
		cast.X = c.insertUnit(r, u.X, soid{sort: Strong, mode: c.casts[u], cast: true})
		return &cast, false

	case *ast.ClosedClause:
		clause := *u
		clause.Serial = c.insertSerial(c.rangeOf(u), u.Serial, s)
		return &clause, true

	case *ast.CollateralClause:
		return c.rebuildCollateral(r, u), true

	case *ast.ConditionalClause:
		inner := c.rangeOf(u)
		branch := soid{sort: Strong, mode: c.info.Modes[u]}
		clause := *u
		clause.Condition = c.insertSerial(inner, u.Condition, soid{sort: Meek, mode: g.Bool})
		clause.Then = c.insertSerial(inner, u.Then, branch)
		if u.Else != nil {
			clause.Else = c.insertSerial(inner, u.Else, branch)
		}
		return &clause, true

	case *ast.CaseClause:
		inner := c.rangeOf(u)
		branch := soid{sort: Strong, mode: c.info.Modes[u]}
		clause := *u
		clause.Enquiry = c.insertSerial(inner, u.Enquiry, soid{sort: Meek, mode: g.Int})
		clause.Alternatives = make([]ast.Unit, len(u.Alternatives))
		for i, alt := range u.Alternatives {
			clause.Alternatives[i] = c.insertUnit(inner, alt, branch)
		}
		if u.Out != nil {
			clause.Out = c.insertSerial(inner, u.Out, branch)
		}
		return &clause, true

	case *ast.ConformityClause:
		inner := c.rangeOf(u)
		branch := soid{sort: Strong, mode: c.info.Modes[u]}
		clause := *u
		clause.Enquiry = c.insertSerial(inner, u.Enquiry, soid{sort: Meek})
		clause.Alternatives = make([]*ast.ConformityAlternative, len(u.Alternatives))
		for i, alt := range u.Alternatives {
			a := *alt
			a.X = c.insertUnit(c.rangeOf(alt), alt.X, branch)
			clause.Alternatives[i] = &a
		}
		if u.Out != nil {
			clause.Out = c.insertSerial(inner, u.Out, branch)
		}
		return &clause, true

	case *ast.LoopClause:
		inner := c.rangeOf(u)
		intCtx := soid{sort: Strong, mode: g.Int}
		loop := *u
		if u.From != nil {
			loop.From = c.insertUnit(inner, u.From, intCtx)
		}
		if u.By != nil {
			loop.By = c.insertUnit(inner, u.By, intCtx)
		}
		if u.To != nil {
			loop.To = c.insertUnit(inner, u.To, intCtx)
		}
		if u.While != nil {
			loop.While = c.insertSerial(inner, u.While, soid{sort: Meek, mode: g.Bool})
		}
		loop.Do = c.insertSerial(inner, u.Do, soid{sort: Strong, mode: g.Void})
		return &loop, false

	case *ast.Call:
		call := *u
		proc := c.procBase(c.info.Modes[u.Fun])
		if proc == nil || proc.IsErroneous() || len(proc.Pack()) != len(u.Arguments) {
			return u, false
		}
		call.Fun = c.insertUnit(r, u.Fun, soid{sort: Meek, mode: proc})
		call.Arguments = make([]ast.Unit, len(u.Arguments))
		for i, arg := range u.Arguments {
			call.Arguments[i] = c.insertUnit(r, arg, soid{sort: Strong, mode: proc.Pack()[i].Mode})
		}
		return &call, false

	case *ast.Slice:
		slice := *u
		slice.Array = c.insertUnit(r, u.Array, soid{sort: Weak, mode: c.weakBase(c.info.Modes[u.Array])})
		slice.Subscripts = make([]ast.Subscript, len(u.Subscripts))
		intCtx := soid{sort: Meek, mode: g.Int}
		for i, sub := range u.Subscripts {
			switch sub := sub.(type) {
			case *ast.UnitSubscript:
				slice.Subscripts[i] = &ast.UnitSubscript{X: c.insertUnit(r, sub.X, intCtx)}
			case *ast.Trimmer:
				t := *sub
				if sub.Lower != nil {
					t.Lower = c.insertUnit(r, sub.Lower, intCtx)
				}
				if sub.Upper != nil {
					t.Upper = c.insertUnit(r, sub.Upper, intCtx)
				}
				if sub.At != nil {
					t.At = c.insertUnit(r, sub.At, intCtx)
				}
				slice.Subscripts[i] = &t
			}
		}
		return &slice, false

	case *ast.Selection:
		sel := *u
		sel.X = c.insertUnit(r, u.X, soid{sort: Weak, mode: c.weakBase(c.info.Modes[u.X])})
		return &sel, false

	case *ast.RoutineText:
		rt := *u
		var result *mode.Mode
		if pm := c.routines[u]; pm != nil {
			result = g.Resolve(pm).Sub()
		}
		rt.Body = c.insertUnit(c.rangeOf(u), u.Body, soid{sort: Strong, mode: result})
		return &rt, false

	case *ast.Coercion:
		panic("check: coercion node in unchecked tree")
	}

	panic("check: unexpected unit in insertion")
}

// nameBase returns the softened mode of an identity-relation side, or
// nil when the side does not produce a name.
func (c *checker) nameBase(u ast.Unit) *mode.Mode {
	base := c.softDeproc(c.info.Modes[u])
	if base.Kind() != mode.Ref || base.IsErroneous() {
		return nil
	}

	return base
}

func (c *checker) rebuildCollateral(r *scope.Range, u *ast.CollateralClause) ast.Unit {
	g := c.graph

	clause := *u
	clause.Units = make([]ast.Unit, len(u.Units))

	want := g.Resolve(c.info.Modes[u])
	if want.Kind() == mode.Flex {
		want = g.Resolve(want.Sub())
	}

	switch want.Kind() {
	case mode.Row:
		elem := c.rowedValueFrom(want)
		for i, x := range u.Units {
			clause.Units[i] = c.insertUnit(r, x, soid{sort: Strong, mode: elem})
		}

	case mode.Struct:
		for i, x := range u.Units {
			clause.Units[i] = c.insertUnit(r, x, soid{sort: Strong, mode: want.Pack()[i].Mode})
		}

	default:
		for i, x := range u.Units {
			clause.Units[i] = c.insertUnit(r, x, soid{sort: Strong})
		}
	}

	return &clause
}
