// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package check

import (
	"algol68.dev/a68/ast"
	"algol68.dev/a68/mode"
)

// Sort is the strength of a syntactic position: how much implicit
// conversion the position licenses. Each sort licenses the coercions
// of all weaker sorts plus one more.
type Sort int

const (
	NoSort Sort = iota
	Soft        // deproceduring only
	Weak        // dereferencing down to a REF to a stowed value
	Meek        // full dereferencing and deproceduring
	Firm        // Meek plus uniting
	Strong      // Firm plus widening, rowing, and voiding
)

var sortNames = [...]string{
	NoSort: "no sort",
	Soft:   "soft",
	Weak:   "weak",
	Meek:   "meek",
	Firm:   "firm",
	Strong: "strong",
}

func (s Sort) String() string { return sortNames[s] }

// A soid carries a context down the tree: the sort of the position
// and, when the context dictates one, the required mode.
type soid struct {
	sort Sort
	mode *mode.Mode // nil when the context imposes no mode
	cast bool       // the requirement comes from a cast
}

// maxChain bounds the coercion search. Every step either strips a
// layer off the produced mode or a dimension off the required one, so
// a longer chain indicates a broken graph, not a long program.
const maxChain = 16

// softDeproc strips parameterless PROC layers: the deproceduring a
// soft position licenses.
func (c *checker) softDeproc(m *mode.Mode) *mode.Mode {
	for {
		r := c.graph.Resolve(m)
		if r.Kind() != mode.Proc || len(r.Pack()) > 0 {
			return r
		}
		m = r.Sub()
	}
}

// weakBase strips parameterless PROCs, then dereferences while at
// least one further REF would remain: a weak position keeps the last
// name so the caller can still form name modes from it.
func (c *checker) weakBase(m *mode.Mode) *mode.Mode {
	r := c.softDeproc(m)
	for r.Kind() == mode.Ref {
		sub := c.graph.Resolve(r.Sub())
		if sub.Kind() != mode.Ref && sub.Kind() != mode.Proc {
			break
		}
		if sub.Kind() == mode.Proc && len(sub.Pack()) > 0 {
			break
		}
		r = c.softDeproc(sub)
	}

	return r
}

// meekBase strips every parameterless PROC and REF layer.
func (c *checker) meekBase(m *mode.Mode) *mode.Mode {
	for {
		r := c.softDeproc(m)
		if r.Kind() != mode.Ref {
			return r
		}
		m = r.Sub()
	}
}

// steps computes the coercion chain taking a produced mode to a
// required mode under the given sort, innermost step first. It
// prefers the shortest legal chain; on equal length, widening is
// preferred over rowing.
func (c *checker) steps(sort Sort, have, want *mode.Mode) ([]ast.CoercionKind, bool) {
	if have == nil || want == nil {
		return nil, true
	}
	if have.IsErroneous() || want.IsErroneous() {
		return nil, true
	}

	return c.stepsDepth(sort, have, want, maxChain)
}

func (c *checker) stepsDepth(sort Sort, have, want *mode.Mode, depth int) ([]ast.CoercionKind, bool) {
	g := c.graph
	if g.Equivalent(have, want) {
		return nil, true
	}
	if depth == 0 {
		return nil, false
	}

	h := g.Resolve(have)
	w := g.Resolve(want)

	// Voiding swallows the produced value whole, but a routine used
	// as a statement is still invoked: parameterless PROC layers, and
	// any REF layers hiding one, collapse before the Voiding step.
	if sort >= Strong && w.Kind() == mode.Void {
		var chain []ast.CoercionKind
		// Bounded: a cyclic mode such as REF PROC to itself would
		// otherwise peel forever.
		for len(chain) < maxChain {
			switch {
			case h.Kind() == mode.Proc && len(h.Pack()) == 0:
				chain = append(chain, ast.Deproceduring)
			case h.Kind() == mode.Ref && c.refHidesRoutine(h):
				chain = append(chain, ast.Dereferencing)
			default:
				return append(chain, ast.Voiding), true
			}
			h = g.Resolve(h.Sub())
		}
		return append(chain, ast.Voiding), true
	}

	// Uniting, before widening: INT unites into UNION (INT, REAL)
	// directly, never via a widen-then-unite detour.
	if sort >= Firm && w.Kind() == mode.Union {
		if g.UnionContains(w, h) || h.Kind() == mode.Union && unionSubset(g, h, w) {
			return []ast.CoercionKind{ast.Uniting}, true
		}
	}

	// Widening before rowing, per the tie rule.
	if sort >= Strong {
		if wide := g.Widened(h); wide != nil {
			if rest, ok := c.stepsDepth(sort, wide, w, depth-1); ok {
				return append([]ast.CoercionKind{ast.Widening}, rest...), true
			}
		}

		if elem := c.rowedFrom(w); elem != nil {
			if rest, ok := c.stepsDepth(sort, h, elem, depth-1); ok {
				return append(rest, ast.Rowing), true
			}
		}
	}

	// Dereferencing and deproceduring peel the produced mode.
	if sort >= Weak && h.Kind() == mode.Ref {
		if sort == Weak && !c.weakMayDeref(h) {
			return nil, false
		}
		if rest, ok := c.stepsDepth(sort, h.Sub(), w, depth-1); ok {
			return append([]ast.CoercionKind{ast.Dereferencing}, rest...), true
		}
	}
	if h.Kind() == mode.Proc && len(h.Pack()) == 0 {
		if rest, ok := c.stepsDepth(sort, h.Sub(), w, depth-1); ok {
			return append([]ast.CoercionKind{ast.Deproceduring}, rest...), true
		}
	}

	return nil, false
}

// refHidesRoutine reports whether stripping the REF layers of h
// reaches a parameterless PROC. Voiding dereferences such a name so
// the routine underneath is invoked, not discarded.
func (c *checker) refHidesRoutine(h *mode.Mode) bool {
	for i := 0; i < maxChain && h.Kind() == mode.Ref; i++ {
		h = c.graph.Resolve(h.Sub())
	}

	return h.Kind() == mode.Proc && len(h.Pack()) == 0
}

// weakMayDeref reports whether a weak position may dereference h:
// weak dereferencing must leave a name, so the pointee must itself
// still be a name (or a procedure producing one).
func (c *checker) weakMayDeref(h *mode.Mode) bool {
	sub := c.graph.Resolve(h.Sub())
	for sub.Kind() == mode.Proc && len(sub.Pack()) == 0 {
		sub = c.graph.Resolve(sub.Sub())
	}

	return sub.Kind() == mode.Ref
}

// rowedFrom returns the mode a rowing step into w starts from: the
// element (or the row of one fewer dimension) of a required row, or
// nil if w cannot be rowed into. REF [] T can be rowed into from
// REF T.
func (c *checker) rowedFrom(w *mode.Mode) *mode.Mode {
	g := c.graph

	if w.Kind() == mode.Ref {
		sub := g.Resolve(w.Sub())
		if from := c.rowedValueFrom(sub); from != nil {
			return g.Intern(mode.Ref, 0, nil, from, nil)
		}
		return nil
	}

	return c.rowedValueFrom(w)
}

func (c *checker) rowedValueFrom(w *mode.Mode) *mode.Mode {
	g := c.graph
	if w.Kind() == mode.Flex {
		w = g.Resolve(w.Sub())
	}
	if w.Kind() != mode.Row {
		return nil
	}
	if w.Dim() > 1 {
		return g.Intern(mode.Row, w.Dim()-1, nil, w.Sub(), nil)
	}

	return g.Resolve(w.Sub())
}

func unionSubset(g *mode.Graph, a, b *mode.Mode) bool {
	for _, f := range a.Pack() {
		if !g.UnionContains(b, f.Mode) {
			return false
		}
	}

	return true
}

// coercible reports whether a produced mode satisfies a required mode
// under the given sort.
func (c *checker) coercible(sort Sort, have, want *mode.Mode) bool {
	_, ok := c.steps(sort, have, want)
	return ok
}

// firmlyRelated reports whether one of a, b coerces firmly to the
// other. Union members must not be firmly related, or conformity
// dispatch could not tell them apart.
func (c *checker) firmlyRelated(a, b *mode.Mode) bool {
	return c.coercible(Firm, a, b) || c.coercible(Firm, b, a)
}

// wrap applies a coercion chain to a unit, innermost step first.
func wrap(u ast.Unit, steps []ast.CoercionKind) ast.Unit {
	for _, k := range steps {
		u = &ast.Coercion{Kind: k, X: u}
	}

	return u
}
