// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package mode

import (
	"fmt"

	"algol68.dev/a68/ast"
)

// A Graph owns every mode of one compilation: the allocation arena,
// the standard environment, and the postulate stack. A Graph has a
// single writer; once synthesis completes it is read-only.
//
// Construct a fresh Graph per compilation (or per test) with New.
type Graph struct {
	modes      []*Mode
	postulates []postulate

	// The standard environment.
	Void      *Mode
	Int       *Mode
	Real      *Mode
	Bool      *Mode
	Char      *Mode
	Bits      *Mode
	Bytes     *Mode
	Compl     *Mode
	LongInt   *Mode
	LongReal  *Mode
	LongCompl *Mode
	LongBits  *Mode
	RowChar   *Mode
	RowBool   *Mode
	String    *Mode // FLEX [] CHAR

	// Error is the sentinel recorded for units whose mode could not
	// be established. It satisfies every compatibility check so that
	// one root cause does not cascade.
	Error *Mode
}

// New returns a fresh Graph holding only the standard environment.
func New() *Graph {
	g := new(Graph)

	std := func(name string) *Mode {
		m := g.alloc(Standard, 0, nil, nil, nil)
		m.name = name
		m.standard = true
		return m
	}

	g.Void = g.alloc(Void, 0, nil, nil, nil)
	g.Void.name = "VOID"
	g.Void.standard = true

	g.Int = std("INT")
	g.Real = std("REAL")
	g.Bool = std("BOOL")
	g.Char = std("CHAR")
	g.Bits = std("BITS")
	g.Bytes = std("BYTES")
	g.Compl = std("COMPL")
	g.LongInt = std("LONG INT")
	g.LongReal = std("LONG REAL")
	g.LongCompl = std("LONG COMPL")
	g.LongBits = std("LONG BITS")

	g.RowChar = g.alloc(Row, 1, nil, g.Char, nil)
	g.RowChar.standard = true
	g.RowBool = g.alloc(Row, 1, nil, g.Bool, nil)
	g.RowBool.standard = true

	g.String = g.alloc(Flex, 0, nil, g.RowChar, nil)
	g.String.name = "STRING"
	g.String.standard = true

	g.Error = g.alloc(Erroneous, 0, nil, nil, nil)
	g.Error.name = "ERROR"
	g.Error.standard = true

	return g
}

// alloc links a freshly allocated mode into the graph and assigns it
// the next sequential number.
//
// A Ref, Flex, or Row without a sub violates an invariant of the
// graph and panics at once rather than surfacing later as a nil
// dereference deep in a proof.
func (g *Graph) alloc(kind Kind, dim int, node ast.Node, sub *Mode, pack []Field) *Mode {
	switch kind {
	case Ref, Flex, Row:
		if sub == nil {
			panic(fmt.Sprintf("mode: %v mode allocated without a sub mode", kind))
		}
	}

	m := &Mode{
		kind: kind,
		dim:  dim,
		num:  len(g.modes) + 1,
		node: node,
		sub:  sub,
		pack: pack,
	}

	g.modes = append(g.modes, m)

	return m
}

// NewMode links a freshly allocated mode into the graph without
// searching for a structurally equal one. Use Intern when the mode
// may already exist.
func (g *Graph) NewMode(kind Kind, dim int, node ast.Node, sub *Mode, pack []Field) *Mode {
	return g.alloc(kind, dim, node, sub, pack)
}

// NewIndicant links a fresh Indicant mode, named by its declaration.
// Its definition is attached later with Define.
func (g *Graph) NewIndicant(name string, node ast.Node) *Mode {
	m := g.alloc(Indicant, 0, node, nil, nil)
	m.name = name
	return m
}

// Define attaches the defined mode to an indicant. It may be called
// once per indicant.
func (g *Graph) Define(indicant, def *Mode) {
	if indicant.kind != Indicant {
		panic("mode: Define called on a non-indicant mode")
	}
	if indicant.sub != nil {
		panic("mode: indicant " + indicant.name + " defined twice")
	}

	indicant.sub = def
}

// Invalidate replaces the definition of an indicant with the error
// sentinel. The checker calls it for ill-formed declarations, whose
// original definitions would not guarantee termination of the proofs
// run by later passes.
func (g *Graph) Invalidate(indicant *Mode) {
	if indicant.kind != Indicant {
		panic("mode: Invalidate called on a non-indicant mode")
	}

	indicant.sub = g.Error
}

// Intern returns an existing mode structurally equal to the described
// one, or links a fresh mode if there is none.
func (g *Graph) Intern(kind Kind, dim int, node ast.Node, sub *Mode, pack []Field) *Mode {
	// The candidate participates in equivalence proofs, so it must
	// be a real node; if an equal mode exists we abandon it. The
	// abandoned node stays in the arena but is unreachable from any
	// declaration, which is harmless: derived-slot synthesis works
	// per reachable mode and the graph is discarded as a whole.
	c := g.alloc(kind, dim, node, sub, pack)
	for _, m := range g.modes {
		if m == c {
			continue
		}
		if m.kind != kind || m.dim != dim {
			continue
		}
		if g.Equivalent(m, c) {
			g.modes = g.modes[:len(g.modes)-1]
			return m
		}
	}

	return c
}

// Len returns the number of modes in the graph.
func (g *Graph) Len() int { return len(g.modes) }

// All returns the modes of the graph in allocation order. The caller
// must not modify the slice.
func (g *Graph) All() []*Mode { return g.modes }

// Resolve follows equivalence links to the canonical representative
// of m's equivalence class. The marking discipline guarantees that
// exactly one direction of each proven pair is linked, so the chain
// terminates.
func (g *Graph) Resolve(m *Mode) *Mode {
	for m.equivalent != nil {
		m = m.equivalent
	}

	return m
}
