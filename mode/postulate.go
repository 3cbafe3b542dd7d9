// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package mode

// A postulate is an assumed-true fact about one mode or a pair of
// modes, pushed before a recursive sub-proof descends into cyclic
// substructure and popped when the sub-proof returns. Meeting a
// postulated pair again terminates the recursion with "true", which
// is sound because well-formedness guarantees every cycle passes
// through a size-breaking indirection.
//
// Postulates live only for the duration of one query; they are never
// persisted in the graph.
type postulate struct {
	a, b *Mode // b is nil for single-mode postulates
}

// withPostulate pushes the pair (a, b), runs body, and restores the
// stack to its prior length however body returns.
func (g *Graph) withPostulate(a, b *Mode, body func() bool) bool {
	n := len(g.postulates)
	g.postulates = append(g.postulates, postulate{a, b})
	defer func() { g.postulates = g.postulates[:n] }()

	return body()
}

// withModePostulate pushes the single mode a, runs body, and restores
// the stack.
func (g *Graph) withModePostulate(a *Mode, body func() bool) bool {
	return g.withPostulate(a, nil, body)
}

// postulated reports whether the exact ordered pair (a, b) is on the
// stack.
func (g *Graph) postulated(a, b *Mode) bool {
	for _, p := range g.postulates {
		if p.a == a && p.b == b {
			return true
		}
	}

	return false
}

// postulatedPair reports whether the pair (a, b) is on the stack in
// either order.
func (g *Graph) postulatedPair(a, b *Mode) bool {
	for _, p := range g.postulates {
		if p.a == a && p.b == b || p.a == b && p.b == a {
			return true
		}
	}

	return false
}

// postulatedMode reports whether the single mode a is on the stack.
func (g *Graph) postulatedMode(a *Mode) bool {
	return g.postulated(a, nil)
}
