// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package mode

// Equivalent reports whether a and b are structurally equal.
//
// The proof is coinductive: before descending into the substructure
// of a size-breaking kind, the pair is postulated equal, so that
// meeting it again deeper in a cyclic mode closes the proof instead
// of recursing forever.
func (g *Graph) Equivalent(a, b *Mode) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	// Memoized result of an earlier proof.
	if a.equivalent == b || b.equivalent == a {
		return true
	}
	if g.Resolve(a) == g.Resolve(b) {
		return true
	}

	// Coinductive assumption.
	if g.postulatedPair(a, b) {
		return true
	}

	// Indicants are equal when declared by the same node, and are
	// otherwise chased through their definitions.
	if a.kind == Indicant || b.kind == Indicant {
		if a.kind == Indicant && b.kind == Indicant && a.node != nil && a.node == b.node {
			return true
		}

		return g.withPostulate(a, b, func() bool {
			x, y := a, b
			if x.kind == Indicant {
				if x.sub == nil {
					return false
				}
				x = x.sub
			}
			if y.kind == Indicant {
				if y.sub == nil {
					return false
				}
				y = y.sub
			}

			return g.Equivalent(x, y)
		})
	}

	if a.kind != b.kind || a.dim != b.dim {
		return false
	}

	switch a.kind {
	case Void:
		return true

	case Standard, Erroneous:
		// Identity only, which was handled above.
		return false

	case Ref, Flex, Row:
		return g.withPostulate(a, b, func() bool {
			return g.Equivalent(a.sub, b.sub)
		})

	case Struct:
		if len(a.pack) != len(b.pack) {
			return false
		}

		return g.withPostulate(a, b, func() bool {
			for i := range a.pack {
				if a.pack[i].Name != b.pack[i].Name {
					return false
				}
				if !g.Equivalent(a.pack[i].Mode, b.pack[i].Mode) {
					return false
				}
			}

			return true
		})

	case Union:
		// Union membership is order-independent: each member of one
		// must match some member of the other, both ways.
		return g.unionSubset(a, b) && g.unionSubset(b, a)

	case Proc:
		if len(a.pack) != len(b.pack) {
			return false
		}

		return g.withPostulate(a, b, func() bool {
			if !g.Equivalent(a.sub, b.sub) {
				return false
			}
			for i := range a.pack {
				// Parameter names are not part of the mode.
				if !g.Equivalent(a.pack[i].Mode, b.pack[i].Mode) {
					return false
				}
			}

			return true
		})

	case Series, Stowed:
		if len(a.pack) != len(b.pack) {
			return false
		}
		for i := range a.pack {
			if !g.Equivalent(a.pack[i].Mode, b.pack[i].Mode) {
				return false
			}
		}

		return true
	}

	return false
}

// unionSubset reports whether every member of a's pack structurally
// matches some member of b's pack.
func (g *Graph) unionSubset(a, b *Mode) bool {
	for _, am := range a.pack {
		found := false
		for _, bm := range b.pack {
			if g.Equivalent(am.Mode, bm.Mode) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// UnionContains reports whether u (a Union) has a member structurally
// equal to m.
func (g *Graph) UnionContains(u, m *Mode) bool {
	u = g.Resolve(u)
	if u.kind != Union {
		return false
	}
	for _, f := range u.pack {
		if g.Equivalent(f.Mode, m) {
			return true
		}
	}

	return false
}

// ProveAndMark proves a and b equivalent and, on success, links the
// non-canonical representative to the canonical one. Exactly one of
// the pair is linked, never both, so equivalence chains cannot form a
// cycle.
//
// Standard-environment modes are always preferred as canonical over
// program-defined ones; indicants always defer to their definitions;
// otherwise the earlier-allocated mode wins.
func (g *Graph) ProveAndMark(a, b *Mode) bool {
	if !g.Equivalent(a, b) {
		return false
	}

	a, b = g.Resolve(a), g.Resolve(b)
	if a == b {
		return true
	}

	canonical, other := a, b
	switch {
	case a.standard && !b.standard:
		// a stays canonical.
	case b.standard && !a.standard:
		canonical, other = b, a
	case a.kind == Indicant && b.kind != Indicant:
		canonical, other = b, a
	case b.kind == Indicant && a.kind != Indicant:
		// a stays canonical.
	case b.num < a.num:
		canonical, other = b, a
	}

	other.equivalent = canonical

	return true
}

// FindEquivalentModes attempts, for every unordered pair of same-kind
// same-dimension modes in the graph, to prove and mark them
// equivalent, collapsing each equivalence class onto one
// representative. It is re-run after every derived-mode synthesis
// round, because newly synthesized modes may collapse further.
func (g *Graph) FindEquivalentModes() {
	for i := 0; i < len(g.modes); i++ {
		a := g.modes[i]
		if a.equivalent != nil {
			continue
		}
		for j := i + 1; j < len(g.modes); j++ {
			b := g.modes[j]
			if b.equivalent != nil {
				continue
			}
			if a.kind != b.kind || a.dim != b.dim {
				continue
			}

			g.ProveAndMark(a, b)
			if a.equivalent != nil {
				// a lost its place as a representative;
				// move on to the next candidate.
				break
			}
		}
	}
}
