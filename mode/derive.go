// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package mode

// Derived-mode synthesis. After the declared modes are known to be
// well-formed and equivalence-resolved, the checker needs a family of
// modes that no declarer spells out: the deflexed variants, the name
// and multiple modes used by selections and slices on stowed values,
// the trim modes, and rows of one more dimension. These are computed
// by a fixed-point loop: each round synthesizes derivatives for every
// mode in the graph, then re-runs the global equivalence pass, until
// a round adds no new mode.

// maxRounds bounds the synthesis loop. A graph that fails to
// stabilise within it indicates a broken invariant of the core, not a
// malformed source program.
const maxRounds = 16

// Synthesize runs derived-mode synthesis to its fixed point.
func (g *Graph) Synthesize() {
	for round := 0; ; round++ {
		if round == maxRounds {
			panic("mode: derived-mode synthesis did not stabilise")
		}

		before := len(g.modes)
		g.deflexModes()
		g.nameModes()
		g.multipleModes()
		g.trimModes()
		g.rowModes()
		g.absorbUnions()
		g.FindEquivalentModes()

		if len(g.modes) == before {
			return
		}
	}
}

// Deflex returns the mode that results from losing the ability to
// change a row's bounds: every FLEX wrapper in m is stripped,
// recursively. The result is memoized in m's deflexed slot.
func (g *Graph) Deflex(m *Mode) *Mode {
	m = g.Resolve(m)
	if m.deflexed != nil {
		return m.deflexed
	}

	// A cycle necessarily passes through a REF; assuming the fixed
	// point here is the usual coinductive step.
	if g.postulatedMode(m) {
		return m
	}

	var d *Mode
	g.withModePostulate(m, func() bool {
		switch m.kind {
		case Flex:
			d = g.Deflex(m.sub)

		case Indicant:
			if m.sub == nil {
				d = m
				break
			}
			d = g.Deflex(m.sub)

		case Ref:
			sub := g.Deflex(m.sub)
			if sub == g.Resolve(m.sub) {
				d = m
				break
			}
			d = g.Intern(Ref, 0, m.node, sub, nil)

		case Row:
			sub := g.Deflex(m.sub)
			if sub == g.Resolve(m.sub) {
				d = m
				break
			}
			d = g.Intern(Row, m.dim, m.node, sub, nil)

		case Proc:
			result := g.Deflex(m.sub)
			pack, changed := g.deflexPack(m.pack)
			if result == g.Resolve(m.sub) && !changed {
				d = m
				break
			}
			d = g.Intern(Proc, m.dim, m.node, result, pack)

		case Struct:
			pack, changed := g.deflexPack(m.pack)
			if !changed {
				d = m
				break
			}
			d = g.Intern(Struct, m.dim, m.node, nil, pack)

		default:
			d = m
		}

		return true
	})

	m.deflexed = d

	return d
}

func (g *Graph) deflexPack(pack []Field) (out []Field, changed bool) {
	out = make([]Field, len(pack))
	for i, f := range pack {
		out[i] = Field{Mode: g.Deflex(f.Mode), Name: f.Name, Node: f.Node}
		if out[i].Mode != g.Resolve(f.Mode) {
			changed = true
		}
	}

	return out, changed
}

func (g *Graph) deflexModes() {
	for i := 0; i < len(g.modes); i++ {
		m := g.modes[i]
		if m.equivalent != nil {
			continue
		}

		g.Deflex(m)
	}
}

// Named returns the name mode of a REF to a stowed mode: the mode
// that selecting a field of, or subscripting into, the referenced
// value yields.
//
//	REF STRUCT (A a, B b)  ->  STRUCT (REF A a, REF B b)
//	REF [] T               ->  REF T
//
// It returns nil for modes that have no name mode.
func (g *Graph) Named(m *Mode) *Mode {
	return g.Resolve(m).named
}

func (g *Graph) nameModes() {
	for i := 0; i < len(g.modes); i++ {
		m := g.modes[i]
		if m.equivalent != nil || m.named != nil || m.kind != Ref {
			continue
		}

		sub := g.Resolve(m.sub)
		if sub.kind == Flex {
			sub = g.Resolve(sub.sub)
		}

		switch sub.kind {
		case Struct:
			pack := make([]Field, len(sub.pack))
			for j, f := range sub.pack {
				pack[j] = Field{
					Mode: g.Intern(Ref, 0, f.Node, f.Mode, nil),
					Name: f.Name,
					Node: f.Node,
				}
			}
			m.named = g.Intern(Struct, len(pack), m.node, nil, pack)

		case Row:
			m.named = g.Intern(Ref, 0, m.node, g.rowSliced(sub), nil)
		}
	}
}

// Multiple returns the multiple mode of a (value, non-REF) row of
// structures: the structure of rows needed for selection over an
// array of structures.
//
//	[] STRUCT (A a, B b)  ->  STRUCT ([] A a, [] B b)
//
// It returns nil for modes that have no multiple mode.
func (g *Graph) Multiple(m *Mode) *Mode {
	return g.Resolve(m).multiple
}

func (g *Graph) multipleModes() {
	for i := 0; i < len(g.modes); i++ {
		m := g.modes[i]
		if m.equivalent != nil || m.multiple != nil {
			continue
		}
		if m.kind != Row && m.kind != Flex {
			continue
		}

		row := m
		if m.kind == Flex {
			row = g.Resolve(m.sub)
			if row.kind != Row {
				continue
			}
		}

		elem := g.Resolve(row.sub)
		if elem.kind != Struct {
			continue
		}

		pack := make([]Field, len(elem.pack))
		for j, f := range elem.pack {
			pack[j] = Field{
				Mode: g.Intern(Row, row.dim, f.Node, f.Mode, nil),
				Name: f.Name,
				Node: f.Node,
			}
		}
		m.multiple = g.Intern(Struct, len(pack), m.node, nil, pack)
	}
}

// Trimmed returns the trim mode of m: the mode a trimmer yields. A
// trimmer loses flexibility at the top level only, so this is a
// "light" deflex that leaves any deeper FLEX in place.
//
//	REF FLEX [] T  ->  REF [] T
//	FLEX [] T      ->  [] T
//	[] T           ->  [] T
func (g *Graph) Trimmed(m *Mode) *Mode {
	m = g.Resolve(m)
	if m.trimmed != nil {
		return m.trimmed
	}

	return m
}

func (g *Graph) trimModes() {
	for i := 0; i < len(g.modes); i++ {
		m := g.modes[i]
		if m.equivalent != nil || m.trimmed != nil {
			continue
		}

		switch m.kind {
		case Flex:
			m.trimmed = g.Resolve(m.sub)

		case Row:
			m.trimmed = m

		case Ref:
			sub := g.Resolve(m.sub)
			switch sub.kind {
			case Flex:
				m.trimmed = g.Intern(Ref, 0, m.node, g.Resolve(sub.sub), nil)
			case Row:
				m.trimmed = m
			}
		}
	}
}

// Sliced returns the mode a full subscript of m yields: the element
// for a one-dimensional row, the row of one fewer dimension
// otherwise. It returns nil for modes that cannot be subscripted.
func (g *Graph) Sliced(m *Mode) *Mode {
	m = g.Resolve(m)
	if m.kind == Flex {
		m = g.Resolve(m.sub)
	}
	if m.kind != Row {
		return nil
	}

	return g.rowSliced(m)
}

func (g *Graph) rowSliced(row *Mode) *Mode {
	if row.sliced == nil {
		if row.dim > 1 {
			row.sliced = g.Intern(Row, row.dim-1, row.node, row.sub, nil)
		} else {
			row.sliced = g.Resolve(row.sub)
		}
	}

	return row.sliced
}

// rowModes synthesizes, for every N-dimensional row and REF-to-row
// not itself synthesized by an earlier round, the row and REF-to-row
// of N+1 dimensions, maintaining the rowed forward links used by the
// rowing coercion. The derived flag keeps each round from stacking a
// further dimension onto the previous round's output.
func (g *Graph) rowModes() {
	for i := 0; i < len(g.modes); i++ {
		m := g.modes[i]
		if m.equivalent != nil || m.derived {
			continue
		}

		switch m.kind {
		case Row:
			g.rowSliced(m)
			if m.rowed == nil {
				n := len(g.modes)
				r := g.Intern(Row, m.dim+1, m.node, m.sub, nil)
				if len(g.modes) > n {
					r.derived = true
				}
				m.rowed = r
				if r.sliced == nil {
					r.sliced = m
				}
			}

		case Ref:
			sub := g.Resolve(m.sub)
			if sub.kind != Row || m.rowed != nil {
				continue
			}

			n := len(g.modes)
			row := g.Intern(Row, sub.dim+1, sub.node, sub.sub, nil)
			if len(g.modes) > n {
				row.derived = true
			}
			if row.sliced == nil {
				row.sliced = sub
			}

			n = len(g.modes)
			r := g.Intern(Ref, 0, m.node, row, nil)
			if len(g.modes) > n {
				r.derived = true
			}
			m.rowed = r
		}
	}
}

// RowOf returns the row mode [] m, interning it if the synthesis
// rounds have not produced it already. The rowing coercion uses it.
func (g *Graph) RowOf(m *Mode) *Mode {
	m = g.Resolve(m)
	if m.kind == Row && m.rowed != nil {
		return m.rowed
	}
	if m.kind == Row {
		return g.Intern(Row, m.dim+1, m.node, m.sub, nil)
	}

	return g.Intern(Row, 1, m.node, m, nil)
}

// absorbUnions normalizes every union in the graph: nested unions are
// flattened into the outer member pack (absorption), then members
// structurally equal to an earlier member are dropped (contraction).
// The result is idempotent by construction. Union packs are the one
// piece of structure rewritten after creation; this happens during
// synthesis, before any reader of the finished graph runs.
func (g *Graph) absorbUnions() {
	for i := 0; i < len(g.modes); i++ {
		m := g.modes[i]
		if m.kind != Union || m.equivalent != nil {
			continue
		}

		m.pack = g.absorbedPack(m.pack)
		m.dim = len(m.pack)
	}
}

func (g *Graph) absorbedPack(pack []Field) []Field {
	// Absorption: flatten nested unions. Cycles of unions through
	// indicants cannot occur in a well-formed graph.
	flat := make([]Field, 0, len(pack))
	for _, f := range pack {
		fm := g.Resolve(f.Mode)
		if fm.kind == Union {
			flat = append(flat, g.absorbedPack(fm.pack)...)
			continue
		}

		flat = append(flat, f)
	}

	// Contraction: drop members equal to an earlier member.
	out := make([]Field, 0, len(flat))
	for _, f := range flat {
		dup := false
		for _, e := range out {
			if g.Equivalent(e.Mode, f.Mode) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, f)
		}
	}

	return out
}
