// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package mode

// The well-formedness ("yin-yang") check rejects mode declarations
// that would denote a value of infinite size, such as
//
//	MODE A = A
//	MODE B = STRUCT (B b)
//
// while accepting declarations whose every cycle passes through a
// size-breaking indirection:
//
//	MODE LIST = STRUCT (INT v, REF LIST next)
//
// The walk carries two flags: yin is set once the path has crossed a
// REF, yang once it has crossed a REF or a parameterless PROC.
// Reaching the defining indicant again is legal only with both flags
// set. Reaching VOID is legal only where a VOID is permitted (union
// members and procedure results).
//
// This check must pass for every declared indicant before equivalence
// classes are trusted: the equivalence prover's postulate discipline
// assumes the termination this check guarantees.

// WellFormed reports whether the indicant's definition is legal. The
// indicant must have been defined.
func (g *Graph) WellFormed(indicant *Mode) bool {
	if indicant.kind != Indicant || indicant.sub == nil {
		panic("mode: WellFormed called on an undefined or non-indicant mode")
	}

	return g.wellFormed(indicant, indicant.sub, false, false, false)
}

func (g *Graph) wellFormed(def, m *Mode, yin, yang, voidOK bool) bool {
	if m == nil {
		return false
	}

	switch m.kind {
	case Void:
		return voidOK

	case Standard, Erroneous:
		return true

	case Indicant:
		if m == def {
			return yin && yang
		}

		// Another indicant: chase its definition. A postulate
		// breaks chains of mutually recursive indicants; the
		// chased indicant's own check judges its definition.
		if g.postulatedMode(m) {
			return true
		}
		if m.sub == nil {
			// Diagnosed as undeclared where it was used.
			return true
		}

		return g.withModePostulate(m, func() bool {
			return g.wellFormed(def, m.sub, yin, yang, voidOK)
		})

	case Ref:
		return g.wellFormed(def, m.sub, true, true, false)

	case Proc:
		if len(m.pack) > 0 {
			// A procedure with parameters is a size-breaker on
			// its own: its text is never part of the value.
			return true
		}

		return g.wellFormed(def, m.sub, yin, true, true)

	case Flex, Row:
		return g.wellFormed(def, m.sub, yin, yang, false)

	case Struct:
		// A structure cannot be the size-breaker for its own
		// fields, so yang is forced.
		for _, f := range m.pack {
			if !g.wellFormed(def, f.Mode, yin, true, false) {
				return false
			}
		}

		return true

	case Union:
		for _, f := range m.pack {
			if !g.wellFormed(def, f.Mode, yin, yang, true) {
				return false
			}
		}

		return true

	case Series, Stowed:
		for _, f := range m.pack {
			if !g.wellFormed(def, f.Mode, yin, yang, voidOK) {
				return false
			}
		}

		return true
	}

	return false
}
