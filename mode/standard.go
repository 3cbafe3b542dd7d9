// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package mode

// The numeric tower. Widening climbs it one step at a time; operator
// resolution falls back on it when no declared operator matches
// firmly.

// Widened returns the mode one widening step up from m, or nil if m
// widens no further:
//
//	INT   -> REAL  -> COMPL
//	BITS  -> [] BOOL
//	BYTES -> [] CHAR
//
// and the LONG counterparts.
func (g *Graph) Widened(m *Mode) *Mode {
	switch g.Resolve(m) {
	case g.Int:
		return g.Real
	case g.Real:
		return g.Compl
	case g.LongInt:
		return g.LongReal
	case g.LongReal:
		return g.LongCompl
	case g.Bits:
		return g.RowBool
	case g.Bytes:
		return g.RowChar
	}

	return nil
}

// StandardOf returns the standard mode with the given bold name, or
// nil.
func (g *Graph) StandardOf(name string, longs int) *Mode {
	switch name {
	case "INT":
		if longs > 0 {
			return g.LongInt
		}
		return g.Int
	case "REAL":
		if longs > 0 {
			return g.LongReal
		}
		return g.Real
	case "COMPL":
		if longs > 0 {
			return g.LongCompl
		}
		return g.Compl
	case "BITS":
		if longs > 0 {
			return g.LongBits
		}
		return g.Bits
	case "BOOL":
		return g.Bool
	case "CHAR":
		return g.Char
	case "BYTES":
		return g.Bytes
	case "STRING":
		return g.String
	case "VOID":
		return g.Void
	}

	return nil
}
