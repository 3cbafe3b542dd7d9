// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package mode

import (
	"strings"
)

// maxPrintDepth cuts off the rendering of deeply nested (or cyclic)
// modes. Diagnostics never need more.
const maxPrintDepth = 8

// String renders the mode in Algol 68 notation, such as
// "REF STRUCT (REAL re, REAL im)". Named modes (standard modes and
// indicants) render as their name; cyclic structure is cut off with
// "...".
func (m *Mode) String() string {
	var b strings.Builder
	writeMode(&b, m, maxPrintDepth)
	return b.String()
}

func writeMode(b *strings.Builder, m *Mode, depth int) {
	if m == nil {
		b.WriteString("<nil mode>")
		return
	}
	if m.name != "" {
		b.WriteString(m.name)
		return
	}
	if depth == 0 {
		b.WriteString("...")
		return
	}

	switch m.kind {
	case Void:
		b.WriteString("VOID")

	case Erroneous:
		b.WriteString("ERROR")

	case Ref:
		b.WriteString("REF ")
		writeMode(b, m.sub, depth-1)

	case Flex:
		b.WriteString("FLEX ")
		writeMode(b, m.sub, depth-1)

	case Row:
		b.WriteByte('[')
		b.WriteString(strings.Repeat(",", m.dim-1))
		b.WriteString("] ")
		writeMode(b, m.sub, depth-1)

	case Struct:
		b.WriteString("STRUCT (")
		writePack(b, m.pack, depth-1, true)
		b.WriteByte(')')

	case Union:
		b.WriteString("UNION (")
		writePack(b, m.pack, depth-1, false)
		b.WriteByte(')')

	case Proc:
		b.WriteString("PROC ")
		if len(m.pack) > 0 {
			b.WriteByte('(')
			writePack(b, m.pack, depth-1, false)
			b.WriteString(") ")
		}
		writeMode(b, m.sub, depth-1)

	case Series:
		b.WriteString("series (")
		writePack(b, m.pack, depth-1, false)
		b.WriteByte(')')

	case Stowed:
		b.WriteString("stowed (")
		writePack(b, m.pack, depth-1, false)
		b.WriteByte(')')

	case Indicant:
		// An unnamed indicant cannot occur; belt and braces.
		b.WriteString("indicant")

	default:
		b.WriteString("invalid")
	}
}

func writePack(b *strings.Builder, pack []Field, depth int, names bool) {
	for i, f := range pack {
		if i > 0 {
			b.WriteString(", ")
		}

		writeMode(b, f.Mode, depth)
		if names && f.Name != "" {
			b.WriteByte(' ')
			b.WriteString(f.Name)
		}
	}
}
