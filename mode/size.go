// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package mode

import (
	"fmt"
)

// Sizes computes the storage a value of a mode occupies. The runtime
// stack-frame calculator and a native backend's type-to-representation
// mapping consume it; the core itself never does.
type Sizes interface {
	SizeOf(m *Mode) int      // Size in words.
	AlignmentOf(m *Mode) int // Alignment in words.
}

// WordSizes returns a Sizes for a machine with the given word size
// in bytes. All results are in words.
func WordSizes(g *Graph) Sizes {
	return wordSizes{g: g}
}

type wordSizes struct {
	g *Graph
}

var _ Sizes = wordSizes{}

// Descriptor of an N-dimensional row: a pointer to the elements plus
// lower bound, upper bound, and stride per dimension.
func rowDescriptorWords(dim int) int { return 1 + 3*dim }

func (s wordSizes) SizeOf(m *Mode) int {
	m = s.g.Resolve(m)
	switch m.kind {
	case Void:
		return 0

	case Standard:
		switch m {
		case s.g.LongInt, s.g.LongReal, s.g.LongBits:
			return 2
		case s.g.Compl:
			return 2
		case s.g.LongCompl:
			return 4
		default:
			return 1
		}

	case Ref:
		return 1

	case Proc:
		// Routine text plus environment.
		return 2

	case Row:
		return rowDescriptorWords(m.dim)

	case Flex:
		return s.SizeOf(m.sub)

	case Struct:
		total := 0
		for _, f := range m.pack {
			total += s.SizeOf(f.Mode)
		}
		return total

	case Union:
		// A tag word plus the largest member.
		largest := 0
		for _, f := range m.pack {
			if n := s.SizeOf(f.Mode); n > largest {
				largest = n
			}
		}
		return 1 + largest

	case Indicant:
		if m.sub == nil {
			panic("mode: size of undefined indicant " + m.name)
		}
		return s.SizeOf(m.sub)

	case Erroneous:
		return 0
	}

	panic(fmt.Sprintf("mode: size of unexpected kind %v", m.kind))
}

func (s wordSizes) AlignmentOf(m *Mode) int {
	return 1
}
