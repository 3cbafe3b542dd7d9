// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package mode implements the Algol 68 mode (type) system: the mode
// graph, structural equivalence under recursion, the well-formedness
// check for mode declarations, and the synthesis of derived modes.
//
// Modes are structurally typed and may be mutually or self recursive,
// so the graph is cyclic. All modes belong to a single Graph, which
// owns the allocation arena and the postulate stack used to prove
// properties of cyclic modes coinductively.
package mode

import (
	"algol68.dev/a68/ast"
)

// Kind identifies the variant of a mode node.
type Kind int

const (
	Invalid Kind = iota

	Void      // VOID
	Standard  // a primitive mode of the standard environment
	Indicant  // a mode defined by a mode declaration
	Ref       // REF amode
	Flex      // FLEX rows
	Row       // [,...] amode
	Struct    // STRUCT (...)
	Union     // UNION (...)
	Proc      // PROC (...) amode
	Series    // the balanced yields of a clause's branches
	Stowed    // the yields of a collateral display
	Erroneous // the error sentinel
)

var kindNames = [...]string{
	Invalid:   "invalid",
	Void:      "VOID",
	Standard:  "standard",
	Indicant:  "indicant",
	Ref:       "REF",
	Flex:      "FLEX",
	Row:       "row",
	Struct:    "STRUCT",
	Union:     "UNION",
	Proc:      "PROC",
	Series:    "series",
	Stowed:    "stowed",
	Erroneous: "error",
}

func (k Kind) String() string { return kindNames[k] }

// A Field is one entry of a mode's pack: a field of a STRUCT, a member
// of a UNION, or a parameter of a PROC. The name is empty for union
// members and unnamed parameters.
type Field struct {
	Mode *Mode
	Name string
	Node ast.Node
}

// A Mode is one node of the mode graph.
//
// A mode's kind, dimension, and structural contents (sub and pack)
// never change after creation; only the derived-mode slots are filled
// in, by the equivalence engine and the synthesizer. Modes are never
// freed individually: the whole graph is discarded at once.
type Mode struct {
	kind Kind
	dim  int      // row rank, or pack arity for packed kinds
	num  int      // sequential number within the graph
	name string   // Standard and Indicant modes only
	node ast.Node // defining node, if any
	sub  *Mode    // pointee, element, result, or indicant definition
	pack []Field

	// Derived-mode slots. Each is nil until populated.
	equivalent *Mode // canonical representative, once proven equal
	deflexed   *Mode // the mode with all FLEX stripped
	named      *Mode // the name (REF-to-part) mode of a REF to a stowed mode
	multiple   *Mode // the multiple (part-row) mode of a stowed row
	trimmed    *Mode // the mode a trimmer yields
	sliced     *Mode // the mode a full subscript yields
	rowed      *Mode // the row mode with one more dimension

	standard bool // belongs to the standard environment
	derived  bool // synthesized by row derivation, not written by the user
}

// Kind returns the mode's variant.
func (m *Mode) Kind() Kind { return m.kind }

// Dim returns the row rank of a Row mode or the pack arity of a
// packed mode.
func (m *Mode) Dim() int { return m.dim }

// Number returns the mode's stable sequential number within its
// graph.
func (m *Mode) Number() int { return m.num }

// Name returns the name of a Standard or Indicant mode, and "" for
// other kinds.
func (m *Mode) Name() string { return m.name }

// Node returns the mode's defining syntax tree node, if any.
func (m *Mode) Node() ast.Node { return m.node }

// Sub returns the mode's substructure: the pointee of a Ref or Flex,
// the element of a Row, the result of a Proc, or the definition of an
// Indicant. It is nil for atomic kinds.
func (m *Mode) Sub() *Mode { return m.sub }

// Pack returns the mode's pack. The caller must not modify it.
func (m *Mode) Pack() []Field { return m.pack }

// Equivalent returns the mode this one has been proven equal to, or
// nil. Use Graph.Resolve to reach the canonical representative.
func (m *Mode) Equivalent() *Mode { return m.equivalent }

// Rowed returns the row mode with one more dimension than m, if it
// has been synthesized.
func (m *Mode) Rowed() *Mode { return m.rowed }

// IsStandard returns whether the mode belongs to the standard
// environment.
func (m *Mode) IsStandard() bool { return m.standard }

// IsErroneous returns whether the mode is the error sentinel.
func (m *Mode) IsErroneous() bool { return m.kind == Erroneous }

// IsStowed returns whether values of the mode are stowed (composed of
// subvalues): structures and rows.
func (m *Mode) IsStowed() bool {
	switch m.kind {
	case Struct, Row, Flex:
		return true
	}
	return false
}
