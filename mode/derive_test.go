// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package mode

import (
	"testing"
)

func TestDeflex(t *testing.T) {
	g := New()

	rowInt := g.NewMode(Row, 1, nil, g.Int, nil)
	flexRowInt := g.NewMode(Flex, 0, nil, rowInt, nil)
	refFlex := g.NewMode(Ref, 0, nil, flexRowInt, nil)
	structFlex := g.NewMode(Struct, 2, nil, nil, []Field{
		{Mode: flexRowInt, Name: "xs"},
		{Mode: g.Int, Name: "n"},
	})

	tests := []struct {
		Name string
		Mode *Mode
		Want string
	}{
		{"flex row", flexRowInt, "[] INT"},
		{"ref flex row", refFlex, "REF [] INT"},
		{"struct with flex field", structFlex, "STRUCT ([] INT xs, INT n)"},
		{"string", g.String, "[] CHAR"},
		{"atomic", g.Int, "INT"},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			d := g.Deflex(test.Mode)
			if got := d.String(); got != test.Want {
				t.Errorf("Deflex(%s): got %s, want %s", test.Mode, got, test.Want)
			}

			// Deflexing is idempotent.
			if again := g.Deflex(d); again != d {
				t.Errorf("Deflex(Deflex(%s)): got %s, want %s", test.Mode, again, d)
			}
		})
	}
}

func TestDeflexRecursive(t *testing.T) {
	g := New()

	// MODE TREE = STRUCT (FLEX [] REF TREE kids): the cycle passes
	// through a REF, so deflexing must terminate and strip the FLEX.
	tree := g.NewIndicant("TREE", nil)
	refTree := g.NewMode(Ref, 0, nil, tree, nil)
	row := g.NewMode(Row, 1, nil, refTree, nil)
	flex := g.NewMode(Flex, 0, nil, row, nil)
	g.Define(tree, g.NewMode(Struct, 1, nil, nil, []Field{{Mode: flex, Name: "kids"}}))

	d := g.Deflex(tree)
	if d.Kind() != Struct {
		t.Fatalf("Deflex(TREE): got kind %v, want %v", d.Kind(), Struct)
	}
	if field := g.Resolve(d.Pack()[0].Mode); field.Kind() != Row {
		t.Errorf("Deflex(TREE) field kids: got kind %v, want %v", field.Kind(), Row)
	}
}

func TestAbsorbUnions(t *testing.T) {
	g := New()

	// UNION (INT, UNION (REAL, INT)) -> UNION (INT, REAL)
	inner := g.NewMode(Union, 2, nil, nil, []Field{{Mode: g.Real}, {Mode: g.Int}})
	outer := g.NewMode(Union, 2, nil, nil, []Field{{Mode: g.Int}, {Mode: inner}})

	g.Synthesize()

	pack := g.Resolve(outer).Pack()
	if len(pack) != 2 || !g.UnionContains(outer, g.Int) || !g.UnionContains(outer, g.Real) {
		t.Fatalf("absorbed pack: got %s, want UNION (INT, REAL)", g.Resolve(outer))
	}

	// Idempotence: a second synthesis round changes nothing.
	before := g.Len()
	g.Synthesize()
	if g.Len() != before {
		t.Errorf("second Synthesize added modes: %d -> %d", before, g.Len())
	}
	if again := g.Resolve(outer).Pack(); len(again) != 2 {
		t.Errorf("second absorption changed the pack: %s", g.Resolve(outer))
	}
}

func TestNamed(t *testing.T) {
	g := New()

	cplx := g.NewMode(Struct, 2, nil, nil, []Field{
		{Mode: g.Real, Name: "re"},
		{Mode: g.Real, Name: "im"},
	})
	refStruct := g.NewMode(Ref, 0, nil, cplx, nil)
	refRow := g.NewMode(Ref, 0, nil, g.NewMode(Row, 1, nil, g.Int, nil), nil)

	g.Synthesize()

	if got := g.Named(refStruct); got == nil || got.String() != "STRUCT (REF REAL re, REF REAL im)" {
		t.Errorf("Named(%s): got %s, want STRUCT (REF REAL re, REF REAL im)", refStruct, got)
	}
	if got := g.Named(refRow); got == nil || got.String() != "REF INT" {
		t.Errorf("Named(%s): got %s, want REF INT", refRow, got)
	}
	if got := g.Named(g.Int); got != nil {
		t.Errorf("Named(INT): got %s, want nil", got)
	}
}

func TestMultiple(t *testing.T) {
	g := New()

	pair := g.NewMode(Struct, 2, nil, nil, []Field{
		{Mode: g.Int, Name: "k"},
		{Mode: g.Real, Name: "v"},
	})
	rowOfPairs := g.NewMode(Row, 1, nil, pair, nil)

	g.Synthesize()

	if got := g.Multiple(rowOfPairs); got == nil || got.String() != "STRUCT ([] INT k, [] REAL v)" {
		t.Errorf("Multiple(%s): got %s, want STRUCT ([] INT k, [] REAL v)", rowOfPairs, got)
	}
	if got := g.Multiple(g.Int); got != nil {
		t.Errorf("Multiple(INT): got %s, want nil", got)
	}
}

func TestTrimmed(t *testing.T) {
	g := New()

	rowChar := g.NewMode(Row, 1, nil, g.Char, nil)
	flex := g.NewMode(Flex, 0, nil, rowChar, nil)
	refFlex := g.NewMode(Ref, 0, nil, flex, nil)
	refRow := g.NewMode(Ref, 0, nil, rowChar, nil)

	g.Synthesize()

	tests := []struct {
		Name string
		Mode *Mode
		Want string
	}{
		{"flex row", flex, "[] CHAR"},
		{"plain row", rowChar, "[] CHAR"},
		{"ref flex row", refFlex, "REF [] CHAR"},
		{"ref plain row", refRow, "REF [] CHAR"},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			if got := g.Trimmed(test.Mode); got.String() != test.Want {
				t.Errorf("Trimmed(%s): got %s, want %s", test.Mode, got, test.Want)
			}
		})
	}
}

func TestSliced(t *testing.T) {
	g := New()

	row2 := g.NewMode(Row, 2, nil, g.Real, nil)
	row1 := g.NewMode(Row, 1, nil, g.Real, nil)

	g.Synthesize()

	if got := g.Sliced(row2); got == nil || got.String() != "[] REAL" {
		t.Errorf("Sliced(%s): got %s, want [] REAL", row2, got)
	}
	if got := g.Sliced(row1); got != g.Real {
		t.Errorf("Sliced(%s): got %s, want REAL", row1, got)
	}
	if got := g.Sliced(g.String); got != g.Char {
		t.Errorf("Sliced(STRING): got %s, want CHAR", got)
	}
	if got := g.Sliced(g.Int); got != nil {
		t.Errorf("Sliced(INT): got %s, want nil", got)
	}
}

func TestRowDerivation(t *testing.T) {
	g := New()

	row1 := g.NewMode(Row, 1, nil, g.Bool, nil)
	refRow := g.NewMode(Ref, 0, nil, row1, nil)

	g.Synthesize()

	if got := row1.Rowed(); got == nil || got.Kind() != Row || got.Dim() != 2 {
		t.Fatalf("Rowed(%s): got %s", row1, got)
	}
	if got := refRow.Rowed(); got == nil || got.String() != "REF [,] BOOL" {
		t.Errorf("Rowed(%s): got %s, want REF [,] BOOL", refRow, got)
	}

	// The slicing back-link of the derived row points at the source.
	if got := g.Sliced(row1.Rowed()); g.Resolve(got) != g.Resolve(row1) {
		t.Errorf("Sliced(Rowed(%s)): got %s, want %s", row1, got, row1)
	}
}

func TestRowOf(t *testing.T) {
	g := New()
	g.Synthesize()

	if got := g.RowOf(g.Int); got.Kind() != Row || got.Dim() != 1 || g.Resolve(got.Sub()) != g.Int {
		t.Errorf("RowOf(INT): got %s, want [] INT", got)
	}

	row := g.NewMode(Row, 1, nil, g.Int, nil)
	if got := g.RowOf(row); got.Kind() != Row || got.Dim() != 2 {
		t.Errorf("RowOf(%s): got %s, want [,] INT", row, got)
	}
}

func TestSynthesizeStabilises(t *testing.T) {
	g := New()

	// A mutually recursive pair with rows and flex rows exercises
	// every synthesis family; the loop must reach a fixed point.
	a := g.NewIndicant("A", nil)
	b := g.NewIndicant("B", nil)
	g.Define(a, g.NewMode(Struct, 2, nil, nil, []Field{
		{Mode: g.NewMode(Ref, 0, nil, b, nil), Name: "x"},
		{Mode: g.NewMode(Flex, 0, nil, g.NewMode(Row, 1, nil, g.Int, nil), nil), Name: "xs"},
	}))
	g.Define(b, g.NewMode(Struct, 1, nil, nil, []Field{
		{Mode: g.NewMode(Ref, 0, nil, a, nil), Name: "y"},
	}))

	g.Synthesize()

	before := g.Len()
	g.Synthesize()
	if g.Len() != before {
		t.Errorf("Synthesize is not a fixed point: %d -> %d modes", before, g.Len())
	}
}
