// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package mode

import (
	"testing"
)

func TestEquivalent(t *testing.T) {
	tests := []struct {
		Name  string
		Build func(g *Graph) (a, b *Mode)
		Want  bool
	}{
		{
			Name: "standard identical",
			Build: func(g *Graph) (*Mode, *Mode) {
				return g.Int, g.Int
			},
			Want: true,
		},
		{
			Name: "standard distinct",
			Build: func(g *Graph) (*Mode, *Mode) {
				return g.Int, g.Real
			},
			Want: false,
		},
		{
			Name: "ref of equal pointees",
			Build: func(g *Graph) (*Mode, *Mode) {
				a := g.NewMode(Ref, 0, nil, g.Real, nil)
				b := g.NewMode(Ref, 0, nil, g.Real, nil)
				return a, b
			},
			Want: true,
		},
		{
			Name: "ref of distinct pointees",
			Build: func(g *Graph) (*Mode, *Mode) {
				a := g.NewMode(Ref, 0, nil, g.Int, nil)
				b := g.NewMode(Ref, 0, nil, g.Real, nil)
				return a, b
			},
			Want: false,
		},
		{
			Name: "row dimensions differ",
			Build: func(g *Graph) (*Mode, *Mode) {
				a := g.NewMode(Row, 1, nil, g.Int, nil)
				b := g.NewMode(Row, 2, nil, g.Int, nil)
				return a, b
			},
			Want: false,
		},
		{
			Name: "struct same fields",
			Build: func(g *Graph) (*Mode, *Mode) {
				a := g.NewMode(Struct, 2, nil, nil, []Field{{Mode: g.Real, Name: "re"}, {Mode: g.Real, Name: "im"}})
				b := g.NewMode(Struct, 2, nil, nil, []Field{{Mode: g.Real, Name: "re"}, {Mode: g.Real, Name: "im"}})
				return a, b
			},
			Want: true,
		},
		{
			Name: "struct field names differ",
			Build: func(g *Graph) (*Mode, *Mode) {
				a := g.NewMode(Struct, 2, nil, nil, []Field{{Mode: g.Real, Name: "re"}, {Mode: g.Real, Name: "im"}})
				b := g.NewMode(Struct, 2, nil, nil, []Field{{Mode: g.Real, Name: "x"}, {Mode: g.Real, Name: "y"}})
				return a, b
			},
			Want: false,
		},
		{
			Name: "union member order ignored",
			Build: func(g *Graph) (*Mode, *Mode) {
				a := g.NewMode(Union, 2, nil, nil, []Field{{Mode: g.Int}, {Mode: g.Real}})
				b := g.NewMode(Union, 2, nil, nil, []Field{{Mode: g.Real}, {Mode: g.Int}})
				return a, b
			},
			Want: true,
		},
		{
			Name: "union members differ",
			Build: func(g *Graph) (*Mode, *Mode) {
				a := g.NewMode(Union, 2, nil, nil, []Field{{Mode: g.Int}, {Mode: g.Real}})
				b := g.NewMode(Union, 2, nil, nil, []Field{{Mode: g.Int}, {Mode: g.Bool}})
				return a, b
			},
			Want: false,
		},
		{
			Name: "proc parameter names ignored",
			Build: func(g *Graph) (*Mode, *Mode) {
				a := g.NewMode(Proc, 1, nil, g.Bool, []Field{{Mode: g.Int, Name: "n"}})
				b := g.NewMode(Proc, 1, nil, g.Bool, []Field{{Mode: g.Int, Name: "m"}})
				return a, b
			},
			Want: true,
		},
		{
			Name: "proc results differ",
			Build: func(g *Graph) (*Mode, *Mode) {
				a := g.NewMode(Proc, 1, nil, g.Bool, []Field{{Mode: g.Int}})
				b := g.NewMode(Proc, 1, nil, g.Int, []Field{{Mode: g.Int}})
				return a, b
			},
			Want: false,
		},
		{
			Name: "indicant chased to definition",
			Build: func(g *Graph) (*Mode, *Mode) {
				ind := g.NewIndicant("LENGTH", nil)
				g.Define(ind, g.Int)
				return ind, g.Int
			},
			Want: true,
		},
		{
			Name: "recursive lists with distinct indicants",
			Build: func(g *Graph) (*Mode, *Mode) {
				a := g.NewIndicant("LISTA", nil)
				b := g.NewIndicant("LISTB", nil)
				g.Define(a, g.NewMode(Struct, 2, nil, nil, []Field{
					{Mode: g.Int, Name: "v"},
					{Mode: g.NewMode(Ref, 0, nil, a, nil), Name: "next"},
				}))
				g.Define(b, g.NewMode(Struct, 2, nil, nil, []Field{
					{Mode: g.Int, Name: "v"},
					{Mode: g.NewMode(Ref, 0, nil, b, nil), Name: "next"},
				}))
				return a, b
			},
			Want: true,
		},
		{
			Name: "recursive lists with differing payloads",
			Build: func(g *Graph) (*Mode, *Mode) {
				a := g.NewIndicant("LISTA", nil)
				b := g.NewIndicant("LISTB", nil)
				g.Define(a, g.NewMode(Struct, 2, nil, nil, []Field{
					{Mode: g.Int, Name: "v"},
					{Mode: g.NewMode(Ref, 0, nil, a, nil), Name: "next"},
				}))
				g.Define(b, g.NewMode(Struct, 2, nil, nil, []Field{
					{Mode: g.Real, Name: "v"},
					{Mode: g.NewMode(Ref, 0, nil, b, nil), Name: "next"},
				}))
				return a, b
			},
			Want: false,
		},
		{
			Name: "ref to named struct against spelled-out form",
			Build: func(g *Graph) (*Mode, *Mode) {
				cplx := g.NewIndicant("CPLX", nil)
				g.Define(cplx, g.NewMode(Struct, 2, nil, nil, []Field{
					{Mode: g.Real, Name: "re"},
					{Mode: g.Real, Name: "im"},
				}))
				refcplx := g.NewIndicant("REFCPLX", nil)
				g.Define(refcplx, g.NewMode(Ref, 0, nil, cplx, nil))

				direct := g.NewMode(Ref, 0, nil, g.NewMode(Struct, 2, nil, nil, []Field{
					{Mode: g.Real, Name: "re"},
					{Mode: g.Real, Name: "im"},
				}), nil)

				return refcplx, direct
			},
			Want: true,
		},
		{
			Name: "flex is not its row",
			Build: func(g *Graph) (*Mode, *Mode) {
				row := g.NewMode(Row, 1, nil, g.Char, nil)
				return g.NewMode(Flex, 0, nil, row, nil), row
			},
			Want: false,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			g := New()
			a, b := test.Build(g)

			if got := g.Equivalent(a, b); got != test.Want {
				t.Errorf("Equivalent(%s, %s): got %v, want %v", a, b, got, test.Want)
			}

			// Symmetry.
			if got := g.Equivalent(b, a); got != test.Want {
				t.Errorf("Equivalent(%s, %s): got %v, want %v", b, a, got, test.Want)
			}

			// Reflexivity.
			if !g.Equivalent(a, a) {
				t.Errorf("Equivalent(%s, %s): got false, want true", a, a)
			}
			if !g.Equivalent(b, b) {
				t.Errorf("Equivalent(%s, %s): got false, want true", b, b)
			}
		})
	}
}

func TestProveAndMark(t *testing.T) {
	g := New()

	// A user-declared indicant for INT must defer to the standard
	// mode as canonical.
	ind := g.NewIndicant("LENGTH", nil)
	g.Define(ind, g.Int)

	if !g.ProveAndMark(ind, g.Int) {
		t.Fatalf("ProveAndMark(%s, INT): got false, want true", ind)
	}
	if got := g.Resolve(ind); got != g.Int {
		t.Errorf("Resolve(%s): got %s, want INT", ind, got)
	}
	if g.Int.Equivalent() != nil {
		t.Errorf("INT was linked away from canonical")
	}
}

func TestFindEquivalentModes(t *testing.T) {
	g := New()

	a := g.NewMode(Struct, 2, nil, nil, []Field{{Mode: g.Real, Name: "re"}, {Mode: g.Real, Name: "im"}})
	b := g.NewMode(Struct, 2, nil, nil, []Field{{Mode: g.Real, Name: "re"}, {Mode: g.Real, Name: "im"}})
	c := g.NewMode(Struct, 2, nil, nil, []Field{{Mode: g.Int, Name: "re"}, {Mode: g.Real, Name: "im"}})

	g.FindEquivalentModes()

	if g.Resolve(a) != g.Resolve(b) {
		t.Errorf("equal structs not collapsed: %s and %s", a, b)
	}
	if g.Resolve(a) == g.Resolve(c) {
		t.Errorf("unequal structs collapsed: %s and %s", a, c)
	}
}

func TestUnionContains(t *testing.T) {
	g := New()

	u := g.NewMode(Union, 2, nil, nil, []Field{{Mode: g.Int}, {Mode: g.Real}})
	if !g.UnionContains(u, g.Int) {
		t.Errorf("UnionContains(%s, INT): got false, want true", u)
	}
	if g.UnionContains(u, g.Bool) {
		t.Errorf("UnionContains(%s, BOOL): got true, want false", u)
	}
	if g.UnionContains(g.Int, g.Int) {
		t.Errorf("UnionContains(INT, INT): got true, want false")
	}
}
