// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package scope

import (
	"strings"
	"testing"

	"algol68.dev/a68/token"
)

func TestEnter(t *testing.T) {
	r := NewRange(nil, 1, 100, "program")

	n, prev := r.Enter(Identifier, "n", 2, nil)
	if prev != nil {
		t.Fatalf("Enter(n): reported a previous tag %v in an empty range", prev)
	}
	if n.Class() != Identifier || n.Name() != "n" || n.Pos() != token.Pos(2) {
		t.Fatalf("Enter(n): tag %v", n)
	}

	// A second declaration of the same name reports the first.
	again, prev := r.Enter(Identifier, "n", 10, nil)
	if prev != n || again != n {
		t.Errorf("Enter(n) twice: got (%v, %v), want the original tag twice", again, prev)
	}
	if len(r.Tags()) != 1 {
		t.Errorf("Enter(n) twice: %d tags in range, want 1", len(r.Tags()))
	}

	// The same name in a different class is a different tag.
	ind, prev := r.Enter(Indicant, "n", 12, nil)
	if prev != nil || ind == n {
		t.Errorf("Enter(indicant n): got (%v, %v), want a fresh tag", ind, prev)
	}

	// Operators may be declared repeatedly (overloads).
	op1, _ := r.Enter(Operator, "+", 20, nil)
	op2, prev := r.Enter(Operator, "+", 30, nil)
	if prev != nil || op1 == op2 {
		t.Errorf("Enter(operator +) twice: got the same tag back")
	}
}

func TestFind(t *testing.T) {
	outer := NewRange(nil, 1, 100, "program")
	inner := NewRange(outer, 10, 50, "closed clause")

	if inner.Parent() != outer {
		t.Fatalf("Parent(): got %p, want %p", inner.Parent(), outer)
	}

	n, _ := outer.Enter(Identifier, "n", 2, nil)
	shadow, _ := inner.Enter(Identifier, "n", 12, nil)

	if got := inner.Find(Identifier, "n"); got != shadow {
		t.Errorf("inner.Find(n): got %v, want the shadowing tag", got)
	}
	if got := outer.Find(Identifier, "n"); got != n {
		t.Errorf("outer.Find(n): got %v, want the outer tag", got)
	}
	if got := inner.FindLocal(Identifier, "n"); got != shadow {
		t.Errorf("inner.FindLocal(n): got %v, want the shadowing tag", got)
	}
	if got := outer.FindLocal(Identifier, "m"); got != nil {
		t.Errorf("outer.FindLocal(m): got %v, want nil", got)
	}

	// Find searches outward through the parents.
	m, _ := outer.Enter(Identifier, "m", 4, nil)
	if got := inner.Find(Identifier, "m"); got != m {
		t.Errorf("inner.Find(m): got %v, want the outer tag", got)
	}
	if got := inner.Find(Identifier, "missing"); got != nil {
		t.Errorf("inner.Find(missing): got %v, want nil", got)
	}
}

func TestFindOperators(t *testing.T) {
	outer := NewRange(nil, 1, 100, "program")
	inner := NewRange(outer, 10, 50, "closed clause")

	a, _ := outer.Enter(Operator, "MAX", 2, nil)
	b, _ := inner.Enter(Operator, "MAX", 12, nil)
	c, _ := inner.Enter(Operator, "MAX", 20, nil)

	got := inner.FindOperators("MAX")
	want := []*Tag{b, c, a}
	if len(got) != len(want) {
		t.Fatalf("FindOperators(MAX): got %d tags, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("FindOperators(MAX)[%d]: wrong tag; overloads must come innermost first", i)
		}
	}

	if got := outer.FindOperators("MAX"); len(got) != 1 || got[0] != a {
		t.Errorf("outer.FindOperators(MAX): got %v, want only the outer tag", got)
	}
}

func TestFindPriority(t *testing.T) {
	outer := NewRange(nil, 1, 100, "program")
	inner := NewRange(outer, 10, 50, "closed clause")

	tag, _ := outer.Enter(Priority, "MAX", 2, nil)
	tag.SetPriority(9)

	if got := inner.FindPriority("MAX"); got != 9 {
		t.Errorf("FindPriority(MAX): got %d, want 9", got)
	}
	if got := inner.FindPriority("MIN"); got != -1 {
		t.Errorf("FindPriority(MIN): got %d, want -1", got)
	}
}

func TestWriteTo(t *testing.T) {
	r := NewRange(nil, 1, 100, "program")
	child := NewRange(r, 10, 50, "closed clause")

	r.Enter(Identifier, "zebra", 2, nil)
	r.Enter(Identifier, "aardvark", 4, nil)
	child.Enter(Indicant, "LIST", 12, nil)

	var b strings.Builder
	if err := r.WriteTo(&b, 0, true); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	out := b.String()

	// Tags print sorted by name, children indented one level deeper.
	if !strings.Contains(out, "program range") {
		t.Errorf("WriteTo: no range header in %q", out)
	}
	za := strings.Index(out, "zebra")
	aa := strings.Index(out, "aardvark")
	if aa < 0 || za < 0 || aa > za {
		t.Errorf("WriteTo: tags not sorted by name in %q", out)
	}
	if !strings.Contains(out, ".  closed clause range") {
		t.Errorf("WriteTo: child range not indented in %q", out)
	}
	if !strings.Contains(out, ".  .  indicant LIST") {
		t.Errorf("WriteTo: child tag not indented in %q", out)
	}
}
