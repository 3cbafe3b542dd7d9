// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package mode

import (
	"testing"
)

func TestWidened(t *testing.T) {
	g := New()

	tests := []struct {
		Mode *Mode
		Want *Mode
	}{
		{g.Int, g.Real},
		{g.Real, g.Compl},
		{g.Compl, nil},
		{g.LongInt, g.LongReal},
		{g.LongReal, g.LongCompl},
		{g.Bits, g.RowBool},
		{g.Bytes, g.RowChar},
		{g.Bool, nil},
		{g.String, nil},
	}

	for _, test := range tests {
		if got := g.Widened(test.Mode); got != test.Want {
			t.Errorf("Widened(%s): got %s, want %s", test.Mode, got, test.Want)
		}
	}
}

func TestStandardOf(t *testing.T) {
	g := New()

	tests := []struct {
		Name  string
		Longs int
		Want  *Mode
	}{
		{"INT", 0, g.Int},
		{"INT", 1, g.LongInt},
		{"REAL", 0, g.Real},
		{"REAL", 2, g.LongReal},
		{"COMPL", 1, g.LongCompl},
		{"BITS", 0, g.Bits},
		{"BITS", 1, g.LongBits},
		{"BOOL", 0, g.Bool},
		{"CHAR", 0, g.Char},
		{"BYTES", 0, g.Bytes},
		{"STRING", 0, g.String},
		{"VOID", 0, g.Void},
		{"LIST", 0, nil},
	}

	for _, test := range tests {
		if got := g.StandardOf(test.Name, test.Longs); got != test.Want {
			t.Errorf("StandardOf(%q, %d): got %s, want %s", test.Name, test.Longs, got, test.Want)
		}
	}
}
