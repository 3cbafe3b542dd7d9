// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package diag collects positional diagnostics.
//
// User-facing problems are recorded against a source position and
// accumulated; a pass runs to its natural end and the caller then
// asks whether the error count is zero. Internal-consistency failures
// are not diagnostics and panic instead.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"algol68.dev/a68/token"
)

// A Diagnostic is one recorded problem.
type Diagnostic struct {
	Pos token.Pos
	Msg string
}

// Error returns the message without position information. Rendering
// with a position goes through List.Format.
func (d Diagnostic) Error() string { return d.Msg }

// A List accumulates diagnostics in the order they are recorded.
type List struct {
	all []Diagnostic
}

// Errorf records a diagnostic against pos.
func (l *List) Errorf(pos token.Pos, format string, v ...any) {
	l.all = append(l.all, Diagnostic{Pos: pos, Msg: fmt.Sprintf(format, v...)})
}

// Len returns the number of recorded diagnostics.
func (l *List) Len() int { return len(l.all) }

// All returns the recorded diagnostics, sorted by position.
// Diagnostics at the same position keep their recording order.
func (l *List) All() []Diagnostic {
	out := make([]Diagnostic, len(l.all))
	copy(out, l.all)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out
}

// Err returns an error summarising the list, or nil if the list is
// empty.
func (l *List) Err() error {
	switch n := len(l.all); n {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("1 error")
	default:
		return fmt.Errorf("%d errors", n)
	}
}

// Format renders every diagnostic, one per line, with positions
// resolved through fset.
func (l *List) Format(fset *token.FileSet) string {
	var b strings.Builder
	for _, d := range l.All() {
		fmt.Fprintf(&b, "%s: %s\n", fset.Position(d.Pos), d.Msg)
	}
	return b.String()
}
