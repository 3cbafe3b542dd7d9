// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package check

import (
	"algol68.dev/a68/mode"
	"algol68.dev/a68/token"
)

// balance compresses the modes yielded by the branches of a
// conditional, case, or conformity clause into one mode.
//
// Branches carrying the error sentinel adapt to whatever the others
// decide (this also covers SKIP and NIL branches, whose modes are
// only pinned down by context). Of the rest: if all are equivalent,
// that mode wins; otherwise the balanced mode is the first branch
// mode every other branch coerces to strongly. An undecidable balance
// is a diagnostic and yields the sentinel.
func (c *checker) balance(pos token.Pos, branches []*mode.Mode) *mode.Mode {
	g := c.graph

	firm := branches[:0:0]
	for _, m := range branches {
		if m != nil && !m.IsErroneous() {
			firm = append(firm, m)
		}
	}

	switch len(firm) {
	case 0:
		return g.Error
	case 1:
		return firm[0]
	}

	allEqual := true
	for _, m := range firm[1:] {
		if !g.Equivalent(firm[0], m) {
			allEqual = false
			break
		}
	}
	if allEqual {
		return firm[0]
	}

	// The Series mode of the branch yields, compressed by looking
	// for a member every other member reaches strongly.
	for _, candidate := range firm {
		ok := true
		for _, m := range firm {
			if !c.coercible(Strong, m, candidate) {
				ok = false
				break
			}
		}
		if ok {
			return candidate
		}
	}

	series := make([]mode.Field, len(firm))
	for i, m := range firm {
		series[i] = mode.Field{Mode: m}
	}
	s := g.NewMode(mode.Series, len(series), nil, nil, series)
	c.errorf(pos, "cannot balance the branches of this clause: no branch mode is reachable from all of %s", s)

	return g.Error
}
