// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package check

import (
	"algol68.dev/a68/ast"
	"algol68.dev/a68/mode"
	"algol68.dev/a68/scope"
)

// An Operator is one resolved operator: a declared one (Tag set) or
// one of the standard environment.
type Operator struct {
	Name     string
	Operands []*mode.Mode
	Result   *mode.Mode
	Tag      *scope.Tag // nil for standard-environment operators
}

// standardOperators builds the operator set of the standard
// environment over the fresh graph.
func (c *checker) standardOperators() {
	g := c.graph
	c.standard = make(map[string][]*Operator)

	add := func(name string, result *mode.Mode, operands ...*mode.Mode) {
		c.standard[name] = append(c.standard[name], &Operator{
			Name:     name,
			Operands: operands,
			Result:   result,
		})
	}

	// Dyadic arithmetic over the numeric tower. Division of integers
	// yields REAL; OVER is integer division.
	numeric := []*mode.Mode{g.Int, g.Real, g.Compl, g.LongInt, g.LongReal, g.LongCompl}
	for _, m := range numeric {
		add("+", m, m, m)
		add("-", m, m, m)
		add("*", m, m, m)
	}
	add("/", g.Real, g.Real, g.Real)
	add("/", g.Real, g.Int, g.Int)
	add("/", g.Compl, g.Compl, g.Compl)
	add("/", g.LongReal, g.LongReal, g.LongReal)
	add("/", g.LongReal, g.LongInt, g.LongInt)
	add("/", g.LongCompl, g.LongCompl, g.LongCompl)
	add("OVER", g.Int, g.Int, g.Int)
	add("MOD", g.Int, g.Int, g.Int)
	add("OVER", g.LongInt, g.LongInt, g.LongInt)
	add("MOD", g.LongInt, g.LongInt, g.LongInt)
	add("**", g.Int, g.Int, g.Int)
	add("**", g.Real, g.Real, g.Int)
	add("^", g.Int, g.Int, g.Int)
	add("^", g.Real, g.Real, g.Int)

	// Comparison.
	ordered := []*mode.Mode{g.Int, g.Real, g.Char, g.String, g.LongInt, g.LongReal}
	for _, m := range ordered {
		add("<", g.Bool, m, m)
		add("<=", g.Bool, m, m)
		add(">", g.Bool, m, m)
		add(">=", g.Bool, m, m)
	}
	equatable := append([]*mode.Mode{g.Bool, g.Bits, g.Compl, g.LongBits, g.LongCompl}, ordered...)
	for _, m := range equatable {
		add("=", g.Bool, m, m)
		add("/=", g.Bool, m, m)
	}

	// Logical and bits.
	add("OR", g.Bool, g.Bool, g.Bool)
	add("AND", g.Bool, g.Bool, g.Bool)
	add("XOR", g.Bool, g.Bool, g.Bool)
	add("OR", g.Bits, g.Bits, g.Bits)
	add("AND", g.Bits, g.Bits, g.Bits)
	add("XOR", g.Bits, g.Bits, g.Bits)
	add("SHL", g.Bits, g.Bits, g.Int)
	add("SHR", g.Bits, g.Bits, g.Int)
	add("ELEM", g.Bool, g.Int, g.Bits)

	// Strings.
	add("+", g.String, g.String, g.String)
	add("+", g.String, g.Char, g.String)
	add("+", g.String, g.String, g.Char)
	add("*", g.String, g.String, g.Int)
	add("*", g.String, g.Int, g.String)

	// Complex construction.
	add("I", g.Compl, g.Real, g.Real)
	add("I", g.Compl, g.Int, g.Int)
	add("I", g.LongCompl, g.LongReal, g.LongReal)

	// Monadic operators.
	add("-", g.Int, g.Int)
	add("-", g.Real, g.Real)
	add("-", g.Compl, g.Compl)
	add("-", g.LongInt, g.LongInt)
	add("-", g.LongReal, g.LongReal)
	add("+", g.Int, g.Int)
	add("+", g.Real, g.Real)
	add("ABS", g.Int, g.Int)
	add("ABS", g.Real, g.Real)
	add("ABS", g.Real, g.Compl)
	add("ABS", g.Int, g.Bool)
	add("ABS", g.Int, g.Char)
	add("ABS", g.LongInt, g.LongInt)
	add("ABS", g.LongReal, g.LongReal)
	add("SIGN", g.Int, g.Int)
	add("SIGN", g.Int, g.Real)
	add("ENTIER", g.Int, g.Real)
	add("ROUND", g.Int, g.Real)
	add("ENTIER", g.LongInt, g.LongReal)
	add("ROUND", g.LongInt, g.LongReal)
	add("ODD", g.Bool, g.Int)
	add("REPR", g.Char, g.Int)
	add("NOT", g.Bool, g.Bool)
	add("NOT", g.Bits, g.Bits)
	add("RE", g.Real, g.Compl)
	add("IM", g.Real, g.Compl)
	add("ARG", g.Real, g.Compl)
	add("CONJ", g.Compl, g.Compl)
	add("LENG", g.LongInt, g.Int)
	add("LENG", g.LongReal, g.Real)
	add("LENG", g.LongCompl, g.Compl)
	add("LENG", g.LongBits, g.Bits)
	add("SHORTEN", g.Int, g.LongInt)
	add("SHORTEN", g.Real, g.LongReal)
	add("SHORTEN", g.Compl, g.LongCompl)
	add("SHORTEN", g.Bits, g.LongBits)
}

// findOperator resolves an operator application: the innermost
// declared operator whose every parameter is firmly reachable from
// the corresponding operand wins; the standard environment is
// searched next, first firmly, then allowing the numeric-tower
// promotions (widening) a firm position does not otherwise license.
func (c *checker) findOperator(r *scope.Range, name string, operands []*mode.Mode) *Operator {
	for _, tag := range r.FindOperators(name) {
		proc := tag.Mode()
		if proc == nil {
			continue
		}
		rp := c.graph.Resolve(proc)
		if rp.Kind() != mode.Proc || len(rp.Pack()) != len(operands) {
			continue
		}
		if c.operandsFit(operands, packModes(rp.Pack()), false) {
			return &Operator{
				Name:     name,
				Operands: packModes(rp.Pack()),
				Result:   rp.Sub(),
				Tag:      tag,
			}
		}
	}

	for _, widen := range []bool{false, true} {
		for _, op := range c.standard[name] {
			if len(op.Operands) != len(operands) {
				continue
			}
			if c.operandsFit(operands, op.Operands, widen) {
				return op
			}
		}
	}

	return nil
}

func packModes(pack []mode.Field) []*mode.Mode {
	out := make([]*mode.Mode, len(pack))
	for i, f := range pack {
		out[i] = f.Mode
	}

	return out
}

func (c *checker) operandsFit(have, want []*mode.Mode, widen bool) bool {
	for i := range have {
		sort := Firm
		if widen {
			// The numeric-tower fallback treats the operand
			// position as strong, minus rowing: widening is the
			// only extra step the tower needs.
			sort = Strong
		}
		steps, ok := c.steps(sort, have[i], want[i])
		if !ok {
			return false
		}
		if widen {
			for _, s := range steps {
				if s == ast.Rowing || s == ast.Voiding {
					ok = false
				}
			}
			if !ok {
				return false
			}
		}
	}

	return true
}
