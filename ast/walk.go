// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package ast

import (
	"fmt"
)

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children
// of node with the visitor w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Helper functions for common node lists. They may be empty.

func walkSerial(v Visitor, serial []Phrase) {
	for _, p := range serial {
		Walk(v, p)
	}
}

func walkUnitList(v Visitor, list []Unit) {
	for _, x := range list {
		Walk(v, x)
	}
}

// Walk traverses an AST in depth-first order: It starts by calling
// v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor
// w for each of the non-nil children of node, followed by a call of
// w.Visit(nil).
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	// walk children
	// (the order of the cases matches the order
	// of the corresponding node types in ast.go)
	switch n := node.(type) {
	case *BadUnit, *Denotation, *Identifier, *Skip, *Nihil:
		// nothing to do

	case *Formula:
		if n.Left != nil {
			Walk(v, n.Left)
		}
		Walk(v, n.Right)

	case *Assignation:
		Walk(v, n.Dest)
		Walk(v, n.Source)

	case *IdentityRelation:
		Walk(v, n.Left)
		Walk(v, n.Right)

	case *Cast:
		Walk(v, n.Declarer)
		Walk(v, n.X)

	case *ClosedClause:
		walkSerial(v, n.Serial)

	case *CollateralClause:
		walkUnitList(v, n.Units)

	case *ConditionalClause:
		walkSerial(v, n.Condition)
		walkSerial(v, n.Then)
		walkSerial(v, n.Else)

	case *CaseClause:
		walkSerial(v, n.Enquiry)
		walkUnitList(v, n.Alternatives)
		walkSerial(v, n.Out)

	case *ConformityClause:
		walkSerial(v, n.Enquiry)
		for _, alt := range n.Alternatives {
			Walk(v, alt)
		}
		walkSerial(v, n.Out)

	case *ConformityAlternative:
		Walk(v, n.Declarer)
		if n.Name != nil {
			Walk(v, n.Name)
		}
		Walk(v, n.X)

	case *LoopClause:
		if n.For != nil {
			Walk(v, n.For)
		}
		if n.From != nil {
			Walk(v, n.From)
		}
		if n.By != nil {
			Walk(v, n.By)
		}
		if n.To != nil {
			Walk(v, n.To)
		}
		walkSerial(v, n.While)
		walkSerial(v, n.Do)

	case *Call:
		Walk(v, n.Fun)
		walkUnitList(v, n.Arguments)

	case *Slice:
		Walk(v, n.Array)
		for _, s := range n.Subscripts {
			Walk(v, s)
		}

	case *UnitSubscript:
		Walk(v, n.X)

	case *Trimmer:
		if n.Lower != nil {
			Walk(v, n.Lower)
		}
		if n.Upper != nil {
			Walk(v, n.Upper)
		}
		if n.At != nil {
			Walk(v, n.At)
		}

	case *Selection:
		Walk(v, n.Field)
		Walk(v, n.X)

	case *RoutineText:
		for _, p := range n.Parameters {
			Walk(v, p.Declarer)
			Walk(v, p.Name)
		}
		Walk(v, n.Result)
		Walk(v, n.Body)

	case *Coercion:
		Walk(v, n.X)

	case *SimpleDeclarer, *VoidDeclarer:
		// nothing to do

	case *RefDeclarer:
		Walk(v, n.X)

	case *FlexDeclarer:
		Walk(v, n.X)

	case *RowDeclarer:
		for _, b := range n.Bounds {
			if b.Lower != nil {
				Walk(v, b.Lower)
			}
			if b.Upper != nil {
				Walk(v, b.Upper)
			}
		}
		Walk(v, n.X)

	case *StructDeclarer:
		for _, f := range n.Fields {
			Walk(v, f.Declarer)
			for _, name := range f.Names {
				Walk(v, name)
			}
		}

	case *UnionDeclarer:
		for _, m := range n.Members {
			Walk(v, m)
		}

	case *ProcDeclarer:
		for _, p := range n.Parameters {
			Walk(v, p)
		}
		Walk(v, n.Result)

	case *ModeDeclaration:
		Walk(v, n.Declarer)

	case *PriorityDeclaration:
		// nothing to do

	case *IdentityDeclaration:
		Walk(v, n.Declarer)
		Walk(v, n.Name)
		Walk(v, n.Source)

	case *VariableDeclaration:
		Walk(v, n.Declarer)
		for _, def := range n.Vars {
			Walk(v, def.Name)
			if def.Init != nil {
				Walk(v, def.Init)
			}
		}

	case *OperatorDeclaration:
		Walk(v, n.Routine)

	case *Program:
		walkSerial(v, n.Serial)

	default:
		panic(fmt.Sprintf("ast.Walk: unexpected node type %T", n))
	}

	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses an AST in depth-first order: It starts by calling
// f(node); node must not be nil. If f returns true, Inspect invokes f
// recursively for each of the non-nil children of node, followed by a
// call of f(nil).
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
