// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package check implements the mode checker and the coercion
// inserter.
//
// Checking runs in phases over one parsed program: the declarations
// are collected into a tree of ranges, mode declarations are resolved
// into the mode graph and validated, the derived modes are
// synthesized, every unit's natural mode is inferred bottom-up under
// a SOID (sort and mode) describing its context, and finally a
// top-down pass rebuilds the tree with every implicit conversion made
// explicit as an ast.Coercion wrapper.
//
// User-level problems are collected as diagnostics and checking
// continues with the error sentinel mode, so one root cause does not
// cascade. Violated invariants of the checker itself panic.
package check

import (
	"algol68.dev/a68/ast"
	"algol68.dev/a68/diag"
	"algol68.dev/a68/mode"
	"algol68.dev/a68/scope"
	"algol68.dev/a68/token"
)

// Info holds the results of checking one program.
type Info struct {
	// Graph is the fully synthesized mode graph.
	Graph *mode.Graph

	// Root is the outermost range of the program.
	Root *scope.Range

	// Modes maps every unit to its natural (uncoerced) mode.
	Modes map[ast.Unit]*mode.Mode

	// Uses maps every applied identifier occurrence to the tag it
	// resolved to.
	Uses map[*ast.Identifier]*scope.Tag

	// Operators maps every formula to the operator it resolved to.
	Operators map[*ast.Formula]*Operator

	// Program is the coercion-expanded tree: the parsed tree rebuilt
	// with ast.Coercion wrappers. The original subtrees are shared,
	// never modified.
	Program *ast.Program
}

// Check type-checks prog, returning the results and the diagnostics.
// The returned Info is complete even when diagnostics were recorded;
// units whose mode could not be established carry the error sentinel.
func Check(fset *token.FileSet, prog *ast.Program) (*Info, *diag.List) {
	c := &checker{
		fset:  fset,
		graph: mode.New(),
		list:  new(diag.List),
		info: &Info{
			Modes:     make(map[ast.Unit]*mode.Mode),
			Uses:      make(map[*ast.Identifier]*scope.Tag),
			Operators: make(map[*ast.Formula]*Operator),
		},
		ranges:   make(map[ast.Node]*scope.Range),
		casts:    make(map[*ast.Cast]*mode.Mode),
		alts:     make(map[*ast.ConformityAlternative]*mode.Mode),
		routines: make(map[*ast.RoutineText]*mode.Mode),
	}

	c.info.Graph = c.graph
	c.standardOperators()

	root := scope.NewRange(nil, prog.Pos(), prog.End(), "program")
	c.info.Root = root
	c.ranges[prog] = root

	// Phase 1: enter every declared tag, building the range tree.
	c.collectSerial(root, prog.Serial)

	// Phase 2: attach definitions to the indicants and reject the
	// ill-formed ones before any proof trusts them.
	c.defineIndicants()

	// Phase 3: resolve the declared modes of identifiers, operators,
	// parameters, and conformity names onto their tags.
	c.resolveTags()

	// Phase 4: collapse equivalence classes and synthesize the
	// derived modes the unit checker consumes.
	c.graph.FindEquivalentModes()
	c.graph.Synthesize()

	// Phase 5: infer the natural mode of every unit.
	c.checkSerial(root, prog.Serial, soid{sort: Strong, mode: c.graph.Void})

	// Phase 6: rebuild the tree with explicit coercions.
	c.info.Program = &ast.Program{
		Filename: prog.Filename,
		Serial:   c.insertSerial(root, prog.Serial, soid{sort: Strong, mode: c.graph.Void}),
	}

	return c.info, c.list
}

type checker struct {
	fset  *token.FileSet
	graph *mode.Graph
	list  *diag.List
	info  *Info

	// ranges maps each range-introducing node (program, enclosed
	// clauses, routine texts, conformity alternatives) to its range.
	ranges map[ast.Node]*scope.Range

	// Declarations recorded by the collect phase, resolved in order
	// once all indicants are defined.
	modeDecls  []pendingMode
	identDecls []pendingIdent
	varDecls   []pendingVar
	opDecls    []pendingOp
	paramDecls []pendingParam

	// Standard environment operators, by symbol.
	standard map[string][]*Operator

	// Modes resolved during unit checking, read back by the
	// insertion pass so diagnostics are not emitted twice.
	casts    map[*ast.Cast]*mode.Mode
	alts     map[*ast.ConformityAlternative]*mode.Mode
	routines map[*ast.RoutineText]*mode.Mode
}

type pendingMode struct {
	tag  *scope.Tag
	decl *ast.ModeDeclaration
	r    *scope.Range
}

type pendingIdent struct {
	tag      *scope.Tag
	declarer ast.Declarer
	r        *scope.Range
}

type pendingVar struct {
	tag      *scope.Tag
	declarer ast.Declarer
	r        *scope.Range
}

type pendingOp struct {
	tag  *scope.Tag
	decl *ast.OperatorDeclaration
	r    *scope.Range
}

type pendingParam struct {
	tag      *scope.Tag
	declarer ast.Declarer
	r        *scope.Range
}

func (c *checker) errorf(pos token.Pos, format string, v ...any) {
	c.list.Errorf(pos, format, v...)
}

// rangeOf returns the range recorded for a range-introducing node.
// Its absence is a bug in the collect phase.
func (c *checker) rangeOf(n ast.Node) *scope.Range {
	r := c.ranges[n]
	if r == nil {
		panic("check: node has no collected range")
	}

	return r
}

// ----------------------------------------------------------------------------
// Phase 1: declaration collection

// collectSerial enters the declarations of a serial clause into r and
// descends into every nested unit to build the range tree.
func (c *checker) collectSerial(r *scope.Range, serial []ast.Phrase) {
	for _, ph := range serial {
		c.collectPhrase(r, ph)
	}
}

func (c *checker) collectPhrase(r *scope.Range, ph ast.Phrase) {
	switch d := ph.(type) {
	case *ast.ModeDeclaration:
		tag, existing := r.Enter(scope.Indicant, d.Name, d.NamePos, d)
		if existing != nil {
			c.errorf(d.NamePos, "mode %s declared twice in this range", d.Name)
			return
		}
		tag.SetMode(c.graph.NewIndicant(d.Name, d))
		c.modeDecls = append(c.modeDecls, pendingMode{tag: tag, decl: d, r: r})
		c.collectDeclarer(r, d.Declarer)

	case *ast.PriorityDeclaration:
		tag, existing := r.Enter(scope.Priority, d.Op, d.OpPos, d)
		if existing != nil {
			c.errorf(d.OpPos, "priority of %s declared twice in this range", d.Op)
			return
		}
		tag.SetPriority(d.Priority)

	case *ast.IdentityDeclaration:
		tag, existing := r.Enter(scope.Identifier, d.Name.Name, d.Name.NamePos, d)
		if existing != nil {
			c.errorf(d.Name.NamePos, "%s declared twice in this range", d.Name.Name)
		} else {
			c.identDecls = append(c.identDecls, pendingIdent{tag: tag, declarer: d.Declarer, r: r})
		}
		c.collectDeclarer(r, d.Declarer)
		c.collectUnit(r, d.Source)

	case *ast.VariableDeclaration:
		for _, def := range d.Vars {
			tag, existing := r.Enter(scope.Identifier, def.Name.Name, def.Name.NamePos, d)
			if existing != nil {
				c.errorf(def.Name.NamePos, "%s declared twice in this range", def.Name.Name)
				continue
			}
			c.varDecls = append(c.varDecls, pendingVar{tag: tag, declarer: d.Declarer, r: r})
		}
		c.collectDeclarer(r, d.Declarer)
		for _, def := range d.Vars {
			if def.Init != nil {
				c.collectUnit(r, def.Init)
			}
		}

	case *ast.OperatorDeclaration:
		tag, _ := r.Enter(scope.Operator, d.Op, d.SymPos, d)
		c.opDecls = append(c.opDecls, pendingOp{tag: tag, decl: d, r: r})
		c.collectUnit(r, d.Routine)

	default:
		c.collectUnit(r, ph.(ast.Unit))
	}
}

// collectDeclarer descends into the bound units of actual row
// declarers, which may contain arbitrary units.
func (c *checker) collectDeclarer(r *scope.Range, d ast.Declarer) {
	ast.Inspect(d, func(n ast.Node) bool {
		if row, ok := n.(*ast.RowDeclarer); ok {
			for _, b := range row.Bounds {
				if b.Lower != nil {
					c.collectUnit(r, b.Lower)
				}
				if b.Upper != nil {
					c.collectUnit(r, b.Upper)
				}
			}
			c.collectDeclarer(r, row.X)
			return false
		}

		return true
	})
}

func (c *checker) collectUnit(r *scope.Range, u ast.Unit) {
	switch u := u.(type) {
	case *ast.BadUnit, *ast.Denotation, *ast.Identifier, *ast.Skip, *ast.Nihil:
		// No substructure.

	case *ast.Formula:
		if u.Left != nil {
			c.collectUnit(r, u.Left)
		}
		c.collectUnit(r, u.Right)

	case *ast.Assignation:
		c.collectUnit(r, u.Dest)
		c.collectUnit(r, u.Source)

	case *ast.IdentityRelation:
		c.collectUnit(r, u.Left)
		c.collectUnit(r, u.Right)

	case *ast.Cast:
		c.collectDeclarer(r, u.Declarer)
		c.collectUnit(r, u.X)

	case *ast.ClosedClause:
		inner := scope.NewRange(r, u.Pos(), u.End(), "closed clause")
		c.ranges[u] = inner
		c.collectSerial(inner, u.Serial)

	case *ast.CollateralClause:
		for _, x := range u.Units {
			c.collectUnit(r, x)
		}

	case *ast.ConditionalClause:
		inner := scope.NewRange(r, u.Pos(), u.End(), "conditional clause")
		c.ranges[u] = inner
		c.collectSerial(inner, u.Condition)
		c.collectSerial(inner, u.Then)
		c.collectSerial(inner, u.Else)

	case *ast.CaseClause:
		inner := scope.NewRange(r, u.Pos(), u.End(), "case clause")
		c.ranges[u] = inner
		c.collectSerial(inner, u.Enquiry)
		for _, alt := range u.Alternatives {
			c.collectUnit(inner, alt)
		}
		c.collectSerial(inner, u.Out)

	case *ast.ConformityClause:
		inner := scope.NewRange(r, u.Pos(), u.End(), "conformity clause")
		c.ranges[u] = inner
		c.collectSerial(inner, u.Enquiry)
		for _, alt := range u.Alternatives {
			altRange := scope.NewRange(inner, alt.Pos(), alt.End(), "conformity alternative")
			c.ranges[alt] = altRange
			if alt.Name != nil {
				tag, _ := altRange.Enter(scope.Identifier, alt.Name.Name, alt.Name.NamePos, alt)
				c.paramDecls = append(c.paramDecls, pendingParam{tag: tag, declarer: alt.Declarer, r: inner})
			}
			c.collectDeclarer(inner, alt.Declarer)
			c.collectUnit(altRange, alt.X)
		}
		c.collectSerial(inner, u.Out)

	case *ast.LoopClause:
		inner := scope.NewRange(r, u.Pos(), u.End(), "loop clause")
		c.ranges[u] = inner
		if u.For != nil {
			tag, _ := inner.Enter(scope.Identifier, u.For.Name, u.For.NamePos, u)
			tag.SetMode(c.graph.Int)
			c.info.Uses[u.For] = tag
		}
		if u.From != nil {
			c.collectUnit(inner, u.From)
		}
		if u.By != nil {
			c.collectUnit(inner, u.By)
		}
		if u.To != nil {
			c.collectUnit(inner, u.To)
		}
		c.collectSerial(inner, u.While)
		c.collectSerial(inner, u.Do)

	case *ast.Call:
		c.collectUnit(r, u.Fun)
		for _, arg := range u.Arguments {
			c.collectUnit(r, arg)
		}

	case *ast.Slice:
		c.collectUnit(r, u.Array)
		for _, s := range u.Subscripts {
			switch s := s.(type) {
			case *ast.UnitSubscript:
				c.collectUnit(r, s.X)
			case *ast.Trimmer:
				if s.Lower != nil {
					c.collectUnit(r, s.Lower)
				}
				if s.Upper != nil {
					c.collectUnit(r, s.Upper)
				}
				if s.At != nil {
					c.collectUnit(r, s.At)
				}
			}
		}

	case *ast.Selection:
		c.collectUnit(r, u.X)

	case *ast.RoutineText:
		inner := scope.NewRange(r, u.Pos(), u.End(), "routine text")
		c.ranges[u] = inner
		for _, param := range u.Parameters {
			tag, existing := inner.Enter(scope.Identifier, param.Name.Name, param.Name.NamePos, u)
			if existing != nil {
				c.errorf(param.Name.NamePos, "parameter %s declared twice", param.Name.Name)
				continue
			}
			c.paramDecls = append(c.paramDecls, pendingParam{tag: tag, declarer: param.Declarer, r: r})
			c.collectDeclarer(r, param.Declarer)
		}
		c.collectDeclarer(r, u.Result)
		c.collectUnit(inner, u.Body)

	case *ast.Coercion:
		panic("check: coercion node in unchecked tree")

	default:
		panic("check: unexpected unit in collect phase")
	}
}

// ----------------------------------------------------------------------------
// Phases 2 and 3: declaration resolution

func (c *checker) defineIndicants() {
	for _, pm := range c.modeDecls {
		def := c.modeFromDeclarer(pm.r, pm.decl.Declarer)
		c.graph.Define(pm.tag.Mode(), def)
	}

	for _, pm := range c.modeDecls {
		indicant := pm.tag.Mode()
		if !c.graph.WellFormed(indicant) {
			c.errorf(pm.decl.NamePos, "mode %s is ill-formed: no indirection breaks its recursion", pm.decl.Name)
			c.graph.Invalidate(indicant)
		}
	}
}

func (c *checker) resolveTags() {
	for _, pi := range c.identDecls {
		pi.tag.SetMode(c.modeFromDeclarer(pi.r, pi.declarer))
	}

	for _, pv := range c.varDecls {
		m := c.modeFromDeclarer(pv.r, pv.declarer)
		if m.IsErroneous() {
			pv.tag.SetMode(m)
			continue
		}
		// A variable declaration declares a name referring to the
		// generated value.
		pv.tag.SetMode(c.graph.Intern(mode.Ref, 0, pv.tag.Node(), m, nil))
	}

	for _, po := range c.opDecls {
		po.tag.SetMode(c.routineMode(po.r, po.decl.Routine))
	}

	for _, pp := range c.paramDecls {
		pp.tag.SetMode(c.modeFromDeclarer(pp.r, pp.declarer))
	}
}

// routineMode returns the PROC mode a routine text denotes. Parameter
// names are not part of the mode.
func (c *checker) routineMode(r *scope.Range, rt *ast.RoutineText) *mode.Mode {
	var pack []mode.Field
	for _, param := range rt.Parameters {
		pack = append(pack, mode.Field{
			Mode: c.modeFromDeclarer(r, param.Declarer),
			Node: param.Name,
		})
	}
	result := c.modeFromDeclarer(r, rt.Result)

	return c.graph.Intern(mode.Proc, len(pack), rt, result, pack)
}

// modeFromDeclarer resolves a declarer to its mode. Problems are
// diagnosed against the declarer and yield the error sentinel.
func (c *checker) modeFromDeclarer(r *scope.Range, d ast.Declarer) *mode.Mode {
	g := c.graph

	switch d := d.(type) {
	case *ast.VoidDeclarer:
		return g.Void

	case *ast.SimpleDeclarer:
		if m := g.StandardOf(d.Name, d.Longs); m != nil {
			return m
		}
		if d.Longs > 0 {
			c.errorf(d.NamePos, "mode LONG %s does not exist", d.Name)
			return g.Error
		}
		if tag := r.Find(scope.Indicant, d.Name); tag != nil {
			return tag.Mode()
		}
		c.errorf(d.NamePos, "undeclared mode %s", d.Name)
		return g.Error

	case *ast.RefDeclarer:
		sub := c.modeFromDeclarer(r, d.X)
		if sub.IsErroneous() {
			return g.Error
		}
		return g.Intern(mode.Ref, 0, d, sub, nil)

	case *ast.FlexDeclarer:
		sub := c.modeFromDeclarer(r, d.X)
		if sub.IsErroneous() {
			return g.Error
		}
		if g.Resolve(sub).Kind() != mode.Row && g.Resolve(sub).Kind() != mode.Indicant {
			c.errorf(d.FlexPos, "FLEX requires a row mode, not %s", sub)
			return g.Error
		}
		return g.Intern(mode.Flex, 0, d, sub, nil)

	case *ast.RowDeclarer:
		sub := c.modeFromDeclarer(r, d.X)
		if sub.IsErroneous() {
			return g.Error
		}
		return g.Intern(mode.Row, d.Dim, d, sub, nil)

	case *ast.StructDeclarer:
		var pack []mode.Field
		seen := make(map[string]bool)
		for _, group := range d.Fields {
			fm := c.modeFromDeclarer(r, group.Declarer)
			for _, name := range group.Names {
				if seen[name.Name] {
					c.errorf(name.NamePos, "field %s declared twice in this structure", name.Name)
					continue
				}
				seen[name.Name] = true
				pack = append(pack, mode.Field{Mode: fm, Name: name.Name, Node: name})
			}
		}
		return g.Intern(mode.Struct, len(pack), d, nil, pack)

	case *ast.UnionDeclarer:
		var pack []mode.Field
		for _, member := range d.Members {
			pack = append(pack, mode.Field{Mode: c.modeFromDeclarer(r, member), Node: member})
		}
		c.checkUnionMembers(d, pack)
		return g.Intern(mode.Union, len(pack), d, nil, pack)

	case *ast.ProcDeclarer:
		var pack []mode.Field
		for _, param := range d.Parameters {
			pack = append(pack, mode.Field{Mode: c.modeFromDeclarer(r, param), Node: param})
		}
		result := c.modeFromDeclarer(r, d.Result)
		return g.Intern(mode.Proc, len(pack), d, result, pack)
	}

	panic("check: unexpected declarer")
}

// checkUnionMembers diagnoses firmly related member pairs: members
// where one coerces firmly to the other would make conformity
// dispatch ambiguous.
func (c *checker) checkUnionMembers(d *ast.UnionDeclarer, pack []mode.Field) {
	for i, a := range pack {
		for _, b := range pack[i+1:] {
			if a.Mode.IsErroneous() || b.Mode.IsErroneous() {
				continue
			}
			if c.graph.Equivalent(a.Mode, b.Mode) {
				continue // contracted later, not an error
			}
			if c.firmlyRelated(a.Mode, b.Mode) {
				c.errorf(d.UnionPos, "union members %s and %s are firmly related", a.Mode, b.Mode)
			}
		}
	}
}
