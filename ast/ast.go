// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package ast declares the types used to represent syntax trees for
// Algol 68 programs.
//
// The grammar distinguishes phrases (the items of a serial clause),
// units (phrases that yield a value), declarers (the syntax of modes),
// and declarations. Each is a sealed interface; the checker relies on
// exhaustive type switches over the concrete node types.
package ast

import (
	"strings"

	"algol68.dev/a68/token"
)

// All node types implement the Node interface.
type Node interface {
	Pos() token.Pos // position of first character belonging to the node
	End() token.Pos // position of first character immediately after the node
}

// A Phrase is an element of a serial clause: a unit or a declaration.
type Phrase interface {
	Node
	String() string // a short description of the construct, for diagnostics
	phraseNode()
}

// A Unit is a phrase that yields a value.
type Unit interface {
	Phrase
	unitNode()
}

// A Declarer is the syntactic form of a mode.
type Declarer interface {
	Node
	String() string
	declarerNode()
}

// A Declaration introduces indicants, identifiers, operators, or
// priorities into the enclosing range.
type Declaration interface {
	Phrase
	declNode()
}

// ----------------------------------------------------------------------------
// Units

type (
	// A BadUnit node is a placeholder for units containing syntax
	// errors for which no correct node could be created.
	BadUnit struct {
		From, To token.Pos
	}

	// A Denotation node represents an INT, REAL, BITS, CHAR, or
	// string denotation, or one of the bold denotations TRUE, FALSE,
	// and EMPTY (Kind BoldWord).
	Denotation struct {
		ValuePos token.Pos
		Kind     token.Token // Integer, Real, Bits, String, Character, or BoldWord
		Value    string
	}

	// An Identifier node represents an applied occurrence of an
	// identifier.
	Identifier struct {
		NamePos token.Pos
		Name    string
	}

	// A Formula node represents a monadic or dyadic formula.
	// Left is nil for monadic formulas.
	Formula struct {
		Left  Unit
		OpPos token.Pos
		Op    string
		Right Unit
	}

	// An Assignation node represents "destination := source".
	Assignation struct {
		Dest      Unit
		BecomesAt token.Pos
		Source    Unit
	}

	// An IdentityRelation node represents "a :=: b" or "a :/=: b".
	IdentityRelation struct {
		Left    Unit
		RelPos  token.Pos
		Negated bool
		Right   Unit
	}

	// A Cast node represents "DECLARER (unit)".
	Cast struct {
		Declarer   Declarer
		ParenOpen  token.Pos
		X          Unit
		ParenClose token.Pos
	}

	// A ClosedClause node represents "BEGIN serial END" or
	// "( serial )".
	ClosedClause struct {
		Begin  token.Pos
		Serial []Phrase
		Close  token.Pos
	}

	// A CollateralClause node represents "( u1, u2, ... )", a row or
	// structure display.
	CollateralClause struct {
		Begin token.Pos
		Units []Unit
		Close token.Pos
	}

	// A ConditionalClause node represents
	// "IF enquiry THEN serial [ ELIF ... | ELSE serial ] FI".
	// An ELIF part is represented as an Else holding a single nested
	// ConditionalClause.
	ConditionalClause struct {
		If        token.Pos
		Condition []Phrase
		Then      []Phrase
		Else      []Phrase // or nil
		Fi        token.Pos
	}

	// A CaseClause node represents
	// "CASE enquiry IN u1, u2, ... [ OUT serial ] ESAC".
	CaseClause struct {
		Case         token.Pos
		Enquiry      []Phrase
		Alternatives []Unit
		Out          []Phrase // or nil
		Esac         token.Pos
	}

	// A ConformityClause node represents the united-case clause
	// "CASE enquiry IN (DECLARER name): unit, ... [ OUT serial ] ESAC".
	ConformityClause struct {
		Case         token.Pos
		Enquiry      []Phrase
		Alternatives []*ConformityAlternative
		Out          []Phrase // or nil
		Esac         token.Pos
	}

	// A ConformityAlternative is one "(DECLARER name): unit" arm of a
	// conformity clause. Name may be nil when the arm only tests the
	// mode.
	ConformityAlternative struct {
		ParenOpen token.Pos
		Declarer  Declarer
		Name      *Identifier // or nil
		Colon     token.Pos
		X         Unit
	}

	// A LoopClause node represents
	// "[ FOR id ] [ FROM u ] [ BY u ] [ TO u ] [ WHILE enquiry ] DO serial OD".
	LoopClause struct {
		LoopPos token.Pos
		For     *Identifier // or nil
		From    Unit        // or nil
		By      Unit        // or nil
		To      Unit        // or nil
		While   []Phrase    // or nil
		Do      []Phrase
		Od      token.Pos
	}

	// A Call node represents "fun (arg1, arg2, ...)".
	Call struct {
		Fun        Unit
		ParenOpen  token.Pos
		Arguments  []Unit
		ParenClose token.Pos
	}

	// A Slice node represents "array [subscript, ...]", where each
	// subscript is a unit or a trimmer.
	Slice struct {
		Array        Unit
		BracketOpen  token.Pos
		Subscripts   []Subscript
		BracketClose token.Pos
	}

	// A Selection node represents "field OF secondary".
	Selection struct {
		Field *Identifier
		OfPos token.Pos
		X     Unit
	}

	// A RoutineText node represents
	// "( DECLARER name, ... ) DECLARER : unit" or "DECLARER : unit".
	RoutineText struct {
		ParenOpen  token.Pos // NoPos if there are no parameters
		Parameters []*Parameter
		Result     Declarer
		Colon      token.Pos
		Body       Unit
	}

	// A Skip node represents "SKIP".
	Skip struct {
		SkipPos token.Pos
	}

	// A Nihil node represents "NIL".
	Nihil struct {
		NilPos token.Pos
	}

	// A Coercion node wraps a unit with one implicit conversion.
	// Coercions are never produced by the parser; the coercion
	// inserter wraps units so that the uncoerced subtree remains
	// inspectable.
	Coercion struct {
		Kind CoercionKind
		X    Unit
	}
)

// A Parameter is one formal parameter of a routine text.
type Parameter struct {
	Declarer Declarer
	Name     *Identifier
}

func (p *Parameter) Pos() token.Pos { return p.Declarer.Pos() }
func (p *Parameter) End() token.Pos { return p.Name.End() }

// A Subscript is an element of a slice's subscript list: a Unit
// (a single index) or a *Trimmer.
type Subscript interface {
	Node
	subscriptNode()
}

// A Trimmer node represents "[lower : upper]" within a slice; either
// bound may be absent. At, if present, revises the lower bound of the
// resulting row ("[i : j @ 0]").
type Trimmer struct {
	Lower    Unit      // or nil
	ColonPos token.Pos
	Upper    Unit      // or nil
	AtPos    token.Pos // NoPos if there is no revised bound
	At       Unit      // or nil
}

func (t *Trimmer) Pos() token.Pos {
	if t.Lower != nil {
		return t.Lower.Pos()
	}
	return t.ColonPos
}

func (t *Trimmer) End() token.Pos {
	if t.At != nil {
		return t.At.End()
	}
	if t.Upper != nil {
		return t.Upper.End()
	}
	return t.ColonPos + 1
}

func (*Trimmer) subscriptNode() {}

// A UnitSubscript adapts a Unit into the Subscript interface.
type UnitSubscript struct {
	X Unit
}

func (s *UnitSubscript) Pos() token.Pos { return s.X.Pos() }
func (s *UnitSubscript) End() token.Pos { return s.X.End() }
func (*UnitSubscript) subscriptNode()   {}

// CoercionKind identifies one implicit conversion.
type CoercionKind int

const (
	Deproceduring CoercionKind = iota
	Dereferencing
	Uniting
	Widening
	Rowing
	Voiding
)

var coercionNames = [...]string{
	Deproceduring: "deproceduring",
	Dereferencing: "dereferencing",
	Uniting:       "uniting",
	Widening:      "widening",
	Rowing:        "rowing",
	Voiding:       "voiding",
}

func (k CoercionKind) String() string { return coercionNames[k] }

// Pos and End implementations for units.

func (x *BadUnit) Pos() token.Pos    { return x.From }
func (x *Denotation) Pos() token.Pos { return x.ValuePos }
func (x *Identifier) Pos() token.Pos { return x.NamePos }
func (x *Formula) Pos() token.Pos {
	if x.Left != nil {
		return x.Left.Pos()
	}
	return x.OpPos
}
func (x *Assignation) Pos() token.Pos       { return x.Dest.Pos() }
func (x *IdentityRelation) Pos() token.Pos  { return x.Left.Pos() }
func (x *Cast) Pos() token.Pos              { return x.Declarer.Pos() }
func (x *ClosedClause) Pos() token.Pos      { return x.Begin }
func (x *CollateralClause) Pos() token.Pos  { return x.Begin }
func (x *ConditionalClause) Pos() token.Pos { return x.If }
func (x *CaseClause) Pos() token.Pos        { return x.Case }
func (x *ConformityClause) Pos() token.Pos  { return x.Case }
func (x *LoopClause) Pos() token.Pos        { return x.LoopPos }
func (x *Call) Pos() token.Pos              { return x.Fun.Pos() }
func (x *Slice) Pos() token.Pos             { return x.Array.Pos() }
func (x *Selection) Pos() token.Pos         { return x.Field.Pos() }
func (x *RoutineText) Pos() token.Pos {
	if x.ParenOpen != token.NoPos {
		return x.ParenOpen
	}
	return x.Result.Pos()
}
func (x *Skip) Pos() token.Pos     { return x.SkipPos }
func (x *Nihil) Pos() token.Pos    { return x.NilPos }
func (x *Coercion) Pos() token.Pos { return x.X.Pos() }

func (x *BadUnit) End() token.Pos           { return x.To }
func (x *Denotation) End() token.Pos        { return token.Pos(int(x.ValuePos) + len(x.Value)) }
func (x *Identifier) End() token.Pos        { return token.Pos(int(x.NamePos) + len(x.Name)) }
func (x *Formula) End() token.Pos           { return x.Right.End() }
func (x *Assignation) End() token.Pos       { return x.Source.End() }
func (x *IdentityRelation) End() token.Pos  { return x.Right.End() }
func (x *Cast) End() token.Pos              { return x.ParenClose + 1 }
func (x *ClosedClause) End() token.Pos      { return x.Close + 1 }
func (x *CollateralClause) End() token.Pos  { return x.Close + 1 }
func (x *ConditionalClause) End() token.Pos { return x.Fi + 1 }
func (x *CaseClause) End() token.Pos        { return x.Esac + 1 }
func (x *ConformityClause) End() token.Pos  { return x.Esac + 1 }
func (x *LoopClause) End() token.Pos        { return x.Od + 1 }
func (x *Call) End() token.Pos              { return x.ParenClose + 1 }
func (x *Slice) End() token.Pos             { return x.BracketClose + 1 }
func (x *Selection) End() token.Pos         { return x.X.End() }
func (x *RoutineText) End() token.Pos       { return x.Body.End() }
func (x *Skip) End() token.Pos              { return x.SkipPos + 4 }
func (x *Nihil) End() token.Pos             { return x.NilPos + 3 }
func (x *Coercion) End() token.Pos          { return x.X.End() }

func (a *ConformityAlternative) Pos() token.Pos { return a.ParenOpen }
func (a *ConformityAlternative) End() token.Pos { return a.X.End() }

func (x *BadUnit) String() string           { return "bad unit" }
func (x *Denotation) String() string        { return x.Kind.String() }
func (x *Identifier) String() string        { return "identifier" }
func (x *Formula) String() string           { return "formula" }
func (x *Assignation) String() string       { return "assignation" }
func (x *IdentityRelation) String() string  { return "identity relation" }
func (x *Cast) String() string              { return "cast" }
func (x *ClosedClause) String() string      { return "closed clause" }
func (x *CollateralClause) String() string  { return "collateral clause" }
func (x *ConditionalClause) String() string { return "conditional clause" }
func (x *CaseClause) String() string        { return "case clause" }
func (x *ConformityClause) String() string  { return "conformity clause" }
func (x *LoopClause) String() string        { return "loop clause" }
func (x *Call) String() string              { return "call" }
func (x *Slice) String() string             { return "slice" }
func (x *Selection) String() string         { return "selection" }
func (x *RoutineText) String() string       { return "routine text" }
func (x *Skip) String() string              { return "skip" }
func (x *Nihil) String() string             { return "nil" }
func (x *Coercion) String() string          { return x.Kind.String() + " coercion" }

func (*BadUnit) phraseNode()           {}
func (*Denotation) phraseNode()        {}
func (*Identifier) phraseNode()        {}
func (*Formula) phraseNode()           {}
func (*Assignation) phraseNode()       {}
func (*IdentityRelation) phraseNode()  {}
func (*Cast) phraseNode()              {}
func (*ClosedClause) phraseNode()      {}
func (*CollateralClause) phraseNode()  {}
func (*ConditionalClause) phraseNode() {}
func (*CaseClause) phraseNode()        {}
func (*ConformityClause) phraseNode()  {}
func (*LoopClause) phraseNode()        {}
func (*Call) phraseNode()              {}
func (*Slice) phraseNode()             {}
func (*Selection) phraseNode()         {}
func (*RoutineText) phraseNode()       {}
func (*Skip) phraseNode()              {}
func (*Nihil) phraseNode()             {}
func (*Coercion) phraseNode()          {}

func (*BadUnit) unitNode()           {}
func (*Denotation) unitNode()        {}
func (*Identifier) unitNode()        {}
func (*Formula) unitNode()           {}
func (*Assignation) unitNode()       {}
func (*IdentityRelation) unitNode()  {}
func (*Cast) unitNode()              {}
func (*ClosedClause) unitNode()      {}
func (*CollateralClause) unitNode()  {}
func (*ConditionalClause) unitNode() {}
func (*CaseClause) unitNode()        {}
func (*ConformityClause) unitNode()  {}
func (*LoopClause) unitNode()        {}
func (*Call) unitNode()              {}
func (*Slice) unitNode()             {}
func (*Selection) unitNode()         {}
func (*RoutineText) unitNode()       {}
func (*Skip) unitNode()              {}
func (*Nihil) unitNode()             {}
func (*Coercion) unitNode()          {}

// ----------------------------------------------------------------------------
// Declarers

type (
	// A SimpleDeclarer node represents a primitive mode or an
	// indicant, with any number of preceding LONGs.
	SimpleDeclarer struct {
		NamePos token.Pos
		Longs   int // number of LONG prefixes
		Name    string
	}

	// A RefDeclarer node represents "REF DECLARER".
	RefDeclarer struct {
		RefPos token.Pos
		X      Declarer
	}

	// A FlexDeclarer node represents "FLEX DECLARER".
	FlexDeclarer struct {
		FlexPos token.Pos
		X       Declarer
	}

	// A RowDeclarer node represents "[ bounds ] DECLARER". Dim is the
	// number of comma-separated bound pairs. Bounds, if present, carry
	// the actual bound units of a local generator; the mode system
	// only uses Dim.
	RowDeclarer struct {
		BracketOpen token.Pos
		Dim         int
		Bounds      []*BoundPair // or nil
		X           Declarer
	}

	// A StructDeclarer node represents "STRUCT (f1, f2, ...)".
	StructDeclarer struct {
		StructPos  token.Pos
		Fields     []*FieldGroup
		ParenClose token.Pos
	}

	// A UnionDeclarer node represents "UNION (d1, d2, ...)".
	UnionDeclarer struct {
		UnionPos   token.Pos
		Members    []Declarer
		ParenClose token.Pos
	}

	// A ProcDeclarer node represents "PROC (d1, ...) DECLARER" or
	// "PROC DECLARER".
	ProcDeclarer struct {
		ProcPos    token.Pos
		Parameters []Declarer
		Result     Declarer
	}

	// A VoidDeclarer node represents "VOID".
	VoidDeclarer struct {
		VoidPos token.Pos
	}
)

// A FieldGroup is one "DECLARER name1, name2" group of a structure
// declarer.
type FieldGroup struct {
	Declarer Declarer
	Names    []*Identifier
}

func (f *FieldGroup) Pos() token.Pos { return f.Declarer.Pos() }
func (f *FieldGroup) End() token.Pos { return f.Names[len(f.Names)-1].End() }

// A BoundPair is one "lower : upper" or "upper" bound of an actual
// row declarer.
type BoundPair struct {
	Lower Unit // or nil
	Upper Unit // or nil
}

func (d *SimpleDeclarer) Pos() token.Pos { return d.NamePos }
func (d *RefDeclarer) Pos() token.Pos    { return d.RefPos }
func (d *FlexDeclarer) Pos() token.Pos   { return d.FlexPos }
func (d *RowDeclarer) Pos() token.Pos    { return d.BracketOpen }
func (d *StructDeclarer) Pos() token.Pos { return d.StructPos }
func (d *UnionDeclarer) Pos() token.Pos  { return d.UnionPos }
func (d *ProcDeclarer) Pos() token.Pos   { return d.ProcPos }
func (d *VoidDeclarer) Pos() token.Pos   { return d.VoidPos }

func (d *SimpleDeclarer) End() token.Pos { return token.Pos(int(d.NamePos) + len(d.Name)) }
func (d *RefDeclarer) End() token.Pos    { return d.X.End() }
func (d *FlexDeclarer) End() token.Pos   { return d.X.End() }
func (d *RowDeclarer) End() token.Pos    { return d.X.End() }
func (d *StructDeclarer) End() token.Pos { return d.ParenClose + 1 }
func (d *UnionDeclarer) End() token.Pos  { return d.ParenClose + 1 }
func (d *ProcDeclarer) End() token.Pos   { return d.Result.End() }
func (d *VoidDeclarer) End() token.Pos   { return d.VoidPos + 4 }

func (d *SimpleDeclarer) String() string {
	return strings.Repeat("LONG ", d.Longs) + d.Name
}
func (d *RefDeclarer) String() string  { return "REF " + d.X.String() }
func (d *FlexDeclarer) String() string { return "FLEX " + d.X.String() }
func (d *RowDeclarer) String() string {
	return "[" + strings.Repeat(",", d.Dim-1) + "] " + d.X.String()
}
func (d *StructDeclarer) String() string {
	var b strings.Builder
	b.WriteString("STRUCT (")
	for i, f := range d.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Declarer.String())
		for _, name := range f.Names {
			b.WriteByte(' ')
			b.WriteString(name.Name)
		}
	}
	b.WriteByte(')')
	return b.String()
}
func (d *UnionDeclarer) String() string {
	var b strings.Builder
	b.WriteString("UNION (")
	for i, m := range d.Members {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(m.String())
	}
	b.WriteByte(')')
	return b.String()
}
func (d *ProcDeclarer) String() string {
	var b strings.Builder
	b.WriteString("PROC ")
	if len(d.Parameters) > 0 {
		b.WriteByte('(')
		for i, p := range d.Parameters {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.String())
		}
		b.WriteString(") ")
	}
	b.WriteString(d.Result.String())
	return b.String()
}
func (d *VoidDeclarer) String() string { return "VOID" }

func (*SimpleDeclarer) declarerNode() {}
func (*RefDeclarer) declarerNode()    {}
func (*FlexDeclarer) declarerNode()   {}
func (*RowDeclarer) declarerNode()    {}
func (*StructDeclarer) declarerNode() {}
func (*UnionDeclarer) declarerNode()  {}
func (*ProcDeclarer) declarerNode()   {}
func (*VoidDeclarer) declarerNode()   {}

// ----------------------------------------------------------------------------
// Declarations

type (
	// A ModeDeclaration node represents "MODE NAME = DECLARER".
	ModeDeclaration struct {
		ModePos  token.Pos
		NamePos  token.Pos
		Name     string
		EqPos    token.Pos
		Declarer Declarer
	}

	// A PriorityDeclaration node represents "PRIO op = n".
	PriorityDeclaration struct {
		PrioPos  token.Pos
		OpPos    token.Pos
		Op       string
		EqPos    token.Pos
		Priority int
	}

	// An IdentityDeclaration node represents
	// "DECLARER name = unit". Procedure declarations are identity
	// declarations whose source is a routine text.
	IdentityDeclaration struct {
		Declarer Declarer
		Name     *Identifier
		EqPos    token.Pos
		Source   Unit
	}

	// A VariableDeclaration node represents
	// "[LOC|HEAP] DECLARER name [:= unit], ...".
	VariableDeclaration struct {
		DeclPos  token.Pos
		Heap     bool
		Declarer Declarer
		Vars     []*VariableDefinition
	}

	// An OperatorDeclaration node represents
	// "OP op = (params) result: body" (the source must be a routine
	// text).
	OperatorDeclaration struct {
		OpPos   token.Pos
		SymPos  token.Pos
		Op      string
		EqPos   token.Pos
		Routine *RoutineText
	}
)

// A VariableDefinition is one "name [:= unit]" of a variable
// declaration.
type VariableDefinition struct {
	Name *Identifier
	Init Unit // or nil
}

func (d *ModeDeclaration) Pos() token.Pos     { return d.ModePos }
func (d *PriorityDeclaration) Pos() token.Pos { return d.PrioPos }
func (d *IdentityDeclaration) Pos() token.Pos { return d.Declarer.Pos() }
func (d *VariableDeclaration) Pos() token.Pos { return d.DeclPos }
func (d *OperatorDeclaration) Pos() token.Pos { return d.OpPos }

func (d *ModeDeclaration) End() token.Pos     { return d.Declarer.End() }
func (d *PriorityDeclaration) End() token.Pos { return d.EqPos + 1 }
func (d *IdentityDeclaration) End() token.Pos { return d.Source.End() }
func (d *VariableDeclaration) End() token.Pos {
	last := d.Vars[len(d.Vars)-1]
	if last.Init != nil {
		return last.Init.End()
	}
	return last.Name.End()
}
func (d *OperatorDeclaration) End() token.Pos { return d.Routine.End() }

func (d *ModeDeclaration) String() string     { return "mode declaration" }
func (d *PriorityDeclaration) String() string { return "priority declaration" }
func (d *IdentityDeclaration) String() string { return "identity declaration" }
func (d *VariableDeclaration) String() string { return "variable declaration" }
func (d *OperatorDeclaration) String() string { return "operator declaration" }

func (*ModeDeclaration) phraseNode()     {}
func (*PriorityDeclaration) phraseNode() {}
func (*IdentityDeclaration) phraseNode() {}
func (*VariableDeclaration) phraseNode() {}
func (*OperatorDeclaration) phraseNode() {}

func (*ModeDeclaration) declNode()     {}
func (*PriorityDeclaration) declNode() {}
func (*IdentityDeclaration) declNode() {}
func (*VariableDeclaration) declNode() {}
func (*OperatorDeclaration) declNode() {}

// ----------------------------------------------------------------------------
// Programs

// A Program node represents one particular-program: the serial clause
// of a source file.
type Program struct {
	Filename string
	Serial   []Phrase
}

func (p *Program) Pos() token.Pos {
	if len(p.Serial) > 0 {
		return p.Serial[0].Pos()
	}
	return token.NoPos
}

func (p *Program) End() token.Pos {
	if n := len(p.Serial); n > 0 {
		return p.Serial[n-1].End()
	}
	return token.NoPos
}
