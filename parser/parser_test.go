// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package parser

import (
	"fmt"
	"strings"
	"testing"

	"algol68.dev/a68/ast"
	"algol68.dev/a68/token"
)

// dump renders a syntax tree as a compact s-expression, which the
// tests below compare against. Positions are not rendered.
func dump(n ast.Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n ast.Node) {
	switch n := n.(type) {
	case nil:
		b.WriteString("_")

	case *ast.Program:
		writeSerial(b, n.Serial)

	case *ast.Denotation:
		if n.Kind == token.String || n.Kind == token.Character {
			fmt.Fprintf(b, "%q", n.Value)
		} else {
			b.WriteString(n.Value)
		}

	case *ast.Identifier:
		b.WriteString(n.Name)

	case *ast.Skip:
		b.WriteString("SKIP")

	case *ast.Nihil:
		b.WriteString("NIL")

	case *ast.Formula:
		fmt.Fprintf(b, "(%s", n.Op)
		if n.Left != nil {
			b.WriteByte(' ')
			writeNode(b, n.Left)
		}
		b.WriteByte(' ')
		writeNode(b, n.Right)
		b.WriteByte(')')

	case *ast.Assignation:
		writeList(b, ":=", n.Dest, n.Source)

	case *ast.IdentityRelation:
		rel := ":=:"
		if n.Negated {
			rel = ":/=:"
		}
		writeList(b, rel, n.Left, n.Right)

	case *ast.Cast:
		writeList(b, "cast", n.Declarer, n.X)

	case *ast.Call:
		b.WriteString("(call ")
		writeNode(b, n.Fun)
		for _, arg := range n.Arguments {
			b.WriteByte(' ')
			writeNode(b, arg)
		}
		b.WriteByte(')')

	case *ast.Slice:
		b.WriteString("(slice ")
		writeNode(b, n.Array)
		for _, sub := range n.Subscripts {
			b.WriteByte(' ')
			switch sub := sub.(type) {
			case *ast.UnitSubscript:
				writeNode(b, sub.X)
			case *ast.Trimmer:
				writeList(b, "trim", sub.Lower, sub.Upper, sub.At)
			}
		}
		b.WriteByte(')')

	case *ast.Selection:
		writeList(b, "of", n.Field, n.X)

	case *ast.ClosedClause:
		b.WriteString("(closed ")
		writeSerial(b, n.Serial)
		b.WriteByte(')')

	case *ast.CollateralClause:
		b.WriteString("(coll")
		for _, u := range n.Units {
			b.WriteByte(' ')
			writeNode(b, u)
		}
		b.WriteByte(')')

	case *ast.ConditionalClause:
		b.WriteString("(if ")
		writeSerial(b, n.Condition)
		b.WriteByte(' ')
		writeSerial(b, n.Then)
		b.WriteByte(' ')
		if n.Else == nil {
			b.WriteString("_")
		} else {
			writeSerial(b, n.Else)
		}
		b.WriteByte(')')

	case *ast.CaseClause:
		b.WriteString("(case ")
		writeSerial(b, n.Enquiry)
		for _, alt := range n.Alternatives {
			b.WriteByte(' ')
			writeNode(b, alt)
		}
		b.WriteByte(' ')
		if n.Out == nil {
			b.WriteString("_")
		} else {
			writeSerial(b, n.Out)
		}
		b.WriteByte(')')

	case *ast.ConformityClause:
		b.WriteString("(conf ")
		writeSerial(b, n.Enquiry)
		for _, alt := range n.Alternatives {
			b.WriteString(" (alt ")
			writeNode(b, alt.Declarer)
			b.WriteByte(' ')
			if alt.Name == nil {
				b.WriteString("_")
			} else {
				writeNode(b, alt.Name)
			}
			b.WriteByte(' ')
			writeNode(b, alt.X)
			b.WriteByte(')')
		}
		b.WriteByte(' ')
		if n.Out == nil {
			b.WriteString("_")
		} else {
			writeSerial(b, n.Out)
		}
		b.WriteByte(')')

	case *ast.LoopClause:
		b.WriteString("(loop ")
		writeNode(b, nilable(n.For))
		b.WriteByte(' ')
		writeNode(b, n.From)
		b.WriteByte(' ')
		writeNode(b, n.By)
		b.WriteByte(' ')
		writeNode(b, n.To)
		b.WriteByte(' ')
		if n.While == nil {
			b.WriteString("_")
		} else {
			writeSerial(b, n.While)
		}
		b.WriteByte(' ')
		writeSerial(b, n.Do)
		b.WriteByte(')')

	case *ast.RoutineText:
		b.WriteString("(routine (")
		for i, param := range n.Parameters {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeNode(b, param.Declarer)
			b.WriteByte(' ')
			writeNode(b, param.Name)
		}
		b.WriteString(") ")
		writeNode(b, n.Result)
		b.WriteByte(' ')
		writeNode(b, n.Body)
		b.WriteByte(')')

	case *ast.Coercion:
		fmt.Fprintf(b, "(coerce %v ", n.Kind)
		writeNode(b, n.X)
		b.WriteByte(')')

	case *ast.SimpleDeclarer:
		b.WriteString(strings.Repeat("LONG ", n.Longs))
		b.WriteString(n.Name)

	case *ast.VoidDeclarer:
		b.WriteString("VOID")

	case *ast.RefDeclarer:
		writeList(b, "ref", n.X)

	case *ast.FlexDeclarer:
		writeList(b, "flex", n.X)

	case *ast.RowDeclarer:
		fmt.Fprintf(b, "(row %d", n.Dim)
		for _, bound := range n.Bounds {
			b.WriteString(" (bound ")
			writeNode(b, bound.Lower)
			b.WriteByte(' ')
			writeNode(b, bound.Upper)
			b.WriteByte(')')
		}
		b.WriteByte(' ')
		writeNode(b, n.X)
		b.WriteByte(')')

	case *ast.StructDeclarer:
		b.WriteString("(struct")
		for _, group := range n.Fields {
			b.WriteString(" (")
			writeNode(b, group.Declarer)
			for _, name := range group.Names {
				b.WriteByte(' ')
				writeNode(b, name)
			}
			b.WriteByte(')')
		}
		b.WriteByte(')')

	case *ast.UnionDeclarer:
		b.WriteString("(union")
		for _, member := range n.Members {
			b.WriteByte(' ')
			writeNode(b, member)
		}
		b.WriteByte(')')

	case *ast.ProcDeclarer:
		b.WriteString("(proc (")
		for i, param := range n.Parameters {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeNode(b, param)
		}
		b.WriteString(") ")
		writeNode(b, n.Result)
		b.WriteByte(')')

	case *ast.ModeDeclaration:
		fmt.Fprintf(b, "(mode %s ", n.Name)
		writeNode(b, n.Declarer)
		b.WriteByte(')')

	case *ast.PriorityDeclaration:
		fmt.Fprintf(b, "(prio %s %d)", n.Op, n.Priority)

	case *ast.OperatorDeclaration:
		fmt.Fprintf(b, "(op %s ", n.Op)
		writeNode(b, n.Routine)
		b.WriteByte(')')

	case *ast.IdentityDeclaration:
		b.WriteString("(let ")
		writeNode(b, n.Declarer)
		b.WriteByte(' ')
		writeNode(b, n.Name)
		b.WriteByte(' ')
		writeNode(b, n.Source)
		b.WriteByte(')')

	case *ast.VariableDeclaration:
		b.WriteString("(var ")
		if n.Heap {
			b.WriteString("heap ")
		}
		writeNode(b, n.Declarer)
		for _, def := range n.Vars {
			b.WriteString(" (")
			writeNode(b, def.Name)
			if def.Init != nil {
				b.WriteByte(' ')
				writeNode(b, def.Init)
			}
			b.WriteByte(')')
		}
		b.WriteByte(')')

	case *ast.BadUnit:
		b.WriteString("(bad)")

	default:
		fmt.Fprintf(b, "(?%T)", n)
	}
}

func nilable(id *ast.Identifier) ast.Node {
	if id == nil {
		return nil
	}
	return id
}

func writeSerial(b *strings.Builder, serial []ast.Phrase) {
	if len(serial) == 1 {
		writeNode(b, serial[0])
		return
	}

	b.WriteString("(serial")
	for _, ph := range serial {
		b.WriteByte(' ')
		writeNode(b, ph)
	}
	b.WriteByte(')')
}

func writeList(b *strings.Builder, head string, parts ...ast.Node) {
	b.WriteString("(" + head)
	for _, part := range parts {
		b.WriteByte(' ')
		writeNode(b, part)
	}
	b.WriteByte(')')
}

func TestParseFile(t *testing.T) {
	tests := []struct {
		Name string
		Text string
		Want string
	}{
		{
			Name: "priority climbing",
			Text: "1 + 2 * 3",
			Want: "(+ 1 (* 2 3))",
		},
		{
			Name: "left association",
			Text: "1 + 2 - 3",
			Want: "(- (+ 1 2) 3)",
		},
		{
			Name: "equals as a dyadic operator",
			Text: "1 + 2 = 3",
			Want: "(= (+ 1 2) 3)",
		},
		{
			Name: "bold operators",
			Text: "a OVER b MOD c",
			Want: "(MOD (OVER a b) c)",
		},
		{
			Name: "monadic operators bind tightest",
			Text: "ABS - 1 + 2",
			Want: "(+ (ABS (- 1)) 2)",
		},
		{
			Name: "declared priority drives the parse",
			Text: "PRIO MAX = 9; 1 MAX 2 + 3",
			Want: "(prio MAX 9); (+ (MAX 1 2) 3)",
		},
		{
			Name: "assignation is right associative",
			Text: "a := b := 1",
			Want: "(:= a (:= b 1))",
		},
		{
			Name: "identity relations",
			Text: "a :=: b; a ISNT NIL",
			Want: "(:=: a b); (:/=: a NIL)",
		},
		{
			Name: "selection chain",
			Text: "re OF z + 1",
			Want: "(+ (of re z) 1)",
		},
		{
			Name: "call and slice postfixes",
			Text: "f(1, 2)[3]",
			Want: "(slice (call f 1 2) 3)",
		},
		{
			Name: "trimmer subscripts",
			Text: "a[1, 2:3 @ 0, :4]",
			Want: "(slice a 1 (trim 2 3 0) (trim _ 4 _))",
		},
		{
			Name: "cast",
			Text: "REAL (1)",
			Want: "(cast REAL 1)",
		},
		{
			Name: "mode declarations",
			Text: "MODE VEC = [] REAL, CPLX = STRUCT (REAL re, im); VEC v",
			Want: "(mode VEC (row 1 REAL)); (mode CPLX (struct (REAL re im))); (var VEC (v))",
		},
		{
			Name: "identity declaration",
			Text: "INT one = 1",
			Want: "(let INT one 1)",
		},
		{
			Name: "variable declarations",
			Text: "INT n := 5, m; HEAP REAL h",
			Want: "(var INT (n 5) (m)); (var heap REAL (h))",
		},
		{
			Name: "row declarer with bounds",
			Text: "[1:9, 3] INT a",
			Want: "(var (row 2 (bound 1 9) (bound _ 3) INT) (a))",
		},
		{
			Name: "procedure declaration",
			Text: "PROC twice = (INT n) INT: n + n",
			Want: "(let (proc (INT) INT) twice (routine (INT n) INT (+ n n)))",
		},
		{
			Name: "parameterless routine",
			Text: "PROC INT p = INT: 1",
			Want: "(let (proc () INT) p (routine () INT 1))",
		},
		{
			Name: "operator declaration",
			Text: "OP DOUBLE = (INT n) INT: n + n; DOUBLE 3",
			Want: "(op DOUBLE (routine (INT n) INT (+ n n))); (DOUBLE 3)",
		},
		{
			Name: "closed clause",
			Text: "BEGIN INT n; n := 1; n END",
			Want: "(closed (serial (var INT (n)) (:= n 1) n))",
		},
		{
			Name: "collateral clause",
			Text: "(1, 2, 3)",
			Want: "(coll 1 2 3)",
		},
		{
			Name: "bold conditional with elif",
			Text: "IF a THEN 1 ELIF b THEN 2 ELSE 3 FI",
			Want: "(if a 1 (if b 2 3))",
		},
		{
			Name: "brief conditional",
			Text: "( a | 1 | 2 )",
			Want: "(if a 1 2)",
		},
		{
			Name: "brief case clause",
			Text: "( i | 1, 2 | 0 )",
			Want: "(case i 1 2 0)",
		},
		{
			Name: "bold case clause",
			Text: "CASE i IN 1, 2 OUT 0 ESAC",
			Want: "(case i 1 2 0)",
		},
		{
			Name: "conformity clause",
			Text: "CASE u IN (INT i): 1, (REAL): 2 OUT 0 ESAC",
			Want: "(conf u (alt INT i 1) (alt REAL _ 2) 0)",
		},
		{
			Name: "loop clause",
			Text: "FOR i FROM 1 BY 2 TO 10 WHILE TRUE DO SKIP OD",
			Want: "(loop i 1 2 10 TRUE SKIP)",
		},
		{
			Name: "minimal loop",
			Text: "DO SKIP OD",
			Want: "(loop _ _ _ _ _ SKIP)",
		},
		{
			Name: "denotations",
			Text: `3.14; 2r1010; "text"; "c"; TRUE; EMPTY`,
			Want: `3.14; 2r1010; "text"; "c"; TRUE; EMPTY`,
		},
		{
			Name: "declared mode used in a cast",
			Text: "MODE IDX = INT; IDX (1)",
			Want: "(mode IDX INT); (cast IDX 1)",
		},
		{
			Name: "long declarers",
			Text: "LONG LONG INT n",
			Want: "(var LONG LONG INT (n))",
		},
		{
			Name: "union declarer",
			Text: "UNION (INT, REAL, VOID) u",
			Want: "(var (union INT REAL VOID) (u))",
		},
		{
			Name: "ref and flex declarers",
			Text: "REF FLEX [] CHAR rs",
			Want: "(var (ref (flex (row 1 CHAR))) (rs))",
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			fset := token.NewFileSet()
			prog, err := ParseFile(fset, "test.a68", test.Text)
			if err != nil {
				t.Fatalf("ParseFile(%q): %v", test.Text, err)
			}

			parts := make([]string, len(prog.Serial))
			for i, ph := range prog.Serial {
				parts[i] = dump(ph)
			}

			if got := strings.Join(parts, "; "); got != test.Want {
				t.Errorf("ParseFile(%q):\n  got  %s\n  want %s", test.Text, got, test.Want)
			}
		})
	}
}

func TestParseFileErrors(t *testing.T) {
	tests := []struct {
		Name string
		Text string
		Want string
	}{
		{
			Name: "missing unit",
			Text: "1 +",
			Want: "expected a unit",
		},
		{
			Name: "unclosed closed clause",
			Text: "BEGIN 1",
			Want: "expected END",
		},
		{
			Name: "unclosed conditional",
			Text: "IF a THEN 1 ELSE 2 OD",
			Want: "expected FI",
		},
		{
			Name: "priority out of range",
			Text: "PRIO MAX = 10",
			Want: "priority must be between 1 and 9",
		},
		{
			Name: "operator without routine text",
			Text: "OP DOUBLE = 4",
			Want: "expected a routine text",
		},
		{
			Name: "lexical error",
			Text: `"unclosed`,
			Want: "string denotation not closed",
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			fset := token.NewFileSet()
			_, err := ParseFile(fset, "test.a68", test.Text)
			if err == nil {
				t.Fatalf("ParseFile(%q): no error, want %q", test.Text, test.Want)
			}
			if !strings.Contains(err.Error(), test.Want) {
				t.Errorf("ParseFile(%q): got error %q, want %q", test.Text, err, test.Want)
			}
		})
	}
}

func TestParseUnit(t *testing.T) {
	fset := token.NewFileSet()
	u, err := ParseUnit(fset, "(x | 1 | 2) + f(3)")
	if err != nil {
		t.Fatalf("ParseUnit: %v", err)
	}

	if got, want := dump(u), "(+ (if x 1 2) (call f 3))"; got != want {
		t.Errorf("ParseUnit: got %s, want %s", got, want)
	}

	if _, err := ParseUnit(fset, "1 2"); err == nil {
		t.Errorf("ParseUnit(\"1 2\"): no error")
	}
}
