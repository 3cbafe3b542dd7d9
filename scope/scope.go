// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package scope implements the symbol table: a tree of ranges, each
// holding the identifier, operator, indicant, and priority tags
// declared in it.
//
// Tags are entered during the checker's declaration scan; the mode
// checker reads them back and writes each tag's mode once it has
// been resolved.
package scope

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"algol68.dev/a68/ast"
	"algol68.dev/a68/mode"
	"algol68.dev/a68/token"
)

// Class identifies what a tag names.
type Class int

const (
	Identifier Class = iota
	Operator
	Indicant
	Priority
)

var classNames = [...]string{
	Identifier: "identifier",
	Operator:   "operator",
	Indicant:   "indicant",
	Priority:   "priority",
}

func (c Class) String() string { return classNames[c] }

// A Tag is one declared name. Its mode is nil until the checker
// resolves it.
type Tag struct {
	class    Class
	name     string
	pos      token.Pos
	node     ast.Node
	mode     *mode.Mode
	priority int // Priority tags only.
}

func (t *Tag) Class() Class       { return t.class }
func (t *Tag) Name() string       { return t.name }
func (t *Tag) Pos() token.Pos     { return t.pos }
func (t *Tag) Node() ast.Node     { return t.node }
func (t *Tag) Mode() *mode.Mode   { return t.mode }
func (t *Tag) Priority() int      { return t.priority }
func (t *Tag) SetMode(m *mode.Mode) { t.mode = m }

func (t *Tag) String() string {
	if t.mode != nil {
		return fmt.Sprintf("%s %s: %s", t.class, t.name, t.mode)
	}
	return fmt.Sprintf("%s %s", t.class, t.name)
}

// A Range is one lexical range, with one parent range (in which it
// belongs) and an arbitrary number of child ranges. Operators may be
// declared more than once per range (overloads); other classes may
// not.
type Range struct {
	parent   *Range
	children []*Range
	tags     []*Tag
	pos, end token.Pos
	comment  string // A context string for debugging purposes.
}

// NewRange creates a new, empty range.
func NewRange(parent *Range, pos, end token.Pos, comment string) *Range {
	r := &Range{
		parent:  parent,
		pos:     pos,
		end:     end,
		comment: comment,
	}

	if parent != nil {
		parent.children = append(parent.children, r)
	}

	return r
}

// Parent returns r's parent range.
func (r *Range) Parent() *Range { return r.parent }

// Pos returns the position where r starts.
func (r *Range) Pos() token.Pos { return r.pos }

// End returns the position where r ends.
func (r *Range) End() token.Pos { return r.end }

// Comment returns any debugging context for r.
func (r *Range) Comment() string { return r.comment }

// Tags returns the tags declared in r, in declaration order.
func (r *Range) Tags() []*Tag { return r.tags }

// Enter declares a tag in r. For classes other than Operator, if r
// already holds a tag of the same class and name, Enter returns the
// existing tag without modifying r.
func (r *Range) Enter(class Class, name string, pos token.Pos, node ast.Node) (*Tag, *Tag) {
	if class != Operator {
		if other := r.lookup(class, name); other != nil {
			return other, other
		}
	}

	t := &Tag{class: class, name: name, pos: pos, node: node}
	r.tags = append(r.tags, t)

	return t, nil
}

func (r *Range) lookup(class Class, name string) *Tag {
	for _, t := range r.tags {
		if t.class == class && t.name == name {
			return t
		}
	}

	return nil
}

// FindLocal returns the tag of the given class and name declared in r
// itself, or nil.
func (r *Range) FindLocal(class Class, name string) *Tag {
	return r.lookup(class, name)
}

// Find returns the tag of the given class and name declared in r or
// the nearest enclosing range, or nil.
func (r *Range) Find(class Class, name string) *Tag {
	for ; r != nil; r = r.parent {
		if t := r.lookup(class, name); t != nil {
			return t
		}
	}

	return nil
}

// FindOperators returns every operator tag with the given symbol,
// innermost range first. Overload resolution picks among them by
// operand mode.
func (r *Range) FindOperators(name string) []*Tag {
	var out []*Tag
	for ; r != nil; r = r.parent {
		for _, t := range r.tags {
			if t.class == Operator && t.name == name {
				out = append(out, t)
			}
		}
	}

	return out
}

// FindPriority returns the declared priority of the given dyadic
// operator symbol, or -1.
func (r *Range) FindPriority(name string) int {
	if t := r.Find(Priority, name); t != nil {
		return t.priority
	}

	return -1
}

// SetPriority records the priority of an operator symbol on its tag.
func (t *Tag) SetPriority(n int) { t.priority = n }

// String returns the textual representation of the range, as
// provided by WriteTo.
func (r *Range) String() string {
	var buf strings.Builder
	r.WriteTo(&buf, 0, false)
	return buf.String()
}

// WriteTo writes a textual representation of the range to w, with
// tags sorted by name. The level of indentation is controlled by n,
// with n=0 for no indentation. If recurse is true, WriteTo
// recursively writes all child ranges as well.
func (r *Range) WriteTo(w io.Writer, n int, recurse bool) error {
	const indent = ".  "
	indentation := strings.Repeat(indent, n)

	_, err := fmt.Fprintf(w, "%s%s range %p {\n", indentation, r.comment, r)
	if err != nil {
		return err
	}

	names := make([]string, len(r.tags))
	for i, t := range r.tags {
		names[i] = t.String()
	}
	sort.Strings(names)

	indented := indentation + indent
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "%s%s\n", indented, name); err != nil {
			return err
		}
	}

	if recurse {
		for _, child := range r.children {
			if err := child.WriteTo(w, n+1, recurse); err != nil {
				return err
			}
		}
	}

	_, err = fmt.Fprintf(w, "%s}\n", indentation)

	return err
}
