// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package token

import (
	"go/token"
)

// Source positions are borrowed from "go/token": nothing about a
// file/line/column triple or the FileSet machinery is specific to Go,
// and the aliases keep diagnostics on the conventional
// file:line:column form without a parallel implementation here.

type (
	// A Position describes a resolved source location.
	Position = token.Position

	// A Pos is a compact encoding of a Position within a FileSet.
	Pos = token.Pos

	File    = token.File
	FileSet = token.FileSet
)

// NewFileSet returns an empty file set, ready for AddFile.
func NewFileSet() *FileSet {
	return token.NewFileSet()
}

// NoPos is the zero Pos; it denotes no source location.
const NoPos = token.NoPos
