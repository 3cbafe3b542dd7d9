// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package monitor implements an interactive session against the mode
// checker: declarations accumulate, units report their inferred
// modes.
package monitor

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"algol68.dev/a68/ast"
	"algol68.dev/a68/check"
	"algol68.dev/a68/mode"
	"algol68.dev/a68/parser"
	"algol68.dev/a68/token"
)

var program = filepath.Base(os.Args[0])

const historyName = ".a68_history"

const helpText = `Enter an Algol 68 phrase. Declarations accumulate in the session;
a unit prints its inferred mode.

Commands:
  :help          Show this help.
  :load FILE     Add every phrase of FILE to the session.
  :modes         Dump the session's mode graph.
  :reset         Discard the session.
  :quit          Exit.
`

// A session accumulates phrases and re-checks them as a whole, so
// later entries see earlier declarations.
type session struct {
	phrases []string

	// Results of the last successful check.
	fset *token.FileSet
	info *check.Info
}

// source renders the session plus a candidate phrase as one program.
func (s *session) source(candidate string) string {
	all := s.phrases
	if candidate != "" {
		all = append(all[:len(all):len(all)], candidate)
	}

	return strings.Join(all, ";\n")
}

// Enter checks the session with candidate appended. On success the
// candidate is kept and the mode of its final unit (if it is a unit)
// is returned.
func (s *session) Enter(candidate string) (*mode.Mode, error) {
	fset := token.NewFileSet()
	prog, err := parser.ParseFile(fset, "monitor", s.source(candidate))
	if err != nil {
		return nil, err
	}

	info, diags := check.Check(fset, prog)
	if diags.Len() > 0 {
		return nil, errors.New(strings.TrimSuffix(diags.Format(fset), "\n"))
	}

	s.phrases = append(s.phrases, candidate)
	s.fset = fset
	s.info = info

	if len(prog.Serial) == 0 {
		return nil, nil
	}

	if u, ok := prog.Serial[len(prog.Serial)-1].(ast.Unit); ok {
		return info.Modes[u], nil
	}

	return nil, nil
}

// DumpModes writes the mode graph of the last successful check.
func (s *session) DumpModes(w io.Writer) {
	if s.info == nil {
		fmt.Fprintln(w, "no modes yet")
		return
	}

	for _, m := range s.info.Graph.All() {
		if eq := m.Equivalent(); eq != nil && eq != m {
			fmt.Fprintf(w, "%4d  %s = %s (mode %d)\n", m.Number(), m, eq, eq.Number())
			continue
		}

		fmt.Fprintf(w, "%4d  %s\n", m.Number(), m)
	}
}

// Main runs the interactive monitor.
func Main(ctx context.Context, w io.Writer, args []string) error {
	flags := flag.NewFlagSet("monitor", flag.ExitOnError)

	var help bool
	flags.BoolVar(&help, "h", false, "Show this message and exit.")

	flags.Usage = func() {
		log.Printf("Usage:\n  %s %s\n\n", program, flags.Name())
		flags.PrintDefaults()
		os.Exit(2)
	}

	err := flags.Parse(args)
	if err != nil || help {
		flags.Usage()
	}

	if flags.NArg() != 0 {
		flags.Usage()
	}

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyName)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}

	s := new(session)
	for {
		line, err := ln.Prompt("a68> ")
		if err == io.EOF {
			fmt.Fprintln(w)
			break
		}
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		ln.AppendHistory(line)
		if strings.HasPrefix(line, ":") {
			if command(w, s, line) {
				break
			}

			continue
		}

		enter(w, s, line)
	}

	if f, err := os.Create(histPath); err == nil {
		ln.WriteHistory(f)
		f.Close()
	}

	return nil
}

// enter feeds one phrase to the session and reports the result.
func enter(w io.Writer, s *session, phrase string) {
	m, err := s.Enter(phrase)
	if err != nil {
		fmt.Fprintln(w, err)
		return
	}

	if m != nil {
		fmt.Fprintln(w, m)
	}
}

// command handles one colon-prefixed monitor command, reporting
// whether the monitor should exit.
func command(w io.Writer, s *session, line string) (exit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":help":
		fmt.Fprint(w, helpText)

	case ":quit", ":exit":
		return true

	case ":reset":
		*s = session{}
		fmt.Fprintln(w, "session reset")

	case ":modes":
		s.DumpModes(w)

	case ":load":
		if len(fields) != 2 {
			fmt.Fprintln(w, "usage: :load FILE")
			return false
		}

		data, err := os.ReadFile(fields[1])
		if err != nil {
			fmt.Fprintln(w, err)
			return false
		}

		enter(w, s, strings.TrimSpace(string(data)))

	default:
		fmt.Fprintf(w, "unknown command %s: type :help for help\n", fields[0])
	}

	return false
}
