// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Command a68 implements the Algol 68 static-analysis tooling.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"algol68.dev/a68/cmd/check"
	"algol68.dev/a68/cmd/monitor"
	"algol68.dev/a68/cmd/watch"
)

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
	log.SetPrefix("")
}

// A Command is one subcommand of the a68 tool.
type Command struct {
	Name        string
	Description string
	Func        func(ctx context.Context, w io.Writer, args []string) error
}

var (
	commandNames []string
	commands     = make(map[string]*Command)

	program = filepath.Base(os.Args[0])
)

// RegisterCommand makes a subcommand available to main. Each name can
// be registered once.
func RegisterCommand(name, description string, fun func(ctx context.Context, w io.Writer, args []string) error) {
	if commands[name] != nil {
		panic("command " + name + " already registered")
	}

	if fun == nil {
		panic("command " + name + " registered with nil implementation")
	}

	commandNames = append(commandNames, name)
	commands[name] = &Command{Name: name, Description: description, Func: fun}
}

func init() {
	RegisterCommand("check", "Parse and mode-check Algol 68 source files", check.Main)
	RegisterCommand("monitor", "Interactively query declared and inferred modes", monitor.Main)
	RegisterCommand("watch", "Re-check Algol 68 source files whenever they change", watch.Main)
}

func main() {
	sort.Strings(commandNames)

	var help bool
	flag.BoolVar(&help, "h", false, "Show this message and exit.")
	flag.Usage = func() {
		log.Printf("Usage:\n  %s COMMAND [OPTIONS]\n", program)
		log.Printf("The commands are:")
		width := 0
		for _, name := range commandNames {
			if width < len(name) {
				width = len(name)
			}
		}

		for _, name := range commandNames {
			log.Printf("  %-*s  %s", width, name, commands[name].Description)
		}

		os.Exit(2)
	}

	flag.Parse()

	args := flag.Args()
	if help || len(args) == 0 {
		flag.Usage()
	}

	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		log.Printf("unknown command %q", name)
		flag.Usage()
	}

	log.SetPrefix(name + ": ")
	err := cmd.Func(context.Background(), os.Stdout, args[1:])
	if err != nil {
		log.Fatal(err)
	}
}
