// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package check parses and mode-checks a set of Algol 68 source
// files, printing any diagnostics.
package check

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"go/scanner"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"

	"algol68.dev/a68/check"
	"algol68.dev/a68/parser"
	"algol68.dev/a68/token"
)

var program = filepath.Base(os.Args[0])

// ErrNoFiles indicates that no source files were named.
var ErrNoFiles = errors.New("no source files")

// ConfigName is the project configuration file, looked up in the
// current directory unless -config overrides it.
const ConfigName = "a68.hujson"

// A Config carries the optional project-level settings. The file is
// JWCC (JSON with commas and comments).
type Config struct {
	// MaxErrors caps the diagnostics printed per run. Zero means no
	// cap.
	MaxErrors int `json:"max-errors"`
}

// LoadConfig reads and parses a configuration file. A missing file
// with explicit=false is not an error; the zero Config is returned.
func LoadConfig(name string, explicit bool) (*Config, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return new(Config), nil
		}

		return nil, err
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", name, err)
	}

	config := new(Config)
	err = json.Unmarshal(std, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", name, err)
	}

	if config.MaxErrors < 0 {
		return nil, fmt.Errorf("%s: max-errors must not be negative", name)
	}

	return config, nil
}

// Files checks the named files, writing diagnostics to w. The
// returned error summarises the failures, if any.
func Files(w io.Writer, config *Config, filenames []string) error {
	printed := 0
	failures := 0
	for _, filename := range filenames {
		fset := token.NewFileSet()
		prog, err := parser.ParseFile(fset, filename, nil)
		if err != nil {
			var list scanner.ErrorList
			if errors.As(err, &list) {
				for _, e := range list {
					if config.MaxErrors > 0 && printed >= config.MaxErrors {
						break
					}

					fmt.Fprintln(w, e)
					printed++
				}
			} else {
				fmt.Fprintln(w, err)
			}

			failures++
			continue
		}

		_, diags := check.Check(fset, prog)
		if diags.Len() == 0 {
			continue
		}

		for _, d := range diags.All() {
			if config.MaxErrors > 0 && printed >= config.MaxErrors {
				break
			}

			fmt.Fprintf(w, "%s: %s\n", fset.Position(d.Pos), d.Msg)
			printed++
		}

		failures++
	}

	switch failures {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("1 file failed")
	default:
		return fmt.Errorf("%d files failed", failures)
	}
}

// Main parses and mode-checks a set of Algol 68 files.
func Main(ctx context.Context, w io.Writer, args []string) error {
	flags := flag.NewFlagSet("check", flag.ExitOnError)

	var help bool
	var configName string
	var maxErrors int
	flags.BoolVar(&help, "h", false, "Show this message and exit.")
	flags.StringVar(&configName, "config", "", "The project configuration file (default "+ConfigName+" if present).")
	flags.IntVar(&maxErrors, "max-errors", 0, "Print at most this many diagnostics (0 for no cap).")

	flags.Usage = func() {
		log.Printf("Usage:\n  %s %s OPTIONS FILE...\n\n", program, flags.Name())
		flags.PrintDefaults()
		os.Exit(2)
	}

	err := flags.Parse(args)
	if err != nil || help {
		flags.Usage()
	}

	filenames := flags.Args()
	if len(filenames) == 0 {
		return ErrNoFiles
	}

	explicit := configName != ""
	if !explicit {
		configName = ConfigName
	}

	config, err := LoadConfig(configName, explicit)
	if err != nil {
		return err
	}

	if maxErrors != 0 {
		config.MaxErrors = maxErrors
	}

	return Files(w, config, filenames)
}
