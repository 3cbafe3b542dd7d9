// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package watch re-checks a set of Algol 68 source files whenever one
// of them changes.
package watch

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/syncthing/notify"

	"algol68.dev/a68/cmd/check"
)

var program = filepath.Base(os.Args[0])

// debounce batches the event bursts an editor save produces into one
// re-check.
const debounce = 100 * time.Millisecond

// Main watches the named files and re-checks them on change.
func Main(ctx context.Context, w io.Writer, args []string) error {
	flags := flag.NewFlagSet("watch", flag.ExitOnError)

	var help bool
	var configName string
	flags.BoolVar(&help, "h", false, "Show this message and exit.")
	flags.StringVar(&configName, "config", "", "The project configuration file (default "+check.ConfigName+" if present).")

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
		return check.ErrNoFiles
	}

	explicit := configName != ""
	if !explicit {
		configName = check.ConfigName
	}

	config, err := check.LoadConfig(configName, explicit)
	if err != nil {
		return err
	}

	// Watch the containing directories: editors typically replace the
	// file rather than write it in place, so watching the file itself
	// loses the watch on the first save.
	dirs := make(map[string]bool)
	for _, filename := range filenames {
		dirs[filepath.Dir(filename)] = true
	}

	// Buffered so a burst of events does not force notify to drop
	// any.
	events := make(chan notify.EventInfo, 16)
	for dir := range dirs {
		err := notify.Watch(dir, events, notify.All)
		if err != nil {
			return fmt.Errorf("cannot watch %s: %v", dir, err)
		}
	}
	defer notify.Stop(events)

	run := func() {
		err := check.Files(w, config, filenames)
		if err != nil {
			fmt.Fprintln(w, err)
		} else {
			fmt.Fprintln(w, "ok")
		}
	}

	run()

	var timer *time.Timer
	timeout := func() <-chan time.Time {
		if timer != nil {
			return timer.C
		}

		// Block until an event arms the timer.
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-events:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
		case <-timeout():
			timer = nil
			run()
		}
	}
}
