// Copyright 2026 The A68 Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package check

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestLoadConfig(t *testing.T) {
	// JWCC: comments and trailing commas are fine.
	path := writeFile(t, "a68.hujson", `{
		// Cap the noise from broken files.
		"max-errors": 3,
	}`)

	config, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config.MaxErrors != 3 {
		t.Errorf("MaxErrors = %d, want 3", config.MaxErrors)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "a68.hujson")

	// An implicit config file may be absent.
	config, err := LoadConfig(missing, false)
	if err != nil {
		t.Fatalf("LoadConfig(implicit): %v", err)
	}
	if config.MaxErrors != 0 {
		t.Errorf("MaxErrors = %d, want 0", config.MaxErrors)
	}

	// One named with -config may not.
	if _, err := LoadConfig(missing, true); err == nil {
		t.Errorf("LoadConfig(explicit): no error for a missing file")
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		Name string
		Text string
	}{
		{"negative max-errors", `{"max-errors": -1}`},
		{"malformed syntax", `{"max-errors": }`},
		{"wrong type", `{"max-errors": "three"}`},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			path := writeFile(t, "a68.hujson", test.Text)
			if _, err := LoadConfig(path, true); err == nil {
				t.Errorf("LoadConfig(%q): no error", test.Text)
			}
		})
	}
}

func TestFiles(t *testing.T) {
	good := writeFile(t, "good.a68", "INT n := 1; n := n + 1")
	bad := writeFile(t, "bad.a68", "INT n = undeclared")

	var b strings.Builder
	if err := Files(&b, new(Config), []string{good}); err != nil {
		t.Fatalf("Files(good): %v", err)
	}
	if b.Len() != 0 {
		t.Fatalf("Files(good): unexpected output %q", b.String())
	}

	b.Reset()
	err := Files(&b, new(Config), []string{good, bad})
	if err == nil || err.Error() != "1 file failed" {
		t.Fatalf("Files(good, bad): err = %v, want 1 file failed", err)
	}
	out := b.String()
	if !strings.Contains(out, "bad.a68:") || !strings.Contains(out, "undeclared identifier undeclared") {
		t.Errorf("Files(good, bad): output %q", out)
	}
}

func TestFilesMaxErrors(t *testing.T) {
	bad := writeFile(t, "bad.a68", "a; b; c")

	var b strings.Builder
	err := Files(&b, &Config{MaxErrors: 2}, []string{bad})
	if err == nil {
		t.Fatal("Files: no error")
	}

	lines := strings.Count(b.String(), "\n")
	if lines != 2 {
		t.Errorf("Files with max-errors 2 printed %d diagnostics:\n%s", lines, b.String())
	}
}
