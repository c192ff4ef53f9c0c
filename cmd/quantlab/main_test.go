package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestRunSnapshot(t *testing.T) {
	out := t.TempDir()
	for name, value := range map[string]string{
		"data":        "testdata",
		"date":        "2024-03-15",
		"ticker":      "SPX",
		"out":         out,
		"skip-heston": "true",
	} {
		if err := flag.Set(name, value); err != nil {
			t.Fatalf("flag %s: %v", name, err)
		}
	}

	if err := run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range []string{"smile.png", "surface.html"} {
		info, err := os.Stat(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestRunMissingSnapshot(t *testing.T) {
	if err := flag.Set("data", t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if err := run(); err == nil {
		t.Fatal("expected an error for a missing snapshot")
	}
}
