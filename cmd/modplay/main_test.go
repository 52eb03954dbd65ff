package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"song.mod", "SONG.MOD", "mod.intro", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.mod"), 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		valid bool
	}{
		{"song.mod", true},
		{"SONG.MOD", true},
		{"mod.intro", true},
		{"notes.txt", false},
		{"missing.mod", false},
		{"dir.mod", false},
	}
	for _, tt := range tests {
		err := validatePath(filepath.Join(dir, tt.name))
		if tt.valid && err != nil {
			t.Errorf("validatePath(%q): unexpected error: %v", tt.name, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("validatePath(%q): expected an error", tt.name)
		}
	}
}

func TestChoosePathArgument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.mod")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := choosePath(dir, []string{path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != path {
		t.Errorf("got %q, want %q", got, path)
	}

	if _, err := choosePath(dir, []string{filepath.Join(dir, "song.xm")}); err == nil {
		t.Error("expected an error for a non-module path")
	}
}
