package syncer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClosestAncestorDir(t *testing.T) {
	root := t.TempDir()

	mustMkdir(t, filepath.Join(root, "a"))
	mustMkdir(t, filepath.Join(root, "x", "y"))
	mustWriteFile(t, filepath.Join(root, "x", "file"))

	tests := []struct {
		name string
		path string
		want string
	}{
		{"existing_dir", filepath.Join(root, "a"), filepath.Join(root, "a")},
		{"only_grand_parent_exists", filepath.Join(root, "a", "b", "c"), filepath.Join(root, "a")},
		{"immediate_parent_exists", filepath.Join(root, "x", "y", "z"), filepath.Join(root, "x", "y")},
		{"trailing_slash", filepath.Join(root, "a", "b") + "/", filepath.Join(root, "a")},
		{"parent_is_file", filepath.Join(root, "x", "file", "repo"), filepath.Join(root, "x")},
		{"nothing_but_root", filepath.Join(root, "does", "not", "exist"), root},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClosestAncestorDir(tt.path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ClosestAncestorDir() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClosestAncestorDir_relative(t *testing.T) {
	t.Chdir(t.TempDir())
	mustMkdir(t, "a")

	got, err := ClosestAncestorDir(filepath.Join("a", "b", "c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a" {
		t.Errorf("ClosestAncestorDir() = %v, want %v", got, "a")
	}

	got, err = ClosestAncestorDir(filepath.Join("x", "y"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "." {
		t.Errorf("ClosestAncestorDir() = %v, want %v", got, ".")
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("failed to make dir: %v", err)
	}
}

func mustWriteFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("not a repo"), 0644); err != nil {
		t.Fatalf("failed to write a file: %v", err)
	}
}
