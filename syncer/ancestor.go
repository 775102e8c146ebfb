package syncer

import (
	"os"
	"path/filepath"
)

// ClosestAncestorDir returns path itself if it is an existing directory,
// otherwise the nearest parent of path which is. The walk strips one path
// element at a time and stops at the root (or "." for relative paths) with
// ErrNoAncestor.
func ClosestAncestorDir(path string) (string, error) {
	p := filepath.Clean(path)
	for {
		if fi, err := os.Stat(p); err == nil && fi.IsDir() {
			return p, nil
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", ErrNoAncestor
		}
		p = parent
	}
}
