package source

import (
	"errors"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-git/go-git/v5"
)

// reportOrphans logs git repositories found directly under the org path that
// are no longer part of the org. Nothing is removed.
func (s *Source) reportOrphans(org Org, names []string) int {
	orphans, err := findOrphans(org.Path, names)
	if err != nil {
		s.log.Error("unable to read org dir for orphans", "org", org.Name, "path", org.Path, "err", err)
		return 0
	}

	for _, path := range orphans {
		s.log.Warn("repository is no longer part of the org", "org", org.Name, "path", path)
	}
	return len(orphans)
}

// findOrphans returns the paths of repositories under root whose directory
// name is not in names
func findOrphans(root string, names []string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var orphans []string
	for _, entry := range entries {
		if !entry.IsDir() || slices.Contains(names, entry.Name()) {
			continue
		}

		fullPath := filepath.Join(root, entry.Name())
		if !isRepo(fullPath) {
			continue
		}
		orphans = append(orphans, fullPath)
	}
	return orphans, nil
}

func isRepo(path string) bool {
	_, err := git.PlainOpen(path)
	return err == nil
}
