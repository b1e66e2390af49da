package utils

import (
	"os"
	"path/filepath"
)

// ResolvePaths resolves a list of paths relative to a base directory.
// Absolute paths are returned unchanged, relative paths are resolved
// relative to the base directory. Used for task paths and log
// directories configured relative to the project root.
func ResolvePaths(paths []string, baseDir string) []string {
	if len(paths) == 0 {
		return nil
	}

	resolved := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			resolved[i] = p
			continue
		}
		resolved[i] = filepath.Join(baseDir, p)
	}
	return resolved
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
