// Package pathsafe confines computed filesystem paths to a root directory.
// Component names come from a user-editable versions file, so the working-copy
// path derived from a name must never escape the components directory.
package pathsafe

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Resolve joins rel onto root and verifies the result stays inside root,
// following symlinks. Returns the resolved absolute path.
func Resolve(root, rel string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolving root symlinks: %w", err)
	}

	candidate := filepath.Clean(filepath.Join(realRoot, rel))
	resolved, err := resolveExistingPath(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	// Trailing separator so "root2" does not prefix-match "root".
	rootPrefix := realRoot + string(filepath.Separator)
	if resolved != realRoot && !strings.HasPrefix(resolved, rootPrefix) {
		return "", fmt.Errorf("path %q resolves to %q, outside %q", rel, resolved, realRoot)
	}
	return resolved, nil
}

// resolveExistingPath resolves symlinks for the longest existing prefix of
// the path, then appends the non-existing suffix. Working copies may not be
// cloned yet, so the full path often does not exist.
func resolveExistingPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if dir == path {
		return path, nil
	}
	resolvedDir, err := resolveExistingPath(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedDir, base), nil
}
