// SPDX-License-Identifier: AGPL-3.0-or-later

// Package projectroot locates the policy repository root so relative
// settings resolve the same from any working directory.
package projectroot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when no ancestor directory carries a marker.
var ErrNotFound = errors.New("project root not found")

// DefaultMarkers identify a policy repository root.
var DefaultMarkers = []string{
	filepath.Join("conf", "policy_order.yaml"),
	filepath.Join("conf", "config.yaml"),
	".git",
}

// Find walks up from start and returns the first directory containing any
// of markers (DefaultMarkers when none are given).
func Find(start string, markers ...string) (string, error) {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}

	for {
		for _, m := range markers {
			if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w from %s (looked for %v)", ErrNotFound, start, markers)
		}
		dir = parent
	}
}

// Resolve joins a relative path onto root; absolute paths are returned as is.
func Resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
