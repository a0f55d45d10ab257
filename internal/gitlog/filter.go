// SPDX-License-Identifier: AGPL-3.0-or-later

package gitlog

import (
	"sort"
	"strings"
)

// FilterOptions selects which tracked files count as policy templates.
type FilterOptions struct {
	// Dir keeps only paths below this slash-separated directory.
	// Empty or "." keeps everything.
	Dir string

	// IncludeExtensions is a list of extensions to include (e.g., ".md").
	// If empty, all extensions are included.
	IncludeExtensions []string
}

// FilterFiles applies the filter options to a list of file paths.
// It returns a new slice of strings, sorted deterministically.
func FilterFiles(paths []string, opts FilterOptions) []string {
	if len(paths) == 0 {
		return nil
	}

	prefix := strings.TrimSuffix(opts.Dir, "/")
	if prefix == "." {
		prefix = ""
	}

	var filtered []string
	for _, path := range paths {
		if prefix != "" && !strings.HasPrefix(path, prefix+"/") {
			continue
		}
		if !shouldIncludeExtension(path, opts.IncludeExtensions) {
			continue
		}
		filtered = append(filtered, path)
	}

	sort.Strings(filtered)
	return filtered
}

func shouldIncludeExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	for _, ext := range extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
