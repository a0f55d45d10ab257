// SPDX-License-Identifier: AGPL-3.0-or-later

package gitlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Aliases maps raw git author names to display names.
type Aliases map[string]string

// Resolve returns the display name for raw, or raw itself when unmapped.
func (a Aliases) Resolve(raw string) string {
	if name, ok := a[raw]; ok && name != "" {
		return name
	}
	return raw
}

// LoadAliases reads a JSON object of raw→display names. A missing file is
// an empty map. On a read or parse error the returned map is empty and the
// error says why, so callers can warn and carry on.
func LoadAliases(path string) (Aliases, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from build settings
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Aliases{}, nil
		}
		return Aliases{}, fmt.Errorf("reading user map: %w", err)
	}

	var a Aliases
	if err := json.Unmarshal(data, &a); err != nil {
		return Aliases{}, fmt.Errorf("parsing user map %s: %w", path, err)
	}
	if a == nil {
		a = Aliases{}
	}
	return a, nil
}
