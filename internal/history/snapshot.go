// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bartekus/policycomposer/internal/projection"
)

// FileSource reads the snapshot from a JSON blob on disk.
type FileSource struct {
	Path string
}

// Snapshot implements Source.
func (f FileSource) Snapshot() (*Snapshot, error) {
	return LoadSnapshot(f.Path)
}

// LoadSnapshot decodes a history blob.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from build settings
	if err != nil {
		return nil, fmt.Errorf("reading history blob: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing history blob %s: %w", path, err)
	}
	if s.Files == nil {
		s.Files = map[string][]CommitRecord{}
	}
	return &s, nil
}

// SaveSnapshot writes the blob atomically as indented JSON.
func SaveSnapshot(path string, s *Snapshot) error {
	if s.Files == nil {
		s.Files = map[string][]CommitRecord{}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling history blob: %w", err)
	}
	data = append(data, '\n')
	return projection.AtomicWrite(path, data)
}

// Empty returns a snapshot with no current build commit, which disables
// history for every document.
func Empty() *Snapshot {
	return &Snapshot{Files: map[string][]CommitRecord{}}
}

// LoadOrEmpty loads from src and degrades any failure to Empty.
// The error is returned alongside so callers can report it.
func LoadOrEmpty(src Source) (*Snapshot, error) {
	s, err := src.Snapshot()
	if err != nil || s == nil {
		return Empty(), err
	}
	return s, nil
}
