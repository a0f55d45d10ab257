// SPDX-License-Identifier: AGPL-3.0-or-later

package checks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bartekus/policycomposer/internal/projection"
)

// StateStore reads and writes runner state under one directory.
type StateStore struct {
	baseDir string
}

// NewStateStore creates a store at the given base directory (e.g. build/checks).
func NewStateStore(baseDir string) *StateStore {
	return &StateStore{baseDir: baseDir}
}

func (s *StateStore) lastRunPath() string {
	return filepath.Join(s.baseDir, "last-run.json")
}

func (s *StateStore) resultPath(id string) string {
	return filepath.Join(s.baseDir, "checks", id+".json")
}

// ReadLastRun loads the last run summary. No state yet returns nil, nil.
func (s *StateStore) ReadLastRun() (*LastRun, error) {
	var last LastRun
	ok, err := readJSON(s.lastRunPath(), &last)
	if err != nil || !ok {
		return nil, err
	}
	return &last, nil
}

// ReadResult loads one check's stored result. No result yet returns nil, nil.
func (s *StateStore) ReadResult(id string) (*Result, error) {
	var res Result
	ok, err := readJSON(s.resultPath(id), &res)
	if err != nil || !ok {
		return nil, err
	}
	return &res, nil
}

// WriteLastRun saves the run summary.
func (s *StateStore) WriteLastRun(last LastRun) error {
	return writeJSON(s.lastRunPath(), last)
}

// WriteResult saves a check's result.
func (s *StateStore) WriteResult(res Result) error {
	return writeJSON(s.resultPath(res.Check), res)
}

// Reset clears the state directory.
func (s *StateStore) Reset() error {
	return os.RemoveAll(s.baseDir)
}

// LoadFailed returns the checks that failed in the last run.
func (s *StateStore) LoadFailed() ([]string, error) {
	last, err := s.ReadLastRun()
	if err != nil || last == nil {
		return nil, err
	}
	return last.Failed, nil
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is inside the state directory
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", path, err)
	}
	return true, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return projection.AtomicWrite(path, append(data, '\n'))
}
