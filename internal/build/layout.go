// SPDX-License-Identifier: AGPL-3.0-or-later

package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ManualFile is the combined manual's file name inside the PDF directory.
const ManualFile = "combined_policies.pdf"

// Layout places generated files under one output root.
type Layout struct {
	Root string
}

func (l Layout) MarkdownDir() string { return filepath.Join(l.Root, "md") }
func (l Layout) PDFDir() string      { return filepath.Join(l.Root, "pdf") }
func (l Layout) ODTDir() string      { return filepath.Join(l.Root, "odt") }
func (l Layout) StagingDir() string  { return filepath.Join(l.Root, "temp_combined") }
func (l Layout) ManualPath() string  { return filepath.Join(l.PDFDir(), ManualFile) }

func (l Layout) MarkdownPath(name string) string { return filepath.Join(l.MarkdownDir(), name) }
func (l Layout) PDFPath(name string) string      { return filepath.Join(l.PDFDir(), stem(name)+".pdf") }
func (l Layout) ODTPath(name string) string      { return filepath.Join(l.ODTDir(), stem(name)+".odt") }
func (l Layout) StagedPath(name string) string   { return filepath.Join(l.StagingDir(), name) }

// Prepare creates the output directories and empties the staging area so
// sections of removed policies do not linger.
func (l Layout) Prepare() error {
	if err := os.RemoveAll(l.StagingDir()); err != nil {
		return fmt.Errorf("clearing %s: %w", l.StagingDir(), err)
	}
	for _, dir := range []string{l.MarkdownDir(), l.PDFDir(), l.ODTDir(), l.StagingDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

func stem(name string) string { return strings.TrimSuffix(name, ".md") }

// checkOutputName rejects rendered output names that would leave their directory.
func checkOutputName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("output name renders empty")
	case name == "." || name == "..":
		return fmt.Errorf("output name %q is not a file name", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("output name %q must not contain path separators", name)
	case stem(name) == "":
		return fmt.Errorf("output name %q has no base name", name)
	}
	return nil
}
