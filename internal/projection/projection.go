// SPDX-License-Identifier: AGPL-3.0-or-later

// Package projection renders Markdown fragments and writes generated files.
package projection

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// AtomicWrite replaces path with content. Readers see either the old file
// or the new one. An existing file keeps its permissions; new files get 0644.
func AtomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// SortedKeys returns the keys of a string-keyed map in lexicographic order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// RenderTable renders a Markdown table with left-aligned columns.
// Rows keep the given order. Cells go through EscapeCell.
func RenderTable(headers []string, rows [][]string) string {
	var b strings.Builder
	writeRow(&b, headers)

	b.WriteString("|")
	for range headers {
		b.WriteString(" :--- |")
	}
	b.WriteString("\n")

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = EscapeCell(cell)
		}
		writeRow(&b, cells)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}

// EscapeCell makes text safe inside a single table cell: line breaks become
// spaces and pipes are escaped.
func EscapeCell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderList renders an unordered Markdown list, one item per line.
func RenderList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderHeader renders an ATX heading followed by a blank line.
func RenderHeader(level int, text string) string {
	return strings.Repeat("#", level) + " " + text + "\n\n"
}
