// SPDX-License-Identifier: AGPL-3.0-or-later

// Package order loads the policy order file, which lists every managed
// policy document and drives both build order and the manual's sections.
package order

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Item is one policy document: a template source, an output filename
// template and an optional title template.
type Item struct {
	Source string `yaml:"source"`
	Output string `yaml:"output"`
	Title  string `yaml:"title,omitempty"`
}

// TitleTemplate returns the title template, defaulting to the output
// template without its .md extension.
func (i Item) TitleTemplate() string {
	if i.Title != "" {
		return i.Title
	}
	return strings.TrimSuffix(i.Output, ".md")
}

// Registry is the decoded policy order file.
type Registry struct {
	Items []Item `yaml:"policy_files"`
}

// document mirrors the file with loose item typing so malformed entries
// (scalars, missing keys) are reported instead of silently zeroed.
type document struct {
	PolicyFiles []yaml.Node `yaml:"policy_files"`
}

// Load reads and decodes the order file. Items are validated structurally
// by Validate; Load only rejects entries that are not mappings.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from build settings
	if err != nil {
		return nil, fmt.Errorf("failed to read policy order file: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse policy order YAML: %w", err)
	}

	reg := &Registry{Items: make([]Item, 0, len(doc.PolicyFiles))}
	for i := range doc.PolicyFiles {
		node := &doc.PolicyFiles[i]
		if node.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("policy_files[%d] (line %d) must be an object with 'source' and 'output' keys", i, node.Line)
		}
		var item Item
		if err := node.Decode(&item); err != nil {
			return nil, fmt.Errorf("policy_files[%d] (line %d): %w", i, node.Line, err)
		}
		reg.Items = append(reg.Items, item)
	}

	return reg, nil
}

// Validate checks required keys, path hygiene and duplicates.
func (r *Registry) Validate() error {
	seenSources := make(map[string]bool)

	for i, it := range r.Items {
		if it.Source == "" {
			return fmt.Errorf("policy item at index %d missing source", i)
		}
		if it.Output == "" {
			return fmt.Errorf("policy item %s missing output", it.Source)
		}

		if filepath.IsAbs(it.Source) {
			return fmt.Errorf("policy item %s source path must be relative", it.Source)
		}
		if escapes(it.Source) {
			return fmt.Errorf("policy item %s source path must not escape the policy directory", it.Source)
		}
		if seenSources[it.Source] {
			return fmt.Errorf("duplicate policy source: %s", it.Source)
		}
		seenSources[it.Source] = true
	}

	return nil
}

// ValidateSources checks that every source template exists under policyDir.
func (r *Registry) ValidateSources(policyDir string) error {
	for _, it := range r.Items {
		fullPath := filepath.Join(policyDir, it.Source)
		info, err := os.Stat(fullPath)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("policy item %s template not found: %s", it.Source, fullPath)
			}
			return fmt.Errorf("policy item %s failed to stat template: %w", it.Source, err)
		}
		if info.IsDir() {
			return fmt.Errorf("policy item %s template is a directory: %s", it.Source, fullPath)
		}
	}
	return nil
}

// Sources returns the source file names in order.
func (r *Registry) Sources() []string {
	out := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, it.Source)
	}
	return out
}

func escapes(p string) bool {
	clean := filepath.ToSlash(filepath.Clean(p))
	return clean == ".." || strings.HasPrefix(clean, "../")
}
