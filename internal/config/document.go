// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bartekus/policycomposer/internal/projection"
)

// Document is an editable view of the config file that keeps key order
// and comments of untouched entries when written back.
type Document struct {
	root *yaml.Node
}

// LoadDocument reads path into a Document. A missing or empty file yields
// an empty mapping.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from build settings
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseDocument(data)
}

// ParseDocument builds a Document from raw YAML.
func ParseDocument(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &Document{root: newMapping()}, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if len(root.Content) == 0 {
		return &Document{root: newMapping()}, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}
	// Keep document-level comments on the mapping so they survive rewrites.
	if root.HeadComment != "" && doc.HeadComment == "" {
		doc.HeadComment = root.HeadComment
	}
	return &Document{root: doc}, nil
}

func newMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// Map decodes the document into a generic mapping.
func (d *Document) Map() (map[string]any, error) {
	out := map[string]any{}
	if err := d.root.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return out, nil
}

// Set assigns a top-level key, appending it when absent.
func (d *Document) Set(key string, value any) error {
	for i := 0; i+1 < len(d.root.Content); i += 2 {
		if d.root.Content[i].Value == key {
			n, err := mergeNode(d.root.Content[i+1], value)
			if err != nil {
				return fmt.Errorf("encoding %s: %w", key, err)
			}
			d.root.Content[i+1] = n
			return nil
		}
	}

	n, err := mergeNode(nil, value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	d.root.Content = append(d.root.Content, keyNode(key), n)
	return nil
}

// Replace swaps the whole content for value. Keys already in the file keep
// their position; new keys are appended in sorted order; keys missing from
// value are dropped.
func (d *Document) Replace(value map[string]any) error {
	n, err := mergeNode(d.root, value)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	d.root = n
	return nil
}

// Bytes encodes the document as YAML with two-space indentation.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the document atomically.
func (d *Document) Save(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	return projection.AtomicWrite(path, data)
}

func keyNode(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
}

// mergeNode encodes v, reusing the shape of existing where it matches so
// that mapping key order and comments are preserved.
func mergeNode(existing *yaml.Node, v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case map[string]any:
		if existing != nil && existing.Kind == yaml.MappingNode {
			out := &yaml.Node{
				Kind:        yaml.MappingNode,
				Tag:         existing.Tag,
				Style:       existing.Style,
				HeadComment: existing.HeadComment,
				LineComment: existing.LineComment,
				FootComment: existing.FootComment,
			}
			seen := make(map[string]bool, len(val))
			for i := 0; i+1 < len(existing.Content); i += 2 {
				k := existing.Content[i]
				child, ok := val[k.Value]
				if !ok {
					continue
				}
				n, err := mergeNode(existing.Content[i+1], child)
				if err != nil {
					return nil, err
				}
				out.Content = append(out.Content, k, n)
				seen[k.Value] = true
			}
			for _, k := range projection.SortedKeys(val) {
				if seen[k] {
					continue
				}
				n, err := mergeNode(nil, val[k])
				if err != nil {
					return nil, err
				}
				out.Content = append(out.Content, keyNode(k), n)
			}
			return out, nil
		}

	case []any:
		if existing != nil && existing.Kind == yaml.SequenceNode {
			out := &yaml.Node{
				Kind:        yaml.SequenceNode,
				Tag:         existing.Tag,
				Style:       existing.Style,
				HeadComment: existing.HeadComment,
				LineComment: existing.LineComment,
				FootComment: existing.FootComment,
			}
			for i, item := range val {
				var prev *yaml.Node
				if i < len(existing.Content) {
					prev = existing.Content[i]
				}
				n, err := mergeNode(prev, item)
				if err != nil {
					return nil, err
				}
				out.Content = append(out.Content, n)
			}
			return out, nil
		}
	}

	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Kind == yaml.ScalarNode && n.Kind == yaml.ScalarNode && existing.Value == n.Value {
			return existing, nil
		}
		n.HeadComment = existing.HeadComment
		n.LineComment = existing.LineComment
		n.FootComment = existing.FootComment
	}
	return n, nil
}
