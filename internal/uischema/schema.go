// SPDX-License-Identifier: AGPL-3.0-or-later

/*
PolicyComposer - PolicyComposer renders versioned compliance and policy documents from a shared YAML configuration, policy templates and Git history.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package uischema loads conf/ui_schema.yaml, which describes how the config
// editor lays out and edits each config key.
package uischema

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Widget names with behavior beyond plain display.
const (
	WidgetListOfObjects       = "list_of_objects"
	WidgetDictOfListOfObjects = "dict_of_list_of_objects"
	WidgetTextArea            = "text_area"
	WidgetMultiselect         = "multiselect"
	WidgetContainer           = "container"
)

// Field describes one editable config key.
type Field struct {
	Key     string   `json:"key"`
	Widget  string   `json:"widget,omitempty"`
	Label   string   `json:"label"`
	Help    string   `json:"help,omitempty"`
	Options []string `json:"options,omitempty"`
	// Object lists the fields of each item for list widgets.
	Object []Field `json:"object,omitempty"`
	// Fields holds nested field definitions (dict_group and similar).
	Fields []Field `json:"fields,omitempty"`
}

// IsList reports whether the field edits objects identified by _id.
func (f Field) IsList() bool {
	return f.Widget == WidgetListOfObjects || f.Widget == WidgetDictOfListOfObjects
}

// Section is a top-level group of fields.
type Section struct {
	Key     string  `json:"key"`
	Widget  string  `json:"widget"`
	Label   string  `json:"label"`
	Help    string  `json:"help,omitempty"`
	Columns int     `json:"columns,omitempty"`
	Fields  []Field `json:"fields"`
}

// Schema is the ordered list of sections.
type Schema struct {
	Sections []Section `json:"sections"`
}

// Load reads and parses a schema file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from build settings
	if err != nil {
		return nil, fmt.Errorf("reading UI schema: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("UI schema %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a schema, keeping the file's key order.
func Parse(data []byte) (*Schema, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	s := &Schema{Sections: []Section{}}
	if len(root.Content) == 0 {
		return s, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("schema must be a mapping of sections (line %d)", doc.Line)
	}

	for key, node := range pairs(doc) {
		if strings.HasPrefix(key, "_") {
			continue
		}
		if node.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("section %s (line %d) must be a mapping", key, node.Line)
		}
		sec := Section{
			Key:    key,
			Widget: scalar(node, "_widget"),
			Label:  scalar(node, "_label"),
			Help:   scalar(node, "_help"),
		}
		if sec.Widget == "" {
			sec.Widget = WidgetContainer
		}
		if sec.Label == "" {
			sec.Label = Title(key)
		}
		if c := lookup(node, "_columns"); c != nil {
			if err := c.Decode(&sec.Columns); err != nil {
				return nil, fmt.Errorf("section %s _columns: %w", key, err)
			}
		}
		fields, err := parseFields(node)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", key, err)
		}
		sec.Fields = fields
		s.Sections = append(s.Sections, sec)
	}
	return s, nil
}

func parseFields(node *yaml.Node) ([]Field, error) {
	fields := []Field{}
	for key, def := range pairs(node) {
		if strings.HasPrefix(key, "_") || def.Kind != yaml.MappingNode {
			continue
		}
		f := Field{
			Key:    key,
			Widget: scalar(def, "_widget"),
			Label:  scalar(def, "label"),
			Help:   scalar(def, "help"),
		}
		if f.Widget == "" {
			f.Widget = scalar(def, "widget")
		}
		if f.Label == "" {
			f.Label = scalar(def, "_label")
		}
		if f.Label == "" {
			f.Label = Title(key)
		}
		if opts := lookup(def, "options"); opts != nil {
			if err := opts.Decode(&f.Options); err != nil {
				return nil, fmt.Errorf("field %s options (line %d): %w", key, opts.Line, err)
			}
		}
		if obj := lookup(def, "_object_schema"); obj != nil && obj.Kind == yaml.MappingNode {
			object, err := parseFields(obj)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", key, err)
			}
			f.Object = object
		}
		nested, err := parseFields(def)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		if len(nested) > 0 {
			f.Fields = nested
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// ListFields returns every list widget in schema order, at any depth.
func (s *Schema) ListFields() []Field {
	var out []Field
	var walk func([]Field)
	walk = func(fields []Field) {
		for _, f := range fields {
			if f.IsList() {
				out = append(out, f)
				continue
			}
			walk(f.Fields)
		}
	}
	for _, sec := range s.Sections {
		walk(sec.Fields)
	}
	return out
}

// ListField finds the list widget for a top-level config key.
func (s *Schema) ListField(key string) (Field, bool) {
	for _, f := range s.ListFields() {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Title turns a snake_case key into a display label.
func Title(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// pairs iterates a mapping node in document order.
func pairs(m *yaml.Node) func(yield func(string, *yaml.Node) bool) {
	return func(yield func(string, *yaml.Node) bool) {
		for i := 0; i+1 < len(m.Content); i += 2 {
			if !yield(m.Content[i].Value, m.Content[i+1]) {
				return
			}
		}
	}
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for k, v := range pairs(m) {
		if k == key {
			return v
		}
	}
	return nil
}

func scalar(m *yaml.Node, key string) string {
	if n := lookup(m, key); n != nil && n.Kind == yaml.ScalarNode {
		return n.Value
	}
	return ""
}
