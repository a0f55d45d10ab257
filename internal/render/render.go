// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render substitutes config bindings into policy templates.
//
// Templates use text/template syntax ({{ .company_name }}). A reference to
// a key that is not in the bindings is an error, so a typo in a policy
// never ships as an empty string.
package render

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
)

// ErrTemplateNotFound is returned when a named template does not exist.
var ErrTemplateNotFound = errors.New("template not found")

var funcs = template.FuncMap{
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"join":  join,
	"yesno": func(b bool, yes, no string) string {
		if b {
			return yes
		}
		return no
	},
}

// Engine renders templates stored under a policy directory.
type Engine struct {
	dir string
}

// New returns an Engine rooted at dir.
func New(dir string) *Engine {
	return &Engine{dir: dir}
}

// Dir returns the template root.
func (e *Engine) Dir() string { return e.dir }

// Render loads the named template from the policy directory and executes it.
func (e *Engine) Render(name string, bindings map[string]any) (string, error) {
	text, err := e.read(name)
	if err != nil {
		return "", err
	}
	return RenderString(name, text, bindings)
}

// Parse checks that the named template exists and parses.
func (e *Engine) Parse(name string) error {
	text, err := e.read(name)
	if err != nil {
		return err
	}
	_, err = parse(name, text)
	return err
}

// Templates lists .md files under the policy directory as slash-separated
// paths relative to it, sorted.
func (e *Engine) Templates() ([]string, error) {
	var out []string
	err := filepath.WalkDir(e.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}
		rel, err := filepath.Rel(e.dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing templates in %s: %w", e.dir, err)
	}
	sort.Strings(out)
	return out, nil
}

func (e *Engine) read(name string) (string, error) {
	path := filepath.Join(e.dir, filepath.FromSlash(name))
	data, err := os.ReadFile(path) //nolint:gosec // G304: name comes from the policy order file
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return "", fmt.Errorf("reading template %s: %w", path, err)
	}
	return string(data), nil
}

// RenderString executes an inline template. name is used in error messages.
func RenderString(name, text string, bindings map[string]any) (string, error) {
	tmpl, err := parse(name, text)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, bindings); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return b.String(), nil
}

func parse(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Funcs(funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return tmpl, nil
}

func join(sep string, v any) (string, error) {
	switch items := v.(type) {
	case []string:
		return strings.Join(items, sep), nil
	case []any:
		parts := make([]string, 0, len(items))
		for _, it := range items {
			parts = append(parts, fmt.Sprint(it))
		}
		return strings.Join(parts, sep), nil
	default:
		return "", fmt.Errorf("join: unsupported type %T", v)
	}
}
