// SPDX-License-Identifier: AGPL-3.0-or-later

/*
PolicyComposer - PolicyComposer renders versioned compliance and policy documents from a shared YAML configuration, policy templates and Git history.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package config loads conf/config.yaml, the single source of truth that
// feeds both template bindings and the build's own switches.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bartekus/policycomposer/internal/history"
)

// Defaults applied when the corresponding key is absent or empty.
const (
	DefaultMainFont      = "Noto Sans"
	DefaultCodeFont      = "Noto Sans Mono"
	DefaultManualTitle   = "Company Policy Manual"
	DefaultManualAuthor  = "Company"
	DefaultHistoryStyle  = string(history.StyleAppend)
	DefaultReleasePrefix = history.DefaultReleasePrefix
)

// ErrNotMapping is returned when the config document is not a YAML mapping.
var ErrNotMapping = errors.New("config must be a YAML mapping at the top level")

// Config holds the keys the build itself interprets. Every other key is
// only visible to templates through Bindings.
type Config struct {
	CompanyName string `yaml:"company_name"`

	MarkdownShowHistory bool `yaml:"md_show_revision_history"`
	PDFShowHistory      bool `yaml:"pdf_show_revision_history"`
	ManualShowHistory   bool `yaml:"combined_pdf_show_revision_history"`

	ReleaseCommitPrefix       string `yaml:"release_commit_prefix"`
	GlobalReleaseHistoryStyle string `yaml:"global_release_history_style"`

	PDFMainFont     string `yaml:"pdf_main_font"`
	PDFHeaderFont   string `yaml:"pdf_header_font"`
	PDFCodeFont     string `yaml:"pdf_code_font"`
	ODTReferenceDoc string `yaml:"pdf_odt_reference_doc"`

	ManualTitle  string `yaml:"combined_pdf_title"`
	ManualAuthor string `yaml:"combined_pdf_author"`

	style    history.Style
	bindings map[string]any
}

// Load reads, decodes, defaults and validates the config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from build settings
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes config bytes. An empty document is an empty config.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{bindings: map[string]any{}}

	if len(bytes.TrimSpace(data)) > 0 {
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
		if len(root.Content) > 0 {
			doc := root.Content[0]
			if doc.Kind != yaml.MappingNode {
				return nil, ErrNotMapping
			}
			if err := doc.Decode(cfg); err != nil {
				return nil, fmt.Errorf("decoding config: %w", err)
			}
			if err := doc.Decode(&cfg.bindings); err != nil {
				return nil, fmt.Errorf("decoding template bindings: %w", err)
			}
		}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ReleaseCommitPrefix == "" {
		c.ReleaseCommitPrefix = DefaultReleasePrefix
	}
	if c.GlobalReleaseHistoryStyle == "" {
		c.GlobalReleaseHistoryStyle = DefaultHistoryStyle
	}
	if c.PDFMainFont == "" {
		c.PDFMainFont = DefaultMainFont
	}
	if c.PDFHeaderFont == "" {
		c.PDFHeaderFont = c.PDFMainFont
	}
	if c.PDFCodeFont == "" {
		c.PDFCodeFont = DefaultCodeFont
	}
	if c.ManualTitle == "" {
		c.ManualTitle = DefaultManualTitle
	}
	if c.ManualAuthor == "" {
		c.ManualAuthor = c.CompanyName
	}
	if c.ManualAuthor == "" {
		c.ManualAuthor = DefaultManualAuthor
	}
}

func (c *Config) validate() error {
	style, err := history.ParseStyle(c.GlobalReleaseHistoryStyle)
	if err != nil {
		return fmt.Errorf("global_release_history_style: %w", err)
	}
	c.style = style
	return nil
}

// HistoryPolicy returns the selection policy configured for this build.
func (c *Config) HistoryPolicy() history.Policy {
	return history.Policy{
		ReleasePrefix:      c.ReleaseCommitPrefix,
		GlobalReleaseStyle: c.style,
	}
}

// Bindings returns the full config mapping exposed to templates.
// Callers must treat it as read-only.
func (c *Config) Bindings() map[string]any {
	return c.bindings
}
