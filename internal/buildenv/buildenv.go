// SPDX-License-Identifier: AGPL-3.0-or-later

/*
PolicyComposer - PolicyComposer renders versioned compliance and policy documents from a shared YAML configuration, policy templates and Git history.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package buildenv resolves build settings from defaults, a .env file,
// POLICYCOMPOSER_* environment variables and command flags, in increasing
// precedence.
package buildenv

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/bartekus/policycomposer/internal/projectroot"
)

// EnvPrefix prefixes every environment variable read by the tool.
const EnvPrefix = "POLICYCOMPOSER"

// Setting keys.
const (
	KeyConfig        = "config"
	KeyOrder         = "order"
	KeyPolicies      = "policies"
	KeyHistory       = "history"
	KeyOutput        = "output"
	KeyUserMap       = "usermap"
	KeySchema        = "schema"
	KeyPandoc        = "pandoc"
	KeyTimeout       = "timeout"
	KeyGlobalRelease = "global_release"
	KeyAddr          = "addr"
	KeyStateDir      = "state_dir"
)

var defaults = map[string]any{
	KeyConfig:        "conf/config.yaml",
	KeyOrder:         "conf/policy_order.yaml",
	KeyPolicies:      "policies",
	KeyHistory:       "build/git_history.json",
	KeyOutput:        "output",
	KeyUserMap:       "conf/usermap.json",
	KeySchema:        "conf/ui_schema.yaml",
	KeyPandoc:        "pandoc",
	KeyTimeout:       "5m",
	KeyGlobalRelease: false,
	KeyAddr:          "127.0.0.1:8501",
	KeyStateDir:      "build/checks",
}

// Settings are resolved build settings. Paths are absolute.
type Settings struct {
	Root          string
	ConfigPath    string
	OrderPath     string
	PolicyDir     string
	HistoryPath   string
	OutputDir     string
	UserMapPath   string
	SchemaPath    string
	StateDir      string
	Pandoc        string
	Timeout       time.Duration
	GlobalRelease bool
	Addr          string
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads root/.env into the process environment without
// overriding variables that are already set. A missing file is fine.
func LoadDotEnv(root string) error {
	err := godotenv.Load(filepath.Join(root, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Resolve reads v into Settings, resolving relative paths against root.
func Resolve(v *viper.Viper, root string) (*Settings, error) {
	timeout, err := time.ParseDuration(v.GetString(KeyTimeout))
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", KeyTimeout, v.GetString(KeyTimeout), err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid %s %q: must be positive", KeyTimeout, v.GetString(KeyTimeout))
	}

	path := func(key string) string {
		return projectroot.Resolve(root, v.GetString(key))
	}

	return &Settings{
		Root:          root,
		ConfigPath:    path(KeyConfig),
		OrderPath:     path(KeyOrder),
		PolicyDir:     path(KeyPolicies),
		HistoryPath:   path(KeyHistory),
		OutputDir:     path(KeyOutput),
		UserMapPath:   path(KeyUserMap),
		SchemaPath:    path(KeySchema),
		StateDir:      path(KeyStateDir),
		Pandoc:        v.GetString(KeyPandoc),
		Timeout:       timeout,
		GlobalRelease: v.GetBool(KeyGlobalRelease),
		Addr:          v.GetString(KeyAddr),
	}, nil
}

// Root finds the project root from the working directory, falling back to
// the working directory itself.
func Root(wd string) string {
	root, err := projectroot.Find(wd)
	if err != nil {
		return wd
	}
	return root
}

// ReferenceDoc resolves the configured ODT reference document against root.
func (s *Settings) ReferenceDoc(configured string) string {
	return projectroot.Resolve(s.Root, configured)
}
