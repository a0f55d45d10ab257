// SPDX-License-Identifier: AGPL-3.0-or-later

/*
PolicyComposer - PolicyComposer renders versioned compliance and policy documents from a shared YAML configuration, policy templates and Git history.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package checks runs repository health checks over the config, the policy
// templates, the history blob and the generated documents, and remembers
// failures so they can be re-run.
package checks

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// Deps are the paths and services checks read from.
type Deps struct {
	ConfigPath  string
	OrderPath   string
	PolicyDir   string
	HistoryPath string
	OutputDir   string
	Log         logrus.FieldLogger
}

// Check is one named health check.
type Check interface {
	// ID returns the unique identifier (e.g. "config:phi").
	ID() string

	// Run executes the check. Problems are reported in the Result, never panicked.
	Run(ctx context.Context, deps *Deps) Result
}

// Registry returns every check in canonical order.
func Registry() []Check {
	return []Check{
		ConfigPHI{},
		ConfigOrder{},
		TemplatesParse{},
		TemplatesOrphans{},
		HistoryBlob{},
		OutputPDF{},
	}
}

func (d *Deps) log() logrus.FieldLogger {
	if d.Log != nil {
		return d.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
