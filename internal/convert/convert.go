// SPDX-License-Identifier: AGPL-3.0-or-later

/*
PolicyComposer - PolicyComposer renders versioned compliance and policy documents from a shared YAML configuration, policy templates and Git history.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package convert turns Markdown into PDF and ODT documents.
package convert

import (
	"context"
	"fmt"
	"strings"
)

// Format is an output document format.
type Format string

const (
	PDF Format = "pdf"
	ODT Format = "odt"
)

// Fonts selects the PDF typefaces.
type Fonts struct {
	Main   string
	Header string
	Code   string
}

// Options carries document metadata and layout switches.
type Options struct {
	Title          string
	Author         string
	Fonts          Fonts
	ReferenceDoc   string
	TOC            bool
	TOCDepth       int
	NumberSections bool
}

// Job is one conversion: Markdown in, one file out.
type Job struct {
	Markdown string
	Output   string
	Format   Format
	Options  Options
}

// Converter performs conversions. Implementations block until the output
// is written or the conversion fails.
type Converter interface {
	Convert(ctx context.Context, job Job) error
}

// Error reports a failed conversion with the tool's diagnostic output.
type Error struct {
	Output   string
	Stderr   string
	TimedOut bool
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.TimedOut {
		fmt.Fprintf(&b, "conversion of %s timed out", e.Output)
	} else {
		fmt.Fprintf(&b, "conversion of %s failed: %v", e.Output, e.Err)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }
