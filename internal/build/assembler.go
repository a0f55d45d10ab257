// SPDX-License-Identifier: AGPL-3.0-or-later

/*
PolicyComposer - PolicyComposer renders versioned compliance and policy documents from a shared YAML configuration, policy templates and Git history.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package build assembles policy documents: it renders each ordered
// template, stamps it with its version history, writes the Markdown and
// converts the PDF and ODT variants, then converts the combined manual.
//
// The build is all or nothing. Every document is rendered before anything
// is written, and the first conversion failure stops the run.
package build

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/bartekus/policycomposer/internal/config"
	"github.com/bartekus/policycomposer/internal/convert"
	"github.com/bartekus/policycomposer/internal/history"
	"github.com/bartekus/policycomposer/internal/projection"
	"github.com/bartekus/policycomposer/internal/render"
	"github.com/bartekus/policycomposer/pkg/order"
)

// Document is one rendered policy and its three output variants.
type Document struct {
	Source string
	Output string
	Title  string

	Body    string
	History string

	Markdown     string
	PDFSource    string
	ManualSource string
}

// Result lists what a build wrote.
type Result struct {
	Markdown []string
	PDF      []string
	ODT      []string
	Manual   string
}

// Assembler runs the build for one config, order and history snapshot.
type Assembler struct {
	Config    *config.Config
	Order     *order.Registry
	Templates *render.Engine
	History   *history.Snapshot
	Converter convert.Converter
	Layout    Layout
	Log       logrus.FieldLogger
}

// Prepare renders one policy item. It performs no I/O beyond reading the
// template.
func (a *Assembler) Prepare(it order.Item) (*Document, error) {
	bindings := a.Config.Bindings()

	output, err := render.RenderString("output of "+it.Source, it.Output, bindings)
	if err != nil {
		return nil, Wrap(ErrTemplate, it.Source, err)
	}
	if err := checkOutputName(output); err != nil {
		return nil, Wrap(ErrConfig, it.Source, err)
	}

	title, err := render.RenderString("title of "+it.Source, it.TitleTemplate(), bindings)
	if err != nil {
		return nil, Wrap(ErrTemplate, it.Source, err)
	}

	body, err := a.Templates.Render(it.Source, bindings)
	if err != nil {
		return nil, Wrap(ErrTemplate, it.Source, err)
	}

	fragment := history.Fragment(a.History, it.Source, a.Config.HistoryPolicy())

	return &Document{
		Source:       it.Source,
		Output:       output,
		Title:        title,
		Body:         body,
		History:      fragment,
		Markdown:     withHistory(body, fragment, a.Config.MarkdownShowHistory),
		PDFSource:    withHistory(body, fragment, a.Config.PDFShowHistory),
		ManualSource: withHistory(body, fragment, a.Config.ManualShowHistory),
	}, nil
}

func withHistory(body, fragment string, show bool) string {
	if show {
		return body + fragment
	}
	return body
}

// PrepareAll validates the order and renders every item in order,
// stopping at the first failure.
func (a *Assembler) PrepareAll() ([]*Document, error) {
	if err := a.Order.Validate(); err != nil {
		return nil, Wrap(ErrConfig, "", err)
	}
	if err := a.Order.ValidateSources(a.Templates.Dir()); err != nil {
		return nil, Wrap(ErrTemplate, "", err)
	}

	docs := make([]*Document, 0, len(a.Order.Items))
	seen := make(map[string]string, len(a.Order.Items))
	for _, it := range a.Order.Items {
		doc, err := a.Prepare(it)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[doc.Output]; ok {
			return nil, Wrap(ErrConfig, it.Source, fmt.Errorf("output %q already produced by %s", doc.Output, prev))
		}
		seen[doc.Output] = it.Source
		docs = append(docs, doc)
	}
	return docs, nil
}

// Build renders every document, writes and converts them, and converts the
// combined manual.
func (a *Assembler) Build(ctx context.Context) (*Result, error) {
	log := a.logger()

	docs, err := a.PrepareAll()
	if err != nil {
		return nil, err
	}

	if err := a.Layout.Prepare(); err != nil {
		return nil, err
	}

	res := &Result{}
	var manual Manual
	for _, doc := range docs {
		entry := log.WithFields(logrus.Fields{"policy": doc.Source, "output": doc.Output})

		mdPath := a.Layout.MarkdownPath(doc.Output)
		if err := projection.AtomicWrite(mdPath, []byte(doc.Markdown)); err != nil {
			return res, err
		}
		res.Markdown = append(res.Markdown, mdPath)

		opts := a.documentOptions(doc.Title)
		pdfPath := a.Layout.PDFPath(doc.Output)
		if err := a.convert(ctx, doc, pdfPath, convert.PDF, opts); err != nil {
			return res, err
		}
		res.PDF = append(res.PDF, pdfPath)

		odtPath := a.Layout.ODTPath(doc.Output)
		if err := a.convert(ctx, doc, odtPath, convert.ODT, opts); err != nil {
			return res, err
		}
		res.ODT = append(res.ODT, odtPath)

		if err := projection.AtomicWrite(a.Layout.StagedPath(doc.Output), []byte(doc.ManualSource)); err != nil {
			return res, err
		}
		manual.Stage(doc.Output, doc.ManualSource)

		entry.Info("built policy")
	}

	if manual.Len() == 0 {
		log.Warn("no policies staged; skipping combined manual")
		return res, nil
	}

	manualPath := a.Layout.ManualPath()
	if err := manual.Build(ctx, a.Converter, manualPath, a.manualOptions()); err != nil {
		return res, err
	}
	res.Manual = manualPath
	log.WithFields(logrus.Fields{"output": manualPath, "sections": manual.Names()}).Info("built combined manual")

	return res, nil
}

func (a *Assembler) convert(ctx context.Context, doc *Document, out string, format convert.Format, opts convert.Options) error {
	job := convert.Job{Markdown: doc.PDFSource, Output: out, Format: format, Options: opts}
	return Wrap(ErrConversion, doc.Source, a.Converter.Convert(ctx, job))
}

func (a *Assembler) fonts() convert.Fonts {
	return convert.Fonts{
		Main:   a.Config.PDFMainFont,
		Header: a.Config.PDFHeaderFont,
		Code:   a.Config.PDFCodeFont,
	}
}

func (a *Assembler) documentOptions(title string) convert.Options {
	return convert.Options{
		Title:        title,
		Fonts:        a.fonts(),
		ReferenceDoc: a.Config.ODTReferenceDoc,
	}
}

func (a *Assembler) manualOptions() convert.Options {
	return convert.Options{
		Title:  a.Config.ManualTitle,
		Author: a.Config.ManualAuthor,
		Fonts:  a.fonts(),
	}
}

func (a *Assembler) logger() logrus.FieldLogger {
	if a.Log != nil {
		return a.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
