// SPDX-License-Identifier: AGPL-3.0-or-later

package checks

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/bartekus/policycomposer/internal/build"
	"github.com/bartekus/policycomposer/internal/config"
	"github.com/bartekus/policycomposer/internal/render"
)

// OutputPDF opens every generated PDF, requires at least one page and, when
// the document is known from the policy order, its title on the first page.
type OutputPDF struct{}

func (OutputPDF) ID() string { return "output:pdf" }

func (c OutputPDF) Run(_ context.Context, deps *Deps) Result {
	layout := build.Layout{Root: deps.OutputDir}
	files, err := filepath.Glob(filepath.Join(layout.PDFDir(), "*.pdf"))
	if err != nil {
		return fail(c.ID(), err.Error())
	}
	if len(files) == 0 {
		return skip(c.ID(), "no PDFs under "+layout.PDFDir())
	}
	sort.Strings(files)

	titles := expectedTitles(deps, layout)

	var failures []string
	for _, f := range files {
		name := filepath.Base(f)
		text, pages, err := firstPageText(f)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if pages < 1 {
			failures = append(failures, name+": no pages")
			continue
		}
		if title, ok := titles[name]; ok && !strings.Contains(squash(text), squash(title)) {
			failures = append(failures, fmt.Sprintf("%s: title %q not found on first page", name, title))
		}
	}

	if len(failures) > 0 {
		return fail(c.ID(), bullets(failures))
	}
	return pass(c.ID(), fmt.Sprintf("%d PDFs checked", len(files)))
}

// expectedTitles maps PDF file names to document titles. Names that cannot
// be rendered are left out rather than failing the check.
func expectedTitles(deps *Deps, layout build.Layout) map[string]string {
	titles := map[string]string{}

	cfg, err := config.Load(deps.ConfigPath)
	if err != nil {
		deps.log().WithError(err).Debug("config unavailable; titles not checked")
		return titles
	}
	titles[build.ManualFile] = cfg.ManualTitle

	reg, err := loadOrder(deps)
	if err != nil {
		deps.log().WithError(err).Debug("policy order unavailable; titles not checked")
		return titles
	}
	for _, it := range reg.Items {
		out, err := render.RenderString("output", it.Output, cfg.Bindings())
		if err != nil {
			continue
		}
		title, err := render.RenderString("title", it.TitleTemplate(), cfg.Bindings())
		if err != nil {
			continue
		}
		titles[filepath.Base(layout.PDFPath(out))] = title
	}
	return titles
}

func firstPageText(path string) (text string, pages int, err error) {
	// The reader panics on some malformed files.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed PDF: %v", p)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	pages = r.NumPage()
	if pages < 1 {
		return "", pages, nil
	}

	p := r.Page(1)
	if p.V.IsNull() {
		return "", pages, nil
	}
	text, err = p.GetPlainText(nil)
	if err != nil {
		return "", pages, fmt.Errorf("extracting text: %w", err)
	}
	return text, pages, nil
}

// squash drops whitespace and case; PDF text extraction rarely keeps spacing.
func squash(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
