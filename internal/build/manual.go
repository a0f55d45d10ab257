// SPDX-License-Identifier: AGPL-3.0-or-later

package build

import (
	"context"
	"strings"

	"github.com/bartekus/policycomposer/internal/convert"
)

// ManualTOCDepth is the table-of-contents depth of the combined manual.
const ManualTOCDepth = 2

// Manual collects per-document sections, in policy order, for the combined manual.
type Manual struct {
	names    []string
	sections []string
}

// Stage appends one section.
func (m *Manual) Stage(name, text string) {
	m.names = append(m.names, name)
	m.sections = append(m.sections, text)
}

// Len reports the number of staged sections.
func (m *Manual) Len() int { return len(m.sections) }

// Names returns the staged section names in order.
func (m *Manual) Names() []string { return append([]string(nil), m.names...) }

// Text concatenates the staged sections with a blank line between them.
func (m *Manual) Text() string {
	return strings.Join(m.sections, "\n\n")
}

// Job builds the single conversion job for the manual.
func (m *Manual) Job(output string, opts convert.Options) convert.Job {
	opts.TOC = true
	opts.TOCDepth = ManualTOCDepth
	opts.NumberSections = true
	return convert.Job{
		Markdown: m.Text(),
		Output:   output,
		Format:   convert.PDF,
		Options:  opts,
	}
}

// Build converts the manual. Any conversion failure is returned as ErrConversion.
func (m *Manual) Build(ctx context.Context, conv convert.Converter, output string, opts convert.Options) error {
	return Wrap(ErrConversion, "", conv.Convert(ctx, m.Job(output, opts)))
}
