// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/policycomposer/internal/history"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("company_name: Acme Health\n"))
	require.NoError(t, err)

	assert.Equal(t, "Acme Health", cfg.CompanyName)
	assert.False(t, cfg.MarkdownShowHistory)
	assert.Equal(t, "RELEASE:", cfg.ReleaseCommitPrefix)
	assert.Equal(t, history.Policy{ReleasePrefix: "RELEASE:", GlobalReleaseStyle: history.StyleAppend}, cfg.HistoryPolicy())
	assert.Equal(t, DefaultMainFont, cfg.PDFMainFont)
	assert.Equal(t, DefaultMainFont, cfg.PDFHeaderFont)
	assert.Equal(t, DefaultCodeFont, cfg.PDFCodeFont)
	assert.Equal(t, DefaultManualTitle, cfg.ManualTitle)
	assert.Equal(t, "Acme Health", cfg.ManualAuthor)
}

func TestParse_Explicit(t *testing.T) {
	cfg, err := Parse([]byte(`
company_name: Acme
md_show_revision_history: true
pdf_show_revision_history: false
combined_pdf_show_revision_history: true
release_commit_prefix: "HOTFIX:"
global_release_history_style: replace
pdf_main_font: Inter
combined_pdf_author: Compliance Team
vendors:
  - name: Cloudy
`))
	require.NoError(t, err)

	assert.True(t, cfg.MarkdownShowHistory)
	assert.False(t, cfg.PDFShowHistory)
	assert.True(t, cfg.ManualShowHistory)
	assert.Equal(t, history.Policy{ReleasePrefix: "HOTFIX:", GlobalReleaseStyle: history.StyleReplace}, cfg.HistoryPolicy())
	assert.Equal(t, "Inter", cfg.PDFHeaderFont)
	assert.Equal(t, "Compliance Team", cfg.ManualAuthor)

	vendors, ok := cfg.Bindings()["vendors"].([]any)
	require.True(t, ok)
	assert.Len(t, vendors, 1)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse([]byte("  \n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultManualAuthor, cfg.ManualAuthor)
	assert.NotNil(t, cfg.Bindings())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "bad style", data: "global_release_history_style: merge\n"},
		{name: "not a mapping", data: "- a\n- b\n"},
		{name: "bad yaml", data: "company_name: [\n"},
		{name: "wrong type", data: "md_show_revision_history: [1, 2]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
