// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bartekus/policycomposer/internal/testutil/golden"
)

func TestRenderTable_Empty(t *testing.T) {
	assert.Equal(t, "", RenderTable(nil))
	assert.Equal(t, "", RenderTable([]CommitRecord{}))
}

func TestRenderTable_Golden(t *testing.T) {
	commits := Select(scenarioCommits(), scenarioCurrent(), true, DefaultPolicy())
	golden.Assert(t, golden.TestdataDir(t), "global_append", RenderTable(commits))
}

func TestRenderTable_OrdinaryBuildSingleRow(t *testing.T) {
	out := RenderTable(Select(scenarioCommits(), scenarioCurrent(), false, DefaultPolicy()))

	lines := strings.Split(strings.TrimSpace(out), "\n")
	// heading, blank, header, separator, one row
	assert.Len(t, lines, 5)
	assert.Equal(t, "## Version History", lines[0])
	assert.Equal(t, "| 2025-01-02 | Jane Doe | aaa1111 | RELEASE: fix typo |", lines[4])
}

func TestRenderTable_TruncatesHashAndKeepsOrder(t *testing.T) {
	out := RenderTable([]CommitRecord{
		{Hash: "0000000000000000000000000000000000000002", AuthorName: "B", Date: "2025-03-01", Subject: "RELEASE: newer"},
		{Hash: "0000000000000000000000000000000000000001", AuthorName: "A", Date: "2025-04-01", Subject: "RELEASE: older but later date"},
	})

	assert.NotContains(t, out, "00000000")
	first := strings.Index(out, "RELEASE: newer")
	second := strings.Index(out, "RELEASE: older")
	assert.True(t, first > 0 && second > first, "renderer must not reorder rows")
}

func TestFragment(t *testing.T) {
	snap := &Snapshot{
		CurrentBuild: scenarioCurrent(),
		Files:        map[string][]CommitRecord{"access.md": scenarioCommits()},
	}

	assert.Contains(t, Fragment(snap, "access.md", DefaultPolicy()), "| aaa1111 |")
	assert.Equal(t, "", Fragment(snap, "missing.md", DefaultPolicy()))
	assert.Equal(t, "", Fragment(Empty(), "access.md", DefaultPolicy()))
	assert.Equal(t, "", Fragment(nil, "access.md", DefaultPolicy()))
}
