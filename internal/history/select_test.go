// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioCommits() []CommitRecord {
	return []CommitRecord{
		{Hash: "aaa1111", AuthorName: "Jane Doe", Date: "2025-01-02", Subject: "RELEASE: fix typo"},
		{Hash: "bbb2222", AuthorName: "Jane Doe", Date: "2025-01-01", Subject: "wip"},
	}
}

func scenarioCurrent() *CommitRecord {
	return &CommitRecord{Hash: "ccc3333", AuthorName: "CI Bot", Date: "2025-02-03", Subject: "chore: bump"}
}

func hashes(commits []CommitRecord) []string {
	out := make([]string, 0, len(commits))
	for _, c := range commits {
		out = append(out, c.Hash)
	}
	return out
}

func TestSelect_Scenarios(t *testing.T) {
	replace := Policy{ReleasePrefix: "RELEASE:", GlobalReleaseStyle: StyleReplace}

	tests := []struct {
		name    string
		global  bool
		policy  Policy
		want    []string
		current *CommitRecord
	}{
		{name: "no current build", global: true, policy: DefaultPolicy(), current: nil, want: []string{}},
		{name: "ordinary build keeps prefixed", global: false, policy: DefaultPolicy(), current: scenarioCurrent(), want: []string{"aaa1111"}},
		{name: "global append stamps first", global: true, policy: DefaultPolicy(), current: scenarioCurrent(), want: []string{"ccc3333", "aaa1111"}},
		{name: "global replace", global: true, policy: replace, current: scenarioCurrent(), want: []string{"ccc3333"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(scenarioCommits(), tt.current, tt.global, tt.policy)
			assert.Equal(t, tt.want, hashes(got))
		})
	}
}

func TestSelect_OrdinaryBuildIsVerbatimPrefixFilter(t *testing.T) {
	full := []CommitRecord{
		{Hash: "1111111", Subject: "RELEASE: third"},
		{Hash: "2222222", Subject: "docs"},
		{Hash: "3333333", Subject: "RELEASE: second"},
		{Hash: "4444444", Subject: "release: lowercase does not count"},
		{Hash: "5555555", Subject: " RELEASE: leading space does not count"},
		{Hash: "6666666", Subject: "RELEASE: first"},
	}

	got := Select(full, scenarioCurrent(), false, DefaultPolicy())
	assert.Equal(t, []CommitRecord{full[0], full[2], full[5]}, got)
}

func TestSelect_GlobalCommitAlsoPrefixedAppearsOnce(t *testing.T) {
	current := &CommitRecord{Hash: "ddd4444", Subject: "RELEASE: annual review"}
	full := []CommitRecord{
		{Hash: "aaa1111", Subject: "RELEASE: fix typo"},
		*current,
		{Hash: "bbb2222", Subject: "RELEASE: older"},
	}

	got := Select(full, current, true, DefaultPolicy())
	assert.Equal(t, []string{"ddd4444", "aaa1111", "bbb2222"}, hashes(got))
}

func TestSelect_GlobalCommitPresentButUnprefixedIsStillFirst(t *testing.T) {
	current := &CommitRecord{Hash: "ddd4444", Subject: "bump everything"}
	full := []CommitRecord{
		{Hash: "aaa1111", Subject: "RELEASE: fix typo"},
		*current,
	}

	got := Select(full, current, true, DefaultPolicy())
	assert.Equal(t, []string{"ddd4444", "aaa1111"}, hashes(got))
}

func TestSelect_ReplaceIgnoresHotfixes(t *testing.T) {
	full := []CommitRecord{
		{Hash: "aaa1111", Subject: "RELEASE: one"},
		{Hash: "bbb2222", Subject: "RELEASE: two"},
		{Hash: "ccc3333", Subject: "RELEASE: three"},
	}
	current := &CommitRecord{Hash: "bbb2222", Subject: "RELEASE: two"}

	got := Select(full, current, true, Policy{ReleasePrefix: "RELEASE:", GlobalReleaseStyle: StyleReplace})
	require.Len(t, got, 1)
	assert.Equal(t, *current, got[0])
}

func TestSelect_NeverReturnsDuplicateHashes(t *testing.T) {
	full := []CommitRecord{
		{Hash: "aaa1111", Subject: "RELEASE: a"},
		{Hash: "aaa1111", Subject: "RELEASE: a"},
		{Hash: "bbb2222", Subject: "RELEASE: b"},
		{Hash: "ccc3333", Subject: "RELEASE: c"},
		{Hash: "bbb2222", Subject: "RELEASE: b"},
	}
	currents := []*CommitRecord{
		nil,
		{Hash: "aaa1111", Subject: "RELEASE: a"},
		{Hash: "zzz9999", Subject: "RELEASE: z"},
		{Hash: "yyy8888", Subject: "other"},
	}

	for _, current := range currents {
		for _, global := range []bool{false, true} {
			for _, style := range []Style{StyleAppend, StyleReplace} {
				got := Select(full, current, global, Policy{ReleasePrefix: "RELEASE:", GlobalReleaseStyle: style})
				seen := map[string]bool{}
				for _, c := range got {
					assert.False(t, seen[c.Hash], "duplicate hash %s (global=%v style=%s)", c.Hash, global, style)
					seen[c.Hash] = true
				}
			}
		}
	}
}

func TestSelect_DoesNotMutateSharedHistory(t *testing.T) {
	shared := scenarioCommits()
	before := append([]CommitRecord(nil), shared...)

	snap := &Snapshot{
		CurrentBuild:  scenarioCurrent(),
		GlobalRelease: true,
		Files: map[string][]CommitRecord{
			"a.md": shared,
			"b.md": shared,
		},
	}

	first := Select(snap.Commits("a.md"), snap.Current(), snap.GlobalRelease, DefaultPolicy())
	first[0].Subject = "mutated by caller"

	second := Select(snap.Files["b.md"], snap.CurrentBuild, snap.GlobalRelease, DefaultPolicy())

	assert.Equal(t, before, shared)
	assert.Equal(t, []string{"ccc3333", "aaa1111"}, hashes(second))
	assert.Equal(t, "chore: bump", second[0].Subject)
	assert.Equal(t, "chore: bump", snap.CurrentBuild.Subject)
}

func TestSelect_ResultDoesNotAliasInput(t *testing.T) {
	full := []CommitRecord{{Hash: "aaa1111", Subject: "RELEASE: fix"}}
	got := Select(full, scenarioCurrent(), false, DefaultPolicy())
	require.Len(t, got, 1)

	got[0].Subject = "changed"
	assert.Equal(t, "RELEASE: fix", full[0].Subject)
}

func TestSelect_CustomPrefix(t *testing.T) {
	full := []CommitRecord{
		{Hash: "aaa1111", Subject: "HOTFIX(policy): access review"},
		{Hash: "bbb2222", Subject: "RELEASE: not ours"},
	}
	got := Select(full, scenarioCurrent(), false, Policy{ReleasePrefix: "HOTFIX(policy):", GlobalReleaseStyle: StyleAppend})
	assert.Equal(t, []string{"aaa1111"}, hashes(got))
}

func TestParseStyle(t *testing.T) {
	s, err := ParseStyle("")
	require.NoError(t, err)
	assert.Equal(t, StyleAppend, s)

	s, err = ParseStyle("replace")
	require.NoError(t, err)
	assert.Equal(t, StyleReplace, s)

	_, err = ParseStyle("merge")
	assert.Error(t, err)
}

func TestCommitRecord_ShortHash(t *testing.T) {
	assert.Equal(t, "0123456", CommitRecord{Hash: "0123456789abcdef"}.ShortHash())
	assert.Equal(t, "abc", CommitRecord{Hash: "abc"}.ShortHash())
}
