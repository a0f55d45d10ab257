// SPDX-License-Identifier: AGPL-3.0-or-later

package gitlog

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterFiles(t *testing.T) {
	tests := []struct {
		name     string
		paths    []string
		opts     FilterOptions
		expected []string
	}{
		{
			name:     "directory prefix",
			paths:    []string{"policies/a.md", "policiesx/b.md", "README.md", "policies/hr/c.md"},
			opts:     FilterOptions{Dir: "policies"},
			expected: []string{"policies/a.md", "policies/hr/c.md"},
		},
		{
			name:     "dot keeps everything",
			paths:    []string{"b.md", "a.md"},
			opts:     FilterOptions{Dir: "."},
			expected: []string{"a.md", "b.md"},
		},
		{
			name:     "templates below the policy directory",
			paths:    []string{"policies/a.md", "policies/logo.png", "policies/hr/c.md", "README.md"},
			opts:     FilterOptions{Dir: "policies", IncludeExtensions: []string{TemplateExt}},
			expected: []string{"policies/a.md", "policies/hr/c.md"},
		},
		{
			name:     "extension filter",
			paths:    []string{"a.md", "b.yaml", "c.md"},
			opts:     FilterOptions{IncludeExtensions: []string{".md"}},
			expected: []string{"a.md", "c.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FilterFiles(tt.paths, tt.opts))
		})
	}
}

func TestParseLog(t *testing.T) {
	out := "abc1234567\x00Jane\x002025-01-02\x00RELEASE: a | b\n" +
		"garbage line\n" +
		"\n" +
		"def7654321\x00Bot\x002025-01-01\x00wip\x00extra\n" +
		"0123456789\x00Bot\x002024-12-31\x00\n"

	commits, bad := parseLog(out)
	require.Len(t, commits, 2)
	assert.Equal(t, "abc1234567", commits[0].Hash)
	assert.Equal(t, "RELEASE: a | b", commits[0].Subject)
	assert.Equal(t, "", commits[1].Subject)
	assert.Len(t, bad, 2)
}

func TestAliases(t *testing.T) {
	dir := t.TempDir()

	a, err := LoadAliases(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, a)
	assert.Equal(t, "jdoe", a.Resolve("jdoe"))

	path := filepath.Join(dir, "usermap.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"jdoe": "Jane Doe", "blank": ""}`), 0o600))
	a, err = LoadAliases(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", a.Resolve("jdoe"))
	assert.Equal(t, "blank", a.Resolve("blank"))

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o600))
	a, err = LoadAliases(path)
	assert.Error(t, err)
	assert.NotNil(t, a)
	assert.Empty(t, a)
}

func TestExport(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	ctx := context.Background()

	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "jdoe")
	runGit(t, dir, "config", "commit.gpgsign", "false")

	createFile(t, dir, "policies/access.md", "# Access v1\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "RELEASE: initial access policy")

	createFile(t, dir, "policies/access.md", "# Access v2\n")
	createFile(t, dir, "policies/untracked.md", "# Draft\n")
	runGit(t, dir, "add", "policies/access.md")
	runGit(t, dir, "commit", "-q", "-m", "wip")

	r := New(dir, Aliases{"jdoe": "Jane Doe"})
	snap, err := Export(ctx, r, ExportOptions{
		PolicyDir:     "policies",
		Sources:       []string{"access.md", "untracked.md"},
		GlobalRelease: true,
	}, discardLogger())
	require.NoError(t, err)

	assert.True(t, snap.GlobalRelease)
	require.NotNil(t, snap.CurrentBuild)
	assert.Equal(t, "wip", snap.CurrentBuild.Subject)
	assert.Equal(t, "Jane Doe", snap.CurrentBuild.AuthorName)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, snap.CurrentBuild.Date)

	access := snap.Commits("access.md")
	require.Len(t, access, 2)
	assert.Equal(t, "wip", access[0].Subject)
	assert.Equal(t, "RELEASE: initial access policy", access[1].Subject)
	assert.Equal(t, snap.CurrentBuild.Hash, access[0].Hash)
	assert.Len(t, access[1].Hash, 40)

	untracked, ok := snap.Files["untracked.md"]
	assert.True(t, ok)
	assert.Empty(t, untracked)
}

func TestExport_WarnsForSourcesThatAreNotTrackedTemplates(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()

	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "jdoe")
	runGit(t, dir, "config", "commit.gpgsign", "false")

	createFile(t, dir, "policies/access.md", "# Access\n")
	createFile(t, dir, "policies/notes.txt", "notes\n")
	createFile(t, dir, "policies/draft.md", "# Draft\n")
	runGit(t, dir, "add", "policies/access.md", "policies/notes.txt")
	runGit(t, dir, "commit", "-q", "-m", "RELEASE: initial")

	log, hook := test.NewNullLogger()
	_, err := Export(context.Background(), New(dir, nil), ExportOptions{
		PolicyDir: "policies",
		Sources:   []string{"access.md", "notes.txt", "draft.md"},
	}, log)
	require.NoError(t, err)

	var warned []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && strings.Contains(e.Message, "not a tracked") {
			warned = append(warned, e.Data["policy"].(string))
		}
	}
	assert.Equal(t, []string{"notes.txt", "draft.md"}, warned)
}

func TestFileHistory_FollowsRenames(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	ctx := context.Background()

	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")

	createFile(t, dir, "old.md", "# Policy\n\nSome long enough body so rename detection matches.\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "RELEASE: first")
	runGit(t, dir, "mv", "old.md", "new.md")
	runGit(t, dir, "commit", "-q", "-m", "rename")

	commits, bad, err := New(dir, nil).FileHistory(ctx, "new.md")
	require.NoError(t, err)
	assert.Empty(t, bad)
	require.Len(t, commits, 2)
	assert.Equal(t, "rename", commits[0].Subject)
	assert.Equal(t, "RELEASE: first", commits[1].Subject)
	assert.Equal(t, "Test User", commits[1].AuthorName)
}

func TestHeadCommit_EmptyRepository(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")

	head, err := New(dir, nil).HeadCommit(context.Background())
	require.NoError(t, err)
	assert.Nil(t, head)
}

func TestExport_GitFailureAborts(t *testing.T) {
	requireGit(t)
	// Not a repository.
	_, err := Export(context.Background(), New(t.TempDir(), nil), ExportOptions{
		PolicyDir: ".",
		Sources:   []string{"a.md"},
	}, discardLogger())
	assert.Error(t, err)
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	// Keep the user's global config out of the test repositories.
	t.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_CEILING_DIRECTORIES", os.TempDir())
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v failed: %v\nOutput: %s", args, err, out)
	}
}

func createFile(t *testing.T, dir, path string, content ...string) {
	t.Helper()
	fullPath := filepath.Join(dir, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))

	data := ""
	if len(content) > 0 {
		data = content[0]
	}
	require.NoError(t, os.WriteFile(fullPath, []byte(data), 0o644))
}
