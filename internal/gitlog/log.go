// SPDX-License-Identifier: AGPL-3.0-or-later

package gitlog

import (
	"context"
	"strings"

	"github.com/bartekus/policycomposer/internal/history"
)

// logFormat separates fields with NUL so subjects may contain anything.
const logFormat = "--pretty=format:%H%x00%an%x00%ad%x00%s"

// FileHistory returns the commits touching path, newest first, following
// renames. A path with no history yields an empty slice.
func (r *Repo) FileHistory(ctx context.Context, path string) ([]history.CommitRecord, []string, error) {
	rel, err := r.Rel(path)
	if err != nil {
		return nil, nil, err
	}
	out, err := r.git(ctx, "log", "--follow", "--date=short", logFormat, "--", rel)
	if err != nil {
		return nil, nil, err
	}
	commits, bad := parseLog(string(out))
	return r.alias(commits), bad, nil
}

// HeadCommit returns the commit at HEAD, or nil when the repository has no
// commits yet.
func (r *Repo) HeadCommit(ctx context.Context) (*history.CommitRecord, error) {
	if _, err := r.git(ctx, "rev-parse", "--verify", "--quiet", "HEAD"); err != nil {
		return nil, nil //nolint:nilerr // unborn HEAD means no current commit
	}
	out, err := r.git(ctx, "log", "-1", "--date=short", logFormat, "HEAD")
	if err != nil {
		return nil, err
	}
	commits, _ := parseLog(string(out))
	if len(commits) == 0 {
		return nil, nil
	}
	c := r.alias(commits)[0]
	return &c, nil
}

func (r *Repo) alias(commits []history.CommitRecord) []history.CommitRecord {
	for i := range commits {
		commits[i].AuthorName = r.aliases.Resolve(commits[i].AuthorName)
	}
	return commits
}

// parseLog splits git log output in logFormat. Lines without exactly four
// fields are returned separately so callers can report them.
func parseLog(out string) ([]history.CommitRecord, []string) {
	commits := []history.CommitRecord{}
	var bad []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "\x00")
		if len(parts) != 4 || parts[0] == "" {
			bad = append(bad, line)
			continue
		}
		commits = append(commits, history.CommitRecord{
			Hash:       parts[0],
			AuthorName: parts[1],
			Date:       parts[2],
			Subject:    parts[3],
		})
	}
	return commits, bad
}
