// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"strings"

	"github.com/bartekus/policycomposer/internal/projection"
)

// TableHeading is the heading placed above the history table.
const TableHeading = "Version History"

var tableColumns = []string{"Date", "Updated By", "Commit", "Comments"}

// RenderTable formats commits as a Version History section ready to be
// appended to a document body. Rows keep the order of commits.
// An empty input renders as the empty string, never a bare heading.
func RenderTable(commits []CommitRecord) string {
	if len(commits) == 0 {
		return ""
	}

	rows := make([][]string, 0, len(commits))
	for _, c := range commits {
		rows = append(rows, []string{c.Date, c.AuthorName, c.ShortHash(), c.Subject})
	}

	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(projection.RenderHeader(2, TableHeading))
	b.WriteString(projection.RenderTable(tableColumns, rows))
	return b.String()
}

// Fragment runs Select for one source file of the snapshot and renders the result.
func Fragment(s *Snapshot, source string, p Policy) string {
	if s == nil {
		return ""
	}
	return RenderTable(Select(s.Commits(source), s.Current(), s.GlobalRelease, p))
}
