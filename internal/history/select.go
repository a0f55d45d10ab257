// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import "strings"

// Select decides which commits a document's Version History shows.
//
// The result is always a new slice ordered newest first and unique by hash;
// full is never modified. With no current build commit there is no history.
// Outside a global release only commits whose subject starts with the
// release prefix qualify. During a global release the current commit is
// stamped on every document: alone for StyleReplace, or ahead of the file's
// prefixed commits for StyleAppend.
func Select(full []CommitRecord, current *CommitRecord, globalRelease bool, p Policy) []CommitRecord {
	if current == nil {
		return []CommitRecord{}
	}

	if !globalRelease {
		return dedupe(prefixed(full, p.ReleasePrefix))
	}

	if p.GlobalReleaseStyle == StyleReplace {
		return []CommitRecord{*current}
	}

	working := make([]CommitRecord, 0, len(full)+1)
	if !containsHash(full, current.Hash) {
		working = append(working, *current)
	}
	working = append(working, full...)

	out := make([]CommitRecord, 0, len(working)+1)
	out = append(out, *current)
	out = append(out, prefixed(working, p.ReleasePrefix)...)
	return dedupe(out)
}

func prefixed(commits []CommitRecord, prefix string) []CommitRecord {
	out := make([]CommitRecord, 0, len(commits))
	for _, c := range commits {
		if strings.HasPrefix(c.Subject, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func containsHash(commits []CommitRecord, hash string) bool {
	for _, c := range commits {
		if c.Hash == hash {
			return true
		}
	}
	return false
}

// dedupe keeps the first occurrence of each hash.
func dedupe(commits []CommitRecord) []CommitRecord {
	seen := make(map[string]bool, len(commits))
	out := make([]CommitRecord, 0, len(commits))
	for _, c := range commits {
		if seen[c.Hash] {
			continue
		}
		seen[c.Hash] = true
		out = append(out, c)
	}
	return out
}
