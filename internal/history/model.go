// SPDX-License-Identifier: AGPL-3.0-or-later

/*
PolicyComposer - PolicyComposer renders versioned compliance and policy documents from a shared YAML configuration, policy templates and Git history.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package history models per-file commit history and decides which commits
// appear in a policy document's Version History table.
package history

import (
	"fmt"
	"slices"
)

// ShortHashLen is the number of hash characters shown in rendered tables.
const ShortHashLen = 7

// CommitRecord is a single commit as exported by the history source.
// AuthorName has already been mapped through the alias map.
type CommitRecord struct {
	Hash       string `json:"hash"`
	AuthorName string `json:"author_name"`
	Date       string `json:"date"`
	Subject    string `json:"subject"`
}

// ShortHash returns the first ShortHashLen characters of the hash.
func (c CommitRecord) ShortHash() string {
	if len(c.Hash) > ShortHashLen {
		return c.Hash[:ShortHashLen]
	}
	return c.Hash
}

// Style controls how a global release interacts with per-file hotfixes.
type Style string

const (
	// StyleAppend keeps file hotfixes and puts the global commit first.
	StyleAppend Style = "append"
	// StyleReplace shows only the global commit.
	StyleReplace Style = "replace"
)

// ParseStyle validates a configured style. Empty means StyleAppend.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case "", StyleAppend:
		return StyleAppend, nil
	case StyleReplace:
		return StyleReplace, nil
	default:
		return "", fmt.Errorf("unknown global release history style %q (must be 'append' or 'replace')", s)
	}
}

// DefaultReleasePrefix marks commits that document a policy change.
const DefaultReleasePrefix = "RELEASE:"

// Policy parameterizes Select.
type Policy struct {
	ReleasePrefix      string
	GlobalReleaseStyle Style
}

// DefaultPolicy returns the policy used when the config sets nothing.
func DefaultPolicy() Policy {
	return Policy{
		ReleasePrefix:      DefaultReleasePrefix,
		GlobalReleaseStyle: StyleAppend,
	}
}

// Snapshot is the history blob produced once per build.
// Matches build/git_history.json.
type Snapshot struct {
	CurrentBuild  *CommitRecord             `json:"current_build_commit"`
	GlobalRelease bool                      `json:"is_global_release"`
	Files         map[string][]CommitRecord `json:"file_history"`
}

// Commits returns a copy of the tracked history for a policy source file.
// Unknown files yield nil.
func (s *Snapshot) Commits(source string) []CommitRecord {
	if s == nil {
		return nil
	}
	return slices.Clone(s.Files[source])
}

// Current returns a copy of the current build commit, or nil.
func (s *Snapshot) Current() *CommitRecord {
	if s == nil || s.CurrentBuild == nil {
		return nil
	}
	c := *s.CurrentBuild
	return &c
}

// Source provides the history snapshot for a build.
type Source interface {
	Snapshot() (*Snapshot, error)
}
