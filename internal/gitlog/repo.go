// SPDX-License-Identifier: AGPL-3.0-or-later

/*
PolicyComposer - PolicyComposer renders versioned compliance and policy documents from a shared YAML configuration, policy templates and Git history.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package gitlog reads per-file commit history from git and produces the
// history blob consumed by the build.
package gitlog

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// Repo runs git queries against one working tree.
type Repo struct {
	root    string
	aliases Aliases

	mu           sync.Mutex
	trackedCache []string
}

// New returns a Repo rooted at root. aliases may be nil.
func New(root string, aliases Aliases) *Repo {
	return &Repo{root: root, aliases: aliases}
}

// Root returns the working tree root.
func (r *Repo) Root() string { return r.root }

// TrackedFiles returns all files tracked by git, caching the result for the instance lifetime.
func (r *Repo) TrackedFiles(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.trackedCache != nil {
		return r.trackedCache, nil
	}

	out, err := r.git(ctx, "ls-files", "-z")
	if err != nil {
		return nil, err
	}

	if len(out) == 0 {
		r.trackedCache = []string{}
		return r.trackedCache, nil
	}

	r.trackedCache = strings.Split(strings.TrimSuffix(string(out), "\x00"), "\x00")
	return r.trackedCache, nil
}

// TrackedFilesFiltered returns tracked files matching the filter options.
func (r *Repo) TrackedFilesFiltered(ctx context.Context, opts FilterOptions) ([]string, error) {
	all, err := r.TrackedFiles(ctx)
	if err != nil {
		return nil, err
	}
	return FilterFiles(all, opts), nil
}

// Rel converts a path to the slash-separated form git reports, relative to
// the working tree root.
func (r *Repo) Rel(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path)), nil
	}
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return "", fmt.Errorf("%s is outside %s: %w", path, r.root, err)
	}
	return filepath.ToSlash(rel), nil
}

func (r *Repo) git(ctx context.Context, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.root
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("git %s failed: %w: %s", args[0], err, msg)
		}
		return nil, fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return out, nil
}
