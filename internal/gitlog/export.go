// SPDX-License-Identifier: AGPL-3.0-or-later

package gitlog

import (
	"context"
	"fmt"
	"path"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/bartekus/policycomposer/internal/history"
)

// ExportOptions selects what goes into the history blob.
type ExportOptions struct {
	// PolicyDir is the template directory, relative to the repository root
	// or absolute.
	PolicyDir string
	// Sources are the policy sources in build order.
	Sources []string
	// GlobalRelease is stored as is_global_release.
	GlobalRelease bool
}

// TemplateExt is the extension of policy templates.
const TemplateExt = ".md"

// Export builds a history snapshot for every source. Any git failure
// aborts the export.
func Export(ctx context.Context, r *Repo, opts ExportOptions, log logrus.FieldLogger) (*history.Snapshot, error) {
	dir, err := r.Rel(opts.PolicyDir)
	if err != nil {
		return nil, err
	}

	tracked, err := r.TrackedFilesFiltered(ctx, FilterOptions{Dir: dir, IncludeExtensions: []string{TemplateExt}})
	if err != nil {
		return nil, err
	}

	snap := history.Empty()
	snap.GlobalRelease = opts.GlobalRelease

	for _, src := range opts.Sources {
		p := path.Join(dir, src)
		entry := log.WithField("policy", src)

		if _, found := slices.BinarySearch(tracked, p); !found {
			entry.Warn("policy source is not a tracked " + TemplateExt + " template")
		}

		commits, bad, err := r.FileHistory(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("reading history of %s: %w", p, err)
		}
		for _, line := range bad {
			entry.Warnf("skipping malformed log line %q", line)
		}
		entry.WithField("commits", len(commits)).Debug("collected history")
		snap.Files[src] = commits
	}

	head, err := r.HeadCommit(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading current build commit: %w", err)
	}
	snap.CurrentBuild = head
	if head != nil {
		log.WithField("commit", head.ShortHash()).Info("current build commit")
	} else {
		log.Warn("repository has no commits; history will be empty")
	}

	return snap, nil
}
