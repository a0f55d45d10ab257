// SPDX-License-Identifier: AGPL-3.0-or-later

package checks

import (
	"context"
	"fmt"
	"os"

	"github.com/bartekus/policycomposer/internal/history"
)

// HistoryBlob checks that the exported history blob decodes.
type HistoryBlob struct{}

func (HistoryBlob) ID() string { return "history:blob" }

func (c HistoryBlob) Run(_ context.Context, deps *Deps) Result {
	if _, err := os.Stat(deps.HistoryPath); os.IsNotExist(err) {
		return skip(c.ID(), "no history blob; run 'history export'")
	}
	snap, err := history.LoadSnapshot(deps.HistoryPath)
	if err != nil {
		return fail(c.ID(), err.Error())
	}

	current := "none"
	if cur := snap.Current(); cur != nil {
		current = cur.ShortHash()
	}
	return pass(c.ID(), fmt.Sprintf("%d files, current build %s, global release %t", len(snap.Files), current, snap.GlobalRelease))
}
