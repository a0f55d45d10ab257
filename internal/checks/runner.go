// SPDX-License-Identifier: AGPL-3.0-or-later

package checks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrFailed is returned when at least one check failed.
var ErrFailed = errors.New("checks failed")

// Runner executes checks and records their results.
type Runner struct {
	checks []Check
	store  *StateStore
	deps   *Deps
	out    io.Writer
}

// NewRunner creates a runner writing progress to out.
func NewRunner(checks []Check, store *StateStore, deps *Deps, out io.Writer) *Runner {
	return &Runner{
		checks: checks,
		store:  store,
		deps:   deps,
		out:    out,
	}
}

// IDs lists the runner's checks in order.
func (r *Runner) IDs() []string {
	ids := make([]string, 0, len(r.checks))
	for _, c := range r.checks {
		ids = append(ids, c.ID())
	}
	return ids
}

// RunAll executes every check in order. A failure does not stop the run;
// the returned error wraps ErrFailed and names every failed check.
func (r *Runner) RunAll(ctx context.Context) error {
	return r.execute(ctx, r.checks)
}

// Resume re-runs only the checks that failed last time. With nothing to
// resume it does nothing.
func (r *Runner) Resume(ctx context.Context) error {
	failed, err := r.store.LoadFailed()
	if err != nil {
		return fmt.Errorf("loading failed checks: %w", err)
	}
	if len(failed) == 0 {
		fmt.Fprintln(r.out, "No failed checks to resume")
		return nil
	}

	var toRun []Check
	for _, id := range failed {
		if c := r.find(id); c != nil {
			toRun = append(toRun, c)
		}
	}
	return r.execute(ctx, toRun)
}

// RunList executes the named checks in the given order.
func (r *Runner) RunList(ctx context.Context, ids []string) error {
	toRun := make([]Check, 0, len(ids))
	for _, id := range ids {
		c := r.find(id)
		if c == nil {
			return fmt.Errorf("unknown check: %s (known: %s)", id, strings.Join(r.IDs(), ", "))
		}
		toRun = append(toRun, c)
	}
	return r.execute(ctx, toRun)
}

// Report prints the last run and each stored result.
func (r *Runner) Report() error {
	last, err := r.store.ReadLastRun()
	if err != nil {
		return err
	}
	if last == nil {
		fmt.Fprintln(r.out, "No checks have been run")
		return nil
	}

	fmt.Fprintf(r.out, "Last run: %s (%d checks, %d failed)\n", strings.ToUpper(last.Status), len(last.Checks), len(last.Failed))
	for _, id := range last.Checks {
		res, err := r.store.ReadResult(id)
		if err != nil {
			return err
		}
		if res == nil {
			fmt.Fprintf(r.out, "  ?    %s\n", id)
			continue
		}
		fmt.Fprintf(r.out, "  %-4s %s\n", strings.ToUpper(string(res.Status)), id)
		if res.Note != "" {
			fmt.Fprintf(r.out, "       %s\n", strings.ReplaceAll(res.Note, "\n", "\n       "))
		}
	}
	return nil
}

func (r *Runner) find(id string) Check {
	for _, c := range r.checks {
		if c.ID() == id {
			return c
		}
	}
	return nil
}

func (r *Runner) execute(ctx context.Context, checks []Check) error {
	ids := make([]string, 0, len(checks))
	failed := []string{}

	for _, c := range checks {
		id := c.ID()
		ids = append(ids, id)

		res := c.Run(ctx, r.deps)
		res.Check = id

		if err := r.store.WriteResult(res); err != nil {
			return fmt.Errorf("writing result for %s: %w", id, err)
		}

		switch res.Status {
		case StatusPass:
			fmt.Fprintf(r.out, "PASS: %s\n", id)
		case StatusSkip:
			fmt.Fprintf(r.out, "SKIP: %s\n", id)
		default:
			failed = append(failed, id)
			fmt.Fprintf(r.out, "FAIL: %s\n", id)
		}
		if res.Note != "" {
			fmt.Fprintf(r.out, "  %s\n", strings.ReplaceAll(res.Note, "\n", "\n  "))
		}
	}

	last := LastRun{Status: string(StatusPass), Checks: ids, Failed: failed}
	if len(failed) > 0 {
		last.Status = string(StatusFail)
	}
	if err := r.store.WriteLastRun(last); err != nil {
		return fmt.Errorf("writing last run: %w", err)
	}

	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrFailed, strings.Join(failed, ", "))
	}
	return nil
}
