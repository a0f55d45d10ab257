// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bartekus/policycomposer/internal/build"
	"github.com/bartekus/policycomposer/internal/buildenv"
	"github.com/bartekus/policycomposer/internal/config"
	"github.com/bartekus/policycomposer/internal/gitlog"
	"github.com/bartekus/policycomposer/internal/history"
	"github.com/bartekus/policycomposer/pkg/order"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Export and inspect policy version history",
	}
	cmd.AddCommand(newHistoryExportCmd(a), newHistoryShowCmd(a))
	return cmd
}

func newHistoryExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the history blob from git log",
		Long: `Read the git history of every ordered policy source, map author names
through the user map and write the history blob used by build.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.settings

			reg, err := order.Load(s.OrderPath)
			if err != nil {
				return build.Wrap(build.ErrConfig, "", err)
			}
			if err := reg.Validate(); err != nil {
				return build.Wrap(build.ErrConfig, "", err)
			}

			aliases, err := gitlog.LoadAliases(s.UserMapPath)
			if err != nil {
				a.log.WithError(err).Warn("ignoring user map")
			}

			snap, err := gitlog.Export(cmd.Context(), gitlog.New(s.Root, aliases), gitlog.ExportOptions{
				PolicyDir:     s.PolicyDir,
				Sources:       reg.Sources(),
				GlobalRelease: s.GlobalRelease,
			}, a.log)
			if err != nil {
				return err
			}
			if err := history.SaveSnapshot(s.HistoryPath, snap); err != nil {
				return err
			}

			fields := logrus.Fields{"files": len(snap.Files), "global_release": snap.GlobalRelease}
			if c := snap.Current(); c != nil {
				fields["commit"] = c.ShortHash()
			}
			a.log.WithFields(fields).Info("exported history")
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", s.HistoryPath)
			return nil
		},
	}

	cmd.Flags().Bool("global-release", false, "mark this build as a global release")
	a.bindFlag(cmd.Flags(), "global-release", buildenv.KeyGlobalRelease)
	return cmd
}

func newHistoryShowCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <source>",
		Short: "Print the version history a policy would get",
		Long: `Select the commits shown for one policy source (a path relative to the
policy directory) and print the Version History section, or the selected
commits as JSON with --json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings
			source := args[0]

			cfg, err := config.Load(s.ConfigPath)
			if err != nil {
				return build.Wrap(build.ErrConfig, "", err)
			}
			snap, err := history.LoadOrEmpty(history.FileSource{Path: s.HistoryPath})
			if err != nil {
				a.log.WithError(err).Warn("history unavailable")
			}

			out := cmd.OutOrStdout()
			if asJSON {
				commits := history.Select(snap.Commits(source), snap.Current(), snap.GlobalRelease, cfg.HistoryPolicy())
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(commits)
			}

			fragment := history.Fragment(snap, source, cfg.HistoryPolicy())
			if fragment == "" {
				a.log.WithField("policy", source).Info("no version history to show")
				return nil
			}
			_, err = fmt.Fprintln(out, strings.TrimSpace(fragment))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print selected commits as JSON")
	return cmd
}
