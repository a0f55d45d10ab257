// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bartekus/policycomposer/internal/buildenv"
	"github.com/bartekus/policycomposer/internal/checks"
)

func newCheckCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check [command|check-id...]",
		Short: "Run repository health checks",
		Long: `Run health checks over the config, policy order, templates, history blob
and generated PDFs. State is kept under build/checks so failed checks can be
resumed.

Arguments that are not subcommands are treated as check IDs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return a.runner(cmd).RunList(cmd.Context(), args)
		},
	}

	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "output in JSON")
	cmd.PersistentFlags().String("state-dir", "", "directory to store check state (default build/checks)")
	a.bindFlag(cmd.PersistentFlags(), "state-dir", buildenv.KeyStateDir)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids := a.runner(cmd).IDs()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"checks": ids})
			}
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Run every check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runner(cmd).RunAll(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "resume",
		Short: "Re-run the checks that failed last time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runner(cmd).Resume(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "report",
		Short: "Show the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				last, err := a.store().ReadLastRun()
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(last)
			}
			return a.runner(cmd).Report()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear check state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.store().Reset()
		},
	})

	return cmd
}

func (a *app) store() *checks.StateStore {
	return checks.NewStateStore(a.settings.StateDir)
}

func (a *app) runner(cmd *cobra.Command) *checks.Runner {
	s := a.settings
	deps := &checks.Deps{
		ConfigPath:  s.ConfigPath,
		OrderPath:   s.OrderPath,
		PolicyDir:   s.PolicyDir,
		HistoryPath: s.HistoryPath,
		OutputDir:   s.OutputDir,
		Log:         a.log,
	}
	return checks.NewRunner(checks.Registry(), a.store(), deps, cmd.OutOrStdout())
}
