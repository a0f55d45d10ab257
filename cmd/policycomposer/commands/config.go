// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bartekus/policycomposer/cmd/policycomposer/internal/clierr"
	"github.com/bartekus/policycomposer/internal/buildenv"
	"github.com/bartekus/policycomposer/internal/config"
	"github.com/bartekus/policycomposer/internal/uischema"
	"github.com/bartekus/policycomposer/internal/web"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Validate and edit the company config",
	}
	cmd.AddCommand(newConfigValidateCmd(a), newConfigServeCmd(a))
	return cmd
}

func newConfigValidateCmd(a *app) *cobra.Command {
	var (
		fix    bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the canonical ePHI flag against the per-service PHI flags",
		Long: `Check that ephi_access exists and matches the per-service PHI flags
(saas, paas, medical device, mobile app). With --fix, write the derived
value back to the config, keeping the rest of the file as it is.

Exit codes: 0 consistent or fixed, 1 mismatch, 2 unreadable config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.settings.ConfigPath

			if _, err := os.Stat(path); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return clierr.Newf(clierr.ExitConfig, "config file %s not found", path)
				}
				return clierr.Wrap(clierr.ExitConfig, "reading config", err)
			}
			doc, err := config.LoadDocument(path)
			if err != nil {
				return clierr.Wrap(clierr.ExitConfig, "", err)
			}
			m, err := doc.Map()
			if err != nil {
				return clierr.Wrap(clierr.ExitConfig, "", err)
			}

			report := config.CheckPHI(m)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printPHIReport(out, report)
			}

			if report.OK() {
				return nil
			}
			if !fix {
				return clierr.Newf(clierr.ExitGeneral, "%s does not match the per-service PHI flags", config.CanonicalPHIKey)
			}
			if err := config.FixPHI(path, report.Derived); err != nil {
				return clierr.Wrap(clierr.ExitConfig, "writing config", err)
			}
			a.log.WithField("config", path).Infof("set %s to %t", config.CanonicalPHIKey, report.Derived)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "set "+config.CanonicalPHIKey+" to the derived value")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printPHIReport(w io.Writer, r config.PHIReport) {
	fmt.Fprintf(w, "PHI keys: %s\n", strings.Join(r.PHIKeys, ", "))
	fmt.Fprintln(w, "Per-service PHI flags:")
	for _, f := range r.Flags {
		fmt.Fprintf(w, "  %s: %t\n", f.Key, f.Value)
	}
	fmt.Fprintf(w, "Derived %s: %t\n", config.CanonicalPHIKey, r.Derived)

	if !r.CanonicalPresent {
		fmt.Fprintf(w, "Canonical %s: missing\n", config.CanonicalPHIKey)
	} else {
		fmt.Fprintf(w, "Canonical %s: %t\n", config.CanonicalPHIKey, r.Canonical)
	}

	if r.OK() {
		fmt.Fprintln(w, "OK")
		return
	}
	fmt.Fprintf(w, "MISMATCH: set %s to %t or adjust the per-service flags\n", config.CanonicalPHIKey, r.Derived)
}

func newConfigServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the config editor API",
		Long: `Serve a JSON API over the company config, laid out by the UI schema.
Edits are written back to the config file in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.settings

			schema, err := uischema.Load(s.SchemaPath)
			if err != nil {
				return clierr.Wrap(clierr.ExitConfig, "", err)
			}
			srv, err := web.NewServer(s.ConfigPath, schema, a.log)
			if err != nil {
				return clierr.Wrap(clierr.ExitConfig, "", err)
			}
			return srv.Run(cmd.Context(), s.Addr)
		},
	}

	cmd.Flags().String(buildenv.KeyAddr, "", "listen address (default 127.0.0.1:8501)")
	cmd.Flags().String(buildenv.KeySchema, "", "UI schema file (default conf/ui_schema.yaml)")
	a.bind(cmd.Flags(), buildenv.KeyAddr, buildenv.KeySchema)
	return cmd
}
