// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bartekus/policycomposer/internal/build"
	"github.com/bartekus/policycomposer/internal/buildenv"
	"github.com/bartekus/policycomposer/internal/config"
	"github.com/bartekus/policycomposer/internal/convert"
	"github.com/bartekus/policycomposer/internal/history"
	"github.com/bartekus/policycomposer/internal/render"
	"github.com/bartekus/policycomposer/pkg/order"
)

func newBuildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render every ordered policy and the combined manual",
		Long: `Render each policy in the policy order against the company config, append
its version history from the history blob and write Markdown, PDF and ODT
outputs, then convert the combined policy manual.

The build is all or nothing: a template or conversion failure stops it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asm, err := a.assembler()
			if err != nil {
				return err
			}
			res, err := asm.Build(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Built %d policies into %s\n", len(res.Markdown), a.settings.OutputDir)
			if res.Manual != "" {
				fmt.Fprintf(out, "Combined manual: %s\n", res.Manual)
			}
			return nil
		},
	}

	cmd.Flags().String(buildenv.KeyPandoc, "", "pandoc binary (default pandoc on PATH)")
	cmd.Flags().String(buildenv.KeyTimeout, "", "timeout for a single conversion (default 5m)")
	a.bind(cmd.Flags(), buildenv.KeyPandoc, buildenv.KeyTimeout)

	return cmd
}

// assembler loads everything a build reads. A missing or unreadable history
// blob is not fatal: the build goes on without version history.
func (a *app) assembler() (*build.Assembler, error) {
	s := a.settings

	cfg, err := config.Load(s.ConfigPath)
	if err != nil {
		return nil, build.Wrap(build.ErrConfig, "", err)
	}
	reg, err := order.Load(s.OrderPath)
	if err != nil {
		return nil, build.Wrap(build.ErrConfig, "", err)
	}

	snap, err := history.LoadOrEmpty(history.FileSource{Path: s.HistoryPath})
	if err != nil {
		a.log.WithError(err).WithField("history", s.HistoryPath).Warn("history unavailable; building without version history")
	}

	cfg.ODTReferenceDoc = s.ReferenceDoc(cfg.ODTReferenceDoc)

	a.log.WithFields(logrus.Fields{
		"policies":       len(reg.Items),
		"global_release": snap.GlobalRelease,
	}).Debug("starting build")

	return &build.Assembler{
		Config:    cfg,
		Order:     reg,
		Templates: render.New(s.PolicyDir),
		History:   snap,
		Converter: convert.NewPandoc(s.Pandoc, s.Timeout, a.log),
		Layout:    build.Layout{Root: s.OutputDir},
		Log:       a.log,
	}, nil
}
