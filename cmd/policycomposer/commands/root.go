// SPDX-License-Identifier: AGPL-3.0-or-later

/*
PolicyComposer - PolicyComposer renders versioned compliance and policy documents from a shared YAML configuration, policy templates and Git history.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bartekus/policycomposer/internal/buildenv"
)

// app is the state shared by every command of one invocation.
type app struct {
	v        *viper.Viper
	log      *logrus.Logger
	settings *buildenv.Settings
}

// NewRootCmd constructs the PolicyComposer root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("POLICYCOMPOSER_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	a := &app{v: buildenv.New(), log: logrus.New()}

	cmd := &cobra.Command{
		Use:   "policycomposer",
		Short: "PolicyComposer - versioned compliance policy documents",
		Long: `PolicyComposer renders policy templates against a shared YAML configuration,
stamps each document with its Git version history and converts the set to
Markdown, PDF, ODT and one combined policy manual.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "enable verbose output")
	pf.String(buildenv.KeyConfig, "", "company config file (default conf/config.yaml)")
	pf.String(buildenv.KeyOrder, "", "policy order file (default conf/policy_order.yaml)")
	pf.String(buildenv.KeyPolicies, "", "policy template directory (default policies)")
	pf.String(buildenv.KeyHistory, "", "history blob (default build/git_history.json)")
	pf.String(buildenv.KeyOutput, "", "output directory (default output)")
	a.bind(pf, buildenv.KeyConfig, buildenv.KeyOrder, buildenv.KeyPolicies, buildenv.KeyHistory, buildenv.KeyOutput)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of PolicyComposer",
		// Needs no project.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "PolicyComposer version %s\n", version)
		},
	})

	cmd.AddCommand(newBuildCmd(a))
	cmd.AddCommand(newHistoryCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newCheckCmd(a))

	return cmd
}

// bind ties flags named after settings keys to those keys. Only flags the
// user set override the environment.
func (a *app) bind(fs *pflag.FlagSet, keys ...string) {
	for _, k := range keys {
		a.bindFlag(fs, k, k)
	}
}

// bindFlag ties the named flag to a settings key. A missing flag is a
// wiring bug in the command tree, so it panics at construction.
func (a *app) bindFlag(fs *pflag.FlagSet, flag, key string) {
	if err := a.v.BindPFlag(key, fs.Lookup(flag)); err != nil {
		panic(fmt.Sprintf("binding --%s to %s: %v", flag, key, err))
	}
}

// setup configures logging and resolves settings from the project root.
func (a *app) setup(cmd *cobra.Command) error {
	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		a.log.SetLevel(logrus.DebugLevel)
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	root := buildenv.Root(wd)
	if err := buildenv.LoadDotEnv(root); err != nil {
		return err
	}

	s, err := buildenv.Resolve(a.v, root)
	if err != nil {
		return err
	}
	a.settings = s
	a.log.WithField("root", root).Debug("resolved project root")
	return nil
}
