/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HamedShams/linear-pulse/internal/services"
)

var (
	runDryRun  bool
	runChannel string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the status report once and post it",
	Long: `Fetch started and recently completed issues from Linear, render the report and post it
to Slack in chunks. With --dry-run the report is printed to stdout instead.

Examples:
  pulse run
  pulse run --channel '#eng-status'
  pulse run --dry-run`,
	RunE: runReport,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print the report instead of posting it")
	runCmd.Flags().StringVar(&runChannel, "channel", "", "Slack channel (default SLACK_CHANNEL)")
}

func runReport(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), !runDryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.RunTimeout)
	defer cancel()
	text, err := a.svc.RunReport(ctx, services.RunOptions{DryRun: runDryRun, Channel: runChannel})
	if err != nil {
		return err
	}
	if runDryRun {
		fmt.Fprintln(cmd.OutOrStdout(), text)
	}
	return nil
}
