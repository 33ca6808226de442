/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Post a Linear engineering status report to Slack",
	Long: `pulse reads started and recently completed issues from Linear, ranks engineers by
completions and open load, and posts the rendered report to a Slack channel.

Available subcommands:
  run   - build the report once and post it (or print it with --dry-run)
  serve - run the HTTP admin server`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
