// SPDX-License-Identifier: MIT
// Command prdyn runs proportional response dynamics on generated or
// hand-authored Fisher markets and optionally stores every round in SQLite.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "prdyn",
		Short: "Proportional response dynamics in Fisher markets",
		Long: `prdyn simulates proportional response dynamics: every round each buyer
re-splits its budget across goods in proportion to each good's share of
the utility it received.

Settings come from --config (YAML), PRDYN_* environment variables and
the flags below, flags taking precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("db", "", "SQLite database for run history (empty: no persistence)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newSweepCmd(),
		newGenerateCmd(),
		newHistoryCmd(),
	)

	return rootCmd
}
