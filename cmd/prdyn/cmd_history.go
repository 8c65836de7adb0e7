// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/prdyn/store"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List stored runs, or show the rounds of one run",
		Long: `Without arguments lists the runs in --db. With a run id prints the
price vector of every stored round (all snapshot fields with --json).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Storage.Path == "" {
				return fmt.Errorf("history needs a database: set --db or storage.path")
			}
			st, err := store.Open(cfg.Storage.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				limit, _ := cmd.Flags().GetInt("limit")
				runs, err := st.Runs(ctx, limit)
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return writeJSON(cmd, runs)
				}
				for _, r := range runs {
					fmt.Fprintf(out, "%s  %-22s n=%-4d m=%-4d seed=%-6d %-9s rounds=%-6d %s\n",
						r.ID, r.Rule, r.Buyers, r.Goods, r.Seed, r.Status, r.Rounds,
						r.StartedAt.Format(time.RFC3339))
				}
				return nil
			}

			rounds, err := st.Rounds(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd, rounds)
			}
			for _, s := range rounds {
				fmt.Fprintf(out, "t=%-6d price=%.6g\n", s.Time, s.Price)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 0, "Maximum runs to list (0: all)")

	return cmd
}
