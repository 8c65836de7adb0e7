// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/prdyn/internal/config"
	"github.com/katalvlaran/prdyn/market"
	"github.com/katalvlaran/prdyn/simulation"
	"github.com/katalvlaran/prdyn/store"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Simulate one market per seed, concurrently",
		Long: `Runs --seeds independent markets, seeds --seed … --seed+seeds-1, with at
most --parallel markets in flight. One failing market does not stop the
others.

Example:
  prdyn sweep --rule ces --alpha 0.3 --seeds 32 --parallel 8 --rounds 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seeds") {
				cfg.Sweep.Seeds, _ = cmd.Flags().GetInt("seeds")
			}
			if cmd.Flags().Changed("parallel") {
				cfg.Sweep.Workers, _ = cmd.Flags().GetInt("parallel")
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			log := newLogger(cmd, cfg)

			var st *store.Store
			if cfg.Storage.Path != "" {
				if st, err = store.Open(cfg.Storage.Path); err != nil {
					return err
				}
				defer st.Close()
			}

			sums, err := sweep(cmd.Context(), cfg, st, simulation.WithLogger(log))
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd, sums)
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, s := range sums {
				if s.Error != "" {
					failed++
				}
				fmt.Fprintf(out, "seed %-6d %-10s rounds=%-6d drift=%.3e price=%.4g %s\n",
					s.Seed, s.Stop, s.Rounds, s.Drift, s.Price, s.Error)
			}
			fmt.Fprintf(out, "%d markets, %d failed\n", len(sums), failed)

			return nil
		},
	}
	addMarketFlags(cmd.Flags())
	cmd.Flags().Int("seeds", 0, "Number of seeds")
	cmd.Flags().Int("parallel", 0, "Markets simulated concurrently")

	return cmd
}

// sweep runs one job per seed. With st != nil each job is stored as its own
// run; run ids are created before the sweep starts.
func sweep(ctx context.Context, cfg *config.Config, st *store.Store, opts ...simulation.Option) ([]runSummary, error) {
	rule, err := cfg.Rule()
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		simulation.WithTolerance(cfg.Simulation.Tolerance),
		simulation.WithCheckEvery(cfg.Simulation.CheckEvery))

	sums := make([]runSummary, cfg.Sweep.Seeds)
	jobs := make([]simulation.Job, cfg.Sweep.Seeds)
	for k := range jobs {
		seed := cfg.Instance.Seed + int64(k)
		sums[k] = runSummary{Seed: seed, Rule: rule.String()}

		inst, err := buildInstance(cfg, seed)
		if err != nil {
			return nil, err
		}
		jobs[k] = simulation.Job{
			Name:   fmt.Sprintf("seed-%d", seed),
			Rounds: cfg.Simulation.Rounds,
			Build: func() (*market.Market, error) {
				return inst.Market(rule, cfg.MarketOptions()...)
			},
		}
		if st != nil {
			id, err := st.CreateRun(ctx, runInfo(cfg, rule, inst.Buyers(), inst.Goods(), seed))
			if err != nil {
				return nil, err
			}
			sums[k].RunID = id
			jobs[k].Options = []simulation.Option{simulation.WithRecorder(st.Recorder(id))}
		}
	}

	results, sweepErr := simulation.Sweep(ctx, jobs, cfg.Sweep.Workers, opts...)
	for k, r := range results {
		status, runErr := store.StatusFailed, r.Err
		switch {
		case r.Result.Stop != "":
			fillSummary(&sums[k], r.Result, r.Final, r.Err)
			status = store.StatusFor(r.Result.Stop)
		case r.Err != nil:
			sums[k].Error = r.Err.Error() // the market could not be built
		default:
			// Never started: the sweep was canceled first.
			sums[k].Stop = string(simulation.StopCanceled)
			status, runErr = store.StatusCanceled, sweepErr
		}
		if st != nil {
			if err := st.FinishRun(context.WithoutCancel(ctx), sums[k].RunID, status, runErr); err != nil {
				return sums, err
			}
		}
	}

	return sums, sweepErr
}
