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

// runSummary is the printed outcome of one simulated market.
type runSummary struct {
	RunID    string    `json:"run_id,omitempty"`
	Seed     int64     `json:"seed"`
	Rule     string    `json:"rule"`
	Rounds   int       `json:"rounds"`
	Time     int       `json:"time"`
	Stop     string    `json:"stop"`
	Drift    float64   `json:"drift"`
	Price    []float64 `json:"price"`
	Spending []float64 `json:"spending"`
	Error    string    `json:"error,omitempty"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate one market",
		Long: `Builds one market (generated from --seed or read from --instance),
runs it for --rounds rounds and prints the final prices.

Examples:
  prdyn run --rule ces --alpha 0.5 --buyers 20 --goods 5 --rounds 200
  prdyn run --instance market.yaml --rule linear --db runs.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cmd, cfg)

			var st *store.Store
			if cfg.Storage.Path != "" {
				if st, err = store.Open(cfg.Storage.Path); err != nil {
					return err
				}
				defer st.Close()
			}

			sum, err := runOne(cmd.Context(), cfg, cfg.Instance.Seed, st, simulation.WithLogger(log))
			if err != nil && sum.Stop == "" {
				return err
			}
			if jsonOutput(cmd) {
				if werr := writeJSON(cmd, sum); werr != nil {
					return werr
				}
			} else {
				printSummary(cmd, sum)
			}

			return err
		},
	}
	addMarketFlags(cmd.Flags())

	return cmd
}

// runOne builds, simulates and (with st != nil) persists one market. A
// non-empty summary.Stop means the simulation itself ran; err then reports
// how it ended.
func runOne(ctx context.Context, cfg *config.Config, seed int64, st *store.Store, opts ...simulation.Option) (runSummary, error) {
	sum := runSummary{Seed: seed}
	rule, err := cfg.Rule()
	if err != nil {
		return sum, err
	}
	sum.Rule = rule.String()

	inst, err := buildInstance(cfg, seed)
	if err != nil {
		return sum, err
	}
	mk, err := inst.Market(rule, cfg.MarketOptions()...)
	if err != nil {
		return sum, err
	}

	if st != nil {
		if sum.RunID, err = st.CreateRun(ctx, runInfo(cfg, rule, mk.Buyers(), mk.Goods(), seed)); err != nil {
			return sum, err
		}
		opts = append(opts, simulation.WithRecorder(st.Recorder(sum.RunID)))
	}
	opts = append(opts,
		simulation.WithTolerance(cfg.Simulation.Tolerance),
		simulation.WithCheckEvery(cfg.Simulation.CheckEvery))

	sim, err := simulation.New(mk, opts...)
	if err != nil {
		return sum, err
	}
	res, runErr := sim.Run(ctx, cfg.Simulation.Rounds)
	fillSummary(&sum, res, sim.Last(), runErr)

	if st != nil {
		if err := st.FinishRun(context.WithoutCancel(ctx), sum.RunID, store.StatusFor(res.Stop), runErr); err != nil {
			return sum, err
		}
	}

	return sum, runErr
}

func runInfo(cfg *config.Config, rule market.UpdateRule, buyers, goods int, seed int64) store.RunInfo {
	source := cfg.Instance.Source
	if source == config.SourceFile {
		source = cfg.Instance.Path
	}
	return store.RunInfo{
		Rule:        rule.Kind.String(),
		Alpha:       rule.Alpha,
		LinearGoods: rule.LinearGoods,
		Buyers:      buyers,
		Goods:       goods,
		Seed:        seed,
		Source:      source,
	}
}

func fillSummary(sum *runSummary, res simulation.Result, last market.Snapshot, runErr error) {
	sum.Rounds = res.Rounds
	sum.Time = res.Time
	sum.Stop = string(res.Stop)
	sum.Drift = res.Drift
	sum.Price = last.Price
	sum.Spending = res.Spending
	if runErr != nil {
		sum.Error = runErr.Error()
	}
}

func printSummary(cmd *cobra.Command, sum runSummary) {
	out := cmd.OutOrStdout()
	if sum.RunID != "" {
		fmt.Fprintf(out, "run:      %s\n", sum.RunID)
	}
	fmt.Fprintf(out, "rule:     %s (seed %d)\n", sum.Rule, sum.Seed)
	fmt.Fprintf(out, "rounds:   %d (time %d, stop: %s)\n", sum.Rounds, sum.Time, sum.Stop)
	fmt.Fprintf(out, "drift:    %.3e\n", sum.Drift)
	fmt.Fprintf(out, "price:    %.6g\n", sum.Price)
	if sum.Error != "" {
		fmt.Fprintf(out, "error:    %s\n", sum.Error)
	}
}
