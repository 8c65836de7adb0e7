// SPDX-License-Identifier: MIT
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/katalvlaran/prdyn/generator"
	"github.com/katalvlaran/prdyn/internal/config"
	"github.com/katalvlaran/prdyn/internal/logging"
)

// addMarketFlags registers the flags shared by run, sweep and generate.
func addMarketFlags(fs *pflag.FlagSet) {
	fs.String("rule", "", "Update rule (linear, cobb-douglas, quasi-linear-utility, quasi-linear-gradient, ces, ces-one-linear-buyer, grouped-quasi-linear)")
	fs.Float64("alpha", 0, "Rule exponent in (0,1]")
	fs.Int("linear-goods", 0, "Leading linear goods for grouped-quasi-linear")
	fs.Int("workers", 0, "Goroutines for the per-buyer phase of a round")
	fs.String("instance", "", "YAML instance file (overrides the generator)")
	fs.String("source", "", "Generator: linear-uniform, linear-discrete, cobb-douglas")
	fs.Int("buyers", 0, "Number of buyers")
	fs.Int("goods", 0, "Number of goods")
	fs.Int64("seed", 0, "Generator seed")
	fs.Int("rounds", 0, "Rounds to simulate")
	fs.Float64("tolerance", 0, "Stop once prices move less than this (0: never)")
}

// loadConfig resolves file, environment and changed flags into a validated
// Config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("log-level") {
		cfg.Logging.Level, _ = fs.GetString("log-level")
	}
	if fs.Changed("db") {
		cfg.Storage.Path, _ = fs.GetString("db")
	}
	if fs.Lookup("rule") != nil {
		overrideMarket(fs, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func overrideMarket(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("rule") {
		cfg.Market.Rule, _ = fs.GetString("rule")
	}
	if fs.Changed("alpha") {
		cfg.Market.Alpha, _ = fs.GetFloat64("alpha")
	}
	if fs.Changed("linear-goods") {
		cfg.Market.LinearGoods, _ = fs.GetInt("linear-goods")
	}
	if fs.Changed("workers") {
		cfg.Market.Workers, _ = fs.GetInt("workers")
	}
	if fs.Changed("source") {
		cfg.Instance.Source, _ = fs.GetString("source")
	}
	if fs.Changed("instance") {
		cfg.Instance.Source = config.SourceFile
		cfg.Instance.Path, _ = fs.GetString("instance")
	}
	if fs.Changed("buyers") {
		cfg.Instance.Buyers, _ = fs.GetInt("buyers")
	}
	if fs.Changed("goods") {
		cfg.Instance.Goods, _ = fs.GetInt("goods")
	}
	if fs.Changed("seed") {
		cfg.Instance.Seed, _ = fs.GetInt64("seed")
	}
	if fs.Changed("rounds") {
		cfg.Simulation.Rounds, _ = fs.GetInt("rounds")
	}
	if fs.Changed("tolerance") {
		cfg.Simulation.Tolerance, _ = fs.GetFloat64("tolerance")
	}
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
}

// buildInstance produces the starting market for one seed.
func buildInstance(cfg *config.Config, seed int64) (generator.Instance, error) {
	ic := cfg.Instance
	opts := []generator.Option{
		generator.WithSeed(seed),
		generator.WithBudget(ic.Budget),
		generator.WithBidSlack(ic.BidSlack),
	}
	switch ic.Source {
	case config.SourceFile:
		return generator.LoadInstance(ic.Path)
	case config.SourceLinearDiscrete:
		return generator.LinearDiscrete(ic.Buyers, ic.Goods, ic.High, opts...)
	case config.SourceCobbDouglas:
		return generator.CobbDouglas(ic.Buyers, ic.Goods, opts...)
	default:
		return generator.LinearUniform(ic.Buyers, ic.Goods, opts...)
	}
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
