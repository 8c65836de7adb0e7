// SPDX-License-Identifier: MIT
// Package config loads prdyn settings from a YAML file, PRDYN_* environment
// variables and built-in defaults, in decreasing order of precedence:
// environment, file, defaults.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"

	"github.com/katalvlaran/prdyn/market"
)

// EnvPrefix prefixes every environment override, e.g. PRDYN_MARKET_ALPHA.
const EnvPrefix = "PRDYN"

// Instance sources accepted in instance.source.
const (
	SourceLinearUniform  = "linear-uniform"
	SourceLinearDiscrete = "linear-discrete"
	SourceCobbDouglas    = "cobb-douglas"
	SourceFile           = "file"
)

// Config is the complete configuration.
type Config struct {
	Market     MarketConfig     `mapstructure:"market"`
	Instance   InstanceConfig   `mapstructure:"instance"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Sweep      SweepConfig      `mapstructure:"sweep"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// MarketConfig selects the update rule and Step tuning.
type MarketConfig struct {
	Rule        string  `mapstructure:"rule"`
	Alpha       float64 `mapstructure:"alpha"`
	LinearGoods int     `mapstructure:"linear_goods"`
	Workers     int     `mapstructure:"workers"`
	BudgetAudit float64 `mapstructure:"budget_audit"` // < 0 disables
}

// InstanceConfig describes where the starting market comes from.
type InstanceConfig struct {
	Source   string  `mapstructure:"source"`
	Path     string  `mapstructure:"path"` // for source=file
	Buyers   int     `mapstructure:"buyers"`
	Goods    int     `mapstructure:"goods"`
	High     int     `mapstructure:"high"` // linear-discrete only
	Seed     int64   `mapstructure:"seed"`
	Budget   float64 `mapstructure:"budget"`
	BidSlack float64 `mapstructure:"bid_slack"`
}

// SimulationConfig controls the round loop.
type SimulationConfig struct {
	Rounds     int     `mapstructure:"rounds"`
	Tolerance  float64 `mapstructure:"tolerance"`
	CheckEvery int     `mapstructure:"check_every"`
}

// SweepConfig controls multi-seed runs.
type SweepConfig struct {
	Seeds   int `mapstructure:"seeds"`   // seeds instance.seed … instance.seed+seeds-1
	Workers int `mapstructure:"workers"` // concurrent markets
}

// StorageConfig locates the run database. Empty path disables persistence.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from path (optional) and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("market.rule", market.KindLinear.String())
	v.SetDefault("market.alpha", 0.5)
	v.SetDefault("market.linear_goods", 0)
	v.SetDefault("market.workers", market.DefaultWorkers)
	v.SetDefault("market.budget_audit", market.DefaultBudgetAudit)

	v.SetDefault("instance.source", SourceLinearUniform)
	v.SetDefault("instance.path", "")
	v.SetDefault("instance.buyers", 10)
	v.SetDefault("instance.goods", 10)
	v.SetDefault("instance.high", 2)
	v.SetDefault("instance.seed", 1)
	v.SetDefault("instance.budget", 1.0)
	v.SetDefault("instance.bid_slack", 1.01)

	v.SetDefault("simulation.rounds", 100)
	v.SetDefault("simulation.tolerance", 0.0)
	v.SetDefault("simulation.check_every", 1)

	v.SetDefault("sweep.seeds", 8)
	v.SetDefault("sweep.workers", 4)

	v.SetDefault("storage.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Rule builds the configured update rule; only the parameters the kind uses
// are taken from the config.
func (c *Config) Rule() (market.UpdateRule, error) {
	kind, err := market.ParseKind(c.Market.Rule)
	if err != nil {
		return market.UpdateRule{}, err
	}
	switch kind {
	case market.KindLinear:
		return market.Linear(), nil
	case market.KindCobbDouglas:
		return market.CobbDouglas(), nil
	case market.KindGroupedQuasiLinear:
		return market.GroupedQuasiLinear(c.Market.Alpha, c.Market.LinearGoods), nil
	default:
		return market.UpdateRule{Kind: kind, Alpha: c.Market.Alpha}, nil
	}
}

// MarketOptions translates market.workers and market.budget_audit.
func (c *Config) MarketOptions() []market.Option {
	opts := []market.Option{market.WithWorkers(max(c.Market.Workers, 1))}
	if c.Market.BudgetAudit >= 0 {
		opts = append(opts, market.WithBudgetAudit(c.Market.BudgetAudit))
	}
	return opts
}

// Validate checks that all configuration values are valid. Rule parameters
// that depend on the number of goods are checked against instance.goods for
// generated instances only.
func (c *Config) Validate() error {
	rule, err := c.Rule()
	if err != nil {
		return fmt.Errorf("market.rule: %w", err)
	}
	goods := c.Instance.Goods
	if c.Instance.Source == SourceFile {
		goods = math.MaxInt
	}
	if err := rule.Validate(goods); err != nil {
		return fmt.Errorf("market: %w", err)
	}
	if c.Market.Workers < 1 {
		return fmt.Errorf("market.workers must be at least 1")
	}
	if math.IsNaN(c.Market.BudgetAudit) || math.IsInf(c.Market.BudgetAudit, 0) {
		return fmt.Errorf("market.budget_audit must be finite (negative disables the audit)")
	}

	switch c.Instance.Source {
	case SourceFile:
		if c.Instance.Path == "" {
			return fmt.Errorf("instance.path is required when instance.source is %q", SourceFile)
		}
	case SourceLinearUniform, SourceLinearDiscrete, SourceCobbDouglas:
		if c.Instance.Buyers < 1 || c.Instance.Goods < 1 {
			return fmt.Errorf("instance.buyers and instance.goods must be at least 1")
		}
		if c.Instance.Source == SourceLinearDiscrete && c.Instance.High < 1 {
			return fmt.Errorf("instance.high must be at least 1")
		}
		if !(c.Instance.Budget > 0) || math.IsInf(c.Instance.Budget, 0) {
			return fmt.Errorf("instance.budget must be a finite value > 0")
		}
		if !(c.Instance.BidSlack >= 1) || math.IsInf(c.Instance.BidSlack, 0) {
			return fmt.Errorf("instance.bid_slack must be a finite value >= 1")
		}
	default:
		return fmt.Errorf("instance.source must be one of: %s, %s, %s, %s",
			SourceLinearUniform, SourceLinearDiscrete, SourceCobbDouglas, SourceFile)
	}

	if c.Simulation.Rounds < 0 {
		return fmt.Errorf("simulation.rounds must not be negative")
	}
	if !(c.Simulation.Tolerance >= 0) || math.IsInf(c.Simulation.Tolerance, 0) {
		return fmt.Errorf("simulation.tolerance must be a finite value >= 0")
	}
	if c.Simulation.CheckEvery < 1 {
		return fmt.Errorf("simulation.check_every must be at least 1")
	}
	if c.Sweep.Seeds < 1 {
		return fmt.Errorf("sweep.seeds must be at least 1")
	}
	if c.Sweep.Workers < 1 {
		return fmt.Errorf("sweep.workers must be at least 1")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
