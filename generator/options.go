// SPDX-License-Identifier: MIT
// Package: generator
//
// options.go — functional options for the random constructors.
//
// Option constructors validate and panic on meaningless inputs; the
// constructors themselves never panic.

package generator

import (
	"math"
	"math/rand"
)

// Defaults.
const (
	// DefaultBudget is every buyer's budget unless WithBudget overrides it.
	DefaultBudget = 1.0
	// DefaultBidSlack scales starting bids to budget/slack so float rounding
	// never pushes a row sum above its budget.
	DefaultBidSlack = 1.01
)

// Option customizes a random constructor.
type Option func(*genConfig)

type genConfig struct {
	rng      *rand.Rand // nil means "no randomness available"
	budget   float64
	bidSlack float64
}

// WithSeed creates a fresh deterministic source from seed.
func WithSeed(seed int64) Option {
	return func(c *genConfig) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand uses r as the random source. Panics on nil.
// r is not goroutine-safe; do not share it across concurrent constructors.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("generator: WithRand(nil)")
	}
	return func(c *genConfig) {
		c.rng = r
	}
}

// WithBudget sets every buyer's budget. Panics unless b is finite and > 0.
func WithBudget(b float64) Option {
	if !(b > 0) || math.IsInf(b, 0) {
		panic("generator: WithBudget requires a finite value > 0")
	}
	return func(c *genConfig) {
		c.budget = b
	}
}

// WithBidSlack sets the divisor applied to starting bids. Panics unless
// s is finite and ≥ 1.
func WithBidSlack(s float64) Option {
	if !(s >= 1) || math.IsInf(s, 0) {
		panic("generator: WithBidSlack requires a finite value >= 1")
	}
	return func(c *genConfig) {
		c.bidSlack = s
	}
}

func newGenConfig(opts ...Option) genConfig {
	cfg := genConfig{
		budget:   DefaultBudget,
		bidSlack: DefaultBidSlack,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
