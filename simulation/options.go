// SPDX-License-Identifier: MIT
// Package: simulation
//
// options.go — functional options for New and Sweep.
//
// Option constructors panic on meaningless inputs; Run never panics.

package simulation

import (
	"log/slog"
	"math"
)

// DefaultCheckEvery is how often (in rounds) the convergence check and the
// progress log run unless WithCheckEvery overrides it.
const DefaultCheckEvery = 1

// Option configures a Simulation.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	recorder   Recorder
	tolerance  float64 // 0 disables early stop
	checkEvery int
}

// WithLogger routes harness logs to l. Panics on nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("simulation: WithLogger(nil)")
	}
	return func(c *config) {
		c.logger = l
	}
}

// WithRecorder forwards every snapshot to r. Panics on nil.
func WithRecorder(r Recorder) Option {
	if r == nil {
		panic("simulation: WithRecorder(nil)")
	}
	return func(c *config) {
		c.recorder = r
	}
}

// WithTolerance stops Run early once PriceDrift of the latest snapshot is
// below tol. tol = 0 disables the check. Panics on negative, NaN or Inf.
func WithTolerance(tol float64) Option {
	if !(tol >= 0) || math.IsInf(tol, 0) {
		panic("simulation: WithTolerance requires a finite value >= 0")
	}
	return func(c *config) {
		c.tolerance = tol
	}
}

// WithCheckEvery runs the convergence check and the progress log every k
// rounds. Panics if k < 1.
func WithCheckEvery(k int) Option {
	if k < 1 {
		panic("simulation: WithCheckEvery requires k >= 1")
	}
	return func(c *config) {
		c.checkEvery = k
	}
}

func gatherOptions(opts ...Option) config {
	cfg := config{
		logger:     slog.New(slog.DiscardHandler),
		checkEvery: DefaultCheckEvery,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
