// SPDX-License-Identifier: MIT
// Package: market
//
// options.go — functional options for New.
//
// Contract (strict):
//   • Options are functional (type Option func(*config)).
//   • Option constructors VALIDATE and PANIC on meaningless inputs
//     (programmer error). New and Step themselves never panic.
//   • Defaults reproduce the reference behavior: sequential Step, budget
//     invariant checked at construction only.

package market

import "math"

// Defaults (single source of truth).
const (
	// DefaultWorkers runs the per-buyer phase of Step on the calling goroutine.
	DefaultWorkers = 1

	// DefaultBudgetAudit disables the per-round budget re-check (negative
	// tolerance means "off").
	DefaultBudgetAudit = -1.0
)

const (
	panicWorkersInvalid = "market: WithWorkers: workers must be >= 1"
	panicAuditInvalid   = "market: WithBudgetAudit: tolerance must be finite and >= 0"
)

// config is the resolved option set of a Market.
type config struct {
	workers     int     // >= 1
	budgetAudit float64 // < 0 ⇒ disabled; otherwise relative+absolute tolerance
}

// Option customizes a Market at construction.
type Option func(*config)

// WithWorkers fans the per-buyer utility and bid computations of every Step
// over up to k goroutines. Results are bit-identical to k == 1 because each
// buyer reads only the frozen quantity snapshot and writes only its own row.
// Panics if k < 1.
func WithWorkers(k int) Option {
	if k < 1 {
		panic(panicWorkersInvalid)
	}
	return func(c *config) {
		c.workers = k
	}
}

// WithBudgetAudit re-verifies Σ_j bid[i][j] ≤ budget[i]·(1+tol) + tol after
// every round and fails the Market with *BudgetViolationError otherwise.
// Panics if tol is negative, NaN or infinite.
func WithBudgetAudit(tol float64) Option {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol < 0 {
		panic(panicAuditInvalid)
	}
	return func(c *config) {
		c.budgetAudit = tol
	}
}

// gatherOptions applies opts in order over the defaults (last wins).
func gatherOptions(opts ...Option) config {
	cfg := config{
		workers:     DefaultWorkers,
		budgetAudit: DefaultBudgetAudit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
