// SPDX-License-Identifier: MIT
// Package: market
//
// market.go — the Market state machine.
//
// Lifecycle:
//   Uninitialized ──New──▶ Ready ──Step──▶ Ready
//                                   └─(degenerate price/utility, audit)──▶ Failed (terminal)
//
// Transaction model:
//   Step computes the next (Price, Quantity, Utility, Bid) into scratch
//   buffers from a frozen read of the current snapshot and commits them by
//   swapping buffers only after every check has passed. A failing Step
//   therefore leaves every accessor exactly as it was before the call.
//
// Concurrency:
//   A Market is NOT safe for concurrent use; Step is not re-entrant. The
//   optional per-buyer fan-out (WithWorkers) is internal to a single Step.

package market

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/prdyn/matrix"
)

// State is the lifecycle state of a Market.
type State uint8

const (
	// Uninitialized is the zero value; only New produces a usable Market.
	Uninitialized State = iota
	// Ready accepts Step calls.
	Ready
	// Failed is terminal; the Market must be discarded.
	Failed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Market couples a proportional-response market state with one UpdateRule.
type Market struct {
	n, m int
	rule UpdateRule
	cfg  config

	budget  []float64     // len n, immutable
	utility *matrix.Dense // n×m, immutable

	// Committed snapshot.
	bid   *matrix.Dense // n×m
	price []float64     // len m
	qty   *matrix.Dense // n×m
	indiv []float64     // len n
	time  int

	// Scratch buffers for the next snapshot; swapped in on commit.
	nextBid   *matrix.Dense
	nextPrice []float64
	nextQty   *matrix.Dense
	nextIndiv []float64
	splitOK   []bool // per-buyer gradient-normalizer flags

	state State
	err   error // cause of the transition into Failed
}

// New constructs a Ready Market from budgets, starting bids and utility
// parameters. All inputs are deep-copied.
//
// Validation order (first failure wins):
//  1. utility shape (non-empty, rectangular)           → ErrDimension
//  2. rule parameters against m                        → ErrInvalidRule
//  3. len(budget) == n, shape(bids) == shape(utility)  → ErrDimension
//  4. finite, non-negative budget/bids/utility         → ErrInvalidValue
//  5. Σ_j bids[i][j] ≤ budget[i]                       → *BudgetViolationError
//  6. every column sum of bids > 0                     → *DegeneratePriceError
//
// Complexity: O(n·m).
func New(budget []float64, bids, utility [][]float64, rule UpdateRule, opts ...Option) (*Market, error) {
	util, err := matrix.FromRows(utility)
	if err != nil {
		return nil, inputError("utility", err)
	}
	n, m := util.Shape()

	if err = rule.Validate(m); err != nil {
		return nil, err
	}
	if len(budget) != n {
		return nil, fmt.Errorf("budget has %d entries, utility has %d rows: %w", len(budget), n, ErrDimension)
	}
	bid, err := matrix.FromRows(bids)
	if err != nil {
		return nil, inputError("bids", err)
	}
	if err = matrix.ValidateSameShape(bid, util); err != nil {
		return nil, fmt.Errorf("bids %dx%d vs utility %dx%d: %w: %w", bid.Rows(), bid.Cols(), n, m, ErrDimension, err)
	}
	if err = matrix.ValidateNonNegativeVec(budget); err != nil {
		return nil, inputError("budget", err)
	}
	if err = matrix.ValidateNonNegative(bid); err != nil {
		return nil, inputError("bids", err)
	}
	if err = matrix.ValidateNonNegative(util); err != nil {
		return nil, inputError("utility", err)
	}

	for i, total := range bid.RowSums() {
		if total > budget[i] {
			return nil, &BudgetViolationError{Buyer: i, Total: total, Budget: budget[i]}
		}
	}

	mk := &Market{
		n:         n,
		m:         m,
		rule:      rule,
		cfg:       gatherOptions(opts...),
		budget:    append([]float64(nil), budget...),
		utility:   util,
		bid:       bid,
		price:     make([]float64, m),
		indiv:     make([]float64, n),
		nextBid:   bid.Clone(),
		nextPrice: make([]float64, m),
		nextQty:   bid.Clone(),
		nextIndiv: make([]float64, n),
		splitOK:   make([]bool, n),
	}
	if err = mk.derivePrices(mk.bid, mk.price); err != nil {
		return nil, err
	}
	mk.qty = bid.Clone()
	mk.deriveQuantities(mk.bid, mk.price, mk.qty)
	mk.state = Ready

	return mk, nil
}

// inputError classifies a matrix validation failure as ErrDimension or
// ErrInvalidValue while preserving the underlying matrix sentinel.
func inputError(what string, err error) error {
	switch {
	case errors.Is(err, matrix.ErrBadShape), errors.Is(err, matrix.ErrDimensionMismatch):
		return fmt.Errorf("%s: %w: %w", what, ErrDimension, err)
	default:
		return fmt.Errorf("%s: %w: %w", what, ErrInvalidValue, err)
	}
}

// Step advances the market by one round (see package doc for the order of
// effects). On error the Market transitions to Failed and its observable
// state is left untouched.
// Complexity: O(n·m) time, no allocation on the sequential path.
func (mk *Market) Step() error {
	switch mk.state {
	case Ready:
	case Failed:
		return fmt.Errorf("%w: %w", ErrMarketFailed, mk.err)
	default:
		return ErrUninitialized
	}

	// 1) Prices from current bids.
	if err := mk.derivePrices(mk.bid, mk.nextPrice); err != nil {
		return mk.fail(err)
	}
	// 2) Quantities from current bids and fresh prices.
	mk.deriveQuantities(mk.bid, mk.nextPrice, mk.nextQty)

	// 3) Utilities for every buyer from the frozen quantity snapshot.
	mk.forEachBuyer(mk.utilityPhase)
	for i, u := range mk.nextIndiv {
		if u == 0 {
			return mk.fail(&DegenerateUtilityError{Buyer: i, Time: mk.time})
		}
	}

	// 4) New bids; starts only after every utility is known.
	mk.forEachBuyer(mk.bidPhase)
	for i, ok := range mk.splitOK {
		if !ok {
			return mk.fail(&DegenerateUtilityError{Buyer: i, Time: mk.time})
		}
	}
	if mk.cfg.budgetAudit >= 0 {
		if err := mk.auditBudgets(mk.nextBid, mk.time+1); err != nil {
			return mk.fail(err)
		}
	}

	// 5) Commit and advance time.
	mk.price, mk.nextPrice = mk.nextPrice, mk.price
	mk.qty, mk.nextQty = mk.nextQty, mk.qty
	mk.indiv, mk.nextIndiv = mk.nextIndiv, mk.indiv
	mk.bid, mk.nextBid = mk.nextBid, mk.bid
	mk.time++

	return nil
}

// Run calls Step rounds times, checking ctx between rounds. It returns the
// first Step error, or ctx.Err() if the context ends first.
func (mk *Market) Run(ctx context.Context, rounds int) error {
	for r := 0; r < rounds; r++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := mk.Step(); err != nil {
			return err
		}
	}

	return nil
}

// fail records err as the terminal cause and returns it.
func (mk *Market) fail(err error) error {
	mk.state = Failed
	mk.err = err

	return err
}

// derivePrices writes the column sums of bid into price and rejects the
// first zero entry.
func (mk *Market) derivePrices(bid *matrix.Dense, price []float64) error {
	if err := bid.ColSumsInto(price); err != nil {
		return err
	}
	for j, p := range price {
		if p == 0 {
			return &DegeneratePriceError{Good: j, Time: mk.time}
		}
	}

	return nil
}

// deriveQuantities writes qty[i][j] = bid[i][j] / price[j]. Prices are
// already known to be non-zero.
func (mk *Market) deriveQuantities(bid *matrix.Dense, price []float64, qty *matrix.Dense) {
	var i, j int
	for i = 0; i < mk.n; i++ {
		b, q := bid.RowView(i), qty.RowView(i)
		for j = 0; j < mk.m; j++ {
			q[j] = b[j] / price[j]
		}
	}
}

// utilityPhase computes nextIndiv[lo:hi] from the frozen nextQty.
func (mk *Market) utilityPhase(lo, hi int) {
	for i := lo; i < hi; i++ {
		mk.nextIndiv[i] = mk.rule.utility(i, mk.utility.RowView(i), mk.nextQty.RowView(i))
	}
}

// bidPhase computes nextBid rows [lo:hi).
func (mk *Market) bidPhase(lo, hi int) {
	for i := lo; i < hi; i++ {
		mk.splitOK[i] = mk.rule.bids(i, mk.budget[i],
			mk.utility.RowView(i), mk.nextQty.RowView(i), mk.nextIndiv[i], mk.nextBid.RowView(i))
	}
}

// forEachBuyer runs phase over [0,n), split into contiguous chunks across
// the configured workers. Each chunk writes only its own buyers' slots.
func (mk *Market) forEachBuyer(phase func(lo, hi int)) {
	workers := mk.cfg.workers
	if workers > mk.n {
		workers = mk.n
	}
	if workers <= 1 {
		phase(0, mk.n)
		return
	}

	var g errgroup.Group
	chunk := (mk.n + workers - 1) / workers
	for lo := 0; lo < mk.n; lo += chunk {
		lo, hi := lo, min(lo+chunk, mk.n)
		g.Go(func() error {
			phase(lo, hi)
			return nil
		})
	}
	_ = g.Wait() // phases never return errors
}

// auditBudgets re-checks Σ_j bid[i][j] ≤ budget[i]·(1+tol) + tol.
func (mk *Market) auditBudgets(bid *matrix.Dense, t int) error {
	tol := mk.cfg.budgetAudit
	for i, total := range bid.RowSums() {
		if total > mk.budget[i]*(1+tol)+tol {
			return &BudgetViolationError{Buyer: i, Total: total, Budget: mk.budget[i], Time: t}
		}
	}

	return nil
}
