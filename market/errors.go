// SPDX-License-Identifier: MIT
// Package: market
//
// errors.go — sentinel and typed errors for market construction and dynamics.
//
// Error policy:
//   • Every failure matches exactly one sentinel via errors.Is.
//   • Failures that carry indices (price, utility, budget) are typed errors
//     whose Unwrap returns the sentinel; use errors.As to read the indices.
//   • Construction errors are fatal to that construction attempt only.
//     Step errors are fatal to the Market instance (state becomes Failed).
//   • Nothing here is ever clamped or substituted with a default value.

package market

import (
	"errors"
	"fmt"
)

var (
	// ErrDimension indicates malformed construction inputs: budget length
	// differs from the utility row count, bid/utility shapes differ, rows are
	// ragged, or the market is empty.
	ErrDimension = errors.New("market: dimension mismatch")

	// ErrInvalidValue indicates NaN/±Inf anywhere in the inputs, or a negative
	// budget, bid or utility parameter.
	ErrInvalidValue = errors.New("market: invalid input value")

	// ErrBudgetViolation indicates that a buyer's total bid exceeds its budget.
	// Returned as *BudgetViolationError.
	ErrBudgetViolation = errors.New("market: bids exceed budget")

	// ErrDegeneratePrice indicates that a good received no bids (zero price).
	// Returned as *DegeneratePriceError.
	ErrDegeneratePrice = errors.New("market: degenerate price")

	// ErrDegenerateUtility indicates that a buyer's realized utility is zero.
	// Returned as *DegenerateUtilityError.
	ErrDegenerateUtility = errors.New("market: degenerate utility")

	// ErrInvalidRule indicates an update rule with out-of-domain parameters
	// (α ∉ (0,1], linear-good count ∉ [0,m], unknown kind).
	ErrInvalidRule = errors.New("market: invalid update rule")

	// ErrMarketFailed is returned by Step on a Market already in the Failed
	// state. The original cause is wrapped alongside it.
	ErrMarketFailed = errors.New("market: market has failed")

	// ErrUninitialized is returned by Step on a zero-value Market.
	ErrUninitialized = errors.New("market: market is not initialized")
)

// DegeneratePriceError reports the first good (ascending index) whose price
// collapsed to zero, and the market time at which it happened.
type DegeneratePriceError struct {
	Good int // zero-based good index
	Time int // market time when the price was recomputed
}

// Error implements error.
func (e *DegeneratePriceError) Error() string {
	return fmt.Sprintf("market: price of good %d reached 0 at time %d", e.Good, e.Time)
}

// Unwrap exposes ErrDegeneratePrice to errors.Is.
func (e *DegeneratePriceError) Unwrap() error { return ErrDegeneratePrice }

// DegenerateUtilityError reports the first buyer (ascending index) whose
// realized utility (or gradient normalizer) is zero. This means the buyer's
// bids were placed only on goods it values at zero.
type DegenerateUtilityError struct {
	Buyer int // zero-based buyer index
	Time  int // market time of the failing round
}

// Error implements error.
func (e *DegenerateUtilityError) Error() string {
	return fmt.Sprintf("market: buyer %d receives no utility from its bundle at time %d", e.Buyer, e.Time)
}

// Unwrap exposes ErrDegenerateUtility to errors.Is.
func (e *DegenerateUtilityError) Unwrap() error { return ErrDegenerateUtility }

// BudgetViolationError reports a buyer whose total bid exceeds its budget,
// either at construction (Time 0) or, with WithBudgetAudit, after a round.
type BudgetViolationError struct {
	Buyer  int
	Total  float64 // Σ_j bid[i][j]
	Budget float64
	Time   int
}

// Error implements error.
func (e *BudgetViolationError) Error() string {
	return fmt.Sprintf("market: buyer %d bids %g over budget %g at time %d", e.Buyer, e.Total, e.Budget, e.Time)
}

// Unwrap exposes ErrBudgetViolation to errors.Is.
func (e *BudgetViolationError) Unwrap() error { return ErrBudgetViolation }
