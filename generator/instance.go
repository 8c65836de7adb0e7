// SPDX-License-Identifier: MIT
// Package: generator
//
// instance.go — the Instance value and its shape checks.

package generator

import (
	"fmt"
	"math"

	"github.com/katalvlaran/prdyn/market"
)

// Instance is the (Budget, StartingBid, Utility) triple market.New consumes.
type Instance struct {
	Budget  []float64   `yaml:"budget"`
	Bids    [][]float64 `yaml:"bids,omitempty"`
	Utility [][]float64 `yaml:"utility"`
}

// Buyers returns n.
func (in Instance) Buyers() int { return len(in.Budget) }

// Goods returns m, or 0 for an empty instance.
func (in Instance) Goods() int {
	if len(in.Utility) == 0 {
		return 0
	}
	return len(in.Utility[0])
}

// Validate checks shapes and value domains without building a Market.
// Degenerate prices and budget overspend are left to market.New, which
// reports them with indices.
func (in Instance) Validate() error {
	n, m := in.Buyers(), in.Goods()
	if n < 1 {
		return ErrTooFewBuyers
	}
	if m < 1 {
		return ErrTooFewGoods
	}
	if len(in.Utility) != n {
		return fmt.Errorf("utility has %d rows, budget has %d entries: %w", len(in.Utility), n, ErrBadParameter)
	}
	if len(in.Bids) != n {
		return fmt.Errorf("bids has %d rows, budget has %d entries: %w", len(in.Bids), n, ErrBadParameter)
	}
	for i := 0; i < n; i++ {
		if !finiteNonNeg(in.Budget[i]) {
			return fmt.Errorf("budget[%d]=%g: %w", i, in.Budget[i], ErrBadParameter)
		}
		if err := checkRow("utility", i, in.Utility[i], m); err != nil {
			return err
		}
		if err := checkRow("bids", i, in.Bids[i], m); err != nil {
			return err
		}
	}

	return nil
}

// Market validates the instance and builds a Ready Market from it.
func (in Instance) Market(rule market.UpdateRule, opts ...market.Option) (*market.Market, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return market.New(in.Budget, in.Bids, in.Utility, rule, opts...)
}

// EqualSplit spreads every budget evenly over m goods. The last entry of each
// row absorbs rounding so the row sum never exceeds the budget.
// Complexity: O(n·m).
func EqualSplit(budget []float64, m int) [][]float64 {
	out := make([][]float64, len(budget))
	if m < 1 {
		return out
	}
	for i, b := range budget {
		row := make([]float64, m)
		share := b / float64(m)
		var s float64
		for j := 0; j < m-1; j++ {
			row[j] = share
			s += share
		}
		row[m-1] = math.Max(0, b-s)
		out[i] = row
	}

	return out
}

func checkRow(what string, i int, row []float64, m int) error {
	if len(row) != m {
		return fmt.Errorf("%s row %d has %d entries, want %d: %w", what, i, len(row), m, ErrBadParameter)
	}
	for j, v := range row {
		if !finiteNonNeg(v) {
			return fmt.Errorf("%s[%d][%d]=%g: %w", what, i, j, v, ErrBadParameter)
		}
	}

	return nil
}

func finiteNonNeg(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}
