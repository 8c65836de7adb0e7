// SPDX-License-Identifier: MIT
// Package: simulation
//
// metrics.go — scalar summaries of snapshots.

package simulation

import (
	"math"

	"github.com/katalvlaran/prdyn/market"
	"github.com/katalvlaran/prdyn/matrix"
)

// MaxPriceChange returns max_j |a[j] - b[j]|, or +Inf when the lengths differ.
// Complexity: O(m).
func MaxPriceChange(a, b []float64) float64 {
	d, err := matrix.MaxAbsDiff(a, b)
	if err != nil {
		return math.Inf(1)
	}

	return d
}

// Spending returns each buyer's total bid (row sums).
// Complexity: O(n·m).
func Spending(bids [][]float64) []float64 {
	out := make([]float64, len(bids))
	for i, row := range bids {
		out[i] = matrix.Sum(row)
	}

	return out
}

// PriceDrift is the L∞ distance between a snapshot's prices and the prices
// its committed bids will produce in the next round. It is 0 at a fixed point.
// Complexity: O(n·m).
func PriceDrift(s market.Snapshot) float64 {
	next := make([]float64, len(s.Price))
	for _, row := range s.Bid {
		for j, b := range row {
			if j < len(next) {
				next[j] += b
			}
		}
	}

	return MaxPriceChange(s.Price, next)
}
