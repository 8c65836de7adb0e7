// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Provide the row/column reductions and row normalization used by market
//     dynamics and instance generation.
//   - Fixed i→j traversal for every loop so that results are bit-stable
//     across runs and platforms.
//
// Exposed API:
//   - ColSumsInto(dst)              // Σ_i a[i,j]
//   - RowSums()                     // Σ_j a[i,j]
//   - NormalizeRowsL1()             // row /= Σ|row| (degenerate rows unchanged)

package matrix

import (
	"fmt"
	"math"
)

const (
	opColSums         = "ColSums"
	opNormalizeRowsL1 = "NormalizeRowsL1"
)

// ColSumsInto writes the column sums of m into dst (len(dst) must equal Cols()).
// Implementation:
//   - Stage 1: validate dst length.
//   - Stage 2: zero dst, then accumulate rows in ascending i.
//
// Errors:
//   - ErrDimensionMismatch when len(dst) != Cols().
//
// Complexity:
//   - Time O(r*c), Space O(1).
func (m *Dense) ColSumsInto(dst []float64) error {
	if err := ValidateVecLen(dst, m.c); err != nil {
		return fmt.Errorf("%s: %w", opColSums, err)
	}
	var i, j int
	for j = 0; j < m.c; j++ {
		dst[j] = 0
	}
	for i = 0; i < m.r; i++ {
		row := m.data[i*m.c : (i+1)*m.c]
		for j = 0; j < m.c; j++ {
			dst[j] += row[j]
		}
	}

	return nil
}

// RowSums returns a freshly allocated vector of row sums.
// Complexity: O(r*c).
func (m *Dense) RowSums() []float64 {
	out := make([]float64, m.r)
	var i, j int
	var s float64
	for i = 0; i < m.r; i++ {
		s = 0
		row := m.data[i*m.c : (i+1)*m.c]
		for j = 0; j < m.c; j++ {
			s += row[j]
		}
		out[i] = s
	}

	return out
}

// NormalizeRowsL1 scales every row in place so that Σ_j |a[i,j]| == 1 and
// returns the original L1 norms. Rows with zero norm are left unchanged.
// Complexity: O(r*c).
func (m *Dense) NormalizeRowsL1() []float64 {
	norms := make([]float64, m.r)
	var i, j int
	var s float64
	for i = 0; i < m.r; i++ {
		row := m.data[i*m.c : (i+1)*m.c]
		s = 0
		for j = 0; j < m.c; j++ {
			s += math.Abs(row[j])
		}
		norms[i] = s
		if s == 0 { // degenerate row: keep as-is
			continue
		}
		for j = 0; j < m.c; j++ {
			row[j] /= s
		}
	}

	return norms
}

// Sum returns Σ x[k] in ascending k.
// Complexity: O(len(x)).
func Sum(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v
	}

	return s
}

// MaxAbsDiff returns max_k |a[k]-b[k]| (the L∞ distance).
// Errors:
//   - ErrDimensionMismatch when lengths differ.
//
// Complexity: O(len(a)).
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("MaxAbsDiff: %d vs %d: %w", len(a), len(b), ErrDimensionMismatch)
	}
	var d float64
	for k := range a {
		if v := math.Abs(a[k] - b[k]); v > d {
			d = v
		}
	}

	return d, nil
}
