// SPDX-License-Identifier: MIT
package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/prdyn/matrix"
)

// TestColRowSums verifies both reductions on a small fixture.
func TestColRowSums(t *testing.T) {
	m, err := matrix.FromRows([][]float64{
		{0, 1, 0},
		{0, 0, 2},
		{0, 3, 0},
		{1, 1, 2},
	})
	require.NoError(t, err)

	cols := []float64{9, 9, 9} // overwritten, not accumulated into
	require.NoError(t, m.ColSumsInto(cols))
	assert.Equal(t, []float64{1, 5, 4}, cols)
	assert.Equal(t, []float64{1, 2, 3, 4}, m.RowSums())

	dst := make([]float64, 2)
	assert.ErrorIs(t, m.ColSumsInto(dst), matrix.ErrDimensionMismatch)
}

// TestNormalizeRowsL1 checks unit row sums and that zero rows are untouched.
func TestNormalizeRowsL1(t *testing.T) {
	m, _ := matrix.FromRows([][]float64{{1, 3}, {0, 0}})
	norms := m.NormalizeRowsL1()
	assert.Equal(t, []float64{4, 0}, norms)
	assert.Equal(t, [][]float64{{0.25, 0.75}, {0, 0}}, m.ToRows())
}

// TestMaxAbsDiff checks L∞ distance and the length guard.
func TestMaxAbsDiff(t *testing.T) {
	d, err := matrix.MaxAbsDiff([]float64{1, 2, 3}, []float64{1, 2.5, 2})
	require.NoError(t, err)
	assert.Equal(t, 1.0, d)

	_, err = matrix.MaxAbsDiff([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	assert.Equal(t, 6.0, matrix.Sum([]float64{1, 2, 3}))
}
