// SPDX-License-Identifier: MIT
package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/prdyn/matrix"
)

// TestNewDense_BadShape verifies that non-positive dimensions are rejected.
func TestNewDense_BadShape(t *testing.T) {
	_, err := matrix.NewDense(0, 3)
	assert.ErrorIs(t, err, matrix.ErrBadShape)
	_, err = matrix.NewDense(2, -1)
	assert.ErrorIs(t, err, matrix.ErrBadShape)

	m, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	r, c := m.Shape()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, [][]float64{{0, 0, 0}, {0, 0, 0}}, m.ToRows())
}

// TestFromRows_CopiesAndValidates checks deep copy, ragged rows and NaN rejection.
func TestFromRows_CopiesAndValidates(t *testing.T) {
	src := [][]float64{{1, 2}, {3, 4}}
	m, err := matrix.FromRows(src)
	require.NoError(t, err)
	src[0][0] = 99 // caller mutation must not leak in
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, m.ToRows())

	_, err = matrix.FromRows([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = matrix.FromRows(nil)
	assert.ErrorIs(t, err, matrix.ErrBadShape)

	_, err = matrix.FromRows([][]float64{{1, math.NaN()}})
	assert.ErrorIs(t, err, matrix.ErrNaNInf)
}

// TestDense_SetBounds verifies that Set returns ErrOutOfRange, never panics.
func TestDense_SetBounds(t *testing.T) {
	m, err := matrix.NewDense(2, 2)
	require.NoError(t, err)

	assert.ErrorIs(t, m.Set(2, 0, 1), matrix.ErrOutOfRange)
	assert.ErrorIs(t, m.Set(0, -1, 1), matrix.ErrOutOfRange)
	assert.ErrorIs(t, m.Set(0, 0, math.Inf(1)), matrix.ErrNaNInf)

	require.NoError(t, m.Set(1, 1, 5))
	assert.Equal(t, [][]float64{{0, 0}, {0, 5}}, m.ToRows())
}

// TestDense_CloneIndependence ensures Clone and ToRows never alias the source.
func TestDense_CloneIndependence(t *testing.T) {
	m, _ := matrix.FromRows([][]float64{{1, 2}, {3, 4}})
	c := m.Clone()
	require.NoError(t, c.Set(0, 0, 10))
	assert.Equal(t, 1.0, m.RowView(0)[0])

	rows := m.ToRows()
	rows[1][0] = -1
	assert.Equal(t, 3.0, m.RowView(1)[0])
}

// TestDense_RowViewAliases documents that RowView writes through.
func TestDense_RowViewAliases(t *testing.T) {
	m, _ := matrix.FromRows([][]float64{{1, 2}, {3, 4}})
	m.RowView(0)[1] = 7
	assert.Equal(t, [][]float64{{1, 7}, {3, 4}}, m.ToRows())
	assert.Len(t, m.RowView(1), 2)
}
