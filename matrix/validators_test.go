// SPDX-License-Identifier: MIT
package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/prdyn/matrix"
)

// TestValidators is a table of sentinel expectations for each validator.
func TestValidators(t *testing.T) {
	a, _ := matrix.NewDense(2, 3)
	b, _ := matrix.NewDense(3, 2)
	neg, _ := matrix.FromRows([][]float64{{1, -0.5}})

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil matrix", matrix.ValidateNotNil(nil), matrix.ErrNilMatrix},
		{"same shape ok", matrix.ValidateSameShape(a, a.Clone()), nil},
		{"shape mismatch", matrix.ValidateSameShape(a, b), matrix.ErrDimensionMismatch},
		{"shape nil", matrix.ValidateSameShape(a, nil), matrix.ErrNilMatrix},
		{"vec nil", matrix.ValidateVecLen(nil, 0), matrix.ErrNilMatrix},
		{"vec len", matrix.ValidateVecLen([]float64{1}, 2), matrix.ErrDimensionMismatch},
		{"non-negative vec nan", matrix.ValidateNonNegativeVec([]float64{1, math.NaN()}), matrix.ErrNaNInf},
		{"non-negative vec", matrix.ValidateNonNegativeVec([]float64{0, -1}), matrix.ErrNegative},
		{"non-negative vec inf", matrix.ValidateNonNegativeVec([]float64{math.Inf(-1)}), matrix.ErrNaNInf},
		{"non-negative dense", matrix.ValidateNonNegative(neg), matrix.ErrNegative},
		{"non-negative ok", matrix.ValidateNonNegative(a), nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.want == nil {
				assert.NoError(t, tc.err)
				return
			}
			assert.ErrorIs(t, tc.err, tc.want)
		})
	}
}
