// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for common validation checks.
//  - Return sentinel errors wrapped with a validator tag so call sites can add
//    their own context and callers can still use errors.Is.
//
// Determinism & Performance:
//  - All checks are pure, deterministic and allocate nothing on success.
//
// Note:
//  - Each composite validator follows a fixed sequence (NotNil → Shape → Values).

package matrix

import (
	"fmt"
	"math"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil ensures the matrix reference is non-nil.
// Complexity: O(1).
func ValidateNotNil(m *Dense) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSameShape ensures a and b are non-nil and have equal dimensions.
// Complexity: O(1).
func ValidateSameShape(a, b *Dense) error {
	if a == nil || b == nil {
		return validatorErrorf("ValidateSameShape", ErrNilMatrix)
	}
	if a.r != b.r {
		return validatorErrorf("ValidateSameShape: Rows", ErrDimensionMismatch)
	}
	if a.c != b.c {
		return validatorErrorf("ValidateSameShape: Columns", ErrDimensionMismatch)
	}

	return nil
}

// ValidateVecLen ensures the vector length matches the required size n.
// Nil vectors are rejected even when n == 0.
// Complexity: O(1).
func ValidateVecLen(x []float64, n int) error {
	if x == nil {
		return validatorErrorf("ValidateVecLen", ErrNilMatrix)
	}
	if len(x) != n {
		return validatorErrorf("ValidateVecLen", ErrDimensionMismatch)
	}

	return nil
}

// validateFinite rejects NaN/±Inf entries; the error names the first offender.
// Complexity: O(len(x)).
func validateFinite(x []float64) error {
	for k, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return validatorErrorf(fmt.Sprintf("ValidateNonNegative: index %d", k), ErrNaNInf)
		}
	}

	return nil
}

// ValidateNonNegativeVec rejects NaN/±Inf and negative entries.
// Complexity: O(len(x)).
func ValidateNonNegativeVec(x []float64) error {
	if err := validateFinite(x); err != nil {
		return err
	}
	for k, v := range x {
		if v < 0 {
			return validatorErrorf(fmt.Sprintf("ValidateNonNegative: index %d", k), ErrNegative)
		}
	}

	return nil
}

// ValidateNonNegative rejects negative entries of m (Dense already holds only
// finite values). The error carries the first offending coordinates.
// Complexity: O(r*c).
func ValidateNonNegative(m *Dense) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	for off, v := range m.data {
		if v < 0 {
			return validatorErrorf(fmt.Sprintf("ValidateNonNegative: (%d,%d)", off/m.c, off%m.c), ErrNegative)
		}
	}

	return nil
}
