// Package matrix offers the dense numeric storage used by market dynamics.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix with bounds-checked Set and
//     unchecked RowView for hot loops owned by a single caller.
//   - Row and column reductions (ColSumsInto, RowSums) and L1 row normalization.
//   - Validators returning sentinel errors (ErrDimensionMismatch, ErrNaNInf,
//     ErrNegative, ...) for use with errors.Is.
//
// All loops run in a fixed i→j order so that identical inputs produce
// bit-identical outputs.
package matrix
