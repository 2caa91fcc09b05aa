// SPDX-License-Identifier: MIT
// Package matrix provides the reference operations on Dense matrices:
// multiplication, element scale and tolerance comparison. All functions
// perform strict fail-fast validation and return clear errors on dimension
// mismatches.

package matrix

import (
	"fmt"
	"math"
)

// ZeroSum is the initial value of every MulRaw accumulator.
const ZeroSum = 0.0

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opMul      = "Mul"
	opAllClose = "AllClose"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil to avoid creating a non-nil wrapper around a nil cause.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Mul computes the matrix product C = A×B.
//
// Implementation:
//   - Stage 1: validate non-nil operands and a.Cols == b.Rows.
//   - Stage 2: i-k-j loop over the flat buffers (row-major friendly), skipping zero a[i,k].
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch.
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul(a, b *Dense) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if a.c != b.r {
		return nil, matrixErrorf(opMul, ErrDimensionMismatch)
	}

	res, err := NewDense(a.r, b.c)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	MulRaw(res.data, a.data, a.r, a.c, b.data, b.c)

	return res, nil
}

// MulRaw writes the product of the row-major aRows×aCols buffer a and the
// aCols×bCols buffer b into dst (len aRows*bCols). dst must not alias a or b.
// It is the allocation-free kernel behind Mul, exported for batch loops.
func MulRaw(dst, a []float64, aRows, aCols int, b []float64, bCols int) {
	var (
		i, j, k                            int
		av                                 float64
		rowOffsetA, rowOffsetB, rowOffsetR int
	)
	for i = range dst {
		dst[i] = ZeroSum
	}
	for i = 0; i < aRows; i++ {
		rowOffsetA = i * aCols
		rowOffsetR = i * bCols
		for k = 0; k < aCols; k++ {
			av = a[rowOffsetA+k]
			if av == 0 {
				continue // skip zero for performance
			}
			rowOffsetB = k * bCols
			for j = 0; j < bCols; j++ {
				dst[rowOffsetR+j] += av * b[rowOffsetB+j]
			}
		}
	}
}

// MaxAbsRaw returns max|data[i]|, the element scale used by pivot
// thresholds. NaN entries propagate as NaN; an empty buffer reports 0.
func MaxAbsRaw(data []float64) float64 {
	scale := 0.0
	for _, v := range data {
		a := math.Abs(v)
		if math.IsNaN(a) {
			return a
		}
		if a > scale {
			scale = a
		}
	}

	return scale
}

// AllClose reports whether |a[i,j] - b[i,j]| ≤ atol + rtol*|b[i,j]| for all (i,j).
// Returns (true,nil) if all elements satisfy the relation; (false,nil) otherwise.
//
// Policy:
//   - a and b must be non-nil and have identical shapes.
//   - rtol, atol are treated as |rtol|, |atol| (negative values are normalized).
//
// Time: O(r*c). Space: O(1). Deterministic.
func AllClose(a, b *Dense, rtol, atol float64) (bool, error) {
	if math.IsNaN(rtol) || math.IsNaN(atol) || math.IsInf(rtol, 0) || math.IsInf(atol, 0) {
		return false, matrixErrorf(opAllClose, ErrNaNInf)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)

	if err := ValidateNotNil(a); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}

	for idx := range a.data {
		// NaN on either side fails the comparison via the negated test.
		if !(math.Abs(a.data[idx]-b.data[idx]) <= atol+rtol*math.Abs(b.data[idx])) {
			return false, nil // early-exit on first violation
		}
	}

	return true, nil
}
