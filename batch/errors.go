// SPDX-License-Identifier: MIT
// Package batch: sentinel error set.
//
// Two families live here:
//   - structural errors (ErrShapeMismatch, ErrInvalidDimensions, ...) abort a
//     whole call and are returned as error values;
//   - numerical per-element failures (ErrSingular, ErrNotPositiveDefinite,
//     ErrRankDeficient) are never returned by engines; they are recorded as a
//     Status per element and surfaced through Status.Err / Result.Err so callers
//     can still match them with errors.Is.

package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimensions indicates count, rows or cols is non-positive.
	ErrInvalidDimensions = errors.New("batch: count and dimensions must be > 0")

	// ErrBufferLength indicates a flat buffer does not hold count*rows*cols values.
	ErrBufferLength = errors.New("batch: buffer length does not match count*rows*cols")

	// ErrNilBatch indicates a nil *Dense or *Result was passed.
	ErrNilBatch = errors.New("batch: nil batch")

	// ErrIndexOutOfRange indicates a batch index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("batch: element index out of range")

	// ErrShapeMismatch indicates element counts or dimensions between operands
	// disagree. It is a caller contract violation and fails the whole call.
	ErrShapeMismatch = errors.New("batch: shape mismatch")

	// ErrBadPermutation indicates a permutation that is not a bijection on [0, n).
	ErrBadPermutation = errors.New("batch: invalid permutation")

	// ErrSingular marks an element whose LU pivot fell below tolerance.
	ErrSingular = errors.New("batch: singular matrix")

	// ErrNotPositiveDefinite marks an element whose Cholesky radicand was not positive.
	ErrNotPositiveDefinite = errors.New("batch: matrix is not positive definite")

	// ErrRankDeficient marks an element whose design matrix has fewer effective
	// independent columns than requested.
	ErrRankDeficient = errors.New("batch: rank-deficient design matrix")
)

// batchErrorf wraps err with an operation tag, preserving the sentinel via %w.
func batchErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
