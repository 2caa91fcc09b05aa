// SPDX-License-Identifier: MIT

// Package batch - contiguous storage for N independent small matrices.
//
// Purpose:
//   - Hold N matrices of identical shape rows×cols in one row-major buffer,
//     element i at data[i*rows*cols : (i+1)*rows*cols].
//   - Check the fixed batch/dimension contract at the boundary so no engine
//     reshapes implicitly.
//   - Keep values immutable by default: New copies, only Wrap aliases.
//
// Complexity quicksheet:
//   - New/Clone: O(N*r*c); Wrap/Raw: O(1); At: O(r*c) copy; Permute: O(N*r*c).

package batch

import (
	"fmt"

	"github.com/katalvlaran/batchla/matrix"
)

// ---------- error context tags ----------

const (
	ctxNew     = "New"
	ctxWrap    = "Wrap"
	ctxStack   = "Stack"
	ctxAt      = "At"
	ctxSetAt   = "SetAt"
	ctxPermute = "Permute"
	ctxMulInto = "MulInto"
	ctxResid   = "Residuals"
)

// Dense is a batch of count matrices, each rows×cols, stored contiguously.
// A BatchMatrix for LU/Cholesky is a square Dense; a right-hand side batch is
// rows×k and is index-aligned with its matrix batch by position.
type Dense struct {
	count, rows, cols int
	data              []float64 // len == count*rows*cols
}

// validateShape checks the (count, rows, cols, len) contract.
func validateShape(count, rows, cols, n int) error {
	if count <= 0 || rows <= 0 || cols <= 0 {
		return ErrInvalidDimensions
	}
	if n != count*rows*cols {
		return ErrBufferLength
	}

	return nil
}

// New builds a batch from an externally supplied flat buffer, copying it.
// The buffer holds count matrices in row-major order, one after another.
//
// Errors:
//   - ErrInvalidDimensions when count, rows or cols ≤ 0.
//   - ErrBufferLength when len(data) != count*rows*cols.
//
// Complexity:
//   - Time O(count*rows*cols), Space O(count*rows*cols).
func New(count, rows, cols int, data []float64) (*Dense, error) {
	if err := validateShape(count, rows, cols, len(data)); err != nil {
		return nil, batchErrorf(ctxNew, err)
	}
	buf := make([]float64, len(data))
	copy(buf, data)

	return &Dense{count: count, rows: rows, cols: cols, data: buf}, nil
}

// Wrap builds a batch that aliases data without copying.
// Any engine run in-place on the result writes straight into data; use Wrap
// only when that mutation is intended.
func Wrap(count, rows, cols int, data []float64) (*Dense, error) {
	if err := validateShape(count, rows, cols, len(data)); err != nil {
		return nil, batchErrorf(ctxWrap, err)
	}

	return &Dense{count: count, rows: rows, cols: cols, data: data}, nil
}

// Zeros allocates a zero-filled batch.
func Zeros(count, rows, cols int) (*Dense, error) {
	if err := validateShape(count, rows, cols, count*rows*cols); err != nil {
		return nil, batchErrorf(ctxNew, err)
	}

	return &Dense{count: count, rows: rows, cols: cols, data: make([]float64, count*rows*cols)}, nil
}

// Stack copies one or more same-shape matrices into a new batch.
//
// Errors:
//   - ErrInvalidDimensions when ms is empty, ErrNilBatch on a nil element,
//     ErrShapeMismatch when shapes differ.
func Stack(ms ...*matrix.Dense) (*Dense, error) {
	if len(ms) == 0 {
		return nil, batchErrorf(ctxStack, ErrInvalidDimensions)
	}
	if ms[0] == nil {
		return nil, batchErrorf(ctxStack, ErrNilBatch)
	}
	rows, cols := ms[0].Shape()
	out, err := Zeros(len(ms), rows, cols)
	if err != nil {
		return nil, batchErrorf(ctxStack, err)
	}
	for i, m := range ms {
		if m == nil {
			return nil, batchErrorf(ctxStack, fmt.Errorf("element %d: %w", i, ErrNilBatch))
		}
		if r, c := m.Shape(); r != rows || c != cols {
			return nil, batchErrorf(ctxStack, fmt.Errorf("element %d is %dx%d, want %dx%d: %w", i, r, c, rows, cols, ErrShapeMismatch))
		}
		copy(out.Raw(i), m.Raw())
	}

	return out, nil
}

// Len returns the number of elements N.
func (d *Dense) Len() int { return d.count }

// Rows returns the per-element row count.
func (d *Dense) Rows() int { return d.rows }

// Cols returns the per-element column count.
func (d *Dense) Cols() int { return d.cols }

// Stride returns rows*cols, the distance between consecutive elements in Data.
func (d *Dense) Stride() int { return d.rows * d.cols }

// IsSquare reports rows == cols.
func (d *Dense) IsSquare() bool { return d.rows == d.cols }

// Data exposes the whole backing buffer (shared, not copied).
func (d *Dense) Data() []float64 { return d.data }

// Raw returns element i's row-major slice, sharing storage with d.
// The slice capacity is clipped so appends cannot spill into element i+1.
// Raw panics on an out-of-range index, like slice indexing.
func (d *Dense) Raw(i int) []float64 {
	s := d.rows * d.cols
	return d.data[i*s : (i+1)*s : (i+1)*s]
}

// At returns a copy of element i as a matrix.Dense.
func (d *Dense) At(i int) (*matrix.Dense, error) {
	if i < 0 || i >= d.count {
		return nil, batchErrorf(ctxAt, fmt.Errorf("index %d: %w", i, ErrIndexOutOfRange))
	}

	return matrix.NewDenseFrom(d.rows, d.cols, d.Raw(i))
}

// SetAt overwrites element i with m.
func (d *Dense) SetAt(i int, m *matrix.Dense) error {
	if i < 0 || i >= d.count {
		return batchErrorf(ctxSetAt, fmt.Errorf("index %d: %w", i, ErrIndexOutOfRange))
	}
	if m == nil {
		return batchErrorf(ctxSetAt, ErrNilBatch)
	}
	if r, c := m.Shape(); r != d.rows || c != d.cols {
		return batchErrorf(ctxSetAt, ErrShapeMismatch)
	}
	copy(d.Raw(i), m.Raw())

	return nil
}

// Clone returns a deep copy with an independent buffer.
func (d *Dense) Clone() *Dense {
	buf := make([]float64, len(d.data))
	copy(buf, d.data)

	return &Dense{count: d.count, rows: d.rows, cols: d.cols, data: buf}
}

// SameShape reports whether d and o have identical count, rows and cols.
func (d *Dense) SameShape(o *Dense) bool {
	return o != nil && d.count == o.count && d.rows == o.rows && d.cols == o.cols
}

// Permute returns a new batch whose element k is d's element perm[k].
//
// Errors:
//   - ErrBadPermutation unless perm is a bijection on [0, Len()).
func (d *Dense) Permute(perm []int) (*Dense, error) {
	if err := ValidatePermutation(perm, d.count); err != nil {
		return nil, batchErrorf(ctxPermute, err)
	}
	out := &Dense{count: d.count, rows: d.rows, cols: d.cols, data: make([]float64, len(d.data))}
	for k, src := range perm {
		copy(out.Raw(k), d.Raw(src))
	}

	return out, nil
}

// ValidatePermutation checks perm is a bijection on [0, n).
func ValidatePermutation(perm []int, n int) error {
	if len(perm) != n {
		return ErrBadPermutation
	}
	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return ErrBadPermutation
		}
		seen[p] = true
	}

	return nil
}

// ValidatePair checks that a (matrices) and b (right-hand sides) are a
// structurally valid request: non-nil, same element count, and a.Rows() == b.Rows().
// When square is true, a's elements must also be square.
//
// Errors:
//   - ErrNilBatch, ErrShapeMismatch.
func ValidatePair(a, b *Dense, square bool) error {
	if a == nil || b == nil {
		return ErrNilBatch
	}
	if square && a.rows != a.cols {
		return fmt.Errorf("matrix elements are %dx%d, want square: %w", a.rows, a.cols, ErrShapeMismatch)
	}
	if a.count != b.count {
		return fmt.Errorf("batch counts %d and %d differ: %w", a.count, b.count, ErrShapeMismatch)
	}
	if a.rows != b.rows {
		return fmt.Errorf("matrix rows %d and right-hand side rows %d differ: %w", a.rows, b.rows, ErrShapeMismatch)
	}

	return nil
}
