// SPDX-License-Identifier: MIT

package factor

import (
	"fmt"

	"github.com/katalvlaran/batchla/batch"
	"github.com/katalvlaran/batchla/matrix"
)

// Kind tags the variant of a Factorization.
type Kind uint8

const (
	// KindLU is the combined unit-lower/upper factor with a row permutation.
	KindLU Kind = iota
	// KindCholesky is the lower-triangular factor L with A = L·Lᵀ.
	KindCholesky
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindLU:
		return "LU"
	case KindCholesky:
		return "Cholesky"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Factorization is the batched result of one LU or Cholesky call: one factor
// per element, of a single Kind, plus a per-element success status.
//
// LU elements store L (strictly below the diagonal, unit diagonal implied) and
// U (on and above the diagonal) in one m×m block, and a permutation perm with
// row k of L·U equal to row perm[k] of the source matrix.
// Cholesky elements store L with zeros above the diagonal.
//
// A Factorization holds no reference to the source batch (unless it was
// produced in-place, in which case its factors are the source buffer).
// Elements that failed hold a partial factor that Solve never reads.
type Factorization struct {
	kind    Kind
	factors *batch.Dense
	perm    []int // len == Len()*Dim() for KindLU; nil for KindCholesky
	status  []batch.Status
}

// Kind returns the factorization variant.
func (f *Factorization) Kind() Kind { return f.kind }

// Len returns the number of elements.
func (f *Factorization) Len() int { return f.factors.Len() }

// Dim returns m, the order of every factored matrix.
func (f *Factorization) Dim() int { return f.factors.Rows() }

// Status returns element i's status.
func (f *Factorization) Status(i int) batch.Status { return f.status[i] }

// OK reports whether element i factored successfully.
func (f *Factorization) OK(i int) bool { return f.status[i] == batch.StatusOK }

// Failed counts elements that did not factor.
func (f *Factorization) Failed() int {
	n := 0
	for _, s := range f.status {
		if s != batch.StatusOK {
			n++
		}
	}

	return n
}

// Factor returns a copy of element i's factor block.
func (f *Factorization) Factor(i int) (*matrix.Dense, error) {
	return f.factors.At(i)
}

// Perm returns a copy of element i's row permutation, or nil for Cholesky.
func (f *Factorization) Perm(i int) []int {
	if f.kind != KindLU || i < 0 || i >= f.Len() {
		return nil
	}
	m := f.Dim()
	out := make([]int, m)
	copy(out, f.perm[i*m:(i+1)*m])

	return out
}

// Reconstruct rebuilds element i's source matrix from its factors:
// Pᵀ·L·U for LU, L·Lᵀ for Cholesky. It is the check behind the
// factor-then-multiply round trip.
//
// Errors:
//   - batch.ErrIndexOutOfRange; the element's status sentinel when it failed.
func (f *Factorization) Reconstruct(i int) (*matrix.Dense, error) {
	if i < 0 || i >= f.Len() {
		return nil, fmt.Errorf("Reconstruct: index %d: %w", i, batch.ErrIndexOutOfRange)
	}
	if err := f.status[i].Err(); err != nil {
		return nil, fmt.Errorf("Reconstruct: element %d: %w", i, err)
	}

	m := f.Dim()
	w := f.factors.Raw(i)
	lower, err := matrix.NewDense(m, m)
	if err != nil {
		return nil, err
	}
	upper, err := matrix.NewDense(m, m)
	if err != nil {
		return nil, err
	}
	l, u := lower.Raw(), upper.Raw()

	switch f.kind {
	case KindLU:
		for r := 0; r < m; r++ {
			for c := 0; c < m; c++ {
				switch {
				case c < r:
					l[r*m+c] = w[r*m+c]
				case c == r:
					l[r*m+c] = 1
					u[r*m+c] = w[r*m+c]
				default:
					u[r*m+c] = w[r*m+c]
				}
			}
		}
	case KindCholesky:
		for r := 0; r < m; r++ {
			for c := 0; c <= r; c++ {
				l[r*m+c] = w[r*m+c]
				u[c*m+r] = w[r*m+c]
			}
		}
	}

	prod, err := matrix.Mul(lower, upper)
	if err != nil {
		return nil, err
	}
	if f.kind == KindCholesky {
		return prod, nil
	}

	// Undo the row permutation: source row perm[k] is row k of L·U.
	out, err := matrix.NewDense(m, m)
	if err != nil {
		return nil, err
	}
	p := f.perm[i*m : (i+1)*m]
	for k := 0; k < m; k++ {
		copy(out.Raw()[p[k]*m:(p[k]+1)*m], prod.Raw()[k*m:(k+1)*m])
	}

	return out, nil
}
