// SPDX-License-Identifier: MIT

package factor

import (
	"fmt"

	"github.com/katalvlaran/batchla/batch"
	"github.com/katalvlaran/batchla/parallel"
)

// Operation name constants for unified error wrapping.
const (
	opLU            = "LU"
	opCholesky      = "Cholesky"
	opSolve         = "Solve"
	opSolveLU       = "SolveLU"
	opSolveCholesky = "SolveCholesky"
)

// factorErrorf wraps err with an operation tag, preserving the sentinel via %w.
func factorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// validateSquare checks a is a non-nil batch of square matrices.
func validateSquare(a *batch.Dense) error {
	if a == nil {
		return batch.ErrNilBatch
	}
	if !a.IsSquare() {
		return fmt.Errorf("elements are %dx%d, want square: %w", a.Rows(), a.Cols(), batch.ErrShapeMismatch)
	}

	return nil
}

// Solve solves A_i·X_i = B_i for every element using the factors in f.
//
// Implementation:
//   - LU: apply the recorded permutation to B_i, forward-substitute through the
//     unit-lower part, back-substitute through the upper part.
//   - Cholesky: forward-substitute through L, back-substitute through Lᵀ.
//
// Behavior highlights:
//   - Elements whose factorization failed get the same status in the Result
//     and NaN solution entries; they are never zero-filled.
//   - b is read-only unless WithInPlace is given, in which case the solutions
//     overwrite b and Result.Solutions is b.
//   - f is only read, so it may be solved against several right-hand sides.
//
// Errors:
//   - batch.ErrNilBatch (nil f or b).
//   - batch.ErrShapeMismatch (b.Len() != f.Len() or b.Rows() != f.Dim()).
//
// Complexity:
//   - Time O(N·m²·k), Space O(N·m·k) for the result (O(m·k) scratch per LU element).
func Solve(f *Factorization, b *batch.Dense, opts ...Option) (*batch.Result, error) {
	if f == nil || b == nil {
		return nil, factorErrorf(opSolve, batch.ErrNilBatch)
	}
	if b.Len() != f.Len() {
		return nil, factorErrorf(opSolve, fmt.Errorf("%d factors, %d right-hand sides: %w", f.Len(), b.Len(), batch.ErrShapeMismatch))
	}
	if b.Rows() != f.Dim() {
		return nil, factorErrorf(opSolve, fmt.Errorf("factor order %d, right-hand side rows %d: %w", f.Dim(), b.Rows(), batch.ErrShapeMismatch))
	}
	o := gatherOptions(opts...)

	var res *batch.Result
	if o.inPlace {
		res = batch.ResultOn(b)
	} else {
		var err error
		res, err = batch.NewResult(b.Len(), b.Rows(), b.Cols())
		if err != nil {
			return nil, factorErrorf(opSolve, err)
		}
		copy(res.Solutions.Data(), b.Data())
	}

	m, k := f.Dim(), b.Cols()
	parallel.For(f.Len(), func(i int) {
		if s := f.status[i]; s != batch.StatusOK {
			res.Fail(i, s)
			return
		}
		x := res.Solutions.Raw(i)
		w := f.factors.Raw(i)
		switch f.kind {
		case KindLU:
			permuteRows(x, f.perm[i*m:(i+1)*m], m, k)
			forwardUnitLower(w, x, m, k)
			backUpper(w, x, m, k)
		case KindCholesky:
			forwardLower(w, x, m, k)
			backLowerT(w, x, m, k)
		}
	}, o.par)

	return res, nil
}

// SolveLU factors a with LU and solves against b in one call.
// Shapes are checked before any factoring. Under WithInPlace both a (factors)
// and b (solutions) are overwritten.
func SolveLU(a, b *batch.Dense, opts ...Option) (*batch.Result, error) {
	if err := batch.ValidatePair(a, b, true); err != nil {
		return nil, factorErrorf(opSolveLU, err)
	}
	f, err := LU(a, opts...)
	if err != nil {
		return nil, factorErrorf(opSolveLU, err)
	}
	res, err := Solve(f, b, opts...)
	if err != nil {
		return nil, factorErrorf(opSolveLU, err)
	}

	return res, nil
}

// SolveCholesky factors a with Cholesky and solves against b in one call.
// Shapes are checked before any factoring. Under WithInPlace both a and b are
// overwritten.
func SolveCholesky(a, b *batch.Dense, opts ...Option) (*batch.Result, error) {
	if err := batch.ValidatePair(a, b, true); err != nil {
		return nil, factorErrorf(opSolveCholesky, err)
	}
	f, err := Cholesky(a, opts...)
	if err != nil {
		return nil, factorErrorf(opSolveCholesky, err)
	}
	res, err := Solve(f, b, opts...)
	if err != nil {
		return nil, factorErrorf(opSolveCholesky, err)
	}

	return res, nil
}

// permuteRows reorders the m×k block x so that new row r is old row perm[r].
func permuteRows(x []float64, perm []int, m, k int) {
	tmp := make([]float64, m*k)
	for r := 0; r < m; r++ {
		copy(tmp[r*k:(r+1)*k], x[perm[r]*k:(perm[r]+1)*k])
	}
	copy(x, tmp)
}

// forwardUnitLower solves L·Y = X in place, L unit lower (strict part of w).
func forwardUnitLower(w, x []float64, m, k int) {
	var i, j, c int
	var l float64
	for i = 1; i < m; i++ {
		for j = 0; j < i; j++ {
			if l = w[i*m+j]; l == 0 {
				continue
			}
			for c = 0; c < k; c++ {
				x[i*k+c] -= l * x[j*k+c]
			}
		}
	}
}

// backUpper solves U·X = Y in place, U the upper triangle of w.
func backUpper(w, x []float64, m, k int) {
	var i, j, c int
	var u, d float64
	for i = m - 1; i >= 0; i-- {
		for j = i + 1; j < m; j++ {
			if u = w[i*m+j]; u == 0 {
				continue
			}
			for c = 0; c < k; c++ {
				x[i*k+c] -= u * x[j*k+c]
			}
		}
		d = w[i*m+i]
		for c = 0; c < k; c++ {
			x[i*k+c] /= d
		}
	}
}

// forwardLower solves L·Y = X in place, L the lower triangle of w (with diagonal).
func forwardLower(w, x []float64, m, k int) {
	var i, j, c int
	var l, d float64
	for i = 0; i < m; i++ {
		for j = 0; j < i; j++ {
			if l = w[i*m+j]; l == 0 {
				continue
			}
			for c = 0; c < k; c++ {
				x[i*k+c] -= l * x[j*k+c]
			}
		}
		d = w[i*m+i]
		for c = 0; c < k; c++ {
			x[i*k+c] /= d
		}
	}
}

// backLowerT solves Lᵀ·X = Y in place; Lᵀ[i,j] is read as w[j,i].
func backLowerT(w, x []float64, m, k int) {
	var i, j, c int
	var l, d float64
	for i = m - 1; i >= 0; i-- {
		for j = i + 1; j < m; j++ {
			if l = w[j*m+i]; l == 0 {
				continue
			}
			for c = 0; c < k; c++ {
				x[i*k+c] -= l * x[j*k+c]
			}
		}
		d = w[i*m+i]
		for c = 0; c < k; c++ {
			x[i*k+c] /= d
		}
	}
}
