// SPDX-License-Identifier: MIT

package factor

import (
	"math"

	"github.com/katalvlaran/batchla/batch"
	"github.com/katalvlaran/batchla/matrix"
	"github.com/katalvlaran/batchla/parallel"
)

// LU factors every element of a with Gaussian elimination and partial pivoting.
//
// Implementation:
//   - Stage 1: validate a is a non-nil batch of square matrices.
//   - Stage 2: copy a into engine-owned storage (or alias it under WithInPlace).
//   - Stage 3: per element, independently and possibly in parallel: at step k
//     pick the row with the largest |w[i,k]| among rows i ≥ k, swap it up
//     (recorded in the permutation), then eliminate below the pivot.
//
// Behavior highlights:
//   - A pivot with |p| ≤ tol × max|a_ij| (or a zero/NaN element scale) marks
//     that element StatusSingular; elimination stops for it and every other
//     element is still factored.
//   - The input is never written unless WithInPlace is given.
//
// Errors:
//   - batch.ErrNilBatch, batch.ErrShapeMismatch (non-square elements).
//
// Complexity:
//   - Time O(N·m³), Space O(N·m²) for the factors plus O(N·m) for permutations.
func LU(a *batch.Dense, opts ...Option) (*Factorization, error) {
	if err := validateSquare(a); err != nil {
		return nil, factorErrorf(opLU, err)
	}
	o := gatherOptions(opts...)

	factors := a
	if !o.inPlace {
		factors = a.Clone()
	}
	m := a.Rows()
	f := &Factorization{
		kind:    KindLU,
		factors: factors,
		perm:    make([]int, a.Len()*m),
		status:  make([]batch.Status, a.Len()),
	}

	parallel.For(a.Len(), func(i int) {
		f.status[i] = luElement(factors.Raw(i), f.perm[i*m:(i+1)*m], m, o.pivotTol)
	}, o.par)

	return f, nil
}

// luElement factors one row-major m×m block w in place.
// perm receives the row order; the return value is the element status.
func luElement(w []float64, perm []int, m int, tol float64) batch.Status {
	for i := range perm {
		perm[i] = i
	}
	scale := matrix.MaxAbsRaw(w)
	if !(scale > 0) { // zero matrix or NaN entries
		return batch.StatusSingular
	}
	threshold := tol * scale

	var (
		i, j, k, p int
		pmax, v    float64
		pivot, l   float64
	)
	for k = 0; k < m; k++ {
		// Partial pivoting: largest magnitude in column k among rows k..m-1.
		p, pmax = k, math.Abs(w[k*m+k])
		for i = k + 1; i < m; i++ {
			if v = math.Abs(w[i*m+k]); v > pmax {
				p, pmax = i, v
			}
		}
		if !(pmax > threshold) {
			return batch.StatusSingular
		}
		if p != k {
			for j = 0; j < m; j++ {
				w[k*m+j], w[p*m+j] = w[p*m+j], w[k*m+j]
			}
			perm[k], perm[p] = perm[p], perm[k]
		}

		pivot = w[k*m+k]
		for i = k + 1; i < m; i++ {
			l = w[i*m+k] / pivot
			w[i*m+k] = l
			if l == 0 {
				continue
			}
			for j = k + 1; j < m; j++ {
				w[i*m+j] -= l * w[k*m+j]
			}
		}
	}

	return batch.StatusOK
}
