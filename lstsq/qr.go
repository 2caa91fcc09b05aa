// SPDX-License-Identifier: MIT

package lstsq

import (
	"math"

	"github.com/katalvlaran/batchla/batch"
	"github.com/katalvlaran/batchla/matrix"
	"github.com/katalvlaran/batchla/parallel"
)

// QR solves min‖A_i·X_i − B_i‖ for every element by Householder QR.
//
// Implementation:
//   - Stage 1: apply WithIntercept if set; require aligned batches and rows ≥ cols.
//   - Stage 2: per element, triangularize a working copy of A_i with Householder
//     reflectors, applying each reflector to a copy of B_i as well (Qᵀ·B_i
//     without ever forming Q or AᵀA).
//   - Stage 3: back-substitute R·X_i = (Qᵀ·B_i)[:n].
//
// Behavior highlights:
//   - |R[j,j]| ≤ tol × max|R[k,k]| marks the element StatusRankDeficient. The
//     solution is still produced, dividing by the diagonal clamped to
//     ±threshold (components whose threshold is 0 are set to 0). Use SVD for a
//     well-defined minimum-norm answer in that case.
//   - Result.Rank holds the number of diagonal entries above the threshold.
//   - A design holding NaN or ±Inf fails with StatusSingular (NaN solution, rank 0).
//   - Inputs are never written.
//
// Errors:
//   - batch.ErrNilBatch, batch.ErrShapeMismatch.
//
// Complexity:
//   - Time O(N·(r·n² + r·n·k)), Space O(N·n·k) plus O(r·(n+k)) scratch per element.
func QR(a, b *batch.Dense, opts ...Option) (*batch.Result, error) {
	o := gatherOptions(opts...)
	a, err := prepare(opQR, a, b, o)
	if err != nil {
		return nil, err
	}

	r, n, k := a.Rows(), a.Cols(), b.Cols()
	res, err := batch.NewResult(a.Len(), n, k)
	if err != nil {
		return nil, lstsqErrorf(opQR, err)
	}
	res.Rank = make([]int, a.Len())
	tol := o.relativeTol(r, n)

	parallel.For(a.Len(), func(i int) {
		if !finite(a.Raw(i)) {
			res.Fail(i, batch.StatusSingular)
			return
		}
		w := make([]float64, r*n)
		copy(w, a.Raw(i))
		y := make([]float64, r*k)
		copy(y, b.Raw(i))
		vs := make([]float64, r*n)
		taus := make([]float64, n)

		householder(w, r, n, vs, taus)
		applyQT(vs, taus, y, r, n, k)
		rank := backSubstituteR(w, y, res.Solutions.Raw(i), r, n, k, tol)

		res.Rank[i] = rank
		if rank < n {
			res.Flag(i, batch.StatusRankDeficient)
		}
	}, o.par)

	return res, nil
}

// QRFactor returns the thin factorization A = Q·R of one rows×cols matrix
// (rows ≥ cols): Q is rows×cols with orthonormal columns, R is cols×cols upper
// triangular. It uses the same reflectors as QR.
func QRFactor(a *matrix.Dense) (q, rf *matrix.Dense, err error) {
	if err = matrix.ValidateNotNil(a); err != nil {
		return nil, nil, lstsqErrorf(opQRFactor, err)
	}
	r, n := a.Shape()
	if r < n {
		return nil, nil, lstsqErrorf(opQRFactor, batch.ErrShapeMismatch)
	}

	w := make([]float64, r*n)
	copy(w, a.Raw())
	vs := make([]float64, r*n)
	taus := make([]float64, n)
	householder(w, r, n, vs, taus)

	if rf, err = matrix.NewDense(n, n); err != nil {
		return nil, nil, lstsqErrorf(opQRFactor, err)
	}
	for i := 0; i < n; i++ {
		copy(rf.Raw()[i*n+i:(i+1)*n], w[i*n+i:(i+1)*n])
	}

	// Q = H_0·…·H_{n-1}·[I; 0]: apply the reflectors in reverse to the first n unit columns.
	if q, err = matrix.NewDense(r, n); err != nil {
		return nil, nil, lstsqErrorf(opQRFactor, err)
	}
	qd := q.Raw()
	for i := 0; i < n; i++ {
		qd[i*n+i] = 1
	}
	for j := n - 1; j >= 0; j-- {
		reflect(vs, taus[j], j, r, n, qd, n)
	}

	return q, rf, nil
}

// householder triangularizes the row-major r×n block w in place (r ≥ n).
// Column j of vs (rows j..r-1) receives reflector j and taus[j] its 2/vᵀv
// factor (0 when the column was already zero). On return the upper triangle
// of w is R and its strict lower part is zero.
func householder(w []float64, r, n int, vs, taus []float64) {
	var (
		i, j, c          int
		norm, alpha      float64
		beta, sum, scale float64
	)
	for j = 0; j < n; j++ {
		taus[j] = 0

		// Scaled norm of w[j:r, j] avoids overflow/underflow on extreme data.
		scale = 0
		for i = j; i < r; i++ {
			scale = math.Max(scale, math.Abs(w[i*n+j]))
		}
		if scale == 0 {
			continue // zero column: R[j,j] = 0, no reflector
		}
		norm = 0
		for i = j; i < r; i++ {
			v := w[i*n+j] / scale
			norm += v * v
		}
		norm = scale * math.Sqrt(norm)

		alpha = -math.Copysign(norm, w[j*n+j])
		for i = j; i < r; i++ {
			vs[i*n+j] = w[i*n+j]
		}
		vs[j*n+j] -= alpha

		beta = 0
		for i = j; i < r; i++ {
			beta += vs[i*n+j] * vs[i*n+j]
		}
		if beta == 0 {
			continue
		}
		taus[j] = 2 / beta

		// Column j becomes (alpha, 0, ..., 0).
		w[j*n+j] = alpha
		for i = j + 1; i < r; i++ {
			w[i*n+j] = 0
		}
		for c = j + 1; c < n; c++ {
			sum = 0
			for i = j; i < r; i++ {
				sum += vs[i*n+j] * w[i*n+c]
			}
			sum *= taus[j]
			for i = j; i < r; i++ {
				w[i*n+c] -= sum * vs[i*n+j]
			}
		}
	}
}

// reflect applies reflector j (stored in column j of vs, row stride n) to
// every column of the r×cols block x: x ← (I − tau·v·vᵀ)·x.
func reflect(vs []float64, tau float64, j, r, n int, x []float64, cols int) {
	if tau == 0 {
		return
	}
	var i, c int
	var sum float64
	for c = 0; c < cols; c++ {
		sum = 0
		for i = j; i < r; i++ {
			sum += vs[i*n+j] * x[i*cols+c]
		}
		sum *= tau
		for i = j; i < r; i++ {
			x[i*cols+c] -= sum * vs[i*n+j]
		}
	}
}

// applyQT overwrites the r×k block y with Qᵀ·y = H_{n-1}·…·H_0·y.
func applyQT(vs, taus, y []float64, r, n, k int) {
	for j := 0; j < n; j++ {
		reflect(vs, taus[j], j, r, n, y, k)
	}
}

// backSubstituteR solves R·X = Y[:n] into x (n×k), R the upper triangle of w
// (row stride n). It returns the count of diagonal entries above
// tol × max|R[j,j]|; smaller entries are clamped to ±threshold.
func backSubstituteR(w, y, x []float64, r, n, k int, tol float64) int {
	rmax := 0.0
	for j := 0; j < n; j++ {
		rmax = math.Max(rmax, math.Abs(w[j*n+j]))
	}
	threshold := tol * rmax

	rank := 0
	var i, j, c int
	var d, s float64
	for i = n - 1; i >= 0; i-- {
		d = w[i*n+i]
		if math.Abs(d) > threshold {
			rank++
		} else if threshold > 0 {
			d = math.Copysign(threshold, d)
		} else {
			for c = 0; c < k; c++ {
				x[i*k+c] = 0
			}
			continue
		}
		for c = 0; c < k; c++ {
			s = y[i*k+c]
			for j = i + 1; j < n; j++ {
				s -= w[i*n+j] * x[j*k+c]
			}
			x[i*k+c] = s / d
		}
	}

	return rank
}
