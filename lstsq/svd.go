// SPDX-License-Identifier: MIT

package lstsq

import (
	"math"
	"sort"

	"github.com/katalvlaran/batchla/batch"
	"github.com/katalvlaran/batchla/matrix"
	"github.com/katalvlaran/batchla/parallel"
)

// maxSweeps bounds the one-sided Jacobi iteration; convergence is
// quadratic, small designs settle in well under ten sweeps.
const maxSweeps = 64

// SVD solves min‖A_i·X_i − B_i‖ for every element through the thin singular
// value decomposition A_i = U·diag(σ)·Vᵀ, returning the minimum-norm solution
// X_i = V·diag(1/σ_j)·Uᵀ·B_i over the retained singular values.
//
// Implementation:
//   - Stage 1: apply WithIntercept if set; require aligned batches and rows ≥ cols.
//   - Stage 2: per element, one-sided Jacobi rotations orthogonalize the
//     columns of a working copy of A_i (accumulating V), then σ_j are the
//     column norms and U the normalized columns.
//   - Stage 3: keep σ_j > tol × σ_max and apply the pseudo-inverse to B_i.
//
// Behavior highlights:
//   - Rank-deficient elements get StatusRankDeficient but keep their
//     minimum-norm solution; Result.Rank holds the retained count.
//   - An all-zero design yields X_i = 0 and rank 0.
//   - A design holding NaN or ±Inf fails with StatusSingular (NaN solution, rank 0).
//   - Applying SVD to the same inputs twice yields identical solutions.
//
// Errors:
//   - batch.ErrNilBatch, batch.ErrShapeMismatch.
//
// Complexity:
//   - Time O(N·sweeps·r·n²), Space O(N·n·k) plus O(r·n + n²) scratch per element.
func SVD(a, b *batch.Dense, opts ...Option) (*batch.Result, error) {
	o := gatherOptions(opts...)
	a, err := prepare(opSVD, a, b, o)
	if err != nil {
		return nil, err
	}

	r, n, k := a.Rows(), a.Cols(), b.Cols()
	res, err := batch.NewResult(a.Len(), n, k)
	if err != nil {
		return nil, lstsqErrorf(opSVD, err)
	}
	res.Rank = make([]int, a.Len())
	tol := o.relativeTol(r, n)

	parallel.For(a.Len(), func(i int) {
		if !finite(a.Raw(i)) {
			res.Fail(i, batch.StatusSingular)
			return
		}
		u := make([]float64, r*n)
		copy(u, a.Raw(i))
		v := make([]float64, n*n)
		sigma := jacobiSVD(u, v, r, n)

		rank := pseudoSolve(u, sigma, v, b.Raw(i), res.Solutions.Raw(i), r, n, k, tol)
		res.Rank[i] = rank
		if rank < n {
			res.Flag(i, batch.StatusRankDeficient)
		}
	}, o.par)

	return res, nil
}

// Decompose returns the thin SVD of one rows×cols matrix (rows ≥ cols):
// u is rows×cols with orthonormal columns (a column whose singular value is
// zero is left zero), s holds the singular values in non-increasing order and
// v is the cols×cols orthogonal factor, so A = U·diag(s)·Vᵀ.
func Decompose(a *matrix.Dense) (u *matrix.Dense, s []float64, v *matrix.Dense, err error) {
	if err = matrix.ValidateNotNil(a); err != nil {
		return nil, nil, nil, lstsqErrorf(opDecompose, err)
	}
	r, n := a.Shape()
	if r < n {
		return nil, nil, nil, lstsqErrorf(opDecompose, batch.ErrShapeMismatch)
	}

	ud := make([]float64, r*n)
	copy(ud, a.Raw())
	vd := make([]float64, n*n)
	s = jacobiSVD(ud, vd, r, n)

	if u, err = matrix.NewDenseFrom(r, n, ud); err != nil {
		return nil, nil, nil, lstsqErrorf(opDecompose, err)
	}
	if v, err = matrix.NewDenseFrom(n, n, vd); err != nil {
		return nil, nil, nil, lstsqErrorf(opDecompose, err)
	}

	return u, s, v, nil
}

// jacobiSVD orthogonalizes the columns of the row-major r×n block u in place
// (Hestenes one-sided Jacobi), filling v (n×n) with the accumulated rotations.
// On return u holds the left singular vectors, v the right ones, and the
// returned slice the singular values, all sorted by non-increasing σ.
func jacobiSVD(u, v []float64, r, n int) []float64 {
	for i := range v {
		v[i] = 0
	}
	for i := 0; i < n; i++ {
		v[i*n+i] = 1
	}

	var (
		p, q, i, sweep        int
		alpha, beta, gamma    float64
		zeta, t, c, s, up, uq float64
		rotated               bool
	)
	// A column pair counts as orthogonal once |u_pᵀu_q| is at rounding level.
	orthoTol := Epsilon * float64(r)
	for sweep = 0; sweep < maxSweeps; sweep++ {
		rotated = false
		for p = 0; p < n-1; p++ {
			for q = p + 1; q < n; q++ {
				alpha, beta, gamma = 0, 0, 0
				for i = 0; i < r; i++ {
					up, uq = u[i*n+p], u[i*n+q]
					alpha += up * up
					beta += uq * uq
					gamma += up * uq
				}
				if gamma == 0 || math.Abs(gamma) <= orthoTol*math.Sqrt(alpha*beta) {
					continue
				}
				rotated = true

				zeta = (beta - alpha) / (2 * gamma)
				t = math.Copysign(1, zeta) / (math.Abs(zeta) + math.Sqrt(1+zeta*zeta))
				c = 1 / math.Sqrt(1+t*t)
				s = c * t
				for i = 0; i < r; i++ {
					up, uq = u[i*n+p], u[i*n+q]
					u[i*n+p] = c*up - s*uq
					u[i*n+q] = s*up + c*uq
				}
				for i = 0; i < n; i++ {
					up, uq = v[i*n+p], v[i*n+q]
					v[i*n+p] = c*up - s*uq
					v[i*n+q] = s*up + c*uq
				}
			}
		}
		if !rotated {
			break
		}
	}

	sigma := make([]float64, n)
	for p = 0; p < n; p++ {
		alpha = 0
		for i = 0; i < r; i++ {
			alpha += u[i*n+p] * u[i*n+p]
		}
		sigma[p] = math.Sqrt(alpha)
		if sigma[p] > 0 {
			for i = 0; i < r; i++ {
				u[i*n+p] /= sigma[p]
			}
		}
	}

	sortColumns(u, v, sigma, r, n)

	return sigma
}

// sortColumns reorders sigma into non-increasing order and permutes the
// columns of u (r×n) and v (n×n) to match.
func sortColumns(u, v, sigma []float64, r, n int) {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool { return sigma[order[x]] > sigma[order[y]] })

	permuteCols := func(m []float64, rows int) {
		tmp := make([]float64, len(m))
		for i := 0; i < rows; i++ {
			for j, src := range order {
				tmp[i*n+j] = m[i*n+src]
			}
		}
		copy(m, tmp)
	}
	permuteCols(u, r)
	permuteCols(v, n)

	sorted := make([]float64, n)
	for j, src := range order {
		sorted[j] = sigma[src]
	}
	copy(sigma, sorted)
}

// pseudoSolve writes x = V·diag(1/σ_j)·Uᵀ·b (n×k) using only σ_j above
// tol × σ_0 and returns how many were kept. sigma must be sorted.
func pseudoSolve(u, sigma, v, b, x []float64, r, n, k int, tol float64) int {
	for i := range x {
		x[i] = 0
	}
	if n == 0 || !(sigma[0] > 0) {
		return 0
	}
	threshold := tol * sigma[0]

	rank := 0
	for rank < n && sigma[rank] > threshold {
		rank++
	}

	// w = diag(1/σ)·Uᵀ·b over the kept columns, then x = V[:, :rank]·w.
	w := make([]float64, k)
	var i, j, c int
	for j = 0; j < rank; j++ {
		for c = 0; c < k; c++ {
			w[c] = 0
		}
		for i = 0; i < r; i++ {
			uij := u[i*n+j]
			if uij == 0 {
				continue
			}
			for c = 0; c < k; c++ {
				w[c] += uij * b[i*k+c]
			}
		}
		for c = 0; c < k; c++ {
			w[c] /= sigma[j]
		}
		for i = 0; i < n; i++ {
			vij := v[i*n+j]
			for c = 0; c < k; c++ {
				x[i*k+c] += vij * w[c]
			}
		}
	}

	return rank
}
