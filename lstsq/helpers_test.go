// SPDX-License-Identifier: MIT
package lstsq_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/batchla/batch"
)

// lineData returns the single-element predictor batch x = 0..n-1 (n×1) and
// the exact responses y = intercept + slope·x.
func lineData(tb testing.TB, n int, intercept, slope float64) (x, y *batch.Dense) {
	tb.Helper()
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
		ys[i] = intercept + slope*xs[i]
	}
	x, err := batch.New(1, n, 1, xs)
	require.NoError(tb, err)
	y, err = batch.New(1, n, 1, ys)
	require.NoError(tb, err)

	return x, y
}

// exactSystem returns a random rows×cols design batch, the generating
// parameters (cols×k) and b = A·X, so the least-squares residual is zero.
func exactSystem(tb testing.TB, seed int64, count, rows, cols, k int) (a, params, b *batch.Dense) {
	tb.Helper()
	rng := rand.New(rand.NewSource(seed))
	a, err := batch.Random(rng, count, rows, cols)
	require.NoError(tb, err)
	params, err = batch.Random(rng, count, cols, k)
	require.NoError(tb, err)
	b, err = batch.Zeros(count, rows, k)
	require.NoError(tb, err)
	require.NoError(tb, batch.MulInto(b, a, params))

	return a, params, b
}

// assertIdentity checks that the square matrix m is the identity within tol.
func assertIdentity(tb testing.TB, m mat.Matrix, tol float64) {
	tb.Helper()
	n, _ := m.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			assert.InDelta(tb, want, m.At(i, j), tol, "(%d,%d)", i, j)
		}
	}
}
