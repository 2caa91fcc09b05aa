// SPDX-License-Identifier: MIT
package lstsq_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/batchla/batch"
	"github.com/katalvlaran/batchla/lstsq"
	"github.com/katalvlaran/batchla/matrix"
)

// TestQR_Line recovers y = 2 + 3x through the intercept option.
func TestQR_Line(t *testing.T) {
	x, y := lineData(t, 10, 2, 3)

	res, err := lstsq.QR(x, y, lstsq.WithIntercept())
	require.NoError(t, err)
	require.True(t, res.OK(0))
	assert.Equal(t, []int{2}, res.Rank)
	assert.InDeltaSlice(t, []float64{2, 3}, res.Solutions.Raw(0), 1e-6)
}

// TestQR_ExactRecovery: on consistent full-rank systems QR returns the generating parameters.
func TestQR_ExactRecovery(t *testing.T) {
	a, params, b := exactSystem(t, 5, 16, 12, 4, 2)
	res, err := lstsq.QR(a, b)
	require.NoError(t, err)
	require.Zero(t, res.Failed())

	for i := 0; i < a.Len(); i++ {
		assert.Equal(t, 4, res.Rank[i])
		assert.InDeltaSlice(t, params.Raw(i), res.Solutions.Raw(i), 1e-9, "element %d", i)
	}
}

// TestQR_MatchesGonum compares noisy least-squares fits with gonum's dense solver.
func TestQR_MatchesGonum(t *testing.T) {
	a, _, _ := exactSystem(t, 9, 6, 10, 3, 1)
	_, _, noise := exactSystem(t, 10, 6, 10, 1, 1)
	res, err := lstsq.QR(a, noise)
	require.NoError(t, err)

	for i := 0; i < a.Len(); i++ {
		var want mat.Dense
		require.NoError(t, want.Solve(
			mat.NewDense(10, 3, append([]float64(nil), a.Raw(i)...)),
			mat.NewDense(10, 1, append([]float64(nil), noise.Raw(i)...)),
		))
		for r := 0; r < 3; r++ {
			assert.InDelta(t, want.At(r, 0), res.Solutions.Raw(i)[r], 1e-9)
		}
	}
}

// TestQR_ZeroColumn: an all-zero column is rank deficient; the other parameters survive.
func TestQR_ZeroColumn(t *testing.T) {
	const n = 8
	data := make([]float64, 0, n*3)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		data = append(data, 1, float64(i), 0)
		ys[i] = 2 + 3*float64(i)
	}
	a, err := batch.New(1, n, 3, data)
	require.NoError(t, err)
	b, err := batch.New(1, n, 1, ys)
	require.NoError(t, err)

	res, err := lstsq.QR(a, b)
	require.NoError(t, err)
	assert.Equal(t, batch.StatusRankDeficient, res.Status[0])
	assert.Equal(t, 2, res.Rank[0])
	assert.ErrorIs(t, res.Err(0), batch.ErrRankDeficient)

	sol, err := res.Solution(0)
	require.NoError(t, err, "rank-deficient elements still carry a solution")
	assert.InDelta(t, 2, sol.Raw()[0], 1e-9)
	assert.InDelta(t, 3, sol.Raw()[1], 1e-9)
}

// TestQR_ClampedDiagonal: a diagonal below the rank threshold is clamped to ±threshold.
func TestQR_ClampedDiagonal(t *testing.T) {
	a, _ := batch.New(1, 3, 2, []float64{1, 0, 0, 1e-3, 0, 0})
	b, _ := batch.New(1, 3, 1, []float64{1, 1, 0})

	res, err := lstsq.QR(a, b)
	require.NoError(t, err)
	require.True(t, res.OK(0))
	assert.InDeltaSlice(t, []float64{1, 1000}, res.Solutions.Raw(0), 1e-9)

	res, err = lstsq.QR(a, b, lstsq.WithRankTolerance(1e-2))
	require.NoError(t, err)
	assert.Equal(t, batch.StatusRankDeficient, res.Status[0])
	assert.Equal(t, 1, res.Rank[0])
	assert.InDeltaSlice(t, []float64{1, 100}, res.Solutions.Raw(0), 1e-9)
}

func TestQR_ZeroDesign(t *testing.T) {
	a, _ := batch.Zeros(1, 3, 2)
	b, _ := batch.New(1, 3, 1, []float64{1, 2, 3})
	res, err := lstsq.QR(a, b)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Rank[0])
	assert.Equal(t, []float64{0, 0}, res.Solutions.Raw(0))
}

func TestQR_LeavesInputUntouched(t *testing.T) {
	a, _, b := exactSystem(t, 2, 3, 6, 2, 1)
	a0, b0 := a.Clone(), b.Clone()
	_, err := lstsq.QR(a, b, lstsq.WithIntercept())
	require.NoError(t, err)
	assert.Equal(t, a0.Data(), a.Data())
	assert.Equal(t, b0.Data(), b.Data())
}

func TestQR_ShapeErrors(t *testing.T) {
	wide, _ := batch.Zeros(1, 2, 3)
	rhs2, _ := batch.Zeros(1, 2, 1)
	_, err := lstsq.QR(wide, rhs2)
	require.ErrorIs(t, err, batch.ErrShapeMismatch)

	tall, _ := batch.Zeros(2, 4, 2)
	short, _ := batch.Zeros(1, 4, 1)
	_, err = lstsq.QR(tall, short)
	require.ErrorIs(t, err, batch.ErrShapeMismatch)
	_, err = lstsq.QR(tall, nil)
	require.ErrorIs(t, err, batch.ErrNilBatch)

	// Intercept widens 2×2 predictors to a 2×3 design.
	sq, _ := batch.Zeros(1, 2, 2)
	_, err = lstsq.QR(sq, rhs2, lstsq.WithIntercept())
	require.ErrorIs(t, err, batch.ErrShapeMismatch)
}

// TestQRFactor checks Q has orthonormal columns, R is upper triangular and Q·R = A.
func TestQRFactor(t *testing.T) {
	a, _, _ := exactSystem(t, 13, 1, 7, 4, 1)
	src, err := a.At(0)
	require.NoError(t, err)

	q, r, err := lstsq.QRFactor(src)
	require.NoError(t, err)
	require.Equal(t, 7, q.Rows())
	require.Equal(t, 4, q.Cols())
	require.Equal(t, 4, r.Rows())

	for i := 1; i < 4; i++ {
		for j := 0; j < i; j++ {
			v, _ := r.At(i, j)
			assert.Zero(t, v)
		}
	}

	qr, err := matrix.Mul(q, r)
	require.NoError(t, err)
	ok, err := matrix.AllClose(qr, src, 1e-12, 1e-12)
	require.NoError(t, err)
	assert.True(t, ok)

	qm := mat.NewDense(7, 4, q.Raw())
	var qtq mat.Dense
	qtq.Mul(qm.T(), qm)
	assertIdentity(t, &qtq, 1e-12)

	_, _, err = lstsq.QRFactor(nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
	wide, _ := matrix.NewDense(2, 3)
	_, _, err = lstsq.QRFactor(wide)
	require.ErrorIs(t, err, batch.ErrShapeMismatch)
}

func TestDesignWithIntercept(t *testing.T) {
	x, _ := batch.New(2, 2, 1, []float64{5, 6, 7, 8})
	d, err := lstsq.DesignWithIntercept(x)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Cols())
	assert.Equal(t, []float64{1, 5, 1, 6, 1, 7, 1, 8}, d.Data())

	_, err = lstsq.DesignWithIntercept(nil)
	require.ErrorIs(t, err, batch.ErrNilBatch)
}

func TestOptions_Panics(t *testing.T) {
	assert.Panics(t, func() { lstsq.WithRankTolerance(-1) })
	assert.Panics(t, func() { lstsq.WithRankTolerance(math.Inf(1)) })
	assert.NotPanics(t, func() { lstsq.WithRankTolerance(0) })
}
