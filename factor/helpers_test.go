// SPDX-License-Identifier: MIT
package factor_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/batchla/batch"
)

// mustBatch copies data into a new batch or fails the test.
func mustBatch(tb testing.TB, count, rows, cols int, data []float64) *batch.Dense {
	tb.Helper()
	d, err := batch.New(count, rows, cols, data)
	require.NoError(tb, err)

	return d
}

// spdSystem returns a seeded SPD batch (RᵀR + 0.2·I) and a random m×k right-hand side batch.
func spdSystem(tb testing.TB, seed int64, count, m, k int) (a, b *batch.Dense) {
	tb.Helper()
	rng := rand.New(rand.NewSource(seed))
	a, err := batch.RandomSPD(rng, count, m, 0.2)
	require.NoError(tb, err)
	b, err = batch.Random(rng, count, m, k)
	require.NoError(tb, err)

	return a, b
}

// generalSystem returns a seeded non-symmetric batch with a dominant diagonal.
func generalSystem(tb testing.TB, seed int64, count, m, k int) (a, b *batch.Dense) {
	tb.Helper()
	rng := rand.New(rand.NewSource(seed))
	a, err := batch.Random(rng, count, m, m)
	require.NoError(tb, err)
	for i := 0; i < count; i++ {
		e := a.Raw(i)
		for d := 0; d < m; d++ {
			e[d*m+d] += float64(m)
		}
	}
	b, err = batch.Random(rng, count, m, k)
	require.NoError(tb, err)

	return a, b
}
