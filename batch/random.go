// SPDX-License-Identifier: MIT

package batch

import (
	"math/rand"

	"github.com/katalvlaran/batchla/matrix"
)

// Random fills a new batch with uniform values in [0, 1) drawn from rng.
// The draw order is element-major, row-major, so a seeded rng is reproducible.
func Random(rng *rand.Rand, count, rows, cols int) (*Dense, error) {
	d, err := Zeros(count, rows, cols)
	if err != nil {
		return nil, err
	}
	for i := range d.data {
		d.data[i] = rng.Float64()
	}

	return d, nil
}

// RandomSPD builds count symmetric positive-definite m×m matrices as
// RᵀR + shift·I with R uniform in [0, 1). Any shift > 0 guarantees positive
// definiteness; larger shifts improve conditioning.
func RandomSPD(rng *rand.Rand, count, m int, shift float64) (*Dense, error) {
	r, err := Random(rng, count, m, m)
	if err != nil {
		return nil, err
	}
	out, err := Zeros(count, m, m)
	if err != nil {
		return nil, err
	}

	rt := make([]float64, m*m)
	for i := 0; i < count; i++ {
		ri := r.Raw(i)
		for p := 0; p < m; p++ {
			for q := 0; q < m; q++ {
				rt[q*m+p] = ri[p*m+q]
			}
		}
		oi := out.Raw(i)
		matrix.MulRaw(oi, rt, m, m, ri, m)
		// Symmetrize exactly: the i-k-j product may differ in the last ulp.
		for p := 0; p < m; p++ {
			for q := p + 1; q < m; q++ {
				oi[q*m+p] = oi[p*m+q]
			}
			oi[p*m+p] += shift
		}
	}

	return out, nil
}
