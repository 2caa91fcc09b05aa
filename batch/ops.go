// SPDX-License-Identifier: MIT

package batch

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/batchla/matrix"
	"github.com/katalvlaran/batchla/parallel"
)

// MulInto computes dst_i = a_i · x_i for every element.
//
// dst may be x itself (same backing buffer): each product is formed in a
// per-element scratch buffer and then copied over, which reproduces the
// multiply-into-output pattern. Passing x as dst is the explicit opt-in to
// overwriting x; nothing else in this module aliases an input.
//
// Errors:
//   - ErrNilBatch, ErrShapeMismatch (counts differ, a.Cols != x.Rows,
//     dst not a.Rows × x.Cols).
func MulInto(dst, a, x *Dense) error {
	if dst == nil || a == nil || x == nil {
		return batchErrorf(ctxMulInto, ErrNilBatch)
	}
	if a.count != x.count || a.count != dst.count {
		return batchErrorf(ctxMulInto, fmt.Errorf("counts %d, %d, %d: %w", dst.count, a.count, x.count, ErrShapeMismatch))
	}
	if a.cols != x.rows || dst.rows != a.rows || dst.cols != x.cols {
		return batchErrorf(ctxMulInto, fmt.Errorf("(%dx%d)·(%dx%d) into %dx%d: %w",
			a.rows, a.cols, x.rows, x.cols, dst.rows, dst.cols, ErrShapeMismatch))
	}

	parallel.For(a.count, func(i int) {
		tmp := make([]float64, dst.rows*dst.cols)
		matrix.MulRaw(tmp, a.Raw(i), a.rows, a.cols, x.Raw(i), x.cols)
		copy(dst.Raw(i), tmp)
	}, parallel.DefaultConfig())

	return nil
}

// Residuals returns ‖a_i·x_i − b_i‖ (Frobenius norm over the k right-hand
// side columns) for every element. The value is undefined for elements whose
// status carries no solution; callers filter on Status.HasSolution.
//
// Errors:
//   - ErrNilBatch, ErrShapeMismatch.
func Residuals(a, x, b *Dense) ([]float64, error) {
	if a == nil || x == nil || b == nil {
		return nil, batchErrorf(ctxResid, ErrNilBatch)
	}
	if a.count != x.count || a.count != b.count || a.cols != x.rows || a.rows != b.rows || x.cols != b.cols {
		return nil, batchErrorf(ctxResid, ErrShapeMismatch)
	}

	out := make([]float64, a.count)
	parallel.For(a.count, func(i int) {
		ax := make([]float64, b.rows*b.cols)
		matrix.MulRaw(ax, a.Raw(i), a.rows, a.cols, x.Raw(i), x.cols)
		floats.Sub(ax, b.Raw(i))
		out[i] = floats.Norm(ax, 2)
	}, parallel.DefaultConfig())

	return out, nil
}
