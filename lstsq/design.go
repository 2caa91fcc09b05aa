// SPDX-License-Identifier: MIT

package lstsq

import (
	"fmt"
	"math"

	"github.com/katalvlaran/batchla/batch"
	"github.com/katalvlaran/batchla/matrix"
)

// Operation name constants for unified error wrapping.
const (
	opQR        = "QR"
	opSVD       = "SVD"
	opQRFactor  = "QRFactor"
	opDecompose = "Decompose"
	opDesign    = "DesignWithIntercept"
)

// lstsqErrorf wraps err with an operation tag, preserving the sentinel via %w.
func lstsqErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// DesignWithIntercept returns a copy of x with a leading column of ones on
// every element: [1 | x_i]. A batch of rows×p predictors becomes a batch of
// rows×(p+1) design matrices.
func DesignWithIntercept(x *batch.Dense) (*batch.Dense, error) {
	if x == nil {
		return nil, lstsqErrorf(opDesign, batch.ErrNilBatch)
	}
	rows, p := x.Rows(), x.Cols()
	out, err := batch.Zeros(x.Len(), rows, p+1)
	if err != nil {
		return nil, lstsqErrorf(opDesign, err)
	}
	for i := 0; i < x.Len(); i++ {
		src, dst := x.Raw(i), out.Raw(i)
		for r := 0; r < rows; r++ {
			dst[r*(p+1)] = 1
			copy(dst[r*(p+1)+1:(r+1)*(p+1)], src[r*p:(r+1)*p])
		}
	}

	return out, nil
}

// prepare applies the intercept option and checks the least-squares contract:
// aligned batches and rows ≥ cols on every design matrix.
func prepare(tag string, a, b *batch.Dense, o Options) (*batch.Dense, error) {
	if a == nil || b == nil {
		return nil, lstsqErrorf(tag, batch.ErrNilBatch)
	}
	if o.intercept {
		var err error
		if a, err = DesignWithIntercept(a); err != nil {
			return nil, lstsqErrorf(tag, err)
		}
	}
	if err := batch.ValidatePair(a, b, false); err != nil {
		return nil, lstsqErrorf(tag, err)
	}
	if a.Rows() < a.Cols() {
		return nil, lstsqErrorf(tag, fmt.Errorf("design is %dx%d, want rows >= cols: %w", a.Rows(), a.Cols(), batch.ErrShapeMismatch))
	}

	return a, nil
}

// finite reports whether the design block holds no NaN or ±Inf.
func finite(design []float64) bool {
	scale := matrix.MaxAbsRaw(design)

	return !math.IsNaN(scale) && !math.IsInf(scale, 0)
}
