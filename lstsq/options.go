// SPDX-License-Identifier: MIT

// Package lstsq: functional configuration for the least-squares solvers.

package lstsq

import (
	"math"

	"github.com/katalvlaran/batchla/parallel"
)

// Epsilon is the float64 machine epsilon (2⁻⁵²) used in the default rank tolerance.
const Epsilon = 0x1p-52

// DefaultIntercept leaves design matrices as given.
const DefaultIntercept = false

const (
	panicRankTolInvalid = "lstsq: WithRankTolerance: tol must be finite, non-negative"
	panicWorkersInvalid = "lstsq: WithParallel: NumWorkers must be >= 1"
)

// Option mutates internal options. Safe to apply repeatedly (idempotent).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
type Options struct {
	rankTol    float64 // relative tolerance; used only when rankTolSet
	rankTolSet bool    // false: Epsilon × max(rows, cols)
	intercept  bool    // DefaultIntercept
	par        parallel.Config
}

// WithRankTolerance sets the relative rank tolerance: a singular value (SVD)
// or |R[j,j]| (QR) at or below tol × the largest one counts as zero.
// Without this option the tolerance is Epsilon × max(rows, cols).
//
// Panics when tol is NaN, ±Inf or negative.
func WithRankTolerance(tol float64) Option {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol < 0 {
		panic(panicRankTolInvalid)
	}

	return func(o *Options) {
		o.rankTol = tol
		o.rankTolSet = true
	}
}

// WithIntercept prepends a column of ones to every design matrix, so the
// first solution row is the intercept of the fitted model.
func WithIntercept() Option {
	return func(o *Options) { o.intercept = true }
}

// WithParallel sets the data-parallel configuration for the batch loop.
//
// Panics when cfg.Enabled and cfg.NumWorkers < 1.
func WithParallel(cfg parallel.Config) Option {
	if cfg.Enabled && cfg.NumWorkers < 1 {
		panic(panicWorkersInvalid)
	}

	return func(o *Options) { o.par = cfg }
}

// WithSequential runs the batch loop in the calling goroutine.
func WithSequential() Option {
	return func(o *Options) { o.par = parallel.Sequential() }
}

// gatherOptions applies user setters over the defaults.
func gatherOptions(user ...Option) Options {
	o := Options{intercept: DefaultIntercept, par: parallel.DefaultConfig()}
	for _, fn := range user {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}

// relativeTol resolves the relative rank tolerance for a rows×cols design.
func (o Options) relativeTol(rows, cols int) float64 {
	if o.rankTolSet {
		return o.rankTol
	}

	return Epsilon * float64(max(rows, cols))
}
