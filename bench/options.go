// SPDX-License-Identifier: MIT

// Package bench: functional configuration for the comparison harness.

package bench

import (
	"io"
	"log/slog"
	"math"

	"github.com/katalvlaran/batchla/factor"
	"github.com/katalvlaran/batchla/lstsq"
	"github.com/katalvlaran/batchla/parallel"
)

const (
	panicPivotTolInvalid = "bench: WithPivotTolerance: tol must be finite, non-negative"
	panicRankTolInvalid  = "bench: WithRankTolerance: tol must be finite, non-negative"
	panicWorkersInvalid  = "bench: WithParallel: NumWorkers must be >= 1"
	panicEngineInvalid   = "bench: WithEngines: unknown engine"
)

// Option mutates internal options.
type Option func(*Options)

// Options stores the effective harness configuration.
type Options struct {
	engines    []Engine // nil: every engine applicable to the input shape
	pivotTol   float64  // factor.DefaultPivotTolerance
	rankTol    float64
	rankTolSet bool
	inPlace    bool
	logger     *slog.Logger
	par        parallel.Config
}

// WithEngines restricts the run to the given engines; they are still timed
// in the fixed order LU, Cholesky, QR, SVD and duplicates collapse.
//
// Panics on an unknown engine.
func WithEngines(engines ...Engine) Option {
	for _, e := range engines {
		if !e.Valid() {
			panic(panicEngineInvalid)
		}
	}
	cp := append([]Engine(nil), engines...)

	return func(o *Options) { o.engines = cp }
}

// WithPivotTolerance sets the relative pivot tolerance passed to LU and Cholesky.
//
// Panics when tol is NaN, ±Inf or negative.
func WithPivotTolerance(tol float64) Option {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol < 0 {
		panic(panicPivotTolInvalid)
	}

	return func(o *Options) { o.pivotTol = tol }
}

// WithRankTolerance sets the relative rank tolerance passed to QR and SVD.
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

// WithInPlace lets LU and Cholesky factor over the caller's a and solve over
// the caller's b. Every later engine in the same run then reads the
// overwritten buffers; residuals are still measured against a copy taken
// before the first engine, so the damage shows up in the report.
func WithInPlace() Option {
	return func(o *Options) { o.inPlace = true }
}

// WithLogger sets the structured logger receiving one record per engine.
// A nil logger restores the silent default.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.logger = l }
}

// WithParallel sets the data-parallel configuration used by every engine.
//
// Panics when cfg.Enabled and cfg.NumWorkers < 1.
func WithParallel(cfg parallel.Config) Option {
	if cfg.Enabled && cfg.NumWorkers < 1 {
		panic(panicWorkersInvalid)
	}

	return func(o *Options) { o.par = cfg }
}

// gatherOptions applies user setters over the defaults.
func gatherOptions(user ...Option) Options {
	o := Options{
		pivotTol: factor.DefaultPivotTolerance,
		par:      parallel.DefaultConfig(),
	}
	for _, fn := range user {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return o
}

// factorOptions translates the harness options for LU and Cholesky.
func (o Options) factorOptions() []factor.Option {
	out := []factor.Option{
		factor.WithPivotTolerance(o.pivotTol),
		factor.WithParallel(o.par),
	}
	if o.inPlace {
		out = append(out, factor.WithInPlace())
	}

	return out
}

// lstsqOptions translates the harness options for QR and SVD.
func (o Options) lstsqOptions() []lstsq.Option {
	out := []lstsq.Option{lstsq.WithParallel(o.par)}
	if o.rankTolSet {
		out = append(out, lstsq.WithRankTolerance(o.rankTol))
	}

	return out
}
