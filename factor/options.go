// SPDX-License-Identifier: MIT

// Package factor: functional configuration for the factorization engines.
// This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that resolves defaults.
//
// Design goals:
//   - Deterministic behavior: no global state.
//   - Inputs are read-only unless WithInPlace is passed explicitly per call.

package factor

import (
	"math"

	"github.com/katalvlaran/batchla/parallel"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultPivotTolerance is the relative pivot threshold. An element's pivot
	// (LU) or radicand (Cholesky) must exceed DefaultPivotTolerance × max|a_ij|
	// of that element, otherwise the element is marked failed.
	DefaultPivotTolerance = 1e-12

	// DefaultInPlace keeps inputs untouched.
	DefaultInPlace = false
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicPivotTolInvalid = "factor: WithPivotTolerance: tol must be finite, non-negative"
	panicWorkersInvalid  = "factor: WithParallel: NumWorkers must be >= 1"
)

// Option mutates internal options. Safe to apply repeatedly (idempotent).
// Constructors MUST panic only on nonsensical values (programmer error).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
type Options struct {
	pivotTol float64         // >= 0; DefaultPivotTolerance
	inPlace  bool            // DefaultInPlace
	par      parallel.Config // parallel.DefaultConfig()
}

// WithPivotTolerance sets the relative pivot tolerance.
// A zero tolerance only rejects exactly-zero (or NaN) pivots.
//
// Panics when tol is NaN, ±Inf or negative.
func WithPivotTolerance(tol float64) Option {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol < 0 {
		panic(panicPivotTolInvalid)
	}

	return func(o *Options) { o.pivotTol = tol }
}

// WithInPlace authorizes the engine to overwrite its input for this call:
// LU and Cholesky write the factors over the matrix batch, Solve writes the
// solutions over the right-hand side batch. The returned values alias the
// inputs, and the original input values are lost.
func WithInPlace() Option {
	return func(o *Options) { o.inPlace = true }
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
	o := Options{
		pivotTol: DefaultPivotTolerance,
		inPlace:  DefaultInPlace,
		par:      parallel.DefaultConfig(),
	}
	for _, fn := range user {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}
