// SPDX-License-Identifier: MIT

package bench

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/batchla/batch"
	"github.com/katalvlaran/batchla/factor"
	"github.com/katalvlaran/batchla/lstsq"
	"github.com/katalvlaran/batchla/matrix"
)

// DefaultPivotTolerance is the relative pivot tolerance of LU and Cholesky runs.
const DefaultPivotTolerance = factor.DefaultPivotTolerance

// symmetryTolerance is relative to each element's max|a_ij|.
const symmetryTolerance = 1e-12

// Generator produces the input pair of one epoch.
type Generator func(epoch int) (a, b *batch.Dense, err error)

// Run solves the batch a·X = b with each configured engine, one after the
// other, and reports per-engine wall time, maximum residual, failure count
// and divergence from the first engine's solutions.
//
// Implementation:
//   - Stage 1: check a and b are aligned; pick engines (WithEngines, or every
//     engine applicable to the input: LU needs square elements, Cholesky
//     square elements that are all symmetric).
//   - Stage 2: per engine, time factorization + solve with the monotonic clock.
//     Engines never write a or b, except LU and Cholesky under WithInPlace.
//   - Stage 3: residuals ‖A_i·x_i − b_i‖ against a pristine copy of the input,
//     over elements whose status carries a solution; the rest are counted in
//     FailedCount, never dropped silently.
//
// Errors:
//   - batch.ErrNilBatch, batch.ErrShapeMismatch (misaligned input, or LU /
//     Cholesky explicitly requested on rectangular elements).
//   - ErrUnknownEngine.
func Run(a, b *batch.Dense, opts ...Option) (Report, error) {
	o := gatherOptions(opts...)
	if err := batch.ValidatePair(a, b, false); err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	engines, err := selectEngines(o.engines, a)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	o.logger.Debug("engines selected", slog.Any("engines", engines))

	pa, pb := a, b
	if o.inPlace {
		pa, pb = a.Clone(), b.Clone()
	}

	report := make(Report, len(engines))
	var ref *batch.Result
	for _, e := range engines {
		start := time.Now()
		res, err := solve(e, a, b, o)
		elapsed := time.Since(start).Seconds()
		if err != nil {
			return nil, fmt.Errorf("Run: %s: %w", e, err)
		}

		st, err := summarize(pa, pb, res)
		if err != nil {
			return nil, fmt.Errorf("Run: %s: %w", e, err)
		}
		st.ElapsedSeconds = elapsed
		if ref == nil {
			// Copy: under WithInPlace later engines overwrite the shared buffers.
			ref = &batch.Result{Solutions: res.Solutions.Clone(), Status: res.Status}
		} else {
			st.MaxDivergence = divergence(ref, res)
		}
		report[e] = st

		o.logger.Info("engine finished",
			slog.String("engine", e.String()),
			slog.Int("batch", a.Len()),
			slog.Int("rows", a.Rows()),
			slog.Int("cols", a.Cols()),
			slog.Float64("elapsed_seconds", st.ElapsedSeconds),
			slog.Float64("max_residual", st.MaxResidual),
			slog.Int("failed_count", st.FailedCount),
		)
	}

	return report, nil
}

// RunEpochs repeats Run over epochs fresh inputs from gen and aggregates per
// engine: ElapsedSeconds is the mean, MaxResidual and MaxDivergence the
// maximum, FailedCount the total.
//
// Errors:
//   - Any error from gen or Run, wrapped with the epoch index.
//   - batch.ErrInvalidDimensions when epochs < 1 or gen is nil.
func RunEpochs(epochs int, gen Generator, opts ...Option) (Report, error) {
	if epochs < 1 || gen == nil {
		return nil, fmt.Errorf("RunEpochs: epochs %d: %w", epochs, batch.ErrInvalidDimensions)
	}

	total := make(Report)
	for ep := 0; ep < epochs; ep++ {
		a, b, err := gen(ep)
		if err != nil {
			return nil, fmt.Errorf("RunEpochs: epoch %d: %w", ep, err)
		}
		rep, err := Run(a, b, opts...)
		if err != nil {
			return nil, fmt.Errorf("RunEpochs: epoch %d: %w", ep, err)
		}
		for e, s := range rep {
			acc := total[e]
			acc.ElapsedSeconds += s.ElapsedSeconds
			acc.MaxResidual = math.Max(acc.MaxResidual, s.MaxResidual)
			acc.MaxDivergence = math.Max(acc.MaxDivergence, s.MaxDivergence)
			acc.FailedCount += s.FailedCount
			total[e] = acc
		}
	}
	for e, s := range total {
		s.ElapsedSeconds /= float64(epochs)
		total[e] = s
	}

	return total, nil
}

// selectEngines resolves the run list in canonical order. Explicit requests
// are honored as given; the default set leaves Cholesky out unless every
// element is symmetric, since it reads only the lower triangle.
func selectEngines(requested []Engine, a *batch.Dense) ([]Engine, error) {
	square := a.IsSquare()
	want := make(map[Engine]bool, len(requested))
	for _, e := range requested {
		if !e.Valid() {
			return nil, fmt.Errorf("%q: %w", string(e), ErrUnknownEngine)
		}
		if e.Square() && !square {
			return nil, fmt.Errorf("%s needs square elements: %w", e, batch.ErrShapeMismatch)
		}
		want[e] = true
	}

	var out []Engine
	for _, e := range AllEngines() {
		switch {
		case len(requested) > 0:
			if want[e] {
				out = append(out, e)
			}
		case e == EngineCholesky:
			if square && symmetric(a) {
				out = append(out, e)
			}
		case square || !e.Square():
			out = append(out, e)
		}
	}
	return out, nil
}

// symmetric reports whether every element of the square batch a is
// symmetric within symmetryTolerance. Elements holding NaN or ±Inf are
// skipped: every engine fails them anyway.
func symmetric(a *batch.Dense) bool {
	for i := 0; i < a.Len(); i++ {
		m, err := a.At(i)
		if err != nil {
			return false
		}
		scale := matrix.MaxAbsRaw(m.Raw())
		if math.IsNaN(scale) || math.IsInf(scale, 0) {
			continue
		}
		if matrix.ValidateSymmetric(m, symmetryTolerance*scale) != nil {
			return false
		}
	}

	return true
}

// solve runs one engine end to end.
func solve(e Engine, a, b *batch.Dense, o Options) (*batch.Result, error) {
	switch e {
	case EngineLU:
		return factor.SolveLU(a, b, o.factorOptions()...)
	case EngineCholesky:
		return factor.SolveCholesky(a, b, o.factorOptions()...)
	case EngineQR:
		return lstsq.QR(a, b, o.lstsqOptions()...)
	case EngineSVD:
		return lstsq.SVD(a, b, o.lstsqOptions()...)
	default:
		return nil, fmt.Errorf("%q: %w", string(e), ErrUnknownEngine)
	}
}

// summarize measures res against the pristine input pair.
func summarize(a, b *batch.Dense, res *batch.Result) (Stats, error) {
	resid, err := batch.Residuals(a, res.Solutions, b)
	if err != nil {
		return Stats{}, err
	}

	var st Stats
	for i, s := range res.Status {
		if s != batch.StatusOK {
			st.FailedCount++
		}
		if s.HasSolution() {
			st.MaxResidual = math.Max(st.MaxResidual, resid[i])
		}
	}

	return st, nil
}

// divergence is the largest entry-wise difference between two results over
// elements both solved.
func divergence(ref, res *batch.Result) float64 {
	d := 0.0
	for i := range ref.Status {
		if !ref.Status[i].HasSolution() || !res.Status[i].HasSolution() {
			continue
		}
		d = math.Max(d, floats.Distance(ref.Solutions.Raw(i), res.Solutions.Raw(i), math.Inf(1)))
	}

	return d
}
