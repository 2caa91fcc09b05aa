// SPDX-License-Identifier: MIT

package bench

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownEngine indicates an engine name outside EngineLU, EngineCholesky,
// EngineQR and EngineSVD.
var ErrUnknownEngine = errors.New("bench: unknown engine")

// Engine names one solve path of the harness.
type Engine string

const (
	// EngineLU is factor.LU followed by factor.Solve.
	EngineLU Engine = "lu"
	// EngineCholesky is factor.Cholesky followed by factor.Solve.
	EngineCholesky Engine = "cholesky"
	// EngineQR is lstsq.QR.
	EngineQR Engine = "qr"
	// EngineSVD is lstsq.SVD.
	EngineSVD Engine = "svd"
)

// engineOrder is the order Run times engines in and Report.Engines lists them.
var engineOrder = map[Engine]int{
	EngineLU:       0,
	EngineCholesky: 1,
	EngineQR:       2,
	EngineSVD:      3,
}

// AllEngines returns every engine in run order.
func AllEngines() []Engine {
	return []Engine{EngineLU, EngineCholesky, EngineQR, EngineSVD}
}

// ParseEngine maps a name to its Engine.
func ParseEngine(name string) (Engine, error) {
	e := Engine(name)
	if !e.Valid() {
		return "", fmt.Errorf("%q: %w", name, ErrUnknownEngine)
	}

	return e, nil
}

// Valid reports whether e is a known engine.
func (e Engine) Valid() bool {
	_, ok := engineOrder[e]
	return ok
}

// Square reports whether e needs square systems (LU and Cholesky).
func (e Engine) Square() bool {
	return e == EngineLU || e == EngineCholesky
}

// String implements fmt.Stringer.
func (e Engine) String() string { return string(e) }

// Stats is the aggregate outcome of one engine over one batch.
type Stats struct {
	// ElapsedSeconds is the monotonic wall time of factorization plus solve.
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	// MaxResidual is max ‖A_i·x_i − b_i‖ over elements that carry a solution;
	// 0 when no element does.
	MaxResidual float64 `json:"max_residual"`
	// FailedCount is the number of elements whose status is not StatusOK.
	FailedCount int `json:"failed_count"`
	// MaxDivergence is max |x_i − x_i(ref)| against the first engine of the
	// run, over elements both solved; 0 for the reference engine itself.
	MaxDivergence float64 `json:"max_divergence"`
}

// Report maps each engine that ran to its Stats.
type Report map[Engine]Stats

// Engines returns the engines present in r, in run order.
func (r Report) Engines() []Engine {
	out := make([]Engine, 0, len(r))
	for e := range r {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return engineOrder[out[i]] < engineOrder[out[j]] })

	return out
}

// Fastest returns the engine with the smallest ElapsedSeconds among those
// with FailedCount == 0; ok is false when there is none.
func (r Report) Fastest() (e Engine, ok bool) {
	best := 0.0
	for _, name := range r.Engines() {
		s := r[name]
		if s.FailedCount != 0 {
			continue
		}
		if !ok || s.ElapsedSeconds < best {
			e, best, ok = name, s.ElapsedSeconds, true
		}
	}

	return e, ok
}
