// SPDX-License-Identifier: MIT

package batch

import "fmt"

// Status is the per-element outcome of a factorization or solve.
type Status uint8

const (
	// StatusOK means the element factored/solved normally.
	StatusOK Status = iota
	// StatusSingular means the LU pivot was degenerate, or a least-squares
	// design held NaN or ±Inf; the solution is undefined.
	StatusSingular
	// StatusNotPositiveDefinite means the Cholesky square-root step failed; the solution is undefined.
	StatusNotPositiveDefinite
	// StatusRankDeficient means the design matrix lost rank. QR returns a
	// best-effort solution, SVD the minimum-norm one.
	StatusRankDeficient
)

var statusNames = [...]string{
	StatusOK:                  "ok",
	StatusSingular:            "singular",
	StatusNotPositiveDefinite: "not-positive-definite",
	StatusRankDeficient:       "rank-deficient",
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}

	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Err maps the status to its sentinel error, or nil for StatusOK.
func (s Status) Err() error {
	switch s {
	case StatusOK:
		return nil
	case StatusSingular:
		return ErrSingular
	case StatusNotPositiveDefinite:
		return ErrNotPositiveDefinite
	case StatusRankDeficient:
		return ErrRankDeficient
	default:
		return fmt.Errorf("batch: unknown status %d", uint8(s))
	}
}

// HasSolution reports whether a solution value is defined under s.
// Rank-deficient elements carry a best-effort (QR) or minimum-norm (SVD) solution.
func (s Status) HasSolution() bool {
	return s == StatusOK || s == StatusRankDeficient
}
