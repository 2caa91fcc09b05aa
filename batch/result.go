// SPDX-License-Identifier: MIT

package batch

import (
	"fmt"
	"math"

	"github.com/katalvlaran/batchla/matrix"
)

// Result is the outcome of a batched solve: one solution matrix and one Status
// per element, plus the effective numerical rank for least-squares engines.
//
// Elements whose status has no solution (singular, not positive definite)
// hold NaN in every solution entry. Callers must inspect Status before
// trusting a solution value.
type Result struct {
	// Solutions holds N solution matrices (cols of the system × k).
	Solutions *Dense
	// Status is index-aligned with Solutions.
	Status []Status
	// Rank is the effective rank per element; nil for factored (LU/Cholesky) solves.
	Rank []int
}

// NewResult allocates a Result with count zeroed rows×cols solutions, all StatusOK.
func NewResult(count, rows, cols int) (*Result, error) {
	sol, err := Zeros(count, rows, cols)
	if err != nil {
		return nil, err
	}

	return &Result{Solutions: sol, Status: make([]Status, count)}, nil
}

// ResultOn builds a Result whose solutions live in sol's buffer.
// Used by in-place solves that overwrite their right-hand side.
func ResultOn(sol *Dense) *Result {
	return &Result{Solutions: sol, Status: make([]Status, sol.Len())}
}

// Fail records a status without a solution for element i and NaN-fills its
// solution entries so the undefined value can never be mistaken for data.
func (r *Result) Fail(i int, s Status) {
	r.Status[i] = s
	sol := r.Solutions.Raw(i)
	for j := range sol {
		sol[j] = math.NaN()
	}
}

// Flag records status s for element i and keeps its solution.
func (r *Result) Flag(i int, s Status) {
	r.Status[i] = s
}

// Len returns the number of elements.
func (r *Result) Len() int { return len(r.Status) }

// OK reports whether element i solved with StatusOK.
func (r *Result) OK(i int) bool { return r.Status[i] == StatusOK }

// Err returns nil for a StatusOK element, else its status sentinel wrapped
// with the element index.
func (r *Result) Err(i int) error {
	if i < 0 || i >= len(r.Status) {
		return fmt.Errorf("index %d: %w", i, ErrIndexOutOfRange)
	}
	if err := r.Status[i].Err(); err != nil {
		return fmt.Errorf("element %d: %w", i, err)
	}

	return nil
}

// Solution returns a copy of element i's solution.
// It returns an error wrapping the status sentinel when the element has no
// defined solution (singular or not positive definite).
func (r *Result) Solution(i int) (*matrix.Dense, error) {
	if i < 0 || i >= len(r.Status) {
		return nil, fmt.Errorf("index %d: %w", i, ErrIndexOutOfRange)
	}
	if !r.Status[i].HasSolution() {
		return nil, r.Err(i)
	}

	return r.Solutions.At(i)
}

// Failed counts elements whose status is not StatusOK.
func (r *Result) Failed() int {
	n := 0
	for _, s := range r.Status {
		if s != StatusOK {
			n++
		}
	}

	return n
}

// Counts tallies elements per status.
func (r *Result) Counts() map[Status]int {
	out := make(map[Status]int, 4)
	for _, s := range r.Status {
		out[s]++
	}

	return out
}
