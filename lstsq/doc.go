// Package lstsq solves batches of overdetermined linear least-squares
// problems min‖A_i·X_i − B_i‖₂ with two engines:
//
//   - QR: Householder triangularization, then back substitution on R. Cheap
//     and accurate for full-rank designs.
//   - SVD: one-sided Jacobi singular value decomposition and the
//     pseudo-inverse. Slower, but returns the minimum-norm solution when a
//     design is rank deficient.
//
// Both engines require rows ≥ cols on every design matrix and report a
// per-element batch.Status together with the effective rank in
// Result.Rank. A rank-deficient element is flagged StatusRankDeficient; it
// still carries a solution, which for SVD is the minimum-norm one.
//
// Fitting a model with an intercept term (y = β₀ + β₁x₁ + …) is a matter of
// passing WithIntercept, or building the design once with DesignWithIntercept.
//
// The single-matrix helpers QRFactor and Decompose expose the factors used by
// the engines.
package lstsq
