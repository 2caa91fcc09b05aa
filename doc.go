// Package batchla solves many small, independent dense linear-algebra
// problems at once: thousands to millions of 2×2 … 32×32 systems or
// least-squares fits that share a shape and nothing else.
//
// 🚀 What is in the box?
//
//	• Batch container: one contiguous row-major buffer of N same-shape matrices
//	• LU with partial pivoting and Cholesky, plus the factored solve
//	• Least squares by Householder QR and by one-sided Jacobi SVD
//	• A harness that times the engines on one batch and reports residuals
//
// ✨ Guarantees
//
//   - One element never affects another: a singular, indefinite or
//     rank-deficient element is reported in its own Status while the rest of
//     the batch solves normally.
//   - Shape contracts are checked up front; a misaligned request fails the
//     whole call with batch.ErrShapeMismatch.
//   - Inputs are read-only unless a call opts into in-place mode.
//   - Results do not depend on how the batch is split across goroutines.
//
// Everything is organized under these subpackages:
//
//	matrix/   — small row-major Dense, validators, reference kernels
//	batch/    — batch container, Status, Result, batched multiply & residuals
//	parallel/ — data-parallel loop over the batch index
//	factor/   — LU, Cholesky, Solve
//	lstsq/    — QR and SVD least squares, intercept designs
//	bench/    — engine comparison harness
//
// Quick example:
//
//	a, _ := batch.New(2, 2, 2, []float64{4, 0, 0, 9, 1, 2, 2, 4})
//	b, _ := batch.New(2, 2, 1, []float64{8, 18, 1, 1})
//	res, _ := factor.SolveLU(a, b)
//	// res.Solutions.Raw(0) == [2 2], res.Status[1] == batch.StatusSingular
//
//	go get github.com/katalvlaran/batchla
package batchla
