// Package matrix provides the small dense matrix used as the per-element
// value of every batch in this module.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix with a bounds-checked At and a
//     flat Raw buffer for allocation-free kernels.
//   - Validators (ValidateSquare, ValidateSymmetric, ...) returning sentinels.
//   - Reference operations (Mul, MulRaw, MaxAbsRaw, AllClose) used by the
//     batched kernels and to verify factorizations.
//
// Factorization and least-squares engines live in the factor and lstsq
// packages; they operate on batches (package batch) of these matrices.
package matrix
