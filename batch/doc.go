// Package batch holds N independent small matrices of one fixed shape and the
// per-element outcome of solving them.
//
// What & Why:
//
//	Every engine in this module (factor.LU, factor.Cholesky, lstsq.QR,
//	lstsq.SVD) consumes a *Dense batch of matrices and an index-aligned *Dense
//	batch of right-hand sides, and produces a *Result. The shape contract is
//	explicit: N ≥ 1 and every element is rows×cols; ValidatePair rejects a
//	structurally invalid request with ErrShapeMismatch before any work starts.
//
// Failure isolation:
//
//	Numerical failures are per element. A singular or indefinite element gets
//	a Status and NaN-filled solution entries; the rest of the batch is solved
//	normally. Only structural errors abort a call.
//
// Ownership:
//
//	New and Stack copy their input; Wrap aliases it. Engines never write into
//	an input batch unless run with an explicit in-place option.
package batch
