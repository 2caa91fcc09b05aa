// Package bench drives one batch of linear systems through several solve
// engines and reports what each one cost and how well it did.
//
// Engines (in the order they are timed):
//
//	EngineLU        factor.LU + factor.Solve
//	EngineCholesky  factor.Cholesky + factor.Solve (SPD input assumed; by
//	                default only when every element is symmetric)
//	EngineQR        lstsq.QR
//	EngineSVD       lstsq.SVD
//
// Every engine sees the same input. Each is timed end to end (factorization
// plus solve) with the monotonic clock, strictly one after another so no
// engine's cost is billed to another. The resulting Report maps each engine
// to Stats:
//
//	{"elapsed_seconds": 0.0012, "max_residual": 3.1e-15, "failed_count": 0, "max_divergence": 0}
//
// Failed elements are counted in FailedCount and excluded from MaxResidual
// only because they have no solution to measure.
//
// Nothing is written to the inputs unless WithInPlace is passed; see that
// option for what it does to the engines that run after LU and Cholesky.
//
// RunEpochs repeats the comparison over freshly generated batches, e.g. with
// batch.RandomSPD for the classic LU-versus-Cholesky timing.
package bench
