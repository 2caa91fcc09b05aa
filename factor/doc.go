// Package factor implements batched LU (partial pivoting) and Cholesky
// factorizations of small square matrices and the triangular solve that
// consumes them.
//
// Typical use:
//
//	f, err := factor.LU(a)           // or factor.Cholesky(a) for SPD input
//	res, err := factor.Solve(f, b)   // one solution and one Status per element
//	for i := 0; i < res.Len(); i++ {
//		if !res.OK(i) { ... }        // batch.StatusSingular / StatusNotPositiveDefinite
//	}
//
// Each element is factored independently; a singular or indefinite element is
// recorded in its status and never aborts or corrupts its neighbours. Only
// structural problems (nil batches, non-square elements, misaligned
// right-hand sides) are returned as errors, wrapping batch.ErrShapeMismatch or
// batch.ErrNilBatch.
//
// Cholesky exists beside LU because it needs roughly half the arithmetic and
// no pivot search for symmetric positive-definite input.
//
// Inputs are never written unless WithInPlace is passed to that call.
package factor
