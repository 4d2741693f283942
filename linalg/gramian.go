// Package linalg provides the small dense linear-algebra layer spec.md §6
// lists as a consumed capability of the core: a symmetric positive
// definite solve, a Gramian product, and column norms. It operates on flat
// row-major []float64 slices plus explicit (rows, cols) shape, so that
// factor.Matrix (and anything else) can hand it a backing slice directly
// without an import cycle.
//
// The Gramian and solve paths are backed by gonum.org/v1/gonum/mat, the
// same dense linear-algebra library several repositories in the reference
// corpus depend on (directly or transitively via gorgonia). Column L2 norms
// use gonum.org/v1/gonum/floats; column L-infinity norms use a plain loop.
// This mirrors how the corpus reaches for a
// real BLAS/LAPACK-backed library rather than hand-rolled loops whenever
// one is available.
package linalg

import "gonum.org/v1/gonum/mat"

// Gramian computes A^T*A for the rows x cols row-major matrix a and
// returns it as a cols x cols row-major slice. This is Gamma = U^T U for a
// factor matrix U (§3's Gramian array entry).
//
// Complexity: O(rows * cols^2) via gonum's BLAS-backed multiply.
func Gramian(rows, cols int, a []float64) []float64 {
	if rows == 0 || cols == 0 {
		return make([]float64, cols*cols)
	}
	A := mat.NewDense(rows, cols, append([]float64(nil), a...))
	var g mat.Dense
	g.Mul(A.T(), A)

	out := make([]float64, cols*cols)
	for i := 0; i < cols; i++ {
		for j := 0; j < cols; j++ {
			out[i*cols+j] = g.At(i, j)
		}
	}
	return out
}

// HadamardSquare multiplies n matrices of shape r x r elementwise and
// returns the r x r row-major result: out[i][j] = Prod_k mats[k][i][j].
// This realizes the CP-ALS coefficient Upsilon, the elementwise product of
// the Gramians of every mode except the one being solved (§4.6 step b).
// The model-norm sum of §4.6 step 2 is computed separately, by
// cpals.modelNormSquared.
//
// Passing zero matrices returns an all-ones r x r matrix (the identity of
// elementwise product), matching the empty-product convention used when a
// single-mode tensor (N=1) has no "other" Gramians to fold in.
func HadamardSquare(r int, mats ...[]float64) []float64 {
	out := make([]float64, r*r)
	for i := range out {
		out[i] = 1.0
	}
	for _, m := range mats {
		for i := range out {
			out[i] *= m[i]
		}
	}
	return out
}
