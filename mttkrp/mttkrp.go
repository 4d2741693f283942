// Package mttkrp implements the Matricized-Tensor-Times-Khatri-Rao-Product
// kernels of §4.2-4.4 and the inner-product kernel of §4.5, against the
// three sparse.Tensor variants.
//
// The team/thread/vector parallel shape is realized entirely through
// dispatch.ParallelFor/ParallelReduce and dispatch.PlanTiles, grounded on
// the teacher corpus's tsp package's use of its own worker-pool primitive
// for branch-and-bound node expansion: a fixed dispatch call at the outer
// loop, a plain Go loop for the vectorized inner axis.
package mttkrp

import (
	"github.com/katalvlaran/spartensor/dispatch"
	"github.com/katalvlaran/spartensor/errs"
	"github.com/katalvlaran/spartensor/factor"
	"github.com/katalvlaran/spartensor/ktensor"
	"github.com/katalvlaran/spartensor/sparse"
)

// checkShapes validates the §4.2 preconditions shared by every variant:
// V has shape (size[n], R), U is consistent with rank R, and every factor
// but mode n has the right row count.
func checkShapes(x sparse.Tensor, u *ktensor.KTensor, n int, v *factor.Matrix) error {
	if n < 0 || n >= x.NDims() {
		return errs.Wrapf("mttkrp", errs.ErrIndexOutOfRange, "target mode %d out of range [0,%d)", n, x.NDims())
	}
	if u.NDims() != x.NDims() {
		return errs.Wrapf("mttkrp", errs.ErrShapeMismatch, "U has %d modes, X has %d", u.NDims(), x.NDims())
	}
	r := u.Rank()
	if v.Cols() != r {
		return errs.Wrapf("mttkrp", errs.ErrRankMismatch, "V has %d columns, want %d", v.Cols(), r)
	}
	if uint64(v.Rows()) != x.Size(n) {
		return errs.Wrapf("mttkrp", errs.ErrShapeMismatch, "V has %d rows, want %d (size of mode %d)", v.Rows(), x.Size(n), n)
	}
	for m := 0; m < u.NDims(); m++ {
		if m == n {
			continue
		}
		if uint64(u.Factor(m).Rows()) != x.Size(m) {
			return errs.Wrapf("mttkrp", errs.ErrShapeMismatch, "U_%d has %d rows, want %d", m, u.Factor(m).Rows(), x.Size(m))
		}
	}
	return nil
}

// hadamardRow computes, into dst (length R, fully overwritten, so callers
// may reuse it without zeroing), the
// Hadamard product (val*lambda) ⊙ U_{m1}[row,:] ⊙ ... for every mode
// m != n, using the compile-time rank-tile ladder via dispatch.PlanTiles.
func hadamardRow(dst []float64, x sparse.Tensor, u *ktensor.KTensor, n, k int, val float64) {
	lambda := u.Lambda()
	for _, span := range dispatch.PlanTiles(len(lambda)) {
		for j := span.Offset; j < span.Offset+span.Size; j++ {
			dst[j] = val * lambda[j]
		}
	}
	for m := 0; m < u.NDims(); m++ {
		if m == n {
			continue
		}
		row := u.Factor(m).Row(int(x.Subscript(k, m)))
		for _, span := range dispatch.PlanTiles(len(lambda)) {
			for j := span.Offset; j < span.Offset+span.Size; j++ {
				dst[j] *= row[j]
			}
		}
	}
}
