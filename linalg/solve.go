package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/spartensor/errs"
)

// conditioningFloor is the relative eigenvalue-ratio threshold below which
// Upsilon is treated as numerically singular even when gonum's Cholesky
// factorization nominally succeeds. sqrt(machine epsilon) is the threshold
// spec.md §9 uses for the "small negative residual" admits-roundoff test;
// the same order of magnitude is the conventional choice for a relative
// conditioning cutoff, so it is reused here rather than inventing a second
// unrelated constant.
var conditioningFloor = math.Sqrt(epsilon)

const epsilon = 2.220446049250313e-16 // machine epsilon for float64

// SolvePosDef solves X*Upsilon = V for X, given the cols x cols symmetric
// positive-definite coefficient matrix upsilon and the rows x cols
// right-hand side v, both row-major. It returns X as a rows x cols
// row-major slice.
//
// This is the §6 "solvePosDef(A,B) -> B*A^-1 in place" consumed capability,
// specialized to the shape CP-ALS actually needs (§4.6 step c: U_n^T =
// Upsilon^-1 * V^T, equivalently U_n = V * Upsilon^-1 since Upsilon is
// symmetric).
//
// Returns errs.ErrSingularNormalEquations if upsilon is numerically
// singular, either because gonum's Cholesky factorization fails outright
// or because the eigenvalue-ratio conditioning check (conditioningCheck)
// flags it as too ill-conditioned to trust.
func SolvePosDef(rows, cols int, upsilon, v []float64) ([]float64, error) {
	if cols == 0 {
		return make([]float64, 0), nil
	}

	if singular := conditioningCheck(cols, upsilon); singular {
		return nil, errs.Wrap("linalg", "Upsilon failed eigenvalue conditioning check", errs.ErrSingularNormalEquations)
	}

	sym := mat.NewSymDense(cols, append([]float64(nil), upsilon...))
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, errs.Wrap("linalg", "Upsilon is not positive definite", errs.ErrSingularNormalEquations)
	}

	// Build V^T (cols x rows) so we can solve Upsilon * X^T = V^T in one
	// multi-RHS call, then transpose the result back into row-major X.
	vt := mat.NewDense(cols, rows, nil)
	for i := 0; i < rows; i++ {
		base := i * cols
		for j := 0; j < cols; j++ {
			vt.Set(j, i, v[base+j])
		}
	}

	var xt mat.Dense
	if err := chol.SolveTo(&xt, vt); err != nil {
		return nil, errs.Wrap("linalg", "Cholesky solve failed", errs.ErrSingularNormalEquations)
	}

	out := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		base := i * cols
		for j := 0; j < cols; j++ {
			out[base+j] = xt.At(j, i)
		}
	}
	return out, nil
}

// conditioningCheck reports whether the cols x cols symmetric matrix a is
// too ill-conditioned to solve reliably: true when the ratio of its
// smallest to largest eigenvalue (in absolute value) falls below
// conditioningFloor. Eigenvalues are computed via the Jacobi rotation
// method adapted from the teacher corpus's matrix/ops Eigen routine, which
// is cheap and numerically robust for the small (rank-sized) symmetric
// matrices Upsilon always is.
func conditioningCheck(n int, a []float64) bool {
	if n <= 1 {
		return false
	}
	eigs, ok := jacobiEigenvalues(n, a, 1e-12, 100)
	if !ok {
		// Failure to converge is itself a strong signal of near-singularity.
		return true
	}
	minAbs, maxAbs := math.Abs(eigs[0]), math.Abs(eigs[0])
	for _, e := range eigs[1:] {
		v := math.Abs(e)
		if v < minAbs {
			minAbs = v
		}
		if v > maxAbs {
			maxAbs = v
		}
	}
	if maxAbs == 0 {
		return true
	}
	return minAbs/maxAbs < conditioningFloor
}
