package linalg

import "math"

// jacobiEigenvalues computes the eigenvalues of the n x n symmetric
// row-major matrix a via the classical Jacobi rotation method: repeatedly
// zero the largest off-diagonal entry by a plane rotation until every
// off-diagonal entry is below tol or maxIter sweeps have elapsed.
//
// Adapted from the teacher corpus's matrix/ops Eigen routine (itself a
// standard Jacobi sweep over a generic Matrix interface); here it operates
// directly on a flat row-major scratch copy since conditioningCheck only
// ever needs eigenvalues, not eigenvectors, and Upsilon is always small
// (rank-sized).
//
// Returns (nil, false) if the matrix does not converge within maxIter
// sweeps; conditioningCheck treats that as evidence of near-singularity.
func jacobiEigenvalues(n int, a []float64, tol float64, maxIter int) ([]float64, bool) {
	work := append([]float64(nil), a...)
	at := func(i, j int) float64 { return work[i*n+j] }
	set := func(i, j int, v float64) { work[i*n+j] = v }

	// One sweep is one rotation per off-diagonal pair.
	pairs := n * (n - 1) / 2
	if pairs < 1 {
		pairs = 1
	}
	for iter := 0; iter < maxIter*pairs; iter++ {
		// Find the largest off-diagonal entry.
		maxOff := 0.0
		p, q := 0, 1
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if v := math.Abs(at(i, j)); v > maxOff {
					maxOff = v
					p, q = i, j
				}
			}
		}
		if maxOff < tol {
			eigs := make([]float64, n)
			for i := 0; i < n; i++ {
				eigs[i] = at(i, i)
			}
			return eigs, true
		}

		app, aqq, apq := at(p, p), at(q, q), at(p, q)
		theta := (aqq - app) / (2 * apq)
		t := math.Copysign(1.0/(math.Abs(theta)+math.Sqrt(theta*theta+1)), theta)
		c := 1.0 / math.Sqrt(t*t+1)
		s := t * c

		for i := 0; i < n; i++ {
			if i == p || i == q {
				continue
			}
			aip, aiq := at(i, p), at(i, q)
			newIp := c*aip - s*aiq
			newIq := s*aip + c*aiq
			set(i, p, newIp)
			set(p, i, newIp)
			set(i, q, newIq)
			set(q, i, newIq)
		}
		set(p, p, c*c*app-2*c*s*apq+s*s*aqq)
		set(q, q, s*s*app+2*c*s*apq+c*c*aqq)
		set(p, q, 0.0)
		set(q, p, 0.0)
	}

	return nil, false
}
