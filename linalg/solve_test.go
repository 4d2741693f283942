package linalg

import (
	"errors"
	"math"
	"testing"

	"github.com/katalvlaran/spartensor/errs"
)

// --- reference oracle -------------------------------------------------
//
// referenceLU/referenceInverse are a Doolittle LU decomposition and an
// LU-based matrix inverse, adapted line-for-line in spirit from the
// teacher corpus's matrix/ops/{lu,inverse}.go (itself operating on a
// generic Matrix interface; here specialized to flat row-major []float64
// since this oracle only exists to cross-check linalg.SolvePosDef's gonum
// Cholesky path in tests, not to run in production). Two independent
// implementations agreeing on the same input is stronger evidence of
// correctness than trusting either alone.

func referenceLU(n int, a []float64) (l, u []float64, err error) {
	l = make([]float64, n*n)
	u = make([]float64, n*n)
	for i := 0; i < n; i++ {
		l[i*n+i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sum := 0.0
			for k := 0; k < i; k++ {
				sum += l[i*n+k] * u[k*n+j]
			}
			u[i*n+j] = a[i*n+j] - sum
		}
		for j := i + 1; j < n; j++ {
			sum := 0.0
			for k := 0; k < i; k++ {
				sum += l[j*n+k] * u[k*n+i]
			}
			pivot := u[i*n+i]
			if pivot == 0 {
				return nil, nil, errors.New("reference LU: zero pivot")
			}
			l[j*n+i] = (a[j*n+i] - sum) / pivot
		}
	}
	return l, u, nil
}

func referenceInverse(n int, a []float64) ([]float64, error) {
	l, u, err := referenceLU(n, a)
	if err != nil {
		return nil, err
	}
	inv := make([]float64, n*n)
	y := make([]float64, n)
	x := make([]float64, n)
	for col := 0; col < n; col++ {
		for i := 0; i < n; i++ {
			sum := 0.0
			for k := 0; k < i; k++ {
				sum += l[i*n+k] * y[k]
			}
			if i == col {
				y[i] = 1.0 - sum
			} else {
				y[i] = -sum
			}
		}
		for i := n - 1; i >= 0; i-- {
			sum := 0.0
			for k := i + 1; k < n; k++ {
				sum += u[i*n+k] * x[k]
			}
			pivot := u[i*n+i]
			if pivot == 0 {
				return nil, errors.New("reference inverse: singular")
			}
			x[i] = (y[i] - sum) / pivot
		}
		for i := 0; i < n; i++ {
			inv[i*n+col] = x[i]
		}
	}
	return inv, nil
}

// referenceSolvePosDef computes v * inverse(upsilon) using the oracle
// above, for comparison against linalg.SolvePosDef.
func referenceSolvePosDef(rows, cols int, upsilon, v []float64) ([]float64, error) {
	inv, err := referenceInverse(cols, upsilon)
	if err != nil {
		return nil, err
	}
	out := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			sum := 0.0
			for k := 0; k < cols; k++ {
				sum += v[i*cols+k] * inv[k*cols+j]
			}
			out[i*cols+j] = sum
		}
	}
	return out, nil
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// --- tests --------------------------------------------------------------

func TestGramianIdentity(t *testing.T) {
	a := []float64{1, 0, 0, 1} // 2x2 identity
	g := Gramian(2, 2, a)
	want := []float64{1, 0, 0, 1}
	for i := range want {
		if !almostEqual(g[i], want[i], 1e-12) {
			t.Fatalf("Gramian(I) = %v, want %v", g, want)
		}
	}
}

func TestGramianRectangular(t *testing.T) {
	// a is 3x2: rows (1,0) (0,1) (1,1)
	a := []float64{1, 0, 0, 1, 1, 1}
	g := Gramian(3, 2, a)
	want := []float64{2, 1, 1, 2}
	for i := range want {
		if !almostEqual(g[i], want[i], 1e-12) {
			t.Fatalf("Gramian = %v, want %v", g, want)
		}
	}
}

func TestHadamardSquareEmptyIsIdentity(t *testing.T) {
	out := HadamardSquare(3)
	for _, v := range out {
		if v != 1 {
			t.Fatalf("empty HadamardSquare should be all-ones, got %v", out)
		}
	}
}

func TestHadamardSquareCombines(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{2, 2, 2, 2}
	out := HadamardSquare(2, a, b)
	want := []float64{2, 4, 6, 8}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("HadamardSquare = %v, want %v", out, want)
		}
	}
}

func TestSolvePosDefMatchesReference(t *testing.T) {
	// Upsilon = [[4,1],[1,3]] is SPD.
	upsilon := []float64{4, 1, 1, 3}
	v := []float64{1, 2, 3, 4, 5, 6} // 3x2

	got, err := SolvePosDef(3, 2, upsilon, v)
	if err != nil {
		t.Fatalf("SolvePosDef returned error: %v", err)
	}
	want, err := referenceSolvePosDef(3, 2, upsilon, v)
	if err != nil {
		t.Fatalf("reference oracle failed: %v", err)
	}
	for i := range want {
		if !almostEqual(got[i], want[i], 1e-9) {
			t.Fatalf("SolvePosDef = %v, want (reference) %v", got, want)
		}
	}
}

func TestSolvePosDefSingular(t *testing.T) {
	// Rank-deficient 2x2: second row is a multiple of the first.
	upsilon := []float64{1, 2, 2, 4}
	v := []float64{1, 1}
	_, err := SolvePosDef(1, 2, upsilon, v)
	if !errors.Is(err, errs.ErrSingularNormalEquations) {
		t.Fatalf("expected ErrSingularNormalEquations, got %v", err)
	}
}

func TestColumnL2Norms(t *testing.T) {
	a := []float64{3, 0, 4, 0} // column 0: [3,4] -> norm 5; column 1: [0,0] -> 0
	norms := ColumnL2Norms(2, 2, a)
	if !almostEqual(norms[0], 5, 1e-12) || !almostEqual(norms[1], 0, 1e-12) {
		t.Fatalf("ColumnL2Norms = %v", norms)
	}
}

func TestColumnLInfNormsFloor(t *testing.T) {
	a := []float64{0.1, -0.2, 0.05, 0.1}
	norms := ColumnLInfNorms(2, 2, a, 1.0)
	if norms[0] != 1.0 || norms[1] != 1.0 {
		t.Fatalf("expected floor of 1.0 to dominate, got %v", norms)
	}

	b := []float64{5, -2, 1, 9}
	norms = ColumnLInfNorms(2, 2, b, 1.0)
	if !almostEqual(norms[0], 5, 1e-12) || !almostEqual(norms[1], 9, 1e-12) {
		t.Fatalf("ColumnLInfNorms = %v", norms)
	}
}

func TestScaleColumns(t *testing.T) {
	a := []float64{2, 4, 6, 8}
	ScaleColumns(2, 2, a, []float64{2, 4})
	want := []float64{1, 1, 3, 2}
	for i := range want {
		if !almostEqual(a[i], want[i], 1e-12) {
			t.Fatalf("ScaleColumns = %v, want %v", a, want)
		}
	}
}
