package linalg

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/spartensor/dispatch"
)

// ColumnL2Norms returns, for the rows x cols row-major matrix a, the
// Euclidean norm of each column. Used on CP-ALS's first outer iteration
// (§4.6 step d) to normalize a freshly solved factor matrix.
func ColumnL2Norms(rows, cols int, a []float64) []float64 {
	out := make([]float64, cols)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			col[i] = a[i*cols+j]
		}
		out[j] = floats.Norm(col, 2)
	}
	return out
}

// ColumnLInfNorms returns, for the rows x cols row-major matrix a, the
// max-absolute-value of each column, floored at floor. Used on every
// outer iteration after the first (§4.6 step d): "use L-infinity with a
// floor of 1" prevents a near-zero column from blowing up on rescale.
//
// The per-column maxima are accumulated with dispatch.ParallelFor plus
// dispatch.AtomicMaxFloat64 rather than a sequential scan, exercising the
// same atomic-max primitive the engine's consumed-capability list (§6)
// calls out alongside atomic-add.
func ColumnLInfNorms(rows, cols int, a []float64, floor float64) []float64 {
	out := make([]float64, cols)
	for j := range out {
		out[j] = floor
	}

	dispatch.ParallelFor(rows, func(start, end int) {
		local := make([]float64, cols)
		copy(local, out)
		for i := start; i < end; i++ {
			for j := 0; j < cols; j++ {
				v := math.Abs(a[i*cols+j])
				if v > local[j] {
					local[j] = v
				}
			}
		}
		for j := 0; j < cols; j++ {
			dispatch.AtomicMaxFloat64(&out[j], local[j])
		}
	})

	return out
}

// ScaleColumns multiplies column j of the rows x cols row-major matrix a,
// in place, by 1/scale[j]. scale[j] must be non-zero; callers are expected
// to have already applied a floor (as ColumnLInfNorms does) to guarantee
// this. This realizes §4.6 step e.
func ScaleColumns(rows, cols int, a []float64, scale []float64) {
	for i := 0; i < rows; i++ {
		base := i * cols
		for j := 0; j < cols; j++ {
			a[base+j] /= scale[j]
		}
	}
}
