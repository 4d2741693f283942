package mttkrp

import (
	"github.com/katalvlaran/spartensor/dispatch"
	"github.com/katalvlaran/spartensor/errs"
	"github.com/katalvlaran/spartensor/ktensor"
	"github.com/katalvlaran/spartensor/sparse"
)

// InnerProduct computes the §4.5 kernel: d = sum_k vals[k] * sum_j
// lambda[j] * prod_m U_m[subs[k,m],j]. Uses dispatch.ParallelReduce for the
// three-level team/grand reduction the spec describes.
func InnerProduct(x sparse.Tensor, u *ktensor.KTensor) (float64, error) {
	if u.NDims() != x.NDims() {
		return 0, errs.Wrapf("mttkrp", errs.ErrShapeMismatch, "U has %d modes, X has %d", u.NDims(), x.NDims())
	}
	for m := 0; m < u.NDims(); m++ {
		if uint64(u.Factor(m).Rows()) != x.Size(m) {
			return 0, errs.Wrapf("mttkrp", errs.ErrShapeMismatch, "U_%d has %d rows, want %d", m, u.Factor(m).Rows(), x.Size(m))
		}
	}

	r := u.Rank()
	lambda := u.Lambda()
	result := dispatch.ParallelReduce(x.NNZ(), 0.0, func(start, end int) float64 {
		tmp := make([]float64, r)
		teamSum := 0.0
		for k := start; k < end; k++ {
			for _, span := range dispatch.PlanTiles(r) {
				for j := span.Offset; j < span.Offset+span.Size; j++ {
					tmp[j] = lambda[j]
				}
			}
			for m := 0; m < u.NDims(); m++ {
				row := u.Factor(m).Row(int(x.Subscript(k, m)))
				for _, span := range dispatch.PlanTiles(r) {
					for j := span.Offset; j < span.Offset+span.Size; j++ {
						tmp[j] *= row[j]
					}
				}
			}
			rowSum := 0.0
			for j := 0; j < r; j++ {
				rowSum += tmp[j]
			}
			teamSum += x.Value(k) * rowSum
		}
		return teamSum
	}, func(a, b float64) float64 { return a + b })

	return result, nil
}
