package mttkrp

import (
	"github.com/katalvlaran/spartensor/dispatch"
	"github.com/katalvlaran/spartensor/factor"
	"github.com/katalvlaran/spartensor/ktensor"
	"github.com/katalvlaran/spartensor/sparse"
)

// COO computes the §4.2 MTTKRP kernel against a plain sparse.Tensor: teams
// of nonzeros scatter-add their Hadamard row product into V atomically,
// since any two nonzeros may share a target row.
func COO(x sparse.Tensor, u *ktensor.KTensor, n int, v *factor.Matrix) error {
	if err := checkShapes(x, u, n, v); err != nil {
		return err
	}
	v.Fill(0)
	r := u.Rank()
	dispatch.ParallelFor(x.NNZ(), func(start, end int) {
		tmp := make([]float64, r)
		for k := start; k < end; k++ {
			hadamardRow(tmp, x, u, n, k, x.Value(k))
			row := v.Row(int(x.Subscript(k, n)))
			for j := 0; j < r; j++ {
				dispatch.AtomicAddFloat64(&row[j], tmp[j])
			}
		}
	})
	return nil
}
