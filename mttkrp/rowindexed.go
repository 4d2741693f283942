package mttkrp

import (
	"github.com/katalvlaran/spartensor/dispatch"
	"github.com/katalvlaran/spartensor/factor"
	"github.com/katalvlaran/spartensor/ktensor"
	"github.com/katalvlaran/spartensor/sparse"
)

// RowIndexed computes the §4.4 MTTKRP kernel against a sparse.RowIndexed
// tensor: parallelizes directly over rows of mode n, so no two workers
// ever write the same V row and no atomics are needed at all.
//
// Calling this requires x.FillComplete() to have already been called.
func RowIndexed(x sparse.RowIndexed, u *ktensor.KTensor, n int, v *factor.Matrix) error {
	if err := checkShapes(x, u, n, v); err != nil {
		return err
	}
	v.Fill(0)
	r := u.Rank()
	size := int(x.Size(n))

	dispatch.ParallelFor(size, func(rowStart, rowEnd int) {
		tmp := make([]float64, r)
		for row := rowStart; row < rowEnd; row++ {
			dst := v.Row(row)
			begin, end := x.GetPermRowBegin(row, n), x.GetPermRowBegin(row+1, n)
			for i := begin; i < end; i++ {
				k := x.GetPerm(i, n)
				hadamardRow(tmp, x, u, n, k, x.Value(k))
				for j := 0; j < r; j++ {
					dst[j] += tmp[j]
				}
			}
		}
	})
	return nil
}
