package mttkrp

import (
	"github.com/katalvlaran/spartensor/dispatch"
	"github.com/katalvlaran/spartensor/factor"
	"github.com/katalvlaran/spartensor/ktensor"
	"github.com/katalvlaran/spartensor/sparse"
)

// Permuted computes the §4.3 MTTKRP kernel against a sparse.Permuted
// tensor: workers walk mode n's permutation in row-blocks of
// dispatch.Active().RowBlock() length, accumulating consecutive
// same-target-row contributions in a private buffer and flushing once the
// row changes. Only the first and last row touched by a block are flushed
// atomically (they may be shared with a neighboring block); interior
// flushes are plain stores.
//
// Calling this requires x.FillComplete() to have already been called.
func Permuted(x sparse.Permuted, u *ktensor.KTensor, n int, v *factor.Matrix) error {
	if err := checkShapes(x, u, n, v); err != nil {
		return err
	}
	v.Fill(0)
	r := u.Rank()
	nnz := x.NNZ()
	rowBlock := dispatch.Active().RowBlock()

	dispatch.ParallelFor((nnz+rowBlock-1)/rowBlock, func(blockStart, blockEnd int) {
		tmp := make([]float64, r)
		accum := make([]float64, r)

		for b := blockStart; b < blockEnd; b++ {
			lo := b * rowBlock
			hi := lo + rowBlock
			if hi > nnz {
				hi = nnz
			}
			if lo >= hi {
				continue
			}

			currentRow := -1
			firstRow := true
			for i := lo; i < hi; i++ {
				k := x.GetPerm(i, n)
				row := int(x.Subscript(k, n))
				if row != currentRow {
					if currentRow >= 0 {
						flushRow(v, currentRow, accum, firstRow)
						firstRow = false
					}
					currentRow = row
					for j := range accum {
						accum[j] = 0
					}
				}
				hadamardRow(tmp, x, u, n, k, x.Value(k))
				for j := 0; j < r; j++ {
					accum[j] += tmp[j]
				}
			}
			// last row of the block is always flushed atomically: it may
			// be shared with the next block's first row.
			flushRow(v, currentRow, accum, true)
		}
	})
	return nil
}

func flushRow(v *factor.Matrix, row int, accum []float64, atomicFlush bool) {
	dst := v.Row(row)
	if atomicFlush {
		for j, val := range accum {
			dispatch.AtomicAddFloat64(&dst[j], val)
		}
		return
	}
	for j, val := range accum {
		dst[j] += val
	}
}
