package sparse

// RowIndexedCOO is the row-indexed variant of §3: a permuted tensor
// additionally storing, per mode, a CSR-style prefix-sum row-pointer array
// of length size[d]+1.
type RowIndexedCOO struct {
	*PermutedCOO
	rowptr [][]int // rowptr[d] has length Size(d)+1
}

// NewRowIndexedCOO wraps coo; FillComplete must be called before
// GetPermRowBegin is used.
func NewRowIndexedCOO(coo *COO) *RowIndexedCOO {
	return &RowIndexedCOO{PermutedCOO: NewPermutedCOO(coo)}
}

// FillComplete builds the permutations (delegated to PermutedCOO) plus the
// per-mode row-pointer arrays, if not already built. Idempotent.
func (r *RowIndexedCOO) FillComplete() error {
	alreadyBuilt := r.rowptr != nil
	if err := r.PermutedCOO.FillComplete(); err != nil {
		return err
	}
	if alreadyBuilt {
		return nil
	}
	ndims := r.NDims()
	nnz := r.NNZ()
	rowptr := make([][]int, ndims)
	for d := 0; d < ndims; d++ {
		dd := d
		_, rp := countingSortPerm(nnz, int(r.Size(dd)), func(i int) uint64 { return r.Subscript(i, dd) })
		rowptr[d] = rp
	}
	r.rowptr = rowptr
	return nil
}

// GetPermRowBegin returns rowptr_d[row]: the first position in mode d's
// permutation whose subscript is >= row (and, since rowptr is exact for
// present rows, == row whenever row has any nonzeros).
func (r *RowIndexedCOO) GetPermRowBegin(row, d int) int { return r.rowptr[d][row] }

var (
	_ Tensor     = (*RowIndexedCOO)(nil)
	_ Permuted   = (*RowIndexedCOO)(nil)
	_ RowIndexed = (*RowIndexedCOO)(nil)
)
