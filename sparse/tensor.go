// Package sparse implements the sparse tensor entity of §3 and its three
// variants (COO, permuted, row-indexed), grounded on the pack's
// james-bowman/sparse COO/CSR coordinate-format matrix: the same
// parallel-slice storage (separate subscript and value arrays), the same
// counting-sort COO-to-CSR technique for building sorted permutations, and
// the same "duplicate coordinates sum on ingest" construction policy.
package sparse

import "github.com/katalvlaran/spartensor/errs"

// Tensor is the read-only element-access surface every sparse tensor
// variant provides: N-dimensional shape metadata plus per-nonzero
// subscript/value lookup. FillComplete is a no-op for COO and a real
// permutation build for the richer variants; it is part of this interface
// so callers can always invoke it uniformly before handing a Tensor to a
// kernel.
type Tensor interface {
	NDims() int
	NNZ() int
	Size(d int) uint64
	Subscript(i, d int) uint64
	Value(i int) float64
	FillComplete() error
}

// Permuted is implemented by variants that additionally expose, per mode,
// a permutation over [0,nnz) sorting nonzeros by their subscript in that
// mode (§3 "permuted variant").
type Permuted interface {
	Tensor
	GetPerm(i, d int) int
}

// RowIndexed is implemented by the variant that additionally exposes a
// CSR-style row-pointer array per mode (§3 "row-indexed variant").
type RowIndexed interface {
	Permuted
	GetPermRowBegin(r, d int) int
}

func checkModeRange(n, ndims int) error {
	if n < 0 || n >= ndims {
		return errs.Wrapf("sparse", errs.ErrIndexOutOfRange, "mode %d out of range [0,%d)", n, ndims)
	}
	return nil
}

func checkNonzeroRange(i, nnz int) error {
	if i < 0 || i >= nnz {
		return errs.Wrapf("sparse", errs.ErrIndexOutOfRange, "nonzero index %d out of range [0,%d)", i, nnz)
	}
	return nil
}
