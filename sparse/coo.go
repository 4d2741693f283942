package sparse

import "github.com/katalvlaran/spartensor/errs"

// COO is the coordinate-format sparse tensor of §3: nnz nonzeros over N
// modes, stored as an nnz x N subscript array (row-major, one row per
// nonzero) plus a parallel nnz-length value array.
type COO struct {
	dims []uint64
	subs []uint64 // len == nnz*ndims, row-major: subs[k*ndims+d]
	vals []float64
}

// NewCOO allocates a COO tensor with the given per-mode sizes and nnz
// capacity, all subscripts and values zeroed. Most callers should prefer
// NewCOOFromEntries; this constructor exists for kernels/tests that fill
// subscripts and values incrementally via SetEntry.
func NewCOO(dims []uint64, nnz int) (*COO, error) {
	if len(dims) == 0 {
		return nil, errs.Wrap("sparse", "tensor must have at least one mode", errs.ErrShapeMismatch)
	}
	if nnz < 0 {
		return nil, errs.Wrapf("sparse", errs.ErrShapeMismatch, "NewCOO: nnz %d must be non-negative", nnz)
	}
	dimsCopy := make([]uint64, len(dims))
	copy(dimsCopy, dims)
	return &COO{
		dims: dimsCopy,
		subs: make([]uint64, nnz*len(dims)),
		vals: make([]float64, nnz),
	}, nil
}

// SetEntry writes nonzero k's subscripts and value directly, for callers
// that allocate with NewCOO and fill entries one at a time.
func (c *COO) SetEntry(k int, subs []uint64, v float64) error {
	if k < 0 || k >= c.NNZ() {
		return errs.Wrapf("sparse", errs.ErrIndexOutOfRange, "SetEntry: %d out of range [0,%d)", k, c.NNZ())
	}
	if len(subs) != len(c.dims) {
		return errs.Wrapf("sparse", errs.ErrShapeMismatch, "SetEntry: got %d subscripts, want %d", len(subs), len(c.dims))
	}
	base := k * len(c.dims)
	for d, s := range subs {
		if s >= c.dims[d] {
			return errs.Wrapf("sparse", errs.ErrIndexOutOfRange, "SetEntry: subscript %d on mode %d out of range [0,%d)", s, d, c.dims[d])
		}
		c.subs[base+d] = s
	}
	c.vals[k] = v
	return nil
}

// NDims returns N, the number of modes.
func (c *COO) NDims() int { return len(c.dims) }

// NNZ returns the number of stored nonzeros.
func (c *COO) NNZ() int { return len(c.vals) }

// Size returns the declared size of mode d.
func (c *COO) Size(d int) uint64 { return c.dims[d] }

// Subscript returns the d-th subscript of nonzero i. Hot-path accessor: no
// bounds checking, matching the teacher corpus's convention of trusting
// internal loop bounds in kernel-facing accessors (callers always iterate
// 0 <= i < NNZ()).
func (c *COO) Subscript(i, d int) uint64 { return c.subs[i*len(c.dims)+d] }

// Value returns the value of nonzero i. Hot-path accessor, see Subscript.
func (c *COO) Value(i int) float64 { return c.vals[i] }

// FillComplete is a no-op for the base COO variant (§4.1).
func (c *COO) FillComplete() error { return nil }

var _ Tensor = (*COO)(nil)
