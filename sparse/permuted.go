package sparse

// PermutedCOO is the permuted variant of §3: a COO tensor augmented with,
// per mode, a permutation over [0,nnz) sorting nonzeros by their subscript
// in that mode. The inverse permutation is not stored, matching the spec.
type PermutedCOO struct {
	*COO
	perm [][]int // perm[d] has length nnz
}

// NewPermutedCOO wraps coo; FillComplete must be called before GetPerm is
// used.
func NewPermutedCOO(coo *COO) *PermutedCOO {
	return &PermutedCOO{COO: coo}
}

// FillComplete builds each mode's permutation via a counting sort if it
// has not already been built. Idempotent: a second call is a cheap no-op
// returning identical results (§4.1, invariant 3).
func (p *PermutedCOO) FillComplete() error {
	if p.perm != nil {
		return nil
	}
	ndims := p.NDims()
	nnz := p.NNZ()
	perm := make([][]int, ndims)
	for d := 0; d < ndims; d++ {
		dd := d
		pd, _ := countingSortPerm(nnz, int(p.Size(dd)), func(i int) uint64 { return p.Subscript(i, dd) })
		perm[d] = pd
	}
	p.perm = perm
	return nil
}

// GetPerm returns the i-th entry of mode d's permutation: the original
// nonzero index occupying sorted position i.
func (p *PermutedCOO) GetPerm(i, d int) int { return p.perm[d][i] }

var (
	_ Tensor   = (*PermutedCOO)(nil)
	_ Permuted = (*PermutedCOO)(nil)
)
