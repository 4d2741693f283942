package main

import (
	"math/rand/v2"

	"github.com/katalvlaran/spartensor/factor"
	"github.com/katalvlaran/spartensor/ktensor"
	"github.com/katalvlaran/spartensor/sparse"
)

// generateSyntheticTensor produces a random COO tensor with the given mode
// sizes and (approximate, post-dedupe) nonzero count, seeded
// deterministically. This exists purely so the CLI is runnable end to end
// without a file on disk; it is not the RNG/synthetic-generation subsystem
// spec.md's Non-goals exclude, and no kernel correctness path depends on
// it.
func generateSyntheticTensor(dims []uint64, nnz int, seed uint64) (*sparse.COO, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	subs := make([]uint64, 0, nnz*len(dims))
	vals := make([]float64, 0, nnz)
	for k := 0; k < nnz; k++ {
		for _, d := range dims {
			subs = append(subs, rng.Uint64N(d))
		}
		vals = append(vals, rng.NormFloat64())
	}
	return sparse.NewCOOFromEntries(dims, subs, vals)
}

// randomStartKTensor builds a distributed KTensor with uniform random
// factor entries, used as the CP-ALS initial guess when no starting point
// is supplied externally.
func randomStartKTensor(sizes []int, rank int, seed uint64) (*ktensor.KTensor, error) {
	rng := rand.New(rand.NewPCG(seed^0xff51afd7ed558ccd, seed))

	factors := make([]*factor.Matrix, len(sizes))
	for m, sz := range sizes {
		fm, err := factor.New(sz, rank)
		if err != nil {
			return nil, err
		}
		for i := 0; i < sz; i++ {
			for j := 0; j < rank; j++ {
				if err := fm.Set(i, j, rng.Float64()); err != nil {
					return nil, err
				}
			}
		}
		factors[m] = fm
	}
	return ktensor.NewDistributed(factors)
}
