package sparse

import (
	"strconv"
	"strings"

	"github.com/katalvlaran/spartensor/errs"
)

// NewCOOFromEntries builds a COO tensor from parallel subs/vals arrays,
// merging (summing) duplicate subscript tuples on ingest (§9 Open
// Question, "merge on ingest" branch — see DESIGN.md). subs must have
// length len(vals)*len(dims), row-major (one row of len(dims) subscripts
// per entry). Mode sizes are taken from dims, not inferred.
func NewCOOFromEntries(dims []uint64, subs []uint64, vals []float64) (*COO, error) {
	ndims := len(dims)
	if ndims == 0 {
		return nil, errs.Wrap("sparse", "tensor must have at least one mode", errs.ErrShapeMismatch)
	}
	if len(subs) != len(vals)*ndims {
		return nil, errs.Wrapf("sparse", errs.ErrShapeMismatch, "NewCOOFromEntries: subs has length %d, want %d*%d", len(subs), len(vals), ndims)
	}

	index := make(map[string]int, len(vals))
	mergedSubs := make([]uint64, 0, len(subs))
	mergedVals := make([]float64, 0, len(vals))

	var key strings.Builder
	for k := 0; k < len(vals); k++ {
		row := subs[k*ndims : (k+1)*ndims]
		key.Reset()
		for d, s := range row {
			if s >= dims[d] {
				return nil, errs.Wrapf("sparse", errs.ErrIndexOutOfRange, "entry %d: subscript %d on mode %d out of range [0,%d)", k, s, d, dims[d])
			}
			key.WriteString(strconv.FormatUint(s, 36))
			key.WriteByte(',')
		}
		keyStr := key.String()

		if existing, ok := index[keyStr]; ok {
			mergedVals[existing] += vals[k]
			continue
		}
		index[keyStr] = len(mergedVals)
		mergedSubs = append(mergedSubs, row...)
		mergedVals = append(mergedVals, vals[k])
	}

	dimsCopy := make([]uint64, ndims)
	copy(dimsCopy, dims)
	return &COO{dims: dimsCopy, subs: mergedSubs, vals: mergedVals}, nil
}
