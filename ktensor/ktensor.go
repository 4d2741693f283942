// Package ktensor implements the K-tensor entity of §3: an ordered
// sequence of N dense factor matrices sharing a rank R, plus a length-R
// weight vector lambda.
//
// Grounded on the teacher corpus's core.Graph aggregate-construction
// style (core/types.go's NewGraph plus validators.go): a constructor that
// validates every invariant eagerly and fails fast with a sentinel error,
// rather than allowing an inconsistent value to exist.
package ktensor

import (
	"math"
	"sort"

	"github.com/katalvlaran/spartensor/errs"
	"github.com/katalvlaran/spartensor/factor"
)

// KTensor is a rank-R canonical-polyadic factorization: N factor matrices
// (one per tensor mode) plus a length-R weight vector.
type KTensor struct {
	factors []*factor.Matrix
	lambda  []float64
}

// New builds a KTensor from factors and an explicit lambda. Returns
// errs.ErrRankMismatch if the factors disagree on column count or lambda's
// length does not match it (the isConsistent invariant of §3).
func New(factors []*factor.Matrix, lambda []float64) (*KTensor, error) {
	if len(factors) == 0 {
		return nil, errs.Wrap("ktensor", "must have at least one mode", errs.ErrShapeMismatch)
	}
	r := factors[0].Cols()
	for i, f := range factors {
		if f.Cols() != r {
			return nil, errs.Wrapf("ktensor", errs.ErrRankMismatch, "mode %d has %d columns, want %d", i, f.Cols(), r)
		}
	}
	if len(lambda) != r {
		return nil, errs.Wrapf("ktensor", errs.ErrRankMismatch, "lambda has length %d, want %d", len(lambda), r)
	}
	lambdaCopy := make([]float64, r)
	copy(lambdaCopy, lambda)
	return &KTensor{factors: append([]*factor.Matrix(nil), factors...), lambda: lambdaCopy}, nil
}

// NewDistributed builds a KTensor with lambda set to all-ones (§3: "a
// K-tensor is distributed when lambda == 1").
func NewDistributed(factors []*factor.Matrix) (*KTensor, error) {
	if len(factors) == 0 {
		return nil, errs.Wrap("ktensor", "must have at least one mode", errs.ErrShapeMismatch)
	}
	r := factors[0].Cols()
	lambda := make([]float64, r)
	for i := range lambda {
		lambda[i] = 1.0
	}
	return New(factors, lambda)
}

// NDims returns the number of modes N.
func (k *KTensor) NDims() int { return len(k.factors) }

// Rank returns the shared column count R.
func (k *KTensor) Rank() int { return len(k.lambda) }

// Factor returns the factor matrix for mode n. No bounds check is made:
// n outside [0, NDims()) panics, matching the rest of this module's
// read-only accessor conventions (sparse.Tensor.Subscript is the same
// shape).
func (k *KTensor) Factor(n int) *factor.Matrix { return k.factors[n] }

// Lambda returns a borrowed view of the weight vector; callers must not
// retain it past the next mutation.
func (k *KTensor) Lambda() []float64 { return k.lambda }

// IsConsistent reports whether every factor shares Rank() columns and
// lambda has length Rank() -- always true for a KTensor built via New, but
// exposed for callers that mutate factors/lambda directly via Factor()/
// Lambda() and want to re-validate afterward.
func (k *KTensor) IsConsistent() bool {
	r := k.Rank()
	for _, f := range k.factors {
		if f.Cols() != r {
			return false
		}
	}
	return true
}

// IsDistributed reports whether lambda is all-ones (§3).
func (k *KTensor) IsDistributed() bool {
	for _, v := range k.lambda {
		if v != 1.0 {
			return false
		}
	}
	return true
}

// IsNormalized reports whether every factor has unit column L2 norms
// (§3), within tol.
func (k *KTensor) IsNormalized(tol float64) bool {
	for _, f := range k.factors {
		for _, n := range f.ColumnL2Norms() {
			if math.Abs(n-1.0) > tol {
				return false
			}
		}
	}
	return true
}

// Normalize rescales every factor matrix to unit column norms and absorbs
// the product of the removed norms (times the existing lambda) back into
// lambda, then reorders components by descending lambda (stable sort,
// ties broken by original index). This is the CP-ALS §4.6 "Post-processing"
// step, exposed standalone so callers can normalize a KTensor built any
// other way (e.g. a synthetic ground-truth tensor for recovery tests).
func (k *KTensor) Normalize() error {
	r := k.Rank()
	combined := make([]float64, r)
	copy(combined, k.lambda)

	for _, f := range k.factors {
		norms := f.ColumnL2Norms()
		safe := make([]float64, r)
		for j, n := range norms {
			if n == 0 {
				safe[j] = 1 // leave an all-zero column untouched rather than divide by zero
				continue
			}
			safe[j] = n
			combined[j] *= n
		}
		if err := f.ScaleColumnsInverse(safe); err != nil {
			return err
		}
	}

	order := make([]int, r)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return combined[order[a]] > combined[order[b]]
	})

	newLambda := make([]float64, r)
	for newIdx, oldIdx := range order {
		newLambda[newIdx] = combined[oldIdx]
	}

	for _, f := range k.factors {
		if err := permuteColumns(f, order); err != nil {
			return err
		}
	}
	k.lambda = newLambda
	return nil
}

// permuteColumns reorders f's columns in place according to order, where
// order[newIdx] = oldIdx.
func permuteColumns(f *factor.Matrix, order []int) error {
	rows, cols := f.Rows(), f.Cols()
	rebuilt := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		row := f.Row(i)
		base := i * cols
		for newIdx, oldIdx := range order {
			rebuilt[base+newIdx] = row[oldIdx]
		}
	}
	copy(f.RawRowMajor(), rebuilt)
	return nil
}
