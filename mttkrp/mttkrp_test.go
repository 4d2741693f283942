package mttkrp

import (
	"math"
	"testing"

	"github.com/katalvlaran/spartensor/dispatch"
	"github.com/katalvlaran/spartensor/factor"
	"github.com/katalvlaran/spartensor/ktensor"
	"github.com/katalvlaran/spartensor/sparse"
)

func init() {
	dispatch.Init(dispatch.WithTeamSize(4), dispatch.WithRowBlock(2))
}

// buildFixture constructs a small 3-mode tensor (sizes 3x2x4) with 6
// distinct nonzeros (no duplicate subscript tuples) and a
// consistent rank-2 distributed KTensor with simple factor values, used
// to cross-check the three MTTKRP variants and the inner-product kernel
// against each other.
func buildFixture(t *testing.T) (*sparse.COO, *ktensor.KTensor) {
	t.Helper()
	dims := []uint64{3, 2, 4}
	subs := []uint64{
		0, 0, 0,
		2, 1, 3,
		1, 0, 2,
		0, 1, 1,
		2, 0, 0,
		1, 1, 2,
	}
	vals := []float64{1, 2, 3, 4, 5, 6}
	coo, err := sparse.NewCOOFromEntries(dims, subs, vals)
	if err != nil {
		t.Fatalf("NewCOOFromEntries: %v", err)
	}

	sizes := []int{3, 2, 4}
	factors := make([]*factor.Matrix, 3)
	for m, sz := range sizes {
		fm, err := factor.New(sz, 2)
		if err != nil {
			t.Fatalf("factor.New: %v", err)
		}
		for i := 0; i < sz; i++ {
			_ = fm.Set(i, 0, float64(i+1))
			_ = fm.Set(i, 1, float64(2*i+1))
		}
		factors[m] = fm
	}
	u, err := ktensor.NewDistributed(factors)
	if err != nil {
		t.Fatalf("NewDistributed: %v", err)
	}
	return coo, u
}

func frobeniusDiff(a, b *factor.Matrix) float64 {
	sum := 0.0
	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Cols(); j++ {
			av, _ := a.At(i, j)
			bv, _ := b.At(i, j)
			d := av - bv
			sum += d * d
		}
	}
	return math.Sqrt(sum)
}

func frobeniusNorm(a *factor.Matrix) float64 {
	sum := 0.0
	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Cols(); j++ {
			v, _ := a.At(i, j)
			sum += v * v
		}
	}
	return math.Sqrt(sum)
}

func TestVariantsAgreeOnMTTKRP(t *testing.T) {
	coo, u := buildFixture(t)
	perm := sparse.NewPermutedCOO(coo)
	rowIdx := sparse.NewRowIndexedCOO(coo)
	if err := perm.FillComplete(); err != nil {
		t.Fatalf("perm.FillComplete: %v", err)
	}
	if err := rowIdx.FillComplete(); err != nil {
		t.Fatalf("rowIdx.FillComplete: %v", err)
	}

	for n := 0; n < coo.NDims(); n++ {
		size := int(coo.Size(n))
		rank := u.Rank()

		vCOO, _ := factor.New(size, rank)
		vPerm, _ := factor.New(size, rank)
		vRow, _ := factor.New(size, rank)

		if err := COO(coo, u, n, vCOO); err != nil {
			t.Fatalf("mode %d: COO kernel: %v", n, err)
		}
		if err := Permuted(perm, u, n, vPerm); err != nil {
			t.Fatalf("mode %d: Permuted kernel: %v", n, err)
		}
		if err := RowIndexed(rowIdx, u, n, vRow); err != nil {
			t.Fatalf("mode %d: RowIndexed kernel: %v", n, err)
		}

		normCOO := frobeniusNorm(vCOO)
		if normCOO == 0 {
			continue
		}
		if d := frobeniusDiff(vCOO, vPerm) / normCOO; d > 1e-9 {
			t.Fatalf("mode %d: COO vs Permuted relative diff %v too large", n, d)
		}
		if d := frobeniusDiff(vCOO, vRow) / normCOO; d > 1e-9 {
			t.Fatalf("mode %d: COO vs RowIndexed relative diff %v too large", n, d)
		}
	}
}

func TestMTTKRPRejectsShapeMismatch(t *testing.T) {
	coo, u := buildFixture(t)
	bad, _ := factor.New(1, u.Rank())
	if err := COO(coo, u, 0, bad); err == nil {
		t.Fatalf("expected shape mismatch error")
	}
}

func TestInnerProductMatchesExplicitSum(t *testing.T) {
	coo, u := buildFixture(t)
	got, err := InnerProduct(coo, u)
	if err != nil {
		t.Fatalf("InnerProduct: %v", err)
	}

	want := 0.0
	lambda := u.Lambda()
	for k := 0; k < coo.NNZ(); k++ {
		inner := 0.0
		for j := 0; j < u.Rank(); j++ {
			prod := lambda[j]
			for m := 0; m < u.NDims(); m++ {
				row := u.Factor(m).Row(int(coo.Subscript(k, m)))
				prod *= row[j]
			}
			inner += prod
		}
		want += coo.Value(k) * inner
	}

	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("InnerProduct = %v, want %v", got, want)
	}
}
