package textio

import (
	"math"
	"strings"
	"testing"

	"github.com/katalvlaran/spartensor/factor"
	"github.com/katalvlaran/spartensor/ktensor"
)

func TestSptensorHeaderedRoundTrip(t *testing.T) {
	body := `sptensor
3
2 3 2
4
0 0 0 1.5
1 2 1 2.5
0 1 0 3.5
1 0 1 4.5
`
	coo, err := readSparseTensor(strings.NewReader(body), 0)
	if err != nil {
		t.Fatalf("readSparseTensor: %v", err)
	}
	if coo.NNZ() != 4 || coo.NDims() != 3 {
		t.Fatalf("parsed shape = ndims %d nnz %d", coo.NDims(), coo.NNZ())
	}

	var sb strings.Builder
	if err := writeSparseTensor(&sb, coo); err != nil {
		t.Fatalf("writeSparseTensor: %v", err)
	}
	coo2, err := readSparseTensor(strings.NewReader(sb.String()), 0)
	if err != nil {
		t.Fatalf("re-read written sptensor: %v", err)
	}
	if coo2.NNZ() != coo.NNZ() {
		t.Fatalf("round-trip nnz mismatch: %d vs %d", coo2.NNZ(), coo.NNZ())
	}
	for i := 0; i < coo.NNZ(); i++ {
		for d := 0; d < coo.NDims(); d++ {
			if coo.Subscript(i, d) != coo2.Subscript(i, d) {
				t.Fatalf("round-trip subscript mismatch at (%d,%d)", i, d)
			}
		}
		if math.Abs(coo.Value(i)-coo2.Value(i)) > 1e-9 {
			t.Fatalf("round-trip value mismatch at %d", i)
		}
	}
}

func TestSptensorOneBasedTag(t *testing.T) {
	body := `sptensor indices-start-at-one
2
2 2
1
1 1 9.0
`
	coo, err := readSparseTensor(strings.NewReader(body), 0)
	if err != nil {
		t.Fatalf("readSparseTensor: %v", err)
	}
	if coo.Subscript(0, 0) != 0 || coo.Subscript(0, 1) != 0 {
		t.Fatalf("1-based (1,1) should map to 0-based (0,0), got (%d,%d)", coo.Subscript(0, 0), coo.Subscript(0, 1))
	}
}

func TestSptensorHeaderlessInfersSizes(t *testing.T) {
	body := `0 0 1.0
1 2 2.0
2 1 3.0
`
	coo, err := readSparseTensor(strings.NewReader(body), 0)
	if err != nil {
		t.Fatalf("readSparseTensor: %v", err)
	}
	if coo.NDims() != 2 {
		t.Fatalf("NDims = %d, want 2", coo.NDims())
	}
	if coo.Size(0) != 3 || coo.Size(1) != 3 {
		t.Fatalf("inferred sizes = (%d,%d), want (3,3)", coo.Size(0), coo.Size(1))
	}
}

func TestMatrixRoundTrip(t *testing.T) {
	m, err := factor.New(2, 3)
	if err != nil {
		t.Fatalf("factor.New: %v", err)
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			_ = m.Set(i, j, float64(i*3+j)+0.25)
		}
	}
	var sb strings.Builder
	if err := writeMatrix(&sb, "matrix", m); err != nil {
		t.Fatalf("writeMatrix: %v", err)
	}
	m2, err := readMatrix(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("readMatrix: %v", err)
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			a, _ := m.At(i, j)
			b, _ := m2.At(i, j)
			if math.Abs(a-b) > 1e-9 {
				t.Fatalf("round-trip mismatch at (%d,%d): %v vs %v", i, j, a, b)
			}
		}
	}
}

func TestKTensorRoundTrip(t *testing.T) {
	f0, _ := factor.New(2, 2)
	_ = f0.Set(0, 0, 1)
	_ = f0.Set(1, 1, 2)
	f1, _ := factor.New(3, 2)
	_ = f1.Set(0, 0, 1)
	_ = f1.Set(2, 1, 5)
	k, err := ktensor.New([]*factor.Matrix{f0, f1}, []float64{1.5, 2.5})
	if err != nil {
		t.Fatalf("ktensor.New: %v", err)
	}

	var sb strings.Builder
	if err := writeKTensor(&sb, k); err != nil {
		t.Fatalf("writeKTensor: %v", err)
	}
	k2, err := readKTensor(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("readKTensor: %v", err)
	}
	if k2.NDims() != k.NDims() || k2.Rank() != k.Rank() {
		t.Fatalf("round-trip shape mismatch")
	}
	for j, v := range k.Lambda() {
		if math.Abs(k2.Lambda()[j]-v) > 1e-9 {
			t.Fatalf("round-trip lambda mismatch at %d: %v vs %v", j, k2.Lambda()[j], v)
		}
	}
}

func TestSptensorRejectsMalformedLine(t *testing.T) {
	body := `sptensor
1
3
1
0 1.0 extra
`
	if _, err := readSparseTensor(strings.NewReader(body), 0); err == nil {
		t.Fatalf("expected malformed-input error")
	}
}

func TestCommentsAndBlankLinesIgnored(t *testing.T) {
	body := `sptensor

// a comment
2
2 2

1
0 0 1.0
`
	coo, err := readSparseTensor(strings.NewReader(body), 0)
	if err != nil {
		t.Fatalf("readSparseTensor with comments/blank lines: %v", err)
	}
	if coo.NNZ() != 1 {
		t.Fatalf("NNZ = %d, want 1", coo.NNZ())
	}
}
