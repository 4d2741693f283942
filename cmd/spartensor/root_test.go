package main

import (
	"testing"

	"github.com/katalvlaran/spartensor/cpals"
	"github.com/katalvlaran/spartensor/dispatch"
)

func init() {
	dispatch.Init(dispatch.WithTeamSize(2))
}

func TestParseDims(t *testing.T) {
	dims, err := parseDims("3, 4,5")
	if err != nil {
		t.Fatalf("parseDims: %v", err)
	}
	want := []uint64{3, 4, 5}
	for i, v := range want {
		if dims[i] != v {
			t.Fatalf("parseDims = %v, want %v", dims, want)
		}
	}
}

func TestParseDimsRejectsGarbage(t *testing.T) {
	if _, err := parseDims("3,x,5"); err == nil {
		t.Fatalf("expected error for non-numeric dim")
	}
}

func TestParseTensorKind(t *testing.T) {
	cases := map[string]cpals.TensorKind{
		"kokkos": cpals.KindCOO,
		"perm":   cpals.KindPermuted,
		"row":    cpals.KindRowIndexed,
	}
	for s, want := range cases {
		got, err := parseTensorKind(s)
		if err != nil {
			t.Fatalf("parseTensorKind(%q): %v", s, err)
		}
		if got != want {
			t.Fatalf("parseTensorKind(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := parseTensorKind("bogus"); err == nil {
		t.Fatalf("expected error for unrecognized kind")
	}
}

func TestGenerateSyntheticTensorDeterministic(t *testing.T) {
	dims := []uint64{4, 4, 4}
	a, err := generateSyntheticTensor(dims, 10, 42)
	if err != nil {
		t.Fatalf("generateSyntheticTensor: %v", err)
	}
	b, err := generateSyntheticTensor(dims, 10, 42)
	if err != nil {
		t.Fatalf("generateSyntheticTensor: %v", err)
	}
	if a.NNZ() != b.NNZ() {
		t.Fatalf("same seed produced different nnz: %d vs %d", a.NNZ(), b.NNZ())
	}
	for i := 0; i < a.NNZ(); i++ {
		for d := 0; d < a.NDims(); d++ {
			if a.Subscript(i, d) != b.Subscript(i, d) {
				t.Fatalf("same seed produced different subscripts at (%d,%d)", i, d)
			}
		}
		if a.Value(i) != b.Value(i) {
			t.Fatalf("same seed produced different values at %d", i)
		}
	}
}

func TestWrapForKindPreparesPermutedAndRowIndexed(t *testing.T) {
	dims := []uint64{3, 3}
	coo, err := generateSyntheticTensor(dims, 5, 7)
	if err != nil {
		t.Fatalf("generateSyntheticTensor: %v", err)
	}
	if _, err := wrapForKind(coo, "perm"); err != nil {
		t.Fatalf("wrapForKind(perm): %v", err)
	}
	if _, err := wrapForKind(coo, "row"); err != nil {
		t.Fatalf("wrapForKind(row): %v", err)
	}
}

func TestCrossCheckKernelAgreesForSyntheticTensor(t *testing.T) {
	dims := []uint64{5, 4, 3}
	coo, err := generateSyntheticTensor(dims, 20, 11)
	if err != nil {
		t.Fatalf("generateSyntheticTensor: %v", err)
	}
	sizes := []int{5, 4, 3}
	u, err := randomStartKTensor(sizes, 2, 11)
	if err != nil {
		t.Fatalf("randomStartKTensor: %v", err)
	}
	perm, err := wrapForKind(coo, "perm")
	if err != nil {
		t.Fatalf("wrapForKind: %v", err)
	}
	if err := crossCheckKernel(perm, u, cpals.KindPermuted); err != nil {
		t.Fatalf("crossCheckKernel: %v", err)
	}
}
