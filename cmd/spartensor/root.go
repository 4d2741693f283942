package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/spartensor/cpals"
	"github.com/katalvlaran/spartensor/dispatch"
	"github.com/katalvlaran/spartensor/factor"
	"github.com/katalvlaran/spartensor/ktensor"
	"github.com/katalvlaran/spartensor/mttkrp"
	"github.com/katalvlaran/spartensor/sparse"
	"github.com/katalvlaran/spartensor/textio"
)

const epsilon = 2.220446049250313e-16

var (
	flagInput      string
	flagIndexBase  int
	flagGz         bool
	flagDims       string
	flagNNZ        int
	flagNC         int
	flagIters      int
	flagSeed       uint64
	flagCheck      bool
	flagTensorKind string
	flagVTune      bool
	flagLogLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "spartensor",
	Short: "CP-ALS sparse tensor decomposition driver",
	RunE:  runDriver,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&flagInput, "input", "", "path to a sptensor file; if empty, a synthetic tensor is generated")
	flags.IntVar(&flagIndexBase, "index_base", 0, "default subscript base (0 or 1) for headerless sptensor input")
	flags.BoolVar(&flagGz, "gz", false, "read --input through a gzip decompression filter")
	flags.StringVar(&flagDims, "dims", "10,10,10", "comma-separated mode sizes for synthetic generation")
	flags.IntVar(&flagNNZ, "nnz", 100, "nonzero count for synthetic generation")
	flags.IntVar(&flagNC, "nc", 4, "CP rank")
	flags.IntVar(&flagIters, "iters", cpals.DefaultMaxIters, "maximum CP-ALS outer iterations")
	flags.Uint64Var(&flagSeed, "seed", 1, "synthetic generator seed")
	flags.BoolVar(&flagCheck, "check", false, "cross-check the selected kernel against the COO kernel")
	flags.StringVar(&flagTensorKind, "tensor", "kokkos", "MTTKRP variant: kokkos|perm|row")
	flags.BoolVar(&flagVTune, "vtune", false, "emit extra per-iteration performance logging")
	flags.StringVar(&flagLogLevel, "log", "info", "log level (debug, info, warn, error)")
}

// Execute runs the CLI and returns the process exit code (§6 "Exit codes:
// 0 on success, non-zero on failure").
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "*** %v\n", err)
		return 1
	}
	return 0
}

func runDriver(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", flagLogLevel, err)
	}
	logrus.SetLevel(level)

	dispatch.Init()
	defer dispatch.Shutdown()

	kind, err := parseTensorKind(flagTensorKind)
	if err != nil {
		return err
	}

	x, u, err := loadOrSynthesize()
	if err != nil {
		return err
	}

	if flagCheck && kind != cpals.KindCOO {
		if err := crossCheckKernel(x, u, kind); err != nil {
			return err
		}
	}

	printEvery := 0
	if flagVTune {
		printEvery = 1
	}

	result, err := cpals.Run(x, u,
		cpals.WithMaxIters(flagIters),
		cpals.WithTensorKind(kind),
		cpals.WithPrintEvery(printEvery),
		cpals.WithPerfEvery(1),
	)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"iters":   result.NumIters,
		"fit":     result.Fit,
		"resNorm": result.ResNorm,
	}).Info("cp-als finished")
	for _, p := range result.Perf {
		logrus.WithFields(logrus.Fields{
			"iter":     p.Iter,
			"fit":      p.Fit,
			"resNorm":  p.ResidualNorm,
			"seconds":  p.CumulativeSeconds,
			"gflops":   p.MTTKRPGFLOPS,
		}).Debug("perf record")
	}
	return nil
}

func parseTensorKind(s string) (cpals.TensorKind, error) {
	switch s {
	case "kokkos":
		return cpals.KindCOO, nil
	case "perm":
		return cpals.KindPermuted, nil
	case "row":
		return cpals.KindRowIndexed, nil
	default:
		return 0, fmt.Errorf("--tensor: unrecognized kind %q (want kokkos|perm|row)", s)
	}
}

func loadOrSynthesize() (sparse.Tensor, *ktensor.KTensor, error) {
	var coo *sparse.COO
	var err error
	if flagInput != "" {
		coo, err = textio.ReadSparseTensor(flagInput, flagGz, flagIndexBase)
		if err != nil {
			return nil, nil, err
		}
	} else {
		dims, err := parseDims(flagDims)
		if err != nil {
			return nil, nil, err
		}
		coo, err = generateSyntheticTensor(dims, flagNNZ, flagSeed)
		if err != nil {
			return nil, nil, err
		}
	}

	sizes := make([]int, coo.NDims())
	for d := range sizes {
		sizes[d] = int(coo.Size(d))
	}
	u, err := randomStartKTensor(sizes, flagNC, flagSeed)
	if err != nil {
		return nil, nil, err
	}

	x, err := wrapForKind(coo, flagTensorKind)
	if err != nil {
		return nil, nil, err
	}
	return x, u, nil
}

func wrapForKind(coo *sparse.COO, kind string) (sparse.Tensor, error) {
	switch kind {
	case "perm":
		p := sparse.NewPermutedCOO(coo)
		return p, p.FillComplete()
	case "row":
		r := sparse.NewRowIndexedCOO(coo)
		return r, r.FillComplete()
	default:
		return coo, nil
	}
}

func parseDims(s string) ([]uint64, error) {
	parts := strings.Split(s, ",")
	dims := make([]uint64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("--dims: invalid size %q: %w", p, err)
		}
		dims[i] = v
	}
	return dims, nil
}

// crossCheckKernel runs the MTTKRP kernel for mode 0 under both the plain
// COO path and the selected variant, and fails the driver if they disagree
// beyond the §8 residual bound (invariant 1: relative Frobenius difference
// <= 10^3 * machine epsilon).
func crossCheckKernel(x sparse.Tensor, u *ktensor.KTensor, kind cpals.TensorKind) error {
	size := int(x.Size(0))
	rank := u.Rank()

	baseline, err := factor.New(size, rank)
	if err != nil {
		return err
	}
	if err := mttkrp.COO(x, u, 0, baseline); err != nil {
		return err
	}

	candidate, err := factor.New(size, rank)
	if err != nil {
		return err
	}
	switch kind {
	case cpals.KindPermuted:
		err = mttkrp.Permuted(x.(sparse.Permuted), u, 0, candidate)
	case cpals.KindRowIndexed:
		err = mttkrp.RowIndexed(x.(sparse.RowIndexed), u, 0, candidate)
	}
	if err != nil {
		return err
	}

	baseNorm, diffNorm := 0.0, 0.0
	for i := 0; i < size; i++ {
		for j := 0; j < rank; j++ {
			a, _ := baseline.At(i, j)
			b, _ := candidate.At(i, j)
			baseNorm += a * a
			d := a - b
			diffNorm += d * d
		}
	}
	if baseNorm == 0 {
		return nil
	}
	relDiff := math.Sqrt(diffNorm) / math.Sqrt(baseNorm)
	logrus.WithField("relativeDiff", relDiff).Debug("cross-checked kernel against COO")
	if relDiff > 1e3*epsilon {
		return fmt.Errorf("--check: mode-0 MTTKRP disagreement %.3e exceeds tolerance", relDiff)
	}
	return nil
}
