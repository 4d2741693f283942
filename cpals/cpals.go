// Package cpals implements the CP-ALS (Alternating Least Squares)
// decomposition driver of §4.6: the outer fixed-point loop that alternates
// an MTTKRP solve across every tensor mode until the fit stabilizes, times
// out, or exhausts its iteration budget.
//
// Grounded on the teacher corpus's tsp package shape: a functional-options
// configuration (options.go), a deadline pattern lifted from tsp/bb.go's
// deadlineCheck, and logrus progress logging in the style of the pack's
// inference-sim CLI driver.
package cpals

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/spartensor/dispatch"
	"github.com/katalvlaran/spartensor/errs"
	"github.com/katalvlaran/spartensor/factor"
	"github.com/katalvlaran/spartensor/ktensor"
	"github.com/katalvlaran/spartensor/linalg"
	"github.com/katalvlaran/spartensor/mttkrp"
	"github.com/katalvlaran/spartensor/sparse"
)

// machine epsilon for float64, matching linalg's conditioning threshold.
const epsilon = 2.220446049250313e-16

// Run executes CP-ALS against tensor x, refining u in place, until fit
// converges to within tol, maxIters outer iterations elapse, or maxSecs of
// wall-clock time elapses (whichever comes first). Preconditions (§4.6):
// u.IsConsistent(), u.NDims() == x.NDims(), every factor's row count
// matches the corresponding mode size.
func Run(x sparse.Tensor, u *ktensor.KTensor, opts ...Option) (*Result, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := checkPreconditions(x, u); err != nil {
		return nil, err
	}
	kernelX, err := prepareTensor(x, cfg.tensorKind)
	if err != nil {
		return nil, err
	}

	log := logrus.WithField("component", "cpals")

	n := u.NDims()
	r := u.Rank()

	gammas := make([][]float64, n)
	for m := 0; m < n; m++ {
		g, err := u.Factor(m).Gramian()
		if err != nil {
			return nil, err
		}
		gammas[m] = append([]float64(nil), g.RawRowMajor()...)
	}

	xNormSq := squaredNorm(kernelX)
	xNorm := math.Sqrt(xNormSq)

	start := time.Now()
	var deadline time.Time
	hasDeadline := cfg.maxSecs > 0
	if hasDeadline {
		deadline = start.Add(cfg.maxSecs)
	}

	result := &Result{}
	prevFit := 0.0
	var lastRecord PerfRecord
	lastRecordAppended := false

	for iter := 0; iter < cfg.maxIters; iter++ {
		var lastUpsilon []float64
		var lastFlops float64

		for mode := 0; mode < n; mode++ {
			others := make([][]float64, 0, n-1)
			for m := 0; m < n; m++ {
				if m != mode {
					others = append(others, gammas[m])
				}
			}
			upsilon := linalg.HadamardSquare(r, others...)

			size := u.Factor(mode).Rows()
			v, err := factor.New(size, r)
			if err != nil {
				return nil, err
			}
			if err := runMTTKRP(kernelX, u, mode, v, cfg.tensorKind); err != nil {
				return nil, err
			}
			lastFlops += float64(kernelX.NNZ()) * float64(r) * float64(n-1) * 2

			upsilonMat, err := factor.NewFromRowMajor(r, r, upsilon)
			if err != nil {
				return nil, err
			}
			um := u.Factor(mode)
			if err := um.SolveNormalEquations(upsilonMat, v); err != nil {
				return nil, err
			}

			var norms []float64
			if iter == 0 {
				norms = um.ColumnL2Norms()
			} else {
				norms = um.ColumnLInfNorms(1.0)
			}
			copy(u.Lambda(), norms)
			if err := um.ScaleColumnsInverse(norms); err != nil {
				return nil, err
			}

			g, err := um.Gramian()
			if err != nil {
				return nil, err
			}
			gammas[mode] = append([]float64(nil), g.RawRowMajor()...)

			lastUpsilon = upsilon
		}

		modelNormSq := modelNormSquared(lastUpsilon, gammas[n-1], u.Lambda(), r)
		innerProd, err := mttkrp.InnerProduct(kernelX, u)
		if err != nil {
			return nil, err
		}

		residualSq := xNormSq + modelNormSq - 2*innerProd
		var resNorm float64
		switch {
		case residualSq > 0:
			resNorm = math.Sqrt(residualSq)
		case residualSq > -innerProd*math.Sqrt(epsilon)*1e3:
			resNorm = 0
		default:
			return nil, errs.Wrapf("cpals", errs.ErrNegativeResidualNorm, "iteration %d: residual^2 = %v", iter, residualSq)
		}

		fit := 1.0
		if xNorm > 0 {
			fit = 1.0 - resNorm/xNorm
		}

		result.NumIters = iter + 1
		result.ResNorm = resNorm
		result.Fit = fit

		elapsed := time.Since(start).Seconds()
		gflops := 0.0
		if elapsed > 0 {
			gflops = lastFlops / elapsed / 1e9
		}
		lastRecord = PerfRecord{Iter: iter, ResidualNorm: resNorm, Fit: fit, CumulativeSeconds: elapsed, MTTKRPGFLOPS: gflops}
		lastRecordAppended = false

		if cfg.printEvery > 0 && iter%cfg.printEvery == 0 {
			log.WithFields(logrus.Fields{"iter": iter, "fit": fit, "resNorm": resNorm}).Info("cp-als progress")
		}
		if cfg.perfEvery > 0 && iter%cfg.perfEvery == 0 {
			result.Perf = append(result.Perf, lastRecord)
			lastRecordAppended = true
		}

		converged := iter > 0 && math.Abs(fit-prevFit) < cfg.tol
		timedOut := hasDeadline && time.Now().After(deadline)
		if converged || timedOut {
			break
		}
		prevFit = fit
	}

	if !lastRecordAppended {
		result.Perf = append(result.Perf, lastRecord)
	}

	if err := u.Normalize(); err != nil {
		return nil, err
	}
	return result, nil
}

func checkPreconditions(x sparse.Tensor, u *ktensor.KTensor) error {
	if !u.IsConsistent() {
		return errs.Wrap("cpals", "U is not consistent", errs.ErrRankMismatch)
	}
	if u.NDims() != x.NDims() {
		return errs.Wrapf("cpals", errs.ErrShapeMismatch, "U has %d modes, X has %d", u.NDims(), x.NDims())
	}
	for d := 0; d < x.NDims(); d++ {
		if uint64(u.Factor(d).Rows()) != x.Size(d) {
			return errs.Wrapf("cpals", errs.ErrShapeMismatch, "U_%d has %d rows, want %d", d, u.Factor(d).Rows(), x.Size(d))
		}
	}
	return nil
}

// prepareTensor calls FillComplete and type-asserts x into the interface
// the requested kernel kind needs, failing fast if the caller's tensor
// cannot support the selected variant.
func prepareTensor(x sparse.Tensor, kind TensorKind) (sparse.Tensor, error) {
	if err := x.FillComplete(); err != nil {
		return nil, err
	}
	switch kind {
	case KindPermuted:
		if _, ok := x.(sparse.Permuted); !ok {
			return nil, errs.Wrap("cpals", "KindPermuted requires a sparse.Permuted tensor", errs.ErrMalformedInput)
		}
	case KindRowIndexed:
		if _, ok := x.(sparse.RowIndexed); !ok {
			return nil, errs.Wrap("cpals", "KindRowIndexed requires a sparse.RowIndexed tensor", errs.ErrMalformedInput)
		}
	}
	return x, nil
}

func runMTTKRP(x sparse.Tensor, u *ktensor.KTensor, mode int, v *factor.Matrix, kind TensorKind) error {
	switch kind {
	case KindPermuted:
		return mttkrp.Permuted(x.(sparse.Permuted), u, mode, v)
	case KindRowIndexed:
		return mttkrp.RowIndexed(x.(sparse.RowIndexed), u, mode, v)
	default:
		return mttkrp.COO(x, u, mode, v)
	}
}

// modelNormSquared computes Sum(upsilon (*) gammaLast (*) (lambda lambda^T))
// (§4.6 step 2).
func modelNormSquared(upsilon, gammaLast, lambda []float64, r int) float64 {
	sum := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			sum += upsilon[i*r+j] * gammaLast[i*r+j] * lambda[i] * lambda[j]
		}
	}
	return sum
}

// squaredNorm computes ||X||^2 = Sum(vals[k]^2), using dispatch.ParallelReduce
// for consistency with the rest of the kernel layer even though it runs once
// per Run call.
func squaredNorm(x sparse.Tensor) float64 {
	return dispatch.ParallelReduce(x.NNZ(), 0.0, func(start, end int) float64 {
		sum := 0.0
		for k := start; k < end; k++ {
			v := x.Value(k)
			sum += v * v
		}
		return sum
	}, func(a, b float64) float64 { return a + b })
}
