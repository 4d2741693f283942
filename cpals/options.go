package cpals

import "time"

// Default knobs mirrored from the teacher corpus's tsp.DefaultEps/
// DefaultTwoOptMaxIters convention: named constants backing the zero-value
// defaults, not magic numbers buried in defaultOptions.
const (
	DefaultTol        = 1e-4
	DefaultMaxIters   = 200
	DefaultPrintEvery = 0
	DefaultPerfEvery  = 0
)

// TensorKind selects which sparse.Tensor variant the driver runs its
// MTTKRP kernel against (§4.4 "Selection policy").
type TensorKind int

const (
	KindCOO TensorKind = iota
	KindPermuted
	KindRowIndexed
)

// Options configures a Run call, in the functional-options style of the
// teacher corpus's matrix.Options/tsp.Options: unexported fields, panicking
// WithX constructors for programmer-error inputs, a resolver starting from
// documented defaults.
type Options struct {
	tol        float64
	maxIters   int
	maxSecs    time.Duration
	printEvery int
	perfEvery  int
	tensorKind TensorKind
}

// Option mutates Options under construction.
type Option func(*Options)

// WithTol overrides the fit-change convergence tolerance. Panics if tol is
// not strictly positive (§4.6 precondition).
func WithTol(tol float64) Option {
	if tol <= 0 {
		panic("cpals: WithTol: tol must be > 0")
	}
	return func(o *Options) { o.tol = tol }
}

// WithMaxIters overrides the outer-iteration cap. Panics if n < 1 (§4.6
// precondition).
func WithMaxIters(n int) Option {
	if n < 1 {
		panic("cpals: WithMaxIters: n must be >= 1")
	}
	return func(o *Options) { o.maxIters = n }
}

// WithMaxSecs bounds wall-clock time; the driver checks this once per
// outer iteration (§4.6 step 5, §5 "Cancellation and timeouts"). Zero
// (the default) means unbounded.
func WithMaxSecs(d time.Duration) Option {
	return func(o *Options) { o.maxSecs = d }
}

// WithPrintEvery sets the outer-iteration stride for progress logging via
// logrus. Zero (the default) disables progress logging.
func WithPrintEvery(n int) Option {
	return func(o *Options) { o.printEvery = n }
}

// WithPerfEvery sets the outer-iteration stride for performance-record
// collection (§4.6 "Performance reporting"). Zero (the default) disables
// it; a record is always appended once at finish regardless.
func WithPerfEvery(n int) Option {
	return func(o *Options) { o.perfEvery = n }
}

// WithTensorKind selects which sparse.Tensor variant backs the MTTKRP
// kernel (§4.4 "Selection policy"). Default KindCOO.
func WithTensorKind(k TensorKind) Option {
	return func(o *Options) { o.tensorKind = k }
}

func defaultOptions() Options {
	return Options{
		tol:        DefaultTol,
		maxIters:   DefaultMaxIters,
		printEvery: DefaultPrintEvery,
		perfEvery:  DefaultPerfEvery,
		tensorKind: KindCOO,
	}
}
