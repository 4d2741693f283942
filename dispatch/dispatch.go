// Package dispatch provides the hierarchical team/thread/vector parallel
// scheduler the kernels in mttkrp and cpals are built on.
//
// The engine's scheduling model (spec §5) is a league of independent teams,
// each team a single worker, each worker vectorizing over a rank-tile. On
// real accelerator hardware a team maps to a GPU thread-block and a vector
// lane to a SIMD/warp lane; on a CPU, team maps to an OS thread and vector
// to a tight inner loop. Go exposes neither warps nor a portable SIMD
// layer, so this package realizes "team" as one goroutine from a
// fixed-size worker pool and "vector lane" as the innermost loop over a
// rank-tile selected from the §4.2 compile-time ladder.
//
// Global state is limited to exactly the process-wide runtime the engine
// itself calls out: Init/Shutdown manage one package-level Runtime; every
// other piece of state is owned by its constructor's caller.
package dispatch

import (
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"
)

// DefaultRowBlock is the row-block length used by the permuted-COO MTTKRP
// kernel (§4.3) when no explicit Option overrides it.
const DefaultRowBlock = 128

// TileLadder is the closed set of compile-time rank tile sizes the MTTKRP
// and inner-product kernels dispatch on (§4.2, §4.5). 64 is included for
// parity with GPU targets even though this implementation only ever runs
// on CPU goroutines.
var TileLadder = [...]int{64, 32, 16, 8, 4, 2, 1}

// TileSpan describes one contiguous slice of the rank axis [Offset,
// Offset+Size) to be processed by the vector-lane loop. Compile marks
// whether Size came from TileLadder (true) or is the runtime-length
// leftover (false); callers may use it to pick an unrolled fixed-size loop
// versus a generic one, though both are just Go for-loops here.
type TileSpan struct {
	Offset  int
	Size    int
	Compile bool
}

// PlanTiles decomposes a rank r into at most two spans: the single largest
// ladder tile that fits, followed by one runtime-length leftover. This
// mirrors the engine's "ladder size + runtime leftover" dispatch shape
// exactly, rather than greedily tiling the whole rank (which would produce
// many tiny size-1 spans and defeat the purpose of the ladder).
func PlanTiles(r int) []TileSpan {
	if r <= 0 {
		return nil
	}
	for _, t := range TileLadder {
		if r >= t {
			if r == t {
				return []TileSpan{{Offset: 0, Size: t, Compile: true}}
			}
			return []TileSpan{
				{Offset: 0, Size: t, Compile: true},
				{Offset: t, Size: r - t, Compile: false},
			}
		}
	}
	// r < smallest ladder entry (1) cannot happen since r > 0, but stay safe.
	return []TileSpan{{Offset: 0, Size: r, Compile: false}}
}

// Config is the functional-options configuration for a Runtime, in the
// style of the corpus's WithX option constructors (e.g. matrix.Options,
// tsp.Options): unexported fields, validated WithX constructors, a
// resolver that starts from documented defaults.
type Config struct {
	teamSize int
	rowBlock int
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithTeamSize overrides the league size (number of concurrent team
// goroutines). Panics if n < 1, matching the corpus's "panic only on
// programmer error" convention for functional options.
func WithTeamSize(n int) Option {
	if n < 1 {
		panic("dispatch: WithTeamSize: n must be >= 1")
	}
	return func(c *Config) { c.teamSize = n }
}

// WithRowBlock overrides the permuted-MTTKRP row-block length. Panics if
// n < 1.
func WithRowBlock(n int) Option {
	if n < 1 {
		panic("dispatch: WithRowBlock: n must be >= 1")
	}
	return func(c *Config) { c.rowBlock = n }
}

func defaultConfig() Config {
	return Config{
		teamSize: runtime.GOMAXPROCS(0),
		rowBlock: DefaultRowBlock,
	}
}

// Runtime is the process-wide dispatch handle: its league size and
// row-block policy govern every ParallelFor/ParallelReduce call made while
// it is active.
type Runtime struct {
	cfg Config
}

// TeamSize reports the configured league size.
func (rt *Runtime) TeamSize() int { return rt.cfg.teamSize }

// RowBlock reports the configured permuted-MTTKRP row-block length.
func (rt *Runtime) RowBlock() int { return rt.cfg.rowBlock }

var (
	mu      sync.RWMutex
	current *Runtime
)

// Init constructs the process-wide Runtime from the documented defaults
// plus opts, and installs it as the active runtime. Callers (cmd/spartensor's
// driver, or a test package's init function) call Init before any kernel runs and
// Shutdown after every container built against it is gone, per §9's ordered
// lifecycle. Init is safe to call again after Shutdown; calling it while
// already active replaces the prior Runtime (last call wins), which is
// convenient for tests that Init with different team sizes per subtest.
func Init(opts ...Option) *Runtime {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	rt := &Runtime{cfg: cfg}

	mu.Lock()
	current = rt
	mu.Unlock()

	return rt
}

// Shutdown tears down the process-wide Runtime. It is idempotent.
func Shutdown() {
	mu.Lock()
	current = nil
	mu.Unlock()
}

// Active returns the process-wide Runtime, lazily initializing it with
// defaults if Init was never called. Kernels call this rather than holding
// their own Runtime reference, so a single Init/Shutdown pair governs every
// container in the process, as §9 requires.
func Active() *Runtime {
	mu.RLock()
	rt := current
	mu.RUnlock()
	if rt != nil {
		return rt
	}
	return Init()
}

// ParallelFor splits [0,n) into Active().TeamSize() contiguous blocks and
// runs body(start,end) for each block on its own team goroutine, blocking
// until every team finishes. n<=0 is a no-op. This is the team-level
// dispatch primitive every MTTKRP variant builds its outer loop on.
func ParallelFor(n int, body func(start, end int)) {
	if n <= 0 {
		return
	}
	teams := Active().TeamSize()
	if teams > n {
		teams = n
	}
	if teams <= 1 {
		body(0, n)
		return
	}

	chunk := (n + teams - 1) / teams
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			body(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelReduce splits [0,n) the same way as ParallelFor, collects one
// partial value per team via body, and folds all partials (plus identity)
// through combine sequentially, realizing the "team-level reduction sums
// across nonzeros, grand reduction sums across teams" shape of §4.5.
func ParallelReduce(n int, identity float64, body func(start, end int) float64, combine func(a, b float64) float64) float64 {
	if n <= 0 {
		return identity
	}
	teams := Active().TeamSize()
	if teams > n {
		teams = n
	}
	if teams <= 1 {
		return combine(identity, body(0, n))
	}

	chunk := (n + teams - 1) / teams
	partials := make([]float64, 0, teams)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			p := body(s, e)
			mu.Lock()
			partials = append(partials, p)
			mu.Unlock()
		}(start, end)
	}
	wg.Wait()

	acc := identity
	for _, p := range partials {
		acc = combine(acc, p)
	}
	return acc
}

// AtomicAddFloat64 atomically adds delta to *addr using a
// compare-and-swap loop over the IEEE-754 bit pattern. sync/atomic has no
// portable float64 add across the Go versions this module targets, so this
// is the standard CAS-loop idiom: read the current bits, compute the new
// value, and retry the swap until it is not contended. This is the only
// synchronization primitive the COO and permuted-COO MTTKRP kernels need
// for their scatter-add (§4.2, §4.3).
func AtomicAddFloat64(addr *float64, delta float64) {
	p := (*uint64)(unsafe.Pointer(addr))
	for {
		old := atomic.LoadUint64(p)
		newVal := math.Float64frombits(old) + delta
		if atomic.CompareAndSwapUint64(p, old, math.Float64bits(newVal)) {
			return
		}
	}
}

// AtomicMaxFloat64 atomically sets *addr to max(*addr, v) using the same
// CAS-loop idiom as AtomicAddFloat64. Used by the L-infinity column-norm
// pass (§4.6 step d) when column maxima are accumulated from concurrent
// goroutines.
func AtomicMaxFloat64(addr *float64, v float64) {
	p := (*uint64)(unsafe.Pointer(addr))
	for {
		old := atomic.LoadUint64(p)
		oldVal := math.Float64frombits(old)
		if v <= oldVal {
			return
		}
		if atomic.CompareAndSwapUint64(p, old, math.Float64bits(v)) {
			return
		}
	}
}
