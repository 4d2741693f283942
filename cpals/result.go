package cpals

// PerfRecord is one performance-reporting sample (§4.6 "Performance
// reporting"): appended every PerfEvery outer iterations, plus always once
// at finish.
type PerfRecord struct {
	Iter              int
	ResidualNorm      float64
	Fit               float64
	CumulativeSeconds float64
	MTTKRPGFLOPS      float64
}

// Result is what a completed (or deadline-terminated) Run call reports.
type Result struct {
	NumIters int
	ResNorm  float64
	Fit      float64
	Perf     []PerfRecord
}
