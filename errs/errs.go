// Package errs defines the sentinel error taxonomy shared across the
// spartensor module and the single-line "*** component: message" formatting
// convention every package uses when surfacing a failure to a caller.
//
// Every exported sentinel below corresponds to one error kind named by the
// engine's error-handling design: preconditions are checked eagerly,
// kernels do not recover locally from domain errors, and I/O failures are
// reported with the offending path attached. Callers should compare with
// errors.Is, never by matching the formatted string.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors. Do not wrap these with fmt.Errorf when returning them
// directly from a precondition check; wrap only when extra context (shape,
// index, path) must travel with the error, using Wrap below so every
// message keeps the "*** component: ..." shape.
var (
	// ErrShapeMismatch indicates K-tensor and sparse tensor dimensions or
	// mode sizes disagree, or an MTTKRP output factor has the wrong shape.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrRankMismatch indicates factor matrices with differing column counts.
	ErrRankMismatch = errors.New("rank mismatch")

	// ErrIndexOutOfRange indicates a nonzero subscript >= declared mode size,
	// or a mode index n >= N.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrMalformedInput indicates a text parse failure: missing header, bad
	// keyword, non-positive integer where a positive one is required, or the
	// wrong number of fields on a line.
	ErrMalformedInput = errors.New("malformed input")

	// ErrIOFailure indicates a file could not be opened, or compression was
	// requested but is unavailable.
	ErrIOFailure = errors.New("I/O failure")

	// ErrSingularNormalEquations indicates the CP-ALS normal-equations
	// coefficient matrix Upsilon is numerically singular during solve.
	ErrSingularNormalEquations = errors.New("singular normal equations")

	// ErrNegativeResidualNorm indicates the computed residual^2 fell below
	// the small-negative-is-roundoff threshold, signalling corruption.
	ErrNegativeResidualNorm = errors.New("negative residual norm")

	// ErrNonFiniteValue indicates a NaN or Inf was detected in a factor
	// matrix between CP-ALS iterations (optional guard).
	ErrNonFiniteValue = errors.New("non-finite value")
)

// Wrap produces the single-line "*** component: message: cause" form that
// every user-visible error in this module must take. component identifies
// the package or subsystem raising the error (e.g. "mttkrp", "cpals",
// "textio"); message names the violated invariant or operation; cause is
// the sentinel (or another wrapped error) being annotated.
//
// The returned error still satisfies errors.Is against cause because
// fmt.Errorf's %w verb preserves the chain.
func Wrap(component, message string, cause error) error {
	return fmt.Errorf("*** %s: %s: %w", component, message, cause)
}

// Wrapf is Wrap with a printf-style message.
func Wrapf(component string, cause error, format string, args ...interface{}) error {
	return fmt.Errorf("*** %s: %s: %w", component, fmt.Sprintf(format, args...), cause)
}
