// Package factor_test covers the error-return paths of Matrix using
// testify/require, matching the teacher corpus's matrix_test style for
// nil/shape-guard assertions.
package factor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/spartensor/errs"
	"github.com/katalvlaran/spartensor/factor"
)

func TestNewRejectsNonPositiveDims(t *testing.T) {
	_, err := factor.New(0, 3)
	require.ErrorIs(t, err, errs.ErrShapeMismatch)

	_, err = factor.New(3, -1)
	require.ErrorIs(t, err, errs.ErrShapeMismatch)
}

func TestNewFromRowMajorRejectsLengthMismatch(t *testing.T) {
	_, err := factor.NewFromRowMajor(2, 3, make([]float64, 5))
	require.ErrorIs(t, err, errs.ErrShapeMismatch)
}

func TestAtSetRejectOutOfRange(t *testing.T) {
	m, err := factor.New(2, 2)
	require.NoError(t, err)

	_, err = m.At(2, 0)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)

	err = m.Set(0, -1, 1.0)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
}

func TestScaleColumnsInverseRejectsRankMismatch(t *testing.T) {
	m, err := factor.New(2, 3)
	require.NoError(t, err)

	err = m.ScaleColumnsInverse([]float64{1, 2})
	require.ErrorIs(t, err, errs.ErrRankMismatch)
}

func TestSolveNormalEquationsRejectsShapeMismatch(t *testing.T) {
	m, err := factor.New(2, 2)
	require.NoError(t, err)
	upsilon, err := factor.New(3, 3)
	require.NoError(t, err)
	rhs, err := factor.New(2, 2)
	require.NoError(t, err)

	err = m.SolveNormalEquations(upsilon, rhs)
	require.ErrorIs(t, err, errs.ErrRankMismatch)

	upsilon2, err := factor.New(2, 2)
	require.NoError(t, err)
	badRhs, err := factor.New(3, 2)
	require.NoError(t, err)
	err = m.SolveNormalEquations(upsilon2, badRhs)
	require.ErrorIs(t, err, errs.ErrShapeMismatch)
}

func TestCloneIsIndependent(t *testing.T) {
	m, err := factor.New(1, 2)
	require.NoError(t, err)
	require.NoError(t, m.Set(0, 0, 1.0))

	clone := m.Clone()
	require.NoError(t, clone.Set(0, 0, 99.0))

	original, err := m.At(0, 0)
	require.NoError(t, err)
	require.Equal(t, 1.0, original)
}
