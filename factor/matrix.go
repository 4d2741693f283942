// Package factor implements the dense factor matrix (§3 "Dense factor
// matrix F(m,R)") that backs every mode of a K-tensor: a row-major
// m-by-R array of reals, where m is a mode size and R is the shared rank.
//
// Matrix is grounded on the teacher corpus's matrix.Dense (matrix/dense.go):
// the same flat-slice row-major layout, the same bounds-checked At/Set
// pair returning sentinel errors instead of panicking, and the same
// "Stage" doc-comment blueprint style. What changed is the domain: this
// type carries no graph/adjacency semantics, and gains the three
// operations §4.1 calls out as attached to a factor matrix specifically
// (Gramian, column norms, and the transpose-RHS CP-ALS solve), all
// delegated to package linalg.
package factor

import (
	"github.com/katalvlaran/spartensor/errs"
	"github.com/katalvlaran/spartensor/linalg"
)

// Matrix is a row-major dense matrix of float64 values: rows is the mode
// size, cols is the shared CP rank R.
type Matrix struct {
	rows, cols int
	data       []float64 // len == rows*cols
}

// New allocates a rows x cols Matrix initialized to zero. Returns
// errs.ErrShapeMismatch if rows or cols is non-positive.
func New(rows, cols int) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errs.Wrapf("factor", errs.ErrShapeMismatch, "New(%d,%d): dimensions must be positive", rows, cols)
	}
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}, nil
}

// NewFromRowMajor wraps an existing rows*cols row-major slice without
// copying; the Matrix takes ownership of data (callers must not retain and
// mutate it through another alias). Returns errs.ErrShapeMismatch if
// len(data) != rows*cols.
func NewFromRowMajor(rows, cols int, data []float64) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errs.Wrapf("factor", errs.ErrShapeMismatch, "NewFromRowMajor(%d,%d): dimensions must be positive", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, errs.Wrapf("factor", errs.ErrShapeMismatch, "NewFromRowMajor(%d,%d): data has length %d", rows, cols, len(data))
	}
	return &Matrix{rows: rows, cols: cols, data: data}, nil
}

// Rows returns the mode size (number of rows). Complexity: O(1).
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the rank R (number of columns). Complexity: O(1).
func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return 0, errs.Wrapf("factor", errs.ErrIndexOutOfRange, "(%d,%d) out of bounds for %dx%d matrix", row, col, m.rows, m.cols)
	}
	return row*m.cols + col, nil
}

// At returns the element at (row, col). Complexity: O(1).
func (m *Matrix) At(row, col int) (float64, error) {
	idx, err := m.indexOf(row, col)
	if err != nil {
		return 0, err
	}
	return m.data[idx], nil
}

// Set assigns v to (row, col). Complexity: O(1).
func (m *Matrix) Set(row, col int, v float64) error {
	idx, err := m.indexOf(row, col)
	if err != nil {
		return err
	}
	m.data[idx] = v
	return nil
}

// Row returns a borrowed view of row i, of length Cols(). The returned
// slice aliases the Matrix's backing storage and must not outlive it or be
// retained past the next mutation, matching §3's "views are borrow-only"
// ownership rule.
func (m *Matrix) Row(i int) []float64 {
	base := i * m.cols
	return m.data[base : base+m.cols]
}

// RawRowMajor returns the matrix's backing row-major slice, borrowed. Used
// by MTTKRP kernels for direct indexed access to U_m[subs[k,m], :] and by
// package linalg for Gramian/solve calls without an import cycle.
func (m *Matrix) RawRowMajor() []float64 { return m.data }

// Clone returns a deep copy independent of the receiver.
func (m *Matrix) Clone() *Matrix {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)
	return &Matrix{rows: m.rows, cols: m.cols, data: cp}
}

// Fill sets every element to v.
func (m *Matrix) Fill(v float64) {
	for i := range m.data {
		m.data[i] = v
	}
}

// Gramian returns Gamma = U^T*U as a new cols x cols Matrix (§3's Gramian
// array entry, §4.6 step f).
func (m *Matrix) Gramian() (*Matrix, error) {
	g := linalg.Gramian(m.rows, m.cols, m.data)
	return NewFromRowMajor(m.cols, m.cols, g)
}

// ColumnL2Norms returns the Euclidean norm of each column (§4.6 step d,
// iteration 0).
func (m *Matrix) ColumnL2Norms() []float64 {
	return linalg.ColumnL2Norms(m.rows, m.cols, m.data)
}

// ColumnLInfNorms returns the floored max-absolute-value of each column
// (§4.6 step d, iterations after 0).
func (m *Matrix) ColumnLInfNorms(floor float64) []float64 {
	return linalg.ColumnLInfNorms(m.rows, m.cols, m.data, floor)
}

// ScaleColumnsInverse divides column j by scale[j], in place (§4.6 step
// e). scale must have length Cols() and every entry non-zero.
func (m *Matrix) ScaleColumnsInverse(scale []float64) error {
	if len(scale) != m.cols {
		return errs.Wrapf("factor", errs.ErrRankMismatch, "ScaleColumnsInverse: scale has length %d, want %d", len(scale), m.cols)
	}
	linalg.ScaleColumns(m.rows, m.cols, m.data, scale)
	return nil
}

// SolveNormalEquations solves X*upsilon = rhs for X (this Matrix's shape),
// overwriting the receiver's contents with the solution. upsilon must be a
// Cols() x Cols() symmetric positive-definite Matrix and rhs must have the
// receiver's shape (§4.6 step c).
func (m *Matrix) SolveNormalEquations(upsilon *Matrix, rhs *Matrix) error {
	if upsilon.rows != m.cols || upsilon.cols != m.cols {
		return errs.Wrapf("factor", errs.ErrRankMismatch, "SolveNormalEquations: upsilon is %dx%d, want %dx%d", upsilon.rows, upsilon.cols, m.cols, m.cols)
	}
	if rhs.rows != m.rows || rhs.cols != m.cols {
		return errs.Wrapf("factor", errs.ErrShapeMismatch, "SolveNormalEquations: rhs is %dx%d, want %dx%d", rhs.rows, rhs.cols, m.rows, m.cols)
	}
	solved, err := linalg.SolvePosDef(m.rows, m.cols, upsilon.data, rhs.data)
	if err != nil {
		return err
	}
	copy(m.data, solved)
	return nil
}
