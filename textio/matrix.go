package textio

import (
	"fmt"
	"io"
	"strings"

	"github.com/katalvlaran/spartensor/errs"
	"github.com/katalvlaran/spartensor/factor"
)

// ReadMatrix parses the §6 "matrix" / "facmatrix" format from path. Both
// keywords share an identical body; the keyword itself is accepted but not
// otherwise distinguished.
func ReadMatrix(path string, gz bool) (*factor.Matrix, error) {
	r, err := openReader(path, gz)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readMatrix(r)
}

func readMatrix(r io.Reader) (*factor.Matrix, error) {
	lr := newLineReader(r)
	return readMatrixBody(lr, true)
}

// readMatrixBody parses a matrix block. expectKeyword controls whether the
// leading "matrix"/"facmatrix" keyword line is consumed here (standalone
// files) or was already consumed by the caller (ktensor's embedded
// blocks, which carry no keyword of their own per §6).
func readMatrixBody(lr *lineReader, expectKeyword bool) (*factor.Matrix, error) {
	if expectKeyword {
		kw, ok := lr.next()
		if !ok {
			return nil, errs.Wrap("textio", "matrix: empty file", errs.ErrMalformedInput)
		}
		kwFields := fields(kw)
		if kwFields[0] != "matrix" && kwFields[0] != "facmatrix" {
			return nil, errs.Wrapf("textio", errs.ErrMalformedInput, "matrix: expected keyword \"matrix\"/\"facmatrix\", got %q", kwFields[0])
		}
	}

	nLine, ok := lr.next()
	if !ok {
		return nil, errs.Wrap("textio", "matrix: missing dimension-count line", errs.ErrMalformedInput)
	}
	if nLine != "2" {
		return nil, errs.Wrapf("textio", errs.ErrMalformedInput, "matrix: expected dimension count 2, got %q", nLine)
	}

	shapeLine, ok := lr.next()
	if !ok {
		return nil, errs.Wrap("textio", "matrix: missing shape line", errs.ErrMalformedInput)
	}
	shapeFields := fields(shapeLine)
	if len(shapeFields) != 2 {
		return nil, errs.Wrapf("textio", errs.ErrMalformedInput, "matrix: expected 2 shape fields, got %d", len(shapeFields))
	}
	rows, err := parseInt(shapeFields[0])
	if err != nil {
		return nil, err
	}
	cols, err := parseInt(shapeFields[1])
	if err != nil {
		return nil, err
	}

	m, err := factor.New(rows, cols)
	if err != nil {
		return nil, err
	}
	for i := 0; i < rows; i++ {
		line, ok := lr.next()
		if !ok {
			return nil, errs.Wrapf("textio", errs.ErrMalformedInput, "matrix: expected %d rows, got %d", rows, i)
		}
		rowFields := fields(line)
		if len(rowFields) != cols {
			return nil, errs.Wrapf("textio", errs.ErrMalformedInput, "matrix: row %d has %d fields, want %d", i, len(rowFields), cols)
		}
		for j, f := range rowFields {
			v, err := parseFloat(f)
			if err != nil {
				return nil, err
			}
			if err := m.Set(i, j, v); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// WriteMatrix writes m to path in the §6 "matrix" format.
func WriteMatrix(path string, gz bool, m *factor.Matrix) error {
	w, err := openWriter(path, gz)
	if err != nil {
		return err
	}
	defer w.Close()
	return writeMatrix(w, "matrix", m)
}

// WriteFacMatrix writes m to path in the §6 "facmatrix" format (identical
// body, different keyword line).
func WriteFacMatrix(path string, gz bool, m *factor.Matrix) error {
	w, err := openWriter(path, gz)
	if err != nil {
		return err
	}
	defer w.Close()
	return writeMatrix(w, "facmatrix", m)
}

func writeMatrix(w io.Writer, keyword string, m *factor.Matrix) error {
	var sb strings.Builder
	if keyword != "" {
		sb.WriteString(keyword)
		sb.WriteByte('\n')
	}
	writeMatrixBody(&sb, m)
	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return errs.Wrap("textio", "writing matrix", err)
	}
	return nil
}

func writeMatrixBody(sb *strings.Builder, m *factor.Matrix) {
	fmt.Fprintf(sb, "2\n%d %d\n", m.Rows(), m.Cols())
	for i := 0; i < m.Rows(); i++ {
		row := m.Row(i)
		for j, v := range row {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(FormatReal(v))
		}
		sb.WriteByte('\n')
	}
}
