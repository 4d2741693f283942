package textio

import (
	"fmt"
	"io"
	"strings"

	"github.com/katalvlaran/spartensor/errs"
	"github.com/katalvlaran/spartensor/factor"
	"github.com/katalvlaran/spartensor/ktensor"
)

// ReadKTensor parses the §6 "ktensor" format from path.
func ReadKTensor(path string, gz bool) (*ktensor.KTensor, error) {
	r, err := openReader(path, gz)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readKTensor(r)
}

func readKTensor(r io.Reader) (*ktensor.KTensor, error) {
	lr := newLineReader(r)

	kw, ok := lr.next()
	if !ok {
		return nil, errs.Wrap("textio", "ktensor: empty file", errs.ErrMalformedInput)
	}
	if fields(kw)[0] != "ktensor" {
		return nil, errs.Wrapf("textio", errs.ErrMalformedInput, "ktensor: expected keyword \"ktensor\", got %q", kw)
	}

	nLine, ok := lr.next()
	if !ok {
		return nil, errs.Wrap("textio", "ktensor: missing N line", errs.ErrMalformedInput)
	}
	n, err := parseInt(nLine)
	if err != nil || n <= 0 {
		return nil, errs.Wrapf("textio", errs.ErrMalformedInput, "ktensor: invalid N %q", nLine)
	}

	sizeLine, ok := lr.next()
	if !ok {
		return nil, errs.Wrap("textio", "ktensor: missing size line", errs.ErrMalformedInput)
	}
	sizeFields := fields(sizeLine)
	if len(sizeFields) != n {
		return nil, errs.Wrapf("textio", errs.ErrMalformedInput, "ktensor: expected %d sizes, got %d", n, len(sizeFields))
	}
	sizes := make([]int, n)
	for d, f := range sizeFields {
		v, err := parseInt(f)
		if err != nil {
			return nil, err
		}
		sizes[d] = v
	}

	rLine, ok := lr.next()
	if !ok {
		return nil, errs.Wrap("textio", "ktensor: missing R line", errs.ErrMalformedInput)
	}
	r2, err := parseInt(rLine)
	if err != nil || r2 <= 0 {
		return nil, errs.Wrapf("textio", errs.ErrMalformedInput, "ktensor: invalid R %q", rLine)
	}

	lambdaLine, ok := lr.next()
	if !ok {
		return nil, errs.Wrap("textio", "ktensor: missing lambda line", errs.ErrMalformedInput)
	}
	lambdaFields := fields(lambdaLine)
	if len(lambdaFields) != r2 {
		return nil, errs.Wrapf("textio", errs.ErrMalformedInput, "ktensor: expected %d lambda entries, got %d", r2, len(lambdaFields))
	}
	lambda := make([]float64, r2)
	for j, f := range lambdaFields {
		v, err := parseFloat(f)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, errs.Wrapf("textio", errs.ErrMalformedInput, "ktensor: lambda[%d] = %v must be >= 0", j, v)
		}
		lambda[j] = v
	}

	factors := make([]*factor.Matrix, n)
	for d := 0; d < n; d++ {
		m, err := readMatrixBody(lr, false)
		if err != nil {
			return nil, err
		}
		if m.Rows() != sizes[d] || m.Cols() != r2 {
			return nil, errs.Wrapf("textio", errs.ErrShapeMismatch, "ktensor: mode %d block is %dx%d, want %dx%d", d, m.Rows(), m.Cols(), sizes[d], r2)
		}
		factors[d] = m
	}

	return ktensor.New(factors, lambda)
}

// WriteKTensor writes k to path in the §6 "ktensor" format.
func WriteKTensor(path string, gz bool, k *ktensor.KTensor) error {
	w, err := openWriter(path, gz)
	if err != nil {
		return err
	}
	defer w.Close()
	return writeKTensor(w, k)
}

func writeKTensor(w io.Writer, k *ktensor.KTensor) error {
	var sb strings.Builder
	sb.WriteString("ktensor\n")
	fmt.Fprintf(&sb, "%d\n", k.NDims())
	for d := 0; d < k.NDims(); d++ {
		if d > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", k.Factor(d).Rows())
	}
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "%d\n", k.Rank())
	lambda := k.Lambda()
	for j, v := range lambda {
		if j > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(FormatReal(v))
	}
	sb.WriteByte('\n')
	for d := 0; d < k.NDims(); d++ {
		writeMatrixBody(&sb, k.Factor(d))
	}
	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return errs.Wrap("textio", "writing ktensor", err)
	}
	return nil
}
