package textio

import (
	"fmt"
	"io"
	"strings"

	"github.com/katalvlaran/spartensor/errs"
	"github.com/katalvlaran/spartensor/sparse"
)

// ReadSparseTensor parses the §6 sptensor format from path. indexBase is
// used only when the file is headerless (no "sptensor" keyword line): it
// is the caller-supplied default offset (0 or 1) spec.md describes as
// governed by an "index_base argument supplied by the caller".
func ReadSparseTensor(path string, gz bool, indexBase int) (*sparse.COO, error) {
	r, err := openReader(path, gz)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readSparseTensor(r, indexBase)
}

func readSparseTensor(r io.Reader, indexBase int) (*sparse.COO, error) {
	lr := newLineReader(r)
	first, ok := lr.next()
	if !ok {
		return nil, errs.Wrap("textio", "sptensor: empty file", errs.ErrMalformedInput)
	}

	firstFields := fields(first)
	if firstFields[0] == "sptensor" {
		base := indexBase
		if len(firstFields) > 1 {
			switch firstFields[1] {
			case "indices-start-at-one":
				base = 1
			case "indices-start-at-zero":
				base = 0
			default:
				return nil, errs.Wrapf("textio", errs.ErrMalformedInput, "sptensor: unrecognized tag %q", firstFields[1])
			}
		} else {
			base = 0
		}
		return readSparseTensorHeadered(lr, base)
	}

	return readSparseTensorHeaderless(lr, first, indexBase)
}

func readSparseTensorHeadered(lr *lineReader, base int) (*sparse.COO, error) {
	nLine, ok := lr.next()
	if !ok {
		return nil, errs.Wrap("textio", "sptensor: missing N line", errs.ErrMalformedInput)
	}
	n, err := parseInt(nLine)
	if err != nil || n <= 0 {
		return nil, errs.Wrapf("textio", errs.ErrMalformedInput, "sptensor: invalid N %q", nLine)
	}

	sizeLine, ok := lr.next()
	if !ok {
		return nil, errs.Wrap("textio", "sptensor: missing size line", errs.ErrMalformedInput)
	}
	sizeFields := fields(sizeLine)
	if len(sizeFields) != n {
		return nil, errs.Wrapf("textio", errs.ErrMalformedInput, "sptensor: expected %d sizes, got %d", n, len(sizeFields))
	}
	dims := make([]uint64, n)
	for d, f := range sizeFields {
		v, err := parseUint(f)
		if err != nil {
			return nil, err
		}
		dims[d] = v
	}

	nnzLine, ok := lr.next()
	if !ok {
		return nil, errs.Wrap("textio", "sptensor: missing nnz line", errs.ErrMalformedInput)
	}
	nnz, err := parseInt(nnzLine)
	if err != nil || nnz < 0 {
		return nil, errs.Wrapf("textio", errs.ErrMalformedInput, "sptensor: invalid nnz %q", nnzLine)
	}

	subs := make([]uint64, 0, nnz*n)
	vals := make([]float64, 0, nnz)
	for i := 0; i < nnz; i++ {
		line, ok := lr.next()
		if !ok {
			return nil, errs.Wrapf("textio", errs.ErrMalformedInput, "sptensor: expected %d nonzero lines, got %d", nnz, i)
		}
		row, val, err := parseSptensorLine(line, n, base, dims)
		if err != nil {
			return nil, err
		}
		subs = append(subs, row...)
		vals = append(vals, val)
	}

	return sparse.NewCOOFromEntries(dims, subs, vals)
}

// readSparseTensorHeaderless handles the "no sptensor keyword" branch of
// §6: every line is a data line, N is inferred from the first, mode sizes
// are the per-mode running maxima plus one.
func readSparseTensorHeaderless(lr *lineReader, first string, base int) (*sparse.COO, error) {
	firstFields := fields(first)
	if len(firstFields) < 2 {
		return nil, errs.Wrapf("textio", errs.ErrMalformedInput, "sptensor: headerless line too short: %q", first)
	}
	n := len(firstFields) - 1

	var allSubs [][]uint64
	var allVals []float64
	maxima := make([]uint64, n)

	parseLine := func(line string) error {
		row, val, err := parseSptensorLine(line, n, base, nil)
		if err != nil {
			return err
		}
		for d, s := range row {
			if s+1 > maxima[d] {
				maxima[d] = s + 1
			}
		}
		allSubs = append(allSubs, row)
		allVals = append(allVals, val)
		return nil
	}
	if err := parseLine(first); err != nil {
		return nil, err
	}
	for {
		line, ok := lr.next()
		if !ok {
			break
		}
		if err := parseLine(line); err != nil {
			return nil, err
		}
	}

	flatSubs := make([]uint64, 0, len(allSubs)*n)
	for _, row := range allSubs {
		flatSubs = append(flatSubs, row...)
	}
	return sparse.NewCOOFromEntries(maxima, flatSubs, allVals)
}

// parseSptensorLine parses one "<subs...> <value>" line. dims is used for
// bounds checking in the headered path; nil in the headerless path (sizes
// are not known yet).
func parseSptensorLine(line string, n, base int, dims []uint64) ([]uint64, float64, error) {
	f := fields(line)
	if len(f) != n+1 {
		return nil, 0, errs.Wrapf("textio", errs.ErrMalformedInput, "sptensor: expected %d fields, got %d: %q", n+1, len(f), line)
	}
	row := make([]uint64, n)
	for d := 0; d < n; d++ {
		v, err := parseUint(f[d])
		if err != nil {
			return nil, 0, err
		}
		if base == 1 {
			if v == 0 {
				return nil, 0, errs.Wrapf("textio", errs.ErrMalformedInput, "sptensor: 1-based subscript cannot be 0: %q", line)
			}
			v--
		}
		if dims != nil && v >= dims[d] {
			return nil, 0, errs.Wrapf("textio", errs.ErrIndexOutOfRange, "sptensor: subscript %d on mode %d out of range [0,%d)", v, d, dims[d])
		}
		row[d] = v
	}
	val, err := parseFloat(f[n])
	if err != nil {
		return nil, 0, err
	}
	return row, val, nil
}

// WriteSparseTensor writes x in the headered §6 sptensor format to path.
func WriteSparseTensor(path string, gz bool, x sparse.Tensor) error {
	w, err := openWriter(path, gz)
	if err != nil {
		return err
	}
	defer w.Close()
	return writeSparseTensor(w, x)
}

func writeSparseTensor(w io.Writer, x sparse.Tensor) error {
	var sb strings.Builder
	sb.WriteString("sptensor\n")
	fmt.Fprintf(&sb, "%d\n", x.NDims())
	for d := 0; d < x.NDims(); d++ {
		if d > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", x.Size(d))
	}
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "%d\n", x.NNZ())
	for k := 0; k < x.NNZ(); k++ {
		for d := 0; d < x.NDims(); d++ {
			fmt.Fprintf(&sb, "%d ", x.Subscript(k, d))
		}
		sb.WriteString(FormatReal(x.Value(k)))
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return errs.Wrap("textio", "writing sptensor", err)
	}
	return nil
}
