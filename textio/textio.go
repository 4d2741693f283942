// Package textio implements the §6 "External interfaces" text file
// formats for sparse tensors, dense factor matrices, and K-tensors,
// including the gzip-compressed variant.
//
// spec.md lists these as "deliberately out of scope... only interfaces
// described", but the format grammar is fully specified and the I/O
// round-trip properties (§8 invariant 6, Scenario F) require a working
// reader/writer pair to test against, so this package is a real
// implementation rather than a stub. Grounded on the corpus's general
// line-oriented-parser shape (bufio.Scanner with a shared "skip blank and
// // comment lines" helper), the same convention the teacher's CLI-facing
// code uses for reading weighted edge lists.
package textio

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/spartensor/errs"
)

// lineReader wraps a bufio.Scanner with the three shared parsing rules
// every §6 text format obeys: blank lines and "//"-comment lines are
// skipped everywhere, and a trailing '\r' is stripped from every line
// (tolerating CRLF input on any platform).
type lineReader struct {
	scanner *bufio.Scanner
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{scanner: bufio.NewScanner(r)}
}

// next returns the next non-blank, non-comment line, or ("", false) at
// EOF.
func (lr *lineReader) next() (string, bool) {
	for lr.scanner.Scan() {
		line := strings.TrimSuffix(lr.scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		return trimmed, true
	}
	return "", false
}

// openReader opens path, wrapping it in a gzip.Reader when gz is true
// (§6 "Compressed variant").
func openReader(path string, gz bool) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrapf("textio", errs.ErrIOFailure, "open %q: %v", path, err)
	}
	if !gz {
		return f, nil
	}
	gzr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errs.Wrapf("textio", errs.ErrIOFailure, "gzip %q: %v", path, err)
	}
	return &gzipReadCloser{gzr: gzr, f: f}, nil
}

type gzipReadCloser struct {
	gzr *gzip.Reader
	f   *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gzr.Read(p) }
func (g *gzipReadCloser) Close() error {
	err := g.gzr.Close()
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// openWriter opens path for writing, wrapping it in a gzip.Writer when gz
// is true. The returned io.WriteCloser's Close flushes and closes both
// layers.
func openWriter(path string, gz bool) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errs.Wrapf("textio", errs.ErrIOFailure, "create %q: %v", path, err)
	}
	if !gz {
		return f, nil
	}
	return &gzipWriteCloser{gzw: gzip.NewWriter(f), f: f}, nil
}

type gzipWriteCloser struct {
	gzw *gzip.Writer
	f   *os.File
}

func (g *gzipWriteCloser) Write(p []byte) (int, error) { return g.gzw.Write(p) }
func (g *gzipWriteCloser) Close() error {
	err := g.gzw.Close()
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	return err
}

func fields(line string) []string { return strings.Fields(line) }

func parseUint(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errs.Wrapf("textio", errs.ErrMalformedInput, "expected non-negative integer, got %q", s)
	}
	return v, nil
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.Wrapf("textio", errs.ErrMalformedInput, "expected integer, got %q", s)
	}
	return v, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errs.Wrapf("textio", errs.ErrMalformedInput, "expected real number, got %q", s)
	}
	return v, nil
}

// FormatReal renders a float64 using §6's default numeric output
// convention (scientific notation, 15 digits of precision).
func FormatReal(v float64) string {
	return strconv.FormatFloat(v, 'e', 15, 64)
}
