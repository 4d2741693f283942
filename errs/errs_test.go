package errs

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrap("mttkrp", "output factor rows must equal size[n]", ErrShapeMismatch)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected errors.Is to match ErrShapeMismatch, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "*** mttkrp: ") {
		t.Fatalf("expected *** component prefix, got %q", err.Error())
	}
}

func TestWrapfPreservesSentinel(t *testing.T) {
	err := Wrapf("sparse", ErrIndexOutOfRange, "subscript %d >= size %d at mode %d", 5, 3, 1)
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected errors.Is to match ErrIndexOutOfRange, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "*** sparse: subscript 5 >= size 3 at mode 1") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
