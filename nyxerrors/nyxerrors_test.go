package nyxerrors

import (
	"context"
	"errors"
	"testing"
)

func TestWrapAndCodeOf(t *testing.T) {
	err := Wrap(ComponentSession, CodeIdleTimeout, errors.New("boom"))
	code, ok := CodeOf(err)
	if !ok || code != CodeIdleTimeout {
		t.Fatalf("expected CodeIdleTimeout, got %q ok=%v", code, ok)
	}
	if errors.Unwrap(err).Error() != "boom" {
		t.Fatalf("expected unwrap to reach cause")
	}
}

func TestCapabilityCloseFrame(t *testing.T) {
	err := NewUnsupportedCapability(0x12345678)
	var uce *UnsupportedCapabilityError
	if !errors.As(err, &uce) {
		t.Fatalf("expected UnsupportedCapabilityError")
	}
	got := uce.CloseFrame()
	want := []byte{0x00, 0x07, 0x12, 0x34, 0x56, 0x78}
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d mismatch: got %x want %x", i, got[i], want[i])
		}
	}
}

func TestClassifyContext(t *testing.T) {
	if got := ClassifyContext(context.DeadlineExceeded, CodeInvalidInput); got != CodeTimeout {
		t.Fatalf("expected CodeTimeout, got %q", got)
	}
	if got := ClassifyContext(context.Canceled, CodeInvalidInput); got != CodeCanceled {
		t.Fatalf("expected CodeCanceled, got %q", got)
	}
	if got := ClassifyContext(errors.New("x"), CodeInvalidInput); got != CodeInvalidInput {
		t.Fatalf("expected fallback, got %q", got)
	}
}
