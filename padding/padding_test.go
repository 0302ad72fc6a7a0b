package padding

import (
	"bytes"
	"testing"

	"github.com/nyxmesh/nyx-core/nyxerrors"
)

func TestPadProducesTargetSizeWithInputPrefix(t *testing.T) {
	p := NewPadder(1280)
	payload := bytes.Repeat([]byte{0x42}, 13)

	out, err := p.Pad(payload)
	if err != nil {
		t.Fatalf("Pad: %v", err)
	}
	if len(out) != 1280 {
		t.Fatalf("len(out) = %d, want 1280", len(out))
	}
	if !bytes.Equal(out[:13], payload) {
		t.Fatalf("out[:13] = %x, want the original payload", out[:13])
	}
}

func TestPadRejectsOversizeInput(t *testing.T) {
	p := NewPadder(100)
	_, err := p.Pad(make([]byte, 101))
	code, ok := nyxerrors.CodeOf(err)
	if !ok || code != nyxerrors.CodeInvalidInput {
		t.Fatalf("code = %v (ok=%v), want CodeInvalidInput", code, ok)
	}
}

func TestPadExactSizeInputNoPaddingBytes(t *testing.T) {
	p := NewPadder(16)
	payload := bytes.Repeat([]byte{0x01}, 16)
	out, err := p.Pad(payload)
	if err != nil {
		t.Fatalf("Pad: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("out = %x, want exactly the payload with no padding appended", out)
	}
}

func TestPadFillsWithVaryingRandomBytes(t *testing.T) {
	p := NewPadder(64)
	out1, _ := p.Pad(nil)
	out2, _ := p.Pad(nil)
	if bytes.Equal(out1, out2) {
		t.Fatal("two independent pads produced identical padding; expected cryptographically random bytes")
	}
}

func TestNewPadderDefaultsToTargetPacketSize(t *testing.T) {
	p := NewPadder(0)
	if p.TargetSize() != 1280 {
		t.Fatalf("TargetSize() = %d, want the 1280-byte default", p.TargetSize())
	}
}
