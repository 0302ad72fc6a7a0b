package transport

import (
	"bytes"
	"testing"

	"github.com/nyxmesh/nyx-core/nyxerrors"
)

func TestFrameMarshalParseRoundTrip(t *testing.T) {
	f := Frame{Path: 7, Seq: 42, Flags: FlagProbeAck, Data: []byte("payload")}
	wire := f.Marshal()

	if len(wire) != headerLen+len(f.Data) {
		t.Fatalf("len(wire) = %d, want %d", len(wire), headerLen+len(f.Data))
	}

	got, err := ParseFrame(wire)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if got.Path != f.Path || got.Seq != f.Seq || got.Flags != f.Flags {
		t.Fatalf("ParseFrame = %+v, want %+v", got, f)
	}
	if !bytes.Equal(got.Data, f.Data) {
		t.Fatalf("ParseFrame data = %q, want %q", got.Data, f.Data)
	}
}

func TestFrameMarshalEmptyPayload(t *testing.T) {
	f := Frame{Path: 1, Seq: 0, Flags: FlagProbe}
	wire := f.Marshal()
	if len(wire) != headerLen {
		t.Fatalf("len(wire) = %d, want %d", len(wire), headerLen)
	}
	got, err := ParseFrame(wire)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if len(got.Data) != 0 {
		t.Fatalf("got.Data = %v, want empty", got.Data)
	}
}

func TestParseFrameRejectsShortBuffer(t *testing.T) {
	_, err := ParseFrame(make([]byte, headerLen-1))
	if err == nil {
		t.Fatalf("expected error for short buffer")
	}
	code, ok := nyxerrors.CodeOf(err)
	if !ok || code != nyxerrors.CodeInvalidInput {
		t.Fatalf("CodeOf(err) = %v, %v, want %v, true", code, ok, nyxerrors.CodeInvalidInput)
	}
}
