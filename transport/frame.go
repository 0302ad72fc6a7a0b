package transport

import (
	"encoding/binary"

	"github.com/nyxmesh/nyx-core/nyxerrors"
)

// FrameFlag marks auxiliary wire-level behavior on a multipath frame, kept
// separate from session.RecordFlag: these bits govern delivery across the
// path set, not the record payload they wrap.
type FrameFlag uint8

const (
	// FlagNone marks an ordinary data frame.
	FlagNone FrameFlag = 0
	// FlagProbe marks a path-quality probe frame carrying no payload of
	// interest to the session layer.
	FlagProbe FrameFlag = 1 << 0
	// FlagProbeAck acknowledges a FlagProbe frame, carrying the echoed
	// probe's sequence number as its payload.
	FlagProbeAck FrameFlag = 1 << 1
)

// headerLen is pathID(4) + seq(8) + flags(1), matching
// wsutil.multipathFrameOverheadBytes.
const headerLen = 4 + 8 + 1

// Frame is the fixed header every wire message carries ahead of its
// session-layer payload, letting a receiver demultiplex inbound bytes
// across paths and detect reordering/loss per path before records are
// ever decrypted.
type Frame struct {
	Path  PathID
	Seq   uint64
	Flags FrameFlag
	Data  []byte
}

// Marshal encodes f as header || Data into a single buffer.
func (f Frame) Marshal() []byte {
	buf := make([]byte, headerLen+len(f.Data))
	binary.BigEndian.PutUint32(buf[0:4], uint32(f.Path))
	binary.BigEndian.PutUint64(buf[4:12], f.Seq)
	buf[12] = byte(f.Flags)
	copy(buf[headerLen:], f.Data)
	return buf
}

// ParseFrame decodes a wire message produced by Marshal. The returned
// Frame's Data aliases b; callers that retain it past the lifetime of b's
// backing array must copy.
func ParseFrame(b []byte) (Frame, error) {
	if len(b) < headerLen {
		return Frame{}, nyxerrors.Wrap(nyxerrors.ComponentTransport, nyxerrors.CodeInvalidInput, nil)
	}
	return Frame{
		Path:  PathID(binary.BigEndian.Uint32(b[0:4])),
		Seq:   binary.BigEndian.Uint64(b[4:12]),
		Flags: FrameFlag(b[12]),
		Data:  b[headerLen:],
	}, nil
}
