package wsutil

import "math"

const (
	// defaultHandshakeBlobBytes covers the larger of the two handshake
	// wire blobs (the 1216 B ClientHello key blob; the 1120 B ServerHello
	// ciphertext blob is smaller).
	defaultHandshakeBlobBytes = 1216
	// defaultMaxRecordBytes mirrors session.DefaultMaxRecordBytes without
	// importing the session package, to keep this a leaf utility.
	defaultMaxRecordBytes = 64 * 1024

	// multipathFrameOverheadBytes is the fixed header a path transport
	// frame adds ahead of a session record: pathID(4) + seq(8) + flags(1).
	multipathFrameOverheadBytes = 4 + 8 + 1
)

// ReadLimit returns a conservative per-message websocket read limit (in
// bytes) that accommodates both handshake blobs and encrypted record
// frames, plus the multipath framing wrapped around them.
//
// Callers pass the configured handshakeBlobBytes/maxRecordBytes (a
// zero/negative value means "use defaults").
func ReadLimit(handshakeBlobBytes, maxRecordBytes int) int64 {
	hb := int64(handshakeBlobBytes)
	if hb <= 0 {
		hb = defaultHandshakeBlobBytes
	}
	rb := int64(maxRecordBytes)
	if rb <= 0 {
		rb = defaultMaxRecordBytes
	}

	limit := rb
	if hb > limit {
		limit = hb
	}

	const overhead = int64(multipathFrameOverheadBytes)
	if limit > math.MaxInt64-overhead {
		return math.MaxInt64
	}
	return limit + overhead
}
