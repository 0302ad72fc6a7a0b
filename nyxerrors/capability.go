package nyxerrors

import "github.com/nyxmesh/nyx-core/internal/bin"

// closeCapabilityMismatch is the 16-bit CLOSE error code for an unsupported
// required capability (wire value 0x0007).
const closeCapabilityMismatch uint16 = 0x0007

// UnsupportedCapabilityError is fatal for a session: the peer requires a
// capability the local implementation does not support.
type UnsupportedCapabilityError struct {
	CapabilityID uint32
}

func (e *UnsupportedCapabilityError) Error() string {
	return Wrap(ComponentSession, CodeUnsupportedCapability, nil).Error()
}

// CloseFrame encodes the 6-byte CLOSE frame: error code 0x0007 (big-endian
// u16) followed by the capability id (big-endian u32).
func (e *UnsupportedCapabilityError) CloseFrame() []byte {
	out := make([]byte, 6)
	bin.PutU16BE(out[0:2], closeCapabilityMismatch)
	bin.PutU32BE(out[2:6], e.CapabilityID)
	return out
}

// NewUnsupportedCapability constructs the capability-mismatch error.
func NewUnsupportedCapability(capabilityID uint32) error {
	return &UnsupportedCapabilityError{CapabilityID: capabilityID}
}
