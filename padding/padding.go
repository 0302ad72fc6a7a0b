// Package padding implements the traffic-shaping layer's packet-size
// normalization, inter-packet timing obfuscation, and burst detection.
package padding

import (
	"crypto/rand"

	"github.com/nyxmesh/nyx-core/internal/defaults"
	"github.com/nyxmesh/nyx-core/nyxerrors"
)

// Padder pads outbound payloads to a fixed target size.
type Padder struct {
	targetSize int
}

// NewPadder constructs a padder with the given target size (<=0 uses
// defaults.TargetPacketSize).
func NewPadder(targetSize int) *Padder {
	if targetSize <= 0 {
		targetSize = defaults.TargetPacketSize
	}
	return &Padder{targetSize: targetSize}
}

// TargetSize reports the configured padded output size.
func (p *Padder) TargetSize() int {
	return p.targetSize
}

// Pad returns a new targetSize-byte slice holding payload followed by
// cryptographically random padding bytes. It errors if payload already
// exceeds the target size.
func (p *Padder) Pad(payload []byte) ([]byte, error) {
	if len(payload) > p.targetSize {
		return nil, nyxerrors.Wrap(nyxerrors.ComponentPadding, nyxerrors.CodeInvalidInput, nil)
	}
	out := make([]byte, p.targetSize)
	copy(out, payload)
	if _, err := rand.Read(out[len(payload):]); err != nil {
		return nil, nyxerrors.Wrap(nyxerrors.ComponentPadding, nyxerrors.CodeCryptoFailure, err)
	}
	return out, nil
}
