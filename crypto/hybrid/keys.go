package hybrid

import (
	"bytes"
	"errors"

	circlkem "github.com/cloudflare/circl/kem"
)

var (
	// ErrInvalidLength indicates a wire blob was not the expected size.
	ErrInvalidLength = errors.New("hybrid: invalid length")
	// ErrTrivialKey indicates a key or ciphertext half was all-zeros or
	// all-ones, which can never be a genuine KEM or ECDH output.
	ErrTrivialKey = errors.New("hybrid: trivial key material")
)

// HybridPublicKey is the wire form of the initiator's handshake key: an
// ML-KEM-768 public key concatenated with an X25519 public key.
type HybridPublicKey struct {
	KEMPublicKey    []byte // KEMPublicKeySize bytes
	X25519PublicKey [32]byte
}

// Bytes encodes the key to its fixed HybridPublicKeySize wire form.
func (k HybridPublicKey) Bytes() []byte {
	out := make([]byte, 0, HybridPublicKeySize)
	out = append(out, k.KEMPublicKey...)
	out = append(out, k.X25519PublicKey[:]...)
	return out
}

// ParseHybridPublicKey decodes and validates a wire blob.
func ParseHybridPublicKey(raw []byte) (HybridPublicKey, error) {
	if len(raw) != HybridPublicKeySize {
		return HybridPublicKey{}, ErrInvalidLength
	}
	kemPart := raw[:KEMPublicKeySize]
	x25519Part := raw[KEMPublicKeySize:]
	if isTrivial(kemPart) || isTrivial(x25519Part) {
		return HybridPublicKey{}, ErrTrivialKey
	}
	var k HybridPublicKey
	k.KEMPublicKey = append([]byte(nil), kemPart...)
	copy(k.X25519PublicKey[:], x25519Part)
	return k, nil
}

// HybridCiphertext is the wire form of the responder's handshake reply: an
// ML-KEM-768 ciphertext concatenated with the responder's ephemeral X25519
// public key.
type HybridCiphertext struct {
	KEMCiphertext         []byte // KEMCiphertextSize bytes
	EphemeralX25519Public [32]byte
}

// Bytes encodes the ciphertext to its fixed HybridCiphertextSize wire form.
func (c HybridCiphertext) Bytes() []byte {
	out := make([]byte, 0, HybridCiphertextSize)
	out = append(out, c.KEMCiphertext...)
	out = append(out, c.EphemeralX25519Public[:]...)
	return out
}

// ParseHybridCiphertext decodes and validates a wire blob.
func ParseHybridCiphertext(raw []byte) (HybridCiphertext, error) {
	if len(raw) != HybridCiphertextSize {
		return HybridCiphertext{}, ErrInvalidLength
	}
	kemPart := raw[:KEMCiphertextSize]
	x25519Part := raw[KEMCiphertextSize:]
	if isTrivial(kemPart) || isTrivial(x25519Part) {
		return HybridCiphertext{}, ErrTrivialKey
	}
	var c HybridCiphertext
	c.KEMCiphertext = append([]byte(nil), kemPart...)
	copy(c.EphemeralX25519Public[:], x25519Part)
	return c, nil
}

// isTrivial reports whether b is a soundness-failing all-zero or all-ones
// buffer. This is a guard against degenerate wire input, not a subgroup
// membership check.
func isTrivial(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	allZero := bytes.Equal(b, make([]byte, len(b)))
	allOnes := true
	for _, v := range b {
		if v != 0xff {
			allOnes = false
			break
		}
	}
	return allZero || allOnes
}

// kemPublicKeyBytes marshals a circl KEM public key to its binary form.
func kemPublicKeyBytes(pk circlkem.PublicKey) ([]byte, error) {
	return pk.MarshalBinary()
}
