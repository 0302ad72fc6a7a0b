package hybrid

import (
	"crypto/sha256"

	"github.com/nyxmesh/nyx-core/internal/hkdf"
	"github.com/nyxmesh/nyx-core/internal/zeroize"
)

// SharedSecret is the 32-byte secret produced by the hybrid handshake.
type SharedSecret [SharedSecretSize]byte

// Zero scrubs the secret in place. Callers move, never copy, a SharedSecret
// across a task boundary, and zero it once the session's traffic keys have
// been derived from it.
func (s *SharedSecret) Zero() { zeroize.Array32((*[32]byte)(s)) }

// deriveSharedSecret computes the handshake shared secret from the KEM and
// ECDH shared secrets: HKDF-SHA256(salt, kemSS‖ecdhSS, kdfInfoLabel, 32).
//
// salt = SHA-256(initiatorHybridPublicKey ‖ responderEphemeralX25519Public)
func deriveSharedSecret(kemSS, ecdhSS []byte, initiatorPK HybridPublicKey, responderEphemeral [32]byte) (SharedSecret, error) {
	saltInput := make([]byte, 0, HybridPublicKeySize+X25519PublicKeySize)
	saltInput = append(saltInput, initiatorPK.Bytes()...)
	saltInput = append(saltInput, responderEphemeral[:]...)
	saltSum := sha256.Sum256(saltInput)

	ikm := make([]byte, 0, len(kemSS)+len(ecdhSS))
	ikm = append(ikm, kemSS...)
	ikm = append(ikm, ecdhSS...)
	defer zeroize.Bytes(ikm)

	prk := hkdf.ExtractSHA256(saltSum[:], ikm)
	defer zeroize.Array32(&prk)

	okm, err := hkdf.ExpandSHA256(prk, []byte(kdfInfoLabel), SharedSecretSize)
	if err != nil {
		return SharedSecret{}, err
	}
	var out SharedSecret
	copy(out[:], okm)
	zeroize.Bytes(okm)
	return out, nil
}
