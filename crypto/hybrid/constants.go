// Package hybrid implements the hybrid post-quantum + classical handshake
// that derives a Nyx session's initial shared secret from a single wire
// exchange: an ML-KEM-768 encapsulation combined with an X25519 ECDH.
package hybrid

const (
	// KEMPublicKeySize is the ML-KEM-768 encapsulation (public) key size.
	KEMPublicKeySize = 1184
	// KEMCiphertextSize is the ML-KEM-768 ciphertext size.
	KEMCiphertextSize = 1088
	// X25519PublicKeySize is the Curve25519 public key size.
	X25519PublicKeySize = 32
	// SharedSecretSize is the size of the derived session secret.
	SharedSecretSize = 32

	// HybridPublicKeySize is the wire size of a HybridPublicKey: the KEM
	// public key concatenated with the initiator's X25519 public key.
	HybridPublicKeySize = KEMPublicKeySize + X25519PublicKeySize

	// HybridCiphertextSize is the wire size of a HybridCiphertext: the KEM
	// ciphertext concatenated with the responder's ephemeral X25519 public
	// key.
	HybridCiphertextSize = KEMCiphertextSize + X25519PublicKeySize
)

// kdfInfoLabel identifies the protocol and version bound into every derived
// shared secret. Both sides must use the identical label or the KDF outputs
// diverge.
const kdfInfoLabel = "nyx-hybrid-handshake-v1"
