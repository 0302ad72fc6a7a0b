package hybrid

import (
	"crypto/ecdh"
	"crypto/rand"

	circlkem "github.com/cloudflare/circl/kem"

	"github.com/nyxmesh/nyx-core/nyxerrors"
)

// KeyPair holds the initiator's handshake secret material: the ML-KEM-768
// decapsulation key and the X25519 private key. ClientFinalize reads it and
// does not clear it; Zero drops its private keys once the handshake is done.
type KeyPair struct {
	kemPrivate    circlkem.PrivateKey
	x25519Private *ecdh.PrivateKey
	publicKey     HybridPublicKey
}

// Zero drops the references to both private keys, so a later ClientFinalize
// with kp fails with CodeInvalidInput. The memory backing either key is not
// overwritten.
func (kp *KeyPair) Zero() {
	kp.kemPrivate = nil
	kp.x25519Private = nil
}

func fail(code nyxerrors.Code, err error) error {
	return nyxerrors.Wrap(nyxerrors.ComponentHandshake, code, err)
}

// ClientInit generates a fresh KEM keypair and a fresh X25519 secret and
// returns the wire-form public key (HybridPublicKeySize bytes).
func ClientInit() (*KeyPair, HybridPublicKey, error) {
	kemPub, kemPriv, err := kemGenerateKeyPair()
	if err != nil {
		return nil, HybridPublicKey{}, fail(nyxerrors.CodeCryptoFailure, err)
	}
	kemPubBytes, err := kemPublicKeyBytes(kemPub)
	if err != nil {
		return nil, HybridPublicKey{}, fail(nyxerrors.CodeCryptoFailure, err)
	}

	xPriv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, HybridPublicKey{}, fail(nyxerrors.CodeCryptoFailure, err)
	}

	pk := HybridPublicKey{KEMPublicKey: kemPubBytes}
	copy(pk.X25519PublicKey[:], xPriv.PublicKey().Bytes())

	return &KeyPair{kemPrivate: kemPriv, x25519Private: xPriv, publicKey: pk}, pk, nil
}

// ServerRespond validates the client's public key, performs KEM
// encapsulation with fresh randomness, generates an ephemeral X25519 secret,
// computes ECDH against the client's X25519 half, and derives the shared
// secret. It returns the wire ciphertext (HybridCiphertextSize bytes) and the
// derived secret.
func ServerRespond(clientPK HybridPublicKey) (HybridCiphertext, SharedSecret, error) {
	if len(clientPK.KEMPublicKey) != KEMPublicKeySize {
		return HybridCiphertext{}, SharedSecret{}, fail(nyxerrors.CodeValidation, ErrInvalidLength)
	}
	if isTrivial(clientPK.KEMPublicKey) || isTrivial(clientPK.X25519PublicKey[:]) {
		return HybridCiphertext{}, SharedSecret{}, fail(nyxerrors.CodeValidation, ErrTrivialKey)
	}
	kemPub, err := kemUnmarshalPublicKey(clientPK.KEMPublicKey)
	if err != nil {
		return HybridCiphertext{}, SharedSecret{}, fail(nyxerrors.CodeValidation, err)
	}

	kemCiphertext, kemSS, err := kemEncapsulate(kemPub)
	if err != nil {
		return HybridCiphertext{}, SharedSecret{}, fail(nyxerrors.CodeCryptoFailure, err)
	}

	ephemeralPriv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return HybridCiphertext{}, SharedSecret{}, fail(nyxerrors.CodeCryptoFailure, err)
	}
	clientXPub, err := ecdh.X25519().NewPublicKey(clientPK.X25519PublicKey[:])
	if err != nil {
		return HybridCiphertext{}, SharedSecret{}, fail(nyxerrors.CodeValidation, err)
	}
	ecdhSS, err := ephemeralPriv.ECDH(clientXPub)
	if err != nil {
		return HybridCiphertext{}, SharedSecret{}, fail(nyxerrors.CodeCryptoFailure, err)
	}

	ct := HybridCiphertext{KEMCiphertext: kemCiphertext}
	copy(ct.EphemeralX25519Public[:], ephemeralPriv.PublicKey().Bytes())

	secret, err := deriveSharedSecret(kemSS, ecdhSS, clientPK, ct.EphemeralX25519Public)
	if err != nil {
		return HybridCiphertext{}, SharedSecret{}, fail(nyxerrors.CodeCryptoFailure, err)
	}
	return ct, secret, nil
}

// ClientFinalize validates the responder's ciphertext, performs KEM
// decapsulation with the client's secret key, computes ECDH against the
// responder's ephemeral public key, and derives the same shared secret
// ServerRespond produced.
func ClientFinalize(kp *KeyPair, ct HybridCiphertext) (SharedSecret, error) {
	if kp == nil || kp.kemPrivate == nil || kp.x25519Private == nil {
		return SharedSecret{}, fail(nyxerrors.CodeInvalidInput, nil)
	}
	if len(ct.KEMCiphertext) != KEMCiphertextSize {
		return SharedSecret{}, fail(nyxerrors.CodeValidation, ErrInvalidLength)
	}
	if isTrivial(ct.KEMCiphertext) || isTrivial(ct.EphemeralX25519Public[:]) {
		return SharedSecret{}, fail(nyxerrors.CodeValidation, ErrTrivialKey)
	}

	kemSS, err := kemDecapsulate(kp.kemPrivate, ct.KEMCiphertext)
	if err != nil {
		return SharedSecret{}, fail(nyxerrors.CodeCryptoFailure, err)
	}

	responderPub, err := ecdh.X25519().NewPublicKey(ct.EphemeralX25519Public[:])
	if err != nil {
		return SharedSecret{}, fail(nyxerrors.CodeValidation, err)
	}
	ecdhSS, err := kp.x25519Private.ECDH(responderPub)
	if err != nil {
		return SharedSecret{}, fail(nyxerrors.CodeCryptoFailure, err)
	}

	return deriveSharedSecret(kemSS, ecdhSS, kp.publicKey, ct.EphemeralX25519Public)
}
