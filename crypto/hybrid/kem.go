package hybrid

import (
	circlkem "github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
)

// scheme is resolved once; mlkem768.Scheme() returns the generic circl KEM
// interface rather than the concrete package, so the rest of this package
// never references mlkem768 types directly.
var scheme circlkem.Scheme = mlkem768.Scheme()

func init() {
	if scheme.PublicKeySize() != KEMPublicKeySize {
		panic("hybrid: unexpected ML-KEM-768 public key size")
	}
	if scheme.CiphertextSize() != KEMCiphertextSize {
		panic("hybrid: unexpected ML-KEM-768 ciphertext size")
	}
	if scheme.SharedKeySize() != SharedSecretSize {
		panic("hybrid: unexpected ML-KEM-768 shared key size")
	}
}

func kemGenerateKeyPair() (circlkem.PublicKey, circlkem.PrivateKey, error) {
	return scheme.GenerateKeyPair()
}

func kemUnmarshalPublicKey(raw []byte) (circlkem.PublicKey, error) {
	return scheme.UnmarshalBinaryPublicKey(raw)
}

func kemEncapsulate(pk circlkem.PublicKey) (ciphertext, sharedSecret []byte, err error) {
	return scheme.Encapsulate(pk)
}

func kemDecapsulate(sk circlkem.PrivateKey, ciphertext []byte) ([]byte, error) {
	return scheme.Decapsulate(sk, ciphertext)
}
