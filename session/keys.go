package session

import (
	"crypto/hmac"
	"crypto/sha256"

	"github.com/nyxmesh/nyx-core/crypto/hybrid"
	"github.com/nyxmesh/nyx-core/internal/hkdf"
	"github.com/nyxmesh/nyx-core/internal/zeroize"
)

func hmacSHA256(key, msg []byte) [32]byte {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write(msg)
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// Direction labels the key/nonce-prefix derivation and the rekey-base
// derivation, matching the wire's C2S/S2C split.
type Direction uint8

const (
	DirC2S Direction = 1
	DirS2C Direction = 2
)

// trafficKeys holds the derived bidirectional AEAD keys, nonce prefixes, and
// rekey base secret for one session.
type trafficKeys struct {
	c2sKey    [32]byte
	s2cKey    [32]byte
	c2sNonce  [4]byte
	s2cNonce  [4]byte
	rekeyBase [32]byte
}

// deriveTrafficKeys expands the hybrid handshake's shared secret into the
// directional keys, nonce prefixes, and rekey base. Domain-separated via
// HKDF-SHA256 info labels, the same shape the hybrid handshake itself uses
// for its own single-secret derivation.
func deriveTrafficKeys(secret hybrid.SharedSecret) (trafficKeys, error) {
	var zeroSalt [32]byte
	prk := hkdf.ExtractSHA256(zeroSalt[:], secret[:])
	defer zeroize.Array32(&prk)

	var out trafficKeys
	var err error
	if err = expandInto(prk, "nyx-session-v1:c2s:key", out.c2sKey[:]); err != nil {
		return trafficKeys{}, err
	}
	if err = expandInto(prk, "nyx-session-v1:s2c:key", out.s2cKey[:]); err != nil {
		return trafficKeys{}, err
	}
	if err = expandInto(prk, "nyx-session-v1:c2s:nonce_prefix", out.c2sNonce[:]); err != nil {
		return trafficKeys{}, err
	}
	if err = expandInto(prk, "nyx-session-v1:s2c:nonce_prefix", out.s2cNonce[:]); err != nil {
		return trafficKeys{}, err
	}
	if err = expandInto(prk, "nyx-session-v1:rekey_base", out.rekeyBase[:]); err != nil {
		return trafficKeys{}, err
	}
	return out, nil
}

func expandInto(prk [32]byte, label string, dst []byte) error {
	okm, err := hkdf.ExpandSHA256(prk, []byte(label), len(dst))
	if err != nil {
		return err
	}
	copy(dst, okm)
	zeroize.Bytes(okm)
	return nil
}

// transcriptHash binds the rekey derivation to this session's handshake
// transcript so that keys from two different sessions never collide.
func transcriptHash(clientPKBytes, ciphertextBytes []byte) [32]byte {
	h := sha256.New()
	_, _ = h.Write(clientPKBytes)
	_, _ = h.Write(ciphertextBytes)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// zero scrubs every derived secret.
func (k *trafficKeys) zero() {
	zeroize.Array32(&k.c2sKey)
	zeroize.Array32(&k.s2cKey)
	zeroize.Array32(&k.rekeyBase)
}

// deriveRekeyKey derives a fresh directional key for one rekey step. Rekey
// passes its epoch counter as seq, so every rekey yields new keys.
func deriveRekeyKey(rekeyBase [32]byte, transcript [32]byte, seq uint64, dir Direction) ([32]byte, error) {
	msg := make([]byte, 0, 32+8+1)
	msg = append(msg, transcript[:]...)
	var seqBuf [8]byte
	for i := 0; i < 8; i++ {
		seqBuf[i] = byte(seq >> (56 - 8*i))
	}
	msg = append(msg, seqBuf[:]...)
	msg = append(msg, byte(dir))

	salt := hmacSHA256(rekeyBase[:], msg)
	prk := hkdf.ExtractSHA256(salt[:], []byte("nyx-session-v1:rekey"))
	okm, err := hkdf.ExpandSHA256(prk, []byte("nyx-session-v1:rekey:key"), 32)
	if err != nil {
		return [32]byte{}, err
	}
	var out [32]byte
	copy(out[:], okm)
	zeroize.Bytes(okm)
	return out, nil
}
