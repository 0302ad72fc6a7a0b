package session

import (
	"bytes"
	"testing"

	"github.com/nyxmesh/nyx-core/crypto/hybrid"
)

func testSecret(b byte) hybrid.SharedSecret {
	var s hybrid.SharedSecret
	for i := range s {
		s[i] = b
	}
	return s
}

func TestDeriveTrafficKeysDeterministic(t *testing.T) {
	secret := testSecret(0x42)
	a, err := deriveTrafficKeys(secret)
	if err != nil {
		t.Fatalf("deriveTrafficKeys: %v", err)
	}
	b, err := deriveTrafficKeys(secret)
	if err != nil {
		t.Fatalf("deriveTrafficKeys: %v", err)
	}
	if a.c2sKey != b.c2sKey || a.s2cKey != b.s2cKey {
		t.Fatal("expected identical secrets to derive identical keys")
	}
	if a.c2sKey == a.s2cKey {
		t.Fatal("expected distinct c2s/s2c keys")
	}
	if a.c2sNonce == a.s2cNonce {
		t.Fatal("expected distinct c2s/s2c nonce prefixes")
	}
}

func TestDeriveTrafficKeysSecretSensitive(t *testing.T) {
	a, _ := deriveTrafficKeys(testSecret(1))
	b, _ := deriveTrafficKeys(testSecret(2))
	if a.c2sKey == b.c2sKey {
		t.Fatal("expected different secrets to derive different keys")
	}
}

func TestDeriveRekeyKeyVariesByEpochAndDirection(t *testing.T) {
	base := testSecret(7)
	var transcript [32]byte
	copy(transcript[:], bytes.Repeat([]byte{9}, 32))

	k1, err := deriveRekeyKey([32]byte(base), transcript, 1, DirC2S)
	if err != nil {
		t.Fatalf("deriveRekeyKey: %v", err)
	}
	k2, err := deriveRekeyKey([32]byte(base), transcript, 2, DirC2S)
	if err != nil {
		t.Fatalf("deriveRekeyKey: %v", err)
	}
	k3, err := deriveRekeyKey([32]byte(base), transcript, 1, DirS2C)
	if err != nil {
		t.Fatalf("deriveRekeyKey: %v", err)
	}
	if k1 == k2 {
		t.Fatal("expected different epochs to derive different rekey keys")
	}
	if k1 == k3 {
		t.Fatal("expected different directions to derive different rekey keys")
	}

	again, err := deriveRekeyKey([32]byte(base), transcript, 1, DirC2S)
	if err != nil {
		t.Fatalf("deriveRekeyKey: %v", err)
	}
	if k1 != again {
		t.Fatal("expected deriveRekeyKey to be deterministic for the same inputs")
	}
}
