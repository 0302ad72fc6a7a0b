package session

import (
	"testing"

	"github.com/nyxmesh/nyx-core/nyxerrors"
)

// handshake drives a full client/server handshake and returns the two
// Established sessions.
func handshake(t *testing.T, clientCaps, serverCaps CapabilitySet) (*Session, *Session) {
	t.Helper()
	client := NewClientSession(1, clientCaps, nil)
	server := NewServerSession(2, serverCaps, nil)

	clientHello, err := client.InitiateHandshake()
	if err != nil {
		t.Fatalf("InitiateHandshake: %v", err)
	}
	serverReply, err := server.ProcessPeerHello(clientHello, clientCaps, nil)
	if err != nil {
		t.Fatalf("ProcessPeerHello: %v", err)
	}
	if err := server.ConfirmServerHandshake(); err != nil {
		t.Fatalf("ConfirmServerHandshake: %v", err)
	}
	if err := client.FinalizeHandshake(serverReply); err != nil {
		t.Fatalf("FinalizeHandshake: %v", err)
	}
	return client, server
}

func TestHandshakeReachesEstablished(t *testing.T) {
	client, server := handshake(t, NewCapabilitySet(1), NewCapabilitySet(1))
	if client.Status().State != Established {
		t.Fatalf("client state = %v, want Established", client.Status().State)
	}
	if server.Status().State != Established {
		t.Fatalf("server state = %v, want Established", server.Status().State)
	}
}

// TestEstablishedImpliesTrafficKeys checks the invariant that traffic keys
// exist if and only if a session is Established: before the handshake
// completes, encryption must be refused.
func TestEstablishedImpliesTrafficKeys(t *testing.T) {
	client := NewClientSession(1, NewCapabilitySet(1), nil)
	if _, err := client.EncryptApplication([]byte("too early")); err == nil {
		t.Fatal("expected EncryptApplication to fail before Established")
	}
	if _, err := client.InitiateHandshake(); err != nil {
		t.Fatalf("InitiateHandshake: %v", err)
	}
	if _, err := client.EncryptApplication([]byte("still handshaking")); err == nil {
		t.Fatal("expected EncryptApplication to fail mid-handshake")
	}
}

func TestApplicationRoundTrip(t *testing.T) {
	client, server := handshake(t, NewCapabilitySet(1), NewCapabilitySet(1))

	frame, err := client.EncryptApplication([]byte("ping"))
	if err != nil {
		t.Fatalf("EncryptApplication: %v", err)
	}
	plain, err := server.DecryptApplication(frame)
	if err != nil {
		t.Fatalf("DecryptApplication: %v", err)
	}
	if string(plain) != "ping" {
		t.Fatalf("plaintext = %q, want %q", plain, "ping")
	}

	reply, err := server.EncryptApplication([]byte("pong"))
	if err != nil {
		t.Fatalf("EncryptApplication: %v", err)
	}
	plain, err = client.DecryptApplication(reply)
	if err != nil {
		t.Fatalf("DecryptApplication: %v", err)
	}
	if string(plain) != "pong" {
		t.Fatalf("plaintext = %q, want %q", plain, "pong")
	}
}

func TestHandshakeFailsOnUnsupportedRequiredCapability(t *testing.T) {
	client := NewClientSession(1, NewCapabilitySet(1), nil)
	server := NewServerSession(2, NewCapabilitySet(2), nil)

	clientHello, err := client.InitiateHandshake()
	if err != nil {
		t.Fatalf("InitiateHandshake: %v", err)
	}
	_, err = server.ProcessPeerHello(clientHello, NewCapabilitySet(1, 99), nil)
	if err == nil {
		t.Fatal("expected ProcessPeerHello to fail on an unmet required capability")
	}
	code, ok := nyxerrors.CodeOf(err)
	if !ok || code != nyxerrors.CodeUnsupportedCapability {
		t.Fatalf("code = %v (ok=%v), want CodeUnsupportedCapability", code, ok)
	}
	if server.Status().State != Failed {
		t.Fatalf("server state = %v, want Failed", server.Status().State)
	}
}

func TestDuplicateRecordRejectedByReplayWindow(t *testing.T) {
	client, server := handshake(t, NewCapabilitySet(1), NewCapabilitySet(1))

	frame, err := client.EncryptApplication([]byte("once"))
	if err != nil {
		t.Fatalf("EncryptApplication: %v", err)
	}
	if _, err := server.DecryptApplication(frame); err != nil {
		t.Fatalf("first DecryptApplication: %v", err)
	}
	if _, err := server.DecryptApplication(frame); err == nil {
		t.Fatal("expected the replayed frame to be rejected")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	client, _ := handshake(t, NewCapabilitySet(1), NewCapabilitySet(1))
	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if client.Status().State != Closed {
		t.Fatalf("state = %v, want Closed", client.Status().State)
	}
}

func TestStatusReportsActivity(t *testing.T) {
	client, server := handshake(t, NewCapabilitySet(1), NewCapabilitySet(1))
	frame, err := client.EncryptApplication([]byte("hi"))
	if err != nil {
		t.Fatalf("EncryptApplication: %v", err)
	}
	if _, err := server.DecryptApplication(frame); err != nil {
		t.Fatalf("DecryptApplication: %v", err)
	}
	if got := client.Status().FramesTx; got != 1 {
		t.Errorf("client FramesTx = %d, want 1", got)
	}
	if got := server.Status().FramesRx; got != 1 {
		t.Errorf("server FramesRx = %d, want 1", got)
	}
	if got := server.Status().BytesRx; got != 2 {
		t.Errorf("server BytesRx = %d, want 2", got)
	}
}
