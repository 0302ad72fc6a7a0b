package transport

import (
	"context"
	"testing"
	"time"
)

func TestWSPathTransportSendReceiveRoundTrip(t *testing.T) {
	url, serverCh := startPathConnServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	clientPC, err := DialPath(ctx, url, DialOptions{})
	if err != nil {
		t.Fatalf("DialPath: %v", err)
	}

	var serverPC *PathConn
	select {
	case serverPC = <-serverCh:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for server PathConn")
	}

	client := NewWSPathTransport()
	server := NewWSPathTransport()
	defer client.Close()
	defer server.Close()

	const path PathID = 3
	if err := client.AddPath(path, clientPC); err != nil {
		t.Fatalf("client.AddPath: %v", err)
	}
	if err := server.AddPath(path, serverPC); err != nil {
		t.Fatalf("server.AddPath: %v", err)
	}

	payload := []byte("multipath payload")
	if err := client.Send(context.Background(), path, payload); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case got := <-server.Receive():
		if got.Path != path {
			t.Fatalf("got.Path = %d, want %d", got.Path, path)
		}
		if string(got.Data) != string(payload) {
			t.Fatalf("got.Data = %q, want %q", got.Data, payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for inbound frame")
	}
}

func TestWSPathTransportSendUnknownPathErrors(t *testing.T) {
	tr := NewWSPathTransport()
	defer tr.Close()

	err := tr.Send(context.Background(), PathID(99), []byte("x"))
	if err == nil {
		t.Fatalf("expected error sending on an unregistered path")
	}
}

func TestWSPathTransportCloseClosesReceiveChannel(t *testing.T) {
	tr := NewWSPathTransport()
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	_, ok := <-tr.Receive()
	if ok {
		t.Fatalf("expected Receive channel to be closed")
	}
}

func TestWSPathTransportAddPathTwiceErrors(t *testing.T) {
	url, serverCh := startPathConnServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	clientPC, err := DialPath(ctx, url, DialOptions{})
	if err != nil {
		t.Fatalf("DialPath: %v", err)
	}
	<-serverCh

	tr := NewWSPathTransport()
	defer tr.Close()
	if err := tr.AddPath(1, clientPC); err != nil {
		t.Fatalf("first AddPath: %v", err)
	}
	if err := tr.AddPath(1, clientPC); err == nil {
		t.Fatalf("expected error on duplicate AddPath")
	}
}
