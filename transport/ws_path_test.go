package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// startPathConnServer starts a test server whose upgrade handler promotes
// each inbound websocket to a PathConn and delivers it on the returned
// channel.
func startPathConnServer(t *testing.T) (url string, serverConn <-chan *PathConn) {
	t.Helper()
	ch := make(chan *PathConn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pc, err := AcceptPath(w, r, UpgradeOptions{CheckOrigin: func(*http.Request) bool { return true }})
		if err != nil {
			t.Errorf("AcceptPath: %v", err)
			return
		}
		ch <- pc
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), ch
}

func TestDialAndAcceptPathEstablishControlAndDataStreams(t *testing.T) {
	url, serverCh := startPathConnServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := DialPath(ctx, url, DialOptions{})
	if err != nil {
		t.Fatalf("DialPath: %v", err)
	}
	defer client.Close()

	var server *PathConn
	select {
	case server = <-serverCh:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for server PathConn")
	}
	defer server.Close()

	const msg = "control-hello"
	go func() {
		_, _ = client.Control().Write([]byte(msg))
	}()
	buf := make([]byte, len(msg))
	if err := server.Control().SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	n, err := io.ReadFull(server.Control(), buf)
	if err != nil {
		t.Fatalf("read control stream: %v", err)
	}
	if string(buf[:n]) != msg {
		t.Fatalf("control stream got %q, want %q", buf[:n], msg)
	}

	const dataMsg = "data-hello"
	go func() {
		_, _ = client.Data().Write([]byte(dataMsg))
	}()
	dbuf := make([]byte, len(dataMsg))
	if err := server.Data().SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	n, err = io.ReadFull(server.Data(), dbuf)
	if err != nil {
		t.Fatalf("read data stream: %v", err)
	}
	if string(dbuf[:n]) != dataMsg {
		t.Fatalf("data stream got %q, want %q", dbuf[:n], dataMsg)
	}
}

func TestDialPathFailsOnUnreachableServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := DialPath(ctx, "ws://127.0.0.1:1", DialOptions{})
	if err == nil {
		t.Fatalf("expected error dialing an unreachable server")
	}
}
