package transport

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nyxmesh/nyx-core/internal/wsutil"
)

// wsConn is a context-aware wrapper around a gorilla/websocket connection.
// It is the only file in this module that imports gorilla/websocket
// directly; everything above PathTransport speaks in terms of Frame and
// InboundFrame.
type wsConn struct {
	c *websocket.Conn
}

// DialOptions carries the dial-side handshake configuration for a single
// websocket path.
type DialOptions struct {
	Header             http.Header
	Dialer             *websocket.Dialer
	HandshakeBlobBytes int
	MaxRecordBytes     int
}

// dialWS opens a websocket path and applies the wire read limit derived
// from the configured handshake/record sizes.
func dialWS(ctx context.Context, urlStr string, opts DialOptions) (*wsConn, error) {
	d := websocket.Dialer{}
	if opts.Dialer != nil {
		d = *opts.Dialer
	}
	if deadline, ok := ctx.Deadline(); ok {
		dl := time.Until(deadline)
		if d.HandshakeTimeout == 0 || d.HandshakeTimeout > dl {
			d.HandshakeTimeout = dl
		}
	}
	c, _, err := d.DialContext(ctx, urlStr, opts.Header)
	if err != nil {
		return nil, err
	}
	c.SetReadLimit(wsutil.ReadLimit(opts.HandshakeBlobBytes, opts.MaxRecordBytes))
	return &wsConn{c: c}, nil
}

// UpgradeOptions carries the accept-side upgrade configuration for a single
// websocket path.
type UpgradeOptions struct {
	ReadBufferSize     int
	WriteBufferSize    int
	CheckOrigin        func(r *http.Request) bool
	HandshakeBlobBytes int
	MaxRecordBytes     int
}

// upgradeWS accepts an inbound websocket path from an HTTP request.
func upgradeWS(w http.ResponseWriter, r *http.Request, opts UpgradeOptions) (*wsConn, error) {
	up := websocket.Upgrader{
		ReadBufferSize:  opts.ReadBufferSize,
		WriteBufferSize: opts.WriteBufferSize,
		CheckOrigin:     opts.CheckOrigin,
	}
	c, err := up.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	c.SetReadLimit(wsutil.ReadLimit(opts.HandshakeBlobBytes, opts.MaxRecordBytes))
	return &wsConn{c: c}, nil
}

func (c *wsConn) Close() error {
	return c.c.Close()
}

// underlyingNetConn exposes the raw net.Conn gorilla/websocket negotiated
// over, for yamux to multiplex on top of.
func (c *wsConn) underlyingNetConn() net.Conn {
	return c.c.UnderlyingConn()
}

// DialPath opens a new websocket path and promotes it to a PathConn,
// opening the control stream before the data stream.
func DialPath(ctx context.Context, urlStr string, opts DialOptions) (*PathConn, error) {
	ws, err := dialWS(ctx, urlStr, opts)
	if err != nil {
		return nil, err
	}
	pc, err := newClientPathConn(ws)
	if err != nil {
		_ = ws.Close()
		return nil, err
	}
	return pc, nil
}

// AcceptPath upgrades an inbound HTTP request to a websocket path and
// promotes it to a PathConn, accepting the control stream before the data
// stream.
func AcceptPath(w http.ResponseWriter, r *http.Request, opts UpgradeOptions) (*PathConn, error) {
	ws, err := upgradeWS(w, r, opts)
	if err != nil {
		return nil, err
	}
	pc, err := newServerPathConn(ws)
	if err != nil {
		_ = ws.Close()
		return nil, err
	}
	return pc, nil
}
