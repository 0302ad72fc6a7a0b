package transport

import (
	"net"

	"github.com/hashicorp/yamux"

	"github.com/nyxmesh/nyx-core/nyxerrors"
)

// PathConn is a single physical path's connection, split into a control
// stream (handshake/rekey/close/capability frames) and a data stream
// (padded application records) so the data stream never head-of-line-blocks
// the control stream on the same path. The split runs over the websocket
// connection's underlying net.Conn via hashicorp/yamux; the websocket
// message framing itself is not used once a path is promoted to PathConn.
type PathConn struct {
	ws      *wsConn
	session *yamux.Session
	control net.Conn
	data    net.Conn
}

// newYamuxConfig returns the yamux defaults, mirroring the teacher's
// fallback-to-DefaultConfig behavior.
func newYamuxConfig() *yamux.Config {
	return yamux.DefaultConfig()
}

// newClientPathConn promotes a dial-side websocket path to a PathConn by
// opening a yamux client session over its underlying connection, then
// opening the control stream first (so the peer's accept-side Accept()
// calls line up 1:1) followed by the data stream.
func newClientPathConn(ws *wsConn) (*PathConn, error) {
	sess, err := yamux.Client(ws.underlyingNetConn(), newYamuxConfig())
	if err != nil {
		return nil, nyxerrors.Wrap(nyxerrors.ComponentTransport, nyxerrors.CodeNotEstablished, err)
	}
	control, err := sess.Open()
	if err != nil {
		_ = sess.Close()
		return nil, nyxerrors.Wrap(nyxerrors.ComponentTransport, nyxerrors.CodeNotEstablished, err)
	}
	data, err := sess.Open()
	if err != nil {
		_ = control.Close()
		_ = sess.Close()
		return nil, nyxerrors.Wrap(nyxerrors.ComponentTransport, nyxerrors.CodeNotEstablished, err)
	}
	return &PathConn{ws: ws, session: sess, control: control, data: data}, nil
}

// newServerPathConn promotes an accept-side websocket path to a PathConn by
// opening a yamux server session and accepting the two streams the dial
// side opens, in the same control-then-data order.
func newServerPathConn(ws *wsConn) (*PathConn, error) {
	sess, err := yamux.Server(ws.underlyingNetConn(), newYamuxConfig())
	if err != nil {
		return nil, nyxerrors.Wrap(nyxerrors.ComponentTransport, nyxerrors.CodeNotEstablished, err)
	}
	control, err := sess.Accept()
	if err != nil {
		_ = sess.Close()
		return nil, nyxerrors.Wrap(nyxerrors.ComponentTransport, nyxerrors.CodeNotEstablished, err)
	}
	data, err := sess.Accept()
	if err != nil {
		_ = control.Close()
		_ = sess.Close()
		return nil, nyxerrors.Wrap(nyxerrors.ComponentTransport, nyxerrors.CodeNotEstablished, err)
	}
	return &PathConn{ws: ws, session: sess, control: control, data: data}, nil
}

// Control returns the stream carrying handshake, rekey, close, and
// capability negotiation frames for this path.
func (p *PathConn) Control() net.Conn { return p.control }

// Data returns the stream carrying padded application records for this
// path.
func (p *PathConn) Data() net.Conn { return p.data }

// Close tears down both streams, the yamux session, and the underlying
// websocket connection.
func (p *PathConn) Close() error {
	_ = p.control.Close()
	_ = p.data.Close()
	_ = p.session.Close()
	return p.ws.Close()
}
