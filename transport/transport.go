// Package transport defines the PathTransport contract the multipath
// scheduler sends and receives through, and the concrete websocket/yamux
// path implementations that satisfy it.
package transport

import "context"

// PathID identifies a transport-level path within a connection. It
// corresponds 1:1 with path.ID in the scheduler.
type PathID uint32

// InboundFrame is a received frame tagged with the path it arrived on.
type InboundFrame struct {
	Path PathID
	Data []byte
}

// PathTransport is the collaborator contract the core's multipath data
// plane consumes: send on a given path, and a single channel carrying
// every inbound frame across all paths, tagged with its arrival path.
// Byte framing beyond the multipath frame header is the transport's
// responsibility; the core assumes datagram-granular delivery.
type PathTransport interface {
	// Send transmits b on the given path, blocking at most until ctx is
	// done.
	Send(ctx context.Context, path PathID, b []byte) error

	// Receive returns the channel inbound frames arrive on. The channel
	// is closed when the transport shuts down.
	Receive() <-chan InboundFrame

	// Close shuts down every path and closes the Receive channel.
	Close() error
}
