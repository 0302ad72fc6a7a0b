package transport

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nyxmesh/nyx-core/nyxerrors"
)

// wireLengthPrefix is the 4-byte big-endian length prefix placed ahead of
// each marshaled Frame on a path's data stream, since a yamux stream is
// byte-oriented and carries no message boundaries of its own (unlike the
// websocket layer it is multiplexed underneath).
const wireLengthPrefix = 4

// WSPathTransport is the reference PathTransport implementation: each path
// is a websocket connection promoted to a PathConn, and frames are
// length-prefixed and multiplexed over that path's yamux data stream. It is
// the only exported type in this package that reaches across multiple
// paths at once; everything else operates on a single PathConn.
type WSPathTransport struct {
	mu     sync.Mutex
	paths  map[PathID]*pathEntry
	seq    map[PathID]*atomic.Uint64
	closed bool

	inbound   chan InboundFrame
	closeOnce sync.Once
}

type pathEntry struct {
	conn *PathConn
	done chan struct{}
}

// NewWSPathTransport constructs an empty transport. Paths are attached with
// AddPath as they are established by the handshake/path-scheduler layers.
func NewWSPathTransport() *WSPathTransport {
	return &WSPathTransport{
		paths:   make(map[PathID]*pathEntry),
		seq:     make(map[PathID]*atomic.Uint64),
		inbound: make(chan InboundFrame, 64),
	}
}

// AddPath registers an established PathConn under id and starts forwarding
// its inbound frames onto Receive's channel. It is an error to add the same
// id twice without first removing it.
func (t *WSPathTransport) AddPath(id PathID, pc *PathConn) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nyxerrors.Wrap(nyxerrors.ComponentTransport, nyxerrors.CodeAlreadyClosed, nil)
	}
	if _, exists := t.paths[id]; exists {
		t.mu.Unlock()
		return nyxerrors.Wrap(nyxerrors.ComponentTransport, nyxerrors.CodeUnknownPath, nil)
	}
	entry := &pathEntry{conn: pc, done: make(chan struct{})}
	t.paths[id] = entry
	t.seq[id] = &atomic.Uint64{}
	t.mu.Unlock()

	go t.readLoop(id, entry)
	return nil
}

// RemovePath detaches and closes the path's PathConn, stopping its read
// loop. Removing an id that was never added is a no-op.
func (t *WSPathTransport) RemovePath(id PathID) {
	t.mu.Lock()
	entry, ok := t.paths[id]
	if ok {
		delete(t.paths, id)
		delete(t.seq, id)
	}
	t.mu.Unlock()
	if !ok {
		return
	}
	close(entry.done)
	_ = entry.conn.Close()
}

// Send marshals b behind the next frame sequence number for path and writes
// it, length-prefixed, to that path's data stream.
func (t *WSPathTransport) Send(ctx context.Context, path PathID, b []byte) error {
	t.mu.Lock()
	entry, ok := t.paths[path]
	counter := t.seq[path]
	t.mu.Unlock()
	if !ok {
		return nyxerrors.Wrap(nyxerrors.ComponentTransport, nyxerrors.CodeUnknownPath, nil)
	}

	frame := Frame{Path: path, Seq: counter.Add(1) - 1, Data: b}
	payload := frame.Marshal()

	out := make([]byte, wireLengthPrefix+len(payload))
	binary.BigEndian.PutUint32(out[:wireLengthPrefix], uint32(len(payload)))
	copy(out[wireLengthPrefix:], payload)

	return writeAll(ctx, entry.conn.Data(), out)
}

// Receive returns the channel every path's inbound frames are forwarded
// onto. It is closed once Close has torn down every path.
func (t *WSPathTransport) Receive() <-chan InboundFrame {
	return t.inbound
}

// Close tears down every registered path and closes the Receive channel.
// It is safe to call more than once.
func (t *WSPathTransport) Close() error {
	var firstErr error
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		entries := make([]*pathEntry, 0, len(t.paths))
		for id, e := range t.paths {
			entries = append(entries, e)
			delete(t.paths, id)
		}
		t.mu.Unlock()

		for _, e := range entries {
			close(e.done)
			if err := e.conn.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		close(t.inbound)
	})
	return firstErr
}

// readLoop reads length-prefixed frames off a single path's data stream
// until it errors or the path is removed, forwarding each to the shared
// inbound channel tagged with its arrival path.
func (t *WSPathTransport) readLoop(id PathID, entry *pathEntry) {
	r := entry.conn.Data()
	lenBuf := make([]byte, wireLengthPrefix)
	for {
		select {
		case <-entry.done:
			return
		default:
		}

		if _, err := io.ReadFull(r, lenBuf); err != nil {
			return
		}
		n := binary.BigEndian.Uint32(lenBuf)
		payload := make([]byte, n)
		if _, err := io.ReadFull(r, payload); err != nil {
			return
		}
		frame, err := ParseFrame(payload)
		if err != nil {
			continue
		}
		select {
		case t.inbound <- InboundFrame{Path: id, Data: frame.Data}:
		case <-entry.done:
			return
		}
	}
}

// writeAll writes b to conn in full, honoring ctx's deadline/cancellation
// the same way the websocket layer does, by forcing the write deadline
// forward when ctx is done.
func writeAll(ctx context.Context, conn net.Conn, b []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline {
		_ = conn.SetWriteDeadline(deadline)
	} else {
		_ = conn.SetWriteDeadline(time.Time{})
	}
	if ctx.Done() != nil {
		var active atomic.Bool
		active.Store(true)
		stop := context.AfterFunc(ctx, func() {
			if active.Load() {
				_ = conn.SetWriteDeadline(time.Now())
			}
		})
		defer func() {
			active.Store(false)
			stop()
		}()
	}
	_, err := conn.Write(b)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if hasDeadline && !time.Now().Before(deadline) {
				return context.DeadlineExceeded
			}
		}
	}
	return err
}

var _ PathTransport = (*WSPathTransport)(nil)
