// Package discovery specifies the contract the core expects from its
// peer-discovery collaborator (component K: a Kademlia-style DHT and
// length-framed P2P messaging layer). That collaborator's search and
// messaging internals are out of scope here — spec.md names it only as a
// "find peers near key" provider the core consumes through this
// interface; its actual async query/await behavior is unspecified.
package discovery

import "context"

// Endpoint is a single ranked result from a peer lookup: a remote
// network address plus the collaborator's own confidence/distance metric,
// opaque to the core.
type Endpoint struct {
	Address string
	Score   float64
}

// Finder looks up remote endpoints near a 160-bit target id. It makes no
// delivery guarantees: a lookup may return fewer results than requested,
// or none, without that being an error.
type Finder interface {
	// FindPeers returns up to maxResults endpoints ranked by proximity to
	// targetID (a 160-bit identifier, 20 bytes). Implementations must
	// respect ctx cancellation.
	FindPeers(ctx context.Context, targetID [20]byte, maxResults int) ([]Endpoint, error)
}
