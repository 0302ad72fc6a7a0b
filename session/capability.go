package session

import "github.com/nyxmesh/nyx-core/nyxerrors"

// CapabilitySet is an unordered set of 32-bit capability ids.
type CapabilitySet map[uint32]struct{}

// NewCapabilitySet builds a set from the given ids.
func NewCapabilitySet(ids ...uint32) CapabilitySet {
	s := make(CapabilitySet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is a member.
func (s CapabilitySet) Has(id uint32) bool {
	_, ok := s[id]
	return ok
}

// negotiateCapabilities intersects local against the peer's advertised set
// and fails fatally if the peer requires a capability local does not have.
// On success it returns the intersection (the capabilities both sides
// support).
func negotiateCapabilities(local CapabilitySet, peerRequired, peerOptional CapabilitySet) (CapabilitySet, error) {
	for id := range peerRequired {
		if !local.Has(id) {
			return nil, nyxerrors.NewUnsupportedCapability(id)
		}
	}
	negotiated := make(CapabilitySet)
	for id := range peerRequired {
		negotiated[id] = struct{}{}
	}
	for id := range peerOptional {
		if local.Has(id) {
			negotiated[id] = struct{}{}
		}
	}
	return negotiated, nil
}
