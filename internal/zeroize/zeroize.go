// Package zeroize scrubs secret material from memory once it is no longer
// needed. It does not prevent compiler reordering around the write in every
// build, but it is the same best-effort discipline the handshake and session
// layers apply to every buffer that ever held key material.
package zeroize

// Bytes overwrites b with zeros in place. Safe to call on a nil or empty
// slice.
func Bytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Array32 overwrites a with zeros in place.
func Array32(a *[32]byte) {
	if a == nil {
		return
	}
	for i := range a {
		a[i] = 0
	}
}
