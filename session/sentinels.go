package session

import "errors"

var (
	ErrNotIdle           = errors.New("session: not idle")
	ErrNotHandshaking    = errors.New("session: not in a handshaking state")
	ErrNotEstablished    = errors.New("session: not established")
	ErrAlreadyClosed     = errors.New("session: already closed")
	ErrInvalidTransition = errors.New("session: invalid state transition")
	ErrUnknownSession    = errors.New("session: unknown session id")
	ErrTableFull         = errors.New("session: session table full")
)
