// Package nyxerrors defines a stable, programmatically identifiable error
// taxonomy shared across Nyx's components.
package nyxerrors

import "fmt"

// Component identifies which subsystem raised the error.
type Component string

const (
	ComponentHandshake Component = "handshake"
	ComponentSession   Component = "session"
	ComponentReplay    Component = "replay"
	ComponentPath      Component = "path"
	ComponentReorder   Component = "reorder"
	ComponentFlowCtl   Component = "flowctl"
	ComponentPadding   Component = "padding"
	ComponentCover     Component = "cover"
	ComponentPower     Component = "power"
	ComponentTransport Component = "transport"
)

// Code is a stable, programmatic error identifier for public operations.
type Code string

const (
	CodeTimeout               Code = "timeout"
	CodeCanceled              Code = "canceled"
	CodeInvalidInput          Code = "invalid_input"
	CodeValidation            Code = "validation"
	CodeCryptoFailure         Code = "crypto_failure"
	CodeUnsupportedCapability Code = "unsupported_capability"
	CodeCapabilityMismatch    Code = "capability_mismatch"
	CodeResourceExhausted     Code = "resource_exhausted"
	CodeNotEstablished        Code = "not_established"
	CodeAlreadyClosed         Code = "already_closed"
	CodeReplayRejected        Code = "replay_rejected"
	CodeOutOfWindow           Code = "out_of_window"
	CodeNoPaths               Code = "no_paths"
	CodeUnknownPath           Code = "unknown_path"
	CodeRekeyFailed           Code = "rekey_failed"
	CodeHandshakeTimeout      Code = "handshake_timeout"
	CodeIdleTimeout           Code = "idle_timeout"
)

// Error is a structured error carrying the component, code, and an optional
// wrapped cause.
type Error struct {
	Component Component
	Code      Code
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Component, e.Code, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Component, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap constructs a structured Error.
func Wrap(c Component, code Code, err error) error {
	return &Error{Component: c, Code: code, Err: err}
}

// CodeOf extracts the Code from err if it (or something it wraps) is an
// *Error, and reports whether one was found.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Code, true
	}
	return "", false
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
