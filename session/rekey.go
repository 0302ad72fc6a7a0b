package session

import (
	"time"

	"github.com/nyxmesh/nyx-core/internal/defaults"
	"github.com/nyxmesh/nyx-core/nyxerrors"
)

// Rekey derives a fresh pair of traffic keys from the session's rekey base
// and installs them, retaining the outgoing keys for defaults.RekeyGrace so
// in-flight records encrypted under them still decrypt. It may be called by
// either side at any time the session is Established; the caller decides
// the trigger (time, byte count, frame count).
func (s *Session) Rekey() error {
	s.mu.Lock()
	if s.state != Established {
		s.mu.Unlock()
		return ErrNotEstablished
	}
	s.sink.RekeyInitiated()

	s.rekeyEpoch++
	epoch := s.rekeyEpoch
	rekeyBase := s.keys.rekeyBase
	transcript := s.transcript

	newC2S, err1 := deriveRekeyKey(rekeyBase, transcript, epoch, DirC2S)
	newS2C, err2 := deriveRekeyKey(rekeyBase, transcript, epoch, DirS2C)
	if err1 != nil || err2 != nil {
		s.rekeyFailures++
		exceeded := s.rekeyFailures > maxRekeyFailures
		s.mu.Unlock()
		s.sink.RekeyFailed("derive")
		if exceeded {
			return s.fail(nyxerrors.CodeRekeyFailed, firstNonNil(err1, err2))
		}
		return nyxerrors.Wrap(nyxerrors.ComponentSession, nyxerrors.CodeRekeyFailed, firstNonNil(err1, err2))
	}

	s.prevKeys = s.keys
	s.prevValid = true
	s.prevExpiry = time.Now().Add(defaults.RekeyGrace)

	s.keys.c2sKey = newC2S
	s.keys.s2cKey = newS2C
	// Nonce prefixes and the rekey base itself carry forward unchanged: only
	// the per-direction AEAD keys rotate.
	if s.rxWindow != nil {
		s.rxWindow.Reset()
	}
	s.rekeyFailures = 0
	s.mu.Unlock()

	s.sink.RekeyApplied()
	s.touch(time.Now())
	return nil
}

func firstNonNil(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
