package telemetry

import (
	"testing"
	"time"
)

type recordingSink struct {
	noopSink
	sessionsCreated []string
}

func (r *recordingSink) SessionCreated(role string) {
	r.sessionsCreated = append(r.sessionsCreated, role)
}

func TestAtomicDefaultsToNoop(t *testing.T) {
	a := NewAtomic()
	a.SessionCreated("initiator")
	a.HandshakeCompleted(true, time.Millisecond)
}

func TestAtomicSetSwapsDelegate(t *testing.T) {
	a := NewAtomic()
	rec := &recordingSink{}
	a.Set(rec)
	a.SessionCreated("responder")
	if len(rec.sessionsCreated) != 1 || rec.sessionsCreated[0] != "responder" {
		t.Fatalf("expected delegate to observe call, got %v", rec.sessionsCreated)
	}
}

func TestAtomicSetNilFallsBackToNoop(t *testing.T) {
	a := NewAtomic()
	a.Set(nil)
	a.SessionCreated("initiator")
}
