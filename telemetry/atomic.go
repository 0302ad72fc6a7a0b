package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

type sinkHolder struct{ sink Sink }

// Atomic lets a process swap the live Sink at runtime without taking a lock
// on the hot path; every Sink method reads the current delegate via an
// atomic.Value load.
type Atomic struct {
	once sync.Once
	v    atomic.Value
}

// NewAtomic returns an Atomic initialized to the Noop sink.
func NewAtomic() *Atomic {
	a := &Atomic{}
	a.init()
	return a
}

func (a *Atomic) init() {
	a.once.Do(func() { a.v.Store(&sinkHolder{sink: Noop}) })
}

// Set replaces the delegate, falling back to Noop on nil.
func (a *Atomic) Set(s Sink) {
	a.init()
	if s == nil {
		s = Noop
	}
	a.v.Store(&sinkHolder{sink: s})
}

func (a *Atomic) load() Sink {
	a.init()
	return a.v.Load().(*sinkHolder).sink
}

func (a *Atomic) SessionCreated(role string)             { a.load().SessionCreated(role) }
func (a *Atomic) SessionClosed(reason string)             { a.load().SessionClosed(reason) }
func (a *Atomic) SessionFailed(reason string)             { a.load().SessionFailed(reason) }
func (a *Atomic) HandshakeCompleted(ok bool, d time.Duration) {
	a.load().HandshakeCompleted(ok, d)
}
func (a *Atomic) RekeyInitiated()            { a.load().RekeyInitiated() }
func (a *Atomic) RekeyApplied()              { a.load().RekeyApplied() }
func (a *Atomic) RekeyGraceUsed()            { a.load().RekeyGraceUsed() }
func (a *Atomic) RekeyFailed(reason string)  { a.load().RekeyFailed(reason) }
func (a *Atomic) ReplayRejected()            { a.load().ReplayRejected() }

func (a *Atomic) PathSent(pathID uint32, bytes int)     { a.load().PathSent(pathID, bytes) }
func (a *Atomic) PathReceived(pathID uint32, bytes int) { a.load().PathReceived(pathID, bytes) }
func (a *Atomic) PathReordered(pathID uint32)           { a.load().PathReordered(pathID) }
func (a *Atomic) PathExpired(pathID uint32)             { a.load().PathExpired(pathID) }
func (a *Atomic) ActivePaths(n int)                     { a.load().ActivePaths(n) }
func (a *Atomic) PathRTT(pathID uint32, d time.Duration) { a.load().PathRTT(pathID, d) }
func (a *Atomic) PathJitter(pathID uint32, d time.Duration) {
	a.load().PathJitter(pathID, d)
}
func (a *Atomic) PathWeightDeviation(pathID uint32, deviation float64) {
	a.load().PathWeightDeviation(pathID, deviation)
}

func (a *Atomic) CoverTrafficRate(pps float64) { a.load().CoverTrafficRate(pps) }
func (a *Atomic) CoverTrafficRatioDeviation(deviation float64) {
	a.load().CoverTrafficRatioDeviation(deviation)
}

func (a *Atomic) PowerStateTransition(from, to string) { a.load().PowerStateTransition(from, to) }

var _ Sink = (*Atomic)(nil)
