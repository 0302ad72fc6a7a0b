package telemetry

import "time"

type noopSink struct{}

func (noopSink) SessionCreated(string)                  {}
func (noopSink) SessionClosed(string)                   {}
func (noopSink) SessionFailed(string)                   {}
func (noopSink) HandshakeCompleted(bool, time.Duration)  {}
func (noopSink) RekeyInitiated()                         {}
func (noopSink) RekeyApplied()                           {}
func (noopSink) RekeyGraceUsed()                         {}
func (noopSink) RekeyFailed(string)                      {}
func (noopSink) ReplayRejected()                         {}
func (noopSink) PathSent(uint32, int)                    {}
func (noopSink) PathReceived(uint32, int)                {}
func (noopSink) PathReordered(uint32)                    {}
func (noopSink) PathExpired(uint32)                      {}
func (noopSink) ActivePaths(int)                         {}
func (noopSink) PathRTT(uint32, time.Duration)           {}
func (noopSink) PathJitter(uint32, time.Duration)        {}
func (noopSink) PathWeightDeviation(uint32, float64)     {}
func (noopSink) CoverTrafficRate(float64)                {}
func (noopSink) CoverTrafficRatioDeviation(float64)      {}
func (noopSink) PowerStateTransition(string, string)     {}

// Noop is the zero-cost Sink used when metrics are disabled.
var Noop Sink = noopSink{}
