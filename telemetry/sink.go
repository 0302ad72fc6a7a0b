// Package telemetry defines the abstract metrics contract the core emits
// observations through. The core never depends on an exporter directly;
// callers inject a Sink (telemetry.Noop by default, telemetry/prom in
// production) via dependency injection.
package telemetry

import "time"

// Sink receives every counter/gauge/histogram observation spec.md §6 names.
// Implementations must be safe for concurrent use.
type Sink interface {
	// Session lifecycle.
	SessionCreated(role string)
	SessionClosed(reason string)
	SessionFailed(reason string)

	// Handshake.
	HandshakeCompleted(ok bool, d time.Duration)

	// Rekey.
	RekeyInitiated()
	RekeyApplied()
	RekeyGraceUsed()
	RekeyFailed(reason string)

	// Anti-replay.
	ReplayRejected()

	// Per-path counters and gauges.
	PathSent(pathID uint32, bytes int)
	PathReceived(pathID uint32, bytes int)
	PathReordered(pathID uint32)
	PathExpired(pathID uint32)
	ActivePaths(n int)
	PathRTT(pathID uint32, d time.Duration)
	PathJitter(pathID uint32, d time.Duration)
	PathWeightDeviation(pathID uint32, deviation float64)

	// Cover traffic.
	CoverTrafficRate(packetsPerSecond float64)
	CoverTrafficRatioDeviation(deviation float64)

	// Power.
	PowerStateTransition(from, to string)
}
