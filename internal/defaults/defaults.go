// Package defaults collects the numeric defaults spec.md §5/§6 name. Where a
// component declares its own value instead, or no package reads a constant,
// the constant's comment says so.
package defaults

import "time"

const (
	// HandshakeTimeout is the default time a session may spend in
	// ClientHandshaking/ServerHandshaking before Manager.Sweep removes and
	// closes it.
	HandshakeTimeout = 30 * time.Second
	// IdleTimeout is the default time a session may spend Established with
	// no activity before Manager.Sweep removes and closes it.
	IdleTimeout = 300 * time.Second
	// RekeyGrace is how long a session's previous traffic keys remain
	// usable for decryption after a rekey installs new ones.
	RekeyGrace = 5 * time.Second
	// ClosedGrace is how long a session id stays reserved after Closed or
	// Failed before the manager may reuse it.
	ClosedGrace = 10 * time.Second
)

const (
	// MaxSessions bounds the session manager's table size.
	MaxSessions = 10_000
	// MaxPathsPerConnection is the default path-count bound. No package
	// reads it; path.Scheduler accepts any number of paths.
	MaxPathsPerConnection = 4
	// AntiReplayWindowSize is the default sliding-window width; must stay a
	// power of two.
	AntiReplayWindowSize = 1 << 20
	// ReorderBufferCapacity is the default per-path reordering buffer size.
	ReorderBufferCapacity = 100
	// SampleRingSize is the default recent-latency-sample ring size. The
	// path package declares its own maxSamples bound with the same value
	// instead of reading this constant.
	SampleRingSize = 100
	// TrafficHistoryRingSize is the default traffic-history ring size. No
	// package reads it; power.Manager bounds its screen-event list by
	// PowerTrackingWindow only.
	TrafficHistoryRingSize = 1_000
)

const (
	// TargetPacketSize is the default fixed padded packet size.
	TargetPacketSize = 1280
	// MinPaddingDelay and MaxPaddingDelay bound the timing obfuscator's
	// uniformly random release delay.
	MinPaddingDelay = 1 * time.Millisecond
	MaxPaddingDelay = 20 * time.Millisecond
	// MaxPaddingDelayHardCap is the absolute ceiling on the release delay
	// regardless of configuration.
	MaxPaddingDelayHardCap = 100 * time.Millisecond
)

const (
	// ReorderMinTimeout is the floor applied to the dynamic reorder timeout
	// (RTT-diff + 2*jitter), per spec.md §4.F.
	ReorderMinTimeout = 100 * time.Millisecond
)

const (
	// MinScreenOffDuration is how long the screen must stay Off before the
	// power manager treats that as a Background signal.
	MinScreenOffDuration = 2 * time.Minute
	// PowerTrackingWindow bounds the screen/power state-change event ring.
	PowerTrackingWindow = 1 * time.Hour
	// BatteryCritical and BatteryLow are the power manager's battery
	// thresholds; BatteryHysteresis widens BatteryLow while already
	// Background, to avoid flapping at the boundary.
	BatteryCritical   = 0.05
	BatteryLow        = 0.20
	BatteryHysteresis = 0.05
	// ScreenOnCoverRatio and ScreenOffCoverRatio are the cover-traffic
	// ratios applied in the Active and Background power states;
	// Inactive uses half of ScreenOffCoverRatio and Critical uses 0.05.
	ScreenOnCoverRatio  = 1.0
	ScreenOffCoverRatio = 0.4
	CriticalCoverRatio  = 0.05
	// StateChangeCooldown is the minimum interval between power-state
	// transitions, to prevent flapping.
	StateChangeCooldown = 30 * time.Second
)

const (
	// MinAnonymitySet and MaxAnonymitySet bound the cover-traffic
	// generator's target anonymity-set size.
	MinAnonymitySet = 20
	MaxAnonymitySet = 500
	// MinCoverRate and MaxCoverRate bound the cover-traffic generator's
	// packets/sec emission rate.
	MinCoverRate = 0.5
	MaxCoverRate = 50.0
	// TargetUtilization caps cover traffic's share of available bandwidth.
	TargetUtilization = 0.1
	// BatteryThreshold is the battery level below which the generator
	// switches to its low-power pattern.
	BatteryThreshold = 0.2
	// PowerSavingFactor scales MinCoverRate on the battery path.
	PowerSavingFactor = 0.3
	// AnonymityCheckInterval is the default periodic sampling cadence for
	// the anonymity-set assessment.
	AnonymityCheckInterval = 30 * time.Second
	// PatternRotationMin and PatternRotationMax bound how long the active
	// cover-traffic pattern persists before rotating.
	PatternRotationMin = 1 * time.Minute
	PatternRotationMax = 10 * time.Minute
)

const (
	// MaxBurstSize is the default token-bucket capacity in bytes.
	MaxBurstSize = 1 << 20
	// GlobalBandwidthLimit is the default global refill rate in bytes/sec.
	GlobalBandwidthLimit = 10 << 20

	// InitialWindow, MinWindow, and MaxWindow bound a connection's AIMD
	// congestion window in bytes.
	InitialWindow = 64 << 10
	MinWindow     = 16 << 10
	MaxWindow     = 8 << 20
	// MSS is the maximum segment size used as the congestion-avoidance
	// growth increment.
	MSS = 1460

	// BackpressureThreshold is the queue-utilization fraction above which
	// the backpressure controller starts proposing a delay.
	BackpressureThreshold = 0.8
	// MaxBackpressureDelay caps the exponential backpressure delay.
	MaxBackpressureDelay = 1 * time.Second
	// BackpressureDelayUnit is the per-level-squared delay unit
	// (level²·100ms per spec.md §4.G).
	BackpressureDelayUnit = 100 * time.Millisecond
)
