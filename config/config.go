// Package config defines the shape of Nyx Core's enumerated
// configuration, one struct per component, each with sane defaults. No
// loader (file/env/flags) is implemented here — that collaborator is out
// of scope; this package only defines what a loader would populate.
package config

import (
	"time"

	"github.com/nyxmesh/nyx-core/cover"
	"github.com/nyxmesh/nyx-core/flowctl"
	"github.com/nyxmesh/nyx-core/internal/defaults"
	"github.com/nyxmesh/nyx-core/path"
)

// Session holds the session manager's lifecycle and instrumentation
// settings.
type Session struct {
	IdleTimeout      time.Duration
	HandshakeTimeout time.Duration
	MaxSessions      int
	EnableMetrics    bool
}

// DefaultSession returns the session manager's default configuration.
func DefaultSession() Session {
	return Session{
		IdleTimeout:      defaults.IdleTimeout,
		HandshakeTimeout: defaults.HandshakeTimeout,
		MaxSessions:      defaults.MaxSessions,
		EnableMetrics:    true,
	}
}

// FailoverConfig holds thresholds for when the path scheduler's Adaptive
// policy falls back away from Latency-first selection, and how often a
// degraded path is re-probed. The path package does not read it; Adaptive
// uses its own constants in path/policies.go.
type FailoverConfig struct {
	RTTThreshold  time.Duration
	LossThreshold float64
	ProbeInterval time.Duration
}

// Scheduler holds the path scheduler's selection policy settings.
type Scheduler struct {
	Algorithm         path.Policy
	FallbackAlgorithm path.Policy
	EnableAdaptive    bool
	RTTEWMAAlpha      float64
	Failover          FailoverConfig
}

// DefaultScheduler returns the path scheduler's default configuration:
// Adaptive policy with Round-robin as FallbackAlgorithm. The path package
// does not read FallbackAlgorithm.
func DefaultScheduler() Scheduler {
	return Scheduler{
		Algorithm:         path.Adaptive,
		FallbackAlgorithm: path.RoundRobin,
		EnableAdaptive:    true,
		RTTEWMAAlpha:      7.0 / 8.0,
		Failover: FailoverConfig{
			RTTThreshold:  200 * time.Millisecond,
			LossThreshold: 0.1,
			ProbeInterval: 5 * time.Second,
		},
	}
}

// Reorder holds the per-path reordering buffer's settings.
type Reorder struct {
	Timeout    time.Duration
	MaxEntries int
}

// DefaultReorder returns the reordering buffer's default configuration.
func DefaultReorder() Reorder {
	return Reorder{
		Timeout:    defaults.ReorderMinTimeout,
		MaxEntries: defaults.ReorderBufferCapacity,
	}
}

// WindowConfig bounds the AIMD flow controller's congestion window in
// bytes and its multiplicative shrink factor on loss/ECN.
type WindowConfig struct {
	Initial int
	Max     int
	Min     int
	Grow    int     // additive growth increment (bytes) in congestion avoidance
	Shrink  float64 // multiplicative factor applied to the window on loss
}

// RateLimiter holds the token-bucket, AIMD, and backpressure settings that
// gate outbound traffic.
type RateLimiter struct {
	GlobalBandwidthLimit  float64
	PerConnectionLimit    float64
	PerStreamLimit        float64
	MaxBurstSize          float64
	Window                WindowConfig
	BackpressureThreshold float64
	PriorityWeights       map[flowctl.Class]float64
}

// DefaultRateLimiter returns the rate limiter's default configuration.
func DefaultRateLimiter() RateLimiter {
	return RateLimiter{
		GlobalBandwidthLimit: defaults.GlobalBandwidthLimit,
		PerConnectionLimit:   defaults.GlobalBandwidthLimit / 10,
		PerStreamLimit:       defaults.GlobalBandwidthLimit / 100,
		MaxBurstSize:         defaults.MaxBurstSize,
		Window: WindowConfig{
			Initial: defaults.InitialWindow,
			Max:     defaults.MaxWindow,
			Min:     defaults.MinWindow,
			Grow:    defaults.MSS,
			Shrink:  0.5,
		},
		BackpressureThreshold: defaults.BackpressureThreshold,
		PriorityWeights: map[flowctl.Class]float64{
			flowctl.Control:      1.0,
			flowctl.HighPriority: 0.8,
			flowctl.Normal:       0.5,
			flowctl.LowPriority:  0.2,
			flowctl.Background:   0.1,
		},
	}
}

// Padding holds the fixed-size padding and timing-obfuscation processor's
// settings.
type Padding struct {
	TargetPacketSize   int
	EnableFixedSize    bool
	MinDelay           time.Duration
	MaxDelay           time.Duration
	BurstProtection    bool
	BurstThreshold     int
	OverheadLimit      float64
	EnableDummyTraffic bool
	DummyTrafficRate   float64
}

// DefaultPadding returns the padding processor's default configuration.
func DefaultPadding() Padding {
	return Padding{
		TargetPacketSize:   defaults.TargetPacketSize,
		EnableFixedSize:    true,
		MinDelay:           defaults.MinPaddingDelay,
		MaxDelay:           defaults.MaxPaddingDelay,
		BurstProtection:    true,
		BurstThreshold:     200,
		OverheadLimit:      0.25,
		EnableDummyTraffic: false,
		DummyTrafficRate:   1.0,
	}
}

// CoverTraffic holds the adaptive cover-traffic generator's settings.
type CoverTraffic struct {
	MinAnonymitySet        int
	MaxAnonymitySet        int
	PatternWeights         map[cover.Pattern]float64
	MinCoverRate           float64
	MaxCoverRate           float64
	TargetUtilization      float64
	BatteryThreshold       float64
	PowerSavingFactor      float64
	AnonymityCheckInterval time.Duration
}

// DefaultCoverTraffic returns the cover-traffic generator's default
// configuration.
func DefaultCoverTraffic() CoverTraffic {
	return CoverTraffic{
		MinAnonymitySet:        defaults.MinAnonymitySet,
		MaxAnonymitySet:        defaults.MaxAnonymitySet,
		PatternWeights:         cover.DefaultWeights(),
		MinCoverRate:           defaults.MinCoverRate,
		MaxCoverRate:           defaults.MaxCoverRate,
		TargetUtilization:      defaults.TargetUtilization,
		BatteryThreshold:       defaults.BatteryThreshold,
		PowerSavingFactor:      defaults.PowerSavingFactor,
		AnonymityCheckInterval: defaults.AnonymityCheckInterval,
	}
}

// BatteryThresholds holds the power manager's battery-level boundaries.
type BatteryThresholds struct {
	Critical   float64
	Low        float64
	Hysteresis float64
}

// Power holds the screen-off/power manager's settings.
type Power struct {
	MinScreenOffDuration time.Duration
	TrackingWindow       time.Duration
	BatteryThresholds    BatteryThresholds
	ScreenOffCoverRatio  float64
	ScreenOnCoverRatio   float64
	StateChangeCooldown  time.Duration
}

// DefaultPower returns the power manager's default configuration.
func DefaultPower() Power {
	return Power{
		MinScreenOffDuration: defaults.MinScreenOffDuration,
		TrackingWindow:       defaults.PowerTrackingWindow,
		BatteryThresholds: BatteryThresholds{
			Critical:   defaults.BatteryCritical,
			Low:        defaults.BatteryLow,
			Hysteresis: defaults.BatteryHysteresis,
		},
		ScreenOffCoverRatio: defaults.ScreenOffCoverRatio,
		ScreenOnCoverRatio:  defaults.ScreenOnCoverRatio,
		StateChangeCooldown: defaults.StateChangeCooldown,
	}
}

// Config aggregates every component's configuration.
type Config struct {
	Session      Session
	Scheduler    Scheduler
	Reorder      Reorder
	RateLimiter  RateLimiter
	Padding      Padding
	CoverTraffic CoverTraffic
	Power        Power
}

// Default returns the full configuration with every component at its
// default settings.
func Default() Config {
	return Config{
		Session:      DefaultSession(),
		Scheduler:    DefaultScheduler(),
		Reorder:      DefaultReorder(),
		RateLimiter:  DefaultRateLimiter(),
		Padding:      DefaultPadding(),
		CoverTraffic: DefaultCoverTraffic(),
		Power:        DefaultPower(),
	}
}
