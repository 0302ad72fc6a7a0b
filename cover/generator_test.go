package cover

import (
	"testing"
	"time"
)

func TestNextEntersEmergencyBelowMinAnonymitySet(t *testing.T) {
	g := NewGenerator(time.Unix(0, 0))
	g.minAnonymitySet = 100

	e := g.Next(time.Unix(1, 0), CrossLayerInputs{AnonymitySetEstimate: 5})
	if !e.Emergency {
		t.Fatal("expected the emergency path to fire when the anonymity-set estimate is below the minimum")
	}
	if e.Priority != Emergency {
		t.Fatalf("Priority = %v, want Emergency", e.Priority)
	}
}

func TestRateDoublesMaxDuringEmergency(t *testing.T) {
	g := NewGenerator(time.Unix(0, 0))
	g.minAnonymitySet = 100

	r := g.Rate(CrossLayerInputs{AnonymitySetEstimate: 5})
	if r != g.maxCoverRate*2 {
		t.Fatalf("Rate() = %v, want %v (2x max rate during emergency)", r, g.maxCoverRate*2)
	}
}

func TestNextSwitchesToLowPowerPatternBelowBatteryThreshold(t *testing.T) {
	g := NewGenerator(time.Unix(0, 0))
	g.minAnonymitySet = 0 // keep the emergency path from overriding this check
	g.batteryThresh = 0.2

	e := g.Next(time.Unix(1, 0), CrossLayerInputs{AnonymitySetEstimate: 1000, BatteryLevel: 0.1})
	if !e.Battery {
		t.Fatal("expected the battery path to fire below the battery threshold")
	}
	if e.Pattern != IoT {
		t.Fatalf("Pattern = %v, want IoT on the battery path", e.Pattern)
	}
}

func TestRateScaledByPowerSaveFactorOnBatteryPath(t *testing.T) {
	g := NewGenerator(time.Unix(0, 0))
	g.minAnonymitySet = 0
	g.batteryThresh = 0.2
	g.powerSaveFactor = 0.3
	g.minCoverRate = 1.0

	r := g.Rate(CrossLayerInputs{AnonymitySetEstimate: 1000, BatteryLevel: 0.05, AvailableBandwidthBps: 1e9})
	if r != g.minCoverRate*g.powerSaveFactor {
		t.Fatalf("Rate() = %v, want %v (minCoverRate scaled by powerSaveFactor)", r, g.minCoverRate*g.powerSaveFactor)
	}
}

func TestRateRespectsUtilizationCap(t *testing.T) {
	g := NewGenerator(time.Unix(0, 0))
	g.minAnonymitySet = 0
	g.targetUtil = 0.1

	// A tiny available bandwidth should cap the rate well below maxCoverRate.
	r := g.Rate(CrossLayerInputs{AnonymitySetEstimate: 1000, AvailableBandwidthBps: 100})
	if r >= g.maxCoverRate {
		t.Fatalf("Rate() = %v, want capped below maxCoverRate (%v) by the bandwidth constraint", r, g.maxCoverRate)
	}
}

func TestPatternRotationAdvancesPastDeadline(t *testing.T) {
	g := NewGenerator(time.Unix(0, 0))
	g.minAnonymitySet = 0
	g.rotationMin = time.Second
	g.rotationMax = time.Second
	g.rotateAt = time.Unix(1, 0)

	before := g.ActivePattern()
	g.Next(time.Unix(2, 0), CrossLayerInputs{AnonymitySetEstimate: 1000, BatteryLevel: 1.0})
	_ = before // rotation picks from a weighted random draw, so the new pattern isn't deterministic
	if !g.rotateAt.After(time.Unix(2, 0)) {
		t.Fatalf("rotateAt = %v, want a new deadline after rotation at t=2s", g.rotateAt)
	}
}

func TestShapedPacketSizeNeverExceedsTarget(t *testing.T) {
	g := NewGenerator(time.Unix(0, 0))
	for i := 0; i < 200; i++ {
		size := g.shapedPacketSizeLocked(Bursty)
		if size < 1 || size > 1280 {
			t.Fatalf("shapedPacketSizeLocked() = %d, want within [1, 1280]", size)
		}
	}
}
