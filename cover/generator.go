package cover

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/nyxmesh/nyx-core/internal/defaults"
)

// Priority classifies a cover-traffic emission's scheduling urgency.
type Priority int

const (
	Low Priority = iota
	Normal
	High
	Emergency
)

func (p Priority) String() string {
	switch p {
	case Low:
		return "low"
	case Normal:
		return "normal"
	case High:
		return "high"
	case Emergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// CrossLayerInputs are the read-only signals the generator consumes from
// the rest of the stack to shape its emission decisions.
type CrossLayerInputs struct {
	PaddingOverheadFraction float64
	ActiveStreamCount       int
	CongestionLevel         float64
	AvailableBandwidthBps   float64
	BatteryLevel            float64
	AnonymitySetEstimate    float64
}

// Emission is one cover-packet decision: the pattern it was drawn from,
// the priority it should be scheduled at, and the packet size to shape it
// to.
type Emission struct {
	Pattern    Pattern
	Priority   Priority
	PacketSize int
	Emergency  bool
	Battery    bool
}

// Generator samples a weighted mixture over named traffic patterns,
// rotating periodically, and applies the emergency and battery-saving
// override paths described in spec.md §4.I.
type Generator struct {
	mu sync.Mutex

	profiles map[Pattern]Profile
	weights  map[Pattern]float64

	minAnonymitySet float64
	minCoverRate    float64
	maxCoverRate    float64
	targetUtil      float64
	batteryThresh   float64
	powerSaveFactor float64

	active        Pattern
	rotateAt      time.Time
	rotationMin   time.Duration
	rotationMax   time.Duration
	inEmergency   bool
	samples       []anonymitySample
	sampleHistory int
}

// NewGenerator constructs a generator with the default pattern profiles
// and weights, using internal/defaults for its thresholds.
func NewGenerator(now time.Time) *Generator {
	g := &Generator{
		profiles:        DefaultProfiles(),
		weights:         DefaultWeights(),
		minAnonymitySet: defaults.MinAnonymitySet,
		minCoverRate:    defaults.MinCoverRate,
		maxCoverRate:    defaults.MaxCoverRate,
		targetUtil:      defaults.TargetUtilization,
		batteryThresh:   defaults.BatteryThreshold,
		powerSaveFactor: defaults.PowerSavingFactor,
		rotationMin:     defaults.PatternRotationMin,
		rotationMax:     defaults.PatternRotationMax,
		sampleHistory:   50,
	}
	g.active = g.samplePatternLocked()
	g.rotateAt = now.Add(g.randomRotationDuration())
	return g
}

func (g *Generator) randomRotationDuration() time.Duration {
	span := int64(g.rotationMax - g.rotationMin)
	if span <= 0 {
		return g.rotationMin
	}
	return g.rotationMin + time.Duration(rand.Int64N(span+1))
}

// samplePatternLocked draws a pattern from the configured weight mixture.
// Caller holds g.mu.
func (g *Generator) samplePatternLocked() Pattern {
	var total float64
	for _, w := range g.weights {
		total += w
	}
	if total <= 0 {
		return Constant
	}
	r := rand.Float64() * total
	for p := Pattern(0); p < numPatterns; p++ {
		w, ok := g.weights[p]
		if !ok {
			continue
		}
		if r < w {
			return p
		}
		r -= w
	}
	return Constant
}

// maybeRotateLocked switches the active pattern if its rotation deadline
// has passed. Caller holds g.mu.
func (g *Generator) maybeRotateLocked(now time.Time) {
	if now.Before(g.rotateAt) {
		return
	}
	g.active = g.samplePatternLocked()
	g.rotateAt = now.Add(g.randomRotationDuration())
}

// Next produces the next cover-traffic emission decision given the
// current cross-layer inputs, applying the emergency and battery override
// paths ahead of the normal pattern mixture.
func (g *Generator) Next(now time.Time, in CrossLayerInputs) Emission {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.inEmergency = in.AnonymitySetEstimate < g.minAnonymitySet
	if g.inEmergency {
		e := Emission{
			Pattern:    g.active,
			Priority:   Emergency,
			PacketSize: g.shapedPacketSizeLocked(g.active),
			Emergency:  true,
		}
		g.recordSampleLocked(now, e)
		return e
	}

	g.maybeRotateLocked(now)

	if in.BatteryLevel < g.batteryThresh {
		e := Emission{
			Pattern:    IoT,
			Priority:   Low,
			PacketSize: g.shapedPacketSizeLocked(IoT),
			Battery:    true,
		}
		g.recordSampleLocked(now, e)
		return e
	}

	priority := Normal
	if in.CongestionLevel > 0.8 {
		priority = Low
	}
	e := Emission{
		Pattern:    g.active,
		Priority:   priority,
		PacketSize: g.shapedPacketSizeLocked(g.active),
	}
	g.recordSampleLocked(now, e)
	return e
}

// shapedPacketSizeLocked draws a pre-padding packet size around the target
// size with the pattern's configured variance; the padding processor pads
// the result to a uniform wire size regardless. Caller holds g.mu.
func (g *Generator) shapedPacketSizeLocked(p Pattern) int {
	profile, ok := g.profiles[p]
	if !ok {
		return defaults.TargetPacketSize
	}
	size := float64(defaults.TargetPacketSize) + rand.NormFloat64()*profile.PacketSizeStdDev
	if size < 1 {
		size = 1
	}
	if size > defaults.TargetPacketSize {
		size = defaults.TargetPacketSize
	}
	return int(size)
}

// Rate returns the current target emission rate in packets/sec for the
// active pattern. Under the emergency path it returns twice maxCoverRate.
// Otherwise the rate starts from the pattern's base rate floored at
// minCoverRate, or from minCoverRate scaled by powerSaveFactor under the
// battery path, and is then capped by the utilization budget (which can take
// it below minCoverRate) and by maxCoverRate.
func (g *Generator) Rate(in CrossLayerInputs) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if in.AnonymitySetEstimate < g.minAnonymitySet {
		return g.maxCoverRate * 2
	}

	profile := g.profiles[g.active]
	rate := profile.BaseRate
	if rate < g.minCoverRate {
		rate = g.minCoverRate
	}
	if in.BatteryLevel < g.batteryThresh {
		rate = g.minCoverRate * g.powerSaveFactor
	}
	utilCap := g.targetUtil * in.AvailableBandwidthBps / float64(defaults.TargetPacketSize)
	if utilCap > 0 && rate > utilCap {
		rate = utilCap
	}
	if rate > g.maxCoverRate {
		rate = g.maxCoverRate
	}
	return rate
}

// ActivePattern reports the generator's currently selected pattern.
func (g *Generator) ActivePattern() Pattern {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}
