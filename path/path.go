// Package path implements the multipath scheduler (component D) and its
// integrated path-quality tracker (component E): a registry of paths, each
// carrying EWMA RTT/loss/variance statistics, a dynamic weight, and a
// classification, selected from by one of several pluggable policies.
package path

import (
	"sort"
	"sync"
	"time"
)

// ID identifies one physical path.
type ID uint32

// Classification buckets a path's observed RTT into a coarse quality tier.
type Classification int

const (
	VeryLow Classification = iota
	Low
	Medium
	High
	VeryHigh
	Degraded
)

func (c Classification) String() string {
	switch c {
	case VeryLow:
		return "very_low"
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case VeryHigh:
		return "very_high"
	case Degraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// maxSamples bounds the recent-sample ring used for percentiles and trend.
const maxSamples = 100

// Path is one scheduling candidate: its identity, its live quality
// statistics, and the availability the scheduler selects against. All
// mutable state is guarded by mu; reads for selection take a consistent
// snapshot under a single lock acquisition.
type Path struct {
	id ID

	mu sync.Mutex

	available bool
	failed    bool

	baseWeight float64
	weight     float64

	rttEWMA      float64 // milliseconds
	rttMin       float64
	rttMax       float64
	rttVariance  float64
	jitterEWMA   float64
	lastRTT      time.Duration
	rttClass     Classification

	lossEWMA     float64 // 0..1
	lossPenalty  float64 // multiplicative factor on weight, floor 0.1
	packetsSent  uint64
	packetsLost  uint64

	bandwidthEstimate float64 // bytes/sec
	congestion        float64 // 0..1

	samples []float64 // recent RTT samples, milliseconds, ring of maxSamples

	reorderedCount uint64
	expiredCount   uint64
}

// NewPath constructs a path with the given base weight (used by
// weighted-round-robin and the dynamic weight formula) and an initial
// available state.
func NewPath(id ID, baseWeight float64) *Path {
	if baseWeight <= 0 {
		baseWeight = 1.0
	}
	return &Path{
		id:          id,
		available:   true,
		baseWeight:  baseWeight,
		weight:      baseWeight,
		lossPenalty: 1.0,
		rttMin:      -1,
	}
}

// ID returns the path's identifier.
func (p *Path) ID() ID { return p.id }

// Snapshot is an immutable, consistent view of a path's state for selection
// and reporting.
type Snapshot struct {
	ID          ID
	Available   bool
	Failed      bool
	Weight      float64
	RTTEWMA     float64
	LossEWMA    float64
	Bandwidth   float64
	Congestion  float64
	Class       Classification
}

// Snapshot returns a consistent point-in-time view of the path's state.
func (p *Path) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		ID:         p.id,
		Available:  p.available && !p.failed,
		Failed:     p.failed,
		Weight:     p.weight,
		RTTEWMA:    p.rttEWMA,
		LossEWMA:   p.lossEWMA,
		Bandwidth:  p.bandwidthEstimate,
		Congestion: p.congestion,
		Class:      p.rttClass,
	}
}

// percentile returns the p-th percentile (0..100) of a sorted copy of the
// recent-sample ring. Returns 0 if there are no samples.
func (p *Path) percentile(pct float64) float64 {
	if len(p.samples) == 0 {
		return 0
	}
	sorted := append([]float64(nil), p.samples...)
	sort.Float64s(sorted)
	idx := int(pct / 100 * float64(len(sorted)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// trend returns the slope of a simple linear regression over the recent
// RTT samples (milliseconds per sample index), a crude but cheap measure of
// whether a path is getting better or worse.
func (p *Path) trend() float64 {
	n := len(p.samples)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range p.samples {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	nf := float64(n)
	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (nf*sumXY - sumX*sumY) / denom
}

func (p *Path) pushSample(rttMS float64) {
	p.samples = append(p.samples, rttMS)
	if len(p.samples) > maxSamples {
		p.samples = p.samples[len(p.samples)-maxSamples:]
	}
}
