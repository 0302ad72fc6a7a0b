package cover

import (
	"math"
	"time"
)

// anonymityKFactor weights the rate's contribution to the estimated
// anonymity-set size (spec.md §4.I: current set ≈ active streams + k·rate).
const anonymityKFactor = 4.0

type anonymitySample struct {
	at       time.Time
	pattern  Pattern
	priority Priority
}

// recordSampleLocked appends a sample for the anonymity assessment,
// bounding the history to sampleHistory entries. Caller holds g.mu.
func (g *Generator) recordSampleLocked(now time.Time, e Emission) {
	g.samples = append(g.samples, anonymitySample{at: now, pattern: e.Pattern, priority: e.Priority})
	if len(g.samples) > g.sampleHistory {
		g.samples = g.samples[len(g.samples)-g.sampleHistory:]
	}
}

// Assessment is a periodic anonymity-set evaluation.
type Assessment struct {
	EstimatedSetSize float64
	ResistanceScore  float64
	MixingScore      float64
}

// Assess computes the current anonymity-set estimate, a resistance score
// derived from pattern diversity and timing variance across recent
// samples, and a mixing score from the unique-pattern count over the
// recorded history.
func (g *Generator) Assess(in CrossLayerInputs, rate float64) Assessment {
	g.mu.Lock()
	defer g.mu.Unlock()

	setSize := float64(in.ActiveStreamCount) + anonymityKFactor*rate

	seen := make(map[Pattern]struct{})
	var gaps []float64
	var prev time.Time
	for _, s := range g.samples {
		seen[s.pattern] = struct{}{}
		if !prev.IsZero() {
			gaps = append(gaps, s.at.Sub(prev).Seconds())
		}
		prev = s.at
	}
	diversity := float64(len(seen)) / float64(numPatterns)

	variance := 0.0
	if len(gaps) > 1 {
		mean := 0.0
		for _, gap := range gaps {
			mean += gap
		}
		mean /= float64(len(gaps))
		for _, gap := range gaps {
			variance += (gap - mean) * (gap - mean)
		}
		variance /= float64(len(gaps))
	}
	timingScore := math.Min(1.0, variance/10.0)

	resistance := 0.5*diversity + 0.5*timingScore
	mixing := diversity

	return Assessment{
		EstimatedSetSize: setSize,
		ResistanceScore:  resistance,
		MixingScore:      mixing,
	}
}
