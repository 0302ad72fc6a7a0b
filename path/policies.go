package path

// Policy selects a path from a set of candidate snapshots.
type Policy int

const (
	RoundRobin Policy = iota
	WeightedRoundRobin
	LatencyFirst
	LossAware
	BandwidthFirst
	Hybrid
	Adaptive
)

func (p Policy) String() string {
	switch p {
	case RoundRobin:
		return "round_robin"
	case WeightedRoundRobin:
		return "weighted_round_robin"
	case LatencyFirst:
		return "latency_first"
	case LossAware:
		return "loss_aware"
	case BandwidthFirst:
		return "bandwidth_first"
	case Hybrid:
		return "hybrid"
	case Adaptive:
		return "adaptive"
	default:
		return "unknown"
	}
}

// HybridWeights are the convex-combination weights Hybrid normalizes and
// maximizes over (lower-better for RTT/loss, higher-better for bandwidth).
type HybridWeights struct {
	Latency   float64
	Loss      float64
	Bandwidth float64
}

// failoverReliabilityThreshold is the minimum (1 - lossEWMA) a path must
// clear to be eligible for Latency-first selection.
const failoverReliabilityThreshold = 0.5

// bandwidthCongestionThreshold is the congestion ceiling a path must stay
// under to be eligible for Bandwidth-first selection.
const bandwidthCongestionThreshold = 0.8

// adaptiveLossThreshold and adaptiveCongestionThreshold gate Adaptive's
// choice among Loss-aware / Latency-first / Hybrid.
const (
	adaptiveLossThreshold       = 0.1
	adaptiveCongestionThreshold = 0.6
)

func selectRoundRobin(paths []Snapshot, counter *uint64) (ID, bool) {
	if len(paths) == 0 {
		return 0, false
	}
	idx := int(*counter % uint64(len(paths)))
	*counter++
	return paths[idx].ID, true
}

// buildWeightedSlots expands each path's weight into an integer slot count
// (round(weight · S / maxWeight), clamped to [1, 5000], S=1000) and flattens
// them into one cyclic slot list, so over one full cycle each path's share
// approximates its weight ratio within integer-rounding error.
func buildWeightedSlots(paths []Snapshot) []ID {
	if len(paths) == 0 {
		return nil
	}
	maxWeight := paths[0].Weight
	for _, p := range paths[1:] {
		if p.Weight > maxWeight {
			maxWeight = p.Weight
		}
	}
	if maxWeight <= 0 {
		maxWeight = 1
	}
	const scale = 1000.0
	slots := make([]ID, 0, len(paths)*8)
	for _, p := range paths {
		count := int(p.Weight/maxWeight*scale + 0.5)
		if count < 1 {
			count = 1
		}
		if count > 5000 {
			count = 5000
		}
		for i := 0; i < count; i++ {
			slots = append(slots, p.ID)
		}
	}
	return slots
}

func selectWeightedRoundRobin(slots []ID, counter *uint64) (ID, bool) {
	if len(slots) == 0 {
		return 0, false
	}
	idx := int(*counter % uint64(len(slots)))
	*counter++
	return slots[idx], true
}

func selectLatencyFirst(paths []Snapshot) (ID, bool) {
	best := ID(0)
	bestRTT := 0.0
	found := false
	for _, p := range paths {
		if 1-p.LossEWMA < failoverReliabilityThreshold {
			continue
		}
		if !found || p.RTTEWMA < bestRTT {
			best, bestRTT, found = p.ID, p.RTTEWMA, true
		}
	}
	return best, found
}

func selectLossAware(paths []Snapshot) (ID, bool) {
	best := ID(0)
	bestLoss := 0.0
	found := false
	for _, p := range paths {
		if !found || p.LossEWMA < bestLoss {
			best, bestLoss, found = p.ID, p.LossEWMA, true
		}
	}
	return best, found
}

func selectBandwidthFirst(paths []Snapshot) (ID, bool) {
	best := ID(0)
	bestBW := 0.0
	found := false
	for _, p := range paths {
		if p.Congestion >= bandwidthCongestionThreshold {
			continue
		}
		if !found || p.Bandwidth > bestBW {
			best, bestBW, found = p.ID, p.Bandwidth, true
		}
	}
	return best, found
}

// normalize scales values into [0,1]; if higherBetter is false the scale is
// inverted so that a lower raw value produces a higher normalized score.
func normalize(values []float64, higherBetter bool) []float64 {
	if len(values) == 0 {
		return nil
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(values))
	span := max - min
	for i, v := range values {
		var n float64
		if span == 0 {
			n = 1
		} else {
			n = (v - min) / span
		}
		if !higherBetter {
			n = 1 - n
		}
		out[i] = n
	}
	return out
}

func selectHybrid(paths []Snapshot, w HybridWeights) (ID, bool) {
	if len(paths) == 0 {
		return 0, false
	}
	rtts := make([]float64, len(paths))
	losses := make([]float64, len(paths))
	bws := make([]float64, len(paths))
	for i, p := range paths {
		rtts[i] = p.RTTEWMA
		losses[i] = p.LossEWMA
		bws[i] = p.Bandwidth
	}
	nRTT := normalize(rtts, false)
	nLoss := normalize(losses, false)
	nBW := normalize(bws, true)

	best := ID(0)
	bestScore := -1.0
	found := false
	for i, p := range paths {
		score := w.Latency*nRTT[i] + w.Loss*nLoss[i] + w.Bandwidth*nBW[i]
		if !found || score > bestScore {
			best, bestScore, found = p.ID, score, true
		}
	}
	return best, found
}

// globalStats summarizes the candidate set for Adaptive's policy switch.
func globalStats(paths []Snapshot) (avgLoss, avgCongestion float64) {
	if len(paths) == 0 {
		return 0, 0
	}
	var sumLoss, sumCongestion float64
	for _, p := range paths {
		sumLoss += p.LossEWMA
		sumCongestion += p.Congestion
	}
	n := float64(len(paths))
	return sumLoss / n, sumCongestion / n
}

// selectAdaptive observes aggregate loss and congestion across the
// candidate set and switches among Loss-aware / Latency-first / Hybrid.
func selectAdaptive(paths []Snapshot, hybridWeights HybridWeights) (ID, bool) {
	avgLoss, avgCongestion := globalStats(paths)
	switch {
	case avgLoss > adaptiveLossThreshold:
		return selectLossAware(paths)
	case avgCongestion > adaptiveCongestionThreshold:
		return selectHybrid(paths, hybridWeights)
	default:
		return selectLatencyFirst(paths)
	}
}
