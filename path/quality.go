package path

import "time"

const (
	// rttEWMAAlpha is the weight given to the previous EWMA RTT estimate
	// (spec: α=7/8), the same smoothing constant TCP's SRTT estimator uses.
	rttEWMAAlpha = 7.0 / 8.0

	// lossEWMAAlpha is the weight given to the previous EWMA loss estimate
	// (spec: α=0.9); a fresh loss pushes the estimate toward 1, a success
	// pushes it toward 0.
	lossEWMAAlpha = 0.9

	lossPenaltyDecay   = 0.95 // multiplied in on a loss observation
	lossPenaltyFloor   = 0.1
	lossPenaltyHealGap = 0.05 // fraction of the remaining gap to 1.0 healed per success

	// Adaptive classification thresholds, expressed as a ratio of EWMA RTT
	// to the path's observed minimum RTT.
	classVeryLowRatio = 1.2
	classLowRatio     = 1.5
	classMediumRatio  = 2.5
	classHighRatio    = 4.0
	degradedRatio     = 6.0
)

// observeRTT records a fresh RTT sample: updates the EWMA, running
// min/max, variance, jitter, recent-sample ring, classification, and
// dynamic weight.
func (p *Path) observeRTT(rtt time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ms := float64(rtt) / float64(time.Millisecond)
	prevEWMA := p.rttEWMA
	if p.rttMin < 0 {
		// First sample: seed every running statistic from it.
		p.rttEWMA = ms
		p.rttMin = ms
		p.rttMax = ms
	} else {
		p.rttEWMA = rttEWMAAlpha*p.rttEWMA + (1-rttEWMAAlpha)*ms
		if ms < p.rttMin {
			p.rttMin = ms
		}
		if ms > p.rttMax {
			p.rttMax = ms
		}
	}

	jitterSample := ms - prevEWMA
	if jitterSample < 0 {
		jitterSample = -jitterSample
	}
	p.jitterEWMA = rttEWMAAlpha*p.jitterEWMA + (1-rttEWMAAlpha)*jitterSample

	delta := ms - p.rttEWMA
	p.rttVariance = rttEWMAAlpha*p.rttVariance + (1-rttEWMAAlpha)*delta*delta

	p.lastRTT = rtt
	p.pushSample(ms)
	p.rttClass = classify(p.rttEWMA, p.rttMin)
	p.recomputeWeightLocked()
}

// observeLoss records a lost packet: bumps the sent/lost counters, pushes
// the loss EWMA toward 1, and decays the loss penalty.
func (p *Path) observeLoss() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.packetsSent++
	p.packetsLost++
	p.lossEWMA = lossEWMAAlpha*p.lossEWMA + (1-lossEWMAAlpha)*1.0
	p.lossPenalty *= lossPenaltyDecay
	if p.lossPenalty < lossPenaltyFloor {
		p.lossPenalty = lossPenaltyFloor
	}
	p.recomputeWeightLocked()
}

// observeSuccess records a successfully delivered packet: bumps the sent
// counter, pushes the loss EWMA toward 0, and slowly heals the loss
// penalty back toward 1.0.
func (p *Path) observeSuccess() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.packetsSent++
	p.lossEWMA = lossEWMAAlpha * p.lossEWMA
	p.lossPenalty += (1 - p.lossPenalty) * lossPenaltyHealGap
	if p.lossPenalty > 1.0 {
		p.lossPenalty = 1.0
	}
	p.recomputeWeightLocked()
}

// observeBandwidth updates the path's estimated bandwidth (bytes/sec) and
// congestion level (0..1), both fed by the caller from external RTT/ack
// accounting, then recomputes the dynamic weight.
func (p *Path) observeBandwidth(bytesPerSec, congestion float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bandwidthEstimate = bytesPerSec
	if congestion < 0 {
		congestion = 0
	}
	if congestion > 1 {
		congestion = 1
	}
	p.congestion = congestion
	p.recomputeWeightLocked()
}

// recomputeWeightLocked applies weight = base × rtt_factor × loss_penalty ×
// (1 − congestion), lower-bounded at 0.1×base. Must be called with p.mu
// held.
func (p *Path) recomputeWeightLocked() {
	rttFactor := 1.0 / (1.0 + p.rttEWMA/100.0)
	w := p.baseWeight * rttFactor * p.lossPenalty * (1 - p.congestion)
	floor := 0.1 * p.baseWeight
	if w < floor {
		w = floor
	}
	p.weight = w
}

// classify maps an EWMA RTT to a coarse quality tier, anchored to the
// path's observed minimum RTT. A path whose EWMA RTT balloons well past its
// minimum is Degraded regardless of where it would otherwise classify.
func classify(ewmaMS, minMS float64) Classification {
	if minMS <= 0 {
		minMS = ewmaMS
	}
	if minMS <= 0 {
		return VeryLow
	}
	ratio := ewmaMS / minMS
	switch {
	case ratio > degradedRatio:
		return Degraded
	case ratio <= classVeryLowRatio:
		return VeryLow
	case ratio <= classLowRatio:
		return Low
	case ratio <= classMediumRatio:
		return Medium
	case ratio <= classHighRatio:
		return High
	default:
		return VeryHigh
	}
}

// markFailed marks the path unavailable for selection.
func (p *Path) markFailed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = true
}

// markRecovered clears a previously failed path's unavailability.
func (p *Path) markRecovered() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = false
}

// setAvailable toggles whether the path currently participates in
// selection, independent of the failed flag.
func (p *Path) setAvailable(available bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.available = available
}
