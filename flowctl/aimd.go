package flowctl

import (
	"sync"
	"time"

	"github.com/nyxmesh/nyx-core/internal/defaults"
)

// CongestionMode is the AIMD controller's current growth regime.
type CongestionMode int

const (
	SlowStart CongestionMode = iota
	CongestionAvoidance
)

func (m CongestionMode) String() string {
	if m == SlowStart {
		return "slow_start"
	}
	return "congestion_avoidance"
}

// FlowController is a per-connection AIMD window over bytes-in-flight, per
// spec.md §4.G: slow-start grows by acked bytes until ssthresh,
// congestion-avoidance grows by one MSS per window, loss halves the
// window, and ECN shrinks it to 3/4 (ignored within the most recent RTT).
type FlowController struct {
	mu sync.Mutex

	window        float64
	minWindow     float64
	maxWindow     float64
	ssthresh      float64
	bytesInFlight float64
	mode          CongestionMode

	rttSamples       []time.Duration
	lastCongestionAt time.Time
	lastRTT          time.Duration
}

// NewFlowController constructs a controller with the given initial window
// and [min,max] bounds, starting in slow-start with ssthresh at max.
func NewFlowController(initial, min, max float64) *FlowController {
	if min <= 0 {
		min = defaults.MinWindow
	}
	if max < min {
		max = min
	}
	if initial < min {
		initial = min
	}
	if initial > max {
		initial = max
	}
	return &FlowController{
		window:    initial,
		minWindow: min,
		maxWindow: max,
		ssthresh:  max,
		mode:      SlowStart,
	}
}

// NewDefaultFlowController constructs a controller sized from
// internal/defaults' window bounds.
func NewDefaultFlowController() *FlowController {
	return NewFlowController(defaults.InitialWindow, defaults.MinWindow, defaults.MaxWindow)
}

// Window reports the current congestion window in bytes.
func (f *FlowController) Window() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.window
}

// Mode reports the controller's current growth regime.
func (f *FlowController) Mode() CongestionMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// BytesInFlight reports the number of unacknowledged bytes currently
// accounted against the window.
func (f *FlowController) BytesInFlight() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bytesInFlight
}

// CanSend reports whether n more bytes may be sent without exceeding the
// current window.
func (f *FlowController) CanSend(n float64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bytesInFlight+n <= f.window
}

// OnSend accounts n bytes as now in flight.
func (f *FlowController) OnSend(n float64) {
	f.mu.Lock()
	f.bytesInFlight += n
	f.mu.Unlock()
}

// OnAck accounts ackedBytes as delivered, growing the window per the
// controller's current mode, and records the RTT sample observed for the
// acked segment.
func (f *FlowController) OnAck(ackedBytes float64, rtt time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.bytesInFlight -= ackedBytes
	if f.bytesInFlight < 0 {
		f.bytesInFlight = 0
	}

	switch f.mode {
	case SlowStart:
		f.window += ackedBytes
		if f.window >= f.ssthresh {
			f.mode = CongestionAvoidance
		}
	case CongestionAvoidance:
		if f.window > 0 {
			f.window += defaults.MSS * (ackedBytes / f.window)
		}
	}
	f.clampLocked()

	f.lastRTT = rtt
	f.rttSamples = append(f.rttSamples, rtt)
	if len(f.rttSamples) > 100 {
		f.rttSamples = f.rttSamples[len(f.rttSamples)-100:]
	}
}

// OnLoss reacts to a detected loss: ssthresh = window/2, window = ssthresh,
// and the controller re-enters slow-start.
func (f *FlowController) OnLoss(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ssthresh = f.window / 2
	f.window = f.ssthresh
	f.mode = SlowStart
	f.clampLocked()
	f.lastCongestionAt = now
}

// OnECN reacts to an ECN-marked ack: ssthresh = 3*window/4, window =
// ssthresh. A mark arriving within the most recent RTT of the last
// congestion response is ignored, since it likely reflects the same
// congestion event the prior response already handled.
func (f *FlowController) OnECN(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.lastCongestionAt.IsZero() && f.lastRTT > 0 && now.Sub(f.lastCongestionAt) < f.lastRTT {
		return
	}
	f.ssthresh = 3 * f.window / 4
	f.window = f.ssthresh
	f.clampLocked()
	f.lastCongestionAt = now
}

func (f *FlowController) clampLocked() {
	if f.window < f.minWindow {
		f.window = f.minWindow
	}
	if f.window > f.maxWindow {
		f.window = f.maxWindow
	}
	if f.ssthresh < f.minWindow {
		f.ssthresh = f.minWindow
	}
}
