package flowctl

import (
	"sync"
	"time"

	"github.com/nyxmesh/nyx-core/internal/defaults"
)

// queueState tracks one named queue's configured capacity and current
// occupancy.
type queueState struct {
	maxSize int
	size    int
}

func (q queueState) utilization() float64 {
	if q.maxSize <= 0 {
		return 0
	}
	return float64(q.size) / float64(q.maxSize)
}

// Backpressure tracks per-queue utilization and derives a backpressure
// level in (0,1] once a queue's utilization crosses threshold, per
// spec.md §4.G. The level decays on every update that falls back under
// threshold.
type Backpressure struct {
	mu        sync.Mutex
	threshold float64
	queues    map[string]*queueState
	level     map[string]float64
}

// NewBackpressure constructs a controller with the given utilization
// threshold (0 uses the default).
func NewBackpressure(threshold float64) *Backpressure {
	if threshold <= 0 || threshold > 1 {
		threshold = defaults.BackpressureThreshold
	}
	return &Backpressure{
		threshold: threshold,
		queues:    make(map[string]*queueState),
		level:     make(map[string]float64),
	}
}

// Register declares a named queue with the given capacity. Re-registering
// an existing name resets its occupancy.
func (bp *Backpressure) Register(name string, maxSize int) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	bp.queues[name] = &queueState{maxSize: maxSize}
	bp.level[name] = 0
}

// Update sets a queue's current size and recomputes its backpressure
// level: it climbs toward 1 once utilization exceeds threshold, and decays
// back toward 0 otherwise.
func (bp *Backpressure) Update(name string, size int) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	q, ok := bp.queues[name]
	if !ok {
		q = &queueState{maxSize: size}
		bp.queues[name] = q
	}
	q.size = size
	u := q.utilization()

	level := bp.level[name]
	if u > bp.threshold {
		over := (u - bp.threshold) / (1 - bp.threshold)
		if over > 1 {
			over = 1
		}
		if over > level {
			level = over
		}
	} else {
		level *= 0.5
		if level < 1e-6 {
			level = 0
		}
	}
	bp.level[name] = level
}

// Level reports the named queue's current backpressure level in [0,1].
func (bp *Backpressure) Level(name string) float64 {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.level[name]
}

// Delay returns the proposed exponential delay for the named queue's
// current level: level²·100ms, capped at 1s. A level of 0 proposes no
// delay.
func (bp *Backpressure) Delay(name string) time.Duration {
	bp.mu.Lock()
	level := bp.level[name]
	bp.mu.Unlock()

	if level <= 0 {
		return 0
	}
	d := time.Duration(level * level * float64(defaults.BackpressureDelayUnit))
	if d > defaults.MaxBackpressureDelay {
		d = defaults.MaxBackpressureDelay
	}
	return d
}
