// Package flowctl implements the priority token-bucket rate limiter,
// per-connection AIMD flow controller, and backpressure signalling that
// gate outbound traffic before it reaches the path scheduler.
package flowctl

import (
	"sync"
	"time"

	"github.com/nyxmesh/nyx-core/internal/defaults"
)

// Class is a traffic priority class. Each class draws from its own bucket
// in addition to the shared global bucket.
type Class int

const (
	Control Class = iota
	HighPriority
	Normal
	LowPriority
	Background

	numClasses
)

func (c Class) String() string {
	switch c {
	case Control:
		return "control"
	case HighPriority:
		return "high_priority"
	case Normal:
		return "normal"
	case LowPriority:
		return "low_priority"
	case Background:
		return "background"
	default:
		return "unknown"
	}
}

// defaultClassWeight returns spec.md §4.G's default per-class weight.
func defaultClassWeight(c Class) float64 {
	switch c {
	case Control:
		return 1.0
	case HighPriority:
		return 0.8
	case Normal:
		return 0.5
	case LowPriority:
		return 0.2
	case Background:
		return 0.1
	default:
		return 0
	}
}

// bucket is a fractional token bucket refilled continuously from its last
// update instant.
type bucket struct {
	capacity   float64
	refillRate float64 // tokens/sec
	tokens     float64
	updatedAt  time.Time
}

func newBucket(capacity, refillRate float64, now time.Time) bucket {
	return bucket{capacity: capacity, refillRate: refillRate, tokens: capacity, updatedAt: now}
}

// refillLocked advances the bucket's tokens to now. Caller holds the
// manager's lock.
func (b *bucket) refillLocked(now time.Time) {
	if now.Before(b.updatedAt) {
		return
	}
	elapsed := now.Sub(b.updatedAt).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.updatedAt = now
}

// PriorityBuckets holds one global bucket plus one bucket per traffic
// class, sized and refilled per spec.md §4.G.
type PriorityBuckets struct {
	mu     sync.Mutex
	global bucket
	class  [numClasses]bucket
	weight [numClasses]float64
}

// NewPriorityBuckets constructs a bucket set with the given global burst
// capacity and refill rate (bytes and bytes/sec), using the default
// per-class weights.
func NewPriorityBuckets(maxBurst, globalRate float64, now time.Time) *PriorityBuckets {
	pb := &PriorityBuckets{global: newBucket(maxBurst, globalRate, now)}
	for c := Class(0); c < numClasses; c++ {
		w := defaultClassWeight(c)
		pb.weight[c] = w
		pb.class[c] = newBucket(maxBurst*w, globalRate*w, now)
	}
	return pb
}

// SetClassWeight reconfigures a class's bucket capacity and refill rate as
// a fraction of the global bucket's, preserving the current fill ratio.
func (pb *PriorityBuckets) SetClassWeight(c Class, weight float64, now time.Time) {
	if c < 0 || c >= numClasses {
		return
	}
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.global.refillLocked(now)
	b := &pb.class[c]
	b.refillLocked(now)
	ratio := 1.0
	if b.capacity > 0 {
		ratio = b.tokens / b.capacity
	}
	pb.weight[c] = weight
	b.capacity = pb.global.capacity * weight
	b.refillRate = pb.global.refillRate * weight
	b.tokens = b.capacity * ratio
}

// TryConsume attempts to draw n tokens from both the global bucket and the
// given class's bucket. It consumes from the global bucket first; if the
// class bucket then proves insufficient, the global consumption is
// refunded and false is returned (spec.md §4.G).
func (pb *PriorityBuckets) TryConsume(c Class, n float64, now time.Time) bool {
	if c < 0 || c >= numClasses || n < 0 {
		return false
	}
	pb.mu.Lock()
	defer pb.mu.Unlock()

	pb.global.refillLocked(now)
	if pb.global.tokens < n {
		return false
	}
	pb.global.tokens -= n

	b := &pb.class[c]
	b.refillLocked(now)
	if b.tokens < n {
		pb.global.tokens += n // refund
		return false
	}
	b.tokens -= n
	return true
}

// Refund returns n tokens to both the class bucket and the global bucket,
// undoing a prior successful TryConsume (e.g. when a later stage in the
// admission pipeline rejects the request after tokens were already
// consumed).
func (pb *PriorityBuckets) Refund(c Class, n float64) {
	if c < 0 || c >= numClasses || n <= 0 {
		return
	}
	pb.mu.Lock()
	defer pb.mu.Unlock()

	b := &pb.class[c]
	b.tokens += n
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	pb.global.tokens += n
	if pb.global.tokens > pb.global.capacity {
		pb.global.tokens = pb.global.capacity
	}
}

// Snapshot reports the current fractional token levels, for diagnostics.
type Snapshot struct {
	GlobalTokens float64
	ClassTokens  [numClasses]float64
}

// Snapshot returns the current bucket fill levels as of now.
func (pb *PriorityBuckets) Snapshot(now time.Time) Snapshot {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.global.refillLocked(now)
	var out Snapshot
	out.GlobalTokens = pb.global.tokens
	for c := Class(0); c < numClasses; c++ {
		pb.class[c].refillLocked(now)
		out.ClassTokens[c] = pb.class[c].tokens
	}
	return out
}

// DefaultPriorityBuckets constructs a bucket set sized from
// internal/defaults' MaxBurstSize and GlobalBandwidthLimit.
func DefaultPriorityBuckets(now time.Time) *PriorityBuckets {
	return NewPriorityBuckets(defaults.MaxBurstSize, defaults.GlobalBandwidthLimit, now)
}
