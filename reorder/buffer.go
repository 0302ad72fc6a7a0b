// Package reorder implements the per-path reordering buffer (component F):
// an ordered map keyed by sequence number that drains contiguous prefixes as
// they arrive, force-drains under overflow, and ages out stale entries on a
// periodic tick.
package reorder

import (
	"sort"
	"sync"
	"time"
)

// DefaultCapacity bounds the number of out-of-order entries a buffer holds
// before it starts force-draining.
const DefaultCapacity = 100

// DefaultTimeout is the floor below which the scheduler-fed timeout never
// drops (spec.md §4.F: max(RTT_diff_ms + 2·jitter_ms, 100ms)).
const DefaultTimeout = 100 * time.Millisecond

// Delivery is one plaintext payload released by the buffer, tagged with
// whether it arrived in order or was force/age-drained out of order.
type Delivery struct {
	Seq        uint64
	Data       []byte
	OutOfOrder bool
}

type entry struct {
	data      []byte
	arrivedAt time.Time
}

// Buffer reorders inbound records for a single path back into sequence
// order before releasing them to the caller.
type Buffer struct {
	mu sync.Mutex

	capacity int
	timeout  time.Duration

	nextExpected uint64
	pending      map[uint64]entry

	reorderedCount uint64
}

// NewBuffer constructs a buffer with the given capacity (<=0 uses
// DefaultCapacity) starting at nextExpected sequence 0.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		capacity: capacity,
		timeout:  DefaultTimeout,
		pending:  make(map[uint64]entry),
	}
}

// SetTimeout updates the staleness timeout, as fed by the path scheduler's
// RTT/jitter observations (max(RTT_diff_ms + 2·jitter_ms, 100ms) is the
// caller's responsibility to compute).
func (b *Buffer) SetTimeout(d time.Duration) {
	if d < DefaultTimeout {
		d = DefaultTimeout
	}
	b.mu.Lock()
	b.timeout = d
	b.mu.Unlock()
}

// ReorderedCount reports how many deliveries have been released out of
// order (force-drained or age-drained) over the buffer's lifetime.
func (b *Buffer) ReorderedCount() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reorderedCount
}

// Add inserts a received record and returns any contiguous run (and, on
// overflow, any force-drained entries) that can now be released, in
// ascending sequence order.
func (b *Buffer) Add(seq uint64, data []byte, now time.Time) []Delivery {
	b.mu.Lock()
	defer b.mu.Unlock()

	if seq < b.nextExpected {
		// Already delivered or superseded by a force-drain; duplicate or
		// stale data, discard silently.
		return nil
	}
	if seq == b.nextExpected {
		out := []Delivery{{Seq: seq, Data: data}}
		b.nextExpected++
		out = append(out, b.drainContiguousLocked()...)
		return out
	}

	b.pending[seq] = entry{data: data, arrivedAt: now}
	if len(b.pending) > b.capacity {
		return b.forceDrainLocked()
	}
	return nil
}

// drainContiguousLocked releases every buffered entry starting at
// nextExpected with no gap. Must be called with b.mu held.
func (b *Buffer) drainContiguousLocked() []Delivery {
	var out []Delivery
	for {
		e, ok := b.pending[b.nextExpected]
		if !ok {
			break
		}
		delete(b.pending, b.nextExpected)
		out = append(out, Delivery{Seq: b.nextExpected, Data: e.data})
		b.nextExpected++
	}
	return out
}

// forceDrainLocked releases the lowest-sequence capacity/2 pending entries
// out of order and advances nextExpected past the largest of them, per
// spec.md §4.F. Must be called with b.mu held.
func (b *Buffer) forceDrainLocked() []Delivery {
	seqs := make([]uint64, 0, len(b.pending))
	for seq := range b.pending {
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })

	n := b.capacity / 2
	if n < 1 {
		n = 1
	}
	if n > len(seqs) {
		n = len(seqs)
	}

	out := make([]Delivery, 0, n)
	var maxDrained uint64
	for i := 0; i < n; i++ {
		seq := seqs[i]
		e := b.pending[seq]
		delete(b.pending, seq)
		out = append(out, Delivery{Seq: seq, Data: e.data, OutOfOrder: true})
		if seq > maxDrained {
			maxDrained = seq
		}
	}
	b.reorderedCount += uint64(len(out))

	if maxDrained+1 > b.nextExpected {
		b.nextExpected = maxDrained + 1
	}
	out = append(out, b.drainContiguousLocked()...)
	return out
}

// Tick ages out entries older than the configured timeout, releasing them
// out of order and advancing nextExpected past the newest one aged out.
func (b *Buffer) Tick(now time.Time) []Delivery {
	b.mu.Lock()
	defer b.mu.Unlock()

	var stale []uint64
	for seq, e := range b.pending {
		if now.Sub(e.arrivedAt) >= b.timeout {
			stale = append(stale, seq)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i] < stale[j] })

	out := make([]Delivery, 0, len(stale))
	var maxAged uint64
	for _, seq := range stale {
		e := b.pending[seq]
		delete(b.pending, seq)
		out = append(out, Delivery{Seq: seq, Data: e.data, OutOfOrder: true})
		if seq > maxAged {
			maxAged = seq
		}
	}
	b.reorderedCount += uint64(len(out))
	if maxAged+1 > b.nextExpected {
		b.nextExpected = maxAged + 1
	}
	out = append(out, b.drainContiguousLocked()...)
	return out
}

// Len reports the number of entries currently buffered out of order.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// NextExpected reports the next in-order sequence number the buffer is
// waiting for.
func (b *Buffer) NextExpected() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nextExpected
}
