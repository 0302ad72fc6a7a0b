package reorder

import (
	"testing"
	"time"
)

func TestInOrderDeliveryReleasesImmediately(t *testing.T) {
	b := NewBuffer(10)
	now := time.Unix(0, 0)
	out := b.Add(0, []byte("a"), now)
	if len(out) != 1 || out[0].Seq != 0 || out[0].OutOfOrder {
		t.Fatalf("out = %+v, want a single in-order delivery of seq 0", out)
	}
	out = b.Add(1, []byte("b"), now)
	if len(out) != 1 || out[0].Seq != 1 {
		t.Fatalf("out = %+v, want a single in-order delivery of seq 1", out)
	}
}

func TestOutOfOrderBuffersUntilGapFills(t *testing.T) {
	b := NewBuffer(10)
	now := time.Unix(0, 0)

	out := b.Add(1, []byte("b"), now)
	if len(out) != 0 {
		t.Fatalf("out = %+v, want nothing released while seq 0 is missing", out)
	}
	if b.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", b.Len())
	}

	out = b.Add(0, []byte("a"), now)
	if len(out) != 2 || out[0].Seq != 0 || out[1].Seq != 1 {
		t.Fatalf("out = %+v, want seq 0 then seq 1 released together", out)
	}
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after draining", b.Len())
	}
}

func TestForceDrainOnOverflowReleasesLowestHalf(t *testing.T) {
	capacity := 10
	b := NewBuffer(capacity)
	now := time.Unix(0, 0)

	// Never deliver seq 0 or seq 6, so that after the lowest half
	// force-drains (1..5), the remaining pending entries (7..11, 21) are
	// not themselves contiguous with the new nextExpected (6).
	var lastOut []Delivery
	for i, seq := range []uint64{1, 2, 3, 4, 5, 7, 8, 9, 10, 11, 21} {
		out := b.Add(seq, []byte("x"), now)
		if i < 10 {
			if len(out) != 0 {
				t.Fatalf("seq %d: out = %+v, want nothing released before overflow", seq, out)
			}
			continue
		}
		lastOut = out
	}
	if len(lastOut) == 0 {
		t.Fatal("expected a force-drain on overflow")
	}
	if got := b.ReorderedCount(); got != uint64(capacity/2) {
		t.Fatalf("ReorderedCount() = %d, want %d", got, capacity/2)
	}
	for _, d := range lastOut {
		if !d.OutOfOrder {
			t.Errorf("delivery %+v should be marked OutOfOrder", d)
		}
	}
	wantSeqs := []uint64{1, 2, 3, 4, 5}
	if len(lastOut) != len(wantSeqs) {
		t.Fatalf("released %d entries, want %d (the lowest half)", len(lastOut), len(wantSeqs))
	}
	for i, d := range lastOut {
		if d.Seq != wantSeqs[i] {
			t.Errorf("released[%d].Seq = %d, want %d", i, d.Seq, wantSeqs[i])
		}
	}
	if b.NextExpected() != 6 {
		t.Fatalf("NextExpected() = %d, want 6", b.NextExpected())
	}
}

func TestTickAgesOutStaleEntries(t *testing.T) {
	b := NewBuffer(10)
	b.SetTimeout(150 * time.Millisecond)
	start := time.Unix(0, 0)

	b.Add(1, []byte("b"), start)
	if out := b.Tick(start.Add(10 * time.Millisecond)); len(out) != 0 {
		t.Fatalf("out = %+v, want nothing released before the timeout elapses", out)
	}

	out := b.Tick(start.Add(160 * time.Millisecond))
	if len(out) != 1 || out[0].Seq != 1 || !out[0].OutOfOrder {
		t.Fatalf("out = %+v, want seq 1 aged out of order", out)
	}
	if b.NextExpected() != 2 {
		t.Fatalf("NextExpected() = %d, want 2", b.NextExpected())
	}
}

func TestDuplicateAndStaleSeqIgnored(t *testing.T) {
	b := NewBuffer(10)
	now := time.Unix(0, 0)
	b.Add(0, []byte("a"), now)
	b.Add(1, []byte("b"), now)
	// seq 0 already delivered; a duplicate or stale arrival is a no-op.
	out := b.Add(0, []byte("a-dup"), now)
	if len(out) != 0 {
		t.Fatalf("out = %+v, want nothing released for a stale duplicate", out)
	}
}

func TestSetTimeoutEnforcesFloor(t *testing.T) {
	b := NewBuffer(10)
	b.SetTimeout(1 * time.Millisecond)
	if b.timeout != DefaultTimeout {
		t.Fatalf("timeout = %v, want the %v floor enforced", b.timeout, DefaultTimeout)
	}
}
