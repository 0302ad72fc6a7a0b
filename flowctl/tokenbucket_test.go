package flowctl

import (
	"testing"
	"time"
)

func TestTryConsumeDrawsFromGlobalAndClass(t *testing.T) {
	now := time.Unix(0, 0)
	pb := NewPriorityBuckets(1000, 100, now)

	if !pb.TryConsume(Control, 100, now) {
		t.Fatal("expected the first consume to succeed")
	}
	snap := pb.Snapshot(now)
	if snap.GlobalTokens != 900 {
		t.Fatalf("GlobalTokens = %v, want 900", snap.GlobalTokens)
	}
	if snap.ClassTokens[Control] != 900 {
		t.Fatalf("ClassTokens[Control] = %v, want 900 (Control's weight is 1.0)", snap.ClassTokens[Control])
	}
}

func TestTryConsumeRefundsGlobalWhenClassInsufficient(t *testing.T) {
	now := time.Unix(0, 0)
	pb := NewPriorityBuckets(1000, 100, now)

	// Background's weight is 0.1, so its bucket only holds 100 tokens.
	if pb.TryConsume(Background, 500, now) {
		t.Fatal("expected the draw to fail: it exceeds Background's bucket")
	}
	snap := pb.Snapshot(now)
	if snap.GlobalTokens != 1000 {
		t.Fatalf("GlobalTokens = %v, want 1000 (refunded after the class bucket rejected the draw)", snap.GlobalTokens)
	}
}

func TestBucketsRefillOverTime(t *testing.T) {
	now := time.Unix(0, 0)
	pb := NewPriorityBuckets(1000, 100, now)
	pb.TryConsume(Control, 1000, now)

	later := now.Add(5 * time.Second)
	snap := pb.Snapshot(later)
	if snap.GlobalTokens <= 0 {
		t.Fatalf("GlobalTokens = %v, want growth after 5s at 100 tokens/sec", snap.GlobalTokens)
	}
}

func TestRefillNeverExceedsCapacity(t *testing.T) {
	now := time.Unix(0, 0)
	pb := NewPriorityBuckets(1000, 100, now)
	later := now.Add(1 * time.Hour)
	snap := pb.Snapshot(later)
	if snap.GlobalTokens != 1000 {
		t.Fatalf("GlobalTokens = %v, want capped at capacity 1000", snap.GlobalTokens)
	}
}

func TestRefundRestoresClassAndGlobalTokens(t *testing.T) {
	now := time.Unix(0, 0)
	pb := NewPriorityBuckets(1000, 100, now)
	pb.TryConsume(Normal, 200, now)
	pb.Refund(Normal, 200)
	snap := pb.Snapshot(now)
	if snap.GlobalTokens != 1000 {
		t.Fatalf("GlobalTokens = %v, want 1000 after refund", snap.GlobalTokens)
	}
	if snap.ClassTokens[Normal] != 500 {
		t.Fatalf("ClassTokens[Normal] = %v, want 500 after refund (Normal's capacity is 500)", snap.ClassTokens[Normal])
	}
}
