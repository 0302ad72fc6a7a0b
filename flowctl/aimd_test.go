package flowctl

import (
	"testing"
	"time"
)

func TestSlowStartGrowsByAckedBytesUntilSsthresh(t *testing.T) {
	f := NewFlowController(1000, 100, 1_000_000)
	f.ssthresh = 2000

	f.OnAck(500, 10*time.Millisecond)
	if f.Mode() != SlowStart {
		t.Fatalf("mode = %v, want SlowStart (window %v has not reached ssthresh)", f.Mode(), f.Window())
	}
	if w := f.Window(); w != 1500 {
		t.Fatalf("Window() = %v, want 1500 after a 500-byte ack in slow start", w)
	}

	f.OnAck(600, 10*time.Millisecond)
	if f.Mode() != CongestionAvoidance {
		t.Fatalf("mode = %v, want CongestionAvoidance once window (%v) reaches ssthresh (%v)", f.Mode(), f.Window(), f.ssthresh)
	}
}

func TestCongestionAvoidanceGrowsByOneMSSPerWindow(t *testing.T) {
	f := NewFlowController(10000, 100, 1_000_000)
	f.mode = CongestionAvoidance
	f.ssthresh = 10000

	before := f.Window()
	f.OnAck(before, 10*time.Millisecond) // ack a full window's worth
	after := f.Window()
	if after-before < 1 {
		t.Fatalf("window only grew by %v, want roughly one MSS after acking a full window", after-before)
	}
	if after-before > 2*defaultMSSForTest {
		t.Fatalf("window grew by %v, want roughly one MSS (%v)", after-before, defaultMSSForTest)
	}
}

const defaultMSSForTest = 1460

func TestOnLossHalvesWindowAndReentersSlowStart(t *testing.T) {
	f := NewFlowController(8000, 100, 1_000_000)
	f.mode = CongestionAvoidance

	f.OnLoss(time.Unix(0, 0))
	if f.Mode() != SlowStart {
		t.Fatalf("mode = %v, want SlowStart after a loss", f.Mode())
	}
	if w := f.Window(); w != 4000 {
		t.Fatalf("Window() = %v, want 4000 (halved)", w)
	}
	if f.ssthresh != 4000 {
		t.Fatalf("ssthresh = %v, want 4000", f.ssthresh)
	}
}

func TestOnECNShrinksToThreeQuartersWindow(t *testing.T) {
	f := NewFlowController(8000, 100, 1_000_000)
	now := time.Unix(100, 0)

	f.OnECN(now)
	if w := f.Window(); w != 6000 {
		t.Fatalf("Window() = %v, want 6000 (3/4 of 8000)", w)
	}
}

func TestOnECNIgnoredWithinMostRecentRTT(t *testing.T) {
	f := NewFlowController(8000, 100, 1_000_000)
	now := time.Unix(100, 0)
	f.OnAck(100, 50*time.Millisecond) // establishes lastRTT = 50ms

	f.OnECN(now)
	shrunk := f.Window()

	// A second mark arriving within the same RTT window should be ignored.
	f.OnECN(now.Add(10 * time.Millisecond))
	if f.Window() != shrunk {
		t.Fatalf("Window() = %v, want unchanged (%v) since the mark arrived within the last RTT", f.Window(), shrunk)
	}
}

func TestWindowNeverExceedsMaxOrDropsBelowMin(t *testing.T) {
	f := NewFlowController(100, 100, 500)
	for i := 0; i < 50; i++ {
		f.OnAck(1000, time.Millisecond)
	}
	if w := f.Window(); w > 500 {
		t.Fatalf("Window() = %v, want capped at 500", w)
	}

	f.OnLoss(time.Unix(0, 0))
	f.OnLoss(time.Unix(1, 0))
	f.OnLoss(time.Unix(2, 0))
	f.OnLoss(time.Unix(3, 0))
	f.OnLoss(time.Unix(4, 0))
	if w := f.Window(); w < 100 {
		t.Fatalf("Window() = %v, want floored at 100", w)
	}
}

func TestCanSendRespectsBytesInFlight(t *testing.T) {
	f := NewFlowController(1000, 100, 1_000_000)
	if !f.CanSend(1000) {
		t.Fatal("expected to be able to send up to the full window")
	}
	f.OnSend(1000)
	if f.CanSend(1) {
		t.Fatal("expected no room left after filling the window")
	}
	f.OnAck(500, 10*time.Millisecond)
	if !f.CanSend(1) {
		t.Fatal("expected room to open up after an ack frees bytes in flight")
	}
}
