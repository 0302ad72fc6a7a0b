package padding

import (
	"testing"
	"time"
)

func TestBurstDetectorFlagsOverThreshold(t *testing.T) {
	b := NewBurstDetector(5)
	now := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		if b.Observe(now) {
			t.Fatalf("Observe() fired early on packet %d", i)
		}
	}
	if !b.Observe(now) {
		t.Fatal("expected Observe() to fire once the rate exceeds the threshold")
	}
	if b.DetectedCount() != 1 {
		t.Fatalf("DetectedCount() = %d, want 1", b.DetectedCount())
	}
}

func TestBurstDetectorWindowSlides(t *testing.T) {
	b := NewBurstDetector(3)
	start := time.Unix(0, 0)
	b.Observe(start)
	b.Observe(start.Add(100 * time.Millisecond))
	b.Observe(start.Add(200 * time.Millisecond))

	// The next observation lands more than a second after the first three,
	// so they should have slid out of the window.
	if b.Observe(start.Add(1500 * time.Millisecond)) {
		t.Fatal("Observe() fired after the earlier timestamps aged out of the window")
	}
}
