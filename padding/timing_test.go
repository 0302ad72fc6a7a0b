package padding

import (
	"context"
	"testing"
	"time"
)

func TestNextDelayStaysWithinBounds(t *testing.T) {
	o := NewTimingObfuscator(5*time.Millisecond, 10*time.Millisecond)
	for i := 0; i < 200; i++ {
		d := o.NextDelay()
		if d < 5*time.Millisecond || d > 10*time.Millisecond {
			t.Fatalf("NextDelay() = %v, want within [5ms, 10ms]", d)
		}
	}
}

func TestNewTimingObfuscatorDefaultsAndHardCap(t *testing.T) {
	o := NewTimingObfuscator(0, 0)
	if o.min != 1*time.Millisecond || o.max != 20*time.Millisecond {
		t.Fatalf("min/max = %v/%v, want the 1ms/20ms defaults", o.min, o.max)
	}

	capped := NewTimingObfuscator(0, 500*time.Millisecond)
	if capped.max != 100*time.Millisecond {
		t.Fatalf("max = %v, want capped at the 100ms hard cap", capped.max)
	}
}

func TestReleaseReturnsAfterDelay(t *testing.T) {
	o := NewTimingObfuscator(1*time.Millisecond, 2*time.Millisecond)
	start := time.Now()
	if err := o.Release(context.Background()); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if time.Since(start) < time.Millisecond {
		t.Fatalf("Release returned before the minimum delay elapsed")
	}
}

func TestReleaseRespectsCancellation(t *testing.T) {
	o := NewTimingObfuscator(1*time.Second, 1*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := o.Release(ctx); err == nil {
		t.Fatal("expected Release to return the context error immediately")
	}
}
