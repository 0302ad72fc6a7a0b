package padding

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/nyxmesh/nyx-core/internal/defaults"
)

// TimingObfuscator releases outbound packets after a uniformly random
// delay in [minDelay, maxDelay], hard-capped regardless of configuration.
type TimingObfuscator struct {
	min time.Duration
	max time.Duration
}

// NewTimingObfuscator constructs an obfuscator with the given bounds.
// Zero values use defaults.MinPaddingDelay/MaxPaddingDelay. Both bounds
// are clamped to defaults.MaxPaddingDelayHardCap.
func NewTimingObfuscator(min, max time.Duration) *TimingObfuscator {
	if min <= 0 {
		min = defaults.MinPaddingDelay
	}
	if max <= 0 {
		max = defaults.MaxPaddingDelay
	}
	if min > defaults.MaxPaddingDelayHardCap {
		min = defaults.MaxPaddingDelayHardCap
	}
	if max > defaults.MaxPaddingDelayHardCap {
		max = defaults.MaxPaddingDelayHardCap
	}
	if max < min {
		max = min
	}
	return &TimingObfuscator{min: min, max: max}
}

// NextDelay draws a uniformly random delay in [min, max].
func (t *TimingObfuscator) NextDelay() time.Duration {
	if t.max == t.min {
		return t.min
	}
	span := int64(t.max - t.min)
	return t.min + time.Duration(rand.Int64N(span+1))
}

// Release blocks for a freshly drawn delay, returning early with ctx's
// error if it is canceled first.
func (t *TimingObfuscator) Release(ctx context.Context) error {
	timer := time.NewTimer(t.NextDelay())
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
