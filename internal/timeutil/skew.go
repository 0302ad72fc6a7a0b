// Package timeutil provides small duration-rounding helpers for scheduling
// work against whole-second or whole-millisecond boundaries. No other
// package in this module imports it.
package timeutil

import (
	"math"
	"time"
)

// SkewSecondsCeil converts a duration to whole seconds, rounding up.
// Non-positive values return 0.
func SkewSecondsCeil(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	secs := d / time.Second
	if d%time.Second != 0 {
		secs++
	}
	if secs <= 0 {
		return 0
	}
	return int64(secs)
}

// NormalizeSkew rounds d up to the nearest whole second.
func NormalizeSkew(d time.Duration) time.Duration {
	secs := SkewSecondsCeil(d)
	if secs == 0 {
		return 0
	}
	if secs > int64(math.MaxInt64)/int64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(secs) * time.Second
}

// AddSkewUnix adds a duration (rounded up to whole seconds) to a Unix-seconds
// timestamp, clamping to math.MaxInt64 on overflow rather than wrapping.
func AddSkewUnix(unixS int64, d time.Duration) int64 {
	secs := SkewSecondsCeil(d)
	if secs == 0 {
		return unixS
	}
	if unixS > math.MaxInt64-secs {
		return math.MaxInt64
	}
	return unixS + secs
}
