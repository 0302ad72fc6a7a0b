package wsutil

import "testing"

func TestReadLimitUsesDefaultsWhenUnset(t *testing.T) {
	got := ReadLimit(0, 0)
	want := int64(defaultMaxRecordBytes + multipathFrameOverheadBytes)
	if got != want {
		t.Fatalf("ReadLimit(0, 0) = %d, want %d", got, want)
	}
}

func TestReadLimitTakesTheLargerBound(t *testing.T) {
	got := ReadLimit(100, 50)
	want := int64(100 + multipathFrameOverheadBytes)
	if got != want {
		t.Fatalf("ReadLimit(100, 50) = %d, want the larger of the two explicit bounds (100) to win: %d", got, want)
	}
}

func TestReadLimitHonorsExplicitLargerRecordSize(t *testing.T) {
	got := ReadLimit(1216, 1<<20)
	want := int64(1<<20 + multipathFrameOverheadBytes)
	if got != want {
		t.Fatalf("ReadLimit(1216, 1<<20) = %d, want %d", got, want)
	}
}
