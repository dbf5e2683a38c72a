package ident

import (
	"testing"
	"time"
)

func TestTimestampRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	id := At(now)

	got := Timestamp(id)
	if !got.Equal(now) {
		t.Errorf("Timestamp(At(%v)) = %v", now, got)
	}
}

func TestNewIsPositiveAndOrdered(t *testing.T) {
	earlier := At(time.Unix(1700000000, 0))
	later := At(time.Unix(1700000100, 0))

	if earlier <= 0 || later <= 0 {
		t.Fatalf("identifiers must be positive, got %d and %d", earlier, later)
	}
	if earlier >= later {
		t.Errorf("identifiers from later seconds must compare greater: %d >= %d", earlier, later)
	}
}

func TestNewUniqueness(t *testing.T) {
	seen := make(map[int64]bool, 100)
	for i := 0; i < 100; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate identifier after %d draws: %d", i, id)
		}
		seen[id] = true
	}
}
