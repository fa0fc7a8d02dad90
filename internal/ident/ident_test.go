package ident

import (
	"testing"
	"time"
)

func TestNextIsWallClockMillis(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := NewWithClock(func() time.Time { return fixed })

	if got, want := g.Next(), fixed.UnixMilli(); got != want {
		t.Errorf("Next() = %d, want %d", got, want)
	}
}

func TestNextBumpsWithinSameMillisecond(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := NewWithClock(func() time.Time { return fixed })

	seen := make(map[int64]bool)
	prev := int64(0)
	for i := 0; i < 100; i++ {
		id := g.Next()
		if seen[id] {
			t.Fatalf("duplicate id %d on call %d", id, i)
		}
		if id <= prev {
			t.Fatalf("id %d not strictly increasing after %d", id, prev)
		}
		seen[id] = true
		prev = id
	}
}

func TestNextFollowsAdvancingClock(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := NewWithClock(func() time.Time { return now })

	first := g.Next()
	now = now.Add(5 * time.Millisecond)
	second := g.Next()

	if second != first+5 {
		t.Errorf("after clock advance: got %d, want %d", second, first+5)
	}
}
