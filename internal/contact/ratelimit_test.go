package contact

import (
	"testing"
	"time"
)

func TestRateLimiterBurstThenRefill(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(5, 3)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("fourth request should be limited")
	}
	if !l.Allow("5.6.7.8") {
		t.Fatal("other clients have their own bucket")
	}

	now = now.Add(12 * time.Second)
	if !l.Allow("1.2.3.4") {
		t.Fatal("one token should refill after 12s")
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("only one token should have refilled")
	}
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(5, 3)
	l.now = func() time.Time { return now }
	l.limiters["stale"] = &clientLimiter{limiter: nil, lastSeen: now.Add(-time.Hour)}

	l.sweep(now)
	if l.tracked() != 0 {
		t.Fatalf("expected idle client to be swept, tracked=%d", l.tracked())
	}
}
