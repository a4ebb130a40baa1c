package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterWindow(t *testing.T) {
	now := time.Unix(1767225600, 0)
	limiter := NewMemoryLimiter(MemoryLimiterConfig{Now: func() time.Time { return now }})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(ctx, "caller:a", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !decision.Allowed {
			t.Fatalf("request %d blocked below the limit", i)
		}
		if decision.Remaining != 3-(i+1) {
			t.Fatalf("remaining = %d after %d requests", decision.Remaining, i+1)
		}
	}

	decision, err := limiter.Allow(ctx, "caller:a", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if decision.Allowed {
		t.Fatal("request above the limit allowed")
	}
	if decision.ResetAt != now.Add(time.Minute) {
		t.Fatalf("reset at %v", decision.ResetAt)
	}

	// A different caller has its own window.
	decision, err = limiter.Allow(ctx, "caller:b", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("independent caller blocked")
	}

	// The window expires.
	now = now.Add(time.Minute + time.Second)
	decision, err = limiter.Allow(ctx, "caller:a", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("expired window still blocking")
	}
}

func TestMemoryLimiterZeroLimitDisables(t *testing.T) {
	limiter := NewMemoryLimiter(MemoryLimiterConfig{})
	for i := 0; i < 100; i++ {
		decision, err := limiter.Allow(context.Background(), "caller:a", 0, time.Minute)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !decision.Allowed {
			t.Fatal("zero limit should disable limiting")
		}
	}
}

func TestMemoryLimiterKeyCapacity(t *testing.T) {
	now := time.Unix(1767225600, 0)
	limiter := NewMemoryLimiter(MemoryLimiterConfig{Now: func() time.Time { return now }, MaxKeys: 2})
	ctx := context.Background()

	for _, key := range []string{"a", "b"} {
		if _, err := limiter.Allow(ctx, key, 1, time.Minute); err != nil {
			t.Fatalf("allow %s: %v", key, err)
		}
	}
	if _, err := limiter.Allow(ctx, "c", 1, time.Minute); err == nil {
		t.Fatal("capacity overflow not reported")
	}

	// Expired windows are swept to make room.
	now = now.Add(2 * time.Minute)
	if _, err := limiter.Allow(ctx, "c", 1, time.Minute); err != nil {
		t.Fatalf("allow after sweep: %v", err)
	}
}
