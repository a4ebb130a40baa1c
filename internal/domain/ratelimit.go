package domain

import (
	"context"
	"time"
)

// RateLimitDecision reports whether a request fits in the caller's current
// window and when the window resets.
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error)
}
