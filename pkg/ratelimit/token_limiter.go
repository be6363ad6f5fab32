package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter enforces a token budget per minute window. It complements a
// request-per-minute rate.Limiter for providers that also bill by tokens.
type TokenLimiter struct {
	mu        sync.Mutex
	limit     int
	remaining int
	resetAt   time.Time
}

// NewTokenLimiter creates a limiter allowing limitPerMinute tokens per minute.
func NewTokenLimiter(limitPerMinute int) *TokenLimiter {
	return &TokenLimiter{
		limit:     limitPerMinute,
		remaining: limitPerMinute,
		resetAt:   time.Now().Add(time.Minute),
	}
}

// GetRemaining returns the tokens left in the current window.
func (l *TokenLimiter) GetRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refresh()
	return l.remaining
}

// Wait blocks until the requested tokens fit in the current window or the
// context is cancelled.
func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	for {
		l.mu.Lock()
		l.refresh()
		if tokens >= l.limit {
			// An oversized request would never fit in a single window;
			// drain the window and let the provider reject it instead of
			// deadlocking the caller.
			l.remaining = 0
			l.mu.Unlock()
			return nil
		}
		if tokens <= l.remaining {
			l.remaining -= tokens
			l.mu.Unlock()
			return nil
		}
		wait := time.Until(l.resetAt)
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (l *TokenLimiter) refresh() {
	if now := time.Now(); now.After(l.resetAt) {
		l.remaining = l.limit
		l.resetAt = now.Add(time.Minute)
	}
}
