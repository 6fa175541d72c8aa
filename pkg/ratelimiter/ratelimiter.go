package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"vocalstudio.app/backend/pkg/apperror"
)

// RateLimitError is returned when the caller must wait before repeating an
// action.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

// Limiter allows one action per key per window. A nil redis client disables
// limiting.
type Limiter struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

func key(action, subject string) string {
	return fmt.Sprintf("rate_limit:%s:%s", action, subject)
}

// Allow claims the slot for (action, subject). It returns a *RateLimitError
// while the slot is taken.
func (l *Limiter) Allow(ctx context.Context, action, subject string, window time.Duration) error {
	if l == nil || l.rdb == nil || window <= 0 {
		return nil
	}

	k := key(action, subject)
	wasSet, err := l.rdb.SetNX(ctx, k, "locked", window).Result()
	if err != nil {
		return fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	if wasSet {
		return nil
	}

	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	return &RateLimitError{
		RetryAfter: ttl,
		Message:    fmt.Sprintf("Too many requests, retry in %d seconds", int(ttl.Round(time.Second).Seconds())),
	}
}

// Clear releases the slot early, e.g. after a request failed validation.
func (l *Limiter) Clear(ctx context.Context, action, subject string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, key(action, subject)).Err()
}
