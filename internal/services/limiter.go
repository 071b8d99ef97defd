package services

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vendora-labs/partner-backend/internal/apperrors"
)

// RateLimiter throttles account creation and login attempts per identifier
// and per client IP using Redis INCR + EXPIRE. A nil limiter (or nil
// client) disables throttling entirely, so the service runs fine without
// Redis configured.
type RateLimiter struct {
	redis       *redis.Client
	prefix      string
	maxAttempts int
	cooldown    time.Duration
}

// NewRateLimiter creates a limiter over the given Redis client
func NewRateLimiter(client *redis.Client, prefix string, maxAttempts int, cooldown time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:       client,
		prefix:      prefix,
		maxAttempts: maxAttempts,
		cooldown:    cooldown,
	}
}

// Enforce checks the per-identifier and per-IP counters and returns
// ErrRateLimited once either exceeds the budget within the cooldown.
func (l *RateLimiter) Enforce(ctx context.Context, identifier, ip string) error {
	if l == nil || l.redis == nil {
		return nil
	}

	if identifier != "" {
		if err := l.enforceKey(ctx, l.prefix+":id:"+identifier); err != nil {
			return err
		}
	}
	if ip != "" {
		if err := l.enforceKey(ctx, l.prefix+":ip:"+ip); err != nil {
			return err
		}
	}
	return nil
}

func (l *RateLimiter) enforceKey(ctx context.Context, key string) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		// Redis being down should not take logins down with it
		log.Printf("Rate limiter unavailable (%s): %v", key, err)
		return nil
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.cooldown).Err(); err != nil {
			log.Printf("Rate limiter expire failed (%s): %v", key, err)
		}
	}

	if count > int64(l.maxAttempts) {
		return apperrors.ErrRateLimited
	}
	return nil
}
