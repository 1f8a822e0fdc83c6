// Package rate implements a Redis-backed fixed-window counter that throttles
// failed signin attempts per email and per client IP. Counters use INCR plus
// a conditional EXPIRE on the first hit of the window.
package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited signals that the caller exhausted the attempt budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps transport failures talking to Redis.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Limiter enforces the signin attempt budget using Redis counters.
type Limiter struct {
	redis       redis.UniversalClient
	maxAttempts int
	cooldown    time.Duration
}

// New creates a Limiter backed by the given Redis client.
func New(redisClient redis.UniversalClient, maxAttempts int, cooldown time.Duration) *Limiter {
	return &Limiter{
		redis:       redisClient,
		maxAttempts: maxAttempts,
		cooldown:    cooldown,
	}
}

func loginEmailKey(email string) string { return "al:" + email }
func loginIPKey(ip string) string       { return "ali:" + ip }

// Check reports whether the email+IP pair is still within the attempt budget
// without consuming an attempt.
func (l *Limiter) Check(ctx context.Context, email, ip string) error {
	if err := l.checkCounter(ctx, loginEmailKey(email)); err != nil {
		return err
	}
	if ip != "" {
		return l.checkCounter(ctx, loginIPKey(ip))
	}
	return nil
}

// Increment records a failed signin attempt for the email+IP pair. It
// returns ErrRateLimited once the budget is exceeded.
func (l *Limiter) Increment(ctx context.Context, email, ip string) error {
	count, err := l.incrementWithTTL(ctx, loginEmailKey(email), l.cooldown)
	if err != nil {
		return err
	}
	if count > int64(l.maxAttempts) {
		return ErrRateLimited
	}

	if ip != "" {
		count, err = l.incrementWithTTL(ctx, loginIPKey(ip), l.cooldown)
		if err != nil {
			return err
		}
		if count > int64(l.maxAttempts) {
			return ErrRateLimited
		}
	}
	return nil
}

// Reset clears the counters. Called after a successful signin.
func (l *Limiter) Reset(ctx context.Context, email, ip string) error {
	keys := []string{loginEmailKey(email)}
	if ip != "" {
		keys = append(keys, loginIPKey(ip))
	}
	if err := l.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(l.maxAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: the TTL is set only on the first hit.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
