package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newLimiter(t *testing.T, maxAttempts int, cooldown time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(client, maxAttempts, cooldown), mr
}

func TestCheck_NoCounter(t *testing.T) {
	l, _ := newLimiter(t, 3, time.Minute)
	if err := l.Check(context.Background(), "alice@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("fresh pair must pass: %v", err)
	}
}

func TestIncrement_WithinBudget(t *testing.T) {
	l, _ := newLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.Increment(ctx, "alice@example.com", "10.0.0.1"); err != nil {
			t.Fatalf("attempt %d within budget: %v", i+1, err)
		}
	}
	if err := l.Increment(ctx, "alice@example.com", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
}

func TestCheck_AfterBudgetExhausted(t *testing.T) {
	l, _ := newLimiter(t, 2, time.Minute)
	ctx := context.Background()

	_ = l.Increment(ctx, "alice@example.com", "")
	_ = l.Increment(ctx, "alice@example.com", "")

	if err := l.Check(ctx, "alice@example.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
	// other emails keep their own budget
	if err := l.Check(ctx, "bob@example.com", ""); err != nil {
		t.Fatalf("unrelated email must pass: %v", err)
	}
}

func TestCheck_SharedIPBudget(t *testing.T) {
	l, _ := newLimiter(t, 2, time.Minute)
	ctx := context.Background()

	// two different emails from the same address burn the IP budget
	_ = l.Increment(ctx, "alice@example.com", "10.0.0.1")
	_ = l.Increment(ctx, "bob@example.com", "10.0.0.1")

	if err := l.Check(ctx, "carol@example.com", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("want ErrRateLimited on shared IP, got %v", err)
	}
	if err := l.Check(ctx, "carol@example.com", "10.0.0.2"); err != nil {
		t.Fatalf("other IP must pass: %v", err)
	}
}

func TestWindowExpiry(t *testing.T) {
	l, mr := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	_ = l.Increment(ctx, "alice@example.com", "")
	if err := l.Check(ctx, "alice@example.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if err := l.Check(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("counter must expire with the window: %v", err)
	}
}

func TestReset(t *testing.T) {
	l, _ := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	_ = l.Increment(ctx, "alice@example.com", "10.0.0.1")
	if err := l.Reset(ctx, "alice@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := l.Check(ctx, "alice@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("counters must be gone after reset: %v", err)
	}
}

func TestRedisDown(t *testing.T) {
	l, mr := newLimiter(t, 1, time.Minute)
	mr.Close()

	if err := l.Increment(context.Background(), "alice@example.com", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("want ErrRedisUnavailable, got %v", err)
	}
}
