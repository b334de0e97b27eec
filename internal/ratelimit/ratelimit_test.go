package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, limit, window, "rl:test"), mr
}

func TestAllow_WithinLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(ctx, "tenant:1")
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if !decision.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
		if decision.Remaining != 3-i-1 {
			t.Errorf("request %d: remaining = %d, want %d", i, decision.Remaining, 3-i-1)
		}
	}
}

func TestAllow_OverLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 2, time.Minute)
	ctx := context.Background()

	limiter.Allow(ctx, "ip:1.2.3.4")
	limiter.Allow(ctx, "ip:1.2.3.4")

	decision, err := limiter.Allow(ctx, "ip:1.2.3.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allowed {
		t.Fatal("third request should be rejected")
	}
	if decision.RetryAfter <= 0 || decision.RetryAfter > time.Minute {
		t.Errorf("unexpected retry-after: %v", decision.RetryAfter)
	}
}

func TestAllow_KeysAreIsolated(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	limiter.Allow(ctx, "ip:1.2.3.4")

	decision, err := limiter.Allow(ctx, "ip:5.6.7.8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allowed {
		t.Error("a different key must have its own budget")
	}
}

func TestAllow_WindowSlides(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if d, _ := limiter.Allow(ctx, "k"); !d.Allowed {
		t.Fatal("first request should pass")
	}
	if d, _ := limiter.Allow(ctx, "k"); d.Allowed {
		t.Fatal("second request should be rejected")
	}

	// miniredis time is frozen; advancing it past the window expires the
	// key via its TTL.
	mr.FastForward(2 * time.Minute)

	if d, err := limiter.Allow(ctx, "k"); err != nil || !d.Allowed {
		t.Fatalf("request after window should pass: allowed=%v err=%v", d.Allowed, err)
	}
}

func TestAllow_RejectedNotRecorded(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	limiter.Allow(ctx, "k")
	for i := 0; i < 5; i++ {
		limiter.Allow(ctx, "k")
	}

	// The set still holds exactly one member: rejections must not extend
	// the lockout.
	mrClient := limiter.redis
	n, err := mrClient.ZCard(ctx, "rl:test:k").Result()
	if err != nil {
		t.Fatalf("zcard: %v", err)
	}
	if n != 1 {
		t.Errorf("recorded requests = %d, want 1", n)
	}
}
