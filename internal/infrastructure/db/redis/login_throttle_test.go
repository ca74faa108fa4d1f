package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestThrottle(t *testing.T, max int, window time.Duration) (*LoginThrottle, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewLoginThrottle(client, max, window), mr
}

func TestLoginThrottle_BlocksAfterMaxFailures(t *testing.T) {
	th, _ := newTestThrottle(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := th.RecordFailure(ctx, "alice"); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if blocked, _ := th.Blocked(ctx, "alice"); blocked {
		t.Fatalf("should not be blocked below the limit")
	}

	_ = th.RecordFailure(ctx, "alice")
	blocked, err := th.Blocked(ctx, "alice")
	if err != nil {
		t.Fatalf("blocked: %v", err)
	}
	if !blocked {
		t.Fatalf("expected alice to be blocked")
	}
	if blocked, _ := th.Blocked(ctx, "bob"); blocked {
		t.Fatalf("counters must be per username")
	}
}

func TestLoginThrottle_WindowExpires(t *testing.T) {
	th, mr := newTestThrottle(t, 1, time.Minute)
	ctx := context.Background()

	_ = th.RecordFailure(ctx, "alice")
	if blocked, _ := th.Blocked(ctx, "alice"); !blocked {
		t.Fatalf("expected block")
	}

	mr.FastForward(2 * time.Minute)

	if blocked, _ := th.Blocked(ctx, "alice"); blocked {
		t.Fatalf("expected block to lapse after the window")
	}
}

func TestLoginThrottle_Reset(t *testing.T) {
	th, _ := newTestThrottle(t, 1, time.Minute)
	ctx := context.Background()

	_ = th.RecordFailure(ctx, "alice")
	if err := th.Reset(ctx, "alice"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if blocked, _ := th.Blocked(ctx, "alice"); blocked {
		t.Fatalf("expected reset to clear the counter")
	}
}

func TestLoginThrottle_BackendDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	th := NewLoginThrottle(client, 1, time.Minute)

	if _, err := th.Blocked(context.Background(), "alice"); err == nil {
		t.Fatalf("expected error when redis is unreachable")
	}
}

func TestLoginThrottle_WindowArmedOnce(t *testing.T) {
	th, mr := newTestThrottle(t, 5, time.Minute)
	ctx := context.Background()

	_ = th.RecordFailure(ctx, "alice")
	mr.FastForward(30 * time.Second)
	_ = th.RecordFailure(ctx, "alice")

	if ttl := mr.TTL("login:fail:alice"); ttl <= 0 || ttl > 30*time.Second {
		t.Fatalf("later failures must not extend the window, ttl=%v", ttl)
	}
}

func TestLoginThrottle_CounterWithoutTTLGetsOne(t *testing.T) {
	th, mr := newTestThrottle(t, 5, time.Minute)
	ctx := context.Background()

	if err := mr.Set("login:fail:alice", "2"); err != nil {
		t.Fatalf("seed key: %v", err)
	}
	if err := th.RecordFailure(ctx, "alice"); err != nil {
		t.Fatalf("record: %v", err)
	}

	if ttl := mr.TTL("login:fail:alice"); ttl <= 0 {
		t.Fatalf("expected the counter to carry a TTL, got %v", ttl)
	}
	if got, _ := mr.Get("login:fail:alice"); got != "3" {
		t.Fatalf("expected counter 3, got %q", got)
	}
}
