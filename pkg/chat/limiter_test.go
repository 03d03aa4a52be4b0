package chat

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func setupLimiter(t *testing.T, dailyLimit int, cooldown time.Duration) (*Limiter, *fakeNow) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	clock := &fakeNow{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	l := NewLimiter(client, dailyLimit, cooldown)
	l.now = clock.Now

	return l, clock
}

type fakeNow struct {
	now time.Time
}

func (f *fakeNow) Now() time.Time {
	return f.now
}

func (f *fakeNow) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func TestLimiter_AllowAndCount(t *testing.T) {
	l, clock := setupLimiter(t, 3, 5*time.Second)
	ctx := context.Background()

	d, err := l.Allow(ctx, "user1")
	if err != nil {
		t.Fatalf("Allow() failed: %v", err)
	}
	if !d.Allowed {
		t.Fatalf("first request denied: %s", d.Reason)
	}
	if d.Remaining != 2 {
		t.Errorf("Remaining = %d, expected 2", d.Remaining)
	}

	clock.Advance(6 * time.Second)
	if d, _ = l.Allow(ctx, "user1"); !d.Allowed || d.Remaining != 1 {
		t.Errorf("second request: allowed=%v remaining=%d, expected allowed with 1 left", d.Allowed, d.Remaining)
	}

	used, remaining, err := l.Usage(ctx, "user1")
	if err != nil {
		t.Fatalf("Usage() failed: %v", err)
	}
	if used != 2 || remaining != 1 {
		t.Errorf("Usage() = (%d, %d), expected (2, 1)", used, remaining)
	}
}

func TestLimiter_Cooldown(t *testing.T) {
	l, clock := setupLimiter(t, 10, 5*time.Second)
	ctx := context.Background()

	if d, _ := l.Allow(ctx, "user1"); !d.Allowed {
		t.Fatal("first request should be allowed")
	}

	// Inside the cooldown: denied, and no quota burned.
	clock.Advance(2 * time.Second)
	d, err := l.Allow(ctx, "user1")
	if err != nil {
		t.Fatalf("Allow() failed: %v", err)
	}
	if d.Allowed {
		t.Fatal("request inside the cooldown should be denied")
	}
	if d.RetryAfter <= 0 || d.RetryAfter > 3*time.Second {
		t.Errorf("RetryAfter = %v, expected about 3s", d.RetryAfter)
	}

	used, _, _ := l.Usage(ctx, "user1")
	if used != 1 {
		t.Errorf("denied request consumed quota: used = %d, expected 1", used)
	}

	// Past the cooldown the next request goes through.
	clock.Advance(4 * time.Second)
	if d, _ := l.Allow(ctx, "user1"); !d.Allowed {
		t.Error("request after the cooldown should be allowed")
	}
}

func TestLimiter_DailyLimit(t *testing.T) {
	l, clock := setupLimiter(t, 2, time.Second)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if d, _ := l.Allow(ctx, "user1"); !d.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		clock.Advance(2 * time.Second)
	}

	d, err := l.Allow(ctx, "user1")
	if err != nil {
		t.Fatalf("Allow() failed: %v", err)
	}
	if d.Allowed {
		t.Fatal("request past the daily limit should be denied")
	}
	if d.Remaining != 0 {
		t.Errorf("Remaining = %d, expected 0", d.Remaining)
	}

	// A new UTC day resets the count because the date is part of the key.
	clock.Advance(24 * time.Hour)
	if d, _ := l.Allow(ctx, "user1"); !d.Allowed {
		t.Error("request on the next day should be allowed")
	}
}

func TestLimiter_UsersAreIndependent(t *testing.T) {
	l, _ := setupLimiter(t, 1, time.Second)
	ctx := context.Background()

	if d, _ := l.Allow(ctx, "user1"); !d.Allowed {
		t.Fatal("user1 should be allowed")
	}
	if d, _ := l.Allow(ctx, "user2"); !d.Allowed {
		t.Error("user2 should not be affected by user1's quota")
	}
}
