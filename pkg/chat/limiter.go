package chat

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Limiter defaults.
const (
	DefaultDailyLimit = 50
	DefaultCooldown   = 5 * time.Second

	countKeyPrefix = "smardesk:chat_limit:count:"
	lastKeyPrefix  = "smardesk:chat_limit:last:"

	// countKeyTTL keeps a day's counter around long enough to cover clock
	// skew; the date in the key does the actual daily reset.
	countKeyTTL = 48 * time.Hour
)

// Decision is the limiter's verdict on one request.
type Decision struct {
	Allowed    bool
	Remaining  int
	Reason     string
	RetryAfter time.Duration
}

// Limiter enforces the per-user daily request quota and the minimum
// interval between consecutive requests. State lives in Redis so limits
// survive restarts and are shared across replicas.
type Limiter struct {
	client     *redis.Client
	dailyLimit int
	cooldown   time.Duration
	now        func() time.Time
}

// NewLimiter creates a limiter. Non-positive limit/cooldown fall back to
// the defaults.
func NewLimiter(client *redis.Client, dailyLimit int, cooldown time.Duration) *Limiter {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyLimit
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Limiter{
		client:     client,
		dailyLimit: dailyLimit,
		cooldown:   cooldown,
		now:        time.Now,
	}
}

func (l *Limiter) countKey(userID string, day string) string {
	return countKeyPrefix + day + ":" + userID
}

func (l *Limiter) lastKey(userID string) string {
	return lastKeyPrefix + userID
}

func dayOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Allow checks and consumes one request slot for the user. Denied requests
// consume nothing.
func (l *Limiter) Allow(ctx context.Context, userID string) (*Decision, error) {
	now := l.now()

	// Cooldown gate first: a request inside the cooldown window should not
	// burn daily quota.
	lastRaw, err := l.client.Get(ctx, l.lastKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read cooldown state: %w", err)
	}
	if err == nil {
		lastMs, parseErr := strconv.ParseInt(lastRaw, 10, 64)
		if parseErr == nil {
			elapsed := now.Sub(time.UnixMilli(lastMs))
			if elapsed < l.cooldown {
				wait := l.cooldown - elapsed
				count, _ := l.currentCount(ctx, userID, now)
				return &Decision{
					Allowed:    false,
					Remaining:  l.remaining(count),
					Reason:     fmt.Sprintf("Wait %d seconds before the next request.", int(wait.Seconds())+1),
					RetryAfter: wait,
				}, nil
			}
		}
	}

	count, err := l.currentCount(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if count >= l.dailyLimit {
		return &Decision{
			Allowed:   false,
			Remaining: 0,
			Reason:    fmt.Sprintf("Daily limit reached (%d requests). Try again tomorrow.", l.dailyLimit),
		}, nil
	}

	countKey := l.countKey(userID, dayOf(now))
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, countKey)
	pipe.Expire(ctx, countKey, countKeyTTL)
	pipe.Set(ctx, l.lastKey(userID), strconv.FormatInt(now.UnixMilli(), 10), countKeyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to consume request slot: %w", err)
	}

	used := int(incr.Val())
	logrus.Debugf("chat request allowed for user %s: %d/%d used today", userID, used, l.dailyLimit)
	return &Decision{Allowed: true, Remaining: l.remaining(used)}, nil
}

// Usage reports a user's consumed and remaining quota without consuming
// anything.
func (l *Limiter) Usage(ctx context.Context, userID string) (used, remaining int, err error) {
	used, err = l.currentCount(ctx, userID, l.now())
	if err != nil {
		return 0, 0, err
	}
	return used, l.remaining(used), nil
}

func (l *Limiter) currentCount(ctx context.Context, userID string, now time.Time) (int, error) {
	raw, err := l.client.Get(ctx, l.countKey(userID, dayOf(now))).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read daily count: %w", err)
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("corrupt daily count %q: %w", raw, err)
	}
	return count, nil
}

func (l *Limiter) remaining(used int) int {
	if used >= l.dailyLimit {
		return 0
	}
	return l.dailyLimit - used
}
