package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultTTL bounds how long a snapshot outlives its last update. A
	// session that stops publishing (crashed tab, dropped socket) fades out
	// of the live view on its own.
	DefaultTTL = 2 * time.Hour

	// KeyPrefix is the prefix for all session snapshot keys.
	KeyPrefix = "smardesk:session_snapshot:"
)

// InitRedisClient initializes a Redis client and verifies connectivity with
// retry.
func InitRedisClient(ctx context.Context, addr, password string, maxRetries int, retryDelay time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	for i := 0; i < maxRetries; i++ {
		_, err := client.Ping(ctx).Result()
		if err == nil {
			logrus.Infof("connected to Redis at %s (attempt %d/%d)", addr, i+1, maxRetries)
			return client, nil
		}

		if i < maxRetries-1 {
			delay := retryDelay * time.Duration(i+1)
			logrus.Warnf("Redis connection failed (attempt %d/%d): %v, retrying in %v...",
				i+1, maxRetries, err, delay)
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("failed to connect to Redis at %s after %d attempts", addr, maxRetries)
}

func makeKey(userID string) string {
	return KeyPrefix + userID
}

// GetSnapshot retrieves the live snapshot for a user. Returns nil without
// error when the user has no active session.
func GetSnapshot(ctx context.Context, client *redis.Client, userID string) (*SessionSnapshot, error) {
	data, err := client.Get(ctx, makeKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snap SessionSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// SaveSnapshot publishes the snapshot for a user, refreshing its TTL.
func SaveSnapshot(ctx context.Context, client *redis.Client, snap *SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := client.Set(ctx, makeKey(snap.UserID), data, DefaultTTL).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot: %w", err)
	}

	logrus.Debugf("published snapshot for user %s (session %s)", snap.UserID, snap.SessionID)
	return nil
}

// DeleteSnapshot removes a user's live snapshot, typically on clean session
// stop.
func DeleteSnapshot(ctx context.Context, client *redis.Client, userID string) error {
	if err := client.Del(ctx, makeKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
