package state

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/smardesk/smardesk-backend/pkg/advisor"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func TestSnapshotRoundTrip(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()

	snap := &SessionSnapshot{
		UserID:    "user1",
		SessionID: "sess_1",
		StartedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 6, 1, 9, 10, 0, 0, time.UTC),
		Counters: advisor.State{
			TotalWorkSeconds:   600,
			GoodPostureSeconds: 400,
			SlouchingSeconds:   100,
			YawnCount:          2,
		},
		LastStatus:   "slouching",
		LastSeverity: "high",
	}

	if err := SaveSnapshot(ctx, client, snap); err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	got, err := GetSnapshot(ctx, client, "user1")
	if err != nil {
		t.Fatalf("GetSnapshot() failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a snapshot")
	}
	if got.SessionID != "sess_1" {
		t.Errorf("SessionID = %s, expected sess_1", got.SessionID)
	}
	if got.Counters.TotalWorkSeconds != 600 {
		t.Errorf("TotalWorkSeconds = %d, expected 600", got.Counters.TotalWorkSeconds)
	}
	if got.LastStatus != "slouching" {
		t.Errorf("LastStatus = %s, expected slouching", got.LastStatus)
	}

	// The key carries a TTL so dead sessions expire on their own.
	if mr.TTL(KeyPrefix+"user1") != DefaultTTL {
		t.Errorf("TTL = %v, expected %v", mr.TTL(KeyPrefix+"user1"), DefaultTTL)
	}
}

func TestGetSnapshot_Missing(t *testing.T) {
	_, client := setupRedis(t)

	got, err := GetSnapshot(context.Background(), client, "nobody")
	if err != nil {
		t.Fatalf("GetSnapshot() failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil snapshot for unknown user, got %+v", got)
	}
}

func TestDeleteSnapshot(t *testing.T) {
	_, client := setupRedis(t)
	ctx := context.Background()

	snap := &SessionSnapshot{UserID: "user1", SessionID: "sess_1"}
	if err := SaveSnapshot(ctx, client, snap); err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}
	if err := DeleteSnapshot(ctx, client, "user1"); err != nil {
		t.Fatalf("DeleteSnapshot() failed: %v", err)
	}

	got, err := GetSnapshot(ctx, client, "user1")
	if err != nil {
		t.Fatalf("GetSnapshot() failed: %v", err)
	}
	if got != nil {
		t.Error("expected snapshot to be gone after delete")
	}
}

func TestPostureScore(t *testing.T) {
	tests := []struct {
		name     string
		good     int
		slouch   int
		expected int
	}{
		{name: "no observations", good: 0, slouch: 0, expected: 100},
		{name: "all good", good: 300, slouch: 0, expected: 100},
		{name: "all slouching", good: 0, slouch: 300, expected: 0},
		{name: "mixed", good: 300, slouch: 100, expected: 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := advisor.State{GoodPostureSeconds: tt.good, SlouchingSeconds: tt.slouch}
			if got := PostureScore(s); got != tt.expected {
				t.Errorf("PostureScore() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestIsStale(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if !IsStale(nil, now, time.Minute) {
		t.Error("nil snapshot should be stale")
	}

	fresh := &SessionSnapshot{UpdatedAt: now.Add(-30 * time.Second)}
	if IsStale(fresh, now, time.Minute) {
		t.Error("recently updated snapshot should not be stale")
	}

	old := &SessionSnapshot{UpdatedAt: now.Add(-2 * time.Minute)}
	if !IsStale(old, now, time.Minute) {
		t.Error("old snapshot should be stale")
	}
}

func TestHealthChecker(t *testing.T) {
	mr, client := setupRedis(t)
	hc := NewHealthChecker(client)

	if !hc.IsHealthy(context.Background()) {
		t.Error("expected healthy with live Redis")
	}

	mr.Close()
	if hc.IsHealthy(context.Background()) {
		t.Error("expected unhealthy after Redis goes away")
	}
}
