package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/smardesk/smardesk-backend/pkg/advisor"
	"github.com/smardesk/smardesk-backend/pkg/classify"
	"github.com/smardesk/smardesk-backend/pkg/common"
	"github.com/smardesk/smardesk-backend/pkg/metrics"
	"github.com/smardesk/smardesk-backend/pkg/state"
	"github.com/smardesk/smardesk-backend/pkg/store"
	"github.com/smardesk/smardesk-backend/pkg/tracker"
)

// DefaultSnapshotEvery is how many ticks pass between live snapshot
// writes to Redis. At the default 2s period that is one write every 10s.
const DefaultSnapshotEvery = 5

var ErrNotFound = errors.New("session not found")

// Config carries the shared dependencies every session is built from.
type Config struct {
	Store *store.Store
	Redis *redis.Client

	Calibration classify.Calibration
	Tuning      advisor.Tuning
	Catalog     advisor.Catalog

	Period        time.Duration
	SnapshotEvery int
}

// Manager owns all live tracking sessions, at most one per user. Starting
// a session spawns its sampling loop; stopping it persists a summary row
// and clears the live snapshot.
type Manager struct {
	cfg Config

	mu       sync.Mutex
	sessions map[string]*Session // by session ID
	byUser   map[string]*Session
}

func NewManager(cfg Config) *Manager {
	if cfg.SnapshotEvery <= 0 {
		cfg.SnapshotEvery = DefaultSnapshotEvery
	}

	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Session),
		byUser:   make(map[string]*Session),
	}
}

// Start creates and runs a session for userID. An existing session for
// the same user is stopped first; the browser client only ever drives one.
func (m *Manager) Start(ctx context.Context, userID string) (*Session, error) {
	if prev, ok := m.ForUser(userID); ok {
		logrus.Warnf("user %s started a session while %s was active, stopping it", userID, prev.ID)
		if _, err := m.Stop(ctx, prev.ID); err != nil {
			return nil, err
		}
	}

	s := &Session{
		ID:        common.MakeSessionID(),
		UserID:    userID,
		StartedAt: time.Now(),
		analyzer: advisor.New(advisor.Config{
			Tuning:  m.cfg.Tuning,
			Catalog: m.cfg.Catalog,
		}),
		buffer:  NewFrameBuffer(),
		done:    make(chan struct{}),
		updates: make(chan Update, updateBuffer),
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	loop, err := tracker.New(tracker.Config{
		Source:    s.buffer,
		Posture:   classify.NewPostureClassifier(m.cfg.Calibration),
		Face:      classify.NewFaceClassifier(m.cfg.Calibration),
		Analyzer:  s.analyzer,
		Period:    m.cfg.Period,
		OnVerdict: func(v *classify.Verdict) { m.onVerdict(loopCtx, s, v) },
		OnAdvice:  func(adv *advisor.Advice) { m.onAdvice(loopCtx, s, adv) },
	})
	if err != nil {
		cancel()
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.byUser[userID] = s
	m.mu.Unlock()

	go func() {
		defer close(s.done)
		loop.Run(loopCtx)
	}()

	metrics.SessionsActive.Inc()
	logrus.Infof("session %s started for user %s", s.ID, userID)

	return s, nil
}

// Stop halts the session's sampling loop, persists its summary and
// removes the live snapshot. The summary is returned so the API can hand
// the client its end-of-session numbers.
func (m *Manager) Stop(ctx context.Context, sessionID string) (*store.SessionSummary, error) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
		delete(m.byUser, s.UserID)
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}

	s.cancel()
	<-s.done
	close(s.updates)
	metrics.SessionsActive.Dec()

	counters := s.analyzer.Snapshot()
	sum := &store.SessionSummary{
		UserID:             s.UserID,
		SessionID:          s.ID,
		StartedAt:          s.StartedAt,
		EndedAt:            time.Now(),
		TotalWorkSeconds:   counters.TotalWorkSeconds,
		GoodPostureSeconds: counters.GoodPostureSeconds,
		SlouchingSeconds:   counters.SlouchingSeconds,
		TooCloseSeconds:    counters.TooCloseSeconds,
		YawnCount:          counters.YawnCount,
		ClosedEyesCount:    counters.ClosedEyesCount,
		AdviceCount:        s.adviceCount,
		PostureScore:       state.PostureScore(counters),
	}

	if m.cfg.Store != nil {
		if err := m.cfg.Store.InsertSessionSummary(ctx, sum); err != nil {
			logrus.Errorf("failed to persist summary for session %s: %v", s.ID, err)
		}
	}
	if m.cfg.Redis != nil {
		if err := state.DeleteSnapshot(ctx, m.cfg.Redis, s.UserID); err != nil {
			logrus.Warnf("failed to delete snapshot for user %s: %v", s.UserID, err)
		}
	}

	logrus.Infof("session %s stopped for user %s after %ds of work", s.ID, s.UserID, counters.TotalWorkSeconds)

	return sum, nil
}

// Get looks up a live session by ID.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]

	return s, ok
}

// ForUser looks up a user's live session.
func (m *Manager) ForUser(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byUser[userID]

	return s, ok
}

// StopAll stops every live session, used during shutdown.
func (m *Manager) StopAll(ctx context.Context) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		if _, err := m.Stop(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
			logrus.Errorf("failed to stop session %s: %v", id, err)
		}
	}
}

// onVerdict runs on the session's loop goroutine.
func (m *Manager) onVerdict(ctx context.Context, s *Session, v *classify.Verdict) {
	s.ticks++
	s.lastStatus = v.Status
	s.lastSeverity = string(v.Severity)
	s.publish(Update{Verdict: v})

	if m.cfg.Redis == nil || s.ticks%int64(m.cfg.SnapshotEvery) != 0 {
		return
	}

	snap := &state.SessionSnapshot{
		UserID:       s.UserID,
		SessionID:    s.ID,
		StartedAt:    s.StartedAt,
		UpdatedAt:    time.Now(),
		Counters:     s.analyzer.Snapshot(),
		LastStatus:   s.lastStatus,
		LastSeverity: s.lastSeverity,
	}
	if err := state.SaveSnapshot(ctx, m.cfg.Redis, snap); err != nil {
		logrus.Warnf("failed to save snapshot for user %s: %v", s.UserID, err)
	}
}

// onAdvice runs on the session's loop goroutine.
func (m *Manager) onAdvice(ctx context.Context, s *Session, adv *advisor.Advice) {
	s.adviceCount++
	s.publish(Update{Advice: adv})

	if m.cfg.Store == nil {
		return
	}
	if err := m.cfg.Store.InsertAdviceEvent(ctx, s.UserID, s.ID, time.Now(), adv); err != nil {
		logrus.Errorf("failed to persist advice event for session %s: %v", s.ID, err)
	}
}
