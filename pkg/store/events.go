package store

import (
	"context"
	"fmt"
	"time"

	"github.com/smardesk/smardesk-backend/pkg/advisor"
)

// AdviceEvent is one persisted advice emission, keyed by user and timestamp.
type AdviceEvent struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"userId"`
	SessionID    string    `json:"sessionId"`
	Timestamp    time.Time `json:"timestamp"`
	Type         string    `json:"type"`
	Priority     string    `json:"priority"`
	Title        string    `json:"title"`
	NeedsWorkout bool      `json:"needsWorkout"`
}

// SessionSummary is the durable record of one finished tracking session.
type SessionSummary struct {
	ID                 int64     `json:"id"`
	UserID             string    `json:"userId"`
	SessionID          string    `json:"sessionId"`
	StartedAt          time.Time `json:"startedAt"`
	EndedAt            time.Time `json:"endedAt"`
	TotalWorkSeconds   int       `json:"totalWorkSeconds"`
	GoodPostureSeconds int       `json:"goodPostureSeconds"`
	SlouchingSeconds   int       `json:"slouchingSeconds"`
	TooCloseSeconds    int       `json:"tooCloseSeconds"`
	YawnCount          int       `json:"yawnCount"`
	ClosedEyesCount    int       `json:"closedEyesCount"`
	AdviceCount        int       `json:"adviceCount"`
	PostureScore       int       `json:"postureScore"`
}

// InsertAdviceEvent appends one advice emission to the log.
func (s *Store) InsertAdviceEvent(ctx context.Context, userID, sessionID string, at time.Time, adv *advisor.Advice) error {
	needsWorkout := 0
	if adv.NeedsWorkout {
		needsWorkout = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO advice_events (user_id, session_id, ts, type, priority, title, needs_workout)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, sessionID, at.Unix(), adv.Type, adv.Priority, adv.Title, needsWorkout)
	if err != nil {
		return fmt.Errorf("failed to insert advice event: %w", err)
	}
	return nil
}

// ListAdviceEvents returns a user's advice events since the given time,
// newest first, capped at limit.
func (s *Store) ListAdviceEvents(ctx context.Context, userID string, since time.Time, limit int) ([]AdviceEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, session_id, ts, type, priority, title, needs_workout
		 FROM advice_events
		 WHERE user_id = ? AND ts >= ?
		 ORDER BY ts DESC
		 LIMIT ?`,
		userID, since.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query advice events: %w", err)
	}
	defer rows.Close()

	var events []AdviceEvent
	for rows.Next() {
		var ev AdviceEvent
		var ts int64
		var needsWorkout int
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.SessionID, &ts, &ev.Type, &ev.Priority, &ev.Title, &needsWorkout); err != nil {
			return nil, fmt.Errorf("failed to scan advice event: %w", err)
		}
		ev.Timestamp = time.Unix(ts, 0)
		ev.NeedsWorkout = needsWorkout != 0
		events = append(events, ev)
	}
	return events, rows.Err()
}

// InsertSessionSummary records a finished session. Summaries are written
// once, on clean session stop.
func (s *Store) InsertSessionSummary(ctx context.Context, sum *SessionSummary) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_summaries
		 (user_id, session_id, started_at, ended_at, total_work_seconds, good_posture_seconds,
		  slouching_seconds, too_close_seconds, yawn_count, closed_eyes_count, advice_count, posture_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.UserID, sum.SessionID, sum.StartedAt.Unix(), sum.EndedAt.Unix(),
		sum.TotalWorkSeconds, sum.GoodPostureSeconds, sum.SlouchingSeconds, sum.TooCloseSeconds,
		sum.YawnCount, sum.ClosedEyesCount, sum.AdviceCount, sum.PostureScore)
	if err != nil {
		return fmt.Errorf("failed to insert session summary: %w", err)
	}
	return nil
}

// ListSessionSummaries returns a user's finished sessions, newest first.
func (s *Store) ListSessionSummaries(ctx context.Context, userID string, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, session_id, started_at, ended_at, total_work_seconds, good_posture_seconds,
		        slouching_seconds, too_close_seconds, yawn_count, closed_eyes_count, advice_count, posture_score
		 FROM session_summaries
		 WHERE user_id = ?
		 ORDER BY started_at DESC
		 LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query session summaries: %w", err)
	}
	defer rows.Close()

	var sums []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		var started, ended int64
		if err := rows.Scan(&sum.ID, &sum.UserID, &sum.SessionID, &started, &ended,
			&sum.TotalWorkSeconds, &sum.GoodPostureSeconds, &sum.SlouchingSeconds, &sum.TooCloseSeconds,
			&sum.YawnCount, &sum.ClosedEyesCount, &sum.AdviceCount, &sum.PostureScore); err != nil {
			return nil, fmt.Errorf("failed to scan session summary: %w", err)
		}
		sum.StartedAt = time.Unix(started, 0)
		sum.EndedAt = time.Unix(ended, 0)
		sums = append(sums, sum)
	}
	return sums, rows.Err()
}

// DailyStat is one day's aggregate for the statistics view.
type DailyStat struct {
	Date               string `json:"date"`
	TotalWorkSeconds   int    `json:"totalWorkSeconds"`
	GoodPostureSeconds int    `json:"goodPostureSeconds"`
	SlouchingSeconds   int    `json:"slouchingSeconds"`
	YawnCount          int    `json:"yawnCount"`
	AdviceCount        int    `json:"adviceCount"`
	Sessions           int    `json:"sessions"`
}

// DailyStats aggregates a user's session summaries per calendar day (UTC)
// over the trailing number of days.
func (s *Store) DailyStats(ctx context.Context, userID string, days int) ([]DailyStat, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	rows, err := s.db.QueryContext(ctx,
		`SELECT date(started_at, 'unixepoch') AS day,
		        SUM(total_work_seconds), SUM(good_posture_seconds), SUM(slouching_seconds),
		        SUM(yawn_count), SUM(advice_count), COUNT(*)
		 FROM session_summaries
		 WHERE user_id = ? AND started_at >= ?
		 GROUP BY day
		 ORDER BY day ASC`,
		userID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []DailyStat
	for rows.Next() {
		var st DailyStat
		if err := rows.Scan(&st.Date, &st.TotalWorkSeconds, &st.GoodPostureSeconds,
			&st.SlouchingSeconds, &st.YawnCount, &st.AdviceCount, &st.Sessions); err != nil {
			return nil, fmt.Errorf("failed to scan daily stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
