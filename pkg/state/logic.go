package state

import (
	"time"

	"github.com/smardesk/smardesk-backend/pkg/advisor"
)

// PostureScore derives a 0-100 posture quality score from the session
// counters: the share of observed posture time spent in good posture.
// Returns 100 for sessions with no posture observations yet.
func PostureScore(s advisor.State) int {
	observed := s.GoodPostureSeconds + s.SlouchingSeconds
	if observed == 0 {
		return 100
	}
	return 100 * s.GoodPostureSeconds / observed
}

// WorkMinutes returns the total tracked work time in whole minutes.
func WorkMinutes(s advisor.State) int {
	return s.TotalWorkSeconds / 60
}

// IsStale reports whether a snapshot has not been updated within maxAge and
// should be treated as a dead session by the live view.
func IsStale(snap *SessionSnapshot, now time.Time, maxAge time.Duration) bool {
	if snap == nil {
		return true
	}
	return now.Sub(snap.UpdatedAt) > maxAge
}
