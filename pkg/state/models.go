// Package state persists live tracking-session snapshots in Redis so the
// statistics surface can show in-progress sessions without reaching into a
// session's analyzer goroutine. Snapshots are written by the session manager
// on a fixed cadence and expire on their own if a session dies without a
// clean stop.
package state

import (
	"time"

	"github.com/smardesk/smardesk-backend/pkg/advisor"
)

// SessionSnapshot is the last published view of one active tracking session.
type SessionSnapshot struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`

	StartedAt time.Time `json:"startedAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Counters is a copy of the analyzer state at publish time.
	Counters advisor.State `json:"counters"`

	// LastStatus and LastSeverity mirror the most recent combined verdict.
	LastStatus   string `json:"lastStatus,omitempty"`
	LastSeverity string `json:"lastSeverity,omitempty"`
}
