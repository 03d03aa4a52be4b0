package session

import (
	"time"

	"github.com/smardesk/smardesk-backend/pkg/advisor"
	"github.com/smardesk/smardesk-backend/pkg/classify"
)

// updateBuffer is the per-session update channel depth. Slow websocket
// writers lose intermediate verdicts, never advice-free correctness: the
// analyzer state is authoritative and published separately.
const updateBuffer = 16

// Update is one message pushed to a session's subscriber. Exactly one of
// the two fields is set.
type Update struct {
	Verdict *classify.Verdict `json:"verdict,omitempty"`
	Advice  *advisor.Advice   `json:"advice,omitempty"`
}

// Session is one user's live tracking session: an analyzer plus the
// sampling loop driving it, fed by frames the client streams in.
type Session struct {
	ID        string
	UserID    string
	StartedAt time.Time

	analyzer *advisor.Analyzer
	buffer   *FrameBuffer

	cancel func()
	done   chan struct{}

	updates chan Update

	// Written only on the loop goroutine; read there and, after done is
	// closed, by Stop.
	ticks        int64
	adviceCount  int
	lastStatus   string
	lastSeverity string
}

// Push feeds one client frame into the session's sampling loop.
func (s *Session) Push(f Frame) {
	s.buffer.Push(f.toLandmarkFrame())
}

// Updates is the stream of verdicts and advice produced by the sampling
// loop, for delivery back to the client.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

// Done is closed when the session's sampling loop has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) publish(u Update) {
	select {
	case s.updates <- u:
	default:
	}
}
