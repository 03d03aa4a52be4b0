package session

import (
	"context"
	"sync"

	"github.com/smardesk/smardesk-backend/pkg/landmark"
)

// FrameBuffer holds the most recent landmark frame pushed by a client
// stream. It is the landmark source for a session's sampling loop: the
// loop reads at a fixed cadence while the client pushes at whatever rate
// its detector runs.
//
// A frame is consumed by the read that observes it. If the client has not
// pushed since the last tick the loop sees a nil frame, which classifies
// as nobody present rather than replaying a stale pose.
type FrameBuffer struct {
	mu    sync.Mutex
	frame *landmark.Frame
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Push replaces the buffered frame. Frames arriving faster than the
// sampling period overwrite each other; only the latest is classified.
func (b *FrameBuffer) Push(f *landmark.Frame) {
	b.mu.Lock()
	b.frame = f
	b.mu.Unlock()
}

// Estimate returns the latest unconsumed frame, or nil if the client has
// not pushed since the previous call.
func (b *FrameBuffer) Estimate(ctx context.Context) (*landmark.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	f := b.frame
	b.frame = nil
	b.mu.Unlock()

	return f, nil
}
