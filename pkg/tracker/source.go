// Package tracker runs the fixed-interval sampling loop that drives one
// tracking session: poll the landmark source, classify, combine, feed the
// behavior analyzer, and surface the tick's verdict plus any advice.
package tracker

import (
	"context"

	"github.com/smardesk/smardesk-backend/pkg/landmark"
)

// LandmarkSource produces one frame's worth of landmark estimates per call.
// A frame with nil Pose/Face is the designed "nothing detected" signal; an
// error means the estimate itself failed and the tick should be skipped.
// Estimate may block (the underlying model inference can be remote); the
// loop guarantees at most one call in flight per session.
type LandmarkSource interface {
	Estimate(ctx context.Context) (*landmark.Frame, error)
}

// SourceFunc adapts a plain function to the LandmarkSource interface.
type SourceFunc func(ctx context.Context) (*landmark.Frame, error)

// Estimate implements LandmarkSource.
func (f SourceFunc) Estimate(ctx context.Context) (*landmark.Frame, error) {
	return f(ctx)
}
