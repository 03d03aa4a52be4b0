package session

import (
	"time"

	"github.com/smardesk/smardesk-backend/pkg/landmark"
)

// Frame is the wire shape of one detection frame streamed by the client:
// raw keypoint lists from the browser-side pose and face detectors.
type Frame struct {
	Pose       []landmark.Keypoint `json:"pose,omitempty"`
	Face       []landmark.Keypoint `json:"face,omitempty"`
	FrameWidth float64             `json:"frameWidth,omitempty"`
}

func (f Frame) toLandmarkFrame() *landmark.Frame {
	lf := &landmark.Frame{
		FrameWidth: f.FrameWidth,
		CapturedAt: time.Now(),
	}
	if len(f.Pose) > 0 {
		lf.Pose = landmark.NewPoseSample(f.Pose)
	}
	if len(f.Face) > 0 {
		lf.Face = landmark.NewFaceSample(f.Face)
	}

	return lf
}
