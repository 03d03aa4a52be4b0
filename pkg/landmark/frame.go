package landmark

import "time"

// Frame is one sampling tick's worth of estimator output: zero-or-one pose,
// zero-or-one face, plus the source frame's pixel width used for proximity
// scale normalization. A nil Pose or Face means "nothing detected", which is
// the designed not-found signal rather than an error.
type Frame struct {
	Pose       *PoseSample
	Face       *FaceSample
	FrameWidth float64
	CapturedAt time.Time
}

// DefaultFrameWidth is assumed when the client did not report the video
// element's pixel width.
const DefaultFrameWidth = 640

// Width returns the frame pixel width, falling back to DefaultFrameWidth for
// unreported or degenerate values.
func (f *Frame) Width() float64 {
	if f == nil || f.FrameWidth <= 0 {
		return DefaultFrameWidth
	}
	return f.FrameWidth
}
