package classify

import (
	"math"

	"github.com/smardesk/smardesk-backend/pkg/landmark"
)

// Lid proxy indices within an eye region's contour order.
const (
	lidTopIndex    = 1
	lidBottomIndex = 5
	minEyePoints   = 7
)

// FaceClassifier judges one face sample per tick. Proximity, yawn and
// closed-eye checks are independent gates evaluated in that fixed order; the
// first non-ok result wins, so simultaneous face issues never combine into
// one verdict.
type FaceClassifier struct {
	cal   Calibration
	rules []faceRule
}

type faceRule struct {
	name     string
	evaluate func(*faceContext) *Verdict
}

type faceContext struct {
	sample     *landmark.FaceSample
	frameWidth float64
}

// NewFaceClassifier creates a classifier with the given calibration.
func NewFaceClassifier(cal Calibration) *FaceClassifier {
	c := &FaceClassifier{cal: cal}
	c.rules = []faceRule{
		{name: "proximity", evaluate: c.proximity},
		{name: "yawn", evaluate: c.yawn},
		{name: "closed_eyes", evaluate: c.closedEyes},
	}
	return c
}

// Classify returns exactly one face verdict for the sample. frameWidth is
// the source frame's pixel width, used to normalize the proximity check.
func (c *FaceClassifier) Classify(sample *landmark.FaceSample, frameWidth float64) *Verdict {
	if sample == nil {
		return &Verdict{Domain: DomainFace, Status: StatusNoFace}
	}
	if frameWidth <= 0 {
		frameWidth = landmark.DefaultFrameWidth
	}

	ctx := &faceContext{sample: sample, frameWidth: frameWidth}
	for _, rule := range c.rules {
		if v := rule.evaluate(ctx); v != nil {
			return v
		}
	}

	return &Verdict{Domain: DomainFace, Status: StatusOK}
}

// proximity estimates screen distance from the inter-eye pixel distance
// relative to frame width. Larger ratio means the face fills more of the
// frame, i.e. the user is closer.
func (c *FaceClassifier) proximity(ctx *faceContext) *Verdict {
	leftEye := ctx.sample.Region(landmark.RegionLeftEye)
	rightEye := ctx.sample.Region(landmark.RegionRightEye)
	if len(leftEye) == 0 || len(rightEye) == 0 {
		return nil
	}

	eyeDistance := math.Abs(leftEye[0].X - rightEye[0].X)
	distanceRatio := eyeDistance / ctx.frameWidth

	switch {
	case distanceRatio > c.cal.DistanceRatioCritical:
		return &Verdict{
			Domain:   DomainFace,
			Status:   StatusTooClose,
			Message:  "Dangerously close to the screen!",
			Detail:   "Move back to 50-70 cm from the screen",
			Severity: SeverityCritical,
			Color:    ColorCritical,
			TooClose: true,
		}
	case distanceRatio > c.cal.DistanceRatioHigh:
		return &Verdict{
			Domain:   DomainFace,
			Status:   StatusSlightlyClose,
			Message:  "Too close to the screen",
			Detail:   "Move back 10-20 cm",
			Severity: SeverityHigh,
			Color:    ColorHigh,
			TooClose: true,
		}
	case distanceRatio > c.cal.DistanceRatioMedium:
		return &Verdict{
			Domain:   DomainFace,
			Status:   StatusBitClose,
			Message:  "A bit closer than ideal",
			Detail:   "Optimal distance is 50-70 cm from the screen",
			Severity: SeverityMedium,
			Color:    ColorWarn,
			TooClose: true,
		}
	}
	return nil
}

// yawn compares the vertical gap between the middle upper-lip and lower-lip
// contour points against the mouth-gap threshold.
func (c *FaceClassifier) yawn(ctx *faceContext) *Verdict {
	upper := ctx.sample.Region(landmark.RegionUpperLip)
	lower := ctx.sample.Region(landmark.RegionLowerLip)
	if len(upper) == 0 || len(lower) == 0 {
		return nil
	}

	upperY := upper[len(upper)/2].Y
	lowerY := lower[len(lower)/2].Y
	if math.Abs(upperY-lowerY) > c.cal.YawnMouthGap {
		return &Verdict{
			Domain:   DomainFace,
			Status:   StatusYawning,
			Message:  "Yawning detected",
			Detail:   "You look tired, consider a break",
			Severity: SeverityHigh,
			Color:    ColorHigh,
			Yawn:     true,
		}
	}
	return nil
}

// closedEyes averages both eyes' lid gaps, using fixed contour indices as
// top and bottom lid proxies.
func (c *FaceClassifier) closedEyes(ctx *faceContext) *Verdict {
	leftEye := ctx.sample.Region(landmark.RegionLeftEye)
	rightEye := ctx.sample.Region(landmark.RegionRightEye)
	if len(leftEye) < minEyePoints || len(rightEye) < minEyePoints {
		return nil
	}

	leftGap := math.Abs(leftEye[lidTopIndex].Y - leftEye[lidBottomIndex].Y)
	rightGap := math.Abs(rightEye[lidTopIndex].Y - rightEye[lidBottomIndex].Y)
	avgGap := (leftGap + rightGap) / 2

	if avgGap < c.cal.ClosedEyeGap {
		return &Verdict{
			Domain:     DomainFace,
			Status:     StatusEyesClosed,
			Message:    "Eyes closed",
			Detail:     "Are you falling asleep?",
			Severity:   SeverityHigh,
			Color:      ColorHigh,
			EyesClosed: true,
		}
	}
	return nil
}
