package classify

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/smardesk/smardesk-backend/pkg/geometry"
	"github.com/smardesk/smardesk-backend/pkg/landmark"
)

// verticalRefOffset is how far above the shoulder midpoint the vertical
// reference point sits when measuring forward head tilt.
const verticalRefOffset = 100

// PostureClassifier judges one pose sample per tick. Its rules form an
// ordered decision ladder: head tilt, then shoulder width, then shoulder
// imbalance. The first matching rule produces the verdict and masks the
// later ones, so a critical slouch hides a simultaneous shoulder tilt.
type PostureClassifier struct {
	cal   Calibration
	rules []postureRule
}

type postureRule struct {
	name     string
	evaluate func(*poseContext) *Verdict
}

// poseContext carries the per-tick measurements shared by the rules.
type poseContext struct {
	sample        *landmark.PoseSample
	leftShoulder  landmark.Keypoint
	rightShoulder landmark.Keypoint
	shoulderMid   r2.Point
	shoulderWidth float64
}

// NewPostureClassifier creates a classifier with the given calibration.
func NewPostureClassifier(cal Calibration) *PostureClassifier {
	c := &PostureClassifier{cal: cal}
	c.rules = []postureRule{
		{name: "head_tilt", evaluate: c.headTilt},
		{name: "shoulder_width", evaluate: c.shoulderWidth},
		{name: "shoulder_imbalance", evaluate: c.shoulderImbalance},
	}
	return c
}

// Classify returns exactly one posture verdict for the sample. A nil sample
// means no body was detected this tick; that is a designed verdict state,
// not an error.
func (c *PostureClassifier) Classify(sample *landmark.PoseSample) *Verdict {
	if sample == nil || sample.Len() == 0 {
		return &Verdict{
			Domain:  DomainPose,
			Status:  StatusNoPerson,
			Message: "No person detected",
			Detail:  "Make sure you are visible to the camera",
			Color:   ColorWarn,
		}
	}

	conf := c.cal.MinConfidence
	if !sample.Visible(landmark.RoleNose, conf) ||
		!sample.Visible(landmark.RoleLeftShoulder, conf) ||
		!sample.Visible(landmark.RoleRightShoulder, conf) {
		return turnToCamera("Your face and shoulders need to be visible")
	}

	left, _ := sample.Get(landmark.RoleLeftShoulder)
	right, _ := sample.Get(landmark.RoleRightShoulder)
	ctx := &poseContext{
		sample:        sample,
		leftShoulder:  left,
		rightShoulder: right,
		shoulderMid:   geometry.Midpoint(left.Point(), right.Point()),
		shoulderWidth: math.Abs(left.X - right.X),
	}

	// Coincident shoulder keypoints make every ratio below meaningless.
	// Rather than letting a zero denominator skip severity tiers silently,
	// treat the sample as unusable and ask for a better view.
	if ctx.shoulderWidth == 0 {
		return turnToCamera("Sit facing the camera so both shoulders are visible")
	}

	for _, rule := range c.rules {
		if v := rule.evaluate(ctx); v != nil {
			return v
		}
	}

	return &Verdict{
		Domain:   DomainPose,
		Status:   StatusPerfect,
		Message:  "Great posture!",
		Detail:   "Keep sitting straight",
		Severity: SeverityGood,
		Color:    ColorGood,
	}
}

func turnToCamera(detail string) *Verdict {
	return &Verdict{
		Domain:  DomainPose,
		Status:  StatusTurnToCamera,
		Message: "Turn toward the camera",
		Detail:  detail,
		Color:   ColorWarn,
	}
}

// headTilt measures forward head posture from the ear midpoint: the angle
// between the vertical through the shoulder midpoint and the shoulder-to-ear
// line, plus the horizontal ear offset relative to shoulder width. Requires
// both ears; without them the rule abstains and the ladder moves on.
func (c *PostureClassifier) headTilt(ctx *poseContext) *Verdict {
	conf := c.cal.MinConfidence
	if !ctx.sample.Visible(landmark.RoleLeftEar, conf) || !ctx.sample.Visible(landmark.RoleRightEar, conf) {
		return nil
	}

	leftEar, _ := ctx.sample.Get(landmark.RoleLeftEar)
	rightEar, _ := ctx.sample.Get(landmark.RoleRightEar)
	earMid := geometry.Midpoint(leftEar.Point(), rightEar.Point())

	verticalRef := r2.Point{X: ctx.shoulderMid.X, Y: ctx.shoulderMid.Y - verticalRefOffset}
	headAngle := geometry.Angle(verticalRef, ctx.shoulderMid, earMid)
	earShoulderRatio := math.Abs(earMid.X-ctx.shoulderMid.X) / ctx.shoulderWidth

	switch {
	case headAngle > c.cal.HeadAngleCritical || earShoulderRatio > c.cal.EarShoulderRatioCritical:
		return &Verdict{
			Domain:   DomainPose,
			Status:   StatusSlouchingCritical,
			Message:  "Severe slouching!",
			Detail:   "Your head is far forward. Sit back!",
			Severity: SeverityCritical,
			Color:    ColorCritical,
		}
	case headAngle > c.cal.HeadAngleHigh || earShoulderRatio > c.cal.EarShoulderRatioHigh:
		return &Verdict{
			Domain:   DomainPose,
			Status:   StatusSlouching,
			Message:  "Noticeable slouching",
			Detail:   "Pull your head and back upright",
			Severity: SeverityHigh,
			Color:    ColorHigh,
		}
	case headAngle > c.cal.HeadAngleMedium || earShoulderRatio > c.cal.EarShoulderRatioMedium:
		return &Verdict{
			Domain:   DomainPose,
			Status:   StatusSlightSlouch,
			Message:  "Slight slouch",
			Detail:   "Straighten your back a little",
			Severity: SeverityMedium,
			Color:    ColorWarn,
		}
	}
	return nil
}

// shoulderWidth flags hunched shoulders by comparing shoulder span to head
// width. Head width comes from the ear span, or the eye span scaled by 1.5
// when the ears are not visible.
func (c *PostureClassifier) shoulderWidth(ctx *poseContext) *Verdict {
	conf := c.cal.MinConfidence

	var headWidth float64
	if ctx.sample.Visible(landmark.RoleLeftEar, conf) && ctx.sample.Visible(landmark.RoleRightEar, conf) {
		leftEar, _ := ctx.sample.Get(landmark.RoleLeftEar)
		rightEar, _ := ctx.sample.Get(landmark.RoleRightEar)
		headWidth = math.Abs(leftEar.X - rightEar.X)
	} else if ctx.sample.Visible(landmark.RoleLeftEye, conf) && ctx.sample.Visible(landmark.RoleRightEye, conf) {
		leftEye, _ := ctx.sample.Get(landmark.RoleLeftEye)
		rightEye, _ := ctx.sample.Get(landmark.RoleRightEye)
		// Eyes sit closer together than ears.
		headWidth = math.Abs(leftEye.X-rightEye.X) * 1.5
	}

	if headWidth <= 0 {
		return nil
	}

	if ctx.shoulderWidth/headWidth < c.cal.ShoulderWidthMin {
		return &Verdict{
			Domain:   DomainPose,
			Status:   StatusNarrowShoulders,
			Message:  "Shoulders hunched",
			Detail:   "Roll your shoulders back",
			Severity: SeverityMedium,
			Color:    ColorWarn,
		}
	}
	return nil
}

// shoulderImbalance flags one shoulder sitting higher than the other. A
// lower y coordinate is higher on screen.
func (c *PostureClassifier) shoulderImbalance(ctx *poseContext) *Verdict {
	diff := math.Abs(ctx.leftShoulder.Y - ctx.rightShoulder.Y)

	if diff > c.cal.ShoulderImbalanceHigh {
		detail := "Right shoulder is higher"
		if ctx.leftShoulder.Y < ctx.rightShoulder.Y {
			detail = "Left shoulder is higher"
		}
		return &Verdict{
			Domain:   DomainPose,
			Status:   StatusUnevenShoulders,
			Message:  "Shoulders are badly uneven",
			Detail:   detail,
			Severity: SeverityHigh,
			Color:    ColorHigh,
		}
	}

	if diff > c.cal.ShoulderImbalanceMedium {
		return &Verdict{
			Domain:   DomainPose,
			Status:   StatusSlightTilt,
			Message:  "Slight shoulder tilt",
			Detail:   "Level your shoulders",
			Severity: SeverityMedium,
			Color:    ColorWarn,
		}
	}
	return nil
}
