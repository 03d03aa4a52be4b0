package classify

// Calibration holds the geometric thresholds both classifiers compare
// against. The values are calibrated heuristics tuned on webcam footage, not
// physiologically validated constants; they can be overridden from the
// tuning file.
type Calibration struct {
	// Forward head tilt, in degrees from vertical.
	HeadAngleCritical float64 `yaml:"head_angle_critical"`
	HeadAngleHigh     float64 `yaml:"head_angle_high"`
	HeadAngleMedium   float64 `yaml:"head_angle_medium"`

	// Horizontal ear-to-shoulder offset relative to shoulder width.
	EarShoulderRatioCritical float64 `yaml:"ear_shoulder_ratio_critical"`
	EarShoulderRatioHigh     float64 `yaml:"ear_shoulder_ratio_high"`
	EarShoulderRatioMedium   float64 `yaml:"ear_shoulder_ratio_medium"`

	// Shoulder height difference, in pixels.
	ShoulderImbalanceHigh   float64 `yaml:"shoulder_imbalance_high"`
	ShoulderImbalanceMedium float64 `yaml:"shoulder_imbalance_medium"`

	// Minimum shoulder-width to head-width ratio for open shoulders.
	ShoulderWidthMin float64 `yaml:"shoulder_width_min"`

	// Minimum keypoint confidence for a point to be trusted.
	MinConfidence float64 `yaml:"min_confidence"`

	// Inter-eye distance relative to frame width; larger means closer.
	DistanceRatioCritical float64 `yaml:"distance_ratio_critical"`
	DistanceRatioHigh     float64 `yaml:"distance_ratio_high"`
	DistanceRatioMedium   float64 `yaml:"distance_ratio_medium"`

	// Vertical lip gap, in pixels, above which the mouth counts as a yawn.
	YawnMouthGap float64 `yaml:"yawn_mouth_gap"`

	// Average lid gap, in pixels, below which the eyes count as closed.
	ClosedEyeGap float64 `yaml:"closed_eye_gap"`
}

// DefaultCalibration returns the production thresholds.
func DefaultCalibration() Calibration {
	return Calibration{
		HeadAngleCritical:        35,
		HeadAngleHigh:            25,
		HeadAngleMedium:          15,
		EarShoulderRatioCritical: 0.15,
		EarShoulderRatioHigh:     0.10,
		EarShoulderRatioMedium:   0.05,
		ShoulderImbalanceHigh:    40,
		ShoulderImbalanceMedium:  25,
		ShoulderWidthMin:         1.4,
		MinConfidence:            0.4,
		DistanceRatioCritical:    0.30,
		DistanceRatioHigh:        0.24,
		DistanceRatioMedium:      0.20,
		YawnMouthGap:             40,
		ClosedEyeGap:             2.0,
	}
}
