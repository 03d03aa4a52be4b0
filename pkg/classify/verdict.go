// Package classify turns single-tick landmark samples into discrete posture
// and face verdicts, and merges the two into the one verdict reported for a
// sampling tick. Both classifiers are explicit ordered rule ladders: rules
// are evaluated in declaration order and the first match wins, which keeps
// the precedence auditable rule by rule.
package classify

import "time"

// Domain marks which classifier produced a verdict.
type Domain string

const (
	DomainPose Domain = "pose"
	DomainFace Domain = "face"
)

// Severity is the ordinal ranking used for tie-breaking between concurrent
// pose and face verdicts. SeverityNone marks informational verdicts that
// carry no ranking at all (no_person, no_face, ok).
type Severity string

const (
	SeverityNone     Severity = ""
	SeverityGood     Severity = "good"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Posture verdict statuses.
const (
	StatusNoPerson         = "no_person"
	StatusTurnToCamera     = "turn_to_camera"
	StatusSlouchingCritical = "slouching_critical"
	StatusSlouching        = "slouching"
	StatusSlightSlouch     = "slight_slouch"
	StatusNarrowShoulders  = "narrow_shoulders"
	StatusUnevenShoulders  = "uneven_shoulders"
	StatusSlightTilt       = "slight_tilt"
	StatusPerfect          = "perfect"
)

// Face verdict statuses.
const (
	StatusNoFace        = "no_face"
	StatusTooClose      = "too_close"
	StatusSlightlyClose = "slightly_close"
	StatusBitClose      = "bit_close"
	StatusYawning       = "yawning"
	StatusEyesClosed    = "eyes_closed"
	StatusOK            = "ok"
)

// Display colors, shared with the UI.
const (
	ColorGood     = "#00c49f"
	ColorWarn     = "#ffbb28"
	ColorHigh     = "#ff6584"
	ColorCritical = "#ff3333"
)

// Verdict is one classifier's discrete judgment for a single sampling tick.
// Verdicts are ephemeral: they are produced, combined, handed to the behavior
// analyzer and the UI, and not retained afterwards.
type Verdict struct {
	Domain     Domain    `json:"domain"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	Severity   Severity  `json:"severity,omitempty"`
	Color      string    `json:"color,omitempty"`
	TooClose   bool      `json:"isTooClose,omitempty"`
	Yawn       bool      `json:"isYawn,omitempty"`
	EyesClosed bool      `json:"isEyesClosed,omitempty"`
	At         time.Time `json:"at,omitempty"`
}

// IsSlouch reports whether the verdict counts toward slouching time in the
// behavior analyzer.
func (v *Verdict) IsSlouch() bool {
	switch v.Status {
	case StatusSlouching, StatusSlouchingCritical, StatusSlightSlouch, StatusNarrowShoulders:
		return true
	}
	return false
}
