package classify

// Combine merges one posture verdict and one face verdict into the single
// verdict reported for the tick. The precedence is a deliberate design
// decision, not an incidental default: posture outranks face at equal
// severity, except that critical face verdicts and the yawn/closed-eye flags
// jump the queue because the behavior analyzer feeds on those flags.
//
//  1. face critical
//  2. posture critical
//  3. face yawn or closed eyes (even below critical severity)
//  4. posture high
//  5. face high
//  6. posture medium
//  7. face medium
//  8. posture (default, even when merely good/ok)
func Combine(posture, face *Verdict) *Verdict {
	switch {
	case face.Severity == SeverityCritical:
		return face
	case posture.Severity == SeverityCritical:
		return posture
	case face.Yawn || face.EyesClosed:
		return face
	case posture.Severity == SeverityHigh:
		return posture
	case face.Severity == SeverityHigh:
		return face
	case posture.Severity == SeverityMedium:
		return posture
	case face.Severity == SeverityMedium:
		return face
	default:
		return posture
	}
}
