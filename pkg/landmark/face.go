package landmark

import "strings"

// FaceRegion identifies a group of face-mesh landmarks the face classifier
// reads. The mesh itself has several hundred points; only these regions
// matter for proximity, yawn and closed-eye detection.
type FaceRegion string

const (
	RegionLeftEye  FaceRegion = "left_eye"
	RegionRightEye FaceRegion = "right_eye"
	RegionUpperLip FaceRegion = "upper_lip"
	RegionLowerLip FaceRegion = "lower_lip"
)

// regionForName maps a raw face-mesh landmark name onto a region. FaceMesh
// contour names embed the region as a substring (e.g. "leftEyeUpper0",
// "lipsLowerInner"), so the grouping happens once here instead of on every
// classifier tick.
func regionForName(name string) (FaceRegion, bool) {
	switch {
	case strings.Contains(name, "leftEye"):
		return RegionLeftEye, true
	case strings.Contains(name, "rightEye"):
		return RegionRightEye, true
	case strings.Contains(name, "lipsUpper") || strings.Contains(name, "upperLips"):
		return RegionUpperLip, true
	case strings.Contains(name, "lipsLower") || strings.Contains(name, "lowerLips"):
		return RegionLowerLip, true
	}
	return "", false
}

// FaceSample holds one detected face grouped by region. Point order within a
// region preserves the estimator's contour order, which the classifier relies
// on for its lid and lip index conventions.
type FaceSample struct {
	regions map[FaceRegion][]Keypoint
}

// NewFaceSample builds a FaceSample from the estimator's raw landmark list.
// Landmarks outside the recognized regions are dropped.
func NewFaceSample(raw []Keypoint) *FaceSample {
	s := &FaceSample{regions: make(map[FaceRegion][]Keypoint, 4)}
	for _, kp := range raw {
		if region, ok := regionForName(kp.Name); ok {
			s.regions[region] = append(s.regions[region], kp)
		}
	}
	return s
}

// Region returns the landmarks for a region in contour order. The returned
// slice is nil when the region was not present.
func (s *FaceSample) Region(region FaceRegion) []Keypoint {
	return s.regions[region]
}
