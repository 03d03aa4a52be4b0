// Package landmark defines the keypoint types produced by the pose and face
// estimation models. The estimators themselves run outside this service
// (in the browser, via MoveNet and MediaPipe FaceMesh); this package adapts
// their raw named-point output into typed samples the classifiers index by
// role instead of re-filtering name strings on every tick.
package landmark

import (
	"github.com/golang/geo/r2"
)

// Keypoint is a single named 2D point with a detection confidence score.
// Coordinates are in source-frame pixels.
type Keypoint struct {
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float64 `json:"score"`
}

// Point returns the keypoint position as an r2 vector.
func (k Keypoint) Point() r2.Point {
	return r2.Point{X: k.X, Y: k.Y}
}

// PoseRole identifies one anatomical location in a body pose sample.
// Role names follow the MoveNet keypoint naming convention.
type PoseRole string

const (
	RoleNose          PoseRole = "nose"
	RoleLeftEye       PoseRole = "left_eye"
	RoleRightEye      PoseRole = "right_eye"
	RoleLeftEar       PoseRole = "left_ear"
	RoleRightEar      PoseRole = "right_ear"
	RoleLeftShoulder  PoseRole = "left_shoulder"
	RoleRightShoulder PoseRole = "right_shoulder"
)

// poseRoles lists the roles the classifiers care about. Keypoints with any
// other name are dropped at ingestion.
var poseRoles = []PoseRole{
	RoleNose,
	RoleLeftEye,
	RoleRightEye,
	RoleLeftEar,
	RoleRightEar,
	RoleLeftShoulder,
	RoleRightShoulder,
}

// PoseSample holds one detected body as a role-indexed keypoint mapping.
// Only the first (most confident) detected body is modeled; the tracking
// pipeline assumes a single subject.
type PoseSample struct {
	points map[PoseRole]Keypoint
}

// NewPoseSample builds a PoseSample from the estimator's raw keypoint list.
// Unknown names are ignored. Duplicate names keep the first occurrence.
func NewPoseSample(raw []Keypoint) *PoseSample {
	s := &PoseSample{points: make(map[PoseRole]Keypoint, len(poseRoles))}
	for _, kp := range raw {
		role := PoseRole(kp.Name)
		for _, known := range poseRoles {
			if role == known {
				if _, exists := s.points[role]; !exists {
					s.points[role] = kp
				}
				break
			}
		}
	}
	return s
}

// Get returns the keypoint for a role, and whether it was present in the
// sample at all.
func (s *PoseSample) Get(role PoseRole) (Keypoint, bool) {
	kp, ok := s.points[role]
	return kp, ok
}

// Visible reports whether the role is present with a confidence score of at
// least minScore.
func (s *PoseSample) Visible(role PoseRole, minScore float64) bool {
	kp, ok := s.points[role]
	return ok && kp.Score >= minScore
}

// Len returns the number of recognized keypoints in the sample.
func (s *PoseSample) Len() int {
	return len(s.points)
}
