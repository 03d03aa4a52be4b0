// Package geometry provides the 2D angle and distance primitives shared by
// the posture and face classifiers. All math happens in source-frame pixel
// space on r2 vectors.
package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// Angle returns the angle at vertex b formed by the rays b->a and b->c, in
// degrees within [0, 180]. It is computed from the difference of the two
// rays' atan2 bearings; values past 180 fold back to 360-v so atan2
// wraparound never reports a reflex angle.
func Angle(a, b, c r2.Point) float64 {
	radians := math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(a.Y-b.Y, a.X-b.X)
	angle := math.Abs(radians * 180.0 / math.Pi)
	if angle > 180 {
		angle = 360 - angle
	}
	return angle
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b r2.Point) float64 {
	return a.Sub(b).Norm()
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b r2.Point) r2.Point {
	return r2.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
