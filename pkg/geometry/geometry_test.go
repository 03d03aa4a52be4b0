package geometry

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
)

func TestAngle(t *testing.T) {
	tests := []struct {
		name     string
		a, b, c  r2.Point
		expected float64
	}{
		{
			name:     "right angle",
			a:        r2.Point{X: 0, Y: -100},
			b:        r2.Point{X: 0, Y: 0},
			c:        r2.Point{X: 100, Y: 0},
			expected: 90,
		},
		{
			name:     "straight line",
			a:        r2.Point{X: -50, Y: 0},
			b:        r2.Point{X: 0, Y: 0},
			c:        r2.Point{X: 50, Y: 0},
			expected: 180,
		},
		{
			name:     "coincident rays",
			a:        r2.Point{X: 10, Y: 10},
			b:        r2.Point{X: 0, Y: 0},
			c:        r2.Point{X: 20, Y: 20},
			expected: 0,
		},
		{
			name:     "45 degrees",
			a:        r2.Point{X: 0, Y: -100},
			b:        r2.Point{X: 0, Y: 0},
			c:        r2.Point{X: 100, Y: -100},
			expected: 45,
		},
		{
			name:     "reflex folds back below 180",
			a:        r2.Point{X: -1, Y: -100},
			b:        r2.Point{X: 0, Y: 0},
			c:        r2.Point{X: 1, Y: -100},
			expected: 1.1457,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Angle(tt.a, tt.b, tt.c)
			if math.Abs(got-tt.expected) > 0.001 {
				t.Errorf("Angle() = %v, expected %v", got, tt.expected)
			}
			if got < 0 || got > 180 {
				t.Errorf("Angle() = %v, outside [0, 180]", got)
			}
		})
	}
}

func TestDistance(t *testing.T) {
	a := r2.Point{X: 0, Y: 0}
	b := r2.Point{X: 3, Y: 4}

	if got := Distance(a, b); got != 5 {
		t.Errorf("Distance() = %v, expected 5", got)
	}

	if got := Distance(a, a); got != 0 {
		t.Errorf("Distance to self = %v, expected 0", got)
	}
}

func TestMidpoint(t *testing.T) {
	a := r2.Point{X: 100, Y: 200}
	b := r2.Point{X: 300, Y: 400}

	mid := Midpoint(a, b)
	if mid.X != 200 || mid.Y != 300 {
		t.Errorf("Midpoint() = %v, expected (200, 300)", mid)
	}
}
