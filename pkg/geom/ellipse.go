package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// NormalizeAngle maps deg into [0, 360).
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// EllipsePoint returns the point on the ellipse with radii rx, ry centered at
// c, at deg degrees clockwise from 12 o'clock.
func EllipsePoint(c Point, rx, ry, deg float64) Point {
	a := Radians(deg)
	return r2.Add(c, Pt(rx*math.Sin(a), -ry*math.Cos(a)))
}

// EllipseTangent returns the unit tangent of the ellipse at deg, pointing in
// the direction of increasing angle.
func EllipseTangent(rx, ry, deg float64) Point {
	a := Radians(deg)
	t := Pt(rx*math.Cos(a), ry*math.Sin(a))
	n := r2.Norm(t)
	if n < Epsilon {
		return Pt(1, 0)
	}
	return r2.Scale(1/n, t)
}

// EllipseArcRate returns the arc length swept per radian at deg. Arc length
// grows linearly with the radii, which is what lets the radial layout trade
// angle for radius.
func EllipseArcRate(rx, ry, deg float64) float64 {
	a := Radians(deg)
	return math.Hypot(rx*math.Cos(a), ry*math.Sin(a))
}

// OnRightHalf reports whether an angle lies in the right half-plane. The
// 12 o'clock direction counts as right, 6 o'clock as left.
func OnRightHalf(deg float64) bool {
	deg = NormalizeAngle(deg)
	return deg < 180
}
