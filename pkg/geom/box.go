package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the tolerance used for geometric comparisons.
const Epsilon = 1e-6

// Point is a canvas position.
type Point = r2.Vec

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Box is an axis-aligned rectangle given by its top-left corner and size.
type Box struct {
	X, Y          float64
	Width, Height float64
}

// Left returns the x coordinate of the left edge.
func (b Box) Left() float64 { return b.X }

// Right returns the x coordinate of the right edge.
func (b Box) Right() float64 { return b.X + b.Width }

// Top returns the y coordinate of the top edge.
func (b Box) Top() float64 { return b.Y }

// Bottom returns the y coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.Height }

// CenterX returns the horizontal center.
func (b Box) CenterX() float64 { return b.X + b.Width/2 }

// CenterY returns the vertical center.
func (b Box) CenterY() float64 { return b.Y + b.Height/2 }

// Center returns the center point.
func (b Box) Center() Point { return Pt(b.CenterX(), b.CenterY()) }

// Degenerate reports whether the box has no area.
func (b Box) Degenerate() bool { return b.Width <= Epsilon || b.Height <= Epsilon }

// Translate returns the box moved by d.
func (b Box) Translate(d Point) Box {
	b.X += d.X
	b.Y += d.Y
	return b
}

// Pad grows the box by p on every side.
func (b Box) Pad(p float64) Box {
	return Box{X: b.X - p, Y: b.Y - p, Width: b.Width + 2*p, Height: b.Height + 2*p}
}

// Corners returns the four corners clockwise from top-left.
func (b Box) Corners() []Point {
	return []Point{
		Pt(b.Left(), b.Top()),
		Pt(b.Right(), b.Top()),
		Pt(b.Right(), b.Bottom()),
		Pt(b.Left(), b.Bottom()),
	}
}

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	left := math.Min(b.Left(), o.Left())
	top := math.Min(b.Top(), o.Top())
	right := math.Max(b.Right(), o.Right())
	bottom := math.Max(b.Bottom(), o.Bottom())
	return Box{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Contains reports whether p lies inside or on the edge of the box.
func (b Box) Contains(p Point) bool {
	return p.X >= b.Left()-Epsilon && p.X <= b.Right()+Epsilon &&
		p.Y >= b.Top()-Epsilon && p.Y <= b.Bottom()+Epsilon
}

// Overlaps reports whether the interiors of b and o intersect.
func (b Box) Overlaps(o Box) bool {
	return b.Left() < o.Right()-Epsilon && o.Left() < b.Right()-Epsilon &&
		b.Top() < o.Bottom()-Epsilon && o.Top() < b.Bottom()-Epsilon
}

// BoundsOf returns the bounding box of a point set. The second result is
// false when pts is empty.
func BoundsOf(pts []Point) (Box, bool) {
	if len(pts) == 0 {
		return Box{}, false
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Box{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

// UnionAll returns the union of all boxes. The second result is false when
// boxes is empty.
func UnionAll(boxes []Box) (Box, bool) {
	if len(boxes) == 0 {
		return Box{}, false
	}
	u := boxes[0]
	for _, b := range boxes[1:] {
		u = u.Union(b)
	}
	return u, true
}

// Near reports whether two points are within Epsilon of each other.
func Near(a, b Point) bool {
	return r2.Norm(r2.Sub(a, b)) <= Epsilon
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b Point, t float64) Point {
	return r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
}

// RayExit returns the point where the ray from the box center toward target
// leaves the box. If target coincides with the center, the center is returned.
func RayExit(b Box, target Point) Point {
	c := b.Center()
	d := r2.Sub(target, c)
	if math.Abs(d.X) < Epsilon && math.Abs(d.Y) < Epsilon {
		return c
	}
	tx, ty := math.Inf(1), math.Inf(1)
	if math.Abs(d.X) > Epsilon {
		tx = (b.Width / 2) / math.Abs(d.X)
	}
	if math.Abs(d.Y) > Epsilon {
		ty = (b.Height / 2) / math.Abs(d.Y)
	}
	return r2.Add(c, r2.Scale(math.Min(tx, ty), d))
}
