package geom

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// ConvexHull returns the convex hull of pts using Andrew's monotone chain.
//
// Points are sorted by x then y; the lower and upper chains are built by
// discarding the last point while the last three do not make a left turn.
// Collinear points on the hull edges are dropped. The result does not repeat
// the first point. Fewer than three distinct input points yield the distinct
// points themselves.
func ConvexHull(pts []Point) []Point {
	sorted := slices.Clone(pts)
	slices.SortFunc(sorted, func(a, b Point) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		case a.Y < b.Y:
			return -1
		case a.Y > b.Y:
			return 1
		}
		return 0
	})
	sorted = slices.CompactFunc(sorted, Near)
	if len(sorted) < 3 {
		return sorted
	}

	lower := make([]Point, 0, len(sorted))
	for _, p := range sorted {
		for len(lower) >= 2 && turn(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([]Point, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && turn(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// The last point of each chain is the first point of the other.
	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	return hull
}

// turn is the z component of (b-a) x (c-a); positive for a left turn.
func turn(a, b, c Point) float64 {
	return r2.Cross(r2.Sub(b, a), r2.Sub(c, a))
}
