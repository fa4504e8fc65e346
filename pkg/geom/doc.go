// Package geom provides the small amount of plane geometry the layout engine
// needs: axis-aligned boxes, the monotone-chain convex hull, ellipse sampling
// and box/ray intersection.
//
// Points are [gonum.org/v1/gonum/spatial/r2.Vec] values so vector arithmetic
// (Add, Sub, Scale, Cross) comes from gonum rather than being re-implemented.
//
// # Coordinates
//
// All coordinates are canvas coordinates: x grows to the right and y grows
// downward. Angles passed to the ellipse helpers are degrees measured
// clockwise from 12 o'clock, so 90° is due right and 270° is due left.
package geom
