// Package geom provides the stateless 2D geometry kernel used by the scene model.
//
// All functions are pure: they never mutate their inputs and never panic on
// degenerate input (empty polygons, zero-length segments, collinear vertices).
//
// # Vectors
//
// [Vec] is a small value type with X, Y and Z components. Z is carried through
// so that scene objects can keep a depth value, but every algorithm in this
// package works in the XY plane.
//
// # Polygons
//
// [PointInPolygon] is a quadrant-based winding number test. [ClipLine] returns
// the crossings of an infinite line with a polygon outline, which is how
// rectangular and polygonal boundaries resolve their connection points:
//
//	hits := geom.ClipLine(square, from, center)
//	nearest, ok := geom.Nearest(from, hits)
//
// # Projection
//
// [ProjectToCircle] places a point on a circle in the direction of another
// point. [ProjectOnLine] projects onto the infinite line through two points and
// reports the normalized parameter along the segment.
package geom
