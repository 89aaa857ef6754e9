package geom

import "math"

// Epsilon is the tolerance below which lengths are treated as zero.
var Epsilon = 1e-9

// Vec is a point or direction. Algorithms in this package use X and Y only;
// Z is preserved by arithmetic so callers can keep a depth value.
type Vec struct {
	X, Y, Z float64
}

// V returns the 2D vector (x, y, 0).
func V(x, y float64) Vec { return Vec{X: x, Y: y} }

// Add returns a+b.
func (a Vec) Add(b Vec) Vec { return Vec{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

// Sub returns a-b.
func (a Vec) Sub(b Vec) Vec { return Vec{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

// Scale returns a multiplied by s.
func (a Vec) Scale(s float64) Vec { return Vec{a.X * s, a.Y * s, a.Z * s} }

// Dot returns the planar dot product.
func (a Vec) Dot(b Vec) float64 { return a.X*b.X + a.Y*b.Y }

// Cross returns the z component of the planar cross product.
func (a Vec) Cross(b Vec) float64 { return a.X*b.Y - a.Y*b.X }

// LenSq returns the squared planar length.
func (a Vec) LenSq() float64 { return a.X*a.X + a.Y*a.Y }

// Len returns the planar length.
func (a Vec) Len() float64 { return math.Sqrt(a.LenSq()) }

// DistSq returns the squared planar distance between a and b.
func (a Vec) DistSq(b Vec) float64 { return a.Sub(b).LenSq() }

// Dist returns the planar distance between a and b.
func (a Vec) Dist(b Vec) float64 { return math.Sqrt(a.DistSq(b)) }

// Normalize returns the planar unit vector in the direction of a.
// The zero vector normalizes to itself.
func (a Vec) Normalize() Vec {
	l := a.Len()
	if l < Epsilon {
		return Vec{}
	}
	return Vec{X: a.X / l, Y: a.Y / l}
}

// Lerp returns the point a + (b-a)*t.
func (a Vec) Lerp(b Vec, t float64) Vec {
	return a.Add(b.Sub(a).Scale(t))
}

// XY returns a copy with Z cleared.
func (a Vec) XY() Vec { return Vec{X: a.X, Y: a.Y} }

// IsFinite reports whether X and Y are neither NaN nor infinite.
func (a Vec) IsFinite() bool {
	return !math.IsNaN(a.X) && !math.IsNaN(a.Y) && !math.IsInf(a.X, 0) && !math.IsInf(a.Y, 0)
}

// Equal reports whether a and b are within tol of each other in the plane.
func (a Vec) Equal(b Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}
