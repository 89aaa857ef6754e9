package geom

// ProjectToCircle returns the point on the circle of radius r around center
// that lies in the direction of from. When from coincides with center the
// direction is undefined and the point to the right of center is returned.
// The Z component of center is kept.
func ProjectToCircle(from, center Vec, r float64) Vec {
	dir := from.Sub(center).Normalize()
	if dir.LenSq() == 0 {
		dir = Vec{X: 1}
	}
	return Vec{X: center.X + dir.X*r, Y: center.Y + dir.Y*r, Z: center.Z}
}

// ProjectOnLine projects p onto the infinite line through a and b. It returns
// the projected point and its normalized parameter t along a→b (0 at a, 1 at
// b). ok is false when a and b coincide.
func ProjectOnLine(p, a, b Vec) (proj Vec, t float64, ok bool) {
	v := b.Sub(a)
	l2 := v.LenSq()
	if l2 < Epsilon*Epsilon {
		return a, 0, false
	}
	t = p.Sub(a).Dot(v) / l2
	return Vec{X: a.X + v.X*t, Y: a.Y + v.Y*t}, t, true
}
