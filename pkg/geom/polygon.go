package geom

import "math"

// BorderPadding is the gap kept between a rectangular boundary and the
// content it encloses.
const BorderPadding = 5.0

// quadrant maps (y<0, x<0) to a counter-clockwise quadrant index:
// 0 = (+,+), 1 = (-x,+y), 2 = (-,-), 3 = (+x,-y).
var quadrant = [2][2]int{
	{0, 1},
	{3, 2},
}

func quadrantOf(p Vec) int {
	return quadrant[b2i(p.Y < 0)][b2i(p.X < 0)]
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// PointInPolygon reports whether p lies inside poly using a quadrant winding
// number. The polygon is treated as closed (last vertex connects to the first)
// and may be convex or concave. Polygons with fewer than 3 vertices contain
// nothing.
func PointInPolygon(p Vec, poly []Vec) bool {
	if len(poly) < 3 {
		return false
	}

	pred := poly[len(poly)-1].Sub(p)
	predQ := quadrantOf(pred)
	w := 0

	for _, v := range poly {
		cur := v.Sub(p)
		q := quadrantOf(cur)

		switch q - predQ {
		case -3:
			w++
		case 3:
			w--
		case -2:
			if pred.X*cur.Y >= pred.Y*cur.X {
				w++
			}
		case 2:
			if !(pred.X*cur.Y >= pred.Y*cur.X) {
				w--
			}
		}

		pred, predQ = cur, q
	}

	return w != 0
}

// ClipLine returns the points where the infinite line through a and b crosses
// the outline of poly, in polygon edge order starting with the closing edge
// (last vertex to first). It returns nil when a == b or poly is empty.
func ClipLine(poly []Vec, a, b Vec) []Vec {
	n := len(poly)
	if n == 0 {
		return nil
	}

	nx, ny := a.Y-b.Y, b.X-a.X
	if nx == 0 && ny == 0 {
		return nil
	}
	c := a.X*nx + a.Y*ny

	side := func(p Vec) float64 { return p.X*nx + p.Y*ny - c }

	var out []Vec
	s := poly[n-1]
	for _, p := range poly {
		ds, dp := side(s), side(p)
		if (dp > 0) != (ds > 0) {
			t := -ds / (dp - ds)
			out = append(out, Vec{X: s.X + t*(p.X-s.X), Y: s.Y + t*(p.Y-s.Y)})
		}
		s = p
	}
	return out
}

// Centroid returns the vertex average of poly, or the zero vector when poly is
// empty.
func Centroid(poly []Vec) Vec {
	if len(poly) == 0 {
		return Vec{}
	}
	var cx, cy float64
	for _, p := range poly {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(poly))
	return Vec{X: cx / n, Y: cy / n}
}

// Rect returns the four corners of the axis-aligned rectangle centred on c
// with the given half extents, clockwise from the top-left in screen space.
func Rect(c Vec, halfW, halfH float64) []Vec {
	left, right := c.X-halfW, c.X+halfW
	top, bottom := c.Y-halfH, c.Y+halfH
	return []Vec{
		{X: left, Y: top},
		{X: right, Y: top},
		{X: right, Y: bottom},
		{X: left, Y: bottom},
	}
}

// Translate returns a copy of poly shifted by d.
func Translate(poly []Vec, d Vec) []Vec {
	out := make([]Vec, len(poly))
	for i, p := range poly {
		out[i] = Vec{X: p.X + d.X, Y: p.Y + d.Y, Z: p.Z}
	}
	return out
}

// Nearest returns the point of pts closest to from. ok is false when pts is
// empty.
func Nearest(from Vec, pts []Vec) (best Vec, ok bool) {
	dMin := -1.0
	for _, p := range pts {
		if d := from.DistSq(p); dMin < 0 || d < dMin {
			dMin, best, ok = d, p, true
		}
	}
	return best, ok
}

// Farthest returns the point of pts farthest from from, keeping the earlier
// point on ties. ok is false when pts is empty.
func Farthest(from Vec, pts []Vec) (best Vec, ok bool) {
	if len(pts) == 0 {
		return Vec{}, false
	}
	best = pts[0]
	for _, p := range pts[1:] {
		if from.DistSq(p) > from.DistSq(best) {
			best = p
		}
	}
	return best, true
}

// Bounds returns the axis-aligned bounding box of poly as its minimum and
// maximum corners. Both are zero when poly is empty.
func Bounds(poly []Vec) (lo, hi Vec) {
	if len(poly) == 0 {
		return Vec{}, Vec{}
	}
	lo, hi = poly[0].XY(), poly[0].XY()
	for _, p := range poly[1:] {
		lo.X = math.Min(lo.X, p.X)
		lo.Y = math.Min(lo.Y, p.Y)
		hi.X = math.Max(hi.X, p.X)
		hi.Y = math.Max(hi.Y, p.Y)
	}
	return lo, hi
}
