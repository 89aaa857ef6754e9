package geom

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// starPolygon builds a simple polygon with evenly spaced angles around the
// origin and the given radii.
func starPolygon(radii []float64) []Vec {
	poly := make([]Vec, len(radii))
	for i, r := range radii {
		a := 2 * math.Pi * float64(i) / float64(len(radii))
		poly[i] = V(r*math.Cos(a), r*math.Sin(a))
	}
	return poly
}

// rayCast is the even-odd reference test.
func rayCast(p Vec, poly []Vec) bool {
	in := false
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				in = !in
			}
		}
		j = i
	}
	return in
}

func TestGeometryProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("winding agrees with ray casting on simple polygons", prop.ForAll(
		func(radii []float64, x, y float64) bool {
			poly := starPolygon(radii)
			p := V(x, y)
			return PointInPolygon(p, poly) == rayCast(p, poly)
		},
		gen.SliceOfN(9, gen.Float64Range(1, 10)),
		gen.Float64Range(-12, 12),
		gen.Float64Range(-12, 12),
	))

	properties.Property("clip points lie on the line and come in pairs", prop.ForAll(
		func(radii []float64, ax, ay, bx, by float64) bool {
			a, b := V(ax, ay), V(bx, by)
			if a.Dist(b) < 1e-6 {
				return true
			}
			hits := ClipLine(starPolygon(radii), a, b)
			if len(hits)%2 != 0 {
				return false
			}
			dir := b.Sub(a).Normalize()
			for _, h := range hits {
				if math.Abs(dir.Cross(h.Sub(a))) > 1e-6 {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(7, gen.Float64Range(1, 10)),
		gen.Float64Range(-15, 15),
		gen.Float64Range(-15, 15),
		gen.Float64Range(-15, 15),
		gen.Float64Range(-15, 15),
	))

	properties.Property("projection to circle lands on the circle", prop.ForAll(
		func(fx, fy, cx, cy, r float64) bool {
			p := ProjectToCircle(V(fx, fy), V(cx, cy), r)
			return math.Abs(p.Dist(V(cx, cy))-r) < 1e-6
		},
		gen.Float64Range(-100, 100),
		gen.Float64Range(-100, 100),
		gen.Float64Range(-100, 100),
		gen.Float64Range(-100, 100),
		gen.Float64Range(0.1, 50),
	))

	properties.TestingRun(t)
}
