package layout

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/scgraph/pkg/scene"
)

// Params tunes the simulation. The zero value is not useful; start from
// [DefaultParams].
type Params struct {
	// Charges per vertex kind. Negative values repel.
	NodeCharge    float64
	ContentCharge float64
	DotCharge     float64

	// Friction is a weak charge added to every vertex, dots included.
	Friction float64

	// Spring base lengths and strengths.
	LinkDistance    float64
	DotLinkDistance float64
	LinkStrength    float64
	DotLinkStrength float64

	// Cooling schedule.
	AlphaMin      float64
	AlphaDecay    float64
	VelocityDecay float64
}

// DefaultParams returns the standard tuning: about 300 ticks from a cold
// start to convergence.
func DefaultParams() Params {
	return Params{
		NodeCharge:      -700,
		ContentCharge:   -900,
		DotCharge:       0,
		Friction:        -0.75,
		LinkDistance:    100,
		DotLinkDistance: 50,
		LinkStrength:    0.3,
		DotLinkStrength: 1,
		AlphaMin:        0.001,
		AlphaDecay:      1 - math.Pow(0.001, 1.0/300),
		VelocityDecay:   0.4,
	}
}

// charge returns the many-body strength of v. Link-class point nodes repel
// like content nodes.
func (p Params) charge(v *Vertex) float64 {
	switch v.Kind {
	case VertexDot:
		return p.DotCharge
	case VertexContent:
		return p.ContentCharge
	case VertexNode:
		if v.Object.Class().Has(scene.ClassLink) {
			return p.ContentCharge
		}
	}
	return p.NodeCharge
}

// =============================================================================
// Forces
// =============================================================================

const distanceMin2 = 1.0

// centre shifts every vertex so the mean position sits on (cx, cy).
func centre(vs []*Vertex, cx, cy float64) {
	if len(vs) == 0 {
		return
	}
	var sx, sy float64
	for _, v := range vs {
		sx += v.X
		sy += v.Y
	}
	sx = sx/float64(len(vs)) - cx
	sy = sy/float64(len(vs)) - cy
	for _, v := range vs {
		v.X -= sx
		v.Y -= sy
	}
}

// manyBody applies pairwise charge between all vertices. Each vertex is
// pushed by the charge of the other one.
func manyBody(vs []*Vertex, charges []float64, alpha float64, rng *rand.Rand) {
	for i, v := range vs {
		for j, o := range vs {
			if i == j || charges[j] == 0 {
				continue
			}
			x, y := o.X-v.X, o.Y-v.Y
			if x == 0 {
				x = jiggle(rng)
			}
			if y == 0 {
				y = jiggle(rng)
			}
			l := x*x + y*y
			if l < distanceMin2 {
				l = math.Sqrt(distanceMin2 * l)
			}
			w := charges[j] * alpha / l
			v.VX += x * w
			v.VY += y * w
		}
	}
}

// springs pulls linked vertices toward their rest length. bias splits the
// correction by vertex degree.
func springs(links []*Link, p Params, degree map[*Vertex]int, alpha float64, rng *rand.Rand) {
	for _, l := range links {
		s, t := l.Source, l.Target
		x := t.X + t.VX - s.X - s.VX
		y := t.Y + t.VY - s.Y - s.VY
		if x == 0 {
			x = jiggle(rng)
		}
		if y == 0 {
			y = jiggle(rng)
		}
		d := math.Sqrt(x*x + y*y)
		k := (d - restLength(l, p)) / d * alpha * strength(l, p)
		x *= k
		y *= k

		bias := float64(degree[s]) / float64(degree[s]+degree[t])
		t.VX -= x * bias
		t.VY -= y * bias
		s.VX += x * (1 - bias)
		s.VY += y * (1 - bias)
	}
}

// restLength is the base length plus the part of the centre gap covered by
// the two shapes.
func restLength(l *Link, p Params) float64 {
	base := p.LinkDistance
	if l.HasDot() {
		base = p.DotLinkDistance
	}
	c := l.Connector
	c.Update()
	boundary := c.SourcePoint().Dist(c.TargetPoint())
	centres := l.Source.Pos().Dist(l.Target.Pos())
	if math.IsNaN(boundary) || math.IsNaN(centres) {
		return base
	}
	return base + (centres - boundary)
}

func strength(l *Link, p Params) float64 {
	if l.HasDot() {
		return p.DotLinkStrength
	}
	return p.LinkStrength
}

func jiggle(rng *rand.Rand) float64 { return (rng.Float64() - 0.5) * 1e-6 }
