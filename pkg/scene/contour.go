package scene

import (
	"slices"

	"github.com/matzehuels/scgraph/pkg/errors"
	"github.com/matzehuels/scgraph/pkg/geom"
)

// CrossingRule selects which boundary crossing a contour returns from
// ConnectionPos when the connecting line crosses its outline several times.
type CrossingRule int

const (
	// CrossingFarthest keeps the crossing farthest from the incoming point.
	CrossingFarthest CrossingRule = iota
	// CrossingNearest keeps the crossing closest to the incoming point.
	CrossingNearest
)

// Contour is a polygon that groups child objects. Its position is the vertex
// centroid at creation time; moving it moves its vertices and children.
type Contour struct {
	Base
	points   []geom.Vec
	children []Object
}

// NewContour creates a contour from polygon vertices. A zero class defaults to
// a structure node.
func NewContour(vertices []geom.Vec, class Class) *Contour {
	if class == 0 {
		class = ClassNode | ClassStruct
	}
	pts := slices.Clone(vertices)
	return &Contour{
		Base:   newBase(geom.Centroid(pts), class),
		points: pts,
	}
}

func (c *Contour) Kind() Kind { return KindContour }

// Vertices returns a copy of the polygon.
func (c *Contour) Vertices() []geom.Vec { return slices.Clone(c.points) }

// Children returns the objects owned by the contour.
func (c *Contour) Children() []Object { return slices.Clone(c.children) }

// SetVertices replaces the polygon and recentres the contour.
func (c *Contour) SetVertices(vertices []geom.Vec) {
	c.points = slices.Clone(vertices)
	c.position = geom.Centroid(c.points)
	c.needsSync = true
	c.RequestUpdate()
}

// SetPosition moves every child and every vertex by the offset to p.
func (c *Contour) SetPosition(p geom.Vec) {
	d := p.Sub(c.position)
	for _, ch := range slices.Clone(c.children) {
		ch.SetPosition(ch.Position().Add(d))
	}
	for i := range c.points {
		c.points[i].X += d.X
		c.points[i].Y += d.Y
	}
	c.setPosition(p)
}

func (c *Contour) Update() {
	if !c.needsUpdate {
		return
	}
	c.update()
}

// AddChild adopts o, taking it away from any previous contour. Adding the
// contour to itself is ignored.
func (c *Contour) AddChild(o Object) {
	if o.ID() == c.id || o.Contour() == c {
		return
	}
	if prev := o.Contour(); prev != nil {
		prev.RemoveChild(o)
	}
	c.children = append(c.children, o)
	o.base().contour = c
	c.needsSync = true
}

// RemoveChild releases o. Objects that are not children are ignored.
func (c *Contour) RemoveChild(o Object) {
	i := slices.IndexFunc(c.children, func(ch Object) bool { return ch.ID() == o.ID() })
	if i < 0 {
		return
	}
	c.children = slices.Delete(c.children, i, i+1)
	if o.Contour() == c {
		o.base().contour = nil
	}
	c.needsSync = true
}

// Contains reports whether o's position lies inside the polygon.
func (c *Contour) Contains(o Object) bool {
	return geom.PointInPolygon(o.Position(), c.points)
}

// ContainsConnector reports whether both ends of e lie inside the polygon.
func (c *Contour) ContainsConnector(e *Connector) bool {
	if e.source == nil || e.target == nil {
		return false
	}
	return c.Contains(e.source) && c.Contains(e.target)
}

// AddElementsInPolygon adopts every object of pool that has no contour yet
// and lies inside the polygon. Connectors are adopted when both ends lie
// inside. Contours and buses are never adopted.
func (c *Contour) AddElementsInPolygon(pool []Object) {
	for _, o := range pool {
		if o.Contour() != nil || o.ID() == c.id {
			continue
		}
		switch v := o.(type) {
		case *PointNode, *ContentNode:
			if c.Contains(v) {
				c.AddChild(v)
			}
		case *Connector:
			if c.ContainsConnector(v) {
				c.AddChild(v)
			}
		}
	}
}

// ConnectionPos clips the line from → centroid against the polygon and picks
// one crossing according to the scene's [CrossingRule].
func (c *Contour) ConnectionPos(from geom.Vec, _ float64) (geom.Vec, error) {
	hits := geom.ClipLine(c.points, from, c.position)

	rule := CrossingFarthest
	if c.scene != nil {
		rule = c.scene.crossing
	}

	var (
		p  geom.Vec
		ok bool
	)
	if rule == CrossingNearest {
		p, ok = geom.Nearest(from, hits)
	} else {
		p, ok = geom.Farthest(from, hits)
	}
	if !ok {
		return c.position, errors.New(errors.ErrCodeEmptyGeometry,
			"contour %d: no boundary crossing from (%g, %g)", c.id, from.X, from.Y)
	}
	return p.XY(), nil
}
