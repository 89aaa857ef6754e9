package scene

import (
	"slices"

	"github.com/matzehuels/scgraph/pkg/geom"
)

// Connector is a line between two objects. Either end may be any object,
// including another connector.
type Connector struct {
	Base
	polyline
	source Object
	target Object
}

// NewConnector creates a connector from source to target and registers it
// with both ends.
func NewConnector(source, target Object, class Class) *Connector {
	c := &Connector{
		Base:     newBase(source.Position().Lerp(target.Position(), 0.5), class),
		polyline: newPolyline(source.Position(), target.Position()),
	}
	c.SetSource(source)
	c.SetTarget(target)
	return c
}

func (c *Connector) Kind() Kind      { return KindConnector }
func (c *Connector) Source() Object  { return c.source }
func (c *Connector) Target() Object  { return c.target }

// HasArrow reports whether the connector is directed.
func (c *Connector) HasArrow() bool { return c.class&(ClassArc|ClassAccess) != 0 }

// SetSource moves the source end to o.
func (c *Connector) SetSource(o Object) {
	if c.source == o {
		return
	}
	if c.source != nil {
		c.source.base().removeConnector(c)
	}
	c.source = o
	o.base().addConnector(c)
	c.needsSync = true
	c.needsUpdate = true
}

// SetTarget moves the target end to o.
func (c *Connector) SetTarget(o Object) {
	if c.target == o {
		return
	}
	if c.target != nil {
		c.target.base().removeConnector(c)
	}
	c.target = o
	o.base().addConnector(c)
	c.needsSync = true
	c.needsUpdate = true
}

func (c *Connector) SetSourceDot(dot float64) {
	c.sourceDot = dot
	c.needsSync = true
	c.needsUpdate = true
}

func (c *Connector) SetTargetDot(dot float64) {
	c.targetDot = dot
	c.needsSync = true
	c.needsUpdate = true
}

// SetPoints replaces the interior waypoints.
func (c *Connector) SetPoints(pts []geom.Vec) {
	c.points = slices.Clone(pts)
	c.needsSync = true
	c.RequestUpdate()
}

// SetPosition moves the connector's waypoints along with its midpoint.
func (c *Connector) SetPosition(p geom.Vec) {
	c.shiftPoints(p.Sub(c.position))
	c.setPosition(p)
}

// Destroy detaches the connector from both ends.
func (c *Connector) Destroy() {
	if c.target != nil {
		c.target.base().removeConnector(c)
	}
	if c.source != nil {
		c.source.base().removeConnector(c)
	}
}

// Update resolves both boundary points and the midpoint. Endpoints with a
// non-finite position are moved to [FallbackPosition] first.
func (c *Connector) Update() {
	if !c.needsUpdate || c.source == nil || c.target == nil {
		return
	}
	c.snapNonFinite(c.source)
	c.snapNonFinite(c.target)

	if !c.sourcePos.IsFinite() {
		c.sourcePos = c.source.Position()
	}
	if !c.targetPos.IsFinite() {
		c.targetPos = c.target.Position()
	}

	c.needsUpdate = false
	c.needsSync = true

	sourceFirst := c.source.Kind() == KindConnector
	if n := len(c.points); n > 0 {
		first, last := c.points[0].XY(), c.points[n-1].XY()
		if sourceFirst {
			c.sourcePos = c.resolve(c.source, first, c.sourceDot)
			c.targetPos = c.resolve(c.target, last, c.targetDot)
		} else {
			c.targetPos = c.resolve(c.target, last, c.targetDot)
			c.sourcePos = c.resolve(c.source, first, c.sourceDot)
		}
	} else {
		if sourceFirst {
			c.sourcePos = c.resolve(c.source, c.targetPos, c.sourceDot)
			c.targetPos = c.resolve(c.target, c.sourcePos, c.targetDot)
		} else {
			c.targetPos = c.resolve(c.target, c.sourcePos, c.targetDot)
			c.sourcePos = c.resolve(c.source, c.targetPos, c.sourceDot)
		}
	}

	c.position = c.sourcePos.Lerp(c.targetPos, 0.5)
	c.updateAttached()
}

// resolve asks o for its connection point. Objects that cannot answer keep
// the connector attached to their centre.
func (c *Connector) resolve(o Object, from geom.Vec, dot float64) geom.Vec {
	p, err := o.ConnectionPos(from, dot)
	if err != nil {
		if l := c.logger(); l != nil {
			l.Debug("connection point unresolved", "connector", c.id, "endpoint", o.ID(), "err", err)
		}
		return o.Position()
	}
	return p
}

func (c *Connector) snapNonFinite(o Object) {
	if o.Position().IsFinite() {
		return
	}
	if l := c.logger(); l != nil {
		l.Debug("non-finite endpoint position", "connector", c.id, "endpoint", o.ID())
	}
	o.SetPosition(FallbackPosition)
}

// ConnectionPos returns the point on a disc of radius [DiscRadius] around
// the position selected by dot.
func (c *Connector) ConnectionPos(from geom.Vec, dot float64) (geom.Vec, error) {
	if c.needsUpdate {
		c.Update()
	}
	return geom.ProjectToCircle(from, c.PointAt(dot), DiscRadius), nil
}

// PointAt returns the position along the connector selected by dot.
func (c *Connector) PointAt(dot float64) geom.Vec {
	var srcCentre, tgtCentre geom.Vec
	if c.source != nil {
		srcCentre = c.source.Position()
	}
	if c.target != nil {
		tgtCentre = c.target.Position()
	}
	return c.pointAt(dot, srcCentre, tgtCentre)
}

// CalculateDotPos returns the dot parameter of the path position closest to p.
func (c *Connector) CalculateDotPos(p geom.Vec) float64 { return c.dotPos(p) }
