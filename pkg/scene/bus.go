package scene

import (
	"slices"

	"github.com/matzehuels/scgraph/pkg/geom"
)

// Bus is a free polyline attached to a single source object. It ends at a
// terminal point instead of a second object. A source holds at most one bus.
type Bus struct {
	Base
	polyline
	source Object
	anchor geom.Vec
}

// NewBus creates a bus hanging off source and ending at terminal.
func NewBus(source Object, class Class, terminal geom.Vec) *Bus {
	b := &Bus{
		Base:     newBase(source.Position().Lerp(terminal, 0.5), class),
		polyline: newPolyline(source.Position(), terminal),
		anchor:   terminal,
	}
	b.SetSource(source)
	return b
}

func (b *Bus) Kind() Kind      { return KindBus }
func (b *Bus) Source() Object  { return b.source }
func (b *Bus) Terminal() geom.Vec { return b.targetPos }

// SetSource re-points the bus at o. The previous source loses its bus, and a
// bus previously attached to o is orphaned.
func (b *Bus) SetSource(o Object) {
	if b.source != nil && b.source.Bus() == b {
		b.source.base().bus = nil
	}
	if prev := o.Bus(); prev != nil && prev != b {
		prev.source = nil
	}
	b.source = o
	o.base().bus = b
	b.needsSync = true
	b.needsUpdate = true
}

func (b *Bus) SetSourceDot(dot float64) {
	b.sourceDot = dot
	b.needsSync = true
	b.needsUpdate = true
}

func (b *Bus) SetTargetDot(dot float64) {
	b.targetDot = dot
	b.needsSync = true
	b.needsUpdate = true
}

// SetPoints replaces the interior waypoints.
func (b *Bus) SetPoints(pts []geom.Vec) {
	b.points = slices.Clone(pts)
	b.needsSync = true
	b.RequestUpdate()
}

// SetTerminal moves the free end of the bus.
func (b *Bus) SetTerminal(p geom.Vec) {
	b.targetPos = p
	b.anchor = p
	b.needsSync = true
	b.RequestUpdate()
}

// SetPosition moves the bus waypoints along with its midpoint.
func (b *Bus) SetPosition(p geom.Vec) {
	b.shiftPoints(p.Sub(b.position))
	b.setPosition(p)
}

// BeginDrag records the point a drag gesture starts from. Without a call the
// drag starts at the terminal.
func (b *Bus) BeginDrag(at geom.Vec) { b.anchor = at }

// Drag moves the whole bus, its waypoints, terminal and source by the offset
// between to and the previous drag point.
func (b *Bus) Drag(to geom.Vec) {
	d := to.XY().Sub(b.anchor.XY())

	b.position = b.position.Add(d)
	b.shiftPoints(d)
	b.targetPos = b.targetPos.Add(d)
	if b.source != nil {
		b.source.SetPosition(b.source.Position().Add(d))
	}
	b.anchor = to

	b.needsSync = true
	b.RequestUpdate()
	b.notifyAttached()
}

// Destroy clears the source's bus reference.
func (b *Bus) Destroy() {
	if b.source != nil && b.source.Bus() == b {
		b.source.base().bus = nil
	}
}

// Update resolves the source boundary point towards the first waypoint, or
// the terminal when there are none.
func (b *Bus) Update() {
	if !b.needsUpdate || b.source == nil {
		return
	}
	b.needsUpdate = false
	b.needsSync = true

	toward := b.targetPos
	if len(b.points) > 0 {
		toward = b.points[0].XY()
	}
	p, err := b.source.ConnectionPos(toward, b.sourceDot)
	if err != nil {
		if l := b.logger(); l != nil {
			l.Debug("connection point unresolved", "bus", b.id, "source", b.source.ID(), "err", err)
		}
		p = b.source.Position()
	}
	b.sourcePos = p

	b.position = b.sourcePos.Lerp(b.targetPos, 0.5)
	b.updateAttached()
}

// ConnectionPos returns the point on a disc of radius [DiscRadius] around
// the position selected by dot.
func (b *Bus) ConnectionPos(from geom.Vec, dot float64) (geom.Vec, error) {
	if b.needsUpdate {
		b.Update()
	}
	return geom.ProjectToCircle(from, b.PointAt(dot), DiscRadius), nil
}

// PointAt returns the position along the bus selected by dot.
func (b *Bus) PointAt(dot float64) geom.Vec {
	var srcCentre geom.Vec
	if b.source != nil {
		srcCentre = b.source.Position()
	}
	return b.pointAt(dot, srcCentre, b.targetPos)
}

// CalculateDotPos returns the dot parameter of the path position closest to p.
func (b *Bus) CalculateDotPos(p geom.Vec) float64 { return b.dotPos(p) }
