package graph

import (
	"github.com/matzehuels/scgraph/pkg/geom"
	"github.com/matzehuels/scgraph/pkg/scene"
)

// Node kinds.
const (
	KindPoint   = "point"
	KindContent = "content"
)

// =============================================================================
// Scene - Snapshot Format
// =============================================================================

// Scene is a snapshot of a scene's objects and their resolved geometry.
type Scene struct {
	Width      float64     `json:"width,omitempty"`
	Height     float64     `json:"height,omitempty"`
	Nodes      []Node      `json:"nodes"`
	Connectors []Connector `json:"connectors"`
	Contours   []Contour   `json:"contours,omitempty"`
	Buses      []Bus       `json:"buses,omitempty"`
}

// Len returns the number of objects in the snapshot.
func (s Scene) Len() int {
	return len(s.Nodes) + len(s.Connectors) + len(s.Contours) + len(s.Buses)
}

// Point is a position in scene coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func pointOf(v geom.Vec) Point { return Point{X: v.X, Y: v.Y} }

// Vec converts p to a geometry vector.
func (p Point) Vec() geom.Vec { return geom.V(p.X, p.Y) }

func pointsOf(vs []geom.Vec) []Point {
	if len(vs) == 0 {
		return nil
	}
	out := make([]Point, len(vs))
	for i, v := range vs {
		out[i] = pointOf(v)
	}
	return out
}

// =============================================================================
// Object Types
// =============================================================================

// Node is a point or content node.
type Node struct {
	ID          uint64  `json:"id"`
	Addr        uint64  `json:"addr,omitempty"`
	Kind        string  `json:"kind"`
	Class       string  `json:"class,omitempty"`
	Text        string  `json:"text,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Contour     uint64  `json:"contour,omitempty"`
	Selected    bool    `json:"selected,omitempty"`
	Content     string  `json:"content,omitempty"`
	ContentType string  `json:"content_type,omitempty"`
}

// Connector is a resolved connector path.
type Connector struct {
	ID        uint64  `json:"id"`
	Addr      uint64  `json:"addr,omitempty"`
	Class     string  `json:"class,omitempty"`
	Text      string  `json:"text,omitempty"`
	Source    uint64  `json:"source"`
	Target    uint64  `json:"target"`
	From      Point   `json:"from"`
	To        Point   `json:"to"`
	Points    []Point `json:"points,omitempty"`
	SourceDot float64 `json:"source_dot"`
	TargetDot float64 `json:"target_dot"`
	Arrow     bool    `json:"arrow,omitempty"`
	Contour   uint64  `json:"contour,omitempty"`
	Selected  bool    `json:"selected,omitempty"`
}

// Contour is a grouping polygon.
type Contour struct {
	ID       uint64   `json:"id"`
	Addr     uint64   `json:"addr,omitempty"`
	Class    string   `json:"class,omitempty"`
	Text     string   `json:"text,omitempty"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Vertices []Point  `json:"vertices"`
	Children []uint64 `json:"children,omitempty"`
	Selected bool     `json:"selected,omitempty"`
}

// Bus is a connector with one free end.
type Bus struct {
	ID       uint64  `json:"id"`
	Addr     uint64  `json:"addr,omitempty"`
	Class    string  `json:"class,omitempty"`
	Source   uint64  `json:"source"`
	From     Point   `json:"from"`
	Terminal Point   `json:"terminal"`
	Points   []Point `json:"points,omitempty"`
	Selected bool    `json:"selected,omitempty"`
}

// =============================================================================
// Conversion
// =============================================================================

// FromScene brings s up to date and snapshots every object.
func FromScene(s *scene.Scene) Scene {
	s.Update()
	out := FromObjects(s.Objects())
	out.Width, out.Height = s.ContainerSize()
	return out
}

// FromObjects snapshots the given objects as they are. Callers that need
// resolved connector paths update the objects first.
func FromObjects(objs []scene.Object) Scene {
	out := Scene{Nodes: []Node{}, Connectors: []Connector{}}
	for _, o := range objs {
		switch v := o.(type) {
		case *scene.PointNode:
			out.Nodes = append(out.Nodes, nodeOf(v, KindPoint))
		case *scene.ContentNode:
			n := nodeOf(v, KindContent)
			n.Content = v.Content()
			n.ContentType = v.ContentType()
			out.Nodes = append(out.Nodes, n)
		case *scene.Connector:
			out.Connectors = append(out.Connectors, connectorOf(v))
		case *scene.Contour:
			out.Contours = append(out.Contours, contourOf(v))
		case *scene.Bus:
			out.Buses = append(out.Buses, busOf(v))
		}
	}
	return out
}

func addrOf(o scene.Object) uint64 {
	a, _ := o.Addr()
	return uint64(a)
}

func contourID(o scene.Object) uint64 {
	if c := o.Contour(); c != nil {
		return c.ID()
	}
	return 0
}

func idOf(o scene.Object) uint64 {
	if o == nil {
		return 0
	}
	return o.ID()
}

func nodeOf(o scene.Object, kind string) Node {
	p, sc := o.Position(), o.Scale()
	return Node{
		ID:       o.ID(),
		Addr:     addrOf(o),
		Kind:     kind,
		Class:    o.Class().String(),
		Text:     o.Text(),
		X:        p.X,
		Y:        p.Y,
		Width:    sc.X,
		Height:   sc.Y,
		Contour:  contourID(o),
		Selected: o.Selected(),
	}
}

func connectorOf(c *scene.Connector) Connector {
	return Connector{
		ID:        c.ID(),
		Addr:      addrOf(c),
		Class:     c.Class().String(),
		Text:      c.Text(),
		Source:    idOf(c.Source()),
		Target:    idOf(c.Target()),
		From:      pointOf(c.SourcePoint()),
		To:        pointOf(c.TargetPoint()),
		Points:    pointsOf(c.Points()),
		SourceDot: c.SourceDot(),
		TargetDot: c.TargetDot(),
		Arrow:     c.HasArrow(),
		Contour:   contourID(c),
		Selected:  c.Selected(),
	}
}

func contourOf(c *scene.Contour) Contour {
	p := c.Position()
	var children []uint64
	for _, ch := range c.Children() {
		children = append(children, ch.ID())
	}
	return Contour{
		ID:       c.ID(),
		Addr:     addrOf(c),
		Class:    c.Class().String(),
		Text:     c.Text(),
		X:        p.X,
		Y:        p.Y,
		Vertices: pointsOf(c.Vertices()),
		Children: children,
		Selected: c.Selected(),
	}
}

func busOf(b *scene.Bus) Bus {
	return Bus{
		ID:       b.ID(),
		Addr:     addrOf(b),
		Class:    b.Class().String(),
		Source:   idOf(b.Source()),
		From:     pointOf(b.SourcePoint()),
		Terminal: pointOf(b.Terminal()),
		Points:   pointsOf(b.Points()),
		Selected: b.Selected(),
	}
}
