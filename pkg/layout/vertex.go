package layout

import (
	"github.com/matzehuels/scgraph/pkg/geom"
	"github.com/matzehuels/scgraph/pkg/scene"
)

// VertexKind identifies what a vertex wraps.
type VertexKind int

const (
	VertexNode VertexKind = iota
	VertexContent
	VertexContour
	VertexDot
)

func (k VertexKind) String() string {
	switch k {
	case VertexNode:
		return "node"
	case VertexContent:
		return "content"
	case VertexContour:
		return "contour"
	case VertexDot:
		return "dot"
	}
	return "unknown"
}

// GroupKey identifies a simulation group. It is the external address of the
// owning contour, or [RootGroup] for objects outside any contour.
type GroupKey uint64

// RootGroup holds every object that no contour owns.
const RootGroup GroupKey = 0

// unaddressed marks keys derived from contour ids when a contour has no
// external address.
const unaddressed GroupKey = 1 << 63

// Vertex is one simulated body.
type Vertex struct {
	Kind VertexKind

	// Object is the wrapped scene object. For dots it is the connector or bus
	// the dot sits on.
	Object scene.Object

	// Attached and Source are set for dots only: the connector whose end the
	// dot stands in for, and whether that end is its source.
	Attached *scene.Connector
	Source   bool

	Group GroupKey

	X, Y   float64
	VX, VY float64
}

// Pos returns the simulated position.
func (v *Vertex) Pos() geom.Vec { return geom.V(v.X, v.Y) }

// IsDot reports whether v is a synthesised dot vertex.
func (v *Vertex) IsDot() bool { return v.Kind == VertexDot }

// endPoint returns the resolved end of the attached connector a dot stands for.
func (v *Vertex) endPoint() geom.Vec {
	v.Attached.Update()
	if v.Source {
		return v.Attached.SourcePoint()
	}
	return v.Attached.TargetPoint()
}

// Link is a spring between two vertices, created from one connector.
type Link struct {
	Source, Target *Vertex
	Connector      *scene.Connector
}

// HasDot reports whether either end of the link is a dot vertex.
func (l *Link) HasDot() bool { return l.Source.IsDot() || l.Target.IsDot() }

// Group is the set of vertices and links simulated together.
type Group struct {
	Key      GroupKey
	Vertices []*Vertex
	Links    []*Link
}

// Graph is the transient simulation graph for one scene.
type Graph struct {
	Groups map[GroupKey]*Group
}

// Group returns the group for key, or nil.
func (g *Graph) Group(key GroupKey) *Group {
	if g == nil {
		return nil
	}
	return g.Groups[key]
}

// Root returns the top-level group. It is never nil for a built graph.
func (g *Graph) Root() *Group {
	if grp := g.Group(RootGroup); grp != nil {
		return grp
	}
	return &Group{Key: RootGroup}
}

func (g *Graph) group(key GroupKey) *Group {
	grp, ok := g.Groups[key]
	if !ok {
		grp = &Group{Key: key}
		g.Groups[key] = grp
	}
	return grp
}

// groupOf returns the key of the contour owning o.
func groupOf(o scene.Object) GroupKey {
	c := o.Contour()
	if c == nil {
		return RootGroup
	}
	if addr, ok := c.Addr(); ok {
		return GroupKey(addr)
	}
	return unaddressed | GroupKey(c.ID())
}
