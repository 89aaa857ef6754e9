package layout

import (
	"github.com/matzehuels/scgraph/pkg/errors"
	"github.com/matzehuels/scgraph/pkg/scene"
)

// Build wraps the scene's objects into a simulation graph.
//
// Point nodes, content nodes and contours become vertices in the group of
// their owning contour. Every connector becomes a link in its own group.
// A connector endpoint that is another connector or a bus gets a dot vertex
// in the group of that connector or bus. An endpoint that is missing from the
// scene fails the build with a TOPOLOGY error.
func Build(s *scene.Scene) (*Graph, error) {
	g := &Graph{Groups: map[GroupKey]*Group{RootGroup: {Key: RootGroup}}}
	byID := make(map[uint64]*Vertex)

	wrap := func(o scene.Object, kind VertexKind) {
		p := o.Position()
		v := &Vertex{Kind: kind, Object: o, Group: groupOf(o), X: p.X, Y: p.Y}
		grp := g.group(v.Group)
		grp.Vertices = append(grp.Vertices, v)
		byID[o.ID()] = v
	}
	for _, n := range s.PointNodes() {
		wrap(n, VertexNode)
	}
	for _, n := range s.ContentNodes() {
		wrap(n, VertexContent)
	}
	for _, c := range s.Contours() {
		wrap(c, VertexContour)
	}

	for _, c := range s.Connectors() {
		src, err := endpoint(g, s, byID, c, c.Source(), true)
		if err != nil {
			return nil, err
		}
		tgt, err := endpoint(g, s, byID, c, c.Target(), false)
		if err != nil {
			return nil, err
		}
		grp := g.group(groupOf(c))
		grp.Links = append(grp.Links, &Link{Source: src, Target: tgt, Connector: c})
	}
	return g, nil
}

// endpoint resolves one end of c to a vertex, synthesising a dot when the
// end is a polyline.
func endpoint(g *Graph, s *scene.Scene, byID map[uint64]*Vertex, c *scene.Connector, o scene.Object, source bool) (*Vertex, error) {
	end := "target"
	if source {
		end = "source"
	}
	if o == nil {
		return nil, errors.New(errors.ErrCodeTopology, "connector %d: %s is not set", c.ID(), end)
	}
	if v, ok := byID[o.ID()]; ok {
		return v, nil
	}
	if !s.Contains(o) {
		return nil, errors.New(errors.ErrCodeTopology,
			"connector %d: %s %d is not in the scene", c.ID(), end, o.ID())
	}

	switch o.Kind() {
	case scene.KindConnector, scene.KindBus:
	default:
		return nil, errors.New(errors.ErrCodeTopology,
			"connector %d: %s %d (%s) cannot be laid out", c.ID(), end, o.ID(), o.Kind())
	}

	v := &Vertex{Kind: VertexDot, Object: o, Attached: c, Source: source, Group: groupOf(o)}
	c.Update()
	p := c.TargetPoint()
	if source {
		p = c.SourcePoint()
	}
	v.X, v.Y = p.X, p.Y
	grp := g.group(v.Group)
	grp.Vertices = append(grp.Vertices, v)
	return v, nil
}
