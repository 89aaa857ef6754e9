package scene

import (
	"github.com/matzehuels/scgraph/pkg/errors"
	"github.com/matzehuels/scgraph/pkg/geom"
)

// PointNode is a circular node. Its radius is Scale().X.
type PointNode struct {
	Base
}

// NewPointNode creates a point node at pos with the default scale.
func NewPointNode(pos geom.Vec, class Class) *PointNode {
	return &PointNode{Base: newBase(pos, class)}
}

func (n *PointNode) Kind() Kind { return KindPointNode }

func (n *PointNode) SetPosition(p geom.Vec) { n.setPosition(p) }

func (n *PointNode) Update() {
	if !n.needsUpdate {
		return
	}
	n.update()
}

// ConnectionPos projects from onto the node's circle.
func (n *PointNode) ConnectionPos(from geom.Vec, _ float64) (geom.Vec, error) {
	return geom.ProjectToCircle(from, n.position, n.scale.X), nil
}

// ContentNode is a rectangular node that displays content such as text or an
// image. Its size is Scale(); the boundary used for connections is padded by
// [geom.BorderPadding] on every side.
type ContentNode struct {
	Base
	content       string
	contentType   string
	contentLoaded bool
}

// NewContentNode creates a content node at pos.
func NewContentNode(pos geom.Vec, class Class, content, contentType string) *ContentNode {
	return &ContentNode{
		Base:        newBase(pos, class),
		content:     content,
		contentType: contentType,
	}
}

func (n *ContentNode) Kind() Kind            { return KindContentNode }
func (n *ContentNode) Content() string       { return n.content }
func (n *ContentNode) ContentType() string   { return n.contentType }
func (n *ContentNode) ContentLoaded() bool   { return n.contentLoaded }
func (n *ContentNode) SetPosition(p geom.Vec) { n.setPosition(p) }

// SetContent replaces the content. The renderer must load it again, so the
// loaded flag is cleared.
func (n *ContentNode) SetContent(content, contentType string) {
	n.content = content
	n.contentType = contentType
	n.contentLoaded = false
	n.needsSync = true
}

// SetContentSize records the measured size of loaded content.
func (n *ContentNode) SetContentSize(w, h float64) {
	n.scale = geom.V(w, h)
	n.contentLoaded = true
	n.needsSync = true
	n.RequestUpdate()
}

func (n *ContentNode) Update() {
	if !n.needsUpdate {
		return
	}
	n.update()
}

// Bounds returns the padded boundary rectangle.
func (n *ContentNode) Bounds() []geom.Vec {
	return geom.Rect(n.position,
		n.scale.X*0.5+geom.BorderPadding,
		n.scale.Y*0.5+geom.BorderPadding)
}

// ConnectionPos clips the line from → centre against the padded rectangle and
// returns the crossing nearest to from.
func (n *ContentNode) ConnectionPos(from geom.Vec, _ float64) (geom.Vec, error) {
	hits := geom.ClipLine(n.Bounds(), from, n.position)
	p, ok := geom.Nearest(from, hits)
	if !ok {
		return n.position, errors.New(errors.ErrCodeEmptyGeometry,
			"content node %d: no boundary crossing from (%g, %g)", n.id, from.X, from.Y)
	}
	p.Z = n.position.Z
	return p, nil
}
