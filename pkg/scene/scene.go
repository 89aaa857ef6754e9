package scene

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scgraph/pkg/errors"
	"github.com/matzehuels/scgraph/pkg/geom"
)

// SizeProvider reports the size of the drawing area. The layout engine
// centres the graph in it.
type SizeProvider interface {
	ContainerSize() (w, h float64)
}

// FixedSize is a [SizeProvider] with a constant size.
type FixedSize struct {
	W, H float64
}

func (f FixedSize) ContainerSize() (float64, float64) { return f.W, f.H }

// DefaultSize is used when no [SizeProvider] is configured.
var DefaultSize = FixedSize{W: 800, H: 600}

// Option configures a [Scene].
type Option func(*Scene)

// WithLogger sets the logger used for diagnostics. A nil logger discards
// output.
func WithLogger(l *log.Logger) Option {
	return func(s *Scene) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSizeProvider sets the source of the container size.
func WithSizeProvider(p SizeProvider) Option {
	return func(s *Scene) {
		if p != nil {
			s.size = p
		}
	}
}

// WithCrossingRule selects how contours pick a connection point.
func WithCrossingRule(r CrossingRule) Option {
	return func(s *Scene) { s.crossing = r }
}

// WithSelectionHandler registers a callback invoked after the selection
// changes.
func WithSelectionHandler(fn func(selected []Object)) Option {
	return func(s *Scene) { s.onSelection = fn }
}

// Scene owns the objects of one editor view.
type Scene struct {
	pointNodes   []*PointNode
	contentNodes []*ContentNode
	connectors   []*Connector
	contours     []*Contour
	buses        []*Bus

	byID   map[uint64]Object
	byAddr map[Addr]Object

	selected   []Object
	linePoints []geom.Vec

	size        SizeProvider
	crossing    CrossingRule
	logger      *log.Logger
	onSelection func([]Object)
}

// New creates an empty scene.
func New(opts ...Option) *Scene {
	s := &Scene{
		byID:   make(map[uint64]Object),
		byAddr: make(map[Addr]Object),
		size:   DefaultSize,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (b *Base) logger() *log.Logger {
	if b.scene == nil {
		return nil
	}
	return b.scene.logger
}

// Append adds objects to the scene. Objects already in the scene are
// skipped. A bound address is indexed unless another object already holds
// it.
func (s *Scene) Append(objs ...Object) {
	for _, o := range objs {
		if _, ok := s.byID[o.ID()]; ok {
			continue
		}
		switch v := o.(type) {
		case *PointNode:
			s.pointNodes = append(s.pointNodes, v)
		case *ContentNode:
			s.contentNodes = append(s.contentNodes, v)
		case *Connector:
			s.connectors = append(s.connectors, v)
		case *Contour:
			s.contours = append(s.contours, v)
		case *Bus:
			s.buses = append(s.buses, v)
			if v.source != nil {
				v.SetSource(v.source)
			}
		default:
			continue
		}
		b := o.base()
		b.scene = s
		s.byID[b.id] = o
		if b.addr != 0 {
			if _, taken := s.byAddr[b.addr]; !taken {
				s.byAddr[b.addr] = o
			}
		}
	}
}

// Remove takes o out of its collection, the address index and the
// selection. A removed bus releases its source. o leaves its contour, and the
// children of a removed contour move up to the contour's own parent, or to
// the root when it has none. Connectors attached to o are left untouched and
// keep referring to it.
func (s *Scene) Remove(o Object) {
	if _, ok := s.byID[o.ID()]; !ok {
		return
	}
	parent := o.Contour()
	if parent != nil {
		parent.RemoveChild(o)
	}
	if ct, ok := o.(*Contour); ok {
		for _, ch := range ct.Children() {
			ct.RemoveChild(ch)
			if parent != nil {
				parent.AddChild(ch)
			}
		}
	}
	switch v := o.(type) {
	case *PointNode:
		s.pointNodes = removeFrom(s.pointNodes, v)
	case *ContentNode:
		s.contentNodes = removeFrom(s.contentNodes, v)
	case *Connector:
		s.connectors = removeFrom(s.connectors, v)
	case *Contour:
		s.contours = removeFrom(s.contours, v)
	case *Bus:
		s.buses = removeFrom(s.buses, v)
		v.Destroy()
	}

	b := o.base()
	delete(s.byID, b.id)
	if b.addr != 0 {
		if cur, ok := s.byAddr[b.addr]; ok && cur.ID() == b.id {
			delete(s.byAddr, b.addr)
		} else if ok {
			cur.base().removeCopy(b.id)
		}
	}
	b.scene = nil

	if i := slices.IndexFunc(s.selected, func(x Object) bool { return x.ID() == b.id }); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
		b.setSelected(false)
		s.selectionChanged()
	}
}

func removeFrom[T Object](list []T, v T) []T {
	i := slices.IndexFunc(list, func(x T) bool { return x.ID() == v.ID() })
	if i < 0 {
		return list
	}
	return slices.Delete(list, i, i+1)
}

// DeleteObjects removes objs together with everything that depends on them:
// attached connectors and buses, and the children of contours. Connectors are
// detached from their ends and children from their contours. It returns the
// removed objects in collection order.
func (s *Scene) DeleteObjects(objs ...Object) []Object {
	return s.deleteClosure(objs, true)
}

// Discard removes objs with their attached connectors and buses, as when the
// store deletes them. Children of a discarded contour are released and stay
// in the scene.
func (s *Scene) Discard(objs ...Object) []Object {
	return s.deleteClosure(objs, false)
}

func (s *Scene) deleteClosure(objs []Object, children bool) []Object {
	var closure []Object
	seen := make(map[uint64]struct{})

	var collect func(o Object)
	collect = func(o Object) {
		if _, ok := seen[o.ID()]; ok {
			return
		}
		if _, ok := s.byID[o.ID()]; !ok {
			return
		}
		seen[o.ID()] = struct{}{}
		closure = append(closure, o)

		for _, c := range o.base().connectors {
			collect(c)
		}
		if bus := o.Bus(); bus != nil {
			collect(bus)
		}
		if ct, ok := o.(*Contour); ok && children {
			for _, ch := range ct.children {
				collect(ch)
			}
		}
	}
	for _, o := range objs {
		collect(o)
	}

	for _, o := range closure {
		if ct := o.Contour(); ct != nil {
			ct.RemoveChild(o)
		}
		if c, ok := o.(*Connector); ok {
			c.Destroy()
		}
	}
	for _, o := range closure {
		s.Remove(o)
	}
	s.logger.Debug("deleted objects", "requested", len(objs), "removed", len(closure), "children", children)
	return closure
}

// ByAddr returns the object bound to addr.
func (s *Scene) ByAddr(addr Addr) (Object, bool) {
	o, ok := s.byAddr[addr]
	return o, ok
}

// BindAddr binds o to addr. With asCopy set, o becomes a copy of the object
// already holding addr and the index is left unchanged. Otherwise o replaces
// whatever held addr and its previous address is released.
func (s *Scene) BindAddr(o Object, addr Addr, asCopy bool) error {
	b := o.base()
	if asCopy {
		orig, ok := s.byAddr[addr]
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "no object bound to address %d", addr)
		}
		b.addr = addr
		if orig.ID() != b.id {
			orig.base().addCopy(o)
		}
		b.needsSync = true
		return nil
	}

	if b.addr != 0 {
		if cur, ok := s.byAddr[b.addr]; ok && cur.ID() == b.id {
			delete(s.byAddr, b.addr)
		}
	}
	b.addr = addr
	if addr != 0 {
		s.byAddr[addr] = o
	}
	b.needsSync = true
	return nil
}

// Addrs returns every indexed address in ascending order.
func (s *Scene) Addrs() []Addr {
	out := make([]Addr, 0, len(s.byAddr))
	for a := range s.byAddr {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

func (s *Scene) PointNodes() []*PointNode     { return slices.Clone(s.pointNodes) }
func (s *Scene) ContentNodes() []*ContentNode { return slices.Clone(s.contentNodes) }
func (s *Scene) Connectors() []*Connector     { return slices.Clone(s.connectors) }
func (s *Scene) Contours() []*Contour         { return slices.Clone(s.contours) }
func (s *Scene) Buses() []*Bus                { return slices.Clone(s.buses) }

// Len returns the number of objects in the scene.
func (s *Scene) Len() int { return len(s.byID) }

// Objects returns every object: point nodes, content nodes, connectors,
// contours and buses, each group in insertion order.
func (s *Scene) Objects() []Object {
	out := make([]Object, 0, len(s.byID))
	for _, o := range s.pointNodes {
		out = append(out, o)
	}
	for _, o := range s.contentNodes {
		out = append(out, o)
	}
	for _, o := range s.connectors {
		out = append(out, o)
	}
	for _, o := range s.contours {
		out = append(out, o)
	}
	for _, o := range s.buses {
		out = append(out, o)
	}
	return out
}

// Find returns the object with the given local id.
func (s *Scene) Find(id uint64) (Object, bool) {
	o, ok := s.byID[id]
	return o, ok
}

// Contains reports whether o belongs to the scene.
func (s *Scene) Contains(o Object) bool {
	_, ok := s.byID[o.ID()]
	return ok
}

// Update brings every object with stale geometry up to date. Nodes go first
// so connectors resolve against their final positions.
func (s *Scene) Update() {
	for _, o := range s.Objects() {
		if o.NeedsUpdate() {
			o.Update()
		}
	}
}

// Dirty returns the objects whose visual representation is stale.
func (s *Scene) Dirty() []Object {
	var out []Object
	for _, o := range s.Objects() {
		if o.NeedsSync() {
			out = append(out, o)
		}
	}
	return out
}

// ContainerSize returns the size of the drawing area.
func (s *Scene) ContainerSize() (w, h float64) { return s.size.ContainerSize() }

// CrossingRule returns the rule contours use to pick connection points.
func (s *Scene) CrossingRule() CrossingRule { return s.crossing }

// =============================================================================
// Contours
// =============================================================================

// UpdateContours re-homes objs after an edit. Each object moves to the last
// contour whose polygon contains it (connectors: both ends), and leaves its
// contour when none does.
func (s *Scene) UpdateContours(objs ...Object) {
	for _, o := range objs {
		if o.Kind() == KindContour || o.Kind() == KindBus {
			continue
		}
		found := false
		for _, ct := range s.contours {
			inside := false
			if c, ok := o.(*Connector); ok {
				inside = ct.ContainsConnector(c)
			} else {
				inside = ct.Contains(o)
			}
			if inside {
				ct.AddChild(o)
				found = true
			}
		}
		if !found {
			if ct := o.Contour(); ct != nil {
				ct.RemoveChild(o)
			}
		}
	}
}

// AppendAllToContours re-homes every node and connector in the scene.
func (s *Scene) AppendAllToContours() {
	var objs []Object
	for _, o := range s.pointNodes {
		objs = append(objs, o)
	}
	for _, o := range s.contentNodes {
		objs = append(objs, o)
	}
	for _, o := range s.connectors {
		objs = append(objs, o)
	}
	s.UpdateContours(objs...)
}

// =============================================================================
// Selection
// =============================================================================

// Select adds o to the selection.
func (s *Scene) Select(o Object) {
	if o.Selected() {
		return
	}
	s.selected = append(s.selected, o)
	o.base().setSelected(true)
	s.selectionChanged()
}

// ToggleSelection flips o's membership in the selection.
func (s *Scene) ToggleSelection(o Object) {
	if o.Selected() {
		s.Deselect(o)
		return
	}
	s.Select(o)
}

// Deselect removes o from the selection. It reports false when o was not
// selected.
func (s *Scene) Deselect(o Object) bool {
	i := slices.IndexFunc(s.selected, func(x Object) bool { return x.ID() == o.ID() })
	if i < 0 || !o.Selected() {
		s.logger.Warn("removing selection from unselected object", "id", o.ID())
		return false
	}
	s.selected = slices.Delete(s.selected, i, i+1)
	o.base().setSelected(false)
	s.selectionChanged()
	return true
}

// ClearSelection deselects everything.
func (s *Scene) ClearSelection() {
	if len(s.selected) == 0 {
		return
	}
	for _, o := range s.selected {
		o.base().setSelected(false)
	}
	s.selected = s.selected[:0]
	s.selectionChanged()
}

// SelectAll selects every object in the scene.
func (s *Scene) SelectAll() {
	for _, o := range s.Objects() {
		if !o.Selected() {
			s.selected = append(s.selected, o)
			o.base().setSelected(true)
		}
	}
	s.selectionChanged()
}

// Selected returns the selection in selection order.
func (s *Scene) Selected() []Object { return slices.Clone(s.selected) }

// LinePoints returns the editable points of the selected polyline object, or
// nil unless exactly one connector, bus or contour is selected.
func (s *Scene) LinePoints() []geom.Vec { return slices.Clone(s.linePoints) }

func (s *Scene) selectionChanged() {
	s.linePoints = nil
	if len(s.selected) == 1 {
		switch v := s.selected[0].(type) {
		case *Connector:
			s.linePoints = v.Points()
		case *Bus:
			s.linePoints = v.Points()
		case *Contour:
			s.linePoints = v.Vertices()
		}
	}
	if s.onSelection != nil {
		s.onSelection(s.Selected())
	}
}

// SetLinePoint moves point idx of the single selected connector, bus or
// contour.
func (s *Scene) SetLinePoint(idx int, p geom.Vec) error {
	if len(s.selected) != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "line point edit needs exactly one selected object, have %d", len(s.selected))
	}

	o := s.selected[0]
	var ok bool
	switch v := o.(type) {
	case *Connector:
		ok = v.setPoint(idx, p)
	case *Bus:
		ok = v.setPoint(idx, p)
	case *Contour:
		if ok = idx >= 0 && idx < len(v.points); ok {
			v.points[idx].X, v.points[idx].Y = p.X, p.Y
		}
	default:
		return errors.New(errors.ErrCodeUnsupported, "%s objects have no line points", o.Kind())
	}
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "line point index %d out of range", idx)
	}

	o.RequestUpdate()
	o.base().needsSync = true
	s.selectionChanged()
	return nil
}
