package scene

import (
	"slices"
	"strings"
	"sync/atomic"

	"github.com/matzehuels/scgraph/pkg/geom"
)

// Kind identifies the concrete variant behind an [Object].
type Kind int

const (
	// KindPointNode is a circular node, see [PointNode].
	KindPointNode Kind = iota
	// KindContentNode is a rectangular node that shows content, see [ContentNode].
	KindContentNode
	// KindConnector is a line between two objects, see [Connector].
	KindConnector
	// KindContour is a polygon grouping other objects, see [Contour].
	KindContour
	// KindBus is a free polyline hanging off a single object, see [Bus].
	KindBus
)

var kindNames = [...]string{"point", "content", "connector", "contour", "bus"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// State tracks how an object relates to the external knowledge store.
type State int

const (
	// StateNormal is an object with no pending store relation.
	StateNormal State = iota
	// StateMergedWithStore is an object whose local edits were merged into the store.
	StateMergedWithStore
	// StateNewlyCreated is an object created locally and not yet in the store.
	StateNewlyCreated
	// StateLoadedFromStore is an object created from a store event.
	StateLoadedFromStore
	// StateRemovedFromStore is an object the store has deleted.
	StateRemovedFromStore
)

// Addr is an external address in the knowledge store. Zero means unset.
type Addr uint64

// Class is a bit set describing the semantic type of an element.
type Class uint32

const (
	ClassNode Class = 1 << iota
	ClassLink
	ClassEdge
	ClassArc
	ClassAccess
	ClassConst
	ClassVar
	ClassStruct
	ClassTuple
	ClassRole
	ClassNoRole
	ClassClass
	ClassAbstract
	ClassMaterial
	ClassPos
	ClassNeg
	ClassFuz
	ClassTemp
)

var classNames = []struct {
	c    Class
	name string
}{
	{ClassNode, "node"},
	{ClassLink, "link"},
	{ClassEdge, "edge"},
	{ClassArc, "arc"},
	{ClassAccess, "access"},
	{ClassConst, "const"},
	{ClassVar, "var"},
	{ClassStruct, "struct"},
	{ClassTuple, "tuple"},
	{ClassRole, "role"},
	{ClassNoRole, "norole"},
	{ClassClass, "class"},
	{ClassAbstract, "abstract"},
	{ClassMaterial, "material"},
	{ClassPos, "pos"},
	{ClassNeg, "neg"},
	{ClassFuz, "fuz"},
	{ClassTemp, "temp"},
}

// Has reports whether all bits of f are set.
func (c Class) Has(f Class) bool { return c&f == f }

// String renders the set as "node|const|struct".
func (c Class) String() string {
	var parts []string
	for _, n := range classNames {
		if c&n.c != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseClass parses a "|" or "," separated list of class names. Unknown names
// are reported through ok.
func ParseClass(s string) (c Class, ok bool) {
	ok = true
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		part = strings.ToLower(strings.TrimSpace(part))
		found := false
		for _, n := range classNames {
			if n.name == part {
				c |= n.c
				found = true
				break
			}
		}
		if !found {
			ok = false
		}
	}
	return c, ok
}

// Object is the capability set shared by every scene element.
type Object interface {
	ID() uint64
	Kind() Kind
	Addr() (Addr, bool)
	// Copies returns the objects bound to the same address as copies.
	Copies() []Object
	Position() geom.Vec
	Scale() geom.Vec
	Class() Class
	Text() string
	Level() int
	State() State

	// Connectors returns the connectors attached to this object, in
	// attachment order.
	Connectors() []*Connector
	Bus() *Bus
	Contour() *Contour

	NeedsUpdate() bool
	NeedsSync() bool
	Selected() bool
	Highlighted() bool

	SetPosition(p geom.Vec)
	SetScale(s geom.Vec)
	SetText(text string)
	SetClass(c Class)
	SetLevel(level int)
	SetState(st State)
	SetHighlighted(v bool)
	MarkSynced()

	// ConnectionPos returns the point on this object's boundary where a line
	// arriving from the given point attaches. dot selects a position along
	// polylines and is ignored by other variants.
	ConnectionPos(from geom.Vec, dot float64) (geom.Vec, error)
	// CalculateDotPos is the inverse of ConnectionPos for polylines. Other
	// variants return 0.
	CalculateDotPos(p geom.Vec) float64
	// Update recomputes derived geometry when the object is dirty.
	Update()
	// RequestUpdate marks the object and everything attached to it as
	// needing an update.
	RequestUpdate()

	base() *Base
}

var lastID atomic.Uint64

func nextID() uint64 { return lastID.Add(1) }

// DefaultScale is the scale of newly created objects.
var DefaultScale = geom.V(20, 20)

// Base carries the state shared by every object variant.
type Base struct {
	id          uint64
	addr        Addr
	position    geom.Vec
	scale       geom.Vec
	class       Class
	text        string
	level       int
	state       State
	connectors  []*Connector
	bus         *Bus
	contour     *Contour
	copies      map[uint64]Object
	scene       *Scene
	needsUpdate bool
	needsSync   bool
	selected    bool
	highlighted bool
}

func newBase(pos geom.Vec, class Class) Base {
	return Base{
		id:          nextID(),
		position:    pos,
		scale:       DefaultScale,
		class:       class,
		state:       StateLoadedFromStore,
		needsUpdate: true,
		needsSync:   true,
	}
}

func (b *Base) base() *Base { return b }

func (b *Base) ID() uint64 { return b.id }

// Addr returns the external address and whether one is bound.
func (b *Base) Addr() (Addr, bool) { return b.addr, b.addr != 0 }

func (b *Base) Position() geom.Vec { return b.position }
func (b *Base) Scale() geom.Vec    { return b.scale }
func (b *Base) Class() Class       { return b.class }
func (b *Base) Text() string       { return b.text }
func (b *Base) Level() int         { return b.level }
func (b *Base) State() State       { return b.state }
func (b *Base) Bus() *Bus          { return b.bus }
func (b *Base) Contour() *Contour  { return b.contour }
func (b *Base) NeedsUpdate() bool  { return b.needsUpdate }
func (b *Base) NeedsSync() bool    { return b.needsSync }
func (b *Base) Selected() bool     { return b.selected }
func (b *Base) Highlighted() bool  { return b.highlighted }

func (b *Base) Connectors() []*Connector { return slices.Clone(b.connectors) }

// Copies returns the objects bound to this object's address as copies,
// ordered by id.
func (b *Base) Copies() []Object {
	ids := make([]uint64, 0, len(b.copies))
	for id := range b.copies {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Object, len(ids))
	for i, id := range ids {
		out[i] = b.copies[id]
	}
	return out
}

func (b *Base) setPosition(p geom.Vec) {
	b.position = p
	b.needsSync = true
	b.RequestUpdate()
	b.notifyAttached()
}

func (b *Base) SetScale(s geom.Vec) {
	b.scale = s
	b.needsSync = true
}

func (b *Base) SetText(text string) {
	b.text = text
	b.needsSync = true
}

func (b *Base) SetClass(c Class) {
	b.class = c
	b.needsSync = true
}

func (b *Base) SetLevel(level int) {
	b.level = level
	b.needsSync = true
}

func (b *Base) SetState(st State) {
	b.state = st
	b.needsSync = true
}

func (b *Base) SetHighlighted(v bool) {
	b.highlighted = v
	b.needsSync = true
}

func (b *Base) setSelected(v bool) {
	b.selected = v
	b.needsSync = true
}

// MarkSynced clears the visual dirty flag once a renderer has drawn the
// object.
func (b *Base) MarkSynced() { b.needsSync = false }

// notifyAttached marks incident connectors and the bus for both update and
// redraw.
func (b *Base) notifyAttached() {
	for _, c := range b.connectors {
		c.needsUpdate = true
		c.needsSync = true
	}
	if b.bus != nil {
		b.bus.needsUpdate = true
		b.bus.needsSync = true
	}
}

// RequestUpdate marks this object and, transitively, every connector and bus
// attached to it as needing an update.
func (b *Base) RequestUpdate() {
	b.requestUpdate(make(map[uint64]struct{}))
}

func (b *Base) requestUpdate(visited map[uint64]struct{}) {
	if _, ok := visited[b.id]; ok {
		return
	}
	visited[b.id] = struct{}{}

	b.needsUpdate = true
	for _, c := range b.connectors {
		c.requestUpdate(visited)
	}
	if b.bus != nil {
		b.bus.requestUpdate(visited)
	}
}

// update clears the geometry flag, marks the object for redraw and brings
// dirty incident connectors up to date.
func (b *Base) update() {
	b.needsUpdate = false
	b.needsSync = true
	b.updateAttached()
}

func (b *Base) updateAttached() {
	for _, c := range b.connectors {
		if c.needsUpdate {
			c.Update()
		}
	}
}

func (b *Base) addConnector(c *Connector) {
	b.connectors = append(b.connectors, c)
}

func (b *Base) removeConnector(c *Connector) {
	if i := slices.Index(b.connectors, c); i >= 0 {
		b.connectors = slices.Delete(b.connectors, i, i+1)
	}
}

func (b *Base) addCopy(o Object) {
	if b.copies == nil {
		b.copies = make(map[uint64]Object)
	}
	b.copies[o.ID()] = o
}

func (b *Base) removeCopy(id uint64) {
	delete(b.copies, id)
}

// CalculateDotPos returns 0 for objects without a polyline.
func (b *Base) CalculateDotPos(geom.Vec) float64 { return 0 }
