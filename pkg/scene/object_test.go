package scene

import (
	"math"
	"testing"

	"github.com/matzehuels/scgraph/pkg/errors"
	"github.com/matzehuels/scgraph/pkg/geom"
)

const tol = 1e-9

func pointNode(x, y, r float64) *PointNode {
	n := NewPointNode(geom.V(x, y), ClassNode|ClassConst)
	n.SetScale(geom.V(r, r))
	return n
}

func TestPointNodeConnectionPos(t *testing.T) {
	tests := []struct {
		name string
		from geom.Vec
		want geom.Vec
	}{
		{"right", geom.V(100, 0), geom.V(10, 0)},
		{"below", geom.V(0, 50), geom.V(0, 10)},
		{"diagonal", geom.V(-30, -40), geom.V(-6, -8)},
	}

	n := pointNode(0, 0, 10)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.ConnectionPos(tt.from, 0)
			if err != nil {
				t.Fatalf("ConnectionPos() error = %v", err)
			}
			if !got.Equal(tt.want, tol) {
				t.Errorf("ConnectionPos() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContentNodeConnectionPos(t *testing.T) {
	n := NewContentNode(geom.V(0, 0), ClassLink|ClassConst, "hello", "string")
	n.SetScale(geom.V(20, 10))

	got, err := n.ConnectionPos(geom.V(100, 0), 0)
	if err != nil {
		t.Fatalf("ConnectionPos() error = %v", err)
	}
	if !got.Equal(geom.V(15, 0), tol) {
		t.Errorf("ConnectionPos() = %v, want (15,0)", got)
	}

	got, err = n.ConnectionPos(geom.V(0, -100), 0)
	if err != nil {
		t.Fatalf("ConnectionPos() error = %v", err)
	}
	if !got.Equal(geom.V(0, -10), tol) {
		t.Errorf("ConnectionPos() = %v, want (0,-10)", got)
	}

	_, err = n.ConnectionPos(geom.V(0, 0), 0)
	if !errors.Is(err, errors.ErrCodeEmptyGeometry) {
		t.Errorf("ConnectionPos(centre) error = %v, want %v", err, errors.ErrCodeEmptyGeometry)
	}
}

func TestContentNodeSetContent(t *testing.T) {
	n := NewContentNode(geom.V(0, 0), ClassLink, "a", "string")
	n.SetContentSize(40, 20)
	if !n.ContentLoaded() {
		t.Fatal("SetContentSize should mark content loaded")
	}
	if n.Scale() != geom.V(40, 20) {
		t.Errorf("Scale() = %v, want (40,20)", n.Scale())
	}

	n.MarkSynced()
	n.SetContent("b", "int32")
	if n.ContentLoaded() {
		t.Error("SetContent should clear the loaded flag")
	}
	if !n.NeedsSync() {
		t.Error("SetContent should mark the node for redraw")
	}
	if n.Content() != "b" || n.ContentType() != "int32" {
		t.Errorf("content = %q/%q", n.Content(), n.ContentType())
	}
}

func TestSettersMarkVisualDirty(t *testing.T) {
	tests := []struct {
		name string
		set  func(o Object)
	}{
		{"scale", func(o Object) { o.SetScale(geom.V(5, 5)) }},
		{"text", func(o Object) { o.SetText("x") }},
		{"class", func(o Object) { o.SetClass(ClassVar) }},
		{"level", func(o Object) { o.SetLevel(3) }},
		{"state", func(o Object) { o.SetState(StateNewlyCreated) }},
		{"highlight", func(o Object) { o.SetHighlighted(true) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := pointNode(0, 0, 10)
			n.MarkSynced()
			tt.set(n)
			if !n.NeedsSync() {
				t.Errorf("%s setter did not mark NeedsSync", tt.name)
			}
		})
	}
}

func TestNewObjectDefaults(t *testing.T) {
	n := NewPointNode(geom.Vec{}, ClassNode)
	if n.Scale() != geom.V(20, 20) {
		t.Errorf("Scale() = %v, want (20,20)", n.Scale())
	}
	if !n.NeedsUpdate() || !n.NeedsSync() {
		t.Error("new objects start dirty")
	}
	if _, ok := n.Addr(); ok {
		t.Error("new objects have no address")
	}
	if n.State() != StateLoadedFromStore {
		t.Errorf("State() = %v, want StateLoadedFromStore", n.State())
	}
	m := NewPointNode(geom.Vec{}, ClassNode)
	if m.ID() <= n.ID() {
		t.Errorf("ids not increasing: %d then %d", n.ID(), m.ID())
	}
}

func TestConnectorBoundaryPoints(t *testing.T) {
	a := pointNode(0, 0, 10)
	b := pointNode(100, 0, 10)
	c := NewConnector(a, b, ClassArc|ClassConst)

	c.Update()

	if !c.SourcePoint().Equal(geom.V(10, 0), tol) {
		t.Errorf("SourcePoint() = %v, want (10,0)", c.SourcePoint())
	}
	if !c.TargetPoint().Equal(geom.V(90, 0), tol) {
		t.Errorf("TargetPoint() = %v, want (90,0)", c.TargetPoint())
	}
	if !c.Position().Equal(geom.V(50, 0), tol) {
		t.Errorf("Position() = %v, want (50,0)", c.Position())
	}
	if c.NeedsUpdate() {
		t.Error("Update should clear NeedsUpdate")
	}
	if c.SourceDot() != DefaultDot || c.TargetDot() != DefaultDot {
		t.Errorf("dots = %v/%v, want %v", c.SourceDot(), c.TargetDot(), DefaultDot)
	}
	if !c.HasArrow() {
		t.Error("arc connector should have an arrow")
	}
}

func TestConnectorUpdateIdempotent(t *testing.T) {
	a := pointNode(0, 0, 10)
	b := pointNode(60, 80, 10)
	c := NewConnector(a, b, ClassEdge)

	c.Update()
	src, tgt, mid := c.SourcePoint(), c.TargetPoint(), c.Position()

	c.Update()
	c.RequestUpdate()
	c.Update()

	if !c.SourcePoint().Equal(src, tol) || !c.TargetPoint().Equal(tgt, tol) || !c.Position().Equal(mid, tol) {
		t.Errorf("second update moved geometry: %v %v %v, want %v %v %v",
			c.SourcePoint(), c.TargetPoint(), c.Position(), src, tgt, mid)
	}
}

func TestConnectorWaypointsResolveAgainstNeighbours(t *testing.T) {
	a := pointNode(0, 0, 10)
	b := pointNode(100, 100, 10)
	c := NewConnector(a, b, ClassEdge)
	c.SetPoints([]geom.Vec{geom.V(100, 0)})

	c.Update()

	if !c.SourcePoint().Equal(geom.V(10, 0), tol) {
		t.Errorf("SourcePoint() = %v, want (10,0)", c.SourcePoint())
	}
	if !c.TargetPoint().Equal(geom.V(100, 90), tol) {
		t.Errorf("TargetPoint() = %v, want (100,90)", c.TargetPoint())
	}
}

func TestSetPositionPropagates(t *testing.T) {
	a := pointNode(0, 0, 10)
	b := pointNode(100, 0, 10)
	c := NewConnector(a, b, ClassEdge)
	d := NewConnector(c, b, ClassEdge)
	bus := NewBus(a, ClassNode, geom.V(0, 100))

	for _, o := range []Object{a, b, c, d, bus} {
		o.Update()
		o.MarkSynced()
	}

	a.SetPosition(geom.V(10, 10))

	if !a.NeedsSync() {
		t.Error("moved node should need sync")
	}
	for _, o := range []Object{c, d, bus} {
		if !o.NeedsUpdate() {
			t.Errorf("%s %d should need update after endpoint moved", o.Kind(), o.ID())
		}
	}
	if b.NeedsUpdate() {
		t.Error("the other endpoint should not be marked")
	}
}

func TestRequestUpdateTerminatesOnCycles(t *testing.T) {
	a := pointNode(0, 0, 10)
	b := pointNode(100, 0, 10)
	c1 := NewConnector(a, b, ClassEdge)
	c3 := NewConnector(c1, b, ClassEdge)
	c4 := NewConnector(c3, a, ClassEdge)
	c3.SetTarget(c4)

	a.SetPosition(geom.V(1, 1))

	for _, c := range []*Connector{c1, c3, c4} {
		if !c.NeedsUpdate() {
			t.Errorf("connector %d should need update", c.ID())
		}
	}

	c3.Update()
	if c3.NeedsUpdate() || c4.NeedsUpdate() {
		t.Error("update through a cycle should leave both connectors clean")
	}
}

func TestConnectorDestroyDetachesBothEnds(t *testing.T) {
	a := pointNode(0, 0, 10)
	b := pointNode(100, 0, 10)
	c := NewConnector(a, b, ClassEdge)

	if len(a.Connectors()) != 1 || len(b.Connectors()) != 1 {
		t.Fatal("connector should register with both ends")
	}

	c.Destroy()

	if len(a.Connectors()) != 0 || len(b.Connectors()) != 0 {
		t.Errorf("Destroy left references: %d, %d", len(a.Connectors()), len(b.Connectors()))
	}
}

func TestConnectorSetSourceMovesBackReference(t *testing.T) {
	a := pointNode(0, 0, 10)
	b := pointNode(100, 0, 10)
	x := pointNode(50, 50, 10)
	c := NewConnector(a, b, ClassEdge)

	c.SetSource(x)

	if len(a.Connectors()) != 0 {
		t.Error("old source should lose the connector")
	}
	if got := x.Connectors(); len(got) != 1 || got[0] != c {
		t.Errorf("new source connectors = %v", got)
	}
	if c.Source() != x {
		t.Error("Source() not updated")
	}
}

func TestConnectorSetPositionShiftsWaypoints(t *testing.T) {
	a := pointNode(0, 0, 10)
	b := pointNode(100, 0, 10)
	c := NewConnector(a, b, ClassEdge)
	c.SetPoints([]geom.Vec{geom.V(50, 50)})
	c.Update()

	c.SetPosition(c.Position().Add(geom.V(5, -5)))

	if got := c.Points()[0]; !got.Equal(geom.V(55, 45), tol) {
		t.Errorf("waypoint = %v, want (55,45)", got)
	}
}

func TestConnectorNonFiniteEndpointSnaps(t *testing.T) {
	a := pointNode(0, 0, 10)
	b := pointNode(100, 0, 10)
	c := NewConnector(a, b, ClassEdge)
	a.SetPosition(geom.V(math.NaN(), 0))

	c.Update()

	if a.Position() != FallbackPosition {
		t.Errorf("endpoint position = %v, want %v", a.Position(), FallbackPosition)
	}
	if !c.SourcePoint().IsFinite() || !c.TargetPoint().IsFinite() {
		t.Errorf("boundary points not finite: %v %v", c.SourcePoint(), c.TargetPoint())
	}
}

func TestConnectorConnectionPosOnDisc(t *testing.T) {
	a := pointNode(0, 0, 10)
	b := pointNode(100, 0, 10)
	c := NewConnector(a, b, ClassEdge)

	got, err := c.ConnectionPos(geom.V(50, 100), 0.5)
	if err != nil {
		t.Fatalf("ConnectionPos() error = %v", err)
	}
	if c.NeedsUpdate() {
		t.Error("ConnectionPos should update a dirty connector")
	}
	if !got.Equal(geom.V(50, 10), tol) {
		t.Errorf("ConnectionPos() = %v, want (50,10)", got)
	}
}

func TestPointAtOutOfRangeDot(t *testing.T) {
	a := pointNode(0, 0, 10)
	b := pointNode(100, 0, 10)
	c := NewConnector(a, b, ClassEdge)
	c.Update()

	tests := []struct {
		name string
		dot  float64
		want geom.Vec
	}{
		{"start", 0, geom.V(10, 0)},
		{"middle", 0.5, geom.V(50, 0)},
		{"negative falls back to first segment", -3.25, geom.V(70, 0)},
		{"too large falls back to first segment", 7.5, geom.V(50, 0)},
		{"past last segment uses centres", 1.5, geom.V(50, 0)},
		{"nan", math.NaN(), geom.V(10, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.PointAt(tt.dot); !got.Equal(tt.want, tol) {
				t.Errorf("PointAt(%v) = %v, want %v", tt.dot, got, tt.want)
			}
		})
	}
}

func TestCalculateDotPos(t *testing.T) {
	a := pointNode(0, 0, 10)
	b := pointNode(100, 0, 10)
	c := NewConnector(a, b, ClassEdge)
	c.Update()

	tests := []struct {
		name string
		p    geom.Vec
		want float64
	}{
		{"midpoint", geom.V(50, 0), 0.5},
		{"above quarter", geom.V(30, 20), 0.25},
		{"outside segment", geom.V(-50, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.CalculateDotPos(tt.p); math.Abs(got-tt.want) > tol {
				t.Errorf("CalculateDotPos(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}

	if got := a.CalculateDotPos(geom.V(1, 1)); got != 0 {
		t.Errorf("node CalculateDotPos() = %v, want 0", got)
	}
}

func TestCalculateDotPosZeroLengthSegment(t *testing.T) {
	a := pointNode(0, 0, 10)
	b := pointNode(100, 0, 10)
	c := NewConnector(a, b, ClassEdge)
	c.Update()
	c.SetPoints([]geom.Vec{c.SourcePoint()})
	c.needsUpdate = false

	if got := c.CalculateDotPos(geom.V(50, 0)); got != 0 {
		t.Errorf("CalculateDotPos() = %v, want running result 0", got)
	}
}

func TestClassParseAndString(t *testing.T) {
	c, ok := ParseClass("node|const, struct")
	if !ok {
		t.Fatal("ParseClass() reported unknown names")
	}
	if c != ClassNode|ClassConst|ClassStruct {
		t.Errorf("ParseClass() = %v", c)
	}
	if c.String() != "node|const|struct" {
		t.Errorf("String() = %q", c.String())
	}
	if _, ok := ParseClass("node|bogus"); ok {
		t.Error("ParseClass() should reject unknown names")
	}
	if !c.Has(ClassNode | ClassStruct) {
		t.Error("Has() = false")
	}
}

func TestKindString(t *testing.T) {
	if KindBus.String() != "bus" || Kind(99).String() != "unknown" {
		t.Errorf("Kind.String() = %q, %q", KindBus.String(), Kind(99).String())
	}
}
