package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/scgraph/pkg/errors"
	"github.com/matzehuels/scgraph/pkg/scene"
)

func pt(x, y float64) *Point { return &Point{X: x, Y: y} }

func mustGet(t *testing.T, s *scene.Scene, addr uint64) scene.Object {
	t.Helper()
	o, ok := s.ByAddr(scene.Addr(addr))
	if !ok {
		t.Fatalf("ByAddr(%d) not found", addr)
	}
	return o
}

func TestEventKindInference(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{"plain", Event{}, KindNode},
		{"content", Event{Content: "x"}, KindContent},
		{"connector", Event{Source: 1, Target: 2}, KindConnector},
		{"bus", Event{Source: 1}, KindBus},
		{"contour", Event{Vertices: []Point{{0, 0}, {1, 0}, {1, 1}}}, KindContour},
		{"explicit wins", Event{Kind: "Content", Source: 1, Target: 2}, KindContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.kind(); got != tt.want {
				t.Errorf("kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		ev      Event
		wantErr bool
	}{
		{"node", Event{Op: OpCreate, Addr: 1}, false},
		{"remove", Event{Op: OpRemove, Addr: 1}, false},
		{"unknown op", Event{Op: "update", Addr: 1}, true},
		{"missing addr", Event{Op: OpCreate}, true},
		{"short contour", Event{Op: OpCreate, Addr: 1, Vertices: []Point{{0, 0}, {1, 1}}}, true},
		{"unknown kind", Event{Op: OpCreate, Addr: 1, Kind: "blob"}, true},
		{"connector without target", Event{Op: OpCreate, Addr: 1, Kind: KindConnector, Source: 2}, true},
		{"bus without source", Event{Op: OpCreate, Addr: 1, Kind: KindBus}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ev.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) && !errors.Is(err, errors.ErrCodeInvalidGeometry) {
				t.Errorf("Validate() code = %v", errors.GetCode(err))
			}
		})
	}
}

func TestApplyCreatesObjects(t *testing.T) {
	s := scene.New()
	events := []Event{
		{Op: OpCreate, Addr: 1, Class: "node|const", Text: "a", Position: pt(0, 0)},
		{Op: OpCreate, Addr: 2, Content: "<b>b</b>", ContentType: "text/html", Position: pt(100, 0)},
		{Op: OpCreate, Addr: 3, Class: "edge", Source: 1, Target: 2},
		{Op: OpCreate, Addr: 4, Source: 1, Position: pt(0, 200)},
	}
	res, err := NewApplier(nil).Apply(context.Background(), s, events)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if res.Created != 4 || res.Passes != 1 {
		t.Errorf("Apply() = %+v, want 4 created in 1 pass", res)
	}

	a := mustGet(t, s, 1)
	if a.Kind() != scene.KindPointNode || a.Text() != "a" || !a.Class().Has(scene.ClassConst) {
		t.Errorf("node 1 = {%v %q %v}", a.Kind(), a.Text(), a.Class())
	}
	if a.State() != scene.StateLoadedFromStore {
		t.Errorf("State() = %v, want loaded", a.State())
	}
	if mustGet(t, s, 2).Kind() != scene.KindContentNode {
		t.Error("addr 2 is not a content node")
	}
	c, ok := mustGet(t, s, 3).(*scene.Connector)
	if !ok {
		t.Fatal("addr 3 is not a connector")
	}
	if c.Source() != a || c.Target() != mustGet(t, s, 2) {
		t.Error("connector endpoints do not match addresses 1 and 2")
	}
	bus, ok := mustGet(t, s, 4).(*scene.Bus)
	if !ok {
		t.Fatal("addr 4 is not a bus")
	}
	if a.Bus() != bus {
		t.Error("bus source does not point back to the bus")
	}
}

func TestApplyRetriesOutOfOrder(t *testing.T) {
	s := scene.New()
	events := []Event{
		{Op: OpCreate, Addr: 10, Source: 11, Target: 3},
		{Op: OpCreate, Addr: 11, Source: 1, Target: 2},
		{Op: OpCreate, Addr: 1},
		{Op: OpCreate, Addr: 2},
		{Op: OpCreate, Addr: 3},
	}
	res, err := NewApplier(nil).Apply(context.Background(), s, events)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if res.Passes != 3 {
		t.Errorf("Passes = %d, want 3", res.Passes)
	}
	outer := mustGet(t, s, 10).(*scene.Connector)
	if outer.Source() != mustGet(t, s, 11) {
		t.Error("connector 10 is not attached to connector 11")
	}
}

func TestApplyUnresolved(t *testing.T) {
	s := scene.New()
	events := []Event{
		{Op: OpCreate, Addr: 1},
		{Op: OpCreate, Addr: 5, Source: 1, Target: 9},
		{Op: OpCreate, Addr: 6, Source: 7, Target: 9},
	}
	err := Apply(s, events)
	if err == nil {
		t.Fatal("Apply() succeeded with unresolvable references")
	}
	if !errors.Is(err, errors.ErrCodeTopology) {
		t.Errorf("GetCode() = %v, want TOPOLOGY", errors.GetCode(err))
	}
	var ue *errors.UnresolvedError
	if !errors.As(err, &ue) {
		t.Fatalf("error %v does not wrap UnresolvedError", err)
	}
	if len(ue.Addrs) != 2 || ue.Addrs[0] != 7 || ue.Addrs[1] != 9 {
		t.Errorf("Addrs = %v, want [7 9]", ue.Addrs)
	}
	if _, ok := s.ByAddr(1); !ok {
		t.Error("resolvable event was not applied")
	}
}

func TestApplyMergesExisting(t *testing.T) {
	s := scene.New()
	if err := Apply(s, []Event{{Op: OpCreate, Addr: 1, Text: "old", Position: pt(0, 0)}}); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	first := mustGet(t, s, 1)

	err := Apply(s, []Event{{Op: OpCreate, Addr: 1, Text: "new", Class: "node|var", Position: pt(5, 5)}})
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	o := mustGet(t, s, 1)
	if o != first {
		t.Fatal("merge replaced the object")
	}
	if o.Text() != "new" || !o.Class().Has(scene.ClassVar) || o.Position().X != 5 {
		t.Errorf("merged object = {%q %v %v}", o.Text(), o.Class(), o.Position())
	}
	if o.State() != scene.StateMergedWithStore {
		t.Errorf("State() = %v, want merged", o.State())
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestApplyCopy(t *testing.T) {
	s := scene.New()
	events := []Event{
		{Op: OpCreate, Addr: 1, Copy: true, Position: pt(50, 50)},
		{Op: OpCreate, Addr: 1, Position: pt(0, 0)},
	}
	if err := Apply(s, events); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	orig := mustGet(t, s, 1)
	if len(orig.Copies()) != 1 {
		t.Fatalf("Copies() = %d, want 1", len(orig.Copies()))
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}

	if err := Apply(s, []Event{{Op: OpRemove, Addr: 1}}); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() after remove = %d, want 0", s.Len())
	}
}

func TestApplyRemoveCascades(t *testing.T) {
	s := scene.New()
	events := []Event{
		{Op: OpCreate, Addr: 1, Position: pt(0, 0)},
		{Op: OpCreate, Addr: 2, Position: pt(100, 0)},
		{Op: OpCreate, Addr: 3, Source: 1, Target: 2},
	}
	if err := Apply(s, events); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	res, err := NewApplier(nil).Apply(context.Background(), s, []Event{
		{Op: OpRemove, Addr: 1},
		{Op: OpRemove, Addr: 99},
	})
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if res.Removed != 1 {
		t.Errorf("Removed = %d, want 1", res.Removed)
	}
	if _, ok := s.ByAddr(3); ok {
		t.Error("connector survived removal of its source")
	}
	if _, ok := s.ByAddr(2); !ok {
		t.Error("unrelated node was removed")
	}
}

func TestApplyContourAdoptsNodes(t *testing.T) {
	s := scene.New()
	events := []Event{
		{Op: OpCreate, Addr: 1, Position: pt(5, 5)},
		{Op: OpCreate, Addr: 2, Position: pt(50, 50)},
		{Op: OpCreate, Addr: 3, Vertices: []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}},
		{Op: OpCreate, Addr: 4, Position: pt(2, 8)},
	}
	if err := Apply(s, events); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	ct := mustGet(t, s, 3).(*scene.Contour)
	if mustGet(t, s, 1).Contour() != ct {
		t.Error("node inside contour was not adopted")
	}
	if mustGet(t, s, 4).Contour() != ct {
		t.Error("node created after contour was not adopted")
	}
	if mustGet(t, s, 2).Contour() != nil {
		t.Error("node outside contour was adopted")
	}
}

func TestApplyRemoveContourKeepsChildren(t *testing.T) {
	s := scene.New()
	events := []Event{
		{Op: OpCreate, Addr: 1, Position: pt(10, 10)},
		{Op: OpCreate, Addr: 2, Position: pt(90, 90)},
		{Op: OpCreate, Addr: 3, Source: 1, Target: 2},
		{Op: OpCreate, Addr: 9, Vertices: []Point{{0, 0}, {100, 0}, {100, 100}, {0, 100}}},
	}
	if err := Apply(s, events); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if mustGet(t, s, 3).Contour() == nil {
		t.Fatal("connector inside contour was not adopted")
	}

	if err := Apply(s, []Event{{Op: OpRemove, Addr: 9}}); err != nil {
		t.Fatalf("Apply(remove) error: %v", err)
	}
	if _, ok := s.ByAddr(9); ok {
		t.Error("contour survived its remove event")
	}
	for _, addr := range []uint64{1, 2, 3} {
		o := mustGet(t, s, addr)
		if o.Contour() != nil {
			t.Errorf("addr %d still owned by the removed contour", addr)
		}
	}

	if err := Apply(s, []Event{{Op: OpCreate, Addr: 4, Source: 1, Target: 2}}); err != nil {
		t.Errorf("Apply() after contour removal error: %v", err)
	}
}

func TestApplyBadClass(t *testing.T) {
	err := Apply(scene.New(), []Event{{Op: OpCreate, Addr: 1, Class: "node|bogus"}})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Apply() error = %v, want INVALID_INPUT", err)
	}
}

func TestApplyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewApplier(nil).Apply(ctx, scene.New(), []Event{{Op: OpCreate, Addr: 1}})
	if err == nil {
		t.Error("Apply() with cancelled context succeeded")
	}
}

func TestRead(t *testing.T) {
	input := `{"op":"create","addr":1,"class":"node","position":{"x":1,"y":2}}

{"op":"create","addr":2,"source":1,"target":1}
{"op":"remove","addr":2}
`
	events, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Read() = %d events, want 3", len(events))
	}
	if events[0].Position == nil || events[0].Position.Y != 2 {
		t.Errorf("events[0].Position = %v, want (1, 2)", events[0].Position)
	}
	if events[1].kind() != KindConnector {
		t.Errorf("events[1] kind = %q, want connector", events[1].kind())
	}
	if events[2].Op != OpRemove {
		t.Errorf("events[2].Op = %q, want remove", events[2].Op)
	}
}

func TestReadInvalid(t *testing.T) {
	_, err := Read(strings.NewReader("{\"op\":\"create\",\"addr\":1}\nnot json\n"))
	if err == nil {
		t.Fatal("Read() accepted invalid JSON")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Read() error = %v, want line number", err)
	}
}
