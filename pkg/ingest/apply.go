package ingest

import (
	"context"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scgraph/pkg/errors"
	"github.com/matzehuels/scgraph/pkg/geom"
	"github.com/matzehuels/scgraph/pkg/observability"
	"github.com/matzehuels/scgraph/pkg/scene"
)

// Result summarises one Apply call.
type Result struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
	// Passes is the number of sweeps over the pending events.
	Passes int `json:"passes"`
}

// Applied returns the number of events that took effect.
func (r Result) Applied() int { return r.Created + r.Updated + r.Removed }

// Applier applies event batches to scenes.
type Applier struct {
	logger *log.Logger
}

// NewApplier creates an applier. A nil logger discards output.
func NewApplier(logger *log.Logger) *Applier {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Applier{logger: logger}
}

// Apply applies events with a fresh discard-logging [Applier].
func Apply(s *scene.Scene, events []Event) error {
	_, err := NewApplier(nil).Apply(context.Background(), s, events)
	return err
}

// Apply applies events to s in passes. Events whose referenced addresses are
// unknown are deferred to the next pass. When a pass makes no progress the
// remaining events fail with a TOPOLOGY error wrapping
// [errors.UnresolvedError]. Invalid events fail immediately.
//
// Events applied before a failure stay applied.
func (a *Applier) Apply(ctx context.Context, s *scene.Scene, events []Event) (res Result, err error) {
	start := time.Now()
	defer func() {
		observability.Ingest().OnEventsApplied(ctx, res.Applied(), res.Passes, time.Since(start), err)
	}()

	for _, ev := range events {
		if err := ev.Validate(); err != nil {
			return res, err
		}
	}

	pending := events
	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return res, errors.Wrap(errors.ErrCodeInternal, err, "apply cancelled")
		}
		res.Passes++

		var deferred []Event
		for _, ev := range pending {
			done, err := a.apply(s, ev, &res)
			if err != nil {
				return res, err
			}
			if !done {
				deferred = append(deferred, ev)
			}
		}
		if len(deferred) == len(pending) {
			return res, unresolved(s, deferred)
		}
		if len(deferred) > 0 {
			a.logger.Debug("deferred events", "pass", res.Passes, "count", len(deferred))
		}
		pending = deferred
	}

	a.logger.Debug("events applied",
		"created", res.Created, "updated", res.Updated, "removed", res.Removed, "passes", res.Passes)
	return res, nil
}

// unresolved lists the addresses referenced by events that are still
// unknown to s.
func unresolved(s *scene.Scene, events []Event) error {
	seen := make(map[uint64]bool)
	var addrs []uint64
	note := func(addr uint64) {
		if addr == 0 || seen[addr] {
			return
		}
		if _, ok := s.ByAddr(scene.Addr(addr)); ok {
			return
		}
		seen[addr] = true
		addrs = append(addrs, addr)
	}
	for _, ev := range events {
		if ev.Copy {
			note(ev.Addr)
		}
		note(ev.Source)
		note(ev.Target)
	}
	slices.Sort(addrs)
	return errors.Wrap(errors.ErrCodeTopology, &errors.UnresolvedError{Addrs: addrs},
		"%d events reference unknown objects", len(events))
}

// apply applies one event. It returns false when the event must wait for
// objects that do not exist yet.
func (a *Applier) apply(s *scene.Scene, ev Event, res *Result) (bool, error) {
	addr := scene.Addr(ev.Addr)
	if ev.Op == OpRemove {
		o, ok := s.ByAddr(addr)
		if !ok {
			a.logger.Warn("remove of unknown address", "addr", ev.Addr)
			return true, nil
		}
		targets := append([]scene.Object{o}, o.Copies()...)
		for _, t := range targets {
			t.SetState(scene.StateRemovedFromStore)
		}
		removed := s.Discard(targets...)
		res.Removed++
		a.logger.Debug("removed", "addr", ev.Addr, "objects", len(removed))
		return true, nil
	}

	if ev.Copy {
		if _, ok := s.ByAddr(addr); !ok {
			return false, nil
		}
	} else if o, ok := s.ByAddr(addr); ok {
		if err := merge(o, ev); err != nil {
			return false, err
		}
		res.Updated++
		return true, nil
	}

	o, ready, err := create(s, ev)
	if err != nil || !ready {
		return false, err
	}
	s.Append(o)
	if err := s.BindAddr(o, addr, ev.Copy); err != nil {
		s.Remove(o)
		return false, err
	}
	o.SetState(scene.StateLoadedFromStore)

	switch v := o.(type) {
	case *scene.Contour:
		v.AddElementsInPolygon(s.Objects())
	case *scene.Bus:
	default:
		s.UpdateContours(o)
	}
	res.Created++
	return true, nil
}

// create builds the object for a create event. It reports false when a
// referenced address is not in the scene yet.
func create(s *scene.Scene, ev Event) (scene.Object, bool, error) {
	kind := ev.kind()
	class, err := ev.class(kind)
	if err != nil {
		return nil, false, err
	}
	pos := position(s, ev)

	var o scene.Object
	switch kind {
	case KindNode:
		o = scene.NewPointNode(pos, class)
	case KindContent:
		o = scene.NewContentNode(pos, class, ev.Content, ev.ContentType)
	case KindContour:
		vs := make([]geom.Vec, len(ev.Vertices))
		for i, v := range ev.Vertices {
			vs[i] = v.Vec()
		}
		o = scene.NewContour(vs, class)
	case KindConnector:
		src, ok := s.ByAddr(scene.Addr(ev.Source))
		if !ok {
			return nil, false, nil
		}
		tgt, ok := s.ByAddr(scene.Addr(ev.Target))
		if !ok {
			return nil, false, nil
		}
		o = scene.NewConnector(src, tgt, class)
	case KindBus:
		src, ok := s.ByAddr(scene.Addr(ev.Source))
		if !ok {
			return nil, false, nil
		}
		o = scene.NewBus(src, class, pos)
	}

	if ev.Text != "" {
		o.SetText(ev.Text)
	}
	if ev.Level != 0 {
		o.SetLevel(ev.Level)
	}
	return o, true, nil
}

// merge folds a create event for a known address into the existing object.
func merge(o scene.Object, ev Event) error {
	if ev.Class != "" {
		class, err := ev.class(ev.kind())
		if err != nil {
			return err
		}
		o.SetClass(class)
	}
	if ev.Text != "" {
		o.SetText(ev.Text)
	}
	if ev.Level != 0 {
		o.SetLevel(ev.Level)
	}
	if ev.Position != nil {
		o.SetPosition(ev.Position.Vec())
	}
	if cn, ok := o.(*scene.ContentNode); ok && ev.Content != "" {
		cn.SetContent(ev.Content, ev.ContentType)
	}
	o.SetState(scene.StateMergedWithStore)
	return nil
}

// position returns the event position, or the container centre.
func position(s *scene.Scene, ev Event) geom.Vec {
	if ev.Position != nil {
		return ev.Position.Vec()
	}
	w, h := s.ContainerSize()
	return geom.V(w/2, h/2)
}
