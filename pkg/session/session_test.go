package session

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/scgraph/pkg/config"
	"github.com/matzehuels/scgraph/pkg/errors"
	"github.com/matzehuels/scgraph/pkg/ingest"
)

func events() []ingest.Event {
	return []ingest.Event{
		{Op: ingest.OpCreate, Addr: 3, Source: 1, Target: 2},
		{Op: ingest.OpCreate, Addr: 1, Position: &ingest.Point{X: 380, Y: 300}},
		{Op: ingest.OpCreate, Addr: 2, Position: &ingest.Point{X: 420, Y: 300}},
	}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Layout.FrameInterval = time.Millisecond
	return cfg
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestSessionApply(t *testing.T) {
	s := New(testConfig(), nil)
	defer s.Close()

	if _, err := uuid.Parse(s.ID()); err != nil {
		t.Errorf("ID() = %q is not a uuid: %v", s.ID(), err)
	}

	res, err := s.Apply(context.Background(), events())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if res.Created != 3 {
		t.Errorf("Created = %d, want 3", res.Created)
	}
	st := s.Status()
	if st.Objects != 3 || st.Version != 1 || st.Running {
		t.Errorf("Status() = %+v, want 3 objects, version 1, idle", st)
	}
}

func TestSessionApplyTopologyError(t *testing.T) {
	s := New(testConfig(), nil)
	defer s.Close()
	_, err := s.Apply(context.Background(), []ingest.Event{{Op: ingest.OpCreate, Addr: 5, Source: 1, Target: 2}})
	if !errors.Is(err, errors.ErrCodeTopology) {
		t.Errorf("Apply() error = %v, want TOPOLOGY", err)
	}
}

func TestSessionLayout(t *testing.T) {
	ctx := context.Background()
	s := New(testConfig(), nil)
	defer s.Close()
	if _, err := s.Apply(ctx, events()); err != nil {
		t.Fatal(err)
	}
	before := s.Positions()

	if err := s.StartLayout(ctx); err != nil {
		t.Fatalf("StartLayout() error = %v", err)
	}
	if !s.Status().Running {
		t.Fatal("engine should be running after StartLayout")
	}
	n := 0
	for s.Tick(ctx) {
		n++
		if n > 1000 {
			t.Fatal("layout did not converge")
		}
	}

	st := s.Status()
	if st.Running || st.Ticks < 290 || st.Ticks > 310 {
		t.Errorf("Status() = %+v, want idle after about 300 ticks", st)
	}
	after := s.Positions()
	if len(after) != 2 {
		t.Fatalf("Positions() has %d entries, want 2", len(after))
	}
	if after[1] == before[1] || after[2].X-after[1].X <= before[2].X-before[1].X {
		t.Errorf("nodes should be pushed apart: before %v after %v", before, after)
	}
}

func TestSessionStopLayout(t *testing.T) {
	ctx := context.Background()
	s := New(testConfig(), nil)
	defer s.Close()
	_, _ = s.Apply(ctx, events())
	_ = s.StartLayout(ctx)
	s.Tick(ctx)
	s.StopLayout(ctx)
	s.StopLayout(ctx)
	if s.Status().Running {
		t.Error("engine should be idle after StopLayout")
	}
	if s.Tick(ctx) {
		t.Error("Tick() on an idle engine should report false")
	}
}

func TestSessionDirty(t *testing.T) {
	s := New(testConfig(), nil)
	defer s.Close()
	_, _ = s.Apply(context.Background(), events())

	if got := s.Dirty().Len(); got != 3 {
		t.Errorf("first Dirty() = %d objects, want 3", got)
	}
	if got := s.Dirty().Len(); got != 0 {
		t.Errorf("second Dirty() = %d objects, want 0", got)
	}
	if got := s.Snapshot().Len(); got != 3 {
		t.Errorf("Snapshot() = %d objects, want 3", got)
	}
	if s.Status().Dirty != 0 {
		t.Error("Snapshot should not mark objects dirty")
	}
}

func TestSessionDOT(t *testing.T) {
	s := New(testConfig(), nil)
	defer s.Close()
	_, _ = s.Apply(context.Background(), events())
	if out := s.DOT(); !strings.HasPrefix(out, "digraph G {") || !strings.Contains(out, "shape=circle") {
		t.Errorf("DOT() = %s", out)
	}
}

func TestSessionRun(t *testing.T) {
	ctx := context.Background()
	s := New(testConfig(), nil)
	_, _ = s.Apply(ctx, events())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	if err := s.StartLayout(ctx); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return !s.Status().Running })
	if got := s.Status().Ticks; got < 290 {
		t.Errorf("Ticks = %d, want convergence driven by Run", got)
	}

	s.Close()
	s.Close()
	if err := <-done; err != nil {
		t.Errorf("Run() = %v, want nil after Close", err)
	}
}

func TestSessionRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(testConfig(), nil)
	defer s.Close()
	_, _ = s.Apply(ctx, events())
	_ = s.StartLayout(ctx)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	if err := <-done; !stderrors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
	if s.Status().Running {
		t.Error("cancelling Run should stop the engine")
	}
}

func TestStore(t *testing.T) {
	st := NewStore(testConfig(), nil)
	defer st.Close()

	a, err := st.Create()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := st.Create()
	if st.Len() != 2 || len(st.List()) != 2 {
		t.Fatalf("Len() = %d, want 2", st.Len())
	}

	got, err := st.Get(a.ID())
	if err != nil || got != a {
		t.Fatalf("Get() = %v, %v, want session a", got, err)
	}

	tests := []struct {
		name string
		id   string
		code errors.Code
	}{
		{"empty", "", errors.ErrCodeInvalidInput},
		{"bad chars", "../etc", errors.ErrCodeInvalidInput},
		{"unknown", uuid.NewString(), errors.ErrCodeSessionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := st.Get(tt.id); !errors.Is(err, tt.code) {
				t.Errorf("Get(%q) error = %v, want %s", tt.id, err, tt.code)
			}
		})
	}

	if err := st.Delete(b.ID()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := st.Delete(b.ID()); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("second Delete() error = %v, want SESSION_NOT_FOUND", err)
	}
	if st.Len() != 1 {
		t.Errorf("Len() = %d after delete, want 1", st.Len())
	}
}

func TestStoreRunsSessions(t *testing.T) {
	ctx := context.Background()
	st := NewStore(testConfig(), nil)
	defer st.Close()

	s, _ := st.Create()
	_, _ = s.Apply(ctx, events())
	_ = s.StartLayout(ctx)
	waitFor(t, func() bool { return s.Status().Ticks > 0 })
}

func TestStoreClose(t *testing.T) {
	st := NewStore(testConfig(), nil)
	_, _ = st.Create()
	st.Close()
	if st.Len() != 0 {
		t.Errorf("Len() = %d after Close, want 0", st.Len())
	}
	if _, err := st.Create(); err == nil {
		t.Error("Create() after Close should fail")
	}
}
