// Package session hosts live scenes.
//
// A [Session] owns one scene, its layout manager and an event applier. The
// scene and engine are single-actor, so the session serialises every
// mutation and every tick behind one mutex. [Session.Run] is the host loop:
// it ticks the engine on a fixed frame interval until the context ends or
// the session is closed.
//
// A [Store] keeps sessions by id and runs each session's loop in its own
// goroutine:
//
//	store := session.NewStore(cfg, logger)
//	defer store.Close()
//	sess := store.Create()
//	_, err := sess.Apply(ctx, events)
//	err = sess.StartLayout(ctx)
package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/scgraph/pkg/config"
	"github.com/matzehuels/scgraph/pkg/graph"
	"github.com/matzehuels/scgraph/pkg/ingest"
	"github.com/matzehuels/scgraph/pkg/layout"
	"github.com/matzehuels/scgraph/pkg/render/dot"
	"github.com/matzehuels/scgraph/pkg/scene"
)

// Session is one live scene with its layout engine.
type Session struct {
	id        string
	createdAt time.Time
	interval  time.Duration
	render    dot.Options
	logger    *log.Logger

	mu      sync.Mutex
	scene   *scene.Scene
	manager *layout.Manager
	applier *ingest.Applier
	version uint64

	done      chan struct{}
	closeOnce sync.Once
}

// Status describes a session at a point in time.
type Status struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Objects   int       `json:"objects"`
	Dirty     int       `json:"dirty"`
	Running   bool      `json:"running"`
	Ticks     int       `json:"ticks"`
	Alpha     float64   `json:"alpha"`
	Version   uint64    `json:"version"`
}

// New creates a session with a random id. A nil logger discards output.
func New(cfg config.Config, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	id := uuid.NewString()
	logger = logger.With("session", id[:8])

	s := &Session{
		id:        id,
		createdAt: time.Now(),
		interval:  cfg.Layout.FrameInterval,
		render:    dot.Options{Labels: cfg.Render.Labels},
		logger:    logger,
		done:      make(chan struct{}),
	}
	if s.interval <= 0 {
		s.interval = config.Default().Layout.FrameInterval
	}
	s.scene = scene.New(append(cfg.Geometry.SceneOptions(), scene.WithLogger(logger))...)
	s.manager = layout.NewManager(s.scene,
		layout.WithLogger(logger),
		layout.WithParams(cfg.Layout.Params()),
		layout.WithTickCallback(func() { s.version++ }),
	)
	s.applier = ingest.NewApplier(logger)
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Status returns a snapshot of the session state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.manager.Engine()
	return Status{
		ID:        s.id,
		CreatedAt: s.createdAt,
		Objects:   s.scene.Len(),
		Dirty:     len(s.scene.Dirty()),
		Running:   e.Running(),
		Ticks:     e.Ticks(),
		Alpha:     e.Alpha(),
		Version:   s.version,
	}
}

// Apply applies producer events to the scene.
func (s *Session) Apply(ctx context.Context, events []ingest.Event) (ingest.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.applier.Apply(ctx, s.scene, events)
	if res.Applied() > 0 {
		s.version++
	}
	return res, err
}

// StartLayout rebuilds the simulation graph and starts the engine. A running
// simulation is restarted.
func (s *Session) StartLayout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.DoLayout(ctx)
}

// StopLayout halts the engine. It is a no-op when idle.
func (s *Session) StopLayout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manager.Stop(ctx)
}

// Tick advances a running simulation by one step and reports whether it is
// still running.
func (s *Session) Tick(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.Step(ctx)
}

// Run ticks the engine every frame interval until ctx ends or the session is
// closed. Idle frames cost one lock acquisition.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.StopLayout(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-s.done:
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Close stops the engine and ends [Session.Run]. It is safe to call more than
// once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.StopLayout(context.Background())
		close(s.done)
	})
}

// Dirty returns the objects whose visuals are stale and clears their flags.
// Geometry is brought up to date first.
func (s *Session) Dirty() graph.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scene.Update()
	dirty := s.scene.Dirty()
	out := graph.FromObjects(dirty)
	for _, o := range dirty {
		o.MarkSynced()
	}
	return out
}

// Snapshot returns every object without touching dirty flags.
func (s *Session) Snapshot() graph.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.FromScene(s.scene)
}

// Positions returns the positions of addressed nodes and contours.
func (s *Session) Positions() graph.Positions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.PositionsOf(s.scene)
}

// DOT returns pinned DOT source for the current scene.
func (s *Session) DOT() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scene.Update()
	return dot.ToDOT(s.scene, s.render)
}

// SVG renders the current scene. Rendering happens outside the lock so ticks
// continue meanwhile.
func (s *Session) SVG(ctx context.Context) ([]byte, error) {
	return dot.RenderSVG(ctx, s.DOT())
}
