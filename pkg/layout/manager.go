package layout

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scgraph/pkg/errors"
	"github.com/matzehuels/scgraph/pkg/observability"
	"github.com/matzehuels/scgraph/pkg/scene"
)

// Option configures a [Manager].
type Option func(*Manager)

// WithLogger sets the logger. Nil keeps the discard logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithParams replaces [DefaultParams].
func WithParams(p Params) Option {
	return func(m *Manager) { m.params = p }
}

// WithTickCallback runs fn after every tick, typically to request a redraw.
func WithTickCallback(fn func()) Option {
	return func(m *Manager) { m.onTick = fn }
}

// Manager owns the simulation graph and engine for one scene.
type Manager struct {
	scene  *scene.Scene
	logger *log.Logger
	params Params
	onTick func()

	graph   *Graph
	engine  *Engine
	started time.Time
}

// NewManager creates a manager for s. The engine centres on s's container.
func NewManager(s *scene.Scene, opts ...Option) *Manager {
	m := &Manager{
		scene:  s,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		params: DefaultParams(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.engine = NewEngine(m.params, s, m.onTick)
	return m
}

// Engine returns the underlying engine.
func (m *Manager) Engine() *Engine { return m.engine }

// Graph returns the graph from the last PrepareObjects, or nil.
func (m *Manager) Graph() *Graph { return m.graph }

// PrepareObjects brings the scene's geometry up to date and rebuilds the
// simulation graph.
func (m *Manager) PrepareObjects() error {
	m.scene.Update()
	g, err := Build(m.scene)
	if err != nil {
		return err
	}
	m.graph = g
	root := g.Root()
	m.logger.Debug("layout graph built",
		"groups", len(g.Groups), "vertices", len(root.Vertices), "links", len(root.Links))
	return nil
}

// DoLayout stops any running simulation, rebuilds the graph and starts
// simulating the top-level group.
func (m *Manager) DoLayout(ctx context.Context) error {
	m.Stop(ctx)
	if err := m.PrepareObjects(); err != nil {
		observability.Layout().OnLayoutComplete(ctx, 0, 0, err)
		return err
	}
	root := m.graph.Root()
	m.engine.Start(root)
	m.started = time.Now()
	observability.Layout().OnLayoutStart(ctx, len(root.Vertices), len(root.Links))
	m.logger.Info("layout started", "vertices", len(root.Vertices), "links", len(root.Links))
	return nil
}

// Step advances the engine by one tick and reports whether it is still
// running.
func (m *Manager) Step(ctx context.Context) bool {
	if !m.engine.Running() {
		return false
	}
	running := m.engine.Tick()
	observability.Layout().OnLayoutTick(ctx, m.engine.Alpha())
	if !running {
		m.complete(ctx, nil)
	}
	return running
}

// Stop halts a running simulation. It is a no-op when idle.
func (m *Manager) Stop(ctx context.Context) {
	if !m.engine.Running() {
		return
	}
	m.engine.Stop()
	m.complete(ctx, nil)
}

// Run lays the scene out headlessly: it starts a new simulation and ticks
// until convergence or maxTicks (0 means no limit). The context is checked
// between ticks. It returns the number of ticks run.
func (m *Manager) Run(ctx context.Context, maxTicks int) (int, error) {
	if err := m.DoLayout(ctx); err != nil {
		return 0, err
	}
	for m.engine.Running() {
		if err := ctx.Err(); err != nil {
			ticks := m.engine.Ticks()
			m.engine.Stop()
			m.complete(ctx, err)
			return ticks, errors.Wrap(errors.ErrCodeInternal, err, "layout cancelled")
		}
		if maxTicks > 0 && m.engine.Ticks() >= maxTicks {
			ticks := m.engine.Ticks()
			m.Stop(ctx)
			return ticks, nil
		}
		m.Step(ctx)
	}
	return m.engine.Ticks(), nil
}

func (m *Manager) complete(ctx context.Context, err error) {
	d := time.Since(m.started)
	observability.Layout().OnLayoutComplete(ctx, m.engine.Ticks(), d, err)
	if err != nil {
		m.logger.Warn("layout stopped", "ticks", m.engine.Ticks(), "err", err)
		return
	}
	m.logger.Debug("layout finished", "ticks", m.engine.Ticks(), "alpha", m.engine.Alpha(), "duration", d)
}
