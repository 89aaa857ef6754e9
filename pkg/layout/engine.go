package layout

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/scgraph/pkg/geom"
	"github.com/matzehuels/scgraph/pkg/scene"
)

// State is the engine lifecycle state.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Engine simulates one group. Each [Engine.Tick] applies the forces,
// integrates velocities and writes the new positions back into the scene.
type Engine struct {
	params Params
	size   scene.SizeProvider
	onTick func()

	state    State
	alpha    float64
	ticks    int
	vertices []*Vertex
	links    []*Link
	charges  []float64
	degree   map[*Vertex]int
	rng      *rand.Rand
}

// NewEngine creates an idle engine. size supplies the centring target and
// onTick, when non-nil, runs after every tick's write-back.
func NewEngine(p Params, size scene.SizeProvider, onTick func()) *Engine {
	if size == nil {
		size = scene.DefaultSize
	}
	return &Engine{params: p, size: size, onTick: onTick}
}

// State returns the lifecycle state.
func (e *Engine) State() State { return e.state }

// Running reports whether the engine is running.
func (e *Engine) Running() bool { return e.state == Running }

// Alpha returns the current simulation temperature.
func (e *Engine) Alpha() float64 { return e.alpha }

// Ticks returns the number of ticks since the last Start.
func (e *Engine) Ticks() int { return e.ticks }

// Start stops any previous run and begins simulating grp. Links whose ends
// are not both in grp are ignored.
func (e *Engine) Start(grp *Group) {
	e.Stop()
	if grp == nil {
		grp = &Group{}
	}

	in := make(map[*Vertex]bool, len(grp.Vertices))
	for _, v := range grp.Vertices {
		in[v] = true
	}
	e.vertices = grp.Vertices
	e.links = nil
	e.degree = make(map[*Vertex]int)
	for _, l := range grp.Links {
		if in[l.Source] && in[l.Target] {
			e.links = append(e.links, l)
			e.degree[l.Source]++
			e.degree[l.Target]++
		}
	}
	e.charges = make([]float64, len(e.vertices))
	for i, v := range e.vertices {
		e.charges[i] = e.params.charge(v) + e.params.Friction
	}
	e.placeNonFinite()

	e.rng = rand.New(rand.NewPCG(1, 2))
	e.alpha = 1
	e.ticks = 0
	e.state = Running
}

// Stop halts the simulation and releases its state. Stopping an idle engine
// does nothing.
func (e *Engine) Stop() {
	if e.state == Idle {
		return
	}
	e.state = Idle
	e.vertices = nil
	e.links = nil
	e.charges = nil
	e.degree = nil
}

// Tick advances the simulation by one step. It reports whether the engine is
// still running afterwards: false when it was idle, or when this step cooled
// the simulation below the minimum alpha and stopped it.
func (e *Engine) Tick() bool {
	if e.state != Running {
		return false
	}
	p := e.params
	e.alpha += (0 - e.alpha) * p.AlphaDecay

	w, h := e.size.ContainerSize()
	centre(e.vertices, w/2, h/2)
	manyBody(e.vertices, e.charges, e.alpha, e.rng)
	springs(e.links, p, e.degree, e.alpha, e.rng)

	keep := 1 - p.VelocityDecay
	for _, v := range e.vertices {
		v.VX *= keep
		v.VY *= keep
		v.X += v.VX
		v.Y += v.VY
	}

	e.writeBack()
	e.ticks++
	if e.onTick != nil {
		e.onTick()
	}

	if e.alpha < p.AlphaMin {
		e.Stop()
		return false
	}
	return true
}

// writeBack moves the wrapped objects to their simulated positions, then
// snaps every dot onto the end of its attached connector.
func (e *Engine) writeBack() {
	for _, v := range e.vertices {
		if v.IsDot() {
			continue
		}
		v.Object.SetPosition(geom.V(v.X, v.Y))
	}
	for _, v := range e.vertices {
		if !v.IsDot() {
			continue
		}
		p := v.endPoint()
		v.X, v.Y = p.X, p.Y
		v.VX, v.VY = 0, 0
	}
}

// placeNonFinite arranges vertices without a usable position on a
// phyllotaxis spiral around the container centre.
func (e *Engine) placeNonFinite() {
	const radius = 10.0
	angle := math.Pi * (3 - math.Sqrt(5))
	w, h := e.size.ContainerSize()
	for i, v := range e.vertices {
		if geom.V(v.X, v.Y).IsFinite() {
			continue
		}
		r := radius * math.Sqrt(0.5+float64(i))
		a := float64(i) * angle
		v.X = w/2 + r*math.Cos(a)
		v.Y = h/2 + r*math.Sin(a)
		v.VX, v.VY = 0, 0
	}
}
