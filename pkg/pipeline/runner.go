package pipeline

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scgraph/pkg/cache"
	"github.com/matzehuels/scgraph/pkg/config"
	"github.com/matzehuels/scgraph/pkg/errors"
	"github.com/matzehuels/scgraph/pkg/graph"
	"github.com/matzehuels/scgraph/pkg/ingest"
	"github.com/matzehuels/scgraph/pkg/layout"
	"github.com/matzehuels/scgraph/pkg/render/dot"
	"github.com/matzehuels/scgraph/pkg/scene"
)

// Runner executes pipeline stages against a cache. It keeps no per-run
// state, so one runner can serve several runs in turn.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses [cache.DefaultKeyer] and a nil logger discards output.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Close releases the cache.
func (r *Runner) Close() error { return r.Cache.Close() }

// Execute runs load, layout and render over input.
func (r *Runner) Execute(ctx context.Context, input []byte, opts Options) (*Result, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	res := &Result{InputHash: cache.Hash(input)}

	start := time.Now()
	s, applied, err := r.Load(ctx, input, opts.Config)
	if err != nil {
		return nil, err
	}
	res.Scene, res.Ingest = s, applied
	res.Stats.Objects = s.Len()
	res.Stats.LoadTime = time.Since(start)
	r.Logger.Info("loaded events", "objects", s.Len(), "passes", applied.Passes, "duration", res.Stats.LoadTime)

	start = time.Now()
	res.Positions, res.Ticks, res.CacheInfo.LayoutHit, err = r.Layout(ctx, s, res.InputHash, opts)
	if err != nil {
		return nil, err
	}
	res.Stats.LayoutTime = time.Since(start)
	r.Logger.Info("computed layout", "ticks", res.Ticks, "cached", res.CacheInfo.LayoutHit, "duration", res.Stats.LayoutTime)

	start = time.Now()
	res.Artifacts, res.CacheInfo.RenderHit, err = r.Render(ctx, s, res.InputHash, res.Positions, opts)
	if err != nil {
		return nil, err
	}
	res.Stats.RenderTime = time.Since(start)
	if len(opts.Formats) > 0 {
		r.Logger.Info("rendered outputs", "formats", opts.Formats, "duration", res.Stats.RenderTime)
	}
	return res, nil
}

// Load decodes JSON-lines events and applies them to a new scene built from
// cfg's geometry settings.
func (r *Runner) Load(ctx context.Context, input []byte, cfg config.Config) (*scene.Scene, ingest.Result, error) {
	events, err := ingest.Read(bytes.NewReader(input))
	if err != nil {
		return nil, ingest.Result{}, err
	}
	s := scene.New(append(cfg.Geometry.SceneOptions(), scene.WithLogger(r.Logger))...)
	res, err := ingest.NewApplier(r.Logger).Apply(ctx, s, events)
	if err != nil {
		return nil, res, err
	}
	return s, res, nil
}

// Layout positions s, from the cache when possible. It returns the
// positions, the ticks simulated (zero on a hit) and whether the cache hit.
func (r *Runner) Layout(ctx context.Context, s *scene.Scene, inputHash string, opts Options) (graph.Positions, int, bool, error) {
	cfg := opts.Config
	key := r.Keyer.LayoutKey(inputHash, cache.LayoutKeyOpts{
		Params:   cfg.Layout.Params(),
		Width:    cfg.Geometry.Width,
		Height:   cfg.Geometry.Height,
		Crossing: cfg.Geometry.Crossing,
		MaxTicks: cfg.Layout.MaxTicks,
	})

	if !opts.Refresh {
		if pos, ok := r.cachedPositions(ctx, key); ok {
			pos.Apply(s)
			s.Update()
			return pos, 0, true, nil
		}
	}

	m := layout.NewManager(s, layout.WithLogger(r.Logger), layout.WithParams(cfg.Layout.Params()))
	ticks, err := m.Run(ctx, cfg.Layout.MaxTicks)
	if err != nil {
		return nil, ticks, false, err
	}
	s.Update()
	pos := graph.PositionsOf(s)

	if data, err := graph.MarshalPositions(pos); err == nil {
		if err := r.Cache.Set(ctx, key, data, cfg.Cache.TTL); err != nil {
			r.Logger.Warn("cache write failed", "stage", "layout", "err", err)
		}
	}
	return pos, ticks, false, nil
}

func (r *Runner) cachedPositions(ctx context.Context, key string) (graph.Positions, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "stage", "layout", "err", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	pos, err := graph.UnmarshalPositions(data)
	if err != nil {
		r.Logger.Debug("discarding corrupt cache entry", "key", key, "err", err)
		return nil, false
	}
	return pos, true
}

// Render produces the requested artifacts. Keys combine the input hash with
// the positions, since the same positions can belong to different scenes. It
// reports a cache hit only when every artifact came from the cache.
func (r *Runner) Render(ctx context.Context, s *scene.Scene, inputHash string, pos graph.Positions, opts Options) (map[string][]byte, bool, error) {
	out := make(map[string][]byte, len(opts.Formats))
	if len(opts.Formats) == 0 {
		return out, false, nil
	}

	posData, err := graph.MarshalPositions(pos)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "encode positions")
	}
	layoutHash := cache.Hash(append([]byte(inputHash), posData...))
	labels := opts.Config.Render.Labels

	allHit := true
	for _, f := range opts.Formats {
		key := r.Keyer.RenderKey(layoutHash, cache.RenderKeyOpts{Format: f, Labels: labels})
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				out[f] = data
				continue
			}
		}
		allHit = false

		data, err := renderFormat(ctx, s, f, dot.Options{Labels: labels})
		if err != nil {
			return nil, false, err
		}
		out[f] = data
		if err := r.Cache.Set(ctx, key, data, opts.Config.Cache.TTL); err != nil {
			r.Logger.Warn("cache write failed", "stage", "render", "format", f, "err", err)
		}
	}
	return out, allHit, nil
}

func renderFormat(ctx context.Context, s *scene.Scene, format string, opts dot.Options) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(dot.ToDOT(s, opts)), nil
	case FormatSVG:
		return dot.RenderSVG(ctx, dot.ToDOT(s, opts))
	case FormatJSON:
		return graph.MarshalScene(graph.FromScene(s))
	}
	return nil, ValidateFormat(format)
}
