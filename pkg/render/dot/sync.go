package dot

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scgraph/pkg/scene"
)

// Syncer redraws a scene when objects report a stale visual. It is the
// consumer side of the NeedsSync flag and, like the scene, is single-actor.
type Syncer struct {
	opts   Options
	logger *log.Logger
	dot    string
	frames int
}

// NewSyncer creates a syncer. A nil logger discards output.
func NewSyncer(opts Options, logger *log.Logger) *Syncer {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Syncer{opts: opts, logger: logger}
}

// Sync brings geometry up to date, clears the sync flag of every dirty
// object and returns how many there were. The DOT source is regenerated only
// when something changed.
func (y *Syncer) Sync(s *scene.Scene) int {
	s.Update()
	dirty := s.Dirty()
	for _, o := range dirty {
		o.MarkSynced()
	}
	if len(dirty) > 0 || y.frames == 0 {
		y.dot = ToDOT(s, y.opts)
		y.frames++
		y.logger.Debug("redraw", "dirty", len(dirty), "frame", y.frames)
	}
	return len(dirty)
}

// DOT returns the source generated by the last redraw.
func (y *Syncer) DOT() string { return y.dot }

// Frames returns the number of redraws so far.
func (y *Syncer) Frames() int { return y.frames }
