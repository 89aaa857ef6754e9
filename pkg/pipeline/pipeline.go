// Package pipeline runs the headless ingest → layout → render flow with
// caching. The CLI and tests share it so the caching logic lives in one
// place.
//
// # Stages
//
//  1. Load: producer events (JSON lines) are applied to a fresh scene.
//  2. Layout: the force simulation runs until it cools or MaxTicks. The
//     resulting positions are cached under a key derived from the input
//     bytes and every option that changes the outcome.
//  3. Render: the scene is exported as SVG, DOT or JSON. Artifacts are
//     cached under a key derived from the positions and render options.
//
// Local object ids differ between processes, so cached layouts are stored
// as positions keyed by external address and re-applied to the new scene.
package pipeline

import (
	"slices"
	"time"

	"github.com/matzehuels/scgraph/pkg/config"
	"github.com/matzehuels/scgraph/pkg/errors"
	"github.com/matzehuels/scgraph/pkg/graph"
	"github.com/matzehuels/scgraph/pkg/ingest"
	"github.com/matzehuels/scgraph/pkg/scene"
)

// Output formats.
const (
	FormatSVG  = config.FormatSVG
	FormatDOT  = config.FormatDOT
	FormatJSON = config.FormatJSON
)

var validFormats = []string{FormatSVG, FormatDOT, FormatJSON}

// ValidateFormat reports whether f is a known output format.
func ValidateFormat(f string) error {
	if !slices.Contains(validFormats, f) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want one of %v)", f, validFormats)
	}
	return nil
}

// ValidateFormats validates every entry of fs.
func ValidateFormats(fs []string) error {
	for _, f := range fs {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options configures one run.
type Options struct {
	Config config.Config
	// Formats lists the artifacts to render. Empty renders nothing.
	Formats []string
	// Refresh skips cache reads. Results are still written.
	Refresh bool
}

// Result holds everything a run produced.
type Result struct {
	Scene     *scene.Scene
	InputHash string
	Ingest    ingest.Result
	Positions graph.Positions
	Ticks     int
	Artifacts map[string][]byte

	CacheInfo CacheInfo
	Stats     Stats
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// Stats records stage timings.
type Stats struct {
	Objects    int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}
