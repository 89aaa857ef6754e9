// Package cache stores finished layouts so that repeated runs over the same
// input skip the simulation.
//
// # Backends
//
//   - [NullCache]: stores nothing (caching disabled)
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for servers
//
// [Open] selects a backend by name and wraps it with [Instrument] so cache
// traffic reaches the observability hooks.
//
// # Keys
//
// A [Keyer] derives keys from a hash of the input and the options that
// influence the result. Changing any layout parameter yields a new key:
//
//	key := keyer.LayoutKey(cache.Hash(input), cache.LayoutKeyOpts{Params: p, Width: 800, Height: 600})
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/scgraph/pkg/layout"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// =============================================================================
// Keys
// =============================================================================

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey keys the positions computed from an input.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
	// RenderKey keys a rendered artifact of a layout.
	RenderKey(layoutHash string, opts RenderKeyOpts) string
}

// LayoutKeyOpts are the settings that change a layout result.
type LayoutKeyOpts struct {
	Params   layout.Params `json:"params"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Crossing string        `json:"crossing,omitempty"`
	MaxTicks int           `json:"max_ticks,omitempty"`
}

// RenderKeyOpts are the settings that change a rendered artifact.
type RenderKeyOpts struct {
	Format string `json:"format"`
	Labels bool   `json:"labels,omitempty"`
}

// DefaultKeyer hashes inputs and options into namespaced keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

func (DefaultKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return hashKey("render", layoutHash, opts)
}
