package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/scgraph/pkg/errors"
	"github.com/matzehuels/scgraph/pkg/observability"
)

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Dir       string
	RedisAddr string
	RedisDB   int
}

// Open creates the backend named by opts.Backend and instruments it. An
// empty backend is treated as "none"; an empty Dir uses [DefaultDir].
func Open(ctx context.Context, opts Options) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch opts.Backend {
	case "", BackendNone:
		c = NewNullCache()
	case BackendFile:
		dir := opts.Dir
		if dir == "" {
			dir = DefaultDir()
		}
		c, err = NewFileCache(dir)
	case BackendRedis:
		c, err = NewRedisCache(ctx, opts.RedisAddr, opts.RedisDB)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", opts.Backend)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open %s cache", opts.Backend)
	}
	return Instrument(c, backendName(opts.Backend)), nil
}

func backendName(b string) string {
	if b == "" {
		return BackendNone
	}
	return b
}

// Instrument reports hits, misses and writes of c to the registered
// [observability.CacheHooks]. Hooks are looked up per call so a registry
// change takes effect immediately.
func Instrument(c Cache, backend string) Cache {
	if ic, ok := c.(*instrumented); ok {
		c = ic.Cache
	}
	return &instrumented{Cache: c, backend: backend}
}

type instrumented struct {
	Cache
	backend string
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	switch {
	case err != nil:
	case ok:
		observability.Cache().OnCacheHit(ctx, c.backend)
	default:
		observability.Cache().OnCacheMiss(ctx, c.backend)
	}
	return data, ok, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, c.backend, len(data))
	return nil
}

func (c *instrumented) String() string {
	return fmt.Sprintf("%s cache", c.backend)
}

// Unwrap returns the instrumented backend, for callers that need
// backend-specific operations such as [FileCache.Clear].
func Unwrap(c Cache) Cache {
	if ic, ok := c.(*instrumented); ok {
		return ic.Cache
	}
	return c
}
