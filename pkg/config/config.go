// Package config loads scgraph settings from TOML or YAML files.
//
// Every field has a default (see [Default]); a file only needs the keys it
// changes:
//
//	[layout]
//	max_ticks = 500
//	frame_interval = "16ms"
//
//	[geometry]
//	crossing = "nearest"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
// [Load] picks the decoder from the file extension and validates the result
// with struct tags.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/scgraph/pkg/errors"
	"github.com/matzehuels/scgraph/pkg/layout"
	"github.com/matzehuels/scgraph/pkg/scene"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Render formats.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// Config is the complete configuration.
type Config struct {
	Layout   LayoutConfig   `toml:"layout" yaml:"layout"`
	Geometry GeometryConfig `toml:"geometry" yaml:"geometry"`
	Render   RenderConfig   `toml:"render" yaml:"render"`
	Cache    CacheConfig    `toml:"cache" yaml:"cache"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
}

// LayoutConfig tunes the force simulation.
type LayoutConfig struct {
	NodeCharge      float64 `toml:"node_charge" yaml:"node_charge" validate:"lte=0"`
	ContentCharge   float64 `toml:"content_charge" yaml:"content_charge" validate:"lte=0"`
	DotCharge       float64 `toml:"dot_charge" yaml:"dot_charge" validate:"lte=0"`
	Friction        float64 `toml:"friction" yaml:"friction" validate:"lte=0"`
	LinkDistance    float64 `toml:"link_distance" yaml:"link_distance" validate:"gt=0"`
	DotLinkDistance float64 `toml:"dot_link_distance" yaml:"dot_link_distance" validate:"gt=0"`
	LinkStrength    float64 `toml:"link_strength" yaml:"link_strength" validate:"gt=0,lte=1"`
	DotLinkStrength float64 `toml:"dot_link_strength" yaml:"dot_link_strength" validate:"gt=0,lte=1"`
	AlphaMin        float64 `toml:"alpha_min" yaml:"alpha_min" validate:"gt=0,lt=1"`
	AlphaDecay      float64 `toml:"alpha_decay" yaml:"alpha_decay" validate:"gt=0,lt=1"`
	VelocityDecay   float64 `toml:"velocity_decay" yaml:"velocity_decay" validate:"gte=0,lt=1"`

	// MaxTicks bounds headless runs. Zero runs until convergence.
	MaxTicks int `toml:"max_ticks" yaml:"max_ticks" validate:"gte=0"`
	// FrameInterval is the tick period of interactive hosts.
	FrameInterval time.Duration `toml:"frame_interval" yaml:"frame_interval" validate:"gt=0"`
}

// Params converts the configuration into engine parameters.
func (c LayoutConfig) Params() layout.Params {
	return layout.Params{
		NodeCharge:      c.NodeCharge,
		ContentCharge:   c.ContentCharge,
		DotCharge:       c.DotCharge,
		Friction:        c.Friction,
		LinkDistance:    c.LinkDistance,
		DotLinkDistance: c.DotLinkDistance,
		LinkStrength:    c.LinkStrength,
		DotLinkStrength: c.DotLinkStrength,
		AlphaMin:        c.AlphaMin,
		AlphaDecay:      c.AlphaDecay,
		VelocityDecay:   c.VelocityDecay,
	}
}

// GeometryConfig sets the drawing area and contour attachment rule.
type GeometryConfig struct {
	Width    float64 `toml:"width" yaml:"width" validate:"gt=0"`
	Height   float64 `toml:"height" yaml:"height" validate:"gt=0"`
	Crossing string  `toml:"crossing" yaml:"crossing" validate:"oneof=farthest nearest"`
}

// Size returns the drawing area as a size provider.
func (c GeometryConfig) Size() scene.FixedSize { return scene.FixedSize{W: c.Width, H: c.Height} }

// CrossingRule returns the configured contour crossing rule.
func (c GeometryConfig) CrossingRule() scene.CrossingRule {
	if c.Crossing == "nearest" {
		return scene.CrossingNearest
	}
	return scene.CrossingFarthest
}

// SceneOptions returns the scene options implied by the configuration.
func (c GeometryConfig) SceneOptions() []scene.Option {
	return []scene.Option{
		scene.WithSizeProvider(c.Size()),
		scene.WithCrossingRule(c.CrossingRule()),
	}
}

// RenderConfig controls output.
type RenderConfig struct {
	Format string `toml:"format" yaml:"format" validate:"oneof=svg dot json"`
	// Labels prints object text inside nodes.
	Labels bool `toml:"labels" yaml:"labels"`
}

// CacheConfig selects where finished layouts are cached.
type CacheConfig struct {
	Backend   string        `toml:"backend" yaml:"backend" validate:"oneof=none file redis"`
	Dir       string        `toml:"dir" yaml:"dir"`
	RedisAddr string        `toml:"redis_addr" yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisDB   int           `toml:"redis_db" yaml:"redis_db" validate:"gte=0"`
	TTL       time.Duration `toml:"ttl" yaml:"ttl" validate:"gte=0"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `toml:"addr" yaml:"addr" validate:"required"`
	MaxEvents       int           `toml:"max_events" yaml:"max_events" validate:"gt=0"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	p := layout.DefaultParams()
	return Config{
		Layout: LayoutConfig{
			NodeCharge:      p.NodeCharge,
			ContentCharge:   p.ContentCharge,
			DotCharge:       p.DotCharge,
			Friction:        p.Friction,
			LinkDistance:    p.LinkDistance,
			DotLinkDistance: p.DotLinkDistance,
			LinkStrength:    p.LinkStrength,
			DotLinkStrength: p.DotLinkStrength,
			AlphaMin:        p.AlphaMin,
			AlphaDecay:      p.AlphaDecay,
			VelocityDecay:   p.VelocityDecay,
			FrameInterval:   16 * time.Millisecond,
		},
		Geometry: GeometryConfig{
			Width:    scene.DefaultSize.W,
			Height:   scene.DefaultSize.H,
			Crossing: "farthest",
		},
		Render: RenderConfig{Format: FormatSVG, Labels: true},
		Cache:  CacheConfig{Backend: CacheNone, TTL: 24 * time.Hour},
		Server: ServerConfig{
			Addr:            ":8080",
			MaxEvents:       10000,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid configuration")
	}
	e := verrs[0]
	field := strings.TrimPrefix(e.Namespace(), "Config.")
	switch e.Tag() {
	case "required", "required_if":
		return errors.New(errors.ErrCodeInvalidConfig, "%s: field is required", field)
	case "oneof":
		return errors.New(errors.ErrCodeInvalidConfig, "%s: must be one of %s", field, e.Param())
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "%s: must satisfy %s=%s", field, e.Tag(), e.Param())
	}
}

// Load reads the file at path over [Default] and validates the result. The
// format is chosen by extension: .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := Decode(data, filepath.Ext(path), &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode parses data in the format named by ext into cfg. Keys absent from
// data keep their current values.
func Decode(data []byte, ext string, cfg *Config) error {
	var err error
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "toml":
		_, err = toml.Decode(string(data), cfg)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q", ext)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s config", ext)
	}
	return nil
}
