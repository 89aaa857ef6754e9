// Package cli implements the scgraph command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scgraph/pkg/buildinfo"
	"github.com/matzehuels/scgraph/pkg/cache"
	"github.com/matzehuels/scgraph/pkg/config"
	"github.com/matzehuels/scgraph/pkg/errors"
	"github.com/matzehuels/scgraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "scgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config     config.Config
	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: cliDefaults(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "scgraph lays out and renders interactive graph scenes",
		Long:         `scgraph applies producer events to a scene of nodes, connectors, contours and buses, runs a force-directed layout over it, and exports the result as SVG, DOT or JSON. It can also serve live editing sessions over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.toml, .yaml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// cliDefaults is [config.Default] with a file cache, since repeated CLI runs
// over the same input are the common case.
func cliDefaults() config.Config {
	cfg := config.Default()
	cfg.Cache.Backend = config.CacheFile
	return cfg
}

// loadConfig decodes the --config file, if one was given, over the CLI
// defaults.
func (c *CLI) loadConfig() error {
	if c.configPath == "" {
		return nil
	}
	data, err := os.ReadFile(c.configPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", c.configPath)
	}
	cfg := cliDefaults()
	if err := config.Decode(data, filepath.Ext(c.configPath), &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", c.configPath)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.Open(ctx, cache.Options{Backend: cache.BackendNone})
	}
	cfg := c.Config.Cache
	return cache.Open(ctx, cache.Options{
		Backend:   cfg.Backend,
		Dir:       c.cacheDir(),
		RedisAddr: cfg.RedisAddr,
		RedisDB:   cfg.RedisDB,
	})
}

// cacheDir returns the configured file cache directory.
func (c *CLI) cacheDir() string {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir
	}
	return cache.DefaultDir()
}

// =============================================================================
// Input Helpers
// =============================================================================

// readInput reads the events file at path. "-" reads standard input.
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// parseFormats parses a comma-separated format list. Empty yields def.
func parseFormats(s, def string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{def}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
