package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scgraph/pkg/metrics"
	"github.com/matzehuels/scgraph/pkg/server"
	"github.com/matzehuels/scgraph/pkg/session"
)

// serveCommand creates the serve command, which hosts live sessions over
// HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve live editing sessions over HTTP",
		Long: `Serve live editing sessions over HTTP.

Each session owns a scene and a layout engine ticking at the configured frame
interval. Clients post producer events, start and stop the layout, and poll
dirty objects or rendered output. Prometheus metrics are served on /metrics
unless --no-metrics is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			store := session.NewStore(cfg, c.Logger)
			defer store.Close()

			opts := []server.Option{server.WithLogger(c.Logger)}
			if !noMetrics {
				reg := metrics.NewRegistry()
				reg.Install()
				opts = append(opts, server.WithMetrics(reg.Handler()))
			}

			printInfo("Serving sessions on %s", StyleValue.Render(cfg.Server.Addr))
			printDetail("frame interval %s, at most %d events per request", cfg.Layout.FrameInterval, cfg.Server.MaxEvents)
			if err := server.New(store, cfg.Server, opts...).ListenAndServe(cmd.Context()); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			printSuccess("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not serve /metrics")
	return cmd
}
