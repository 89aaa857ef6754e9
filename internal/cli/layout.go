package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scgraph/pkg/graph"
	"github.com/matzehuels/scgraph/pkg/pipeline"
)

// runFlags are the flags shared by commands that run the pipeline.
type runFlags struct {
	output   string
	noCache  bool
	refresh  bool
	maxTicks int
	width    float64
	height   float64
	crossing string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().IntVar(&f.maxTicks, "max-ticks", 0, "stop the simulation after this many ticks (0: until it cools)")
	cmd.Flags().Float64Var(&f.width, "width", 0, "drawing area width (default from config)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "drawing area height (default from config)")
	cmd.Flags().StringVar(&f.crossing, "crossing", "", "contour crossing rule: farthest, nearest")
}

// options merges explicitly set flags over the loaded configuration.
func (f *runFlags) options(cmd *cobra.Command, c *CLI) (pipeline.Options, error) {
	cfg := c.Config
	if cmd.Flags().Changed("max-ticks") {
		cfg.Layout.MaxTicks = f.maxTicks
	}
	if cmd.Flags().Changed("width") {
		cfg.Geometry.Width = f.width
	}
	if cmd.Flags().Changed("height") {
		cfg.Geometry.Height = f.height
	}
	if cmd.Flags().Changed("crossing") {
		cfg.Geometry.Crossing = f.crossing
	}
	if err := cfg.Validate(); err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{Config: cfg, Refresh: f.refresh}, nil
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "layout [events.jsonl]",
		Short: "Compute node positions for a scene",
		Long: `Compute node positions for a scene.

The input is a file of producer events, one JSON object per line ("-" reads
stdin). The events are applied to a new scene and the force simulation runs
until it cools or --max-ticks is reached. Positions are written as JSON keyed
by object address.

Results are cached, so repeated runs over the same input are instant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, c)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], flags, opts)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, flags runFlags, opts pipeline.Options) error {
	data, err := readInput(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, "Computing layout...")
	spinner.Start()

	res, err := runner.Execute(ctx, data, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	prog.done("layout complete", "ticks", res.Ticks, "cached", res.CacheInfo.LayoutHit)

	outputPath := layoutOutputPath(flags.output, input)
	if err := graph.WritePositionsFile(res.Positions, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(res.Stats.Objects, res.Ticks, res.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Render", appName+" render "+input)
	return nil
}

// layoutOutputPath returns output, or <input>.positions.json.
func layoutOutputPath(output, input string) string {
	if output != "" {
		return output
	}
	if input == "-" {
		return "positions.json"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".positions.json"
}
