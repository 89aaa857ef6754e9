package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scgraph/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      runFlags
		formatsStr string
		noLabels   bool
	)

	cmd := &cobra.Command{
		Use:   "render [events.jsonl]",
		Short: "Lay out a scene and export it as SVG, DOT or JSON",
		Long: `Lay out a scene and export it.

Formats (-f, comma-separated):
  svg   Graphviz rendering with every node pinned at its computed position
  dot   the Graphviz source of the same drawing
  json  the scene snapshot: nodes, connectors, contours and buses

With one format, -o names the output file ("-" writes to stdout). With several,
-o is a base path and each format gets its own extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, c)
			if err != nil {
				return err
			}
			opts.Formats = parseFormats(formatsStr, c.Config.Render.Format)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if noLabels {
				opts.Config.Render.Labels = false
			}
			return c.runRender(cmd.Context(), args[0], flags, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg, dot, json (default from config)")
	cmd.Flags().BoolVar(&noLabels, "no-labels", false, "omit object text")
	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, flags runFlags, opts pipeline.Options) error {
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
	spinner := newSpinner(ctx, "Rendering...")
	spinner.Start()

	res, err := runner.Execute(ctx, data, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done("render complete", "formats", strings.Join(opts.Formats, ","))

	if len(opts.Formats) == 1 && flags.output == "-" {
		_, err := stdout.Write(res.Artifacts[opts.Formats[0]])
		return err
	}

	printSuccess("Render complete")
	for _, f := range opts.Formats {
		path := renderOutputPath(flags.output, input, f, len(opts.Formats) > 1)
		if err := os.WriteFile(path, res.Artifacts[f], 0644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(res.Stats.Objects, res.Ticks, res.CacheInfo.LayoutHit)
	return nil
}

// basePath derives the output base from output and input. A known format
// extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "scene"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// renderOutputPath returns the file for one format. A single format with an
// explicit output uses it unchanged.
func renderOutputPath(output, input, format string, multiple bool) string {
	if output != "" && !multiple {
		return output
	}
	return basePath(output, input) + "." + format
}
