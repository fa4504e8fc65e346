package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindlayout/pkg/pipeline"
	"github.com/matzehuels/mindlayout/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single format) or base path (several)
	formats  []string // output formats: svg, png, pdf, dot
	graphviz bool     // draw through DOT and neato instead of the SVG writer
	scale    float64  // PNG scale factor
	layout   bool     // lay the scene out before rendering
}

// renderCommand renders a stored scene to one or more files.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render <scene>",
		Short: "Render a scene to SVG, PNG, PDF or DOT",
		Long: `Render a scene to SVG, PNG, PDF or DOT.

Nodes are drawn where the layout engine placed them. PNG and PDF output
is converted from SVG with rsvg-convert, which must be installed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.graphviz, "graphviz", false, "draw through Graphviz (neato) instead of the built-in SVG writer")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.layout, "layout", false, "lay out the scene before rendering")

	return cmd
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.DefaultFormat}
	}
	return strings.Split(s, ",")
}

// basePath derives the base output path. A known format extension on output
// is stripped; with no output the scene name is used.
func basePath(output, name string) string {
	if output == "" {
		return name
	}
	ext := filepath.Ext(output)
	if slices.Contains(render.Formats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func (c *CLI) runRender(ctx context.Context, name string, opts renderOpts) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	if opts.layout {
		if _, err := runner.Layout(ctx, pipeline.Options{Scene: name}); err != nil {
			return err
		}
	}

	base := basePath(opts.output, name)
	var written []string
	spin := startSpinner(ctx, os.Stderr, "Rendering "+name+"...")
	defer spin.Stop()
	for _, format := range opts.formats {
		spin.Update(fmt.Sprintf("Rendering %s as %s...", name, format))
		data, cached, err := runner.Render(ctx, name, pipeline.RenderOptions{
			Format:   format,
			Graphviz: opts.graphviz,
			Scale:    opts.scale,
		})
		if err != nil {
			spin.Fail("Render failed")
			return fmt.Errorf("render %s: %w", format, err)
		}

		path := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		c.Logger.Debug("rendered", "format", format, "bytes", len(data), "cached", cached)
		written = append(written, path)
	}
	spin.Stop()

	printSuccess("Rendered %s", StyleHighlight.Render(name))
	for _, p := range written {
		printFile(p)
	}
	return nil
}
