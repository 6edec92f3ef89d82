package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/unshred/pkg/errors"
	"github.com/matzehuels/unshred/pkg/pipeline"
	"github.com/matzehuels/unshred/pkg/render/dot"
)

// Graph output formats.
const (
	graphFormatDOT = "dot"
	graphFormatSVG = "svg"
	graphFormatPNG = "png"
)

// graphOptions collects the graph command's output flags.
type graphOptions struct {
	format     string
	output     string
	topK       int
	hideScores bool
	noSolution bool
}

// graphCommand creates the graph command for visualizing stripe adjacency.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		flags solveFlags
		gopts graphOptions
	)

	cmd := &cobra.Command{
		Use:   "graph [image]",
		Short: "Render the stripe adjacency graph",
		Long: `Render the stripe adjacency graph as DOT, SVG or PNG.

Each stripe is a node. An edge j -> i means stripe j fits immediately left of
stripe i; it is labeled with the edge dissimilarity score. Only the --top-k
best candidates per stripe are drawn. The winning chain is highlighted.

DOT output goes to stdout unless --output is set; SVG and PNG default to
<name>.graph.<format> next to the input.`,
		Example: `  unshred graph scan.png | dot -Tsvg > graph.svg
  unshred graph scan.png -f svg --top-k 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gopts.format = strings.ToLower(gopts.format)
			switch gopts.format {
			case graphFormatDOT, graphFormatSVG, graphFormatPNG:
			default:
				return errors.New(errors.ErrCodeInvalidFormat, "invalid graph format: %q (must be one of: dot, svg, png)", gopts.format)
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.options(cmd, cfg)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runGraph(cmd, args[0], opts, gopts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&gopts.format, "format", "f", graphFormatDOT, "output format: dot (default), svg, png")
	cmd.Flags().StringVarP(&gopts.output, "output", "o", "", "output file")
	cmd.Flags().IntVarP(&gopts.topK, "top-k", "k", 1, "best neighbors drawn per stripe")
	cmd.Flags().BoolVar(&gopts.hideScores, "hide-scores", false, "omit edge labels")
	cmd.Flags().BoolVar(&gopts.noSolution, "no-solution", false, "do not highlight the winning chain")
	_ = cmd.RegisterFlagCompletionFunc("format", completeValues(graphFormatDOT, graphFormatSVG, graphFormatPNG))

	return cmd
}

// runGraph scores the image and renders its adjacency graph.
func (c *CLI) runGraph(cmd *cobra.Command, input string, opts pipeline.Options, gopts graphOptions) error {
	ctx := cmd.Context()
	in, err := pipeline.ReadInput(input)
	if err != nil {
		return err
	}

	opts.Logger = c.Logger
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	prog := newProgress(c.Logger)

	_, coll, err := runner.Load(ctx, in, opts)
	if err != nil {
		return err
	}
	g := runner.BuildGraph(ctx, coll, opts)

	dopts := dot.Options{TopK: gopts.topK, HideScores: gopts.hideScores}
	if !gopts.noSolution {
		_, sol := runner.Solve(ctx, g, opts)
		dopts.Solution = &sol
	}
	src := dot.ToDOT(g, dopts)

	data, err := renderGraph(ctx, src, gopts.format)
	if err != nil {
		return fmt.Errorf("render graph: %w", err)
	}
	prog.done("Rendered graph", "stripes", g.Len(), "format", gopts.format)

	path := gopts.output
	if path == "" && gopts.format == graphFormatDOT {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if path == "" {
		path = graphOutputPath(input, gopts.format)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printSuccess("Rendered adjacency graph")
	printFile(path)
	return nil
}

func renderGraph(ctx context.Context, src, format string) ([]byte, error) {
	switch format {
	case graphFormatSVG:
		return dot.RenderSVG(ctx, src)
	case graphFormatPNG:
		return dot.RenderPNG(ctx, src)
	}
	return []byte(src), nil
}

// graphOutputPath returns <name>.graph.<format> in the input's directory.
func graphOutputPath(input, format string) string {
	dir, base := filepath.Split(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, name+".graph."+format)
}
