package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/unshred/pkg/config"
	"github.com/matzehuels/unshred/pkg/core/sequence"
	"github.com/matzehuels/unshred/pkg/imageio"
	"github.com/matzehuels/unshred/pkg/pipeline"
)

// solveOutput collects the output-side flags of the solve command.
type solveOutput struct {
	path     string
	trace    string
	noCache  bool
	refresh  bool
	noRecord bool
	open     bool
}

// solveCommand creates the solve command for reconstructing an image.
func (c *CLI) solveCommand() *cobra.Command {
	var (
		flags  solveFlags
		out    solveOutput
		format string
	)

	cmd := &cobra.Command{
		Use:   "solve [image]",
		Short: "Reconstruct a shredded image",
		Long: `Reconstruct an image that was cut into vertical stripes and shuffled.

The image is cut into stripes of --width pixels. Every stripe is tried as the
start of a greedy chain that repeatedly picks the neighbor whose edge pixels
match best; the cheapest chain wins and is composed into the output image.

With the default faithful policy a chain may revisit a stripe it already
placed, which leaves other stripes out of the result. Use --policy corrected
to always produce a permutation.

Solutions are cached by image content and options, and every run is
recorded so it can be reviewed with 'unshred runs'.`,
		Example: `  unshred solve scan.png
  unshred solve scan.png -w 16 --policy corrected -o fixed.jpg
  unshred solve scan.png --trace trace.json -v`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.options(cmd, cfg)
			opts.Refresh = out.refresh
			switch {
			case cmd.Flags().Changed("format"):
				opts.Format = format
			case out.path != "":
				if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(out.path), ".")); imageio.ValidateFormat(ext) == nil {
					opts.Format = ext
				}
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runSolve(cmd.Context(), args[0], cfg, opts, out)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", config.Default().Format, "output format: png (default), jpeg, gif, tiff, bmp")
	cmd.Flags().StringVarP(&out.path, "output", "o", "", "output file (default: unshredded-<name>.<format> next to the input)")
	cmd.Flags().StringVar(&out.trace, "trace", "", "write the per-start candidate trace as JSON")
	cmd.Flags().BoolVar(&out.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&out.refresh, "refresh", false, "recompute even if a cached solution exists")
	cmd.Flags().BoolVar(&out.noRecord, "no-record", false, "do not record the run")
	cmd.Flags().BoolVar(&out.open, "open", false, "open the result in the default viewer")
	_ = cmd.RegisterFlagCompletionFunc("format", completeValues(imageFormats...))

	return cmd
}

// runSolve executes the pipeline and writes the artifacts.
func (c *CLI) runSolve(ctx context.Context, input string, cfg config.Config, opts pipeline.Options, out solveOutput) error {
	in, err := pipeline.ReadInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, out.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Reconstructing %s...", in.Name))
	spinner.Start()
	restore := followStages(spinner)

	start := time.Now()
	res, err := runner.Execute(ctx, in, opts)
	restore()
	if err != nil {
		spinner.StopWithError("Reconstruction failed")
		return fmt.Errorf("solve: %w", err)
	}
	spinner.Stop()
	elapsed := time.Since(start)

	path := out.path
	if path == "" {
		path = imageio.OutputPath(input, opts.Format)
	}
	if err := os.WriteFile(path, res.Artifact, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printSuccess("Reconstructed %s", in.Name)
	printStats(res.Stats.Stripes, res.Solution.Cost, elapsed, res.CacheInfo.SolveHit)
	printFile(path)

	if out.trace != "" {
		trace := &imageio.Trace{
			Source:      in.Name,
			StripeWidth: opts.StripeWidth,
			Policy:      res.Solution.Policy,
			Metric:      opts.Metric,
			Candidates:  res.Candidates,
			Solution:    res.Solution,
		}
		if err := imageio.ExportTrace(trace, out.trace); err != nil {
			return err
		}
		printFile(out.trace)
	}

	if !res.Solution.IsPermutation() {
		win := sequence.Candidate{Walk: res.Solution.Walk}
		printWarning("Chain revisited placed stripes: %d of %d stripes placed", win.Distinct(), res.Stats.Stripes)
		printNextStep("Place every stripe once", fmt.Sprintf("unshred solve %s --policy corrected", input))
	}

	if !out.noRecord {
		c.recordRun(ctx, cfg, res, opts, elapsed)
	}

	if out.open {
		if err := openFile(path); err != nil {
			printWarning("Could not open %s: %v", path, err)
		}
	}
	return nil
}

// recordRun saves the run to the configured store. Failures are reported
// but do not fail the command.
func (c *CLI) recordRun(ctx context.Context, cfg config.Config, res *pipeline.Result, opts pipeline.Options, elapsed time.Duration) {
	st, err := newStore(ctx, cfg.Store)
	if err != nil {
		c.Logger.Warn("run store unavailable", "err", err)
		return
	}
	if st == nil {
		return
	}
	defer st.Close()

	rec := res.Record(elapsed)
	if err := st.Save(ctx, rec); err != nil {
		c.Logger.Warn("could not record run", "err", err)
		return
	}
	c.Logger.Debug("recorded run", "id", rec.ID)
}
