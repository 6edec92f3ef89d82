package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/unshred/pkg/config"
	"github.com/matzehuels/unshred/pkg/pipeline"
)

// solveFlags are the reconstruction flags shared by solve, graph, inspect
// and serve. Flags the user did not set fall back to the config file.
type solveFlags struct {
	width   int
	policy  string
	metric  string
	alpha   bool
	workers int
}

func (f *solveFlags) register(cmd *cobra.Command) {
	def := config.Default()
	fl := cmd.Flags()
	fl.IntVarP(&f.width, "width", "w", def.StripeWidth, "stripe width in pixels")
	fl.StringVar(&f.policy, "policy", def.Policy, "revisit policy: faithful (default), corrected")
	fl.StringVar(&f.metric, "metric", def.Metric, "edge metric: rgb (default), lab")
	fl.BoolVar(&f.alpha, "alpha", def.IncludeAlpha, "include the alpha channel in edge scores")
	fl.IntVar(&f.workers, "workers", def.Workers, "parallel workers (0 = all CPUs)")
	registerSolveCompletions(cmd)
}

// options merges the config file with the flags set on cmd.
func (f *solveFlags) options(cmd *cobra.Command, cfg config.Config) pipeline.Options {
	opts := pipeline.Options{
		StripeWidth:  cfg.StripeWidth,
		Policy:       cfg.Policy,
		Metric:       cfg.Metric,
		IncludeAlpha: cfg.IncludeAlpha,
		Workers:      cfg.Workers,
		Format:       cfg.Format,
	}

	fl := cmd.Flags()
	if fl.Changed("width") {
		opts.StripeWidth = f.width
	}
	if fl.Changed("policy") {
		opts.Policy = f.policy
	}
	if fl.Changed("metric") {
		opts.Metric = f.metric
	}
	if fl.Changed("alpha") {
		opts.IncludeAlpha = f.alpha
	}
	if fl.Changed("workers") {
		opts.Workers = f.workers
	}
	return opts
}
