package cli

import (
	"context"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/unshred/pkg/config"
	"github.com/matzehuels/unshred/pkg/core/sequence"
	"github.com/matzehuels/unshred/pkg/errors"
	"github.com/matzehuels/unshred/pkg/imageio"
	"github.com/matzehuels/unshred/pkg/pipeline"
)

// inspection is the set of candidates shown by inspect.
type inspection struct {
	title      string
	stripes    int
	candidates []sequence.Candidate
}

// inspectCommand creates the inspect command for browsing candidates.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags     solveFlags
		tracePath string
		runID     string
		plain     bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [image]",
		Short: "Browse the per-start candidates of a reconstruction",
		Long: `Browse the candidate chains of a reconstruction, sorted by cost.

Every stripe starts one greedy chain; the cheapest becomes the solution.
The candidates come from solving an image, from a trace written by
'solve --trace', or from a recorded run.

Rows in yellow revisited a stripe that was already placed.`,
		Example: `  unshred inspect scan.png -w 16
  unshred inspect --trace trace.json --plain
  unshred inspect --run 5f0c...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := len(args)
			if tracePath != "" {
				sources++
			}
			if runID != "" {
				sources++
			}
			if sources != 1 {
				return errors.New(errors.ErrCodeInvalidInput, "provide exactly one of: an image, --trace or --run")
			}

			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			var ins *inspection
			switch {
			case tracePath != "":
				ins, err = inspectTrace(tracePath)
			case runID != "":
				ins, err = inspectRun(ctx, cfg, runID)
			default:
				opts := flags.options(cmd, cfg)
				if err := opts.ValidateAndSetDefaults(); err != nil {
					return err
				}
				ins, err = c.inspectImage(ctx, args[0], cfg, opts, noCache)
			}
			if err != nil {
				return err
			}

			if plain {
				fmt.Fprintln(cmd.OutOrStdout(), candidateTable(ins.candidates, ins.stripes, 0, len(ins.candidates), -1).Render())
				return nil
			}
			return browseCandidates(ins)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&tracePath, "trace", "", "read candidates from a trace file")
	cmd.Flags().StringVar(&runID, "run", "", "read candidates from a recorded run")
	cmd.Flags().BoolVar(&plain, "plain", false, "print a table instead of the interactive browser")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) inspectImage(ctx context.Context, input string, cfg config.Config, opts pipeline.Options, noCache bool) (*inspection, error) {
	in, err := pipeline.ReadInput(input)
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Solving %s...", in.Name))
	spinner.Start()
	res, err := runner.Execute(ctx, in, opts)
	spinner.Stop()
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}
	return &inspection{
		title:      fmt.Sprintf("%s · %s policy", in.Name, res.Solution.Policy),
		stripes:    res.Stats.Stripes,
		candidates: res.Candidates,
	}, nil
}

func inspectTrace(path string) (*inspection, error) {
	t, err := imageio.ImportTrace(path)
	if err != nil {
		return nil, err
	}
	return &inspection{
		title:      fmt.Sprintf("%s · %s policy", t.Source, t.Policy),
		stripes:    len(t.Candidates),
		candidates: t.Candidates,
	}, nil
}

func inspectRun(ctx context.Context, cfg config.Config, id string) (*inspection, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	rec, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &inspection{
		title:      fmt.Sprintf("%s · %s policy", rec.Source, rec.Solution.Policy),
		stripes:    rec.Stripes,
		candidates: rec.Candidates,
	}, nil
}

// browseCandidates runs the interactive browser and prints the chosen row.
func browseCandidates(ins *inspection) error {
	if len(ins.candidates) == 0 {
		printInfo("No candidates to inspect")
		return nil
	}

	model := NewCandidateListModel(ins.title, ins.candidates, ins.stripes)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("candidate browser: %w", err)
	}

	m, ok := final.(CandidateListModel)
	if !ok || m.Selected == nil {
		return nil
	}
	printCandidate(*m.Selected, ins.stripes)
	return nil
}

func printCandidate(c sequence.Candidate, stripes int) {
	printKeyValue("Start", strconv.Itoa(c.Start))
	printKeyValue("Cost", formatCost(c.Cost))
	printKeyValue("Placed", fmt.Sprintf("%d of %d", c.Distinct(), stripes))
	if r := c.Revisits(); r > 0 {
		printKeyValue("Revisits", strconv.Itoa(r))
	}
	printKeyValue("Sequence", formatWalk(c.Walk, 1<<30))
}
