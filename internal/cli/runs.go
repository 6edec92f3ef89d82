package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/unshred/pkg/config"
	"github.com/matzehuels/unshred/pkg/errors"
	"github.com/matzehuels/unshred/pkg/store"
)

// runsCommand creates the runs command for reviewing recorded runs.
func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List and show recorded reconstruction runs",
	}

	cmd.AddCommand(c.runsListCommand())
	cmd.AddCommand(c.runsShowCommand())
	cmd.AddCommand(c.runsDeleteCommand())

	return cmd
}

// openStore opens the configured store, failing when recording is disabled.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	st, err := newStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "run recording is disabled (store.backend = none)")
	}
	return st, nil
}

func (c *CLI) withStore(cmd *cobra.Command, fn func(context.Context, store.Store) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(ctx, st)
}

func (c *CLI) runsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(ctx context.Context, st store.Store) error {
				runs, err := st.List(ctx, limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					printInfo("No runs recorded")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), runsTable(runs).Render())
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultListLimit, "maximum runs to list (0 = all)")
	return cmd
}

func (c *CLI) runsShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(ctx context.Context, st store.Store) error {
				rec, err := st.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(rec)
				}
				printRecord(rec)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full record as JSON")
	return cmd
}

func (c *CLI) runsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(ctx context.Context, st store.Store) error {
				if err := st.Delete(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Deleted run %s", args[0])
				return nil
			})
		},
	}
}

// runsTable renders run summaries.
func runsTable(runs []store.Summary) *table.Table {
	rows := make([][]string, len(runs))
	for i, r := range runs {
		complete := "✓"
		if !r.Complete {
			complete = "partial"
		}
		rows[i] = []string{
			r.ID,
			r.CreatedAt.Local().Format(time.DateTime),
			r.Source,
			strconv.Itoa(r.Stripes),
			string(r.Policy),
			formatCost(r.Cost),
			complete,
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Created", "Source", "Stripes", "Policy", "Cost", "Order").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return listHeaderStyle
			case col == 0 || col == 1:
				return StyleDim
			case col == 6 && !runs[row].Complete:
				return StyleWarning
			}
			return StyleValue
		})
}

func printRecord(rec *store.Record) {
	printKeyValue("ID", rec.ID)
	printKeyValue("Created", rec.CreatedAt.Local().Format(time.DateTime))
	printKeyValue("Source", rec.Source)
	printKeyValue("Image", fmt.Sprintf("%dx%d · %s", rec.Width, rec.Height, shortHash(rec.ImageHash)))
	printKeyValue("Stripes", fmt.Sprintf("%d × %dpx", rec.Stripes, rec.StripeWidth))
	printKeyValue("Policy", string(rec.Solution.Policy))
	printKeyValue("Metric", rec.Metric)
	printKeyValue("Alpha", strconv.FormatBool(rec.IncludeAlpha))
	printKeyValue("Cost", formatCost(rec.Solution.Cost))
	printKeyValue("Start", strconv.Itoa(rec.Solution.Start))
	printKeyValue("Order", formatWalk(rec.Solution.Order, 1<<30))
	printKeyValue("Elapsed", (time.Duration(rec.ElapsedMS) * time.Millisecond).String())
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
