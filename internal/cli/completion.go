package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/unshred/pkg/core/score"
	"github.com/matzehuels/unshred/pkg/core/sequence"
	"github.com/matzehuels/unshred/pkg/imageio"
)

var completionShells = map[string]func(cmd *cobra.Command, w io.Writer) error{
	"bash":       func(cmd *cobra.Command, w io.Writer) error { return cmd.Root().GenBashCompletionV2(w, true) },
	"zsh":        func(cmd *cobra.Command, w io.Writer) error { return cmd.Root().GenZshCompletion(w) },
	"fish":       func(cmd *cobra.Command, w io.Writer) error { return cmd.Root().GenFishCompletion(w, true) },
	"powershell": func(cmd *cobra.Command, w io.Writer) error { return cmd.Root().GenPowerShellCompletionWithDesc(w) },
}

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for the given shell.

  source <(unshred completion bash)
  unshred completion zsh > "${fpath[1]}/_unshred"
  unshred completion fish > ~/.config/fish/completions/unshred.fish
  unshred completion powershell | Out-String | Invoke-Expression

Flag values such as --policy, --metric and --format complete as well.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionShells[args[0]](cmd, cmd.OutOrStdout())
		},
	}
}

// completeValues returns a completion function offering a fixed list.
func completeValues[T ~string](values ...T) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

var imageFormats = []string{imageio.FormatPNG, imageio.FormatJPEG, imageio.FormatGIF, imageio.FormatTIFF, imageio.FormatBMP}

// registerSolveCompletions wires value completion for the shared solve flags.
func registerSolveCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("policy", completeValues(sequence.Policies...))
	_ = cmd.RegisterFlagCompletionFunc("metric", completeValues(score.Metrics...))
}
