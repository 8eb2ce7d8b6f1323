package cmd

import (
	"github.com/abdul-hamid-achik/dromus/packages/core/parser"
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Print a completion script for dromus to stdout.

The script completes subcommands, flags and the values of --format, so
"dromus run --format <TAB>" offers ndjson and gotest.

Enable it for the current session:
  bash:        source <(dromus completion bash)
  zsh:         source <(dromus completion zsh)
  fish:        dromus completion fish | source
  powershell:  dromus completion powershell | Out-String | Invoke-Expression

Install it permanently by writing the script where your shell loads
completions, for example:
  dromus completion zsh > "${fpath[1]}/_dromus"
  dromus completion fish > ~/.config/fish/completions/dromus.fish

Then pipe results in as usual:
  go test -json ./... | dromus run --format gotest
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletionV2(out, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

// completeFormats offers the input formats run understands.
func completeFormats(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, 0, len(parser.Formats))
	for _, f := range parser.Formats {
		names = append(names, string(f))
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
