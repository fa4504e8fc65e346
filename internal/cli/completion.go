package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindlayout/pkg/store"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mindlayout.

Scene arguments complete from the configured store.

Bash:
  $ source <(mindlayout completion bash)

Zsh:
  $ mindlayout completion zsh > "${fpath[1]}/_mindlayout"

Fish:
  $ mindlayout completion fish > ~/.config/fish/completions/mindlayout.fish

PowerShell:
  PS> mindlayout completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// registerSceneCompletion completes the <scene> argument of every command
// whose usage starts with it.
func (c *CLI) registerSceneCompletion(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		fields := strings.Fields(cmd.Use)
		if len(fields) > 1 && fields[1] == "<scene>" && cmd.ValidArgsFunction == nil {
			cmd.ValidArgsFunction = c.completeScenes
		}
	}
}

// completeScenes suggests stored scene names for the first argument.
func (c *CLI) completeScenes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if err := c.loadSettings(cmd); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(ctx, c.settings.Store)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer st.Close()

	names, err := st.List(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, toComplete) {
			out = append(out, n)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
