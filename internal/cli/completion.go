package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for the paygraph CLI, covering the
serve, view, export, and cache subcommands and their flags.

Bash:
  # Current session only:
  $ source <(paygraph completion bash)

  # Install permanently (Linux):
  $ paygraph completion bash > /etc/bash_completion.d/paygraph
  # or with Homebrew on macOS:
  $ paygraph completion bash > $(brew --prefix)/etc/bash_completion.d/paygraph

Zsh:
  # Enable completion once if your setup doesn't already:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  $ paygraph completion zsh > "${fpath[1]}/_paygraph"
  # Takes effect in new shells.

Fish:
  $ paygraph completion fish | source
  # Install permanently:
  $ paygraph completion fish > ~/.config/fish/completions/paygraph.fish

PowerShell:
  PS> paygraph completion powershell | Out-String | Invoke-Expression
  # To persist, write the script to a file and dot-source it from
  # your PowerShell profile.
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
