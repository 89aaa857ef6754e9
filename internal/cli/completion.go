package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command. Scripts go to the
// command's output stream.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for scgraph.

To load completions:

Bash:
  $ source <(scgraph completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ scgraph completion bash > /etc/bash_completion.d/scgraph
  # macOS:
  $ scgraph completion bash > $(brew --prefix)/etc/bash_completion.d/scgraph

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ scgraph completion zsh > "${fpath[1]}/_scgraph"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ scgraph completion fish | source

  # To load completions for each session, execute once:
  $ scgraph completion fish > ~/.config/fish/completions/scgraph.fish

PowerShell:
  PS> scgraph completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> scgraph completion powershell > scgraph.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
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

	return cmd
}
