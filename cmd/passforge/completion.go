package main

import (
	"github.com/spf13/cobra"

	"github.com/forest6511/passforge/internal/report"
	"github.com/forest6511/passforge/pkg/policy"
)

func init() {
	rootCmd.AddCommand(completionCmd)
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate completion script for your shell",
	Long: `To load completions:

Bash:
  $ source <(passforge completion bash)

  # To load for each session (Linux):
  $ passforge completion bash > ~/.local/share/bash-completion/completions/passforge

Zsh:
  $ passforge completion zsh > ~/.zsh/completions/_passforge
  # (create ~/.zsh/completions if needed, add to fpath in .zshrc)

Fish:
  $ passforge completion fish > ~/.config/fish/completions/passforge.fish

PowerShell:
  PS> passforge completion powershell >> $PROFILE
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	// The config file is irrelevant here; skip loading it.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
		}
		return nil
	},
}

// modeNames returns the mode names offered for --mode.
func modeNames() []string {
	modes := policy.Modes()
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.String()
	}
	return names
}

func completeModes(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return modeNames(), cobra.ShellCompDirectiveNoFileComp
}

func completeFormats(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return report.Formats(), cobra.ShellCompDirectiveNoFileComp
}

func registerGenerateCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("mode", completeModes)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
}

func registerScoreCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("mode", completeModes)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
}
