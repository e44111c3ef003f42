package cli

import (
	"github.com/spf13/cobra"
)

// Extensions offered when completing image paths. Readers also sniff
// content, so these only narrow what the shell suggests.
var (
	inputImageExtensions  = []string{"png", "gif", "bmp", "tif", "tiff", "jpg", "jpeg", "webp"}
	outputImageExtensions = []string{"png", "gif", "bmp", "tif", "tiff"}
	graphOutputExtensions = []string{"json", "dot", "svg"}
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for the given shell to stdout.

Besides command and flag names, the script completes --input with image
files skeletonize can decode, run --output with the formats it can write,
and graph --output with .json, .dot and .svg.

  bash:        source <(skeletonize completion bash)
  zsh:         skeletonize completion zsh > "${fpath[1]}/_skeletonize"
  fish:        skeletonize completion fish > ~/.config/fish/completions/skeletonize.fish
  powershell:  skeletonize completion powershell | Out-String | Invoke-Expression`,
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

	return cmd
}

// completeFiles registers extension-filtered file completion for a flag.
func completeFiles(cmd *cobra.Command, flag string, exts []string) {
	_ = cmd.RegisterFlagCompletionFunc(flag, func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return exts, cobra.ShellCompDirectiveFilterFileExt
	})
}
