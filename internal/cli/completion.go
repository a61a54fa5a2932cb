package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/datamaps/pkg/export"
	"github.com/matzehuels/datamaps/pkg/geo"
	"github.com/matzehuels/datamaps/pkg/topology"
)

var (
	exportFormats = []string{export.FormatSVG, export.FormatPNG, export.FormatJPEG, export.FormatPDF}
	exporterNames = []string{"chrome", "rsvg"}
	projections   = []string{geo.Equirectangular, geo.Mercator, geo.Orthographic}
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for datamaps.

Besides commands and flags, the scripts complete embedded scope names
(render --scope, scopes), output formats, exporters and projections.

  $ source <(datamaps completion bash)
  $ datamaps completion zsh > "${fpath[1]}/_datamaps"
  $ datamaps completion fish | source
  PS> datamaps completion powershell | Out-String | Invoke-Expression
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

// completeScopes completes the names of the embedded topologies.
func completeScopes(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return withPrefix(topology.Scopes(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeScopeArg completes the single scope argument of the scopes command.
func completeScopeArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeScopes(cmd, args, toComplete)
}

// completeFormats completes the comma-separated --format list, offering only
// formats not already given.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	done, last := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		done, last = toComplete[:i+1], toComplete[i+1:]
	}
	given := make(map[string]bool)
	for _, f := range strings.Split(done, ",") {
		given[strings.TrimSpace(f)] = true
	}
	var out []string
	for _, f := range withPrefix(exportFormats, last) {
		if !given[f] {
			out = append(out, done+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func completeFixed(values []string) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return withPrefix(values, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

func withPrefix(values []string, prefix string) []string {
	var out []string
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			out = append(out, v)
		}
	}
	return out
}
