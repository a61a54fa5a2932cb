package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/datamaps/pkg/buildinfo"
	"github.com/matzehuels/datamaps/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The --verbose flag is resolved before any subcommand runs: it sets the log
// level, attaches the logger to the command context and, at debug level,
// registers log hooks for draw, cache and fetch events.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "datamaps draws choropleth, bubble and arc maps as SVG",
		Long:         `datamaps draws world and US maps from TOML or JSON configuration files: choropleth fills, bubbles, arcs, labels and legends, exported as interactive SVG or as PNG, JPEG and PDF.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if verbose {
				level = LogDebug
				hooks := observability.NewLogHooks(c.Logger)
				observability.SetRenderHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetHTTPHooks(hooks)
			}
			c.SetLogLevel(level)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.scopesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
