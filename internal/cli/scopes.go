package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/datamaps/pkg/geo"
	"github.com/matzehuels/datamaps/pkg/topology"
)

// scopesCommand creates the scopes command.
func (c *CLI) scopesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scopes [scope]",
		Short: "List the embedded topologies and their region ids",
		Long: `Without arguments, list the embedded scopes with their region counts.
With a scope, list the region ids and names of that scope; these ids are the
keys of the data section of a map configuration.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeScopeArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := topology.NewSource(nil)
			if len(args) == 0 {
				for _, scope := range topology.Scopes() {
					features, err := src.Load(cmd.Context(), scope, "")
					if err != nil {
						return err
					}
					printKeyValue(scope, fmt.Sprintf("%d regions", len(features)))
				}
				printNewline()
				printNextStep("List the region ids of a scope", appName+" scopes usa")
				return nil
			}

			features, err := src.Load(cmd.Context(), args[0], "")
			if err != nil {
				return err
			}
			printTitle(args[0])
			for _, f := range sortedRegions(features) {
				printKeyValue(f.ID, f.Name)
			}
			return nil
		},
	}
}

func sortedRegions(features []*geo.Feature) []*geo.Feature {
	out := append([]*geo.Feature(nil), features...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
