// Package search provides the search command.
package search

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/leimap/cmd/application"
	"github.com/agentstation/leimap/internal/cmd/output"
	"github.com/agentstation/leimap/pkg/constants"
)

// NewCommand creates the search command.
func NewCommand(app application.Application) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:     "search NAME [NAME...]",
		GroupID: "core",
		Short:   "Find the LEIs matching company names",
		Long: `Search ranks registry name suggestions against each NAME and resolves
every ranked name to an LEI. Names that cannot be resolved are shown
with LEI_NOT_FOUND.

Several names are searched together and shown side by side.`,
		Example: `  leimap search "3M Company"
  leimap search "3M Company" "Apple Inc" --top 3 -o table`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			noColor, _ := cmd.Flags().GetBool("no-color")

			if len(args) == 1 {
				matches, err := client.Search(cmd.Context(), args[0], top)
				if err != nil {
					return err
				}
				return output.Print(cmd.OutOrStdout(), app.OutputFormat(), noColor, matches)
			}

			results, err := client.BulkSearch(cmd.Context(), args, top)
			if err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), app.OutputFormat(), noColor, results)
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", constants.DefaultTopN, "number of matches per name")
	return cmd
}
