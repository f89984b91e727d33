// Package hierarchy provides the hierarchy command.
package hierarchy

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/leimap/cmd/application"
	"github.com/agentstation/leimap/internal/cmd/output"
	"github.com/agentstation/leimap/pkg/entities"
	"github.com/agentstation/leimap/pkg/errors"
	"github.com/agentstation/leimap/pkg/hierarchy"
)

// NewCommand creates the hierarchy command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		name  string
		match int
	)

	cmd := &cobra.Command{
		Use:     "hierarchy [LEI]",
		Aliases: []string{"tree"},
		GroupID: "core",
		Short:   "Show the full ownership hierarchy of an entity",
		Long: `Hierarchy climbs from the entity to its ultimate parent, then lists every
entity owned by that parent, directly or indirectly.

Give an LEI, or a company name with --name and optionally the rank of the
match to use with --match.`,
		Example: `  leimap hierarchy LUZQVYP4VS22CLWDAR65
  leimap hierarchy --name "3M Company" --match 2
  leimap hierarchy LUZQVYP4VS22CLWDAR65 -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.TrimSpace(name)
			switch {
			case len(args) == 1 && name != "":
				return errors.NewValidationError("name", name, "give either an LEI or --name, not both")
			case len(args) == 0 && name == "":
				return errors.NewValidationError("lei", nil, "an LEI or --name is required")
			}

			client, err := app.Client()
			if err != nil {
				return err
			}

			var tree *hierarchy.Tree
			if name != "" {
				var selected entities.Match
				tree, selected, err = client.HierarchyForName(cmd.Context(), name, match)
				if err == nil {
					app.Logger().Info().
						Str("entity", selected.Entity).
						Str("lei", selected.LEI).
						Float64("score", selected.Score).
						Msg("Selected match")
				}
			} else {
				tree, err = client.Hierarchy(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			noColor, _ := cmd.Flags().GetBool("no-color")
			return output.Print(cmd.OutOrStdout(), app.OutputFormat(), noColor, tree)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "company name to search instead of an LEI")
	cmd.Flags().IntVarP(&match, "match", "m", 1, "rank of the name match to use (1-10)")
	return cmd
}
