// Package company provides the company command.
package company

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/leimap/cmd/application"
	"github.com/agentstation/leimap/internal/cmd/output"
)

// NewCommand creates the company command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "company LEI",
		GroupID: "core",
		Short:   "Show registry details of an entity",
		Example: `  leimap company LUZQVYP4VS22CLWDAR65 -o yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			company, err := client.Company(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			noColor, _ := cmd.Flags().GetBool("no-color")
			return output.Print(cmd.OutOrStdout(), app.OutputFormat(), noColor, company)
		},
	}
}
