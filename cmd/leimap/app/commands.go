package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/leimap/cmd/leimap/cmd/company"
	"github.com/agentstation/leimap/cmd/leimap/cmd/completion"
	"github.com/agentstation/leimap/cmd/leimap/cmd/hierarchy"
	"github.com/agentstation/leimap/cmd/leimap/cmd/search"
	"github.com/agentstation/leimap/cmd/leimap/cmd/serve"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(search.NewCommand(a))
	rootCmd.AddCommand(hierarchy.NewCommand(a))
	rootCmd.AddCommand(company.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))
	rootCmd.AddCommand(completion.NewCommand())
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("leimap %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
