// Package completion provides shell completion management commands.
package completion

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/leimap/internal/cmd/completion"
	"github.com/agentstation/leimap/internal/cmd/constants"
)

// NewCommand creates the completion command. It replaces cobra's generated
// one so that install and uninstall sit next to the script generators.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Manage shell completions",
		Long: `Generate completion scripts to stdout, or install them for your shell.

Examples:
  source <(leimap completion bash)
  leimap completion install --zsh
  leimap completion uninstall`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	for _, shell := range []string{constants.ShellBash, constants.ShellZsh, constants.ShellFish, constants.ShellPowerShell} {
		cmd.AddCommand(&cobra.Command{
			Use:                   shell,
			Short:                 fmt.Sprintf("Generate %s completion script", shell),
			DisableFlagsInUseLine: true,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return completion.Generate(cmd.Root(), shell, cmd.OutOrStdout())
			},
		})
	}

	cmd.AddCommand(newInstallCommand(), newUninstallCommand())
	return cmd
}

func newInstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install shell completions",
		Long:  "Install completions for bash, zsh and fish, or only the shells named by flags.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, shell := range selectedShells(cmd) {
				if err := completion.Install(cmd.Root(), shell, cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			cmd.Println("Start a new shell session to enable completions.")
			return nil
		},
	}
	addShellFlags(cmd)
	return cmd
}

func newUninstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove shell completions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, shell := range selectedShells(cmd) {
				if err := completion.Uninstall(shell, cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addShellFlags(cmd)
	return cmd
}

func addShellFlags(cmd *cobra.Command) {
	for _, shell := range constants.InstallableShells {
		cmd.Flags().Bool(shell, false, fmt.Sprintf("Only %s", shell))
	}
}

// selectedShells returns the shells chosen by flag, or all of them.
func selectedShells(cmd *cobra.Command) []string {
	var shells []string
	for _, shell := range constants.InstallableShells {
		if on, _ := cmd.Flags().GetBool(shell); on {
			shells = append(shells, shell)
		}
	}
	if len(shells) == 0 {
		return constants.InstallableShells
	}
	return shells
}
