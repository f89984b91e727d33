// Package constants holds CLI-only constants.
package constants

// Shells supported by the completion commands.
const (
	ShellBash       = "bash"
	ShellZsh        = "zsh"
	ShellFish       = "fish"
	ShellPowerShell = "powershell"
)

// InstallableShells are the shells whose completions can be installed to disk.
var InstallableShells = []string{ShellBash, ShellZsh, ShellFish}
