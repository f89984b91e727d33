// Package completion generates and installs shell completion scripts.
package completion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentstation/leimap/internal/cmd/constants"
	"github.com/agentstation/leimap/internal/cmd/emoji"
	pkgconstants "github.com/agentstation/leimap/pkg/constants"
	"github.com/agentstation/leimap/pkg/errors"
)

const binary = "leimap"

// Generate writes the completion script for shell to w.
func Generate(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case constants.ShellBash:
		return root.GenBashCompletion(w)
	case constants.ShellZsh:
		return root.GenZshCompletion(w)
	case constants.ShellFish:
		return root.GenFishCompletion(w, true)
	case constants.ShellPowerShell:
		return root.GenPowerShellCompletionWithDesc(w)
	default:
		return &errors.ValidationError{Field: "shell", Value: shell, Message: "unsupported shell"}
	}
}

// Install writes the completion script for shell to its conventional location
// and reports progress to out.
func Install(root *cobra.Command, shell string, out io.Writer) error {
	target, err := Path(shell)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), pkgconstants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(target), err)
	}

	file, err := os.Create(target) // #nosec G304 - target comes from Path
	if err != nil {
		return errors.WrapIO("create", target, err)
	}
	defer func() { _ = file.Close() }()

	if err := Generate(root, shell, file); err != nil {
		return errors.WrapIO("write", target, err)
	}

	fmt.Fprintf(out, "%s %s completions installed to: %s\n", emoji.Success, shell, target)
	return nil
}

// Uninstall removes the completion file Install would have written.
// A missing file is not an error.
func Uninstall(shell string, out io.Writer) error {
	target, err := Path(shell)
	if err != nil {
		return err
	}

	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		fmt.Fprintf(out, "No %s completions found at: %s\n", shell, target)
		return nil
	}
	if err := os.Remove(target); err != nil {
		return errors.WrapIO("remove", target, err)
	}
	fmt.Fprintf(out, "%s Removed %s completions from: %s\n", emoji.Success, shell, target)
	return nil
}

// Path returns where completions for shell live, preferring a Homebrew prefix
// and falling back to the user's home directory.
func Path(shell string) (string, error) {
	var brewRel, homeRel string
	switch shell {
	case constants.ShellBash:
		brewRel = filepath.Join("etc", "bash_completion.d", binary)
		homeRel = filepath.Join(".bash_completion.d", binary)
	case constants.ShellZsh:
		brewRel = filepath.Join("share", "zsh", "site-functions", "_"+binary)
		homeRel = filepath.Join(".zsh", "completions", "_"+binary)
	case constants.ShellFish:
		brewRel = filepath.Join("share", "fish", "vendor_completions.d", binary+".fish")
		homeRel = filepath.Join(".config", "fish", "completions", binary+".fish")
	default:
		return "", &errors.ValidationError{Field: "shell", Value: shell, Message: "completions cannot be installed for this shell"}
	}

	if prefix := brewPrefix(); prefix != "" {
		return filepath.Join(prefix, brewRel), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapIO("resolve", "home directory", err)
	}
	return filepath.Join(home, homeRel), nil
}

func brewPrefix() string {
	if prefix := os.Getenv("HOMEBREW_PREFIX"); prefix != "" {
		return prefix
	}
	for _, prefix := range []string{"/opt/homebrew", "/usr/local"} {
		if _, err := os.Stat(filepath.Join(prefix, "bin", "brew")); err == nil {
			return prefix
		}
	}
	return ""
}
