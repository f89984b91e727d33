// Package application provides the application interface for leimap commands
// and the API server.
//
// Commands and handlers accept this interface rather than the concrete App
// type, so they can be tested with internal/appcontext.Mock.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            client, err := app.Client()
//	            if err != nil {
//	                return err
//	            }
//	            tree, err := client.Hierarchy(cmd.Context(), args[0])
//	            // ... render tree
//	        },
//	    }
//	}
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/leimap"
	"github.com/agentstation/leimap/internal/pairings"
)

// Application provides what commands need from the running program.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns the leimap client. Without options it returns the
	// default instance, created lazily and cached. With options it creates a
	// new, uncached instance on top of the configured defaults.
	Client(opts ...leimap.Option) (leimap.Client, error)

	// Pairings returns the configured pairings store, opening it on first use.
	Pairings() (pairings.Store, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (tree, table, json, yaml, markdown).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
