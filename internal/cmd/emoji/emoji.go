// Package emoji provides symbol constants for CLI output.
package emoji

// Symbol constants give commands a consistent visual language.
const (
	// Success marks a completed operation.
	Success = "✓"

	// Error marks a failed operation.
	Error = "✗"

	// Stop marks a shutdown in progress.
	Stop = "■"

	// Warning marks a non-fatal issue.
	Warning = "!"

	// Rocket marks a server coming up.
	Rocket = "🚀"
)
