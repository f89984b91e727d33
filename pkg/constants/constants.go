// Package constants provides shared constants used throughout the leimap codebase.
// This includes registry endpoints, timeouts, limits, sentinel values and
// file permissions that should be consistent across the application.
package constants

import "time"

// Registry constants
const (
	// DefaultRegistryURL is the base URL of the GLEIF JSON:API
	DefaultRegistryURL = "https://api.gleif.org/api/v1"

	// RegistryMediaType is the Accept header value the registry expects
	RegistryMediaType = "application/vnd.api+json"

	// DefaultChildrenPageSize is the page size used for direct and ultimate children
	DefaultChildrenPageSize = 200

	// MaxChildrenPageSize is the largest page size the registry accepts
	MaxChildrenPageSize = 200

	// MaxChildrenPages bounds pagination of a single children listing
	MaxChildrenPages = 500
)

// Sentinel values
const (
	// Unknown is displayed for any entity attribute the registry did not supply
	Unknown = "N/A"

	// LEINotFound marks a ranked name whose LEI could not be resolved
	LEINotFound = "LEI_NOT_FOUND"
)

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the registry
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// HierarchyTimeout bounds a single hierarchy build
	HierarchyTimeout = 5 * time.Minute

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like API keys (rw-------)
	SecureFilePermissions = 0600
)

// Limit constants define various limits and capacities
const (
	// DefaultTopN is the number of ranked matches returned by a search
	DefaultTopN = 5

	// SelectionTopN is the number of ranked matches a hierarchy-by-name selection chooses from
	SelectionTopN = 10

	// MaxTopN caps the number of ranked matches a caller may request
	MaxTopN = 50

	// MaxBulkTargets is the maximum number of names accepted by a bulk search
	MaxBulkTargets = 10

	// MaxConcurrentExpansions caps parallel sibling expansion in the hierarchy builder
	MaxConcurrentExpansions = 16

	// ChannelBufferSize is the default buffer size for channels
	ChannelBufferSize = 100

	// SSEReplaySize is how many recent events an SSE client can catch up on
	// after reconnecting with Last-Event-ID
	SSEReplaySize = 256

	// SSEHeartbeatInterval keeps idle streams open through proxies
	SSEHeartbeatInterval = 30 * time.Second
)

// Rate limiting constants
const (
	// DefaultRegistryRate is the default number of registry requests per second
	DefaultRegistryRate = 10

	// DefaultRegistryBurst is the token bucket burst size for registry requests
	DefaultRegistryBurst = 5

	// DefaultRateLimit is the default requests per minute per client for the HTTP server
	DefaultRateLimit = 100
)

// Cache constants
const (
	// CacheTTL is the default time-to-live for cached search and company results
	CacheTTL = 5 * time.Minute

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 10 * time.Minute
)

// Path constants
const (
	// DefaultConfigFile is the config file name looked up in the home directory
	DefaultConfigFile = ".leimap.yaml"

	// DefaultPairingsFile is the default file name of the durable pairings store
	DefaultPairingsFile = "pairings.db"
)

// Format constants
const (
	// TimeFormatISO8601 is the ISO 8601 time format
	TimeFormatISO8601 = time.RFC3339

	// TimeFormatLog is the format used in log files
	TimeFormatLog = "2006-01-02 15:04:05.000"
)
