package server

import (
	"time"

	"github.com/agentstation/leimap/pkg/constants"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int

	// API settings
	PathPrefix string

	// CORS settings
	CORSEnabled bool
	CORSOrigins []string

	// Authentication settings
	AuthEnabled bool
	AuthHeader  string
	AuthAPIKey  string // falls back to LEIMAP_API_KEY when empty

	// Performance settings
	RateLimit int // Requests per minute per IP (0 to disable)
	CacheTTL  time.Duration

	// HTTP timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Features
	MetricsEnabled bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:        "localhost",
		Port:        8080,
		PathPrefix:  "/api/v1",
		CORSEnabled: false,
		CORSOrigins: []string{},
		AuthEnabled: false,
		AuthHeader:  "X-API-Key",
		RateLimit:   constants.DefaultRateLimit,
		CacheTTL:    5 * time.Minute,
		ReadTimeout: 10 * time.Second,
		// Hierarchy builds for large groups can take minutes.
		WriteTimeout:   5 * time.Minute,
		IdleTimeout:    120 * time.Second,
		MetricsEnabled: true,
	}
}
