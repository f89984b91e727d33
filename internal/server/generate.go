// Package server provides the HTTP API of leimap.
//
// The package is layered:
//
//   - Server: lifecycle of the broker, real-time transports and rate limiter
//   - Config: server configuration with sensible defaults
//   - Router: route registration and the middleware chain
//   - Handlers: HTTP request handlers organized by domain
//
// The architecture follows the pattern: CLI → App → Server → Router → Handlers
//
// Usage:
//
//	cfg := server.DefaultConfig()
//	cfg.Port = 8080
//
//	srv, err := server.New(app, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	srv.Start() // Start background services
//	http.ListenAndServe(":8080", srv.Handler())
package server

//go:generate gomarkdoc --output README.md .
