package server

import (
	"net/http"

	"github.com/agentstation/leimap/internal/server/handlers"
	"github.com/agentstation/leimap/internal/server/middleware"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(handlers.Deps{
		Client:         s.client,
		Pairings:       s.pairings,
		Cache:          s.cache,
		Broker:         s.broker,
		WSHub:          s.wsHub,
		SSEBroadcaster: s.sseBroadcaster,
		Upgrader:       s.upgrader,
		Metrics:        s.metrics,
		Logger:         s.logger,
		Version:        s.app.Version(),
		StartTime:      s.startTime,
	})

	s.registerRoutes(mux, h)
	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Public health endpoints (no auth required)
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/ready", h.HandleReady)

	// Search
	mux.HandleFunc("GET "+prefix+"/search", h.HandleSearch)
	mux.HandleFunc("POST "+prefix+"/bulk-search", h.HandleBulkSearch)

	// Hierarchies and companies
	mux.HandleFunc("GET "+prefix+"/hierarchy", h.HandleHierarchyByName)
	mux.HandleFunc("GET "+prefix+"/hierarchy/{lei}", h.HandleHierarchyByLEI)
	mux.HandleFunc("GET "+prefix+"/companies/{lei}", h.HandleCompany)

	// Pairings
	mux.HandleFunc("GET "+prefix+"/pairings", h.HandleListPairings)
	mux.HandleFunc("POST "+prefix+"/pairings", h.HandleSavePairings)
	mux.HandleFunc("DELETE "+prefix+"/pairings", h.HandleResetPairings)

	// Real-time endpoints
	mux.HandleFunc("GET "+prefix+"/updates/ws", h.HandleWebSocket)
	mux.HandleFunc("GET "+prefix+"/updates/stream", h.HandleSSE)

	if s.config.MetricsEnabled {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

// routeName labels metrics with the matched mux pattern.
func routeName(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	return r.Pattern
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	if s.rateLimiter != nil {
		handler = middleware.RateLimit(s.rateLimiter)(handler)
	}

	if cfg.AuthEnabled {
		authConfig := middleware.DefaultAuthConfig(cfg.PathPrefix)
		authConfig.Enabled = true
		if cfg.AuthHeader != "" {
			authConfig.HeaderName = cfg.AuthHeader
		}
		if cfg.AuthAPIKey != "" {
			authConfig.APIKey = cfg.AuthAPIKey
		}
		handler = middleware.Auth(authConfig, s.logger)(handler)
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
			corsConfig.AllowAll = false
		} else {
			corsConfig.AllowAll = true
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
		middleware.Metrics(s.metrics, routeName),
	)(handler)
}
