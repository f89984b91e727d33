package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/leimap"
	"github.com/agentstation/leimap/cmd/application"
	"github.com/agentstation/leimap/internal/metrics"
	"github.com/agentstation/leimap/internal/pairings"
	"github.com/agentstation/leimap/internal/server/cache"
	"github.com/agentstation/leimap/internal/server/events"
	"github.com/agentstation/leimap/internal/server/events/adapters"
	"github.com/agentstation/leimap/internal/server/middleware"
	"github.com/agentstation/leimap/internal/server/sse"
	ws "github.com/agentstation/leimap/internal/server/websocket"
	"github.com/agentstation/leimap/pkg/errors"
	"github.com/agentstation/leimap/pkg/hierarchy"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	app            application.Application
	client         leimap.Client
	pairings       pairings.Store
	metrics        *metrics.Metrics
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	rateLimiter    *middleware.RateLimiter
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	startTime      time.Time
}

// New creates a new server instance with the given configuration.
func New(app application.Application, cfg Config) (*Server, error) {
	logger := app.Logger()

	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	var m *metrics.Metrics
	opts := []leimap.Option{}
	if cfg.MetricsEnabled {
		m = metrics.New()
		opts = append(opts, leimap.WithMetrics(m))
	}

	client, err := app.Client(opts...)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, errors.NewConfigError("server", "application returned no client", nil)
	}

	store, err := app.Pairings()
	if err != nil {
		return nil, err
	}

	broker := events.NewBroker(logger)
	wsHub := ws.NewHub(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)

	for _, f := range []*adapters.Forwarder{adapters.WebSocket(wsHub), adapters.SSE(sseBroadcaster)} {
		broker.Subscribe(f)
		logger.Debug().Str("transport", f.Transport()).Msg("Transport subscribed to event broker")
	}

	ctx, cancel := context.WithCancel(context.Background())

	server := &Server{
		app:            app,
		client:         client,
		pairings:       store,
		metrics:        m,
		cache:          cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	if cfg.RateLimit > 0 {
		server.rateLimiter = middleware.NewRateLimiter(cfg.RateLimit, logger)
	}

	server.connectHooks()
	return server, nil
}

// connectHooks publishes client hierarchy events to the broker.
func (s *Server) connectHooks() {
	s.client.OnHierarchyBuilt(func(tree *hierarchy.Tree) {
		seq := s.broker.Publish(events.HierarchyBuilt, events.NewHierarchyBuiltData(tree))
		s.logger.Debug().
			Uint64("seq", seq).
			Str("root", tree.UltimateParent()).
			Int("total_entities", tree.Count()).
			Msg("Hierarchy built event published")
	})

	s.client.OnNodeReconciled(func(a hierarchy.Attachment) {
		s.broker.Publish(events.HierarchyReconciled, a)
	})

	s.logger.Info().Msg("Client hooks connected to event broker")
}

// Start starts background services (broker, WebSocket hub, SSE broadcaster, rate limiter cleanup).
func (s *Server) Start() {
	go s.broker.Run(s.ctx)
	go s.wsHub.Run(s.ctx)
	go s.sseBroadcaster.Run(s.ctx)
	if s.rateLimiter != nil {
		go s.rateLimiter.Run(time.Minute, s.ctx.Done())
	}
	s.logger.Debug().Msg("All background services started")
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown stops background services and closes the pairings store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")
	s.cancel()

	select {
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown timed out")
	case <-time.After(100 * time.Millisecond):
		s.logger.Info().Msg("Background services shut down successfully")
	}

	if err := s.pairings.Close(); err != nil {
		return errors.WrapResource("close", "pairings", "", err)
	}
	return nil
}

// Cache returns the server's cache instance.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// Broker returns the event broker for publishing events.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// Metrics returns the server's metrics, nil when disabled.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
