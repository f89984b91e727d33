// Package app provides the application context and dependency management
// for the leimap CLI. It centralizes configuration, logging, the lazily
// created leimap client and the pairings store.
package app

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/leimap"
	"github.com/agentstation/leimap/cmd/application"
	"github.com/agentstation/leimap/internal/pairings"
	"github.com/agentstation/leimap/pkg/errors"
	"github.com/agentstation/leimap/pkg/ranking"
)

var _ application.Application = (*App)(nil)

// App represents the leimap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Lazily initialized singletons
	mu       sync.RWMutex
	client   leimap.Client
	pairings pairings.Store
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the environment and config file and can be
// replaced using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		config, err := LoadConfig()
		if err != nil {
			return nil, errors.WrapResource("load", "config", "", err)
		}
		app.config = config
	}

	if app.logger == nil {
		logger := NewLogger(app.config)
		app.logger = &logger
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Client returns the leimap client. Without options the default instance is
// created once and cached; with options a new client is built on top of the
// configured defaults.
func (a *App) Client(opts ...leimap.Option) (leimap.Client, error) {
	if len(opts) > 0 {
		c, err := leimap.New(append(a.clientOptions(), opts...)...)
		if err != nil {
			return nil, errors.WrapResource("create", "client", "with custom options", err)
		}
		return c, nil
	}

	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	c, err := leimap.New(a.clientOptions()...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}
	a.client = c
	return c, nil
}

// Pairings returns the pairings store: bbolt when a path is configured,
// memory otherwise.
func (a *App) Pairings() (pairings.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pairings != nil {
		return a.pairings, nil
	}

	if a.config.PairingsPath == "" {
		a.pairings = pairings.NewMemory()
		return a.pairings, nil
	}

	store, err := pairings.OpenBolt(a.config.PairingsPath)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("path", store.Path()).Msg("Opened pairings store")
	a.pairings = store
	return store, nil
}

// Shutdown releases resources held by the application.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	store := a.pairings
	a.pairings = nil
	a.mu.Unlock()

	if store != nil {
		return store.Close()
	}
	return nil
}

// clientOptions constructs leimap options from the app configuration.
func (a *App) clientOptions() []leimap.Option {
	cfg := a.config
	opts := []leimap.Option{
		leimap.WithRegistryURL(cfg.RegistryURL),
		leimap.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		leimap.WithPageSize(cfg.PageSize),
		leimap.WithConcurrency(cfg.Concurrency),
		leimap.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
	}
	if cfg.RegistryAPIKey != "" {
		opts = append(opts, leimap.WithAPIKey(cfg.RegistryAPIKeyHeader, cfg.RegistryAPIKey))
	}
	if scorer := a.scorer(); scorer != nil {
		opts = append(opts, leimap.WithScorer(scorer))
	}
	return opts
}

// scorer returns the configured ranker. The embedding scorer falls back to
// lexical ranking per request when the backend fails, and entirely when it
// cannot be created.
func (a *App) scorer() ranking.Scorer {
	cfg := a.config
	if cfg.Ranker != RankerGenAI {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	defer cancel()

	g, err := ranking.NewGenAI(ctx, ranking.GenAIConfig{
		APIKey:   cfg.GenAIAPIKey,
		Project:  cfg.GoogleCloudProject,
		Location: cfg.GoogleCloudLocation,
		Model:    cfg.GenAIModel,
	})
	if err != nil {
		a.logger.Warn().Err(err).Msg("Embedding ranker unavailable, using lexical ranking")
		return nil
	}

	return &ranking.Fallback{
		Primary:   g,
		Secondary: ranking.NewLexical(),
		OnError: func(err error) {
			a.logger.Warn().Err(err).Msg("Embedding ranking failed, falling back to lexical ranking")
		},
	}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if err := config.Validate(); err != nil {
			return err
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom client instance (useful for testing).
func WithClient(c leimap.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}

// WithPairings sets a custom pairings store.
func WithPairings(s pairings.Store) Option {
	return func(a *App) error {
		a.pairings = s
		return nil
	}
}
