package leimap

import (
	"net/http"
	"net/url"

	"github.com/agentstation/leimap/internal/metrics"
	"github.com/agentstation/leimap/pkg/constants"
	"github.com/agentstation/leimap/pkg/errors"
	"github.com/agentstation/leimap/pkg/ranking"
)

// options holds the configuration for a Client.
type options struct {
	registryURL  string
	apiKey       string
	apiKeyHeader string
	httpClient   *http.Client
	rateLimit    float64
	rateBurst    int
	pageSize     int
	scorer       ranking.Scorer
	concurrency  int
	registry     Registry
	metrics      *metrics.Metrics
}

// Option is a function that configures a Client.
type Option func(*options)

func defaults() *options {
	return &options{
		registryURL: constants.DefaultRegistryURL,
		rateLimit:   constants.DefaultRegistryRate,
		rateBurst:   constants.DefaultRegistryBurst,
		pageSize:    constants.DefaultChildrenPageSize,
		concurrency: 1,
	}
}

func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) validate() error {
	if o.registry != nil {
		return nil
	}
	u, err := url.Parse(o.registryURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.NewConfigError("registry", "invalid registry URL "+o.registryURL, err)
	}
	if o.pageSize < 0 || o.pageSize > constants.MaxChildrenPageSize {
		return errors.NewConfigError("registry", "page size out of range", nil)
	}
	return nil
}

// WithRegistryURL points the client at a registry mirror.
func WithRegistryURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.registryURL = u
		}
	}
}

// WithAPIKey sends key with every registry request. An empty header sends it
// as a bearer token.
func WithAPIKey(header, key string) Option {
	return func(o *options) {
		o.apiKeyHeader = header
		o.apiKey = key
	}
}

// WithHTTPClient sets the HTTP client used for registry requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithRateLimit limits registry requests to rps per second with the given
// burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rateLimit = rps
		o.rateBurst = burst
	}
}

// WithPageSize sets the direct-children page size.
func WithPageSize(n int) Option {
	return func(o *options) {
		o.pageSize = n
	}
}

// WithScorer sets the scorer used to rank name suggestions.
func WithScorer(s ranking.Scorer) Option {
	return func(o *options) {
		o.scorer = s
	}
}

// WithConcurrency expands up to n sibling subtrees in parallel.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithRegistry replaces the GLEIF client, typically with a fake in tests.
func WithRegistry(r Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithMetrics records registry, search and hierarchy metrics in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
