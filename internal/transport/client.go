// Package transport is the HTTP layer shared by upstream API clients: it
// applies credentials and content negotiation, paces requests with a token
// bucket and turns non-success responses into typed errors.
package transport

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/agentstation/leimap/pkg/constants"
	"github.com/agentstation/leimap/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// ObserveFunc is called once per completed request.
// status is 0 when no response was received.
type ObserveFunc func(endpoint string, status int, took time.Duration, err error)

// Client performs paced, authenticated requests against one upstream service.
type Client struct {
	http    *http.Client
	auth    Authenticator
	limiter *rate.Limiter
	accept  string
	service string
	observe ObserveFunc
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithAuth sets the authenticator.
func WithAuth(auth Authenticator) Option {
	return func(c *Client) {
		if auth != nil {
			c.auth = auth
		}
	}
}

// WithRateLimit allows rps requests per second with the given burst.
// A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithAccept sets the Accept header sent with every request.
func WithAccept(mediaType string) Option {
	return func(c *Client) {
		c.accept = mediaType
	}
}

// WithService names the upstream in errors and observations.
func WithService(name string) Option {
	return func(c *Client) {
		c.service = name
	}
}

// WithObserver registers a per-request callback, typically for metrics.
func WithObserver(fn ObserveFunc) Option {
	return func(c *Client) {
		c.observe = fn
	}
}

// New creates a new transport client.
func New(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: DefaultHTTPTimeout},
		auth:    &NoAuth{},
		limiter: rate.NewLimiter(rate.Limit(constants.DefaultRegistryRate), constants.DefaultRegistryBurst),
		accept:  "application/json",
		service: "upstream",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the upstream name used in errors.
func (c *Client) Service() string {
	return c.service
}

// Do waits for a rate-limit token, then performs req with credentials and headers applied.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, errors.WrapResource("fetch", "request", req.Method+" "+req.URL.Path, ctx.Err())
			}
			return nil, errors.NewTimeoutError("rate limit wait", "", err.Error())
		}
	}

	c.auth.Apply(req)
	req.Header.Set("Accept", c.accept)
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.http.Do(req)
}

// Get performs a GET request and decodes a 200 JSON body into target.
func (c *Client) Get(ctx context.Context, url, endpoint string, target any) error {
	began := time.Now()
	status, err := c.get(ctx, url, target)
	if c.observe != nil {
		c.observe(endpoint, status, time.Since(began), err)
	}
	return err
}

func (c *Client) get(ctx context.Context, url string, target any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, errors.WrapResource("create", "request", "GET "+url, err)
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return 0, errors.WrapResource("fetch", "request", "GET "+url, err)
	}
	return resp.StatusCode, DecodeResponse(resp, target, c.service, url)
}
