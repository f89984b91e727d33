// Package gleif is a client for the GLEIF JSON:API registry of legal entities.
// It implements the lookups the hierarchy builder and the name resolver need.
package gleif

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/agentstation/leimap/internal/metrics"
	"github.com/agentstation/leimap/internal/transport"
	"github.com/agentstation/leimap/pkg/constants"
	"github.com/agentstation/leimap/pkg/entities"
	"github.com/agentstation/leimap/pkg/errors"
	"github.com/agentstation/leimap/pkg/logging"
)

// ServiceName identifies the registry in errors and metrics.
const ServiceName = "gleif"

// Endpoint labels used for metrics.
const (
	endpointRecord           = "lei-record"
	endpointDirectParent     = "direct-parent"
	endpointDirectChildren   = "direct-children"
	endpointUltimateChildren = "ultimate-children"
	endpointAutocompletions  = "autocompletions"
	endpointFuzzy            = "fuzzycompletions"
)

// Client talks to the registry API.
type Client struct {
	http     *transport.Client
	baseURL  string
	pageSize int
	maxPages int
}

type config struct {
	baseURL       string
	pageSize      int
	maxPages      int
	transportOpts []transport.Option
	metrics       *metrics.Metrics
}

// Option configures a Client.
type Option func(*config)

// WithBaseURL points the client at another registry deployment or a mirror.
func WithBaseURL(u string) Option {
	return func(c *config) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithPageSize sets the page size for children listings, capped at the registry maximum.
func WithPageSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.pageSize = min(n, constants.MaxChildrenPageSize)
		}
	}
}

// WithMaxPages bounds how many pages of direct children are followed.
func WithMaxPages(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithTransport passes options to the underlying transport client.
func WithTransport(opts ...transport.Option) Option {
	return func(c *config) {
		c.transportOpts = append(c.transportOpts, opts...)
	}
}

// WithMetrics records every registry request.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// New creates a registry client.
func New(opts ...Option) *Client {
	cfg := &config{
		baseURL:  constants.DefaultRegistryURL,
		pageSize: constants.DefaultChildrenPageSize,
		maxPages: constants.MaxChildrenPages,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	topts := []transport.Option{
		transport.WithAccept(constants.RegistryMediaType),
		transport.WithService(ServiceName),
	}
	if cfg.metrics != nil {
		topts = append(topts, transport.WithObserver(cfg.metrics.ObserveUpstream))
	}
	topts = append(topts, cfg.transportOpts...)

	return &Client{
		http:     transport.New(topts...),
		baseURL:  cfg.baseURL,
		pageSize: cfg.pageSize,
		maxPages: cfg.maxPages,
	}
}

// BaseURL returns the registry base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) recordURL(lei string, rel ...string) string {
	u := c.baseURL + "/lei-records/" + url.PathEscape(lei)
	for _, r := range rel {
		u += "/" + r
	}
	return u
}

// Entity fetches a single LEI record.
func (c *Client) Entity(ctx context.Context, lei string) (*entities.Record, error) {
	var doc document[leiRecord]
	if err := c.http.Get(ctx, c.recordURL(lei), endpointRecord, &doc); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewNotFoundError("entity", lei)
		}
		return nil, err
	}
	return toRecord(doc.Data), nil
}

// DirectParent returns the reported direct parent, or nil when the registry has none.
func (c *Client) DirectParent(ctx context.Context, lei string) (*entities.Ref, error) {
	var doc document[*leiRecord]
	if err := c.http.Get(ctx, c.recordURL(lei, "direct-parent"), endpointDirectParent, &doc); err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if doc.Data == nil {
		return nil, nil
	}
	ref := toRef(*doc.Data)
	if ref.LEI == "" {
		return nil, nil
	}
	return &ref, nil
}

// DirectChildren returns all direct children, following pagination links in order.
// An entity without children yields an empty slice.
func (c *Client) DirectChildren(ctx context.Context, lei string) ([]entities.Ref, error) {
	next := fmt.Sprintf("%s?page[size]=%d", c.recordURL(lei, "direct-children"), c.pageSize)
	var out []entities.Ref

	for page := 0; next != ""; page++ {
		if page >= c.maxPages {
			logging.FromContext(ctx).Warn().
				Str("lei", lei).
				Int("pages", page).
				Msg("Direct children pagination limit reached")
			break
		}

		var doc document[[]leiRecord]
		if err := c.http.Get(ctx, next, endpointDirectChildren, &doc); err != nil {
			if errors.IsNotFound(err) && page == 0 {
				return []entities.Ref{}, nil
			}
			return out, err
		}
		for _, item := range doc.Data {
			out = append(out, toRef(item))
		}

		following := c.resolve(doc.Links.Next)
		if following == next {
			break
		}
		next = following
	}

	if out == nil {
		out = []entities.Ref{}
	}
	return out, nil
}

// UltimateChildren returns the flattened descendant listing in a single request.
func (c *Client) UltimateChildren(ctx context.Context, lei string) ([]entities.Ref, error) {
	u := fmt.Sprintf("%s?page[size]=%d", c.recordURL(lei, "ultimate-children"), constants.MaxChildrenPageSize)
	var doc document[[]leiRecord]
	if err := c.http.Get(ctx, u, endpointUltimateChildren, &doc); err != nil {
		return nil, err
	}
	out := make([]entities.Ref, 0, len(doc.Data))
	for _, item := range doc.Data {
		out = append(out, toRef(item))
	}
	return out, nil
}

// Autocomplete returns suggested entity names for a free-text query.
func (c *Client) Autocomplete(ctx context.Context, query string) ([]string, error) {
	items, err := c.completions(ctx, "autocompletions", endpointAutocompletions, query)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		if item.Value != "" {
			names = append(names, item.Value)
		}
	}
	return names, nil
}

// FuzzyComplete returns fuzzy name matches with their linked LEIs.
func (c *Client) FuzzyComplete(ctx context.Context, query string) ([]entities.Completion, error) {
	return c.completions(ctx, "fuzzycompletions", endpointFuzzy, query)
}

func (c *Client) completions(ctx context.Context, path, endpoint, query string) ([]entities.Completion, error) {
	q := url.Values{}
	q.Set("field", "fulltext")
	q.Set("q", query)

	var doc document[[]completion]
	if err := c.http.Get(ctx, c.baseURL+"/"+path+"?"+q.Encode(), endpoint, &doc); err != nil {
		return nil, err
	}
	out := make([]entities.Completion, 0, len(doc.Data))
	for _, item := range doc.Data {
		out = append(out, entities.Completion{
			Value: item.Attributes.Value,
			LEI:   item.relatedLEI(),
		})
	}
	return out, nil
}

// resolve turns a pagination link into an absolute URL against the base URL.
func (c *Client) resolve(link string) string {
	if link == "" {
		return ""
	}
	ref, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return link
	}
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
