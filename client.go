// Package leimap maps Legal Entity Identifiers to complete corporate
// ownership hierarchies.
//
// A Client resolves free-text company names to LEIs, fetches company
// details, and builds the full ownership tree containing any entity: it
// climbs to the ultimate parent, expands every direct-child relationship
// depth-first, and then reconciles the tree against the registry's
// ultimate-children listing so that entities reachable only through
// missing intermediate links are still included.
//
// Example usage:
//
//	client, err := leimap.New(leimap.WithRateLimit(5, 2))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client.OnHierarchyBuilt(func(tree *hierarchy.Tree) {
//	    log.Printf("built %d entities under %s", tree.Count(), tree.Root.Name)
//	})
//
//	tree, err := client.Hierarchy(ctx, "LUZQVYP4VS22CLWDAR65")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(tree.Text())
//
//	// Or start from a name and pick the first ranked match
//	tree, match, err := client.HierarchyForName(ctx, "3M Company", 1)
package leimap

import (
	"context"

	"github.com/agentstation/leimap/internal/metrics"
	"github.com/agentstation/leimap/internal/registry/gleif"
	"github.com/agentstation/leimap/internal/resolver"
	"github.com/agentstation/leimap/internal/transport"
	"github.com/agentstation/leimap/pkg/entities"
	"github.com/agentstation/leimap/pkg/hierarchy"
	"github.com/agentstation/leimap/pkg/logging"
)

// Compile-time interface checks to ensure proper implementation.
var (
	_ Client   = (*client)(nil)
	_ Registry = (*gleif.Client)(nil)
)

// Registry is the upstream the client reads from. The production
// implementation talks to the GLEIF API.
type Registry interface {
	hierarchy.Registry
	resolver.Source
}

// Searcher resolves company names to ranked LEI matches.
type Searcher interface {
	// Search returns up to topN matches for name, best first.
	Search(ctx context.Context, name string, topN int) ([]entities.Match, error)

	// BulkSearch searches each target in order.
	BulkSearch(ctx context.Context, targets []string, topN int) ([]entities.BulkResult, error)

	// Select returns the match-th (1-based) ranked match for name.
	Select(ctx context.Context, name string, match int) (entities.Match, error)
}

// Companies fetches registry details for a single entity.
type Companies interface {
	Company(ctx context.Context, lei string) (entities.Company, error)
}

// Hierarchies builds ownership trees.
type Hierarchies interface {
	// UltimateParent returns the top of the parent chain above lei.
	UltimateParent(ctx context.Context, lei string) (string, error)

	// Hierarchy builds the full tree containing lei.
	Hierarchy(ctx context.Context, lei string) (*hierarchy.Tree, error)

	// HierarchyForName selects a ranked match for name and builds its tree.
	HierarchyForName(ctx context.Context, name string, match int) (*hierarchy.Tree, entities.Match, error)
}

// Client resolves names, fetches companies and builds ownership hierarchies.
type Client interface {
	Searcher
	Companies
	Hierarchies

	// Hooks provides access to event callback registration
	Hooks

	// Metrics returns the collector shared by the client's components, if any.
	Metrics() *metrics.Metrics
}

// client is the internal implementation of the Client interface.
type client struct {
	options  *options
	registry Registry
	resolver *resolver.Resolver
	builder  *hierarchy.Builder
	hooks    *hooks
}

// New creates a new Client with the given options.
func New(opts ...Option) (Client, error) {
	o := defaults().apply(opts...)
	if err := o.validate(); err != nil {
		return nil, err
	}

	c := &client{
		options: o,
		hooks:   newHooks(),
	}

	c.registry = o.registry
	if c.registry == nil {
		c.registry = gleif.New(o.registryOptions()...)
	}

	ropts := []resolver.Option{resolver.WithMetrics(o.metrics)}
	if o.scorer != nil {
		ropts = append(ropts, resolver.WithScorer(o.scorer))
	}
	c.resolver = resolver.New(c.registry, ropts...)

	c.builder = hierarchy.NewBuilder(c.registry,
		hierarchy.WithConcurrency(o.concurrency),
		hierarchy.WithAttachFunc(c.hooks.triggerReconciled),
	)

	logging.Debug().
		Str("registry", o.registryURL).
		Str("scorer", c.resolver.Scorer().Name()).
		Int("concurrency", o.concurrency).
		Msg("Client created")
	return c, nil
}

// Metrics implements Client.
func (c *client) Metrics() *metrics.Metrics {
	return c.options.metrics
}

func (o *options) registryOptions() []gleif.Option {
	topts := []transport.Option{
		transport.WithRateLimit(o.rateLimit, o.rateBurst),
		transport.WithAuth(transport.AuthFor(o.apiKeyHeader, o.apiKey)),
	}
	if o.httpClient != nil {
		topts = append(topts, transport.WithHTTPClient(o.httpClient))
	}
	gopts := []gleif.Option{
		gleif.WithBaseURL(o.registryURL),
		gleif.WithTransport(topts...),
		gleif.WithMetrics(o.metrics),
	}
	if o.pageSize > 0 {
		gopts = append(gopts, gleif.WithPageSize(o.pageSize))
	}
	return gopts
}
