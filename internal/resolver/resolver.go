// Package resolver turns free-text company names into ranked LEI matches
// using the registry's completion endpoints and a similarity scorer.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/leimap/internal/metrics"
	"github.com/agentstation/leimap/pkg/constants"
	"github.com/agentstation/leimap/pkg/entities"
	"github.com/agentstation/leimap/pkg/errors"
	"github.com/agentstation/leimap/pkg/logging"
	"github.com/agentstation/leimap/pkg/ranking"
)

// Source supplies name suggestions and their LEIs.
type Source interface {
	Autocomplete(ctx context.Context, query string) ([]string, error)
	FuzzyComplete(ctx context.Context, query string) ([]entities.Completion, error)
}

// Resolver ranks registry suggestions for a name and resolves each to an LEI.
type Resolver struct {
	source  Source
	scorer  ranking.Scorer
	metrics *metrics.Metrics
	workers int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithScorer replaces the default lexical scorer.
func WithScorer(s ranking.Scorer) Option {
	return func(r *Resolver) {
		if s != nil {
			r.scorer = s
		}
	}
}

// WithMetrics counts searches.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithWorkers bounds how many LEI lookups run at once.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// New creates a Resolver over source.
func New(source Source, opts ...Option) *Resolver {
	r := &Resolver{
		source:  source,
		scorer:  ranking.NewLexical(),
		workers: 4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scorer returns the scorer in use.
func (r *Resolver) Scorer() ranking.Scorer {
	return r.scorer
}

// Search returns up to topN matches for name, best first. A blank name yields
// no matches. Names whose LEI cannot be found carry entities.LEINotFound.
func (r *Resolver) Search(ctx context.Context, name string, topN int) ([]entities.Match, error) {
	r.metrics.IncrementSearches("single")
	return r.search(ctx, name, topN)
}

func (r *Resolver) search(ctx context.Context, name string, topN int) ([]entities.Match, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []entities.Match{}, nil
	}
	if topN <= 0 {
		topN = constants.DefaultTopN
	}
	topN = min(topN, constants.MaxTopN)
	ctx = logging.WithQuery(ctx, name)

	suggestions, err := r.source.Autocomplete(ctx, name)
	if err != nil {
		return nil, err
	}
	ranked, err := ranking.Rank(ctx, r.scorer, name, suggestions, topN)
	if err != nil {
		return nil, err
	}

	matches := make([]entities.Match, len(ranked))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, s := range ranked {
		matches[i] = entities.Match{Entity: s.Value, Score: s.Score}
		g.Go(func() error {
			matches[i].LEI = r.LookupLEI(gctx, s.Value)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug().
		Int("suggestions", len(suggestions)).
		Int("matches", len(matches)).
		Str("scorer", r.scorer.Name()).
		Msg("Ranked name suggestions")
	return matches, nil
}

// LookupLEI finds the LEI for an exact suggested name. It prefers a fuzzy
// completion whose value contains, or is contained in, the name
// (case-insensitive) and otherwise takes the first completion with an LEI.
func (r *Resolver) LookupLEI(ctx context.Context, name string) string {
	items, err := r.source.FuzzyComplete(ctx, name)
	if err != nil {
		logging.FromContext(ctx).Debug().Err(err).Str("name", name).Msg("Fuzzy completion failed")
		return entities.LEINotFound
	}

	lower := strings.ToLower(name)
	for _, item := range items {
		if item.LEI == "" {
			continue
		}
		value := strings.ToLower(item.Value)
		if strings.Contains(value, lower) || strings.Contains(lower, value) {
			return item.LEI
		}
	}
	for _, item := range items {
		if item.LEI != "" {
			return item.LEI
		}
	}
	return entities.LEINotFound
}

// BulkSearch searches each target in order. Between 1 and
// constants.MaxBulkTargets targets are accepted.
func (r *Resolver) BulkSearch(ctx context.Context, targets []string, topN int) ([]entities.BulkResult, error) {
	if len(targets) == 0 {
		return nil, errors.NewValidationError("targets", targets, "no targets provided")
	}
	if len(targets) > constants.MaxBulkTargets {
		return nil, errors.NewValidationError("targets", len(targets), fmt.Sprintf("maximum of %d targets allowed", constants.MaxBulkTargets))
	}
	r.metrics.IncrementSearches("bulk")

	results := make([]entities.BulkResult, len(targets))
	for i, target := range targets {
		matches, err := r.search(ctx, target, topN)
		if err != nil {
			if errors.IsCanceled(err) {
				return nil, err
			}
			logging.FromContext(ctx).Warn().Err(err).Str("target", target).Msg("Bulk search target failed")
			matches = []entities.Match{}
		}
		results[i] = entities.BulkResult{Target: target, Matches: matches}
	}
	return results, nil
}

// Select returns the match-th (1-based) of the top constants.SelectionTopN
// matches for name. It fails when the index is out of range or the selected
// name has no LEI.
func (r *Resolver) Select(ctx context.Context, name string, match int) (entities.Match, error) {
	r.metrics.IncrementSearches("select")
	matches, err := r.search(ctx, name, constants.SelectionTopN)
	if err != nil {
		return entities.Match{}, err
	}
	if len(matches) == 0 {
		return entities.Match{}, errors.NewNotFoundError("match", name)
	}
	if match < 1 || match > len(matches) {
		return entities.Match{}, errors.NewValidationError("match", match,
			fmt.Sprintf("choose a match between 1 and %d", len(matches)))
	}
	selected := matches[match-1]
	if !selected.Resolved() {
		return selected, errors.NewNotFoundError("LEI", selected.Entity)
	}
	return selected, nil
}
