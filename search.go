package leimap

import (
	"context"

	"github.com/agentstation/leimap/pkg/entities"
	"github.com/agentstation/leimap/pkg/errors"
)

// Search implements Searcher.
func (c *client) Search(ctx context.Context, name string, topN int) ([]entities.Match, error) {
	return c.resolver.Search(ctx, name, topN)
}

// BulkSearch implements Searcher.
func (c *client) BulkSearch(ctx context.Context, targets []string, topN int) ([]entities.BulkResult, error) {
	return c.resolver.BulkSearch(ctx, targets, topN)
}

// Select implements Searcher.
func (c *client) Select(ctx context.Context, name string, match int) (entities.Match, error) {
	return c.resolver.Select(ctx, name, match)
}

// Company implements Companies.
func (c *client) Company(ctx context.Context, lei string) (entities.Company, error) {
	if entities.IsBlank(lei) || entities.NormalizeLEI(lei) == entities.LEINotFound {
		return entities.Company{}, errors.NewValidationError("lei", lei, "a resolved LEI is required")
	}
	rec, err := c.registry.Entity(ctx, entities.NormalizeLEI(lei))
	if err != nil {
		return entities.Company{}, err
	}
	return entities.NewCompany(rec), nil
}
