package leimap

import (
	"context"

	"github.com/agentstation/leimap/pkg/entities"
	"github.com/agentstation/leimap/pkg/hierarchy"
	"github.com/agentstation/leimap/pkg/logging"
)

// UltimateParent implements Hierarchies.
func (c *client) UltimateParent(ctx context.Context, lei string) (string, error) {
	return c.builder.ResolveUltimateParent(ctx, entities.NormalizeLEI(lei))
}

// Hierarchy implements Hierarchies.
func (c *client) Hierarchy(ctx context.Context, lei string) (*hierarchy.Tree, error) {
	tree, err := c.builder.Build(ctx, lei)
	if err != nil {
		return nil, err
	}
	c.options.metrics.ObserveBuild(tree.Count(), len(tree.Reconciled))
	c.hooks.triggerBuilt(tree)
	return tree, nil
}

// HierarchyForName implements Hierarchies.
func (c *client) HierarchyForName(ctx context.Context, name string, match int) (*hierarchy.Tree, entities.Match, error) {
	selected, err := c.resolver.Select(ctx, name, match)
	if err != nil {
		return nil, selected, err
	}
	logging.FromContext(ctx).Debug().
		Str("name", name).
		Str("entity", selected.Entity).
		Str("lei", selected.LEI).
		Msg("Selected match for hierarchy")

	tree, err := c.Hierarchy(ctx, selected.LEI)
	if err != nil {
		return nil, selected, err
	}
	return tree, selected, nil
}
