package hierarchy

import (
	"context"

	"github.com/agentstation/leimap/pkg/entities"
)

// EntityLookup fetches the attributes of one entity.
// A missing entity is reported with an error satisfying errors.IsNotFound.
type EntityLookup interface {
	Entity(ctx context.Context, lei string) (*entities.Record, error)
}

// ParentLookup reports the direct parent of an entity, or nil when none is reported.
type ParentLookup interface {
	DirectParent(ctx context.Context, lei string) (*entities.Ref, error)
}

// ChildrenLookup lists descendants of an entity.
// DirectChildren returns every page in registry order.
// UltimateChildren returns the flattened descendant listing.
type ChildrenLookup interface {
	DirectChildren(ctx context.Context, lei string) ([]entities.Ref, error)
	UltimateChildren(ctx context.Context, lei string) ([]entities.Ref, error)
}

// Registry is everything a Builder needs from the upstream data source.
type Registry interface {
	EntityLookup
	ParentLookup
	ChildrenLookup
}
