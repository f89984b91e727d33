package hierarchy

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/leimap/pkg/entities"
	"github.com/agentstation/leimap/pkg/errors"
	"github.com/agentstation/leimap/pkg/logging"
)

// Builder assembles ownership trees from a Registry.
// It keeps no per-build state and is safe for concurrent use.
type Builder struct {
	reg         Registry
	concurrency int
	onAttach    []AttachFunc
}

// NewBuilder creates a Builder reading from reg.
func NewBuilder(reg Registry, opts ...Option) *Builder {
	b := &Builder{reg: reg, concurrency: 1}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ResolveUltimateParent climbs the direct-parent chain from lei and returns the
// topmost entity reached. A reported cycle or a failed lookup stops the climb
// at the current entity. The only error is for a blank lei.
func (b *Builder) ResolveUltimateParent(ctx context.Context, lei string) (string, error) {
	if entities.IsBlank(lei) {
		return "", errors.NewValidationError("lei", lei, "must not be blank")
	}
	start := entities.NormalizeLEI(lei)
	logger := logging.FromContext(ctx)

	visited := map[string]struct{}{}
	current := start
	for {
		visited[current] = struct{}{}

		parent, err := b.reg.DirectParent(ctx, current)
		if err != nil {
			if !errors.IsNotFound(err) {
				logger.Warn().Err(err).Str("lei", current).Msg("Direct parent lookup failed, stopping ascent")
			}
			return current, nil
		}
		if parent == nil || entities.IsBlank(parent.LEI) {
			return current, nil
		}

		next := entities.NormalizeLEI(parent.LEI)
		if _, seen := visited[next]; seen {
			logger.Debug().Err(errors.NewCycleError(start, next)).Msg("Parent chain revisits an entity")
			return current, nil
		}
		current = next
	}
}

// Build returns the full tree containing startLEI, rooted at its ultimate parent.
// Upstream failures degrade the affected nodes instead of failing the build.
func (b *Builder) Build(ctx context.Context, startLEI string) (*Tree, error) {
	if entities.IsBlank(startLEI) {
		return nil, errors.NewValidationError("lei", startLEI, "must not be blank")
	}
	start := entities.NormalizeLEI(startLEI)
	ctx = logging.WithLEI(ctx, start)
	logger := logging.FromContext(ctx)
	began := time.Now()

	ultimate, err := b.ResolveUltimateParent(ctx, start)
	if err != nil {
		return nil, err
	}

	run := &expansion{
		reg:     b.reg,
		visited: newVisitedSet(),
	}
	if b.concurrency > 1 {
		run.pool = new(errgroup.Group)
		run.pool.SetLimit(b.concurrency)
		run.pending = make(map[string]*pendingFetch)
	}

	tree := &Tree{
		Root:     run.expand(ctx, ultimate),
		QueryLEI: start,
	}
	if run.pool != nil {
		_ = run.pool.Wait()
	}
	b.reconcile(ctx, tree)

	logger.Debug().
		Str("ultimate_parent", ultimate).
		Int("entities", tree.Count()).
		Int("expanded", run.visited.len()).
		Int("reconciled", len(tree.Reconciled)).
		Dur("took", time.Since(began)).
		Msg("Hierarchy built")
	return tree, nil
}

// expansion holds the state of one depth-first expansion. Nodes are claimed
// and attached in pre-order by a single walker; with a pool, the entity and
// children records of upcoming siblings are fetched ahead of the walker.
type expansion struct {
	reg     Registry
	visited *visitedSet

	pool    *errgroup.Group
	pending map[string]*pendingFetch // walker-owned
}

// pendingFetch is an in-flight fetch of one node's records.
type pendingFetch struct {
	done     chan struct{}
	node     *Node
	children []entities.Ref
}

// expand builds the subtree at lei, or returns nil if lei was already expanded.
func (e *expansion) expand(ctx context.Context, lei string) *Node {
	if !e.visited.mark(lei) {
		return nil
	}
	node, children := e.load(ctx, lei)
	e.prefetch(ctx, children)

	for _, child := range children {
		childLEI := entities.NormalizeLEI(child.LEI)
		if childLEI == "" {
			continue
		}
		if c := e.expand(ctx, childLEI); c != nil {
			node.Children = append(node.Children, c)
		}
	}
	return node
}

// load returns the records of lei, waiting for a prefetch when one was started.
func (e *expansion) load(ctx context.Context, lei string) (*Node, []entities.Ref) {
	p, ok := e.pending[lei]
	if !ok {
		return e.fetch(ctx, lei)
	}
	delete(e.pending, lei)
	<-p.done
	return p.node, p.children
}

// prefetch starts fetching the records of children not yet expanded or in flight.
// Go blocks while the pool is full; workers never wait on the walker.
func (e *expansion) prefetch(ctx context.Context, children []entities.Ref) {
	if e.pool == nil {
		return
	}
	for _, child := range children {
		lei := entities.NormalizeLEI(child.LEI)
		if lei == "" || e.visited.has(lei) {
			continue
		}
		if _, ok := e.pending[lei]; ok {
			continue
		}
		p := &pendingFetch{done: make(chan struct{})}
		e.pending[lei] = p
		e.pool.Go(func() error {
			defer close(p.done)
			p.node, p.children = e.fetch(ctx, lei)
			return nil
		})
	}
}

// fetch reads the attributes and direct children of lei.
func (e *expansion) fetch(ctx context.Context, lei string) (*Node, []entities.Ref) {
	node := e.describe(ctx, lei)
	children, err := e.reg.DirectChildren(ctx, lei)
	if err != nil && !errors.IsNotFound(err) {
		logging.FromContext(ctx).Warn().Err(err).Str("node", lei).Msg("Direct children lookup failed")
	}
	return node, children
}

// describe fetches the attributes for a node, falling back to placeholders.
func (e *expansion) describe(ctx context.Context, lei string) *Node {
	node := &Node{
		LEI:     lei,
		Name:    lei,
		AltID:   entities.Unknown,
		Country: entities.Unknown,
	}
	rec, err := e.reg.Entity(ctx, lei)
	if err != nil || rec == nil {
		if err != nil && !errors.IsNotFound(err) {
			logging.FromContext(ctx).Warn().Err(err).Str("node", lei).Msg("Entity lookup failed")
		}
		return node
	}
	if name := rec.Name(); !entities.IsBlank(name) {
		node.Name = name
	}
	node.AltID = rec.AltID()
	node.Country = rec.Country()
	return node
}

// reconcile attaches entities from the ultimate-children listing that the
// direct-children expansion did not reach. The first placement of an LEI wins;
// later duplicates are dropped. Any listing failure ends the pass.
func (b *Builder) reconcile(ctx context.Context, tree *Tree) {
	root := tree.Root
	logger := logging.FromContext(ctx)

	listing, err := b.reg.UltimateChildren(ctx, root.LEI)
	if err != nil {
		if !errors.IsNotFound(err) {
			logger.Warn().Err(err).Msg("Ultimate children lookup failed, skipping reconciliation")
		}
		return
	}

	present := LEIs(root)
	for _, ref := range listing {
		if ctx.Err() != nil {
			logger.Debug().Err(ctx.Err()).Msg("Reconciliation interrupted")
			return
		}
		ref.LEI = entities.NormalizeLEI(ref.LEI)
		if ref.LEI == "" {
			continue
		}
		if _, ok := present[ref.LEI]; ok {
			continue
		}

		parent := b.attachmentPoint(ctx, root, ref.LEI)
		leaf := newLeaf(ref)
		parent.Children = append(parent.Children, leaf)
		present[ref.LEI] = struct{}{}

		a := Attachment{
			LEI:       leaf.LEI,
			Name:      leaf.Name,
			ParentLEI: parent.LEI,
			UnderRoot: parent == root,
		}
		tree.Reconciled = append(tree.Reconciled, a)
		logger.Debug().Str("node", a.LEI).Str("parent", a.ParentLEI).Msg("Reconciled missing entity")
		for _, fn := range b.onAttach {
			fn(a)
		}
	}
}

// attachmentPoint returns the node a missing entity belongs under: its reported
// direct parent when that parent is in the tree and is not the root, else the root.
func (b *Builder) attachmentPoint(ctx context.Context, root *Node, lei string) *Node {
	parent, err := b.reg.DirectParent(ctx, lei)
	if err != nil {
		if !errors.IsNotFound(err) {
			logging.FromContext(ctx).Debug().Err(err).Str("node", lei).Msg("Parent lookup failed, attaching under root")
		}
		return root
	}
	if parent == nil {
		return root
	}
	parentLEI := entities.NormalizeLEI(parent.LEI)
	if parentLEI == "" || parentLEI == root.LEI {
		return root
	}
	if found := Find(root, parentLEI); found != nil {
		return found
	}
	return root
}
