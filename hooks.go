package leimap

import (
	"sync"

	"github.com/agentstation/leimap/pkg/hierarchy"
)

// Hook function types for hierarchy events
type (
	// HierarchyBuiltHook is called after every successful hierarchy build
	HierarchyBuiltHook func(tree *hierarchy.Tree)

	// NodeReconciledHook is called for each node the reconciliation pass adds
	NodeReconciledHook func(attachment hierarchy.Attachment)
)

// Hooks provides event callback registration.
type Hooks interface {
	// OnHierarchyBuilt registers a callback for completed hierarchies
	OnHierarchyBuilt(HierarchyBuiltHook)

	// OnNodeReconciled registers a callback for reconciled nodes
	OnNodeReconciled(NodeReconciledHook)
}

// hooks manages event callbacks
type hooks struct {
	mu               sync.RWMutex
	onHierarchyBuilt []HierarchyBuiltHook
	onNodeReconciled []NodeReconciledHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnHierarchyBuilt implements Hooks.
func (c *client) OnHierarchyBuilt(fn HierarchyBuiltHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onHierarchyBuilt = append(c.hooks.onHierarchyBuilt, fn)
}

// OnNodeReconciled implements Hooks.
func (c *client) OnNodeReconciled(fn NodeReconciledHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onNodeReconciled = append(c.hooks.onNodeReconciled, fn)
}

func (h *hooks) triggerBuilt(tree *hierarchy.Tree) {
	h.mu.RLock()
	fns := h.onHierarchyBuilt
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(tree)
	}
}

func (h *hooks) triggerReconciled(a hierarchy.Attachment) {
	h.mu.RLock()
	fns := h.onNodeReconciled
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(a)
	}
}
