package hierarchy

import "github.com/agentstation/leimap/pkg/constants"

// Option configures a Builder.
type Option func(*Builder)

// AttachFunc is called for every node the reconciliation pass adds to a tree.
type AttachFunc func(Attachment)

// WithConcurrency fetches the records of up to n upcoming nodes in parallel.
// Placement still follows sequential pre-order, so the tree is the same as
// without the option. Values below 2 keep the default sequential expansion.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		if n > constants.MaxConcurrentExpansions {
			n = constants.MaxConcurrentExpansions
		}
		b.concurrency = n
	}
}

// WithAttachFunc registers a callback for reconciled nodes.
func WithAttachFunc(fn AttachFunc) Option {
	return func(b *Builder) {
		if fn != nil {
			b.onAttach = append(b.onAttach, fn)
		}
	}
}
