// Package hierarchy reconstructs corporate ownership trees from a legal-entity
// registry.
//
// A build starts from any entity, climbs the reported direct-parent chain to
// the ultimate parent, expands direct children depth-first from there and
// finally reconciles the tree against the registry's flattened
// ultimate-children listing so that subsidiaries missing from the
// direct-children graph still appear.
//
// Registry data is treated as unreliable. Reported cycles are cut with a
// per-build visited set, missing entities degrade to placeholder attributes
// and failed lookups never abort a build. The only error Build returns is for
// a blank starting LEI.
//
//	b := hierarchy.NewBuilder(registry, hierarchy.WithConcurrency(4))
//	tree, err := b.Build(ctx, "LUZQVYP4VS22CLWDAR65")
//	for line := range tree.Lines() {
//		fmt.Println(line.Text())
//	}
//	fmt.Println("Total entities:", tree.Count())
package hierarchy
