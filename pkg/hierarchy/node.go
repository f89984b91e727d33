package hierarchy

import (
	"iter"

	"github.com/agentstation/leimap/pkg/entities"
)

// Node is one entity in an ownership tree. Children are owned by their parent
// node and kept in the order the registry returned them.
type Node struct {
	LEI        string  `json:"lei" yaml:"lei"`
	Name       string  `json:"name" yaml:"name"`
	AltID      string  `json:"spid" yaml:"spid"`
	Country    string  `json:"country" yaml:"country"`
	Reconciled bool    `json:"reconciled,omitempty" yaml:"reconciled,omitempty"`
	Children   []*Node `json:"children" yaml:"children"`
}

// Tree is a finished hierarchy rooted at the ultimate parent.
type Tree struct {
	Root *Node `json:"root" yaml:"root"`

	// QueryLEI is the entity the build was started from.
	QueryLEI string `json:"original_query_lei" yaml:"original_query_lei"`

	// Reconciled lists the nodes recovered from the ultimate-children listing.
	Reconciled []Attachment `json:"reconciled,omitempty" yaml:"reconciled,omitempty"`
}

// Attachment describes where the reconciliation pass placed a missing entity.
type Attachment struct {
	LEI       string `json:"lei" yaml:"lei"`
	Name      string `json:"name" yaml:"name"`
	ParentLEI string `json:"parent_lei" yaml:"parent_lei"`
	UnderRoot bool   `json:"under_root" yaml:"under_root"`
}

func newLeaf(ref entities.Ref) *Node {
	name := ref.Name
	if name == "" {
		name = ref.LEI
	}
	return &Node{
		LEI:        ref.LEI,
		Name:       name,
		AltID:      entities.Unknown,
		Country:    entities.Unknown,
		Reconciled: true,
	}
}

// UltimateParent returns the LEI at the root of the tree.
func (t *Tree) UltimateParent() string {
	if t == nil || t.Root == nil {
		return ""
	}
	return t.Root.LEI
}

// Count returns the number of entities in the tree.
func (t *Tree) Count() int {
	if t == nil {
		return 0
	}
	return Count(t.Root)
}

// Count returns 1 plus the size of every child subtree. A nil node counts as 0.
func Count(n *Node) int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += Count(c)
	}
	return total
}

// Walk yields every node with its depth in depth-first pre-order.
func Walk(n *Node) iter.Seq2[int, *Node] {
	return func(yield func(int, *Node) bool) {
		walk(n, 0, yield)
	}
}

func walk(n *Node, depth int, yield func(int, *Node) bool) bool {
	if n == nil {
		return true
	}
	if !yield(depth, n) {
		return false
	}
	for _, c := range n.Children {
		if !walk(c, depth+1, yield) {
			return false
		}
	}
	return true
}

// LEIs collects the identifiers present under n, n included.
func LEIs(n *Node) map[string]struct{} {
	set := make(map[string]struct{})
	for _, node := range Walk(n) {
		set[node.LEI] = struct{}{}
	}
	return set
}

// Find returns the first node in pre-order whose LEI matches, or nil.
func Find(n *Node, lei string) *Node {
	for _, node := range Walk(n) {
		if node.LEI == lei {
			return node
		}
	}
	return nil
}
