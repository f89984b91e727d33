package hierarchy

import (
	"fmt"
	"iter"
	"strings"

	"github.com/agentstation/leimap/pkg/errors"
)

// Role is the display role of a line.
type Role int

const (
	// RolePlain is any node other than the root or the query match.
	RolePlain Role = iota
	// RoleUltimateParent marks the root of the tree.
	RoleUltimateParent
	// RoleQueryMatch marks the entity the build was started from.
	RoleQueryMatch
)

// String returns the role name used in serialized output.
func (r Role) String() string {
	switch r {
	case RoleUltimateParent:
		return "ultimate_parent"
	case RoleQueryMatch:
		return "query_match"
	default:
		return "plain"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ultimate_parent":
		*r = RoleUltimateParent
	case "query_match":
		*r = RoleQueryMatch
	case "plain":
		*r = RolePlain
	default:
		return errors.NewValidationError("role", string(text), "must be one of: ultimate_parent, query_match, plain")
	}
	return nil
}

// Line is one rendered node.
type Line struct {
	Depth      int    `json:"depth" yaml:"depth"`
	LEI        string `json:"lei" yaml:"lei"`
	Name       string `json:"name" yaml:"name"`
	AltID      string `json:"spid" yaml:"spid"`
	Country    string `json:"country" yaml:"country"`
	Role       Role   `json:"role" yaml:"role"`
	Reconciled bool   `json:"reconciled,omitempty" yaml:"reconciled,omitempty"`
}

// Lines yields one Line per node in depth-first pre-order.
// The sequence is lazy and may be ranged over more than once.
func (t *Tree) Lines() iter.Seq[Line] {
	return func(yield func(Line) bool) {
		if t == nil || t.Root == nil {
			return
		}
		for depth, n := range Walk(t.Root) {
			line := Line{
				Depth:      depth,
				LEI:        n.LEI,
				Name:       n.Name,
				AltID:      n.AltID,
				Country:    n.Country,
				Reconciled: n.Reconciled,
				Role:       t.roleOf(depth, n),
			}
			if !yield(line) {
				return
			}
		}
	}
}

func (t *Tree) roleOf(depth int, n *Node) Role {
	switch {
	case depth == 0:
		return RoleUltimateParent
	case n.LEI == t.QueryLEI:
		return RoleQueryMatch
	default:
		return RolePlain
	}
}

// Label is the node text without indentation: name, LEI and S&P identifier.
func (l Line) Label() string {
	return fmt.Sprintf("%s (%s, S&P: %s)", l.Name, l.LEI, l.AltID)
}

// Text renders the line without color.
func (l Line) Text() string {
	if l.Role == RoleUltimateParent {
		return "ULTIMATE PARENT: " + l.Label()
	}
	return l.Prefix() + l.Label()
}

// Prefix is the indentation and branch marker placed before a child label.
func (l Line) Prefix() string {
	if l.Depth == 0 {
		return ""
	}
	return strings.Repeat("    ", l.Depth) + "├── "
}

// Text renders the whole tree as plain text followed by the entity total.
func (t *Tree) Text() string {
	var sb strings.Builder
	for line := range t.Lines() {
		sb.WriteString(line.Text())
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "\nTotal entities: %d\n", t.Count())
	return sb.String()
}
