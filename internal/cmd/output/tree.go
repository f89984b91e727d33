package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/leimap/pkg/hierarchy"
)

const (
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorReset = "\033[0m"
)

// TreeFormatter prints hierarchies as indented trees. The ultimate parent is
// red and the queried entity green when Color is set. Other data is printed
// as a table.
type TreeFormatter struct {
	Color bool
}

// Format implements the Formatter interface.
func (f *TreeFormatter) Format(w io.Writer, data any) error {
	var tree *hierarchy.Tree
	switch v := data.(type) {
	case *hierarchy.Tree:
		tree = v
	case Hierarchy:
		tree = v.Tree
	default:
		return (&TableFormatter{}).Format(w, data)
	}

	var sb strings.Builder
	for line := range tree.Lines() {
		sb.WriteString(f.line(line))
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "\nTotal entities: %d\n", tree.Count())

	_, err := io.WriteString(w, sb.String())
	return err
}

func (f *TreeFormatter) line(l hierarchy.Line) string {
	if !f.Color {
		return l.Text()
	}
	switch l.Role {
	case hierarchy.RoleUltimateParent:
		return colorRed + l.Text() + colorReset
	case hierarchy.RoleQueryMatch:
		return l.Prefix() + colorGreen + l.Label() + colorReset
	default:
		return l.Text()
	}
}
