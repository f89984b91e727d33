package output

import (
	"io"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/leimap/pkg/hierarchy"
)

// MarkdownFormatter writes GitHub-flavored Markdown. Hierarchies become
// nested bullet lists; tabular data becomes a table.
type MarkdownFormatter struct{}

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(w io.Writer, data any) error {
	doc := md.NewMarkdown(w)

	switch v := data.(type) {
	case *hierarchy.Tree:
		f.tree(doc, v)
	case Hierarchy:
		f.tree(doc, v.Tree)
	default:
		return f.other(w, doc, data)
	}
	return doc.Build()
}

func (f *MarkdownFormatter) other(w io.Writer, doc *md.Markdown, data any) error {
	switch v := tabular(data).(type) {
	case Data:
		f.table(doc, v)
	case Tabular:
		f.table(doc, v.TableData())
	default:
		return (&JSONFormatter{Indent: "  "}).Format(w, data)
	}
	return doc.Build()
}

func (f *MarkdownFormatter) tree(doc *md.Markdown, tree *hierarchy.Tree) {
	if tree.Root != nil {
		doc.H2("Ownership hierarchy of " + tree.Root.Name).LF()
	}
	for line := range tree.Lines() {
		label := line.Label()
		switch line.Role {
		case hierarchy.RoleUltimateParent:
			label = md.Bold(label) + " (ultimate parent)"
		case hierarchy.RoleQueryMatch:
			label = md.Bold(label) + " (query match)"
		}
		doc.PlainText(strings.Repeat("  ", line.Depth) + "- " + label)
	}
	doc.LF().PlainTextf("Total entities: %d", tree.Count())
}

func (f *MarkdownFormatter) table(doc *md.Markdown, data Data) {
	doc.Table(md.TableSet{
		Header: data.Headers,
		Rows:   data.Rows,
	})
	if data.Footer != "" {
		doc.LF().PlainText(data.Footer)
	}
}
