package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/leimap/pkg/entities"
	"github.com/agentstation/leimap/pkg/errors"
	"github.com/agentstation/leimap/pkg/hierarchy"
)

func sampleTree() *hierarchy.Tree {
	return &hierarchy.Tree{
		QueryLEI: "B",
		Root: &hierarchy.Node{
			LEI: "ROOT", Name: "Root Co", AltID: "1", Country: "US",
			Children: []*hierarchy.Node{
				{LEI: "A", Name: "A Co", AltID: "N/A", Country: "US"},
				{LEI: "B", Name: "B Co", AltID: "2", Country: "DE", Children: []*hierarchy.Node{
					{LEI: "C", Name: "C Co", AltID: "N/A", Country: "N/A", Reconciled: true},
				}},
			},
		},
	}
}

func sampleMatches() []entities.Match {
	return []entities.Match{
		{Entity: "3M COMPANY", LEI: "LUZQVYP4VS22CLWDAR65", Score: 1},
		{Entity: "Apple Inc.", LEI: entities.LEINotFound, Score: 0},
	}
}

func render(t *testing.T, f Formatter, data any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, data))
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"tree", FormatTree, false},
		{"TABLE", FormatTable, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"markdown", FormatMarkdown, false},
		{"", "", false},
		{"wide", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.True(t, errors.IsValidationError(err), tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestTreeFormatter(t *testing.T) {
	plain := render(t, NewFormatter(FormatTree, true), sampleTree())
	assert.Equal(t, sampleTree().Text(), plain)
	assert.NotContains(t, plain, "\033[")

	colored := render(t, NewFormatter(FormatTree, false), sampleTree())
	lines := strings.Split(colored, "\n")
	assert.Equal(t, colorRed+"ULTIMATE PARENT: Root Co (ROOT, S&P: 1)"+colorReset, lines[0])
	assert.NotContains(t, lines[1], colorGreen)
	assert.Contains(t, lines[2], colorGreen+"B Co (B, S&P: 2)"+colorReset)
	assert.Contains(t, colored, "Total entities: 4")
}

func TestTreeFormatterFallsBackToTable(t *testing.T) {
	out := render(t, NewFormatter(FormatTree, true), sampleMatches())
	assert.Contains(t, out, "LUZQVYP4VS22CLWDAR65")
	assert.Contains(t, out, "1.000")
}

func TestTableFormatter(t *testing.T) {
	f := NewFormatter(FormatTable, true)

	out := render(t, f, sampleMatches())
	assert.Contains(t, out, "3M COMPANY")
	assert.Contains(t, out, entities.LEINotFound)

	out = render(t, f, sampleTree())
	assert.Contains(t, out, "query_match")
	assert.Contains(t, out, "(reconciled)")
	assert.True(t, strings.HasSuffix(out, "Total entities: 4\n"))

	out = render(t, f, entities.Company{LEI: "ROOT", LegalName: "Root Co"})
	assert.Contains(t, out, "Root Co")

	out = render(t, f, map[string]int{"count": 1})
	assert.JSONEq(t, `{"count": 1}`, out)
}

func TestComparison(t *testing.T) {
	data := Comparison{
		{Target: "3M", Matches: sampleMatches()[:1]},
		{Target: "Nobody"},
	}.TableData()

	require.Len(t, data.Rows, 2)
	assert.Equal(t, []string{"3M", "1", "3M COMPANY", "LUZQVYP4VS22CLWDAR65", "1.000"}, data.Rows[0])
	assert.Equal(t, "no matches", data.Rows[1][2])
}

func TestJSONAndYAML(t *testing.T) {
	out := render(t, NewFormatter(FormatJSON, true), sampleTree())
	var decoded hierarchy.Tree
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 4, decoded.Count())

	out = render(t, NewFormatter(FormatYAML, true), sampleMatches())
	assert.Contains(t, out, "lei: LUZQVYP4VS22CLWDAR65")
}

func TestMarkdownFormatter(t *testing.T) {
	f := NewFormatter(FormatMarkdown, true)

	out := render(t, f, sampleTree())
	assert.Contains(t, out, "## Ownership hierarchy of Root Co")
	assert.Contains(t, out, "- **Root Co (ROOT, S&P: 1)** (ultimate parent)")
	assert.Contains(t, out, "  - **B Co (B, S&P: 2)** (query match)")
	assert.Contains(t, out, "    - C Co (C, S&P: N/A)")
	assert.Contains(t, out, "Total entities: 4")

	out = render(t, f, sampleMatches())
	assert.Contains(t, out, "| 3M COMPANY")
}
