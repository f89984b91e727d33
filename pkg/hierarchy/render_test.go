package hierarchy_test

import (
	"context"
	"encoding/json"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestCount(t *testing.T) {
	assert.Equal(t, 0, hierarchy.Count(nil))
	assert.Equal(t, 1, hierarchy.Count(&hierarchy.Node{LEI: "X"}))
	assert.Equal(t, 4, sampleTree().Count())

	var empty *hierarchy.Tree
	assert.Equal(t, 0, empty.Count())
}

func TestLines(t *testing.T) {
	tree := sampleTree()
	lines := slices.Collect(tree.Lines())
	require.Len(t, lines, 4)

	want := []struct {
		lei   string
		depth int
		role  hierarchy.Role
	}{
		{"ROOT", 0, hierarchy.RoleUltimateParent},
		{"A", 1, hierarchy.RolePlain},
		{"B", 1, hierarchy.RoleQueryMatch},
		{"C", 2, hierarchy.RolePlain},
	}
	for i, w := range want {
		assert.Equal(t, w.lei, lines[i].LEI)
		assert.Equal(t, w.depth, lines[i].Depth)
		assert.Equal(t, w.role, lines[i].Role, lines[i].LEI)
	}
	assert.True(t, lines[3].Reconciled)

	// Restartable.
	assert.Equal(t, lines, slices.Collect(tree.Lines()))
}

func TestLinesRootIsQuery(t *testing.T) {
	tree := sampleTree()
	tree.QueryLEI = "ROOT"
	for line := range tree.Lines() {
		assert.NotEqual(t, hierarchy.RoleQueryMatch, line.Role)
	}
}

func TestLinesStopEarly(t *testing.T) {
	n := 0
	for range sampleTree().Lines() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestLineText(t *testing.T) {
	lines := slices.Collect(sampleTree().Lines())
	assert.Equal(t, "ULTIMATE PARENT: Root Co (ROOT, S&P: 1)", lines[0].Text())
	assert.Equal(t, "    ├── A Co (A, S&P: N/A)", lines[1].Text())
	assert.Equal(t, "        ├── C Co (C, S&P: N/A)", lines[3].Text())
}

func TestTreeText(t *testing.T) {
	want := "ULTIMATE PARENT: Root Co (ROOT, S&P: 1)\n" +
		"    ├── A Co (A, S&P: N/A)\n" +
		"    ├── B Co (B, S&P: 2)\n" +
		"        ├── C Co (C, S&P: N/A)\n" +
		"\nTotal entities: 4\n"
	assert.Equal(t, want, sampleTree().Text())
}

func TestRoleText(t *testing.T) {
	b, err := hierarchy.RoleQueryMatch.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "query_match", string(b))
	assert.Equal(t, "ultimate_parent", hierarchy.RoleUltimateParent.String())
	assert.Equal(t, "plain", hierarchy.RolePlain.String())
}

func TestRoleRoundTrip(t *testing.T) {
	for _, role := range []hierarchy.Role{hierarchy.RolePlain, hierarchy.RoleUltimateParent, hierarchy.RoleQueryMatch} {
		text, err := role.MarshalText()
		require.NoError(t, err)

		var got hierarchy.Role
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, role, got)
	}

	var r hierarchy.Role
	err := r.UnmarshalText([]byte("root"))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestLinesJSONRoundTrip(t *testing.T) {
	want := slices.Collect(sampleTree().Lines())
	data, err := json.Marshal(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"role":"ultimate_parent"`)

	var got []hierarchy.Line
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want, got)
}

func TestWalkStops(t *testing.T) {
	var visited []string
	for _, n := range hierarchy.Walk(sampleTree().Root) {
		visited = append(visited, n.LEI)
		if n.LEI == "A" {
			break
		}
	}
	assert.Equal(t, []string{"ROOT", "A"}, visited)
	assert.Nil(t, hierarchy.Find(sampleTree().Root, "Z"))
}

func TestBuildThenRender(t *testing.T) {
	reg := newFakeRegistry().entity("ROOT", "US").entity("A", "US").link("ROOT", "A")
	tree, err := hierarchy.NewBuilder(reg).Build(context.Background(), "A")
	require.NoError(t, err)

	lines := slices.Collect(tree.Lines())
	require.Len(t, lines, 2)
	assert.Equal(t, hierarchy.RoleQueryMatch, lines[1].Role)
	assert.Equal(t, "    ├── A Inc (A, S&P: sp-A)", lines[1].Text())
}
