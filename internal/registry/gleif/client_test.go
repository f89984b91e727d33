package gleif_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/leimap/internal/metrics"
	"github.com/agentstation/leimap/internal/registry/gleif"
	"github.com/agentstation/leimap/internal/registry/testhelper"
	"github.com/agentstation/leimap/internal/transport"
	"github.com/agentstation/leimap/pkg/entities"
	"github.com/agentstation/leimap/pkg/errors"
	"github.com/agentstation/leimap/pkg/hierarchy"
)

const lei3M = "LUZQVYP4VS22CLWDAR65"

// The client must satisfy the builder's lookups.
var _ hierarchy.Registry = (*gleif.Client)(nil)

func newClient(srv *testhelper.Server, opts ...gleif.Option) *gleif.Client {
	opts = append([]gleif.Option{
		gleif.WithBaseURL(srv.URL),
		gleif.WithTransport(transport.WithRateLimit(0, 0)),
	}, opts...)
	return gleif.New(opts...)
}

func TestEntity(t *testing.T) {
	srv := testhelper.NewServer(t, testhelper.Route{Path: "/lei-records/" + lei3M, Fixture: "lei_record.json"})
	c := newClient(srv)

	rec, err := c.Entity(context.Background(), lei3M)
	require.NoError(t, err)

	assert.Equal(t, lei3M, rec.LEI)
	assert.Equal(t, "3M COMPANY", rec.Name())
	assert.Equal(t, "US", rec.Country())
	assert.Equal(t, "257750", rec.AltID())
	assert.Equal(t, "ACTIVE", rec.Status)
	assert.Equal(t, "XTIQ", rec.LegalForm)
	assert.Equal(t, "US-DE", rec.Jurisdiction)
	assert.Equal(t, "C/O Corporation Service Company", rec.LegalAddress.FirstLine())
	assert.Equal(t, "Saint Paul", rec.HeadquartersAddress.City)
	assert.Equal(t, "EVK05KS7XY1DEII3R011", rec.Registration.ManagingLOU)
	assert.Equal(t, []string{"application/vnd.api+json"}, srv.AcceptHeaders())

	_, err = c.Entity(context.Background(), "MISSING")
	assert.True(t, errors.IsNotFound(err))
}

func TestDirectParent(t *testing.T) {
	srv := testhelper.NewServer(t,
		testhelper.Route{Path: "/lei-records/549300AAAAAAAAAAAA01/direct-parent", Fixture: "direct_parent.json"},
		testhelper.Route{Path: "/lei-records/BROKEN/direct-parent", Status: http.StatusBadGateway},
	)
	c := newClient(srv)
	ctx := context.Background()

	parent, err := c.DirectParent(ctx, "549300AAAAAAAAAAAA01")
	require.NoError(t, err)
	require.NotNil(t, parent)
	assert.Equal(t, entities.Ref{LEI: lei3M, Name: "3M COMPANY"}, *parent)

	none, err := c.DirectParent(ctx, lei3M)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = c.DirectParent(ctx, "BROKEN")
	assert.True(t, errors.IsProviderUnavailable(err))
}

func TestDirectChildrenPaginates(t *testing.T) {
	path := "/lei-records/" + lei3M + "/direct-children"
	srv := testhelper.NewServer(t,
		testhelper.Route{Path: path, Query: "page[size]=2", Fixture: "direct_children_page1.json"},
		testhelper.Route{Path: path, Query: "page[number]=2&page[size]=2", Fixture: "direct_children_page2.json"},
	)
	c := newClient(srv, gleif.WithPageSize(2))

	children, err := c.DirectChildren(context.Background(), lei3M)
	require.NoError(t, err)
	assert.Equal(t, []entities.Ref{
		{LEI: "549300AAAAAAAAAAAA01", Name: "3M Innovative Properties Company"},
		{LEI: "549300AAAAAAAAAAAA02", Name: "3M Deutschland GmbH"},
		{LEI: "549300AAAAAAAAAAAA03", Name: "3M Japan Limited"},
	}, children)
	assert.Equal(t, 2, srv.Hits(path))
}

func TestDirectChildrenNone(t *testing.T) {
	srv := testhelper.NewServer(t)
	children, err := newClient(srv).DirectChildren(context.Background(), "LEAF")
	require.NoError(t, err)
	assert.NotNil(t, children)
	assert.Empty(t, children)
}

func TestDirectChildrenMaxPages(t *testing.T) {
	path := "/lei-records/" + lei3M + "/direct-children"
	srv := testhelper.NewServer(t,
		testhelper.Route{Path: path, Query: "page[size]=2", Fixture: "direct_children_page1.json"},
	)
	children, err := newClient(srv, gleif.WithPageSize(2), gleif.WithMaxPages(1)).DirectChildren(context.Background(), lei3M)
	require.NoError(t, err)
	assert.Len(t, children, 2)
	assert.Equal(t, 1, srv.Hits(path))
}

func TestUltimateChildren(t *testing.T) {
	srv := testhelper.NewServer(t,
		testhelper.Route{Path: "/lei-records/" + lei3M + "/ultimate-children", Query: "page[size]=200", Fixture: "ultimate_children.json"},
		testhelper.Route{Path: "/lei-records/DOWN/ultimate-children", Status: http.StatusInternalServerError},
	)
	c := newClient(srv)

	kids, err := c.UltimateChildren(context.Background(), lei3M)
	require.NoError(t, err)
	require.Len(t, kids, 2)
	assert.Equal(t, "549300AAAAAAAAAAAA04", kids[1].LEI)

	_, err = c.UltimateChildren(context.Background(), "DOWN")
	assert.Error(t, err)
}

func TestCompletions(t *testing.T) {
	srv := testhelper.NewServer(t,
		testhelper.Route{Path: "/autocompletions", Query: "field=fulltext&q=3m+co", Fixture: "autocompletions.json"},
		testhelper.Route{Path: "/fuzzycompletions", Query: "field=fulltext&q=3M+COMPANY", Fixture: "fuzzycompletions.json"},
	)
	c := newClient(srv)
	ctx := context.Background()

	names, err := c.Autocomplete(ctx, "3m co")
	require.NoError(t, err)
	assert.Equal(t, []string{"3M COMPANY", "3M Deutschland GmbH"}, names)

	items, err := c.FuzzyComplete(ctx, "3M COMPANY")
	require.NoError(t, err)
	assert.Equal(t, []entities.Completion{
		{Value: "3M UNITEK", LEI: "549300UNITEK00000001"},
		{Value: "3M COMPANY", LEI: lei3M},
		{Value: "3M"},
	}, items)
}

func TestMetricsRecorded(t *testing.T) {
	srv := testhelper.NewServer(t, testhelper.Route{Path: "/lei-records/" + lei3M, Fixture: "lei_record.json"})
	m := metrics.New()
	c := newClient(srv, gleif.WithMetrics(m))

	_, _ = c.Entity(context.Background(), lei3M)
	_, _ = c.DirectParent(context.Background(), lei3M)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("lei-record", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("direct-parent", "404")))
}

func TestBuildAgainstFixtures(t *testing.T) {
	base := "/lei-records/" + lei3M
	srv := testhelper.NewServer(t,
		testhelper.Route{Path: base, Fixture: "lei_record.json"},
		testhelper.Route{Path: base + "/direct-children", Query: "page[size]=2", Fixture: "direct_children_page1.json"},
		testhelper.Route{Path: base + "/direct-children", Query: "page[number]=2&page[size]=2", Fixture: "direct_children_page2.json"},
		testhelper.Route{Path: base + "/ultimate-children", Fixture: "ultimate_children.json"},
		testhelper.Route{Path: "/lei-records/549300AAAAAAAAAAAA02/direct-parent", Fixture: "direct_parent.json"},
	)
	c := newClient(srv, gleif.WithPageSize(2))

	tree, err := hierarchy.NewBuilder(c).Build(context.Background(), "549300AAAAAAAAAAAA02")
	require.NoError(t, err)

	assert.Equal(t, lei3M, tree.UltimateParent())
	assert.Equal(t, "3M COMPANY", tree.Root.Name)
	assert.Equal(t, 5, tree.Count())
	require.Len(t, tree.Reconciled, 1)
	assert.Equal(t, "549300AAAAAAAAAAAA04", tree.Reconciled[0].LEI)
	assert.True(t, tree.Reconciled[0].UnderRoot)

	// Children without records fall back to their LEI as name.
	child := hierarchy.Find(tree.Root, "549300AAAAAAAAAAAA03")
	require.NotNil(t, child)
	assert.Equal(t, "549300AAAAAAAAAAAA03", child.Name)
}
