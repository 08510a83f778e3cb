package propagate

import (
	"testing"

	"github.com/leapstack-labs/docprop/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Run_NilGraph(t *testing.T) {
	eng := New(Config{})
	report, err := eng.Run(nil)
	require.ErrorIs(t, err, ErrGraphUnavailable)
	assert.Nil(t, report)
}

func TestEngine_Run_DirectiveResolved(t *testing.T) {
	g := newStaticGraph()
	raw := g.source("raw", "customers", col("id", "Raw id"))
	stg := g.model("stg_customers", []string{raw}, col("user_id", "Unique customer identifier"))
	g.model("dim_customers", []string{stg},
		col("customer_id", EncodeDirective("stg_customers", "user_id")),
	)

	report, err := New(Config{Logger: testutil.NewTestLogger(t)}).Run(g)
	require.NoError(t, err)

	e, ok := entryFor(report, "dim_customers", "customer_id")
	require.True(t, ok)
	assert.Equal(t, StatusResolved, e.Status)
	assert.Equal(t, "Unique customer identifier", e.Description)
	assert.Equal(t, "stg_customers", e.SourceEntity)
	assert.Equal(t, "user_id", e.SourceColumn)
	assert.Equal(t, "models/stg_customers.sql", e.SourceFile)
	assert.Equal(t, "models/dim_customers.sql", e.TargetFile)
}

func TestEngine_Run_Ambiguous(t *testing.T) {
	g := newStaticGraph()
	orders := g.model("orders", nil, col("status", "Order status"))
	delivery := g.model("delivery", nil, col("status", "Delivery status"))
	g.model("fct_orders", []string{orders, delivery}, col("status", ""))

	report, err := New(Config{}).Run(g)
	require.NoError(t, err)

	e, ok := entryFor(report, "fct_orders", "status")
	require.True(t, ok)
	assert.Equal(t, StatusAmbiguous, e.Status)
	assert.Equal(t, []string{"orders", "delivery"}, e.Candidates, "candidates follow parent order")
	assert.Empty(t, e.Description)
	assert.Empty(t, e.SourceEntity)
	assert.Empty(t, e.SourceColumn)
	assert.Empty(t, e.SourceFile)
	assert.Equal(t, "ambiguous (orders, delivery)", e.StatusLabel())
}

func TestEngine_Run_AmbiguousSharedDisplayName(t *testing.T) {
	g := newStaticGraph()
	g.nodes = append(g.nodes,
		Node{ID: "model.a.x", Name: "x", Type: NodeModel, Columns: []Column{col("status", "A status")}},
		Node{ID: "model.b.x", Name: "x", Type: NodeModel, Columns: []Column{col("status", "B status")}},
	)
	orders := g.model("orders", nil, col("status", "Order status"))
	g.model("fct", []string{"model.a.x", "model.b.x", orders}, col("status", ""))

	report, err := New(Config{}).Run(g)
	require.NoError(t, err)

	e, ok := entryFor(report, "fct", "status")
	require.True(t, ok)
	assert.Equal(t, StatusAmbiguous, e.Status)
	assert.Equal(t, []string{"model.a.x", "model.b.x", "orders"}, e.Candidates)
}

func TestCandidateNames(t *testing.T) {
	matches := []ParentMatch{
		{ParentID: "model.orders", ParentName: "orders"},
		{ParentID: "model.orders", ParentName: "orders"},
		{ParentID: "model.delivery", ParentName: "delivery"},
	}
	assert.Equal(t, []string{"orders", "delivery"}, candidateNames(matches))
}

func TestEngine_Run_NoSource(t *testing.T) {
	g := newStaticGraph()
	orders := g.model("orders", nil, col("order_id", "Order key"))
	g.model("fct_orders", []string{orders}, col("new_metric", ""))

	report, err := New(Config{}).Run(g)
	require.NoError(t, err)

	e, ok := entryFor(report, "fct_orders", "new_metric")
	require.True(t, ok)
	assert.Equal(t, StatusNoSource, e.Status)
	assert.Empty(t, e.Description)
}

func TestEngine_Run_Inherited(t *testing.T) {
	g := newStaticGraph()
	raw := g.source("raw", "orders", col("order_id", "Primary key of the order"))
	g.model("stg_orders", []string{raw}, col("order_id", ""))

	report, err := New(Config{}).Run(g)
	require.NoError(t, err)

	e, ok := entryFor(report, "stg_orders", "order_id")
	require.True(t, ok)
	assert.Equal(t, StatusInherited, e.Status)
	assert.Equal(t, "Primary key of the order", e.Description)
	assert.Equal(t, "raw.orders", e.SourceEntity)
	assert.Equal(t, "order_id", e.SourceColumn)
	assert.Equal(t, "models/sources.yml", e.SourceFile)
}

func TestEngine_Run_AlreadyDocumentedKeepsText(t *testing.T) {
	g := newStaticGraph()
	parent := g.model("a", nil, col("x", "Parent text"))
	text := "  Own text, with trailing space "
	g.model("b", []string{parent}, col("x", text))

	report, err := New(Config{}).Run(g)
	require.NoError(t, err)

	e, ok := entryFor(report, "b", "x")
	require.True(t, ok)
	assert.Equal(t, StatusAlreadyDocumented, e.Status)
	assert.Equal(t, text, e.Description)
	assert.Empty(t, report.Actionable())
}

func TestEngine_Run_OnlyDirectParents(t *testing.T) {
	g := newStaticGraph()
	grand := g.model("grand", nil, col("x", "From grandparent"))
	mid := g.model("mid", []string{grand}, col("x", ""))
	g.model("leaf", []string{mid}, col("x", ""))

	report, err := New(Config{}).Run(g)
	require.NoError(t, err)

	midEntry, _ := entryFor(report, "mid", "x")
	leafEntry, _ := entryFor(report, "leaf", "x")
	assert.Equal(t, StatusInherited, midEntry.Status)
	assert.Equal(t, StatusNoSource, leafEntry.Status, "grandparent text must not flow two hops")
}

func TestEngine_Run_DirectiveParentsDoNotCount(t *testing.T) {
	g := newStaticGraph()
	a := g.model("a", nil, col("x", EncodeDirective("elsewhere", "x")))
	b := g.model("b", nil, col("x", "Real text"))
	g.model("c", []string{a, b}, col("x", ""))

	report, err := New(Config{}).Run(g)
	require.NoError(t, err)

	e, _ := entryFor(report, "c", "x")
	assert.Equal(t, StatusInherited, e.Status, "a directive on a parent is not inheritable text")
	assert.Equal(t, "b", e.SourceEntity)
}

func TestEngine_Run_DanglingParent(t *testing.T) {
	g := newStaticGraph()
	a := g.model("a", nil, col("x", "Text"))
	g.model("b", []string{"model.missing", a}, col("x", ""), col("y", ""))

	logger, rec := testutil.NewRecordingLogger(t)
	report, err := New(Config{Logger: logger}).Run(g)
	require.NoError(t, err)

	x, _ := entryFor(report, "b", "x")
	y, _ := entryFor(report, "b", "y")
	assert.Equal(t, StatusInherited, x.Status)
	assert.Equal(t, StatusNoSource, y.Status)

	parent, ok := rec.Attr("dangling parent reference", "parent")
	require.True(t, ok)
	assert.Equal(t, "model.missing", parent.String())
}

func TestEngine_Run_DuplicateParentIDs(t *testing.T) {
	g := newStaticGraph()
	a := g.model("a", nil, col("x", "Text"))
	g.model("b", []string{a, a}, col("x", ""))

	report, err := New(Config{}).Run(g)
	require.NoError(t, err)

	e, _ := entryFor(report, "b", "x")
	assert.Equal(t, StatusInherited, e.Status, "a repeated parent id is one parent")
}

func TestEngine_Run_RootColumnsNotReported(t *testing.T) {
	g := newStaticGraph()
	g.source("raw", "customers", col("id", ""), col("name", "Name"))

	report, err := New(Config{}).Run(g)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total())
	assert.Equal(t, "inherited=0 resolved=0 ambiguous=0 no_source=0 unresolved=0 already_documented=0", report.Summary())
}

func TestEngine_Run_UnsupportedNodeTypesExcluded(t *testing.T) {
	g := newStaticGraph()
	g.nodes = append(g.nodes, Node{ID: "seed.countries", Name: "countries", Type: NodeSeed,
		Columns: []Column{col("code", "ISO code")}})
	g.model("dim_country", []string{"seed.countries"}, col("code", ""))

	report, err := New(Config{}).Run(g)
	require.NoError(t, err)

	e, _ := entryFor(report, "dim_country", "code")
	assert.Equal(t, StatusNoSource, e.Status, "seeds are not catalog entities")
}

func TestEngine_Run_PartitionAndOrder(t *testing.T) {
	g := mixedGraph()

	report, err := New(Config{}).Run(g)
	require.NoError(t, err)

	// Every column appears exactly once.
	seen := make(map[string]int)
	for _, e := range report.Entries {
		seen[e.Key()]++
		assert.Contains(t, Statuses, e.Status)
	}
	for key, n := range seen {
		assert.Equal(t, 1, n, "column %s classified %d times", key, n)
	}

	sum := 0
	for _, s := range Statuses {
		sum += report.Counts[s]
	}
	assert.Equal(t, report.Total(), sum, "status counts partition the columns")
	assert.Equal(t, 10, report.Total())

	// Sorted by entity then column.
	for i := 1; i < len(report.Entries); i++ {
		prev, cur := report.Entries[i-1], report.Entries[i]
		if prev.EntityName == cur.EntityName {
			assert.Less(t, prev.ColumnName, cur.ColumnName)
		} else {
			assert.Less(t, prev.EntityName, cur.EntityName)
		}
	}

	assert.Equal(t, 1, report.Counts[StatusInherited])
	assert.Equal(t, 1, report.Counts[StatusResolved])
	assert.Equal(t, 1, report.Counts[StatusAmbiguous])
	assert.Equal(t, 2, report.Counts[StatusNoSource])
	assert.Equal(t, 2, report.Counts[StatusUnresolved])
	assert.Equal(t, 3, report.Counts[StatusAlreadyDocumented])
	assert.Len(t, report.Actionable(), 7)
	assert.True(t, report.Has(StatusAmbiguous))
}

func TestEngine_Run_Idempotent(t *testing.T) {
	g := mixedGraph()
	eng := New(Config{})

	first, err := eng.Run(g)
	require.NoError(t, err)
	second, err := eng.Run(g)
	require.NoError(t, err)

	assert.Equal(t, first.Counts, second.Counts)
	assert.Equal(t, first.Entries, second.Entries)
}

func TestEngine_Run_FilePathSchemeStripped(t *testing.T) {
	g := newStaticGraph()
	g.nodes = append(g.nodes, Node{
		ID: "model.a", Name: "a", Type: NodeModel,
		FilePath: "file://models/a.sql",
		Columns:  []Column{col("x", "")},
	})

	report, err := New(Config{}).Run(g)
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, "models/a.sql", report.Entries[0].TargetFile)
}

// mixedGraph covers every status at least once.
func mixedGraph() *staticGraph {
	g := newStaticGraph()
	raw := g.source("raw", "customers",
		col("id", "Customer key"),
		col("email", "Contact email"),
	)
	orders := g.model("orders", nil, col("status", "Order status"))
	delivery := g.model("delivery", nil, col("status", "Delivery status"))
	// id is inherited, email is already documented.
	stg := g.model("stg_customers", []string{raw},
		col("id", ""),
		col("email", "Email, lower-cased"),
	)
	g.model("fct_orders", []string{orders, delivery, stg},
		// ambiguous between orders and delivery
		col("status", ""),
		col("new_metric", ""),
		// resolved through the member name of raw.customers
		col("customer_email", EncodeDirective("customers", "email")),
		// compound target, always unresolved
		col("customer_key", EncodeDirective("raw.customers", "id")),
		col("nothing", EncodeDirective("stg_customers", "missing")),
		col("other", ""),
	)
	return g
}
