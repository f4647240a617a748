package emit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gremlinsql/compiler/dialect"
	"github.com/gremlinsql/compiler/plan"
	"github.com/gremlinsql/compiler/predicate"
	"github.com/gremlinsql/compiler/sqlbuild"
	"github.com/gremlinsql/compiler/topology"
)

func personCatalog() *topology.MemCatalog {
	cat := topology.NewMemCatalog()
	cat.AddVertexTable("person", topology.SchemaTable{Schema: "public", Table: "V_person", PrimaryKey: "id"})
	cat.AddEdgeTable("knows", "person", "person", topology.SchemaTable{Schema: "public", Table: "E_knows"})
	return cat
}

// Seed scenario (d): V.has(name=marko).out(knows).has(age>30). The edge node
// is a pass-through (plain out(), not bothE()) and must not appear in Path.
func TestDrainPartitionDecodesNavigationChain(t *testing.T) {
	cat := personCatalog()
	tree := plan.NewTree()
	root := tree.AddReplaced(plan.ReplacedStep{Kind: plan.SourceV, Labels: []string{"person"}, Emits: true, TraversalLabels: []string{"a"}})
	tree.AddFilter(root, predicate.HasContainer{Key: "name", Op: predicate.OpEQ, Value: "marko"})
	tree.AddReplaced(plan.ReplacedStep{Kind: plan.OutEdge, Labels: []string{"knows"}})
	vertex := tree.AddReplaced(plan.ReplacedStep{Kind: plan.OutVertex, Labels: []string{"person"}, Emits: true})
	tree.AddFilter(vertex, predicate.HasContainer{Key: "age", Op: predicate.OpGT, Value: 30})

	trees, err := sqlbuild.Resolve(context.Background(), tree, cat, false)
	require.NoError(t, err)
	result, err := sqlbuild.Build(trees, sqlbuild.Options{Dialect: dialect.Postgres{}})
	require.NoError(t, err)
	require.Len(t, result.Statements, 1)

	st := result.Statements[0]
	cols := st.Select.Columns()
	// root id+name, edge id (pass-through, dropped during decode), vertex id+age.
	require.Len(t, cols, 5)

	rows := &fakeRows{cols: cols, data: [][]string{{"1", "marko", "99", "2", "31"}}}
	p := &partition{rows: rows, tree: st.Tree, aliases: st.Aliases}

	out, err := drainPartition(p)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].path, 2)
	assert.Equal(t, "1", out[0].path[0].ID)
	assert.Equal(t, "person", out[0].path[0].Label)
	assert.False(t, out[0].path[0].IsEdge)
	assert.Equal(t, "marko", out[0].path[0].Properties["name"])
	assert.Equal(t, []string{"a"}, out[0].labels[0])
	assert.Equal(t, "2", out[0].path[1].ID)
	assert.Equal(t, "person", out[0].path[1].Label)
	assert.Equal(t, "31", out[0].path[1].Properties["age"])
}

func twoBranchResult(t *testing.T) *sqlbuild.Result {
	cat := personCatalog()
	cat.AddVertexTable("tag", topology.SchemaTable{Schema: "public", Table: "V_tag", PrimaryKey: "id"})
	cat.AddEdgeTable("created", "person", "tag", topology.SchemaTable{Schema: "public", Table: "E_created"})

	tree := plan.NewTree()
	root := tree.AddReplaced(plan.ReplacedStep{Kind: plan.SourceV, Labels: []string{"person"}, Emits: true})
	tree.AddReplaced(plan.ReplacedStep{Kind: plan.OutEdge, Labels: []string{"knows"}})
	tree.AddReplaced(plan.ReplacedStep{Kind: plan.OutVertex, Labels: []string{"person"}, Emits: true})
	tree.SetCursor(root)
	tree.AddReplaced(plan.ReplacedStep{Kind: plan.OutEdge, Labels: []string{"created"}})
	tree.AddReplaced(plan.ReplacedStep{Kind: plan.OutVertex, Labels: []string{"tag"}, Emits: true})

	trees, err := sqlbuild.Resolve(context.Background(), tree, cat, false)
	require.NoError(t, err)
	result, err := sqlbuild.Build(trees, sqlbuild.Options{Dialect: dialect.Postgres{}, MaxJoinsPerStatement: 2})
	require.NoError(t, err)
	require.Len(t, result.Statements, 2)
	return result
}

func TestDrainClusterMergesSplitPartitions(t *testing.T) {
	result := twoBranchResult(t)

	// Partition A keeps the root: root(1) -> created(edge 77) -> tag(9).
	colsA := result.Statements[0].Select.Columns()
	rowsA := &fakeRows{cols: colsA, data: [][]string{{"1", "77", "9"}}}
	pA := &partition{rows: rowsA, tree: result.Statements[0].Tree, aliases: result.Statements[0].Aliases, merge: result.Statements[0].MergeAlias}

	// Partition B is the split-off branch: root(1) -> knows(edge 88) -> person(2).
	colsB := result.Statements[1].Select.Columns()
	rowsB := &fakeRows{cols: colsB, data: [][]string{{"1", "88", "2"}}}
	pB := &partition{rows: rowsB, tree: result.Statements[1].Tree, aliases: result.Statements[1].Aliases, merge: result.Statements[1].MergeAlias}

	emits, err := drainCluster([]*partition{pA, pB})
	require.NoError(t, err)
	require.Len(t, emits, 1)

	ids := make([]string, len(emits[0].Path))
	for i, el := range emits[0].Path {
		ids[i] = el.ID
	}
	assert.ElementsMatch(t, []string{"1", "2", "9"}, ids)
}

func TestDrainClusterDropsUnmatchedJoinKeys(t *testing.T) {
	result := twoBranchResult(t)

	colsA := result.Statements[0].Select.Columns()
	rowsA := &fakeRows{cols: colsA, data: [][]string{{"1", "77", "9"}}}
	pA := &partition{rows: rowsA, tree: result.Statements[0].Tree, aliases: result.Statements[0].Aliases, merge: result.Statements[0].MergeAlias}

	colsB := result.Statements[1].Select.Columns()
	rowsB := &fakeRows{cols: colsB, data: [][]string{{"999", "88", "2"}}}
	pB := &partition{rows: rowsB, tree: result.Statements[1].Tree, aliases: result.Statements[1].Aliases, merge: result.Statements[1].MergeAlias}

	emits, err := drainCluster([]*partition{pA, pB})
	require.NoError(t, err)
	assert.Len(t, emits, 0)
}
