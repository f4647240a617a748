package sqlbuild

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gremlinsql/compiler/dialect"
	"github.com/gremlinsql/compiler/plan"
	"github.com/gremlinsql/compiler/predicate"
	"github.com/gremlinsql/compiler/topology"
)

func personCatalog() *topology.MemCatalog {
	cat := topology.NewMemCatalog()
	cat.AddVertexTable("person", topology.SchemaTable{Schema: "public", Table: "V_person", PrimaryKey: "id"})
	cat.AddEdgeTable("knows", "person", "person", topology.SchemaTable{Schema: "public", Table: "E_knows"})
	return cat
}

// Seed scenario (a): g.V().has('name','marko').
func TestBuildSingleComparison(t *testing.T) {
	cat := personCatalog()
	tree := plan.NewTree()
	root := tree.AddReplaced(plan.ReplacedStep{Kind: plan.SourceV, Labels: []string{"person"}, Emits: true})
	tree.AddFilter(root, predicate.HasContainer{Key: "name", Op: predicate.OpEQ, Value: "marko"})

	trees, err := Resolve(context.Background(), tree, cat, false)
	require.NoError(t, err)
	require.Len(t, trees, 1)

	result, err := Build(trees, Options{Dialect: dialect.Postgres{}})
	require.NoError(t, err)
	require.Len(t, result.Statements, 1)
	assert.False(t, result.IsForMultipleQueries)
	assert.False(t, result.MayQueryDuringBuild)

	sel := result.Statements[0].Select
	b := NewBuilder(dialect.Postgres{})
	sql := sel.SQL(b)
	assert.Contains(t, sql, `FROM public.V_person AS t0`)
	assert.Contains(t, sql, `WHERE`)
	assert.Contains(t, sql, `"name" = $1`)
	assert.Equal(t, []interface{}{"marko"}, sel.Params)
}

// Seed scenario (b): half-open range folds into a compound AND.
func TestBuildHalfOpenRange(t *testing.T) {
	cat := personCatalog()
	tree := plan.NewTree()
	root := tree.AddReplaced(plan.ReplacedStep{Kind: plan.SourceV, Labels: []string{"person"}, Emits: true})
	tree.AddFilter(root,
		predicate.HasContainer{Key: "age", Op: predicate.OpGTE, Value: 29},
		predicate.HasContainer{Key: "age", Op: predicate.OpLT, Value: 35},
	)

	trees, err := Resolve(context.Background(), tree, cat, false)
	require.NoError(t, err)
	result, err := Build(trees, Options{Dialect: dialect.Postgres{}})
	require.NoError(t, err)

	b := NewBuilder(dialect.Postgres{})
	sql := result.Statements[0].Select.SQL(b)
	assert.Contains(t, sql, `t0."age" >= $1 AND t0."age" < $2`)
}

// Seed scenario (d): V -> out(knows) -> V yields two INNER JOINs.
func TestBuildNavigationChain(t *testing.T) {
	cat := personCatalog()
	tree := plan.NewTree()
	root := tree.AddReplaced(plan.ReplacedStep{Kind: plan.SourceV, Labels: []string{"person"}, Emits: true})
	tree.AddFilter(root, predicate.HasContainer{Key: "name", Op: predicate.OpEQ, Value: "marko"})
	edge := tree.AddReplaced(plan.ReplacedStep{Kind: plan.OutEdge, Labels: []string{"knows"}})
	vertex := tree.AddReplaced(plan.ReplacedStep{Kind: plan.OutVertex, Labels: []string{"person"}, Emits: true})
	tree.AddFilter(vertex, predicate.HasContainer{Key: "age", Op: predicate.OpGT, Value: 30})
	_ = edge

	trees, err := Resolve(context.Background(), tree, cat, false)
	require.NoError(t, err)
	require.Len(t, trees, 1)
	require.Len(t, trees[0].Nodes, 3)

	result, err := Build(trees, Options{Dialect: dialect.Postgres{}})
	require.NoError(t, err)
	require.Len(t, result.Statements, 1)

	sel := result.Statements[0].Select
	b := NewBuilder(dialect.Postgres{})
	sql := sel.SQL(b)
	assert.Equal(t, 2, len(sel.Joins))
	assert.Contains(t, sql, `INNER JOIN public.E_knows AS t1 ON t0."id" = t1."from_id"`)
	assert.Contains(t, sql, `INNER JOIN public.V_person AS t2 ON t1."to_id" = t2."id"`)
}

func TestAliasUniqueness(t *testing.T) {
	cat := personCatalog()
	tree := plan.NewTree()
	root := tree.AddReplaced(plan.ReplacedStep{Kind: plan.SourceV, Labels: []string{"person"}, Emits: true})
	tree.AddReplaced(plan.ReplacedStep{Kind: plan.OutEdge, Labels: []string{"knows"}})
	tree.AddReplaced(plan.ReplacedStep{Kind: plan.OutVertex, Labels: []string{"person"}, Emits: true})
	_ = root

	trees, err := Resolve(context.Background(), tree, cat, false)
	require.NoError(t, err)
	result, err := Build(trees, Options{Dialect: dialect.Postgres{}})
	require.NoError(t, err)

	st := result.Statements[0]
	seen := map[string]bool{}
	for _, f := range st.Select.Fields {
		assert.False(t, seen[f.Alias], "duplicate alias %q", f.Alias)
		seen[f.Alias] = true
		_, ok := st.Aliases.Resolve(f.Alias)
		assert.True(t, ok)
	}
}

func TestBuildSplitsAtBranchWhenOverJoinLimit(t *testing.T) {
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

	trees, err := Resolve(context.Background(), tree, cat, false)
	require.NoError(t, err)
	require.Len(t, trees, 1)
	require.Len(t, trees[0].Nodes, 5) // root + 2*(edge,vertex)

	result, err := Build(trees, Options{Dialect: dialect.Postgres{}, MaxJoinsPerStatement: 2})
	require.NoError(t, err)
	require.True(t, result.IsForMultipleQueries)
	require.Len(t, result.Statements, 2)

	for _, st := range result.Statements {
		assert.Equal(t, "__joinkey", st.MergeAlias)
		b := NewBuilder(dialect.Postgres{})
		sql := st.Select.SQL(b)
		assert.Contains(t, sql, "__joinkey")
		assert.LessOrEqual(t, len(st.Select.Joins), 2)
	}
}

func TestResolveUnknownLabelFails(t *testing.T) {
	cat := personCatalog()
	tree := plan.NewTree()
	tree.AddReplaced(plan.ReplacedStep{Kind: plan.SourceV, Labels: []string{"nonexistent"}, Emits: true})

	_, err := Resolve(context.Background(), tree, cat, false)
	require.Error(t, err)
}
