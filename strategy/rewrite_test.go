package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gremlinsql/compiler/plan"
	"github.com/gremlinsql/compiler/predicate"
)

const testGraph = "g1"

// Seed scenario (a): g.V().has('name','marko').
func TestInstallStrategiesFoldsComparisonFilter(t *testing.T) {
	p := NewPipeline(
		Step{Kind: KindSource, GraphID: testGraph, Source: SourceVertex},
		Step{Kind: KindFilter, Containers: []predicate.HasContainer{{Key: "name", Op: predicate.OpEQ, Value: "marko"}}},
	)

	changed, err := InstallStrategies(p, testGraph)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Equal(t, 1, p.Len())
	require.Equal(t, KindCompiledSource, p.At(0).Kind)

	tree := p.At(0).Compiled.GetReplacedStepTree()
	root := tree.Get(tree.Root())
	require.Len(t, root.Filters, 1)
	assert.Equal(t, "name", root.Filters[0].Key)
}

// Seed scenario (d): V().has('name','marko').out('knows').has('age', gt(30)).
func TestInstallStrategiesFoldsNavigationChain(t *testing.T) {
	p := NewPipeline(
		Step{Kind: KindSource, GraphID: testGraph, Source: SourceVertex},
		Step{Kind: KindFilter, Containers: []predicate.HasContainer{{Key: "name", Op: predicate.OpEQ, Value: "marko"}}},
		Step{Kind: KindOutEdge, NavLabels: []string{"knows"}},
		Step{Kind: KindOutVertex},
		Step{Kind: KindFilter, Containers: []predicate.HasContainer{{Key: "age", Op: predicate.OpGT, Value: 30}}},
	)

	changed, err := InstallStrategies(p, testGraph)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Equal(t, 1, p.Len())

	tree := p.At(0).Compiled.GetReplacedStepTree()
	assert.Equal(t, 3, tree.Len())
	steps := p.At(0).Compiled.GetReplacedSteps()
	assert.Equal(t, plan.SourceV, steps[0].Kind)
	assert.Equal(t, plan.OutEdge, steps[1].Kind)
	assert.Equal(t, plan.OutVertex, steps[2].Kind)
	assert.Len(t, steps[2].Filters, 1)
}

// Testable Property 1: idempotent folding.
func TestInstallStrategiesIsIdempotent(t *testing.T) {
	p := NewPipeline(
		Step{Kind: KindSource, GraphID: testGraph, Source: SourceVertex},
		Step{Kind: KindFilter, Containers: []predicate.HasContainer{{Key: "name", Op: predicate.OpEQ, Value: "marko"}}},
		Step{Kind: KindOutEdge, NavLabels: []string{"knows"}},
		Step{Kind: KindOutVertex},
	)

	changed1, err := InstallStrategies(p, testGraph)
	require.NoError(t, err)
	require.True(t, changed1)

	before := p.Clone()
	changed2, err := InstallStrategies(p, testGraph)
	require.NoError(t, err)
	assert.False(t, changed2)
	assert.Equal(t, before.Len(), p.Len())
}

func TestInstallStrategiesLeavesIdentityForLabeledFilter(t *testing.T) {
	p := NewPipeline(
		Step{Kind: KindSource, GraphID: testGraph, Source: SourceVertex},
		Step{
			Kind:       KindFilter,
			Containers: []predicate.HasContainer{{Key: "name", Op: predicate.OpEQ, Value: "marko"}},
			Labels:     []string{"x"},
		},
	)

	changed, err := InstallStrategies(p, testGraph)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Equal(t, 2, p.Len())
	assert.Equal(t, KindIdentity, p.At(1).Kind)
	assert.Equal(t, []string{"x"}, p.At(1).Labels)

	tree := p.At(0).Compiled.GetReplacedStepTree()
	root := tree.Get(tree.Root())
	assert.Equal(t, []string{"x"}, root.TraversalLabels)
}

func TestInstallStrategiesStopsAtDownstreamBlocker(t *testing.T) {
	p := NewPipeline(
		Step{Kind: KindSource, GraphID: testGraph, Source: SourceVertex},
		Step{Kind: KindOutEdge, NavLabels: []string{"knows"}},
		Step{Kind: KindPathMaterialization},
	)

	changed, err := InstallStrategies(p, testGraph)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, KindSource, p.At(0).Kind)
}

func TestInstallStrategiesIgnoresOtherGraph(t *testing.T) {
	p := NewPipeline(Step{Kind: KindSource, GraphID: "other", Source: SourceVertex})
	changed, err := InstallStrategies(p, testGraph)
	require.NoError(t, err)
	assert.False(t, changed)
}
