package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gremlinsql/compiler/predicate"
)

func TestAddReplacedEstablishesRoot(t *testing.T) {
	tr := NewTree()
	root := tr.AddReplaced(ReplacedStep{Kind: SourceV})
	require.Equal(t, Ref(0), root)
	step := tr.Get(root)
	assert.True(t, step.IsSource)
	assert.Equal(t, 0, step.Depth)
	assert.Equal(t, NoRef, tr.Parent(root))
}

func TestAddReplacedChildIncrementsDepth(t *testing.T) {
	tr := NewTree()
	root := tr.AddReplaced(ReplacedStep{Kind: SourceV})
	child := tr.AddReplaced(ReplacedStep{Kind: OutEdge})
	assert.Equal(t, 1, tr.Get(child).Depth)
	assert.Equal(t, root, tr.Parent(child))
	assert.Equal(t, []Ref{child}, tr.Children(root))
}

func TestAddFilterAndLabel(t *testing.T) {
	tr := NewTree()
	root := tr.AddReplaced(ReplacedStep{Kind: SourceV})
	tr.AddFilter(root, predicate.HasContainer{Key: "name", Op: predicate.OpEQ, Value: "marko"})
	tr.AddLabel(root, "a")
	step := tr.Get(root)
	require.Len(t, step.Filters, 1)
	assert.Equal(t, "name", step.Filters[0].Key)
	assert.Equal(t, []string{"a"}, step.TraversalLabels)
}

func TestWalkDepthFirstOrder(t *testing.T) {
	tr := NewTree()
	root := tr.AddReplaced(ReplacedStep{Kind: SourceV})
	mid := tr.AddReplaced(ReplacedStep{Kind: OutEdge})
	tr.AddReplaced(ReplacedStep{Kind: OutVertex})
	tr.SetCursor(root)
	tr.AddReplaced(ReplacedStep{Kind: InEdge})

	var order []StepKind
	tr.WalkDepthFirst(func(r Ref, step *ReplacedStep, parent Ref) {
		order = append(order, step.Kind)
	})
	assert.Equal(t, []StepKind{SourceV, OutEdge, OutVertex, InEdge}, order)
	assert.Equal(t, 1, tr.Get(mid).Depth)
}

func TestCloneIsIndependent(t *testing.T) {
	tr := NewTree()
	root := tr.AddReplaced(ReplacedStep{Kind: SourceV})
	tr.AddFilter(root, predicate.HasContainer{Key: "name", Op: predicate.OpEQ, Value: "marko"})

	clone := tr.Clone()
	clone.AddFilter(clone.Root(), predicate.HasContainer{Key: "age", Op: predicate.OpGT, Value: 30})

	assert.Len(t, tr.Get(root).Filters, 1)
	assert.Len(t, clone.Get(clone.Root()).Filters, 2)
}

func TestMonotonicDepthAlongPath(t *testing.T) {
	tr := NewTree()
	tr.AddReplaced(ReplacedStep{Kind: SourceV})
	tr.AddReplaced(ReplacedStep{Kind: OutEdge})
	leaf := tr.AddReplaced(ReplacedStep{Kind: OutVertex})

	depth := -1
	for r := leaf; r != NoRef; r = tr.Parent(r) {
		d := tr.Get(r).Depth
		if depth != -1 {
			assert.Less(t, d, depth)
		}
		depth = d
	}
}
