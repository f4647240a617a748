package sqlbuild

import (
	"context"
	"errors"
	"fmt"

	"github.com/gremlinsql/compiler/plan"
	"github.com/gremlinsql/compiler/predicate"
	"github.com/gremlinsql/compiler/topology"
)

// ErrLabelNotFound is returned by Resolve when a replaced-step's label
// constraint (or, for an unconstrained root, every registered label) does
// not match any table the topology catalog knows about.
var ErrLabelNotFound = errors.New("sqlbuild: label not found in topology catalog")

// SchemaNode is one node of a SchemaTableTree: a replaced-step bound to a
// concrete schema-qualified table.
type SchemaNode struct {
	Ref    plan.Ref
	Table  topology.SchemaTable
	Parent int // index into the owning tree's Nodes, or -1 for the root
	IsEdge bool
	Dir    topology.Direction

	Filters         []predicate.HasContainer
	TraversalLabels []string
	Emits           bool

	// OppositeForeignKey is set only on a vertex node reached via an edge
	// node: the edge table's column referencing this vertex's PrimaryKey.
	OppositeForeignKey string

	// Alias is assigned by Build; empty until then.
	Alias string
}

// SchemaTableTree is the topology-resolved form of a plan.Tree: the form
// spec.md §3 calls the SQL builder's own resolved plan. Nodes are stored in
// the same depth-first, insertion order as plan.Tree.WalkDepthFirst.
type SchemaTableTree struct {
	Nodes []*SchemaNode
}

// Root returns the tree's root node, or nil if the tree is empty.
func (t *SchemaTableTree) Root() *SchemaNode {
	if len(t.Nodes) == 0 {
		return nil
	}
	return t.Nodes[0]
}

// Children returns the direct children of the node at index i.
func (t *SchemaTableTree) Children(i int) []*SchemaNode {
	var out []*SchemaNode
	for _, n := range t.Nodes {
		if n.Parent == i {
			out = append(out, n)
		}
	}
	return out
}

// resolveCtx threads read-only options through the recursive resolution.
type resolveCtx struct {
	cat                     topology.Catalog
	ignoreLabelOptimization bool
}

// Resolve binds a replaced-step tree against the topology catalog,
// producing every disjoint SchemaTableTree the label polymorphism at the
// root (or at any navigation step) implies. Per §4.4, a single replaced-step
// may expand into multiple SchemaTableTree nodes when its label set matches
// multiple concrete tables; each combination yields its own tree, and thus
// its own statement.
func Resolve(ctx context.Context, tree *plan.Tree, cat topology.Catalog, ignoreLabelOptimization bool) ([]*SchemaTableTree, error) {
	if tree.Root() == plan.NoRef {
		return nil, nil
	}
	rc := &resolveCtx{cat: cat, ignoreLabelOptimization: ignoreLabelOptimization}

	root := tree.Get(tree.Root())
	rootLabels, err := rc.candidateLabels(ctx, root.Labels)
	if err != nil {
		return nil, err
	}

	var out []*SchemaTableTree
	for _, label := range rootLabels {
		st, ok, err := cat.ResolveVertexTable(ctx, label)
		if err != nil {
			return nil, fmt.Errorf("resolve root label %q: %w", label, err)
		}
		if !ok {
			continue
		}
		t := &SchemaTableTree{}
		rootNode := &SchemaNode{
			Ref:             tree.Root(),
			Table:           st,
			Parent:          -1,
			Filters:         root.Filters,
			TraversalLabels: root.TraversalLabels,
			Emits:           root.Emits,
		}
		t.Nodes = append(t.Nodes, rootNode)
		trees, err := rc.resolveChildren(ctx, tree, tree.Root(), t, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, trees...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("resolve: %w: no candidate table for labels %v", ErrLabelNotFound, root.Labels)
	}
	return out, nil
}

// candidateLabels returns the labels to try for a step. An explicit label
// list is used verbatim unless ignoreLabelOptimization is set; when it is
// set, or the list is empty, every label a ListableCatalog enumerates is
// tried. A catalog that is not a ListableCatalog keeps the declared labels,
// or fails when there are none.
func (rc *resolveCtx) candidateLabels(ctx context.Context, declared []string) ([]string, error) {
	if len(declared) > 0 && !rc.ignoreLabelOptimization {
		return declared, nil
	}
	lister, ok := rc.cat.(topology.ListableCatalog)
	if !ok {
		if len(declared) > 0 {
			return declared, nil
		}
		return nil, fmt.Errorf("resolve: %w: no label constraint and catalog does not implement ListableCatalog", ErrLabelNotFound)
	}
	labels, err := lister.VertexLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate vertex labels: %w", err)
	}
	return labels, nil
}

// resolveChildren fans out over parentRef's children in plan-tree order,
// growing base into one tree per combination and cloning it for every
// point of label-polymorphic branching (edge-table fan-out).
func (rc *resolveCtx) resolveChildren(ctx context.Context, tree *plan.Tree, parentRef plan.Ref, base *SchemaTableTree, parentIdx int) ([]*SchemaTableTree, error) {
	children := tree.Children(parentRef)
	if len(children) == 0 {
		return []*SchemaTableTree{base}, nil
	}

	frontier := []*SchemaTableTree{base}
	for _, childRef := range children {
		child := tree.Get(childRef)
		var next []*SchemaTableTree
		for _, t := range frontier {
			grown, err := rc.resolveOneChild(ctx, tree, childRef, child, t, parentIdx)
			if err != nil {
				return nil, err
			}
			next = append(next, grown...)
		}
		frontier = next
	}
	return frontier, nil
}

// resolveOneChild dispatches a plan child to the resolution rule matching
// its kind. OutEdge/InEdge/BothEdge children navigate from parentIdx's
// table; OutVertex/InVertex children never navigate on their own — the
// rewriter (strategy.InstallStrategies) always folds a host out()/in() into
// an OutEdge-or-InEdge step immediately followed by its own OutVertex-or-
// InVertex step, so by the time a Vertex-kind child reaches here the edge
// step ahead of it has already materialized the opposite vertex table at
// parentIdx; this step only completes it.
func (rc *resolveCtx) resolveOneChild(ctx context.Context, tree *plan.Tree, childRef plan.Ref, child *plan.ReplacedStep, base *SchemaTableTree, parentIdx int) ([]*SchemaTableTree, error) {
	if child.Kind == plan.OutVertex || child.Kind == plan.InVertex {
		return rc.resolveVertexEndpoint(ctx, tree, childRef, child, base, parentIdx)
	}
	return rc.resolveEdgeNavigation(ctx, tree, childRef, child, base, parentIdx)
}

// resolveEdgeNavigation binds an OutEdge/InEdge/BothEdge child against the
// catalog's edge tables, cloning base once per label-polymorphic match. A
// directed (non-Both) navigation also materializes the opposite vertex row
// eagerly, since the rewriter's plan shape always chains an OutVertex or
// InVertex step onto it (see resolveVertexEndpoint).
func (rc *resolveCtx) resolveEdgeNavigation(ctx context.Context, tree *plan.Tree, childRef plan.Ref, child *plan.ReplacedStep, base *SchemaTableTree, parentIdx int) ([]*SchemaTableTree, error) {
	parentTable := base.Nodes[parentIdx].Table

	dir := topology.Out
	if child.Kind == plan.InEdge {
		dir = topology.In
	}

	edges, err := rc.cat.EdgeTablesFrom(ctx, parentTable, dir, child.Labels)
	if err != nil {
		return nil, fmt.Errorf("resolve edge from %q: %w", parentTable.QualifiedName(), err)
	}
	if len(edges) == 0 {
		return nil, fmt.Errorf("resolve: %w: no edge table from %q matching labels %v", ErrLabelNotFound, parentTable.QualifiedName(), child.Labels)
	}

	var out []*SchemaTableTree
	for _, edge := range edges {
		clone := cloneTree(base)

		edgeFilters, parentFilters, err := rc.placeFilters(ctx, child.Filters, edge.Edge, parentTable)
		if err != nil {
			return nil, err
		}
		clone.Nodes[parentIdx].Filters = append(clone.Nodes[parentIdx].Filters, parentFilters...)

		edgeIdx := len(clone.Nodes)
		clone.Nodes = append(clone.Nodes, &SchemaNode{
			Ref:             childRef,
			Table:           edge.Edge,
			Parent:          parentIdx,
			IsEdge:          true,
			Dir:             dir,
			Filters:         edgeFilters,
			TraversalLabels: child.TraversalLabels,
			Emits:           child.Emits && child.Kind == plan.BothEdge,
		})

		nextIdx := edgeIdx
		if child.Kind != plan.BothEdge {
			// out/in-edge steps also materialize the opposite endpoint's
			// vertex table as a child node; the following OutVertex/InVertex
			// plan step completes it in resolveVertexEndpoint rather than
			// navigating again.
			vertexIdx := len(clone.Nodes)
			clone.Nodes = append(clone.Nodes, &SchemaNode{
				Ref:                childRef,
				Table:              edge.Opposite,
				Parent:             edgeIdx,
				OppositeForeignKey: edge.Edge.OppositeForeignKey,
			})
			nextIdx = vertexIdx
		}

		grown, err := rc.resolveChildren(ctx, tree, childRef, clone, nextIdx)
		if err != nil {
			return nil, err
		}
		out = append(out, grown...)
	}
	return out, nil
}

// resolveVertexEndpoint completes the vertex row resolveEdgeNavigation
// already materialized at parentIdx: it binds this plan step's label
// constraint (pruning the branch on mismatch rather than erroring, since
// sibling label-polymorphic branches may still match), places its absorbed
// filters and traversal labels onto that same node, and continues resolving
// its own children from there without appending a new node or re-querying
// EdgeTablesFrom.
func (rc *resolveCtx) resolveVertexEndpoint(ctx context.Context, tree *plan.Tree, childRef plan.Ref, child *plan.ReplacedStep, base *SchemaTableTree, parentIdx int) ([]*SchemaTableTree, error) {
	vertex := base.Nodes[parentIdx]
	if len(child.Labels) > 0 && !containsString(child.Labels, vertex.Table.Label) {
		return nil, nil
	}

	clone := cloneTree(base)
	node := clone.Nodes[parentIdx]

	var edgeTable topology.SchemaTable
	if node.Parent >= 0 {
		edgeTable = clone.Nodes[node.Parent].Table
	}
	vertexFilters, edgeFilters, err := rc.placeFilters(ctx, child.Filters, node.Table, edgeTable)
	if err != nil {
		return nil, err
	}
	if node.Parent >= 0 {
		clone.Nodes[node.Parent].Filters = append(clone.Nodes[node.Parent].Filters, edgeFilters...)
	}

	node.Ref = childRef
	node.Filters = vertexFilters
	node.TraversalLabels = append([]string(nil), child.TraversalLabels...)
	node.Emits = child.Emits

	return rc.resolveChildren(ctx, tree, childRef, clone, parentIdx)
}

// placeFilters splits filters between the node whose table naturally
// absorbed them and a fallback node, keeping each filter on whichever
// table the catalog confirms actually has that column (§3/§4.2's "narrowed
// to columns that exist in this table"). When the catalog has no column
// metadata for either table, the filter stays on natural — the topology
// catalog implementation used doesn't model that column, not that the
// filter is misplaced.
func (rc *resolveCtx) placeFilters(ctx context.Context, filters []predicate.HasContainer, natural, fallback topology.SchemaTable) (onNatural, onFallback []predicate.HasContainer, err error) {
	for _, f := range filters {
		_, ok, err := rc.cat.ColumnType(ctx, natural, f.Key)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve: column type for %q on %q: %w", f.Key, natural.QualifiedName(), err)
		}
		if ok || fallback.Table == "" {
			onNatural = append(onNatural, f)
			continue
		}
		_, ok, err = rc.cat.ColumnType(ctx, fallback, f.Key)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve: column type for %q on %q: %w", f.Key, fallback.QualifiedName(), err)
		}
		if ok {
			onFallback = append(onFallback, f)
			continue
		}
		onNatural = append(onNatural, f)
	}
	return onNatural, onFallback, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func cloneTree(t *SchemaTableTree) *SchemaTableTree {
	out := &SchemaTableTree{Nodes: make([]*SchemaNode, len(t.Nodes))}
	for i, n := range t.Nodes {
		cp := *n
		cp.Filters = append([]predicate.HasContainer(nil), n.Filters...)
		cp.TraversalLabels = append([]string(nil), n.TraversalLabels...)
		out.Nodes[i] = &cp
	}
	return out
}
