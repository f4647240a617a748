package sqlbuild

import (
	"errors"
	"fmt"

	"github.com/gremlinsql/compiler/dialect"
	"github.com/gremlinsql/compiler/predicate"
)

// ErrJoinLimitExceeded is returned by Build when a SchemaTableTree's join
// count exceeds the dialect's limit and its root has fewer than two child
// subtrees to cleave apart. Splitting happens only at the root: a branch
// point deeper in the tree is not used, so a tree whose root has a single
// child (a linear navigation chain, or one that branches only further down)
// is rejected once it is over the limit. Splitting below the root would
// require binding one statement's result ids into a second statement's
// parameters at execution time, which falls outside sqlbuild's
// build-time-only contract (see the Open Question resolution in DESIGN.md);
// such trees are a DialectRejection, not a structural bug.
var ErrJoinLimitExceeded = errors.New("sqlbuild: join limit exceeded and tree has no branch point to split at")

// Options configures statement generation.
type Options struct {
	Dialect                 dialect.Dialect
	MaxJoinsPerStatement    int // 0 means use Dialect.MaxJoinsPerSelect()
	TempTableThreshold      int // 0 disables scratch-table materialization
	IgnoreLabelOptimization bool
}

func (o Options) maxJoins() int {
	if o.MaxJoinsPerStatement > 0 {
		return o.MaxJoinsPerStatement
	}
	return o.Dialect.MaxJoinsPerSelect()
}

// Statement pairs a generated Select with the AliasMap needed to reverse
// its column aliases back into (nodeIndex, column) pairs, and, when the
// originating tree was split, the alias both halves share for merging.
type Statement struct {
	Select     *Select
	Aliases    *AliasMap
	Tree       *SchemaTableTree // the exact node-indexed tree AliasMap.Resolve's NodeIndex refers into
	MergeAlias string           // non-empty only when part of a split partition set
}

// Result is the full output of compiling a resolved replaced-step tree into
// executable SQL: one statement per disjoint SchemaTableTree Resolve
// produced, further split if any individual tree exceeds the dialect's join
// ceiling.
type Result struct {
	Statements []*Statement

	// IsForMultipleQueries is true whenever more than one statement was
	// produced, whether from label-polymorphic resolution (Resolve
	// returning several trees) or from splitting a single oversized tree.
	// Callers must re-impose any requested ordering in memory when true.
	IsForMultipleQueries bool

	// MayQueryDuringBuild is always false in this implementation: building
	// never opens a connection. Scratch tables implied by membership
	// predicates whose list reaches tempTableThreshold are only recorded on
	// Select.ScratchTables; no package in this module creates or drops them.
	MayQueryDuringBuild bool
}

// Build projects every resolved SchemaTableTree into one or more SQL
// statements.
func Build(trees []*SchemaTableTree, opts Options) (*Result, error) {
	var statements []*Statement
	for i, t := range trees {
		joinKey := "__joinkey"
		if i > 0 {
			joinKey = fmt.Sprintf("__joinkey_%d", i)
		}
		parts, err := buildTree(t, opts, "", joinKey)
		if err != nil {
			return nil, err
		}
		statements = append(statements, parts...)
	}
	return &Result{
		Statements:           statements,
		IsForMultipleQueries: len(statements) > 1,
		MayQueryDuringBuild:  false,
	}, nil
}

func buildTree(t *SchemaTableTree, opts Options, mergeAlias, joinKey string) ([]*Statement, error) {
	joins := len(t.Nodes) - 1
	limit := opts.maxJoins()
	if joins <= limit {
		st, err := buildStatement(t, opts, mergeAlias)
		if err != nil {
			return nil, err
		}
		return []*Statement{st}, nil
	}

	a, b, err := splitAtDeepestBranch(t)
	if err != nil {
		return nil, fmt.Errorf("%w: tree has %d joins, limit is %d", err, joins, limit)
	}
	if mergeAlias == "" {
		mergeAlias = joinKey
	}
	left, err := buildTree(a, opts, mergeAlias, joinKey)
	if err != nil {
		return nil, err
	}
	right, err := buildTree(b, opts, mergeAlias, joinKey)
	if err != nil {
		return nil, err
	}
	return append(left, right...), nil
}

// splitAtDeepestBranch cleaves a SchemaTableTree at the root's largest
// child subtree (despite its name, it never splits below the root): one
// partition keeps the root and every other subtree, the other is a fresh
// root (re-selecting only its primary key, under the shared join-key alias)
// carrying just the chosen subtree. This mirrors,
// in reverse, the teacher's Optimizer.optimizeIntersect merge-by-tagNode
// logic in graph/sql/optimizer.go: where that code merges two Selects
// sharing a tag column into one, this splits one Select into two sharing a
// synthesized join-key column.
func splitAtDeepestBranch(t *SchemaTableTree) (*SchemaTableTree, *SchemaTableTree, error) {
	root := t.Nodes[0]
	rootChildren := directChildren(t, 0)
	if len(rootChildren) < 2 {
		return nil, nil, ErrJoinLimitExceeded
	}

	biggest, biggestSize := -1, -1
	for _, idx := range rootChildren {
		size := subtreeSize(t, idx)
		if size > biggestSize {
			biggest, biggestSize = idx, size
		}
	}

	branchNodes := subtreeIndices(t, biggest)
	branchSet := make(map[int]bool, len(branchNodes))
	for _, i := range branchNodes {
		branchSet[i] = true
	}

	a := &SchemaTableTree{Nodes: []*SchemaNode{copyNode(root, -1)}}
	remap := map[int]int{0: 0}
	for i, n := range t.Nodes {
		if i == 0 || branchSet[i] {
			continue
		}
		remap[i] = len(a.Nodes)
		a.Nodes = append(a.Nodes, copyNode(n, remap[n.Parent]))
	}

	bRoot := copyNode(root, -1)
	bRoot.Filters = nil
	bRoot.TraversalLabels = nil
	bRoot.Emits = false
	b := &SchemaTableTree{Nodes: []*SchemaNode{bRoot}}
	bRemap := map[int]int{0: 0}
	for _, i := range branchNodes {
		n := t.Nodes[i]
		bRemap[i] = len(b.Nodes)
		b.Nodes = append(b.Nodes, copyNode(n, bRemap[n.Parent]))
	}

	return a, b, nil
}

func directChildren(t *SchemaTableTree, parent int) []int {
	var out []int
	for i, n := range t.Nodes {
		if n.Parent == parent {
			out = append(out, i)
		}
	}
	return out
}

func subtreeIndices(t *SchemaTableTree, root int) []int {
	out := []int{root}
	for _, c := range directChildren(t, root) {
		out = append(out, subtreeIndices(t, c)...)
	}
	return out
}

func subtreeSize(t *SchemaTableTree, root int) int {
	return len(subtreeIndices(t, root))
}

func copyNode(n *SchemaNode, newParent int) *SchemaNode {
	cp := *n
	cp.Parent = newParent
	cp.Filters = append([]predicate.HasContainer(nil), n.Filters...)
	cp.TraversalLabels = append([]string(nil), n.TraversalLabels...)
	return &cp
}

// classifyFilters groups a node's flat absorbed-filter list back into
// foldable shapes. ReplacedStep.Filters concatenates the containers of
// every folded host filter step in absorption order without recording the
// step boundaries between them, so whole-list classification is tried
// first (the common case: one absorbed filter step per node, as in every
// seed scenario of §8); a list that doesn't classify as a single shape
// falls back to one-container-at-a-time classification, which recovers
// every comparison, membership, and text shape but cannot recover a
// range or exterior shape split across two separately-absorbed filter
// steps on the same node.
func classifyFilters(filters []predicate.HasContainer) []predicate.Shape {
	if shape, ok := predicate.Classify(filters); ok {
		return []predicate.Shape{shape}
	}
	var shapes []predicate.Shape
	for _, f := range filters {
		if shape, ok := predicate.Classify([]predicate.HasContainer{f}); ok {
			shapes = append(shapes, shape)
		}
	}
	return shapes
}

// buildStatement renders a single (unsplit) SchemaTableTree into a Select,
// assigning table and column aliases per the alias discipline of §4.4.
func buildStatement(t *SchemaTableTree, opts Options, mergeAlias string) (*Statement, error) {
	limit := dialect.IdentifierLimit(opts.Dialect)
	aliases := NewAliasMap(limit)
	sel := &Select{}

	tableAliases := make([]string, len(t.Nodes))
	for i := range t.Nodes {
		tableAliases[i] = fmt.Sprintf("t%d", i)
	}

	scratchSeq := 0
	scratchName := func() string {
		scratchSeq++
		return fmt.Sprintf("scratch_%d", scratchSeq)
	}

	for i, n := range t.Nodes {
		alias := tableAliases[i]
		n.Alias = alias
		table := Table{Schema: n.Table.Schema, Name: n.Table.Table, Alias: alias}

		if i == 0 {
			sel.From = table
			pkAlias := aliases.Alloc(i, n.Table.PrimaryKey)
			sel.Fields = append(sel.Fields, Field{Table: alias, Name: n.Table.PrimaryKey, Alias: pkAlias})
			if mergeAlias != "" {
				sel.Fields[len(sel.Fields)-1].Alias = mergeAlias
				aliases.byAlias[mergeAlias] = AliasRef{NodeIndex: i, Column: n.Table.PrimaryKey}
			}
		} else {
			parentAlias := tableAliases[n.Parent]
			join := JoinClause{Table: table, LeftTable: parentAlias}
			if n.IsEdge {
				parentPK := t.Nodes[n.Parent].Table.PrimaryKey
				join.LeftField = parentPK
				join.RightField = n.Table.ForeignKey
			} else {
				join.LeftField = n.OppositeForeignKey
				join.RightField = n.Table.PrimaryKey
			}
			sel.Joins = append(sel.Joins, join)

			colAlias := aliases.Alloc(i, n.Table.PrimaryKey)
			sel.Fields = append(sel.Fields, Field{Table: alias, Name: n.Table.PrimaryKey, Alias: colAlias})
		}

		// Every column a filter on this node references is a property the
		// traversal actually touched; project it alongside the primary key
		// so the emitter can decode it into Element.Properties (§4.5 step 1).
		projected := map[string]bool{n.Table.PrimaryKey: true}
		for _, f := range n.Filters {
			if projected[f.Key] {
				continue
			}
			projected[f.Key] = true
			propAlias := aliases.Alloc(i, f.Key)
			sel.Fields = append(sel.Fields, Field{Table: alias, Name: f.Key, Alias: propAlias})
		}

		for _, shape := range classifyFilters(n.Filters) {
			cond, err := projectShape(sel, alias, shape, opts.Dialect, opts.TempTableThreshold, scratchName)
			if err != nil {
				return nil, err
			}
			sel.Where = append(sel.Where, cond)
		}
	}

	return &Statement{Select: sel, Aliases: aliases, Tree: t, MergeAlias: mergeAlias}, nil
}
