// Package plan holds the in-memory compilation plan built by the strategy
// rewriter: a tree of replaced-steps, each carrying the filters and labels
// absorbed from the host step pipeline. The tree is later handed to the SQL
// builder, which resolves it against the topology into one or more
// SchemaTableTrees.
//
// Replaced-steps live in a flat arena with stable indices (Ref values); the
// host pipeline never holds an owning reference into the tree, only indices,
// so the tree can be cloned or discarded without entangling the pipeline's
// own lifetime.
package plan

import "github.com/gremlinsql/compiler/predicate"

// StepKind tags the original step kind a ReplacedStep stands in for.
type StepKind int

const (
	SourceV StepKind = iota
	SourceE
	OutEdge
	InEdge
	BothEdge
	OutVertex
	InVertex
	PropertyProjection
	Terminal
)

func (k StepKind) String() string {
	switch k {
	case SourceV:
		return "V"
	case SourceE:
		return "E"
	case OutEdge:
		return "out-edge"
	case InEdge:
		return "in-edge"
	case BothEdge:
		return "both-edge"
	case OutVertex:
		return "out-vertex"
	case InVertex:
		return "in-vertex"
	case PropertyProjection:
		return "property"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// IsNavigation reports whether this step kind represents an edge/vertex
// navigation (as opposed to the source step or a property projection).
func (k StepKind) IsNavigation() bool {
	switch k {
	case OutEdge, InEdge, BothEdge, OutVertex, InVertex:
		return true
	}
	return false
}

// Ref is a stable index into a Tree's replaced-step arena.
type Ref int

// NoRef is the sentinel Ref (-1, not the zero value) meaning "no parent"
// (the root) or "no node".
const NoRef Ref = -1

// ReplacedStep is one node of the compilation plan.
type ReplacedStep struct {
	Kind StepKind

	// TypeArgs is the target element class, when the step constrains one
	// (e.g. a property-projection step's declared result type). Empty
	// string means unconstrained.
	TypeArgs string

	// Labels are the target vertex/edge labels this step may navigate to
	// or be restricted to. Empty means unconstrained.
	Labels []string

	// Filters are the HasContainers absorbed into this step, in the order
	// they were folded.
	Filters []predicate.HasContainer

	// TraversalLabels are as()-style labels carried over from folded host
	// steps, to be re-emitted by the result emitter at this path position.
	TraversalLabels []string

	// Depth is the distance from the source step. The source step has
	// Depth 0; every other step has Depth > 0.
	Depth int

	// IsSource is true only for the first (root) step of the tree.
	IsSource bool

	// Emits is true if this step yields elements into the traverser output
	// (as opposed to being purely structural, e.g. an absorbed identity).
	Emits bool
}

func (s ReplacedStep) clone() ReplacedStep {
	s.Labels = append([]string(nil), s.Labels...)
	s.Filters = append([]predicate.HasContainer(nil), s.Filters...)
	s.TraversalLabels = append([]string(nil), s.TraversalLabels...)
	return s
}

// Tree is the replaced-step plan built by the strategy rewriter. The root
// (Ref 0) is always the source replaced-step.
type Tree struct {
	nodes    []ReplacedStep
	parent   []Ref
	children [][]Ref
	cursor   Ref
}

// NewTree returns an empty tree. The first call to AddReplaced establishes
// the root.
func NewTree() *Tree {
	return &Tree{cursor: NoRef}
}

// Root returns the ref of the source replaced-step, or NoRef if the tree is
// empty.
func (t *Tree) Root() Ref {
	if len(t.nodes) == 0 {
		return NoRef
	}
	return 0
}

// Len returns the number of replaced-steps in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

// Cursor returns the current insertion cursor: new calls to AddReplaced
// append as a child of this ref.
func (t *Tree) Cursor() Ref { return t.cursor }

// SetCursor repositions the insertion cursor, e.g. to introduce branching
// by returning to an earlier node before adding a sibling subtree.
func (t *Tree) SetCursor(r Ref) { t.cursor = r }

// Get returns a pointer to the replaced-step at ref. Callers must not retain
// the pointer across a later AddReplaced, which may reallocate the arena.
func (t *Tree) Get(r Ref) *ReplacedStep {
	return &t.nodes[r]
}

// Parent returns the parent of ref, or NoRef if ref is the root.
func (t *Tree) Parent(r Ref) Ref { return t.parent[r] }

// Children returns the direct children of ref, in insertion order.
func (t *Tree) Children(r Ref) []Ref { return t.children[r] }

// AddReplaced appends a replaced-step as a child of the current cursor and
// advances the cursor to it. The first call establishes the root and forces
// IsSource=true and Depth=0 on it; every later call gets IsSource=false and
// Depth one more than its parent's. No call is rejected.
func (t *Tree) AddReplaced(step ReplacedStep) Ref {
	r := Ref(len(t.nodes))
	if len(t.nodes) == 0 {
		step.IsSource = true
		step.Depth = 0
		t.nodes = append(t.nodes, step)
		t.parent = append(t.parent, NoRef)
		t.children = append(t.children, nil)
		t.cursor = r
		return r
	}
	parent := t.cursor
	step.IsSource = false
	step.Depth = t.nodes[parent].Depth + 1
	t.nodes = append(t.nodes, step)
	t.parent = append(t.parent, parent)
	t.children = append(t.children, nil)
	t.children[parent] = append(t.children[parent], r)
	t.cursor = r
	return r
}

// AddFilter appends absorbed filters to a step's list.
func (t *Tree) AddFilter(r Ref, containers ...predicate.HasContainer) {
	t.nodes[r].Filters = append(t.nodes[r].Filters, containers...)
}

// AddLabel records a traversal-label that was originally on a folded host
// step, so the result emitter can re-attach it at the correct path
// position.
func (t *Tree) AddLabel(r Ref, label string) {
	t.nodes[r].TraversalLabels = append(t.nodes[r].TraversalLabels, label)
}

// Visit is called once per node during WalkDepthFirst, in pre-order.
type Visit func(r Ref, step *ReplacedStep, parent Ref)

// WalkDepthFirst visits every node of the tree in depth-first, pre-order,
// insertion order among siblings — the order the SQL builder projects
// columns in.
func (t *Tree) WalkDepthFirst(visit Visit) {
	if len(t.nodes) == 0 {
		return
	}
	var walk func(r Ref)
	walk = func(r Ref) {
		visit(r, &t.nodes[r], t.parent[r])
		for _, c := range t.children[r] {
			walk(c)
		}
	}
	walk(0)
}

// Clone deep-copies the tree so that mutating the clone (e.g. during SQL
// resolution, which may narrow filters per concrete table) never aliases
// the original plan still owned by the compiled source step.
func (t *Tree) Clone() *Tree {
	out := &Tree{
		nodes:    make([]ReplacedStep, len(t.nodes)),
		parent:   append([]Ref(nil), t.parent...),
		children: make([][]Ref, len(t.children)),
		cursor:   t.cursor,
	}
	for i, n := range t.nodes {
		out.nodes[i] = n.clone()
	}
	for i, c := range t.children {
		out.children[i] = append([]Ref(nil), c...)
	}
	return out
}
