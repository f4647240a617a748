// Package strategy rewrites a host step pipeline, folding its
// pushdown-eligible prefix into a single compiled source step carrying a
// replaced-step tree (package plan). Pipeline generalizes the teacher's
// graph/path.Path append-only morphism stack (path.go: `p.stack =
// append(p.stack, someMorphism(...))`) into a mutable, splice-able step
// list, since folding needs to remove and insert steps mid-pipeline rather
// than only ever pushing to the end.
package strategy

import "github.com/gremlinsql/compiler/predicate"

// Kind tags the role a Step plays in a host pipeline.
type Kind int

const (
	KindSource Kind = iota
	KindCompiledSource
	KindFilter
	KindIdentity
	KindOutEdge
	KindInEdge
	KindBothEdge
	KindOutVertex
	KindInVertex
	KindPathMaterialization
	KindTreeMaterialization
	KindNonTrivialOrder
	KindOther
)

func (k Kind) IsNavigation() bool {
	switch k {
	case KindOutEdge, KindInEdge, KindBothEdge, KindOutVertex, KindInVertex:
		return true
	}
	return false
}

func (k Kind) isDownstreamBlocker() bool {
	switch k {
	case KindPathMaterialization, KindTreeMaterialization, KindNonTrivialOrder:
		return true
	}
	return false
}

// SourceKind distinguishes a V()-rooted source step from an E()-rooted one.
type SourceKind int

const (
	SourceVertex SourceKind = iota
	SourceEdge
)

// Step is one element of a host step pipeline.
type Step struct {
	Kind Kind

	// GraphID identifies which graph instance a KindSource step queries;
	// InstallStrategies only folds a pipeline rooted at the graph it was
	// asked to optimize for.
	GraphID string
	Source  SourceKind

	// Containers holds a KindFilter step's has-container clauses.
	Containers []predicate.HasContainer

	// Labels holds the as()-style traversal labels attached to this step,
	// regardless of kind.
	Labels []string

	// NavLabels constrains a navigation step's target vertex/edge labels.
	NavLabels []string

	// Compiled holds the folded replaced-step tree once this step has been
	// rewritten into a KindCompiledSource step.
	Compiled *CompiledSource
}

func (s Step) clone() Step {
	s.Containers = append([]predicate.HasContainer(nil), s.Containers...)
	s.Labels = append([]string(nil), s.Labels...)
	s.NavLabels = append([]string(nil), s.NavLabels...)
	return s
}

// Pipeline is a mutable, ordered list of host steps.
type Pipeline struct {
	steps []Step
}

// NewPipeline returns a Pipeline containing the given steps in order.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: append([]Step(nil), steps...)}
}

// Len returns the number of steps in the pipeline.
func (p *Pipeline) Len() int { return len(p.steps) }

// At returns a copy of the step at index i.
func (p *Pipeline) At(i int) Step { return p.steps[i] }

// Set replaces the step at index i.
func (p *Pipeline) Set(i int, s Step) { p.steps[i] = s }

// Insert splices s into the pipeline at index i, shifting later steps right.
func (p *Pipeline) Insert(i int, s Step) {
	p.steps = append(p.steps, Step{})
	copy(p.steps[i+1:], p.steps[i:])
	p.steps[i] = s
}

// RemoveAt deletes the step at index i, shifting later steps left.
func (p *Pipeline) RemoveAt(i int) {
	p.steps = append(p.steps[:i], p.steps[i+1:]...)
}

// Steps returns the pipeline's steps as a slice; callers must not retain it
// across a mutating call.
func (p *Pipeline) Steps() []Step { return p.steps }

// Clone deep-copies the pipeline.
func (p *Pipeline) Clone() *Pipeline {
	out := make([]Step, len(p.steps))
	for i, s := range p.steps {
		out[i] = s.clone()
	}
	return &Pipeline{steps: out}
}
