package strategy

import (
	"github.com/gremlinsql/compiler/plan"
	"github.com/gremlinsql/compiler/predicate"
)

// CompiledSource is the folded form of a source step: the original source
// step plus the replaced-step tree its eligible prefix was absorbed into.
// Downstream-facing per §6: GetReplacedSteps/GetReplacedStepTree are
// read-only diagnostics for later strategies and for the `compile`
// sub-command.
type CompiledSource struct {
	tree *plan.Tree
}

// GetReplacedStepTree returns the full replaced-step tree.
func (c *CompiledSource) GetReplacedStepTree() *plan.Tree { return c.tree }

// GetReplacedSteps returns every replaced-step in depth-first order.
func (c *CompiledSource) GetReplacedSteps() []plan.ReplacedStep {
	var out []plan.ReplacedStep
	c.tree.WalkDepthFirst(func(_ plan.Ref, step *plan.ReplacedStep, _ plan.Ref) {
		out = append(out, *step)
	})
	return out
}

var navKindToPlanKind = map[Kind]plan.StepKind{
	KindOutEdge:   plan.OutEdge,
	KindInEdge:    plan.InEdge,
	KindBothEdge:  plan.BothEdge,
	KindOutVertex: plan.OutVertex,
	KindInVertex:  plan.InVertex,
}

// InstallStrategies applies the rewriter once to pipeline, folding its
// eligible prefix (source step, absorbed filters, absorbed navigation
// steps) into a single compiled source step. It reports whether any
// folding occurred. Per Testable Property 1 this operation is idempotent
// by construction: a pipeline whose step 0 is already KindCompiledSource
// has no KindSource to fold, so a second call always returns changed=false
// without needing to loop to a fixpoint.
func InstallStrategies(p *Pipeline, graphID string) (changed bool, err error) {
	if p.Len() == 0 {
		return false, nil
	}
	source := p.At(0)
	if source.Kind != KindSource {
		return false, nil
	}
	if source.GraphID != graphID {
		return false, nil
	}

	tree := plan.NewTree()
	planKind := plan.SourceV
	if source.Source == SourceEdge {
		planKind = plan.SourceE
	}
	tree.AddReplaced(plan.ReplacedStep{
		Kind:            planKind,
		Labels:          append([]string(nil), source.NavLabels...),
		TraversalLabels: append([]string(nil), source.Labels...),
		Emits:           true,
	})

	cursor := 1
	folded := false
	work := p.Clone()

	for cursor < work.Len() {
		absorbedFilter := absorbAdjacentFilters(work, tree, tree.Cursor(), &cursor)
		folded = folded || absorbedFilter

		if cursor >= work.Len() {
			break
		}
		step := work.At(cursor)
		if !step.Kind.IsNavigation() {
			break
		}
		if downstreamBlocked(work, cursor) {
			break
		}

		newRef := tree.AddReplaced(plan.ReplacedStep{
			Kind:            navKindToPlanKind[step.Kind],
			Labels:          append([]string(nil), step.NavLabels...),
			TraversalLabels: append([]string(nil), step.Labels...),
			Emits:           true,
		})
		tree.SetCursor(newRef)
		work.RemoveAt(cursor)
		folded = true
		// cursor stays put: the next step slides into this index.
	}

	if !folded {
		return false, nil
	}

	compiled := Step{
		Kind:     KindCompiledSource,
		GraphID:  graphID,
		Compiled: &CompiledSource{tree: tree},
	}
	work.Set(0, compiled)
	*p = *work
	return true, nil
}

// absorbAdjacentFilters repeatedly folds foldable filter steps and skips
// over identity steps at the current cursor, per §4.3 step 3a. It returns
// whether at least one filter step was absorbed.
func absorbAdjacentFilters(p *Pipeline, tree *plan.Tree, node plan.Ref, cursor *int) bool {
	absorbed := false
	for *cursor < p.Len() {
		step := p.At(*cursor)
		switch step.Kind {
		case KindIdentity:
			*cursor++
			continue
		case KindFilter:
			if _, ok := predicate.Classify(step.Containers); !ok {
				return absorbed
			}
			tree.AddFilter(node, step.Containers...)
			for _, label := range step.Labels {
				tree.AddLabel(node, label)
			}
			if len(step.Labels) > 0 {
				// Filter-step-with-labels rule: leave an identity step in
				// the filter step's position so label-consumers downstream
				// still find a step to bind to.
				p.Set(*cursor, Step{Kind: KindIdentity, Labels: step.Labels})
				*cursor++
			} else {
				p.RemoveAt(*cursor)
			}
			absorbed = true
		default:
			return absorbed
		}
	}
	return absorbed
}

// downstreamBlocked reports whether any step at or after index forbids
// folding the navigation step at index (see §4.3 "downstream blockers").
func downstreamBlocked(p *Pipeline, index int) bool {
	for i := index; i < p.Len(); i++ {
		if p.At(i).Kind.isDownstreamBlocker() {
			return true
		}
	}
	return false
}
