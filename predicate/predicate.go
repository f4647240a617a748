// Package predicate classifies the filter clauses attached to a single host
// filter step into the foldable shapes the SQL builder knows how to project:
// comparison, half-open range, open range, exterior, membership, and text.
// Any other combination is left for the host interpreter to evaluate.
package predicate

import "fmt"

// Operator is a comparison, membership, range, or text predicate operator
// recognized by the classifier.
type Operator string

const (
	OpEQ Operator = "eq"
	OpNEQ Operator = "neq"
	OpLT  Operator = "lt"
	OpLTE Operator = "lte"
	OpGT  Operator = "gt"
	OpGTE Operator = "gte"

	OpWithin  Operator = "within"
	OpWithout Operator = "without"

	OpContains      Operator = "contains"
	OpNContains     Operator = "nContains"
	OpContainsCIS   Operator = "containsCIS"
	OpNContainsCIS  Operator = "nContainsCIS"
	OpStartsWith    Operator = "startsWith"
	OpNStartsWith   Operator = "nStartsWith"
	OpEndsWith      Operator = "endsWith"
	OpNEndsWith     Operator = "nEndsWith"
)

func (o Operator) isComparison() bool {
	switch o {
	case OpEQ, OpNEQ, OpLT, OpLTE, OpGT, OpGTE:
		return true
	}
	return false
}

func (o Operator) isText() bool {
	switch o {
	case OpContains, OpNContains, OpContainsCIS, OpNContainsCIS,
		OpStartsWith, OpNStartsWith, OpEndsWith, OpNEndsWith:
		return true
	}
	return false
}

// reserved keys are handled structurally by table selection rather than as
// column filters.
const (
	KeyLabel = "label"
	KeyID    = "id"
)

func isReserved(key string) bool {
	return key == KeyLabel || key == KeyID
}

// HasContainer is a single (key, predicate, value) filter clause.
type HasContainer struct {
	Key   string
	Op    Operator
	Value interface{}
}

// Kind tags which foldable shape a Shape value carries.
type Kind int

const (
	KindComparison Kind = iota
	KindHalfOpenRange
	KindOpenRange
	KindExterior
	KindMembership
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindComparison:
		return "comparison"
	case KindHalfOpenRange:
		return "half-open-range"
	case KindOpenRange:
		return "open-range"
	case KindExterior:
		return "exterior"
	case KindMembership:
		return "membership"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Shape is one of the six foldable predicate shapes of §4.1, tagged by Kind
// and carrying the HasContainers it was built from (in original order).
type Shape struct {
	Kind       Kind
	Key        string
	Containers []HasContainer
}

// Classify recognizes the foldable shape of a list of HasContainers attached
// to a single host filter step. It returns ok=false when the combination is
// not foldable and must be left in place by the strategy rewriter.
func Classify(containers []HasContainer) (Shape, bool) {
	switch len(containers) {
	case 1:
		return classifyOne(containers[0])
	case 2:
		return classifyTwo(containers[0], containers[1])
	default:
		return Shape{}, false
	}
}

func classifyOne(c HasContainer) (Shape, bool) {
	switch {
	case c.Op.isComparison():
		return Shape{Kind: KindComparison, Key: c.Key, Containers: []HasContainer{c}}, true
	case (c.Op == OpWithin || c.Op == OpWithout) && !isReserved(c.Key):
		return Shape{Kind: KindMembership, Key: c.Key, Containers: []HasContainer{c}}, true
	case c.Op.isText() && !isReserved(c.Key):
		return Shape{Kind: KindText, Key: c.Key, Containers: []HasContainer{c}}, true
	default:
		return Shape{}, false
	}
}

// classifyTwo recognizes half-open range (>=, <), open range (>, <), and
// exterior (disjunction of < and > on the same key). A (<, >) pair on one
// key is always read as exterior; no marker distinguishes it from a
// conjunction of the two comparisons.
func classifyTwo(a, b HasContainer) (Shape, bool) {
	if a.Key != b.Key {
		return Shape{}, false
	}
	switch {
	case a.Op == OpGTE && b.Op == OpLT:
		return Shape{Kind: KindHalfOpenRange, Key: a.Key, Containers: []HasContainer{a, b}}, true
	case a.Op == OpGT && b.Op == OpLT:
		return Shape{Kind: KindOpenRange, Key: a.Key, Containers: []HasContainer{a, b}}, true
	case a.Op == OpLT && b.Op == OpGT:
		// reversed bounds of an "outside" disjunction: (< lo) or (> hi)
		return Shape{Kind: KindExterior, Key: a.Key, Containers: []HasContainer{a, b}}, true
	default:
		return Shape{}, false
	}
}
