package sqlbuild

import (
	"fmt"

	"github.com/gremlinsql/compiler/dialect"
	"github.com/gremlinsql/compiler/predicate"
)

func compOp(op predicate.Operator) CmpOp {
	switch op {
	case predicate.OpEQ:
		return OpEQ
	case predicate.OpNEQ:
		return OpNEQ
	case predicate.OpLT:
		return OpLT
	case predicate.OpLTE:
		return OpLTE
	case predicate.OpGT:
		return OpGT
	case predicate.OpGTE:
		return OpGTE
	default:
		return ""
	}
}

// projectShape maps one of the six foldable shapes of predicate.Classify
// onto the fixed SQL translation §4.4 specifies: comparisons keep their
// operator, ranges become a conjunction, exterior becomes a disjunction
// with reversed bounds, membership becomes IN/NOT IN (or a scratch-table
// join, handled by the caller when the list exceeds tempTableThreshold),
// and text becomes LIKE/NOT LIKE with % wildcards, or the dialect's
// RegexOperator for the case-insensitive variants.
func projectShape(sel *Select, alias string, shape predicate.Shape, d dialect.Dialect, tempTableThreshold int, scratchName func() string) (Cond, error) {
	switch shape.Kind {
	case predicate.KindComparison:
		c := shape.Containers[0]
		return Cmp{Table: alias, Field: c.Key, Op: compOp(c.Op), Value: sel.AppendParam(c.Value)}, nil

	case predicate.KindHalfOpenRange, predicate.KindOpenRange:
		lo, hi := shape.Containers[0], shape.Containers[1]
		return And{
			Cmp{Table: alias, Field: lo.Key, Op: compOp(lo.Op), Value: sel.AppendParam(lo.Value)},
			Cmp{Table: alias, Field: hi.Key, Op: compOp(hi.Op), Value: sel.AppendParam(hi.Value)},
		}, nil

	case predicate.KindExterior:
		lo, hi := shape.Containers[0], shape.Containers[1]
		return Or{
			Cmp{Table: alias, Field: lo.Key, Op: compOp(lo.Op), Value: sel.AppendParam(lo.Value)},
			Cmp{Table: alias, Field: hi.Key, Op: compOp(hi.Op), Value: sel.AppendParam(hi.Value)},
		}, nil

	case predicate.KindMembership:
		return projectMembership(sel, alias, shape, tempTableThreshold, scratchName)

	case predicate.KindText:
		return projectText(sel, alias, shape, d)

	default:
		return nil, fmt.Errorf("sqlbuild: unhandled predicate shape %s", shape.Kind)
	}
}

func projectMembership(sel *Select, alias string, shape predicate.Shape, tempTableThreshold int, scratchName func() string) (Cond, error) {
	c := shape.Containers[0]
	values, ok := c.Value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("sqlbuild: membership predicate on %q requires a list value", c.Key)
	}
	op := OpIn
	if c.Op == predicate.OpWithout {
		op = OpNotIn
	}

	if tempTableThreshold > 0 && len(values) >= tempTableThreshold {
		name := scratchName()
		sel.ScratchTables = append(sel.ScratchTables, ScratchTableSpec{
			Name:   name,
			Column: c.Key,
			Values: values,
		})
		return Cmp{Table: alias, Field: c.Key, Op: op, Value: Raw("(SELECT value FROM " + name + ")")}, nil
	}
	return Cmp{Table: alias, Field: c.Key, Op: op, Value: sel.AppendParams(values)}, nil
}

func projectText(sel *Select, alias string, shape predicate.Shape, d dialect.Dialect) (Cond, error) {
	c := shape.Containers[0]
	s, ok := c.Value.(string)
	if !ok {
		return nil, fmt.Errorf("sqlbuild: text predicate on %q requires a string value", c.Key)
	}

	caseInsensitive := false
	negate := false
	var pattern string
	switch c.Op {
	case predicate.OpContains:
		pattern = "%" + s + "%"
	case predicate.OpContainsCIS:
		pattern = "%" + s + "%"
		caseInsensitive = true
	case predicate.OpNContains:
		pattern = "%" + s + "%"
		negate = true
	case predicate.OpNContainsCIS:
		pattern = "%" + s + "%"
		negate = true
		caseInsensitive = true
	case predicate.OpStartsWith:
		pattern = s + "%"
	case predicate.OpNStartsWith:
		pattern = s + "%"
		negate = true
	case predicate.OpEndsWith:
		pattern = "%" + s
	case predicate.OpNEndsWith:
		pattern = "%" + s
		negate = true
	default:
		return nil, fmt.Errorf("sqlbuild: unrecognized text operator %q", c.Op)
	}

	op := OpLike
	if caseInsensitive {
		// dialects that offer a case-insensitive match operator (postgres's
		// ILIKE) advertise it via RegexOperator; others fall back to plain
		// LIKE, matching the teacher's own regex-operator dispatch in
		// graph/sql/optimizer.go's ILIKE handling for postgres only.
		op = CmpOp(d.RegexOperator())
	}
	if negate {
		switch op {
		case OpLike:
			op = OpNotLike
		default:
			op = "NOT " + op
		}
	}
	return Cmp{Table: alias, Field: c.Key, Op: op, Value: sel.AppendParam(pattern)}, nil
}
