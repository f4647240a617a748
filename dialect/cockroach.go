package dialect

import "fmt"

// Cockroach shares postgres's wire protocol and quoting (lib/pq) but has a
// lower practical join ceiling and, per the teacher's cockroach
// registration (graph/sql/cockroach.go), a stricter NoOffsetWithoutLimit
// posture. As with MySQL, nothing here pairs OFFSET with LIMIT: Select.SQL
// renders OFFSET whenever Offset > 0, and the builder sets neither.
type Cockroach struct {
	MaxJoins int
}

func (Cockroach) Name() string { return "cockroach" }

func (Cockroach) Quote(identifier string) string {
	return Postgres{}.Quote(identifier)
}

func (Cockroach) NeedsSemicolon() bool { return true }

func (Cockroach) LimitClause(n int64) string {
	return Postgres{}.LimitClause(n)
}

func (Cockroach) OffsetClause(n int64) string {
	return Postgres{}.OffsetClause(n)
}

func (Cockroach) SupportsCascade() bool { return true }

func (c Cockroach) MaxJoinsPerSelect() int {
	if c.MaxJoins > 0 {
		return c.MaxJoins
	}
	return 16
}

func (Cockroach) RegexOperator() string { return "ILIKE" }

func (Cockroach) Placeholder(i int) string {
	return fmt.Sprintf("$%d", i)
}

// ClassifyCockroachError delegates to the postgres classification, since
// cockroach speaks the same wire error format.
func ClassifyCockroachError(err error) (dialectRejection bool) {
	return ClassifyPostgresError(err)
}
