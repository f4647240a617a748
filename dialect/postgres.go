package dialect

import (
	"fmt"
	"strconv"

	"github.com/lib/pq"
)

// Postgres is the default PostgreSQL dialect, grounded on the teacher's
// postgres backend registration (graph/sql/postgres.go): double-quoted
// identifiers, $1-style placeholders, and LIMIT/OFFSET usable independently.
type Postgres struct {
	// MaxJoins overrides the dialect default when non-zero (bound from
	// config.MaxJoinsPerStatement).
	MaxJoins int
}

func (Postgres) Name() string { return "postgres" }

func (Postgres) Quote(identifier string) string {
	return pq.QuoteIdentifier(identifier)
}

func (Postgres) NeedsSemicolon() bool { return true }

func (Postgres) LimitClause(n int64) string {
	return "LIMIT " + strconv.FormatInt(n, 10)
}

func (Postgres) OffsetClause(n int64) string {
	return "OFFSET " + strconv.FormatInt(n, 10)
}

func (Postgres) SupportsCascade() bool { return true }

func (p Postgres) MaxJoinsPerSelect() int {
	if p.MaxJoins > 0 {
		return p.MaxJoins
	}
	return 32
}

func (Postgres) RegexOperator() string { return "ILIKE" }

func (Postgres) Placeholder(i int) string {
	return fmt.Sprintf("$%d", i)
}

// ClassifyPostgresError maps a *pq.Error into the compiler's error taxonomy hint:
// it returns true when the error reflects a dialect-level rejection (e.g. a
// statement too complex for the backend to plan) rather than a transient
// execution failure, the same split the teacher's postgres registration
// makes for graph.ErrDatabaseExists in graph/sql/postgres.go.
func ClassifyPostgresError(err error) (dialectRejection bool) {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return false
	}
	switch pqErr.Code.Class() {
	case "54": // program_limit_exceeded: too many joins/subqueries/etc.
		return true
	default:
		return false
	}
}
