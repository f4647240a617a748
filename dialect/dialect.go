// Package dialect narrows SQL-text generation differences between backends
// to the handful of knobs the SQL builder actually needs: identifier
// quoting, semicolon policy, LIMIT/OFFSET syntax, cascade support, a
// join-count ceiling, and the operator used for regex/text matching.
// Connection and transaction management stay out of scope — a Dialect is a
// pure text/limits contract, never a *sql.DB.
package dialect

import "fmt"

// Dialect is the external contract of §4.6: a narrow interface the SQL
// builder consults while projecting a SchemaTableTree into SQL text.
type Dialect interface {
	// Name identifies the dialect, e.g. "postgres", "mysql", "sqlite".
	Name() string

	// Quote escapes an identifier for safe inclusion in SQL text.
	Quote(identifier string) string

	// NeedsSemicolon reports whether generated statements must be
	// terminated with a semicolon.
	NeedsSemicolon() bool

	// LimitClause renders a LIMIT (and, where required by the dialect,
	// a no-op OFFSET) clause for n rows.
	LimitClause(n int64) string

	// OffsetClause renders an OFFSET clause. Dialects that cannot express
	// OFFSET without LIMIT (see NoOffsetWithoutLimit to Optimizer in the
	// teacher) should be paired with a builder that always supplies a
	// LIMIT alongside any OFFSET.
	OffsetClause(n int64) string

	// SupportsCascade reports whether DDL in this dialect supports
	// CASCADE (not used by the compiler itself, preserved for parity with
	// the topology catalog's schema-evolution operations it narrows to).
	SupportsCascade() bool

	// MaxJoinsPerSelect is the dialect's ceiling on INNER JOINs in a single
	// SELECT, used by the SQL builder's splitting logic. Config can
	// override this per §6 (maxJoinsPerStatement).
	MaxJoinsPerSelect() int

	// RegexOperator is the operator (or function name) used to express a
	// text-match predicate, e.g. "LIKE", "ILIKE", "REGEXP".
	RegexOperator() string

	// Placeholder renders the i'th (1-based) bound-parameter placeholder.
	Placeholder(i int) string
}

// MaxIdentifierLength is used by the alias allocator to keep generated
// aliases within a dialect's identifier-length limit (§4.4 "Alias
// discipline": "bounded in length within the dialect's limit").
type lengthLimited interface {
	MaxIdentifierLength() int
}

// IdentifierLimit returns d's maximum identifier length if it implements
// lengthLimited, or a conservative default otherwise.
func IdentifierLimit(d Dialect) int {
	if l, ok := d.(lengthLimited); ok {
		return l.MaxIdentifierLength()
	}
	return 63 // the ANSI SQL / postgres default
}

// ErrScratchTableUnsupported reports that a dialect cannot materialize a
// scratch table. Dialect has no scratch-table hook, and no code in this
// module returns or classifies this error.
var ErrScratchTableUnsupported = fmt.Errorf("dialect: scratch tables are not supported")
