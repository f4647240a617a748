package dialect

import (
	"strconv"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// SQLite is grounded on the teacher's sqlite backend being its "permissive"
// registration (graph/sql/sqlite/): no fill-factor, no conditional
// indexes. SQLite has no real join-count ceiling in practice, so
// MaxJoinsPerSelect returns a generous constant rather than a measured
// limit.
type SQLite struct {
	MaxJoins int
}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) Quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func (SQLite) NeedsSemicolon() bool { return false }

func (SQLite) LimitClause(n int64) string {
	return "LIMIT " + strconv.FormatInt(n, 10)
}

func (SQLite) OffsetClause(n int64) string {
	return "OFFSET " + strconv.FormatInt(n, 10)
}

func (SQLite) SupportsCascade() bool { return false }

func (s SQLite) MaxJoinsPerSelect() int {
	if s.MaxJoins > 0 {
		return s.MaxJoins
	}
	return 64
}

func (SQLite) RegexOperator() string { return "LIKE" }

func (SQLite) Placeholder(int) string { return "?" }

// ClassifySQLiteError reports whether err represents a dialect-level
// rejection (too many columns in a single SELECT, SQLITE_TOOBIG / the
// 2000-column default limit) rather than an execution-time failure.
func ClassifySQLiteError(err error) (dialectRejection bool) {
	liteErr, ok := err.(sqlite3.Error)
	if !ok {
		return false
	}
	return liteErr.Code == sqlite3.ErrTooBig
}
