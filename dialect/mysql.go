package dialect

import (
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQL is grounded on the teacher's mysql backend registration
// (graph/sql/mysql.go): backtick-quoted identifiers and "?" placeholders.
// MySQL accepts OFFSET only alongside LIMIT (the teacher's
// NoOffsetWithoutLimit flag); nothing here enforces that: Select.SQL
// renders OFFSET whenever Offset > 0 regardless of Limit, and the builder
// sets neither.
type MySQL struct {
	MaxJoins int
}

func (MySQL) Name() string { return "mysql" }

func (MySQL) Quote(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}

func (MySQL) NeedsSemicolon() bool { return true }

func (MySQL) LimitClause(n int64) string {
	return "LIMIT " + strconv.FormatInt(n, 10)
}

func (MySQL) OffsetClause(n int64) string {
	return "OFFSET " + strconv.FormatInt(n, 10)
}

func (MySQL) SupportsCascade() bool { return false }

func (m MySQL) MaxJoinsPerSelect() int {
	if m.MaxJoins > 0 {
		return m.MaxJoins
	}
	// MySQL's optimizer degrades sharply well before its hard limit of 61
	// tables per join; keep comfortably under it.
	return 24
}

func (MySQL) RegexOperator() string { return "LIKE" }

func (MySQL) Placeholder(int) string { return "?" }

func (MySQL) MaxIdentifierLength() int { return 64 }

// ClassifyMySQLError mirrors ClassifyPostgresError for *mysql.MySQLError:
// error 1116 ("Too many tables") is the dialect-rejection case the SQL
// builder's splitting logic exists to avoid.
func ClassifyMySQLError(err error) (dialectRejection bool) {
	myErr, ok := err.(*mysql.MySQLError)
	if !ok {
		return false
	}
	return myErr.Number == 1116
}
