package dialect

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestPostgresQuoting(t *testing.T) {
	d := Postgres{}
	assert.Equal(t, `"name"`, d.Quote("name"))
	assert.Equal(t, "$1", d.Placeholder(1))
	assert.Equal(t, "LIMIT 10", d.LimitClause(10))
}

func TestMySQLQuoting(t *testing.T) {
	d := MySQL{}
	assert.Equal(t, "`name`", d.Quote("name"))
	assert.Equal(t, "?", d.Placeholder(3))
	assert.Equal(t, 64, d.MaxIdentifierLength())
}

func TestSQLiteDefaults(t *testing.T) {
	d := SQLite{}
	assert.False(t, d.NeedsSemicolon())
	assert.Equal(t, 64, d.MaxJoinsPerSelect())
}

func TestMaxJoinsOverride(t *testing.T) {
	d := Postgres{MaxJoins: 4}
	assert.Equal(t, 4, d.MaxJoinsPerSelect())
}

func TestClassifyPostgresErrorProgramLimit(t *testing.T) {
	err := &pq.Error{Code: "54001"} // statement_too_complex
	assert.True(t, ClassifyPostgresError(err))

	assert.False(t, ClassifyPostgresError(&pq.Error{Code: "23505"})) // unique_violation
	assert.False(t, ClassifyPostgresError(assertErr("boom")))
}

func TestIdentifierLimitDefault(t *testing.T) {
	assert.Equal(t, 63, IdentifierLimit(Postgres{}))
	assert.Equal(t, 64, IdentifierLimit(MySQL{}))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
