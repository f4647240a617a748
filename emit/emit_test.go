package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gremlinsql/compiler/sqlbuild"
)

// fakeRows is an in-memory RowSource fixture standing in for *sql.Rows.
type fakeRows struct {
	cols []string
	data [][]string
	pos  int
}

func (f *fakeRows) Columns() ([]string, error) { return f.cols, nil }

func (f *fakeRows) Next() bool {
	if f.pos >= len(f.data) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeRows) Scan(dest ...interface{}) error {
	row := f.data[f.pos-1]
	for i, d := range dest {
		*(d.(*string)) = row[i]
	}
	return nil
}

func (f *fakeRows) Err() error   { return nil }
func (f *fakeRows) Close() error { return nil }

// failingRows reports a non-nil Scan error on every row; it models a
// connection drop mid-stream rather than a bad row shape.
type failingRows struct {
	cols []string
	n    int
}

func (f *failingRows) Columns() ([]string, error) { return f.cols, nil }
func (f *failingRows) Next() bool                 { f.n++; return f.n == 1 }
func (f *failingRows) Scan(dest ...interface{}) error {
	return assert.AnError
}
func (f *failingRows) Err() error   { return nil }
func (f *failingRows) Close() error { return nil }

func singleStatementResult(aliases *sqlbuild.AliasMap) *sqlbuild.Result {
	return &sqlbuild.Result{
		Statements: []*sqlbuild.Statement{
			{Select: &sqlbuild.Select{}, Aliases: aliases},
		},
	}
}

func TestEmitterStateMachine(t *testing.T) {
	am := sqlbuild.NewAliasMap(63)

	rows := &fakeRows{cols: []string{}, data: [][]string{{}, {}}}
	result := singleStatementResult(am)
	e, err := NewEmitter(result, []RowSource{rows})
	require.NoError(t, err)
	assert.Equal(t, StateInit, e.State())

	require.True(t, e.Next())
	assert.Equal(t, StateStreaming, e.State())
	e.Current()

	require.True(t, e.Next())
	e.Current()

	assert.False(t, e.Next())
	assert.Equal(t, StateDone, e.State())
	assert.NoError(t, e.Err())
}

func TestEmitterFailsOnScanError(t *testing.T) {
	rows := &failingRows{cols: []string{"c0"}}
	am := sqlbuild.NewAliasMap(63)
	result := singleStatementResult(am)
	e, err := NewEmitter(result, []RowSource{rows})
	require.NoError(t, err)

	assert.False(t, e.Next())
	assert.Equal(t, StateFailed, e.State())
	assert.Error(t, e.Err())

	assert.False(t, e.Next())
}
