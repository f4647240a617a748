package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySingleComparison(t *testing.T) {
	s, ok := Classify([]HasContainer{{Key: "name", Op: OpEQ, Value: "marko"}})
	require.True(t, ok)
	assert.Equal(t, KindComparison, s.Kind)
	assert.Equal(t, "name", s.Key)
}

func TestClassifyHalfOpenRange(t *testing.T) {
	s, ok := Classify([]HasContainer{
		{Key: "age", Op: OpGTE, Value: 29},
		{Key: "age", Op: OpLT, Value: 35},
	})
	require.True(t, ok)
	assert.Equal(t, KindHalfOpenRange, s.Kind)
}

func TestClassifyOpenRange(t *testing.T) {
	s, ok := Classify([]HasContainer{
		{Key: "age", Op: OpGT, Value: 29},
		{Key: "age", Op: OpLT, Value: 35},
	})
	require.True(t, ok)
	assert.Equal(t, KindOpenRange, s.Kind)
}

func TestClassifyExterior(t *testing.T) {
	s, ok := Classify([]HasContainer{
		{Key: "age", Op: OpLT, Value: 10},
		{Key: "age", Op: OpGT, Value: 20},
	})
	require.True(t, ok)
	assert.Equal(t, KindExterior, s.Kind)
}

func TestClassifyMembership(t *testing.T) {
	s, ok := Classify([]HasContainer{{Key: "name", Op: OpWithin, Value: []string{"marko", "josh"}}})
	require.True(t, ok)
	assert.Equal(t, KindMembership, s.Kind)
}

func TestClassifyMembershipRejectsReservedKeys(t *testing.T) {
	_, ok := Classify([]HasContainer{{Key: KeyLabel, Op: OpWithin, Value: []string{"person"}}})
	assert.False(t, ok)
	_, ok = Classify([]HasContainer{{Key: KeyID, Op: OpWithin, Value: []string{"1"}}})
	assert.False(t, ok)
}

func TestClassifyText(t *testing.T) {
	s, ok := Classify([]HasContainer{{Key: "name", Op: OpStartsWith, Value: "mar"}})
	require.True(t, ok)
	assert.Equal(t, KindText, s.Kind)
}

func TestClassifyTextRejectsReservedKeys(t *testing.T) {
	_, ok := Classify([]HasContainer{{Key: KeyID, Op: OpContains, Value: "1"}})
	assert.False(t, ok)
}

func TestClassifyRejectsMismatchedKeys(t *testing.T) {
	_, ok := Classify([]HasContainer{
		{Key: "age", Op: OpGTE, Value: 1},
		{Key: "weight", Op: OpLT, Value: 2},
	})
	assert.False(t, ok)
}

func TestClassifyRejectsUnknownShapes(t *testing.T) {
	_, ok := Classify([]HasContainer{
		{Key: "a", Op: OpEQ, Value: 1},
		{Key: "b", Op: OpEQ, Value: 2},
		{Key: "c", Op: OpEQ, Value: 3},
	})
	assert.False(t, ok)
}
