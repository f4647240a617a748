package sqlbuild

import (
	"fmt"
	"strconv"
)

// AliasRef is the reverse-mapping target of a generated column alias: the
// SchemaTableTree node index and logical column name it stands for.
type AliasRef struct {
	NodeIndex int
	Column    string
}

// AliasMap is the builder's alias allocator and its reverse index, grounded
// on the teacher's Optimizer.nextTable() counter in graph/sql/optimizer.go
// (a simple "t_%d" scheme) extended with the (nodeIndex, column) reversible
// mapping §4.4 requires: given an alias the emitter must recover exactly
// which node and column produced it. One AliasMap backs exactly one
// generated statement and is discarded once that statement is consumed.
type AliasMap struct {
	limit   int
	byAlias map[string]AliasRef
	seen    map[string]bool
}

// NewAliasMap returns an AliasMap bounding every alias it allocates to
// limit characters (the dialect's identifier length).
func NewAliasMap(limit int) *AliasMap {
	return &AliasMap{
		limit:   limit,
		byAlias: make(map[string]AliasRef),
		seen:    make(map[string]bool),
	}
}

// Alloc returns a collision-free alias for (nodeIndex, column), truncating
// and disambiguating as needed to respect the dialect's identifier limit.
func (m *AliasMap) Alloc(nodeIndex int, column string) string {
	base := fmt.Sprintf("c%d_%s", nodeIndex, column)
	if len(base) > m.limit {
		base = base[:m.limit]
	}
	alias := base
	for n := 1; m.seen[alias]; n++ {
		suffix := "_" + strconv.Itoa(n)
		cut := m.limit - len(suffix)
		if cut < 0 {
			cut = 0
		}
		trimmed := base
		if len(trimmed) > cut {
			trimmed = trimmed[:cut]
		}
		alias = trimmed + suffix
	}
	m.seen[alias] = true
	m.byAlias[alias] = AliasRef{NodeIndex: nodeIndex, Column: column}
	return alias
}

// Resolve recovers the (nodeIndex, column) pair an alias was allocated for.
func (m *AliasMap) Resolve(alias string) (AliasRef, bool) {
	ref, ok := m.byAlias[alias]
	return ref, ok
}

// Reset discards every allocation, as required once the owning statement
// has been fully consumed by the emitter.
func (m *AliasMap) Reset() {
	m.byAlias = make(map[string]AliasRef)
	m.seen = make(map[string]bool)
}
