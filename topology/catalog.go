// Package topology defines the read-only contract the SQL builder consumes
// to resolve replaced-steps against concrete schema-qualified tables: label
// resolution, edge-table enumeration, and column typing. The topology
// catalog itself — schemas, vertex-labels, edge-labels, property columns —
// is an external collaborator; this package only describes the interface
// and, for the compiler's own tests, a small in-memory reference
// implementation.
package topology

import (
	"context"
	"fmt"
)

// Direction is the navigation direction of an edge table relative to its
// parent vertex table.
type Direction int

const (
	Out Direction = iota
	In
)

func (d Direction) String() string {
	if d == Out {
		return "out"
	}
	return "in"
}

// ColumnType is the declared type of a property column. The SQL builder
// only checks that a filtered column exists in the catalog; the type value
// itself is not consulted for literal formatting or comparison checks.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeTime
)

// SchemaTable is the concrete (schema, table) pair backing a vertex- or
// edge-label.
type SchemaTable struct {
	Schema string
	Table  string

	// Label is the vertex- or edge-label this table was resolved from.
	Label string

	// PrimaryKey is the column identifying a row (the element id column).
	PrimaryKey string

	// ForeignKey, for edge tables, is the column referencing the parent
	// (navigation-origin) vertex table's PrimaryKey.
	ForeignKey string

	// OppositeForeignKey, for edge tables, is the separate column
	// referencing the opposite endpoint vertex table's PrimaryKey. A
	// directed edge table generally links two distinct vertex tables
	// through two distinct columns; ForeignKey and OppositeForeignKey name
	// each side independently.
	OppositeForeignKey string
}

// QualifiedName returns schema.table (unquoted), or just table if Schema is
// empty.
func (t SchemaTable) QualifiedName() string {
	if t.Schema == "" {
		return t.Table
	}
	return fmt.Sprintf("%s.%s", t.Schema, t.Table)
}

// EdgeTable pairs a resolved edge table with the vertex table at its
// opposite endpoint.
type EdgeTable struct {
	Edge     SchemaTable
	Opposite SchemaTable
}

// Catalog is the read-only interface the SQL builder consumes during
// compilation. Implementations must tolerate concurrent readers alongside a
// single external writer (see package doc and §5 of the design): readers
// never observe a partially-applied mutation, and only the writer's own
// goroutine may see its own uncommitted additions.
type Catalog interface {
	// ResolveVertexTable maps a vertex-label to its backing table. The
	// second return value is false if no such label is known.
	ResolveVertexTable(ctx context.Context, label string) (SchemaTable, bool, error)

	// EdgeTablesFrom enumerates the edge tables leading out of (or into)
	// vertexTable in the given direction, optionally restricted to the
	// given edge labels (nil/empty means unconstrained).
	EdgeTablesFrom(ctx context.Context, vertexTable SchemaTable, dir Direction, labelConstraint []string) ([]EdgeTable, error)

	// ColumnType returns the declared type of a column in the given table.
	ColumnType(ctx context.Context, table SchemaTable, column string) (ColumnType, bool, error)
}
