package topology

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// edgeSpec is one registered edge-label's table, keyed by the vertex label
// it originates from.
type edgeSpec struct {
	table     SchemaTable
	fromLabel string
	toLabel   string
}

// MemCatalog is a reference Catalog implementation used by the compiler's
// own tests and by the diagnostics CLI. It is not meant for production use
// (the real topology catalog is an external collaborator, see package doc)
// but it implements the same concurrent-readers/single-writer contract a
// production catalog must: committed state is visible to every reader,
// while a write in progress is visible only to the goroutine holding the
// write lock.
//
// Grounded on the teacher's internal/lru-backed read path (graph/sql/lru.go)
// for the resolved-table cache, generalized with a generation counter and
// sync.RWMutex so concurrent compilers never observe a half-applied Commit.
type MemCatalog struct {
	mu sync.RWMutex

	generation int64
	vertices   map[string]SchemaTable
	edges      map[string][]edgeSpec
	columns    map[string]map[string]ColumnType

	cache *lruCache

	// pending holds a writer's uncommitted additions, visible only while
	// that writer holds writeLock.
	writeLock sync.Mutex
	pending   *MemCatalog
}

// NewMemCatalog returns an empty catalog.
func NewMemCatalog() *MemCatalog {
	return &MemCatalog{
		vertices: make(map[string]SchemaTable),
		edges:    make(map[string][]edgeSpec),
		columns:  make(map[string]map[string]ColumnType),
		cache:    newLRUCache(256),
	}
}

// AddVertexTable registers a vertex-label's backing table. PrimaryKey
// defaults to "id" when unset, and Label is set to label.
func (c *MemCatalog) AddVertexTable(label string, t SchemaTable) {
	if t.PrimaryKey == "" {
		t.PrimaryKey = "id"
	}
	t.Label = label
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vertices[label] = t
	c.cache = newLRUCache(256)
	c.generation++
}

// AddEdgeTable registers an edge-label's backing table, linking fromLabel
// to toLabel. Unset key columns default to "from_id" (ForeignKey) and
// "to_id" (OppositeForeignKey); an unset PrimaryKey gets "id_" followed by
// 8 random characters, so test fixtures get a unique identifier without the
// caller wiring one up by hand.
func (c *MemCatalog) AddEdgeTable(edgeLabel, fromLabel, toLabel string, t SchemaTable) {
	if t.PrimaryKey == "" {
		t.PrimaryKey = "id_" + uuid.NewString()[:8]
	}
	if t.ForeignKey == "" {
		t.ForeignKey = "from_id"
	}
	if t.OppositeForeignKey == "" {
		t.OppositeForeignKey = "to_id"
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edges[fromLabel] = append(c.edges[fromLabel], edgeSpec{table: t, fromLabel: fromLabel, toLabel: toLabel})
	c.edges[fromLabel][len(c.edges[fromLabel])-1].table.Label = edgeLabel
	c.generation++
}

// SetColumnType registers a property column's declared type.
func (c *MemCatalog) SetColumnType(table SchemaTable, column string, typ ColumnType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := table.QualifiedName()
	if c.columns[key] == nil {
		c.columns[key] = make(map[string]ColumnType)
	}
	c.columns[key][column] = typ
	c.generation++
}

// BeginWrite acquires the catalog's single-writer lock and returns a
// snapshot the caller may mutate (via AddVertexTable etc. called on the
// returned handle) without other readers observing the changes until
// Commit. Other callers of ResolveVertexTable etc. during this window see
// only the last committed state.
func (c *MemCatalog) BeginWrite() *MemCatalog {
	c.writeLock.Lock()
	c.mu.RLock()
	snapshot := &MemCatalog{
		vertices: cloneVertices(c.vertices),
		edges:    cloneEdges(c.edges),
		columns:  cloneColumns(c.columns),
		cache:    newLRUCache(256),
	}
	c.mu.RUnlock()
	c.pending = snapshot
	return snapshot
}

// Commit atomically publishes the writer's snapshot as the new committed
// state and releases the write lock.
func (c *MemCatalog) Commit() {
	pending := c.pending
	c.mu.Lock()
	c.vertices = pending.vertices
	c.edges = pending.edges
	c.columns = pending.columns
	c.cache = newLRUCache(256)
	c.generation++
	c.mu.Unlock()
	c.pending = nil
	c.writeLock.Unlock()
}

func cloneVertices(m map[string]SchemaTable) map[string]SchemaTable {
	out := make(map[string]SchemaTable, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneEdges(m map[string][]edgeSpec) map[string][]edgeSpec {
	out := make(map[string][]edgeSpec, len(m))
	for k, v := range m {
		out[k] = append([]edgeSpec(nil), v...)
	}
	return out
}

func cloneColumns(m map[string]map[string]ColumnType) map[string]map[string]ColumnType {
	out := make(map[string]map[string]ColumnType, len(m))
	for k, v := range m {
		inner := make(map[string]ColumnType, len(v))
		for ck, cv := range v {
			inner[ck] = cv
		}
		out[k] = inner
	}
	return out
}

func (c *MemCatalog) ResolveVertexTable(ctx context.Context, label string) (SchemaTable, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t, ok := c.cache.Get(label); ok {
		return t, true, nil
	}
	t, ok := c.vertices[label]
	if !ok {
		return SchemaTable{}, false, nil
	}
	c.cache.Put(label, t)
	return t, true, nil
}

func (c *MemCatalog) EdgeTablesFrom(ctx context.Context, vertexTable SchemaTable, dir Direction, labelConstraint []string) ([]EdgeTable, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	allowed := make(map[string]bool, len(labelConstraint))
	for _, l := range labelConstraint {
		allowed[l] = true
	}

	var key string
	for label, t := range c.vertices {
		if t.QualifiedName() == vertexTable.QualifiedName() {
			key = label
			break
		}
	}
	if key == "" {
		return nil, fmt.Errorf("topology: unknown vertex table %q", vertexTable.QualifiedName())
	}

	specs := c.edges[key]
	if dir == In {
		// Inbound edges are keyed by their origin label; collect those that
		// end at key and swap the key columns so ForeignKey still names the
		// column referencing the navigation origin (key).
		specs = nil
		for _, list := range c.edges {
			for _, s := range list {
				if s.toLabel == key {
					s.table.ForeignKey, s.table.OppositeForeignKey = s.table.OppositeForeignKey, s.table.ForeignKey
					specs = append(specs, s)
				}
			}
		}
		sort.SliceStable(specs, func(i, j int) bool { return specs[i].table.QualifiedName() < specs[j].table.QualifiedName() })
	}

	var out []EdgeTable
	for _, spec := range specs {
		if len(allowed) > 0 && !allowed[spec.table.Label] {
			continue
		}
		oppositeLabel := spec.toLabel
		if dir == In {
			oppositeLabel = spec.fromLabel
		}
		opposite, ok := c.vertices[oppositeLabel]
		if !ok {
			continue
		}
		out = append(out, EdgeTable{Edge: spec.table, Opposite: opposite})
	}
	return out, nil
}

// VertexLabels implements ListableCatalog.
func (c *MemCatalog) VertexLabels(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.vertices))
	for label := range c.vertices {
		out = append(out, label)
	}
	sort.Strings(out)
	return out, nil
}

func (c *MemCatalog) ColumnType(ctx context.Context, table SchemaTable, column string) (ColumnType, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cols, ok := c.columns[table.QualifiedName()]
	if !ok {
		return 0, false, nil
	}
	typ, ok := cols[column]
	return typ, ok, nil
}
