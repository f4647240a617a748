// Package emit consumes the rows of executed SQL statements and yields
// path-and-labels results (Emit values) for the host traversal framework.
// Rows are not read one at a time: on demand, Next drains every partition
// of the next cluster to completion, then hands out the resulting Emits one
// by one. No read-ahead goroutine is involved.
// Grounded on the teacher's graph/sql/sql_iterator.go and
// graph/sql/builder_iterator.go Next() loop: a cursor is buffered one row
// ahead (`it.resultNext`) so group-boundary detection (`sameTopResult`) can
// look past the current row before deciding whether to yield. This package
// generalizes that from "group rows sharing the same first column" (quad
// grouping in the teacher) to "group rows into one path-and-labels Emit per
// SchemaTableTree node count", and replaces the teacher's implicit
// cursor-nil-ness state (which conflates "not started" and "exhausted")
// with an explicit State enum, since the spec requires a FAILED terminal
// distinct from DONE.
package emit

import (
	"errors"
	"fmt"

	"github.com/gremlinsql/compiler/sqlbuild"
)

// State is the emitter's lifecycle state.
type State int

const (
	StateInit State = iota
	StateStreaming
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateStreaming:
		return "streaming"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrInvalidState names an operation the emitter's lifecycle state forbids.
// Next and Reset do not return it: Next simply reports false once the
// emitter is DONE or FAILED.
var ErrInvalidState = errors.New("emit: invalid state for requested operation")

// Element is a decoded vertex or edge.
type Element struct {
	ID         string
	Label      string
	IsEdge     bool
	Properties map[string]interface{}
}

// Emit is one result unit: a path of elements in tree-traversal order, plus
// the traversal-labels bound at each path position.
type Emit struct {
	Path   []Element
	Labels [][]string
}

// RowSource is the minimal *sql.Rows surface the emitter needs. Defined as
// an interface (rather than importing database/sql directly) so tests can
// supply an in-memory fixture; *sql.Rows satisfies it structurally.
type RowSource interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close() error
}

// partition pairs one executed statement's row source with the metadata
// needed to decode its rows.
type partition struct {
	rows    RowSource
	tree    *sqlbuild.SchemaTableTree
	aliases *sqlbuild.AliasMap
	merge   string

	cols    []string
	nextRow []interface{}
	have    bool
	done    bool
}

// Emitter streams Emit values from one or more executed partitions,
// re-joining split partitions by their shared merge alias (see
// sqlbuild.Options splitting and DESIGN.md's scoping note on it).
type Emitter struct {
	state      State
	err        error
	partitions []*partition
	clusters   [][]*partition

	clusterIdx int
	pending    []Emit
	pendingIdx int
}

// NewEmitter builds an Emitter over the statements of a sqlbuild.Result,
// paired one-to-one with their already-executed RowSources (same order as
// result.Statements). Each statement carries its own node-indexed tree
// (Statement.Tree), so no separate tree slice is needed even when Build
// split one resolved tree into several statements.
func NewEmitter(result *sqlbuild.Result, rows []RowSource) (*Emitter, error) {
	if len(result.Statements) != len(rows) {
		return nil, fmt.Errorf("emit: %d statements but %d row sources", len(result.Statements), len(rows))
	}
	e := &Emitter{state: StateInit}
	for i, st := range result.Statements {
		e.partitions = append(e.partitions, &partition{
			rows:    rows[i],
			tree:    st.Tree,
			aliases: st.Aliases,
			merge:   st.MergeAlias,
		})
	}
	e.clusters = clusterPartitions(e.partitions)
	return e, nil
}

// clusterPartitions groups partitions sharing a non-empty merge alias
// together (they originated from one split SchemaTableTree and must be
// merge-joined); every other partition is its own singleton cluster,
// concatenated in encounter order.
func clusterPartitions(parts []*partition) [][]*partition {
	var clusters [][]*partition
	byMerge := map[string]int{}
	for _, p := range parts {
		if p.merge == "" {
			clusters = append(clusters, []*partition{p})
			continue
		}
		if idx, ok := byMerge[p.merge]; ok {
			clusters[idx] = append(clusters[idx], p)
			continue
		}
		byMerge[p.merge] = len(clusters)
		clusters = append(clusters, []*partition{p})
	}
	return clusters
}

// State returns the emitter's current lifecycle state.
func (e *Emitter) State() State { return e.state }

// Err returns the error that transitioned the emitter to FAILED, if any.
func (e *Emitter) Err() error { return e.err }

// Next advances the emitter and reports whether an Emit is available via
// Current. It implements the state machine of §4.5: INIT -> STREAMING on
// first call, STREAMING -> STREAMING while rows remain, STREAMING -> DONE
// on exhaustion, any state -> FAILED on error (reported once; subsequent
// calls return false immediately).
func (e *Emitter) Next() bool {
	switch e.state {
	case StateFailed, StateDone:
		return false
	case StateInit:
		e.state = StateStreaming
	}

	for e.pendingIdx >= len(e.pending) {
		if e.clusterIdx >= len(e.clusters) {
			e.state = StateDone
			return false
		}
		emits, err := drainCluster(e.clusters[e.clusterIdx])
		e.clusterIdx++
		if err != nil {
			e.err = err
			e.state = StateFailed
			return false
		}
		e.pending = emits
		e.pendingIdx = 0
	}
	return true
}

// Current returns the Emit produced by the most recent successful Next.
func (e *Emitter) Current() Emit {
	em := e.pending[e.pendingIdx]
	e.pendingIdx++
	return em
}

// Reset returns the emitter to INIT, releasing every partition's row
// source. A subsequent Next restarts from the first cluster.
func (e *Emitter) Reset() error {
	for _, p := range e.partitions {
		if err := p.rows.Close(); err != nil {
			return fmt.Errorf("emit: reset: %w", err)
		}
		p.have, p.done = false, false
	}
	e.state = StateInit
	e.err = nil
	e.clusterIdx = 0
	e.pending = nil
	e.pendingIdx = 0
	return nil
}

// Close releases every partition's row source handle.
func (e *Emitter) Close() error {
	var first error
	for _, p := range e.partitions {
		if err := p.rows.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
