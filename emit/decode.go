package emit

import (
	"fmt"
)

// row is one decoded SQL row: a path of emitted elements (in SchemaNode
// order, filtered to Emits==true) plus the node's traversal labels, and,
// when the partition is part of a split cluster, the value of its merge
// alias column.
type row struct {
	path    []Element
	labels  [][]string
	joinKey string
}

// scanRow pulls one row of the given width into string columns. Element ids
// are always textual by the time they reach this layer (the topology
// catalog's PrimaryKey columns are projected as-is; numeric ids still scan
// cleanly into strings via the database driver's default conversions).
func scanRow(rows RowSource, width int) ([]string, error) {
	dest := make([]interface{}, width)
	vals := make([]string, width)
	for i := range dest {
		dest[i] = &vals[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("emit: scan row: %w", err)
	}
	return vals, nil
}

// decodeRow maps one scanned row's columns back to (nodeIndex, column)
// pairs via the statement's AliasMap, then projects each node's primary-key
// value plus any projected property columns into an Element, in tree
// (node-index) order, keeping only nodes the replaced-step tree marked as
// emitting (see strategy.InstallStrategies and sqlbuild.resolveEdgeNavigation:
// pass-through edge nodes under a plain out()/in() navigation do not emit).
func decodeRow(p *partition, cols, vals []string) (row, error) {
	type hit struct {
		idx    int
		column string
		val    string
	}
	var hits []hit
	var joinKey string

	for i, col := range cols {
		ref, ok := p.aliases.Resolve(col)
		if !ok {
			return row{}, fmt.Errorf("emit: column %q not found in alias map", col)
		}
		if p.merge != "" && col == p.merge {
			joinKey = vals[i]
		}
		hits = append(hits, hit{idx: ref.NodeIndex, column: ref.Column, val: vals[i]})
	}

	var out row
	out.joinKey = joinKey
	byNode := map[int]*Element{}
	var order []int
	for _, h := range hits {
		if p.tree == nil || h.idx >= len(p.tree.Nodes) {
			continue
		}
		node := p.tree.Nodes[h.idx]
		if !node.Emits {
			continue
		}
		elem, ok := byNode[h.idx]
		if !ok {
			elem = &Element{Label: node.Table.Label, IsEdge: node.IsEdge}
			byNode[h.idx] = elem
			order = append(order, h.idx)
		}
		if h.column == node.Table.PrimaryKey {
			elem.ID = h.val
			continue
		}
		if elem.Properties == nil {
			elem.Properties = make(map[string]interface{})
		}
		elem.Properties[h.column] = h.val
	}

	for _, idx := range order {
		elem := byNode[idx]
		out.path = append(out.path, *elem)
		out.labels = append(out.labels, append([]string(nil), p.tree.Nodes[idx].TraversalLabels...))
	}
	return out, nil
}

// drainPartition decodes every remaining row of a single partition.
func drainPartition(p *partition) ([]row, error) {
	cols, err := p.rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("emit: columns: %w", err)
	}
	var out []row
	for p.rows.Next() {
		vals, err := scanRow(p.rows, len(cols))
		if err != nil {
			return nil, err
		}
		r, err := decodeRow(p, cols, vals)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := p.rows.Err(); err != nil {
		return nil, fmt.Errorf("emit: %w", err)
	}
	return out, nil
}
